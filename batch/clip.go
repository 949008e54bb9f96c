// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import (
	compositor "github.com/gogpu/compositor"
	"github.com/gogpu/compositor/frame"
	"github.com/gogpu/compositor/prim"
)

// ClipMaskCommon is the part shared by every clip mask instance kind:
// where in the mask task it draws and how the clip and the clipped
// primitive are positioned.
type ClipMaskCommon struct {
	// SubRect is the device sub-rect of the mask task this instance
	// writes, relative to the task origin.
	SubRect compositor.Rect

	// TaskOrigin is the mask task's origin within its target.
	TaskOrigin compositor.Point

	// ScreenOrigin is the world position the task rect corresponds to.
	ScreenOrigin compositor.Point

	DevicePixelScale float32

	ClipTransformID frame.TransformPaletteID
	PrimTransformID frame.TransformPaletteID
}

// ClipMaskRect rasterizes a rectangle or rounded rectangle clip. The
// geometry lives in the clip node's GPU blocks.
type ClipMaskRect struct {
	Common ClipMaskCommon

	// ClipData addresses the node's rect and radii blocks.
	ClipData frame.GpuCacheAddress

	// LocalPos is the clip rect's local-space origin.
	LocalPos compositor.Point
}

// ClipMaskImage rasterizes an image mask, or one tile of a tiled one.
type ClipMaskImage struct {
	Common ClipMaskCommon

	// ResourceAddress is the mask image's uv rect address.
	ResourceAddress frame.GpuCacheAddress

	// TileRect is the local rect the tile masks.
	TileRect compositor.Rect
}

// ClipMaskBoxShadow rasterizes a box shadow clip by sampling the
// blurred shadow task.
type ClipMaskBoxShadow struct {
	Common ClipMaskCommon

	// ResourceAddress is the shadow task's uv rect address.
	ResourceAddress frame.GpuCacheAddress

	ShadowRect   compositor.Rect
	StretchModeX prim.BoxShadowStretchMode
	StretchModeY prim.BoxShadowStretchMode
}

// ClipBatchList collects the mask instances of one blend class. Rects
// split into a slow and a fast list selecting different shader
// variants; images and box shadows group by the texture they sample.
type ClipBatchList struct {
	SlowRects []ClipMaskRect
	FastRects []ClipMaskRect

	Images     map[frame.TextureSource][]ClipMaskImage
	BoxShadows map[frame.TextureSource][]ClipMaskBoxShadow
}

// IsEmpty reports whether the list holds no instances.
func (l *ClipBatchList) IsEmpty() bool {
	return len(l.SlowRects) == 0 && len(l.FastRects) == 0 &&
		len(l.Images) == 0 && len(l.BoxShadows) == 0
}

func (l *ClipBatchList) pushImage(texture frame.TextureSource, inst ClipMaskImage) {
	if l.Images == nil {
		l.Images = make(map[frame.TextureSource][]ClipMaskImage)
	}
	l.Images[texture] = append(l.Images[texture], inst)
}

func (l *ClipBatchList) pushBoxShadow(texture frame.TextureSource, inst ClipMaskBoxShadow) {
	if l.BoxShadows == nil {
		l.BoxShadows = make(map[frame.TextureSource][]ClipMaskBoxShadow)
	}
	l.BoxShadows[texture] = append(l.BoxShadows[texture], inst)
}

// ClipBatcher builds the instances that rasterize clip mask render
// tasks. The first clip of a task draws with blending off, writing
// coverage directly; every further clip multiplies into it. The two
// phases batch separately.
type ClipBatcher struct {
	// Primary holds the blend-off first-clip instances.
	Primary ClipBatchList

	// Secondary holds the multiplying instances.
	Secondary ClipBatchList

	// gpuSupportsFastClears routes everything through Secondary on
	// devices where clearing the task to one is cheaper than a
	// blend-off covering draw.
	gpuSupportsFastClears bool

	tuning compositor.Tuning
}

// NewClipBatcher returns an empty batcher.
func NewClipBatcher(gpuSupportsFastClears bool, tuning compositor.Tuning) *ClipBatcher {
	return &ClipBatcher{
		gpuSupportsFastClears: gpuSupportsFastClears,
		tuning:                tuning,
	}
}

func (c *ClipBatcher) listFor(isFirst bool) *ClipBatchList {
	if isFirst && !c.gpuSupportsFastClears {
		return &c.Primary
	}
	return &c.Secondary
}

// AddClipChain batches the mask instances of one clip task. taskRect
// is the task's device rect, taskOrigin its placement in the target,
// screenOrigin the world position it corresponds to. The return value
// reports whether the task must be cleared to one before drawing:
// true when no blend-off instance fully covers it.
func (c *ClipBatcher) AddClipChain(nodes []prim.ClipNode, primSpatialNode frame.SpatialNodeIndex, taskRect compositor.IntRect, taskOrigin, screenOrigin compositor.Point, devicePixelScale float32, ctx *Context) bool {
	clearToOne := c.gpuSupportsFastClears
	isFirst := true

	primTransform := ctx.Transforms.GetID(primSpatialNode, frame.RootSpatialNode)

	for i := range nodes {
		node := &nodes[i]
		common := ClipMaskCommon{
			SubRect:          compositor.NewRect(0, 0, float32(taskRect.Width()), float32(taskRect.Height())),
			TaskOrigin:       taskOrigin,
			ScreenOrigin:     screenOrigin,
			DevicePixelScale: devicePixelScale,
			ClipTransformID:  ctx.Transforms.GetID(node.SpatialNode, frame.RootSpatialNode),
			PrimTransformID:  primTransform,
		}

		added := false
		switch kind := node.Kind.(type) {
		case *prim.ClipImage:
			added = c.addImageMask(node, kind, common, taskRect, screenOrigin, devicePixelScale, isFirst, &clearToOne, ctx)
		case prim.ClipBoxShadow:
			uv, texture, ok := ctx.Tasks.ResolveLocation(kind.Task)
			if !ok {
				compositor.Logger().Warn("batch: box shadow clip task unavailable, ignoring clip", "task", kind.Task)
				break
			}
			c.listFor(isFirst).pushBoxShadow(texture, ClipMaskBoxShadow{
				Common:          common,
				ResourceAddress: uv,
				ShadowRect:      kind.ShadowRect,
				StretchModeX:    kind.StretchModeX,
				StretchModeY:    kind.StretchModeY,
			})
			added = true
		case prim.ClipRect:
			added = c.addRectClip(node, kind, common, taskRect, screenOrigin, devicePixelScale, isFirst, &clearToOne, ctx)
		case prim.ClipRoundedRect:
			inst := ClipMaskRect{
				Common:   common,
				ClipData: ctx.GpuCache.GetAddress(node.GpuHandle),
				LocalPos: compositor.Point{X: kind.Rect.MinX, Y: kind.Rect.MinY},
			}
			list := c.listFor(isFirst)
			if node.Flags&prim.ClipUseFastPath != 0 {
				list.FastRects = append(list.FastRects, inst)
			} else {
				list.SlowRects = append(list.SlowRects, inst)
			}
			added = true
		default:
			panic("batch: unknown clip node kind")
		}

		if added {
			isFirst = false
		}
	}

	return clearToOne || isFirst
}

// addRectClip batches a rectangle clip. Axis-aligned ClipIn rects in
// the primitive's own coordinate system are already applied by local
// clipping and add nothing. Large axis-aligned ClipIn rects rasterize
// tiled, skipping the tiles the clip provably leaves untouched.
func (c *ClipBatcher) addRectClip(node *prim.ClipNode, kind prim.ClipRect, common ClipMaskCommon, taskRect compositor.IntRect, screenOrigin compositor.Point, devicePixelScale float32, isFirst bool, clearToOne *bool, ctx *Context) bool {
	if kind.Mode == prim.ClipIn && node.Flags&prim.ClipSameCoordSystem != 0 {
		return false
	}

	if kind.Mode == prim.ClipIn &&
		c.addTiledRectClip(node, kind, common, taskRect, screenOrigin, devicePixelScale, isFirst, ctx) {
		// Skipped interior tiles rely on the task being one there.
		*clearToOne = true
		return true
	}

	list := c.listFor(isFirst)
	list.SlowRects = append(list.SlowRects, ClipMaskRect{
		Common:   common,
		ClipData: ctx.GpuCache.GetAddress(node.GpuHandle),
		LocalPos: compositor.Point{X: kind.Rect.MinX, Y: kind.Rect.MinY},
	})
	return true
}

// addTiledRectClip tries the tiled path and reports whether it ran.
// Tiling only pays off for large tasks, and only transforms that are
// axis aligned to the root give the exact world rect the per-tile
// rejection needs.
func (c *ClipBatcher) addTiledRectClip(node *prim.ClipNode, kind prim.ClipRect, common ClipMaskCommon, taskRect compositor.IntRect, screenOrigin compositor.Point, devicePixelScale float32, isFirst bool, ctx *Context) bool {
	if taskRect.Area() < c.tuning.ClipTilingAreaThreshold {
		return false
	}
	if !ctx.SpatialTree.IsAxisAlignedToRoot(node.SpatialNode) {
		return false
	}
	worldClip, ok := ctx.SpatialTree.MapToWorld(node.SpatialNode, kind.Rect)
	if !ok {
		return false
	}

	tileSize := c.tuning.ClipTileSize
	list := c.listFor(isFirst)
	clipData := ctx.GpuCache.GetAddress(node.GpuHandle)

	for y := int32(0); y < taskRect.Height(); y += tileSize {
		for x := int32(0); x < taskRect.Width(); x += tileSize {
			w := min(tileSize, taskRect.Width()-x)
			h := min(tileSize, taskRect.Height()-y)

			// The tile's world rect. A tile fully inside the clip
			// rect keeps full coverage and is not drawn at all.
			tileWorld := compositor.Rect{
				MinX: screenOrigin.X + float32(x)/devicePixelScale,
				MinY: screenOrigin.Y + float32(y)/devicePixelScale,
				MaxX: screenOrigin.X + float32(x+w)/devicePixelScale,
				MaxY: screenOrigin.Y + float32(y+h)/devicePixelScale,
			}
			if worldClip.ContainsRect(tileWorld) {
				continue
			}

			inst := ClipMaskRect{
				Common:   common,
				ClipData: clipData,
				LocalPos: compositor.Point{X: kind.Rect.MinX, Y: kind.Rect.MinY},
			}
			inst.Common.SubRect = compositor.NewRect(float32(x), float32(y), float32(w), float32(h))
			list.SlowRects = append(list.SlowRects, inst)
		}
	}
	return true
}

// addImageMask batches an image mask clip, one instance per visible
// tile for tiled masks. Tiles whose mask image is not resident are
// ignored rather than failing the frame; the clip simply does not cut
// there until the resource arrives.
func (c *ClipBatcher) addImageMask(node *prim.ClipNode, kind *prim.ClipImage, common ClipMaskCommon, taskRect compositor.IntRect, screenOrigin compositor.Point, devicePixelScale float32, isFirst bool, clearToOne *bool, ctx *Context) bool {
	// Unless the mask provably covers the whole task, untouched areas
	// must read full coverage.
	covers := false
	if world, ok := ctx.SpatialTree.MapToWorld(node.SpatialNode, kind.Rect); ok {
		taskWorld := compositor.Rect{
			MinX: screenOrigin.X,
			MinY: screenOrigin.Y,
			MaxX: screenOrigin.X + float32(taskRect.Width())/devicePixelScale,
			MaxY: screenOrigin.Y + float32(taskRect.Height())/devicePixelScale,
		}
		covers = world.ContainsRect(taskWorld)
	}
	if !covers {
		*clearToOne = true
	}

	list := c.listFor(isFirst)
	added := false

	push := func(req frame.ImageRequest, tileRect compositor.Rect) {
		item, err := ctx.Resources.GetCachedImage(req)
		if err != nil {
			compositor.Logger().Warn("batch: clip image not ready, ignoring mask tile",
				"key", req.Key, "err", err)
			return
		}
		list.pushImage(item.Texture, ClipMaskImage{
			Common:          common,
			ResourceAddress: ctx.GpuCache.GetAddress(item.UVRectHandle),
			TileRect:        tileRect,
		})
		added = true
	}

	if len(kind.VisibleTiles) == 0 {
		push(kind.Request, kind.Rect)
	} else {
		for _, tile := range kind.VisibleTiles {
			req := kind.Request
			req.Tile = tile.Tile
			req.Tiled = true
			push(req, tile.LocalRect)
		}
	}
	return added
}

// Reset clears both lists for reuse.
func (c *ClipBatcher) Reset() {
	c.Primary = ClipBatchList{}
	c.Secondary = ClipBatchList{}
}
