// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import (
	"math"

	compositor "github.com/gogpu/compositor"
	"github.com/gogpu/compositor/frame"
	"github.com/gogpu/compositor/prim"
)

// Context bundles the per-frame collaborators the builder reads and
// the shared output arenas it writes. All of it is frame local.
type Context struct {
	Tasks       frame.RenderTaskGraph
	GpuCache    frame.GpuCache
	Transforms  frame.TransformPalette
	SpatialTree frame.SpatialTree
	Resources   frame.ResourceCache
	Z           *frame.ZGenerator

	// Headers collects the primitive headers emitted this frame.
	Headers *PrimitiveHeaders

	// DevicePixelScale converts world units to device pixels.
	DevicePixelScale float32
}

// Options are the device capabilities and tuning the builder batches
// against.
type Options struct {
	// DualSourceBlending enables single-pass subpixel text and
	// dual-source mix blends.
	DualSourceBlending bool

	// AdvancedBlend enables advanced blend equations for mix-blend
	// compositing without a readback.
	AdvancedBlend bool

	Tuning compositor.Tuning
}

// BatchStats counts what one builder did, for frame debugging.
type BatchStats struct {
	// Batched is the number of instances pushed across all targets.
	Batched int

	// NotReadySkips counts draws skipped because a resource or task
	// output was not available this frame.
	NotReadySkips int

	// FullyClippedDrops counts segments dropped because their clip
	// proved them invisible.
	FullyClippedDrops int
}

// BatchBuilder walks resolved primitive lists and fills a set of
// per-target AlphaBatchBuilders. One builder run serves all targets at
// once; each target filters by its own visibility mask.
type BatchBuilder struct {
	batchers []*AlphaBatchBuilder

	// surfaceSpatial is the spatial node of the surface being built,
	// the ancestor side of every transform palette lookup.
	surfaceSpatial frame.SpatialNodeIndex

	opts  Options
	stats BatchStats

	glyphScratch frame.GlyphFetchScratch
}

// NewBatchBuilder returns a builder feeding the given targets.
func NewBatchBuilder(batchers []*AlphaBatchBuilder, surfaceSpatial frame.SpatialNodeIndex, opts Options) *BatchBuilder {
	return &BatchBuilder{
		batchers:       batchers,
		surfaceSpatial: surfaceSpatial,
		opts:           opts,
	}
}

// Stats returns what the builder has done so far.
func (b *BatchBuilder) Stats() BatchStats {
	return b.stats
}

// AddPrimListToBatch batches a primitive list in its stored order.
func (b *BatchBuilder) AddPrimListToBatch(prims []prim.Instance, ctx *Context) {
	for i := range prims {
		b.AddPrimToBatch(&prims[i], ctx)
	}
}

// primContext is the per-primitive state shared by the kind handlers.
type primContext struct {
	bounding      compositor.Rect
	transformID   frame.TransformPaletteID
	transformKind frame.TransformKind
	antialiased   bool
	z             frame.ZBufferID
}

// AddPrimToBatch batches one resolved instance. Instances that never
// went through the visibility pass are a contract violation; culled
// instances are ignored.
func (b *BatchBuilder) AddPrimToBatch(inst *prim.Instance, ctx *Context) {
	switch inst.Visibility.State {
	case prim.VisibilityUnset, prim.VisibilityCoarse:
		panic("batch: instance reached batching without visibility resolution")
	case prim.VisibilityCulled:
		return
	}

	if inst.Flags&prim.IsBackdrop != 0 {
		// An opaque backdrop covering its slice proves everything
		// batched before it invisible. The backdrop itself becomes the
		// target's clear color, so it emits nothing.
		for _, batcher := range b.batchers {
			if batcher.shouldDraw(inst) {
				batcher.ClearBatches()
			}
		}
		return
	}

	// ClipChainRect is picture-space. The opaque area heuristic compares
	// against a device-pixel threshold, so scale the bounding rect up
	// front. Overlap tests are unaffected since every rect scales alike.
	bounding := inst.Visibility.ClipChainRect.Scale(ctx.DevicePixelScale)
	if bounding.IsEmpty() {
		return
	}

	transformID := ctx.Transforms.GetID(inst.SpatialNode, b.surfaceSpatial)
	pc := primContext{
		bounding:      bounding,
		transformID:   transformID,
		transformKind: transformID.Kind(),
		z:             ctx.Z.Next(),
	}
	pc.antialiased = pc.transformKind == frame.TransformComplex ||
		inst.Flags&prim.AntialiasedZeroArea != 0

	switch kind := inst.Kind.(type) {
	case prim.Clear:
		b.addClear(inst, &pc, ctx)
	case *prim.Rectangle:
		b.addRectangle(inst, kind, &pc, ctx)
	case *prim.Image:
		b.addImage(inst, kind, &pc, ctx)
	case *prim.YuvImage:
		b.addYuvImage(inst, kind, &pc, ctx)
	case *prim.TextRun:
		b.addTextRun(inst, kind, &pc, ctx)
	case *prim.LinearGradient:
		b.addLinearGradient(inst, kind, &pc, ctx)
	case *prim.CachedLinearGradient:
		b.addTaskQuad(inst, kind.Task, kind.Segments, &pc, ctx)
	case *prim.RadialGradient:
		b.addTaskQuad(inst, kind.Task, kind.Segments, &pc, ctx)
	case *prim.ConicGradient:
		b.addTaskQuad(inst, kind.Task, kind.Segments, &pc, ctx)
	case *prim.NormalBorder:
		b.addNormalBorder(inst, kind, &pc, ctx)
	case *prim.ImageBorder:
		b.addImageBorder(inst, kind, &pc, ctx)
	case *prim.LineDecoration:
		b.addLineDecoration(inst, kind, &pc, ctx)
	case *prim.Backdrop:
		b.addTaskQuad(inst, kind.Task, nil, &pc, ctx)
	case *prim.PictureKind:
		b.addPicture(inst, kind.Picture, &pc, ctx)
	default:
		panic("batch: unknown primitive kind")
	}
}

// emit pushes one instance into every batcher that draws inst. make is
// called per batcher because instances embed the target task address.
func (b *BatchBuilder) emit(inst *prim.Instance, key BatchKey, features BatchFeatures, bounding compositor.Rect, z frame.ZBufferID, build func(*AlphaBatchBuilder) InstanceData) {
	for _, batcher := range b.batchers {
		if !batcher.shouldDraw(inst) {
			continue
		}
		batcher.push(key, features, bounding, z, build(batcher))
		b.stats.Batched++
	}
}

// addClear punches a hole: a solid quad that erases destination
// coverage. Always blended, never opaque.
func (b *BatchBuilder) addClear(inst *prim.Instance, pc *primContext, ctx *Context) {
	params := &brushBatchParams{
		kind:   SolidKind(),
		shared: segmentInstanceData{textures: EmptyBatchTextures()},
	}
	b.addSegmentedPrim(inst, nil, params, Blend(BlendPremultipliedDestOut), false, pc, ctx)
}

func (b *BatchBuilder) addRectangle(inst *prim.Instance, kind *prim.Rectangle, pc *primContext, ctx *Context) {
	params := &brushBatchParams{
		kind:   SolidKind(),
		shared: segmentInstanceData{textures: EmptyBatchTextures()},
	}
	b.addSegmentedPrim(inst, kind.Segments, params, Blend(BlendPremultipliedAlpha), kind.Color.IsOpaque(), pc, ctx)
}

func (b *BatchBuilder) addImage(inst *prim.Instance, kind *prim.Image, pc *primContext, ctx *Context) {
	alphaBlend := Blend(BlendPremultipliedAlpha)
	if kind.Alpha == prim.AlphaNonPremultiplied {
		alphaBlend = Blend(BlendAlpha)
	}

	if len(kind.VisibleTiles) == 0 {
		item, err := ctx.Resources.GetCachedImage(frame.ImageRequest{
			Key:       kind.Key,
			Rendering: kind.Rendering,
		})
		if err != nil {
			b.skipNotReady("image", err)
			return
		}
		params := &brushBatchParams{
			kind: ImageKind(item.Texture.BufferKind()),
			shared: segmentInstanceData{
				textures: PrimTextured(item.Texture, frame.InvalidTexture()),
				resource: ctx.GpuCache.GetAddress(item.UVRectHandle).AsInt(),
			},
		}
		b.addSegmentedPrim(inst, kind.Segments, params, alphaBlend, true, pc, ctx)
		return
	}

	b.addImageTiles(inst, kind, alphaBlend, pc, ctx)
}

// addImageTiles emits one instance per visible tile. Tile sub-rects
// are packed into shared per-frame GPU rows, up to a row's width of
// tiles per push, and each tile's header addresses its own block.
func (b *BatchBuilder) addImageTiles(inst *prim.Instance, kind *prim.Image, alphaBlend BlendMode, pc *primContext, ctx *Context) {
	maxPerRow := b.opts.Tuning.MaxVertexTextureWidth
	tiles := kind.VisibleTiles
	for start := 0; start < len(tiles); start += maxPerRow {
		chunk := tiles[start:min(start+maxPerRow, len(tiles))]

		blocks := make([]frame.GpuBlockData, len(chunk))
		for i, tile := range chunk {
			r := tile.LocalRect
			blocks[i] = frame.RectBlock(r.MinX, r.MinY, r.MaxX, r.MaxY)
		}
		base := ctx.GpuCache.GetAddress(ctx.GpuCache.PushPerFrameBlocks(blocks))

		for i := range chunk {
			tile := &chunk[i]
			item, err := ctx.Resources.GetCachedImage(frame.ImageRequest{
				Key:       kind.Key,
				Rendering: kind.Rendering,
				Tile:      tile.Tile,
				Tiled:     true,
			})
			if err != nil {
				b.skipNotReady("image tile", err)
				continue
			}
			clip, drop, ok := b.resolveClipEntry(inst.ClipTask(0), ctx)
			if drop || !ok {
				continue
			}

			header := ctx.Headers.Push(PrimitiveHeader{
				LocalRect:       tile.LocalRect,
				LocalClipRect:   inst.LocalClipRect,
				SpecificAddress: base.Offset(i),
				TransformID:     pc.transformID,
				ZID:             pc.z,
			})

			needsBlend := !inst.IsOpaque() || clip.masked ||
				(tile.EdgeFlags != prim.EdgeAANone && pc.transformKind == frame.TransformComplex)
			blend := Blend(BlendNone)
			if needsBlend {
				blend = alphaBlend
			}
			key := NewBatchKey(ImageKind(item.Texture.BufferKind()), blend, PrimTextured(item.Texture, clip.texture))
			features := brushFeatures(blend, pc.antialiased, clip.masked, true)
			resource := ctx.GpuCache.GetAddress(item.UVRectHandle).AsInt()

			b.emit(inst, key, features, pc.bounding, pc.z, func(batcher *AlphaBatchBuilder) InstanceData {
				return BrushInstance{
					Header:          header,
					RenderTask:      batcher.taskAddress,
					ClipTask:        clip.address,
					SegmentIndex:    invalidSegmentIndex,
					EdgeFlags:       tile.EdgeFlags,
					Flags:           BrushFlagSegmentRepeatX | BrushFlagSegmentRepeatY,
					ResourceAddress: resource,
				}.Encode()
			})
		}
	}
}

func (b *BatchBuilder) addYuvImage(inst *prim.Instance, kind *prim.YuvImage, pc *primContext, ctx *Context) {
	textures := EmptyTextureSet()
	var userData [4]int32
	for plane := 0; plane < kind.Format.PlaneCount(); plane++ {
		item, err := ctx.Resources.GetCachedImage(frame.ImageRequest{
			Key:       kind.Keys[plane],
			Rendering: kind.Rendering,
		})
		if err != nil {
			b.skipNotReady("yuv plane", err)
			return
		}
		textures.Colors[plane] = item.Texture
		userData[plane] = ctx.GpuCache.GetAddress(item.UVRectHandle).AsInt()
	}
	userData[3] = int32(kind.ColorSpace) | int32(kind.Range)<<8

	params := &brushBatchParams{
		kind:     YuvKind(kind.Format, kind.Depth, kind.ColorSpace, kind.Range),
		userData: userData,
		shared: segmentInstanceData{
			textures: BatchTextures{Input: textures, ClipMask: frame.InvalidTexture()},
		},
	}
	// Video frames have no alpha channel; blending is only forced by
	// masks, transforms or reduced instance opacity.
	b.addSegmentedPrim(inst, nil, params, Blend(BlendPremultipliedAlpha), true, pc, ctx)
}

func (b *BatchBuilder) addTextRun(inst *prim.Instance, kind *prim.TextRun, pc *primContext, ctx *Context) {
	clip, drop, ok := b.resolveClipEntry(inst.ClipTask(0), ctx)
	if drop || !ok {
		return
	}

	header := ctx.Headers.Push(PrimitiveHeader{
		LocalRect:       inst.LocalRect,
		LocalClipRect:   inst.LocalClipRect,
		SpecificAddress: ctx.GpuCache.GetAddress(inst.GpuHandle),
		TransformID:     pc.transformID,
		ZID:             pc.z,
		UserData: [4]int32{
			int32(math.Float32bits(kind.Offset.X)),
			int32(math.Float32bits(kind.Offset.Y)),
			0, 0,
		},
	})

	b.glyphScratch.Reset()
	ctx.Resources.FetchGlyphs(kind.Font, kind.Glyphs, &b.glyphScratch, ctx.GpuCache,
		func(texture frame.TextureSource, format frame.GlyphFormat, glyphs []frame.GlyphFetchResult) {
			blend := b.textBlendMode(kind.Font, format)
			key := NewBatchKey(TextRunKind(format), blend, PrimTextured(texture, clip.texture))
			features := brushFeatures(blend, pc.antialiased, clip.masked, false)

			for _, batcher := range b.batchers {
				if !batcher.shouldDraw(inst) {
					continue
				}
				batch := batcher.listFor(key).SetParamsAndGetBatch(key, features, pc.bounding, pc.z)
				for _, g := range glyphs {
					batch.Push(GlyphInstance{
						Header:     header,
						RenderTask: batcher.taskAddress,
						ClipTask:   clip.address,
						IndexInRun: int32(g.IndexInRun),
						UVRect:     g.UVRectAddress,
					}.Encode())
					b.stats.Batched++
				}
			}
		})
}

// textBlendMode picks how a glyph group blends. Color bitmap glyphs
// carry their own color and blend like images. Subpixel glyphs use
// dual-source blending when the device has it and fall back to the
// multi-pass background-color emulation otherwise.
func (b *BatchBuilder) textBlendMode(font frame.FontInstance, format frame.GlyphFormat) BlendMode {
	if format.IsColor() || !font.UseSubpixelAA {
		return Blend(BlendPremultipliedAlpha)
	}
	if b.opts.DualSourceBlending {
		return Blend(BlendSubpixelDualSource)
	}
	return Blend(BlendSubpixelWithBgColor)
}

func (b *BatchBuilder) addLinearGradient(inst *prim.Instance, kind *prim.LinearGradient, pc *primContext, ctx *Context) {
	params := &brushBatchParams{
		kind: LinearGradientKind(),
		userData: [4]int32{
			ctx.GpuCache.GetAddress(kind.StopsHandle).AsInt(),
			0, 0, 0,
		},
		shared: segmentInstanceData{textures: EmptyBatchTextures()},
	}
	// Gradient stops may carry translucency the scene cannot see
	// through the handle, so gradients never batch opaque.
	b.addSegmentedPrim(inst, kind.Segments, params, Blend(BlendPremultipliedAlpha), false, pc, ctx)
}

// addTaskQuad draws the output of a render task as a textured quad,
// the common shape of cached gradients and backdrop captures.
func (b *BatchBuilder) addTaskQuad(inst *prim.Instance, task frame.RenderTaskID, segments []prim.Segment, pc *primContext, ctx *Context) {
	uv, texture, ok := ctx.Tasks.ResolveLocation(task)
	if !ok {
		b.skipNotReady("task output", frame.ErrNotReady)
		return
	}
	params := &brushBatchParams{
		kind: ImageKind(texture.BufferKind()),
		shared: segmentInstanceData{
			textures: PrimTextured(texture, frame.InvalidTexture()),
			resource: uv.AsInt(),
		},
	}
	b.addSegmentedPrim(inst, segments, params, Blend(BlendPremultipliedAlpha), false, pc, ctx)
}

func (b *BatchBuilder) addNormalBorder(inst *prim.Instance, kind *prim.NormalBorder, pc *primContext, ctx *Context) {
	if len(kind.EdgeTasks) != len(kind.Segments) {
		panic("batch: border edge tasks do not match segments")
	}
	perSegment := make([]segmentInstanceData, len(kind.Segments))
	for i, task := range kind.EdgeTasks {
		uv, texture, ok := ctx.Tasks.ResolveLocation(task)
		if !ok {
			b.skipNotReady("border segment", frame.ErrNotReady)
			return
		}
		perSegment[i] = segmentInstanceData{
			textures: PrimTextured(texture, frame.InvalidTexture()),
			resource: uv.AsInt(),
		}
	}
	params := &brushBatchParams{
		kind:       ImageKind(frame.BufferTexture2D),
		flags:      BrushFlagSegmentRelative,
		perSegment: perSegment,
	}
	b.addSegmentedPrim(inst, kind.Segments, params, Blend(BlendPremultipliedAlpha), false, pc, ctx)
}

func (b *BatchBuilder) addImageBorder(inst *prim.Instance, kind *prim.ImageBorder, pc *primContext, ctx *Context) {
	item, err := ctx.Resources.GetCachedImage(kind.Request)
	if err != nil {
		b.skipNotReady("image border", err)
		return
	}
	params := &brushBatchParams{
		kind:  ImageKind(item.Texture.BufferKind()),
		flags: BrushFlagSegmentRelative | BrushFlagSegmentRepeatX | BrushFlagSegmentRepeatY,
		shared: segmentInstanceData{
			textures: PrimTextured(item.Texture, frame.InvalidTexture()),
			resource: ctx.GpuCache.GetAddress(item.UVRectHandle).AsInt(),
		},
	}
	b.addSegmentedPrim(inst, kind.Segments, params, Blend(BlendPremultipliedAlpha), false, pc, ctx)
}

func (b *BatchBuilder) addLineDecoration(inst *prim.Instance, kind *prim.LineDecoration, pc *primContext, ctx *Context) {
	if !kind.CacheTask.IsValid() {
		params := &brushBatchParams{
			kind:   SolidKind(),
			shared: segmentInstanceData{textures: EmptyBatchTextures()},
		}
		b.addSegmentedPrim(inst, nil, params, Blend(BlendPremultipliedAlpha), kind.Color.IsOpaque(), pc, ctx)
		return
	}
	uv, texture, ok := ctx.Tasks.ResolveLocation(kind.CacheTask)
	if !ok {
		b.skipNotReady("line decoration pattern", frame.ErrNotReady)
		return
	}
	params := &brushBatchParams{
		kind:  ImageKind(texture.BufferKind()),
		flags: BrushFlagSegmentRepeatX | BrushFlagSegmentRepeatY,
		shared: segmentInstanceData{
			textures: PrimTextured(texture, frame.InvalidTexture()),
			resource: uv.AsInt(),
		},
	}
	b.addSegmentedPrim(inst, nil, params, Blend(BlendPremultipliedAlpha), false, pc, ctx)
}

// skipNotReady records and logs a draw skipped for a missing resource.
// Skipping is recoverable: the next frame retries with the resource
// hopefully resident.
func (b *BatchBuilder) skipNotReady(what string, err error) {
	b.stats.NotReadySkips++
	compositor.Logger().Warn("batch: resource not ready, skipping draw",
		"what", what, "err", err)
}
