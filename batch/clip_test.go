// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import (
	"testing"

	compositor "github.com/gogpu/compositor"
	"github.com/gogpu/compositor/frame"
	"github.com/gogpu/compositor/prim"
)

func rectClipNode(r compositor.Rect, mode prim.ClipMode) prim.ClipNode {
	return prim.ClipNode{
		Kind:        prim.ClipRect{Rect: r, Mode: mode},
		SpatialNode: 1,
	}
}

func addChain(t *testing.T, c *ClipBatcher, nodes []prim.ClipNode, taskRect compositor.IntRect, ctx *Context) bool {
	t.Helper()
	return c.AddClipChain(nodes, 2, taskRect, compositor.Point{}, compositor.Point{}, 1, ctx)
}

func TestFirstClipGoesToPrimary(t *testing.T) {
	c := NewClipBatcher(false, compositor.DefaultTuning())
	ctx := newTestContext(nil, nil)
	nodes := []prim.ClipNode{
		rectClipNode(compositor.NewRect(0, 0, 50, 50), prim.ClipIn),
		rectClipNode(compositor.NewRect(10, 10, 30, 30), prim.ClipOut),
	}

	needsClear := addChain(t, c, nodes, compositor.NewIntRect(0, 0, 64, 64), ctx)

	if len(c.Primary.SlowRects) != 1 {
		t.Errorf("primary rects = %d, want 1: the first clip writes with blending off", len(c.Primary.SlowRects))
	}
	if len(c.Secondary.SlowRects) != 1 {
		t.Errorf("secondary rects = %d, want 1: further clips multiply", len(c.Secondary.SlowRects))
	}
	if needsClear {
		t.Error("a covering first clip should make the clear unnecessary")
	}
}

func TestFastClearsRouteEverythingSecondary(t *testing.T) {
	c := NewClipBatcher(true, compositor.DefaultTuning())
	ctx := newTestContext(nil, nil)
	nodes := []prim.ClipNode{
		rectClipNode(compositor.NewRect(0, 0, 50, 50), prim.ClipIn),
	}

	needsClear := addChain(t, c, nodes, compositor.NewIntRect(0, 0, 64, 64), ctx)

	if len(c.Primary.SlowRects) != 0 {
		t.Error("with fast clears nothing goes to the primary list")
	}
	if len(c.Secondary.SlowRects) != 1 {
		t.Errorf("secondary rects = %d, want 1", len(c.Secondary.SlowRects))
	}
	if !needsClear {
		t.Error("fast-clear devices always clear the task first")
	}
}

func TestSameCoordSystemRectClipSkipped(t *testing.T) {
	c := NewClipBatcher(false, compositor.DefaultTuning())
	ctx := newTestContext(nil, nil)
	node := rectClipNode(compositor.NewRect(0, 0, 50, 50), prim.ClipIn)
	node.Flags = prim.ClipSameCoordSystem

	needsClear := addChain(t, c, []prim.ClipNode{node}, compositor.NewIntRect(0, 0, 64, 64), ctx)

	if !c.Primary.IsEmpty() || !c.Secondary.IsEmpty() {
		t.Error("an axis-aligned same-system rect clip adds no instances")
	}
	if !needsClear {
		t.Error("with nothing drawn the mask must be cleared to full coverage")
	}
}

func TestRoundedRectFastPath(t *testing.T) {
	c := NewClipBatcher(false, compositor.DefaultTuning())
	ctx := newTestContext(nil, nil)
	node := prim.ClipNode{
		Kind: prim.ClipRoundedRect{
			Rect:  compositor.NewRect(0, 0, 50, 50),
			Radii: prim.BorderRadii{TopLeft: compositor.Point{X: 4, Y: 4}},
		},
		SpatialNode: 1,
		Flags:       prim.ClipUseFastPath,
	}

	addChain(t, c, []prim.ClipNode{node}, compositor.NewIntRect(0, 0, 64, 64), ctx)

	if len(c.Primary.FastRects) != 1 {
		t.Errorf("fast rects = %d, want 1", len(c.Primary.FastRects))
	}
	if len(c.Primary.SlowRects) != 0 {
		t.Error("fast path clips must not land in the slow list")
	}
}

func TestTiledClipSkipsInteriorTiles(t *testing.T) {
	tuning := compositor.DefaultTuning()
	c := NewClipBatcher(false, tuning)
	ctx := newTestContext(nil, nil)

	// A 512x512 task crosses the tiling threshold. The clip rect
	// covers the middle region, so tiles strictly inside it write
	// nothing and rely on the clear.
	taskRect := compositor.NewIntRect(0, 0, 512, 512)
	clipRect := compositor.NewRect(100, 100, 312, 312)
	nodes := []prim.ClipNode{rectClipNode(clipRect, prim.ClipIn)}

	needsClear := addChain(t, c, nodes, taskRect, ctx)

	total := int(taskRect.Width()/tuning.ClipTileSize) * int(taskRect.Height()/tuning.ClipTileSize)
	got := len(c.Primary.SlowRects)
	if got == 0 || got >= total {
		t.Errorf("got %d tile instances out of %d tiles, want some skipped", got, total)
	}
	if !needsClear {
		t.Error("skipped interior tiles need the task cleared to one")
	}

	// The fully interior tile at (128..256, 128..256) must be absent.
	for _, inst := range c.Primary.SlowRects {
		if inst.Common.SubRect.MinX == 128 && inst.Common.SubRect.MinY == 128 {
			t.Error("interior tile should have been skipped")
		}
	}
}

func TestTiledClipRequiresAxisAlignedTransform(t *testing.T) {
	c := NewClipBatcher(false, compositor.DefaultTuning())
	ctx := newTestContext(nil, nil)
	ctx.SpatialTree = &stubSpatial{aligned: false}

	taskRect := compositor.NewIntRect(0, 0, 512, 512)
	nodes := []prim.ClipNode{rectClipNode(compositor.NewRect(100, 100, 300, 300), prim.ClipIn)}
	addChain(t, c, nodes, taskRect, ctx)

	if len(c.Primary.SlowRects) != 1 {
		t.Errorf("got %d instances, want 1: rotated clips draw untiled", len(c.Primary.SlowRects))
	}
}

func TestSmallTaskNeverTiles(t *testing.T) {
	c := NewClipBatcher(false, compositor.DefaultTuning())
	ctx := newTestContext(nil, nil)

	taskRect := compositor.NewIntRect(0, 0, 64, 64)
	nodes := []prim.ClipNode{rectClipNode(compositor.NewRect(0, 0, 8, 8), prim.ClipIn)}
	addChain(t, c, nodes, taskRect, ctx)

	if len(c.Primary.SlowRects) != 1 {
		t.Errorf("got %d instances, want 1", len(c.Primary.SlowRects))
	}
}

func TestImageMaskNotReadyIgnored(t *testing.T) {
	c := NewClipBatcher(false, compositor.DefaultTuning())
	ctx := newTestContext(&stubResources{}, nil)

	node := prim.ClipNode{
		Kind: &prim.ClipImage{
			Request: frame.ImageRequest{Key: 42},
			Rect:    compositor.NewRect(0, 0, 64, 64),
		},
		SpatialNode: 1,
	}
	needsClear := addChain(t, c, []prim.ClipNode{node}, compositor.NewIntRect(0, 0, 64, 64), ctx)

	if !c.Primary.IsEmpty() || !c.Secondary.IsEmpty() {
		t.Error("a missing mask image must not emit instances")
	}
	if !needsClear {
		t.Error("with nothing drawn the task must clear to one")
	}
}

func TestImageMaskGroupsByTexture(t *testing.T) {
	c := NewClipBatcher(false, compositor.DefaultTuning())
	res := &stubResources{images: map[frame.ImageKey]frame.CacheItem{
		42: {Texture: frame.CacheTexture(5)},
	}}
	ctx := newTestContext(res, nil)

	node := prim.ClipNode{
		Kind: &prim.ClipImage{
			Request: frame.ImageRequest{Key: 42},
			Rect:    compositor.NewRect(0, 0, 64, 64),
			VisibleTiles: []prim.VisibleTile{
				{Tile: frame.TileOffset{X: 0}, LocalRect: compositor.NewRect(0, 0, 32, 64)},
				{Tile: frame.TileOffset{X: 1}, LocalRect: compositor.NewRect(32, 0, 32, 64)},
			},
		},
		SpatialNode: 1,
	}
	addChain(t, c, []prim.ClipNode{node}, compositor.NewIntRect(0, 0, 64, 64), ctx)

	insts := c.Primary.Images[frame.CacheTexture(5)]
	if len(insts) != 2 {
		t.Fatalf("got %d image mask instances, want 2", len(insts))
	}
	if insts[1].TileRect.MinX != 32 {
		t.Errorf("second tile rect = %+v", insts[1].TileRect)
	}
}

func TestBoxShadowGroupsByTexture(t *testing.T) {
	c := NewClipBatcher(false, compositor.DefaultTuning())
	tasks := &stubTasks{textures: map[frame.RenderTaskID]frame.TextureSource{
		6: frame.CacheTexture(60),
	}}
	ctx := newTestContext(nil, tasks)

	node := prim.ClipNode{
		Kind: prim.ClipBoxShadow{
			Task:         6,
			StretchModeX: prim.StretchModeStretch,
			StretchModeY: prim.StretchModeSimple,
			ShadowRect:   compositor.NewRect(0, 0, 40, 40),
		},
		SpatialNode: 1,
	}
	addChain(t, c, []prim.ClipNode{node}, compositor.NewIntRect(0, 0, 64, 64), ctx)

	insts := c.Primary.BoxShadows[frame.CacheTexture(60)]
	if len(insts) != 1 {
		t.Fatalf("got %d box shadow instances, want 1", len(insts))
	}
	if insts[0].StretchModeY != prim.StretchModeSimple {
		t.Errorf("stretch mode = %v", insts[0].StretchModeY)
	}
}
