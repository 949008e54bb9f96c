// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import (
	"testing"

	compositor "github.com/gogpu/compositor"
	"github.com/gogpu/compositor/frame"
	"github.com/gogpu/compositor/prim"
)

func testBuilder(task frame.RenderTaskID) *AlphaBatchBuilder {
	screen := compositor.IntRect{MinX: 0, MinY: 0, MaxX: 1920, MaxY: 1080}
	return NewAlphaBatchBuilder(task, frame.RenderTaskAddress(task), prim.VisibilityMaskAll, screen, false, compositor.DefaultTuning())
}

func TestContainerMergesOpaqueByKey(t *testing.T) {
	key := NewBatchKey(SolidKind(), Blend(BlendNone), EmptyBatchTextures())
	taskRect := compositor.NewIntRect(0, 0, 100, 100)

	b1 := testBuilder(1)
	b1.push(key, 0, compositor.NewRect(0, 0, 10, 10), 1, InstanceData{})
	b2 := testBuilder(2)
	b2.push(key, 0, compositor.NewRect(50, 50, 10, 10), 1, InstanceData{})

	c := NewAlphaBatchContainer(nil)
	b1.Finalize(c, taskRect)
	b2.Finalize(c, compositor.NewIntRect(100, 0, 100, 100))

	if len(c.OpaqueBatches) != 1 {
		t.Fatalf("got %d opaque batches, want 1", len(c.OpaqueBatches))
	}
	if n := len(c.OpaqueBatches[0].Instances); n != 2 {
		t.Errorf("merged batch has %d instances, want 2", n)
	}
	if c.TaskRect.MaxX != 200 {
		t.Errorf("task rect should union, MaxX = %d", c.TaskRect.MaxX)
	}
}

func TestContainerAlphaMergeIsMonotonic(t *testing.T) {
	keyA := NewBatchKey(SolidKind(), Blend(BlendPremultipliedAlpha), EmptyBatchTextures())
	keyB := NewBatchKey(ImageKind(frame.BufferTexture2D), Blend(BlendPremultipliedAlpha), EmptyBatchTextures())
	taskRect := compositor.NewIntRect(0, 0, 100, 100)

	// First builder produces order [A, B].
	b1 := testBuilder(1)
	b1.push(keyA, 0, compositor.NewRect(0, 0, 10, 10), 1, InstanceData{0: 1})
	b1.push(keyB, 0, compositor.NewRect(5, 5, 10, 10), 2, InstanceData{0: 2})

	// Second builder produces order [B, A]. Its B merges into the
	// existing B; its A must then not merge into the A before it, or
	// the second builder's A would draw under its B.
	b2 := testBuilder(2)
	b2.push(keyB, 0, compositor.NewRect(0, 0, 10, 10), 1, InstanceData{0: 3})
	b2.push(keyA, 0, compositor.NewRect(5, 5, 10, 10), 2, InstanceData{0: 4})

	c := NewAlphaBatchContainer(nil)
	b1.Finalize(c, taskRect)
	b2.Finalize(c, taskRect)

	if len(c.AlphaBatches) != 3 {
		t.Fatalf("got %d alpha batches, want 3", len(c.AlphaBatches))
	}
	if c.AlphaBatches[0].Key.Kind.Tag != KindSolid {
		t.Error("batch 0 should be the first builder's A")
	}
	if c.AlphaBatches[1].Key.Kind.Tag != KindImage || len(c.AlphaBatches[1].Instances) != 2 {
		t.Error("batch 1 should be the merged B with both builders' instances")
	}
	if c.AlphaBatches[2].Key.Kind.Tag != KindSolid {
		t.Error("the second builder's A should append, not merge backward")
	}
}

func TestBuilderRoutesByBlendMode(t *testing.T) {
	b := testBuilder(1)
	opaque := NewBatchKey(SolidKind(), Blend(BlendNone), EmptyBatchTextures())
	alpha := NewBatchKey(SolidKind(), Blend(BlendPremultipliedAlpha), EmptyBatchTextures())

	b.push(opaque, 0, compositor.NewRect(0, 0, 10, 10), 1, InstanceData{})
	b.push(alpha, 0, compositor.NewRect(0, 0, 10, 10), 2, InstanceData{})

	if b.opaque.IsEmpty() {
		t.Error("blend-off key should land in the opaque list")
	}
	if b.alpha.IsEmpty() {
		t.Error("blended key should land in the alpha list")
	}
}

func TestBuilderClearBatches(t *testing.T) {
	b := testBuilder(1)
	b.push(NewBatchKey(SolidKind(), Blend(BlendNone), EmptyBatchTextures()), 0, compositor.NewRect(0, 0, 10, 10), 1, InstanceData{})
	b.push(NewBatchKey(SolidKind(), Blend(BlendPremultipliedAlpha), EmptyBatchTextures()), 0, compositor.NewRect(0, 0, 10, 10), 2, InstanceData{})

	b.ClearBatches()
	if !b.opaque.IsEmpty() || !b.alpha.IsEmpty() {
		t.Error("clear should empty both lists")
	}
}
