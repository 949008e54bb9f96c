// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import (
	compositor "github.com/gogpu/compositor"
	"github.com/gogpu/compositor/frame"
	"github.com/gogpu/compositor/prim"
)

// AlphaBatchContainer is the finished batch output of one render
// target region: the opaque batches drawn first with depth testing,
// then the blended batches in order.
type AlphaBatchContainer struct {
	OpaqueBatches []*PrimitiveBatch
	AlphaBatches  []*PrimitiveBatch

	// TaskScissorRect restricts drawing to a sub-rect of the target,
	// when set.
	TaskScissorRect *compositor.IntRect

	// TaskRect is the device rect the batches cover, grown as builders
	// merge in.
	TaskRect compositor.IntRect
}

// NewAlphaBatchContainer returns an empty container with an optional
// scissor.
func NewAlphaBatchContainer(scissor *compositor.IntRect) *AlphaBatchContainer {
	return &AlphaBatchContainer{TaskScissorRect: scissor}
}

// IsEmpty reports whether the container holds no batches.
func (c *AlphaBatchContainer) IsEmpty() bool {
	return len(c.OpaqueBatches) == 0 && len(c.AlphaBatches) == 0
}

// mergeFrom absorbs a finished builder's batches. Opaque batches merge
// into any compatible existing batch. Alpha batches only merge
// monotonically: once a batch merges at some position, later batches
// may not merge into anything before it, preserving relative order
// between the two streams.
func (c *AlphaBatchContainer) mergeFrom(b *AlphaBatchBuilder, taskRect compositor.IntRect) {
	c.TaskRect = unionIntRect(c.TaskRect, taskRect)

	for _, other := range b.opaque.Batches {
		merged := false
		for _, existing := range c.OpaqueBatches {
			if existing.Key.IsCompatibleWith(other.Key) {
				existing.merge(other)
				merged = true
				break
			}
		}
		if !merged {
			c.OpaqueBatches = append(c.OpaqueBatches, other)
		}
	}

	minBatchIndex := 0
	for _, other := range b.alpha.Batches {
		merged := false
		for i := minBatchIndex; i < len(c.AlphaBatches); i++ {
			if c.AlphaBatches[i].Key.IsCompatibleWith(other.Key) {
				c.AlphaBatches[i].merge(other)
				minBatchIndex = i
				merged = true
				break
			}
		}
		if !merged {
			c.AlphaBatches = append(c.AlphaBatches, other)
			minBatchIndex = len(c.AlphaBatches) - 1
		}
	}
}

func unionIntRect(a, b compositor.IntRect) compositor.IntRect {
	if a.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return a
	}
	return compositor.IntRect{
		MinX: min(a.MinX, b.MinX),
		MinY: min(a.MinY, b.MinY),
		MaxX: max(a.MaxX, b.MaxX),
		MaxY: max(a.MaxY, b.MaxY),
	}
}

// AlphaBatchBuilder accumulates the batches of one render target. A
// frame may run several builders over the same primitive lists, one
// per dirty region, each filtering by its visibility mask.
type AlphaBatchBuilder struct {
	alpha  *AlphaBatchList
	opaque *OpaqueBatchList

	// RenderTask is the target render task the builder fills.
	RenderTask frame.RenderTaskID

	// taskAddress is RenderTask's pass-local address, baked into every
	// emitted instance.
	taskAddress frame.RenderTaskAddress

	// visMask filters instances to this builder's dirty regions.
	visMask prim.VisibilityMask
}

// NewAlphaBatchBuilder returns a builder for one target. screenSize
// sets the opaque area threshold at a quarter of the screen.
func NewAlphaBatchBuilder(task frame.RenderTaskID, taskAddress frame.RenderTaskAddress, visMask prim.VisibilityMask, screenSize compositor.IntRect, breakAdvancedBlend bool, tuning compositor.Tuning) *AlphaBatchBuilder {
	threshold := float32(screenSize.Area()) * tuning.OpaqueAreaFractionForNewBatch
	return &AlphaBatchBuilder{
		alpha:       NewAlphaBatchList(breakAdvancedBlend, tuning),
		opaque:      NewOpaqueBatchList(threshold, tuning),
		RenderTask:  task,
		taskAddress: taskAddress,
		visMask:     visMask,
	}
}

// shouldDraw reports whether an instance touches this builder's dirty
// regions.
func (b *AlphaBatchBuilder) shouldDraw(inst *prim.Instance) bool {
	return inst.Visibility.Mask&b.visMask != 0
}

// ClearBatches drops everything accumulated so far. An opaque backdrop
// covering the target proves prior content invisible.
func (b *AlphaBatchBuilder) ClearBatches() {
	b.alpha.Clear()
	b.opaque.Clear()
}

// listFor routes a key to the opaque or alpha list by its blend mode.
func (b *AlphaBatchBuilder) listFor(key BatchKey) batchLister {
	if key.Blend.DisablesBlending() {
		return b.opaque
	}
	return b.alpha
}

// push adds one instance under key to the right list.
func (b *AlphaBatchBuilder) push(key BatchKey, features BatchFeatures, boundingRect compositor.Rect, z frame.ZBufferID, inst InstanceData) {
	b.listFor(key).SetParamsAndGetBatch(key, features, boundingRect, z).Push(inst)
}

// batchLister is the shared selection surface of the two list kinds.
type batchLister interface {
	SetParamsAndGetBatch(key BatchKey, features BatchFeatures, boundingRect compositor.Rect, z frame.ZBufferID) *PrimitiveBatch
}

// Finalize folds the builder's batches into container, reversing
// opaque batches for early-z. The builder must not be reused after.
func (b *AlphaBatchBuilder) Finalize(container *AlphaBatchContainer, taskRect compositor.IntRect) {
	b.opaque.Finalize()
	container.mergeFrom(b, taskRect)
}
