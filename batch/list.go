// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import (
	compositor "github.com/gogpu/compositor"
	"github.com/gogpu/compositor/frame"
)

// PrimitiveBatch is one draw call in the making: a key, the features
// its instances have accumulated, and the packed instances themselves.
type PrimitiveBatch struct {
	Key       BatchKey
	Features  BatchFeatures
	Instances []InstanceData
}

func newPrimitiveBatch(key BatchKey, capacity int) *PrimitiveBatch {
	return &PrimitiveBatch{
		Key:       key,
		Instances: make([]InstanceData, 0, capacity),
	}
}

// Push appends one instance.
func (b *PrimitiveBatch) Push(inst InstanceData) {
	b.Instances = append(b.Instances, inst)
}

// accumulate widens the batch's key textures and features for an
// instance added under key.
func (b *PrimitiveBatch) accumulate(key BatchKey, features BatchFeatures) {
	b.Key.Textures.Merge(key.Textures)
	b.Features |= features
}

// merge absorbs another compatible batch's instances.
func (b *PrimitiveBatch) merge(other *PrimitiveBatch) {
	b.Instances = append(b.Instances, other.Instances...)
	b.Key.Textures.Merge(other.Key.Textures)
	b.Features |= other.Features
}

// AlphaBatchList builds the back-to-front blended batches of one
// target. Order between overlapping instances is load bearing, so a
// new instance may only join a batch when no later batch's content
// overlaps it.
type AlphaBatchList struct {
	Batches []*PrimitiveBatch

	// rects runs parallel to Batches, tracking each batch's coverage.
	rects []BatchRects

	current            int
	currentZ           frame.ZBufferID
	breakAdvancedBlend bool

	textRunReserve int
	defaultReserve int
}

// NewAlphaBatchList returns an empty list. breakAdvancedBlend disables
// batch reuse for advanced blend modes, for drivers whose advanced
// blend state cannot span draws with a barrier in between.
func NewAlphaBatchList(breakAdvancedBlend bool, tuning compositor.Tuning) *AlphaBatchList {
	return &AlphaBatchList{
		current:            -1,
		currentZ:           frame.InvalidZBufferID,
		breakAdvancedBlend: breakAdvancedBlend,
		textRunReserve:     tuning.TextRunInstanceReserve,
		defaultReserve:     tuning.DefaultInstanceReserve,
	}
}

// SetParamsAndGetBatch selects the batch an instance with the given
// key, bounding rect and z id joins, creating one when no existing
// batch is safe, and returns it for the caller to push instances into.
// Consecutive instances with the same z id and a compatible key take a
// fast path straight to the current batch.
func (l *AlphaBatchList) SetParamsAndGetBatch(key BatchKey, features BatchFeatures, boundingRect compositor.Rect, z frame.ZBufferID) *PrimitiveBatch {
	if l.current < 0 || z != l.currentZ || !l.Batches[l.current].Key.IsCompatibleWith(key) {
		selected := -1
		switch {
		case key.Blend.Kind == BlendSubpixelWithBgColor:
			// Multi-pass subpixel batches re-read the framebuffer, so
			// an overlap with any later batch rules out reuse, even a
			// batch this key could never join.
			for i := len(l.Batches) - 1; i >= 0; i-- {
				if l.rects[i].Intersects(boundingRect) {
					break
				}
				if l.Batches[i].Key.IsCompatibleWith(key) {
					selected = i
					break
				}
			}
		case key.Blend.Kind == BlendAdvanced && l.breakAdvancedBlend:
			// Never reuse, each advanced blend run gets its own batch.
		default:
			// Walk backward. A compatible batch can be reused even if
			// it overlaps: joining it preserves order within the
			// batch. An incompatible overlapping batch ends the walk,
			// reaching past it would reorder overlapping pixels.
			for i := len(l.Batches) - 1; i >= 0; i-- {
				if l.Batches[i].Key.IsCompatibleWith(key) {
					selected = i
					break
				}
				if l.rects[i].Intersects(boundingRect) {
					break
				}
			}
		}
		if selected < 0 {
			reserve := l.defaultReserve
			if key.Kind.Tag == KindTextRun {
				reserve = l.textRunReserve
			}
			l.Batches = append(l.Batches, newPrimitiveBatch(key, reserve))
			l.rects = append(l.rects, NewBatchRects())
			selected = len(l.Batches) - 1
		}
		l.current = selected
		l.currentZ = z
		l.rects[selected].AddRect(boundingRect)
	} else {
		l.rects[l.current].AddRect(boundingRect)
	}

	b := l.Batches[l.current]
	b.accumulate(key, features)
	return b
}

// IsEmpty reports whether no batches were created.
func (l *AlphaBatchList) IsEmpty() bool {
	return len(l.Batches) == 0
}

// Clear drops all accumulated batches.
func (l *AlphaBatchList) Clear() {
	l.Batches = l.Batches[:0]
	l.rects = l.rects[:0]
	l.current = -1
	l.currentZ = frame.InvalidZBufferID
}

// OpaqueBatchList builds the front-to-back opaque batches of one
// target. Depth testing makes draw order between batches irrelevant
// for correctness, so selection is purely a key match bounded by a
// lookback window. Finalize reverses each batch so the GPU still sees
// front-to-back instances for early-z rejection.
type OpaqueBatchList struct {
	Batches []*PrimitiveBatch

	current       int
	lookback      int
	areaThreshold float32
	reserve       int
	finalized     bool
}

// NewOpaqueBatchList returns an empty list. areaThreshold is the
// device-pixel area above which a primitive is large enough that only
// the most recent batch is worth checking.
func NewOpaqueBatchList(areaThreshold float32, tuning compositor.Tuning) *OpaqueBatchList {
	return &OpaqueBatchList{
		current:       -1,
		lookback:      tuning.OpaqueLookbackCount,
		areaThreshold: areaThreshold,
		reserve:       tuning.DefaultInstanceReserve,
	}
}

// SetParamsAndGetBatch selects or creates the batch for an instance
// with the given key and device-space bounding rect.
func (l *OpaqueBatchList) SetParamsAndGetBatch(key BatchKey, features BatchFeatures, boundingRect compositor.Rect, _ frame.ZBufferID) *PrimitiveBatch {
	if l.current < 0 || !l.Batches[l.current].Key.IsCompatibleWith(key) {
		selected := -1
		if boundingRect.Area() > l.areaThreshold {
			// A large primitive probably breaks batching anyway, so
			// only the newest batch is a candidate.
			if n := len(l.Batches); n > 0 && l.Batches[n-1].Key.IsCompatibleWith(key) {
				selected = n - 1
			}
		} else {
			limit := len(l.Batches) - l.lookback
			for i := len(l.Batches) - 1; i >= 0 && i >= limit; i-- {
				if l.Batches[i].Key.IsCompatibleWith(key) {
					selected = i
					break
				}
			}
		}
		if selected < 0 {
			l.Batches = append(l.Batches, newPrimitiveBatch(key, l.reserve))
			selected = len(l.Batches) - 1
		}
		l.current = selected
	}

	b := l.Batches[l.current]
	b.accumulate(key, features)
	return b
}

// IsEmpty reports whether no batches were created.
func (l *OpaqueBatchList) IsEmpty() bool {
	return len(l.Batches) == 0
}

// Clear drops all accumulated batches.
func (l *OpaqueBatchList) Clear() {
	l.Batches = l.Batches[:0]
	l.current = -1
	l.finalized = false
}

// Finalize reverses each batch's instances so the front-to-back
// emission order becomes the draw order within the batch. It must run
// exactly once, after the last instance was added.
func (l *OpaqueBatchList) Finalize() {
	if l.finalized {
		panic("batch: opaque list finalized twice")
	}
	l.finalized = true
	for _, b := range l.Batches {
		for i, j := 0, len(b.Instances)-1; i < j; i, j = i+1, j-1 {
			b.Instances[i], b.Instances[j] = b.Instances[j], b.Instances[i]
		}
	}
}
