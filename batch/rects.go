// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import compositor "github.com/gogpu/compositor"

// BatchRects tracks the area a batch's instances cover, for the
// overlap tests that keep blended content correctly ordered. It starts
// as a single union rect and demotes itself to an explicit rect list
// once the union's empty space outgrows the rects it covers. The
// answer may be a false positive (claiming overlap where there is
// none) but never a false negative, so ordering stays sound either
// way.
type BatchRects struct {
	// batch is the union of every added rect.
	batch compositor.Rect

	// items holds the individual rects once the union stopped being a
	// tight enough approximation. Nil while the union suffices.
	items []compositor.Rect
}

// NewBatchRects returns an empty tracker.
func NewBatchRects() BatchRects {
	return BatchRects{batch: compositor.EmptyRect()}
}

// AddRect records the bounding rect of a newly added instance.
func (r *BatchRects) AddRect(rect compositor.Rect) {
	if r.batch.IsEmpty() {
		r.batch = rect
		return
	}
	union := r.batch.Union(rect)
	switch {
	case r.items != nil:
		r.items = append(r.items, rect)
	case r.batch.Area()+rect.Area() > union.Area():
		// The union is still a tight cover, keep approximating.
	default:
		// The union grew faster than the content. From here on track
		// exact rects, seeded with the union accumulated so far.
		r.items = make([]compositor.Rect, 0, 16)
		r.items = append(r.items, r.batch, rect)
	}
	r.batch = union
}

// Intersects reports whether rect may overlap any recorded rect.
func (r *BatchRects) Intersects(rect compositor.Rect) bool {
	if !r.batch.Intersects(rect) {
		return false
	}
	if r.items == nil {
		return true
	}
	for _, item := range r.items {
		if item.Intersects(rect) {
			return true
		}
	}
	return false
}
