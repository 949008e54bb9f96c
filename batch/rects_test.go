// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import (
	"math/rand"
	"testing"

	compositor "github.com/gogpu/compositor"
)

func TestBatchRectsEmpty(t *testing.T) {
	r := NewBatchRects()
	if r.Intersects(compositor.NewRect(0, 0, 100, 100)) {
		t.Error("empty tracker must not intersect anything")
	}
}

func TestBatchRectsUnionStaysTight(t *testing.T) {
	r := NewBatchRects()
	r.AddRect(compositor.NewRect(0, 0, 10, 10))
	r.AddRect(compositor.NewRect(5, 5, 10, 10))

	if r.items != nil {
		t.Error("overlapping rects should keep the union approximation")
	}
	if !r.Intersects(compositor.NewRect(12, 12, 1, 1)) {
		t.Error("point inside the union should intersect")
	}
}

func TestBatchRectsDemotesToItems(t *testing.T) {
	r := NewBatchRects()
	r.AddRect(compositor.NewRect(0, 0, 10, 10))
	// Far away: the union would be mostly empty space.
	r.AddRect(compositor.NewRect(1000, 1000, 10, 10))

	if r.items == nil {
		t.Fatal("distant rects should demote the tracker to explicit items")
	}
	if r.Intersects(compositor.NewRect(500, 500, 10, 10)) {
		t.Error("the gap between the rects should not intersect")
	}
	if !r.Intersects(compositor.NewRect(5, 5, 1, 1)) {
		t.Error("the first rect should still intersect")
	}
	if !r.Intersects(compositor.NewRect(1005, 1005, 1, 1)) {
		t.Error("the second rect should still intersect")
	}
}

// TestBatchRectsNeverFalseNegative checks the soundness property the
// ordering logic depends on: whatever internal representation the
// tracker picks, a rect that truly overlaps some added rect must
// report an intersection.
func TestBatchRectsNeverFalseNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	randRect := func() compositor.Rect {
		x := rng.Float32() * 2000
		y := rng.Float32() * 2000
		return compositor.NewRect(x, y, 1+rng.Float32()*300, 1+rng.Float32()*300)
	}

	for trial := 0; trial < 50; trial++ {
		tracker := NewBatchRects()
		var added []compositor.Rect
		for i := 0; i < 40; i++ {
			r := randRect()
			tracker.AddRect(r)
			added = append(added, r)

			probe := randRect()
			exact := false
			for _, a := range added {
				if a.Intersects(probe) {
					exact = true
					break
				}
			}
			if exact && !tracker.Intersects(probe) {
				t.Fatalf("trial %d: tracker missed a real overlap of %+v", trial, probe)
			}
		}
	}
}
