// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

// ZBufferID is a monotonically increasing draw-order token. Opaque
// content writes it to the depth buffer so batches can be reordered
// without changing the visible result.
type ZBufferID int32

// InvalidZBufferID is the "no z assigned" sentinel.
const InvalidZBufferID ZBufferID = -1

// ZGenerator hands out z-buffer ids in draw order. Each emitted
// polygon needs its own id, so callers allocate one per instance that
// writes depth, not one per primitive.
type ZGenerator struct {
	next ZBufferID
}

// NewZGenerator starts a generator at zero.
func NewZGenerator() *ZGenerator {
	return &ZGenerator{}
}

// Next returns the next id.
func (g *ZGenerator) Next() ZBufferID {
	id := g.next
	g.next++
	return id
}

// NextRange reserves n consecutive ids and returns the first. Split
// composites use it to give every child polygon a unique id up front.
func (g *ZGenerator) NextRange(n int) ZBufferID {
	id := g.next
	g.next += ZBufferID(n)
	return id
}

// Reset rewinds the generator for a new frame.
func (g *ZGenerator) Reset() {
	g.next = 0
}
