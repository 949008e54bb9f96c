// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

// GlyphFetchScratch holds the reusable buffers a resource cache fills
// while grouping a run's glyphs by (texture, format).
//
// Lifecycle: owned by the caller driving the frame, cleared and reused
// per run via Reset, never shared between concurrently built frames.
type GlyphFetchScratch struct {
	// Results accumulates resolved glyphs for the current group.
	Results []GlyphFetchResult
}

// Reset clears the scratch for the next run without releasing the
// backing storage.
func (s *GlyphFetchScratch) Reset() {
	s.Results = s.Results[:0]
}
