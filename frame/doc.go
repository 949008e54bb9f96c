// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package frame defines the per-frame collaborator surface the batching
// engine consumes.
//
// The engine does not own scene construction, visibility, rasterization
// or resource upload. Those stages run earlier in the pipeline and leave
// behind resolved, read-only data: render task locations, GPU cache
// addresses, transform palette ids and rasterized image/glyph entries.
// This package defines the interfaces through which the batcher reads
// that data, plus the small per-frame helpers it owns itself (z-buffer
// id allocation, glyph fetch scratch buffers, the in-memory GPU data
// store).
//
// All queries are synchronous lookups against pre-populated caches.
// A failed lookup is never a suspension point: the caller drops the
// affected primitive for this frame and moves on.
package frame
