// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package batch groups visible primitives into GPU draw-call batches.
//
// A batch is a run of instanced quads that share a shader variant, a
// blend mode and a set of bound textures, captured as a BatchKey. The
// builder walks primitive lists front to back for opaque content and
// back to front for blended content, merging each instance into an
// existing compatible batch whenever doing so cannot reorder
// overlapping pixels. Clip masks are batched separately by ClipBatcher
// into the instances that rasterize mask render tasks.
package batch
