// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package prim defines the immutable per-frame primitive records the
// batching engine reads.
//
// The primitive store, visibility pass and clip system run upstream and
// leave every instance fully resolved: local rects, visibility state,
// clip-task assignments and per-kind resource keys are all final by the
// time a record reaches the batcher. Nothing in this package is mutated
// during batch construction.
//
// Primitive kinds form a closed variant set modeled as a sealed
// interface ([Kind]); picture composite modes are a second, nested
// variant set ([CompositeMode]). Dispatch over both happens in the
// batch package with two-level type switches.
package prim
