// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package prim

import (
	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/frame"
)

// VisibilityState is the resolution level the visibility pass left an
// instance at. The batcher only ever sees Culled, Detailed or
// PassThrough; the other states reaching it are upstream bugs.
type VisibilityState uint8

// Visibility states.
const (
	// VisibilityUnset means the visibility pass never considered the
	// instance. Must not reach the batcher.
	VisibilityUnset VisibilityState = iota

	// VisibilityCulled means the instance is fully clipped or
	// off-screen and draws nothing.
	VisibilityCulled

	// VisibilityCoarse is an intermediate state used between
	// visibility phases. Must not reach the batcher.
	VisibilityCoarse

	// VisibilityDetailed means the instance is visible with a resolved
	// clip-chain rect.
	VisibilityDetailed

	// VisibilityPassThrough marks a picture drawn directly into its
	// parent's target with no intermediate surface.
	VisibilityPassThrough
)

// String returns a human-readable name for the state.
func (s VisibilityState) String() string {
	switch s {
	case VisibilityUnset:
		return "Unset"
	case VisibilityCulled:
		return "Culled"
	case VisibilityCoarse:
		return "Coarse"
	case VisibilityDetailed:
		return "Detailed"
	case VisibilityPassThrough:
		return "PassThrough"
	default:
		return "Unknown"
	}
}

// VisibilityMask is a bit set of the dirty regions an instance
// intersects. Each batch target carries its own mask; an instance is
// batched into a target only when the masks share a bit.
type VisibilityMask uint16

// VisibilityMaskAll matches every dirty region.
const VisibilityMaskAll VisibilityMask = 0xffff

// Visibility is the resolved visibility record of one instance.
type Visibility struct {
	// State is the resolution level reached by the visibility pass.
	State VisibilityState

	// ClipChainRect is the picture-space rect the instance is clipped
	// to, used as the bounding rect for batch overlap tests.
	ClipChainRect compositor.Rect

	// Mask records which dirty regions the instance touches.
	Mask VisibilityMask
}

// ClipTaskKind classifies a resolved clip-task assignment.
type ClipTaskKind uint8

// Clip task kinds.
const (
	// ClipTaskNone means no mask is needed: coverage is fully opaque.
	ClipTaskNone ClipTaskKind = iota

	// ClipTaskMask means a clip-mask render task masks the draw.
	ClipTaskMask

	// ClipTaskFullyClipped means the clip system proved nothing draws.
	ClipTaskFullyClipped
)

// ClipTaskEntry is the clip assignment for a whole primitive or one of
// its segments.
type ClipTaskEntry struct {
	Kind ClipTaskKind

	// Task is the clip-mask render task when Kind is ClipTaskMask.
	Task frame.RenderTaskID
}

// EdgeAAFlags marks which edges of a rect or segment need
// anti-aliasing.
type EdgeAAFlags uint8

// Edge flags.
const (
	EdgeAALeft EdgeAAFlags = 1 << iota
	EdgeAATop
	EdgeAARight
	EdgeAABottom

	EdgeAANone EdgeAAFlags = 0
	EdgeAAAll  EdgeAAFlags = EdgeAALeft | EdgeAATop | EdgeAARight | EdgeAABottom
)

// Segment is one sub-rectangle of a segmented primitive, such as a
// rounded corner produced by clip decomposition.
type Segment struct {
	// LocalRect is the segment's rect in the primitive's local space.
	LocalRect compositor.Rect

	// EdgeFlags marks the segment's anti-aliased outer edges. A
	// segment with no flagged edges is an inner segment; under an
	// axis-aligned transform it can draw without blending.
	EdgeFlags EdgeAAFlags
}

// InstanceFlags carries cross-kind instance properties.
type InstanceFlags uint8

// Instance flags.
const (
	// IsBackdrop marks the instance as the opaque full-surface
	// background of its slice. Everything batched before it for the
	// same target is provably invisible.
	IsBackdrop InstanceFlags = 1 << iota

	// AntialiasedZeroArea forces edge anti-aliasing regardless of the
	// resolved transform kind.
	AntialiasedZeroArea
)

// Instance is one visible drawable scene item, fully resolved for this
// frame. Instances are read-only during batch construction.
type Instance struct {
	// LocalRect is the primitive's rect in its local space.
	LocalRect compositor.Rect

	// LocalClipRect is the local-space clip applied to the primitive.
	LocalClipRect compositor.Rect

	// SpatialNode positions the primitive in the spatial tree.
	SpatialNode frame.SpatialNodeIndex

	// Visibility is the output of the visibility pass.
	Visibility Visibility

	// Flags carries cross-kind properties.
	Flags InstanceFlags

	// Opacity is the resolved opacity in [0, 1]. 1 means the primitive
	// may be drawn opaque if its kind and mask allow it.
	Opacity float32

	// GpuHandle addresses the primitive's constant data blocks in the
	// GPU cache.
	GpuHandle frame.GpuCacheHandle

	// ClipTasks holds the resolved clip assignment: empty for an
	// unclipped primitive, one entry for a whole-primitive mask, or
	// one entry per segment for segmented primitives.
	ClipTasks []ClipTaskEntry

	// Kind is the per-kind payload.
	Kind Kind
}

// ClipTask returns the clip entry for segment i, falling back to the
// whole-primitive entry, then to "no mask".
func (in *Instance) ClipTask(i int) ClipTaskEntry {
	switch {
	case i < len(in.ClipTasks):
		return in.ClipTasks[i]
	case len(in.ClipTasks) > 0:
		return in.ClipTasks[0]
	default:
		return ClipTaskEntry{Kind: ClipTaskNone}
	}
}

// IsOpaque reports whether the instance's resolved opacity is full.
func (in *Instance) IsOpaque() bool {
	return in.Opacity >= 1.0
}
