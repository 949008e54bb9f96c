// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package prim

import (
	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/frame"
)

// ClipMode selects whether a clip shape keeps its inside or outside.
type ClipMode uint8

// Clip modes.
const (
	// ClipIn keeps coverage inside the shape.
	ClipIn ClipMode = iota

	// ClipOut keeps coverage outside the shape.
	ClipOut
)

// ClipNodeFlags carries precomputed clip-node properties.
type ClipNodeFlags uint8

// Clip node flags.
const (
	// ClipSameCoordSystem marks rectangle clips that share the
	// primitive's coordinate system. They were already applied
	// upstream and contribute nothing to the mask.
	ClipSameCoordSystem ClipNodeFlags = 1 << iota

	// ClipUseFastPath marks rounded rectangles whose radii are
	// uniform enough for the fast-path shader.
	ClipUseFastPath
)

// ClipNodeKind is the closed variant set of clip shapes.
type ClipNodeKind interface {
	isClipNodeKind()
}

// ClipRect clips by an axis-aligned rectangle.
type ClipRect struct {
	Rect compositor.Rect
	Mode ClipMode
}

// BorderRadii are the per-corner radii of a rounded rectangle.
type BorderRadii struct {
	TopLeft, TopRight, BottomLeft, BottomRight compositor.Point
}

// ClipRoundedRect clips by a rounded rectangle.
type ClipRoundedRect struct {
	Rect  compositor.Rect
	Radii BorderRadii
	Mode  ClipMode
}

// ClipImage clips by an image mask's alpha channel.
type ClipImage struct {
	Request frame.ImageRequest

	// Rect is the mask's placement in local space.
	Rect compositor.Rect

	// Repeat tiles the mask over Rect.
	Repeat bool

	// VisibleTiles is non-empty when the mask image is tiled; one
	// mask instance is emitted per visible tile.
	VisibleTiles []VisibleTile
}

// BoxShadowStretchMode tells the box-shadow mask shader how to map the
// cached corner texture onto an edge.
type BoxShadowStretchMode uint8

// Stretch modes.
const (
	StretchModeStretch BoxShadowStretchMode = iota
	StretchModeSimple
)

// ClipBoxShadow clips by a blurred box-shadow mask rendered into its
// own cache task.
type ClipBoxShadow struct {
	Task         frame.RenderTaskID
	StretchModeX BoxShadowStretchMode
	StretchModeY BoxShadowStretchMode

	// ShadowRect is the mask's placement in local space.
	ShadowRect compositor.Rect
	Mode       ClipMode
}

func (ClipRect) isClipNodeKind()         {}
func (ClipRoundedRect) isClipNodeKind()  {}
func (*ClipImage) isClipNodeKind()       {}
func (ClipBoxShadow) isClipNodeKind()    {}

// ClipNode is one node of a clip chain, resolved for this frame.
type ClipNode struct {
	Kind        ClipNodeKind
	SpatialNode frame.SpatialNodeIndex
	Flags       ClipNodeFlags

	// GpuHandle addresses the node's constant data (rect, radii,
	// mask uv) in the GPU cache.
	GpuHandle frame.GpuCacheHandle
}
