// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package prim

import (
	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/frame"
)

// ColorF is a premultiplied RGBA color.
type ColorF struct {
	R, G, B, A float32
}

// IsOpaque reports whether the color has full alpha.
func (c ColorF) IsOpaque() bool {
	return c.A >= 1.0
}

// AlphaType tells the image shader whether texel data is premultiplied.
type AlphaType uint8

// Alpha types.
const (
	AlphaPremultiplied AlphaType = iota
	AlphaNonPremultiplied
)

// Kind is the closed per-kind payload of an [Instance]. Exactly the
// types in this package implement it.
type Kind interface {
	isKind()
}

// Clear erases the destination where it draws. Used for hole punching
// in the compositor integration.
type Clear struct{}

// Rectangle is a solid-color rect, possibly decomposed into segments.
type Rectangle struct {
	Color    ColorF
	Segments []Segment
}

// VisibleTile is one on-screen tile of a tiled image.
type VisibleTile struct {
	Tile      frame.TileOffset
	LocalRect compositor.Rect
	EdgeFlags EdgeAAFlags
}

// Image draws a rasterized image from the resource cache.
type Image struct {
	Key       frame.ImageKey
	Rendering frame.ImageRendering
	Alpha     AlphaType

	// VisibleTiles is non-empty for tiled images; one instance is
	// emitted per tile.
	VisibleTiles []VisibleTile

	Segments []Segment
}

// YuvFormat is the plane layout of a YUV image.
type YuvFormat uint8

// YUV plane layouts.
const (
	YuvPlanar YuvFormat = iota // 3 planes
	YuvNV12                    // 2 planes, interleaved chroma
	YuvP010                    // 2 planes, 10-bit
	YuvInterleaved             // 1 plane
)

// PlaneCount returns how many textures the format binds.
func (f YuvFormat) PlaneCount() int {
	switch f {
	case YuvPlanar:
		return 3
	case YuvNV12, YuvP010:
		return 2
	default:
		return 1
	}
}

// ColorDepth is the bit depth of YUV samples.
type ColorDepth uint8

// Color depths.
const (
	ColorDepth8 ColorDepth = iota
	ColorDepth10
	ColorDepth16
)

// YuvColorSpace selects the YUV-to-RGB conversion matrix.
type YuvColorSpace uint8

// YUV color spaces.
const (
	YuvRec601 YuvColorSpace = iota
	YuvRec709
	YuvRec2020
	YuvIdentity
)

// ColorRange distinguishes limited (studio) from full-range samples.
type ColorRange uint8

// Color ranges.
const (
	ColorRangeLimited ColorRange = iota
	ColorRangeFull
)

// YuvImage draws a video frame from up to three planar textures.
type YuvImage struct {
	Format     YuvFormat
	Depth      ColorDepth
	ColorSpace YuvColorSpace
	Range      ColorRange

	// Keys holds one image key per plane; unused entries are zero.
	Keys [3]frame.ImageKey

	Rendering frame.ImageRendering
}

// TextRun draws a glyph run with one rasterized instance per glyph.
type TextRun struct {
	Font   frame.FontInstance
	Glyphs []frame.GlyphKey

	// Offset is the run's offset from its reference frame, baked into
	// the run's GPU constant data.
	Offset compositor.Point
}

// LinearGradient draws an axis-stop gradient directly with the
// gradient shader.
type LinearGradient struct {
	StopsHandle frame.GpuCacheHandle
	Segments    []Segment
}

// CachedLinearGradient draws a gradient that was pre-rendered into a
// render task, as a textured quad.
type CachedLinearGradient struct {
	Task     frame.RenderTaskID
	Segments []Segment
}

// RadialGradient is always pre-rendered into a task and drawn as an
// image.
type RadialGradient struct {
	Task     frame.RenderTaskID
	Segments []Segment
}

// ConicGradient is always pre-rendered into a task and drawn as an
// image.
type ConicGradient struct {
	Task     frame.RenderTaskID
	Segments []Segment
}

// NormalBorder draws a CSS border whose edges and corners were
// rasterized into separate render tasks, one per segment.
type NormalBorder struct {
	// EdgeTasks holds one task per segment, in segment order.
	EdgeTasks []frame.RenderTaskID
	Segments  []Segment
}

// ImageBorder draws a nine-patch border sliced from an image.
type ImageBorder struct {
	Request  frame.ImageRequest
	Segments []Segment
}

// LineDecoration draws an underline, overline or strike-through. Solid
// decorations draw with the solid brush; dashed, dotted and wavy ones
// sample a pattern rasterized into a cache task.
type LineDecoration struct {
	Color ColorF

	// CacheTask is the rasterized pattern task, invalid for solid
	// lines.
	CacheTask frame.RenderTaskID
}

// Backdrop draws the captured backdrop of a stacking context, used by
// backdrop filters.
type Backdrop struct {
	Task frame.RenderTaskID
}

// PictureKind wraps a picture primitive.
type PictureKind struct {
	Picture *Picture
}

func (Clear) isKind()                {}
func (*Rectangle) isKind()           {}
func (*Image) isKind()               {}
func (*YuvImage) isKind()            {}
func (*TextRun) isKind()             {}
func (*LinearGradient) isKind()      {}
func (*CachedLinearGradient) isKind() {}
func (*RadialGradient) isKind()      {}
func (*ConicGradient) isKind()       {}
func (*NormalBorder) isKind()        {}
func (*ImageBorder) isKind()         {}
func (*LineDecoration) isKind()      {}
func (*Backdrop) isKind()            {}
func (*PictureKind) isKind()         {}
