// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package prim

import (
	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/frame"
)

// Picture3DContext places a picture relative to a CSS 3D rendering
// context.
type Picture3DContext uint8

// 3D context placements.
const (
	// No3D is a regular 2D picture.
	No3D Picture3DContext = iota

	// Context3DRoot is the root of a 3D context. It owns the plane
	// splitter output and emits one split-composite instance per
	// child polygon.
	Context3DRoot

	// Context3DChild participates in a 3D context and is composited
	// by its root; it must never reach the per-primitive dispatcher
	// directly.
	Context3DChild
)

// SplitPolygon is one plane-split output polygon of a 3D context, in
// the depth order the splitter produced.
type SplitPolygon struct {
	// ChildIndex selects the child picture instance within the root
	// picture's primitive list.
	ChildIndex int

	// Points are the polygon's four world-space corners.
	Points [4]compositor.Point

	// UVs are the matching source surface coordinates.
	UVs [4]compositor.Point
}

// Picture is a group of primitives, optionally composited through an
// offscreen surface with a filter or blend effect.
type Picture struct {
	// Prims is the picture's own primitive list, walked when the
	// picture passes through with no intermediate surface.
	Prims []Instance

	// SpatialNode positions the picture's contents.
	SpatialNode frame.SpatialNodeIndex

	// SurfaceTask is the render task that produced this picture's
	// offscreen surface. Invalid for pass-through pictures.
	SurfaceTask frame.RenderTaskID

	// Composite describes how the surface composites into the parent.
	// Nil for pass-through pictures.
	Composite CompositeMode

	// Context3D places the picture in a 3D rendering context.
	Context3D Picture3DContext

	// SplitPolygons is the plane splitter output, present only on
	// Context3DRoot pictures.
	SplitPolygons []SplitPolygon
}

// CompositeMode is the closed variant set of picture composite
// effects. Exactly the Composite* types implement it.
type CompositeMode interface {
	isCompositeMode()
}

// CompositeBlur draws the surface blurred by a gaussian of the given
// radius. The blur itself already ran as render tasks; compositing
// samples the blurred output.
type CompositeBlur struct {
	Radius float32
}

// Shadow is one drop shadow of a CompositeDropShadows effect.
type Shadow struct {
	Offset compositor.Point
	Color  ColorF

	// Task is the blurred shadow's render task.
	Task frame.RenderTaskID
}

// CompositeDropShadows draws each shadow then the content, back to
// front. Every emitted instance needs its own z id.
type CompositeDropShadows struct {
	Shadows []Shadow
}

// CompositeOpacity composites the surface at reduced alpha.
type CompositeOpacity struct {
	Alpha float32
}

// CompositeFilter applies one SVG/CSS filter function.
type CompositeFilter struct {
	Op FilterOp
}

// CompositeComponentTransfer applies a feComponentTransfer whose
// per-channel functions live in the GPU cache.
type CompositeComponentTransfer struct {
	FuncsHandle frame.GpuCacheHandle
}

// MixBlendMode is a CSS mix-blend-mode.
type MixBlendMode uint8

// Mix blend modes.
const (
	MixBlendMultiply MixBlendMode = iota
	MixBlendScreen
	MixBlendOverlay
	MixBlendDarken
	MixBlendLighten
	MixBlendColorDodge
	MixBlendColorBurn
	MixBlendHardLight
	MixBlendSoftLight
	MixBlendDifference
	MixBlendExclusion
	MixBlendHue
	MixBlendSaturation
	MixBlendColor
	MixBlendLuminosity
	MixBlendPlusLighter
)

// String returns the CSS name of the mode.
func (m MixBlendMode) String() string {
	switch m {
	case MixBlendMultiply:
		return "multiply"
	case MixBlendScreen:
		return "screen"
	case MixBlendOverlay:
		return "overlay"
	case MixBlendDarken:
		return "darken"
	case MixBlendLighten:
		return "lighten"
	case MixBlendColorDodge:
		return "color-dodge"
	case MixBlendColorBurn:
		return "color-burn"
	case MixBlendHardLight:
		return "hard-light"
	case MixBlendSoftLight:
		return "soft-light"
	case MixBlendDifference:
		return "difference"
	case MixBlendExclusion:
		return "exclusion"
	case MixBlendHue:
		return "hue"
	case MixBlendSaturation:
		return "saturation"
	case MixBlendColor:
		return "color"
	case MixBlendLuminosity:
		return "luminosity"
	case MixBlendPlusLighter:
		return "plus-lighter"
	default:
		return "unknown"
	}
}

// CompositeMixBlend blends the surface against its backdrop with a
// mix-blend-mode. When the mode is not natively expressible by the
// GPU's blend units, SourceTask and BackdropTask feed the explicit
// readback composite shader.
type CompositeMixBlend struct {
	Mode MixBlendMode

	// SourceTask is the picture's own rendered surface.
	SourceTask frame.RenderTaskID

	// BackdropTask is the readback of the backdrop beneath the
	// picture.
	BackdropTask frame.RenderTaskID
}

// CompositeBlit is a straight textured copy of the surface.
type CompositeBlit struct{}

// CompositeSvgFilter draws the output of an SVG filter graph that was
// evaluated in render tasks.
type CompositeSvgFilter struct {
	Task frame.RenderTaskID
}

// CompositeTileCache marks a tile-cache slice picture. Tiles composite
// through the native compositor path, so the batcher emits nothing.
type CompositeTileCache struct{}

func (CompositeBlur) isCompositeMode()               {}
func (CompositeDropShadows) isCompositeMode()        {}
func (CompositeOpacity) isCompositeMode()            {}
func (CompositeFilter) isCompositeMode()             {}
func (CompositeComponentTransfer) isCompositeMode()  {}
func (CompositeMixBlend) isCompositeMode()           {}
func (CompositeBlit) isCompositeMode()               {}
func (CompositeSvgFilter) isCompositeMode()          {}
func (CompositeTileCache) isCompositeMode()          {}

// FilterOpKind identifies a filter function.
type FilterOpKind uint8

// Filter function kinds. The values are the shader's filter mode
// integers and must stay in sync with cs_filter.wgsl.
const (
	FilterIdentity FilterOpKind = iota
	FilterContrast
	FilterGrayscale
	FilterHueRotate
	FilterInvert
	FilterSaturate
	FilterSepia
	FilterBrightness
	FilterOpacity
	FilterColorMatrix
	FilterSrgbToLinear
	FilterLinearToSrgb
	FilterFlood
)

// FilterOp is one filter function with its argument.
type FilterOp struct {
	Kind FilterOpKind

	// Amount is the scalar argument of amount-style filters, or the
	// hue-rotate angle in radians.
	Amount float32

	// Matrix is the 5x4 color matrix for FilterColorMatrix, stored in
	// the GPU cache.
	MatrixHandle frame.GpuCacheHandle

	// Color is the flood color for FilterFlood.
	Color ColorF
}
