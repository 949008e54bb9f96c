// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import (
	compositor "github.com/gogpu/compositor"
	"github.com/gogpu/compositor/frame"
	"github.com/gogpu/compositor/prim"
)

// InstanceData is one packed per-instance record as uploaded to the
// instance vertex buffer. Every instance kind encodes to this form.
type InstanceData [4]int32

// PrimitiveHeaderIndex addresses a header in PrimitiveHeaders.
type PrimitiveHeaderIndex int32

// PrimitiveHeader is the per-primitive data shared by all instances a
// primitive emits: rects, the address of its kind-specific GPU blocks,
// its transform and z, and four kind-specific user words the shader
// variant interprets.
type PrimitiveHeader struct {
	LocalRect       compositor.Rect
	LocalClipRect   compositor.Rect
	SpecificAddress frame.GpuCacheAddress
	TransformID     frame.TransformPaletteID
	ZID             frame.ZBufferID
	UserData        [4]int32
}

// PrimitiveHeaders collects the headers of one frame in emission
// order, for upload alongside the instance buffers.
type PrimitiveHeaders struct {
	Headers []PrimitiveHeader
}

// Push appends a header and returns its index.
func (h *PrimitiveHeaders) Push(header PrimitiveHeader) PrimitiveHeaderIndex {
	h.Headers = append(h.Headers, header)
	return PrimitiveHeaderIndex(len(h.Headers) - 1)
}

// Reset clears the headers for frame reuse.
func (h *PrimitiveHeaders) Reset() {
	h.Headers = h.Headers[:0]
}

// BrushFlags modify how a brush instance maps its segment onto the
// primitive.
type BrushFlags uint8

// Brush flags.
const (
	// BrushFlagPerspectiveInterpolation enables perspective-correct
	// interpolation for instances inside 3D contexts.
	BrushFlagPerspectiveInterpolation BrushFlags = 1 << iota

	// BrushFlagSegmentRelative interprets the segment's uv data
	// relative to the segment rect rather than the primitive rect.
	BrushFlagSegmentRelative

	// BrushFlagSegmentRepeatX tiles the segment texture horizontally.
	BrushFlagSegmentRepeatX

	// BrushFlagSegmentRepeatY tiles the segment texture vertically.
	BrushFlagSegmentRepeatY

	// BrushFlagForceOpaque overrides alpha sampling for content known
	// to be opaque.
	BrushFlagForceOpaque
)

// invalidSegmentIndex marks an unsegmented brush instance.
const invalidSegmentIndex int32 = 0xffff

// BrushInstance is one quad of a brush batch.
type BrushInstance struct {
	Header          PrimitiveHeaderIndex
	RenderTask      frame.RenderTaskAddress
	ClipTask        frame.RenderTaskAddress
	SegmentIndex    int32
	EdgeFlags       prim.EdgeAAFlags
	Flags           BrushFlags
	ResourceAddress int32
}

// Encode packs the instance for upload. The segment word packs the
// segment index with the edge and brush flag bytes the way the brush
// vertex shaders unpack them.
func (b BrushInstance) Encode() InstanceData {
	return InstanceData{
		int32(b.Header),
		int32(b.RenderTask)<<16 | int32(b.ClipTask),
		b.SegmentIndex | int32(b.EdgeFlags)<<16 | int32(b.Flags)<<24,
		b.ResourceAddress,
	}
}

// GlyphInstance is one glyph quad of a text-run batch.
type GlyphInstance struct {
	Header     PrimitiveHeaderIndex
	RenderTask frame.RenderTaskAddress
	ClipTask   frame.RenderTaskAddress

	// IndexInRun selects the glyph's offset within the run's GPU data.
	IndexInRun int32

	// UVRect addresses the glyph's atlas uv rect.
	UVRect frame.GpuCacheAddress
}

// Encode packs the instance for upload.
func (g GlyphInstance) Encode() InstanceData {
	return InstanceData{
		int32(g.Header),
		int32(g.RenderTask)<<16 | int32(g.ClipTask),
		g.IndexInRun,
		g.UVRect.AsInt(),
	}
}

// SplitCompositeInstance is one plane-split polygon quad.
type SplitCompositeInstance struct {
	Header PrimitiveHeaderIndex

	// Polygons addresses the polygon corner blocks pushed for this
	// frame.
	Polygons frame.GpuCacheAddress

	RenderTask frame.RenderTaskAddress
	Z          frame.ZBufferID
}

// Encode packs the instance for upload.
func (s SplitCompositeInstance) Encode() InstanceData {
	return InstanceData{
		int32(s.Header),
		s.Polygons.AsInt(),
		int32(s.RenderTask),
		int32(s.Z),
	}
}

// CompositeInstance is one readback mix-blend quad. It names the
// destination task plus the source and backdrop tasks the shader
// samples.
type CompositeInstance struct {
	Header       PrimitiveHeaderIndex
	DestTask     frame.RenderTaskAddress
	SourceTask   frame.RenderTaskAddress
	BackdropTask frame.RenderTaskAddress
	Z            frame.ZBufferID
}

// Encode packs the instance for upload.
func (c CompositeInstance) Encode() InstanceData {
	return InstanceData{
		int32(c.Header),
		int32(c.DestTask),
		int32(c.SourceTask)<<16 | int32(c.BackdropTask),
		int32(c.Z),
	}
}
