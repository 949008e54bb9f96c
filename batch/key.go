// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import (
	"fmt"

	"github.com/gogpu/compositor/frame"
	"github.com/gogpu/compositor/prim"
)

// MaxColorTextures is the number of color texture slots a batch binds.
// YUV planar content uses all three; most batches use one.
const MaxColorTextures = 3

// TextureSet is the color texture bindings of a batch. Unused slots
// hold the invalid texture, which acts as a wildcard: it is compatible
// with any binding and is filled in when batches combine.
type TextureSet struct {
	Colors [MaxColorTextures]frame.TextureSource
}

// EmptyTextureSet returns a set with every slot unbound.
func EmptyTextureSet() TextureSet {
	return TextureSet{Colors: [MaxColorTextures]frame.TextureSource{
		frame.InvalidTexture(), frame.InvalidTexture(), frame.InvalidTexture(),
	}}
}

// SingleTexture returns a set binding only the first color slot.
func SingleTexture(t frame.TextureSource) TextureSet {
	s := EmptyTextureSet()
	s.Colors[0] = t
	return s
}

// IsCompatibleWith reports whether two sets can share a batch: each
// slot pair must be equal or have at least one unbound side. The
// relation is reflexive and symmetric but not transitive, so it must
// be re-checked against the batch's accumulated set, never against the
// set a batch started with.
func (s TextureSet) IsCompatibleWith(other TextureSet) bool {
	for i := range s.Colors {
		if !slotsCompatible(s.Colors[i], other.Colors[i]) {
			return false
		}
	}
	return true
}

// CombineWith resolves each slot pair to its bound side, preferring
// s's binding when both are bound and equal. ok is false when some
// slot pair is bound to different textures.
func (s TextureSet) CombineWith(other TextureSet) (TextureSet, bool) {
	var out TextureSet
	for i := range s.Colors {
		c, ok := combineSlots(s.Colors[i], other.Colors[i])
		if !ok {
			return s, false
		}
		out.Colors[i] = c
	}
	return out, true
}

func slotsCompatible(a, b frame.TextureSource) bool {
	return !a.IsValid() || !b.IsValid() || a == b
}

func combineSlots(a, b frame.TextureSource) (frame.TextureSource, bool) {
	switch {
	case !a.IsValid():
		return b, true
	case !b.IsValid() || a == b:
		return a, true
	default:
		return a, false
	}
}

// BatchTextures is the full texture binding of a batch: the color
// slots plus the clip mask slot.
type BatchTextures struct {
	Input    TextureSet
	ClipMask frame.TextureSource
}

// EmptyBatchTextures returns bindings with every slot unbound.
func EmptyBatchTextures() BatchTextures {
	return BatchTextures{Input: EmptyTextureSet(), ClipMask: frame.InvalidTexture()}
}

// PrimTextured binds one color texture and a clip mask slot.
func PrimTextured(color, clipMask frame.TextureSource) BatchTextures {
	return BatchTextures{Input: SingleTexture(color), ClipMask: clipMask}
}

// PrimUntextured binds only the clip mask slot, for solid brushes.
func PrimUntextured(clipMask frame.TextureSource) BatchTextures {
	return BatchTextures{Input: EmptyTextureSet(), ClipMask: clipMask}
}

// IsCompatibleWith applies the slot compatibility rule to the color
// slots and the clip mask slot alike.
func (t BatchTextures) IsCompatibleWith(other BatchTextures) bool {
	return t.Input.IsCompatibleWith(other.Input) &&
		slotsCompatible(t.ClipMask, other.ClipMask)
}

// CombineWith resolves all slots against other. ok is false when any
// slot pair conflicts.
func (t BatchTextures) CombineWith(other BatchTextures) (BatchTextures, bool) {
	input, ok := t.Input.CombineWith(other.Input)
	if !ok {
		return t, false
	}
	clip, ok := combineSlots(t.ClipMask, other.ClipMask)
	if !ok {
		return t, false
	}
	return BatchTextures{Input: input, ClipMask: clip}, true
}

// Merge widens t in place with other's bindings. Merging incompatible
// bindings is a contract violation: callers must have checked
// compatibility when selecting the batch.
func (t *BatchTextures) Merge(other BatchTextures) {
	combined, ok := t.CombineWith(other)
	if !ok {
		panic(fmt.Sprintf("batch: merging incompatible textures %+v and %+v", *t, other))
	}
	*t = combined
}

// BlendModeKind is the blend equation family of a BlendMode.
type BlendModeKind uint8

// Blend mode kinds.
const (
	// BlendNone draws opaque with blending disabled.
	BlendNone BlendModeKind = iota

	// BlendAlpha blends non-premultiplied source over destination.
	BlendAlpha

	// BlendPremultipliedAlpha blends premultiplied source over
	// destination.
	BlendPremultipliedAlpha

	// BlendPremultipliedDestOut erases destination coverage, used by
	// clear primitives.
	BlendPremultipliedDestOut

	// BlendSubpixelDualSource does per-channel subpixel text blending
	// in one pass using dual-source blending.
	BlendSubpixelDualSource

	// BlendSubpixelWithBgColor emulates subpixel text blending in
	// multiple passes against a known background color. Batches in
	// this mode re-read the framebuffer, so overlap rules are
	// stricter.
	BlendSubpixelWithBgColor

	// BlendAdvanced uses a KHR_blend_equation_advanced style mix-blend
	// equation carried in the mode's payload.
	BlendAdvanced

	// BlendScreen is the fixed-function screen equation.
	BlendScreen

	// BlendExclusion is the fixed-function exclusion equation.
	BlendExclusion

	// BlendMultiplyDualSource is multiply via dual-source blending.
	BlendMultiplyDualSource

	// BlendPlusLighter is additive plus-lighter compositing.
	BlendPlusLighter
)

// BlendMode is a blend equation selection, including the mix-blend
// payload of advanced modes. It is a small comparable value used
// inside BatchKey.
type BlendMode struct {
	Kind BlendModeKind

	// Advanced is the mix-blend equation when Kind is BlendAdvanced.
	Advanced prim.MixBlendMode
}

// Blend wraps a payload-free kind as a BlendMode.
func Blend(kind BlendModeKind) BlendMode {
	return BlendMode{Kind: kind}
}

// AdvancedBlend returns the advanced blend mode for a mix-blend
// equation.
func AdvancedBlend(mode prim.MixBlendMode) BlendMode {
	return BlendMode{Kind: BlendAdvanced, Advanced: mode}
}

// DisablesBlending reports whether the mode draws with the blend unit
// off, routing instances to the opaque lists.
func (b BlendMode) DisablesBlending() bool {
	return b.Kind == BlendNone
}

// String returns a human-readable name for the blend mode.
func (b BlendMode) String() string {
	switch b.Kind {
	case BlendNone:
		return "None"
	case BlendAlpha:
		return "Alpha"
	case BlendPremultipliedAlpha:
		return "PremultipliedAlpha"
	case BlendPremultipliedDestOut:
		return "PremultipliedDestOut"
	case BlendSubpixelDualSource:
		return "SubpixelDualSource"
	case BlendSubpixelWithBgColor:
		return "SubpixelWithBgColor"
	case BlendAdvanced:
		return "Advanced(" + b.Advanced.String() + ")"
	case BlendScreen:
		return "Screen"
	case BlendExclusion:
		return "Exclusion"
	case BlendMultiplyDualSource:
		return "MultiplyDualSource"
	case BlendPlusLighter:
		return "PlusLighter"
	default:
		return "Unknown"
	}
}

// KindTag discriminates the BatchKind variants.
type KindTag uint8

// Batch kind tags.
const (
	KindSolid KindTag = iota
	KindImage
	KindBlend
	KindMixBlend
	KindYuvImage
	KindLinearGradient
	KindOpacity
	KindTextRun
	KindSplitComposite
)

// String returns a human-readable name for the tag.
func (t KindTag) String() string {
	switch t {
	case KindSolid:
		return "Solid"
	case KindImage:
		return "Image"
	case KindBlend:
		return "Blend"
	case KindMixBlend:
		return "MixBlend"
	case KindYuvImage:
		return "YuvImage"
	case KindLinearGradient:
		return "LinearGradient"
	case KindOpacity:
		return "Opacity"
	case KindTextRun:
		return "TextRun"
	case KindSplitComposite:
		return "SplitComposite"
	default:
		return "Unknown"
	}
}

// BatchKind selects the shader variant a batch draws with, together
// with the variant parameters that keys must match on exactly. It is a
// comparable value; unused parameter fields stay zero.
type BatchKind struct {
	Tag KindTag

	// Buffer is the sampled buffer kind for KindImage.
	Buffer frame.ImageBufferKind

	// SourceTask and BackdropTask identify the readback pair for
	// KindMixBlend. Mix-blend batches never merge across pairs.
	SourceTask   frame.RenderTaskID
	BackdropTask frame.RenderTaskID

	// YUV sampling parameters for KindYuvImage.
	YuvFormat     prim.YuvFormat
	YuvDepth      prim.ColorDepth
	YuvColorSpace prim.YuvColorSpace
	YuvRange      prim.ColorRange

	// Glyph is the glyph raster format for KindTextRun.
	Glyph frame.GlyphFormat
}

// SolidKind is the solid color brush kind.
func SolidKind() BatchKind {
	return BatchKind{Tag: KindSolid}
}

// ImageKind is the textured brush kind for a buffer kind.
func ImageKind(buffer frame.ImageBufferKind) BatchKind {
	return BatchKind{Tag: KindImage, Buffer: buffer}
}

// BlendKind is the color-filter brush kind.
func BlendKind() BatchKind {
	return BatchKind{Tag: KindBlend}
}

// MixBlendKind is the readback mix-blend kind for a source/backdrop
// task pair.
func MixBlendKind(source, backdrop frame.RenderTaskID) BatchKind {
	return BatchKind{Tag: KindMixBlend, SourceTask: source, BackdropTask: backdrop}
}

// YuvKind is the YUV image kind for a sampling configuration.
func YuvKind(format prim.YuvFormat, depth prim.ColorDepth, colorSpace prim.YuvColorSpace, colorRange prim.ColorRange) BatchKind {
	return BatchKind{
		Tag:           KindYuvImage,
		YuvFormat:     format,
		YuvDepth:      depth,
		YuvColorSpace: colorSpace,
		YuvRange:      colorRange,
	}
}

// LinearGradientKind is the direct linear gradient brush kind.
func LinearGradientKind() BatchKind {
	return BatchKind{Tag: KindLinearGradient}
}

// OpacityKind is the opacity composite brush kind.
func OpacityKind() BatchKind {
	return BatchKind{Tag: KindOpacity}
}

// TextRunKind is the glyph kind for a raster format.
func TextRunKind(format frame.GlyphFormat) BatchKind {
	return BatchKind{Tag: KindTextRun, Glyph: format}
}

// SplitCompositeKind is the plane-split polygon composite kind.
func SplitCompositeKind() BatchKind {
	return BatchKind{Tag: KindSplitComposite}
}

// BatchFeatures are dynamic shader features a batch's instances
// require. Features accumulate over a batch's lifetime and widen the
// selected shader variant; they never split batches.
type BatchFeatures uint8

// Batch features.
const (
	// FeatureAlphaPass marks batches drawn in the blended pass.
	FeatureAlphaPass BatchFeatures = 1 << iota

	// FeatureAntialiasing requires edge anti-aliasing in the shader.
	FeatureAntialiasing

	// FeatureRepetition requires uv repetition support.
	FeatureRepetition

	// FeatureClipMask requires clip mask sampling.
	FeatureClipMask
)

// BatchKey is the identity of a batch. Instances with compatible keys
// may draw in one call.
type BatchKey struct {
	Kind     BatchKind
	Blend    BlendMode
	Textures BatchTextures
}

// NewBatchKey assembles a key.
func NewBatchKey(kind BatchKind, blend BlendMode, textures BatchTextures) BatchKey {
	return BatchKey{Kind: kind, Blend: blend, Textures: textures}
}

// IsCompatibleWith reports whether two keys can share a batch: kind
// and blend mode must match exactly and the textures must be slot
// compatible. Like texture compatibility this is not transitive.
func (k BatchKey) IsCompatibleWith(other BatchKey) bool {
	return k.Kind == other.Kind &&
		k.Blend == other.Blend &&
		k.Textures.IsCompatibleWith(other.Textures)
}
