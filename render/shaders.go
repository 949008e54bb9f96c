// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"

	"github.com/gogpu/compositor/batch"
)

// Embedded WGSL shader sources, compiled to SPIR-V through naga at
// pipeline creation time.

//go:embed shaders/brush_solid.wgsl
var brushSolidShaderWGSL string

//go:embed shaders/brush_image.wgsl
var brushImageShaderWGSL string

//go:embed shaders/brush_blend.wgsl
var brushBlendShaderWGSL string

//go:embed shaders/brush_mix_blend.wgsl
var brushMixBlendShaderWGSL string

//go:embed shaders/brush_yuv.wgsl
var brushYuvShaderWGSL string

//go:embed shaders/brush_linear_gradient.wgsl
var brushLinearGradientShaderWGSL string

//go:embed shaders/brush_opacity.wgsl
var brushOpacityShaderWGSL string

//go:embed shaders/text_run.wgsl
var textRunShaderWGSL string

//go:embed shaders/split_composite.wgsl
var splitCompositeShaderWGSL string

//go:embed shaders/clip_rect.wgsl
var clipRectShaderWGSL string

//go:embed shaders/clip_rect_fast.wgsl
var clipRectFastShaderWGSL string

//go:embed shaders/clip_image.wgsl
var clipImageShaderWGSL string

//go:embed shaders/clip_box_shadow.wgsl
var clipBoxShadowShaderWGSL string

// ShaderKind names one shader program. Batches select a brush or text
// program through their key; the clip batcher's lists map to the clip
// programs directly.
type ShaderKind uint8

const (
	ShaderBrushSolid ShaderKind = iota
	ShaderBrushImage
	ShaderBrushBlend
	ShaderBrushMixBlend
	ShaderBrushYuv
	ShaderBrushLinearGradient
	ShaderBrushOpacity
	ShaderTextRun
	ShaderSplitComposite
	ShaderClipRect
	ShaderClipRectFast
	ShaderClipImage
	ShaderClipBoxShadow

	shaderKindCount
)

func (k ShaderKind) String() string {
	switch k {
	case ShaderBrushSolid:
		return "brush_solid"
	case ShaderBrushImage:
		return "brush_image"
	case ShaderBrushBlend:
		return "brush_blend"
	case ShaderBrushMixBlend:
		return "brush_mix_blend"
	case ShaderBrushYuv:
		return "brush_yuv"
	case ShaderBrushLinearGradient:
		return "brush_linear_gradient"
	case ShaderBrushOpacity:
		return "brush_opacity"
	case ShaderTextRun:
		return "text_run"
	case ShaderSplitComposite:
		return "split_composite"
	case ShaderClipRect:
		return "clip_rect"
	case ShaderClipRectFast:
		return "clip_rect_fast"
	case ShaderClipImage:
		return "clip_image"
	case ShaderClipBoxShadow:
		return "clip_box_shadow"
	}
	return "unknown"
}

// SelectShader maps a batch key to the shader program that draws it.
func SelectShader(key batch.BatchKey) ShaderKind {
	switch key.Kind.Tag {
	case batch.KindSolid:
		return ShaderBrushSolid
	case batch.KindImage:
		return ShaderBrushImage
	case batch.KindBlend:
		return ShaderBrushBlend
	case batch.KindMixBlend:
		return ShaderBrushMixBlend
	case batch.KindYuvImage:
		return ShaderBrushYuv
	case batch.KindLinearGradient:
		return ShaderBrushLinearGradient
	case batch.KindOpacity:
		return ShaderBrushOpacity
	case batch.KindTextRun:
		return ShaderTextRun
	case batch.KindSplitComposite:
		return ShaderSplitComposite
	}
	panic("render: batch key with unknown kind tag")
}

// ShaderSource returns the WGSL source of a shader program.
func ShaderSource(kind ShaderKind) string {
	switch kind {
	case ShaderBrushSolid:
		return brushSolidShaderWGSL
	case ShaderBrushImage:
		return brushImageShaderWGSL
	case ShaderBrushBlend:
		return brushBlendShaderWGSL
	case ShaderBrushMixBlend:
		return brushMixBlendShaderWGSL
	case ShaderBrushYuv:
		return brushYuvShaderWGSL
	case ShaderBrushLinearGradient:
		return brushLinearGradientShaderWGSL
	case ShaderBrushOpacity:
		return brushOpacityShaderWGSL
	case ShaderTextRun:
		return textRunShaderWGSL
	case ShaderSplitComposite:
		return splitCompositeShaderWGSL
	case ShaderClipRect:
		return clipRectShaderWGSL
	case ShaderClipRectFast:
		return clipRectFastShaderWGSL
	case ShaderClipImage:
		return clipImageShaderWGSL
	case ShaderClipBoxShadow:
		return clipBoxShadowShaderWGSL
	}
	return ""
}

// CompileShaderToSPIRV compiles WGSL source to SPIR-V words.
func CompileShaderToSPIRV(wgslSource string) ([]uint32, error) {
	if wgslSource == "" {
		return nil, fmt.Errorf("render: shader source is empty")
	}
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words.
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return spirvCode, nil
}
