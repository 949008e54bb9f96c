// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/compositor/batch"
)

func TestBlendPassesSinglePassModes(t *testing.T) {
	singlePass := []batch.BlendModeKind{
		batch.BlendAlpha,
		batch.BlendPremultipliedAlpha,
		batch.BlendPremultipliedDestOut,
		batch.BlendScreen,
		batch.BlendExclusion,
		batch.BlendPlusLighter,
	}
	for _, kind := range singlePass {
		passes, err := blendPasses(batch.Blend(kind))
		if err != nil {
			t.Fatalf("blendPasses(%v): %v", kind, err)
		}
		if len(passes) != 1 {
			t.Errorf("blendPasses(%v) = %d passes, want 1", kind, len(passes))
		}
		if passes[0].State == nil {
			t.Errorf("blendPasses(%v) pass 0 has blending disabled", kind)
		}
	}
}

func TestBlendPassesNoneDisablesBlending(t *testing.T) {
	passes, err := blendPasses(batch.Blend(batch.BlendNone))
	if err != nil {
		t.Fatalf("blendPasses: %v", err)
	}
	if len(passes) != 1 || passes[0].State != nil {
		t.Fatalf("opaque mode should be one pass with blending off, got %+v", passes)
	}
}

func TestBlendPassesSubpixelWithBgColor(t *testing.T) {
	passes, err := blendPasses(batch.Blend(batch.BlendSubpixelWithBgColor))
	if err != nil {
		t.Fatalf("blendPasses: %v", err)
	}
	if len(passes) != 3 {
		t.Fatalf("subpixel with bg color = %d passes, want 3", len(passes))
	}
	// The final pass accumulates additively.
	last := passes[2].State
	if last == nil {
		t.Fatal("final pass has blending disabled")
	}
	if last.Color.SrcFactor != gputypes.BlendFactorOne || last.Color.DstFactor != gputypes.BlendFactorOne {
		t.Errorf("final pass color blend = (%v, %v), want (one, one)",
			last.Color.SrcFactor, last.Color.DstFactor)
	}
}

func TestBlendPassesAdvancedUnsupported(t *testing.T) {
	_, err := blendPasses(batch.Blend(batch.BlendAdvanced))
	if !errors.Is(err, ErrAdvancedBlendUnsupported) {
		t.Fatalf("err = %v, want ErrAdvancedBlendUnsupported", err)
	}
}

func TestBlendPassesDualSourceUnsupported(t *testing.T) {
	for _, kind := range []batch.BlendModeKind{batch.BlendSubpixelDualSource, batch.BlendMultiplyDualSource} {
		_, err := blendPasses(batch.Blend(kind))
		if !errors.Is(err, ErrDualSourceUnsupported) {
			t.Errorf("blendPasses(%v) err = %v, want ErrDualSourceUnsupported", kind, err)
		}
	}
}

func TestHashPipelineKeyDistinguishesFields(t *testing.T) {
	base := PipelineKey{
		Shader:      ShaderBrushSolid,
		Blend:       batch.BlendPremultipliedAlpha,
		ColorFormat: gputypes.TextureFormatBGRA8Unorm,
	}
	variants := []PipelineKey{
		{Shader: ShaderBrushImage, Blend: base.Blend, ColorFormat: base.ColorFormat},
		{Shader: base.Shader, Blend: batch.BlendAlpha, ColorFormat: base.ColorFormat},
		{Shader: base.Shader, Blend: base.Blend, Pass: 1, ColorFormat: base.ColorFormat},
		{Shader: base.Shader, Blend: base.Blend, ColorFormat: base.ColorFormat, DepthTest: true},
		{Shader: base.Shader, Blend: base.Blend, ColorFormat: base.ColorFormat, ClipMultiply: true},
	}
	baseHash := hashPipelineKey(base)
	for i, v := range variants {
		if hashPipelineKey(v) == baseHash {
			t.Errorf("variant %d hashes equal to base", i)
		}
	}
	if hashPipelineKey(base) != baseHash {
		t.Error("hash is not deterministic")
	}
}

func TestVertexLayoutStrides(t *testing.T) {
	cases := []struct {
		kind   ShaderKind
		stride uint64
		attrs  int
	}{
		{ShaderBrushSolid, instanceStride, 1},
		{ShaderTextRun, instanceStride, 1},
		{ShaderClipRect, clipRectStride, 7},
		{ShaderClipRectFast, clipRectStride, 7},
		{ShaderClipImage, clipImageStride, 7},
		{ShaderClipBoxShadow, clipBoxShadowStride, 8},
	}
	for _, tc := range cases {
		layouts := vertexLayoutFor(tc.kind)
		if len(layouts) != 1 {
			t.Fatalf("%v: %d buffers, want 1", tc.kind, len(layouts))
		}
		if layouts[0].ArrayStride != tc.stride {
			t.Errorf("%v stride = %d, want %d", tc.kind, layouts[0].ArrayStride, tc.stride)
		}
		if len(layouts[0].Attributes) != tc.attrs {
			t.Errorf("%v has %d attributes, want %d", tc.kind, len(layouts[0].Attributes), tc.attrs)
		}
	}
}

func TestClipMultiplyBlendKeepsDestination(t *testing.T) {
	state := clipMultiplyBlend()
	if state.Color.SrcFactor != gputypes.BlendFactorZero {
		t.Errorf("src factor = %v, want zero", state.Color.SrcFactor)
	}
	if state.Color.DstFactor != gputypes.BlendFactorSrc {
		t.Errorf("dst factor = %v, want src", state.Color.DstFactor)
	}
}

func TestNewPipelineCacheNilDevice(t *testing.T) {
	if _, err := NewPipelineCache(nil); !errors.Is(err, ErrNilDevice) {
		t.Fatalf("err = %v, want ErrNilDevice", err)
	}
}
