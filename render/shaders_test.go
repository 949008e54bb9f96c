// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"strings"
	"testing"

	"github.com/gogpu/compositor/batch"
	"github.com/gogpu/compositor/frame"
)

func keyFor(kind batch.BatchKind) batch.BatchKey {
	return batch.NewBatchKey(kind, batch.Blend(batch.BlendPremultipliedAlpha), batch.BatchTextures{})
}

func TestSelectShader(t *testing.T) {
	cases := []struct {
		kind batch.BatchKind
		want ShaderKind
	}{
		{batch.SolidKind(), ShaderBrushSolid},
		{batch.ImageKind(frame.BufferTexture2D), ShaderBrushImage},
		{batch.TextRunKind(frame.GlyphFormatAlpha), ShaderTextRun},
		{batch.SplitCompositeKind(), ShaderSplitComposite},
	}
	for _, tc := range cases {
		got := SelectShader(keyFor(tc.kind))
		if got != tc.want {
			t.Errorf("SelectShader(%v) = %v, want %v", tc.kind.Tag, got, tc.want)
		}
	}
}

func TestSelectShaderPanicsOnUnknownTag(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown kind tag")
		}
	}()
	SelectShader(batch.BatchKey{Kind: batch.BatchKind{Tag: 0xff}})
}

func TestShaderSources(t *testing.T) {
	for kind := ShaderKind(0); kind < shaderKindCount; kind++ {
		name := kind.String()
		if name == "unknown" {
			t.Errorf("shader %d has no name", kind)
		}
		src := ShaderSource(kind)
		if src == "" {
			t.Errorf("shader %s has empty source", name)
			continue
		}
		if !strings.Contains(src, "fn vs_main") {
			t.Errorf("shader %s missing vertex entry point", name)
		}
		if !strings.Contains(src, "fn fs_main") {
			t.Errorf("shader %s missing fragment entry point", name)
		}
	}
}

func TestCompileShaderRejectsEmptySource(t *testing.T) {
	if _, err := CompileShaderToSPIRV(""); err == nil {
		t.Fatal("expected error for empty shader source")
	}
}
