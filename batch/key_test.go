// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import (
	"testing"

	"github.com/gogpu/compositor/frame"
	"github.com/gogpu/compositor/prim"
)

func TestTextureSetWildcardCompatibility(t *testing.T) {
	a := SingleTexture(frame.CacheTexture(1))
	empty := EmptyTextureSet()

	if !a.IsCompatibleWith(empty) {
		t.Error("bound set should be compatible with an empty set")
	}
	if !empty.IsCompatibleWith(a) {
		t.Error("compatibility should be symmetric")
	}
	if !a.IsCompatibleWith(a) {
		t.Error("compatibility should be reflexive")
	}

	b := SingleTexture(frame.CacheTexture(2))
	if a.IsCompatibleWith(b) {
		t.Error("sets bound to different textures must not be compatible")
	}
}

func TestTextureSetCompatibilityNotTransitive(t *testing.T) {
	a := SingleTexture(frame.CacheTexture(1))
	empty := EmptyTextureSet()
	b := SingleTexture(frame.CacheTexture(2))

	// a ~ empty and empty ~ b, but a !~ b. The wildcard makes the
	// relation non-transitive, which is why batch selection re-checks
	// against the accumulated set.
	if !a.IsCompatibleWith(empty) || !empty.IsCompatibleWith(b) {
		t.Fatal("wildcard pairs should be compatible")
	}
	if a.IsCompatibleWith(b) {
		t.Error("transitivity must not hold across the wildcard")
	}
}

func TestTextureSetCombine(t *testing.T) {
	a := SingleTexture(frame.CacheTexture(1))
	empty := EmptyTextureSet()

	combined, ok := empty.CombineWith(a)
	if !ok {
		t.Fatal("combining with an empty set should succeed")
	}
	if combined.Colors[0] != frame.CacheTexture(1) {
		t.Errorf("combined slot 0 = %+v, want the bound texture", combined.Colors[0])
	}

	b := SingleTexture(frame.CacheTexture(2))
	if _, ok := a.CombineWith(b); ok {
		t.Error("combining conflicting bindings should fail")
	}
}

func TestBatchTexturesMergeWidensClipSlot(t *testing.T) {
	bt := PrimTextured(frame.CacheTexture(1), frame.InvalidTexture())
	other := PrimTextured(frame.InvalidTexture(), frame.CacheTexture(9))

	bt.Merge(other)
	if bt.ClipMask != frame.CacheTexture(9) {
		t.Errorf("clip slot = %+v, want texture 9", bt.ClipMask)
	}
	if bt.Input.Colors[0] != frame.CacheTexture(1) {
		t.Errorf("color slot lost its binding: %+v", bt.Input.Colors[0])
	}
}

func TestBatchTexturesMergeConflictPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("merging conflicting clip bindings should panic")
		}
	}()
	bt := PrimUntextured(frame.CacheTexture(1))
	bt.Merge(PrimUntextured(frame.CacheTexture(2)))
}

func TestBatchKeyCompatibility(t *testing.T) {
	solid := NewBatchKey(SolidKind(), Blend(BlendPremultipliedAlpha), EmptyBatchTextures())
	solid2 := NewBatchKey(SolidKind(), Blend(BlendPremultipliedAlpha), PrimUntextured(frame.CacheTexture(3)))
	if !solid.IsCompatibleWith(solid2) {
		t.Error("same kind and blend with wildcard textures should be compatible")
	}

	opaque := NewBatchKey(SolidKind(), Blend(BlendNone), EmptyBatchTextures())
	if solid.IsCompatibleWith(opaque) {
		t.Error("different blend modes must not be compatible")
	}

	image := NewBatchKey(ImageKind(frame.BufferTexture2D), Blend(BlendPremultipliedAlpha), EmptyBatchTextures())
	if solid.IsCompatibleWith(image) {
		t.Error("different kinds must not be compatible")
	}
}

func TestMixBlendKindsNeverMergeAcrossTaskPairs(t *testing.T) {
	a := NewBatchKey(MixBlendKind(1, 2), Blend(BlendPremultipliedAlpha), EmptyBatchTextures())
	b := NewBatchKey(MixBlendKind(1, 3), Blend(BlendPremultipliedAlpha), EmptyBatchTextures())
	if a.IsCompatibleWith(b) {
		t.Error("mix blend keys with different task pairs must not be compatible")
	}
	if !a.IsCompatibleWith(a) {
		t.Error("identical mix blend keys should be compatible")
	}
}

func TestAdvancedBlendCarriesMode(t *testing.T) {
	mul := AdvancedBlend(prim.MixBlendMultiply)
	scr := AdvancedBlend(prim.MixBlendScreen)
	if mul == scr {
		t.Error("advanced blends with different modes must differ")
	}
	if mul.Kind != BlendAdvanced || mul.Advanced != prim.MixBlendMultiply {
		t.Errorf("advanced blend payload lost: %+v", mul)
	}
	if got := mul.String(); got != "Advanced(multiply)" {
		t.Errorf("String() = %q", got)
	}
}

func TestYuvKeyMatchesOnAllParameters(t *testing.T) {
	a := YuvKind(prim.YuvPlanar, prim.ColorDepth8, prim.YuvRec709, prim.ColorRangeLimited)
	b := YuvKind(prim.YuvPlanar, prim.ColorDepth8, prim.YuvRec709, prim.ColorRangeFull)
	if a == b {
		t.Error("yuv kinds differing in color range must not be equal")
	}
}
