// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

import (
	"testing"

	"golang.org/x/image/math/fixed"
)

func TestGpuCacheAddressAsInt(t *testing.T) {
	tests := []struct {
		name string
		addr GpuCacheAddress
		want int32
	}{
		{"origin", GpuCacheAddress{U: 0, V: 0}, 0},
		{"first row", GpuCacheAddress{U: 5, V: 0}, 5},
		{"second row", GpuCacheAddress{U: 3, V: 1}, 1<<16 | 3},
		{"invalid", InvalidGpuCacheAddress, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.addr.AsInt(); got != tt.want {
				t.Errorf("AsInt() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMemoryGpuCachePerFrameBlocks(t *testing.T) {
	c := NewMemoryGpuCache(4)

	h1 := c.PushPerFrameBlocks([]GpuBlockData{{1, 2, 3, 4}, {5, 6, 7, 8}})
	h2 := c.PushPerFrameBlocks([]GpuBlockData{{9, 10, 11, 12}})

	a1 := c.GetAddress(h1)
	if a1 != (GpuCacheAddress{U: 0, V: 0}) {
		t.Errorf("first handle address = %+v, want {0 0}", a1)
	}
	a2 := c.GetAddress(h2)
	if a2 != (GpuCacheAddress{U: 2, V: 0}) {
		t.Errorf("second handle address = %+v, want {2 0}", a2)
	}
	if len(c.Blocks()) != 3 {
		t.Errorf("Blocks() length = %d, want 3", len(c.Blocks()))
	}
}

func TestMemoryGpuCacheRowWrap(t *testing.T) {
	c := NewMemoryGpuCache(2)
	c.PushPerFrameBlocks([]GpuBlockData{{}, {}, {}})
	h := c.PushPerFrameBlocks([]GpuBlockData{{}})

	// 3 blocks at width 2 put the next allocation at row 1, column 1.
	if got := c.GetAddress(h); got != (GpuCacheAddress{U: 1, V: 1}) {
		t.Errorf("address = %+v, want {1 1}", got)
	}
}

func TestMemoryGpuCacheHandleBlocks(t *testing.T) {
	c := NewMemoryGpuCache(4)
	c.PushPerFrameBlocks([]GpuBlockData{{1, 1, 1, 1}})

	h := GpuCacheHandle(42)
	c.PushHandleBlocks(h, []GpuBlockData{{2, 2, 2, 2}, {3, 3, 3, 3}})

	if got := c.GetAddress(h); got != (GpuCacheAddress{U: 1, V: 0}) {
		t.Errorf("handle address = %+v, want {1 0}", got)
	}
	if len(c.Blocks()) != 3 {
		t.Errorf("Blocks() length = %d, want 3", len(c.Blocks()))
	}

	c.Reset()
	if got := c.GetAddress(h); got != InvalidGpuCacheAddress {
		t.Errorf("GetAddress after Reset = %+v, want invalid", got)
	}
}

func TestMemoryGpuCacheHandleBlocksRowWrap(t *testing.T) {
	c := NewMemoryGpuCache(4)
	c.PushPerFrameBlocks([]GpuBlockData{{}, {}, {}})

	// Two more blocks would straddle the row boundary, so the run
	// starts on the next row.
	h := GpuCacheHandle(7)
	c.PushHandleBlocks(h, []GpuBlockData{{}, {}})
	if got := c.GetAddress(h); got != (GpuCacheAddress{U: 0, V: 1}) {
		t.Errorf("handle address = %+v, want {0 1}", got)
	}
}

func TestMemoryGpuCacheUnknownHandle(t *testing.T) {
	c := NewMemoryGpuCache(4)
	if got := c.GetAddress(GpuCacheHandle(999)); got != InvalidGpuCacheAddress {
		t.Errorf("GetAddress(unknown) = %+v, want invalid", got)
	}
	if got := c.GetAddress(InvalidGpuCacheHandle); got != InvalidGpuCacheAddress {
		t.Errorf("GetAddress(invalid) = %+v, want invalid", got)
	}
}

func TestMemoryGpuCacheReset(t *testing.T) {
	c := NewMemoryGpuCache(4)
	h := c.PushPerFrameBlocks([]GpuBlockData{{1, 1, 1, 1}})
	c.Reset()

	if got := c.GetAddress(h); got != InvalidGpuCacheAddress {
		t.Errorf("GetAddress after Reset = %+v, want invalid", got)
	}
	if len(c.Blocks()) != 0 {
		t.Errorf("Blocks() after Reset has %d entries, want 0", len(c.Blocks()))
	}
}

func TestZGenerator(t *testing.T) {
	g := NewZGenerator()
	if got := g.Next(); got != 0 {
		t.Errorf("first Next() = %d, want 0", got)
	}
	if got := g.Next(); got != 1 {
		t.Errorf("second Next() = %d, want 1", got)
	}

	base := g.NextRange(5)
	if base != 2 {
		t.Errorf("NextRange(5) = %d, want 2", base)
	}
	if got := g.Next(); got != 7 {
		t.Errorf("Next() after NextRange(5) = %d, want 7", got)
	}

	g.Reset()
	if got := g.Next(); got != 0 {
		t.Errorf("Next() after Reset = %d, want 0", got)
	}
}

func TestTransformPaletteID(t *testing.T) {
	aligned := MakeTransformPaletteID(7, TransformAxisAligned)
	if aligned.Kind() != TransformAxisAligned {
		t.Errorf("Kind() = %v, want AxisAligned", aligned.Kind())
	}
	if aligned.Index() != 7 {
		t.Errorf("Index() = %d, want 7", aligned.Index())
	}

	complexID := MakeTransformPaletteID(7, TransformComplex)
	if complexID.Kind() != TransformComplex {
		t.Errorf("Kind() = %v, want Complex", complexID.Kind())
	}
	if complexID.Index() != 7 {
		t.Errorf("Index() = %d, want 7", complexID.Index())
	}
	if aligned == complexID {
		t.Error("ids with different kinds must differ")
	}
}

func TestTextureSourceCompat(t *testing.T) {
	if InvalidTexture().IsValid() {
		t.Error("InvalidTexture().IsValid() = true")
	}
	ct := CacheTexture(3)
	if !ct.IsValid() {
		t.Error("CacheTexture(3).IsValid() = false")
	}
	if ct.BufferKind() != BufferTexture2D {
		t.Errorf("cache texture BufferKind() = %v, want Texture2D", ct.BufferKind())
	}
	ext := ExternalTexture(4, 0)
	if ext.BufferKind() != BufferTextureExternal {
		t.Errorf("external texture BufferKind() = %v, want TextureExternal", ext.BufferKind())
	}
}

func TestQuantizeSubpixelOffset(t *testing.T) {
	// 26.6 fixed point: 1.0 = 64. An x of 1.3 (83) quantizes to 0.25 (16)
	// since 0.3 (19) falls in the second quarter.
	got := QuantizeSubpixelOffset(fixed.Int26_6(83), 0, SubpixelHorizontal)
	if got.X != 16 {
		t.Errorf("quantized X = %d, want 16", got.X)
	}
	if got.Y != 0 {
		t.Errorf("quantized Y = %d, want 0", got.Y)
	}

	// SubpixelNone discards fractional positions entirely.
	got = QuantizeSubpixelOffset(fixed.Int26_6(83), fixed.Int26_6(83), SubpixelNone)
	if got != (fixed.Point26_6{}) {
		t.Errorf("SubpixelNone offset = %+v, want zero", got)
	}
}
