// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

import (
	"errors"

	"github.com/go-text/typesetting/font"
	"golang.org/x/image/math/fixed"
)

// ErrNotReady is returned by resource lookups whose backing texture has
// not been rasterized or uploaded yet this frame. It is recoverable:
// the affected primitive is skipped and drawn on a later frame.
var ErrNotReady = errors.New("frame: resource not ready")

// ImageKey identifies a registered image.
type ImageKey uint64

// ImageRendering is the requested sampling quality for an image.
type ImageRendering uint8

// Image rendering modes.
const (
	ImageRenderingAuto ImageRendering = iota
	ImageRenderingCrispEdges
	ImageRenderingPixelated
)

// TileOffset addresses one tile of a tiled image.
type TileOffset struct {
	X, Y uint16
}

// ImageRequest asks the resource cache for one rasterized image, or one
// tile of a tiled image.
type ImageRequest struct {
	Key       ImageKey
	Rendering ImageRendering

	// Tile selects a tile when Tiled is set.
	Tile  TileOffset
	Tiled bool
}

// CacheItem is a resolved resource-cache entry: the texture holding the
// rasterized data and the handle of its uv rect in the GPU cache.
type CacheItem struct {
	Texture      TextureSource
	UVRectHandle GpuCacheHandle
}

// GlyphID is a glyph index within a font face.
type GlyphID uint16

// SubpixelDirection controls which axes of a glyph's position
// participate in subpixel quantization.
type SubpixelDirection uint8

// Subpixel directions.
const (
	SubpixelNone SubpixelDirection = iota
	SubpixelHorizontal
	SubpixelVertical
)

// FontInstance is one sized, styled instantiation of a font used by a
// text run. The parsed font is shared and read-only; instances are
// cheap values.
type FontInstance struct {
	// Font is the parsed font, shared across instances. font.Font is
	// read-only and safe for concurrent use.
	Font *font.Font

	// Size is the device-pixel size.
	Size fixed.Int26_6

	// Subpixel selects the subpixel positioning axes for glyph keys.
	Subpixel SubpixelDirection

	// UseSubpixelAA requests subpixel anti-aliased rasterization,
	// which draws with the dual-source or two-pass blend modes.
	UseSubpixelAA bool
}

// GlyphKey identifies one rasterized glyph variant: the glyph index
// plus the quantized subpixel offset it was rasterized at.
type GlyphKey struct {
	Glyph GlyphID

	// Offset is the quantized subpixel offset in 26.6 fixed point.
	Offset fixed.Point26_6
}

// QuantizeSubpixelOffset snaps a device position to the glyph cache's
// quarter-pixel grid along the allowed axes.
func QuantizeSubpixelOffset(x, y fixed.Int26_6, dir SubpixelDirection) fixed.Point26_6 {
	const quarter = 16 // 0.25 in 26.6 fixed point
	quant := func(v fixed.Int26_6) fixed.Int26_6 {
		return (v & 0x3f) / quarter * quarter
	}
	var p fixed.Point26_6
	switch dir {
	case SubpixelHorizontal:
		p.X = quant(x)
	case SubpixelVertical:
		p.Y = quant(y)
	}
	return p
}

// GlyphFetchResult locates one glyph's rasterized data: which glyph of
// the run it is and where its uv rect lives in the GPU cache.
type GlyphFetchResult struct {
	// IndexInRun is the glyph's index within the requested run.
	IndexInRun int

	// UVRectAddress is the resolved address of the glyph's uv rect.
	UVRectAddress GpuCacheAddress
}

// GlyphFormat is the raster format glyphs were cached in. Text batches
// cannot mix formats because each selects a different shader variant.
type GlyphFormat uint8

// Glyph raster formats.
const (
	GlyphFormatAlpha GlyphFormat = iota
	GlyphFormatTransformedAlpha
	GlyphFormatSubpixel
	GlyphFormatTransformedSubpixel
	GlyphFormatBitmap
	GlyphFormatColorBitmap
)

// String returns a human-readable name for the glyph format.
func (f GlyphFormat) String() string {
	switch f {
	case GlyphFormatAlpha:
		return "Alpha"
	case GlyphFormatTransformedAlpha:
		return "TransformedAlpha"
	case GlyphFormatSubpixel:
		return "Subpixel"
	case GlyphFormatTransformedSubpixel:
		return "TransformedSubpixel"
	case GlyphFormatBitmap:
		return "Bitmap"
	case GlyphFormatColorBitmap:
		return "ColorBitmap"
	default:
		return unknownStr
	}
}

// IsColor reports whether glyphs in this format carry their own color.
func (f GlyphFormat) IsColor() bool {
	return f == GlyphFormatColorBitmap
}

// GlyphGroupFunc receives one texture's worth of glyphs from a fetch.
// It may be invoked several times per run when the run's glyphs are
// spread across atlas textures or raster formats.
type GlyphGroupFunc func(texture TextureSource, format GlyphFormat, glyphs []GlyphFetchResult)

// ResourceCache exposes the already-populated image and glyph caches.
type ResourceCache interface {
	// GetCachedImage resolves an image request to its cache entry.
	// Returns ErrNotReady (possibly wrapped) when the image has not
	// been rasterized or uploaded this frame.
	GetCachedImage(req ImageRequest) (CacheItem, error)

	// FetchGlyphs resolves a run of glyph keys and hands the resolved
	// glyphs to group, batched per (texture, format). Glyphs that are
	// not resident this frame are silently omitted. scratch is caller
	// owned and reused across runs within a frame.
	FetchGlyphs(font FontInstance, keys []GlyphKey, scratch *GlyphFetchScratch, cache GpuCache, group GlyphGroupFunc)
}
