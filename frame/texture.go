// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

import "github.com/gogpu/gputypes"

// TextureID is an opaque handle to a texture owned by the texture cache.
// The zero value is not a valid texture.
type TextureID uint64

// Swizzle describes the channel order applied when sampling a texture.
type Swizzle uint8

// Swizzle values.
const (
	// SwizzleRGBA samples channels in their stored order.
	SwizzleRGBA Swizzle = iota

	// SwizzleBGRA swaps the red and blue channels on sample.
	SwizzleBGRA
)

// String returns a human-readable name for the swizzle.
func (s Swizzle) String() string {
	switch s {
	case SwizzleRGBA:
		return "RGBA"
	case SwizzleBGRA:
		return "BGRA"
	default:
		return unknownStr
	}
}

// TextureSourceKind identifies where a texture binding comes from.
type TextureSourceKind uint8

// Texture source kinds.
const (
	// TextureInvalid is the sentinel for an unused binding slot.
	TextureInvalid TextureSourceKind = iota

	// TextureCacheEntry is a texture owned by the texture cache
	// (rasterized images, glyph atlases, render task outputs).
	TextureCacheEntry

	// TextureExternal is an externally owned image, such as a video
	// frame handed over by the embedder without a copy.
	TextureExternal
)

// String returns a human-readable name for the source kind.
func (k TextureSourceKind) String() string {
	switch k {
	case TextureInvalid:
		return "Invalid"
	case TextureCacheEntry:
		return "TextureCacheEntry"
	case TextureExternal:
		return "External"
	default:
		return unknownStr
	}
}

// TextureSource identifies one texture binding. Sources are compared by
// value when deciding whether two draw calls can share a binding slot;
// the invalid source acts as a wildcard that matches anything.
type TextureSource struct {
	// Kind identifies where the texture comes from.
	Kind TextureSourceKind

	// ID is the texture handle. Meaningless when Kind is TextureInvalid.
	ID TextureID

	// Format is the stored pixel format of the texture.
	Format gputypes.TextureFormat

	// Swizzle is the channel order applied on sample.
	Swizzle Swizzle
}

// InvalidTexture returns the wildcard source for an unused binding slot.
func InvalidTexture() TextureSource {
	return TextureSource{Kind: TextureInvalid}
}

// CacheTexture returns a source for a texture-cache entry with the
// common RGBA8 format and identity swizzle.
func CacheTexture(id TextureID) TextureSource {
	return TextureSource{
		Kind:   TextureCacheEntry,
		ID:     id,
		Format: gputypes.TextureFormatRGBA8Unorm,
	}
}

// ExternalTexture returns a source for an externally owned image.
func ExternalTexture(id TextureID, format gputypes.TextureFormat) TextureSource {
	return TextureSource{
		Kind:   TextureExternal,
		ID:     id,
		Format: format,
	}
}

// IsValid reports whether the source refers to an actual texture.
func (t TextureSource) IsValid() bool {
	return t.Kind != TextureInvalid
}

// ImageBufferKind selects the sampler type an image shader binds.
type ImageBufferKind uint8

// Image buffer kinds.
const (
	// BufferTexture2D samples a regular 2D texture.
	BufferTexture2D ImageBufferKind = iota

	// BufferTextureRect samples a rectangle texture with unnormalized
	// coordinates.
	BufferTextureRect

	// BufferTextureExternal samples an external (imported) image.
	BufferTextureExternal
)

// String returns a human-readable name for the buffer kind.
func (k ImageBufferKind) String() string {
	switch k {
	case BufferTexture2D:
		return "Texture2D"
	case BufferTextureRect:
		return "TextureRect"
	case BufferTextureExternal:
		return "TextureExternal"
	default:
		return unknownStr
	}
}

// BufferKind returns the sampler type required to bind this source.
func (t TextureSource) BufferKind() ImageBufferKind {
	if t.Kind == TextureExternal {
		return BufferTextureExternal
	}
	return BufferTexture2D
}

const unknownStr = "Unknown"
