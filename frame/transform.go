// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

import "github.com/gogpu/compositor"

// SpatialNodeIndex identifies a node in the spatial tree.
type SpatialNodeIndex uint32

// RootSpatialNode is the root of the spatial tree.
const RootSpatialNode SpatialNodeIndex = 0

// TransformKind classifies a resolved transform for batching purposes.
type TransformKind uint8

// Transform kinds.
const (
	// TransformAxisAligned is a scale/translation-only transform.
	// Axis-aligned content needs no edge anti-aliasing.
	TransformAxisAligned TransformKind = iota

	// TransformComplex involves rotation, skew or perspective.
	TransformComplex
)

// String returns a human-readable name for the transform kind.
func (k TransformKind) String() string {
	switch k {
	case TransformAxisAligned:
		return "AxisAligned"
	case TransformComplex:
		return "Complex"
	default:
		return unknownStr
	}
}

// transformComplexBit flags a palette id as referring to a complex
// transform. The palette sets it when it registers the transform.
const transformComplexBit uint32 = 1 << 31

// TransformPaletteID addresses one resolved node-to-node transform in
// the transform palette texture. The top bit carries the transform
// kind so the batcher can classify without a second palette query.
type TransformPaletteID uint32

// MakeTransformPaletteID builds an id from a palette index and kind.
func MakeTransformPaletteID(index uint32, kind TransformKind) TransformPaletteID {
	if kind == TransformComplex {
		return TransformPaletteID(index | transformComplexBit)
	}
	return TransformPaletteID(index)
}

// Kind returns the transform classification encoded in the id.
func (id TransformPaletteID) Kind() TransformKind {
	if uint32(id)&transformComplexBit != 0 {
		return TransformComplex
	}
	return TransformAxisAligned
}

// Index returns the palette index encoded in the id.
func (id TransformPaletteID) Index() uint32 {
	return uint32(id) &^ transformComplexBit
}

// TransformPalette resolves node pairs to palette ids. The palette
// itself lives upstream with the spatial tree.
type TransformPalette interface {
	// GetID returns the palette id for the transform taking child-space
	// content into ancestor space.
	GetID(child, ancestor SpatialNodeIndex) TransformPaletteID
}

// SpatialTree answers the spatial queries the clip batcher needs when
// deciding whether a clip transform is simple enough to tile.
type SpatialTree interface {
	// IsAxisAlignedToRoot reports whether content under node maps to
	// the root coordinate system by scale and translation only.
	IsAxisAlignedToRoot(node SpatialNodeIndex) bool

	// MapToWorld maps a rect in node space into world space. ok is
	// false for perspective or non-invertible transforms, in which
	// case no exact world rect exists.
	MapToWorld(node SpatialNodeIndex, r compositor.Rect) (compositor.Rect, bool)
}
