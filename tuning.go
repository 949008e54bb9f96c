package compositor

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Tuning holds the empirically tuned constants used by the batching
// engine. The defaults encode measurements taken on the GPUs and drivers
// the engine was profiled against; they are not derivable from the
// algorithms themselves, so they are kept as named, overridable values.
type Tuning struct {
	// ClipTileSize is the edge length in device pixels of the tiles used
	// when rasterizing large axis-aligned clip rectangles.
	ClipTileSize int32 `toml:"clip_tile_size"`

	// ClipTilingAreaThreshold is the minimum clip-mask area in square
	// device pixels before tiled clip rasterization is attempted.
	ClipTilingAreaThreshold int64 `toml:"clip_tiling_area_threshold"`

	// OpaqueLookbackCount bounds the backward key-match scan through
	// recent opaque batches.
	OpaqueLookbackCount int `toml:"opaque_lookback_count"`

	// OpaqueAreaFractionForNewBatch is the fraction of the screen area
	// above which an opaque primitive only considers the most recent
	// batch. Large primitives rarely benefit from a deep scan.
	OpaqueAreaFractionForNewBatch float32 `toml:"opaque_area_fraction_for_new_batch"`

	// TextRunInstanceReserve is the instance capacity pre-reserved for
	// new text-run batches. Glyph runs generate far more instances per
	// primitive than other primitive kinds.
	TextRunInstanceReserve int `toml:"text_run_instance_reserve"`

	// DefaultInstanceReserve is the instance capacity pre-reserved for
	// new batches of every other kind.
	DefaultInstanceReserve int `toml:"default_instance_reserve"`

	// MaxVertexTextureWidth bounds how many GPU data blocks fit in one
	// row of the vertex data texture, which in turn bounds how many
	// image tile sub-rects can be packed per GPU cache row.
	MaxVertexTextureWidth int `toml:"max_vertex_texture_width"`
}

// DefaultTuning returns the tuned defaults.
func DefaultTuning() Tuning {
	return Tuning{
		ClipTileSize:                  128,
		ClipTilingAreaThreshold:       128 * 128 * 4,
		OpaqueLookbackCount:           16,
		OpaqueAreaFractionForNewBatch: 0.25,
		TextRunInstanceReserve:        128,
		DefaultInstanceReserve:        16,
		MaxVertexTextureWidth:         1024,
	}
}

// LoadTuning reads TOML overrides from path on top of the defaults.
// Fields absent from the file keep their default values.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return DefaultTuning(), fmt.Errorf("compositor: failed to load tuning overrides: %w", err)
	}
	if err := t.validate(); err != nil {
		return DefaultTuning(), err
	}
	return t, nil
}

func (t Tuning) validate() error {
	if t.ClipTileSize <= 0 {
		return fmt.Errorf("compositor: clip_tile_size must be positive, got %d", t.ClipTileSize)
	}
	if t.OpaqueLookbackCount < 0 {
		return fmt.Errorf("compositor: opaque_lookback_count must not be negative, got %d", t.OpaqueLookbackCount)
	}
	if t.OpaqueAreaFractionForNewBatch <= 0 || t.OpaqueAreaFractionForNewBatch > 1 {
		return fmt.Errorf("compositor: opaque_area_fraction_for_new_batch must be in (0, 1], got %g", t.OpaqueAreaFractionForNewBatch)
	}
	if t.MaxVertexTextureWidth <= 0 {
		return fmt.Errorf("compositor: max_vertex_texture_width must be positive, got %d", t.MaxVertexTextureWidth)
	}
	return nil
}
