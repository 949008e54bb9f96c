// Package compositor provides the draw-call batching engine of a
// GPU-accelerated 2D compositor.
//
// # Overview
//
// The engine takes already-resolved scene content (rectangles, images,
// glyph runs, gradients, borders, composited picture layers, YUV video
// frames and clip masks) and turns it into a minimal ordered sequence
// of GPU draw calls while preserving the exact visual result of strict
// back-to-front drawing.
//
// # Architecture
//
// The library is organized into:
//   - Root package: logging, device/world geometry, tuning constants
//   - frame: per-frame collaborator surface (render tasks, GPU cache,
//     transform palette, resource cache, z allocation)
//   - prim: immutable per-frame primitive records read by the batcher
//   - batch: batch keys, batch lists, the batch builder state machine,
//     and the clip-mask batcher
//   - render: shader selection and draw-call submission over wgpu
//
// # Lifecycle
//
// Everything the engine builds is per-frame scratch state: constructed
// fresh each frame from resolved scene, visibility and resource data,
// submitted, and discarded. There is no cross-frame persistence.
package compositor

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
