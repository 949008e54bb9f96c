// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

// RenderTaskID identifies a node in the render task graph: one unit of
// GPU work producing an intermediate texture (a blurred picture, a clip
// mask, a readback). The zero value is not a valid task.
type RenderTaskID uint32

// InvalidRenderTaskID is the sentinel for "no task".
const InvalidRenderTaskID RenderTaskID = 0

// IsValid reports whether the id refers to an actual task.
func (id RenderTaskID) IsValid() bool {
	return id != InvalidRenderTaskID
}

// RenderTaskAddress is the index of a task within the current pass's
// task data, as encoded into GPU instances.
type RenderTaskAddress uint16

// OpaqueTaskAddress is the sentinel clip-task address meaning "no mask,
// fully opaque coverage". Segments carrying it skip blending.
const OpaqueTaskAddress RenderTaskAddress = 0x7fff

// RenderTaskGraph exposes the already-built task graph to the batcher.
// The graph has decided what intermediate surfaces exist; the batcher
// only resolves task outputs to bindable textures.
type RenderTaskGraph interface {
	// ResolveLocation returns the uv-rect address and texture holding
	// the output of a task. ok is false when the task's output is not
	// available this frame.
	ResolveLocation(id RenderTaskID) (GpuCacheAddress, TextureSource, bool)

	// TaskAddress returns the pass-local address of a task, for
	// encoding into instance data.
	TaskAddress(id RenderTaskID) RenderTaskAddress
}
