// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render turns finished batch output into GPU work.
//
// The batch package decides what draws together; this package decides
// how each batch draws: which shader variant runs it, which blend
// state the pipeline carries, and what bytes the instance attributes
// read. It walks finished containers and clip batchers and records
// draw calls into render passes the caller opens.
//
// # Key Principle
//
// The renderer RECEIVES a GPU device from the host application, it
// does NOT create its own. The host passes a DeviceHandle exposing
// HAL access and keeps ownership of targets and frame resources; the
// renderer owns only its pipeline cache and the per-frame instance
// buffers.
//
// # Pieces
//
//   - SelectShader maps a batch key to the shader variant that draws it
//   - PipelineCache compiles and caches one pipeline per (shader,
//     blend, pass, format) variant, WGSL through naga to SPIR-V
//   - Renderer uploads packed instances and records the draw calls of
//     containers and clip mask tasks
//
// Usage:
//
//	renderer, err := render.NewRenderer(handle, render.Options{})
//	if err != nil { ... }
//	// per frame, inside an open render pass:
//	err = renderer.DrawContainers(rp, containers, width, height)
//	// after the frame's work completes on the GPU:
//	renderer.EndFrame()
package render
