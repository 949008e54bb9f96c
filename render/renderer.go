// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	compositor "github.com/gogpu/compositor"
	"github.com/gogpu/compositor/batch"
	"github.com/gogpu/compositor/frame"
)

// Packed clip mask instance strides. The 48 byte prefix is shared by
// every clip kind; the tail carries the kind's own data.
const (
	clipRectStride      = 64
	clipImageStride     = 80
	clipBoxShadowStride = 80
)

// DrawStats counts the work one frame submitted.
type DrawStats struct {
	DrawCalls        int
	Instances        int
	PipelineSwitches int
}

// Options configures a Renderer.
type Options struct {
	// ColorFormat is the render target format pipelines are compiled
	// against. Zero value selects BGRA8.
	ColorFormat gputypes.TextureFormat
}

// Renderer turns finished batch containers into GPU draw calls. It
// owns the pipeline cache and the transient instance buffers of the
// frame in flight; the caller owns render passes, targets and the
// frame resources bound at group 0.
//
// A Renderer is not safe for concurrent use.
type Renderer struct {
	device hal.Device
	queue  hal.Queue

	pipelines   *PipelineCache
	colorFormat gputypes.TextureFormat

	// frameBuffers holds instance buffers uploaded since the last
	// EndFrame. They stay alive until the GPU is done with the frame.
	frameBuffers []hal.Buffer

	// lastPipeline dedupes SetPipeline calls inside one pass.
	lastPipeline hal.RenderPipeline

	stats DrawStats
}

// NewRenderer creates a renderer on the host's shared GPU device. The
// handle must expose HAL access the way gogpu's context does.
func NewRenderer(handle DeviceHandle, opts Options) (*Renderer, error) {
	device, queue, err := halFromHandle(handle)
	if err != nil {
		return nil, err
	}
	if opts.ColorFormat == 0 {
		opts.ColorFormat = gputypes.TextureFormatBGRA8Unorm
	}
	pipelines, err := NewPipelineCache(device)
	if err != nil {
		return nil, err
	}
	return &Renderer{
		device:      device,
		queue:       queue,
		pipelines:   pipelines,
		colorFormat: opts.ColorFormat,
	}, nil
}

// Stats returns the draw counters accumulated since the last EndFrame.
func (r *Renderer) Stats() DrawStats { return r.stats }

// PipelineStats returns the pipeline cache hit and miss counts.
func (r *Renderer) PipelineStats() (hits, misses uint64) {
	return r.pipelines.Stats()
}

// EndFrame releases the frame's instance buffers and resets the draw
// counters. Call it after the frame's command buffers have completed.
func (r *Renderer) EndFrame() {
	for _, buf := range r.frameBuffers {
		r.device.DestroyBuffer(buf)
	}
	r.frameBuffers = r.frameBuffers[:0]
	if r.stats.DrawCalls > 0 {
		compositor.Logger().Debug("render: frame submitted",
			"draw_calls", r.stats.DrawCalls,
			"instances", r.stats.Instances,
			"pipeline_switches", r.stats.PipelineSwitches)
	}
	r.stats = DrawStats{}
}

// Destroy releases the pipeline cache and any live frame buffers.
func (r *Renderer) Destroy() {
	for _, buf := range r.frameBuffers {
		r.device.DestroyBuffer(buf)
	}
	r.frameBuffers = nil
	r.pipelines.Destroy()
}

// DrawContainers records the draw calls of finished batch containers
// into an open render pass. Opaque batches draw first front to back
// with depth testing, then the blended batches in their paint order.
// The pass must already have the frame resources bound at group 0 and
// a depth attachment when any container carries opaque batches.
// targetWidth and targetHeight give the pass's full scissor extent.
func (r *Renderer) DrawContainers(rp hal.RenderPassEncoder, containers []batch.AlphaBatchContainer, targetWidth, targetHeight uint32) error {
	r.lastPipeline = nil
	for i := range containers {
		c := &containers[i]
		r.applyScissor(rp, c.TaskScissorRect, targetWidth, targetHeight)

		for _, b := range c.OpaqueBatches {
			if err := r.drawBatch(rp, b, true); err != nil {
				return err
			}
		}
		for _, b := range c.AlphaBatches {
			if err := r.drawBatch(rp, b, false); err != nil {
				return err
			}
		}

		if c.TaskScissorRect != nil {
			r.applyScissor(rp, nil, targetWidth, targetHeight)
		}
	}
	return nil
}

func (r *Renderer) applyScissor(rp hal.RenderPassEncoder, scissor *compositor.IntRect, targetWidth, targetHeight uint32) {
	if scissor == nil {
		rp.SetScissorRect(0, 0, targetWidth, targetHeight)
		return
	}
	rp.SetScissorRect(
		uint32(max(scissor.MinX, 0)),
		uint32(max(scissor.MinY, 0)),
		uint32(max(scissor.Width(), 0)),
		uint32(max(scissor.Height(), 0)))
}

// drawBatch emits one primitive batch, running every blend pass its
// mode needs over the same instances.
func (r *Renderer) drawBatch(rp hal.RenderPassEncoder, b *batch.PrimitiveBatch, depthTest bool) error {
	if len(b.Instances) == 0 {
		return nil
	}

	shader := SelectShader(b.Key)
	passes, err := blendPasses(b.Key.Blend)
	if err != nil {
		return fmt.Errorf("batch %v: %w", b.Key.Kind, err)
	}

	buf, err := r.uploadInstances(shader.String(), packBatchInstances(b.Instances))
	if err != nil {
		return err
	}

	for pass := range passes {
		pipeline, err := r.pipelines.Get(PipelineKey{
			Shader:      shader,
			Blend:       b.Key.Blend.Kind,
			Pass:        uint8(pass),
			ColorFormat: r.colorFormat,
			DepthTest:   depthTest,
		})
		if err != nil {
			return err
		}
		r.setPipeline(rp, pipeline)
		rp.SetVertexBuffer(0, buf, 0)
		rp.Draw(4, uint32(len(b.Instances)), 0, 0)
		r.stats.DrawCalls++
		r.stats.Instances += len(b.Instances)
	}
	return nil
}

// DrawClipBatcher records a clip mask task's draws into an open pass
// targeting the mask texture. Primary instances draw with blending
// off, writing coverage directly; secondary instances multiply into
// what is already there.
func (r *Renderer) DrawClipBatcher(rp hal.RenderPassEncoder, c *batch.ClipBatcher) error {
	r.lastPipeline = nil
	if err := r.drawClipList(rp, &c.Primary, false); err != nil {
		return err
	}
	return r.drawClipList(rp, &c.Secondary, true)
}

func (r *Renderer) drawClipList(rp hal.RenderPassEncoder, l *batch.ClipBatchList, multiply bool) error {
	if len(l.SlowRects) > 0 {
		data := packClipRects(l.SlowRects)
		if err := r.drawClip(rp, ShaderClipRect, multiply, data, len(l.SlowRects)); err != nil {
			return err
		}
	}
	if len(l.FastRects) > 0 {
		data := packClipRects(l.FastRects)
		if err := r.drawClip(rp, ShaderClipRectFast, multiply, data, len(l.FastRects)); err != nil {
			return err
		}
	}
	// The caller binds each sampled texture at group 2 before the
	// matching draw; one texture's instances are one draw call.
	for _, insts := range l.Images {
		data := packClipImages(insts)
		if err := r.drawClip(rp, ShaderClipImage, multiply, data, len(insts)); err != nil {
			return err
		}
	}
	for _, insts := range l.BoxShadows {
		data := packClipBoxShadows(insts)
		if err := r.drawClip(rp, ShaderClipBoxShadow, multiply, data, len(insts)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) drawClip(rp hal.RenderPassEncoder, shader ShaderKind, multiply bool, data []byte, count int) error {
	pipeline, err := r.pipelines.Get(PipelineKey{
		Shader:       shader,
		Blend:        batch.BlendNone,
		ColorFormat:  r.colorFormat,
		ClipMultiply: multiply,
	})
	if err != nil {
		return err
	}
	buf, err := r.uploadInstances(shader.String(), data)
	if err != nil {
		return err
	}
	r.setPipeline(rp, pipeline)
	rp.SetVertexBuffer(0, buf, 0)
	rp.Draw(4, uint32(count), 0, 0)
	r.stats.DrawCalls++
	r.stats.Instances += count
	return nil
}

func (r *Renderer) setPipeline(rp hal.RenderPassEncoder, pipeline hal.RenderPipeline) {
	if pipeline == r.lastPipeline {
		return
	}
	rp.SetPipeline(pipeline)
	r.lastPipeline = pipeline
	r.stats.PipelineSwitches++
}

// uploadInstances creates a vertex buffer holding one batch's packed
// instances. The buffer lives until EndFrame.
func (r *Renderer) uploadInstances(label string, data []byte) (hal.Buffer, error) {
	buf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label + "_instances",
		Size:  uint64(len(data)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create instance buffer: %w", err)
	}
	r.queue.WriteBuffer(buf, 0, data)
	r.frameBuffers = append(r.frameBuffers, buf)
	return buf, nil
}

// packBatchInstances serializes packed instances little endian, the
// layout the instance vertex attribute reads.
func packBatchInstances(instances []batch.InstanceData) []byte {
	data := make([]byte, 0, len(instances)*instanceStride)
	for _, inst := range instances {
		for _, v := range inst {
			data = binary.LittleEndian.AppendUint32(data, uint32(v))
		}
	}
	return data
}

func appendF32(data []byte, v float32) []byte {
	return binary.LittleEndian.AppendUint32(data, math.Float32bits(v))
}

func appendI32(data []byte, v int32) []byte {
	return binary.LittleEndian.AppendUint32(data, uint32(v))
}

func appendClipCommon(data []byte, c *batch.ClipMaskCommon) []byte {
	data = appendF32(data, c.SubRect.MinX)
	data = appendF32(data, c.SubRect.MinY)
	data = appendF32(data, c.SubRect.MaxX-c.SubRect.MinX)
	data = appendF32(data, c.SubRect.MaxY-c.SubRect.MinY)
	data = appendF32(data, c.TaskOrigin.X)
	data = appendF32(data, c.TaskOrigin.Y)
	data = appendF32(data, c.ScreenOrigin.X)
	data = appendF32(data, c.ScreenOrigin.Y)
	data = appendF32(data, c.DevicePixelScale)
	data = appendI32(data, int32(c.ClipTransformID))
	data = appendI32(data, int32(c.PrimTransformID))
	return appendI32(data, 0)
}

func appendAddress(data []byte, addr frame.GpuCacheAddress) []byte {
	data = appendI32(data, int32(addr.U))
	return appendI32(data, int32(addr.V))
}

func packClipRects(insts []batch.ClipMaskRect) []byte {
	data := make([]byte, 0, len(insts)*clipRectStride)
	for i := range insts {
		inst := &insts[i]
		data = appendClipCommon(data, &inst.Common)
		data = appendAddress(data, inst.ClipData)
		data = appendF32(data, inst.LocalPos.X)
		data = appendF32(data, inst.LocalPos.Y)
	}
	return data
}

func packClipImages(insts []batch.ClipMaskImage) []byte {
	data := make([]byte, 0, len(insts)*clipImageStride)
	for i := range insts {
		inst := &insts[i]
		data = appendClipCommon(data, &inst.Common)
		data = appendAddress(data, inst.ResourceAddress)
		data = appendF32(data, inst.TileRect.MinX)
		data = appendF32(data, inst.TileRect.MinY)
		data = appendF32(data, inst.TileRect.MaxX-inst.TileRect.MinX)
		data = appendF32(data, inst.TileRect.MaxY-inst.TileRect.MinY)
		data = appendI32(data, 0)
		data = appendI32(data, 0)
	}
	return data
}

func packClipBoxShadows(insts []batch.ClipMaskBoxShadow) []byte {
	data := make([]byte, 0, len(insts)*clipBoxShadowStride)
	for i := range insts {
		inst := &insts[i]
		data = appendClipCommon(data, &inst.Common)
		data = appendAddress(data, inst.ResourceAddress)
		data = appendF32(data, inst.ShadowRect.MinX)
		data = appendF32(data, inst.ShadowRect.MinY)
		data = appendF32(data, inst.ShadowRect.MaxX-inst.ShadowRect.MinX)
		data = appendF32(data, inst.ShadowRect.MaxY-inst.ShadowRect.MinY)
		data = appendI32(data, int32(inst.StretchModeX))
		data = appendI32(data, int32(inst.StretchModeY))
	}
	return data
}
