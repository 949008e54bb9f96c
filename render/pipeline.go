// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/compositor/batch"
)

// Pipeline errors.
var (
	// ErrNilDevice is returned when creating a cache without a device.
	ErrNilDevice = errors.New("render: HAL device is nil")

	// ErrAdvancedBlendUnsupported is returned for advanced mix-blend
	// keys. Fixed-function hardware cannot express them; batching only
	// emits such keys when the host opted in on a capable backend.
	ErrAdvancedBlendUnsupported = errors.New("render: advanced blend requires backend support")

	// ErrDualSourceUnsupported is returned for dual-source blend keys.
	// The portable blend factor enum carries no Src1 factors yet, so
	// hosts must leave dual-source blending off in the builder options;
	// subpixel text then takes the multi-pass bg-color path.
	ErrDualSourceUnsupported = errors.New("render: dual-source blending requires backend support")
)

// instanceStride is the byte stride of one packed batch instance.
const instanceStride = 16

// blendPass is one fixed-function pass of a blend mode. Most modes draw
// in a single pass; subpixel text over an unknown backdrop needs three.
type blendPass struct {
	// State is nil when the pass draws with blending disabled.
	State *gputypes.BlendState
}

// blendPasses maps a batch blend mode to its fixed-function passes.
func blendPasses(mode batch.BlendMode) ([]blendPass, error) {
	premul := gputypes.BlendStatePremultiplied()

	one := func(color, alpha gputypes.BlendComponent) []blendPass {
		return []blendPass{{State: &gputypes.BlendState{Color: color, Alpha: alpha}}}
	}
	comp := func(src, dst gputypes.BlendFactor) gputypes.BlendComponent {
		return gputypes.BlendComponent{
			SrcFactor: src,
			DstFactor: dst,
			Operation: gputypes.BlendOperationAdd,
		}
	}

	switch mode.Kind {
	case batch.BlendNone:
		return []blendPass{{State: nil}}, nil
	case batch.BlendAlpha:
		return one(
			comp(gputypes.BlendFactorSrcAlpha, gputypes.BlendFactorOneMinusSrcAlpha),
			comp(gputypes.BlendFactorOne, gputypes.BlendFactorOneMinusSrcAlpha)), nil
	case batch.BlendPremultipliedAlpha:
		return []blendPass{{State: &premul}}, nil
	case batch.BlendPremultipliedDestOut:
		return one(
			comp(gputypes.BlendFactorZero, gputypes.BlendFactorOneMinusSrcAlpha),
			comp(gputypes.BlendFactorZero, gputypes.BlendFactorOneMinusSrcAlpha)), nil
	case batch.BlendSubpixelDualSource:
		return nil, ErrDualSourceUnsupported
	case batch.BlendSubpixelWithBgColor:
		// Pass 0 knocks the text coverage out of the destination,
		// pass 1 lays down the bg color where coverage was removed,
		// pass 2 adds the subpixel-weighted text color.
		p0 := one(
			comp(gputypes.BlendFactorZero, gputypes.BlendFactorOneMinusSrc),
			comp(gputypes.BlendFactorZero, gputypes.BlendFactorOne))
		p1 := one(
			comp(gputypes.BlendFactorOneMinusDstAlpha, gputypes.BlendFactorOne),
			comp(gputypes.BlendFactorZero, gputypes.BlendFactorOne))
		p2 := one(
			comp(gputypes.BlendFactorOne, gputypes.BlendFactorOne),
			comp(gputypes.BlendFactorOne, gputypes.BlendFactorOne))
		return []blendPass{p0[0], p1[0], p2[0]}, nil
	case batch.BlendAdvanced:
		return nil, ErrAdvancedBlendUnsupported
	case batch.BlendScreen:
		return one(
			comp(gputypes.BlendFactorOne, gputypes.BlendFactorOneMinusSrc),
			comp(gputypes.BlendFactorOne, gputypes.BlendFactorOneMinusSrcAlpha)), nil
	case batch.BlendExclusion:
		return one(
			comp(gputypes.BlendFactorOneMinusDst, gputypes.BlendFactorOneMinusSrc),
			comp(gputypes.BlendFactorOneMinusDstAlpha, gputypes.BlendFactorOneMinusSrcAlpha)), nil
	case batch.BlendMultiplyDualSource:
		return nil, ErrDualSourceUnsupported
	case batch.BlendPlusLighter:
		return one(
			comp(gputypes.BlendFactorOne, gputypes.BlendFactorOne),
			comp(gputypes.BlendFactorOne, gputypes.BlendFactorOne)), nil
	}
	return nil, fmt.Errorf("render: unknown blend mode %v", mode)
}

// clipMultiplyBlend multiplies incoming coverage into the mask.
func clipMultiplyBlend() *gputypes.BlendState {
	return &gputypes.BlendState{
		Color: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorZero,
			DstFactor: gputypes.BlendFactorSrc,
			Operation: gputypes.BlendOperationAdd,
		},
		Alpha: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorZero,
			DstFactor: gputypes.BlendFactorSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
	}
}

// PipelineKey identifies one compiled pipeline variant.
type PipelineKey struct {
	Shader ShaderKind
	Blend  batch.BlendModeKind

	// Pass selects the blend pass for multi-pass modes.
	Pass uint8

	// ColorFormat is the render target format.
	ColorFormat gputypes.TextureFormat

	// DepthTest enables early-z for the opaque pass.
	DepthTest bool

	// ClipMultiply replaces the blend state with the mask multiply,
	// used by secondary clip mask draws.
	ClipMultiply bool
}

func hashPipelineKey(key PipelineKey) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	buf[0] = byte(key.Shader)
	buf[1] = byte(key.Blend)
	buf[2] = key.Pass
	buf[3] = byte(key.ColorFormat)
	buf[4] = byte(key.ColorFormat >> 8)
	if key.DepthTest {
		buf[5] = 1
	}
	if key.ClipMultiply {
		buf[6] = 1
	}
	_, _ = h.Write(buf[:])
	return h.Sum64()
}

// batchInstanceLayout is the single vertex buffer layout shared by all
// batch shaders: one packed 16 byte instance, stepped per instance.
func batchInstanceLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: instanceStride,
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatSint32x4, Offset: 0, ShaderLocation: 0},
			},
		},
	}
}

// clipRectInstanceLayout is the vertex layout of packed clip rect mask
// instances. Image and box shadow masks reuse the common prefix with
// their own resource fields.
func clipRectInstanceLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: clipRectStride,
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 0},
				{Format: gputypes.VertexFormatFloat32x2, Offset: 16, ShaderLocation: 1},
				{Format: gputypes.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
				{Format: gputypes.VertexFormatFloat32, Offset: 32, ShaderLocation: 3},
				{Format: gputypes.VertexFormatSint32x2, Offset: 36, ShaderLocation: 4},
				{Format: gputypes.VertexFormatSint32x2, Offset: 48, ShaderLocation: 5},
				{Format: gputypes.VertexFormatFloat32x2, Offset: 56, ShaderLocation: 6},
			},
		},
	}
}

func clipImageInstanceLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: clipImageStride,
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 0},
				{Format: gputypes.VertexFormatFloat32x2, Offset: 16, ShaderLocation: 1},
				{Format: gputypes.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
				{Format: gputypes.VertexFormatFloat32, Offset: 32, ShaderLocation: 3},
				{Format: gputypes.VertexFormatSint32x2, Offset: 36, ShaderLocation: 4},
				{Format: gputypes.VertexFormatSint32x2, Offset: 48, ShaderLocation: 5},
				{Format: gputypes.VertexFormatFloat32x4, Offset: 56, ShaderLocation: 6},
			},
		},
	}
}

func clipBoxShadowInstanceLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: clipBoxShadowStride,
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 0},
				{Format: gputypes.VertexFormatFloat32x2, Offset: 16, ShaderLocation: 1},
				{Format: gputypes.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
				{Format: gputypes.VertexFormatFloat32, Offset: 32, ShaderLocation: 3},
				{Format: gputypes.VertexFormatSint32x2, Offset: 36, ShaderLocation: 4},
				{Format: gputypes.VertexFormatSint32x2, Offset: 48, ShaderLocation: 5},
				{Format: gputypes.VertexFormatFloat32x4, Offset: 56, ShaderLocation: 6},
				{Format: gputypes.VertexFormatSint32x2, Offset: 72, ShaderLocation: 7},
			},
		},
	}
}

func vertexLayoutFor(kind ShaderKind) []gputypes.VertexBufferLayout {
	switch kind {
	case ShaderClipRect, ShaderClipRectFast:
		return clipRectInstanceLayout()
	case ShaderClipImage:
		return clipImageInstanceLayout()
	case ShaderClipBoxShadow:
		return clipBoxShadowInstanceLayout()
	default:
		return batchInstanceLayout()
	}
}

// PipelineCache compiles and caches one render pipeline per pipeline
// key. Pipeline creation is expensive (WGSL to SPIR-V through naga plus
// backend validation), so pipelines are built on first use and reused
// across frames.
//
// The cache is safe for concurrent use and tracks hit/miss counts.
type PipelineCache struct {
	device hal.Device

	mu        sync.RWMutex
	pipelines map[uint64]hal.RenderPipeline
	shaders   map[ShaderKind]hal.ShaderModule
	layout    hal.PipelineLayout

	frameLayout hal.BindGroupLayout
	clipLayout  hal.BindGroupLayout
	colorLayout hal.BindGroupLayout

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewPipelineCache creates an empty cache bound to a device.
func NewPipelineCache(device hal.Device) (*PipelineCache, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	return &PipelineCache{
		device:    device,
		pipelines: make(map[uint64]hal.RenderPipeline),
		shaders:   make(map[ShaderKind]hal.ShaderModule),
	}, nil
}

// Stats returns the cache hit and miss counts.
func (c *PipelineCache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// Get returns the pipeline for a key, compiling it on first use.
func (c *PipelineCache) Get(key PipelineKey) (hal.RenderPipeline, error) {
	hash := hashPipelineKey(key)

	c.mu.RLock()
	pipeline, ok := c.pipelines[hash]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return pipeline, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have created it between the locks.
	if pipeline, ok := c.pipelines[hash]; ok {
		c.hits.Add(1)
		return pipeline, nil
	}
	c.misses.Add(1)

	pipeline, err := c.createPipeline(key)
	if err != nil {
		return nil, err
	}
	c.pipelines[hash] = pipeline
	return pipeline, nil
}

// Destroy releases every cached GPU object. The cache is unusable
// afterwards.
func (c *PipelineCache) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range c.pipelines {
		c.device.DestroyRenderPipeline(p)
	}
	c.pipelines = make(map[uint64]hal.RenderPipeline)
	for _, s := range c.shaders {
		c.device.DestroyShaderModule(s)
	}
	c.shaders = make(map[ShaderKind]hal.ShaderModule)
	if c.layout != nil {
		c.device.DestroyPipelineLayout(c.layout)
		c.layout = nil
	}
	if c.colorLayout != nil {
		c.device.DestroyBindGroupLayout(c.colorLayout)
		c.colorLayout = nil
	}
	if c.clipLayout != nil {
		c.device.DestroyBindGroupLayout(c.clipLayout)
		c.clipLayout = nil
	}
	if c.frameLayout != nil {
		c.device.DestroyBindGroupLayout(c.frameLayout)
		c.frameLayout = nil
	}
}

// shaderModule compiles and caches a shader program. Caller holds mu.
func (c *PipelineCache) shaderModule(kind ShaderKind) (hal.ShaderModule, error) {
	if module, ok := c.shaders[kind]; ok {
		return module, nil
	}

	spirv, err := CompileShaderToSPIRV(ShaderSource(kind))
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", kind, err)
	}
	module, err := c.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  kind.String(),
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return nil, fmt.Errorf("create shader module %s: %w", kind, err)
	}
	c.shaders[kind] = module
	return module, nil
}

// ensureLayouts creates the shared bind group and pipeline layouts.
// Caller holds mu.
func (c *PipelineCache) ensureLayouts() error {
	if c.layout != nil {
		return nil
	}

	frameLayout, err := c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "batch_frame_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
			},
			{
				Binding:    3,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
			},
			{
				Binding:    4,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create frame layout: %w", err)
	}
	c.frameLayout = frameLayout

	clipLayout, err := c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "batch_clip_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create clip layout: %w", err)
	}
	c.clipLayout = clipLayout

	// Three texture+sampler pairs: enough slots for yuv planes and the
	// mix-blend source/backdrop pair. Shaders bind what they declare.
	var colorEntries []gputypes.BindGroupLayoutEntry
	for slot := uint32(0); slot < 3; slot++ {
		colorEntries = append(colorEntries,
			gputypes.BindGroupLayoutEntry{
				Binding:    slot * 2,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			gputypes.BindGroupLayoutEntry{
				Binding:    slot*2 + 1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			})
	}
	colorLayout, err := c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "batch_color_layout",
		Entries: colorEntries,
	})
	if err != nil {
		return fmt.Errorf("create color layout: %w", err)
	}
	c.colorLayout = colorLayout

	layout, err := c.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "batch_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{c.frameLayout, c.clipLayout, c.colorLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	c.layout = layout
	return nil
}

// createPipeline builds one pipeline variant. Caller holds mu.
func (c *PipelineCache) createPipeline(key PipelineKey) (hal.RenderPipeline, error) {
	if err := c.ensureLayouts(); err != nil {
		return nil, err
	}
	module, err := c.shaderModule(key.Shader)
	if err != nil {
		return nil, err
	}

	var blend *gputypes.BlendState
	if key.ClipMultiply {
		blend = clipMultiplyBlend()
	} else {
		passes, err := blendPasses(batch.Blend(key.Blend))
		if err != nil {
			return nil, err
		}
		if int(key.Pass) >= len(passes) {
			return nil, fmt.Errorf("render: blend %v has no pass %d", key.Blend, key.Pass)
		}
		blend = passes[key.Pass].State
	}

	desc := &hal.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("%s_%d", key.Shader, key.Pass),
		Layout: c.layout,
		Vertex: hal.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers:    vertexLayoutFor(key.Shader),
		},
		Fragment: &hal.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    key.ColorFormat,
					Blend:     blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleStrip,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}
	if key.DepthTest {
		desc.DepthStencil = &hal.DepthStencilState{
			Format:            gputypes.TextureFormatDepth24PlusStencil8,
			DepthWriteEnabled: true,
			DepthCompare:      gputypes.CompareFunctionLessEqual,
		}
	}

	pipeline, err := c.device.CreateRenderPipeline(desc)
	if err != nil {
		return nil, fmt.Errorf("create pipeline %s: %w", key.Shader, err)
	}
	return pipeline, nil
}
