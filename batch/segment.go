// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import (
	"fmt"

	compositor "github.com/gogpu/compositor"
	"github.com/gogpu/compositor/frame"
	"github.com/gogpu/compositor/prim"
)

// segmentInstanceData is the per-instance resource binding of one
// brush segment: its textures and the packed address of its uv data.
type segmentInstanceData struct {
	textures BatchTextures
	resource int32
}

// brushBatchParams describes how a brush primitive's instances bind
// resources: one shared binding for all segments, or one binding per
// segment for primitives like borders whose segments were rendered
// into separate tasks.
type brushBatchParams struct {
	kind     BatchKind
	userData [4]int32
	flags    BrushFlags
	shared   segmentInstanceData

	// perSegment overrides shared when non-nil and must then match
	// the segment count.
	perSegment []segmentInstanceData
}

// resolvedClip is a clip task entry resolved to drawable form.
type resolvedClip struct {
	address frame.RenderTaskAddress
	texture frame.TextureSource
	masked  bool
}

// resolveClipEntry resolves one clip assignment. drop is true when the
// segment is provably invisible and must be silently dropped. ok is
// false when the mask task's output is unavailable this frame, in
// which case the caller skips the draw with a warning.
func (b *BatchBuilder) resolveClipEntry(entry prim.ClipTaskEntry, ctx *Context) (rc resolvedClip, drop, ok bool) {
	switch entry.Kind {
	case prim.ClipTaskFullyClipped:
		b.stats.FullyClippedDrops++
		return resolvedClip{}, true, false
	case prim.ClipTaskMask:
		_, tex, resolved := ctx.Tasks.ResolveLocation(entry.Task)
		if !resolved {
			b.stats.NotReadySkips++
			compositor.Logger().Warn("batch: clip mask task output unavailable, skipping draw",
				"task", entry.Task)
			return resolvedClip{}, false, false
		}
		return resolvedClip{
			address: ctx.Tasks.TaskAddress(entry.Task),
			texture: tex,
			masked:  true,
		}, false, true
	default:
		return resolvedClip{
			address: frame.OpaqueTaskAddress,
			texture: frame.InvalidTexture(),
		}, false, true
	}
}

// brushFeatures derives the dynamic shader features of one brush draw.
func brushFeatures(blend BlendMode, aa, masked, repetition bool) BatchFeatures {
	var f BatchFeatures
	if !blend.DisablesBlending() {
		f |= FeatureAlphaPass
	}
	if aa {
		f |= FeatureAntialiasing
	}
	if masked {
		f |= FeatureClipMask
	}
	if repetition {
		f |= FeatureRepetition
	}
	return f
}

// addSegmentedPrim emits the instances of one brush primitive. It
// handles all three binding shapes: per-segment resources, shared
// resources across explicit segments, and the unsegmented single quad.
func (b *BatchBuilder) addSegmentedPrim(inst *prim.Instance, segments []prim.Segment, params *brushBatchParams, alphaBlend BlendMode, kindOpaque bool, pc *primContext, ctx *Context) {
	header := ctx.Headers.Push(PrimitiveHeader{
		LocalRect:       inst.LocalRect,
		LocalClipRect:   inst.LocalClipRect,
		SpecificAddress: ctx.GpuCache.GetAddress(inst.GpuHandle),
		TransformID:     pc.transformID,
		ZID:             pc.z,
		UserData:        params.userData,
	})

	switch {
	case params.perSegment != nil:
		if len(params.perSegment) != len(segments) {
			panic(fmt.Sprintf("batch: %d segment bindings for %d segments",
				len(params.perSegment), len(segments)))
		}
		for i := range segments {
			b.addSegmentToBatch(inst, i, &segments[i], params.perSegment[i], params, alphaBlend, kindOpaque, header, pc, ctx)
		}
	case segments != nil:
		for i := range segments {
			b.addSegmentToBatch(inst, i, &segments[i], params.shared, params, alphaBlend, kindOpaque, header, pc, ctx)
		}
	default:
		whole := prim.Segment{LocalRect: inst.LocalRect, EdgeFlags: prim.EdgeAAAll}
		b.addSegmentToBatch(inst, -1, &whole, params.shared, params, alphaBlend, kindOpaque, header, pc, ctx)
	}
}

// addSegmentToBatch emits one segment quad into every batcher that
// draws this instance. segIndex is -1 for the unsegmented quad.
func (b *BatchBuilder) addSegmentToBatch(inst *prim.Instance, segIndex int, seg *prim.Segment, data segmentInstanceData, params *brushBatchParams, alphaBlend BlendMode, kindOpaque bool, header PrimitiveHeaderIndex, pc *primContext, ctx *Context) {
	clipIndex := segIndex
	if clipIndex < 0 {
		clipIndex = 0
	}
	clip, drop, ok := b.resolveClipEntry(inst.ClipTask(clipIndex), ctx)
	if drop || !ok {
		return
	}

	// An edge segment under a non-axis-aligned transform needs its
	// anti-aliased fringe blended even when the content is opaque.
	needsBlend := !kindOpaque || !inst.IsOpaque() || clip.masked ||
		(seg.EdgeFlags != prim.EdgeAANone && pc.transformKind == frame.TransformComplex)
	blend := Blend(BlendNone)
	if needsBlend {
		blend = alphaBlend
	}

	textures := data.textures
	textures.Merge(BatchTextures{Input: EmptyTextureSet(), ClipMask: clip.texture})
	key := NewBatchKey(params.kind, blend, textures)
	features := brushFeatures(blend, pc.antialiased, clip.masked, params.flags&(BrushFlagSegmentRepeatX|BrushFlagSegmentRepeatY) != 0)

	segmentIndex := invalidSegmentIndex
	if segIndex >= 0 {
		segmentIndex = int32(segIndex)
	}

	b.emit(inst, key, features, pc.bounding, pc.z, func(batcher *AlphaBatchBuilder) InstanceData {
		return BrushInstance{
			Header:          header,
			RenderTask:      batcher.taskAddress,
			ClipTask:        clip.address,
			SegmentIndex:    segmentIndex,
			EdgeFlags:       seg.EdgeFlags,
			Flags:           params.flags,
			ResourceAddress: data.resource,
		}.Encode()
	})
}
