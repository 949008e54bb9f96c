// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import (
	"math"

	"github.com/gogpu/compositor/frame"
	"github.com/gogpu/compositor/prim"
)

// addPicture batches one picture instance: pass-through pictures walk
// their primitive list in place, surfaced pictures composite their
// offscreen output through the effect the composite mode describes.
func (b *BatchBuilder) addPicture(inst *prim.Instance, pic *prim.Picture, pc *primContext, ctx *Context) {
	switch pic.Context3D {
	case prim.Context3DRoot:
		b.addSplitPictures(inst, pic, pc, ctx)
		return
	case prim.Context3DChild:
		// Children are composited by their 3D root through the plane
		// splitter, never directly.
		panic("batch: 3D child picture reached the dispatcher outside its root")
	}

	if pic.Composite == nil {
		b.AddPrimListToBatch(pic.Prims, ctx)
		return
	}

	switch mode := pic.Composite.(type) {
	case prim.CompositeTileCache:
		// Tiles reach the screen through the native compositor path.
		return
	case prim.CompositeBlur:
		b.addSurfaceQuad(inst, pic.SurfaceTask, Blend(BlendPremultipliedAlpha), [4]int32{}, pc, ctx)
	case prim.CompositeDropShadows:
		b.addDropShadows(inst, pic, mode, pc, ctx)
	case prim.CompositeOpacity:
		b.addOpacityComposite(inst, pic, mode, pc, ctx)
	case prim.CompositeFilter:
		b.addFilterComposite(inst, pic, mode, pc, ctx)
	case prim.CompositeComponentTransfer:
		user := [4]int32{
			int32(componentTransferFilterMode), 0,
			ctx.GpuCache.GetAddress(mode.FuncsHandle).AsInt(), 0,
		}
		b.addBlendQuad(inst, pic.SurfaceTask, user, pc, ctx)
	case prim.CompositeMixBlend:
		b.addMixBlend(inst, pic, mode, pc, ctx)
	case prim.CompositeBlit:
		b.addSurfaceQuad(inst, pic.SurfaceTask, Blend(BlendPremultipliedAlpha), [4]int32{}, pc, ctx)
	case prim.CompositeSvgFilter:
		b.addSurfaceQuad(inst, mode.Task, Blend(BlendPremultipliedAlpha), [4]int32{}, pc, ctx)
	default:
		panic("batch: unknown composite mode")
	}
}

// componentTransferFilterMode is the cs_filter.wgsl mode integer of
// feComponentTransfer, the first mode past the FilterOpKind range.
const componentTransferFilterMode = int32(prim.FilterFlood) + 1

// addSplitPictures composites the plane splitter's polygons of a 3D
// context root, one split-composite instance per polygon in splitter
// depth order. Each child must have rendered into its own surface;
// anything else is a scene building bug.
func (b *BatchBuilder) addSplitPictures(inst *prim.Instance, pic *prim.Picture, pc *primContext, ctx *Context) {
	clip, drop, ok := b.resolveClipEntry(inst.ClipTask(0), ctx)
	if drop || !ok {
		return
	}

	for _, poly := range pic.SplitPolygons {
		if poly.ChildIndex < 0 || poly.ChildIndex >= len(pic.Prims) {
			panic("batch: split polygon references a child outside the picture")
		}
		child := &pic.Prims[poly.ChildIndex]
		childPic, isPic := child.Kind.(*prim.PictureKind)
		if !isPic || !childPic.Picture.SurfaceTask.IsValid() {
			panic("batch: split polygon child has no rendered surface")
		}

		uv, texture, resolved := ctx.Tasks.ResolveLocation(childPic.Picture.SurfaceTask)
		if !resolved {
			b.skipNotReady("split child surface", frame.ErrNotReady)
			continue
		}

		blocks := []frame.GpuBlockData{
			{poly.Points[0].X, poly.Points[0].Y, poly.Points[1].X, poly.Points[1].Y},
			{poly.Points[2].X, poly.Points[2].Y, poly.Points[3].X, poly.Points[3].Y},
			{poly.UVs[0].X, poly.UVs[0].Y, poly.UVs[1].X, poly.UVs[1].Y},
			{poly.UVs[2].X, poly.UVs[2].Y, poly.UVs[3].X, poly.UVs[3].Y},
		}
		polyAddr := ctx.GpuCache.GetAddress(ctx.GpuCache.PushPerFrameBlocks(blocks))

		z := ctx.Z.Next()
		header := ctx.Headers.Push(PrimitiveHeader{
			LocalRect:       child.LocalRect,
			LocalClipRect:   child.LocalClipRect,
			SpecificAddress: uv,
			TransformID:     pc.transformID,
			ZID:             z,
		})

		key := NewBatchKey(SplitCompositeKind(), Blend(BlendPremultipliedAlpha), PrimTextured(texture, clip.texture))
		features := brushFeatures(key.Blend, true, clip.masked, false)

		b.emit(inst, key, features, pc.bounding, z, func(batcher *AlphaBatchBuilder) InstanceData {
			return SplitCompositeInstance{
				Header:     header,
				Polygons:   polyAddr,
				RenderTask: batcher.taskAddress,
				Z:          z,
			}.Encode()
		})
	}
}

// addDropShadows draws each blurred shadow surface offset and tinted,
// then the content surface on top. Every layer gets its own z id so
// overlap tests between the layers stay exact.
func (b *BatchBuilder) addDropShadows(inst *prim.Instance, pic *prim.Picture, mode prim.CompositeDropShadows, pc *primContext, ctx *Context) {
	for _, shadow := range mode.Shadows {
		uv, texture, ok := ctx.Tasks.ResolveLocation(shadow.Task)
		if !ok {
			b.skipNotReady("drop shadow surface", frame.ErrNotReady)
			continue
		}
		colorAddr := ctx.GpuCache.GetAddress(ctx.GpuCache.PushPerFrameBlocks([]frame.GpuBlockData{
			{shadow.Color.R, shadow.Color.G, shadow.Color.B, shadow.Color.A},
		}))

		spc := *pc
		spc.z = ctx.Z.Next()
		spc.bounding = pc.bounding.Translate(
			shadow.Offset.X*ctx.DevicePixelScale, shadow.Offset.Y*ctx.DevicePixelScale)

		clip, drop, okClip := b.resolveClipEntry(inst.ClipTask(0), ctx)
		if drop || !okClip {
			return
		}
		header := ctx.Headers.Push(PrimitiveHeader{
			LocalRect:       inst.LocalRect.Translate(shadow.Offset.X, shadow.Offset.Y),
			LocalClipRect:   inst.LocalClipRect,
			SpecificAddress: uv,
			TransformID:     spc.transformID,
			ZID:             spc.z,
			UserData:        [4]int32{colorAddr.AsInt(), 0, 0, 0},
		})
		key := NewBatchKey(ImageKind(texture.BufferKind()), Blend(BlendPremultipliedAlpha), PrimTextured(texture, clip.texture))
		features := brushFeatures(key.Blend, spc.antialiased, clip.masked, false)
		b.emit(inst, key, features, spc.bounding, spc.z, func(batcher *AlphaBatchBuilder) InstanceData {
			return BrushInstance{
				Header:          header,
				RenderTask:      batcher.taskAddress,
				ClipTask:        clip.address,
				SegmentIndex:    invalidSegmentIndex,
				EdgeFlags:       prim.EdgeAAAll,
				ResourceAddress: uv.AsInt(),
			}.Encode()
		})
	}

	cpc := *pc
	cpc.z = ctx.Z.Next()
	b.addSurfaceQuad(inst, pic.SurfaceTask, Blend(BlendPremultipliedAlpha), [4]int32{}, &cpc, ctx)
}

func (b *BatchBuilder) addOpacityComposite(inst *prim.Instance, pic *prim.Picture, mode prim.CompositeOpacity, pc *primContext, ctx *Context) {
	uv, texture, ok := ctx.Tasks.ResolveLocation(pic.SurfaceTask)
	if !ok {
		b.skipNotReady("opacity surface", frame.ErrNotReady)
		return
	}
	clip, drop, okClip := b.resolveClipEntry(inst.ClipTask(0), ctx)
	if drop || !okClip {
		return
	}
	header := ctx.Headers.Push(PrimitiveHeader{
		LocalRect:       inst.LocalRect,
		LocalClipRect:   inst.LocalClipRect,
		SpecificAddress: uv,
		TransformID:     pc.transformID,
		ZID:             pc.z,
		UserData:        [4]int32{int32(math.Float32bits(mode.Alpha)), 0, 0, 0},
	})
	key := NewBatchKey(OpacityKind(), Blend(BlendPremultipliedAlpha), PrimTextured(texture, clip.texture))
	features := brushFeatures(key.Blend, pc.antialiased, clip.masked, false)
	b.emit(inst, key, features, pc.bounding, pc.z, func(batcher *AlphaBatchBuilder) InstanceData {
		return BrushInstance{
			Header:          header,
			RenderTask:      batcher.taskAddress,
			ClipTask:        clip.address,
			SegmentIndex:    invalidSegmentIndex,
			EdgeFlags:       prim.EdgeAAAll,
			ResourceAddress: uv.AsInt(),
		}.Encode()
	})
}

func (b *BatchBuilder) addFilterComposite(inst *prim.Instance, pic *prim.Picture, mode prim.CompositeFilter, pc *primContext, ctx *Context) {
	user := [4]int32{
		int32(mode.Op.Kind),
		int32(math.Float32bits(mode.Op.Amount)),
		0, 0,
	}
	switch mode.Op.Kind {
	case prim.FilterColorMatrix:
		user[2] = ctx.GpuCache.GetAddress(mode.Op.MatrixHandle).AsInt()
	case prim.FilterFlood:
		c := mode.Op.Color
		addr := ctx.GpuCache.GetAddress(ctx.GpuCache.PushPerFrameBlocks([]frame.GpuBlockData{
			{c.R, c.G, c.B, c.A},
		}))
		user[2] = addr.AsInt()
	}
	b.addBlendQuad(inst, pic.SurfaceTask, user, pc, ctx)
}

// addBlendQuad draws a surface through the color-filter brush shader.
func (b *BatchBuilder) addBlendQuad(inst *prim.Instance, task frame.RenderTaskID, userData [4]int32, pc *primContext, ctx *Context) {
	uv, texture, ok := ctx.Tasks.ResolveLocation(task)
	if !ok {
		b.skipNotReady("filter surface", frame.ErrNotReady)
		return
	}
	clip, drop, okClip := b.resolveClipEntry(inst.ClipTask(0), ctx)
	if drop || !okClip {
		return
	}
	header := ctx.Headers.Push(PrimitiveHeader{
		LocalRect:       inst.LocalRect,
		LocalClipRect:   inst.LocalClipRect,
		SpecificAddress: uv,
		TransformID:     pc.transformID,
		ZID:             pc.z,
		UserData:        userData,
	})
	key := NewBatchKey(BlendKind(), Blend(BlendPremultipliedAlpha), PrimTextured(texture, clip.texture))
	features := brushFeatures(key.Blend, pc.antialiased, clip.masked, false)
	b.emit(inst, key, features, pc.bounding, pc.z, func(batcher *AlphaBatchBuilder) InstanceData {
		return BrushInstance{
			Header:          header,
			RenderTask:      batcher.taskAddress,
			ClipTask:        clip.address,
			SegmentIndex:    invalidSegmentIndex,
			EdgeFlags:       prim.EdgeAAAll,
			ResourceAddress: uv.AsInt(),
		}.Encode()
	})
}

// addMixBlend composites a surface against its backdrop. Modes the
// blend unit can express directly draw as a plain surface quad with
// the matching equation. With advanced blending available every mode
// can. The remaining modes fall back to an explicit readback pair and
// the mix-blend shader, which cannot merge across source/backdrop
// pairs and must bind each target's own task id.
func (b *BatchBuilder) addMixBlend(inst *prim.Instance, pic *prim.Picture, mode prim.CompositeMixBlend, pc *primContext, ctx *Context) {
	if blend, ok := fixedFunctionMixBlend(mode.Mode, b.opts.DualSourceBlending); ok {
		b.addSurfaceQuad(inst, mode.SourceTask, blend, [4]int32{}, pc, ctx)
		return
	}
	if b.opts.AdvancedBlend {
		b.addSurfaceQuad(inst, mode.SourceTask, AdvancedBlend(mode.Mode), [4]int32{}, pc, ctx)
		return
	}

	if !mode.BackdropTask.IsValid() {
		panic("batch: readback mix blend without a backdrop task")
	}
	_, _, srcOK := ctx.Tasks.ResolveLocation(mode.SourceTask)
	_, _, backOK := ctx.Tasks.ResolveLocation(mode.BackdropTask)
	if !srcOK || !backOK {
		b.skipNotReady("mix blend surfaces", frame.ErrNotReady)
		return
	}
	clip, drop, okClip := b.resolveClipEntry(inst.ClipTask(0), ctx)
	if drop || !okClip {
		return
	}

	header := ctx.Headers.Push(PrimitiveHeader{
		LocalRect:     inst.LocalRect,
		LocalClipRect: inst.LocalClipRect,
		TransformID:   pc.transformID,
		ZID:           pc.z,
		UserData:      [4]int32{int32(mode.Mode), 0, 0, 0},
	})
	key := NewBatchKey(MixBlendKind(mode.SourceTask, mode.BackdropTask), Blend(BlendPremultipliedAlpha), EmptyBatchTextures())
	features := brushFeatures(key.Blend, pc.antialiased, clip.masked, false)

	srcAddr := ctx.Tasks.TaskAddress(mode.SourceTask)
	backAddr := ctx.Tasks.TaskAddress(mode.BackdropTask)
	b.emit(inst, key, features, pc.bounding, pc.z, func(batcher *AlphaBatchBuilder) InstanceData {
		return CompositeInstance{
			Header:       header,
			DestTask:     batcher.taskAddress,
			SourceTask:   srcAddr,
			BackdropTask: backAddr,
			Z:            pc.z,
		}.Encode()
	})
}

// fixedFunctionMixBlend maps the mix-blend modes the blend unit can
// express without advanced blending or a readback.
func fixedFunctionMixBlend(mode prim.MixBlendMode, dualSource bool) (BlendMode, bool) {
	switch mode {
	case prim.MixBlendScreen:
		return Blend(BlendScreen), true
	case prim.MixBlendExclusion:
		return Blend(BlendExclusion), true
	case prim.MixBlendPlusLighter:
		return Blend(BlendPlusLighter), true
	case prim.MixBlendMultiply:
		if dualSource {
			return Blend(BlendMultiplyDualSource), true
		}
	}
	return BlendMode{}, false
}

// addSurfaceQuad draws a picture's rendered surface as one textured
// quad with the given blend mode.
func (b *BatchBuilder) addSurfaceQuad(inst *prim.Instance, task frame.RenderTaskID, blend BlendMode, userData [4]int32, pc *primContext, ctx *Context) {
	uv, texture, ok := ctx.Tasks.ResolveLocation(task)
	if !ok {
		b.skipNotReady("picture surface", frame.ErrNotReady)
		return
	}
	clip, drop, okClip := b.resolveClipEntry(inst.ClipTask(0), ctx)
	if drop || !okClip {
		return
	}
	header := ctx.Headers.Push(PrimitiveHeader{
		LocalRect:       inst.LocalRect,
		LocalClipRect:   inst.LocalClipRect,
		SpecificAddress: uv,
		TransformID:     pc.transformID,
		ZID:             pc.z,
		UserData:        userData,
	})
	key := NewBatchKey(ImageKind(texture.BufferKind()), blend, PrimTextured(texture, clip.texture))
	features := brushFeatures(blend, pc.antialiased, clip.masked, false)
	b.emit(inst, key, features, pc.bounding, pc.z, func(batcher *AlphaBatchBuilder) InstanceData {
		return BrushInstance{
			Header:          header,
			RenderTask:      batcher.taskAddress,
			ClipTask:        clip.address,
			SegmentIndex:    invalidSegmentIndex,
			EdgeFlags:       prim.EdgeAAAll,
			ResourceAddress: uv.AsInt(),
		}.Encode()
	})
}
