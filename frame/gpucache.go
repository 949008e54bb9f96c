// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

// GpuBlockData is one 16-byte block of per-primitive constant data as
// stored in the GPU data texture. Rects, colors and tile sub-rects are
// all encoded as blocks.
type GpuBlockData [4]float32

// RectBlock encodes min/max rect bounds as a block.
func RectBlock(minX, minY, maxX, maxY float32) GpuBlockData {
	return GpuBlockData{minX, minY, maxX, maxY}
}

// GpuCacheAddress is the location of a run of blocks inside the GPU
// data texture.
type GpuCacheAddress struct {
	U, V uint16
}

// InvalidGpuCacheAddress is returned for handles with no resolved
// location this frame.
var InvalidGpuCacheAddress = GpuCacheAddress{U: 0xffff, V: 0xffff}

// AsInt packs the address into the i32 form the shaders decode.
func (a GpuCacheAddress) AsInt() int32 {
	return int32(a.V)<<16 | int32(a.U)
}

// Offset returns the address n blocks further along the same row. Only
// valid within a single pushed run, which the cache keeps row-contiguous.
func (a GpuCacheAddress) Offset(n int) GpuCacheAddress {
	return GpuCacheAddress{U: a.U + uint16(n), V: a.V}
}

// IsValid reports whether the address points at resolved data.
func (a GpuCacheAddress) IsValid() bool {
	return a != InvalidGpuCacheAddress
}

// GpuCacheHandle is an opaque handle to a run of blocks in the GPU
// cache. Handles are allocated by whoever owns the data (primitive
// store, resource cache, or the per-frame block arena) and resolved to
// addresses once per frame.
type GpuCacheHandle uint32

// InvalidGpuCacheHandle is the zero handle; it never resolves.
const InvalidGpuCacheHandle GpuCacheHandle = 0

// GpuCache resolves handles to texture addresses and accepts transient
// per-frame block data.
type GpuCache interface {
	// GetAddress returns the resolved location of a handle's blocks.
	// Resolving an invalid or unknown handle yields
	// InvalidGpuCacheAddress.
	GetAddress(h GpuCacheHandle) GpuCacheAddress

	// PushPerFrameBlocks stores blocks that live only for this frame
	// and returns a handle addressing them. A single push of up to
	// MaxVertexTextureWidth blocks is stored contiguously within one
	// texture row, so callers may address individual blocks of the run
	// with GpuCacheAddress.Offset.
	PushPerFrameBlocks(blocks []GpuBlockData) GpuCacheHandle
}

// MemoryGpuCache is a GpuCache backed by a plain in-memory block arena.
// Rows are laid out maxWidth blocks wide, matching the addressing the
// shaders use. It serves embedding hosts that upload the block texture
// themselves, and the engine's own tests.
type MemoryGpuCache struct {
	maxWidth  int
	blocks    []GpuBlockData
	addresses map[GpuCacheHandle]GpuCacheAddress
	next      GpuCacheHandle
}

// NewMemoryGpuCache creates an empty cache whose rows hold maxWidth
// blocks each.
func NewMemoryGpuCache(maxWidth int) *MemoryGpuCache {
	if maxWidth <= 0 {
		maxWidth = 1024
	}
	return &MemoryGpuCache{
		maxWidth:  maxWidth,
		addresses: make(map[GpuCacheHandle]GpuCacheAddress),
		next:      1,
	}
}

// GetAddress implements GpuCache.
func (c *MemoryGpuCache) GetAddress(h GpuCacheHandle) GpuCacheAddress {
	if addr, ok := c.addresses[h]; ok {
		return addr
	}
	return InvalidGpuCacheAddress
}

// PushPerFrameBlocks implements GpuCache.
func (c *MemoryGpuCache) PushPerFrameBlocks(blocks []GpuBlockData) GpuCacheHandle {
	c.padRowFor(len(blocks))
	h := c.allocate()
	c.blocks = append(c.blocks, blocks...)
	return h
}

// PushHandleBlocks stores blocks for an externally chosen handle, the
// way a resource cache registers uv-rect data it owns.
func (c *MemoryGpuCache) PushHandleBlocks(h GpuCacheHandle, blocks []GpuBlockData) {
	c.padRowFor(len(blocks))
	addr := c.addressOf(len(c.blocks))
	c.blocks = append(c.blocks, blocks...)
	c.addresses[h] = addr
}

// padRowFor advances to the next row when a run of n blocks would
// straddle the current one. Runs longer than a row are the caller's
// responsibility to split.
func (c *MemoryGpuCache) padRowFor(n int) {
	if n > c.maxWidth {
		return
	}
	col := len(c.blocks) % c.maxWidth
	if col+n > c.maxWidth {
		pad := c.maxWidth - col
		c.blocks = append(c.blocks, make([]GpuBlockData, pad)...)
	}
}

// Blocks returns the accumulated block data, row-major with rows
// maxWidth blocks wide, ready for upload.
func (c *MemoryGpuCache) Blocks() []GpuBlockData {
	return c.blocks
}

// Reset clears all per-frame state for reuse.
func (c *MemoryGpuCache) Reset() {
	c.blocks = c.blocks[:0]
	clear(c.addresses)
	c.next = 1
}

func (c *MemoryGpuCache) allocate() GpuCacheHandle {
	h := c.next
	c.next++
	c.addresses[h] = c.addressOf(len(c.blocks))
	return h
}

func (c *MemoryGpuCache) addressOf(blockIndex int) GpuCacheAddress {
	return GpuCacheAddress{
		U: uint16(blockIndex % c.maxWidth),
		V: uint16(blockIndex / c.maxWidth),
	}
}
