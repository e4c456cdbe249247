// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package coalesce implements the single-tier predecessor of the
// thread-cached allocator in the parent package: one process-wide,
// address-sorted free list of variable-size blocks protected by a single
// mutex, with opportunistic coalescing of adjacent free blocks. It trades
// the parent package's lock-free fast path for a much simpler structure,
// and is kept as the baseline the two-tier design evolved from.
package coalesce

import (
	"sync"
	"unsafe"

	"github.com/michaelsmithxyz/allocator/sysmem"
)

// Allocator allocates and frees memory from one process-wide, address-
// sorted free list. Its zero value is ready for use and safe for
// concurrent use by any number of goroutines: every operation holds a.mu
// for its full duration.
type Allocator struct {
	mu       sync.Mutex
	freeList *freeBlock
	stats    Stats
}

// Malloc allocates n bytes and returns a byte slice of the allocated
// memory. The memory is not initialized. Malloc panics for n < 0 and
// returns a non-nil, freeable zero-length slice for n == 0.
func (a *Allocator) Malloc(n int) ([]byte, error) {
	if n < 0 {
		panic("coalesce: invalid malloc size")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats.ChunksAllocated++

	// Round up to a whole word, and to at least a free-block header, so the
	// block can be turned back into a free block in place when it is freed.
	total := (n + 2*headerSize - 1) &^ (headerSize - 1)
	if total < freeBlockHeaderSize {
		total = freeBlockHeaderSize
	}
	if total < sysmem.PageSize {
		if block := a.getFreeBlockLocked(total); block != nil {
			h := (*header)(unsafe.Pointer(block))
			full := unsafe.Slice((*byte)(userPtr(h)), int(h.size)-headerSize)
			return full[:n], nil
		}

		b, err := sysmem.MapPages(1)
		if err != nil {
			return nil, err
		}
		a.stats.PagesMapped++

		base := unsafe.Pointer(&b[0])
		size := total
		if rest := len(b) - total; rest >= freeBlockHeaderSize {
			nb := (*freeBlock)(unsafe.Pointer(uintptr(base) + uintptr(total)))
			nb.size = uintptr(rest)
			a.insertFreeBlockLocked(nb)
		} else {
			size = len(b)
		}

		h := (*header)(base)
		h.size = uintptr(size)
		full := unsafe.Slice((*byte)(userPtr(h)), size-headerSize)
		return full[:n], nil
	}

	pages := ceilDiv(total, sysmem.PageSize)
	b, err := sysmem.MapPages(pages)
	if err != nil {
		return nil, err
	}
	a.stats.PagesMapped += int64(pages)

	h := (*header)(unsafe.Pointer(&b[0]))
	h.size = uintptr(len(b))
	full := unsafe.Slice((*byte)(userPtr(h)), len(b)-headerSize)
	return full[:n], nil
}

// Calloc is like Malloc except the allocated memory is zeroed.
func (a *Allocator) Calloc(n int) ([]byte, error) {
	b, err := a.Malloc(n)
	if err != nil {
		return nil, err
	}
	for i := range b {
		b[i] = 0
	}
	return b, nil
}

// Free deallocates memory acquired from Malloc, Calloc or Realloc. Freeing
// a foreign pointer or double-freeing is undefined behavior.
func (a *Allocator) Free(b []byte) error {
	b = b[:cap(b)]
	if len(b) == 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats.ChunksFreed++

	h := headerOf(unsafe.Pointer(&b[0]))
	size := int(h.size)
	if size >= sysmem.PageSize {
		raw := unsafe.Slice((*byte)(unsafe.Pointer(h)), size)
		if err := sysmem.UnmapPages(raw); err != nil {
			return err
		}
		a.stats.PagesUnmapped += int64(size / sysmem.PageSize)
		return nil
	}

	fb := (*freeBlock)(unsafe.Pointer(h))
	fb.size = uintptr(size)
	a.insertFreeBlockLocked(fb)
	return nil
}

// Realloc changes the size of the backing allocation of b to n bytes.
// Contents are preserved up to min(old payload, n). If b's backing
// allocation already has room for n bytes, the same pointer is returned
// unchanged — this allocator never shrinks a live block in place.
func (a *Allocator) Realloc(b []byte, n int) ([]byte, error) {
	if cap(b) == 0 {
		return a.Malloc(n)
	}

	old := b[:cap(b)]
	if len(old) >= n {
		return old[:n], nil
	}

	dest, err := a.Malloc(n)
	if err != nil {
		return nil, err
	}
	copy(dest, b)
	if err := a.Free(b); err != nil {
		return nil, err
	}
	return dest, nil
}

// getFreeBlockLocked finds and removes the first free block >= size from
// the free list (first-fit), carving off and reinserting any remainder
// large enough to be its own free block. Caller must hold a.mu.
func (a *Allocator) getFreeBlockLocked(size int) *freeBlock {
	if a.freeList == nil {
		return nil
	}

	if int(a.freeList.size) >= size {
		block := a.freeList
		a.freeList = block.next
		a.carveLocked(block, size)
		return block
	}

	cur := a.freeList
	for cur.next != nil {
		if int(cur.next.size) >= size {
			block := cur.next
			cur.next = block.next
			a.carveLocked(block, size)
			return block
		}
		cur = cur.next
	}
	return nil
}

// carveLocked splits block in place: if the remainder past size is at
// least a free-block header, it becomes a new free block reinserted into
// the list; otherwise block keeps its original (slightly larger) size.
func (a *Allocator) carveLocked(block *freeBlock, size int) {
	rest := int(block.size) - size
	if rest < freeBlockHeaderSize {
		block.next = nil
		return
	}
	nb := (*freeBlock)(unsafe.Pointer(uintptr(unsafe.Pointer(block)) + uintptr(size)))
	nb.size = uintptr(rest)
	block.size = uintptr(size)
	block.next = nil
	a.insertFreeBlockLocked(nb)
}

// insertFreeBlockLocked inserts block at its address-sorted position and
// runs a coalescing pass merging any node whose end address equals the
// next node's start. Caller must hold a.mu.
func (a *Allocator) insertFreeBlockLocked(block *freeBlock) {
	block.next = nil
	switch {
	case a.freeList == nil:
		a.freeList = block
	case uintptr(unsafe.Pointer(a.freeList)) > uintptr(unsafe.Pointer(block)):
		block.next = a.freeList
		a.freeList = block
	default:
		cur := a.freeList
		for cur.next != nil && uintptr(unsafe.Pointer(cur.next)) < uintptr(unsafe.Pointer(block)) {
			cur = cur.next
		}
		block.next = cur.next
		cur.next = block
	}
	a.coalesceLocked()
}

// coalesceLocked merges every free block whose end address equals the next
// block's start. It panics if two free blocks overlap, which only a
// corrupted free list can produce. Caller must hold a.mu.
func (a *Allocator) coalesceLocked() {
	cur := a.freeList
	for cur != nil && cur.next != nil {
		end := uintptr(unsafe.Pointer(cur)) + cur.size
		if end > uintptr(unsafe.Pointer(cur.next)) {
			panic("coalesce: free list corrupted: overlapping free blocks")
		}
		if end == uintptr(unsafe.Pointer(cur.next)) {
			cur.size += cur.next.size
			cur.next = cur.next.next
			continue
		}
		cur = cur.next
	}
}
