package allocator

import "unsafe"

// UnsafeMalloc is like Malloc except it returns an unsafe.Pointer, for
// callers that need raw pointer linkage (e.g. a cgo boundary).
func (tc *ThreadCache) UnsafeMalloc(n int) (unsafe.Pointer, error) {
	if n < 0 {
		panic("allocator: invalid malloc size")
	}

	total := n + headerSize
	if total > largeThreshold {
		return tc.unsafeMallocLarge(n)
	}

	class := bestClass(total)
	cell := tc.bins[class]
	if cell == nil {
		if err := tc.refillBin(class, binRefillPages); err != nil {
			return nil, err
		}
		cell = tc.bins[class]
	}
	tc.bins[class] = cell.next

	h := (*header)(unsafe.Pointer(cell))
	h.size = uintptr(classSize(class))
	return userPtr(h), nil
}

// UnsafeCalloc is like Calloc except it returns an unsafe.Pointer.
func (tc *ThreadCache) UnsafeCalloc(n int) (unsafe.Pointer, error) {
	p, err := tc.UnsafeMalloc(n)
	if err != nil || p == nil {
		return p, err
	}
	zeroBytes(p, n)
	return p, nil
}

// UnsafeFree is like Free except its argument is an unsafe.Pointer, which
// must have been acquired from UnsafeMalloc, UnsafeCalloc or UnsafeRealloc
// on this or another ThreadCache; a small cell joins this cache's bin.
func (tc *ThreadCache) UnsafeFree(p unsafe.Pointer) error {
	if p == nil {
		return nil
	}

	h := headerOf(p)
	size := int(h.size)
	if size > largeThreshold {
		return tc.freeLarge(h, size)
	}

	class := bestClass(size)
	cell := (*freeCell)(unsafe.Pointer(h))
	cell.next = tc.bins[class]
	tc.bins[class] = cell
	return nil
}

// UnsafeRealloc is like Realloc except its first argument and result are
// unsafe.Pointer values.
func (tc *ThreadCache) UnsafeRealloc(p unsafe.Pointer, n int) (unsafe.Pointer, error) {
	switch {
	case p == nil:
		return tc.UnsafeMalloc(n)
	case n == 0:
		return nil, tc.UnsafeFree(p)
	}

	usable := UsableSize(p)
	if usable >= n {
		return p, nil
	}

	r, err := tc.UnsafeMalloc(n)
	if err != nil {
		return nil, err
	}

	copyBytes(r, p, usable)
	return r, tc.UnsafeFree(p)
}

// UsableSize reports the size of the memory block allocated at p, which
// must point to the first byte of a block returned by Malloc, Calloc,
// Realloc or their Unsafe counterparts. It can be larger than the size
// originally requested.
func UsableSize(p unsafe.Pointer) int {
	if p == nil {
		return 0
	}
	return int(headerOf(p).size) - headerSize
}

func copyBytes(dst, src unsafe.Pointer, n int) {
	copy(unsafe.Slice((*byte)(dst), n), unsafe.Slice((*byte)(src), n))
}

func zeroBytes(p unsafe.Pointer, n int) {
	b := unsafe.Slice((*byte)(p), n)
	for i := range b {
		b[i] = 0
	}
}
