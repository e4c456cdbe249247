package allocator

import "unsafe"

// ThreadCache is a goroutine-owned array of per-size-class free-cell bins.
// It is not internally synchronized: exactly one goroutine may call its
// methods at a time. See the package doc for why this ownership discipline,
// rather than implicit thread-local storage, is the idiomatic Go rendition
// of "thread cache" (it is also exactly how the teacher allocator's
// zero-value Allocator is meant to be used — one value per goroutine).
//
// Fast allocation never touches the page pool's lock except on bin refill;
// fast free never touches any lock at all. A cell freed on a ThreadCache
// different from the one that allocated it simply joins that cache's bin —
// this cross-thread asymmetry is an accepted simplification, not a bug.
type ThreadCache struct {
	bins [numClasses]*freeCell
}

// NewThreadCache bootstraps process-global state if this is the first
// caller anywhere in the process, then stocks all seven bins from freshly
// sliced pages before returning.
func NewThreadCache() (*ThreadCache, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	tc := &ThreadCache{}
	for k := 0; k < numClasses; k++ {
		if err := tc.refillBin(k, 1); err != nil {
			return nil, err
		}
	}
	return tc, nil
}

// refillBin claims `pages` raw pages from the global pool, slices each into
// a class-k cell chain, and prepends every chain to the bin.
func (tc *ThreadCache) refillBin(class, pages int) error {
	n, err := globalPool.takeMany(pages)
	if err != nil {
		return err
	}
	for p := n; p != nil; {
		next := p.next
		chain, tail := sliceIntoCells(unsafe.Pointer(p), class)
		tail.next = tc.bins[class]
		tc.bins[class] = chain
		p = next
	}
	return nil
}

// Malloc allocates n bytes and returns a byte slice of the allocated
// memory. The memory is not initialized. Malloc panics for n < 0 and, per
// this allocator's contract, returns a non-nil, freeable zero-length slice
// for n == 0 rather than (nil, nil).
func (tc *ThreadCache) Malloc(n int) (r []byte, err error) {
	defer func() { traceMalloc(n, r, err) }()
	if n < 0 {
		panic("allocator: invalid malloc size")
	}

	total := n + headerSize
	if total > largeThreshold {
		return tc.mallocLarge(n)
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
	full := unsafe.Slice((*byte)(userPtr(h)), classSize(class)-headerSize)
	return full[:n], nil
}

// Calloc is like Malloc except the allocated memory is zeroed.
func (tc *ThreadCache) Calloc(n int) ([]byte, error) {
	b, err := tc.Malloc(n)
	if err != nil {
		return nil, err
	}
	for i := range b {
		b[i] = 0
	}
	return b, nil
}

// Free deallocates memory acquired from Malloc, Calloc or Realloc on this or
// another ThreadCache; a small cell joins this cache's bin. Freeing a
// foreign pointer or double-freeing is undefined behavior, as with the
// standard allocator this replaces.
func (tc *ThreadCache) Free(b []byte) (err error) {
	defer func() { traceFree(b, err) }()
	b = b[:cap(b)]
	if len(b) == 0 {
		return nil
	}

	h := headerOf(unsafe.Pointer(&b[0]))
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

// Realloc changes the size of the backing allocation of b to n bytes.
// Contents are preserved up to min(old payload, n). If b's backing array
// already has room for n, the same pointer is returned unchanged — this
// allocator never shrinks a live block in place, only reuses it when it
// already fits.
func (tc *ThreadCache) Realloc(b []byte, n int) ([]byte, error) {
	switch {
	case cap(b) == 0:
		return tc.Malloc(n)
	case n == 0:
		return nil, tc.Free(b)
	}

	old := b[:cap(b)]
	h := headerOf(unsafe.Pointer(&old[0]))
	usable := int(h.size) - headerSize
	if usable >= n {
		return old[:n], nil
	}

	r, err := tc.Malloc(n)
	if err != nil {
		return nil, err
	}
	copy(r, b)
	return r, tc.Free(b)
}
