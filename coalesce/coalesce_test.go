package coalesce

import (
	"testing"
	"unsafe"

	"github.com/cznic/mathutil"
	"github.com/michaelsmithxyz/allocator/sysmem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMallocZeroIsFreeableNonNil(t *testing.T) {
	var a Allocator
	b, err := a.Malloc(0)
	require.NoError(t, err)
	assert.NotNil(t, b)
	require.NoError(t, a.Free(b))
}

func TestRoundTrip(t *testing.T) {
	var a Allocator
	b, err := a.Malloc(100)
	require.NoError(t, err)
	for i := range b {
		b[i] = 0xAB
	}
	for _, v := range b {
		assert.EqualValues(t, 0xAB, v)
	}
	require.NoError(t, a.Free(b))
}

// TestCoalesceAdjacentFreeBlocks is end-to-end scenario 3: allocate three
// equal blocks sequentially, free the middle one then the first one, and
// confirm the free list holds one block covering both freed spans.
func TestCoalesceAdjacentFreeBlocks(t *testing.T) {
	var a Allocator
	b1, err := a.Malloc(64)
	require.NoError(t, err)
	b2, err := a.Malloc(64)
	require.NoError(t, err)
	b3, err := a.Malloc(64)
	require.NoError(t, err)
	_ = b3

	require.NoError(t, a.Free(b2))
	require.NoError(t, a.Free(b1))

	// One block covering both freed spans, plus the unused tail of the page
	// that b3 was carved from.
	assert.EqualValues(t, 2, a.Stats().FreeLength)

	span1 := headerOf(unsafe.Pointer(&b1[0]))
	span2 := headerOf(unsafe.Pointer(&b2[0]))
	wantSize := (uintptr(unsafe.Pointer(span2)) - uintptr(unsafe.Pointer(span1))) + span2.size
	assert.EqualValues(t, wantSize, a.freeList.size)

	require.NoError(t, a.Free(b3))
}

func TestFreeListStaysAddressSorted(t *testing.T) {
	var a Allocator
	var blocks [][]byte
	for i := 0; i < 8; i++ {
		b, err := a.Malloc(48)
		require.NoError(t, err)
		blocks = append(blocks, b)
	}
	// free in reverse order: each freed block is inserted at the head and
	// must merge with the free block that follows it
	for i := len(blocks) - 1; i >= 0; i-- {
		require.NoError(t, a.Free(blocks[i]))
	}

	var prev *freeBlock
	for cur := a.freeList; cur != nil; cur = cur.next {
		if prev != nil {
			assert.Less(t, uintptr(unsafe.Pointer(prev)), uintptr(unsafe.Pointer(cur)))
			assert.NotEqual(t, uintptr(unsafe.Pointer(prev))+prev.size, uintptr(unsafe.Pointer(cur)),
				"adjacent free blocks should have been coalesced")
		}
		prev = cur
	}
}

func TestReallocPreservesPrefix(t *testing.T) {
	var a Allocator
	b, err := a.Malloc(16)
	require.NoError(t, err)
	for i := range b {
		b[i] = byte(i + 1)
	}

	r, err := a.Realloc(b, 4000)
	require.NoError(t, err)
	require.Len(t, r, 4000)
	for i := 0; i < 16; i++ {
		assert.EqualValues(t, byte(i+1), r[i])
	}
	require.NoError(t, a.Free(r))
}

func TestLargeObjectRoundTrip(t *testing.T) {
	var a Allocator
	b, err := a.Malloc(sysmem.PageSize + 1)
	require.NoError(t, err)
	require.Len(t, b, sysmem.PageSize+1)
	require.NoError(t, a.Free(b))

	stats := a.Stats()
	assert.EqualValues(t, stats.PagesMapped, stats.PagesUnmapped)
}

func TestStatsRoundTripToZero(t *testing.T) {
	var a Allocator
	var allocs [][]byte
	for i := 0; i < 16; i++ {
		b, err := a.Malloc(i*7 + 1)
		require.NoError(t, err)
		allocs = append(allocs, b)
	}
	for _, b := range allocs {
		require.NoError(t, a.Free(b))
	}

	s := a.Stats()
	assert.EqualValues(t, 16, s.ChunksAllocated)
	assert.EqualValues(t, 16, s.ChunksFreed)
}

// fuzz mirrors the teacher allocator's own shuffled allocate/verify/free
// sequence, adapted to this package's Allocator.
func fuzz(t *testing.T, max int) {
	const quota = 4 << 20
	var a Allocator
	rem := quota
	var allocs [][]byte
	rng, err := mathutil.NewFC32(1, max, true)
	require.NoError(t, err)
	pos := rng.Pos()

	for rem > 0 {
		size := rng.Next()
		rem -= size
		b, err := a.Malloc(size)
		require.NoError(t, err)
		for i := range b {
			b[i] = byte(rng.Next())
		}
		allocs = append(allocs, b)
	}

	rng.Seek(pos)
	for i, b := range allocs {
		if g, e := len(b), rng.Next(); g != e {
			t.Fatalf("len mismatch at %d: got %d want %d", i, g, e)
		}
		for j, g := range b {
			if e := byte(rng.Next()); g != e {
				t.Fatalf("byte %d of block %d mismatch: got %#02x want %#02x", j, i, g, e)
			}
		}
	}

	for _, b := range allocs {
		require.NoError(t, a.Free(b))
	}

	assert.EqualValues(t, 0, a.Stats().ChunksAllocated-a.Stats().ChunksFreed)
}

func TestFuzzSmall(t *testing.T) { fuzz(t, 512) }
func TestFuzzBig(t *testing.T)   { fuzz(t, 3*sysmem.PageSize) }
