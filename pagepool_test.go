package allocator

import (
	"testing"
	"unsafe"

	"github.com/michaelsmithxyz/allocator/sysmem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsafePointerOfNode(n *pageNode) unsafe.Pointer { return unsafe.Pointer(n) }

func TestPagePoolTakeOneRefills(t *testing.T) {
	var p pagePool
	n, err := p.takeOne()
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.NotNil(t, p.head, "refill should have left more pages on the stack")
}

func TestPagePoolTakeManyChainsNPages(t *testing.T) {
	var p pagePool
	const want = 10
	chain, err := p.takeMany(want)
	require.NoError(t, err)

	got := 0
	for n := chain; n != nil; n = n.next {
		got++
	}
	assert.Equal(t, want, got)
}

func TestPagePoolDispensesUnpartitionedPages(t *testing.T) {
	var p pagePool
	n, err := p.takeOne()
	require.NoError(t, err)

	// A page taken from the pool is exactly sysmem.PageSize bytes and
	// entirely unpartitioned: slicing it into cells must not panic.
	chain, tail := sliceIntoCells(unsafePointerOfNode(n), 0)
	require.NotNil(t, chain)
	require.NotNil(t, tail)
	count := 0
	for c := chain; c != nil; c = c.next {
		count++
	}
	assert.Equal(t, sysmem.PageSize/classSize(0), count)
}
