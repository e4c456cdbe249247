package allocator

import (
	"sync"
	"unsafe"

	"github.com/michaelsmithxyz/allocator/sysmem"
)

// poolRefillPages and poolInitialPages are the pool's bulk batch size: when
// the stack empties, this many contiguous pages are mapped and threaded in
// before the request is serviced. Kept in the guidance band [1024, 2048].
// binRefillPages is how many pages a thread cache claims at once when one of
// its bins empties. Both are compile-time constants: this is a cold path
// relative to the thread-cache fast path, but it is still not a place to
// hide a runtime branch per-request.
const (
	poolInitialPages = 1536
	poolRefillPages  = 1536
	binRefillPages   = 4
)

// pageNode is the intrusive link overlaying a free page's first word while
// it sits in the pool, unpartitioned.
type pageNode struct {
	next *pageNode
}

// pagePool is the process-wide stack of free pages feeding every thread
// cache's bin refills. One mutex covers the entire structure; the lock is
// coarse by design because the pool is cold relative to the per-goroutine
// caches it feeds.
type pagePool struct {
	mu   sync.Mutex
	head *pageNode
}

// refillLocked maps a fresh batch of pages and threads them onto the stack.
// Caller must hold p.mu.
func (p *pagePool) refillLocked(batch int) error {
	b, err := sysmem.MapPages(batch)
	if err != nil {
		return err
	}
	base := uintptr(unsafe.Pointer(&b[0]))
	for i := 0; i < batch; i++ {
		n := (*pageNode)(unsafe.Pointer(base + uintptr(i*sysmem.PageSize)))
		n.next = p.head
		p.head = n
	}
	return nil
}

// takeOne dispenses a single raw page, refilling the pool first if empty.
func (p *pagePool) takeOne() (*pageNode, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.head == nil {
		if err := p.refillLocked(poolRefillPages); err != nil {
			return nil, err
		}
	}
	n := p.head
	p.head = n.next
	n.next = nil
	return n, nil
}

// takeMany dispenses a chain of n pages, refilling one batch at a time as
// needed, and holds the lock across the entire take.
func (p *pagePool) takeMany(n int) (*pageNode, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var head, tail *pageNode
	for i := 0; i < n; i++ {
		if p.head == nil {
			if err := p.refillLocked(poolRefillPages); err != nil {
				return nil, err
			}
		}
		next := p.head
		p.head = next.next
		next.next = nil
		if head == nil {
			head = next
		} else {
			tail.next = next
		}
		tail = next
	}
	return head, nil
}
