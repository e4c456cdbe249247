package allocator

import (
	"unsafe"

	"github.com/michaelsmithxyz/allocator/sysmem"
)

// freeCell is the intrusive "next free cell" link that overlays a free
// cell's first word. A cell carries no size field while free: its class is
// implied entirely by the bin that holds it.
type freeCell struct {
	next *freeCell
}

// sliceIntoCells partitions one raw page into a chain of free cells of the
// given class, linked head-to-tail through each cell's first word. It does
// not touch the page pool lock. Remainder bytes at the page tail (when
// sysmem.PageSize is not a multiple of the class size) are left unused.
func sliceIntoCells(page unsafe.Pointer, class int) (head, tail *freeCell) {
	size := classSize(class)
	count := sysmem.PageSize / size
	base := uintptr(page)
	for i := 0; i < count; i++ {
		c := (*freeCell)(unsafe.Pointer(base + uintptr(i*size)))
		c.next = nil
		if head == nil {
			head = c
		} else {
			tail.next = c
		}
		tail = c
	}
	return head, tail
}
