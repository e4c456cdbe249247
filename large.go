package allocator

import (
	"unsafe"

	"github.com/michaelsmithxyz/allocator/sysmem"
)

// mallocLarge serves a request whose header-inclusive size exceeds the
// largest size class by mapping ceil(size/PageSize) pages directly. Large
// objects never participate in the page pool or any thread cache.
func (tc *ThreadCache) mallocLarge(n int) ([]byte, error) {
	total := n + headerSize
	pages := (total + sysmem.PageSize - 1) / sysmem.PageSize

	b, err := sysmem.MapPages(pages)
	if err != nil {
		return nil, err
	}

	h := (*header)(unsafe.Pointer(&b[0]))
	h.size = uintptr(len(b))
	full := unsafe.Slice((*byte)(userPtr(h)), len(b)-headerSize)
	return full[:n], nil
}

// freeLarge unmaps the entire extent backing a large object. size is the
// header-recorded total (payload + header, rounded up to whole pages).
func (tc *ThreadCache) freeLarge(h *header, size int) error {
	b := unsafe.Slice((*byte)(unsafe.Pointer(h)), size)
	return sysmem.UnmapPages(b)
}

func (tc *ThreadCache) unsafeMallocLarge(n int) (unsafe.Pointer, error) {
	total := n + headerSize
	pages := (total + sysmem.PageSize - 1) / sysmem.PageSize

	b, err := sysmem.MapPages(pages)
	if err != nil {
		return nil, err
	}

	h := (*header)(unsafe.Pointer(&b[0]))
	h.size = uintptr(len(b))
	return userPtr(h), nil
}
