package allocator

import "unsafe"

// header is the one-word prefix immediately preceding every user pointer.
// It records the effective block size (payload + header), which is exactly
// what Free and Realloc need to decide a block's fate.
type header struct {
	size uintptr
}

const headerSize = int(unsafe.Sizeof(header{}))

func userPtr(h *header) unsafe.Pointer {
	return unsafe.Pointer(uintptr(unsafe.Pointer(h)) + uintptr(headerSize))
}

func headerOf(p unsafe.Pointer) *header {
	return (*header)(unsafe.Pointer(uintptr(p) - uintptr(headerSize)))
}
