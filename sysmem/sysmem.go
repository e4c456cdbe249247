// Package sysmem wraps the operating system's anonymous page-mapping
// primitives behind the two operations the allocator core needs: map N
// contiguous pages, unmap a previously mapped span.
package sysmem

import "os"

// PageSize is the compile-time page size assumed by every caller of this
// package. It is not queried from the OS at runtime: callers size their
// headers and size classes against this constant.
const PageSize = 4096

// MapPages maps n contiguous, private, anonymous, zero-initialized,
// read/write pages and returns the backing slice. It fails only when the
// kernel refuses the mapping (address space or memory exhaustion).
func MapPages(n int) ([]byte, error) {
	if n <= 0 {
		panic("sysmem: MapPages requires n > 0")
	}
	b, err := mapPages(n * PageSize)
	if err != nil {
		return nil, &os.SyscallError{Syscall: "mmap", Err: err}
	}
	return b, nil
}

// UnmapPages releases a span previously returned by MapPages. b's length
// must be a whole multiple of PageSize.
func UnmapPages(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if err := unmapPages(b); err != nil {
		return &os.SyscallError{Syscall: "munmap", Err: err}
	}
	return nil
}
