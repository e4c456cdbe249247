// Copyright 2011 Evan Shaw. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE-MMAP-GO file.

package sysmem

import (
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Windows has no anonymous-mmap syscall; VirtualAlloc/VirtualFree play the
// same role. We keep a handle-free map from base address to mapped size
// since, unlike the file-mapping approach, VirtualAlloc spans are released
// by address alone.
var (
	regionsMu sync.Mutex
	regions   = map[uintptr]int{}
)

func mapPages(size int) ([]byte, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, err
	}

	if addr%PageSize != 0 {
		panic("sysmem: VirtualAlloc returned a non-page-aligned address")
	}

	regionsMu.Lock()
	regions[addr] = size
	regionsMu.Unlock()

	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

func unmapPages(b []byte) error {
	addr := uintptr(unsafe.Pointer(&b[0]))

	regionsMu.Lock()
	delete(regions, addr)
	regionsMu.Unlock()

	return windows.VirtualFree(addr, 0, windows.MEM_RELEASE)
}
