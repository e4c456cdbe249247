// Copyright 2011 Evan Shaw. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE-MMAP-GO file.

//go:build darwin || dragonfly || freebsd || linux || openbsd || solaris || netbsd

package sysmem

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

func mapPages(size int) ([]byte, error) {
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, err
	}

	if uintptr(unsafe.Pointer(&b[0]))%PageSize != 0 {
		panic("sysmem: mmap returned a non-page-aligned address")
	}

	return b, nil
}

func unmapPages(b []byte) error {
	return unix.Munmap(b)
}
