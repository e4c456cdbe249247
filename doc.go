// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package allocator implements a two-tier, thread-cached dynamic memory
// allocator on top of anonymous OS page mappings: a process-wide page pool
// feeds per-goroutine segregated free-list caches of small objects, with a
// direct-map path for large requests. See package coalesce for the simpler,
// single free-list predecessor this design replaces for small/medium
// allocations.
//
// A *ThreadCache is the unit of ownership: it is not internally
// synchronized and must be used by a single goroutine at a time, the same
// way the teacher allocator this package evolved from is "ready to use but
// not safe for concurrent use" by construction. Callers that want a shared,
// lock-protected allocator instead should reach for coalesce.Allocator.
package allocator
