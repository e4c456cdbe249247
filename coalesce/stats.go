package coalesce

import "github.com/sirupsen/logrus"

// Stats is a snapshot of the allocator's counters. All fields are
// nonnegative; they carry no atomicity requirement independent of the
// allocator's own mutex, which every update and every read goes through.
type Stats struct {
	PagesMapped     int64
	PagesUnmapped   int64
	ChunksAllocated int64
	ChunksFreed     int64
	FreeLength      int64
}

// Stats returns a point-in-time snapshot of the allocator's counters.
// FreeLength is computed on demand by walking the free list.
func (a *Allocator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.stats
	s.FreeLength = a.freeListLengthLocked()
	return s
}

func (a *Allocator) freeListLengthLocked() int64 {
	var n int64
	for cur := a.freeList; cur != nil; cur = cur.next {
		n++
	}
	return n
}

// LogStats emits a labeled block of the allocator's current counters to
// the structured log, the same diagnostic the teacher allocator prints
// directly to stderr, routed here through logrus so it composes with the
// host program's own logging configuration.
func (a *Allocator) LogStats() {
	s := a.Stats()
	logrus.WithFields(logrus.Fields{
		"pages_mapped":     s.PagesMapped,
		"pages_unmapped":   s.PagesUnmapped,
		"chunks_allocated": s.ChunksAllocated,
		"chunks_freed":     s.ChunksFreed,
		"free_length":      s.FreeLength,
	}).Info("coalescing allocator stats")
}
