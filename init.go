package allocator

import (
	"runtime"
	"sync/atomic"
)

// Three-state init flag: untouched -> initializing -> ready. The first
// caller to observe untouched runs process-global init exactly once
// (mapping the first page batch); concurrent callers observing initializing
// spin until ready. Per-thread init has no separate flag: it is simply
// whether NewThreadCache has returned successfully for that value.
const (
	stateUntouched = iota
	stateInitializing
	stateReady
)

var (
	initState  atomic.Int32
	globalPool pagePool
)

// ensureInit guarantees the page pool has been bootstrapped exactly once
// before it is first used, with a happens-before edge from that bootstrap
// to every subsequent caller.
func ensureInit() error {
	for {
		switch initState.Load() {
		case stateReady:
			return nil
		case stateUntouched:
			if initState.CompareAndSwap(stateUntouched, stateInitializing) {
				globalPool.mu.Lock()
				err := globalPool.refillLocked(poolInitialPages)
				globalPool.mu.Unlock()
				if err != nil {
					initState.Store(stateUntouched)
					return err
				}
				initState.Store(stateReady)
				return nil
			}
		default: // stateInitializing: another goroutine is bootstrapping
			runtime.Gosched()
		}
	}
}
