package allocator

import (
	"unsafe"

	"github.com/sirupsen/logrus"
)

// trace gates a verbose per-call debug trace, the same switch the teacher
// allocator builds behind its own `trace` constant — routed through logrus
// here instead of a raw fmt.Fprintf so it composes with whatever logging
// configuration the host program already has.
var trace = false

// Option configures package-level, non-semantic behavior at construction
// time. It deliberately does not expose the pool/bin refill batch sizes:
// those stay compile-time constants (see pagepool.go) so the fast path never
// grows a runtime branch to read them.
type Option func()

// WithTrace enables or disables the verbose allocate/free debug trace for
// the lifetime of the process. Intended for debugging this package itself,
// not for production use.
func WithTrace(enabled bool) Option {
	return func() { trace = enabled }
}

// Configure applies the given options. It is safe to call before any
// allocation and has no effect on already-constructed ThreadCache values'
// data, only on the shared trace switch.
func Configure(opts ...Option) {
	for _, opt := range opts {
		opt()
	}
}

func traceMalloc(n int, p []byte, err error) {
	if !trace {
		return
	}
	var addr uintptr
	if len(p) != 0 {
		addr = uintptr(unsafe.Pointer(&p[0]))
	}
	logrus.WithFields(logrus.Fields{"size": n, "ptr": addr, "err": err}).Debug("allocator: malloc")
}

func traceFree(b []byte, err error) {
	if !trace {
		return
	}
	var addr uintptr
	if len(b) != 0 {
		addr = uintptr(unsafe.Pointer(&b[0]))
	}
	logrus.WithFields(logrus.Fields{"ptr": addr, "err": err}).Debug("allocator: free")
}
