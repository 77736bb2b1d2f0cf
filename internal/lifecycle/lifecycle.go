package lifecycle

import (
	"sync/atomic"
	"time"
)

var (
	shuttingDown atomic.Bool
	since        atomic.Int64
)

// BeginShutdown marks the process as draining. Call when SIGTERM/SIGINT is
// received. Health returns 503 shutting-down from then on. Later calls keep
// the first timestamp.
func BeginShutdown() {
	if shuttingDown.CompareAndSwap(false, true) {
		since.Store(time.Now().UnixNano())
	}
}

// IsShuttingDown returns true once BeginShutdown has been called.
func IsShuttingDown() bool {
	return shuttingDown.Load()
}

// ShutdownSince returns when draining began, or the zero time.
func ShutdownSince() time.Time {
	if !shuttingDown.Load() {
		return time.Time{}
	}
	return time.Unix(0, since.Load())
}

// Reset clears the flag. For tests only.
func Reset() {
	shuttingDown.Store(false)
	since.Store(0)
}
