package lookup

import (
	"context"
	"sync"

	"github.com/kjstillabower/weather-lookup/internal/observability"
)

// inFlightTracker counts network calls whose completion has not run yet.
// Shutdown waits on it before closing the delivery queue.
type inFlightTracker struct {
	mu    sync.Mutex
	count int64
	idle  chan struct{} // closed while count == 0
}

func (t *inFlightTracker) start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.count == 0 {
		t.idle = make(chan struct{})
	}
	t.count++
	observability.LookupsInFlight.Inc()
}

func (t *inFlightTracker) finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count--
	observability.LookupsInFlight.Dec()
	if t.count == 0 {
		close(t.idle)
	}
}

// Count returns the current in-flight count.
func (t *inFlightTracker) Count() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// WaitForZero blocks until nothing is in flight or ctx is done.
func (t *inFlightTracker) WaitForZero(ctx context.Context) error {
	t.mu.Lock()
	if t.count == 0 {
		t.mu.Unlock()
		return nil
	}
	idle := t.idle
	t.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
