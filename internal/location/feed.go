package location

import (
	"context"
	"errors"
	"sync"

	"github.com/kjstillabower/weather-lookup/internal/models"
)

// ErrFeedClosed is returned when publishing to a closed feed.
var ErrFeedClosed = errors.New("location feed closed")

// Event is one report from the location service: a fix or a failure.
type Event struct {
	Fix models.Coordinate
	Err error
}

// Feed is an asynchronous stream of location events. Producers publish from
// any goroutine; Pump consumes.
type Feed struct {
	mu     sync.RWMutex
	events chan Event
	closed bool

	// done wakes publishers blocked on a full buffer so Close can proceed
	// without a consumer.
	done      chan struct{}
	closeOnce sync.Once
}

// NewFeed creates a feed with room for buffer undelivered events.
func NewFeed(buffer int) *Feed {
	if buffer < 0 {
		buffer = 0
	}
	return &Feed{events: make(chan Event, buffer), done: make(chan struct{})}
}

// Publish reports a new fix. It blocks while the buffer is full.
func (f *Feed) Publish(ctx context.Context, fix models.Coordinate) error {
	return f.send(ctx, Event{Fix: fix})
}

// Fail reports that the location service could not produce a fix.
func (f *Feed) Fail(ctx context.Context, err error) error {
	return f.send(ctx, Event{Err: err})
}

func (f *Feed) send(ctx context.Context, ev Event) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return ErrFeedClosed
	}
	select {
	case f.events <- ev:
		return nil
	case <-f.done:
		return ErrFeedClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Updates returns the receive side of the feed. It is closed by Close.
func (f *Feed) Updates() <-chan Event {
	return f.events
}

// Close ends the stream. Blocked publishers return ErrFeedClosed. Events
// already buffered stay readable. Safe to call more than once.
func (f *Feed) Close() {
	f.closeOnce.Do(func() { close(f.done) })

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.events)
	}
}
