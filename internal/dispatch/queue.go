package dispatch

import (
	"errors"
	"sync"
)

// DefaultQueueSize is used when NewQueue is given a non-positive size.
const DefaultQueueSize = 64

// ErrQueueClosed is returned by Post after Close.
var ErrQueueClosed = errors.New("delivery queue closed")

// Queue is the designated delivery context: a single goroutine running posted
// callbacks in the order they were posted.
type Queue struct {
	mu     sync.RWMutex
	work   chan func()
	closed bool
	done   chan struct{}
}

// NewQueue starts the delivery goroutine.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	q := &Queue{
		work: make(chan func(), size),
		done: make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Queue) run() {
	defer close(q.done)
	for fn := range q.work {
		fn()
	}
}

// Post hands fn to the delivery goroutine. It blocks while the buffer is full.
func (q *Queue) Post(fn func()) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	q.work <- fn
	return nil
}

// Len returns the number of callbacks waiting to run.
func (q *Queue) Len() int {
	return len(q.work)
}

// Close stops accepting work, runs everything already posted, and waits for
// the delivery goroutine to exit. Safe to call more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.work)
	}
	q.mu.Unlock()
	<-q.done
}
