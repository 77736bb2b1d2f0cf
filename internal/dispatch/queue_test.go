package dispatch

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_RunsInPostOrder(t *testing.T) {
	q := NewQueue(2)
	var mu sync.Mutex
	var got []int
	for i := 0; i < 10; i++ {
		i := i
		require.NoError(t, q.Post(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		}))
	}
	q.Close()
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestQueue_PostAfterClose(t *testing.T) {
	q := NewQueue(1)
	q.Close()
	assert.ErrorIs(t, q.Post(func() {}), ErrQueueClosed)
}

func TestQueue_CloseIdempotent(t *testing.T) {
	q := NewQueue(0)
	q.Close()
	assert.NotPanics(t, q.Close)
}

func TestQueue_CloseDrainsPending(t *testing.T) {
	q := NewQueue(8)
	block := make(chan struct{})
	ran := 0
	require.NoError(t, q.Post(func() { <-block }))
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Post(func() { ran++ }))
	}
	assert.GreaterOrEqual(t, q.Len(), 4)
	close(block)
	q.Close()
	assert.Equal(t, 5, ran)
	assert.Zero(t, q.Len())
}
