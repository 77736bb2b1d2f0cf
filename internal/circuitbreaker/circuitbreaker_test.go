package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

var errUpstream = errors.New("upstream down")

func TestCircuitBreaker_OpensAfterFailureThreshold(t *testing.T) {
	cb := New(Config{FailureThreshold: 2, Timeout: time.Minute, Component: "test"})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := cb.Call(ctx, func() error { return errUpstream }); !errors.Is(err, errUpstream) {
			t.Fatalf("Call() #%d error = %v, want upstream error", i, err)
		}
	}
	if got := cb.State(); got != StateOpen {
		t.Fatalf("State() = %v, want open", got)
	}

	called := false
	err := cb.Call(ctx, func() error { called = true; return nil })
	if !errors.Is(err, ErrOpen) {
		t.Errorf("Call() while open error = %v, want ErrOpen", err)
	}
	if called {
		t.Error("Call() while open invoked fn")
	}
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	var mu sync.Mutex
	var transitions []string
	cb := New(Config{
		FailureThreshold: 1,
		SuccessThreshold: 1,
		Timeout:          20 * time.Millisecond,
		Component:        "test",
		OnStateChange: func(from, to State) {
			mu.Lock()
			transitions = append(transitions, from.String()+"->"+to.String())
			mu.Unlock()
		},
	})
	ctx := context.Background()

	_ = cb.Call(ctx, func() error { return errUpstream })
	time.Sleep(40 * time.Millisecond)
	if err := cb.Call(ctx, func() error { return nil }); err != nil {
		t.Fatalf("probe Call() error = %v", err)
	}
	if got := cb.State(); got != StateClosed {
		t.Errorf("State() = %v, want closed after successful probe", got)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"closed->open", "open->half_open", "half_open->closed"}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition[%d] = %q, want %q", i, transitions[i], want[i])
		}
	}
}

func TestCircuitBreaker_IgnoredErrorsDoNotTrip(t *testing.T) {
	errNotFound := errors.New("not found")
	cb := New(Config{
		FailureThreshold: 1,
		Ignore:           func(err error) bool { return errors.Is(err, errNotFound) },
	})

	for i := 0; i < 3; i++ {
		if err := cb.Call(context.Background(), func() error { return errNotFound }); !errors.Is(err, errNotFound) {
			t.Fatalf("Call() error = %v, want not found passthrough", err)
		}
	}
	if got := cb.State(); got != StateClosed {
		t.Errorf("State() = %v, want closed", got)
	}
}

func TestCircuitBreaker_CanceledContext(t *testing.T) {
	cb := New(Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := cb.Call(ctx, func() error {
		t.Error("fn called with canceled context")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Call() error = %v, want context.Canceled", err)
	}
}

// TestCircuitBreaker_AbandonedCallsDoNotTrip: calls whose context was
// cancelled mid-flight are not upstream failures.
func TestCircuitBreaker_AbandonedCallsDoNotTrip(t *testing.T) {
	cb := New(Config{FailureThreshold: 2, Timeout: time.Minute})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := cb.Call(ctx, func() error { return fmt.Errorf("request canceled: %w", context.Canceled) })
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Call() #%d error = %v, want context.Canceled", i, err)
		}
	}
	if got := cb.State(); got != StateClosed {
		t.Fatalf("State() = %v, want closed", got)
	}

	// A deadline is an upstream symptom and still counts.
	for i := 0; i < 2; i++ {
		_ = cb.Call(ctx, func() error { return context.DeadlineExceeded })
	}
	if got := cb.State(); got != StateOpen {
		t.Errorf("State() after timeouts = %v, want open", got)
	}
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		StateClosed:   "closed",
		StateOpen:     "open",
		StateHalfOpen: "half_open",
		State(9):      "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", s, got, want)
		}
	}
}
