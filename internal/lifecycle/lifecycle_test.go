package lifecycle

import (
	"testing"
	"time"
)

func TestIsShuttingDown_DefaultFalse(t *testing.T) {
	Reset()
	if IsShuttingDown() {
		t.Error("IsShuttingDown() = true, want false by default")
	}
	if !ShutdownSince().IsZero() {
		t.Error("ShutdownSince() should be zero before shutdown")
	}
}

func TestBeginShutdown(t *testing.T) {
	Reset()
	defer Reset()

	before := time.Now()
	BeginShutdown()
	if !IsShuttingDown() {
		t.Fatal("IsShuttingDown() = false after BeginShutdown, want true")
	}
	first := ShutdownSince()
	if first.Before(before.Add(-time.Second)) {
		t.Errorf("ShutdownSince() = %v, want around %v", first, before)
	}

	time.Sleep(2 * time.Millisecond)
	BeginShutdown()
	if !ShutdownSince().Equal(first) {
		t.Error("second BeginShutdown should keep the original timestamp")
	}
}
