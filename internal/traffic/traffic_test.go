package traffic

import (
	"testing"
	"time"
)

// TestDeliveryCount_Empty verifies that nothing is counted before any outcome.
func TestDeliveryCount_Empty(t *testing.T) {
	Reset()
	if n := DeliveryCount(time.Minute); n != 0 {
		t.Errorf("DeliveryCount() = %d, want 0", n)
	}
}

// TestErrorRate_SuccessAndError verifies error rate over deliveries.
func TestErrorRate_SuccessAndError(t *testing.T) {
	Reset()
	RecordSuccess()
	RecordSuccess()
	RecordError()
	errors, total := ErrorRate(time.Minute)
	if errors != 1 || total != 3 {
		t.Errorf("ErrorRate() = (%d, %d), want (1, 3)", errors, total)
	}
	if n := DeliveryCount(time.Minute); n != 3 {
		t.Errorf("DeliveryCount() = %d, want 3", n)
	}
}

// TestSuperseded_NotAnError verifies dropped stale results stay out of the
// error rate and delivery count.
func TestSuperseded_NotAnError(t *testing.T) {
	Reset()
	RecordSuperseded()
	RecordSuperseded()
	RecordSuccess()

	errors, total := ErrorRate(time.Minute)
	if errors != 0 || total != 1 {
		t.Errorf("ErrorRate() = (%d, %d), want (0, 1)", errors, total)
	}
	if n := SupersededCount(time.Minute); n != 2 {
		t.Errorf("SupersededCount() = %d, want 2", n)
	}
}

func TestRecordDenied_Counts(t *testing.T) {
	Reset()
	RecordDenied()
	if n := DenialCount(time.Minute); n != 1 {
		t.Errorf("DenialCount() = %d, want 1", n)
	}
	if n := DeliveryCount(time.Minute); n != 0 {
		t.Errorf("DeliveryCount() = %d, want 0", n)
	}
}

func TestTracker_WindowExcludesOld(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	tr := Tracker{now: func() time.Time { return now }}
	tr.RecordError()
	now = now.Add(30 * time.Second)
	tr.RecordSuccess()

	errors, total := tr.ErrorRate(10 * time.Second)
	if errors != 0 || total != 1 {
		t.Errorf("ErrorRate(10s) = (%d, %d), want (0, 1)", errors, total)
	}
	errors, total = tr.ErrorRate(time.Minute)
	if errors != 1 || total != 2 {
		t.Errorf("ErrorRate(1m) = (%d, %d), want (1, 2)", errors, total)
	}
}

func TestTracker_ExpiresPastRetention(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	tr := Tracker{now: func() time.Time { return now }}
	tr.RecordSuperseded()
	tr.RecordSuperseded()
	now = now.Add(retention + time.Second)
	tr.RecordSuccess()

	if got := len(tr.series[Superseded]); got != 0 {
		t.Errorf("superseded entries kept = %d, want 0", got)
	}
	if n := tr.Count(time.Hour, Success, Superseded); n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func TestTracker_Reset(t *testing.T) {
	var tr Tracker
	tr.RecordSuccess()
	tr.RecordSuperseded()
	tr.RecordDenied()
	tr.Reset()
	if tr.DeliveryCount(time.Minute) != 0 || tr.SupersededCount(time.Minute) != 0 || tr.DenialCount(time.Minute) != 0 {
		t.Error("Reset() should clear all outcomes")
	}
}
