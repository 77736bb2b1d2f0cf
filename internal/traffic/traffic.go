package traffic

import (
	"sort"
	"sync"
	"time"
)

var defaultTracker Tracker

// RecordSuccess records a successful delivery to the observer.
func RecordSuccess() {
	defaultTracker.RecordSuccess()
}

// RecordError records a failure delivered to the observer.
func RecordError() {
	defaultTracker.RecordError()
}

// RecordSuperseded records a result dropped because a newer lookup started.
func RecordSuperseded() {
	defaultTracker.RecordSuperseded()
}

// RecordDenied records a rate-limit denial (429) on a trigger endpoint.
func RecordDenied() {
	defaultTracker.RecordDenied()
}

// DeliveryCount returns deliveries (success + error) within the window.
func DeliveryCount(window time.Duration) int {
	return defaultTracker.DeliveryCount(window)
}

// SupersededCount returns dropped stale results within the window.
func SupersededCount(window time.Duration) int {
	return defaultTracker.SupersededCount(window)
}

// DenialCount returns the number of denials within the window.
func DenialCount(window time.Duration) int {
	return defaultTracker.DenialCount(window)
}

// ErrorRate returns (errorCount, totalCount) within the window. totalCount = successes + errors.
func ErrorRate(window time.Duration) (errors, total int) {
	return defaultTracker.ErrorRate(window)
}

// Reset clears all recorded outcomes. For tests only.
func Reset() {
	defaultTracker.Reset()
}

// Outcome is one kind of recorded lookup event.
type Outcome int

const (
	Success Outcome = iota
	Failure
	Superseded
	Denied
	numOutcomes
)

// retention bounds memory; no window queried by health exceeds it.
const retention = 10 * time.Minute

// Tracker keeps one timestamp series per Outcome. Superseded results and
// denials live in their own series so they never count as errors.
type Tracker struct {
	mu     sync.Mutex
	series [numOutcomes][]time.Time
	now    func() time.Time
}

func (t *Tracker) RecordSuccess()    { t.Record(Success) }
func (t *Tracker) RecordError()      { t.Record(Failure) }
func (t *Tracker) RecordSuperseded() { t.Record(Superseded) }
func (t *Tracker) RecordDenied()     { t.Record(Denied) }

// Record appends an outcome at the current time.
func (t *Tracker) Record(o Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock()
	t.series[o] = append(t.series[o], now)
	t.expireLocked(now.Add(-retention))
}

// Count returns how many of each given outcome fall within the window.
func (t *Tracker) Count(window time.Duration, outcomes ...Outcome) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	since := t.clock().Add(-window)
	n := 0
	for _, o := range outcomes {
		n += len(t.series[o]) - firstAtOrAfter(t.series[o], since)
	}
	return n
}

func (t *Tracker) DeliveryCount(window time.Duration) int {
	return t.Count(window, Success, Failure)
}

func (t *Tracker) SupersededCount(window time.Duration) int {
	return t.Count(window, Superseded)
}

func (t *Tracker) DenialCount(window time.Duration) int {
	return t.Count(window, Denied)
}

// ErrorRate returns failed deliveries and all deliveries within the window.
func (t *Tracker) ErrorRate(window time.Duration) (errors, total int) {
	errors = t.Count(window, Failure)
	return errors, errors + t.Count(window, Success)
}

func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.series = [numOutcomes][]time.Time{}
}

func (t *Tracker) clock() time.Time {
	if t.now != nil {
		return t.now()
	}
	return time.Now()
}

// expireLocked drops entries older than cutoff. Caller holds mu.
func (t *Tracker) expireLocked(cutoff time.Time) {
	for o := range t.series {
		if i := firstAtOrAfter(t.series[o], cutoff); i > 0 {
			t.series[o] = append(t.series[o][:0], t.series[o][i:]...)
		}
	}
}

// firstAtOrAfter returns the index of the first timestamp not before cutoff.
// Series are appended in time order.
func firstAtOrAfter(times []time.Time, cutoff time.Time) int {
	return sort.Search(len(times), func(i int) bool { return !times[i].Before(cutoff) })
}
