package traffic

import (
	"sync"
	"time"
)

// maxAge bounds how long outcome timestamps are retained.
const maxAge = 5 * time.Minute

var defaultTracker Tracker

// RecordServed records a request that completed with a response (weather or soil).
func RecordServed() {
	defaultTracker.RecordServed()
}

// RecordDenied records a rate-limit denial (429).
func RecordDenied() {
	defaultTracker.RecordDenied()
}

// RecordUpstreamSuccess records an upstream weather call that produced a reading.
func RecordUpstreamSuccess() {
	defaultTracker.RecordUpstreamSuccess()
}

// RecordUpstreamFailure records an upstream weather call that ended in the synthetic fallback.
func RecordUpstreamFailure() {
	defaultTracker.RecordUpstreamFailure()
}

// RequestCount returns the number of requests (served + denied) within the window.
func RequestCount(window time.Duration) int {
	return defaultTracker.RequestCount(window)
}

// DenialCount returns the number of denials within the window.
func DenialCount(window time.Duration) int {
	return defaultTracker.DenialCount(window)
}

// UpstreamFailureRate returns (failures, attempts) for upstream calls within the window.
func UpstreamFailureRate(window time.Duration) (failures, attempts int) {
	return defaultTracker.UpstreamFailureRate(window)
}

// Reset clears all recorded outcomes. For tests only.
func Reset() {
	defaultTracker.Reset()
}

// Tracker maintains sliding windows of outcome timestamps.
// Single source of truth for overload (RequestCount, DenialCount) and degraded (UpstreamFailureRate).
type Tracker struct {
	mu               sync.Mutex
	servedTimes      []time.Time
	deniedTimes      []time.Time
	upstreamOKTimes  []time.Time
	upstreamErrTimes []time.Time
}

// RecordServed records a served request in the tracker.
func (t *Tracker) RecordServed() {
	t.recordOutcome(&t.servedTimes)
}

// RecordDenied records a rate-limit denial (429) in the tracker.
func (t *Tracker) RecordDenied() {
	t.recordOutcome(&t.deniedTimes)
}

// RecordUpstreamSuccess records a successful upstream call in the tracker.
func (t *Tracker) RecordUpstreamSuccess() {
	t.recordOutcome(&t.upstreamOKTimes)
}

// RecordUpstreamFailure records a failed upstream call in the tracker.
func (t *Tracker) RecordUpstreamFailure() {
	t.recordOutcome(&t.upstreamErrTimes)
}

func (t *Tracker) recordOutcome(slice *[]time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	*slice = append(*slice, now)
	t.pruneLocked(now)
}

// RequestCount returns served + denied requests within the window.
func (t *Tracker) RequestCount(window time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	cutoff := time.Now().Add(-window)
	return countInWindow(t.servedTimes, cutoff) + countInWindow(t.deniedTimes, cutoff)
}

// DenialCount returns the number of rate-limit denials within the window.
func (t *Tracker) DenialCount(window time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return countInWindow(t.deniedTimes, time.Now().Add(-window))
}

// UpstreamFailureRate returns (failures, attempts) within the window.
// Resolutions that never attempted the upstream (no API key, circuit open) are not counted.
func (t *Tracker) UpstreamFailureRate(window time.Duration) (failures, attempts int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cutoff := time.Now().Add(-window)
	failures = countInWindow(t.upstreamErrTimes, cutoff)
	return failures, failures + countInWindow(t.upstreamOKTimes, cutoff)
}

// Reset clears all recorded outcomes from the tracker.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.servedTimes = nil
	t.deniedTimes = nil
	t.upstreamOKTimes = nil
	t.upstreamErrTimes = nil
}

func countInWindow(times []time.Time, cutoff time.Time) int {
	n := 0
	for _, ts := range times {
		if !ts.Before(cutoff) {
			n++
		}
	}
	return n
}

// pruneLocked drops timestamps older than maxAge. Must be called with mutex held.
func (t *Tracker) pruneLocked(now time.Time) {
	cutoff := now.Add(-maxAge)
	prune := func(slice *[]time.Time) {
		times := *slice
		i := 0
		for ; i < len(times) && times[i].Before(cutoff); i++ {
		}
		if i > 0 {
			*slice = append(times[:0], times[i:]...)
		}
	}
	prune(&t.servedTimes)
	prune(&t.deniedTimes)
	prune(&t.upstreamOKTimes)
	prune(&t.upstreamErrTimes)
}
