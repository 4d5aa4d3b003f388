package degraded

import (
	"time"

	"github.com/kjstillabower/krishi-assist-service/internal/traffic"
)

// RecordUpstreamSuccess records an upstream call that returned a usable reading.
func RecordUpstreamSuccess() {
	traffic.RecordUpstreamSuccess()
}

// RecordUpstreamFailure records an upstream call that failed and fell back.
func RecordUpstreamFailure() {
	traffic.RecordUpstreamFailure()
}

// FailureRate returns (failures, attempts) within the window.
func FailureRate(window time.Duration) (failures, attempts int) {
	return traffic.UpstreamFailureRate(window)
}

// IsDegraded reports whether the failure percentage within window is at or above pct.
// Returns false when no upstream attempts were made.
func IsDegraded(window time.Duration, pct int) bool {
	if window <= 0 || pct <= 0 {
		return false
	}
	failures, attempts := FailureRate(window)
	if attempts == 0 {
		return false
	}
	return float64(failures)*100/float64(attempts) >= float64(pct)
}

// Reset clears all recorded data. For tests only.
func Reset() {
	traffic.Reset()
}
