package overload

import (
	"time"

	"github.com/kjstillabower/krishi-assist-service/internal/traffic"
)

// RecordServed records a request that reached a handler and was answered.
func RecordServed() {
	traffic.RecordServed()
}

// RecordDenial records a rate-limit denial (429). Call from middleware when returning 429.
func RecordDenial() {
	traffic.RecordDenied()
}

// RequestCount returns the number of requests (served + denied) within the given window.
func RequestCount(window time.Duration) int {
	return traffic.RequestCount(window)
}

// DenialCount returns the number of denials within the given window.
func DenialCount(window time.Duration) int {
	return traffic.DenialCount(window)
}

// Threshold returns the request count above which the service reports overloaded:
// rps * window seconds * pct / 100.
func Threshold(rps int, window time.Duration, pct int) float64 {
	return float64(rps) * window.Seconds() * float64(pct) / 100
}

// IsOverloaded reports whether requests in window exceed Threshold. Disabled when rps is 0.
func IsOverloaded(rps int, window time.Duration, pct int) bool {
	if rps <= 0 || window <= 0 {
		return false
	}
	return float64(RequestCount(window)) > Threshold(rps, window, pct)
}

// Reset clears all recorded data. For tests only.
func Reset() {
	traffic.Reset()
}
