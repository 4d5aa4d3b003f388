package lifecycle

import (
	"net/http"
	"sync/atomic"
)

var shuttingDown atomic.Bool

// SetShuttingDown sets the shutdown flag. Call when SIGTERM/SIGINT received.
// Health handler returns 503 with status shutting-down while true.
func SetShuttingDown(v bool) {
	shuttingDown.Store(v)
}

// IsShuttingDown returns true if the process is draining and should not receive new traffic.
func IsShuttingDown() bool {
	return shuttingDown.Load()
}

// Status is the health state reported on /health.
type Status string

const (
	StatusHealthy      Status = "healthy"
	StatusDegraded     Status = "degraded"
	StatusOverloaded   Status = "overloaded"
	StatusShuttingDown Status = "shutting-down"
)

// Signals are the observations a health verdict is computed from.
type Signals struct {
	ShuttingDown bool
	Overloaded   bool
	// UpstreamDegraded is true when the weather provider failure rate breached its threshold.
	UpstreamDegraded bool
}

// Verdict is a health status with its HTTP code and the reason it was chosen.
type Verdict struct {
	Status     Status
	StatusCode int
	Reason     string
}

// Evaluate picks a status in priority order: shutting-down > overloaded > degraded > healthy.
// Degraded still answers 200: weather is served from the synthetic fallback, so the
// instance keeps taking traffic.
func Evaluate(s Signals) Verdict {
	switch {
	case s.ShuttingDown:
		return Verdict{StatusShuttingDown, http.StatusServiceUnavailable, "signal"}
	case s.Overloaded:
		return Verdict{StatusOverloaded, http.StatusServiceUnavailable, "overload_threshold"}
	case s.UpstreamDegraded:
		return Verdict{StatusDegraded, http.StatusOK, "upstream_failure_rate"}
	}
	return Verdict{StatusHealthy, http.StatusOK, ""}
}
