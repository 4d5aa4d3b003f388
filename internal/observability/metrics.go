package observability

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kjstillabower/krishi-assist-service/internal/overload"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes (traffic surge).
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request. Watch for: p95/p99 latency increases, SLO breaches.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight. Watch for: saturation, capacity limits.
	HTTPRequestsInFlight prometheus.Gauge

	// Upstream weather provider call rate by outcome. Watch for: error vs success ratio.
	WeatherAPICallsTotal *prometheus.CounterVec

	// Upstream latency per call. Watch for: p99 near the client timeout.
	WeatherAPIDuration *prometheus.HistogramVec

	// Readings served, by source (UpstreamProvider, SyntheticFallback).
	WeatherResolutionsTotal *prometheus.CounterVec

	// Synthetic fallbacks by reason (no_api_key, circuit_open, timeout, canceled, upstream_status, ...).
	WeatherFallbacksTotal *prometheus.CounterVec

	// Total weather lookups. Watch for: traffic volume, rate() for QPS.
	WeatherQueriesTotal prometheus.Counter

	// Per-location query count (allow-list; others go to "other").
	WeatherQueriesByLocationTotal *prometheus.CounterVec

	// Circuit breaker state per component (0 closed, 1 open, 2 half_open).
	CircuitBreakerState *prometheus.GaugeVec

	// Circuit breaker transitions. Watch for: flapping between open and half_open.
	CircuitBreakerTransitionsTotal *prometheus.CounterVec

	// Soil samples analyzed.
	SoilAnalysesTotal prometheus.Counter

	// Distribution of computed soil health scores.
	SoilHealthScore prometheus.Histogram

	// Deficiency flags raised, by flag identifier.
	SoilDeficiencyFlagsTotal *prometheus.CounterVec

	// Rate limit denials. Watch for: overload, capacity exceeded.
	RateLimitDeniedTotal prometheus.Counter

	// In-flight requests observed when shutdown began.
	ShutdownInFlightRequests prometheus.Gauge

	trackedLocationsMu sync.RWMutex
	trackedLocations   map[string]struct{}

	rateLimitGaugesOnce sync.Once
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	WeatherAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherApiCallsTotal",
			Help: "Total number of upstream weather provider calls",
		},
		[]string{"status"},
	)
	WeatherAPIDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weatherApiDurationSeconds",
			Help:    "Upstream weather provider latency in seconds (per call)",
			Buckets: []float64{.1, .25, .5, 1, 2, 3, 4, 5},
		},
		[]string{"status"},
	)
	WeatherResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherResolutionsTotal",
			Help: "Weather readings served by source",
		},
		[]string{"source"},
	)
	WeatherFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherFallbacksTotal",
			Help: "Synthetic fallback readings by reason",
		},
		[]string{"reason"},
	)
	WeatherQueriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "weatherQueriesTotal",
			Help: "Total number of weather lookups",
		},
	)
	WeatherQueriesByLocationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherQueriesByLocationTotal",
			Help: "Weather queries by location (allow-list; others use location=other)",
		},
		[]string{"location"},
	)
	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuitBreakerState",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half_open)",
		},
		[]string{"component"},
	)
	CircuitBreakerTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuitBreakerTransitionsTotal",
			Help: "Circuit breaker state transitions",
		},
		[]string{"component", "from", "to"},
	)
	SoilAnalysesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "soilAnalysesTotal",
			Help: "Total number of soil samples scored",
		},
	)
	SoilHealthScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "soilHealthScore",
			Help:    "Distribution of soil health scores (0-100)",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)
	SoilDeficiencyFlagsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soilDeficiencyFlagsTotal",
			Help: "Soil deficiency flags raised, by flag",
		},
		[]string{"flag"},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Total number of requests denied by rate limiter (429)",
		},
	)
	ShutdownInFlightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "shutdownInFlightRequests",
			Help: "In-flight requests when graceful shutdown started",
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		WeatherAPICallsTotal, WeatherAPIDuration,
		WeatherResolutionsTotal, WeatherFallbacksTotal,
		WeatherQueriesTotal, WeatherQueriesByLocationTotal,
		CircuitBreakerState, CircuitBreakerTransitionsTotal,
		SoilAnalysesTotal, SoilHealthScore, SoilDeficiencyFlagsTotal,
		RateLimitDeniedTotal, ShutdownInFlightRequests,
	)
}

// RegisterRateLimitGauges registers load and rejects gauges for the rate-limited path.
// Call from main after config load with cfg.OverloadWindow. Uses same window as lifecycle.
func RegisterRateLimitGauges(window time.Duration) {
	rateLimitGaugesOnce.Do(func() {
		registry.MustRegister(
			prometheus.NewGaugeFunc(
				prometheus.GaugeOpts{
					Name: "rateLimitRequestsInWindow",
					Help: "Requests in sliding window; load/capacity planning",
				},
				func() float64 { return float64(overload.RequestCount(window)) },
			),
			prometheus.NewGaugeFunc(
				prometheus.GaugeOpts{
					Name: "rateLimitRejectsInWindow",
					Help: "429 responses in sliding window; are we rejecting requests",
				},
				func() float64 { return float64(overload.DenialCount(window)) },
			),
		)
	})
}

// SetTrackedLocations sets the allow-list for location metrics. Non-tracked locations increment "other".
func SetTrackedLocations(locations []string) {
	trackedLocationsMu.Lock()
	defer trackedLocationsMu.Unlock()
	trackedLocations = make(map[string]struct{}, len(locations))
	for _, loc := range locations {
		trackedLocations[normalizeLocationForMetrics(loc)] = struct{}{}
	}
}

// MetricLocationLabel returns the location label for metrics: the normalized
// location when allow-listed, "other" otherwise.
func MetricLocationLabel(location string) string {
	loc := normalizeLocationForMetrics(location)
	trackedLocationsMu.RLock()
	_, ok := trackedLocations[loc] // nil map read is safe in Go
	trackedLocationsMu.RUnlock()
	if ok {
		return loc
	}
	return "other"
}

// RecordWeatherQuery records a weather query for the given location.
func RecordWeatherQuery(location string) {
	WeatherQueriesTotal.Inc()
	WeatherQueriesByLocationTotal.WithLabelValues(MetricLocationLabel(location)).Inc()
}

// RecordWeatherResolution records which source produced a reading and, for
// fallbacks, why the upstream was not used.
func RecordWeatherResolution(source, fallbackReason string) {
	WeatherResolutionsTotal.WithLabelValues(source).Inc()
	if fallbackReason != "" {
		WeatherFallbacksTotal.WithLabelValues(fallbackReason).Inc()
	}
}

// RecordSoilAnalysis records a scored sample and the flags it raised.
func RecordSoilAnalysis(score int, flags []string) {
	SoilAnalysesTotal.Inc()
	SoilHealthScore.Observe(float64(score))
	for _, f := range flags {
		SoilDeficiencyFlagsTotal.WithLabelValues(f).Inc()
	}
}

// CircuitBreakerStateValue maps a breaker state ordinal to its gauge value.
func CircuitBreakerStateValue(state int) float64 {
	return float64(state)
}

// SetCircuitBreakerStateGauge sets the breaker state gauge for component.
func SetCircuitBreakerStateGauge(component string, value float64) {
	CircuitBreakerState.WithLabelValues(component).Set(value)
}

// RecordCircuitBreakerTransition counts a breaker state change.
func RecordCircuitBreakerTransition(component, from, to string) {
	CircuitBreakerTransitionsTotal.WithLabelValues(component, from, to).Inc()
}

// RecordShutdownInFlight records the in-flight count observed at shutdown.
func RecordShutdownInFlight(n int64) {
	ShutdownInFlightRequests.Set(float64(n))
}

func normalizeLocationForMetrics(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
