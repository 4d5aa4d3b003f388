package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kjstillabower/krishi-assist-service/internal/circuitbreaker"
	"github.com/kjstillabower/krishi-assist-service/internal/degraded"
	"github.com/kjstillabower/krishi-assist-service/internal/lifecycle"
	"github.com/kjstillabower/krishi-assist-service/internal/observability"
	"github.com/kjstillabower/krishi-assist-service/internal/overload"
	"github.com/kjstillabower/krishi-assist-service/internal/service"
	"github.com/kjstillabower/krishi-assist-service/internal/soil"
	"github.com/kjstillabower/krishi-assist-service/internal/validation"
)

const serviceName = "krishi-assist-service"

// defaultMaxBodyBytes caps POST bodies when Limits.MaxBodyBytes is unset.
const defaultMaxBodyBytes = 64 << 10

// HealthConfig holds lifecycle thresholds for the health handler.
type HealthConfig struct {
	OverloadWindow       time.Duration
	OverloadThresholdPct int
	RateLimitRPS         int // 0 when rate limiter disabled
	DegradedWindow       time.Duration
	DegradedErrorPct     int
	// UpstreamConfigured is false when no API key was provided.
	UpstreamConfigured bool
	// Breaker is the upstream circuit breaker; nil when disabled.
	Breaker *circuitbreaker.CircuitBreaker
	Version string
}

// Limits bounds request inputs.
type Limits struct {
	LocationMinLength int
	LocationMaxLength int
	MaxBodyBytes      int64
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	resolver         *service.WeatherResolver
	scorer           *soil.Scorer
	samples          *soil.RequestValidator
	healthConfig     *HealthConfig
	limits           Limits
	logger           *zap.Logger
	healthStatusMu   sync.Mutex
	healthStatusPrev lifecycle.Status
}

// NewHandler returns a new Handler. healthConfig may be nil, in which case only
// the shutdown flag is consulted.
func NewHandler(
	resolver *service.WeatherResolver,
	scorer *soil.Scorer,
	samples *soil.RequestValidator,
	healthConfig *HealthConfig,
	limits Limits,
	logger *zap.Logger,
) *Handler {
	if limits.MaxBodyBytes <= 0 {
		limits.MaxBodyBytes = defaultMaxBodyBytes
	}
	if samples == nil {
		samples = soil.NewRequestValidator(soil.MissingAsZero)
	}
	return &Handler{
		resolver:     resolver,
		scorer:       scorer,
		samples:      samples,
		healthConfig: healthConfig,
		limits:       limits,
		logger:       logger,
	}
}

// GetWeather handles GET /weather/{location}?region=.
// Any valid location gets a 200; upstream trouble is absorbed by the resolver.
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	place, err := validation.ValidateLocation(mux.Vars(r)["location"], h.limits.LocationMinLength, h.limits.LocationMaxLength)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_LOCATION", err.Error())
		return
	}
	region, err := validation.ValidateRegion(r.URL.Query().Get("region"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_REGION", err.Error())
		return
	}

	report := h.resolver.Report(r.Context(), place, region)
	writeJSON(w, http.StatusOK, report)
}

var errTrailingData = errors.New("unexpected data after JSON object")

// decodeSingleJSON decodes exactly one JSON value from body.
func decodeSingleJSON(body io.Reader, v any) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	var extra json.RawMessage
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return err
	default:
		return errTrailingData
	}
}

// AnalyzeSoil handles POST /soil/analyze.
func (h *Handler) AnalyzeSoil(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.limits.MaxBodyBytes)

	var req soil.AnalyzeRequest
	if err := decodeSingleJSON(r.Body, &req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request body exceeds limit")
			return
		}
		writeError(w, r, http.StatusBadRequest, "INVALID_SOIL_SAMPLE", "request body must be a JSON soil sample")
		return
	}

	sample, err := h.samples.ToSample(req)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_SOIL_SAMPLE", err.Error())
		return
	}

	result := h.scorer.Score(sample)

	flags := make([]string, len(result.DeficiencyFlags))
	for i, f := range result.DeficiencyFlags {
		flags[i] = string(f)
	}
	observability.RecordSoilAnalysis(result.HealthScore, flags)
	observability.LoggerFromContext(r.Context()).Debug("soil sample scored",
		zap.Int("health_score", result.HealthScore),
		zap.Int("flag_count", len(flags)),
		zap.String("region", sample.Region))

	writeJSON(w, http.StatusOK, result)
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	verdict := h.computeHealthStatus()

	h.healthStatusMu.Lock()
	prev := h.healthStatusPrev
	if prev != "" && prev != verdict.Status {
		h.logger.Info("health status transition",
			zap.String("previous_status", string(prev)),
			zap.String("current_status", string(verdict.Status)),
			zap.String("reason", verdict.Reason))
	}
	h.healthStatusPrev = verdict.Status
	h.healthStatusMu.Unlock()

	version := "dev"
	if h.healthConfig != nil && h.healthConfig.Version != "" {
		version = h.healthConfig.Version
	}
	resp := map[string]interface{}{
		"status":    verdict.Status,
		"service":   serviceName,
		"version":   version,
		"checks":    map[string]string{"weatherApi": h.upstreamCheck(verdict)},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	writeJSON(w, verdict.StatusCode, resp)
}

// computeHealthStatus gathers lifecycle signals and lets lifecycle.Evaluate rank them.
func (h *Handler) computeHealthStatus() lifecycle.Verdict {
	signals := lifecycle.Signals{ShuttingDown: lifecycle.IsShuttingDown()}
	if hc := h.healthConfig; hc != nil {
		signals.Overloaded = overload.IsOverloaded(hc.RateLimitRPS, hc.OverloadWindow, hc.OverloadThresholdPct)
		signals.UpstreamDegraded = degraded.IsDegraded(hc.DegradedWindow, hc.DegradedErrorPct)
	}
	return lifecycle.Evaluate(signals)
}

// upstreamCheck reports the weather provider as disabled, healthy or unhealthy.
func (h *Handler) upstreamCheck(v lifecycle.Verdict) string {
	hc := h.healthConfig
	if hc == nil {
		return "unknown"
	}
	if !hc.UpstreamConfigured {
		return "disabled"
	}
	if hc.Breaker != nil && hc.Breaker.State() == circuitbreaker.StateOpen {
		return "unhealthy"
	}
	if v.Status == lifecycle.StatusDegraded {
		return "unhealthy"
	}
	return "healthy"
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard error format with code, message,
// and requestId (correlation ID) if available in request context.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": observability.CorrelationIDFromContext(r.Context()),
		},
	})
}
