package service

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kjstillabower/krishi-assist-service/internal/advisory"
	"github.com/kjstillabower/krishi-assist-service/internal/circuitbreaker"
	"github.com/kjstillabower/krishi-assist-service/internal/client"
	"github.com/kjstillabower/krishi-assist-service/internal/degraded"
	"github.com/kjstillabower/krishi-assist-service/internal/location"
	"github.com/kjstillabower/krishi-assist-service/internal/models"
	"github.com/kjstillabower/krishi-assist-service/internal/observability"
	"github.com/kjstillabower/krishi-assist-service/internal/synthetic"
)

type mockWeatherClient struct {
	reading models.WeatherReading
	err     error
	calls   int
	lastLoc location.Location
}

func (m *mockWeatherClient) CurrentWeather(ctx context.Context, loc location.Location) (models.WeatherReading, error) {
	m.calls++
	m.lastLoc = loc
	return m.reading, m.err
}

func seededGenerator(seed int64) *synthetic.Generator {
	return synthetic.NewGenerator(
		synthetic.WithRand(rand.New(rand.NewSource(seed))),
		synthetic.WithClock(func() time.Time { return time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC) }),
	)
}

func observedContext(level zapcore.Level) (context.Context, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return observability.ContextWithLogger(context.Background(), zap.New(core)), logs
}

// TestResolve_NoCredential_Fallback verifies that without an upstream client the
// resolver serves a synthetic reading around the city's base temperature.
func TestResolve_NoCredential_Fallback(t *testing.T) {
	degraded.Reset()
	s := NewWeatherResolver(nil, seededGenerator(1), "IN")

	for i := 0; i < 50; i++ {
		got := s.Resolve(context.Background(), "mumbai")
		if got.Source != models.SourceSynthetic {
			t.Fatalf("Source = %q, want %q", got.Source, models.SourceSynthetic)
		}
		if got.TemperatureCelsius < 27 || got.TemperatureCelsius > 31 {
			t.Errorf("TemperatureCelsius = %d, want in [27,31]", got.TemperatureCelsius)
		}
		if got.City != "Mumbai" || got.Country != "IN" {
			t.Errorf("City/Country = %q/%q, want Mumbai/IN", got.City, got.Country)
		}
	}
	if _, attempts := degraded.FailureRate(time.Minute); attempts != 0 {
		t.Errorf("upstream attempts recorded = %d, want 0 without credential", attempts)
	}
}

// TestResolve_RepeatedCalls_StableIdentity verifies that repeated fallback readings
// differ only in the randomized fields.
func TestResolve_RepeatedCalls_StableIdentity(t *testing.T) {
	s := NewWeatherResolver(nil, nil, "IN")
	a := s.Resolve(context.Background(), "  Pune ")
	b := s.Resolve(context.Background(), "pune")

	if a.City != b.City || a.Country != b.Country || a.Source != b.Source {
		t.Errorf("identity differs: %+v vs %+v", a, b)
	}
}

func TestResolve_UpstreamSuccess(t *testing.T) {
	degraded.Reset()
	upstream := models.WeatherReading{
		TemperatureCelsius: 33,
		HumidityPercent:    60,
		Description:        "clear sky",
		WindSpeedKmh:       12,
		City:               "Delhi",
		Country:            "IN",
		IconCode:           "01d",
		Source:             models.SourceUpstream,
	}
	mock := &mockWeatherClient{reading: upstream}
	s := NewWeatherResolver(mock, seededGenerator(1), "IN")

	got := s.Resolve(context.Background(), "New Delhi")
	if got != upstream {
		t.Errorf("Resolve() = %+v, want %+v", got, upstream)
	}
	if mock.calls != 1 {
		t.Errorf("upstream calls = %d, want 1", mock.calls)
	}
	if mock.lastLoc.Query() != "Delhi,IN" {
		t.Errorf("upstream query = %q, want %q", mock.lastLoc.Query(), "Delhi,IN")
	}
	if failures, attempts := degraded.FailureRate(time.Minute); failures != 0 || attempts != 1 {
		t.Errorf("FailureRate() = (%d, %d), want (0, 1)", failures, attempts)
	}
}

func TestResolve_UpstreamError_FallsBackAndLogs(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantReason string
		attempted  bool
	}{
		{"server error", fmt.Errorf("%w: HTTP 502", client.ErrUpstreamFailure), "upstream_status", true},
		{"timeout", fmt.Errorf("request timeout: %w", context.DeadlineExceeded), "timeout", true},
		{"wrong content type", client.ErrUnexpectedContentType, "content_type", true},
		{"circuit open", client.ErrCircuitOpen, "circuit_open", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			degraded.Reset()
			mock := &mockWeatherClient{err: tt.err}
			s := NewWeatherResolver(mock, seededGenerator(3), "IN")
			ctx, logs := observedContext(zap.WarnLevel)

			got := s.Resolve(ctx, "chennai")
			if got.Source != models.SourceSynthetic {
				t.Errorf("Source = %q, want %q", got.Source, models.SourceSynthetic)
			}
			if got.City != "Chennai" {
				t.Errorf("City = %q, want Chennai", got.City)
			}

			entries := logs.FilterMessage("upstream weather unavailable, using synthetic fallback").All()
			if len(entries) != 1 {
				t.Fatalf("fallback warn logs = %d, want 1", len(entries))
			}
			if reason := entries[0].ContextMap()["reason"]; reason != tt.wantReason {
				t.Errorf("reason = %v, want %q", reason, tt.wantReason)
			}

			_, attempts := degraded.FailureRate(time.Minute)
			if tt.attempted && attempts != 1 {
				t.Errorf("attempts = %d, want 1", attempts)
			}
			if !tt.attempted && attempts != 0 {
				t.Errorf("attempts = %d, want 0", attempts)
			}
		})
	}
}

// TestResolve_UpstreamTimeout_Bounded verifies that a hanging provider cannot
// delay the response beyond the client timeout.
func TestResolve_UpstreamTimeout_Bounded(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	const timeout = 100 * time.Millisecond
	c, err := client.NewOpenWeatherClient("test-api-key-12345", server.URL, timeout)
	if err != nil {
		t.Fatalf("NewOpenWeatherClient() error = %v", err)
	}
	s := NewWeatherResolver(c, seededGenerator(5), "IN")

	start := time.Now()
	got := s.Resolve(context.Background(), "mumbai")
	elapsed := time.Since(start)

	if got.Source != models.SourceSynthetic {
		t.Errorf("Source = %q, want %q", got.Source, models.SourceSynthetic)
	}
	if elapsed > timeout+500*time.Millisecond {
		t.Errorf("Resolve() took %v, want <= timeout + epsilon", elapsed)
	}
}

// TestResolve_CallerCanceled_NotCountedAgainstProvider verifies that callers
// hanging up on a slow but healthy provider neither open the breaker nor count
// as upstream failures.
func TestResolve_CallerCanceled_NotCountedAgainstProvider(t *testing.T) {
	degraded.Reset()
	defer degraded.Reset()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	c, err := client.NewOpenWeatherClient("test-api-key-12345", server.URL, 2*time.Second)
	if err != nil {
		t.Fatalf("NewOpenWeatherClient() error = %v", err)
	}
	cb := circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: 2,
		Timeout:          time.Minute,
		IsFailure:        client.IsBreakerFailure,
	})
	c.SetCircuitBreaker(cb)
	s := NewWeatherResolver(c, seededGenerator(9), "IN")

	for i := 0; i < 3; i++ {
		core, logs := observer.New(zap.WarnLevel)
		ctx, cancel := context.WithCancel(observability.ContextWithLogger(context.Background(), zap.New(core)))
		time.AfterFunc(20*time.Millisecond, cancel)

		got := s.Resolve(ctx, "nashik")
		cancel()
		if got.Source != models.SourceSynthetic {
			t.Errorf("call %d: Source = %q, want %q", i, got.Source, models.SourceSynthetic)
		}
		entries := logs.FilterMessage("upstream weather unavailable, using synthetic fallback").All()
		if len(entries) != 1 || entries[0].ContextMap()["reason"] != string(client.ErrorCategoryCanceled) {
			t.Errorf("call %d: fallback logs = %v, want one with reason canceled", i, entries)
		}
	}

	if cb.State() != circuitbreaker.StateClosed {
		t.Errorf("breaker state = %v, want closed", cb.State())
	}
	if failures, attempts := degraded.FailureRate(time.Minute); failures != 0 || attempts != 0 {
		t.Errorf("failures/attempts = %d/%d, want 0/0", failures, attempts)
	}
}

func TestResolve_FixedSeedDeterministic(t *testing.T) {
	a := NewWeatherResolver(nil, seededGenerator(11), "IN").Resolve(context.Background(), "jaipur")
	b := NewWeatherResolver(nil, seededGenerator(11), "IN").Resolve(context.Background(), "jaipur")
	if a != b {
		t.Errorf("same seed produced %+v and %+v", a, b)
	}
}

func TestReport_AttachesAdvisories(t *testing.T) {
	upstream := models.WeatherReading{
		TemperatureCelsius: 38,
		HumidityPercent:    50,
		WindSpeedKmh:       10,
		City:               "Jaipur",
		Country:            "IN",
		Source:             models.SourceUpstream,
	}
	clock := func() time.Time { return time.Date(2026, time.May, 10, 0, 0, 0, 0, time.UTC) }
	s := NewWeatherResolver(&mockWeatherClient{reading: upstream}, nil, "IN", WithClock(clock))

	got := s.Report(context.Background(), "jaipur", "rajasthan")
	if got.Weather != upstream {
		t.Errorf("Weather = %+v, want %+v", got.Weather, upstream)
	}
	wantInsights := advisory.Insights(upstream, "rajasthan", time.May)
	if len(got.Insights) != len(wantInsights) || got.Insights[0] != advisory.Insight(advisory.CategoryHeat) {
		t.Errorf("Insights = %+v, want %+v", got.Insights, wantInsights)
	}
	wantCrops := advisory.CropRecommendations(upstream, "rajasthan", time.May)
	if len(got.CropRecommendations) != len(wantCrops) {
		t.Errorf("CropRecommendations = %+v, want %+v", got.CropRecommendations, wantCrops)
	}
}

func TestResolve_NoCredential_NoWarnLog(t *testing.T) {
	ctx, logs := observedContext(zap.WarnLevel)
	NewWeatherResolver(nil, nil, "IN").Resolve(ctx, "kolkata")
	if logs.Len() != 0 {
		t.Errorf("warn logs = %d, want 0 for fallback-only mode", logs.Len())
	}
}
