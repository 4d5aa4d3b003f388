package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/krishi-assist-service/internal/client"
	"github.com/kjstillabower/krishi-assist-service/internal/models"
	"github.com/kjstillabower/krishi-assist-service/internal/soil"
)

func benchmarkRouter(weatherClient client.WeatherClient, limiter *rate.Limiter) http.Handler {
	h := newTestHandler(weatherClient, soil.MissingAsZero, &HealthConfig{
		OverloadWindow:       60 * time.Second,
		OverloadThresholdPct: 80,
		RateLimitRPS:         100,
		DegradedWindow:       60 * time.Second,
		DegradedErrorPct:     50,
		UpstreamConfigured:   weatherClient != nil,
	})
	return NewRouter(h, zap.NewNop(), limiter, 5*time.Second)
}

func runBenchmark(b *testing.B, router http.Handler, method, path, body string) {
	b.Helper()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var req *http.Request
		if body != "" {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
		} else {
			req = httptest.NewRequest(method, path, nil)
		}
		router.ServeHTTP(httptest.NewRecorder(), req)
	}
}

// BenchmarkHandler_GetWeather_Upstream benchmarks the upstream path with advisories.
func BenchmarkHandler_GetWeather_Upstream(b *testing.B) {
	mock := &mockWeatherClient{reading: models.WeatherReading{
		TemperatureCelsius: 31, HumidityPercent: 70, Description: "haze",
		City: "Mumbai", Country: "IN", Source: models.SourceUpstream,
	}}
	runBenchmark(b, benchmarkRouter(mock, nil), http.MethodGet, "/weather/mumbai?region=Maharashtra", "")
}

// BenchmarkHandler_GetWeather_Synthetic benchmarks the no-credential fallback path.
func BenchmarkHandler_GetWeather_Synthetic(b *testing.B) {
	runBenchmark(b, benchmarkRouter(nil, nil), http.MethodGet, "/weather/mumbai", "")
}

// BenchmarkHandler_GetWeather_UpstreamError benchmarks categorizing an error and falling back.
func BenchmarkHandler_GetWeather_UpstreamError(b *testing.B) {
	mock := &mockWeatherClient{err: client.ErrUpstreamFailure}
	runBenchmark(b, benchmarkRouter(mock, nil), http.MethodGet, "/weather/mumbai", "")
}

// BenchmarkHandler_GetWeather_ValidationError benchmarks rejecting a bad location.
func BenchmarkHandler_GetWeather_ValidationError(b *testing.B) {
	runBenchmark(b, benchmarkRouter(nil, nil), http.MethodGet, "/weather/%3Cscript%3E", "")
}

// BenchmarkHandler_GetWeather_RateLimited benchmarks rate limiting overhead.
func BenchmarkHandler_GetWeather_RateLimited(b *testing.B) {
	runBenchmark(b, benchmarkRouter(nil, rate.NewLimiter(rate.Limit(100), 250)), http.MethodGet, "/weather/mumbai", "")
}

// BenchmarkHandler_AnalyzeSoil benchmarks decoding, scoring and encoding a soil sample.
func BenchmarkHandler_AnalyzeSoil(b *testing.B) {
	body := `{"pH":5.4,"nitrogen":120,"phosphorus":12,"potassium":90,"organicMatterPercent":1.2,"region":"Punjab"}`
	runBenchmark(b, benchmarkRouter(nil, nil), http.MethodPost, "/soil/analyze", body)
}

// BenchmarkHandler_GetHealth benchmarks health check endpoint.
func BenchmarkHandler_GetHealth(b *testing.B) {
	runBenchmark(b, benchmarkRouter(nil, nil), http.MethodGet, "/health", "")
}
