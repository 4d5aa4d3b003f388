package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/kjstillabower/krishi-assist-service/internal/circuitbreaker"
	"github.com/kjstillabower/krishi-assist-service/internal/location"
	"github.com/kjstillabower/krishi-assist-service/internal/models"
	"github.com/kjstillabower/krishi-assist-service/internal/observability"
)

// WeatherClient fetches current conditions from a live provider.
type WeatherClient interface {
	CurrentWeather(ctx context.Context, loc location.Location) (models.WeatherReading, error)
}

var (
	ErrNoAPIKey              = errors.New("no API key configured")
	ErrInvalidAPIKey         = errors.New("invalid API key")
	ErrLocationNotFound      = errors.New("location not found")
	ErrUpstreamFailure       = errors.New("upstream failure")
	ErrRateLimited           = errors.New("rate limited")
	ErrUnexpectedContentType = errors.New("unexpected content type")
	ErrCircuitOpen           = errors.New("circuit breaker open")
)

// MaxTimeout caps the per-call budget so the fallback stays responsive.
const MaxTimeout = 10 * time.Second

// maxBodyBytes bounds how much of an upstream response is read.
const maxBodyBytes = 1 << 20

// msToKmh converts provider wind speed (m/s) to km/h.
const msToKmh = 3.6

// OpenWeatherClient calls the OpenWeatherMap current-weather endpoint once per
// request. There are no retries: a failed call is handed to the fallback.
type OpenWeatherClient struct {
	apiKey  string
	apiURL  string
	timeout time.Duration
	client  *http.Client
	breaker *circuitbreaker.CircuitBreaker
}

// NewOpenWeatherClient returns a client bounded by timeout. An empty apiKey
// returns ErrNoAPIKey so callers can run fallback-only.
func NewOpenWeatherClient(apiKey, apiURL string, timeout time.Duration) (*OpenWeatherClient, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if len(apiKey) < 10 {
		return nil, fmt.Errorf("%w: API key appears invalid (too short)", ErrInvalidAPIKey)
	}
	if timeout <= 0 || timeout > MaxTimeout {
		return nil, fmt.Errorf("timeout must be in (0, %s], got %s", MaxTimeout, timeout)
	}

	return &OpenWeatherClient{
		apiKey:  apiKey,
		apiURL:  apiURL,
		timeout: timeout,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// SetCircuitBreaker routes calls through cb. While open, calls fail fast with ErrCircuitOpen.
func (c *OpenWeatherClient) SetCircuitBreaker(cb *circuitbreaker.CircuitBreaker) {
	c.breaker = cb
}

// Timeout returns the per-call budget.
func (c *OpenWeatherClient) Timeout() time.Duration {
	return c.timeout
}

type openWeatherResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain *struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
	Name string `json:"name"`
}

// CurrentWeather makes a single bounded call for loc.
func (c *OpenWeatherClient) CurrentWeather(ctx context.Context, loc location.Location) (models.WeatherReading, error) {
	if c.breaker == nil {
		return c.callAPI(ctx, loc)
	}
	var reading models.WeatherReading
	err := c.breaker.Call(ctx, func() error {
		var callErr error
		reading, callErr = c.callAPI(ctx, loc)
		return callErr
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return models.WeatherReading{}, ErrCircuitOpen
	}
	return reading, err
}

func (c *OpenWeatherClient) callAPI(ctx context.Context, loc location.Location) (models.WeatherReading, error) {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.buildRequest(reqCtx, loc.Query())
	if err != nil {
		observability.WeatherAPICallsTotal.WithLabelValues("error").Inc()
		return models.WeatherReading{}, fmt.Errorf("build request: %w", err)
	}

	if corrID := observability.CorrelationIDFromContext(ctx); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		duration := time.Since(start).Seconds()
		observability.WeatherAPICallsTotal.WithLabelValues("error").Inc()
		observability.WeatherAPIDuration.WithLabelValues("error").Observe(duration)

		if errors.Is(err, context.Canceled) {
			return models.WeatherReading{}, fmt.Errorf("request canceled: %w", err)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return models.WeatherReading{}, fmt.Errorf("request timeout: %w", err)
		}
		return models.WeatherReading{}, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(start).Seconds()
	status := statusLabel(resp.StatusCode)
	observability.WeatherAPICallsTotal.WithLabelValues(status).Inc()
	observability.WeatherAPIDuration.WithLabelValues(status).Observe(duration)

	if err := c.handleErrorResponse(resp); err != nil {
		return models.WeatherReading{}, err
	}
	if err := checkContentType(resp.Header.Get("Content-Type")); err != nil {
		return models.WeatherReading{}, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return models.WeatherReading{}, fmt.Errorf("read response body: %w", err)
	}

	var apiResp openWeatherResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return models.WeatherReading{}, fmt.Errorf("parse response: %w", err)
	}

	return mapResponse(apiResp, loc), nil
}

func (c *OpenWeatherClient) buildRequest(ctx context.Context, query string) (*http.Request, error) {
	baseURL, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")
	baseURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *OpenWeatherClient) handleErrorResponse(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: HTTP 401", ErrInvalidAPIKey)
	case http.StatusNotFound:
		return fmt.Errorf("%w", ErrLocationNotFound)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w", ErrRateLimited)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: HTTP %d", ErrUpstreamFailure, resp.StatusCode)
	}

	return nil
}

func checkContentType(header string) error {
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil || mediaType != "application/json" {
		return fmt.Errorf("%w: %q", ErrUnexpectedContentType, header)
	}
	return nil
}

// mapResponse converts the provider payload: temperature rounded, wind m/s to
// km/h rounded, rainfall 0 when absent.
func mapResponse(apiResp openWeatherResponse, loc location.Location) models.WeatherReading {
	description := ""
	icon := ""
	if len(apiResp.Weather) > 0 {
		description = apiResp.Weather[0].Main
		if apiResp.Weather[0].Description != "" {
			description = apiResp.Weather[0].Description
		}
		icon = apiResp.Weather[0].Icon
	}

	city := apiResp.Name
	if city == "" {
		city = loc.City
	}
	country := apiResp.Sys.Country
	if country == "" {
		country = loc.Country
	}
	rainfall := 0.0
	if apiResp.Rain != nil {
		rainfall = apiResp.Rain.OneHour
	}

	return models.WeatherReading{
		TemperatureCelsius: int(math.Round(apiResp.Main.Temp)),
		HumidityPercent:    apiResp.Main.Humidity,
		Description:        description,
		WindSpeedKmh:       int(math.Round(apiResp.Wind.Speed * msToKmh)),
		RainfallMm:         rainfall,
		City:               city,
		Country:            country,
		IconCode:           icon,
		Source:             models.SourceUpstream,
	}
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == 429 {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
