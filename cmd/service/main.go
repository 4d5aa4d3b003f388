package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/krishi-assist-service/internal/circuitbreaker"
	"github.com/kjstillabower/krishi-assist-service/internal/client"
	"github.com/kjstillabower/krishi-assist-service/internal/config"
	httphandler "github.com/kjstillabower/krishi-assist-service/internal/http"
	"github.com/kjstillabower/krishi-assist-service/internal/lifecycle"
	"github.com/kjstillabower/krishi-assist-service/internal/observability"
	"github.com/kjstillabower/krishi-assist-service/internal/service"
	"github.com/kjstillabower/krishi-assist-service/internal/soil"
	"github.com/kjstillabower/krishi-assist-service/internal/synthetic"
)

const breakerComponent = "weather_api"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	// Left as a nil interface when no key is configured; the resolver then serves synthetic readings only.
	var weatherClient client.WeatherClient
	var breaker *circuitbreaker.CircuitBreaker
	owc, err := client.NewOpenWeatherClient(cfg.WeatherAPIKey, cfg.WeatherAPIURL, cfg.WeatherAPITimeout)
	switch {
	case errors.Is(err, client.ErrNoAPIKey):
		logger.Warn("no weather API key configured; serving synthetic weather only")
	case err != nil:
		logger.Fatal("weather client", zap.Error(err))
	default:
		if cfg.CircuitBreakerEnabled {
			breaker = circuitbreaker.New(circuitbreaker.Config{
				FailureThreshold: cfg.CircuitBreakerFailureThreshold,
				SuccessThreshold: cfg.CircuitBreakerSuccessThreshold,
				Timeout:          cfg.CircuitBreakerTimeout,
				Component:        breakerComponent,
				IsFailure:        client.IsBreakerFailure,
				OnStateChange: func(from, to circuitbreaker.State) {
					observability.RecordCircuitBreakerTransition(breakerComponent, from.String(), to.String())
					observability.SetCircuitBreakerStateGauge(breakerComponent, observability.CircuitBreakerStateValue(int(to)))
					logger.Info("circuit breaker transition", zap.String("from", from.String()), zap.String("to", to.String()))
				},
			})
			owc.SetCircuitBreaker(breaker)
			observability.SetCircuitBreakerStateGauge(breakerComponent, 0)
			logger.Info("circuit breaker enabled", zap.Int("failure_threshold", cfg.CircuitBreakerFailureThreshold), zap.Duration("timeout", cfg.CircuitBreakerTimeout))
		}
		weatherClient = owc
		logger.Info("weather provider configured", zap.String("url", cfg.WeatherAPIURL), zap.Duration("timeout", owc.Timeout()))
	}

	resolver := service.NewWeatherResolver(weatherClient, synthetic.NewGenerator(), cfg.WeatherDefaultCountry)
	samples := soil.NewRequestValidator(cfg.SoilMissingFields)
	logger.Info("soil analysis configured", zap.String("missing_fields", string(samples.Policy())))

	healthConfig := &httphandler.HealthConfig{
		OverloadWindow:       cfg.OverloadWindow,
		OverloadThresholdPct: cfg.OverloadThresholdPct,
		RateLimitRPS:         cfg.RateLimitRPS,
		DegradedWindow:       cfg.DegradedWindow,
		DegradedErrorPct:     cfg.DegradedErrorPct,
		UpstreamConfigured:   weatherClient != nil,
		Breaker:              breaker,
		Version:              version,
	}
	limits := httphandler.Limits{
		LocationMinLength: cfg.LocationMinLength,
		LocationMaxLength: cfg.LocationMaxLength,
		MaxBodyBytes:      cfg.RequestMaxBodyBytes,
	}

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}
	handler := httphandler.NewHandler(resolver, soil.NewScorer(), samples, healthConfig, limits, logger)

	observability.RegisterRateLimitGauges(cfg.OverloadWindow)
	if len(cfg.TrackedLocations) > 0 {
		observability.SetTrackedLocations(cfg.TrackedLocations)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      httphandler.NewRouter(handler, logger, limiter, cfg.RequestTimeout),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	lifecycle.SetShuttingDown(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	inFlight := httphandler.InFlightCount()
	logger.Info("waiting for in-flight requests", zap.Int64("count", inFlight))
	observability.RecordShutdownInFlight(inFlight)
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownInFlightTimeout)
	defer waitCancel()
	if err := httphandler.WaitForInFlight(waitCtx, cfg.ShutdownInFlightCheckInterval); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
	}

	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
