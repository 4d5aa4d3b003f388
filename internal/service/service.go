package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/krishi-assist-service/internal/advisory"
	"github.com/kjstillabower/krishi-assist-service/internal/client"
	"github.com/kjstillabower/krishi-assist-service/internal/degraded"
	"github.com/kjstillabower/krishi-assist-service/internal/location"
	"github.com/kjstillabower/krishi-assist-service/internal/models"
	"github.com/kjstillabower/krishi-assist-service/internal/observability"
	"github.com/kjstillabower/krishi-assist-service/internal/synthetic"
)

// WeatherResolver produces a reading for any location: the upstream provider when
// configured and healthy, otherwise the synthetic generator. It never fails.
type WeatherResolver struct {
	client         client.WeatherClient // nil when no API key is configured
	generator      *synthetic.Generator
	defaultCountry string
	now            func() time.Time
}

// Option configures a WeatherResolver.
type Option func(*WeatherResolver)

// WithClock sets the time source used for season lookups in reports.
func WithClock(now func() time.Time) Option {
	return func(s *WeatherResolver) {
		if now != nil {
			s.now = now
		}
	}
}

// NewWeatherResolver returns a resolver. weatherClient may be nil for fallback-only
// operation; generator defaults to a time-seeded one when nil.
func NewWeatherResolver(weatherClient client.WeatherClient, generator *synthetic.Generator, defaultCountry string, opts ...Option) *WeatherResolver {
	if generator == nil {
		generator = synthetic.NewGenerator()
	}
	s := &WeatherResolver{
		client:         weatherClient,
		generator:      generator,
		defaultCountry: defaultCountry,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// upstreamResult is the outcome of the single upstream attempt. ok is false for
// every failure, including never attempting the call.
type upstreamResult struct {
	reading   models.WeatherReading
	ok        bool
	attempted bool
	reason    client.ErrorCategory
	err       error
}

func (s *WeatherResolver) fetchUpstream(ctx context.Context, loc location.Location) upstreamResult {
	if s.client == nil {
		return upstreamResult{reason: client.ErrorCategoryNoAPIKey}
	}
	reading, err := s.client.CurrentWeather(ctx, loc)
	if err != nil {
		reason := client.CategorizeError(err)
		// A caller that gave up says nothing about provider health.
		return upstreamResult{
			attempted: reason != client.ErrorCategoryCircuitOpen && ctx.Err() == nil,
			reason:    reason,
			err:       err,
		}
	}
	return upstreamResult{reading: reading, ok: true, attempted: true}
}

// Resolve returns the current reading for place. Upstream failures are logged
// and replaced by a synthetic reading; no error is ever returned.
func (s *WeatherResolver) Resolve(ctx context.Context, place string) models.WeatherReading {
	loc := location.Normalize(place, s.defaultCountry)
	logger := observability.LoggerFromContext(ctx)
	observability.RecordWeatherQuery(loc.Key)

	res := s.fetchUpstream(ctx, loc)
	if res.attempted {
		if res.ok {
			degraded.RecordUpstreamSuccess()
		} else {
			degraded.RecordUpstreamFailure()
		}
	}
	if res.ok {
		observability.RecordWeatherResolution(string(models.SourceUpstream), "")
		logger.Debug("weather served", zap.String("location", loc.Query()), zap.String("source", string(models.SourceUpstream)))
		return res.reading
	}

	if res.err != nil {
		logger.Warn("upstream weather unavailable, using synthetic fallback",
			zap.String("location", loc.Query()),
			zap.String("reason", string(res.reason)),
			zap.Error(res.err))
	} else {
		logger.Debug("no upstream configured, using synthetic fallback", zap.String("location", loc.Query()))
	}
	observability.RecordWeatherResolution(string(models.SourceSynthetic), string(res.reason))
	return s.generator.Generate(loc)
}

// Report resolves place and attaches insights and crop recommendations for region.
func (s *WeatherResolver) Report(ctx context.Context, place, region string) models.WeatherReport {
	reading := s.Resolve(ctx, place)
	month := s.now().Month()
	return models.WeatherReport{
		Weather:             reading,
		Insights:            advisory.Insights(reading, region, month),
		CropRecommendations: advisory.CropRecommendations(reading, region, month),
	}
}
