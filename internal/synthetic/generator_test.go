package synthetic

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjstillabower/krishi-assist-service/internal/calendar"
	"github.com/kjstillabower/krishi-assist-service/internal/location"
	"github.com/kjstillabower/krishi-assist-service/internal/models"
)

func fixedClock(month time.Month) func() time.Time {
	return func() time.Time { return time.Date(2026, month, 15, 12, 0, 0, 0, time.UTC) }
}

func TestGenerate_Bounds(t *testing.T) {
	g := NewGenerator(WithRand(rand.New(rand.NewSource(7))), WithClock(fixedClock(time.July)))
	loc := location.Normalize("mumbai", "")

	for i := 0; i < 500; i++ {
		r := g.Generate(loc)
		assert.GreaterOrEqual(t, r.TemperatureCelsius, 27)
		assert.LessOrEqual(t, r.TemperatureCelsius, 31)
		assert.GreaterOrEqual(t, r.HumidityPercent, 65)
		assert.LessOrEqual(t, r.HumidityPercent, 80)
		assert.GreaterOrEqual(t, r.WindSpeedKmh, 8)
		assert.LessOrEqual(t, r.WindSpeedKmh, 15)
		assert.Contains(t, []float64{0, 1, 2}, r.RainfallMm)
		assert.Contains(t, Descriptions(calendar.Monsoon), r.Description)
		assert.NotEmpty(t, r.IconCode)
		assert.Equal(t, "Mumbai", r.City)
		assert.Equal(t, "IN", r.Country)
		assert.Equal(t, models.SourceSynthetic, r.Source)
	}
}

func TestGenerate_FixedSeedIsReproducible(t *testing.T) {
	loc := location.Normalize("pune", "")
	a := NewGenerator(WithRand(rand.New(rand.NewSource(42))), WithClock(fixedClock(time.January)))
	b := NewGenerator(WithRand(rand.New(rand.NewSource(42))), WithClock(fixedClock(time.January)))

	for i := 0; i < 20; i++ {
		require.Equal(t, a.Generate(loc), b.Generate(loc))
	}
}

func TestGenerate_UnknownCityUsesDefaultBase(t *testing.T) {
	g := NewGenerator(WithRand(rand.New(rand.NewSource(1))), WithClock(fixedClock(time.April)))
	loc := location.Normalize("timbuktu", "ML")

	for i := 0; i < 100; i++ {
		r := g.Generate(loc)
		assert.GreaterOrEqual(t, r.TemperatureCelsius, DefaultBaseTemperature-2)
		assert.LessOrEqual(t, r.TemperatureCelsius, DefaultBaseTemperature+2)
		assert.Contains(t, Descriptions(calendar.Summer), r.Description)
		assert.Equal(t, "ML", r.Country)
	}
}

func TestGenerate_RainfallMostlyDry(t *testing.T) {
	g := NewGenerator(WithRand(rand.New(rand.NewSource(99))), WithClock(fixedClock(time.August)))
	loc := location.Normalize("delhi", "")

	dry := 0
	const n = 4000
	for i := 0; i < n; i++ {
		if g.Generate(loc).RainfallMm == 0 {
			dry++
		}
	}
	// P(rainfall == 0) = 0.75 + 0.25/3
	assert.InDelta(t, 0.8333, float64(dry)/n, 0.04)
}

func TestBaseTemperature(t *testing.T) {
	assert.Equal(t, 29, BaseTemperature("mumbai"))
	assert.Equal(t, DefaultBaseTemperature, BaseTemperature("nowhere"))
}

func TestDescriptionIcons_CoverEverySeason(t *testing.T) {
	for _, s := range []calendar.Season{calendar.Winter, calendar.Summer, calendar.Monsoon, calendar.PostMonsoon} {
		for _, d := range Descriptions(s) {
			_, ok := descriptionIcons[d]
			assert.True(t, ok, "no icon for %q", d)
		}
	}
}
