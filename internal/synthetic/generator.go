package synthetic

import (
	"math/rand"
	"sync"
	"time"

	"github.com/kjstillabower/krishi-assist-service/internal/calendar"
	"github.com/kjstillabower/krishi-assist-service/internal/location"
	"github.com/kjstillabower/krishi-assist-service/internal/models"
)

// DefaultBaseTemperature is used for cities missing from the base table.
const DefaultBaseTemperature = 27

// Variation ranges, inclusive.
const (
	tempJitter   = 2
	humidityMin  = 65
	humidityMax  = 80
	windMin      = 8
	windMax      = 15
	dryChance    = 0.75
	maxRainfallN = 3 // rainfall drawn from [0, maxRainfallN)
)

var baseTemperatures = map[string]int{
	"mumbai":     29,
	"delhi":      25,
	"bangalore":  24,
	"chennai":    30,
	"kolkata":    28,
	"hyderabad":  28,
	"pune":       26,
	"ahmedabad":  30,
	"jaipur":     27,
	"lucknow":    26,
	"nagpur":     29,
	"indore":     26,
	"bhopal":     26,
	"patna":      27,
	"chandigarh": 24,
	"ludhiana":   24,
	"amritsar":   23,
	"nashik":     26,
	"coimbatore": 27,
}

var seasonDescriptions = map[calendar.Season][]string{
	calendar.Winter:      {"clear sky", "mist", "haze", "few clouds"},
	calendar.Summer:      {"clear sky", "haze", "scattered clouds", "dust"},
	calendar.Monsoon:     {"light rain", "moderate rain", "overcast clouds", "thunderstorm"},
	calendar.PostMonsoon: {"few clouds", "scattered clouds", "clear sky", "haze"},
}

// Icon codes follow the provider's day icon set.
var descriptionIcons = map[string]string{
	"clear sky":        "01d",
	"few clouds":       "02d",
	"scattered clouds": "03d",
	"overcast clouds":  "04d",
	"light rain":       "10d",
	"moderate rain":    "10d",
	"thunderstorm":     "11d",
	"mist":             "50d",
	"haze":             "50d",
	"dust":             "50d",
}

// BaseTemperature returns the table temperature for a location key.
func BaseTemperature(key string) int {
	if t, ok := baseTemperatures[key]; ok {
		return t
	}
	return DefaultBaseTemperature
}

// Descriptions returns the condition strings used for season.
func Descriptions(season calendar.Season) []string {
	return seasonDescriptions[season]
}

// Option configures a Generator.
type Option func(*Generator)

// WithRand sets the random source. Tests pass a fixed seed.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) {
		if r != nil {
			g.rng = r
		}
	}
}

// WithClock sets the time source used to pick the season.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// Generator builds SyntheticFallback readings. Safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator returns a Generator seeded from the current time unless overridden.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a reading for loc. Draw order is fixed so a seeded source is reproducible.
func (g *Generator) Generate(loc location.Location) models.WeatherReading {
	descriptions := Descriptions(calendar.SeasonFor(g.now().Month()))

	g.mu.Lock()
	temp := BaseTemperature(loc.Key) + g.rng.Intn(2*tempJitter+1) - tempJitter
	humidity := humidityMin + g.rng.Intn(humidityMax-humidityMin+1)
	wind := windMin + g.rng.Intn(windMax-windMin+1)
	rainfall := 0.0
	if g.rng.Float64() >= dryChance {
		rainfall = float64(g.rng.Intn(maxRainfallN))
	}
	description := descriptions[g.rng.Intn(len(descriptions))]
	g.mu.Unlock()

	return models.WeatherReading{
		TemperatureCelsius: temp,
		HumidityPercent:    humidity,
		Description:        description,
		WindSpeedKmh:       wind,
		RainfallMm:         rainfall,
		City:               loc.City,
		Country:            loc.Country,
		IconCode:           descriptionIcons[description],
		Source:             models.SourceSynthetic,
	}
}
