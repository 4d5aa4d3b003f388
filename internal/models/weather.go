package models

// Source identifies where a WeatherReading came from.
type Source string

const (
	SourceUpstream  Source = "UpstreamProvider"
	SourceSynthetic Source = "SyntheticFallback"
)

// WeatherReading is a normalized current-weather observation. Built fresh per request.
type WeatherReading struct {
	TemperatureCelsius int     `json:"temperatureCelsius"`
	HumidityPercent    int     `json:"humidityPercent"`
	Description        string  `json:"description"`
	WindSpeedKmh       int     `json:"windSpeedKmh"`
	RainfallMm         float64 `json:"rainfallMm"`
	City               string  `json:"city"`
	Country            string  `json:"country"`
	IconCode           string  `json:"iconCode"`
	Source             Source  `json:"source"`
}

// Advisory is a piece of guidance in English and Hindi.
type Advisory struct {
	EN string `json:"en"`
	HI string `json:"hi"`
}

// WeatherReport is a reading together with the advisories derived from it.
type WeatherReport struct {
	Weather             WeatherReading `json:"weather"`
	Insights            []Advisory     `json:"insights"`
	CropRecommendations []Advisory     `json:"cropRecommendations"`
}
