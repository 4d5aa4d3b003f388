package models

// SoilSample holds measured soil chemistry. Region is informational and never scored.
type SoilSample struct {
	PH                   float64 `json:"pH"`
	Nitrogen             float64 `json:"nitrogen"`
	Phosphorus           float64 `json:"phosphorus"`
	Potassium            float64 `json:"potassium"`
	OrganicMatterPercent float64 `json:"organicMatterPercent"`
	MoisturePercent      float64 `json:"moisturePercent"`
	TemperatureCelsius   float64 `json:"temperatureCelsius"`
	Region               string  `json:"region"`
}

// DeficiencyFlag identifies a triggered soil advisory.
type DeficiencyFlag string

const (
	FlagPHLow             DeficiencyFlag = "ph_low"
	FlagPHHigh            DeficiencyFlag = "ph_high"
	FlagNitrogenLow       DeficiencyFlag = "nitrogen_low"
	FlagPhosphorusLow     DeficiencyFlag = "phosphorus_low"
	FlagPotassiumLow      DeficiencyFlag = "potassium_low"
	FlagOrganicMatterLow  DeficiencyFlag = "organic_matter_low"
	FlagCriticalCondition DeficiencyFlag = "critical_condition"
)

// SoilHealthResult is derived entirely from a SoilSample.
// Recommendations align index-for-index with DeficiencyFlags.
type SoilHealthResult struct {
	HealthScore     int              `json:"healthScore"`
	DeficiencyFlags []DeficiencyFlag `json:"deficiencyFlags"`
	Recommendations []Advisory       `json:"recommendations"`
	Region          string           `json:"region,omitempty"`
}
