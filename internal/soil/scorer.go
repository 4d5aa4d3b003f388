package soil

import (
	"github.com/kjstillabower/krishi-assist-service/internal/models"
)

const (
	maxHealthScore = 100
	criticalScore  = 50
)

// Thresholds below which (or above, for pH) a deficiency flag is raised.
const (
	phLowThreshold            = 6.0
	phHighThreshold           = 8.0
	nitrogenLowThreshold      = 150
	phosphorusLowThreshold    = 15
	potassiumLowThreshold     = 120
	organicMatterLowThreshold = 2.0
)

// Scorer computes SoilHealthResult values. The zero value is ready to use.
type Scorer struct{}

// NewScorer returns a Scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score computes the health score and deficiency flags for sample. It never fails.
func (s *Scorer) Score(sample models.SoilSample) models.SoilHealthResult {
	score := HealthScore(sample)
	flags := DeficiencyFlags(sample, score)
	return models.SoilHealthResult{
		HealthScore:     score,
		DeficiencyFlags: flags,
		Recommendations: Recommendations(flags),
		Region:          sample.Region,
	}
}

// HealthScore sums the per-criterion points and caps the total at 100. A value on a
// band boundary belongs to the better band; NaN scores in the worst band.
func HealthScore(sample models.SoilSample) int {
	total := phPoints(sample.PH) +
		nitrogenPoints(sample.Nitrogen) +
		phosphorusPoints(sample.Phosphorus) +
		potassiumPoints(sample.Potassium) +
		organicMatterPoints(sample.OrganicMatterPercent)
	if total > maxHealthScore {
		total = maxHealthScore
	}
	if total < 0 {
		total = 0
	}
	return total
}

func phPoints(ph float64) int {
	switch {
	case ph >= 6.0 && ph <= 7.5:
		return 20
	case ph >= 5.5 && ph <= 8.0:
		return 15
	default:
		return 5
	}
}

// Band 2 for the nutrients has no upper bound.
func nitrogenPoints(n float64) int {
	switch {
	case n >= 150 && n <= 300:
		return 20
	case n >= 100:
		return 10
	default:
		return 0
	}
}

func phosphorusPoints(p float64) int {
	switch {
	case p >= 15 && p <= 40:
		return 20
	case p >= 10:
		return 10
	default:
		return 0
	}
}

func potassiumPoints(k float64) int {
	switch {
	case k >= 120 && k <= 250:
		return 20
	case k >= 80:
		return 10
	default:
		return 0
	}
}

func organicMatterPoints(om float64) int {
	switch {
	case om >= 2.5:
		return 20
	case om >= 1.5:
		return 15
	default:
		return 5
	}
}

// DeficiencyFlags re-checks each measured value against its improvement threshold.
// Order is fixed: pH, nitrogen, phosphorus, potassium, organic matter, critical.
func DeficiencyFlags(sample models.SoilSample, score int) []models.DeficiencyFlag {
	flags := make([]models.DeficiencyFlag, 0, 6)
	if sample.PH < phLowThreshold {
		flags = append(flags, models.FlagPHLow)
	}
	if sample.PH > phHighThreshold {
		flags = append(flags, models.FlagPHHigh)
	}
	if sample.Nitrogen < nitrogenLowThreshold {
		flags = append(flags, models.FlagNitrogenLow)
	}
	if sample.Phosphorus < phosphorusLowThreshold {
		flags = append(flags, models.FlagPhosphorusLow)
	}
	if sample.Potassium < potassiumLowThreshold {
		flags = append(flags, models.FlagPotassiumLow)
	}
	if sample.OrganicMatterPercent < organicMatterLowThreshold {
		flags = append(flags, models.FlagOrganicMatterLow)
	}
	if score < criticalScore {
		flags = append(flags, models.FlagCriticalCondition)
	}
	return flags
}
