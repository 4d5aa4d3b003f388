package soil

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kjstillabower/krishi-assist-service/internal/models"
)

// MissingFieldPolicy controls how absent numeric fields in a request are handled.
type MissingFieldPolicy string

const (
	// MissingAsZero scores absent fields as 0.
	MissingAsZero MissingFieldPolicy = "zero"
	// MissingReject rejects requests missing any scored field.
	MissingReject MissingFieldPolicy = "reject"
)

const maxRegionLength = 100

// ErrInvalidSample is returned when a request cannot be turned into a SoilSample.
var ErrInvalidSample = errors.New("invalid soil sample")

// ParsePolicy returns the policy named by s, or an error for unknown values.
func ParsePolicy(s string) (MissingFieldPolicy, error) {
	switch MissingFieldPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", MissingAsZero:
		return MissingAsZero, nil
	case MissingReject:
		return MissingReject, nil
	}
	return "", fmt.Errorf("soil.missing_fields must be zero or reject, got %q", s)
}

// AnalyzeRequest is the wire form of a soil sample. Pointer fields distinguish
// absent values from explicit zeros.
type AnalyzeRequest struct {
	PH                   *float64 `json:"pH" validate:"required"`
	Nitrogen             *float64 `json:"nitrogen" validate:"required"`
	Phosphorus           *float64 `json:"phosphorus" validate:"required"`
	Potassium            *float64 `json:"potassium" validate:"required"`
	OrganicMatterPercent *float64 `json:"organicMatterPercent" validate:"required"`
	MoisturePercent      *float64 `json:"moisturePercent"`
	TemperatureCelsius   *float64 `json:"temperatureCelsius"`
	Region               string   `json:"region"`
}

// RequestValidator converts AnalyzeRequest values into SoilSample values under a policy.
type RequestValidator struct {
	policy   MissingFieldPolicy
	validate *validator.Validate
}

// NewRequestValidator returns a validator for policy. Unknown policies behave as MissingAsZero.
func NewRequestValidator(policy MissingFieldPolicy) *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if policy != MissingReject {
		policy = MissingAsZero
	}
	return &RequestValidator{policy: policy, validate: v}
}

// Policy returns the configured policy.
func (rv *RequestValidator) Policy() MissingFieldPolicy {
	return rv.policy
}

// ToSample validates req and returns the sample to score.
func (rv *RequestValidator) ToSample(req AnalyzeRequest) (models.SoilSample, error) {
	if err := rv.validate.Var(req.Region, fmt.Sprintf("max=%d", maxRegionLength)); err != nil {
		return models.SoilSample{}, fmt.Errorf("%w: region longer than %d characters", ErrInvalidSample, maxRegionLength)
	}
	if rv.policy == MissingReject {
		if err := rv.validate.Struct(req); err != nil {
			return models.SoilSample{}, fmt.Errorf("%w: %s", ErrInvalidSample, describe(err))
		}
	}
	return models.SoilSample{
		PH:                   deref(req.PH),
		Nitrogen:             deref(req.Nitrogen),
		Phosphorus:           deref(req.Phosphorus),
		Potassium:            deref(req.Potassium),
		OrganicMatterPercent: deref(req.OrganicMatterPercent),
		MoisturePercent:      deref(req.MoisturePercent),
		TemperatureCelsius:   deref(req.TemperatureCelsius),
		Region:               strings.TrimSpace(req.Region),
	}, nil
}

// describe lists missing fields from validator errors in declaration order.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, fe.Field())
	}
	return "missing " + strings.Join(missing, ", ")
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
