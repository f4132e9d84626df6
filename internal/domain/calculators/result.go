package calculators

import "fmt"

// RiskLevel is the closed set of risk buckets a calculator can return.
// The values are the Spanish labels the clinical UI renders directly.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Bajo"
	RiskModerate RiskLevel = "Moderado"
	RiskHigh     RiskLevel = "Alto"
	RiskSevere   RiskLevel = "Severo"
)

// Result is the outcome of a single calculator invocation. It is a plain
// value: constructed fresh per call, never persisted, never mutated.
type Result struct {
	Score           float64   `json:"score"`
	RiskLevel       RiskLevel `json:"risk_level"`
	Interpretation  string    `json:"interpretation"`
	Recommendations string    `json:"recommendations"`
}

// ValidationError reports a numeric input outside its documented inclusive
// range, or a structurally required field that is missing. Inputs are never
// silently clamped.
type ValidationError struct {
	Field string
	Min   float64
	Max   float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s debe estar entre %g y %g", e.Field, e.Min, e.Max)
}

// TypeMismatchError reports an input of the wrong JSON type (e.g. a string
// where a boolean was expected). It is distinct from a range violation and is
// produced at the request-binding boundary.
type TypeMismatchError struct {
	Field    string
	Expected string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: se esperaba un valor de tipo %s", e.Field, e.Expected)
}

// validateRange fails when value lies outside [min, max].
func validateRange(value, min, max float64, name string) error {
	if value < min || value > max {
		return &ValidationError{Field: name, Min: min, Max: max}
	}
	return nil
}
