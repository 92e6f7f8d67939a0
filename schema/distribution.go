package schema

import (
	"fmt"
	"math"
)

// ProbabilityTolerance is the numeric slack allowed on the sum-to-one
// invariant of a probability distribution.
const ProbabilityTolerance = 1e-6

// ProbabilityDistribution is a discrete distribution over severity bins,
// derived from the classified periods of one (hazard, location, scenario).
type ProbabilityDistribution struct {
	Probabilities []float64 `json:"probabilities" bson:"probabilities"`
	ValidPeriods  int       `json:"valid_periods" bson:"valid_periods"`
}

// NewProbabilityDistribution builds a distribution and enforces the core
// invariant that probabilities sum to 1 within ProbabilityTolerance.
func NewProbabilityDistribution(probabilities []float64, validPeriods int) (ProbabilityDistribution, error) {
	if validPeriods < 1 {
		return ProbabilityDistribution{}, fmt.Errorf("distribution requires at least one valid period")
	}

	var sum float64
	for i, p := range probabilities {
		if p < 0 {
			return ProbabilityDistribution{}, fmt.Errorf("bin %d has negative probability %f", i, p)
		}
		sum += p
	}
	if math.Abs(sum-1) > ProbabilityTolerance {
		return ProbabilityDistribution{}, fmt.Errorf("probabilities sum to %f, want 1", sum)
	}

	return ProbabilityDistribution{
		Probabilities: probabilities,
		ValidPeriods:  validPeriods,
	}, nil
}
