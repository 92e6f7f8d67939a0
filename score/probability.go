package score

import (
	"fmt"

	"github.com/geosure/climate-risk-api/schema"
)

// ErrInsufficientData means a unit had zero valid periods to accumulate.
// It is unit-local: the caller decides between a configured fallback
// distribution and skipping the unit.
var ErrInsufficientData = fmt.Errorf("no valid periods to accumulate")

// Accumulate turns a sequence of classified periods into a discrete
// probability distribution over severity bins. The denominator is the
// number of classified periods, which excludes periods the calculator
// skipped for missing data.
func Accumulate(binCount int, classified []int) (schema.ProbabilityDistribution, error) {
	if len(classified) == 0 {
		return schema.ProbabilityDistribution{}, ErrInsufficientData
	}

	counts := make([]int, binCount)
	for _, bin := range classified {
		if bin < 0 || bin >= binCount {
			return schema.ProbabilityDistribution{}, fmt.Errorf("classified bin %d out of range [0,%d)", bin, binCount)
		}
		counts[bin]++
	}

	total := float64(len(classified))
	probabilities := make([]float64, binCount)
	for i, c := range counts {
		probabilities[i] = float64(c) / total
	}

	return schema.NewProbabilityDistribution(probabilities, len(classified))
}

// FallbackDistribution is the configured stand-in for units with no data:
// all probability mass on bin 0, contributing a zero hazard score.
func FallbackDistribution(binCount int) schema.ProbabilityDistribution {
	probabilities := make([]float64, binCount)
	probabilities[0] = 1
	return schema.ProbabilityDistribution{Probabilities: probabilities, ValidPeriods: 1}
}
