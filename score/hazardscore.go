package score

import (
	log "github.com/sirupsen/logrus"

	"github.com/geosure/climate-risk-api/schema"
)

// HazardScore folds a probability distribution and the bin damage rates
// into a single hazard score. Damage rates are bounded to [0,1] and the
// probabilities sum to 1, so the result is already in [0,1]; a value
// outside that range signals a configuration bug and is logged before
// clamping.
func HazardScore(dist schema.ProbabilityDistribution, def schema.BinDefinition) float64 {
	var h float64
	for i, p := range dist.Probabilities {
		if i >= len(def.Bins) {
			break
		}
		h += p * def.Bins[i].DamageRate
	}

	if h < 0 || h > 1 {
		log.WithFields(log.Fields{
			"prefix": "score",
			"hazard": def.Hazard,
			"value":  h,
		}).Warn("hazard score out of [0,1], clamping")
		if h < 0 {
			h = 0
		} else {
			h = 1
		}
	}

	return h
}
