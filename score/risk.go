package score

import (
	"time"

	"github.com/geosure/climate-risk-api/schema"
)

// Global tier thresholds: upper bounds of all but the highest tier.
// Declared once, not per hazard type, so tiers are comparable across
// hazards.
var tierUpperBounds = []struct {
	upper float64
	tier  schema.SeverityTier
}{
	{0.01, schema.TierVeryLow},
	{0.05, schema.TierLow},
	{0.15, schema.TierMedium},
	{0.30, schema.TierHigh},
}

// TierForScore maps a composite risk score to its severity tier.
func TierForScore(score float64) schema.SeverityTier {
	for _, t := range tierUpperBounds {
		if score < t.upper {
			return t.tier
		}
	}
	return schema.TierVeryHigh
}

// ComposeRisk combines a hazard score with externally supplied exposure
// and vulnerability into a persisted risk result. E and V arrive already
// normalized to [0,1] and are not reinterpreted here.
func ComposeRisk(hazardType schema.HazardType, locationID string, scenario schema.Scenario, targetYear int, h, e, v float64, now time.Time) schema.RiskResult {
	riskScore := h * e * v

	return schema.RiskResult{
		HazardType:    hazardType,
		LocationID:    locationID,
		Scenario:      scenario,
		TargetYear:    targetYear,
		Hazard:        h,
		Exposure:      e,
		Vulnerability: v,
		Score:         riskScore,
		Tier:          TierForScore(riskScore),
		UpdatedAt:     now,
	}
}
