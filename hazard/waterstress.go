package hazard

import "github.com/geosure/climate-risk-api/schema"

// waterStressCalculator expresses a period's stress as the mean of the
// monthly withdrawal-to-supply ratio. Months with no supply reported are
// excluded rather than treated as infinite stress.
type waterStressCalculator struct{}

func (waterStressCalculator) Hazard() schema.HazardType {
	return schema.HazardWaterStress
}

func (waterStressCalculator) Variables() []schema.HazardVariable {
	return []schema.HazardVariable{schema.VarWaterDemand, schema.VarWaterSupply}
}

func (waterStressCalculator) Compute(w schema.ClimateWindow) []IntensityPoint {
	masked := dropNonPositive(w.Series[schema.VarWaterSupply], w)
	return combineMonthly(masked, []schema.HazardVariable{schema.VarWaterDemand, schema.VarWaterSupply},
		func(values []float64) float64 {
			return values[0] / values[1]
		}, meanOf)
}

// dropNonPositive masks supply points at or below zero so the ratio stays
// finite. The window is copied shallowly; only the supply series is
// rewritten.
func dropNonPositive(supply []schema.SeriesPoint, w schema.ClimateWindow) schema.ClimateWindow {
	filtered := make([]schema.SeriesPoint, len(supply))
	copy(filtered, supply)
	for i := range filtered {
		if filtered[i].Value <= 0 {
			filtered[i].Valid = false
		}
	}

	series := make(map[schema.HazardVariable][]schema.SeriesPoint, len(w.Series))
	for k, v := range w.Series {
		series[k] = v
	}
	series[schema.VarWaterSupply] = filtered

	return schema.ClimateWindow{
		LocationID: w.LocationID,
		Scenario:   w.Scenario,
		Series:     series,
	}
}
