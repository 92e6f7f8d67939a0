package hazard

import "github.com/geosure/climate-risk-api/schema"

// droughtCalculator takes the within-year minimum of the 12-month
// standardized precipitation-evapotranspiration index. The index is
// negative under drought, so the minimum is negated to express severity
// as an increasing magnitude.
type droughtCalculator struct{}

func (droughtCalculator) Hazard() schema.HazardType {
	return schema.HazardDrought
}

func (droughtCalculator) Variables() []schema.HazardVariable {
	return []schema.HazardVariable{schema.VarPrecipIndex}
}

func (droughtCalculator) Compute(w schema.ClimateWindow) []IntensityPoint {
	points := reduceAnnual(w.Series[schema.VarPrecipIndex], minOf)
	for i := range points {
		points[i].Value = -points[i].Value
	}
	return points
}
