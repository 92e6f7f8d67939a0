package hazard

import "github.com/geosure/climate-risk-api/schema"

// coldCalculator takes the within-year minimum of daily-minimum
// temperature, negated so severity grows with deeper cold and the bin
// table stays monotonically increasing.
type coldCalculator struct{}

func (coldCalculator) Hazard() schema.HazardType {
	return schema.HazardCold
}

func (coldCalculator) Variables() []schema.HazardVariable {
	return []schema.HazardVariable{schema.VarTemperatureMin}
}

func (coldCalculator) Compute(w schema.ClimateWindow) []IntensityPoint {
	points := reduceAnnual(w.Series[schema.VarTemperatureMin], minOf)
	for i := range points {
		points[i].Value = -points[i].Value
	}
	return points
}
