package hazard

import "github.com/geosure/climate-risk-api/schema"

// heatCalculator takes the within-year maximum of daily-maximum
// temperature as the heat intensity of a period.
type heatCalculator struct{}

func (heatCalculator) Hazard() schema.HazardType {
	return schema.HazardHeat
}

func (heatCalculator) Variables() []schema.HazardVariable {
	return []schema.HazardVariable{schema.VarTemperatureMax}
}

func (heatCalculator) Compute(w schema.ClimateWindow) []IntensityPoint {
	return reduceAnnual(w.Series[schema.VarTemperatureMax], maxOf)
}
