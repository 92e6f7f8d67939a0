package hazard

import "github.com/geosure/climate-risk-api/schema"

// typhoonCalculator takes the within-year maximum of surface wind speed.
type typhoonCalculator struct{}

func (typhoonCalculator) Hazard() schema.HazardType {
	return schema.HazardTyphoon
}

func (typhoonCalculator) Variables() []schema.HazardVariable {
	return []schema.HazardVariable{schema.VarWindSpeed}
}

func (typhoonCalculator) Compute(w schema.ClimateWindow) []IntensityPoint {
	return reduceAnnual(w.Series[schema.VarWindSpeed], maxOf)
}
