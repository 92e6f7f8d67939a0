package hazard

import "github.com/geosure/climate-risk-api/schema"

// inlandFloodCalculator takes the within-year maximum of precipitation as
// the riverine flood intensity of a period.
type inlandFloodCalculator struct{}

func (inlandFloodCalculator) Hazard() schema.HazardType {
	return schema.HazardFloodInland
}

func (inlandFloodCalculator) Variables() []schema.HazardVariable {
	return []schema.HazardVariable{schema.VarPrecipitation}
}

func (inlandFloodCalculator) Compute(w schema.ClimateWindow) []IntensityPoint {
	return reduceAnnual(w.Series[schema.VarPrecipitation], maxOf)
}

// urbanFloodCalculator derives a monthly ponding-depth proxy from
// precipitation in excess of local drainage capacity, then takes the
// within-year maximum. Months missing either input are excluded.
type urbanFloodCalculator struct{}

func (urbanFloodCalculator) Hazard() schema.HazardType {
	return schema.HazardFloodUrban
}

func (urbanFloodCalculator) Variables() []schema.HazardVariable {
	return []schema.HazardVariable{schema.VarPrecipitation, schema.VarDrainageCapacity}
}

func (urbanFloodCalculator) Compute(w schema.ClimateWindow) []IntensityPoint {
	return combineMonthly(w, []schema.HazardVariable{schema.VarPrecipitation, schema.VarDrainageCapacity},
		func(values []float64) float64 {
			depth := values[0] - values[1]
			if depth < 0 {
				return 0
			}
			return depth
		}, maxOf)
}

// coastalFloodCalculator takes the within-year maximum of sea surface
// height as the storm-surge intensity of a period.
type coastalFloodCalculator struct{}

func (coastalFloodCalculator) Hazard() schema.HazardType {
	return schema.HazardFloodCoastal
}

func (coastalFloodCalculator) Variables() []schema.HazardVariable {
	return []schema.HazardVariable{schema.VarSeaLevel}
}

func (coastalFloodCalculator) Compute(w schema.ClimateWindow) []IntensityPoint {
	return reduceAnnual(w.Series[schema.VarSeaLevel], maxOf)
}
