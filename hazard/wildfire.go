package hazard

import "github.com/geosure/climate-risk-api/schema"

// Fire-weather proxy coefficients. Temperatures in degrees Celsius, wind
// in m/s, precipitation in mm/month.
const (
	fireWeatherBaseTemp   = 10.0
	fireWeatherWindScale  = 10.0
	fireWeatherRainDampen = 50.0
)

// wildfireCalculator combines temperature, humidity, wind and
// precipitation into a monthly fire-weather proxy and takes the
// within-year maximum. Months missing any of the four inputs are excluded.
type wildfireCalculator struct{}

func (wildfireCalculator) Hazard() schema.HazardType {
	return schema.HazardWildfire
}

func (wildfireCalculator) Variables() []schema.HazardVariable {
	return []schema.HazardVariable{
		schema.VarTemperatureMax,
		schema.VarRelativeHumidity,
		schema.VarWindSpeed,
		schema.VarPrecipitation,
	}
}

func (wildfireCalculator) Compute(w schema.ClimateWindow) []IntensityPoint {
	return combineMonthly(w, []schema.HazardVariable{
		schema.VarTemperatureMax,
		schema.VarRelativeHumidity,
		schema.VarWindSpeed,
		schema.VarPrecipitation,
	}, fireWeatherProxy, maxOf)
}

func fireWeatherProxy(values []float64) float64 {
	temp, humidity, wind, precip := values[0], values[1], values[2], values[3]

	warmth := temp - fireWeatherBaseTemp
	if warmth < 0 {
		return 0
	}

	dryness := (100 - humidity) / 100
	if dryness < 0 {
		dryness = 0
	}

	windFactor := 1 + wind/fireWeatherWindScale
	rainFactor := 1 + precip/fireWeatherRainDampen

	return warmth * dryness * windFactor / rainFactor
}
