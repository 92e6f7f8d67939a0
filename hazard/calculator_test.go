package hazard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/geosure/climate-risk-api/schema"
)

func window(series map[schema.HazardVariable][]schema.SeriesPoint) schema.ClimateWindow {
	return schema.ClimateWindow{
		LocationID: "loc-1",
		Scenario:   schema.ScenarioSSP245,
		Series:     series,
	}
}

func TestHeatTakesAnnualMaximum(t *testing.T) {
	w := window(map[schema.HazardVariable][]schema.SeriesPoint{
		schema.VarTemperatureMax: {
			{Period: 2030, Month: 6, Value: 31.2, Valid: true},
			{Period: 2030, Month: 7, Value: 36.8, Valid: true},
			{Period: 2030, Month: 8, Value: 35.1, Valid: true},
			{Period: 2031, Month: 7, Value: 33.0, Valid: true},
		},
	})

	points := heatCalculator{}.Compute(w)
	assert.Equal(t, []IntensityPoint{
		{Period: 2030, Value: 36.8},
		{Period: 2031, Value: 33.0},
	}, points)
}

func TestReduceAnnualSkipsInvalidAndEmptyPeriods(t *testing.T) {
	w := window(map[schema.HazardVariable][]schema.SeriesPoint{
		schema.VarTemperatureMax: {
			{Period: 2030, Month: 7, Value: 36.8, Valid: true},
			{Period: 2031, Month: 7, Value: 99.9, Valid: false},
			{Period: 2032, Month: 7, Value: 34.0, Valid: true},
		},
	})

	points := heatCalculator{}.Compute(w)

	// 2031 has no valid input: the period is omitted, not emitted as zero
	assert.Equal(t, []IntensityPoint{
		{Period: 2030, Value: 36.8},
		{Period: 2032, Value: 34.0},
	}, points)
}

func TestColdNegatesAnnualMinimum(t *testing.T) {
	w := window(map[schema.HazardVariable][]schema.SeriesPoint{
		schema.VarTemperatureMin: {
			{Period: 2030, Month: 1, Value: -12.5, Valid: true},
			{Period: 2030, Month: 2, Value: -8.0, Valid: true},
		},
	})

	points := coldCalculator{}.Compute(w)
	assert.Equal(t, []IntensityPoint{{Period: 2030, Value: 12.5}}, points)
}

func TestDroughtNegatesIndexMinimum(t *testing.T) {
	w := window(map[schema.HazardVariable][]schema.SeriesPoint{
		schema.VarPrecipIndex: {
			{Period: 2030, Month: 6, Value: -1.8, Valid: true},
			{Period: 2030, Month: 9, Value: 0.4, Valid: true},
		},
	})

	points := droughtCalculator{}.Compute(w)
	assert.Equal(t, []IntensityPoint{{Period: 2030, Value: 1.8}}, points)
}

func TestUrbanFloodExcessOverDrainage(t *testing.T) {
	w := window(map[schema.HazardVariable][]schema.SeriesPoint{
		schema.VarPrecipitation: {
			{Period: 2030, Month: 6, Value: 120, Valid: true},
			{Period: 2030, Month: 7, Value: 440, Valid: true},
		},
		schema.VarDrainageCapacity: {
			{Period: 2030, Month: 6, Value: 200, Valid: true},
			{Period: 2030, Month: 7, Value: 200, Valid: true},
		},
	})

	points := urbanFloodCalculator{}.Compute(w)

	// June drains fully (clamped at zero); July ponds 240
	assert.Equal(t, []IntensityPoint{{Period: 2030, Value: 240}}, points)
}

func TestCombineMonthlyExcludesIncompleteMonths(t *testing.T) {
	w := window(map[schema.HazardVariable][]schema.SeriesPoint{
		schema.VarPrecipitation: {
			{Period: 2030, Month: 6, Value: 500, Valid: true},
			{Period: 2030, Month: 7, Value: 300, Valid: true},
		},
		schema.VarDrainageCapacity: {
			// June capacity missing: the month contributes nothing
			{Period: 2030, Month: 7, Value: 200, Valid: true},
		},
	})

	points := urbanFloodCalculator{}.Compute(w)
	assert.Equal(t, []IntensityPoint{{Period: 2030, Value: 100}}, points)
}

func TestWildfireProxy(t *testing.T) {
	// warmth 25, dryness 0.6, wind factor 1.5, rain factor 2
	v := fireWeatherProxy([]float64{35, 40, 5, 50})
	assert.InDelta(t, 11.25, v, 1e-9)

	// below the base temperature nothing burns
	assert.Equal(t, 0.0, fireWeatherProxy([]float64{5, 10, 20, 0}))
}

func TestWaterStressMeanRatioSkipsNonPositiveSupply(t *testing.T) {
	w := window(map[schema.HazardVariable][]schema.SeriesPoint{
		schema.VarWaterDemand: {
			{Period: 2030, Month: 1, Value: 40, Valid: true},
			{Period: 2030, Month: 2, Value: 60, Valid: true},
			{Period: 2030, Month: 3, Value: 50, Valid: true},
		},
		schema.VarWaterSupply: {
			{Period: 2030, Month: 1, Value: 100, Valid: true},
			{Period: 2030, Month: 2, Value: 100, Valid: true},
			{Period: 2030, Month: 3, Value: 0, Valid: true},
		},
	})

	points := waterStressCalculator{}.Compute(w)
	assert.Len(t, points, 1)
	assert.InDelta(t, 0.5, points[0].Value, 1e-9)
}

func TestComputeOnEmptyWindow(t *testing.T) {
	w := window(map[schema.HazardVariable][]schema.SeriesPoint{})

	for _, c := range []Calculator{
		heatCalculator{}, coldCalculator{}, droughtCalculator{},
		inlandFloodCalculator{}, urbanFloodCalculator{}, coastalFloodCalculator{},
		typhoonCalculator{}, wildfireCalculator{}, waterStressCalculator{},
	} {
		assert.Empty(t, c.Compute(w), string(c.Hazard()))
	}
}
