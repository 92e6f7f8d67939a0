package hazard

import (
	"sort"

	"github.com/geosure/climate-risk-api/schema"
)

// IntensityPoint is one evaluation period's intensity scalar.
type IntensityPoint struct {
	Period int
	Value  float64
}

// Calculator reduces a climate window to one intensity value per period.
// Implementations are pure functions of their declared variables. Periods
// whose inputs are all missing are omitted, never emitted as zero; the
// probability accumulator uses the emitted count as its denominator.
type Calculator interface {
	Hazard() schema.HazardType
	Variables() []schema.HazardVariable
	Compute(window schema.ClimateWindow) []IntensityPoint
}

type reducer func(values []float64) float64

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func sumOf(values []float64) float64 {
	var s float64
	for _, v := range values {
		s += v
	}
	return s
}

func meanOf(values []float64) float64 {
	return sumOf(values) / float64(len(values))
}

// reduceAnnual folds the valid points of one series into one value per
// period. A period with no valid point is skipped entirely.
func reduceAnnual(points []schema.SeriesPoint, r reducer) []IntensityPoint {
	byPeriod := make(map[int][]float64)
	for _, p := range points {
		if !p.Valid {
			continue
		}
		byPeriod[p.Period] = append(byPeriod[p.Period], p.Value)
	}

	periods := make([]int, 0, len(byPeriod))
	for period := range byPeriod {
		periods = append(periods, period)
	}
	sort.Ints(periods)

	out := make([]IntensityPoint, 0, len(periods))
	for _, period := range periods {
		out = append(out, IntensityPoint{Period: period, Value: r(byPeriod[period])})
	}
	return out
}

type subPeriod struct {
	period int
	month  int
}

// combineMonthly aligns multiple co-located series on (period, month),
// applies fn to each sub-period where every variable is valid, and reduces
// the sub-period values to one intensity per period. Sub-periods missing
// any input are excluded from the derivation.
func combineMonthly(w schema.ClimateWindow, vars []schema.HazardVariable, fn func(values []float64) float64, r reducer) []IntensityPoint {
	indexed := make([]map[subPeriod]float64, len(vars))
	for i, v := range vars {
		indexed[i] = make(map[subPeriod]float64)
		for _, p := range w.Series[v] {
			if p.Valid {
				indexed[i][subPeriod{p.Period, p.Month}] = p.Value
			}
		}
	}

	byPeriod := make(map[int][]float64)
	for sp := range indexed[0] {
		values := make([]float64, len(vars))
		complete := true
		for i := range vars {
			v, ok := indexed[i][sp]
			if !ok {
				complete = false
				break
			}
			values[i] = v
		}
		if complete {
			byPeriod[sp.period] = append(byPeriod[sp.period], fn(values))
		}
	}

	periods := make([]int, 0, len(byPeriod))
	for period := range byPeriod {
		periods = append(periods, period)
	}
	sort.Ints(periods)

	out := make([]IntensityPoint, 0, len(periods))
	for _, period := range periods {
		out = append(out, IntensityPoint{Period: period, Value: r(byPeriod[period])})
	}
	return out
}
