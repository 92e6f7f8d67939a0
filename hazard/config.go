package hazard

import (
	"fmt"
	"math"

	"github.com/spf13/viper"

	"github.com/geosure/climate-risk-api/schema"
)

// DefaultBinDefinitions holds the built-in severity-bin tables. Boundary
// values and damage rates are empirically tuned constants and may be
// overridden through configuration; see ApplyBinOverrides.
var DefaultBinDefinitions = map[schema.HazardType]schema.BinDefinition{
	schema.HazardHeat: binTable(schema.HazardHeat, // annual max temperature, degC
		[]float64{32, 35, 38, 41},
		[]float64{0.0005, 0.002, 0.008, 0.03}),
	schema.HazardCold: binTable(schema.HazardCold, // negated annual min temperature, degC
		[]float64{5, 15, 25, 35},
		[]float64{0.0005, 0.002, 0.008, 0.03}),
	schema.HazardDrought: binTable(schema.HazardDrought, // negated annual min SPEI
		[]float64{1, 1.5, 2, 2.5},
		[]float64{0.001, 0.004, 0.015, 0.05}),
	schema.HazardFloodInland: binTable(schema.HazardFloodInland, // annual max precipitation, mm
		[]float64{150, 250, 400, 600},
		[]float64{0.002, 0.01, 0.05, 0.2}),
	schema.HazardFloodUrban: binTable(schema.HazardFloodUrban, // ponding depth proxy, mm
		[]float64{20, 80, 200, 450},
		[]float64{0.002, 0.01, 0.05, 0.2}),
	schema.HazardFloodCoastal: binTable(schema.HazardFloodCoastal, // annual max sea surface height, m
		[]float64{0.3, 0.8, 1.5, 2.5},
		[]float64{0.002, 0.015, 0.07, 0.25}),
	schema.HazardTyphoon: binTable(schema.HazardTyphoon, // annual max wind speed, m/s
		[]float64{17, 25, 33, 44},
		[]float64{0.001, 0.006, 0.03, 0.12}),
	schema.HazardWildfire: binTable(schema.HazardWildfire, // annual max fire-weather proxy
		[]float64{10, 20, 35, 55},
		[]float64{0.001, 0.005, 0.02, 0.08}),
	schema.HazardWaterStress: binTable(schema.HazardWaterStress, // annual mean demand/supply ratio
		[]float64{0.2, 0.4, 0.8, 1.2},
		[]float64{0.0005, 0.002, 0.01, 0.04}),
}

// binTable builds a contiguous bin definition from interior boundaries and
// the damage rate of each non-zero bin. Bin 0 spans (-inf, boundaries[0])
// with damage rate 0; the last bin is right-unbounded.
func binTable(h schema.HazardType, boundaries, rates []float64) schema.BinDefinition {
	bins := []schema.Bin{{Lower: math.Inf(-1), Upper: boundaries[0], DamageRate: 0}}
	for i, lower := range boundaries {
		upper := math.Inf(1)
		if i+1 < len(boundaries) {
			upper = boundaries[i+1]
		}
		bins = append(bins, schema.Bin{Lower: lower, Upper: upper, DamageRate: rates[i]})
	}
	return schema.BinDefinition{Hazard: h, Bins: bins}
}

type binOverride struct {
	Lower      *float64 `mapstructure:"lower"`
	Upper      *float64 `mapstructure:"upper"`
	DamageRate float64  `mapstructure:"damage_rate"`
}

// ApplyBinOverrides replaces bin tables from the `risk.bins.<hazard>`
// configuration key. A missing lower bound on the first bin and a missing
// upper bound on the last bin default to the unbounded ends. Overridden
// tables are validated before installation.
func ApplyBinOverrides(r *Registry) error {
	for _, h := range schema.HazardTypes {
		key := fmt.Sprintf("risk.bins.%s", h)
		if !viper.IsSet(key) {
			continue
		}

		var overrides []binOverride
		if err := viper.UnmarshalKey(key, &overrides); err != nil {
			return fmt.Errorf("hazard %s: parse bin overrides: %w", h, err)
		}

		bins := make([]schema.Bin, 0, len(overrides))
		for i, o := range overrides {
			lower := math.Inf(-1)
			if o.Lower != nil {
				lower = *o.Lower
			}
			upper := math.Inf(1)
			if o.Upper != nil {
				upper = *o.Upper
			}
			if i > 0 && o.Lower == nil {
				lower = bins[i-1].Upper
			}
			bins = append(bins, schema.Bin{Lower: lower, Upper: upper, DamageRate: o.DamageRate})
		}

		def := schema.BinDefinition{Hazard: h, Bins: bins}
		if err := def.Validate(); err != nil {
			return err
		}
		if err := r.SetBins(def); err != nil {
			return err
		}
	}
	return nil
}
