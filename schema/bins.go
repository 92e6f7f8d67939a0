package schema

import (
	"fmt"
	"math"
)

// Bin is a severity bucket: a half-open intensity interval [Lower, Upper)
// carrying a fixed damage-rate weight.
type Bin struct {
	Lower      float64 `json:"lower" bson:"lower" mapstructure:"lower"`
	Upper      float64 `json:"upper" bson:"upper" mapstructure:"upper"`
	DamageRate float64 `json:"damage_rate" bson:"damage_rate" mapstructure:"damage_rate"`
}

// BinDefinition is the ordered severity-bin table of one hazard type.
// Bins are contiguous and exhaustive over (-inf, +inf); bin 0 represents
// no/negligible hazard and always carries damage rate 0.
type BinDefinition struct {
	Hazard HazardType `json:"hazard" bson:"hazard"`
	Bins   []Bin      `json:"bins" bson:"bins"`
}

// Validate checks the structural invariants of the bin table.
func (d BinDefinition) Validate() error {
	if len(d.Bins) == 0 {
		return fmt.Errorf("hazard %s: empty bin definition", d.Hazard)
	}

	first := d.Bins[0]
	if !math.IsInf(first.Lower, -1) {
		return fmt.Errorf("hazard %s: bin 0 must be left-unbounded", d.Hazard)
	}
	if first.DamageRate != 0 {
		return fmt.Errorf("hazard %s: bin 0 must carry damage rate 0", d.Hazard)
	}

	last := d.Bins[len(d.Bins)-1]
	if !math.IsInf(last.Upper, 1) {
		return fmt.Errorf("hazard %s: last bin must be right-unbounded", d.Hazard)
	}

	for i, b := range d.Bins {
		if b.DamageRate < 0 || b.DamageRate > 1 {
			return fmt.Errorf("hazard %s: bin %d damage rate %f out of [0,1]", d.Hazard, i, b.DamageRate)
		}
		if b.Upper <= b.Lower {
			return fmt.Errorf("hazard %s: bin %d interval [%f, %f) is empty", d.Hazard, i, b.Lower, b.Upper)
		}
		if i > 0 && b.Lower != d.Bins[i-1].Upper {
			return fmt.Errorf("hazard %s: gap between bin %d and bin %d", d.Hazard, i-1, i)
		}
	}

	return nil
}

// Classify returns the bin index of an intensity value. Intervals are
// left-closed and right-open, so a value sitting exactly on a boundary
// falls into the upper bin. Classification is total over finite reals.
func (d BinDefinition) Classify(v float64) int {
	for i := len(d.Bins) - 1; i > 0; i-- {
		if v >= d.Bins[i].Lower {
			return i
		}
	}
	return 0
}
