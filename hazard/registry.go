package hazard

import (
	"fmt"

	"github.com/geosure/climate-risk-api/schema"
)

// ErrNoBinDefinition is a configuration error: a hazard type has a
// calculator but no severity-bin table. It is fatal to a batch run and is
// raised before any unit is dispatched.
var ErrNoBinDefinition = fmt.Errorf("no bin definition for hazard type")

// Entry pairs a hazard's intensity calculator with its bin table.
type Entry struct {
	Calculator Calculator
	Bins       schema.BinDefinition
}

// Registry maps hazard types to their calculators and bin definitions. It
// replaces per-hazard subclassing with a flat capability table, keeping
// the classifier and the probability accumulator generic.
type Registry struct {
	entries map[schema.HazardType]Entry
}

// NewRegistry returns a registry holding every built-in calculator wired
// to its default bin definition.
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[schema.HazardType]Entry)}

	calculators := []Calculator{
		heatCalculator{},
		coldCalculator{},
		droughtCalculator{},
		inlandFloodCalculator{},
		urbanFloodCalculator{},
		coastalFloodCalculator{},
		typhoonCalculator{},
		wildfireCalculator{},
		waterStressCalculator{},
	}
	for _, c := range calculators {
		r.entries[c.Hazard()] = Entry{
			Calculator: c,
			Bins:       DefaultBinDefinitions[c.Hazard()],
		}
	}

	return r
}

// SetBins replaces the bin definition of one hazard type, keeping its
// calculator. Unknown hazard types are rejected.
func (r *Registry) SetBins(def schema.BinDefinition) error {
	e, ok := r.entries[def.Hazard]
	if !ok {
		return fmt.Errorf("hazard %s: %w", def.Hazard, ErrNoBinDefinition)
	}
	e.Bins = def
	r.entries[def.Hazard] = e
	return nil
}

// Entry returns the capability entry of a hazard type.
func (r *Registry) Entry(h schema.HazardType) (Entry, error) {
	e, ok := r.entries[h]
	if !ok || len(e.Bins.Bins) == 0 {
		return Entry{}, fmt.Errorf("hazard %s: %w", h, ErrNoBinDefinition)
	}
	return e, nil
}

// Classify maps an intensity value to a bin index for the given hazard.
func (r *Registry) Classify(h schema.HazardType, value float64) (int, error) {
	e, err := r.Entry(h)
	if err != nil {
		return 0, err
	}
	return e.Bins.Classify(value), nil
}

// Hazards lists the registered hazard types in the schema's stable order.
func (r *Registry) Hazards() []schema.HazardType {
	out := make([]schema.HazardType, 0, len(r.entries))
	for _, h := range schema.HazardTypes {
		if _, ok := r.entries[h]; ok {
			out = append(out, h)
		}
	}
	return out
}

// Validate checks every registered bin table. A failure here aborts a
// batch run before dispatch.
func (r *Registry) Validate() error {
	for _, h := range r.Hazards() {
		e, err := r.Entry(h)
		if err != nil {
			return err
		}
		if err := e.Bins.Validate(); err != nil {
			return err
		}
	}
	return nil
}
