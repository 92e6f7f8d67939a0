package background

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geosure/climate-risk-api/external/exposure"
	"github.com/geosure/climate-risk-api/external/vulnerability"
	"github.com/geosure/climate-risk-api/schema"
	"github.com/geosure/climate-risk-api/score"
)

// riskUnit is one (hazard x location x scenario x target year) work unit.
type riskUnit struct {
	Hazard     schema.HazardType
	Location   schema.Location
	Scenario   schema.Scenario
	TargetYear int
}

func (u riskUnit) String() string {
	return fmt.Sprintf("%s/%s/%s/%d", u.Hazard, u.Location.ID, u.Scenario, u.TargetYear)
}

// runUnit executes the whole pipeline for one unit: climate window read,
// intensity derivation, bin classification, probability accumulation,
// hazard reduction, risk composition, and one idempotent upsert.
func (o *Orchestrator) runUnit(ctx context.Context, u riskUnit) error {
	entry, err := o.registry.Entry(u.Hazard)
	if err != nil {
		return err
	}

	window := schema.ClimateWindow{
		LocationID: u.Location.ID,
		Scenario:   u.Scenario,
		Series:     make(map[schema.HazardVariable][]schema.SeriesPoint),
	}
	for _, variable := range entry.Calculator.Variables() {
		points, err := o.store.GetClimateSeries(ctx, variable, u.Scenario, u.Location.ID)
		if err != nil {
			return fmt.Errorf("read %s series: %w", variable, err)
		}
		window.Series[variable] = clipWindow(points, u.TargetYear, o.cfg.WindowYears)
	}

	intensities := entry.Calculator.Compute(window)
	classified := make([]int, len(intensities))
	for i, p := range intensities {
		classified[i] = entry.Bins.Classify(p.Value)
	}

	dist, err := score.Accumulate(len(entry.Bins.Bins), classified)
	if err != nil {
		if errors.Is(err, score.ErrInsufficientData) && o.cfg.FallbackToBinZero {
			dist = score.FallbackDistribution(len(entry.Bins.Bins))
		} else {
			return err
		}
	}

	h := score.HazardScore(dist, entry.Bins)

	e, err := o.getExposure(ctx, u.Location.ID)
	if err != nil {
		return fmt.Errorf("exposure: %w", err)
	}

	v, err := o.getVulnerability(ctx, u.Location.ID, u.Hazard)
	if err != nil {
		return fmt.Errorf("vulnerability: %w", err)
	}

	result := score.ComposeRisk(u.Hazard, u.Location.ID, u.Scenario, u.TargetYear, h, e, v, o.clock.Now())
	return o.store.UpsertRiskResult(ctx, result)
}

// clipWindow keeps the climatology window: the windowYears periods ending
// at the target year.
func clipWindow(points []schema.SeriesPoint, targetYear, windowYears int) []schema.SeriesPoint {
	lo := targetYear - windowYears + 1

	out := make([]schema.SeriesPoint, 0, len(points))
	for _, p := range points {
		if p.Period >= lo && p.Period <= targetYear {
			out = append(out, p)
		}
	}
	return out
}

func (o *Orchestrator) getExposure(ctx context.Context, locationID string) (float64, error) {
	var value float64
	err := o.withRetry(ctx, func(ctx context.Context) error {
		var err error
		value, err = o.exposure.Get(ctx, locationID)
		return err
	})
	return value, err
}

func (o *Orchestrator) getVulnerability(ctx context.Context, locationID string, h schema.HazardType) (float64, error) {
	var value float64
	err := o.withRetry(ctx, func(ctx context.Context) error {
		var err error
		value, err = o.vulnerability.Get(ctx, locationID, h)
		return err
	})
	return value, err
}

// withRetry retries unavailable-provider errors a bounded number of times
// with doubling backoff. Any other error fails the unit immediately.
func (o *Orchestrator) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := 200 * time.Millisecond

	var err error
	for attempt := 0; attempt < o.cfg.ProviderRetries; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if !errors.Is(err, exposure.ErrDataUnavailable) && !errors.Is(err, vulnerability.ErrDataUnavailable) {
			return err
		}
		if attempt == o.cfg.ProviderRetries-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-o.clock.After(backoff):
		}
		backoff *= 2
	}
	return err
}
