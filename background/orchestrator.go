package background

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"

	"github.com/geosure/climate-risk-api/external/exposure"
	"github.com/geosure/climate-risk-api/external/vulnerability"
	"github.com/geosure/climate-risk-api/hazard"
	"github.com/geosure/climate-risk-api/observability"
	"github.com/geosure/climate-risk-api/schema"
	"github.com/geosure/climate-risk-api/store"
)

// Store is the subset of store operations the orchestrator and its units
// need.
type Store interface {
	store.ClimateReader
	store.RiskResultStore
	store.BatchRunStore
	store.LocationStore
}

// TriggerAck acknowledges a trigger. A trigger that did not start a run
// still carries the active run's ID and the reason, so delivery is never
// silently dropped.
type TriggerAck struct {
	RunID   string `json:"run_id"`
	Started bool   `json:"started"`
	Reason  string `json:"reason,omitempty"`
}

// Config carries the orchestrator's tunables.
type Config struct {
	PoolSize          int
	UnitTimeout       time.Duration
	ProviderRetries   int
	TargetYears       []int
	WindowYears       int
	FallbackToBinZero bool
}

func (c Config) withDefaults() Config {
	if c.PoolSize <= 0 {
		c.PoolSize = 8
	}
	if c.UnitTimeout <= 0 {
		c.UnitTimeout = 30 * time.Second
	}
	if c.ProviderRetries <= 0 {
		c.ProviderRetries = 3
	}
	if len(c.TargetYears) == 0 {
		c.TargetYears = []int{2030, 2050}
	}
	if c.WindowYears <= 0 {
		c.WindowYears = 30
	}
	return c
}

type queuedTrigger struct {
	kind      schema.TriggerKind
	batchType schema.BatchType
}

// Orchestrator owns the full-grid recomputation: it enumerates the work
// set, fans it out across a bounded worker pool, and closes the batch run
// with a terminal status. One explicit value constructed at process start;
// no ambient scheduler state.
type Orchestrator struct {
	store         Store
	registry      *hazard.Registry
	exposure      exposure.Exposure
	vulnerability vulnerability.Vulnerability
	metrics       *observability.Metrics
	clock         clockwork.Clock
	cfg           Config

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu          sync.Mutex
	running     bool
	activeRunID string
	queued      *queuedTrigger
}

func NewOrchestrator(s Store, registry *hazard.Registry, e exposure.Exposure, v vulnerability.Vulnerability, metrics *observability.Metrics, clock clockwork.Clock, cfg Config) *Orchestrator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		store:         s,
		registry:      registry,
		exposure:      e,
		vulnerability: v,
		metrics:       metrics,
		clock:         clock,
		cfg:           cfg.withDefaults(),
		baseCtx:       ctx,
		cancel:        cancel,
	}
}

// Trigger is the single entry point for both trigger kinds. At most one
// run is active per orchestrator: while running, a scheduled trigger is
// queued one deep and an on-demand trigger is coalesced into an
// "already running" acknowledgment.
func (o *Orchestrator) Trigger(kind schema.TriggerKind, batchType schema.BatchType) (TriggerAck, error) {
	hazards, err := batchType.Hazards()
	if err != nil {
		return TriggerAck{}, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.running {
		if kind == schema.TriggerScheduled {
			o.queued = &queuedTrigger{kind: kind, batchType: batchType}
			return TriggerAck{RunID: o.activeRunID, Started: false, Reason: "queued behind active run"}, nil
		}
		return TriggerAck{RunID: o.activeRunID, Started: false, Reason: "already running"}, nil
	}

	runID := uuid.New().String()
	o.running = true
	o.activeRunID = runID

	o.wg.Add(1)
	go o.runBatch(runID, kind, batchType, hazards)

	return TriggerAck{RunID: runID, Started: true}, nil
}

// Shutdown stops accepting work between units and waits for the active
// run's in-flight units to finish.
func (o *Orchestrator) Shutdown() {
	o.cancel()
	o.wg.Wait()
}

func (o *Orchestrator) runBatch(runID string, kind schema.TriggerKind, batchType schema.BatchType, hazards []schema.HazardType) {
	defer o.wg.Done()
	defer o.finishRun()

	logger := log.WithFields(log.Fields{
		"prefix":     "batch",
		"run_id":     runID,
		"batch_type": batchType,
		"trigger":    kind,
	})

	startedAt := o.clock.Now()
	run := schema.BatchRun{
		RunID:       runID,
		BatchType:   batchType,
		TriggerKind: kind,
		StartedAt:   startedAt,
		Status:      schema.BatchRunning,
	}

	// Structural preconditions are checked before any unit is dispatched;
	// a failure here fails the whole run.
	if err := o.registry.Validate(); err != nil {
		logger.WithError(err).Error("bin definitions invalid, run failed before dispatch")
		sentry.CaptureException(err)
		o.recordFailedRun(run, err)
		return
	}

	locations, err := o.store.ListLocations(o.baseCtx)
	if err != nil {
		logger.WithError(err).Error("cannot enumerate locations, run failed before dispatch")
		sentry.CaptureException(err)
		o.recordFailedRun(run, err)
		return
	}

	units := enumerateUnits(locations, hazards, o.cfg.TargetYears)
	run.UnitsTotal = len(units)

	if err := o.store.CreateBatchRun(o.baseCtx, run); err != nil {
		logger.WithError(err).Error("cannot create batch run")
		sentry.CaptureException(err)
		return
	}

	o.metrics.RunsStarted.WithLabelValues(string(kind)).Inc()
	o.metrics.RunActive.Set(1)
	defer o.metrics.RunActive.Set(0)

	logger.WithField("units", len(units)).Info("batch run started")

	var succeeded, failed int64

	pool := newWorkerPool(o.cfg.PoolSize)
	pool.Start(o.baseCtx)
	for _, u := range units {
		u := u
		pool.Submit(func(ctx context.Context) {
			unitStart := o.clock.Now()
			unitCtx, cancelUnit := context.WithTimeout(ctx, o.cfg.UnitTimeout)
			err := o.runUnit(unitCtx, u)
			cancelUnit()
			o.metrics.UnitDuration.Observe(o.clock.Since(unitStart).Seconds())

			// Unit accounting writes use the run's base context: the unit's
			// own deadline may already have expired.
			if err != nil {
				atomic.AddInt64(&failed, 1)
				o.metrics.UnitsFailed.Inc()
				reason := fmt.Sprintf("%s: %s", u, err)
				logger.WithError(err).WithField("unit", u.String()).Warn("unit failed")
				if err := o.store.RecordUnitFailure(o.baseCtx, runID, reason); err != nil {
					logger.WithError(err).Error("record unit failure")
				}
				return
			}

			atomic.AddInt64(&succeeded, 1)
			o.metrics.UnitsSucceeded.Inc()
			if err := o.store.RecordUnitSuccess(o.baseCtx, runID); err != nil {
				logger.WithError(err).Error("record unit success")
			}
		})
	}
	pool.Stop()

	// All units succeeded means COMPLETED; anything else that still ran to
	// the join barrier is accepted as PARTIALLY_FAILED.
	status := schema.BatchCompleted
	if int(atomic.LoadInt64(&succeeded)) != len(units) {
		status = schema.BatchPartiallyFailed
	}

	finishedAt := o.clock.Now()
	if err := o.store.CompleteBatchRun(o.baseCtx, runID, status, finishedAt); err != nil {
		logger.WithError(err).Error("complete batch run")
		sentry.CaptureException(err)
	}

	o.metrics.RunDuration.Observe(finishedAt.Sub(startedAt).Seconds())
	logger.WithFields(log.Fields{
		"status":    status,
		"succeeded": atomic.LoadInt64(&succeeded),
		"failed":    atomic.LoadInt64(&failed),
		"total":     len(units),
	}).Info("batch run finished")
}

// recordFailedRun persists the FAILED terminal status of a run that never
// dispatched a unit.
func (o *Orchestrator) recordFailedRun(run schema.BatchRun, cause error) {
	finishedAt := o.clock.Now()
	run.Status = schema.BatchFailed
	run.FinishedAt = &finishedAt
	run.FailureReasons = []string{cause.Error()}

	if err := o.store.CreateBatchRun(o.baseCtx, run); err != nil {
		log.WithFields(log.Fields{
			"prefix": "batch",
			"run_id": run.RunID,
			"error":  err,
		}).Error("record failed run")
	}
}

// finishRun releases the single-run slot and starts the queued scheduled
// trigger, if one arrived while the run was active.
func (o *Orchestrator) finishRun() {
	o.mu.Lock()
	o.running = false
	o.activeRunID = ""
	queued := o.queued
	o.queued = nil
	o.mu.Unlock()

	if queued != nil && o.baseCtx.Err() == nil {
		if _, err := o.Trigger(queued.kind, queued.batchType); err != nil {
			log.WithFields(log.Fields{
				"prefix": "batch",
				"error":  err,
			}).Error("start queued trigger")
		}
	}
}

func enumerateUnits(locations []schema.Location, hazards []schema.HazardType, targetYears []int) []riskUnit {
	units := make([]riskUnit, 0, len(locations)*len(hazards)*len(schema.Scenarios)*len(targetYears))
	for _, loc := range locations {
		for _, h := range hazards {
			for _, scenario := range schema.Scenarios {
				for _, year := range targetYears {
					units = append(units, riskUnit{
						Hazard:     h,
						Location:   loc,
						Scenario:   scenario,
						TargetYear: year,
					})
				}
			}
		}
	}
	return units
}
