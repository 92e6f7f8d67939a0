package background

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"

	"github.com/geosure/climate-risk-api/schema"
)

// Schedule fixes the calendar instant of the scheduled full-grid
// recomputation. It fires once per year.
type Schedule struct {
	Month  time.Month
	Day    int
	Hour   int
	Minute int
}

// Triggerer is the orchestrator entry point shared by both trigger kinds.
type Triggerer interface {
	Trigger(kind schema.TriggerKind, batchType schema.BatchType) (TriggerAck, error)
}

// Scheduler drives the calendar trigger. The clock is injected so firing
// can be tested against a fake.
type Scheduler struct {
	clock    clockwork.Clock
	schedule Schedule
	trigger  Triggerer
}

func NewScheduler(clock clockwork.Clock, schedule Schedule, trigger Triggerer) *Scheduler {
	return &Scheduler{
		clock:    clock,
		schedule: schedule,
		trigger:  trigger,
	}
}

// Run waits for each scheduled instant and fires the full-grid trigger,
// until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	logger := log.WithField("prefix", "scheduler")

	for {
		now := s.clock.Now()
		next := s.NextFire(now)
		logger.WithField("next", next).Info("waiting for scheduled trigger")

		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(next.Sub(now)):
		}

		ack, err := s.trigger.Trigger(schema.TriggerScheduled, schema.BatchTypeAll)
		if err != nil {
			logger.WithError(err).Error("scheduled trigger failed")
			sentry.CaptureException(err)
			continue
		}

		logger.WithFields(log.Fields{
			"run_id":  ack.RunID,
			"started": ack.Started,
			"reason":  ack.Reason,
		}).Info("scheduled trigger fired")
	}
}

// NextFire returns the first scheduled instant strictly after now.
func (s *Scheduler) NextFire(now time.Time) time.Time {
	next := time.Date(now.Year(), s.schedule.Month, s.schedule.Day, s.schedule.Hour, s.schedule.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(1, 0, 0)
	}
	return next
}
