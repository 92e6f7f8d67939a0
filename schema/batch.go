package schema

import (
	"fmt"
	"time"
)

// TriggerKind tells how a batch run was started.
type TriggerKind string

const (
	TriggerScheduled TriggerKind = "scheduled"
	TriggerOnDemand  TriggerKind = "on_demand"
)

// BatchType names the hazard family a recompute trigger covers: either a
// single hazard type or BatchTypeAll for the full grid.
type BatchType string

const BatchTypeAll BatchType = "all"

// Hazards resolves a batch type to the hazard types it covers.
func (b BatchType) Hazards() ([]HazardType, error) {
	if b == BatchTypeAll {
		return HazardTypes, nil
	}
	for _, h := range HazardTypes {
		if HazardType(b) == h {
			return []HazardType{h}, nil
		}
	}
	return nil, fmt.Errorf("unknown batch type %q", string(b))
}

// BatchStatus is the lifecycle state of a batch run.
type BatchStatus string

const (
	BatchRunning         BatchStatus = "RUNNING"
	BatchCompleted       BatchStatus = "COMPLETED"
	BatchPartiallyFailed BatchStatus = "PARTIALLY_FAILED"
	BatchFailed          BatchStatus = "FAILED"
)

// BatchRun is one execution of the full-grid recomputation. FailureReasons
// keeps only the first few unit failures; counts are authoritative.
type BatchRun struct {
	RunID          string      `json:"run_id" bson:"run_id"`
	BatchType      BatchType   `json:"batch_type" bson:"batch_type"`
	TriggerKind    TriggerKind `json:"trigger_kind" bson:"trigger_kind"`
	StartedAt      time.Time   `json:"started_at" bson:"started_at"`
	FinishedAt     *time.Time  `json:"finished_at,omitempty" bson:"finished_at,omitempty"`
	UnitsTotal     int         `json:"units_total" bson:"units_total"`
	UnitsSucceeded int         `json:"units_succeeded" bson:"units_succeeded"`
	UnitsFailed    int         `json:"units_failed" bson:"units_failed"`
	FailureReasons []string    `json:"failure_reasons,omitempty" bson:"failure_reasons,omitempty"`
	Status         BatchStatus `json:"status" bson:"status"`
}
