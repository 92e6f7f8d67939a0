package background

import (
	"errors"

	"github.com/RichardKnop/machinery/v1"

	"github.com/geosure/climate-risk-api/schema"
)

// RecomputeTaskName is the machinery task external publishers send to
// request an on-demand recomputation of one hazard family.
const RecomputeTaskName = "recompute_risk"

// BackgroundManager bridges the machinery task server to the orchestrator.
// The worker keeps consuming trigger tasks while a run is active, so a
// trigger is always acknowledged, never dropped.
type BackgroundManager struct {
	trigger Triggerer

	taskServer *machinery.Server

	worker *machinery.Worker
}

func New(trigger Triggerer, taskServer *machinery.Server) *BackgroundManager {
	return &BackgroundManager{
		trigger:    trigger,
		taskServer: taskServer,
	}
}

func (m *BackgroundManager) RegisterTasks() error {
	return m.taskServer.RegisterTask(RecomputeTaskName, m.RecomputeRisk)
}

// RecomputeRisk handles one on-demand trigger carrying a batch type. A
// trigger that arrives while a run is active is coalesced: the task result
// reports the active run instead of starting a second one.
func (m *BackgroundManager) RecomputeRisk(batchType string) (string, error) {
	ack, err := m.trigger.Trigger(schema.TriggerOnDemand, schema.BatchType(batchType))
	if err != nil {
		return "", err
	}

	if !ack.Started {
		return ack.Reason, nil
	}
	return ack.RunID, nil
}

// Run spawns workers to consume trigger tasks
func (m *BackgroundManager) Run() error {
	if m.worker != nil {
		return errors.New("background worker has started")
	}
	m.worker = m.taskServer.NewWorker("risk-worker", 5)
	return m.worker.Launch()
}
