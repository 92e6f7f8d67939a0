package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/geosure/climate-risk-api/schema"
)

const (
	BatchRunCollection = "batch_runs"

	// FailureReasonCap bounds the sampled failure reasons per run; the
	// failed-unit count stays authoritative.
	FailureReasonCap = 10
)

var ErrBatchRunNotFound = fmt.Errorf("batch run not found")

// BatchRunStore owns the lifecycle documents of batch runs.
type BatchRunStore interface {
	CreateBatchRun(ctx context.Context, run schema.BatchRun) error
	RecordUnitSuccess(ctx context.Context, runID string) error
	RecordUnitFailure(ctx context.Context, runID string, reason string) error
	CompleteBatchRun(ctx context.Context, runID string, status schema.BatchStatus, finishedAt time.Time) error
	GetBatchRun(ctx context.Context, runID string) (*schema.BatchRun, error)
	GetLatestBatchRun(ctx context.Context) (*schema.BatchRun, error)
	ListBatchRuns(ctx context.Context, limit int64) ([]schema.BatchRun, error)
}

func (m *mongoDB) batchRuns() *mongo.Collection {
	return m.client.Database(m.database).Collection(BatchRunCollection)
}

func (m *mongoDB) CreateBatchRun(ctx context.Context, run schema.BatchRun) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := m.batchRuns().InsertOne(ctx, run)
	return err
}

func (m *mongoDB) RecordUnitSuccess(ctx context.Context, runID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := m.batchRuns().UpdateOne(ctx,
		bson.M{"run_id": runID},
		bson.M{"$inc": bson.M{"units_succeeded": 1}},
	)
	return err
}

// RecordUnitFailure increments the failure count and samples the reason.
// $slice keeps the first FailureReasonCap reasons only.
func (m *mongoDB) RecordUnitFailure(ctx context.Context, runID string, reason string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := m.batchRuns().UpdateOne(ctx,
		bson.M{"run_id": runID},
		bson.M{
			"$inc": bson.M{"units_failed": 1},
			"$push": bson.M{
				"failure_reasons": bson.M{
					"$each":  []string{reason},
					"$slice": FailureReasonCap,
				},
			},
		},
	)
	return err
}

func (m *mongoDB) CompleteBatchRun(ctx context.Context, runID string, status schema.BatchStatus, finishedAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := m.batchRuns().UpdateOne(ctx,
		bson.M{"run_id": runID},
		bson.M{"$set": bson.M{
			"status":      status,
			"finished_at": finishedAt,
		}},
	)
	return err
}

func (m *mongoDB) GetBatchRun(ctx context.Context, runID string) (*schema.BatchRun, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var run schema.BatchRun
	err := m.batchRuns().FindOne(ctx, bson.M{"run_id": runID}).Decode(&run)
	if err == mongo.ErrNoDocuments {
		return nil, ErrBatchRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (m *mongoDB) GetLatestBatchRun(ctx context.Context) (*schema.BatchRun, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "started_at", Value: -1}})

	var run schema.BatchRun
	err := m.batchRuns().FindOne(ctx, bson.M{}, opts).Decode(&run)
	if err == mongo.ErrNoDocuments {
		return nil, ErrBatchRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (m *mongoDB) ListBatchRuns(ctx context.Context, limit int64) ([]schema.BatchRun, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := m.batchRuns().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var runs []schema.BatchRun
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}
