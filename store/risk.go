package store

import (
	"context"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/geosure/climate-risk-api/schema"
)

const RiskResultCollection = "risk_results"

// RiskResultStore persists the engine's output. Writes are keyed upserts
// on the full result tuple, so concurrent units and reruns commute.
type RiskResultStore interface {
	UpsertRiskResult(ctx context.Context, result schema.RiskResult) error
	ListRiskResults(ctx context.Context, locationID string, scenario schema.Scenario) ([]schema.RiskResult, error)
}

// UpsertRiskResult replaces any existing document with the same natural
// key. There is no partial patch path: recomputation rewrites the row.
func (m *mongoDB) UpsertRiskResult(ctx context.Context, result schema.RiskResult) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"hazard_type": result.HazardType,
		"location_id": result.LocationID,
		"scenario":    result.Scenario,
		"target_year": result.TargetYear,
	}

	opts := options.Replace().SetUpsert(true)
	c := m.client.Database(m.database).Collection(RiskResultCollection)
	if _, err := c.ReplaceOne(ctx, filter, result, opts); err != nil {
		log.WithFields(log.Fields{
			"prefix":      mongoLogPrefix,
			"hazard_type": result.HazardType,
			"location_id": result.LocationID,
			"error":       err,
		}).Error("upsert risk result")
		return err
	}

	return nil
}

// ListRiskResults returns the persisted results of one location, optionally
// narrowed to a scenario, in stable hazard/target-year order.
func (m *mongoDB) ListRiskResults(ctx context.Context, locationID string, scenario schema.Scenario) ([]schema.RiskResult, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"location_id": locationID}
	if scenario != "" {
		filter["scenario"] = scenario
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "hazard_type", Value: 1},
		{Key: "scenario", Value: 1},
		{Key: "target_year", Value: 1},
	})

	c := m.client.Database(m.database).Collection(RiskResultCollection)
	cursor, err := c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []schema.RiskResult
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}

	return results, nil
}
