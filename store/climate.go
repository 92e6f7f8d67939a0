package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/geosure/climate-risk-api/schema"
)

const ClimateSeriesCollection = "climate_series"

// ClimateReader exposes the climate series owned by the ingestion
// collaborator. Read-only here.
type ClimateReader interface {
	GetClimateSeries(ctx context.Context, variable schema.HazardVariable, scenario schema.Scenario, locationID string) ([]schema.SeriesPoint, error)
}

// climateSeriesDoc mirrors the ingestion collaborator's layout: one
// document per (variable, scenario, location) carrying the full series.
type climateSeriesDoc struct {
	Variable   schema.HazardVariable `bson:"variable"`
	Scenario   schema.Scenario       `bson:"scenario"`
	LocationID string                `bson:"location_id"`
	Points     []schema.SeriesPoint  `bson:"points"`
}

// GetClimateSeries returns every stored point of one series in document
// order; the calculators bucket points by period and do not rely on order.
// A series with no document yields an empty sequence; the caller decides
// what zero valid periods mean.
func (m *mongoDB) GetClimateSeries(ctx context.Context, variable schema.HazardVariable, scenario schema.Scenario, locationID string) ([]schema.SeriesPoint, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(ClimateSeriesCollection)
	filter := bson.M{
		"variable":    variable,
		"scenario":    scenario,
		"location_id": locationID,
	}

	var doc climateSeriesDoc
	err := c.FindOne(ctx, filter, options.FindOne()).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return doc.Points, nil
}
