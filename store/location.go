package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/geosure/climate-risk-api/schema"
)

const LocationCollection = "locations"

// LocationStore exposes the recomputation grid. The grid is owned by the
// ingestion collaborator and only read here.
type LocationStore interface {
	ListLocations(ctx context.Context) ([]schema.Location, error)
}

func (m *mongoDB) ListLocations(ctx context.Context) ([]schema.Location, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "id", Value: 1}})

	c := m.client.Database(m.database).Collection(LocationCollection)
	cursor, err := c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var locations []schema.Location
	if err := cursor.All(ctx, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}
