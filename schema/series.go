package schema

// SeriesPoint is one period of a climate series. Validity is explicit:
// a masked value is carried as Valid=false, never as a sentinel number.
type SeriesPoint struct {
	Period int     `json:"period" bson:"period"`
	Month  int     `json:"month" bson:"month"` // 1-12, 0 for annual series
	Value  float64 `json:"value" bson:"value"`
	Valid  bool    `json:"valid" bson:"valid"`
}

// ClimateWindow groups the series of every input variable for one
// (location, scenario) over an evaluation window. It is read-only input
// owned by the ingestion collaborator.
type ClimateWindow struct {
	LocationID string
	Scenario   Scenario
	Series     map[HazardVariable][]SeriesPoint
}

// Location is one cell of the recomputation grid.
type Location struct {
	ID        string  `json:"id" bson:"id"`
	Name      string  `json:"name" bson:"name"`
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}
