package schema

import "time"

// RiskResult is the persisted output of one batch unit. The natural key is
// the full (hazard, location, scenario, target year) tuple; recomputation
// always replaces the whole document, never patches it.
type RiskResult struct {
	HazardType    HazardType   `json:"hazard_type" bson:"hazard_type"`
	LocationID    string       `json:"location_id" bson:"location_id"`
	Scenario      Scenario     `json:"scenario" bson:"scenario"`
	TargetYear    int          `json:"target_year" bson:"target_year"`
	Hazard        float64      `json:"hazard" bson:"hazard"`
	Exposure      float64      `json:"exposure" bson:"exposure"`
	Vulnerability float64      `json:"vulnerability" bson:"vulnerability"`
	Score         float64      `json:"score" bson:"score"`
	Tier          SeverityTier `json:"tier" bson:"tier"`
	UpdatedAt     time.Time    `json:"updated_at" bson:"updated_at"`
}
