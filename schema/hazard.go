package schema

// HazardType identifies one of the physical hazards the engine scores.
type HazardType string

const (
	HazardHeat         HazardType = "heat"
	HazardCold         HazardType = "cold"
	HazardDrought      HazardType = "drought"
	HazardFloodInland  HazardType = "flood_inland"
	HazardFloodUrban   HazardType = "flood_urban"
	HazardFloodCoastal HazardType = "flood_coastal"
	HazardTyphoon      HazardType = "typhoon"
	HazardWildfire     HazardType = "wildfire"
	HazardWaterStress  HazardType = "water_stress"
)

// HazardTypes lists every scored hazard in a stable order. Batch work sets
// and registry iteration follow this order.
var HazardTypes = []HazardType{
	HazardHeat,
	HazardCold,
	HazardDrought,
	HazardFloodInland,
	HazardFloodUrban,
	HazardFloodCoastal,
	HazardTyphoon,
	HazardWildfire,
	HazardWaterStress,
}

// Scenario is one long-range climate projection pathway, from low- to
// high-emission trajectories.
type Scenario string

const (
	ScenarioSSP126 Scenario = "ssp1-2.6"
	ScenarioSSP245 Scenario = "ssp2-4.5"
	ScenarioSSP370 Scenario = "ssp3-7.0"
	ScenarioSSP585 Scenario = "ssp5-8.5"
)

var Scenarios = []Scenario{
	ScenarioSSP126,
	ScenarioSSP245,
	ScenarioSSP370,
	ScenarioSSP585,
}

// HazardVariable names a raw climate series produced by the ingestion
// collaborator.
type HazardVariable string

const (
	VarTemperatureMax   HazardVariable = "tasmax"
	VarTemperatureMin   HazardVariable = "tasmin"
	VarPrecipitation    HazardVariable = "pr"
	VarRelativeHumidity HazardVariable = "hurs"
	VarWindSpeed        HazardVariable = "sfcwind"
	VarSeaLevel         HazardVariable = "zos"
	VarPrecipIndex      HazardVariable = "spei12"
	VarDrainageCapacity HazardVariable = "drainage_capacity"
	VarWaterDemand      HazardVariable = "water_demand"
	VarWaterSupply      HazardVariable = "water_supply"
)

// SeverityTier buckets a composite risk score. Thresholds are global so
// tiers stay comparable across hazard types.
type SeverityTier string

const (
	TierVeryLow  SeverityTier = "very_low"
	TierLow      SeverityTier = "low"
	TierMedium   SeverityTier = "medium"
	TierHigh     SeverityTier = "high"
	TierVeryHigh SeverityTier = "very_high"
)
