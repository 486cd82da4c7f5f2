package domain

import "time"

// LocationResult pairs one monitored location with its scored result.
type LocationResult struct {
	LocationID string          `json:"location_id"`
	Name       string          `json:"name"`
	Region     string          `json:"region"`
	Result     RiskResult      `json:"result"`
	Reservoir  *ReservoirMatch `json:"reservoir,omitempty"`
	Rain24h    float64         `json:"rain_24h"`
	Predicted  float64         `json:"predicted_rain_mm"` // next-24h forecast sum
}

// RegionRollup aggregates scored locations for one administrative region.
type RegionRollup struct {
	Region           string    `json:"region"`
	Locations        int       `json:"locations"`
	AvgFloodScore    float64   `json:"avg_flood_score"`
	AvgLandslide     float64   `json:"avg_landslide_score"`
	AvgRain24h       float64   `json:"avg_rain_24h"`
	AvgPredictedRain float64   `json:"avg_predicted_rain_mm"`
	Level            RiskLevel `json:"level"` // band of max(avg flood, avg landslide)
}

// HighRiskZone is one ranked entry in the high-risk zone list. Inclusion is
// per-location, so a hotspot is never hidden by its region's average.
type HighRiskZone struct {
	LocationID     string    `json:"location_id"`
	Name           string    `json:"name"`
	Region         string    `json:"region"`
	Severity       RiskLevel `json:"severity"` // max of the two levels
	FloodScore     int       `json:"flood_score"`
	LandslideScore int       `json:"landslide_score"`
	DominantRisk   string    `json:"dominant_risk"` // "flood" or "landslide"
}

// WetLocation is one entry in the rainfall prediction's wettest-location list.
type WetLocation struct {
	LocationID  string  `json:"location_id"`
	Name        string  `json:"name"`
	PredictedMM float64 `json:"predicted_mm"`
}

// RainfallPrediction summarizes the forecast series across the batch.
type RainfallPrediction struct {
	AvgPredictedMM float64            `json:"avg_predicted_mm"` // next-24h, batch-wide
	ByRegion       map[string]float64 `json:"by_region"`
	Wettest        []WetLocation      `json:"wettest"` // descending, capped
}

// BatchResult is the output of one analytics run over all monitored locations.
type BatchResult struct {
	RunID         string                  `json:"run_id"`
	GeneratedAt   time.Time               `json:"generated_at"`
	PerLocation   []LocationResult        `json:"per_location"`
	ByRegion      map[string]RegionRollup `json:"by_region"`
	HighRiskZones []HighRiskZone          `json:"high_risk_zones"`
	Rainfall      RainfallPrediction      `json:"rainfall_prediction"`
	DataSources   []string                `json:"data_sources"`
}
