package domain

import "time"

// AssessmentDiagnostics exposes the inputs behind the headline numbers so
// dashboard users can see what the scores were built from.
type AssessmentDiagnostics struct {
	LocationsScored int            `json:"locations_scored"`
	AvgComponents   RiskComponents `json:"avg_components"`
	DataSources     []string       `json:"data_sources"`
	Degraded        bool           `json:"degraded"`
	Error           string         `json:"error,omitempty"`
}

// Assessment is the single top-level "current assessment" snapshot returned to
// the transport layer. Always structurally valid, including the degraded case.
//
// Confidence reflects input completeness and source diversity only, not
// forecast accuracy.
type Assessment struct {
	RunID           string                `json:"run_id"`
	GeneratedAt     time.Time             `json:"generated_at"`
	FloodScore      int                   `json:"flood_score"`
	LandslideScore  int                   `json:"landslide_score"`
	Confidence      int                   `json:"confidence"`
	OverallLevel    RiskLevel             `json:"overall_level"`
	Message         string                `json:"message"`
	Recommendations []string              `json:"recommendations"`
	Diagnostics     AssessmentDiagnostics `json:"diagnostics"`
}
