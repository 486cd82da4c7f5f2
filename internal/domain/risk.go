package domain

// RiskLevel is the three-band classification used across all outputs.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// RiskBands holds the inclusive upper cut points for the LOW and MEDIUM bands.
// Everything above MediumMax is HIGH.
type RiskBands struct {
	LowMax    int `json:"low_max" mapstructure:"low_max"`
	MediumMax int `json:"medium_max" mapstructure:"medium_max"`
}

// DefaultBands returns the standard 0-33 / 34-66 / 67-100 banding.
func DefaultBands() RiskBands {
	return RiskBands{LowMax: 33, MediumMax: 66}
}

// LevelFor maps a 0-100 score into its band.
func (b RiskBands) LevelFor(score int) RiskLevel {
	switch {
	case score <= b.LowMax:
		return RiskLow
	case score <= b.MediumMax:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// FloodComponents are the named flood sub-indices, each in [0,100]. Always
// populated, for scoring and diagnostic transparency alike.
type FloodComponents struct {
	Intensity       float64 `json:"intensity"`
	Persistence     float64 `json:"persistence"`
	Saturation      float64 `json:"saturation"`
	ReservoirStress float64 `json:"reservoir_stress"`
	Anomaly         float64 `json:"anomaly"`
	Seismic         float64 `json:"seismic"`
	Lowland         float64 `json:"lowland"`
}

// LandslideComponents are the named landslide sub-indices, each in [0,100].
type LandslideComponents struct {
	Intensity   float64 `json:"intensity"`
	Duration    float64 `json:"duration"`
	Terrain     float64 `json:"terrain"`
	Seismic     float64 `json:"seismic"`
	Anomaly     float64 `json:"anomaly"`
	SpillStress float64 `json:"spill_stress"`
	ProneBoost  float64 `json:"prone_boost"`
}

// RiskComponents groups both component sets.
type RiskComponents struct {
	Flood     FloodComponents     `json:"flood"`
	Landslide LandslideComponents `json:"landslide"`
}

// RiskResult is the scored output for one location. Computed fresh per call;
// never persisted by the engine.
type RiskResult struct {
	FloodScore     int            `json:"flood_score"`     // 0-100
	LandslideScore int            `json:"landslide_score"` // 0-100
	Confidence     int            `json:"confidence"`      // 0-100, data completeness only
	FloodLevel     RiskLevel      `json:"flood_level"`
	LandslideLevel RiskLevel      `json:"landslide_level"`
	Components     RiskComponents `json:"components"`
}
