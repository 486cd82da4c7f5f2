// Package risk implements the feature normalizers and the flood/landslide
// scoring formula. Everything here is pure and total: missing inputs degrade
// to neutral or conservative defaults and no function returns an error.
package risk

import "github.com/couchcryptid/flood-risk-engine/internal/domain"

// FloodWeights are the linear-combination weights for the flood score.
// They must sum to 1.0.
type FloodWeights struct {
	Intensity   float64 `mapstructure:"intensity"`
	Persistence float64 `mapstructure:"persistence"`
	Saturation  float64 `mapstructure:"saturation"`
	Reservoir   float64 `mapstructure:"reservoir"`
	Anomaly     float64 `mapstructure:"anomaly"`
	Seismic     float64 `mapstructure:"seismic"`
	Lowland     float64 `mapstructure:"lowland"`
}

// LandslideWeights are the linear-combination weights for the landslide score.
// They must sum to 1.0.
type LandslideWeights struct {
	Intensity float64 `mapstructure:"intensity"`
	Duration  float64 `mapstructure:"duration"`
	Terrain   float64 `mapstructure:"terrain"`
	Seismic   float64 `mapstructure:"seismic"`
	Anomaly   float64 `mapstructure:"anomaly"`
	Spill     float64 `mapstructure:"spill"`
	Prone     float64 `mapstructure:"prone"`
}

// Config carries every numeric constant the formula uses. The defaults are
// empirically tuned; callers calibrate via configuration, never by editing
// the scoring code.
type Config struct {
	// Normalizer scales. A divisor is millimetres per index point.
	IntensityRainDivisor float64 `mapstructure:"intensity_rain_divisor"` // rain_24h mm for index 100 = divisor*100
	IntensityPeakWeight  float64 `mapstructure:"intensity_peak_weight"`  // index points per mm of peak hourly rain
	PersistenceDivisor   float64 `mapstructure:"persistence_divisor"`    // rain_72h
	SaturationDivisor    float64 `mapstructure:"saturation_divisor"`     // rain_7d
	TerrainElevDivisor   float64 `mapstructure:"terrain_elev_divisor"`   // metres per landslide terrain point
	LowlandElevDivisor   float64 `mapstructure:"lowland_elev_divisor"`   // metres per lost lowland point
	NeutralIndex         float64 `mapstructure:"neutral_index"`          // value used when an input is unknown

	// Seismic trigger box.
	SeismicMagThreshold float64 `mapstructure:"seismic_mag_threshold"` // significance floor, Richter
	SeismicBoxDegrees   float64 `mapstructure:"seismic_box_degrees"`   // half-width of the lat/lon box
	SeismicEventWeight  float64 `mapstructure:"seismic_event_weight"`  // index points per significant event

	// Reservoir stress.
	StressLevelRef    float64 `mapstructure:"stress_level_ref"`    // level %% where stress starts
	SpillLevelRef     float64 `mapstructure:"spill_level_ref"`     // level %% where spill stress starts
	StressLevelWeight float64 `mapstructure:"stress_level_weight"` // blend weight for level stress
	StressFlowWeight  float64 `mapstructure:"stress_flow_weight"`  // blend weight for inflow/outflow stress

	// Linear combinations and logistic squash.
	Flood              FloodWeights     `mapstructure:"flood"`
	Landslide          LandslideWeights `mapstructure:"landslide"`
	FloodCenter        float64          `mapstructure:"flood_center"`
	FloodSteepness     float64          `mapstructure:"flood_steepness"`
	LandslideCenter    float64          `mapstructure:"landslide_center"`
	LandslideSteepness float64          `mapstructure:"landslide_steepness"`

	// Administrative regions receiving the landslide prone boost. Static
	// configuration, never inferred.
	ProneRegions []string `mapstructure:"prone_regions"`

	// Confidence. A data-completeness signal, not predictive skill.
	ConfidenceBase        float64 `mapstructure:"confidence_base"`
	CompletenessWeight    float64 `mapstructure:"completeness_weight"`
	SourceDiversityWeight float64 `mapstructure:"source_diversity_weight"`

	Bands domain.RiskBands `mapstructure:"bands"`
}

// DefaultConfig returns the tuned defaults. The relative structure matters
// more than the exact constants: intensity dominates flood, intensity plus
// duration plus terrain dominate landslide.
func DefaultConfig() Config {
	return Config{
		IntensityRainDivisor: 2.0,
		IntensityPeakWeight:  2.5,
		PersistenceDivisor:   4.0,
		SaturationDivisor:    7.0,
		TerrainElevDivisor:   20.0,
		LowlandElevDivisor:   5.0,
		NeutralIndex:         50,

		SeismicMagThreshold: 4.5,
		SeismicBoxDegrees:   2.0,
		SeismicEventWeight:  25,

		StressLevelRef:    60,
		SpillLevelRef:     80,
		StressLevelWeight: 0.7,
		StressFlowWeight:  0.3,

		Flood: FloodWeights{
			Intensity:   0.25,
			Persistence: 0.15,
			Saturation:  0.15,
			Reservoir:   0.15,
			Anomaly:     0.10,
			Seismic:     0.05,
			Lowland:     0.15,
		},
		Landslide: LandslideWeights{
			Intensity: 0.25,
			Duration:  0.15,
			Terrain:   0.15,
			Seismic:   0.20,
			Anomaly:   0.10,
			Spill:     0.10,
			Prone:     0.05,
		},
		FloodCenter:        40,
		FloodSteepness:     0.08,
		LandslideCenter:    42,
		LandslideSteepness: 0.10,

		ConfidenceBase:        30,
		CompletenessWeight:    0.5,
		SourceDiversityWeight: 4,

		Bands: domain.DefaultBands(),
	}
}
