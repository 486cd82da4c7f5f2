package risk

import (
	"math"

	"github.com/couchcryptid/flood-risk-engine/internal/domain"
)

// ReservoirStress derives a 0-100 stress index from a matched telemetry
// record: how far the level percentage exceeds the reference threshold,
// blended with an inflow/outflow pressure term when flow data exists.
// No record, or a record with neither level nor flow data, yields 0 —
// absence of reservoir data must not inflate risk.
func (c Config) ReservoirStress(match *domain.ReservoirMatch) float64 {
	if match == nil {
		return 0
	}
	rec := match.Record

	levelStress := -1.0
	if rec.LevelPercent != nil {
		levelStress = clamp((*rec.LevelPercent - c.StressLevelRef) / (100 - c.StressLevelRef) * 100)
	}

	flowStress := -1.0
	if rec.InflowCusecs != nil && rec.OutflowCusecs != nil && *rec.OutflowCusecs > 0 {
		ratio := *rec.InflowCusecs / *rec.OutflowCusecs
		flowStress = clamp((ratio - 1) * 100)
	}

	switch {
	case levelStress >= 0 && flowStress >= 0:
		return clamp(c.StressLevelWeight*levelStress + c.StressFlowWeight*flowStress)
	case levelStress >= 0:
		return levelStress
	case flowStress >= 0:
		return flowStress
	default:
		return 0
	}
}

// SpillStress is the landslide-side reservoir term: stress from operating near
// spill level, where sudden releases saturate downstream slopes. A heuristic
// placeholder with no cited physical derivation.
func (c Config) SpillStress(match *domain.ReservoirMatch) float64 {
	if match == nil || match.Record.LevelPercent == nil {
		return 0
	}
	return clamp((*match.Record.LevelPercent - c.SpillLevelRef) / (100 - c.SpillLevelRef) * 100)
}

// ProneBoost returns the landslide prone-region sub-index: 100 for configured
// landslide-prone administrative regions, 0 otherwise. Membership is a static
// configuration list, never inferred.
func (c Config) ProneBoost(region string) float64 {
	for _, r := range c.ProneRegions {
		if r == region {
			return 100
		}
	}
	return 0
}

// Score computes the flood and landslide risk for one feature bundle. It is a
// pure function of its input: an entirely empty bundle returns the neutral
// minimal result (scores near the formula floor, confidence at its base)
// rather than failing.
func (c Config) Score(bundle domain.FeatureBundle) domain.RiskResult {
	var rain24, rain72, rain7d, peak float64
	if bundle.Rainfall != nil {
		rain24 = bundle.Rainfall.Rain24h
		rain72 = bundle.Rainfall.Rain72h
		rain7d = bundle.Rainfall.Rain7d
		peak = bundle.Rainfall.PeakHourly
	}
	elevation := bundle.Elevation()

	flood := domain.FloodComponents{
		Intensity:       c.RainIntensity(rain24, peak),
		Persistence:     c.Persistence(rain72),
		Saturation:      c.Saturation(rain7d),
		ReservoirStress: c.ReservoirStress(bundle.Reservoir),
		Anomaly:         c.AnomalyIndex(rain24, bundle.BaselineRate),
		Seismic:         c.SeismicIndex(bundle.Location, bundle.SeismicEvents),
		Lowland:         c.LowlandIndex(elevation),
	}
	landslide := domain.LandslideComponents{
		Intensity:   flood.Intensity,
		Duration:    flood.Persistence,
		Terrain:     c.TerrainIndex(elevation),
		Seismic:     flood.Seismic,
		Anomaly:     flood.Anomaly,
		SpillStress: c.SpillStress(bundle.Reservoir),
		ProneBoost:  c.ProneBoost(bundle.Location.Region),
	}

	floodLinear := c.Flood.Intensity*flood.Intensity +
		c.Flood.Persistence*flood.Persistence +
		c.Flood.Saturation*flood.Saturation +
		c.Flood.Reservoir*flood.ReservoirStress +
		c.Flood.Anomaly*flood.Anomaly +
		c.Flood.Seismic*flood.Seismic +
		c.Flood.Lowland*flood.Lowland

	landslideLinear := c.Landslide.Intensity*landslide.Intensity +
		c.Landslide.Duration*landslide.Duration +
		c.Landslide.Terrain*landslide.Terrain +
		c.Landslide.Seismic*landslide.Seismic +
		c.Landslide.Anomaly*landslide.Anomaly +
		c.Landslide.Spill*landslide.SpillStress +
		c.Landslide.Prone*landslide.ProneBoost

	floodScore := logistic(floodLinear, c.FloodCenter, c.FloodSteepness)
	landslideScore := logistic(landslideLinear, c.LandslideCenter, c.LandslideSteepness)

	return domain.RiskResult{
		FloodScore:     floodScore,
		LandslideScore: landslideScore,
		Confidence:     c.confidence(bundle),
		FloodLevel:     c.Bands.LevelFor(floodScore),
		LandslideLevel: c.Bands.LevelFor(landslideScore),
		Components: domain.RiskComponents{
			Flood:     flood,
			Landslide: landslide,
		},
	}
}

// logistic squashes a linear combination through a sigmoid centered near the
// formula's expected midpoint and returns a rounded 0-100 score.
func logistic(x, center, steepness float64) int {
	v := 100 / (1 + math.Exp(-steepness*(x-center)))
	return int(math.Round(v))
}

// confidence blends input completeness with source diversity. It signals how
// much data backed the scores, never how accurate they are.
func (c Config) confidence(bundle domain.FeatureBundle) int {
	present, expected := 0, 7
	kinds := 0

	if bundle.Rainfall != nil {
		present++
		kinds++
		if len(bundle.Rainfall.Hourly) > 0 {
			present++
		}
		if len(bundle.Rainfall.Forecast) > 0 {
			present++
		}
	}
	if bundle.SeismicEvents != nil {
		present++
		kinds++
	}
	if bundle.Reservoir != nil {
		present++
		kinds++
	}
	if bundle.Elevation() != nil {
		present++
		kinds++
	}
	if bundle.BaselineRate != nil {
		present++
		kinds++
	}

	completeness := float64(present) / float64(expected) * 100
	v := c.ConfidenceBase + c.CompletenessWeight*completeness + c.SourceDiversityWeight*float64(kinds)
	return int(math.Round(clamp(v)))
}
