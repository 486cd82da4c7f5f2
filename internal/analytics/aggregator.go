// Package analytics runs the risk formula across all monitored locations and
// assembles rollups, rankings, and the top-level assessment.
package analytics

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/couchcryptid/flood-risk-engine/internal/domain"
	"github.com/couchcryptid/flood-risk-engine/internal/match"
	"github.com/couchcryptid/flood-risk-engine/internal/risk"
)

// Config carries aggregator tuning.
type Config struct {
	// ChunkSize bounds how many locations are scored concurrently.
	ChunkSize int `mapstructure:"chunk_size"`

	// Post-hoc calibration multipliers, applied after scoring and capped at
	// 100. External tuning without re-deriving formula weights.
	FloodCalibration     float64 `mapstructure:"flood_calibration"`
	LandslideCalibration float64 `mapstructure:"landslide_calibration"`

	// WettestLimit caps the rainfall prediction's wettest-location list.
	WettestLimit int `mapstructure:"wettest_limit"`
}

// DefaultConfig returns neutral calibration and modest parallelism.
func DefaultConfig() Config {
	return Config{
		ChunkSize:            8,
		FloodCalibration:     1.0,
		LandslideCalibration: 1.0,
		WettestLimit:         5,
	}
}

// Aggregator fans the risk formula out over a batch of locations.
type Aggregator struct {
	riskCfg risk.Config
	cfg     Config
	matcher match.Matcher
	logger  *slog.Logger
}

// NewAggregator creates an Aggregator.
func NewAggregator(riskCfg risk.Config, cfg Config, matcher match.Matcher, logger *slog.Logger) *Aggregator {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultConfig().ChunkSize
	}
	return &Aggregator{riskCfg: riskCfg, cfg: cfg, matcher: matcher, logger: logger}
}

// RunBatch scores every monitored location against the observation set and
// builds the per-region rollups, the ranked high-risk zone list, and the
// rainfall prediction summary. Locations with missing sources still get
// scored from whatever data exists.
func (a *Aggregator) RunBatch(locations []domain.MonitoredLocation, data domain.ObservationSet) domain.BatchResult {
	results := make([]domain.LocationResult, len(locations))

	// Bounded fan-out: per-location scoring is independent, but chunks
	// keep memory and any rate-limited lookups in check.
	sem := make(chan struct{}, a.cfg.ChunkSize)
	var wg sync.WaitGroup
	for i, loc := range locations {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, loc domain.MonitoredLocation) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = a.scoreLocation(loc, data)
		}(i, loc)
	}
	wg.Wait()

	return domain.BatchResult{
		PerLocation:   results,
		ByRegion:      a.rollupByRegion(results),
		HighRiskZones: a.rankHighRiskZones(results),
		Rainfall:      a.rainfallPrediction(results),
		DataSources:   data.Sources,
	}
}

// Score computes the risk result for a single prepared feature bundle. This
// is the narrow entry point the transport layer uses for ad-hoc scoring.
func (a *Aggregator) Score(bundle domain.FeatureBundle) domain.RiskResult {
	return a.calibrate(a.riskCfg.Score(bundle))
}

func (a *Aggregator) scoreLocation(loc domain.MonitoredLocation, data domain.ObservationSet) domain.LocationResult {
	bundle := domain.FeatureBundle{
		Location:      loc,
		Rainfall:      data.Rainfall[loc.ID],
		SeismicEvents: data.SeismicEvents,
	}
	if elev, ok := data.Elevations[loc.ID]; ok {
		bundle.ElevationM = &elev
	}
	if base, ok := data.Baselines[loc.ID]; ok {
		bundle.BaselineRate = &base
	}
	if m, ok := a.matcher.Match(loc, data.Reservoirs); ok {
		bundle.Reservoir = &m
	}

	result := a.calibrate(a.riskCfg.Score(bundle))

	lr := domain.LocationResult{
		LocationID: loc.ID,
		Name:       loc.Name,
		Region:     loc.Region,
		Result:     result,
		Reservoir:  bundle.Reservoir,
	}
	if bundle.Rainfall != nil {
		lr.Rain24h = bundle.Rainfall.Rain24h
		lr.Predicted = predictedNext24h(bundle.Rainfall.Forecast)
	}
	return lr
}

// calibrate applies the post-hoc multipliers, caps at 100, and re-derives the
// band levels.
func (a *Aggregator) calibrate(r domain.RiskResult) domain.RiskResult {
	r.FloodScore = scale(r.FloodScore, a.cfg.FloodCalibration)
	r.LandslideScore = scale(r.LandslideScore, a.cfg.LandslideCalibration)
	r.FloodLevel = a.riskCfg.Bands.LevelFor(r.FloodScore)
	r.LandslideLevel = a.riskCfg.Bands.LevelFor(r.LandslideScore)
	return r
}

func scale(score int, factor float64) int {
	if factor <= 0 || factor == 1.0 {
		return score
	}
	v := int(float64(score)*factor + 0.5)
	if v > 100 {
		return 100
	}
	return v
}

// predictedNext24h takes the first forecast day as the next-24h estimate.
func predictedNext24h(forecast []domain.ForecastDay) float64 {
	if len(forecast) == 0 {
		return 0
	}
	return forecast[0].PrecipMM
}

func (a *Aggregator) rollupByRegion(results []domain.LocationResult) map[string]domain.RegionRollup {
	type acc struct {
		n                                 int
		flood, landslide, rain, predicted float64
	}
	byRegion := make(map[string]*acc)
	for _, r := range results {
		ac := byRegion[r.Region]
		if ac == nil {
			ac = &acc{}
			byRegion[r.Region] = ac
		}
		ac.n++
		ac.flood += float64(r.Result.FloodScore)
		ac.landslide += float64(r.Result.LandslideScore)
		ac.rain += r.Rain24h
		ac.predicted += r.Predicted
	}

	rollups := make(map[string]domain.RegionRollup, len(byRegion))
	for region, ac := range byRegion {
		n := float64(ac.n)
		avgFlood := ac.flood / n
		avgLandslide := ac.landslide / n
		maxAvg := avgFlood
		if avgLandslide > maxAvg {
			maxAvg = avgLandslide
		}
		rollups[region] = domain.RegionRollup{
			Region:           region,
			Locations:        ac.n,
			AvgFloodScore:    avgFlood,
			AvgLandslide:     avgLandslide,
			AvgRain24h:       ac.rain / n,
			AvgPredictedRain: ac.predicted / n,
			Level:            a.riskCfg.Bands.LevelFor(int(maxAvg + 0.5)),
		}
	}
	return rollups
}

// rankHighRiskZones includes every location whose flood or landslide level is
// not LOW. Inclusion is per-location, never per-region-average, so individual
// hotspots are not hidden. HIGH-severity entries sort before MEDIUM; within a
// tier, descending max score.
func (a *Aggregator) rankHighRiskZones(results []domain.LocationResult) []domain.HighRiskZone {
	zones := make([]domain.HighRiskZone, 0)
	for _, r := range results {
		if r.Result.FloodLevel == domain.RiskLow && r.Result.LandslideLevel == domain.RiskLow {
			continue
		}
		severity := r.Result.FloodLevel
		dominant := "flood"
		if levelRank(r.Result.LandslideLevel) > levelRank(severity) {
			severity = r.Result.LandslideLevel
		}
		if r.Result.LandslideScore > r.Result.FloodScore {
			dominant = "landslide"
		}
		zones = append(zones, domain.HighRiskZone{
			LocationID:     r.LocationID,
			Name:           r.Name,
			Region:         r.Region,
			Severity:       severity,
			FloodScore:     r.Result.FloodScore,
			LandslideScore: r.Result.LandslideScore,
			DominantRisk:   dominant,
		})
	}

	sort.SliceStable(zones, func(i, j int) bool {
		if zones[i].Severity != zones[j].Severity {
			return levelRank(zones[i].Severity) > levelRank(zones[j].Severity)
		}
		return maxScore(zones[i]) > maxScore(zones[j])
	})
	return zones
}

func levelRank(l domain.RiskLevel) int {
	switch l {
	case domain.RiskHigh:
		return 2
	case domain.RiskMedium:
		return 1
	default:
		return 0
	}
}

func maxScore(z domain.HighRiskZone) int {
	if z.LandslideScore > z.FloodScore {
		return z.LandslideScore
	}
	return z.FloodScore
}

func (a *Aggregator) rainfallPrediction(results []domain.LocationResult) domain.RainfallPrediction {
	pred := domain.RainfallPrediction{ByRegion: make(map[string]float64)}
	if len(results) == 0 {
		return pred
	}

	type acc struct {
		n   int
		sum float64
	}
	byRegion := make(map[string]*acc)
	total := 0.0
	wettest := make([]domain.WetLocation, 0, len(results))

	for _, r := range results {
		total += r.Predicted
		ac := byRegion[r.Region]
		if ac == nil {
			ac = &acc{}
			byRegion[r.Region] = ac
		}
		ac.n++
		ac.sum += r.Predicted
		wettest = append(wettest, domain.WetLocation{
			LocationID:  r.LocationID,
			Name:        r.Name,
			PredictedMM: r.Predicted,
		})
	}

	pred.AvgPredictedMM = total / float64(len(results))
	for region, ac := range byRegion {
		pred.ByRegion[region] = ac.sum / float64(ac.n)
	}

	sort.SliceStable(wettest, func(i, j int) bool {
		return wettest[i].PredictedMM > wettest[j].PredictedMM
	})
	limit := a.cfg.WettestLimit
	if limit <= 0 {
		limit = DefaultConfig().WettestLimit
	}
	if len(wettest) > limit {
		wettest = wettest[:limit]
	}
	pred.Wettest = wettest
	return pred
}
