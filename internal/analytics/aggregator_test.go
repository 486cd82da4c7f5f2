package analytics_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flood-risk-engine/internal/analytics"
	"github.com/couchcryptid/flood-risk-engine/internal/domain"
	"github.com/couchcryptid/flood-risk-engine/internal/match"
	"github.com/couchcryptid/flood-risk-engine/internal/risk"
)

func f64(v float64) *float64 { return &v }

func newAggregator(cfg analytics.Config) *analytics.Aggregator {
	return analytics.NewAggregator(risk.DefaultConfig(), cfg, match.NewNameMatcher(0), slog.Default())
}

func testLocations() []domain.MonitoredLocation {
	return []domain.MonitoredLocation{
		{ID: "idukki", Name: "Idukki Dam", Region: "Kerala", Lat: 9.84, Lon: 76.97},
		{ID: "mettur", Name: "Mettur Dam", Region: "Tamil Nadu", Lat: 11.79, Lon: 77.80},
		{ID: "hirakud", Name: "Hirakud Dam", Region: "Odisha", Lat: 21.52, Lon: 83.85},
	}
}

func severeObservations() domain.ObservationSet {
	return domain.ObservationSet{
		Rainfall: map[string]*domain.RainfallSummary{
			"idukki": {
				LocationID: "idukki",
				Rain24h:    180,
				Rain72h:    350,
				Rain7d:     600,
				PeakHourly: 25,
				Forecast:   []domain.ForecastDay{{PrecipMM: 120}, {PrecipMM: 40}},
			},
			"mettur": {
				LocationID: "mettur",
				Rain24h:    20,
				Rain72h:    40,
				Rain7d:     60,
				Forecast:   []domain.ForecastDay{{PrecipMM: 10}},
			},
		},
		Reservoirs: []domain.ReservoirRecord{
			{Name: "Idukki", Region: "Kerala", LevelPercent: f64(96), InflowCusecs: f64(900), OutflowCusecs: f64(400)},
			{Name: "Mettur", Region: "Tamil Nadu", LevelPercent: f64(55)},
		},
		Elevations: map[string]float64{"idukki": 40},
		Baselines:  map[string]float64{"idukki": 1.5},
		Sources:    []string{"imd", "wris"},
	}
}

func TestRunBatch_ScoresEveryLocation(t *testing.T) {
	agg := newAggregator(analytics.DefaultConfig())

	batch := agg.RunBatch(testLocations(), severeObservations())

	require.Len(t, batch.PerLocation, 3)
	byID := make(map[string]domain.LocationResult)
	for _, r := range batch.PerLocation {
		byID[r.LocationID] = r
	}

	// Heavy rain plus a stressed reservoir must outrank a quiet site.
	assert.Greater(t, byID["idukki"].Result.FloodScore, byID["hirakud"].Result.FloodScore)
	assert.NotNil(t, byID["idukki"].Reservoir)
	assert.NotNil(t, byID["mettur"].Reservoir)

	// No data for hirakud at all: scored anyway, no reservoir attached.
	assert.Nil(t, byID["hirakud"].Reservoir)
	assert.Equal(t, []string{"imd", "wris"}, batch.DataSources)
}

func TestRunBatch_PreservesLocationOrder(t *testing.T) {
	agg := newAggregator(analytics.Config{ChunkSize: 1})
	locations := testLocations()

	batch := agg.RunBatch(locations, severeObservations())

	require.Len(t, batch.PerLocation, len(locations))
	for i, loc := range locations {
		assert.Equal(t, loc.ID, batch.PerLocation[i].LocationID)
	}
}

func TestRunBatch_RegionRollups(t *testing.T) {
	agg := newAggregator(analytics.DefaultConfig())

	batch := agg.RunBatch(testLocations(), severeObservations())

	require.Contains(t, batch.ByRegion, "Kerala")
	require.Contains(t, batch.ByRegion, "Tamil Nadu")
	require.Contains(t, batch.ByRegion, "Odisha")

	kerala := batch.ByRegion["Kerala"]
	assert.Equal(t, 1, kerala.Locations)
	assert.InDelta(t, 180.0, kerala.AvgRain24h, 0.001)
	assert.InDelta(t, 120.0, kerala.AvgPredictedRain, 0.001)
	assert.Greater(t, kerala.AvgFloodScore, batch.ByRegion["Odisha"].AvgFloodScore)
}

func TestRunBatch_HighRiskZonesRankedBySeverityThenScore(t *testing.T) {
	agg := newAggregator(analytics.DefaultConfig())

	batch := agg.RunBatch(testLocations(), severeObservations())

	require.NotEmpty(t, batch.HighRiskZones)
	assert.Equal(t, "idukki", batch.HighRiskZones[0].LocationID)

	// Ordering invariant: severity rank never increases down the list, and
	// within a tier the max score never increases.
	rank := map[domain.RiskLevel]int{domain.RiskHigh: 2, domain.RiskMedium: 1, domain.RiskLow: 0}
	for i := 1; i < len(batch.HighRiskZones); i++ {
		prev, cur := batch.HighRiskZones[i-1], batch.HighRiskZones[i]
		require.GreaterOrEqual(t, rank[prev.Severity], rank[cur.Severity])
		if prev.Severity == cur.Severity {
			prevMax := max(prev.FloodScore, prev.LandslideScore)
			curMax := max(cur.FloodScore, cur.LandslideScore)
			assert.GreaterOrEqual(t, prevMax, curMax)
		}
	}

	// Every listed zone carries a non-LOW side.
	for _, z := range batch.HighRiskZones {
		assert.NotEqual(t, domain.RiskLow, z.Severity)
		assert.Contains(t, []string{"flood", "landslide"}, z.DominantRisk)
	}
}

func TestRunBatch_QuietBatchHasNoHighRiskZones(t *testing.T) {
	agg := newAggregator(analytics.DefaultConfig())

	batch := agg.RunBatch(testLocations(), domain.ObservationSet{
		Rainfall: map[string]*domain.RainfallSummary{
			"idukki": {LocationID: "idukki", Rain24h: 2},
		},
	})

	assert.Empty(t, batch.HighRiskZones)
}

func TestRunBatch_RainfallPrediction(t *testing.T) {
	agg := newAggregator(analytics.Config{WettestLimit: 2})

	batch := agg.RunBatch(testLocations(), severeObservations())
	pred := batch.Rainfall

	// (120 + 10 + 0) / 3
	assert.InDelta(t, 43.333, pred.AvgPredictedMM, 0.01)
	assert.InDelta(t, 120.0, pred.ByRegion["Kerala"], 0.001)
	assert.InDelta(t, 10.0, pred.ByRegion["Tamil Nadu"], 0.001)

	require.Len(t, pred.Wettest, 2)
	assert.Equal(t, "idukki", pred.Wettest[0].LocationID)
	assert.InDelta(t, 120.0, pred.Wettest[0].PredictedMM, 0.001)
}

func TestCalibration_ScalesAndCaps(t *testing.T) {
	loc := domain.MonitoredLocation{ID: "idukki", Name: "Idukki Dam", Region: "Kerala"}
	bundle := domain.FeatureBundle{
		Location: loc,
		Rainfall: &domain.RainfallSummary{Rain24h: 180, Rain72h: 350, Rain7d: 600, PeakHourly: 25},
	}

	neutral := newAggregator(analytics.DefaultConfig()).Score(bundle)
	boosted := newAggregator(analytics.Config{FloodCalibration: 1.5, LandslideCalibration: 1.5}).Score(bundle)

	assert.GreaterOrEqual(t, boosted.FloodScore, neutral.FloodScore)
	assert.LessOrEqual(t, boosted.FloodScore, 100)
	assert.LessOrEqual(t, boosted.LandslideScore, 100)

	// Levels are re-derived from the calibrated scores.
	assert.Equal(t, boosted.FloodLevel, domain.DefaultBands().LevelFor(boosted.FloodScore))
}
