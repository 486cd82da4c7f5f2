package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flood-risk-engine/internal/domain"
)

var receivedAt = time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)

func rawObservation(payload string) domain.RawObservation {
	return domain.RawObservation{Value: []byte(payload), Timestamp: receivedAt}
}

func TestParseObservation_Rainfall(t *testing.T) {
	raw := rawObservation(`{
		"Kind": "rainfall",
		"LocationID": "idukki",
		"Source": "imd",
		"Rain24h": "142.6",
		"Rain72h": "301",
		"Rain7d": "512.4",
		"PeakHourly": "22.1",
		"Elevation": "820",
		"Hourly": [{"time": "2026-08-30T13:00:00Z", "precip_mm": 8.5}],
		"Forecast": [{"date": "2026-08-31T00:00:00Z", "precip_mm": 60}]
	}`)

	obs, err := domain.ParseObservation(raw)
	require.NoError(t, err)

	assert.Equal(t, domain.KindRainfall, obs.Kind)
	assert.Equal(t, "idukki", obs.LocationID)
	require.NotNil(t, obs.Rainfall)
	assert.InDelta(t, 142.6, obs.Rainfall.Rain24h, 0.001)
	assert.InDelta(t, 301.0, obs.Rainfall.Rain72h, 0.001)
	assert.InDelta(t, 22.1, obs.Rainfall.PeakHourly, 0.001)
	require.NotNil(t, obs.Rainfall.ElevationM)
	assert.InDelta(t, 820.0, *obs.Rainfall.ElevationM, 0.001)
	require.Len(t, obs.Rainfall.Hourly, 1)
	assert.InDelta(t, 8.5, obs.Rainfall.Hourly[0].PrecipMM, 0.001)
	require.Len(t, obs.Rainfall.Forecast, 1)
	assert.Equal(t, "imd", obs.Rainfall.Source)
	assert.Equal(t, receivedAt, obs.Rainfall.CollectedAt)
}

func TestParseObservation_RainfallMalformedScalarsDegradeToZero(t *testing.T) {
	raw := rawObservation(`{
		"Kind": "rainfall",
		"LocationID": "idukki",
		"Rain24h": "n/a",
		"Rain72h": "",
		"Elevation": "unknown"
	}`)

	obs, err := domain.ParseObservation(raw)
	require.NoError(t, err)

	assert.Zero(t, obs.Rainfall.Rain24h)
	assert.Zero(t, obs.Rainfall.Rain72h)
	// Malformed elevation is absent, not zero metres.
	assert.Nil(t, obs.Rainfall.ElevationM)
}

func TestParseObservation_Seismic(t *testing.T) {
	raw := rawObservation(`{
		"Kind": "seismic",
		"Source": "ncs",
		"Magnitude": "5.2",
		"Depth": "10",
		"Lat": "9.9",
		"Lon": "76.5",
		"OriginTime": "2026-08-30T09:30:00Z"
	}`)

	obs, err := domain.ParseObservation(raw)
	require.NoError(t, err)

	require.NotNil(t, obs.Seismic)
	assert.InDelta(t, 5.2, obs.Seismic.Magnitude, 0.001)
	assert.InDelta(t, 10.0, obs.Seismic.DepthKM, 0.001)
	assert.Equal(t, time.Date(2026, time.August, 30, 9, 30, 0, 0, time.UTC), obs.Seismic.Time)
}

func TestParseObservation_SeismicBadOriginTimeFallsBack(t *testing.T) {
	raw := rawObservation(`{"Kind": "seismic", "Magnitude": "4.8", "OriginTime": "yesterday"}`)

	obs, err := domain.ParseObservation(raw)
	require.NoError(t, err)
	assert.Equal(t, receivedAt, obs.Seismic.Time)
}

func TestParseObservation_ReservoirLevelNormalization(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    *float64
	}{
		{
			"explicit percentage wins",
			`{"Kind": "reservoir", "Name": "Idukki", "Percentage": "92.5", "Level": "732"}`,
			f64(92.5),
		},
		{
			"storage over capacity",
			`{"Kind": "reservoir", "Name": "Idukki", "Storage": "1.5", "Capacity": "2.0"}`,
			f64(75),
		},
		{
			"level already a percentage",
			`{"Kind": "reservoir", "Name": "Idukki", "Level": "88"}`,
			f64(88),
		},
		{
			"gauge-height level cannot be normalized",
			`{"Kind": "reservoir", "Name": "Idukki", "Level": "732.4"}`,
			nil,
		},
		{
			"percentage clamped to 100",
			`{"Kind": "reservoir", "Name": "Idukki", "Percentage": "104"}`,
			f64(100),
		},
		{
			"no level data at all",
			`{"Kind": "reservoir", "Name": "Idukki"}`,
			nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			obs, err := domain.ParseObservation(rawObservation(tc.payload))
			require.NoError(t, err)
			require.NotNil(t, obs.Reservoir)
			if tc.want == nil {
				assert.Nil(t, obs.Reservoir.LevelPercent)
				return
			}
			require.NotNil(t, obs.Reservoir.LevelPercent)
			assert.InDelta(t, *tc.want, *obs.Reservoir.LevelPercent, 0.001)
		})
	}
}

func TestParseObservation_ReservoirFlows(t *testing.T) {
	raw := rawObservation(`{
		"Kind": "reservoir",
		"Name": "Mettur",
		"Region": "Tamil Nadu",
		"Inflow": "1200",
		"Outflow": "bad-value"
	}`)

	obs, err := domain.ParseObservation(raw)
	require.NoError(t, err)

	require.NotNil(t, obs.Reservoir.InflowCusecs)
	assert.InDelta(t, 1200.0, *obs.Reservoir.InflowCusecs, 0.001)
	assert.Nil(t, obs.Reservoir.OutflowCusecs)
	assert.Equal(t, "Tamil Nadu", obs.Reservoir.Region)
	assert.Equal(t, receivedAt, obs.Reservoir.UpdatedAt)
}

func TestParseObservation_ElevationAndBaseline(t *testing.T) {
	elev, err := domain.ParseObservation(rawObservation(`{"Kind": "elevation", "LocationID": "idukki", "Elevation": "815.2"}`))
	require.NoError(t, err)
	require.NotNil(t, elev.ElevationM)
	assert.InDelta(t, 815.2, *elev.ElevationM, 0.001)

	base, err := domain.ParseObservation(rawObservation(`{"Kind": "baseline", "LocationID": "idukki", "BaselineRate": "1.8"}`))
	require.NoError(t, err)
	require.NotNil(t, base.Baseline)
	assert.InDelta(t, 1.8, *base.Baseline, 0.001)
}

func TestParseObservation_Errors(t *testing.T) {
	_, err := domain.ParseObservation(rawObservation(`not json`))
	assert.Error(t, err)

	_, err = domain.ParseObservation(rawObservation(`{"Kind": "weather-balloon"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kind")

	_, err = domain.ParseObservation(rawObservation(`{}`))
	assert.Error(t, err)
}

func f64(v float64) *float64 { return &v }
