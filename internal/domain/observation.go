package domain

import (
	"context"
	"time"
)

// HourlyPoint is one hourly precipitation sample, past or forecast.
type HourlyPoint struct {
	Time     time.Time `json:"time"`
	PrecipMM float64   `json:"precip_mm"`
}

// ForecastDay is one day of the multi-day precipitation forecast.
type ForecastDay struct {
	Date     time.Time `json:"date"`
	PrecipMM float64   `json:"precip_mm"`
}

// RainfallSummary holds per-location precipitation aggregates produced by the
// weather collector.
type RainfallSummary struct {
	LocationID   string        `json:"location_id"`
	Rain24h      float64       `json:"rain_24h"` // mm
	Rain72h      float64       `json:"rain_72h"`
	Rain7d       float64       `json:"rain_7d"`
	PeakHourly   float64       `json:"peak_hourly"`        // max hourly rate in the trailing 24h, mm
	Hourly       []HourlyPoint `json:"hourly,omitempty"`   // nowcast windows
	Forecast     []ForecastDay `json:"forecast,omitempty"` // multi-day forecast
	ElevationM   *float64      `json:"elevation_m,omitempty"`
	Source       string        `json:"source,omitempty"`
	CollectedAt  time.Time     `json:"collected_at"`
}

// SeismicEvent is a single earthquake report from the seismic feed.
type SeismicEvent struct {
	Magnitude float64   `json:"magnitude"`
	DepthKM   float64   `json:"depth_km"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Time      time.Time `json:"time"`
	Source    string    `json:"source,omitempty"`
}

// ReservoirRecord is one normalized reservoir telemetry row. LevelPercent is
// derived from whichever of the raw level/percentage/storage fields the
// dashboard exposed; nil pointers mean the field was absent upstream.
type ReservoirRecord struct {
	Name          string    `json:"name"`
	Region        string    `json:"region,omitempty"`
	LevelPercent  *float64  `json:"level_percent,omitempty"` // 0-100
	InflowCusecs  *float64  `json:"inflow_cusecs,omitempty"`
	OutflowCusecs *float64  `json:"outflow_cusecs,omitempty"`
	StorageBCM    *float64  `json:"storage_bcm,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
	Source        string    `json:"source,omitempty"`
}

// ReservoirMatch pairs a matched telemetry record with the matcher's
// similarity score.
type ReservoirMatch struct {
	Record ReservoirRecord `json:"record"`
	Score  float64         `json:"score"` // 0.0-1.0
}

// FeatureBundle is everything the risk formula sees for one location in one
// run. Any field but Location may be absent; scoring degrades per field.
type FeatureBundle struct {
	Location      MonitoredLocation
	Rainfall      *RainfallSummary
	SeismicEvents []SeismicEvent
	Reservoir     *ReservoirMatch
	ElevationM    *float64 // overrides Rainfall.ElevationM when set
	BaselineRate  *float64 // historical mm/hr baseline for the anomaly index
}

// Elevation returns the best available elevation for the bundle, or nil.
func (b FeatureBundle) Elevation() *float64 {
	if b.ElevationM != nil {
		return b.ElevationM
	}
	if b.Rainfall != nil {
		return b.Rainfall.ElevationM
	}
	return nil
}

// ObservationSet is the consistent copy of the latest observations handed to
// one run. Map keys are location IDs; seismic events and reservoir records are
// region-wide and matched per location.
type ObservationSet struct {
	Rainfall      map[string]*RainfallSummary
	SeismicEvents []SeismicEvent
	Reservoirs    []ReservoirRecord
	Elevations    map[string]float64
	Baselines     map[string]float64
	Sources       []string // distinct provenance tags, for diagnostics
}

// Empty reports whether the set carries no data at all. An empty set is the
// whole-batch failure case that produces a degraded assessment.
func (s ObservationSet) Empty() bool {
	return len(s.Rainfall) == 0 && len(s.SeismicEvents) == 0 && len(s.Reservoirs) == 0 &&
		len(s.Elevations) == 0 && len(s.Baselines) == 0
}

// RawObservation represents an unprocessed message from the observations topic.
type RawObservation struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// ObservationKind discriminates observation payloads on the wire.
type ObservationKind string

const (
	KindRainfall  ObservationKind = "rainfall"
	KindSeismic   ObservationKind = "seismic"
	KindReservoir ObservationKind = "reservoir"
	KindElevation ObservationKind = "elevation"
	KindBaseline  ObservationKind = "baseline"
)

// Observation is the parsed, kind-tagged form of a collector message. Exactly
// one payload pointer is set for a given kind.
type Observation struct {
	Kind       ObservationKind `json:"kind"`
	LocationID string          `json:"location_id,omitempty"` // empty for region-wide kinds (seismic, reservoir)
	Rainfall   *RainfallSummary
	Seismic    *SeismicEvent
	Reservoir  *ReservoirRecord
	ElevationM *float64
	Baseline   *float64
	ObservedAt time.Time
}
