package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// rawObservationRecord is the flat JSON structure produced by the collectors.
// Scalar fields from scraped dashboards arrive as strings in inconsistent
// formats; fields the collectors compute themselves are typed.
type rawObservationRecord struct {
	Kind       string `json:"Kind"`
	LocationID string `json:"LocationID"`
	Source     string `json:"Source"`

	// Rainfall payload.
	Rain24h    string        `json:"Rain24h"`
	Rain72h    string        `json:"Rain72h"`
	Rain7d     string        `json:"Rain7d"`
	PeakHourly string        `json:"PeakHourly"`
	Hourly     []HourlyPoint `json:"Hourly"`
	Forecast   []ForecastDay `json:"Forecast"`

	// Seismic payload.
	Magnitude  string `json:"Magnitude"`
	Depth      string `json:"Depth"`
	Lat        string `json:"Lat"`
	Lon        string `json:"Lon"`
	OriginTime string `json:"OriginTime"`

	// Reservoir payload. Level/Percentage/Storage/Capacity vary by dashboard.
	Name       string `json:"Name"`
	Region     string `json:"Region"`
	Level      string `json:"Level"`
	Percentage string `json:"Percentage"`
	Storage    string `json:"Storage"`
	Capacity   string `json:"Capacity"`
	Inflow     string `json:"Inflow"`
	Outflow    string `json:"Outflow"`

	// Elevation / baseline payloads.
	Elevation    string `json:"Elevation"`
	BaselineRate string `json:"BaselineRate"`
}

// ParseObservation deserializes a RawObservation's value into a kind-tagged
// Observation. Individual malformed fields degrade to zero values; only an
// unparseable envelope or unknown kind is an error.
func ParseObservation(raw RawObservation) (Observation, error) {
	var rec rawObservationRecord
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return Observation{}, fmt.Errorf("parse observation: %w", err)
	}

	obs := Observation{
		Kind:       ObservationKind(rec.Kind),
		LocationID: rec.LocationID,
		ObservedAt: raw.Timestamp,
	}

	switch obs.Kind {
	case KindRainfall:
		obs.Rainfall = &RainfallSummary{
			LocationID:  rec.LocationID,
			Rain24h:     parseFloatOrZero(rec.Rain24h),
			Rain72h:     parseFloatOrZero(rec.Rain72h),
			Rain7d:      parseFloatOrZero(rec.Rain7d),
			PeakHourly:  parseFloatOrZero(rec.PeakHourly),
			Hourly:      rec.Hourly,
			Forecast:    rec.Forecast,
			ElevationM:  parseOptionalFloat(rec.Elevation),
			Source:      rec.Source,
			CollectedAt: raw.Timestamp,
		}
	case KindSeismic:
		obs.Seismic = &SeismicEvent{
			Magnitude: parseFloatOrZero(rec.Magnitude),
			DepthKM:   parseFloatOrZero(rec.Depth),
			Lat:       parseFloatOrZero(rec.Lat),
			Lon:       parseFloatOrZero(rec.Lon),
			Time:      parseTimeOrDefault(rec.OriginTime, raw.Timestamp),
			Source:    rec.Source,
		}
	case KindReservoir:
		obs.Reservoir = &ReservoirRecord{
			Name:          rec.Name,
			Region:        rec.Region,
			LevelPercent:  normalizeLevelPercent(rec.Level, rec.Percentage, rec.Storage, rec.Capacity),
			InflowCusecs:  parseOptionalFloat(rec.Inflow),
			OutflowCusecs: parseOptionalFloat(rec.Outflow),
			StorageBCM:    parseOptionalFloat(rec.Storage),
			UpdatedAt:     raw.Timestamp,
			Source:        rec.Source,
		}
	case KindElevation:
		obs.ElevationM = parseOptionalFloat(rec.Elevation)
	case KindBaseline:
		obs.Baseline = parseOptionalFloat(rec.BaselineRate)
	default:
		return Observation{}, fmt.Errorf("parse observation: unknown kind %q", rec.Kind)
	}

	return obs, nil
}

// parseFloatOrZero parses a string as float64, returning 0 on failure.
func parseFloatOrZero(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseOptionalFloat distinguishes "absent" from "zero": an empty or
// malformed field returns nil rather than 0 so downstream scoring can apply
// its neutral default instead of treating the value as measured.
func parseOptionalFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseTimeOrDefault parses an RFC3339 timestamp, falling back to def.
func parseTimeOrDefault(s string, def time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return def
	}
	return t
}

// normalizeLevelPercent derives a 0-100 level percentage from whichever raw
// fields the dashboard exposed, in preference order:
//
//  1. an explicit percentage column,
//  2. storage over capacity,
//  3. a level column that already reads as a percentage (<= 100).
//
// A level value above 100 is a gauge height in feet and cannot be normalized
// without the reservoir's full level, so it yields nil (absent).
func normalizeLevelPercent(level, percentage, storage, capacity string) *float64 {
	if p := parseOptionalFloat(percentage); p != nil {
		v := clampPercent(*p)
		return &v
	}
	s, c := parseOptionalFloat(storage), parseOptionalFloat(capacity)
	if s != nil && c != nil && *c > 0 {
		v := clampPercent(*s / *c * 100)
		return &v
	}
	if l := parseOptionalFloat(level); l != nil && *l >= 0 && *l <= 100 {
		return l
	}
	return nil
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
