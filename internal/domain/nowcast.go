package domain

import "time"

// TrendPoint is one sample in a location's rolling short-horizon history.
type TrendPoint struct {
	Score int       `json:"score"`
	Time  time.Time `json:"time"`
}

// NowcastWindows are the near-term rainfall aggregates extracted from the
// hourly series, in millimetres.
type NowcastWindows struct {
	Next1h       float64 `json:"next_1h"`
	Next3h       float64 `json:"next_3h"`
	Prev3h       float64 `json:"prev_3h"`
	Trailing6h   float64 `json:"trailing_6h"`
	Acceleration float64 `json:"acceleration"` // max(0, next3h - prev3h)
}

// LocationNowcast is the 1-hour-horizon result for one location.
type LocationNowcast struct {
	LocationID         string         `json:"location_id"`
	Name               string         `json:"name"`
	FloodScore1h       int            `json:"flood_score_1h"`
	LandslideScore1h   int            `json:"landslide_score_1h"`
	Overall1h          int            `json:"overall_1h"` // max of the two
	ConsecutiveRising  int            `json:"consecutive_rising"`
	WarningTriggered   bool           `json:"warning_triggered"`
	EmergencyTriggered bool           `json:"emergency_triggered"`
	Windows            NowcastWindows `json:"windows"`
}

// NowcastResult is the output of one nowcast run.
type NowcastResult struct {
	RunID          string            `json:"run_id"`
	GeneratedAt    time.Time         `json:"generated_at"`
	PerLocation    []LocationNowcast `json:"per_location"`
	WarningCount   int               `json:"warning_count"`
	EmergencyCount int               `json:"emergency_count"`
	AlertLevel     RiskLevel         `json:"alert_level"` // HIGH/MEDIUM/LOW system-wide
}
