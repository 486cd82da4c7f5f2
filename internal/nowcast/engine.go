// Package nowcast computes 1-hour-horizon risk scores from near-term rainfall
// windows and raises warning/emergency flags gated on rising trends.
package nowcast

import (
	"math"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/flood-risk-engine/internal/domain"
	"github.com/couchcryptid/flood-risk-engine/internal/trend"
)

// Config carries the nowcast thresholds and blend constants. Supplied via
// configuration; the values here are documented defaults.
type Config struct {
	WarningThreshold   int `mapstructure:"warning_threshold"`
	EmergencyThreshold int `mapstructure:"emergency_threshold"`
	RisingChecks       int `mapstructure:"rising_checks"`

	// Dominant weight stays on the longer-horizon formula score; the
	// remainder goes to the near-term rainfall signals.
	LongWeightFlood     float64 `mapstructure:"long_weight_flood"`
	LongWeightLandslide float64 `mapstructure:"long_weight_landslide"`

	// Millimetres at which each near-term window saturates its sub-index.
	Next1hScale     float64 `mapstructure:"next_1h_scale"`
	Next3hScale     float64 `mapstructure:"next_3h_scale"`
	Trailing6hScale float64 `mapstructure:"trailing_6h_scale"`
	AccelScale      float64 `mapstructure:"accel_scale"`

	// Blend weights across the near-term sub-indices; sum to 1.0.
	WeightNext1h     float64 `mapstructure:"weight_next_1h"`
	WeightNext3h     float64 `mapstructure:"weight_next_3h"`
	WeightTrailing6h float64 `mapstructure:"weight_trailing_6h"`
	WeightAccel      float64 `mapstructure:"weight_accel"`
}

// DefaultConfig returns the documented default thresholds (warning 60,
// emergency 75, three rising checks).
func DefaultConfig() Config {
	return Config{
		WarningThreshold:   60,
		EmergencyThreshold: 75,
		RisingChecks:       3,

		LongWeightFlood:     0.6,
		LongWeightLandslide: 0.65,

		Next1hScale:     10,
		Next3hScale:     25,
		Trailing6hScale: 40,
		AccelScale:      15,

		WeightNext1h:     0.35,
		WeightNext3h:     0.30,
		WeightTrailing6h: 0.15,
		WeightAccel:      0.20,
	}
}

// Engine evaluates nowcasts against an injected trend tracker. The rising
// gate exists to keep a single-sample noise spike from escalating on its own.
type Engine struct {
	cfg     Config
	tracker *trend.Tracker
	clock   clockwork.Clock
}

// NewEngine creates an Engine. A nil clock falls back to the real one.
func NewEngine(cfg Config, tracker *trend.Tracker, clock clockwork.Clock) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Engine{cfg: cfg, tracker: tracker, clock: clock}
}

// Windows extracts the near-term rainfall aggregates from the hourly series,
// relative to the engine's clock. A missing series yields zero windows.
func (e *Engine) Windows(hourly []domain.HourlyPoint) domain.NowcastWindows {
	now := e.clock.Now()
	var w domain.NowcastWindows

	for _, p := range hourly {
		offset := p.Time.Sub(now)
		switch {
		case offset > 0:
			if offset <= 1*time.Hour {
				w.Next1h += p.PrecipMM
			}
			if offset <= 3*time.Hour {
				w.Next3h += p.PrecipMM
			}
		default:
			if offset > -3*time.Hour {
				w.Prev3h += p.PrecipMM
			}
			if offset > -6*time.Hour {
				w.Trailing6h += p.PrecipMM
			}
		}
	}

	w.Acceleration = math.Max(0, w.Next3h-w.Prev3h)
	return w
}

// ComputeLocation blends the near-term windows with the longer-horizon scores,
// appends the overall score to the location's trend history, and evaluates the
// escalation gates.
func (e *Engine) ComputeLocation(loc domain.MonitoredLocation, rainfall *domain.RainfallSummary, long domain.RiskResult) domain.LocationNowcast {
	var hourly []domain.HourlyPoint
	if rainfall != nil {
		hourly = rainfall.Hourly
	}
	w := e.Windows(hourly)

	nearTerm := e.cfg.WeightNext1h*windowIndex(w.Next1h, e.cfg.Next1hScale) +
		e.cfg.WeightNext3h*windowIndex(w.Next3h, e.cfg.Next3hScale) +
		e.cfg.WeightTrailing6h*windowIndex(w.Trailing6h, e.cfg.Trailing6hScale) +
		e.cfg.WeightAccel*windowIndex(w.Acceleration, e.cfg.AccelScale)

	flood1h := blend(float64(long.FloodScore), nearTerm, e.cfg.LongWeightFlood)
	landslide1h := blend(float64(long.LandslideScore), nearTerm, e.cfg.LongWeightLandslide)

	overall := flood1h
	if landslide1h > overall {
		overall = landslide1h
	}

	e.tracker.Append(loc.ID, overall)
	rising := e.tracker.ConsecutiveRising(loc.ID)

	minEmergencyRising := e.cfg.RisingChecks - 1
	if minEmergencyRising < 1 {
		minEmergencyRising = 1
	}

	return domain.LocationNowcast{
		LocationID:         loc.ID,
		Name:               loc.Name,
		FloodScore1h:       flood1h,
		LandslideScore1h:   landslide1h,
		Overall1h:          overall,
		ConsecutiveRising:  rising,
		WarningTriggered:   overall >= e.cfg.WarningThreshold && rising >= e.cfg.RisingChecks,
		EmergencyTriggered: overall >= e.cfg.EmergencyThreshold && rising >= minEmergencyRising,
		Windows:            w,
	}
}

// Run evaluates the nowcast for every location and derives the system-wide
// alert level: HIGH if any location emergency-triggered, MEDIUM if any
// warning-triggered, LOW otherwise.
func (e *Engine) Run(locations []domain.MonitoredLocation, rainfall map[string]*domain.RainfallSummary, long map[string]domain.RiskResult) domain.NowcastResult {
	result := domain.NowcastResult{
		GeneratedAt: e.clock.Now(),
		PerLocation: make([]domain.LocationNowcast, 0, len(locations)),
		AlertLevel:  domain.RiskLow,
	}

	for _, loc := range locations {
		nc := e.ComputeLocation(loc, rainfall[loc.ID], long[loc.ID])
		result.PerLocation = append(result.PerLocation, nc)
		if nc.WarningTriggered {
			result.WarningCount++
		}
		if nc.EmergencyTriggered {
			result.EmergencyCount++
		}
	}

	switch {
	case result.EmergencyCount > 0:
		result.AlertLevel = domain.RiskHigh
	case result.WarningCount > 0:
		result.AlertLevel = domain.RiskMedium
	}
	return result
}

// windowIndex normalizes a window sum against its saturation scale.
func windowIndex(mm, scale float64) float64 {
	if scale <= 0 {
		return 0
	}
	v := mm / scale * 100
	if v > 100 {
		return 100
	}
	if v < 0 {
		return 0
	}
	return v
}

// blend mixes the long-horizon score with the near-term signal and rounds.
func blend(long, nearTerm, longWeight float64) int {
	v := longWeight*long + (1-longWeight)*nearTerm
	if v > 100 {
		v = 100
	}
	if v < 0 {
		v = 0
	}
	return int(math.Round(v))
}
