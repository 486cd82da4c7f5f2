// Package trend maintains per-location rolling histories of short-horizon
// risk scores and the rising-streak calculation that gates escalation.
package trend

import (
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/flood-risk-engine/internal/domain"
)

// DefaultWindow is the bounded history length per location.
const DefaultWindow = 12

// Tracker owns the trend histories. It is injected into the nowcast engine
// rather than held as package state, so tests get isolated instances and one
// process can run independent engines. Appends are atomic under a single
// mutex: the scheduler invokes runs sequentially, but concurrent invocations
// must not lose updates or duplicate points.
type Tracker struct {
	mu        sync.Mutex
	window    int
	clock     clockwork.Clock
	histories map[string][]domain.TrendPoint
}

// NewTracker creates a tracker with the given FIFO window. A window of 0 or
// below falls back to DefaultWindow; a nil clock falls back to the real one.
func NewTracker(window int, clock clockwork.Clock) *Tracker {
	if window <= 0 {
		window = DefaultWindow
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Tracker{
		window:    window,
		clock:     clock,
		histories: make(map[string][]domain.TrendPoint),
	}
}

// Append records a new score for the location, stamped with the tracker's
// clock so points stay in wall-clock order, and evicts the oldest point when
// the window is exceeded.
func (t *Tracker) Append(locationID string, score int) domain.TrendPoint {
	point := domain.TrendPoint{Score: score, Time: t.clock.Now()}

	t.mu.Lock()
	defer t.mu.Unlock()

	h := append(t.histories[locationID], point)
	if len(h) > t.window {
		h = h[len(h)-t.window:]
	}
	t.histories[locationID] = h
	return point
}

// History returns a copy of the location's history, oldest first.
func (t *Tracker) History(locationID string) []domain.TrendPoint {
	t.mu.Lock()
	defer t.mu.Unlock()

	h := t.histories[locationID]
	out := make([]domain.TrendPoint, len(h))
	copy(out, h)
	return out
}

// ConsecutiveRising returns the rising streak for the location's history.
func (t *Tracker) ConsecutiveRising(locationID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return ConsecutiveRising(t.histories[locationID])
}

// ConsecutiveRising counts the strictly increasing run ending at the newest
// point, in samples: three samples 40,55,70 yield 3. Walking backward from
// the newest point, it stops at the first non-increase. Fewer than two
// points, or a newest point that did not increase, yield 0.
func ConsecutiveRising(points []domain.TrendPoint) int {
	if len(points) < 2 {
		return 0
	}
	comparisons := 0
	for i := len(points) - 1; i > 0; i-- {
		if points[i].Score <= points[i-1].Score {
			break
		}
		comparisons++
	}
	if comparisons == 0 {
		return 0
	}
	return comparisons + 1
}

// Snapshot copies every history for checkpointing.
func (t *Tracker) Snapshot() map[string][]domain.TrendPoint {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string][]domain.TrendPoint, len(t.histories))
	for id, h := range t.histories {
		cp := make([]domain.TrendPoint, len(h))
		copy(cp, h)
		out[id] = cp
	}
	return out
}

// Restore replaces histories from a checkpoint, trimming each to the window.
// Called once at startup before any Append.
func (t *Tracker) Restore(histories map[string][]domain.TrendPoint) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, h := range histories {
		if len(h) > t.window {
			h = h[len(h)-t.window:]
		}
		cp := make([]domain.TrendPoint, len(h))
		copy(cp, h)
		t.histories[id] = cp
	}
}
