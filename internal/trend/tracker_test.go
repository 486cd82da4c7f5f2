package trend_test

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flood-risk-engine/internal/domain"
	"github.com/couchcryptid/flood-risk-engine/internal/trend"
)

func TestTracker_AppendBoundedByWindow(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC))
	tracker := trend.NewTracker(3, clock)

	for _, score := range []int{10, 20, 30, 40, 50} {
		tracker.Append("loc-1", score)
		clock.Advance(5 * time.Minute)
	}

	h := tracker.History("loc-1")
	require.Len(t, h, 3)
	assert.Equal(t, 30, h[0].Score) // oldest two evicted
	assert.Equal(t, 50, h[2].Score)
}

func TestTracker_AppendStampsClockTime(t *testing.T) {
	at := time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(at)
	tracker := trend.NewTracker(0, clock)

	point := tracker.Append("loc-1", 42)
	assert.Equal(t, at, point.Time)
}

func TestTracker_HistoriesAreIndependent(t *testing.T) {
	tracker := trend.NewTracker(5, clockwork.NewFakeClock())

	tracker.Append("loc-1", 10)
	tracker.Append("loc-2", 90)

	assert.Len(t, tracker.History("loc-1"), 1)
	assert.Len(t, tracker.History("loc-2"), 1)
	assert.Empty(t, tracker.History("loc-3"))
}

func TestTracker_HistoryReturnsCopy(t *testing.T) {
	tracker := trend.NewTracker(5, clockwork.NewFakeClock())
	tracker.Append("loc-1", 10)

	h := tracker.History("loc-1")
	h[0].Score = 999

	assert.Equal(t, 10, tracker.History("loc-1")[0].Score)
}

func TestConsecutiveRising(t *testing.T) {
	cases := []struct {
		name   string
		scores []int
		want   int
	}{
		{"empty history", nil, 0},
		{"single point", []int{50}, 0},
		{"flat pair", []int{50, 50}, 0},
		{"falling pair", []int{60, 50}, 0},
		{"rising pair", []int{40, 55}, 2},
		{"three rising", []int{40, 55, 70}, 3},
		{"run resets at plateau", []int{40, 40, 55, 70}, 3},
		{"fall breaks the run", []int{70, 40, 55, 60}, 3},
		{"newest fell", []int{40, 55, 70, 65}, 0},
		{"long rising run", []int{10, 20, 30, 40, 50, 60}, 6},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			points := make([]domain.TrendPoint, len(tc.scores))
			for i, s := range tc.scores {
				points[i] = domain.TrendPoint{Score: s}
			}
			assert.Equal(t, tc.want, trend.ConsecutiveRising(points))
		})
	}
}

func TestTracker_SnapshotRestoreRoundTrip(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC))
	tracker := trend.NewTracker(5, clock)

	tracker.Append("loc-1", 40)
	clock.Advance(5 * time.Minute)
	tracker.Append("loc-1", 55)
	tracker.Append("loc-2", 70)

	restored := trend.NewTracker(5, clock)
	restored.Restore(tracker.Snapshot())

	assert.Equal(t, tracker.History("loc-1"), restored.History("loc-1"))
	assert.Equal(t, tracker.History("loc-2"), restored.History("loc-2"))
	assert.Equal(t, 2, restored.ConsecutiveRising("loc-1"))
}

func TestTracker_RestoreTrimsToWindow(t *testing.T) {
	tracker := trend.NewTracker(2, clockwork.NewFakeClock())

	tracker.Restore(map[string][]domain.TrendPoint{
		"loc-1": {{Score: 10}, {Score: 20}, {Score: 30}},
	})

	h := tracker.History("loc-1")
	require.Len(t, h, 2)
	assert.Equal(t, 20, h[0].Score)
	assert.Equal(t, 30, h[1].Score)
}
