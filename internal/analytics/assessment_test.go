package analytics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flood-risk-engine/internal/analytics"
	"github.com/couchcryptid/flood-risk-engine/internal/domain"
)

var assembleTime = time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)

func newAssembler() *analytics.Assembler {
	return analytics.NewAssembler(domain.DefaultBands(), clockwork.NewFakeClockAt(assembleTime))
}

func locationResult(id string, flood, landslide, confidence int) domain.LocationResult {
	return domain.LocationResult{
		LocationID: id,
		Result: domain.RiskResult{
			FloodScore:     flood,
			LandslideScore: landslide,
			Confidence:     confidence,
		},
	}
}

func TestAssemble_AveragesScores(t *testing.T) {
	asm := newAssembler()

	batch := domain.BatchResult{
		RunID: "run-1",
		PerLocation: []domain.LocationResult{
			locationResult("a", 80, 20, 90),
			locationResult("b", 40, 60, 70),
		},
		DataSources: []string{"imd"},
	}

	got := asm.Assemble(batch)

	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, assembleTime, got.GeneratedAt)
	assert.Equal(t, 60, got.FloodScore)
	assert.Equal(t, 40, got.LandslideScore)
	assert.Equal(t, 80, got.Confidence)
	// Overall comes from the higher of the two averages: flood 60 is MEDIUM.
	assert.Equal(t, domain.RiskMedium, got.OverallLevel)
	assert.Contains(t, got.Message, "flood 60/100")
	assert.Contains(t, got.Message, "landslide 40/100")
	assert.NotEmpty(t, got.Recommendations)
	assert.Equal(t, 2, got.Diagnostics.LocationsScored)
	assert.Equal(t, []string{"imd"}, got.Diagnostics.DataSources)
	assert.False(t, got.Diagnostics.Degraded)
}

func TestAssemble_AveragesComponents(t *testing.T) {
	asm := newAssembler()

	a := locationResult("a", 50, 50, 50)
	a.Result.Components.Flood.Intensity = 80
	b := locationResult("b", 50, 50, 50)
	b.Result.Components.Flood.Intensity = 40

	got := asm.Assemble(domain.BatchResult{PerLocation: []domain.LocationResult{a, b}})

	assert.InDelta(t, 60.0, got.Diagnostics.AvgComponents.Flood.Intensity, 0.001)
}

func TestAssemble_HighLandslideDrivesOverall(t *testing.T) {
	asm := newAssembler()

	got := asm.Assemble(domain.BatchResult{
		PerLocation: []domain.LocationResult{locationResult("a", 20, 80, 60)},
	})

	assert.Equal(t, domain.RiskHigh, got.OverallLevel)
	assert.Contains(t, got.Message, "High risk")
}

func TestAssemble_EmptyBatchIsDegraded(t *testing.T) {
	asm := newAssembler()

	got := asm.Assemble(domain.BatchResult{RunID: "run-2"})

	assert.True(t, got.Diagnostics.Degraded)
	assert.Equal(t, "run-2", got.RunID)
	assert.Equal(t, domain.RiskLow, got.OverallLevel)
}

func TestDegraded_FailSoftShape(t *testing.T) {
	asm := newAssembler()

	got := asm.Degraded("run-3", errors.New("no upstream observations available"))

	assert.Equal(t, "run-3", got.RunID)
	assert.Zero(t, got.FloodScore)
	assert.Zero(t, got.LandslideScore)
	assert.Zero(t, got.Confidence)
	assert.Equal(t, domain.RiskLow, got.OverallLevel)
	assert.Contains(t, got.Message, "unavailable")
	assert.Contains(t, got.Message, "no upstream observations available")
	require.NotEmpty(t, got.Recommendations)
	assert.Contains(t, got.Recommendations[0], "Retry")
	assert.True(t, got.Diagnostics.Degraded)
	assert.Equal(t, "no upstream observations available", got.Diagnostics.Error)
}
