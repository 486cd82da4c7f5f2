package analytics

import (
	"fmt"
	"math"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/flood-risk-engine/internal/domain"
)

// Recommended actions per alert level. Fixed content; only the message text
// interpolates scores.
var (
	lowRecommendations = []string{
		"Continue routine monitoring.",
		"No protective action required.",
	}
	mediumRecommendations = []string{
		"Increase monitoring frequency for the listed high-risk zones.",
		"Verify reservoir gate and spillway readiness.",
		"Review evacuation routes for lowland settlements.",
	}
	highRecommendations = []string{
		"Activate emergency operations for the listed high-risk zones.",
		"Issue public advisories for riverside and hillside settlements.",
		"Coordinate controlled reservoir releases with downstream districts.",
		"Pre-position rescue and relief resources.",
	}
	degradedRecommendations = []string{
		"Retry the assessment shortly.",
		"Check collector service health and upstream API availability.",
	}
)

// Assembler produces the single top-level assessment from a batch result.
type Assembler struct {
	bands domain.RiskBands
	clock clockwork.Clock
}

// NewAssembler creates an Assembler. A nil clock falls back to the real one.
func NewAssembler(bands domain.RiskBands, clock clockwork.Clock) *Assembler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Assembler{bands: bands, clock: clock}
}

// Assemble averages per-location results into a system-wide snapshot. The
// overall level is the higher of the two averaged scores mapped through the
// risk bands.
func (a *Assembler) Assemble(batch domain.BatchResult) domain.Assessment {
	n := len(batch.PerLocation)
	if n == 0 {
		return a.Degraded(batch.RunID, fmt.Errorf("no locations scored"))
	}

	var flood, landslide, confidence float64
	var comp domain.RiskComponents
	for _, r := range batch.PerLocation {
		flood += float64(r.Result.FloodScore)
		landslide += float64(r.Result.LandslideScore)
		confidence += float64(r.Result.Confidence)
		addComponents(&comp, r.Result.Components)
	}
	divideComponents(&comp, float64(n))

	floodScore := int(math.Round(flood / float64(n)))
	landslideScore := int(math.Round(landslide / float64(n)))
	overall := floodScore
	if landslideScore > overall {
		overall = landslideScore
	}
	level := a.bands.LevelFor(overall)

	return domain.Assessment{
		RunID:           batch.RunID,
		GeneratedAt:     a.clock.Now(),
		FloodScore:      floodScore,
		LandslideScore:  landslideScore,
		Confidence:      int(math.Round(confidence / float64(n))),
		OverallLevel:    level,
		Message:         message(level, floodScore, landslideScore),
		Recommendations: recommendations(level),
		Diagnostics: domain.AssessmentDiagnostics{
			LocationsScored: n,
			AvgComponents:   comp,
			DataSources:     batch.DataSources,
		},
	}
}

// Degraded is the fail-soft assessment for whole-batch upstream failure:
// scores 0, level LOW, an explicit error-carrying message, and a retry
// recommendation. Deliberately not a propagated error — the transport layer
// always receives a structurally valid assessment.
func (a *Assembler) Degraded(runID string, err error) domain.Assessment {
	msg := "Risk assessment unavailable: upstream data could not be fetched."
	errText := ""
	if err != nil {
		msg = fmt.Sprintf("Risk assessment unavailable: %v.", err)
		errText = err.Error()
	}
	return domain.Assessment{
		RunID:           runID,
		GeneratedAt:     a.clock.Now(),
		OverallLevel:    domain.RiskLow,
		Message:         msg,
		Recommendations: degradedRecommendations,
		Diagnostics: domain.AssessmentDiagnostics{
			Degraded: true,
			Error:    errText,
		},
	}
}

func message(level domain.RiskLevel, flood, landslide int) string {
	switch level {
	case domain.RiskHigh:
		return fmt.Sprintf("High risk: flood %d/100, landslide %d/100. One or more monitored locations require immediate attention.", flood, landslide)
	case domain.RiskMedium:
		return fmt.Sprintf("Moderate risk: flood %d/100, landslide %d/100. Conditions warrant closer monitoring.", flood, landslide)
	default:
		return fmt.Sprintf("Low risk: flood %d/100, landslide %d/100. No elevated hazard indicators across monitored locations.", flood, landslide)
	}
}

func recommendations(level domain.RiskLevel) []string {
	switch level {
	case domain.RiskHigh:
		return highRecommendations
	case domain.RiskMedium:
		return mediumRecommendations
	default:
		return lowRecommendations
	}
}

func addComponents(dst *domain.RiskComponents, src domain.RiskComponents) {
	dst.Flood.Intensity += src.Flood.Intensity
	dst.Flood.Persistence += src.Flood.Persistence
	dst.Flood.Saturation += src.Flood.Saturation
	dst.Flood.ReservoirStress += src.Flood.ReservoirStress
	dst.Flood.Anomaly += src.Flood.Anomaly
	dst.Flood.Seismic += src.Flood.Seismic
	dst.Flood.Lowland += src.Flood.Lowland

	dst.Landslide.Intensity += src.Landslide.Intensity
	dst.Landslide.Duration += src.Landslide.Duration
	dst.Landslide.Terrain += src.Landslide.Terrain
	dst.Landslide.Seismic += src.Landslide.Seismic
	dst.Landslide.Anomaly += src.Landslide.Anomaly
	dst.Landslide.SpillStress += src.Landslide.SpillStress
	dst.Landslide.ProneBoost += src.Landslide.ProneBoost
}

func divideComponents(c *domain.RiskComponents, n float64) {
	c.Flood.Intensity /= n
	c.Flood.Persistence /= n
	c.Flood.Saturation /= n
	c.Flood.ReservoirStress /= n
	c.Flood.Anomaly /= n
	c.Flood.Seismic /= n
	c.Flood.Lowland /= n

	c.Landslide.Intensity /= n
	c.Landslide.Duration /= n
	c.Landslide.Terrain /= n
	c.Landslide.Seismic /= n
	c.Landslide.Anomaly /= n
	c.Landslide.SpillStress /= n
	c.Landslide.ProneBoost /= n
}
