package risk

import (
	"github.com/golang/geo/s2"

	"github.com/couchcryptid/flood-risk-engine/internal/domain"
)

// clamp bounds v to [0,100]. Every sub-index passes through here.
func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// RainIntensity maps 24h rainfall plus the peak hourly rate to [0,100].
func (c Config) RainIntensity(rain24h, peakHourly float64) float64 {
	return clamp(rain24h/c.IntensityRainDivisor + peakHourly*c.IntensityPeakWeight)
}

// Persistence maps the 72h rainfall sum to [0,100].
func (c Config) Persistence(rain72h float64) float64 {
	return clamp(rain72h / c.PersistenceDivisor)
}

// Saturation maps the 7d rainfall sum to [0,100]. A week of accumulated rain
// proxies ground saturation.
func (c Config) Saturation(rain7d float64) float64 {
	return clamp(rain7d / c.SaturationDivisor)
}

// TerrainIndex maps elevation to the landslide terrain sub-index: higher
// terrain scores higher. Unknown elevation returns the neutral value rather
// than 0 so it biases the score toward neither extreme.
func (c Config) TerrainIndex(elevationM *float64) float64 {
	if elevationM == nil {
		return c.NeutralIndex
	}
	return clamp(*elevationM / c.TerrainElevDivisor)
}

// LowlandIndex maps elevation to the flood lowland sub-index: lower terrain
// scores higher. The term is a heuristic placeholder for proper inundation
// modelling. Unknown elevation returns the neutral value.
func (c Config) LowlandIndex(elevationM *float64) float64 {
	if elevationM == nil {
		return c.NeutralIndex
	}
	return clamp(100 - *elevationM/c.LowlandElevDivisor)
}

// SeismicIndex counts significant events (magnitude at or above the threshold)
// inside a fixed lat/lon box around the location and weights each one.
func (c Config) SeismicIndex(loc domain.MonitoredLocation, events []domain.SeismicEvent) float64 {
	return clamp(float64(c.CountNearbyEvents(loc, events)) * c.SeismicEventWeight)
}

// CountNearbyEvents returns how many events qualify as nearby triggers for loc.
func (c Config) CountNearbyEvents(loc domain.MonitoredLocation, events []domain.SeismicEvent) int {
	size := s2.LatLngFromDegrees(2*c.SeismicBoxDegrees, 2*c.SeismicBoxDegrees)
	box := s2.RectFromCenterSize(s2.LatLngFromDegrees(loc.Lat, loc.Lon), size)

	count := 0
	for _, ev := range events {
		if ev.Magnitude < c.SeismicMagThreshold {
			continue
		}
		if box.ContainsLatLng(s2.LatLngFromDegrees(ev.Lat, ev.Lon)) {
			count++
		}
	}
	return count
}

// AnomalyIndex compares the current rainfall rate against the historical
// baseline rate. A ratio of 1.0 maps to the neutral value; deviations scale
// linearly. Without a baseline the index is neutral — absence of a baseline is
// never scored as "no anomaly" nor "max anomaly".
func (c Config) AnomalyIndex(rain24h float64, baselineRate *float64) float64 {
	if baselineRate == nil || *baselineRate <= 0 {
		return c.NeutralIndex
	}
	currentRate := rain24h / 24
	return clamp(c.NeutralIndex * currentRate / *baselineRate)
}
