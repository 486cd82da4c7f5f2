// Package ingest consumes collector observations and maintains the latest
// observation set per monitored location for the analytics runs.
package ingest

import (
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/flood-risk-engine/internal/domain"
)

// DefaultSeismicWindow is how long a seismic event stays relevant.
const DefaultSeismicWindow = 72 * time.Hour

// Snapshot holds the most recent observation of each kind per location.
// The consumer goroutine writes; analytics runs read a consistent copy, so
// scoring never blocks ingestion.
type Snapshot struct {
	mu            sync.RWMutex
	clock         clockwork.Clock
	seismicWindow time.Duration

	rainfall   map[string]*domain.RainfallSummary
	elevations map[string]float64
	baselines  map[string]float64
	seismic    []domain.SeismicEvent
	reservoirs map[string]domain.ReservoirRecord // keyed by name|region
	sources    map[string]bool
}

// NewSnapshot creates an empty snapshot. A zero window falls back to
// DefaultSeismicWindow; a nil clock falls back to the real one.
func NewSnapshot(seismicWindow time.Duration, clock clockwork.Clock) *Snapshot {
	if seismicWindow <= 0 {
		seismicWindow = DefaultSeismicWindow
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Snapshot{
		clock:         clock,
		seismicWindow: seismicWindow,
		rainfall:      make(map[string]*domain.RainfallSummary),
		elevations:    make(map[string]float64),
		baselines:     make(map[string]float64),
		reservoirs:    make(map[string]domain.ReservoirRecord),
		sources:       make(map[string]bool),
	}
}

// Apply merges one parsed observation into the snapshot, replacing any older
// observation of the same kind for the same location.
func (s *Snapshot) Apply(obs domain.Observation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch obs.Kind {
	case domain.KindRainfall:
		if obs.Rainfall != nil {
			s.rainfall[obs.LocationID] = obs.Rainfall
			s.markSource(obs.Rainfall.Source, "rainfall")
		}
	case domain.KindSeismic:
		if obs.Seismic != nil {
			s.seismic = append(s.seismic, *obs.Seismic)
			s.pruneSeismicLocked()
			s.markSource(obs.Seismic.Source, "seismic")
		}
	case domain.KindReservoir:
		if obs.Reservoir != nil {
			s.reservoirs[obs.Reservoir.Name+"|"+obs.Reservoir.Region] = *obs.Reservoir
			s.markSource(obs.Reservoir.Source, "reservoir")
		}
	case domain.KindElevation:
		if obs.ElevationM != nil {
			s.elevations[obs.LocationID] = *obs.ElevationM
			s.markSource("", "elevation")
		}
	case domain.KindBaseline:
		if obs.Baseline != nil {
			s.baselines[obs.LocationID] = *obs.Baseline
			s.markSource("", "climate-baseline")
		}
	}
}

func (s *Snapshot) markSource(source, fallback string) {
	if source == "" {
		source = fallback
	}
	s.sources[source] = true
}

// pruneSeismicLocked drops events older than the window. Caller holds the lock.
func (s *Snapshot) pruneSeismicLocked() {
	cutoff := s.clock.Now().Add(-s.seismicWindow)
	kept := s.seismic[:0]
	for _, ev := range s.seismic {
		if ev.Time.After(cutoff) {
			kept = append(kept, ev)
		}
	}
	s.seismic = kept
}

// Current returns a consistent copy of the latest observations for one run.
func (s *Snapshot) Current() domain.ObservationSet {
	s.mu.Lock()
	s.pruneSeismicLocked()
	s.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()

	set := domain.ObservationSet{
		Rainfall:   make(map[string]*domain.RainfallSummary, len(s.rainfall)),
		Reservoirs: make([]domain.ReservoirRecord, 0, len(s.reservoirs)),
		Elevations: make(map[string]float64, len(s.elevations)),
		Baselines:  make(map[string]float64, len(s.baselines)),
	}

	for id, r := range s.rainfall {
		cp := *r
		set.Rainfall[id] = &cp
	}
	// A nil slice means the seismic feed has not reported; scoring treats
	// that as a missing feature rather than "zero nearby events".
	if len(s.seismic) > 0 {
		set.SeismicEvents = make([]domain.SeismicEvent, len(s.seismic))
		copy(set.SeismicEvents, s.seismic)
	}
	for _, rec := range s.reservoirs {
		set.Reservoirs = append(set.Reservoirs, rec)
	}
	sort.Slice(set.Reservoirs, func(i, j int) bool {
		return set.Reservoirs[i].Name < set.Reservoirs[j].Name
	})
	for id, v := range s.elevations {
		set.Elevations[id] = v
	}
	for id, v := range s.baselines {
		set.Baselines[id] = v
	}

	set.Sources = make([]string, 0, len(s.sources))
	for src := range s.sources {
		set.Sources = append(set.Sources, src)
	}
	sort.Strings(set.Sources)

	return set
}
