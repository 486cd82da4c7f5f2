package analytics

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/flood-risk-engine/internal/domain"
	"github.com/couchcryptid/flood-risk-engine/internal/nowcast"
	"github.com/couchcryptid/flood-risk-engine/internal/observability"
	"github.com/couchcryptid/flood-risk-engine/internal/trend"
)

// SnapshotSource hands each run a consistent copy of the latest observations.
type SnapshotSource interface {
	Current() domain.ObservationSet
}

// AlertPublisher delivers triggered nowcast alerts downstream.
type AlertPublisher interface {
	PublishAlerts(ctx context.Context, runID string, alerts []domain.LocationNowcast) error
}

// TrendCheckpointer persists trend histories between runs.
type TrendCheckpointer interface {
	SaveHistories(histories map[string][]domain.TrendPoint) error
}

// Service owns the engine state for one process: the snapshot source, the
// trend tracker, and the latest computed outputs served to the HTTP layer.
// Runs are expected to be invoked sequentially by the scheduler; the latest
// outputs are guarded for concurrent readers.
type Service struct {
	locations  []domain.MonitoredLocation
	snapshot   SnapshotSource
	aggregator *Aggregator
	assembler  *Assembler
	nowcaster  *nowcast.Engine
	tracker    *trend.Tracker
	checkpoint TrendCheckpointer // optional
	alerts     AlertPublisher    // optional
	metrics    *observability.Metrics
	logger     *slog.Logger
	clock      clockwork.Clock

	mu             sync.RWMutex
	lastAssessment *domain.Assessment
	lastBatch      *domain.BatchResult
	lastNowcast    *domain.NowcastResult
	lastLong       map[string]domain.RiskResult

	ready atomic.Bool
}

// NewService wires a Service. checkpoint and alerts may be nil to disable
// trend persistence and alert publishing.
func NewService(
	locations []domain.MonitoredLocation,
	snapshot SnapshotSource,
	aggregator *Aggregator,
	assembler *Assembler,
	nowcaster *nowcast.Engine,
	tracker *trend.Tracker,
	checkpoint TrendCheckpointer,
	alerts AlertPublisher,
	metrics *observability.Metrics,
	logger *slog.Logger,
	clock clockwork.Clock,
) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		locations:  locations,
		snapshot:   snapshot,
		aggregator: aggregator,
		assembler:  assembler,
		nowcaster:  nowcaster,
		tracker:    tracker,
		checkpoint: checkpoint,
		alerts:     alerts,
		metrics:    metrics,
		logger:     logger,
		clock:      clock,
	}
}

// CheckReadiness returns nil once at least one analytics run has completed.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("no analytics run has completed yet")
	}
	return nil
}

// RunAnalytics executes one full batch run and refreshes the current
// assessment. An empty observation set produces the degraded assessment;
// it never returns an error to the scheduler.
func (s *Service) RunAnalytics(_ context.Context) domain.Assessment {
	runID := uuid.NewString()
	start := time.Now()

	data := s.snapshot.Current()
	if data.Empty() {
		s.logger.Warn("analytics run degraded: no upstream observations", "run_id", runID)
		assessment := s.assembler.Degraded(runID, errors.New("no upstream observations available"))
		s.mu.Lock()
		s.lastAssessment = &assessment
		s.mu.Unlock()
		return assessment
	}

	batch := s.aggregator.RunBatch(s.locations, data)
	batch.RunID = runID
	batch.GeneratedAt = s.clock.Now()
	assessment := s.assembler.Assemble(batch)

	long := make(map[string]domain.RiskResult, len(batch.PerLocation))
	matched := 0
	for _, r := range batch.PerLocation {
		long[r.LocationID] = r.Result
		if r.Reservoir != nil {
			matched++
		}
	}
	s.metrics.MatchOutcomes.WithLabelValues("matched").Add(float64(matched))
	s.metrics.MatchOutcomes.WithLabelValues("unmatched").Add(float64(len(batch.PerLocation) - matched))
	s.metrics.AnalyticsRuns.Inc()
	s.metrics.RunDuration.Observe(time.Since(start).Seconds())
	s.metrics.LocationsScored.Observe(float64(len(batch.PerLocation)))

	s.mu.Lock()
	s.lastBatch = &batch
	s.lastAssessment = &assessment
	s.lastLong = long
	s.mu.Unlock()
	s.ready.Store(true)

	s.logger.Info("analytics run complete",
		"run_id", runID,
		"locations", len(batch.PerLocation),
		"high_risk_zones", len(batch.HighRiskZones),
		"overall_level", assessment.OverallLevel,
	)
	return assessment
}

// RunNowcast executes one nowcast cycle using the latest long-horizon scores,
// running a batch first when none exist, then publishes any triggered alerts
// and checkpoints trend state.
func (s *Service) RunNowcast(ctx context.Context) domain.NowcastResult {
	s.mu.RLock()
	long := s.lastLong
	s.mu.RUnlock()
	if long == nil {
		s.RunAnalytics(ctx)
		s.mu.RLock()
		long = s.lastLong
		s.mu.RUnlock()
		if long == nil {
			long = map[string]domain.RiskResult{}
		}
	}

	data := s.snapshot.Current()
	result := s.nowcaster.Run(s.locations, data.Rainfall, long)
	result.RunID = uuid.NewString()

	s.metrics.NowcastRuns.Inc()
	s.metrics.NowcastWarnings.Add(float64(result.WarningCount))
	s.metrics.NowcastEmergencies.Add(float64(result.EmergencyCount))

	s.publishAlerts(ctx, result)
	s.checkpointTrends()

	s.mu.Lock()
	s.lastNowcast = &result
	s.mu.Unlock()

	s.logger.Info("nowcast run complete",
		"run_id", result.RunID,
		"warnings", result.WarningCount,
		"emergencies", result.EmergencyCount,
		"alert_level", result.AlertLevel,
	)
	return result
}

func (s *Service) publishAlerts(ctx context.Context, result domain.NowcastResult) {
	if s.alerts == nil {
		return
	}
	triggered := make([]domain.LocationNowcast, 0)
	for _, nc := range result.PerLocation {
		if nc.WarningTriggered || nc.EmergencyTriggered {
			triggered = append(triggered, nc)
		}
	}
	if len(triggered) == 0 {
		return
	}
	if err := s.alerts.PublishAlerts(ctx, result.RunID, triggered); err != nil {
		s.logger.Error("publish nowcast alerts failed", "error", err, "count", len(triggered))
		return
	}
	s.metrics.AlertsPublished.Add(float64(len(triggered)))
}

func (s *Service) checkpointTrends() {
	if s.checkpoint == nil {
		return
	}
	if err := s.checkpoint.SaveHistories(s.tracker.Snapshot()); err != nil {
		s.logger.Warn("trend checkpoint failed", "error", err)
	}
}

// CurrentAssessment returns the latest assessment, or a degraded one when no
// run has completed. Callers always get a structurally valid object.
func (s *Service) CurrentAssessment() domain.Assessment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastAssessment == nil {
		return s.assembler.Degraded("", errors.New("no assessment computed yet"))
	}
	return *s.lastAssessment
}

// LatestBatch returns the latest analytics batch, if any.
func (s *Service) LatestBatch() (domain.BatchResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastBatch == nil {
		return domain.BatchResult{}, false
	}
	return *s.lastBatch, true
}

// LatestNowcast returns the latest nowcast result, if any.
func (s *Service) LatestNowcast() (domain.NowcastResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastNowcast == nil {
		return domain.NowcastResult{}, false
	}
	return *s.lastNowcast, true
}
