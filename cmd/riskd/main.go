package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/flood-risk-engine/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/flood-risk-engine/internal/adapter/kafka"
	"github.com/couchcryptid/flood-risk-engine/internal/analytics"
	"github.com/couchcryptid/flood-risk-engine/internal/config"
	"github.com/couchcryptid/flood-risk-engine/internal/ingest"
	"github.com/couchcryptid/flood-risk-engine/internal/match"
	"github.com/couchcryptid/flood-risk-engine/internal/nowcast"
	"github.com/couchcryptid/flood-risk-engine/internal/observability"
	"github.com/couchcryptid/flood-risk-engine/internal/scheduler"
	"github.com/couchcryptid/flood-risk-engine/internal/store"
	"github.com/couchcryptid/flood-risk-engine/internal/trend"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	db, err := store.New(cfg.StorePath)
	if err != nil {
		logger.Error("failed to open trend store", "error", err, "path", cfg.StorePath)
		os.Exit(1)
	}
	defer db.Close() //nolint:errcheck

	tracker := trend.NewTracker(cfg.TrendWindow, nil)
	if histories, err := db.LoadHistories(); err != nil {
		logger.Warn("failed to restore trend histories, starting empty", "error", err)
	} else if len(histories) > 0 {
		tracker.Restore(histories)
		logger.Info("trend histories restored", "locations", len(histories))
	}

	snapshot := ingest.NewSnapshot(cfg.SeismicWindow, nil)
	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	consumer := ingest.NewConsumer(reader, snapshot, logger, metrics)

	matcher := match.NewCachedMatcher(match.NewNameMatcher(cfg.MatchThreshold), cfg.MatchCacheSize)
	aggregator := analytics.NewAggregator(cfg.Risk, cfg.Analytics, matcher, logger)
	assembler := analytics.NewAssembler(cfg.Risk.Bands, nil)
	engine := nowcast.NewEngine(cfg.Nowcast, tracker, nil)

	service := analytics.NewService(
		cfg.Locations, snapshot, aggregator, assembler, engine,
		tracker, db, writer, metrics, logger, nil,
	)

	srv := httpadapter.NewServer(cfg.ServerAddr, service, logger)

	sched := scheduler.New(logger)
	if err := sched.Add(cfg.AnalyticsSchedule, "analytics", func(ctx context.Context) {
		service.RunAnalytics(ctx)
	}); err != nil {
		logger.Error("failed to schedule analytics job", "error", err)
		os.Exit(1)
	}
	if err := sched.Add(cfg.NowcastSchedule, "nowcast", func(ctx context.Context) {
		service.RunNowcast(ctx)
	}); err != nil {
		logger.Error("failed to schedule nowcast job", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.ServiceRunning.Set(1)
	defer metrics.ServiceRunning.Set(0)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := consumer.Run(ctx); err != nil {
			logger.Error("consumer error", "error", err)
		}
	}()

	sched.Start()
	logger.Info("risk engine started",
		"locations", len(cfg.Locations),
		"analytics_schedule", cfg.AnalyticsSchedule,
		"nowcast_schedule", cfg.NowcastSchedule,
	)

	<-ctx.Done()
	logger.Info("shutting down")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if err := db.SaveHistories(tracker.Snapshot()); err != nil {
		logger.Error("final trend checkpoint failed", "error", err)
	}

	logger.Info("shutdown complete")
}
