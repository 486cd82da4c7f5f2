// Package scheduler runs the periodic analytics and nowcast jobs on cron
// schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps a cron runner with named jobs and panic-safe execution.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates a stopped Scheduler.
func New(logger *slog.Logger) *Scheduler {
	return &Scheduler{cron: cron.New(), logger: logger}
}

// Add registers a job under the given cron spec. The job receives the context
// passed to each tick; a panicking job is logged and does not kill the runner.
func (s *Scheduler) Add(spec, name string, job func(ctx context.Context)) error {
	_, err := s.cron.AddFunc(spec, func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("scheduled job panicked", "job", name, "panic", r)
			}
		}()
		s.logger.Debug("scheduled job starting", "job", name)
		job(context.Background())
	})
	if err != nil {
		return fmt.Errorf("add %s job with spec %q: %w", name, spec, err)
	}
	return nil
}

// Start begins running jobs in their own goroutines.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
