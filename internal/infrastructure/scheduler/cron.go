package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"contentpipe/internal/ports"
	"contentpipe/internal/usecase"
)

// CronScheduler drives the collection and re-score passes on cron specs.
type CronScheduler struct {
	cron        *cron.Cron
	pipeline    *usecase.Pipeline
	rescorer    *usecase.Rescorer
	collectSpec string
	rescoreSpec string
	logger      *slog.Logger

	collectEntry cron.EntryID
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// New builds a scheduler for the given cron expressions.
func New(pipeline *usecase.Pipeline, rescorer *usecase.Rescorer, collectSpec, rescoreSpec string, logger *slog.Logger) *CronScheduler {
	return &CronScheduler{
		cron:        cron.New(),
		pipeline:    pipeline,
		rescorer:    rescorer,
		collectSpec: collectSpec,
		rescoreSpec: rescoreSpec,
		logger:      logger,
	}
}

// Start registers the jobs and begins the cron loop.
func (s *CronScheduler) Start(ctx context.Context) error {
	entry, err := s.cron.AddFunc(s.collectSpec, func() {
		s.pipeline.Collect(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule collection (%s): %w", s.collectSpec, err)
	}
	s.collectEntry = entry

	if s.rescorer != nil && s.rescoreSpec != "" {
		if _, err := s.cron.AddFunc(s.rescoreSpec, func() {
			if err := s.rescorer.Run(ctx); err != nil && s.logger != nil {
				s.logger.Error("rescore pass failed", "error", err)
			}
		}); err != nil {
			return fmt.Errorf("schedule rescore (%s): %w", s.rescoreSpec, err)
		}
	}

	s.cron.Start()
	if s.logger != nil {
		s.logger.Info("scheduler started", "collect", s.collectSpec, "rescore", s.rescoreSpec)
	}
	return nil
}

// Stop halts the cron loop and waits for running jobs.
func (s *CronScheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NextCollectAt reports when the next collection pass fires.
func (s *CronScheduler) NextCollectAt() time.Time {
	return s.cron.Entry(s.collectEntry).Next
}
