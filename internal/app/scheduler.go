/**
 * @description
 * Cron scheduler for the collection pipeline, plus the read-only next-run
 * computation used by the admin status display. The scheduler only drives
 * RunAll on the configured cron spec; next-run reporting never triggers a
 * collection itself.
 *
 * @dependencies
 * - github.com/robfig/cron/v3: Cron job scheduling.
 * - internal/domain: Policy reads for per-source cadence settings.
 */

package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Cadence values understood by the next-run computation. Only daily has exact
// semantics; weekly and monthly degrade to a symbolic scheduled label.
const (
	CadenceDaily   = "daily"
	CadenceWeekly  = "weekly"
	CadenceMonthly = "monthly"
)

// Scheduler drives the ingestion pipeline on a cadence.
type Scheduler struct {
	cron     *cron.Cron
	pipeline *Pipeline
	logger   *slog.Logger
	spec     string
}

// NewScheduler creates a scheduler that runs the pipeline on the given cron spec.
func NewScheduler(pipeline *Pipeline, logger *slog.Logger, cronSpec string) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Scheduler{
		cron:     c,
		pipeline: pipeline,
		logger:   logger,
		spec:     cronSpec,
	}
}

// Start registers the collection job and starts the cron loop.
func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(s.spec, func() {
		s.pipeline.RunAll(context.Background())
	}); err != nil {
		s.logger.Error("failed to schedule collection job", "spec", s.spec, "error", err)
		return
	}
	s.logger.Info("scheduled collection job", "spec", s.spec)
	s.cron.Start()
}

// Stop gracefully stops the cron scheduler.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// NextRunInfo reports when a source will next be collected, for display and
// audit purposes only. Disabled sources report no next run. For the daily
// cadence the instant is exact: today's run time if it has not yet passed,
// otherwise the same time tomorrow. Other cadences return a symbolic label.
func NextRunInfo(cadence, runAt string, enabled bool, now time.Time) (*time.Time, string) {
	if !enabled {
		return nil, "disabled"
	}

	switch cadence {
	case CadenceDaily:
		next, err := nextDailyRun(runAt, now)
		if err != nil {
			return nil, "invalid run time"
		}
		return &next, next.Format("2006-01-02 15:04")
	case CadenceWeekly, CadenceMonthly:
		return nil, fmt.Sprintf("scheduled (%s)", cadence)
	default:
		return nil, fmt.Sprintf("unknown cadence (%s)", cadence)
	}
}

func nextDailyRun(runAt string, now time.Time) (time.Time, error) {
	at, err := time.Parse("15:04", runAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid run time %q: %w", runAt, err)
	}

	next := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next, nil
}
