package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/halcyonlabs/jobsched/config"
	"github.com/halcyonlabs/jobsched/internal/core"
)

// SweeperServiceOptions groups dependencies for SweeperService.
type SweeperServiceOptions struct {
	Logs      core.JobLogRepository  // Required: execution log repository
	Scheduler config.SchedulerConfig // Required: retention horizon
	Sweeper   config.SweeperConfig   // Required: sweep interval
	Logger    *slog.Logger           // Optional: structured logger
	Now       func() time.Time       // Optional: clock override for tests
}

// SweeperService provides execution log cleanup operations.
//
// This service manages:
// - Deleting log entries older than the retention horizon to prevent
//   database bloat.
// - Clearing the full log history of a single job on demand.
type SweeperService struct {
	logs      core.JobLogRepository
	scheduler config.SchedulerConfig
	sweeper   config.SweeperConfig
	logger    *slog.Logger
	now       func() time.Time
}

// NewSweeperService constructs a new SweeperService.
func NewSweeperService(opts SweeperServiceOptions) (*SweeperService, error) {
	if opts.Logs == nil {
		return nil, errors.New("JobLogRepository is required")
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "sweeper_service")
		logger.Debug("SweeperService initialized",
			"interval", opts.Sweeper.Interval,
			"retention", opts.Scheduler.LogRetention,
		)
	}

	return &SweeperService{
		logs:      opts.Logs,
		scheduler: opts.Scheduler,
		sweeper:   opts.Sweeper,
		logger:    logger,
		now:       now,
	}, nil
}

// Run starts the sweep loop and runs until the context is cancelled.
// It deletes expired log entries at the configured interval and performs one
// final sweep on shutdown. Returns nil on graceful shutdown
// (context.Canceled), error otherwise.
func (s *SweeperService) Run(ctx context.Context) error {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "starting sweeper service",
			"interval", s.sweeper.Interval,
			"retention", s.scheduler.LogRetention,
		)
	}

	// Add jitter to prevent thundering herd if multiple instances start together
	s.waitWithJitter(ctx)

	ticker := time.NewTicker(s.sweeper.Interval)
	defer ticker.Stop()

	// Run a sweep immediately after jitter
	if _, err := s.DeleteOldLogs(ctx); err != nil {
		s.logSweepError(err, "initial sweep")
	}

	return s.runLoop(ctx, ticker)
}

// waitWithJitter adds a random delay up to 10% of the interval to prevent thundering herd.
func (s *SweeperService) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.sweeper.Interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// If crypto/rand fails, skip jitter rather than failing startup
		if s.logger != nil {
			s.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		}
		return
	}

	// Use modulo on uint64 before converting to avoid overflow
	jitterNanos := binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)
	jitter := time.Duration(int64(jitterNanos)) // #nosec G115 - bounded by maxJitter which is int64

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
		// Graceful shutdown during jitter
	}
}

// runLoop runs the sweep loop until context is cancelled.
func (s *SweeperService) runLoop(ctx context.Context, ticker *time.Ticker) error {
	for {
		select {
		case <-ctx.Done():
			if s.logger != nil {
				s.logger.Info("sweeper service stopping", "reason", ctx.Err())
			}
			s.finalSweep()
			// Return nil on graceful shutdown to avoid treating it as a failure
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-ticker.C:
			if _, err := s.DeleteOldLogs(ctx); err != nil {
				s.logSweepError(err, "sweep")
				// Continue running despite errors
			}
		}
	}
}

// finalSweep runs one last retention pass during shutdown, detached from the
// cancelled run context.
func (s *SweeperService) finalSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.DeleteOldLogs(ctx); err != nil {
		s.logSweepError(err, "final sweep")
	}
}

// DeleteOldLogs removes log entries whose trigger time lies before the
// retention horizon and returns the number of deleted rows.
func (s *SweeperService) DeleteOldLogs(ctx context.Context) (int64, error) {
	if err := s.logs.EnsureSchema(ctx); err != nil {
		return 0, fmt.Errorf("ensure log schema: %w", err)
	}

	cutoff := s.now().Add(-s.scheduler.LogRetention)
	count, err := s.logs.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return count, fmt.Errorf("delete expired logs: %w", err)
	}

	if count > 0 && s.logger != nil {
		s.logger.InfoContext(ctx, "deleted expired log entries",
			"count", count,
			"retention", s.scheduler.LogRetention,
		)
	}
	return count, nil
}

// ClearJobLogs removes the full log history of a single job and returns the
// number of deleted rows.
func (s *SweeperService) ClearJobLogs(ctx context.Context, jobName string) (int64, error) {
	if err := s.logs.EnsureSchema(ctx); err != nil {
		return 0, fmt.Errorf("ensure log schema: %w", err)
	}

	count, err := s.logs.DeleteByJob(ctx, jobName)
	if err != nil {
		return count, fmt.Errorf("clear logs of job %s: %w", jobName, err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "cleared job log history", "job", jobName, "count", count)
	}
	return count, nil
}

func (s *SweeperService) logSweepError(err error, label string) {
	if err == nil || s.logger == nil {
		return
	}

	if isContextCancellation(err) {
		s.logger.Debug(label+" cancelled by context", "error", err)
		return
	}

	s.logger.Error(label+" failed", "error", err)
}

func isContextCancellation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
