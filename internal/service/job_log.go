package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/halcyonlabs/jobsched/internal/core"
	"github.com/halcyonlabs/jobsched/internal/domain/model"
)

const defaultLogQueryLimit = 1000

// JobLogServiceOptions groups dependencies for JobLogService.
type JobLogServiceOptions struct {
	Logs       core.JobLogRepository   // Required: execution log repository
	Jobs       *JobService             // Required: rollup status maintenance
	Notifier   core.TransitionNotifier // Optional: failure/recovery notifications
	Logger     *slog.Logger            // Optional: structured logger
	Now        func() time.Time        // Optional: clock override for tests
	QueryLimit int                     // Optional: per-job history query limit
}

// JobLogService records execution events in the append-only log and keeps the
// rollup status of the owning job definition in sync with the latest terminal
// event. A terminal event that flips the rollup status raises exactly one
// failure or recovery notification.
type JobLogService struct {
	logs       core.JobLogRepository
	jobs       *JobService
	notifier   core.TransitionNotifier
	logger     *slog.Logger
	now        func() time.Time
	queryLimit int
}

// NewJobLogService constructs a new JobLogService.
func NewJobLogService(opts JobLogServiceOptions) (*JobLogService, error) {
	if opts.Logs == nil {
		return nil, errors.New("JobLogRepository is required")
	}
	if opts.Jobs == nil {
		return nil, errors.New("JobService is required")
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	limit := opts.QueryLimit
	if limit <= 0 {
		limit = defaultLogQueryLimit
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &JobLogService{
		logs:       opts.Logs,
		jobs:       opts.Jobs,
		notifier:   opts.Notifier,
		logger:     logger.With("component", "job_log_service"),
		now:        now,
		queryLimit: limit,
	}, nil
}

// Triggered appends a triggered event for a new execution. The id of the
// returned entry is the correlation id the terminal event must carry.
func (s *JobLogService) Triggered(ctx context.Context, name, handler string) (*model.JobLog, error) {
	entry := &model.JobLog{
		JobName:     name,
		Handler:     handler,
		Status:      model.JobStatusTriggered,
		TriggeredAt: s.now(),
	}
	entry, err := s.logs.Insert(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("record triggered event for job %s: %w", name, err)
	}
	return entry, nil
}

// Finished appends a finished event correlated to an earlier triggered event
// and rolls the job status up to finished, clearing any failure message.
func (s *JobLogService) Finished(ctx context.Context, name, handler string, triggeredID int64, triggeredAt time.Time) (*model.JobLog, error) {
	return s.recordTerminal(ctx, name, handler, model.JobStatusFinished, triggeredID, triggeredAt, "")
}

// Failed appends a failed event correlated to an earlier triggered event and
// rolls the job status up to failed, recording the failure message.
func (s *JobLogService) Failed(ctx context.Context, name, handler string, triggeredID int64, triggeredAt time.Time, message string) (*model.JobLog, error) {
	return s.recordTerminal(ctx, name, handler, model.JobStatusFailed, triggeredID, triggeredAt, message)
}

func (s *JobLogService) recordTerminal(ctx context.Context, name, handler string, status model.JobStatus, triggeredID int64, triggeredAt time.Time, message string) (*model.JobLog, error) {
	finishedAt := s.now()
	entry := &model.JobLog{
		JobName:     name,
		Handler:     handler,
		Status:      status,
		TriggeredID: &triggeredID,
		TriggeredAt: triggeredAt,
		FinishedAt:  &finishedAt,
		Message:     message,
	}
	entry, err := s.logs.Insert(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("record %s event for job %s: %w", status, name, err)
	}

	// The job is loaded with its parameter set attached so that the rollup
	// write does not prune parameters during reconciliation.
	job, err := s.jobs.Get(ctx, name)
	if err != nil {
		return entry, fmt.Errorf("load job %s for status rollup: %w", name, err)
	}
	if job == nil {
		s.logger.WarnContext(ctx, "terminal event recorded for unknown job, skipping status rollup",
			"job", name,
			"status", string(status),
		)
		return entry, nil
	}

	changed := job.Status != status
	job.Status = status
	job.Message = message
	job.ExecutedAt = entry.FinishedAt

	if _, err := s.jobs.CreateOrUpdate(ctx, job); err != nil {
		return entry, fmt.Errorf("roll up status of job %s: %w", name, err)
	}

	if changed && s.notifier != nil {
		if status == model.JobStatusFailed {
			s.notifier.JobFailed(ctx, job)
		} else {
			s.notifier.JobRecovered(ctx, job)
		}
	}
	return entry, nil
}

// Logged appends an informational message without severity.
func (s *JobLogService) Logged(ctx context.Context, name, handler, message string) (*model.JobLog, error) {
	return s.logged(ctx, name, handler, model.JobStatusLogged, message)
}

// LoggedError appends a message with error severity.
func (s *JobLogService) LoggedError(ctx context.Context, name, handler, message string) (*model.JobLog, error) {
	return s.logged(ctx, name, handler, model.JobStatusError, message)
}

// LoggedWarning appends a message with warning severity.
func (s *JobLogService) LoggedWarning(ctx context.Context, name, handler, message string) (*model.JobLog, error) {
	return s.logged(ctx, name, handler, model.JobStatusWarn, message)
}

// LoggedInfo appends a message with info severity.
func (s *JobLogService) LoggedInfo(ctx context.Context, name, handler, message string) (*model.JobLog, error) {
	return s.logged(ctx, name, handler, model.JobStatusInfo, message)
}

// logged events carry no correlation id and never touch the rollup status.
func (s *JobLogService) logged(ctx context.Context, name, handler string, status model.JobStatus, message string) (*model.JobLog, error) {
	entry := &model.JobLog{
		JobName:     name,
		Handler:     handler,
		Status:      status,
		TriggeredAt: s.now(),
		Message:     message,
	}
	entry, err := s.logs.Insert(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("record %s message for job %s: %w", status, name, err)
	}
	return entry, nil
}

// ListByJob returns the most recent log entries for a job, newest first,
// capped at the configured query limit.
func (s *JobLogService) ListByJob(ctx context.Context, name string) ([]*model.JobLog, error) {
	entries, err := s.logs.ListByJob(ctx, name, s.queryLimit)
	if err != nil {
		return nil, fmt.Errorf("list logs of job %s: %w", name, err)
	}
	return entries, nil
}
