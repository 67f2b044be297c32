package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/halcyonlabs/jobsched/internal/core"
	"github.com/halcyonlabs/jobsched/internal/domain/model"
)

// WatcherServiceOptions groups dependencies for WatcherService.
type WatcherServiceOptions struct {
	Emails core.JobEmailRepository // Required: watcher registry repository
	Logger *slog.Logger            // Optional: structured logger
}

// WatcherService manages the per-job registry of e-mail addresses that
// override the global recipient list for transition notifications.
type WatcherService struct {
	emails core.JobEmailRepository
	logger *slog.Logger
}

// NewWatcherService constructs a new WatcherService.
func NewWatcherService(opts WatcherServiceOptions) (*WatcherService, error) {
	if opts.Emails == nil {
		return nil, errors.New("JobEmailRepository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "watcher_service")
	}

	return &WatcherService{emails: opts.Emails, logger: logger}, nil
}

// List returns the watcher addresses registered for a job.
func (s *WatcherService) List(ctx context.Context, jobName string) ([]model.JobEmail, error) {
	watchers, err := s.emails.ListByJob(ctx, jobName)
	if err != nil {
		return nil, fmt.Errorf("list watchers of job %s: %w", jobName, err)
	}
	return watchers, nil
}

// Add validates the address and registers it as a watcher for the job.
// A malformed address is rejected before anything is written.
func (s *WatcherService) Add(ctx context.Context, jobName, email string) (*model.JobEmail, error) {
	if err := model.ValidateEmail(email); err != nil {
		return nil, err
	}

	watcher := &model.JobEmail{
		ID:      uuid.NewString(),
		JobName: jobName,
		Email:   email,
	}
	if err := s.emails.Insert(ctx, watcher); err != nil {
		return nil, fmt.Errorf("add watcher for job %s: %w", jobName, err)
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "watcher registered", "job", jobName, "email", email)
	}
	return watcher, nil
}

// Remove deletes a watcher registration by its id.
func (s *WatcherService) Remove(ctx context.Context, id string) error {
	if err := s.emails.Delete(ctx, id); err != nil {
		return fmt.Errorf("remove watcher %s: %w", id, err)
	}
	return nil
}
