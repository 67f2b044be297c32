package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/halcyonlabs/jobsched/internal/core"
	"github.com/halcyonlabs/jobsched/internal/data"
	"github.com/halcyonlabs/jobsched/internal/domain/model"
)

// JobServiceOptions groups dependencies for JobService.
type JobServiceOptions struct {
	Jobs       core.JobRepository          // Required: job definition repository
	Parameters core.JobParameterRepository // Required: job parameter repository
	Tx         core.TxScope                // Required: transaction scope for job writes
	Notifier   core.TransitionNotifier     // Optional: enable/disable edge notifications
	Principal  string                      // Optional: acting identity for created_by stamps
	Logger     *slog.Logger                // Optional: structured logger
	Now        func() time.Time            // Optional: clock override for tests
}

// JobService provides business logic for job definitions.
//
// This service manages:
// - CRUD operations for job definitions, keyed by unique name
// - Reconciliation of the stored parameter set on every create-or-update
// - Enable/disable edge detection with transition notifications.
type JobService struct {
	jobs      core.JobRepository
	params    core.JobParameterRepository
	tx        core.TxScope
	notifier  core.TransitionNotifier
	principal string
	logger    *slog.Logger
	now       func() time.Time
}

// NewJobService constructs a new JobService.
func NewJobService(opts JobServiceOptions) (*JobService, error) {
	if opts.Jobs == nil {
		return nil, errors.New("JobRepository is required")
	}
	if opts.Parameters == nil {
		return nil, errors.New("JobParameterRepository is required")
	}
	if opts.Tx == nil {
		return nil, errors.New("TxScope is required")
	}

	principal := opts.Principal
	if principal == "" {
		principal = "system"
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "job_service")
	}

	return &JobService{
		jobs:      opts.Jobs,
		params:    opts.Parameters,
		tx:        opts.Tx,
		notifier:  opts.Notifier,
		principal: principal,
		logger:    logger,
		now:       now,
	}, nil
}

// JobRequest carries the caller-supplied fields of a job definition.
type JobRequest struct {
	Name         string
	Group        string
	HandlerClass string
	Handler      string
	Engine       string
	Description  string
	Expression   string
	Singleton    bool
	Enabled      bool
	Parameters   []model.JobParameter
}

// Create builds a job definition from the request, stamps the acting
// principal and creation time, and persists it via CreateOrUpdate.
func (s *JobService) Create(ctx context.Context, req JobRequest) (*model.JobDefinition, error) {
	def := &model.JobDefinition{
		Name:         req.Name,
		Group:        req.Group,
		HandlerClass: req.HandlerClass,
		Handler:      req.Handler,
		Engine:       req.Engine,
		Description:  req.Description,
		Expression:   req.Expression,
		Singleton:    req.Singleton,
		Enabled:      req.Enabled,
		CreatedBy:    s.principal,
		CreatedAt:    s.now(),
		Parameters:   req.Parameters,
	}
	return s.CreateOrUpdate(ctx, def)
}

// CreateFromContent parses a serialized job definition and persists it. The
// parsed definition is always placed in the user-defined group.
func (s *JobService) CreateFromContent(ctx context.Context, content []byte) (*model.JobDefinition, error) {
	def, err := model.ParseJob(content)
	if err != nil {
		return nil, err
	}
	return s.CreateOrUpdate(ctx, def)
}

// CreateOrUpdate persists the job definition, inserting or updating by name,
// and reconciles its parameter set. On an update, a flip of the enabled flag
// triggers exactly one enabled/disabled notification; creation-time stamps of
// the existing row are preserved.
func (s *JobService) CreateOrUpdate(ctx context.Context, def *model.JobDefinition) (*model.JobDefinition, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if def.CreatedAt.IsZero() {
		def.CreatedAt = s.now()
	}
	if def.CreatedBy == "" {
		def.CreatedBy = s.principal
	}

	existing, err := s.jobs.Get(ctx, def.Name)
	if err != nil && !errors.Is(err, data.ErrJobNotFound) {
		return nil, fmt.Errorf("load existing job %s: %w", def.Name, err)
	}

	if existing == nil {
		txErr := s.tx.InTx(ctx, func(jobs core.JobRepository, params core.JobParameterRepository) error {
			if insertErr := jobs.Insert(ctx, def); insertErr != nil {
				// A concurrent insert can slip in between the existence check
				// and the write.
				if data.IsUniqueViolation(insertErr) {
					return &model.ValidationError{Field: "name", Reason: "job name already exists: " + def.Name}
				}
				return fmt.Errorf("insert job %s: %w", def.Name, insertErr)
			}
			return s.reconcileParameters(ctx, params, def)
		})
		if txErr != nil {
			return nil, txErr
		}
		if s.logger != nil {
			s.logger.DebugContext(ctx, "job created", "name", def.Name, "enabled", def.Enabled)
		}
		return def, nil
	}

	// created_by and created_at are first-insert stamps and survive updates.
	def.CreatedAt = existing.CreatedAt
	def.CreatedBy = existing.CreatedBy

	txErr := s.tx.InTx(ctx, func(jobs core.JobRepository, params core.JobParameterRepository) error {
		if updateErr := jobs.Update(ctx, def); updateErr != nil {
			return fmt.Errorf("update job %s: %w", def.Name, updateErr)
		}
		return s.reconcileParameters(ctx, params, def)
	})
	if txErr != nil {
		return nil, txErr
	}

	if s.notifier != nil {
		switch {
		case existing.Enabled && !def.Enabled:
			s.notifier.JobDisabled(ctx, def)
		case !existing.Enabled && def.Enabled:
			s.notifier.JobEnabled(ctx, def)
		}
	}

	return def, nil
}

// reconcileParameters makes the stored parameter set an exact mirror of the
// declared one: upsert every declared parameter, then prune stored rows whose
// name is no longer declared. An empty declared set prunes everything.
func (s *JobService) reconcileParameters(ctx context.Context, params core.JobParameterRepository, def *model.JobDefinition) error {
	desired := make(map[string]struct{}, len(def.Parameters))
	for i := range def.Parameters {
		param := def.Parameters[i]
		param.JobName = def.Name
		if err := params.Upsert(ctx, &param); err != nil {
			return fmt.Errorf("upsert parameter %s of job %s: %w", param.Name, def.Name, err)
		}
		desired[param.Name] = struct{}{}
	}

	stored, err := params.ListByJob(ctx, def.Name)
	if err != nil {
		return fmt.Errorf("list parameters of job %s: %w", def.Name, err)
	}
	for _, param := range stored {
		if _, ok := desired[param.Name]; ok {
			continue
		}
		if deleteErr := params.Delete(ctx, def.Name, param.Name); deleteErr != nil {
			return fmt.Errorf("prune parameter %s of job %s: %w", param.Name, def.Name, deleteErr)
		}
	}
	return nil
}

// Get returns the job definition with its current parameter set attached, or
// nil when no job with that name exists. Absence is not an error.
func (s *JobService) Get(ctx context.Context, name string) (*model.JobDefinition, error) {
	def, err := s.jobs.Get(ctx, name)
	if errors.Is(err, data.ErrJobNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", name, err)
	}

	params, err := s.params.ListByJob(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("list parameters of job %s: %w", name, err)
	}
	def.Parameters = params
	return def, nil
}

// GetParameters returns the stored parameter set for a job.
func (s *JobService) GetParameters(ctx context.Context, name string) ([]model.JobParameter, error) {
	params, err := s.params.ListByJob(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("list parameters of job %s: %w", name, err)
	}
	return params, nil
}

// List returns all job definitions, without parameters attached.
func (s *JobService) List(ctx context.Context) ([]*model.JobDefinition, error) {
	defs, err := s.jobs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return defs, nil
}

// Update loads the job by name, overlays the request fields, replaces the
// parameter set, and persists via CreateOrUpdate. Fails when the job does not
// exist.
func (s *JobService) Update(ctx context.Context, name string, req JobRequest) (*model.JobDefinition, error) {
	def, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, fmt.Errorf("update job %s: %w", name, data.ErrJobNotFound)
	}

	def.Group = req.Group
	def.HandlerClass = req.HandlerClass
	def.Handler = req.Handler
	def.Engine = req.Engine
	def.Description = req.Description
	def.Expression = req.Expression
	def.Singleton = req.Singleton
	def.Enabled = req.Enabled
	def.Parameters = req.Parameters

	return s.CreateOrUpdate(ctx, def)
}

// Remove deletes the job definition only. Its logs and watcher addresses are
// cleaned up separately.
func (s *JobService) Remove(ctx context.Context, name string) error {
	if err := s.jobs.Delete(ctx, name); err != nil {
		return fmt.Errorf("remove job %s: %w", name, err)
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "job removed", "name", name)
	}
	return nil
}

// Exists reports whether a job definition with the given name exists.
func (s *JobService) Exists(ctx context.Context, name string) (bool, error) {
	exists, err := s.jobs.Exists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("job exists %s: %w", name, err)
	}
	return exists, nil
}
