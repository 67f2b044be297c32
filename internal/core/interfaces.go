// Package core defines the interfaces between the scheduler services and
// their collaborators (persistence repositories, transition notifier).
package core

import (
	"context"
	"time"

	"github.com/halcyonlabs/jobsched/internal/domain/model"
)

// JobRepository persists job definitions keyed by their unique name.
type JobRepository interface {
	// Get returns the job definition, or data.ErrJobNotFound when absent.
	// The returned definition does not include parameters.
	Get(ctx context.Context, name string) (*model.JobDefinition, error)
	List(ctx context.Context) ([]*model.JobDefinition, error)
	Insert(ctx context.Context, def *model.JobDefinition) error
	Update(ctx context.Context, def *model.JobDefinition) error
	Delete(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
}

// JobParameterRepository persists job parameters under the composite key
// (job name, parameter name).
type JobParameterRepository interface {
	// Upsert inserts the parameter or updates the row with the same
	// composite key; the later write wins.
	Upsert(ctx context.Context, param *model.JobParameter) error
	ListByJob(ctx context.Context, jobName string) ([]model.JobParameter, error)
	Delete(ctx context.Context, jobName, name string) error
}

// TxScope runs a function against transaction-bound job and parameter
// repositories. Writes made through the callback's repositories commit
// together or not at all, so a job write can never outlive a failed
// parameter reconciliation.
type TxScope interface {
	InTx(ctx context.Context, fn func(jobs JobRepository, params JobParameterRepository) error) error
}

// JobLogRepository persists append-only execution log rows.
type JobLogRepository interface {
	// Insert appends a log row and returns it with its generated id.
	Insert(ctx context.Context, entry *model.JobLog) (*model.JobLog, error)
	// ListByJob returns the most recent rows for a job, newest first.
	ListByJob(ctx context.Context, jobName string, limit int) ([]*model.JobLog, error)
	// DeleteOlderThan removes rows triggered strictly before the cutoff and
	// returns the number of rows removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	// DeleteByJob removes all rows for one job.
	DeleteByJob(ctx context.Context, jobName string) (int64, error)
	// EnsureSchema makes sure the log table exists, to tolerate a sweep
	// running before the first migration of a fresh database.
	EnsureSchema(ctx context.Context) error
}

// JobEmailRepository persists watcher addresses per job.
type JobEmailRepository interface {
	ListByJob(ctx context.Context, jobName string) ([]model.JobEmail, error)
	Insert(ctx context.Context, email *model.JobEmail) error
	Delete(ctx context.Context, id string) error
}

// TransitionNotifier delivers transition notifications for a job. Delivery is
// best-effort: implementations log failures locally and never return them, so
// a failed notification cannot make a job execution look like a processing
// failure.
type TransitionNotifier interface {
	JobFailed(ctx context.Context, job *model.JobDefinition)
	JobRecovered(ctx context.Context, job *model.JobDefinition)
	JobEnabled(ctx context.Context, job *model.JobDefinition)
	JobDisabled(ctx context.Context, job *model.JobDefinition)
}
