package data

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/halcyonlabs/jobsched/internal/domain/model"
)

// JobRepo provides database operations for job definitions. It runs over a
// plain handle or, inside a Store transaction scope, over a *sql.Tx.
type JobRepo struct {
	DB DBTX
}

// NewJobRepo creates a new JobRepo over the given statement surface.
func NewJobRepo(db DBTX) *JobRepo {
	return &JobRepo{DB: db}
}

const jobColumns = `
  name,
  job_group,
  handler_class,
  handler,
  engine,
  description,
  expression,
  singleton,
  enabled,
  status,
  message,
  executed_at,
  created_by,
  created_at
`

// Get retrieves a job definition by name. Returns ErrJobNotFound when absent.
// Parameters are not attached here; the service layer reads them through.
func (r *JobRepo) Get(ctx context.Context, name string) (*model.JobDefinition, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE name = $1
	`, name)

	def, err := scanJobFromRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, storageErr("get job", err)
	}
	return def, nil
}

// List returns all job definitions ordered by name.
func (r *JobRepo) List(ctx context.Context) ([]*model.JobDefinition, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		ORDER BY name
	`)
	if err != nil {
		return nil, storageErr("list jobs", err)
	}
	defer rows.Close()

	var defs []*model.JobDefinition
	for rows.Next() {
		def, scanErr := scanJobFromRow(rows)
		if scanErr != nil {
			return nil, storageErr("scan job", scanErr)
		}
		defs = append(defs, def)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, storageErr("list jobs", rowsErr)
	}
	return defs, nil
}

// Insert persists a new job definition.
func (r *JobRepo) Insert(ctx context.Context, def *model.JobDefinition) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO jobs (name, job_group, handler_class, handler, engine, description,
		                  expression, singleton, enabled, status, message, executed_at,
		                  created_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, jobArgs(def)...)
	if err != nil {
		return storageErr("insert job", err)
	}
	return nil
}

// Update overwrites an existing job definition. CreatedBy and CreatedAt are
// written as given; the service layer preserves the original stamps.
func (r *JobRepo) Update(ctx context.Context, def *model.JobDefinition) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE jobs
		SET job_group = $2,
		    handler_class = $3,
		    handler = $4,
		    engine = $5,
		    description = $6,
		    expression = $7,
		    singleton = $8,
		    enabled = $9,
		    status = $10,
		    message = $11,
		    executed_at = $12,
		    created_by = $13,
		    created_at = $14
		WHERE name = $1
	`, jobArgs(def)...)
	if err != nil {
		return storageErr("update job", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storageErr("update job rows affected", err)
	}
	if affected == 0 {
		return ErrJobNotFound
	}
	return nil
}

// Delete removes a job definition. Its logs and watcher addresses are removed
// separately.
func (r *JobRepo) Delete(ctx context.Context, name string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM jobs WHERE name = $1`, name); err != nil {
		return storageErr("delete job", err)
	}
	return nil
}

// Exists reports whether a job definition with the given name exists.
func (r *JobRepo) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM jobs WHERE name = $1)`, name,
	).Scan(&exists)
	if err != nil {
		return false, storageErr("job exists", err)
	}
	return exists, nil
}

func jobArgs(def *model.JobDefinition) []any {
	var executedAt sql.NullTime
	if def.ExecutedAt != nil {
		executedAt = sql.NullTime{Time: def.ExecutedAt.UTC(), Valid: true}
	}
	return []any{
		def.Name,
		def.Group,
		def.HandlerClass,
		def.Handler,
		def.Engine,
		def.Description,
		def.Expression,
		def.Singleton,
		def.Enabled,
		string(def.Status),
		def.Message,
		executedAt,
		def.CreatedBy,
		def.CreatedAt.UTC(),
	}
}

type jobRowScanner interface {
	Scan(dest ...any) error
}

func scanJobFromRow(scanner jobRowScanner) (*model.JobDefinition, error) {
	def := &model.JobDefinition{}
	var (
		status     string
		executedAt sql.NullTime
	)
	if err := scanner.Scan(
		&def.Name,
		&def.Group,
		&def.HandlerClass,
		&def.Handler,
		&def.Engine,
		&def.Description,
		&def.Expression,
		&def.Singleton,
		&def.Enabled,
		&status,
		&def.Message,
		&executedAt,
		&def.CreatedBy,
		&def.CreatedAt,
	); err != nil {
		return nil, err
	}
	def.Status = model.JobStatus(status)
	if executedAt.Valid {
		t := executedAt.Time.UTC()
		def.ExecutedAt = &t
	}
	return def, nil
}

// cloneNullableTime converts a nullable scan target into an optional value.
func cloneNullableTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}
