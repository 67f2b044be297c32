package data

import (
	"context"
	"database/sql"
	"time"

	"github.com/halcyonlabs/jobsched/internal/domain/model"
)

// JobLogRepo provides database operations for the append-only execution log.
type JobLogRepo struct {
	DB *sql.DB
}

// NewJobLogRepo creates a new JobLogRepo.
func NewJobLogRepo(db *sql.DB) *JobLogRepo {
	return &JobLogRepo{DB: db}
}

// jobLogSchema mirrors the log table migration so that sweeps on a fresh
// database do not fail before the first migration run.
const jobLogSchema = `
	CREATE TABLE IF NOT EXISTS job_logs (
		id BIGSERIAL PRIMARY KEY,
		job_name TEXT NOT NULL,
		handler TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		triggered_id BIGINT,
		triggered_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ,
		message TEXT NOT NULL DEFAULT ''
	)`

// EnsureSchema makes sure the log table exists.
func (r *JobLogRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, jobLogSchema); err != nil {
		return storageErr("ensure job_logs schema", err)
	}
	return nil
}

// Insert appends a log row and returns it with its generated id.
func (r *JobLogRepo) Insert(ctx context.Context, entry *model.JobLog) (*model.JobLog, error) {
	var triggeredID sql.NullInt64
	if entry.TriggeredID != nil {
		triggeredID = sql.NullInt64{Int64: *entry.TriggeredID, Valid: true}
	}
	var finishedAt sql.NullTime
	if entry.FinishedAt != nil {
		finishedAt = sql.NullTime{Time: entry.FinishedAt.UTC(), Valid: true}
	}

	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO job_logs (job_name, handler, status, triggered_id, triggered_at, finished_at, message)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id
	`, entry.JobName, entry.Handler, string(entry.Status), triggeredID,
		entry.TriggeredAt.UTC(), finishedAt, entry.Message)

	inserted := *entry
	if err := row.Scan(&inserted.ID); err != nil {
		return nil, storageErr("insert job log", err)
	}
	return &inserted, nil
}

// ListByJob returns the most recent log rows for a job, newest first.
func (r *JobLogRepo) ListByJob(ctx context.Context, jobName string, limit int) ([]*model.JobLog, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, job_name, handler, status, triggered_id, triggered_at, finished_at, message
		FROM job_logs
		WHERE job_name = $1
		ORDER BY triggered_at DESC, id DESC
		LIMIT $2
	`, jobName, limit)
	if err != nil {
		return nil, storageErr("list job logs", err)
	}
	defer rows.Close()

	var entries []*model.JobLog
	for rows.Next() {
		entry, scanErr := scanJobLog(rows)
		if scanErr != nil {
			return nil, storageErr("scan job log", scanErr)
		}
		entries = append(entries, entry)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, storageErr("list job logs", rowsErr)
	}
	return entries, nil
}

// DeleteOlderThan removes log rows triggered strictly before the cutoff.
// The timestamp predicate makes it safe to run concurrently with writers.
func (r *JobLogRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM job_logs WHERE triggered_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, storageErr("delete old job logs", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr("delete old job logs rows affected", err)
	}
	return affected, nil
}

// DeleteByJob removes all log rows for one job.
func (r *JobLogRepo) DeleteByJob(ctx context.Context, jobName string) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM job_logs WHERE job_name = $1`, jobName)
	if err != nil {
		return 0, storageErr("clear job logs", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr("clear job logs rows affected", err)
	}
	return affected, nil
}

func scanJobLog(scanner jobRowScanner) (*model.JobLog, error) {
	entry := &model.JobLog{}
	var (
		status      string
		triggeredID sql.NullInt64
		finishedAt  sql.NullTime
	)
	if err := scanner.Scan(
		&entry.ID,
		&entry.JobName,
		&entry.Handler,
		&status,
		&triggeredID,
		&entry.TriggeredAt,
		&finishedAt,
		&entry.Message,
	); err != nil {
		return nil, err
	}
	entry.Status = model.JobStatus(status)
	if triggeredID.Valid {
		id := triggeredID.Int64
		entry.TriggeredID = &id
	}
	entry.FinishedAt = cloneNullableTime(finishedAt)
	return entry, nil
}
