package data

import (
	"context"
	"database/sql"

	"github.com/halcyonlabs/jobsched/internal/domain/model"
)

// JobEmailRepo provides database operations for per-job watcher addresses.
type JobEmailRepo struct {
	DB *sql.DB
}

// NewJobEmailRepo creates a new JobEmailRepo.
func NewJobEmailRepo(db *sql.DB) *JobEmailRepo {
	return &JobEmailRepo{DB: db}
}

// ListByJob returns all watcher addresses for a job.
func (r *JobEmailRepo) ListByJob(ctx context.Context, jobName string) ([]model.JobEmail, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, job_name, email
		FROM job_emails
		WHERE job_name = $1
		ORDER BY email
	`, jobName)
	if err != nil {
		return nil, storageErr("list job emails", err)
	}
	defer rows.Close()

	var emails []model.JobEmail
	for rows.Next() {
		var e model.JobEmail
		if scanErr := rows.Scan(&e.ID, &e.JobName, &e.Email); scanErr != nil {
			return nil, storageErr("scan job email", scanErr)
		}
		emails = append(emails, e)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, storageErr("list job emails", rowsErr)
	}
	return emails, nil
}

// Insert persists a new watcher address.
func (r *JobEmailRepo) Insert(ctx context.Context, email *model.JobEmail) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO job_emails (id, job_name, email)
		VALUES ($1,$2,$3)
	`, email.ID, email.JobName, email.Email)
	if err != nil {
		return storageErr("insert job email", err)
	}
	return nil
}

// Delete removes a watcher address by id.
func (r *JobEmailRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM job_emails WHERE id = $1`, id)
	if err != nil {
		return storageErr("delete job email", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storageErr("delete job email rows affected", err)
	}
	if affected == 0 {
		return ErrJobEmailNotFound
	}
	return nil
}
