package data

import (
	"context"
	"strings"

	"github.com/halcyonlabs/jobsched/internal/domain/model"
)

// JobParameterRepo provides database operations for job parameters, keyed by
// the composite (job_name, name). It runs over a plain handle or, inside a
// Store transaction scope, over a *sql.Tx.
type JobParameterRepo struct {
	DB DBTX
}

// NewJobParameterRepo creates a new JobParameterRepo over the given statement
// surface.
func NewJobParameterRepo(db DBTX) *JobParameterRepo {
	return &JobParameterRepo{DB: db}
}

// Upsert inserts the parameter or, when a row with the same composite key
// exists, overwrites it. The later write wins.
func (r *JobParameterRepo) Upsert(ctx context.Context, param *model.JobParameter) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO job_parameters (job_name, name, param_type, default_value, choices, description)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (job_name, name) DO UPDATE
		SET param_type = EXCLUDED.param_type,
		    default_value = EXCLUDED.default_value,
		    choices = EXCLUDED.choices,
		    description = EXCLUDED.description
	`, param.JobName, param.Name, param.Type, param.DefaultValue,
		joinChoices(param.Choices), param.Description)
	if err != nil {
		return storageErr("upsert job parameter", err)
	}
	return nil
}

// ListByJob returns all stored parameters for a job.
func (r *JobParameterRepo) ListByJob(ctx context.Context, jobName string) ([]model.JobParameter, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT job_name, name, param_type, default_value, choices, description
		FROM job_parameters
		WHERE job_name = $1
		ORDER BY name
	`, jobName)
	if err != nil {
		return nil, storageErr("list job parameters", err)
	}
	defer rows.Close()

	var params []model.JobParameter
	for rows.Next() {
		var (
			p       model.JobParameter
			choices string
		)
		if scanErr := rows.Scan(&p.JobName, &p.Name, &p.Type, &p.DefaultValue, &choices, &p.Description); scanErr != nil {
			return nil, storageErr("scan job parameter", scanErr)
		}
		p.Choices = splitChoices(choices)
		params = append(params, p)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, storageErr("list job parameters", rowsErr)
	}
	return params, nil
}

// Delete removes one parameter by its composite key.
func (r *JobParameterRepo) Delete(ctx context.Context, jobName, name string) error {
	_, err := r.DB.ExecContext(ctx,
		`DELETE FROM job_parameters WHERE job_name = $1 AND name = $2`, jobName, name)
	if err != nil {
		return storageErr("delete job parameter", err)
	}
	return nil
}

// Choices are stored as a comma-joined column, mirroring the serialized form.
func joinChoices(choices []string) string {
	return strings.Join(choices, ",")
}

func splitChoices(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}
