package data

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonlabs/jobsched/internal/domain/model"
)

func newParamMock(t *testing.T) (*JobParameterRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewJobParameterRepo(db), mock
}

func TestJobParameterRepo_Upsert(t *testing.T) {
	t.Run("writes the composite key and joined choices", func(t *testing.T) {
		repo, mock := newParamMock(t)

		mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (job_name, name) DO UPDATE")).
			WithArgs("backup", "target", "choice", "/srv", "/srv,/var", "backup target").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Upsert(context.Background(), &model.JobParameter{
			JobName:      "backup",
			Name:         "target",
			Type:         "choice",
			DefaultValue: "/srv",
			Choices:      []string{"/srv", "/var"},
			Description:  "backup target",
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestJobParameterRepo_ListByJob(t *testing.T) {
	t.Run("splits stored choices", func(t *testing.T) {
		repo, mock := newParamMock(t)

		rows := sqlmock.NewRows([]string{
			"job_name", "name", "param_type", "default_value", "choices", "description",
		}).
			AddRow("backup", "depth", "number", "3", "", "").
			AddRow("backup", "target", "choice", "/srv", "/srv,/var", "backup target")

		mock.ExpectQuery(regexp.QuoteMeta("FROM job_parameters")).
			WithArgs("backup").
			WillReturnRows(rows)

		params, err := repo.ListByJob(context.Background(), "backup")
		require.NoError(t, err)
		require.Len(t, params, 2)
		assert.Nil(t, params[0].Choices)
		assert.Equal(t, []string{"/srv", "/var"}, params[1].Choices)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestJobParameterRepo_Delete(t *testing.T) {
	t.Run("deletes by composite key", func(t *testing.T) {
		repo, mock := newParamMock(t)

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM job_parameters WHERE job_name = $1 AND name = $2")).
			WithArgs("backup", "target").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Delete(context.Background(), "backup", "target"))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
