package data

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonlabs/jobsched/internal/domain/model"
)

func newMock(t *testing.T) (*JobRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewJobRepo(db), mock
}

func jobRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"name", "job_group", "handler_class", "handler", "engine", "description",
		"expression", "singleton", "enabled", "status", "message", "executed_at",
		"created_by", "created_at",
	})
}

func TestJobRepo_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("scans a full row", func(t *testing.T) {
		repo, mock := newMock(t)
		executed := time.Date(2026, 8, 1, 11, 0, 0, 0, time.UTC)
		created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(regexp.QuoteMeta("FROM jobs")).
			WithArgs("backup").
			WillReturnRows(jobRows().AddRow(
				"backup", "defined", "", "jobs/backup.js", "javascript", "nightly",
				"0 0 * * * ?", false, true, "finished", "", executed,
				"tester", created,
			))

		def, err := repo.Get(ctx, "backup")
		require.NoError(t, err)
		assert.Equal(t, "backup", def.Name)
		assert.Equal(t, model.JobStatusFinished, def.Status)
		require.NotNil(t, def.ExecutedAt)
		assert.Equal(t, executed, *def.ExecutedAt)
		assert.Equal(t, created, def.CreatedAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps absence to the sentinel", func(t *testing.T) {
		repo, mock := newMock(t)

		mock.ExpectQuery(regexp.QuoteMeta("FROM jobs")).
			WithArgs("missing").
			WillReturnRows(jobRows())

		_, err := repo.Get(ctx, "missing")
		require.ErrorIs(t, err, ErrJobNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestJobRepo_Update(t *testing.T) {
	t.Run("zero affected rows means the job is gone", func(t *testing.T) {
		repo, mock := newMock(t)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE jobs")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(context.Background(), &model.JobDefinition{Name: "missing"})
		require.ErrorIs(t, err, ErrJobNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestJobRepo_Exists(t *testing.T) {
	t.Run("reports presence", func(t *testing.T) {
		repo, mock := newMock(t)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
			WithArgs("backup").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		exists, err := repo.Exists(context.Background(), "backup")
		require.NoError(t, err)
		assert.True(t, exists)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
