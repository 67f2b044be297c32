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

func newEmailMock(t *testing.T) (*JobEmailRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewJobEmailRepo(db), mock
}

func TestJobEmailRepo_Insert(t *testing.T) {
	t.Run("persists the watcher", func(t *testing.T) {
		repo, mock := newEmailMock(t)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO job_emails")).
			WithArgs("id-1", "backup", "ops@example.com").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Insert(context.Background(), &model.JobEmail{
			ID:      "id-1",
			JobName: "backup",
			Email:   "ops@example.com",
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestJobEmailRepo_Delete(t *testing.T) {
	t.Run("zero affected rows means the watcher is gone", func(t *testing.T) {
		repo, mock := newEmailMock(t)

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM job_emails WHERE id = $1")).
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), "missing")
		require.ErrorIs(t, err, ErrJobEmailNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestJobEmailRepo_ListByJob(t *testing.T) {
	t.Run("returns watchers ordered by address", func(t *testing.T) {
		repo, mock := newEmailMock(t)

		rows := sqlmock.NewRows([]string{"id", "job_name", "email"}).
			AddRow("id-1", "backup", "alice@example.com").
			AddRow("id-2", "backup", "bob@example.com")

		mock.ExpectQuery(regexp.QuoteMeta("FROM job_emails")).
			WithArgs("backup").
			WillReturnRows(rows)

		emails, err := repo.ListByJob(context.Background(), "backup")
		require.NoError(t, err)
		require.Len(t, emails, 2)
		assert.Equal(t, "alice@example.com", emails[0].Email)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
