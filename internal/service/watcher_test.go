package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonlabs/jobsched/internal/data"
	"github.com/halcyonlabs/jobsched/internal/domain/model"
)

// fakeEmailRepo is an in-memory JobEmailRepository for testing.
type fakeEmailRepo struct {
	watchers []model.JobEmail
	listErr  error
}

func (f *fakeEmailRepo) ListByJob(_ context.Context, jobName string) ([]model.JobEmail, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.JobEmail, 0)
	for _, w := range f.watchers {
		if w.JobName == jobName {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeEmailRepo) Insert(_ context.Context, email *model.JobEmail) error {
	f.watchers = append(f.watchers, *email)
	return nil
}

func (f *fakeEmailRepo) Delete(_ context.Context, id string) error {
	for i, w := range f.watchers {
		if w.ID == id {
			f.watchers = append(f.watchers[:i], f.watchers[i+1:]...)
			return nil
		}
	}
	return data.ErrJobEmailNotFound
}

func TestWatcherService_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("registers a valid address with a fresh id", func(t *testing.T) {
		repo := &fakeEmailRepo{}
		svc, err := NewWatcherService(WatcherServiceOptions{Emails: repo})
		require.NoError(t, err)

		watcher, err := svc.Add(ctx, "backup", "ops@example.com")
		require.NoError(t, err)
		assert.NotEmpty(t, watcher.ID)
		assert.Equal(t, "backup", watcher.JobName)

		listed, err := svc.List(ctx, "backup")
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, "ops@example.com", listed[0].Email)
	})

	t.Run("rejects a malformed address before writing", func(t *testing.T) {
		repo := &fakeEmailRepo{}
		svc, err := NewWatcherService(WatcherServiceOptions{Emails: repo})
		require.NoError(t, err)

		_, err = svc.Add(ctx, "backup", "not-an-address")
		require.Error(t, err)
		var verr *model.ValidationError
		assert.ErrorAs(t, err, &verr)
		assert.Empty(t, repo.watchers)
	})

	t.Run("rejects an address with a display name", func(t *testing.T) {
		svc, err := NewWatcherService(WatcherServiceOptions{Emails: &fakeEmailRepo{}})
		require.NoError(t, err)

		_, err = svc.Add(ctx, "backup", "Ops Team <ops@example.com>")
		require.Error(t, err)
	})
}

func TestWatcherService_Remove(t *testing.T) {
	ctx := context.Background()

	t.Run("removes a registration by id", func(t *testing.T) {
		repo := &fakeEmailRepo{}
		svc, err := NewWatcherService(WatcherServiceOptions{Emails: repo})
		require.NoError(t, err)

		watcher, err := svc.Add(ctx, "backup", "ops@example.com")
		require.NoError(t, err)

		require.NoError(t, svc.Remove(ctx, watcher.ID))
		assert.Empty(t, repo.watchers)
	})

	t.Run("fails for an unknown id", func(t *testing.T) {
		svc, err := NewWatcherService(WatcherServiceOptions{Emails: &fakeEmailRepo{}})
		require.NoError(t, err)

		err = svc.Remove(ctx, "no-such-id")
		require.Error(t, err)
		assert.ErrorIs(t, err, data.ErrJobEmailNotFound)
	})
}
