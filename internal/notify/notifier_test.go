package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonlabs/jobsched/config"
	"github.com/halcyonlabs/jobsched/internal/domain/model"
)

// fakeEmailRepo is an in-memory watcher registry for testing.
type fakeEmailRepo struct {
	watchers map[string][]model.JobEmail
	listErr  error
}

func (f *fakeEmailRepo) ListByJob(_ context.Context, jobName string) ([]model.JobEmail, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.watchers[jobName], nil
}

func (f *fakeEmailRepo) Insert(_ context.Context, email *model.JobEmail) error {
	if f.watchers == nil {
		f.watchers = make(map[string][]model.JobEmail)
	}
	f.watchers[email.JobName] = append(f.watchers[email.JobName], *email)
	return nil
}

func (f *fakeEmailRepo) Delete(_ context.Context, _ string) error {
	return nil
}

// captureMailer records sent messages.
type captureMailer struct {
	mu      sync.Mutex
	sent    []Message
	sendErr error
}

func (m *captureMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *captureMailer) messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}

func testNotifyConfig() config.NotifyConfig {
	return config.NotifyConfig{
		Sender:         "scheduler@example.com",
		Recipients:     []string{"ops@example.com", "oncall@example.com"},
		SubjectError:   "Job execution failed: [%s]",
		SubjectNormal:  "Job execution is back to normal: [%s]",
		SubjectEnable:  "Job execution has been enabled: [%s]",
		SubjectDisable: "Job execution has been disabled: [%s]",
		TemplateEngine: "mustache",
		URLScheme:      "https",
		URLHost:        "jobs.example.com",
		URLPort:        "443",
	}
}

func testJob() *model.JobDefinition {
	return &model.JobDefinition{
		Name:    "backup",
		Handler: "jobs/backup.js",
		Message: "disk full",
	}
}

func TestNotifier_recipients(t *testing.T) {
	ctx := context.Background()

	t.Run("global list is used when the job has no watchers", func(t *testing.T) {
		mailer := &captureMailer{}
		n := NewNotifier(NotifierOptions{
			Config: testNotifyConfig(),
			Emails: &fakeEmailRepo{},
			Mailer: mailer,
			Logger: slog.Default(),
		})

		n.JobFailed(ctx, testJob())

		sent := mailer.messages()
		require.Len(t, sent, 1)
		assert.Equal(t, []string{"ops@example.com", "oncall@example.com"}, sent[0].To)
	})

	t.Run("watcher addresses override the global list", func(t *testing.T) {
		repo := &fakeEmailRepo{}
		require.NoError(t, repo.Insert(ctx, &model.JobEmail{ID: "1", JobName: "backup", Email: "watcher@example.com"}))

		mailer := &captureMailer{}
		n := NewNotifier(NotifierOptions{
			Config: testNotifyConfig(),
			Emails: repo,
			Mailer: mailer,
			Logger: slog.Default(),
		})

		n.JobFailed(ctx, testJob())

		sent := mailer.messages()
		require.Len(t, sent, 1)
		assert.Equal(t, []string{"watcher@example.com"}, sent[0].To)
	})

	t.Run("an invalid global recipient discards the whole list", func(t *testing.T) {
		cfg := testNotifyConfig()
		cfg.Recipients = []string{"ops@example.com", "not-an-address"}

		mailer := &captureMailer{}
		n := NewNotifier(NotifierOptions{
			Config: cfg,
			Emails: &fakeEmailRepo{},
			Mailer: mailer,
			Logger: slog.Default(),
		})

		n.JobFailed(ctx, testJob())

		assert.Empty(t, mailer.messages())
	})

	t.Run("watcher lookup failure suppresses the notification", func(t *testing.T) {
		mailer := &captureMailer{}
		n := NewNotifier(NotifierOptions{
			Config: testNotifyConfig(),
			Emails: &fakeEmailRepo{listErr: errors.New("connection refused")},
			Mailer: mailer,
			Logger: slog.Default(),
		})

		n.JobFailed(ctx, testJob())

		assert.Empty(t, mailer.messages())
	})
}

func TestNotifier_delivery(t *testing.T) {
	ctx := context.Background()

	t.Run("no sender means no delivery", func(t *testing.T) {
		cfg := testNotifyConfig()
		cfg.Sender = ""

		mailer := &captureMailer{}
		n := NewNotifier(NotifierOptions{
			Config: cfg,
			Emails: &fakeEmailRepo{},
			Mailer: mailer,
			Logger: slog.Default(),
		})

		n.JobFailed(ctx, testJob())

		assert.Empty(t, mailer.messages())
	})

	t.Run("nil mailer means no delivery", func(t *testing.T) {
		n := NewNotifier(NotifierOptions{
			Config: testNotifyConfig(),
			Emails: &fakeEmailRepo{},
			Logger: slog.Default(),
		})

		// Must not panic.
		n.JobFailed(ctx, testJob())
	})

	t.Run("send failures are swallowed", func(t *testing.T) {
		mailer := &captureMailer{sendErr: errors.New("smtp unavailable")}
		n := NewNotifier(NotifierOptions{
			Config: testNotifyConfig(),
			Emails: &fakeEmailRepo{},
			Mailer: mailer,
			Logger: slog.Default(),
		})

		// Must not panic; the interface has no error to return.
		n.JobFailed(ctx, testJob())
	})

	t.Run("unknown template engine suppresses the notification", func(t *testing.T) {
		cfg := testNotifyConfig()
		cfg.TemplateEngine = "handlebars"

		mailer := &captureMailer{}
		n := NewNotifier(NotifierOptions{
			Config: cfg,
			Emails: &fakeEmailRepo{},
			Mailer: mailer,
			Logger: slog.Default(),
		})

		n.JobFailed(ctx, testJob())

		assert.Empty(t, mailer.messages())
	})
}

func TestNotifier_rendering(t *testing.T) {
	ctx := context.Background()

	t.Run("subject carries the event and job name", func(t *testing.T) {
		mailer := &captureMailer{}
		n := NewNotifier(NotifierOptions{
			Config: testNotifyConfig(),
			Emails: &fakeEmailRepo{},
			Mailer: mailer,
			Logger: slog.Default(),
		})

		n.JobFailed(ctx, testJob())
		n.JobRecovered(ctx, testJob())
		n.JobEnabled(ctx, testJob())
		n.JobDisabled(ctx, testJob())

		sent := mailer.messages()
		require.Len(t, sent, 4)
		assert.Equal(t, "Job execution failed: [backup]", sent[0].Subject)
		assert.Equal(t, "Job execution is back to normal: [backup]", sent[1].Subject)
		assert.Equal(t, "Job execution has been enabled: [backup]", sent[2].Subject)
		assert.Equal(t, "Job execution has been disabled: [backup]", sent[3].Subject)
	})

	t.Run("default body substitutes job variables", func(t *testing.T) {
		mailer := &captureMailer{}
		n := NewNotifier(NotifierOptions{
			Config: testNotifyConfig(),
			Emails: &fakeEmailRepo{},
			Mailer: mailer,
			Logger: slog.Default(),
		})

		n.JobFailed(ctx, testJob())

		sent := mailer.messages()
		require.Len(t, sent, 1)
		assert.Contains(t, sent[0].Body, "backup")
		assert.Contains(t, sent[0].Body, "disk full")
		assert.Contains(t, sent[0].Body, "https://jobs.example.com:443")
	})

	t.Run("configured template overrides the default", func(t *testing.T) {
		cfg := testNotifyConfig()
		cfg.TemplateError = "custom-error.mustache"

		mailer := &captureMailer{}
		n := NewNotifier(NotifierOptions{
			Config: cfg,
			Emails: &fakeEmailRepo{},
			Mailer: mailer,
			Source: sourceFunc(func(path string) ([]byte, error) {
				require.Equal(t, "custom-error.mustache", path)
				return []byte("custom body for {{job.name}}"), nil
			}),
			Logger: slog.Default(),
		})

		n.JobFailed(ctx, testJob())

		sent := mailer.messages()
		require.Len(t, sent, 1)
		assert.Equal(t, "custom body for backup", sent[0].Body)
	})

	t.Run("unloadable configured template falls back to the default", func(t *testing.T) {
		cfg := testNotifyConfig()
		cfg.TemplateError = "missing.mustache"

		mailer := &captureMailer{}
		n := NewNotifier(NotifierOptions{
			Config: cfg,
			Emails: &fakeEmailRepo{},
			Mailer: mailer,
			Source: sourceFunc(func(string) ([]byte, error) {
				return nil, errors.New("no such file")
			}),
			Logger: slog.Default(),
		})

		n.JobFailed(ctx, testJob())

		sent := mailer.messages()
		require.Len(t, sent, 1)
		assert.Contains(t, sent[0].Body, "backup")
	})
}

// sourceFunc adapts a function to the Source interface.
type sourceFunc func(path string) ([]byte, error)

func (f sourceFunc) Load(path string) ([]byte, error) {
	return f(path)
}
