package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/halcyonlabs/jobsched/config"
	"github.com/halcyonlabs/jobsched/internal/core"
	"github.com/halcyonlabs/jobsched/internal/domain/model"
)

// NotifierOptions groups dependencies for the transition Notifier.
type NotifierOptions struct {
	Config  config.NotifyConfig      // Required: notification configuration
	Emails  core.JobEmailRepository  // Required: watcher registry lookups
	Mailer  Mailer                   // Optional: nil disables delivery
	Engines *EngineRegistry          // Optional: defaults to a registry with mustache
	Source  Source                   // Optional: template resource loader
	Logger  *slog.Logger             // Optional: structured logger
}

// Notifier sends transition notifications by e-mail.
//
// Delivery is best-effort by contract: render and transport failures are
// logged and suppressed so they can never escalate into, or roll back, the
// status or log write that triggered them.
type Notifier struct {
	cfg        config.NotifyConfig
	recipients []string
	emails     core.JobEmailRepository
	mailer     Mailer
	engines    *EngineRegistry
	source     Source
	logger     *slog.Logger
}

var _ core.TransitionNotifier = (*Notifier)(nil)

// NewNotifier constructs a transition notifier. The global recipient list is
// validated once here: if any entry is malformed the whole list is discarded
// with a warning.
func NewNotifier(opts NotifierOptions) *Notifier {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "transition_notifier")

	engines := opts.Engines
	if engines == nil {
		engines = NewEngineRegistry()
	}

	source := opts.Source
	if source == nil {
		source = FileSource{}
	}

	recipients := opts.Config.Recipients
	for _, addr := range recipients {
		if !model.ValidEmail(addr) {
			logger.Warn("global recipient list contains invalid e-mail address, discarding list",
				"address", addr,
			)
			recipients = nil
			break
		}
	}

	return &Notifier{
		cfg:        opts.Config,
		recipients: recipients,
		emails:     opts.Emails,
		mailer:     opts.Mailer,
		engines:    engines,
		source:     source,
		logger:     logger,
	}
}

// JobFailed notifies a transition into the failed status.
func (n *Notifier) JobFailed(ctx context.Context, job *model.JobDefinition) {
	n.notify(ctx, job, EventError)
}

// JobRecovered notifies a recovery transition back to the finished status.
func (n *Notifier) JobRecovered(ctx context.Context, job *model.JobDefinition) {
	n.notify(ctx, job, EventNormal)
}

// JobEnabled notifies an enabled edge on the job definition.
func (n *Notifier) JobEnabled(ctx context.Context, job *model.JobDefinition) {
	n.notify(ctx, job, EventEnable)
}

// JobDisabled notifies a disabled edge on the job definition.
func (n *Notifier) JobDisabled(ctx context.Context, job *model.JobDefinition) {
	n.notify(ctx, job, EventDisable)
}

func (n *Notifier) notify(ctx context.Context, job *model.JobDefinition, event Event) {
	if job == nil {
		return
	}
	if n.mailer == nil || n.cfg.Sender == "" {
		n.logger.DebugContext(ctx, "notification skipped, no sender configured",
			"job", job.Name,
			"event", string(event),
		)
		return
	}

	recipients, ok := n.resolveRecipients(ctx, job.Name)
	if !ok || len(recipients) == 0 {
		return
	}

	body, ok := n.renderBody(ctx, job, event)
	if !ok {
		return
	}

	msg := Message{
		From:    n.cfg.Sender,
		To:      recipients,
		Subject: fmt.Sprintf(n.subjectFor(event), job.Name),
		Body:    body,
	}
	if err := n.mailer.Send(ctx, msg); err != nil {
		n.logger.ErrorContext(ctx, "sending notification e-mail failed",
			"job", job.Name,
			"event", string(event),
			"error", err,
		)
	}
}

// resolveRecipients returns the watcher addresses for a job, or the global
// recipient list when the job has no watchers.
func (n *Notifier) resolveRecipients(ctx context.Context, jobName string) ([]string, bool) {
	watchers, err := n.emails.ListByJob(ctx, jobName)
	if err != nil {
		n.logger.ErrorContext(ctx, "loading watcher addresses failed",
			"job", jobName,
			"error", err,
		)
		return nil, false
	}

	if len(watchers) > 0 {
		addrs := make([]string, len(watchers))
		for i, w := range watchers {
			addrs[i] = w.Email
		}
		return addrs, true
	}
	return n.recipients, true
}

func (n *Notifier) renderBody(ctx context.Context, job *model.JobDefinition, event Event) (string, bool) {
	engine, ok := n.engines.Get(n.cfg.TemplateEngine)
	if !ok {
		n.logger.ErrorContext(ctx, "template engine is not registered",
			"engine", n.cfg.TemplateEngine,
		)
		return "", false
	}

	template := n.loadTemplate(ctx, event)
	if template == nil {
		n.logger.ErrorContext(ctx, "notification template has not been set nor is a default one available",
			"event", string(event),
		)
		return "", false
	}

	vars := map[string]any{
		"job": map[string]string{
			"name":    job.Name,
			"message": job.Message,
			"scheme":  n.cfg.URLScheme,
			"host":    n.cfg.URLHost,
			"port":    n.cfg.URLPort,
		},
	}

	body, err := engine.Render(template, vars)
	if err != nil {
		n.logger.ErrorContext(ctx, "rendering notification body failed",
			"job", job.Name,
			"event", string(event),
			"error", err,
		)
		return "", false
	}
	return string(body), true
}

// loadTemplate fetches the configured template resource for an event, falling
// back to the built-in default when unset or unavailable.
func (n *Notifier) loadTemplate(ctx context.Context, event Event) []byte {
	path := n.templatePathFor(event)
	if path != "" {
		content, err := n.source.Load(path)
		if err == nil {
			return content
		}
		n.logger.WarnContext(ctx, "configured template unavailable, using default",
			"event", string(event),
			"path", path,
			"error", err,
		)
	}
	return defaultTemplate(event)
}

func (n *Notifier) subjectFor(event Event) string {
	switch event {
	case EventNormal:
		return n.cfg.SubjectNormal
	case EventEnable:
		return n.cfg.SubjectEnable
	case EventDisable:
		return n.cfg.SubjectDisable
	default:
		return n.cfg.SubjectError
	}
}

func (n *Notifier) templatePathFor(event Event) string {
	switch event {
	case EventNormal:
		return n.cfg.TemplateNormal
	case EventEnable:
		return n.cfg.TemplateEnable
	case EventDisable:
		return n.cfg.TemplateDisable
	default:
		return n.cfg.TemplateError
	}
}
