package bootstrap

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/halcyonlabs/jobsched/config"
	"github.com/halcyonlabs/jobsched/internal/data"
	"github.com/halcyonlabs/jobsched/internal/notify"
	"github.com/halcyonlabs/jobsched/internal/service"
)

// ServiceDeps contains the shared dependencies for service construction.
type ServiceDeps struct {
	Config *config.AppConfig
	DB     *sql.DB
	Logger *slog.Logger
}

// Services aggregates the constructed application services.
type Services struct {
	Jobs     *service.JobService
	Logs     *service.JobLogService
	Watchers *service.WatcherService
	Sweeper  *service.SweeperService
	Notifier *notify.Notifier
}

// NewServices wires repositories, the transition notifier, and the
// application services together.
func NewServices(deps *ServiceDeps) (*Services, error) {
	jobRepo := data.NewJobRepo(deps.DB)
	paramRepo := data.NewJobParameterRepo(deps.DB)
	logRepo := data.NewJobLogRepo(deps.DB)
	emailRepo := data.NewJobEmailRepo(deps.DB)

	var mailer notify.Mailer
	if smtp := notify.NewSMTPMailer(deps.Config.Notify.SMTP); smtp != nil {
		mailer = smtp
	}

	notifier := notify.NewNotifier(notify.NotifierOptions{
		Config: deps.Config.Notify,
		Emails: emailRepo,
		Mailer: mailer,
		Logger: deps.Logger,
	})

	jobs, err := service.NewJobService(service.JobServiceOptions{
		Jobs:       jobRepo,
		Parameters: paramRepo,
		Tx:         data.NewStore(deps.DB),
		Notifier:   notifier,
		Principal:  deps.Config.Scheduler.Principal,
		Logger:     deps.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create job service: %w", err)
	}

	logs, err := service.NewJobLogService(service.JobLogServiceOptions{
		Logs:       logRepo,
		Jobs:       jobs,
		Notifier:   notifier,
		Logger:     deps.Logger,
		QueryLimit: deps.Config.Scheduler.LogQueryLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("create job log service: %w", err)
	}

	watchers, err := service.NewWatcherService(service.WatcherServiceOptions{
		Emails: emailRepo,
		Logger: deps.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create watcher service: %w", err)
	}

	sweeper, err := service.NewSweeperService(service.SweeperServiceOptions{
		Logs:      logRepo,
		Scheduler: deps.Config.Scheduler,
		Sweeper:   deps.Config.Sweeper,
		Logger:    deps.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create sweeper service: %w", err)
	}

	return &Services{
		Jobs:     jobs,
		Logs:     logs,
		Watchers: watchers,
		Sweeper:  sweeper,
		Notifier: notifier,
	}, nil
}
