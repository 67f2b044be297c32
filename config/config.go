package config

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config files for
// details on available environment variables:
//   - database.go: Database configuration
//   - scheduler.go: Scheduler and log-retention configuration
//   - notify.go: Transition-notification configuration
type AppConfig struct {
	// Postgres holds the database connection settings.
	Postgres DBConfig `envPrefix:"DB_"`

	// Scheduler holds the job scheduler core settings.
	Scheduler SchedulerConfig `envPrefix:"SCHEDULER_"`

	// Sweeper holds the log-retention sweeper loop settings.
	Sweeper SweeperConfig `envPrefix:"SWEEPER_"`

	// Notify holds the transition-notification settings.
	Notify NotifyConfig `envPrefix:"SCHEDULER_EMAIL_"`
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment
// variables.
func (c *AppConfig) Sanitize() {
	c.Scheduler.Sanitize()
	c.Sweeper.Sanitize()
}
