package config

import "time"

const defaultLogRetention = 168 * time.Hour

// SchedulerConfig contains the scheduler core settings.
type SchedulerConfig struct {
	// LogRetention is the maximum age an execution log row may reach before
	// becoming eligible for deletion.
	LogRetention time.Duration `env:"LOGS_RETENTION" envDefault:"168h"`

	// Principal is the acting identity stamped into created_by on first
	// insert of a job definition.
	Principal string `env:"PRINCIPAL" envDefault:"system"`

	// LogQueryLimit caps how many log rows a per-job log query returns.
	LogQueryLimit int `env:"LOG_QUERY_LIMIT" envDefault:"1000"`
}

// Sanitize applies guardrails to scheduler configuration values.
func (c *SchedulerConfig) Sanitize() {
	if c.LogRetention <= 0 {
		c.LogRetention = defaultLogRetention
	}
	if c.Principal == "" {
		c.Principal = "system"
	}
	if c.LogQueryLimit <= 0 {
		c.LogQueryLimit = 1000
	}
}

// SweeperConfig contains the log-retention sweeper loop settings.
type SweeperConfig struct {
	// Interval is how often the sweeper deletes expired log rows.
	Interval time.Duration `env:"INTERVAL" envDefault:"1h"`
}

// Sanitize applies guardrails to sweeper configuration values.
func (c *SweeperConfig) Sanitize() {
	if c.Interval <= 0 {
		c.Interval = time.Hour
	}
}
