package config

// NotifyConfig contains the transition-notification settings.
//
// Sender must be configured for any e-mail to be sent. Recipients is the
// global fallback list, used only for jobs without registered watcher
// addresses; if any entry in it is malformed the whole list is discarded
// with a warning at startup.
type NotifyConfig struct {
	Sender     string   `env:"SENDER"`
	Recipients []string `env:"RECIPIENTS"`

	// Subject templates are format strings applied to the job name.
	SubjectError   string `env:"SUBJECT_ERROR"   envDefault:"Job execution failed: [%s]"`
	SubjectNormal  string `env:"SUBJECT_NORMAL"  envDefault:"Job execution is back to normal: [%s]"`
	SubjectEnable  string `env:"SUBJECT_ENABLE"  envDefault:"Job execution has been enabled: [%s]"`
	SubjectDisable string `env:"SUBJECT_DISABLE" envDefault:"Job execution has been disabled: [%s]"`

	// Body template resource paths. When unset, or when the resource cannot
	// be loaded, the built-in default template for the event is used.
	TemplateError   string `env:"TEMPLATE_ERROR"`
	TemplateNormal  string `env:"TEMPLATE_NORMAL"`
	TemplateEnable  string `env:"TEMPLATE_ENABLE"`
	TemplateDisable string `env:"TEMPLATE_DISABLE"`

	// TemplateEngine selects the registered template engine by key.
	TemplateEngine string `env:"TEMPLATE_ENGINE" envDefault:"mustache"`

	// Base URL substituted into notification bodies.
	URLScheme string `env:"URL_SCHEME" envDefault:"http"`
	URLHost   string `env:"URL_HOST"   envDefault:"localhost"`
	URLPort   string `env:"URL_PORT"   envDefault:"8080"`

	// SMTP transport settings.
	SMTP SMTPConfig `envPrefix:"SMTP_"`
}

// SMTPConfig contains the SMTP transport settings for notifications.
type SMTPConfig struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
}
