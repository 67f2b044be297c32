package notify

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"github.com/halcyonlabs/jobsched/config"
)

// Message is a plain-text notification e-mail.
type Message struct {
	From    string
	To      []string
	Cc      []string
	Bcc     []string
	Subject string
	Body    string
}

// Mailer delivers notification e-mails.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer delivers e-mails over SMTP.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

// NewSMTPMailer creates a mailer for the given SMTP settings. Returns nil when
// no host is configured, which disables mail delivery.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	if cfg.Host == "" {
		return nil
	}
	return &SMTPMailer{cfg: cfg}
}

// Send implements the Mailer interface.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	opts := []gomail.Option{gomail.WithPort(m.cfg.Port)}
	if m.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.cfg.Username),
			gomail.WithPassword(m.cfg.Password),
		)
	}

	client, err := gomail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	message := gomail.NewMsg()
	if err := message.From(msg.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := message.To(msg.To...); err != nil {
		return fmt.Errorf("set recipients: %w", err)
	}
	if len(msg.Cc) > 0 {
		if err := message.Cc(msg.Cc...); err != nil {
			return fmt.Errorf("set cc recipients: %w", err)
		}
	}
	if len(msg.Bcc) > 0 {
		if err := message.Bcc(msg.Bcc...); err != nil {
			return fmt.Errorf("set bcc recipients: %w", err)
		}
	}
	message.Subject(msg.Subject)
	message.SetBodyString(gomail.TypeTextPlain, msg.Body)

	if err := client.DialAndSendWithContext(ctx, message); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
