// Package mail delivers notification emails.
package mail

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
	pkglog "github.com/weiawesome/wes-io-live/pkg/log"
)

// Sender delivers one HTML email.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// Config selects and configures the transport.
type Config struct {
	// Mode is "smtp" or "log". The log mode only writes the message to the
	// service log, for development.
	Mode     string        `mapstructure:"mode"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	From     string        `mapstructure:"from"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// NewSender builds the sender for cfg.Mode.
func NewSender(cfg Config) (Sender, error) {
	switch cfg.Mode {
	case "log", "":
		return LogSender{}, nil
	case "smtp":
		return NewSMTPSender(cfg)
	default:
		return nil, fmt.Errorf("unsupported mail mode: %s", cfg.Mode)
	}
}

// SMTPSender sends through an SMTP relay.
type SMTPSender struct {
	client *gomail.Client
	from   string
}

// NewSMTPSender creates an SMTP sender. No connection is made until the
// first Send.
func NewSMTPSender(cfg Config) (*SMTPSender, error) {
	opts := []gomail.Option{
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Port > 0 {
		opts = append(opts, gomail.WithPort(cfg.Port))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, gomail.WithTimeout(cfg.Timeout))
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	return &SMTPSender{client: client, from: cfg.From}, nil
}

// Send delivers the message. Any failure is a delivery error so the job is
// retried.
func (s *SMTPSender) Send(ctx context.Context, to, subject, html string) error {
	msg, err := newMessage(s.from, to, subject, html)
	if err != nil {
		return domain.DeliveryError(to, err)
	}
	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return domain.DeliveryError(to, err)
	}
	return nil
}

func newMessage(from, to, subject, html string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, html)
	return msg, nil
}

// LogSender writes emails to the log instead of sending them.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, to, subject, html string) error {
	l := pkglog.Ctx(ctx)
	l.Info().
		Str("to", to).
		Str("subject", subject).
		Int("body_bytes", len(html)).
		Msg("email not sent (log mode)")
	return nil
}
