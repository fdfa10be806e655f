// email/email.go
// Package email sends the welcome and watchlist digest emails over SMTP.
// It wraps github.com/wneessen/go-mail.
package email

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
)

// ErrDisabled is returned by Send when no SMTP host is configured.
var ErrDisabled = errors.New("email: sending disabled (no SMTP host)")

// Config holds SMTP server configuration.
type Config struct {
	Host     string
	Port     int // 587 (STARTTLS) if zero; 465 implies implicit TLS
	Username string
	Password string

	FromAddress string
	FromName    string

	Timeout time.Duration // 30s if zero
}

// Enabled reports whether a host is configured.
func (c Config) Enabled() bool { return strings.TrimSpace(c.Host) != "" }

// Message is one outgoing email. At least one body must be set; when both
// are, HTML is sent as the alternative part.
type Message struct {
	To       []string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer sends a Message. *Sender implements it; tests use fakes.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Sender sends emails using the configured SMTP server.
type Sender struct {
	cfg Config
}

func NewSender(cfg Config) *Sender {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Sender{cfg: cfg}
}

// Send delivers msg, opening a fresh SMTP connection.
func (s *Sender) Send(ctx context.Context, msg Message) error {
	if !s.cfg.Enabled() {
		return ErrDisabled
	}
	m, err := s.build(msg)
	if err != nil {
		return err
	}

	c, err := mail.NewClient(s.cfg.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("email: failed to create client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("email: failed to send: %w", err)
	}
	return nil
}

func (s *Sender) build(msg Message) (*mail.Msg, error) {
	if len(msg.To) == 0 {
		return nil, errors.New("email: no recipients specified")
	}
	if msg.TextBody == "" && msg.HTMLBody == "" {
		return nil, errors.New("email: message body is empty")
	}

	m := mail.NewMsg()
	if s.cfg.FromName != "" {
		if err := m.FromFormat(s.cfg.FromName, s.cfg.FromAddress); err != nil {
			return nil, fmt.Errorf("email: invalid from address: %w", err)
		}
	} else if err := m.From(s.cfg.FromAddress); err != nil {
		return nil, fmt.Errorf("email: invalid from address: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("email: invalid to address: %w", err)
	}
	m.Subject(msg.Subject)

	switch {
	case msg.TextBody != "" && msg.HTMLBody != "":
		m.SetBodyString(mail.TypeTextPlain, msg.TextBody)
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTMLBody)
	case msg.HTMLBody != "":
		m.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)
	default:
		m.SetBodyString(mail.TypeTextPlain, msg.TextBody)
	}
	return m, nil
}

func (s *Sender) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTimeout(s.cfg.Timeout),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	if s.cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}
	return opts
}
