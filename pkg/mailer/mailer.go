// Package mailer delivers transactional email over SMTP.
package mailer

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/noah-isme/blog-platform-api/pkg/config"
)

const defaultTimeout = 15 * time.Second

// Message is a single HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer sends messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type dialer interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

// SMTP sends mail through a relay. Dial and every SMTP command are bounded
// by the configured timeout and by the caller's context.
type SMTP struct {
	from   string
	client dialer
}

// NewSMTP validates the sender address and builds the relay client.
func NewSMTP(cfg config.MailConfig) (*SMTP, error) {
	if err := gomail.NewMsg().From(cfg.From); err != nil {
		return nil, fmt.Errorf("parse sender %q: %w", cfg.From, err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTimeout(timeout),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
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
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return &SMTP{from: cfg.From, client: client}, nil
}

// Send delivers msg.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	m, err := s.compose(msg)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

func (s *SMTP) compose(msg Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(s.from); err != nil {
		return nil, fmt.Errorf("parse sender %q: %w", s.from, err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("parse recipient %q: %w", msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetMessageID()
	m.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	return m, nil
}

// Noop discards messages. It backs the API when mail is disabled.
type Noop struct{}

// Send implements Mailer.
func (Noop) Send(ctx context.Context, _ Message) error {
	return ctx.Err()
}
