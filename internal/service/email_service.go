package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/blog-platform-api/pkg/jobs"
	"github.com/noah-isme/blog-platform-api/pkg/mailer"
)

const (
	mailKindConfirmation = "confirmation"
	mailKindRecovery     = "recovery"
)

var (
	confirmationTemplate = template.Must(template.New(mailKindConfirmation).Parse(
		`<h1>Thank you for your registration</h1>
<p>To finish registration please follow the link below:
<a href="{{.Link}}">complete registration</a>
</p>`))
	recoveryTemplate = template.Must(template.New(mailKindRecovery).Parse(
		`<h1>Password recovery</h1>
<p>To finish password recovery please follow the link below:
<a href="{{.Link}}">recovery password</a>
</p>`))
)

// EmailConfig configures links and delivery of account emails.
type EmailConfig struct {
	ConfirmationURL string
	RecoveryURL     string
	Workers         int
	Retries         int
	RetryDelay      time.Duration
}

// EmailService renders account emails and delivers them in the background.
type EmailService struct {
	queue   *jobs.Queue[mailer.Message]
	sender  mailer.Mailer
	metrics *MetricsService
	config  EmailConfig
	logger  *zap.Logger
}

// NewEmailService builds the service and its delivery queue. Start must be
// called before emails are accepted.
func NewEmailService(sender mailer.Mailer, metrics *MetricsService, config EmailConfig, logger *zap.Logger) *EmailService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &EmailService{sender: sender, metrics: metrics, config: config, logger: logger}
	s.queue = jobs.New("mail", s.deliver, jobs.Config{
		Workers:    config.Workers,
		MaxRetries: config.Retries,
		RetryDelay: config.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the delivery workers.
func (s *EmailService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop waits for in-flight deliveries.
func (s *EmailService) Stop() {
	s.queue.Stop()
}

// SendConfirmation queues the registration confirmation email.
func (s *EmailService) SendConfirmation(_ context.Context, email, code string) error {
	return s.enqueue(mailKindConfirmation, email, "Confirm your registration", confirmationTemplate, s.config.ConfirmationURL, "code", code)
}

// SendRecovery queues the password recovery email.
func (s *EmailService) SendRecovery(_ context.Context, email, code string) error {
	return s.enqueue(mailKindRecovery, email, "Password recovery", recoveryTemplate, s.config.RecoveryURL, "recoveryCode", code)
}

func (s *EmailService) enqueue(kind, to, subject string, tmpl *template.Template, base, param, code string) error {
	link, err := withQuery(base, param, code)
	if err != nil {
		return err
	}
	var body bytes.Buffer
	if err := tmpl.Execute(&body, struct{ Link string }{Link: link}); err != nil {
		return fmt.Errorf("render %s email: %w", kind, err)
	}
	return s.queue.TryEnqueue(jobs.Job[mailer.Message]{
		ID:      uuid.NewString(),
		Kind:    kind,
		Payload: mailer.Message{To: to, Subject: subject, HTML: body.String()},
	})
}

func (s *EmailService) deliver(ctx context.Context, job jobs.Job[mailer.Message]) error {
	err := s.sender.Send(ctx, job.Payload)
	s.metrics.RecordMailJob(job.Kind, err)
	if err == nil {
		s.logger.Debug("email sent", zap.String("kind", job.Kind), zap.String("job_id", job.ID))
	}
	return err
}

func withQuery(base, key, value string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse link base %q: %w", base, err)
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
