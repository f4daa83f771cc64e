package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/blog-platform-api/pkg/jobs"
	"github.com/noah-isme/blog-platform-api/pkg/mailer"
)

type recordingMailer struct {
	mu    sync.Mutex
	sent  chan mailer.Message
	fails int
}

func (r *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	r.mu.Lock()
	if r.fails > 0 {
		r.fails--
		r.mu.Unlock()
		return errors.New("temporary failure")
	}
	r.mu.Unlock()
	r.sent <- msg
	return nil
}

func TestEmailServiceDeliversConfirmation(t *testing.T) {
	rec := &recordingMailer{sent: make(chan mailer.Message, 1), fails: 1}
	svc := NewEmailService(rec, NewMetricsService(), EmailConfig{
		ConfirmationURL: "https://blog.example/confirm-email",
		RecoveryURL:     "https://blog.example/password-recovery",
		RetryDelay:      time.Millisecond,
	}, nil)
	svc.Start(context.Background())
	defer svc.Stop()

	require.NoError(t, svc.SendConfirmation(context.Background(), "bob@example.com", "abc-123"))

	select {
	case msg := <-rec.sent:
		assert.Equal(t, "bob@example.com", msg.To)
		assert.Equal(t, "Confirm your registration", msg.Subject)
		assert.Contains(t, msg.HTML, `href="https://blog.example/confirm-email?code=abc-123"`)
	case <-time.After(2 * time.Second):
		t.Fatal("confirmation email not delivered")
	}
}

func TestEmailServiceRecoveryLink(t *testing.T) {
	rec := &recordingMailer{sent: make(chan mailer.Message, 1)}
	svc := NewEmailService(rec, nil, EmailConfig{RecoveryURL: "https://blog.example/password-recovery"}, nil)
	svc.Start(context.Background())
	defer svc.Stop()

	require.NoError(t, svc.SendRecovery(context.Background(), "bob@example.com", "r-1"))
	select {
	case msg := <-rec.sent:
		assert.Contains(t, msg.HTML, "password-recovery?recoveryCode=r-1")
	case <-time.After(2 * time.Second):
		t.Fatal("recovery email not delivered")
	}
}

func TestEmailServiceRequiresStart(t *testing.T) {
	svc := NewEmailService(mailer.Noop{}, nil, EmailConfig{}, nil)
	err := svc.SendConfirmation(context.Background(), "bob@example.com", "x")
	assert.ErrorIs(t, err, jobs.ErrNotStarted)
}
