package notify

import (
	"context"
	"log/slog"

	"github.com/Skotchmaster/storefront/internal/models"
)

const (
	KeyWelcome       = "email.welcome"
	KeyPasswordReset = "email.password_reset"
)

// EmailJob is the message a delivery worker renders and sends.
type EmailJob struct {
	Template     string `json:"template"`
	To           string `json:"to"`
	Name         string `json:"name"`
	FromName     string `json:"from_name"`
	FromAddress  string `json:"from_address"`
	TempPassword string `json:"temp_password,omitempty"`
}

type jsonPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// QueueMailer hands emails off to a broker instead of sending them inline.
type QueueMailer struct {
	pub         jsonPublisher
	fromName    string
	fromAddress string
}

func NewQueueMailer(pub jsonPublisher, fromName, fromAddress string) *QueueMailer {
	return &QueueMailer{pub: pub, fromName: fromName, fromAddress: fromAddress}
}

func (m *QueueMailer) SendWelcome(ctx context.Context, u models.User, tempPassword string) error {
	return m.pub.PublishJSON(ctx, KeyWelcome, m.job("welcome", u, tempPassword))
}

func (m *QueueMailer) SendPasswordReset(ctx context.Context, u models.User, tempPassword string) error {
	return m.pub.PublishJSON(ctx, KeyPasswordReset, m.job("password_reset", u, tempPassword))
}

func (m *QueueMailer) job(template string, u models.User, tempPassword string) EmailJob {
	return EmailJob{
		Template:     template,
		To:           u.Email,
		Name:         displayName(u),
		FromName:     m.fromName,
		FromAddress:  m.fromAddress,
		TempPassword: tempPassword,
	}
}

// LogMailer records the intent to send and never fails. The temporary password is not logged.
type LogMailer struct {
	Log *slog.Logger
}

func (m LogMailer) SendWelcome(_ context.Context, u models.User, _ string) error {
	m.Log.Info("email_skipped", "template", "welcome", "to", u.Email)
	return nil
}

func (m LogMailer) SendPasswordReset(_ context.Context, u models.User, _ string) error {
	m.Log.Info("email_skipped", "template", "password_reset", "to", u.Email)
	return nil
}

func displayName(u models.User) string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.Username != "":
		return u.Username
	}
	return u.Email
}
