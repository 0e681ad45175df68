// Package mail delivers notifications to users by e-mail over SMTP.
package mail

import (
	"context"
	"fmt"
	"html"

	"github.com/fitformula/fitformula-backend/internal/config"
	"github.com/fitformula/fitformula-backend/internal/domain"
	"gopkg.in/gomail.v2"
)

// Sender sends composed messages; *gomail.Dialer satisfies it
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// NotificationMailer implements domain.NotificationPublisher by e-mailing the recipient
type NotificationMailer struct {
	sender Sender
	from   string
	users  domain.UserRepository
}

// NewNotificationMailer creates a mailer that dials the configured SMTP server
func NewNotificationMailer(cfg config.SMTPConfig, users domain.UserRepository) *NotificationMailer {
	return NewNotificationMailerWithSender(gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password), cfg.From, users)
}

// NewNotificationMailerWithSender creates a mailer around an existing sender
func NewNotificationMailerWithSender(sender Sender, from string, users domain.UserRepository) *NotificationMailer {
	return &NotificationMailer{sender: sender, from: from, users: users}
}

// Name identifies the channel in logs and metrics
func (m *NotificationMailer) Name() string {
	return "email"
}

// Publish e-mails the notification to its recipient
func (m *NotificationMailer) Publish(ctx context.Context, n *domain.Notification) error {
	user, err := m.users.GetByID(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("look up recipient: %w", err)
	}
	if user.Email == "" {
		return nil
	}

	message := gomail.NewMessage()
	message.SetHeader("From", m.from)
	message.SetAddressHeader("To", user.Email, user.FullName)
	message.SetHeader("Subject", n.Title)
	message.SetBody("text/plain", n.Message)
	message.AddAlternative("text/html", renderHTML(user.FullName, n))

	if err := m.sender.DialAndSend(message); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func renderHTML(name string, n *domain.Notification) string {
	return `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; padding: 20px; border: 1px solid #ddd; border-radius: 8px;">
	<h2 style="color: #333;">` + html.EscapeString(n.Title) + `</h2>
	<p>Hello ` + html.EscapeString(name) + `,</p>
	<p>` + html.EscapeString(n.Message) + `</p>
	<p>Fitness Formula</p>
</div>`
}
