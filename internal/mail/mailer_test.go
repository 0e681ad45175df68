package mail

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/fitformula/fitformula-backend/internal/testutil"
	"gopkg.in/gomail.v2"
)

type fakeSender struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

func TestNotificationMailer_Publish(t *testing.T) {
	users := testutil.NewMockUserRepository()
	users.AddUser(&domain.User{ID: 5, FullName: "Ann <Lee>", Email: "ann@example.com"})
	sender := &fakeSender{}
	mailer := NewNotificationMailerWithSender(sender, "gym@example.com", users)

	err := mailer.Publish(context.Background(), &domain.Notification{
		ID:      1,
		UserID:  5,
		Title:   "Workout cancelled",
		Message: "The workout 'Spin' has been cancelled.",
		Type:    domain.NotificationTypeCancellation,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sender.sent))
	}

	msg := sender.sent[0]
	if got := msg.GetHeader("Subject"); len(got) != 1 || got[0] != "Workout cancelled" {
		t.Errorf("unexpected subject %v", got)
	}
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("render message: %v", err)
	}
	if !strings.Contains(buf.String(), "Ann &lt;Lee&gt;") {
		t.Error("expected recipient name to be escaped in the HTML part")
	}
}

func TestNotificationMailer_UnknownUser(t *testing.T) {
	sender := &fakeSender{}
	mailer := NewNotificationMailerWithSender(sender, "gym@example.com", testutil.NewMockUserRepository())

	err := mailer.Publish(context.Background(), &domain.Notification{UserID: 99})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
	if len(sender.sent) != 0 {
		t.Error("expected nothing sent")
	}
}

func TestNotificationMailer_SendFailure(t *testing.T) {
	users := testutil.NewMockUserRepository()
	users.AddUser(&domain.User{ID: 5, FullName: "Ann", Email: "ann@example.com"})
	mailer := NewNotificationMailerWithSender(&fakeSender{err: errors.New("smtp down")}, "gym@example.com", users)

	if err := mailer.Publish(context.Background(), &domain.Notification{UserID: 5, Title: "t", Message: "m"}); err == nil {
		t.Error("expected error")
	}
}
