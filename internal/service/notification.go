package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/majupersonalizados/briefing/internal/metrics"
	"github.com/majupersonalizados/briefing/internal/model"
	"github.com/majupersonalizados/briefing/internal/service/mail"
)

// Notifier announces a stored briefing to staff.
type Notifier interface {
	NotifyBriefing(ctx context.Context, briefing *model.Briefing) error
}

type NotificationService struct {
	provider mail.Provider
	from     string
	to       string
	cc       string
	now      func() time.Time
}

func NewNotificationService(provider mail.Provider, from, to, cc string) *NotificationService {
	return &NotificationService{
		provider: provider,
		from:     from,
		to:       to,
		cc:       cc,
		now:      time.Now,
	}
}

// NotifyBriefing sends one email for the briefing. It is attempted at most once.
func (s *NotificationService) NotifyBriefing(ctx context.Context, briefing *model.Briefing) error {
	subject, body, err := notificationEmailTemplate(briefing, s.now())
	if err != nil {
		return err
	}

	msg := mail.Message{
		From:    s.from,
		To:      []string{s.to},
		Subject: subject,
		HTML:    body,
	}
	if s.cc != "" {
		msg.Cc = []string{s.cc}
	}

	err = s.provider.Send(ctx, msg)
	metrics.Notifications.WithLabelValues(s.provider.Name(), metrics.Result(err)).Inc()
	if err != nil {
		return fmt.Errorf("failed to send briefing notification: %w", err)
	}

	slog.Info("briefing notification sent", "provider", s.provider.Name(), "company", briefing.CompanyName, "to", s.to)
	return nil
}
