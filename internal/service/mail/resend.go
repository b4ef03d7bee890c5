package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

type ResendProvider struct {
	client *resend.Client
}

func NewResendProvider(apiKey string) *ResendProvider {
	var client *resend.Client
	if apiKey != "" {
		client = resend.NewClient(apiKey)
	}
	return &ResendProvider{client: client}
}

func (p *ResendProvider) Name() string {
	return ProviderResend
}

func (p *ResendProvider) Send(ctx context.Context, msg Message) error {
	if p.client == nil {
		return fmt.Errorf("%w: missing RESEND_API_KEY", ErrMailNotConfigured)
	}

	params := &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Cc:      msg.Cc,
		Subject: msg.Subject,
		Html:    msg.HTML,
	}

	sent, err := p.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send via Resend: %w", err)
	}

	slog.Debug("resend accepted email", "id", sent.Id)
	return nil
}
