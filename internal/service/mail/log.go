package mail

import (
	"context"
	"log/slog"
)

// LogProvider logs messages instead of delivering them (development).
type LogProvider struct{}

func NewLogProvider() *LogProvider {
	return &LogProvider{}
}

func (p *LogProvider) Name() string {
	return ProviderLog
}

func (p *LogProvider) Send(ctx context.Context, msg Message) error {
	slog.Info("email sent (dev mode)",
		"to", msg.To,
		"cc", msg.Cc,
		"subject", msg.Subject,
		"html_bytes", len(msg.HTML),
	)
	return nil
}
