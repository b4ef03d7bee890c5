package mail

import (
	"fmt"
	"log/slog"

	"github.com/majupersonalizados/briefing/internal/config"
)

// NewProvider creates a mail provider based on configuration.
// Missing credentials are not an error here; Send reports ErrMailNotConfigured.
func NewProvider(cfg *config.Config) (Provider, error) {
	provider := cfg.MailProvider

	slog.Info("initializing mail provider", "provider", provider)

	switch provider {
	case ProviderSMTP:
		return NewSMTPProvider(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Secure:   cfg.SMTPSecure,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
		}), nil

	case ProviderResend:
		return NewResendProvider(cfg.ResendAPIKey), nil

	case ProviderLog:
		return NewLogProvider(), nil

	default:
		return nil, fmt.Errorf("unknown mail provider: %s (must be 'smtp', 'resend' or 'log')", provider)
	}
}
