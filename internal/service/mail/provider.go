package mail

import (
	"context"
	"errors"
)

const (
	ProviderSMTP   = "smtp"
	ProviderResend = "resend"
	ProviderLog    = "log"
)

// ErrMailNotConfigured is returned at send time when the relay lacks credentials.
var ErrMailNotConfigured = errors.New("mail relay not configured")

// Message is a single HTML email.
type Message struct {
	From    string
	To      []string
	Cc      []string
	Subject string
	HTML    string
}

// Provider defines the interface for mail relays
type Provider interface {
	// Send delivers the message once. Implementations never retry.
	Send(ctx context.Context, msg Message) error

	// Name returns the provider name (smtp, resend, log)
	Name() string
}
