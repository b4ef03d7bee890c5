package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Secure   bool // implicit TLS, usually port 465
	Username string
	Password string
}

type SMTPProvider struct {
	cfg SMTPConfig
}

func NewSMTPProvider(cfg SMTPConfig) *SMTPProvider {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPProvider{cfg: cfg}
}

func (p *SMTPProvider) Name() string {
	return ProviderSMTP
}

func (p *SMTPProvider) configured() bool {
	return p.cfg.Host != "" && p.cfg.Username != "" && p.cfg.Password != ""
}

func (p *SMTPProvider) Send(ctx context.Context, msg Message) error {
	if !p.configured() {
		return fmt.Errorf("%w: missing SMTP credentials", ErrMailNotConfigured)
	}

	m, err := p.buildMessage(msg)
	if err != nil {
		return err
	}

	opts := []gomail.Option{
		gomail.WithPort(p.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(p.cfg.Username),
		gomail.WithPassword(p.cfg.Password),
	}
	if p.cfg.Secure {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}

	client, err := gomail.NewClient(p.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	err = client.DialAndSendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("failed to send via SMTP: %w", err)
	}
	return nil
}

func (p *SMTPProvider) buildMessage(msg Message) (*gomail.Msg, error) {
	from := msg.From
	if from == "" {
		from = p.cfg.Username
	}

	m := gomail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	if len(msg.Cc) > 0 {
		if err := m.Cc(msg.Cc...); err != nil {
			return nil, fmt.Errorf("invalid cc recipient: %w", err)
		}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	return m, nil
}
