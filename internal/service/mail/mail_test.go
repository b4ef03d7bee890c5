package mail

import (
	"context"
	"testing"

	"github.com/majupersonalizados/briefing/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		provider string
		want     string
		wantErr  bool
	}{
		{ProviderSMTP, ProviderSMTP, false},
		{ProviderResend, ProviderResend, false},
		{ProviderLog, ProviderLog, false},
		{"sendgrid", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			p, err := NewProvider(&config.Config{MailProvider: tt.provider})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Name())
		})
	}
}

func TestSMTPProvider_MissingCredentials(t *testing.T) {
	msg := Message{To: []string{"staff@example.com"}, Subject: "x", HTML: "<p>x</p>"}

	tests := []struct {
		name string
		cfg  SMTPConfig
	}{
		{"no host", SMTPConfig{Username: "u", Password: "p"}},
		{"no user", SMTPConfig{Host: "smtp.example.com", Password: "p"}},
		{"no password", SMTPConfig{Host: "smtp.example.com", Username: "u"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewSMTPProvider(tt.cfg).Send(context.Background(), msg)
			assert.ErrorIs(t, err, ErrMailNotConfigured)
		})
	}
}

func TestSMTPProvider_DefaultPort(t *testing.T) {
	p := NewSMTPProvider(SMTPConfig{Host: "smtp.example.com"})
	assert.Equal(t, 587, p.cfg.Port)
}

func TestSMTPProvider_BuildMessage(t *testing.T) {
	p := NewSMTPProvider(SMTPConfig{Host: "smtp.example.com", Username: "relay@example.com", Password: "p"})

	m, err := p.buildMessage(Message{
		To:      []string{"staff@example.com"},
		Cc:      []string{"agency@example.com"},
		Subject: "Novo Briefing Disponível: Maju",
		HTML:    "<p>ok</p>",
	})
	require.NoError(t, err)
	assert.NotNil(t, m)

	_, err = p.buildMessage(Message{From: "not an address", To: []string{"staff@example.com"}})
	assert.Error(t, err)

	_, err = p.buildMessage(Message{To: []string{"@@"}})
	assert.Error(t, err)
}

func TestResendProvider_MissingKey(t *testing.T) {
	err := NewResendProvider("").Send(context.Background(), Message{To: []string{"staff@example.com"}})
	assert.ErrorIs(t, err, ErrMailNotConfigured)
}

func TestLogProvider_Send(t *testing.T) {
	assert.NoError(t, NewLogProvider().Send(context.Background(), Message{To: []string{"staff@example.com"}}))
}
