package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/majupersonalizados/briefing/internal/model"
	"github.com/majupersonalizados/briefing/internal/service/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailProvider struct {
	sent []mail.Message
	err  error
}

func (f *fakeMailProvider) Name() string { return "fake" }

func (f *fakeMailProvider) Send(ctx context.Context, msg mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func newTestNotificationService(p mail.Provider) *NotificationService {
	s := NewNotificationService(p, "relay@example.com", "staff@example.com", "agency@example.com")
	s.now = func() time.Time { return time.Date(2026, 3, 5, 17, 4, 9, 0, time.UTC) }
	return s
}

func TestNotifyBriefing_Envelope(t *testing.T) {
	p := &fakeMailProvider{}
	s := newTestNotificationService(p)

	b := model.NewBriefing()
	b.CompanyName = "Maju"

	require.NoError(t, s.NotifyBriefing(context.Background(), b))
	require.Len(t, p.sent, 1)

	msg := p.sent[0]
	assert.Equal(t, "Novo Briefing Disponível: Maju", msg.Subject)
	assert.Equal(t, []string{"staff@example.com"}, msg.To)
	assert.Equal(t, []string{"agency@example.com"}, msg.Cc)
	assert.Equal(t, "relay@example.com", msg.From)
}

func TestNotifyBriefing_EmptyFieldsRenderPlaceholders(t *testing.T) {
	p := &fakeMailProvider{}
	s := newTestNotificationService(p)

	b := model.NewBriefing()
	b.CompanyName = "Maju"
	b.ContactInfo.Name = "Ana"

	require.NoError(t, s.NotifyBriefing(context.Background(), b))
	html := p.sent[0].HTML

	assert.Contains(t, html, ">Ana</div>")
	assert.Contains(t, html, ">-</div>")
	assert.Contains(t, html, "Não informado")
	assert.Contains(t, html, "Nenhum arquivo anexado")
	assert.Contains(t, html, "Criar logotipo exclusivo")
	assert.Contains(t, html, "05/03/2026, 14:04:09")
}

func TestNotifyBriefing_LinksAndFiles(t *testing.T) {
	p := &fakeMailProvider{}
	s := newTestNotificationService(p)

	link := "https://drive.example.com/folder"
	b := model.NewBriefing()
	b.CompanyName = "Maju"
	b.FilesLink = &link
	b.VisualIdentityFiles = model.FileList{"https://cdn.example.com/a.png", "https://cdn.example.com/b.pdf"}
	b.LogoPreference = model.LogoPreferenceKeepExisting

	require.NoError(t, s.NotifyBriefing(context.Background(), b))
	html := p.sent[0].HTML

	assert.Contains(t, html, `<a href="https://drive.example.com/folder">https://drive.example.com/folder</a>`)
	assert.Contains(t, html, `<a href="https://cdn.example.com/a.png">Arquivo 1</a><br/><a href="https://cdn.example.com/b.pdf">Arquivo 2</a>`)
	assert.Contains(t, html, "Usar logotipo atual da marca")
	assert.NotContains(t, html, "Nenhum arquivo anexado")
	assert.NotContains(t, html, "Não informado")
}

func TestNotifyBriefing_EscapesUserInput(t *testing.T) {
	p := &fakeMailProvider{}
	s := newTestNotificationService(p)

	b := model.NewBriefing()
	b.CompanyName = "Maju"
	b.Slogans = "<script>alert(1)</script>"

	require.NoError(t, s.NotifyBriefing(context.Background(), b))
	assert.False(t, strings.Contains(p.sent[0].HTML, "<script>"))
}

func TestNotifyBriefing_ProviderError(t *testing.T) {
	p := &fakeMailProvider{err: mail.ErrMailNotConfigured}
	s := newTestNotificationService(p)

	err := s.NotifyBriefing(context.Background(), model.NewBriefing())
	assert.True(t, errors.Is(err, mail.ErrMailNotConfigured))
}

func TestNotifyBriefing_NoCc(t *testing.T) {
	p := &fakeMailProvider{}
	s := NewNotificationService(p, "", "staff@example.com", "")

	require.NoError(t, s.NotifyBriefing(context.Background(), model.NewBriefing()))
	assert.Empty(t, p.sent[0].Cc)
}
