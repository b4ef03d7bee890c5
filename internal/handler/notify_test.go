package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/majupersonalizados/briefing/internal/model"
	"github.com/majupersonalizados/briefing/internal/service/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	got *model.Briefing
	err error
}

func (f *fakeNotifier) NotifyBriefing(ctx context.Context, briefing *model.Briefing) error {
	f.got = briefing
	return f.err
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestNotifyHandler_SendEmail(t *testing.T) {
	payload := `{"companyName":"Maju","contactInfo":{"name":"Ana","email":"ana@example.com","phone":"1"},"visualIdentityFiles":["https://cdn.example.com/a.png"]}`

	tests := []struct {
		name       string
		method     string
		body       string
		err        error
		wantStatus int
		wantKey    string
		wantValue  string
	}{
		{"sent", http.MethodPost, payload, nil, http.StatusOK, "message", "Email sent successfully"},
		{"invalid json", http.MethodPost, "{", nil, http.StatusBadRequest, "error", "Invalid request body"},
		{"not configured", http.MethodPost, payload, mail.ErrMailNotConfigured, http.StatusInternalServerError, "error", "Server misconfiguration: Missing SMTP credentials"},
		{"relay failure", http.MethodPost, payload, errBoom, http.StatusInternalServerError, "error", "Failed to send email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &fakeNotifier{err: tt.err}
			h := NewNotifyHandler(notifier)

			rec := httptest.NewRecorder()
			h.SendEmail(rec, httptest.NewRequest(tt.method, "/api/send-email", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantValue, decodeBody(t, rec)[tt.wantKey])
		})
	}
}

func TestNotifyHandler_PassesBriefing(t *testing.T) {
	notifier := &fakeNotifier{}
	h := NewNotifyHandler(notifier)

	body := `{"companyName":"Maju","contactInfo":{"name":"Ana","email":"ana@example.com","phone":"1"}}`
	rec := httptest.NewRecorder()
	h.SendEmail(rec, httptest.NewRequest(http.MethodPost, "/.netlify/functions/send-email", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, notifier.got)
	assert.Equal(t, "Maju", notifier.got.CompanyName)
	assert.Equal(t, "ana@example.com", notifier.got.ContactInfo.Email)
}

func TestNotifyHandler_MethodNotAllowed(t *testing.T) {
	notifier := &fakeNotifier{}
	h := NewNotifyHandler(notifier)

	rec := httptest.NewRecorder()
	h.SendEmail(rec, httptest.NewRequest(http.MethodGet, "/api/send-email", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
	assert.Nil(t, notifier.got)
}
