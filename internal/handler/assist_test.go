package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/majupersonalizados/briefing/internal/service"
	"github.com/stretchr/testify/assert"
)

type fakeAssistant struct {
	reply string
	err   error
	asked []string
}

func (f *fakeAssistant) Ask(ctx context.Context, message string) (string, error) {
	f.asked = append(f.asked, message)
	return f.reply, f.err
}

func TestAssistHandler_Assist(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantKey    string
		wantValue  string
	}{
		{"answered", `{"message":"Quanto custa?"}`, nil, http.StatusOK, "response", "Depende do pacote."},
		{"missing message", `{}`, nil, http.StatusBadRequest, "error", "Data Invalida"},
		{"blank message", `{"message":"   "}`, nil, http.StatusBadRequest, "error", "Data Invalida"},
		{"invalid json", `message=oi`, nil, http.StatusBadRequest, "error", "Data Invalida"},
		{"model failure", `{"message":"Oi"}`, errBoom, http.StatusInternalServerError, "error", "Failed to process request"},
		{"not configured", `{"message":"Oi"}`, service.ErrChatNotConfigured, http.StatusInternalServerError, "error", "Failed to process request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAssistHandler(&fakeAssistant{reply: "Depende do pacote.", err: tt.err})

			rec := httptest.NewRecorder()
			h.Assist(rec, httptest.NewRequest(http.MethodPost, "/api/assist", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantValue, decodeBody(t, rec)[tt.wantKey])
		})
	}
}

func TestAssistHandler_AssistMethodNotAllowed(t *testing.T) {
	chat := &fakeAssistant{}
	h := NewAssistHandler(chat)

	rec := httptest.NewRecorder()
	h.Assist(rec, httptest.NewRequest(http.MethodGet, "/.netlify/functions/assist", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Empty(t, chat.asked)
}

func TestAssistHandler_Widget(t *testing.T) {
	t.Run("renders markdown answer", func(t *testing.T) {
		chat := &fakeAssistant{reply: "Use **cores** da marca."}
		h := NewAssistHandler(chat)

		rec := httptest.NewRecorder()
		h.Widget(rec, formRequest(http.MethodPost, "/assist/widget", "message=Que+cores%3F"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"Que cores?"}, chat.asked)
		assert.Contains(t, rec.Body.String(), "Que cores?")
		assert.Contains(t, rec.Body.String(), "<strong>cores</strong>")
	})

	t.Run("fallback on failure", func(t *testing.T) {
		h := NewAssistHandler(&fakeAssistant{err: errBoom})

		rec := httptest.NewRecorder()
		h.Widget(rec, formRequest(http.MethodPost, "/assist/widget", "message=Oi"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), service.AssistantFallback)
	})

	t.Run("empty message", func(t *testing.T) {
		chat := &fakeAssistant{}
		h := NewAssistHandler(chat)

		rec := httptest.NewRecorder()
		h.Widget(rec, formRequest(http.MethodPost, "/assist/widget", "message=+"))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, chat.asked)
	})
}
