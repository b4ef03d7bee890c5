package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/majupersonalizados/briefing/internal/model"
	"github.com/majupersonalizados/briefing/internal/service"
	"github.com/majupersonalizados/briefing/internal/service/mail"
)

type NotifyHandler struct {
	notifier service.Notifier
}

func NewNotifyHandler(notifier service.Notifier) *NotifyHandler {
	return &NotifyHandler{
		notifier: notifier,
	}
}

// SendEmail relays a briefing posted as JSON to the staff mailbox.
func (h *NotifyHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var briefing model.Briefing
	err := decodeJSON(w, r, &briefing)
	if err != nil {
		slog.Warn("invalid send-email payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err = h.notifier.NotifyBriefing(r.Context(), &briefing)
	if errors.Is(err, mail.ErrMailNotConfigured) {
		slog.Error("missing smtp credentials", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Server misconfiguration: Missing SMTP credentials")
		return
	}
	if err != nil {
		slog.Error("failed to send email", "error", err, "company", briefing.CompanyName)
		writeJSONError(w, http.StatusInternalServerError, "Failed to send email")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Email sent successfully"})
}
