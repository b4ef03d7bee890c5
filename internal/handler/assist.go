package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/majupersonalizados/briefing/internal/markdown"
	"github.com/majupersonalizados/briefing/internal/service"
	"github.com/majupersonalizados/briefing/internal/ui"
	"github.com/majupersonalizados/briefing/internal/ui/pages"
)

type assistant interface {
	Ask(ctx context.Context, message string) (string, error)
}

type AssistHandler struct {
	chat   assistant
	parser *markdown.Parser
}

func NewAssistHandler(chat assistant) *AssistHandler {
	return &AssistHandler{
		chat:   chat,
		parser: markdown.NewParser(),
	}
}

// Assist answers {message} with {response} from the language model.
func (h *AssistHandler) Assist(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	err := decodeJSON(w, r, &req)
	if err != nil || strings.TrimSpace(req.Message) == "" {
		writeJSONError(w, http.StatusBadRequest, "Data Invalida")
		return
	}

	reply, err := h.chat.Ask(r.Context(), req.Message)
	if err != nil {
		slog.Error("error calling chat model", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to process request")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"response": reply})
}

// Widget is the HTMX form of Assist: the question and the rendered answer
// are appended to the chat log. Failures show the fallback text instead.
func (h *AssistHandler) Widget(w http.ResponseWriter, r *http.Request) {
	message := strings.TrimSpace(r.FormValue("message"))
	if message == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	exchange := pages.Exchange{Question: message}

	reply, err := h.chat.Ask(r.Context(), message)
	if err != nil {
		if !errors.Is(err, service.ErrChatNotConfigured) {
			slog.Error("error calling chat model", "error", err)
		}
		reply = service.AssistantFallback
		exchange.Failed = true
	}

	answer, err := h.parser.Parse([]byte(reply))
	if err != nil {
		slog.Error("failed to render assistant reply", "error", err)
		answer = []byte("<p>" + service.AssistantFallback + "</p>")
		exchange.Failed = true
	}
	exchange.Answer = string(answer)

	ui.Render(w, r, pages.AssistExchange(exchange))
}
