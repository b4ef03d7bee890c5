package handler

import (
	"log/slog"
	"net/http"

	"github.com/majupersonalizados/briefing/internal/service"
	"github.com/majupersonalizados/briefing/internal/ui"
	"github.com/majupersonalizados/briefing/internal/ui/pages"
)

type LegalHandler struct {
	legalService *service.LegalService
}

func NewLegalHandler(legalService *service.LegalService) *LegalHandler {
	handler := &LegalHandler{
		legalService: legalService,
	}

	// Pages can still be added later, a failed load only means 404s for now
	err := handler.legalService.LoadPages()
	if err != nil {
		slog.Warn("failed to load legal pages", "error", err)
	}

	return handler
}

func (h *LegalHandler) ShowPage(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("page")

	page, err := h.legalService.Page(slug)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		ui.Render(w, r, pages.NotFound())
		return
	}

	ui.Render(w, r, pages.Legal(page))
}
