package handler

import (
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/majupersonalizados/briefing/internal/db"
	"github.com/majupersonalizados/briefing/internal/ui"
	"github.com/majupersonalizados/briefing/internal/ui/pages"
)

type HomeHandler struct {
	database *sqlx.DB
}

func NewHomeHandler(database *sqlx.DB) *HomeHandler {
	return &HomeHandler{database: database}
}

func (h *HomeHandler) NotFoundPage(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	ui.Render(w, r, pages.NotFound())
}

// Health reports whether the database answers.
func (h *HomeHandler) Health(w http.ResponseWriter, r *http.Request) {
	err := db.Ping(r.Context(), h.database)
	if err != nil {
		slog.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
