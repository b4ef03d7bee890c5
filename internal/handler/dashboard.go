package handler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/majupersonalizados/briefing/internal/metrics"
	"github.com/majupersonalizados/briefing/internal/model"
	"github.com/majupersonalizados/briefing/internal/repository"
	"github.com/majupersonalizados/briefing/internal/service"
	"github.com/majupersonalizados/briefing/internal/ui"
	"github.com/majupersonalizados/briefing/internal/ui/pages"
)

type briefingReader interface {
	List(ctx context.Context) ([]*model.Briefing, error)
	ByID(ctx context.Context, id int64) (*model.Briefing, error)
}

type DashboardHandler struct {
	briefings briefingReader
	archive   *service.ArchiveService
}

func NewDashboardHandler(briefings briefingReader, archive *service.ArchiveService) *DashboardHandler {
	return &DashboardHandler{
		briefings: briefings,
		archive:   archive,
	}
}

func (h *DashboardHandler) DashboardPage(w http.ResponseWriter, r *http.Request) {
	briefings, err := h.briefings.List(r.Context())
	if err != nil {
		slog.Error("failed to list briefings", "error", err)
		http.Error(w, "Failed to load dashboard", http.StatusInternalServerError)
		return
	}

	ui.Render(w, r, pages.Dashboard(briefings))
}

// Detail is the expanded view of one briefing.
func (h *DashboardHandler) Detail(w http.ResponseWriter, r *http.Request) {
	briefing, ok := h.briefing(w, r)
	if !ok {
		return
	}
	ui.Render(w, r, pages.BriefingDetail(briefing))
}

// Files streams every attachment of a briefing as one zip. A single failed
// download fails the whole archive.
func (h *DashboardHandler) Files(w http.ResponseWriter, r *http.Request) {
	briefing, ok := h.briefing(w, r)
	if !ok {
		return
	}
	if len(briefing.VisualIdentityFiles) == 0 {
		http.Error(w, "Nenhum arquivo anexado", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	err := h.archive.Bundle(r.Context(), briefing.VisualIdentityFiles, &buf)
	metrics.ArchiveDownloads.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		slog.Error("failed to build archive", "error", err, "briefing_id", briefing.ID)
		http.Error(w, "Erro ao baixar arquivos", http.StatusBadGateway)
		return
	}

	filename := service.ArchiveFilename(briefing.CompanyName)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", service.ContentDisposition(filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, err = buf.WriteTo(w)
	if err != nil {
		slog.Error("failed to write archive", "error", err, "briefing_id", briefing.ID)
	}
}

// Export downloads every briefing as JSON, newest first.
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	briefings, err := h.briefings.List(r.Context())
	if err != nil {
		slog.Error("failed to export briefings", "error", err)
		http.Error(w, "Failed to export briefings", http.StatusInternalServerError)
		return
	}
	if briefings == nil {
		briefings = []*model.Briefing{}
	}

	w.Header().Set("Content-Disposition", "attachment; filename=briefings-export.json")
	writeJSON(w, http.StatusOK, briefings)
}

func (h *DashboardHandler) briefing(w http.ResponseWriter, r *http.Request) (*model.Briefing, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid briefing id", http.StatusBadRequest)
		return nil, false
	}

	briefing, err := h.briefings.ByID(r.Context(), id)
	if errors.Is(err, repository.ErrBriefingNotFound) {
		http.Error(w, "briefing not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		slog.Error("failed to load briefing", "error", err, "briefing_id", id)
		http.Error(w, "Failed to load briefing", http.StatusInternalServerError)
		return nil, false
	}

	return briefing, true
}
