package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/majupersonalizados/briefing/internal/ctxkeys"
	"github.com/majupersonalizados/briefing/internal/ui"
	"github.com/majupersonalizados/briefing/internal/ui/components/toast"
	"github.com/majupersonalizados/briefing/internal/ui/pages"
	"github.com/majupersonalizados/briefing/internal/validation"
	"github.com/majupersonalizados/briefing/internal/wizard"
)

// multipart parts beyond this spill to temp files
const uploadMemory = 32 << 20

// BriefingHandler serves the intake form. Home may run without a flow; every
// other route expects the one StartBriefing or LoadBriefing put in the context.
type BriefingHandler struct {
	store          *wizard.Store
	uploadMaxBytes int64
}

func NewBriefingHandler(store *wizard.Store, uploadMaxBytes int64) *BriefingHandler {
	return &BriefingHandler{
		store:          store,
		uploadMaxBytes: uploadMaxBytes,
	}
}

// Home is the landing screen. Visitors half way through go back to their step.
func (h *BriefingHandler) Home(w http.ResponseWriter, r *http.Request) {
	flow := ctxkeys.Flow(r.Context())
	if flow != nil && flow.View().Started {
		http.Redirect(w, r, "/briefing", http.StatusSeeOther)
		return
	}
	ui.Render(w, r, pages.Home())
}

func (h *BriefingHandler) Start(w http.ResponseWriter, r *http.Request) {
	ctxkeys.Flow(r.Context()).Start()
	http.Redirect(w, r, "/briefing", http.StatusSeeOther)
}

func (h *BriefingHandler) Page(w http.ResponseWriter, r *http.Request) {
	v := ctxkeys.Flow(r.Context()).View()
	if v.Status == wizard.StatusSuccess {
		ui.Render(w, r, pages.BriefingSent())
		return
	}
	if !v.Started {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	ui.Render(w, r, pages.Briefing(v))
}

// Update saves the fields of the current screen as they are typed and
// re-renders the buttons, so Next enables once the screen is complete.
func (h *BriefingHandler) Update(w http.ResponseWriter, r *http.Request) {
	flow := ctxkeys.Flow(r.Context())
	h.applyForm(r, flow)
	ui.Render(w, r, pages.StepNav(flow.View()))
}

func (h *BriefingHandler) Next(w http.ResponseWriter, r *http.Request) {
	flow := ctxkeys.Flow(r.Context())
	h.applyForm(r, flow)

	err := flow.Next(r.Context())
	switch {
	case err == nil, errors.Is(err, wizard.ErrAlreadySubmitted):
	case errors.Is(err, wizard.ErrStepLocked):
		slog.Debug("briefing step incomplete", "step", flow.View().Step)
	default:
		// The failure is on the flow status and shown on the review screen
		slog.Warn("briefing submission not stored", "error", err)
	}

	v := flow.View()
	if v.Status == wizard.StatusSuccess {
		redirect(w, r, "/briefing")
		return
	}
	h.renderStep(w, r, v)
}

func (h *BriefingHandler) Prev(w http.ResponseWriter, r *http.Request) {
	flow := ctxkeys.Flow(r.Context())
	h.applyForm(r, flow)
	flow.Prev()
	h.renderStep(w, r, flow.View())
}

// Reset forgets a submitted briefing so the visitor can send another one.
func (h *BriefingHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.store.Reset(ctxkeys.FlowID(r.Context()))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Upload starts storing the attached files and answers right away with the
// progress list, which then polls Uploads until the batch is done.
func (h *BriefingHandler) Upload(w http.ResponseWriter, r *http.Request) {
	flow := ctxkeys.Flow(r.Context())

	if h.uploadMaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.uploadMaxBytes)
	}
	err := r.ParseMultipartForm(uploadMemory)
	if err != nil {
		slog.Warn("failed to parse upload form", "error", err)
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.renderUploads(w, r, flow, "Arquivos muito grandes. Envie no máximo "+formatMB(h.uploadMaxBytes)+" por vez.")
			return
		}
		h.renderUploads(w, r, flow, "Não foi possível ler os arquivos enviados.")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	var files []wizard.File
	var alerts []string
	for _, fh := range r.MultipartForm.File["files"] {
		file, err := readUpload(fh)
		if errors.Is(err, validation.ErrFileType) || errors.Is(err, validation.ErrFileEmpty) {
			slog.Info("rejected upload", "error", err, "name", fh.Filename)
			alerts = append(alerts, "O arquivo "+fh.Filename+" não é JPEG, PNG ou PDF.")
			continue
		}
		if err != nil {
			slog.Error("failed to read uploaded file", "error", err, "name", fh.Filename)
			alerts = append(alerts, wizard.UploadAlert(fh.Filename))
			continue
		}
		files = append(files, file)
	}

	if len(files) > 0 {
		// The batch outlives this request; progress is read by polling.
		flow.StartUpload(context.WithoutCancel(r.Context()), files)
	}

	h.renderUploads(w, r, flow, alerts...)
}

// Uploads is polled while a batch is running.
func (h *BriefingHandler) Uploads(w http.ResponseWriter, r *http.Request) {
	h.renderUploads(w, r, ctxkeys.Flow(r.Context()))
}

func (h *BriefingHandler) RemoveFile(w http.ResponseWriter, r *http.Request) {
	flow := ctxkeys.Flow(r.Context())

	i, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.Error(w, "invalid file index", http.StatusBadRequest)
		return
	}

	err = flow.RemoveFile(r.Context(), i)
	if errors.Is(err, wizard.ErrFileNotFound) {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}

	h.renderUploads(w, r, flow)
}

func (h *BriefingHandler) applyForm(r *http.Request, flow *wizard.Flow) {
	err := r.ParseForm()
	if err != nil {
		slog.Warn("failed to parse briefing form", "error", err)
		return
	}
	flow.Update(wizard.FieldsFromForm(r.PostForm))
}

func (h *BriefingHandler) renderStep(w http.ResponseWriter, r *http.Request, v wizard.View) {
	if r.Header.Get("HX-Request") != "true" {
		http.Redirect(w, r, "/briefing", http.StatusSeeOther)
		return
	}
	ui.Render(w, r, pages.Step(v))
}

// renderUploads writes the upload list plus any pending alerts as toasts.
func (h *BriefingHandler) renderUploads(w http.ResponseWriter, r *http.Request, flow *wizard.Flow, extra ...string) {
	alerts := append(flow.DrainAlerts(), extra...)
	ui.Render(w, r, pages.Uploads(flow.View()))
	if len(alerts) > 0 {
		ui.RenderOOB(w, r, toast.List(alerts), "beforeend:#alerts")
	}
}

func readUpload(fh *multipart.FileHeader) (wizard.File, error) {
	f, err := fh.Open()
	if err != nil {
		return wizard.File{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return wizard.File{}, err
	}

	contentType, err := validation.ValidateAttachment(fh.Filename, data, 0)
	if err != nil {
		return wizard.File{}, err
	}

	return wizard.File{
		Name:        fh.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

func formatMB(n int64) string {
	return strconv.FormatInt(n>>20, 10) + "MB"
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", target)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
