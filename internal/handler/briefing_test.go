package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/majupersonalizados/briefing/internal/model"
	"github.com/majupersonalizados/briefing/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBriefingHandler(t *testing.T) (*BriefingHandler, *wizard.Store, *memStorage, *fakeSubmitter) {
	t.Helper()
	st := newMemStorage()
	sub := &fakeSubmitter{}
	store := newTestStore(st, sub)
	return NewBriefingHandler(store, 10<<20), store, st, sub
}

func completeForm() url.Values {
	return url.Values{
		"companyName":      {"Maju"},
		"expectations":     {"Vender mais"},
		"contactName":      {"Ana"},
		"contactEmail":     {"ana@example.com"},
		"contactPhone":     {"11 99999-0000"},
		"targetAudience":   {"Noivas"},
		"slogans":          {"Feito à mão"},
		"priorExperience":  {model.PriorExperienceNo},
		"launchEventDate":  {"Dezembro"},
		"logoPreference":   {model.LogoPreferenceExclusive},
		"colorsTypography": {"Rosa"},
		"reference_links":  {"nike.com"},
	}
}

func TestBriefingHandler_HomeWithoutFlow(t *testing.T) {
	h, store, _, _ := newBriefingHandler(t)

	rec := httptest.NewRecorder()
	h.Home(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/briefing/start"`)
	assert.Zero(t, store.Len())
}

func TestBriefingHandler_HomeAndStart(t *testing.T) {
	h, store, _, _ := newBriefingHandler(t)
	id, _ := store.Get("")

	rec := httptest.NewRecorder()
	h.Home(rec, withFlow(httptest.NewRequest(http.MethodGet, "/", nil), store, id))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/briefing/start"`)

	rec = httptest.NewRecorder()
	h.Page(rec, withFlow(httptest.NewRequest(http.MethodGet, "/briefing", nil), store, id))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	h.Start(rec, withFlow(formRequest(http.MethodPost, "/briefing/start", ""), store, id))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/briefing", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	h.Home(rec, withFlow(httptest.NewRequest(http.MethodGet, "/", nil), store, id))
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = httptest.NewRecorder()
	h.Page(rec, withFlow(httptest.NewRequest(http.MethodGet, "/briefing", nil), store, id))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="step"`)
}

func TestBriefingHandler_UpdateEnablesNext(t *testing.T) {
	h, store, _, _ := newBriefingHandler(t)
	id, flow := store.Get("")
	flow.Start()

	rec := httptest.NewRecorder()
	h.Update(rec, htmx(withFlow(formRequest(http.MethodPost, "/briefing/update", "companyName=Maju"), store, id)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="step-nav"`)
	assert.False(t, flow.CanAdvance())

	rec = httptest.NewRecorder()
	h.Update(rec, htmx(withFlow(formRequest(http.MethodPost, "/briefing/update", "expectations=Crescer"), store, id)))
	assert.True(t, flow.CanAdvance())
	assert.Equal(t, "Maju", flow.View().Draft.CompanyName)
}

func TestBriefingHandler_NextLockedStaysOnStep(t *testing.T) {
	h, store, _, _ := newBriefingHandler(t)
	id, flow := store.Get("")
	flow.Start()

	rec := httptest.NewRecorder()
	h.Next(rec, htmx(withFlow(formRequest(http.MethodPost, "/briefing/next", ""), store, id)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, wizard.StepCompany, flow.View().Step)
}

func TestBriefingHandler_WalkAndSubmit(t *testing.T) {
	h, store, _, sub := newBriefingHandler(t)
	id, flow := store.Get("")
	flow.Start()

	body := completeForm().Encode()
	for step := 0; step < wizard.LastStep; step++ {
		rec := httptest.NewRecorder()
		h.Next(rec, htmx(withFlow(formRequest(http.MethodPost, "/briefing/next", body), store, id)))
		require.Equal(t, http.StatusOK, rec.Code, "step %d", step)
	}
	assert.Equal(t, wizard.LastStep, flow.View().Step)
	assert.Equal(t, 0, sub.count())

	rec := httptest.NewRecorder()
	h.Next(rec, htmx(withFlow(formRequest(http.MethodPost, "/briefing/next", ""), store, id)))
	assert.Equal(t, "/briefing", rec.Header().Get("HX-Redirect"))
	assert.Equal(t, 1, sub.count())

	rec = httptest.NewRecorder()
	h.Page(rec, withFlow(httptest.NewRequest(http.MethodGet, "/briefing", nil), store, id))
	assert.Contains(t, rec.Body.String(), "Briefing Enviado!")

	// A second submit is a no-op
	rec = httptest.NewRecorder()
	h.Next(rec, htmx(withFlow(formRequest(http.MethodPost, "/briefing/next", ""), store, id)))
	assert.Equal(t, 1, sub.count())

	rec = httptest.NewRecorder()
	h.Reset(rec, withFlow(formRequest(http.MethodPost, "/briefing/reset", ""), store, id))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	_, ok := store.Lookup(id)
	assert.False(t, ok)
}

func TestBriefingHandler_SubmitFailureShowsError(t *testing.T) {
	h, store, _, sub := newBriefingHandler(t)
	sub.err = errBoom
	id, flow := store.Get("")
	flow.Start()
	flow.Update(wizard.FieldsFromForm(completeForm()))

	body := completeForm().Encode()
	for step := 0; step <= wizard.LastStep; step++ {
		rec := httptest.NewRecorder()
		h.Next(rec, htmx(withFlow(formRequest(http.MethodPost, "/briefing/next", body), store, id)))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	v := flow.View()
	assert.Equal(t, wizard.StatusError, v.Status)
	assert.Equal(t, wizard.LastStep, v.Step)
}

func TestBriefingHandler_PrevAndNoJSFallback(t *testing.T) {
	h, store, _, _ := newBriefingHandler(t)
	id, flow := store.Get("")
	flow.Start()

	rec := httptest.NewRecorder()
	h.Next(rec, withFlow(formRequest(http.MethodPost, "/briefing/next", completeForm().Encode()), store, id))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/briefing", rec.Header().Get("Location"))
	assert.Equal(t, 1, flow.View().Step)

	rec = httptest.NewRecorder()
	h.Prev(rec, htmx(withFlow(formRequest(http.MethodPost, "/briefing/prev", ""), store, id)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, flow.View().Step)
	assert.Equal(t, -1, flow.View().Direction)
}

func multipartUpload(t *testing.T, files map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/briefing/upload", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return htmx(r)
}

func TestBriefingHandler_Upload(t *testing.T) {
	h, store, st, _ := newBriefingHandler(t)
	st.block = make(chan struct{})
	id, flow := store.Get("")

	rec := httptest.NewRecorder()
	h.Upload(rec, withFlow(multipartUpload(t, map[string]string{"logo.png": "\x89PNG\r\n\x1a\n"}), store, id))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "logo.png")
	assert.Contains(t, rec.Body.String(), `hx-trigger="every 200ms"`)

	close(st.block)
	require.Eventually(t, func() bool {
		v := flow.View()
		return len(v.Draft.VisualIdentityFiles) == 1 && !v.HasUploads()
	}, 2*time.Second, 5*time.Millisecond)

	rec = httptest.NewRecorder()
	h.Uploads(rec, withFlow(htmx(httptest.NewRequest(http.MethodGet, "/briefing/uploads", nil)), store, id))
	assert.Contains(t, rec.Body.String(), "Arquivos anexados")
	assert.NotContains(t, rec.Body.String(), "every 200ms")
}

func TestBriefingHandler_UploadRejectsOtherTypes(t *testing.T) {
	h, store, _, _ := newBriefingHandler(t)
	id, flow := store.Get("")

	rec := httptest.NewRecorder()
	h.Upload(rec, withFlow(multipartUpload(t, map[string]string{"notas.txt": "apenas texto"}), store, id))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "notas.txt não é JPEG, PNG ou PDF.")
	assert.False(t, flow.View().HasUploads())
}

func TestBriefingHandler_UploadTooLarge(t *testing.T) {
	st := newMemStorage()
	store := newTestStore(st, &fakeSubmitter{})
	h := NewBriefingHandler(store, 1<<20)
	id, flow := store.Get("")

	big := "%PDF-1.7\n" + string(bytes.Repeat([]byte("a"), 2<<20))
	rec := httptest.NewRecorder()
	h.Upload(rec, withFlow(multipartUpload(t, map[string]string{"huge.pdf": big}), store, id))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `hx-swap-oob="beforeend:#alerts"`)
	assert.Contains(t, rec.Body.String(), "1MB")
	assert.False(t, flow.View().HasUploads())
}

func TestBriefingHandler_RemoveFile(t *testing.T) {
	h, store, st, _ := newBriefingHandler(t)
	id, flow := store.Get("")
	flow.Upload(t.Context(), []wizard.File{{Name: "logo.png", ContentType: "image/png", Data: []byte("png")}})
	require.Len(t, flow.View().Draft.VisualIdentityFiles, 1)

	remove := func(index string) *httptest.ResponseRecorder {
		r := htmx(httptest.NewRequest(http.MethodDelete, "/briefing/files/"+index, nil))
		r.SetPathValue("index", index)
		rec := httptest.NewRecorder()
		h.RemoveFile(rec, withFlow(r, store, id))
		return rec
	}

	assert.Equal(t, http.StatusBadRequest, remove("x").Code)
	assert.Equal(t, http.StatusNotFound, remove("3").Code)

	rec := remove("0")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, flow.View().Draft.VisualIdentityFiles)
	st.mu.Lock()
	assert.Empty(t, st.objects)
	st.mu.Unlock()
}

func TestFormatMB(t *testing.T) {
	assert.Equal(t, "10MB", formatMB(10<<20))
}
