package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/majupersonalizados/briefing/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHomeHandler_Health(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	h := NewHomeHandler(sqlx.NewDb(mockDB, "sqlmock"))

	mock.ExpectPing()
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])

	mock.ExpectPing().WillReturnError(errBoom)
	rec = httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHomeHandler_NotFoundPage(t *testing.T) {
	h := NewHomeHandler(nil)

	rec := httptest.NewRecorder()
	h.NotFoundPage(rec, httptest.NewRequest(http.MethodGet, "/nada", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Página não encontrada")
}

func TestLegalHandler_ShowPage(t *testing.T) {
	content := fstest.MapFS{
		"legal/privacidade.md": {Data: []byte("---\ntitle: Política de Privacidade\n---\nSeus dados ficam conosco.\n")},
	}
	h := NewLegalHandler(service.NewLegalService(content, false))

	show := func(slug string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/legal/"+slug, nil)
		r.SetPathValue("page", slug)
		rec := httptest.NewRecorder()
		h.ShowPage(rec, r)
		return rec
	}

	rec := show("privacidade")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Seus dados ficam conosco.")

	assert.Equal(t, http.StatusNotFound, show("termos").Code)
}
