package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult(t *testing.T) {
	assert.Equal(t, ResultSuccess, Result(nil))
	assert.Equal(t, ResultError, Result(errors.New("smtp down")))
}

func TestHandler_ExposesCounters(t *testing.T) {
	before := testutil.ToFloat64(ArchiveDownloads.WithLabelValues(ResultError))
	ArchiveDownloads.WithLabelValues(ResultError).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(ArchiveDownloads.WithLabelValues(ResultError)))

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "briefing_archive_downloads_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestNewServer(t *testing.T) {
	srv := NewServer("127.0.0.1:0")
	assert.Equal(t, "127.0.0.1:0", srv.Addr)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
