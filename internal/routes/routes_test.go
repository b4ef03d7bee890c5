package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/majupersonalizados/briefing/internal/app"
	"github.com/majupersonalizados/briefing/internal/config"
	"github.com/majupersonalizados/briefing/internal/db"
	"github.com/majupersonalizados/briefing/internal/repository"
	"github.com/majupersonalizados/briefing/internal/service"
	"github.com/majupersonalizados/briefing/internal/service/mail"
	"github.com/majupersonalizados/briefing/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type nopStorage struct{}

func (nopStorage) Save(ctx context.Context, key string, body io.Reader, contentType string) error {
	_, err := io.Copy(io.Discard, body)
	return err
}

func (nopStorage) Delete(ctx context.Context, key string) error { return nil }

func (nopStorage) PublicURL(key string) string { return "https://files.example.com/" + key }

func (nopStorage) KeyFromURL(u string) (string, bool) {
	return strings.CutPrefix(u, "https://files.example.com/")
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv, _ := newTestApp(t)
	return srv
}

func newTestApp(t *testing.T) (*httptest.Server, *app.App) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("maju-2026"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{
		AppName:             "Maju Personalizados",
		AppEnv:              "development",
		DBDriver:            "sqlite",
		DBConnection:        ":memory:",
		JWTSecret:           "test-secret",
		AdminSessionExpiry:  time.Hour,
		AdminPasswordHashes: []string{string(hash)},
		LoginRateLimit:      5,
		OAuthRateLimit:      20,
		LoginRateWindow:     15 * time.Minute,
		UploadMaxBytes:      10 << 20,
		MailProvider:        mail.ProviderLog,
	}

	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, db.RunMigrations(database.DB, cfg.DBDriver))

	notifications := service.NewNotificationService(mail.NewLogProvider(), "no-reply@example.com", "staff@example.com", "")
	briefings := service.NewBriefingService(repository.NewBriefingRepository(database), notifications)
	legal := service.NewLegalService(fstest.MapFS{
		"legal/privacidade.md": {Data: []byte("---\ntitle: Privacidade\n---\nTexto.\n")},
	}, false)

	a := &app.App{
		Cfg:                 cfg,
		DB:                  database,
		Storage:             nopStorage{},
		AuthService:         service.NewAuthService(cfg.AdminPasswordHashes, nil, cfg.JWTSecret, false, cfg.AdminSessionExpiry),
		BriefingService:     briefings,
		NotificationService: notifications,
		ChatService:         service.NewChatService("", "", ""),
		ArchiveService:      service.NewArchiveService(0),
		LegalService:        legal,
		Drafts:              wizard.NewStore(wizard.Deps{Storage: nopStorage{}, Submitter: briefings}, time.Hour),
	}

	srv := httptest.NewServer(SetupRoutes(a))
	t.Cleanup(srv.Close)
	return srv, a
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func csrfToken(t *testing.T, client *http.Client, srv *httptest.Server) string {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	for _, c := range client.Jar.Cookies(u) {
		if c.Name == "csrf_token" {
			return c.Value
		}
	}
	t.Fatal("no csrf cookie")
	return ""
}

func get(t *testing.T, client *http.Client, target string) *http.Response {
	t.Helper()
	resp, err := client.Get(target)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func post(t *testing.T, client *http.Client, target string, form url.Values) *http.Response {
	t.Helper()
	resp, err := client.PostForm(target, form)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestRoutes_Public(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/", http.StatusOK},
		{"/healthz", http.StatusOK},
		{"/metrics", http.StatusNotFound},
		{"/legal/privacidade", http.StatusOK},
		{"/legal/termos", http.StatusNotFound},
		{"/assets/js/app.js", http.StatusOK},
		{"/pagina-que-nao-existe", http.StatusNotFound},
		{"/briefing", http.StatusSeeOther},
		{"/dashboard", http.StatusSeeOther},
		{"/api/send-email", http.StatusMethodNotAllowed},
		{"/.netlify/functions/assist", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := get(t, client, srv.URL+tt.path)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestRoutes_SecurityHeaders(t *testing.T) {
	srv := newTestServer(t)

	resp := get(t, newClient(t), srv.URL+"/")

	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Contains(t, resp.Header.Get("Content-Security-Policy"), "'nonce-")
}

func TestRoutes_CSRF(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	get(t, client, srv.URL+"/")

	resp := post(t, client, srv.URL+"/briefing/start", url.Values{})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = post(t, client, srv.URL+"/briefing/start", url.Values{"csrf_token": {csrfToken(t, client, srv)}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/briefing", resp.Header.Get("Location"))

	resp = get(t, client, srv.URL+"/briefing")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRoutes_JSONEndpointsSkipCSRF(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/assist", "application/json", strings.NewReader(`{"message":""}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp2, err := http.Post(srv.URL+"/.netlify/functions/send-email", "application/json", strings.NewReader(`{"companyName":"Maju"}`))
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}

func TestRoutes_AdminLogin(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	resp := get(t, client, srv.URL+"/admin")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := csrfToken(t, client, srv)

	resp = post(t, client, srv.URL+"/admin/login", url.Values{"csrf_token": {token}, "password": {"errada"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = post(t, client, srv.URL+"/admin/login", url.Values{"csrf_token": {token}, "password": {"maju-2026"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	resp = get(t, client, srv.URL+"/dashboard")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = get(t, client, srv.URL+"/dashboard/export.json")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = get(t, client, srv.URL+"/admin")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp = post(t, client, srv.URL+"/admin/logout", url.Values{"csrf_token": {token}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp = get(t, client, srv.URL+"/dashboard")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestRoutes_LoginRateLimitIgnoresForwardedFor(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	get(t, client, srv.URL+"/admin")
	token := csrfToken(t, client, srv)

	var codes []int
	for i := range 8 {
		form := url.Values{"csrf_token": {token}, "password": {"errada"}}
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/admin/login", strings.NewReader(form.Encode()))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.9.0.%d", i))

		resp, err := client.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}

	assert.Equal(t, []int{
		http.StatusUnauthorized, http.StatusUnauthorized, http.StatusUnauthorized,
		http.StatusUnauthorized, http.StatusUnauthorized,
		http.StatusTooManyRequests, http.StatusTooManyRequests, http.StatusTooManyRequests,
	}, codes)
}

func TestRoutes_DraftCreatedOnlyByStart(t *testing.T) {
	srv, a := newTestApp(t)
	client := newClient(t)

	for range 3 {
		resp := get(t, client, srv.URL+"/")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp := get(t, client, srv.URL+"/briefing/uploads")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Zero(t, a.Drafts.Len())

	resp = post(t, client, srv.URL+"/briefing/start", url.Values{"csrf_token": {csrfToken(t, client, srv)}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, 1, a.Drafts.Len())

	resp = get(t, client, srv.URL+"/")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/briefing", resp.Header.Get("Location"))
	assert.Equal(t, 1, a.Drafts.Len())
}
