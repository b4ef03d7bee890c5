package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/majupersonalizados/briefing/internal/config"
	"github.com/majupersonalizados/briefing/internal/ctxkeys"
	"github.com/majupersonalizados/briefing/internal/metrics"
	"github.com/majupersonalizados/briefing/internal/model"
	"github.com/majupersonalizados/briefing/internal/service"
	"github.com/majupersonalizados/briefing/internal/wizard"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestCSRFProtection(t *testing.T) {
	h := CSRFProtection(okHandler)

	t.Run("get issues token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/briefing", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, csrfCookieName, cookies[0].Name)
	})

	t.Run("post without token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/briefing/next", nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("post with header token", func(t *testing.T) {
		token := generateCSRFToken()
		req := httptest.NewRequest(http.MethodPost, "/briefing/next", nil)
		req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: token})
		req.Header.Set(csrfHeader, token)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("post with form token", func(t *testing.T) {
		token := generateCSRFToken()
		form := url.Values{csrfFormField: {token}}
		req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: token})

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("json endpoints exempt", func(t *testing.T) {
		for _, path := range []string{"/api/send-email", "/.netlify/functions/assist"} {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
			assert.Equal(t, http.StatusOK, rec.Code, path)
		}
	})
}

func TestSecurityHeaders(t *testing.T) {
	cfg := &config.Config{AppEnv: "production", S3PublicURL: "https://cdn.example.com/bucket"}
	h := Chain(okHandler, Config(cfg), NonceMiddleware, SecurityHeaders)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))

	csp := rec.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "'nonce-")
	assert.Contains(t, csp, "https://unpkg.com")
	assert.Contains(t, csp, "frame-ancestors 'none'")
}

func TestContentSecurityPolicy_LocalStorage(t *testing.T) {
	csp := contentSecurityPolicy("abc", "http://localhost:9000")
	assert.Contains(t, csp, "script-src 'self' https://unpkg.com 'nonce-abc'")
	assert.Contains(t, csp, "img-src 'self' data: https: http://localhost:9000")

	csp = contentSecurityPolicy("", "")
	assert.NotContains(t, csp, "nonce")
}

func TestOriginOf(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com", originOf("https://cdn.example.com/bucket/x"))
	assert.Equal(t, "http://localhost:9000", originOf("http://localhost:9000"))
	assert.Equal(t, "", originOf(""))
	assert.Equal(t, "", originOf("cdn.example.com"))
}

func TestAdminSession(t *testing.T) {
	auth := service.NewAuthService(nil, nil, "secret", false, time.Hour)
	token, err := auth.GenerateJWT(&model.AdminSession{
		Subject:   "admin",
		Method:    model.LoginMethodPassword,
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	var got *model.AdminSession
	h := AdminSession(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ctxkeys.Session(r.Context())
	}))

	t.Run("valid cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(&http.Cookie{Name: service.SessionCookieName, Value: token})
		h.ServeHTTP(httptest.NewRecorder(), req)

		require.NotNil(t, got)
		assert.Equal(t, "admin", got.Subject)
	})

	t.Run("invalid cookie cleared", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(&http.Cookie{Name: service.SessionCookieName, Value: "garbage"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Nil(t, got)
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, -1, cookies[0].MaxAge)
	})
}

func TestRequireAdmin(t *testing.T) {
	h := RequireAdmin(okHandler)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("HX-Request", "true")
	rec = httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, "/admin", rec.Header().Get("HX-Redirect"))

	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req = req.WithContext(ctxkeys.WithSession(req.Context(), &model.AdminSession{Subject: "admin"}))
	rec = httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoadAndStartBriefing(t *testing.T) {
	store := wizard.NewStore(wizard.Deps{}, time.Hour)

	var flowID string
	var flow *wizard.Flow
	capture := func(w http.ResponseWriter, r *http.Request) {
		flowID = ctxkeys.FlowID(r.Context())
		flow = ctxkeys.Flow(r.Context())
	}
	load := LoadBriefing(store)(capture)
	start := StartBriefing(store)(capture)

	t.Run("landing without cookie creates nothing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		load(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Nil(t, flow)
		assert.Empty(t, rec.Result().Cookies())
		assert.Zero(t, store.Len())
	})

	t.Run("unknown cookie creates nothing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: BriefingCookieName, Value: "stale"})
		rec := httptest.NewRecorder()
		load(rec, req)

		assert.Nil(t, flow)
		assert.Zero(t, store.Len())
	})

	rec := httptest.NewRecorder()
	start(rec, httptest.NewRequest(http.MethodPost, "/briefing/start", nil))

	require.NotNil(t, flow)
	assert.Equal(t, 1, store.Len())
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, BriefingCookieName, cookies[0].Name)
	assert.Equal(t, flowID, cookies[0].Value)

	first := flow
	for _, h := range []http.HandlerFunc{load, start} {
		req := httptest.NewRequest(http.MethodGet, "/briefing", nil)
		req.AddCookie(cookies[0])
		rec = httptest.NewRecorder()
		h(rec, req)

		assert.Same(t, first, flow)
		assert.Empty(t, rec.Result().Cookies())
	}
	assert.Equal(t, 1, store.Len())
}

func TestRequireBriefing(t *testing.T) {
	h := RequireBriefing(okHandler)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/briefing", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodPost, "/briefing/next", nil)
	req.Header.Set("HX-Request", "true")
	rec = httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, "/", rec.Header().Get("HX-Redirect"))

	req = httptest.NewRequest(http.MethodGet, "/briefing", nil)
	req = req.WithContext(ctxkeys.WithFlow(req.Context(), "id", wizard.NewFlow(wizard.Deps{})))
	rec = httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter("test", 2, time.Minute)
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))

	now = now.Add(time.Minute + time.Second)
	assert.True(t, rl.Allow("10.0.0.1"))

	now = now.Add(time.Hour)
	rl.cleanup()
	assert.Empty(t, rl.hits)
}

func TestClientIP(t *testing.T) {
	trusted := []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("172.16.0.7/32"),
	}

	tests := []struct {
		name       string
		trusted    []netip.Prefix
		remoteAddr string
		xff        []string
		realIP     string
		want       string
	}{
		{
			name:       "no proxies configured ignores headers",
			remoteAddr: "192.0.2.1:1234",
			xff:        []string{"203.0.113.5"},
			realIP:     "198.51.100.7",
			want:       "192.0.2.1",
		},
		{
			name:       "untrusted peer ignores headers",
			trusted:    trusted,
			remoteAddr: "192.0.2.1:1234",
			xff:        []string{"203.0.113.5"},
			want:       "192.0.2.1",
		},
		{
			name:       "trusted peer uses rightmost hop",
			trusted:    trusted,
			remoteAddr: "10.1.2.3:443",
			xff:        []string{"6.6.6.6, 203.0.113.5"},
			want:       "203.0.113.5",
		},
		{
			name:       "skips trusted hops",
			trusted:    trusted,
			remoteAddr: "10.1.2.3:443",
			xff:        []string{"6.6.6.6, 203.0.113.5", "172.16.0.7"},
			want:       "203.0.113.5",
		},
		{
			name:       "unreadable hop falls back to peer",
			trusted:    trusted,
			remoteAddr: "10.1.2.3:443",
			xff:        []string{"203.0.113.5, not-an-ip"},
			want:       "10.1.2.3",
		},
		{
			name:       "ipv6 peer",
			remoteAddr: "[2001:db8::1]:8080",
			want:       "2001:db8::1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
			req.RemoteAddr = tt.remoteAddr
			for _, v := range tt.xff {
				req.Header.Add("X-Forwarded-For", v)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}

			assert.Equal(t, tt.want, NewClientIP(tt.trusted).From(req))
		})
	}
}

func TestRateLimit_RotatingForwardedFor(t *testing.T) {
	limiter := NewRateLimiter("login", 5, 15*time.Minute)
	h := RateLimit(limiter, NewClientIP(nil))(okHandler)

	before := testutil.ToFloat64(metrics.RateLimited.WithLabelValues("login"))

	var codes []int
	for i := range 50 {
		req := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.9.0.%d", i))
		rec := httptest.NewRecorder()
		h(rec, req)
		codes = append(codes, rec.Code)
	}

	for i, code := range codes {
		if i < 5 {
			assert.Equal(t, http.StatusOK, code, "request %d", i)
			continue
		}
		assert.Equal(t, http.StatusTooManyRequests, code, "request %d", i)
	}
	assert.Equal(t, before+45, testutil.ToFloat64(metrics.RateLimited.WithLabelValues("login")))
}

func TestRateLimit_SeparateBudgets(t *testing.T) {
	ips := NewClientIP(nil)
	login := RateLimit(NewRateLimiter("login", 1, time.Minute), ips)(okHandler)
	google := RateLimit(NewRateLimiter("google", 1, time.Minute), ips)(okHandler)

	call := func(h http.HandlerFunc) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.9:5000"
		rec := httptest.NewRecorder()
		h(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, call(google).Code)
	assert.Equal(t, http.StatusOK, call(login).Code)

	rec := call(login)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestRequestLogging_RouteLabel(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /admin/briefings/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	var captured *responseWriter
	capture := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			captured, _ = w.(*responseWriter)
			next.ServeHTTP(w, r.WithContext(r.Context()))
		})
	}

	h := Chain(CapturePattern(mux), RequestLogging, capture)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/briefings/42", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "/admin/briefings/{id}", routeLabel(captured.pattern))
	assert.Equal(t, http.StatusTeapot, captured.statusCode)
	assert.Equal(t, "unmatched", routeLabel(""))
	assert.Equal(t, "/x", routeLabel("/x"))
}
