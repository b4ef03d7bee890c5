package middleware

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/majupersonalizados/briefing/internal/ctxkeys"
)

// htmx and the chat widget script are served from unpkg.
const scriptCDN = "https://unpkg.com"

// SecurityHeaders sets the response headers every page gets. The CSP allows
// inline scripts only with the request nonce, and images from the bucket so
// uploaded logos show up in the dashboard.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

		cfg := ctxkeys.Config(r.Context())
		if cfg != nil && cfg.IsProduction() {
			h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		}

		var storageOrigin string
		if cfg != nil {
			storageOrigin = originOf(cfg.S3PublicURL)
			if storageOrigin == "" {
				storageOrigin = originOf(cfg.S3Endpoint)
			}
		}
		h.Set("Content-Security-Policy", contentSecurityPolicy(GetNonce(r.Context()), storageOrigin))

		next.ServeHTTP(w, r)
	})
}

func contentSecurityPolicy(nonce, storageOrigin string) string {
	scriptSrc := "'self' " + scriptCDN
	if nonce != "" {
		scriptSrc += fmt.Sprintf(" 'nonce-%s'", nonce)
	}

	imgSrc := "'self' data: https:"
	if storageOrigin != "" && !strings.HasPrefix(storageOrigin, "https:") {
		// local MinIO over plain http
		imgSrc += " " + storageOrigin
	}

	directives := []string{
		"default-src 'self'",
		"script-src " + scriptSrc,
		"style-src 'self' 'unsafe-inline'",
		"img-src " + imgSrc,
		"connect-src 'self'",
		"font-src 'self' data:",
		"frame-ancestors 'none'",
		"base-uri 'self'",
		"form-action 'self' https://accounts.google.com",
	}
	return strings.Join(directives, "; ")
}

// originOf returns scheme://host of raw, or "" when raw is not an absolute URL.
func originOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
