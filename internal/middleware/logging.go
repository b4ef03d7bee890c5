package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/majupersonalizados/briefing/internal/metrics"
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
	pattern    string
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Paths to skip logging (static assets, health checks and the upload progress poll)
var skipLoggingPaths = []string{
	"/assets/",
	"/favicon.ico",
	"/healthz",
	"/metrics",
	"/briefing/uploads",
}

// RequestLogging logs HTTP requests with method, path, status, and duration
// and records them in the request metrics. Skipped paths are still counted.
func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			written:        false,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		route := routeLabel(rw.pattern)
		metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method, route).Observe(duration.Seconds())

		for _, prefix := range skipLoggingPaths {
			if strings.HasPrefix(r.URL.Path, prefix) {
				return
			}
		}

		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// CapturePattern wraps the mux so RequestLogging can label metrics with the
// matched route. The mux sets Pattern on the request it receives, which the
// outer middleware never see because they pass copies down.
func CapturePattern(mux http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r)
		if rw, ok := w.(*responseWriter); ok {
			rw.pattern = r.Pattern
		}
	})
}

// routeLabel keeps the metric label set bounded: the mux pattern that
// matched, never the raw path.
func routeLabel(pattern string) string {
	if pattern == "" {
		return "unmatched"
	}
	// "GET /briefing/step" -> "/briefing/step"
	if _, path, ok := strings.Cut(pattern, " "); ok {
		return path
	}
	return pattern
}
