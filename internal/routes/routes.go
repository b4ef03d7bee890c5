package routes

import (
	"net/http"

	"github.com/majupersonalizados/briefing/assets"
	"github.com/majupersonalizados/briefing/internal/app"
	"github.com/majupersonalizados/briefing/internal/handler"
	"github.com/majupersonalizados/briefing/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	home := handler.NewHomeHandler(app.DB)
	legal := handler.NewLegalHandler(app.LegalService)
	briefing := handler.NewBriefingHandler(app.Drafts, app.Cfg.UploadMaxBytes)
	notify := handler.NewNotifyHandler(app.NotificationService)
	assist := handler.NewAssistHandler(app.ChatService)
	auth := handler.NewAuthHandler(app.AuthService, app.Cfg)
	dashboard := handler.NewDashboardHandler(app.BriefingService, app.ArchiveService)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	// Static files
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServer(http.FS(assets.AssetsFS))))

	// Health check (metrics are served on their own listener, see metrics.NewServer)
	mux.HandleFunc("GET /healthz", home.Health)

	// Legal
	mux.HandleFunc("GET /legal/{page}", legal.ShowPage)

	// Briefing form (state kept per browser session, created by the start button)
	draft := middleware.LoadBriefing(app.Drafts)
	inDraft := func(h http.HandlerFunc) http.HandlerFunc {
		return draft(middleware.RequireBriefing(h))
	}

	mux.HandleFunc("GET /{$}", draft(briefing.Home))
	mux.HandleFunc("POST /briefing/start", middleware.StartBriefing(app.Drafts)(briefing.Start))
	mux.HandleFunc("GET /briefing", inDraft(briefing.Page))
	mux.HandleFunc("POST /briefing/update", inDraft(briefing.Update))
	mux.HandleFunc("POST /briefing/next", inDraft(briefing.Next))
	mux.HandleFunc("POST /briefing/prev", inDraft(briefing.Prev))
	mux.HandleFunc("POST /briefing/reset", inDraft(briefing.Reset))
	mux.HandleFunc("POST /briefing/upload", inDraft(briefing.Upload))
	mux.HandleFunc("GET /briefing/uploads", inDraft(briefing.Uploads))
	mux.HandleFunc("DELETE /briefing/files/{index}", inDraft(briefing.RemoveFile))

	// Chat widget
	mux.HandleFunc("POST /assist/widget", assist.Widget)

	// ============================================================================
	// JSON API (any method, handlers answer 405 themselves)
	// ============================================================================

	mux.HandleFunc("/api/send-email", notify.SendEmail)
	mux.HandleFunc("/api/assist", assist.Assist)
	mux.HandleFunc("/.netlify/functions/send-email", notify.SendEmail)
	mux.HandleFunc("/.netlify/functions/assist", assist.Assist)

	// ============================================================================
	// ADMIN
	// ============================================================================

	clientIP := middleware.NewClientIP(app.Cfg.TrustedProxies)
	loginLimit := middleware.RateLimit(middleware.NewRateLimiter("login", app.Cfg.LoginRateLimit, app.Cfg.LoginRateWindow), clientIP)
	googleLimit := middleware.RateLimit(middleware.NewRateLimiter("google", app.Cfg.OAuthRateLimit, app.Cfg.LoginRateWindow), clientIP)

	mux.HandleFunc("GET /admin", middleware.RequireGuest(auth.LoginPage))
	mux.HandleFunc("POST /admin/login", loginLimit(middleware.RequireGuest(auth.Login)))
	mux.HandleFunc("GET /admin/google", googleLimit(middleware.RequireGuest(auth.GoogleAuth)))
	// The callback is bound to the state cookie set by /admin/google
	mux.HandleFunc("GET /admin/google/callback", auth.GoogleCallback)
	mux.HandleFunc("POST /admin/logout", auth.Logout)

	mux.HandleFunc("GET /dashboard", middleware.RequireAdmin(dashboard.DashboardPage))
	mux.HandleFunc("GET /dashboard/export.json", middleware.RequireAdmin(dashboard.Export))
	mux.HandleFunc("GET /dashboard/briefings/{id}", middleware.RequireAdmin(dashboard.Detail))
	mux.HandleFunc("GET /dashboard/briefings/{id}/files.zip", middleware.RequireAdmin(dashboard.Files))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	// 404
	mux.HandleFunc("/{path...}", home.NotFoundPage)

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		middleware.CapturePattern(mux),
		middleware.Config(app.Cfg),  // Config must be first (needed by SecurityHeaders for S3 endpoint)
		middleware.NonceMiddleware,  // Generate CSP nonce for each request (must be before SecurityHeaders)
		middleware.SecurityHeaders,  // Security headers for all responses (XSS, clickjacking, etc.)
		middleware.RequestLogging,   // Logs and records request metrics
		middleware.CSRFProtection,   // CSRF protection for all state-changing requests except /api/
		middleware.AdminSession(app.AuthService),
		middleware.WithURLPath,
	)

	return handler
}
