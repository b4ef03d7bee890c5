package middleware

import (
	"net/http"

	"github.com/majupersonalizados/briefing/internal/ctxkeys"
	"github.com/majupersonalizados/briefing/internal/service"
)

// AdminSession adds the dashboard session to the context when the session
// cookie carries a valid token. Invalid or expired cookies are cleared.
func AdminSession(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(service.SessionCookieName)
			if err != nil {
				// No cookie, continue without session
				next.ServeHTTP(w, r)
				return
			}

			session, err := authService.VerifyJWT(cookie.Value)
			if err != nil {
				authService.ClearJWTCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			ctx := ctxkeys.WithSession(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin sends visitors without a dashboard session to the login page.
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.Session(r.Context()) == nil {
			redirect(w, r, "/admin")
			return
		}
		next.ServeHTTP(w, r)
	}
}

// RequireGuest skips the login page for visitors who are already signed in.
func RequireGuest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.Session(r.Context()) != nil {
			redirect(w, r, "/dashboard")
			return
		}
		next.ServeHTTP(w, r)
	}
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	// For HTMX requests, use HX-Redirect header to force full page redirect
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
