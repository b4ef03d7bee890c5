package middleware

import (
	"net/http"

	"github.com/majupersonalizados/briefing/internal/ctxkeys"
	"github.com/majupersonalizados/briefing/internal/wizard"
)

const BriefingCookieName = "briefing_session"

// LoadBriefing attaches the visitor's form state to the context when the
// cookie points at a live flow. It never creates one.
func LoadBriefing(store *wizard.Store) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(BriefingCookieName)
			if err != nil {
				next(w, r)
				return
			}

			flow, ok := store.Lookup(cookie.Value)
			if !ok {
				next(w, r)
				return
			}

			ctx := ctxkeys.WithFlow(r.Context(), cookie.Value, flow)
			next(w, r.WithContext(ctx))
		}
	}
}

// StartBriefing is LoadBriefing for the start button: a visitor without a
// live flow gets a new one and the cookie that points at it.
func StartBriefing(store *wizard.Store) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			var current string
			if cookie, err := r.Cookie(BriefingCookieName); err == nil {
				current = cookie.Value
			}

			id, flow := store.Get(current)
			if id != current {
				cfg := ctxkeys.Config(r.Context())
				http.SetCookie(w, &http.Cookie{
					Name:     BriefingCookieName,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   cfg != nil && cfg.IsProduction(),
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := ctxkeys.WithFlow(r.Context(), id, flow)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireBriefing sends visitors without a flow back to the start screen.
func RequireBriefing(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.Flow(r.Context()) == nil {
			redirect(w, r, "/")
			return
		}
		next(w, r)
	}
}
