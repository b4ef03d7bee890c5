package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/majupersonalizados/briefing/internal/config"
	"github.com/majupersonalizados/briefing/internal/ctxkeys"
	"github.com/majupersonalizados/briefing/internal/model"
	"github.com/majupersonalizados/briefing/internal/service"
	"github.com/majupersonalizados/briefing/internal/ui"
	"github.com/majupersonalizados/briefing/internal/ui/pages"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	oauthStateCookie   = "oauth_state"
	googleUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
	msgInvalidPassword = "Senha incorreta."
	msgLoginFailed     = "Não foi possível entrar. Tente novamente."
	msgNotAllowed      = "Esta conta não tem acesso ao painel."
)

type AuthHandler struct {
	authService       *service.AuthService
	googleOAuthConfig *oauth2.Config
	userInfoURL       string
	newState          func() (string, error)
}

func NewAuthHandler(authService *service.AuthService, cfg *config.Config) *AuthHandler {
	h := &AuthHandler{
		authService: authService,
		userInfoURL: googleUserInfoURL,
		newState:    authService.GenerateToken,
	}

	if cfg.GoogleSignInEnabled() {
		h.googleOAuthConfig = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.AppURL + "/admin/google/callback",
			Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email"},
			Endpoint:     google.Endpoint,
		}
	}

	return h
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, r, pages.AdminLogin("", h.googleOAuthConfig != nil))
}

// Login checks the dashboard password and starts a session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	session, err := h.authService.LoginWithPassword(r.FormValue("password"))
	if err != nil {
		slog.Warn("dashboard login failed", "ip", r.RemoteAddr)
		w.WriteHeader(http.StatusUnauthorized)
		ui.Render(w, r, pages.AdminLogin(msgInvalidPassword, h.googleOAuthConfig != nil))
		return
	}

	h.startSession(w, r, session)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// GoogleAuth redirects to the Google consent screen
func (h *AuthHandler) GoogleAuth(w http.ResponseWriter, r *http.Request) {
	if h.googleOAuthConfig == nil {
		http.NotFound(w, r)
		return
	}

	state, err := h.newState()
	if err != nil {
		slog.Error("failed to generate oauth state", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	cfg := ctxkeys.Config(r.Context())
	isProduction := cfg != nil && cfg.IsProduction()

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600, // 10 minutes
	})

	http.Redirect(w, r, h.googleOAuthConfig.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback admits allowlisted Google accounts.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.googleOAuthConfig == nil {
		http.NotFound(w, r)
		return
	}

	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value != state || state == "" {
		slog.Warn("google oauth state validation failed", "error", err)
		h.loginFailed(w, r, msgLoginFailed)
		return
	}

	// Clear state cookie
	http.SetCookie(w, &http.Cookie{
		Name:   oauthStateCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		slog.Warn("google oauth callback missing code")
		h.loginFailed(w, r, msgLoginFailed)
		return
	}

	email, err := h.googleEmail(r.Context(), code)
	if err != nil {
		slog.Error("google oauth failed", "error", err)
		h.loginFailed(w, r, msgLoginFailed)
		return
	}

	session, err := h.authService.AuthenticateGoogle(email)
	if err != nil {
		msg := msgLoginFailed
		if errors.Is(err, service.ErrNotAllowed) {
			msg = msgNotAllowed
		}
		h.loginFailed(w, r, msg)
		return
	}

	h.startSession(w, r, session)
}

func (h *AuthHandler) googleEmail(ctx context.Context, code string) (string, error) {
	token, err := h.googleOAuthConfig.Exchange(ctx, code)
	if err != nil {
		return "", err
	}

	client := h.googleOAuthConfig.Client(ctx, token)
	resp, err := client.Get(h.userInfoURL)
	if err != nil {
		return "", err
	}
	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			slog.Error("failed to close response body", "error", closeErr)
		}
	}()

	var userInfo struct {
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
	}
	err = json.NewDecoder(resp.Body).Decode(&userInfo)
	if err != nil {
		return "", err
	}
	if !userInfo.VerifiedEmail {
		return "", service.ErrInvalidEmail
	}

	return userInfo.Email, nil
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, session *model.AdminSession) {
	token, err := h.authService.GenerateJWT(session)
	if err != nil {
		slog.Error("failed to generate JWT", "error", err)
		h.loginFailed(w, r, msgLoginFailed)
		return
	}

	h.authService.SetJWTCookie(w, token, session.ExpiresAt)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *AuthHandler) loginFailed(w http.ResponseWriter, r *http.Request, msg string) {
	w.WriteHeader(http.StatusUnauthorized)
	ui.Render(w, r, pages.AdminLogin(msg, h.googleOAuthConfig != nil))
}
