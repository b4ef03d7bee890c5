package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/majupersonalizados/briefing/internal/model"
	"github.com/majupersonalizados/briefing/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

const SessionCookieName = "admin_session"

var (
	ErrInvalidCredentials = errors.New("invalid password")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrNotAllowed         = errors.New("account is not allowed to access the dashboard")
	ErrInvalidSession     = errors.New("invalid session")
)

type AuthService struct {
	passwordHashes []string
	adminEmails    []string
	jwtSecret      string
	isProduction   bool
	sessionExpiry  time.Duration
	now            func() time.Time
	random         io.Reader
}

func NewAuthService(
	passwordHashes []string,
	adminEmails []string,
	jwtSecret string,
	isProduction bool,
	sessionExpiry time.Duration,
) *AuthService {
	return &AuthService{
		passwordHashes: passwordHashes,
		adminEmails:    adminEmails,
		jwtSecret:      jwtSecret,
		isProduction:   isProduction,
		sessionExpiry:  sessionExpiry,
		now:            time.Now,
		random:         rand.Reader,
	}
}

// LoginWithPassword accepts the password if it matches any configured hash.
func (s *AuthService) LoginWithPassword(password string) (*model.AdminSession, error) {
	if password == "" {
		return nil, ErrInvalidCredentials
	}

	for _, hash := range s.passwordHashes {
		if s.ComparePassword(password, hash) == nil {
			slog.Info("admin logged in", "method", model.LoginMethodPassword)
			return s.newSession("admin", model.LoginMethodPassword), nil
		}
	}

	return nil, ErrInvalidCredentials
}

// AuthenticateGoogle admits a Google-verified email found in the allowlist.
func (s *AuthService) AuthenticateGoogle(email string) (*model.AdminSession, error) {
	email = validation.NormalizeEmail(email)

	err := validation.ValidateEmail(email)
	if err != nil {
		return nil, ErrInvalidEmail
	}

	if !slices.Contains(s.adminEmails, email) {
		slog.Warn("google sign-in rejected", "email", email)
		return nil, ErrNotAllowed
	}

	slog.Info("admin logged in", "method", model.LoginMethodGoogle, "email", email)
	return s.newSession(email, model.LoginMethodGoogle), nil
}

func (s *AuthService) newSession(subject, method string) *model.AdminSession {
	return &model.AdminSession{
		Subject:   subject,
		Method:    method,
		ExpiresAt: s.now().Add(s.sessionExpiry),
	}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// GenerateToken returns 32 random bytes, hex encoded. It backs the OAuth
// state cookie.
func (s *AuthService) GenerateToken() (string, error) {
	bytes := make([]byte, 32)
	_, err := io.ReadFull(s.random, bytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func (s *AuthService) GenerateJWT(session *model.AdminSession) (string, error) {
	claims := jwt.MapClaims{
		"sub":    session.Subject,
		"method": session.Method,
		"exp":    session.ExpiresAt.Unix(),
		"iat":    s.now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func (s *AuthService) VerifyJWT(tokenString string) (*model.AdminSession, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidSession
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, ErrInvalidSession
	}
	method, _ := claims["method"].(string)

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidSession
	}

	return &model.AdminSession{
		Subject:   subject,
		Method:    method,
		ExpiresAt: exp.Time,
	}, nil
}

func (s *AuthService) SetJWTCookie(w http.ResponseWriter, token string, expiry time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Expires:  expiry,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AuthService) ClearJWTCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}
