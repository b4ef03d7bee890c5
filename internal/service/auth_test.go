package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/majupersonalizados/briefing/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService(t *testing.T, passwords ...string) *AuthService {
	t.Helper()
	var hashes []string
	for _, p := range passwords {
		h, err := bcrypt.GenerateFromPassword([]byte(p), bcrypt.MinCost)
		require.NoError(t, err)
		hashes = append(hashes, string(h))
	}
	return NewAuthService(hashes, []string{"staff@majupersonalizados.com.br"}, "test-secret", false, 8*time.Hour)
}

func TestAuthService_LoginWithPassword(t *testing.T) {
	s := newTestAuthService(t, "primeira-senha", "segunda-senha")

	for _, password := range []string{"primeira-senha", "segunda-senha"} {
		session, err := s.LoginWithPassword(password)
		require.NoError(t, err)
		assert.Equal(t, "admin", session.Subject)
		assert.Equal(t, model.LoginMethodPassword, session.Method)
	}

	_, err := s.LoginWithPassword("errada")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.LoginWithPassword("")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_LoginWithoutHashes(t *testing.T) {
	s := newTestAuthService(t)

	_, err := s.LoginWithPassword("maju")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_AuthenticateGoogle(t *testing.T) {
	s := newTestAuthService(t)

	session, err := s.AuthenticateGoogle(" Staff@MajuPersonalizados.com.br ")
	require.NoError(t, err)
	assert.Equal(t, "staff@majupersonalizados.com.br", session.Subject)
	assert.Equal(t, model.LoginMethodGoogle, session.Method)

	_, err = s.AuthenticateGoogle("intruso@example.com")
	assert.ErrorIs(t, err, ErrNotAllowed)

	_, err = s.AuthenticateGoogle("not-an-email")
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestAuthService_JWTRoundTrip(t *testing.T) {
	s := newTestAuthService(t, "senha")

	session, err := s.LoginWithPassword("senha")
	require.NoError(t, err)

	token, err := s.GenerateJWT(session)
	require.NoError(t, err)

	got, err := s.VerifyJWT(token)
	require.NoError(t, err)
	assert.Equal(t, session.Subject, got.Subject)
	assert.Equal(t, session.Method, got.Method)
	assert.WithinDuration(t, session.ExpiresAt, got.ExpiresAt, time.Second)
}

func TestAuthService_VerifyJWTRejects(t *testing.T) {
	s := newTestAuthService(t, "senha")
	session, err := s.LoginWithPassword("senha")
	require.NoError(t, err)
	token, err := s.GenerateJWT(session)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		s.now = func() time.Time { return time.Now().Add(9 * time.Hour) }
		defer func() { s.now = time.Now }()

		_, err := s.VerifyJWT(token)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("other secret", func(t *testing.T) {
		other := NewAuthService(nil, nil, "another-secret", false, time.Hour)
		_, err := other.VerifyJWT(token)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := s.VerifyJWT("not.a.jwt")
		assert.ErrorIs(t, err, ErrInvalidSession)
	})
}

func TestAuthService_Cookies(t *testing.T) {
	s := newTestAuthService(t)

	rec := httptest.NewRecorder()
	s.SetJWTCookie(rec, "token-value", time.Now().Add(time.Hour))
	s.ClearJWTCookie(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Equal(t, "token-value", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	assert.Equal(t, "", cookies[1].Value)
	assert.Equal(t, -1, cookies[1].MaxAge)
}

func TestAuthService_HashPassword(t *testing.T) {
	s := newTestAuthService(t)

	hash, err := s.HashPassword("nova-senha")
	require.NoError(t, err)
	assert.NoError(t, s.ComparePassword("nova-senha", hash))
	assert.Error(t, s.ComparePassword("outra", hash))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy unavailable") }

func TestAuthService_GenerateToken(t *testing.T) {
	s := newTestAuthService(t)

	a, err := s.GenerateToken()
	require.NoError(t, err)
	b, err := s.GenerateToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)

	s.random = failingReader{}
	_, err = s.GenerateToken()
	assert.Error(t, err)
}
