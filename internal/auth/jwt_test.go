package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ipter/container-ocr-service/internal/models"
)

func protectedHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := GetClaimsFromContext(r.Context())
		require.NoError(t, err)
		w.Write([]byte(claims.Service))
	})
}

func TestGenerateAndValidate(t *testing.T) {
	a := NewAuthenticator(models.AuthConfig{JWTSecret: "s3cret", Issuer: "ipter"})
	require.True(t, a.Enabled())

	token, err := a.GenerateToken("backend", time.Minute)
	require.NoError(t, err)

	claims, err := a.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "backend", claims.Service)
	require.Equal(t, "ipter", claims.Issuer)
}

func TestValidateRejectsWrongSecretAndExpired(t *testing.T) {
	a := NewAuthenticator(models.AuthConfig{JWTSecret: "s3cret"})
	other := NewAuthenticator(models.AuthConfig{JWTSecret: "different"})

	token, err := other.GenerateToken("backend", time.Minute)
	require.NoError(t, err)
	_, err = a.ValidateToken(token)
	require.Error(t, err)

	expired, err := a.GenerateToken("backend", -time.Minute)
	require.NoError(t, err)
	_, err = a.ValidateToken(expired)
	require.Error(t, err)
}

func TestValidateChecksIssuer(t *testing.T) {
	issuer := NewAuthenticator(models.AuthConfig{JWTSecret: "s3cret", Issuer: "someone-else"})
	a := NewAuthenticator(models.AuthConfig{JWTSecret: "s3cret", Issuer: "ipter"})

	token, err := issuer.GenerateToken("backend", time.Minute)
	require.NoError(t, err)
	_, err = a.ValidateToken(token)
	require.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	a := NewAuthenticator(models.AuthConfig{JWTSecret: "s3cret"})
	handler := a.Middleware(protectedHandler(t))

	req := httptest.NewRequest(http.MethodPost, "/ocr/extract-text", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := a.GenerateToken("backend", time.Minute)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/ocr/extract-text", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "backend", rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/ocr/extract-text", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareSkipsHealthAndDisabled(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	a := NewAuthenticator(models.AuthConfig{JWTSecret: "s3cret"})
	rec := httptest.NewRecorder()
	a.Middleware(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	disabled := NewAuthenticator(models.AuthConfig{})
	require.False(t, disabled.Enabled())
	rec = httptest.NewRecorder()
	disabled.Middleware(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ocr/extract-text", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	_, err := disabled.GenerateToken("backend", time.Minute)
	require.Error(t, err)
}
