package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ipter/container-ocr-service/internal/models"
)

type contextKey string

const claimsKey contextKey = "claims"

// Claims identifies the backend calling the service
type Claims struct {
	Service string `json:"service"`
	jwt.RegisteredClaims
}

// Authenticator validates HS256 bearer tokens issued to calling backends.
// A zero secret disables authentication.
type Authenticator struct {
	secret []byte
	issuer string
	public map[string]bool
}

// NewAuthenticator creates an authenticator from the auth config
func NewAuthenticator(cfg models.AuthConfig) *Authenticator {
	return &Authenticator{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
		public: map[string]bool{"/": true, "/health": true},
	}
}

// Enabled reports whether requests must carry a token
func (a *Authenticator) Enabled() bool {
	return len(a.secret) > 0
}

// GenerateToken signs a token for a calling service
func (a *Authenticator) GenerateToken(service string, ttl time.Duration) (string, error) {
	if !a.Enabled() {
		return "", errors.New("authentication is disabled")
	}
	now := time.Now()
	claims := Claims{
		Service: service,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   service,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// ValidateToken parses and verifies a signed token
func (a *Authenticator) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return claims, nil
}

// Middleware rejects requests without a valid bearer token. Health
// endpoints stay public.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() || a.public[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			unauthorized(w, "missing bearer token")
			return
		}

		claims, err := a.ValidateToken(tokenString)
		if err != nil {
			unauthorized(w, err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetClaimsFromContext returns the claims stored by Middleware
func GetClaimsFromContext(ctx context.Context) (*Claims, error) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	if !ok || claims == nil {
		return nil, errors.New("no claims in context")
	}
	return claims, nil
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(models.ErrorResponse{
		Error:     "unauthorized",
		Detail:    detail,
		Timestamp: time.Now(),
	})
}
