/*
Package auth provides JWT authentication for the vacation tracker API.

PURPOSE:
  Issues and verifies HS256 tokens whose claims carry the user's tenant
  binding, checks credentials against a pluggable UserStore, and exposes
  HTTP middleware enforcing the Bearer scheme.

TOKEN CLAIMS:
  uid       User id
  username  Login name
  tenantId  The tenant all data access is scoped to
  role      "admin" or "user"

DESIGN:
  The user store is constructed at startup and injected; there is no
  package-level state. See store.go for the in-memory implementation and
  store/sqlite for the persistent one.
*/
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Role separates administrative endpoints from regular ones.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User is the authenticated identity carried through a request.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	TenantID string `json:"tenantId"`
	Role     Role   `json:"role"`
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserExists         = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")
)

// =============================================================================
// SERVICE
// =============================================================================

type claims struct {
	UserID   string `json:"uid"`
	Username string `json:"username"`
	TenantID string `json:"tenantId"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Service issues and verifies tokens against an injected user store.
type Service struct {
	secret []byte
	ttl    time.Duration
	store  UserStore
}

func NewService(secret string, ttl time.Duration, store UserStore) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{secret: []byte(secret), ttl: ttl, store: store}
}

// Store exposes the injected user store (for admin endpoints).
func (s *Service) Store() UserStore { return s.store }

// Login checks credentials and returns a signed token plus the user.
func (s *Service) Login(ctx context.Context, username, password string) (string, *User, error) {
	user, err := s.store.Authenticate(ctx, username, password)
	if err != nil {
		return "", nil, err
	}
	token, err := s.IssueToken(*user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// IssueToken signs an HS256 token for the user with the configured TTL.
func (s *Service) IssueToken(user User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID:   user.ID,
		Username: user.Username,
		TenantID: user.TenantID,
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	return token.SignedString(s.secret)
}

// VerifyToken parses and validates a token, returning the embedded user.
func (s *Service) VerifyToken(tokenString string) (*User, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return &User{
		ID:       c.UserID,
		Username: c.Username,
		TenantID: c.TenantID,
		Role:     Role(c.Role),
	}, nil
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

type contextKey int

const userKey contextKey = 0

// UserFromContext returns the authenticated user stashed by Middleware.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userKey).(*User)
	return user, ok
}

// Middleware enforces "Authorization: Bearer <token>" and rejects missing
// or invalid tokens with a 401 JSON body.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			unauthorized(w, "No token provided")
			return
		}

		user, err := s.VerifyToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			unauthorized(w, "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
