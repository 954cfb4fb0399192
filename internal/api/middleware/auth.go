package middleware

import (
	"context"
	"net/http"
	"strings"

	"stockadvisor/internal/domain/user"
	"stockadvisor/pkg/logger"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// userContextKey is the context key for authenticated user
const userContextKey contextKey = "authenticated_user"

// TokenValidator resolves a bearer token to its user.
// This allows mocking in tests
type TokenValidator interface {
	Authenticate(ctx context.Context, token string) (*user.User, error)
}

// AuthMiddleware requires a valid Authorization: Bearer token
type AuthMiddleware struct {
	authService TokenValidator
	log         *logger.Logger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authService TokenValidator, log *logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		log:         log.With("middleware", "auth"),
	}
}

// Handler rejects requests without a valid token with 401 and puts the
// authenticated user into the request context otherwise.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := bearerToken(r)
		if !ok {
			m.log.Debugw("No bearer token", "path", r.URL.Path)
			unauthorized(w)
			return
		}

		usr, err := m.authService.Authenticate(r.Context(), tokenString)
		if err != nil {
			m.log.Warnw("Invalid auth token",
				"error", err,
				"remote_addr", r.RemoteAddr,
			)
			unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, usr)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	WriteDetail(w, http.StatusUnauthorized, "Could not validate credentials")
}

// UserFromContext extracts authenticated user from context
func UserFromContext(ctx context.Context) *user.User {
	usr, ok := ctx.Value(userContextKey).(*user.User)
	if !ok {
		return nil
	}
	return usr
}

// WithUser stores usr in ctx the way Handler does.
func WithUser(ctx context.Context, usr *user.User) context.Context {
	return context.WithValue(ctx, userContextKey, usr)
}
