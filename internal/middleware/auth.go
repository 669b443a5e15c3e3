package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mtlprog/panchayat/internal/domain"
)

type contextKey string

const (
	// ContextKeyViewer is the key for storing the viewer in request context.
	ContextKeyViewer contextKey = "viewer"
)

// TokenParser verifies a bearer token and returns the viewer it carries.
type TokenParser interface {
	Parse(token string) (domain.Viewer, error)
}

// AccountLookup resolves the current state of an account by id.
type AccountLookup interface {
	Lookup(id string) (domain.Viewer, bool)
}

// AuthMiddleware handles Bearer token authentication for dashboard routes.
type AuthMiddleware struct {
	tokens   TokenParser
	accounts AccountLookup
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(tokens TokenParser, accounts AccountLookup) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:   tokens,
		accounts: accounts,
	}
}

// Authenticate validates the Bearer token and adds the viewer to request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "missing authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			http.Error(w, "invalid authorization header format", http.StatusUnauthorized)
			return
		}

		token := strings.TrimSpace(parts[1])
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		viewer, err := m.tokens.Parse(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		// Tokens outlive account edits; the account file is the source of truth.
		if m.accounts != nil {
			current, ok := m.accounts.Lookup(viewer.ID)
			if !ok {
				http.Error(w, "account no longer exists", http.StatusUnauthorized)
				return
			}
			viewer = current
		}

		ctx := context.WithValue(r.Context(), ContextKeyViewer, viewer)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetViewerFromContext retrieves the authenticated viewer from request context.
func GetViewerFromContext(ctx context.Context) (domain.Viewer, error) {
	viewer, ok := ctx.Value(ContextKeyViewer).(domain.Viewer)
	if !ok || viewer.ID == "" {
		return domain.Viewer{}, domain.ErrUnauthenticated
	}
	return viewer, nil
}
