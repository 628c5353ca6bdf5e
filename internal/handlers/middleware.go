package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/SamEvrald/logbook-app/internal/app"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// Middleware guards protected routes: bearer token verification first, then
// an optional role check on the decoded claims.
type Middleware struct {
	auth *app.Auth
}

func NewMiddleware(auth *app.Auth) *Middleware {
	return &Middleware{auth: auth}
}

// Authenticate rejects requests without a well-formed bearer token (401) or
// with a token that fails signature/expiry/revocation checks (403). Valid
// claims are attached to the request context.
func (m *Middleware) Authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeMessage(w, http.StatusUnauthorized, "access denied, no token provided")
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeMessage(w, http.StatusUnauthorized, "access denied, invalid token format")
			return
		}

		claims, err := m.auth.ParseToken(token)
		if err != nil {
			logger.Debug.Printf("Token verification failed: %v", err)
			writeMessage(w, http.StatusForbidden, "invalid or expired token")
			return
		}

		revoked, err := m.auth.IsRevoked(r.Context(), claims.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		if revoked {
			writeMessage(w, http.StatusForbidden, "token has been revoked")
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// RequireRole allows the request through only when the authenticated claims
// carry the given role.
func (m *Middleware) RequireRole(role string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok || claims.Role == "" {
			writeMessage(w, http.StatusForbidden, "access denied, no role found")
			return
		}
		if claims.Role != role {
			writeMessage(w, http.StatusForbidden, "access denied, unauthorized role")
			return
		}
		next(w, r)
	}
}

func ClaimsFromContext(ctx context.Context) (*app.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*app.Claims)
	return claims, ok
}
