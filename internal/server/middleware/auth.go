// Package middleware provides HTTP middleware for authentication.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/andrei/membership-portal/internal/workflow"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// identityKey is the context key for storing the authenticated caller.
const identityKey ContextKey = "identity"

// TokenValidator is an interface for validating JWT tokens.
// This allows the middleware to work with any JWT service implementation.
type TokenValidator interface {
	ValidateToken(tokenString string) (IdentityProvider, error)
}

// IdentityProvider is an interface for extracting the caller identity from
// token claims.
type IdentityProvider interface {
	Identity() workflow.Identity
}

// AuthMiddleware creates middleware that validates JWT bearer tokens and adds
// the caller identity to the request context. Role and ownership enforcement
// stays in the domain layer; this only authenticates.
func AuthMiddleware(jwtService TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			// Handle case-insensitive "Bearer" prefix
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			tokenString := strings.TrimSpace(parts[1])
			if tokenString == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := jwtService.ValidateToken(tokenString)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, claims.Identity())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity extracts the authenticated caller from the request context.
func GetIdentity(r *http.Request) (workflow.Identity, error) {
	id, ok := r.Context().Value(identityKey).(workflow.Identity)
	if !ok {
		return workflow.Identity{}, fmt.Errorf("caller identity not found in request context")
	}
	return id, nil
}

// WithIdentity returns a copy of ctx carrying the caller identity. Test
// helper.
func WithIdentity(ctx context.Context, id workflow.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}
