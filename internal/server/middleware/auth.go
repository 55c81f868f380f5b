// Package middleware provides HTTP middleware for authentication.
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

const recruiterKey ContextKey = "recruiter"

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (RecruiterGetter, error)
}

// RecruiterGetter exposes the recruiter a token was issued to.
type RecruiterGetter interface {
	GetRecruiter() string
}

// AuthMiddleware rejects requests without a valid bearer token and stores the
// token's recruiter in the request context.
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w, "missing bearer token")
				return
			}

			claims, err := validator.ValidateToken(tokenString)
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), recruiterKey, claims.GetRecruiter())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken parses "Bearer <token>", case-insensitive on the scheme.
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized", "message": message})
}

// GetRecruiter extracts the authenticated recruiter from the request context.
func GetRecruiter(r *http.Request) (string, error) {
	recruiter, ok := r.Context().Value(recruiterKey).(string)
	if !ok || recruiter == "" {
		return "", fmt.Errorf("recruiter not found in request context")
	}
	return recruiter, nil
}

// RecruiterKey returns the context key for the recruiter (for testing purposes).
func RecruiterKey() ContextKey {
	return recruiterKey
}
