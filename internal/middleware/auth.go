package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type key string

const contextSubjectKey key = "subject"

// TokenValidator resolves a bearer token to its subject.
type TokenValidator interface {
	ValidateToken(tokenStr string) (string, error)
}

func SubjectFromContext(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(contextSubjectKey).(string)
	return sub, ok
}

// AuthMiddleware requires a bearer token accepted by validator.
// A nil validator disables the check.
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if validator == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				unauthorized(w, "missing or malformed token")
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			sub, err := validator.ValidateToken(tokenStr)
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), contextSubjectKey, sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
