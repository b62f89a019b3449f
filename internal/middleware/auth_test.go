package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samims/indexer/internal/service"
)

const testSecret = "s3cret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAuthMiddleware(t *testing.T) {
	valid := signToken(t, testSecret, jwt.MapClaims{
		"sub": "ops",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	expired := signToken(t, testSecret, jwt.MapClaims{
		"sub": "ops",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	wrongKey := signToken(t, "other", jwt.MapClaims{"sub": "ops"})
	noSubject := signToken(t, testSecret, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	jwtSvc := service.NewJWTService(testSecret, time.Hour)

	tests := []struct {
		name       string
		validator  TokenValidator
		header     string
		wantStatus int
	}{
		{"disabled without validator", nil, "", http.StatusOK},
		{"valid token", jwtSvc, "Bearer " + valid, http.StatusOK},
		{"missing header", jwtSvc, "", http.StatusUnauthorized},
		{"malformed header", jwtSvc, "Token " + valid, http.StatusUnauthorized},
		{"expired token", jwtSvc, "Bearer " + expired, http.StatusUnauthorized},
		{"wrong key", jwtSvc, "Bearer " + wrongKey, http.StatusUnauthorized},
		{"no subject", jwtSvc, "Bearer " + noSubject, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotSubject string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotSubject, _ = SubjectFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/indexing", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			AuthMiddleware(tt.validator)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.validator != nil && tt.wantStatus == http.StatusOK {
				assert.Equal(t, "ops", gotSubject)
			}
		})
	}
}
