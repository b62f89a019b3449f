package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("s3cret", time.Hour)

	tok, err := svc.GenerateToken("ops")
	require.NoError(t, err)

	sub, err := svc.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "ops", sub)

	_, err = NewJWTService("other", time.Hour).ValidateToken(tok)
	assert.Error(t, err)

	_, err = svc.GenerateToken("")
	assert.Error(t, err)
}

func TestJWTService_Expired(t *testing.T) {
	svc := &jwtService{
		secret:     "s3cret",
		expiryTime: time.Minute,
		now:        func() time.Time { return time.Now().Add(-time.Hour) },
	}
	tok, err := svc.GenerateToken("ops")
	require.NoError(t, err)

	_, err = svc.ValidateToken(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTService_RejectsOtherAlgorithms(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "ops",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = NewJWTService("s3cret", time.Hour).ValidateToken(tok)
	assert.Error(t, err)
}
