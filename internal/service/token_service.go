package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService issues and checks the HS256 bearer tokens that guard the
// trigger surface.
type TokenService interface {
	GenerateToken(subject string) (string, error)
	ValidateToken(tokenStr string) (string, error)
}

type jwtService struct {
	secret     string
	expiryTime time.Duration
	now        func() time.Time
}

func NewJWTService(secret string, expiry time.Duration) TokenService {
	return &jwtService{secret: secret, expiryTime: expiry, now: time.Now}
}

func (s *jwtService) GenerateToken(subject string) (string, error) {
	if subject == "" {
		return "", errors.New("token subject must not be empty")
	}
	now := s.now()
	claims := jwt.MapClaims{
		"sub": subject,
		"exp": now.Add(s.expiryTime).Unix(),
		"iat": now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// ValidateToken returns the subject of a valid, unexpired token.
func (s *jwtService) ValidateToken(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		return []byte(s.secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", jwt.ErrTokenMalformed
	}
	return sub, nil
}
