package service

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"geoquiz/internal/model"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// AuthService mints and validates anonymous session tokens. There are no
// user accounts; the token only names the browser session (and a stable
// account ID for the durable profile).
type AuthService struct {
	jwtSecret []byte
}

// NewAuthService creates a new auth service.
func NewAuthService() *AuthService {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "super-secret-key-change-in-production"
	}
	return &AuthService{jwtSecret: []byte(secret)}
}

// OpenSession creates a fresh session and returns its signed token.
func (s *AuthService) OpenSession() (*model.SessionResponse, error) {
	sessionID := "s_" + uuid.New().String()[:8]

	claims := &model.SessionClaims{
		SessionID: sessionID,
		AccountID: uuid.New().String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.SessionResponse{
		Token:     tokenString,
		SessionID: sessionID,
	}, nil
}

// ValidateToken validates a session JWT and returns its claims.
func (s *AuthService) ValidateToken(tokenString string) (*model.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
