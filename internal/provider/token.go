// File: internal/provider/token.go
package provider

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// sessionClaims are the claims carried by a database-backend session token.
type sessionClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

// tokenService signs and validates session tokens for the database backend.
// An expired token is what turns into a remote sign-out notification.
type tokenService struct {
	secret []byte
	ttl    time.Duration
}

var errTokenExpired = errors.New("session token expired")

func newTokenService(secret string, ttl time.Duration) *tokenService {
	return &tokenService{secret: []byte(secret), ttl: ttl}
}

func (s *tokenService) generate(userID uuid.UUID, email string) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.ttl)
	claims := &sessionClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "nujum_backend",
			Subject:   userID.String(),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("could not sign session token: %w", err)
	}
	return tokenString, expiresAt, nil
}

func (s *tokenService) validate(tokenString string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errTokenExpired
		}
		return nil, fmt.Errorf("invalid session token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid session token claims")
	}
	return claims, nil
}
