// Package jwt verifies access tokens issued by the hosted auth platform.
package jwt

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

type InvalidTokenError struct {
	err error
}

func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("invalid token: %v", e.err)
}

func (e *InvalidTokenError) Unwrap() error {
	return e.err
}

var errNoSubject = errors.New("token has no subject")

type Manager struct {
	secret []byte
}

func NewManager(secret string) *Manager {
	return &Manager{secret: []byte(secret)}
}

// GetIDFromToken validates an HS256 token and returns its subject.
func (m *Manager) GetIDFromToken(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	if _, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}); err != nil {
		return "", &InvalidTokenError{err: err}
	}

	if claims.Subject == "" {
		return "", &InvalidTokenError{err: errNoSubject}
	}

	return claims.Subject, nil
}

// CreateToken signs a token for id. The service never issues tokens to
// clients, it is used by tooling and tests.
func (m *Manager) CreateToken(id string, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = id

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return token, nil
}
