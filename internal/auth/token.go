// Package auth inspects the bearer tokens issued by the IronDoc API. The
// client never holds the signing key, so tokens are decoded without
// signature verification and only used to decide whether a stored session
// is worth presenting.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId,omitempty"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	Role   string `json:"role,omitempty"`
}

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
	ErrOpaqueToken  = errors.New("token is not a JWT")
)

var parser = jwt.NewParser(jwt.WithoutClaimsValidation())

// Inspect decodes a JWT without verifying its signature.
func Inspect(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, ErrInvalidToken
	}
	if strings.Count(token, ".") != 2 {
		return Claims{}, ErrOpaqueToken
	}
	var claims Claims
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// ExpiresAt returns the exp claim, if the token carries one.
func ExpiresAt(token string) (time.Time, bool) {
	claims, err := Inspect(token)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Check reports whether token is usable at now. Opaque tokens are accepted
// as-is since only the server can judge them.
func Check(token string, now time.Time) error {
	claims, err := Inspect(token)
	if errors.Is(err, ErrOpaqueToken) {
		return nil
	}
	if err != nil {
		return err
	}
	if claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time) {
		return ErrExpiredToken
	}
	return nil
}
