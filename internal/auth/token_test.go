package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func issue(t *testing.T, claims Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-secret"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return signed
}

func TestInspectReadsClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := issue(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u-1", ExpiresAt: jwt.NewNumericDate(exp)},
		Email:            "avery@x.com",
		Role:             "editor",
	})

	claims, err := Inspect(token)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if claims.Subject != "u-1" || claims.Email != "avery@x.com" || claims.Role != "editor" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	got, ok := ExpiresAt(token)
	if !ok || !got.Equal(exp) {
		t.Fatalf("ExpiresAt() = %v, %v; want %v", got, ok, exp)
	}
}

func TestCheck(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name  string
		token string
		want  error
	}{
		{
			name:  "valid jwt",
			token: issue(t, Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}}),
		},
		{
			name:  "expired jwt",
			token: issue(t, Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute))}}),
			want:  ErrExpiredToken,
		},
		{
			name:  "jwt without exp",
			token: issue(t, Claims{Email: "a@x.com"}),
		},
		{name: "opaque token", token: "3f9c0a7e41"},
		{name: "empty token", token: "", want: ErrInvalidToken},
		{name: "garbage jwt", token: "aaa.bbb.ccc", want: ErrInvalidToken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := Check(tc.token, now); !errors.Is(err, tc.want) {
				t.Fatalf("Check() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestExpiresAtOpaque(t *testing.T) {
	if _, ok := ExpiresAt("opaque"); ok {
		t.Fatal("expected no expiry for opaque token")
	}
}
