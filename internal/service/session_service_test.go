package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"copilot-accounts/internal/domain"
)

func TestSessionServiceIssueParse(t *testing.T) {
	svc := NewSessionService("secret")
	account := domain.Account{
		ID:        "u1",
		Email:     "user@example.com",
		CreatedAt: time.Now().UTC(),
	}

	token, err := svc.Issue(account)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}

	claims, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.AccountID != "u1" || claims.Email != "user@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if svc.TTL() != 24*time.Hour {
		t.Fatalf("expected 24h ttl, got %v", svc.TTL())
	}
}

func TestSessionServiceExpired(t *testing.T) {
	svc := NewSessionService("secret")
	now := time.Now().UTC().Add(-48 * time.Hour)
	claims := SessionClaims{
		AccountID: "u1",
		Email:     "user@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "copilot-accounts",
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := svc.Parse(signed); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestSessionServiceRejectsBadTokens(t *testing.T) {
	svc := NewSessionService("secret")

	if _, err := svc.Parse(""); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid for empty token, got %v", err)
	}
	if _, err := svc.Parse("not-a-jwt"); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid for garbage, got %v", err)
	}

	other := NewSessionService("other-secret")
	token, err := other.Issue(domain.Account{ID: "u1", Email: "user@example.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Parse(token); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid for wrong secret, got %v", err)
	}

	// Tokens sin claims propias, aunque estén bien firmados, se rechazan.
	bare := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "copilot-accounts",
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := bare.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.Parse(signed); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid for missing uid, got %v", err)
	}
}
