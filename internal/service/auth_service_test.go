package service

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	s := NewAuthService("test-secret")

	token, err := s.GenerateToken("Dana@Example.com", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	account, err := s.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if account != "dana@example.com" {
		t.Fatalf("expected normalized account, got %q", account)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := NewAuthService("secret-a").GenerateToken("dana@example.com", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := NewAuthService("secret-b").ValidateToken(token); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	s := NewAuthService("test-secret")

	token, err := s.GenerateToken("dana@example.com", -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := s.ValidateToken(token); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	s := NewAuthService("test-secret")

	if _, err := s.ValidateToken("not-a-token"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthorizer(t *testing.T) {
	a := NewAuthorizer("Admin@Example.com, ops@example.com ,")

	if !a.IsAdmin("admin@example.com") {
		t.Fatal("listed admin should be recognized")
	}
	if !a.IsAdmin(" Ops@Example.COM ") {
		t.Fatal("comparison must be case-insensitive and trimmed")
	}
	if a.IsAdmin("dana@example.com") {
		t.Fatal("unlisted account must not be admin")
	}
	if a.IsAdmin("") {
		t.Fatal("empty identity must not be admin")
	}
}

func TestAuthorizerEmptyList(t *testing.T) {
	a := NewAuthorizer("")

	if a.IsAdmin("anyone@example.com") {
		t.Fatal("empty admin list means nobody is admin")
	}
}
