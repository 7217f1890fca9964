package security

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndParseToken(t *testing.T) {
	token, err := IssueToken("secret", 42, 12*time.Hour, time.Now().UTC())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	userID, errParse := ParseToken("secret", token)
	if errParse != nil {
		t.Fatalf("parse token: %v", errParse)
	}
	if userID != 42 {
		t.Fatalf("expected user id 42, got %d", userID)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := IssueToken("secret", 42, 12*time.Hour, time.Now().UTC())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, errParse := ParseToken("other-secret", token); !errors.Is(errParse, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", errParse)
	}
}

func TestParseToken_Expired(t *testing.T) {
	issued := time.Now().UTC().Add(-24 * time.Hour)
	token, err := IssueToken("secret", 42, 12*time.Hour, issued)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, errParse := ParseToken("secret", token); !errors.Is(errParse, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", errParse)
	}
}

func TestParseToken_Malformed(t *testing.T) {
	if _, errParse := ParseToken("secret", "not-a-token"); !errors.Is(errParse, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", errParse)
	}
}
