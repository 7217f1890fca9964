package security

import (
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "hunter2" {
		t.Fatalf("hash must not equal plaintext")
	}
	if !CheckPassword(hash, "hunter2") {
		t.Fatalf("expected matching password to verify")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestGenerateAndValidateTOTP(t *testing.T) {
	secret, uri, err := GenerateTOTPSecret("user@example.com")
	if err != nil {
		t.Fatalf("generate totp secret: %v", err)
	}
	if secret == "" || uri == "" {
		t.Fatalf("expected non-empty secret and uri")
	}

	code, errCode := totp.GenerateCode(secret, time.Now())
	if errCode != nil {
		t.Fatalf("generate code: %v", errCode)
	}
	if !ValidateTOTP(secret, code) {
		t.Fatalf("expected current code to validate")
	}
	if ValidateTOTP(secret, "000000") {
		t.Fatalf("expected bogus code to fail")
	}
	if ValidateTOTP("", code) {
		t.Fatalf("expected empty secret to fail")
	}
}
