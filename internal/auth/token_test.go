package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestVerifyRoundTrip(t *testing.T) {
	verifier := NewVerifier("secret")
	token, err := verifier.Sign("u1")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := verifier.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "u1" {
		t.Fatalf("expected subject u1, got %q", claims.UserID)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewVerifier("secret-a").Sign("u1")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewVerifier("secret-b").Verify(token); err == nil {
		t.Fatalf("expected signature mismatch")
	}
}

func TestVerifyRejectsMissingSubject(t *testing.T) {
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{})
	token, err := raw.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewVerifier("secret").Verify(token); err == nil {
		t.Fatalf("expected missing subject rejected")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	if _, err := NewVerifier("secret").Verify("not-a-token"); err == nil {
		t.Fatalf("expected parse failure")
	}
}
