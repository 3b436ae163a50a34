package util

import (
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	secret := "test-secret"
	token, err := GenerateJWT("student-1", "student@example.com", "student", secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := ValidateJWT(token, secret)
	if err != nil {
		t.Fatalf("ValidateJWT: %v", err)
	}
	if claims.Subject != "student-1" {
		t.Fatalf("expected subject student-1, got %q", claims.Subject)
	}
	if claims.Email != "student@example.com" {
		t.Fatalf("expected email claim to survive, got %q", claims.Email)
	}
	if claims.Role != "student" {
		t.Fatalf("expected role claim to survive, got %q", claims.Role)
	}
}

func TestValidateJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT("student-1", "student@example.com", "student", "right-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if _, err := ValidateJWT(token, "wrong-secret"); err == nil {
		t.Fatal("expected validation to fail with the wrong secret")
	}
}

func TestValidateJWTExpired(t *testing.T) {
	token, err := GenerateJWT("student-1", "student@example.com", "student", "test-secret", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if _, err := ValidateJWT(token, "test-secret"); err == nil {
		t.Fatal("expected validation to fail for an expired token")
	}
}

func TestValidateJWTGarbage(t *testing.T) {
	if _, err := ValidateJWT("not-a-token", "test-secret"); err == nil {
		t.Fatal("expected validation to fail for a malformed token")
	}
}
