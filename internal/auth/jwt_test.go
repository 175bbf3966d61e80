package auth

import (
	"testing"
	"time"

	"github.com/kalissr/voting-system/internal/model"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	token, err := NewSessionToken("secret", "issuer", time.Minute, "user-1", model.RoleUser)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	claims, err := ParseToken("secret", "issuer", token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != model.RoleUser {
		t.Fatalf("unexpected claims")
	}
	if claims.ID == "" {
		t.Fatalf("expected jti claim")
	}
}

func TestSessionTokenJTIUnique(t *testing.T) {
	a, err := NewSessionToken("secret", "issuer", time.Minute, "user-1", model.RoleUser)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	b, err := NewSessionToken("secret", "issuer", time.Minute, "user-1", model.RoleUser)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if a == b {
		t.Fatalf("expected tokens issued together to differ")
	}
}

func TestSessionTokenExpired(t *testing.T) {
	token, err := NewSessionToken("secret", "issuer", -time.Minute, "user-1", model.RoleUser)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("secret", "issuer", token); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestSessionTokenTampered(t *testing.T) {
	token, err := NewSessionToken("secret", "issuer", time.Minute, "user-1", model.RoleAdmin)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	// Flip the first byte of each segment: header, payload, signature.
	offsets := []int{0}
	for i, b := range []byte(token) {
		if b == '.' {
			offsets = append(offsets, i+1)
		}
	}
	for _, i := range offsets {
		altered := token[:i] + flip(token[i]) + token[i+1:]
		if _, err := ParseToken("secret", "issuer", altered); err == nil {
			t.Fatalf("expected tampered token at byte %d to fail", i)
		}
	}
}

func TestSessionTokenWrongKeyOrIssuer(t *testing.T) {
	token, err := NewSessionToken("secret", "issuer", time.Minute, "user-1", model.RoleUser)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("other-secret", "issuer", token); err == nil {
		t.Fatalf("expected wrong key to fail")
	}
	if _, err := ParseToken("secret", "other-issuer", token); err == nil {
		t.Fatalf("expected wrong issuer to fail")
	}
	if _, err := ParseToken("secret", "issuer", "not-a-token"); err == nil {
		t.Fatalf("expected malformed token to fail")
	}
}

func flip(b byte) string {
	if b == 'A' {
		return "B"
	}
	return "A"
}
