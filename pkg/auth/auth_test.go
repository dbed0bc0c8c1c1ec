package auth_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/shashiranjanraj/kirana/pkg/apperr"
	"github.com/shashiranjanraj/kirana/pkg/auth"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := auth.GenerateToken("64f1c0ffee0ddba11ca7e5e1", "admin")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "64f1c0ffee0ddba11ca7e5e1" {
		t.Errorf("user id = %q", claims.UserID)
	}
	if claims.Role != "admin" {
		t.Errorf("role = %q", claims.Role)
	}
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	token, err := auth.GenerateToken("64f1c0ffee0ddba11ca7e5e1", "user")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// Flip a character in the signature segment.
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", token)
	}
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = auth.ValidateToken(tampered)
	if !errors.Is(err, apperr.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	for _, bad := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := auth.ValidateToken(bad); !errors.Is(err, apperr.ErrInvalidToken) {
			t.Errorf("ValidateToken(%q): expected ErrInvalidToken, got %v", bad, err)
		}
	}
}

func TestPasswordHashAndCheck(t *testing.T) {
	digest, err := auth.HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if digest == "hunter22" {
		t.Fatal("digest equals plaintext")
	}

	ok, err := auth.CheckPassword(digest, "hunter22")
	if err != nil || !ok {
		t.Errorf("expected match, got ok=%v err=%v", ok, err)
	}

	ok, err = auth.CheckPassword(digest, "wrong")
	if err != nil {
		t.Errorf("mismatch should not be an error: %v", err)
	}
	if ok {
		t.Error("wrong password accepted")
	}
}

func TestCheckPasswordMalformedDigest(t *testing.T) {
	_, err := auth.CheckPassword("not-a-bcrypt-digest", "anything")
	if !errors.Is(err, apperr.ErrCodec) {
		t.Errorf("expected ErrCodec, got %v", err)
	}
}
