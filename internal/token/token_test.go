package token

import (
	"errors"
	"testing"
	"time"

	"github.com/kuberx/portfolio-ledger/internal/apperrors"
)

func newAuthority(t *testing.T, keys ...string) *Authority {
	t.Helper()
	a, err := NewAuthority(keys, time.Hour)
	if err != nil {
		t.Fatalf("NewAuthority() returned unexpected error: %v", err)
	}
	return a
}

func mustKey(t *testing.T) string {
	t.Helper()
	k, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() returned unexpected error: %v", err)
	}
	return k
}

// TestAuthority tests the token round trip and rejection paths.
//
// WHY: The ledger trusts the user ID in the token completely; a token
// signed with an unknown key or altered in transit must never verify.
func TestAuthority(t *testing.T) {
	key := mustKey(t)

	t.Run("issues and verifies", func(t *testing.T) {
		a := newAuthority(t, key)

		tok, err := a.Issue("user-1")
		if err != nil {
			t.Fatalf("Issue() returned unexpected error: %v", err)
		}

		userID, err := a.Verify(tok)
		if err != nil {
			t.Fatalf("Verify() returned unexpected error: %v", err)
		}
		if userID != "user-1" {
			t.Errorf("Expected user-1, got %s", userID)
		}
	})

	t.Run("accepts tokens from a rotated key", func(t *testing.T) {
		oldAuthority := newAuthority(t, key)
		tok, _ := oldAuthority.Issue("user-2") //nolint:errcheck

		rotated := newAuthority(t, mustKey(t), key)
		if _, err := rotated.Verify(tok); err != nil {
			t.Errorf("Expected rotated authority to accept old token, got %v", err)
		}
	})

	t.Run("rejects unknown key", func(t *testing.T) {
		tok, _ := newAuthority(t, mustKey(t)).Issue("user-3") //nolint:errcheck

		if _, err := newAuthority(t, key).Verify(tok); !errors.Is(err, apperrors.ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("rejects tampered token", func(t *testing.T) {
		a := newAuthority(t, key)
		tok, _ := a.Issue("user-4") //nolint:errcheck
		tampered := tok[:len(tok)-4] + "AAAA"

		if _, err := a.Verify(tampered); !errors.Is(err, apperrors.ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("rejects empty user", func(t *testing.T) {
		if _, err := newAuthority(t, key).Issue(" "); !errors.Is(err, apperrors.ErrInvalidUserID) {
			t.Errorf("Expected ErrInvalidUserID, got %v", err)
		}
	})

	t.Run("requires a key", func(t *testing.T) {
		if _, err := NewAuthority(nil, time.Hour); err == nil {
			t.Error("Expected error without keys")
		}
		if _, err := NewAuthority([]string{"not-base64!"}, time.Hour); err == nil {
			t.Error("Expected error for malformed key")
		}
	})
}
