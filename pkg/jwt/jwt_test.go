package jwt

import (
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	tm := NewTokenManager("test-secret", 24)

	token, err := tm.Issue("alice")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if token == "" {
		t.Error("issued token is empty")
	}

	username, err := tm.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if username != "alice" {
		t.Errorf("Expected username alice, got %s", username)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	tm := NewTokenManager("secret-a", 24)
	other := NewTokenManager("secret-b", 24)

	token, err := tm.Issue("alice")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := other.Verify(token); err == nil {
		t.Error("Expected verification to fail with wrong secret")
	}
}

func TestVerify_Malformed(t *testing.T) {
	tm := NewTokenManager("test-secret", 24)

	for _, tok := range []string{"", "garbage", "a.b.c", "Bearer xyz"} {
		if _, err := tm.Verify(tok); err == nil {
			t.Errorf("Expected error for malformed token %q", tok)
		}
	}
}

// TestVerify_ExpiryWindow checks the 24h validity boundary: a token issued at
// T is still accepted at T+23h59m and rejected at T+24h01m.
func TestVerify_ExpiryWindow(t *testing.T) {
	issuedAt := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	tm := NewTokenManager("test-secret", 24).WithClock(func() time.Time { return issuedAt })
	token, err := tm.Issue("alice")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	tm.WithClock(func() time.Time { return issuedAt.Add(23*time.Hour + 59*time.Minute) })
	if _, err := tm.Verify(token); err != nil {
		t.Errorf("Token should still be valid at T+23h59m: %v", err)
	}

	tm.WithClock(func() time.Time { return issuedAt.Add(24*time.Hour + 1*time.Minute) })
	if _, err := tm.Verify(token); err == nil {
		t.Error("Token should be rejected at T+24h01m")
	}
}
