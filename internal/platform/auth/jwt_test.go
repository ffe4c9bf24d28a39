package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestManager_SignAndParse(t *testing.T) {
	m := NewManager("secret", time.Hour)
	now := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	m.Now = func() time.Time { return now }

	tok, err := m.Sign("s1")
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}

	claims, err := m.Parse(tok)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if claims.SessionID != "s1" || !claims.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestManager_ParseExpired(t *testing.T) {
	m := NewManager("secret", time.Second)
	now := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	m.Now = func() time.Time { return now }
	tok, err := m.Sign("s1")
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}

	m.Now = func() time.Time { return now.Add(2 * time.Second) }
	_, err = m.Parse(tok)
	if !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestManager_ParseRejectsTampering(t *testing.T) {
	m := NewManager("secret", time.Hour)
	tok, err := m.Sign("s1")
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}

	other := NewManager("other-secret", time.Hour)
	if _, err := other.Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}

	parts := strings.Split(tok, ".")
	if _, err := m.Parse(parts[0] + "." + parts[1] + ".AAAA"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for bad signature, got %v", err)
	}
	if _, err := m.Parse("garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestManager_SignRequiresSessionID(t *testing.T) {
	if _, err := NewManager("secret", time.Hour).Sign(""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
