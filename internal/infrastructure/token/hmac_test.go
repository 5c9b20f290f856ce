package token

import (
	"errors"
	"testing"
	"time"
)

func TestSigner_SignAndVerify(t *testing.T) {
	signer := NewSigner("test-secret")

	tok := signer.Sign("assessment-123.pdf", time.Hour)

	key, err := signer.Verify(tok)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if key != "assessment-123.pdf" {
		t.Errorf("Verify() key = %v, want assessment-123.pdf", key)
	}
}

func TestSigner_RejectsTamperedToken(t *testing.T) {
	signer := NewSigner("test-secret")
	tok := signer.Sign("report.pdf", time.Hour)

	tampered := tok[:len(tok)-2] + "xx"
	if _, err := signer.Verify(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
	}
}

func TestSigner_RejectsWrongSecret(t *testing.T) {
	tok := NewSigner("secret-a").Sign("report.pdf", time.Hour)

	if _, err := NewSigner("secret-b").Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
	}
}

func TestSigner_RejectsExpiredToken(t *testing.T) {
	signer := NewSigner("test-secret")
	tok := signer.Sign("report.pdf", -time.Minute)

	if _, err := signer.Verify(tok); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Verify() error = %v, want ErrTokenExpired", err)
	}
}

func TestSigner_RejectsGarbage(t *testing.T) {
	signer := NewSigner("test-secret")

	for _, tok := range []string{"", "no-dot", "a.b.c.d", "!!!.???"} {
		if _, err := signer.Verify(tok); err == nil {
			t.Errorf("Verify(%q) should fail", tok)
		}
	}
}
