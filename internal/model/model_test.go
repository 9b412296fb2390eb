package model

import (
	"errors"
	"testing"
)

func TestStatusToggle(t *testing.T) {
	t.Parallel()

	if got := StatusPending.Toggle(); got != StatusResolved {
		t.Fatalf("pending toggle: got %q", got)
	}
	if got := StatusResolved.Toggle(); got != StatusPending {
		t.Fatalf("resolved toggle: got %q", got)
	}
	for _, s := range []Status{StatusPending, StatusResolved} {
		if s.Toggle().Toggle() != s {
			t.Fatalf("double toggle of %q did not round-trip", s)
		}
	}
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	if s, err := ParseStatus(" Resolved "); err != nil || s != StatusResolved {
		t.Fatalf("expected resolved, got %q err=%v", s, err)
	}
	if _, err := ParseStatus("done"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestValidateComplaintText(t *testing.T) {
	t.Parallel()

	if _, err := ValidateComplaintText("   "); !errors.Is(err, ErrComplaintEmpty) {
		t.Fatalf("expected ErrComplaintEmpty, got %v", err)
	}
	if _, err := ValidateComplaintText("  too short "); !errors.Is(err, ErrComplaintTooShort) {
		t.Fatalf("expected ErrComplaintTooShort, got %v", err)
	}
	got, err := ValidateComplaintText("  the lift is broken again  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "the lift is broken again" {
		t.Fatalf("expected trimmed text, got %q", got)
	}
}

func TestUserDisplayName(t *testing.T) {
	t.Parallel()

	if got := (User{Email: "ana@example.com"}).DisplayName(); got != "ana" {
		t.Fatalf("expected local part, got %q", got)
	}
	if got := (User{Email: "ana@example.com", Name: "Ana"}).DisplayName(); got != "Ana" {
		t.Fatalf("expected name, got %q", got)
	}
}
