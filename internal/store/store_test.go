package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"complaint-desk/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "desk.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestComplaints_CreateListNewestFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)
	base := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	alice := model.User{Email: "alice@example.com", Name: "Alice"}
	bob := model.User{Email: "bob@example.com"}
	first, err := s.CreateComplaint(ctx, alice, "Street light is out on 5th")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := s.CreateComplaint(ctx, bob, "Garbage was not collected")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if second.UserName != "bob" {
		t.Fatalf("expected name fallback to email local part, got %q", second.UserName)
	}

	all, err := s.ListComplaints(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].ID != second.ID || all[1].ID != first.ID {
		t.Fatalf("expected newest first, got %+v", all)
	}
	mine, err := s.ListComplaints(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("list own: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != first.ID {
		t.Fatalf("expected only alice's complaint, got %+v", mine)
	}
	if !mine[0].UpdatedAt.Equal(mine[0].CreatedAt) {
		t.Fatalf("expected updated_at == created_at on a fresh row")
	}
}

func TestComplaints_SetResolvedRecordsResolver(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)
	c, err := s.CreateComplaint(ctx, model.User{Email: "u@example.com"}, "Broken window in hall B")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.SetResolved(ctx, c.ID, true, "admin@example.com"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	got, err := s.GetComplaint(ctx, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Resolved || got.ResolvedBy == nil || *got.ResolvedBy != "admin@example.com" || got.StatusUpdatedAt == nil {
		t.Fatalf("unexpected resolved row: %+v", got)
	}

	// Re-applying the same status is accepted.
	if err := s.SetResolved(ctx, c.ID, true, "admin@example.com"); err != nil {
		t.Fatalf("resolve again: %v", err)
	}

	if err := s.SetResolved(ctx, c.ID, false, "admin@example.com"); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, _ = s.GetComplaint(ctx, c.ID)
	if got.Resolved || got.ResolvedBy != nil {
		t.Fatalf("expected reopened row without resolver, got %+v", got)
	}

	if err := s.SetResolved(ctx, "missing", true, "x"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestComplaints_UpdateAndDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)
	c, err := s.CreateComplaint(ctx, model.User{Email: "u@example.com"}, "Noise from the construction site")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.UpdateComplaintText(ctx, c.ID, "Noise from the site starts at 5am"); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := s.GetComplaint(ctx, c.ID)
	if got.Text != "Noise from the site starts at 5am" {
		t.Fatalf("unexpected text %q", got.Text)
	}
	if err := s.UpdateComplaintText(ctx, "missing", "whatever text here"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := s.DeleteComplaint(ctx, c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteComplaint(ctx, c.ID); !IsNotFound(err) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestUsers_CreateAuthenticate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)

	u, err := s.CreateUser(ctx, " Admin@Example.com ", "", "s3cret", true)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.Email != "admin@example.com" || u.Name != "admin" || !u.IsAdmin {
		t.Fatalf("unexpected user: %+v", u)
	}
	if _, err := s.CreateUser(ctx, "admin@example.com", "Other", "pw", false); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	got, err := s.Authenticate(ctx, "ADMIN@example.com", "s3cret")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if !got.IsAdmin {
		t.Fatalf("expected admin flag to round-trip")
	}
	if _, err := s.Authenticate(ctx, "admin@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := s.Authenticate(ctx, "nobody@example.com", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestPassword_HashVerify(t *testing.T) {
	t.Parallel()

	h, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifyPassword("hunter2", h) {
		t.Fatalf("expected password to verify")
	}
	if VerifyPassword("hunter3", h) {
		t.Fatalf("expected wrong password to fail")
	}
	if VerifyPassword("hunter2", "$bcrypt$whatever") {
		t.Fatalf("expected foreign hash format to fail")
	}
}
