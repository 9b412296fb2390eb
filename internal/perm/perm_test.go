package perm

import (
	"testing"

	"complaint-desk/internal/model"
)

func TestCanEditComplaint(t *testing.T) {
	c := model.Complaint{ID: "c1", UserEmail: "ana@example.com"}

	cases := []struct {
		name string
		user model.User
		want bool
	}{
		{"owner", model.User{Email: "ana@example.com"}, true},
		{"owner different case", model.User{Email: "Ana@Example.com"}, true},
		{"other user", model.User{Email: "ben@example.com"}, false},
		{"admin", model.User{Email: "admin@example.com", IsAdmin: true}, true},
		{"anonymous", model.User{}, false},
	}
	for _, tc := range cases {
		if got := CanEditComplaint(tc.user, c); got != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestAnonymousCannotEditOwnerlessComplaint(t *testing.T) {
	if CanEditComplaint(model.User{}, model.Complaint{ID: "c1"}) {
		t.Fatalf("empty email must not match an empty owner")
	}
}

func TestRoleRules(t *testing.T) {
	admin := model.User{Email: "admin@example.com", IsAdmin: true}
	ana := model.User{Email: "ana@example.com"}

	if !CanToggleStatus(admin) || CanToggleStatus(ana) {
		t.Fatalf("only admins toggle status")
	}
	if CanSubmit(admin) || !CanSubmit(ana) {
		t.Fatalf("only non-admins submit")
	}
	if ListScope(admin) != "" {
		t.Fatalf("admins list everything")
	}
	if ListScope(ana) != "ana@example.com" {
		t.Fatalf("users list their own complaints, got %q", ListScope(ana))
	}
}
