// Package perm holds the role rules shared by the backend and the dashboard.
package perm

import (
	"strings"

	"complaint-desk/internal/model"
)

// CanEditComplaint reports whether u may edit or delete c.
//
// Rules:
// - Admins can edit any complaint.
// - Everyone else can edit only complaints they filed (emails compare
//   case-insensitively).
func CanEditComplaint(u model.User, c model.Complaint) bool {
	if u.IsAdmin {
		return true
	}
	email := strings.TrimSpace(u.Email)
	if email == "" {
		return false
	}
	return strings.EqualFold(email, strings.TrimSpace(c.UserEmail))
}

// CanToggleStatus reports whether u may resolve or reopen complaints.
func CanToggleStatus(u model.User) bool { return u.IsAdmin }

// CanSubmit reports whether u may file complaints. Admins only triage.
func CanSubmit(u model.User) bool { return !u.IsAdmin }

// ListScope returns the owner filter for listing: "" (everything) for
// admins, the user's own email otherwise.
func ListScope(u model.User) string {
	if u.IsAdmin {
		return ""
	}
	return strings.TrimSpace(u.Email)
}
