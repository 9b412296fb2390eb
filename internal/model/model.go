package model

import (
	"fmt"
	"strings"
	"time"
)

// MinComplaintLen is the minimum length of a complaint text after trimming.
const MinComplaintLen = 10

// Status is the two-valued lifecycle of a complaint.
type Status string

const (
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
)

// ParseStatus accepts the wire values ("pending", "resolved").
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, nil
	case StatusResolved:
		return StatusResolved, nil
	default:
		return "", fmt.Errorf("invalid status: %q (expected pending|resolved)", s)
	}
}

func StatusFromResolved(resolved bool) Status {
	if resolved {
		return StatusResolved
	}
	return StatusPending
}

func (s Status) Valid() bool { return s == StatusPending || s == StatusResolved }

// Toggle returns the opposite status.
func (s Status) Toggle() Status {
	if s == StatusResolved {
		return StatusPending
	}
	return StatusResolved
}

func (s Status) Resolved() bool { return s == StatusResolved }

// Label is the human-facing status cell text.
func (s Status) Label() string {
	if s == StatusResolved {
		return "Resolved"
	}
	return "Pending"
}

type User struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName falls back to the local part of the email, like signup does.
func (u User) DisplayName() string {
	if n := strings.TrimSpace(u.Name); n != "" {
		return n
	}
	local, _, _ := strings.Cut(u.Email, "@")
	return local
}

type Complaint struct {
	ID              string     `json:"_id"`
	UserEmail       string     `json:"user_email"`
	UserName        string     `json:"user_name"`
	Text            string     `json:"complaint"`
	Resolved        bool       `json:"resolved"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	ResolvedBy      *string    `json:"resolved_by"`
	StatusUpdatedAt *time.Time `json:"status_updated_at"`
}

func (c Complaint) Status() Status { return StatusFromResolved(c.Resolved) }

// ValidateComplaintText trims text and checks the length rules shared by
// submit and update. The returned string is the trimmed text.
func ValidateComplaintText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrComplaintEmpty
	}
	if len([]rune(text)) < MinComplaintLen {
		return "", ErrComplaintTooShort
	}
	return text, nil
}
