package action

import (
	"strings"

	"complaint-desk/internal/model"
)

type Kind int

const (
	KindToggleStatus Kind = iota
	KindDelete
	KindUpdate
)

func (k Kind) String() string {
	switch k {
	case KindToggleStatus:
		return "toggleStatus"
	case KindDelete:
		return "delete"
	case KindUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// Intent is a user-initiated action bound to one row.
//
// Status is the row's current status (toggle only); Text is the edited text
// (update only).
type Intent struct {
	Kind        Kind
	ComplaintID string
	Status      model.Status
	Text        string
}

func ToggleStatus(id string, current model.Status) Intent {
	return Intent{Kind: KindToggleStatus, ComplaintID: id, Status: current}
}

func Delete(id string) Intent {
	return Intent{Kind: KindDelete, ComplaintID: id}
}

func Update(id, text string) Intent {
	return Intent{Kind: KindUpdate, ComplaintID: id, Text: text}
}

// Request is the wire-level payload sent for an intent.
type Request struct {
	Kind        Kind
	ComplaintID string
	Status      model.Status
	Text        string
}

// Body returns the JSON body for the request's endpoint.
func (r Request) Body() map[string]any {
	body := map[string]any{"complaint_id": r.ComplaintID}
	switch r.Kind {
	case KindToggleStatus:
		body["status"] = string(r.Status)
	case KindUpdate:
		body["complaint"] = r.Text
	}
	return body
}

// Result is the backend answer envelope.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// FailureMessage returns the server message or the generic fallback.
func (r Result) FailureMessage() string {
	if m := strings.TrimSpace(r.Message); m != "" {
		return m
	}
	return UnknownErrorText
}
