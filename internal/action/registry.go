package action

import (
	"strings"
	"time"

	"complaint-desk/internal/model"
)

// Row is the rendered representation of one complaint.
type Row struct {
	ID        string
	Email     string
	Author    string
	Text      string
	Status    model.Status
	CreatedAt time.Time
	UpdatedAt time.Time

	Toggle ToggleControl
	Delete Control

	// Fading is set once a delete is confirmed by the server and cleared when
	// the row is dropped.
	Fading bool
}

func newRow(c model.Complaint) *Row {
	author := strings.TrimSpace(c.UserName)
	if author == "" {
		author = c.UserEmail
	}
	updated := c.UpdatedAt
	if updated.IsZero() {
		updated = c.CreatedAt
	}
	return &Row{
		ID:        c.ID,
		Email:     c.UserEmail,
		Author:    author,
		Text:      c.Text,
		Status:    c.Status(),
		CreatedAt: c.CreatedAt,
		UpdatedAt: updated,
		Toggle:    newToggleControl(c.Resolved),
		Delete:    NewControl(LabelDelete),
	}
}

// StatusCell is the text of the status column.
func (r *Row) StatusCell() string { return r.Status.Label() }

// Busy reports whether any of the row's controls has a request in flight.
func (r *Row) Busy() bool { return r.Toggle.Busy() || r.Delete.Busy() }

func (r *Row) setStatus(s model.Status) {
	r.Status = s
	r.Toggle.apply(s.Resolved())
}

// BodyLine is one line of the table body: either a row or the empty-state
// placeholder.
type BodyLine struct {
	Row         *Row
	Placeholder string
}

// Registry maps complaint ids to row handles and keeps display order
// (newest first, as served by the backend).
type Registry struct {
	order []string
	rows  map[string]*Row
}

func NewRegistry(complaints []model.Complaint) *Registry {
	r := &Registry{rows: map[string]*Row{}}
	r.Replace(complaints)
	return r
}

func (r *Registry) Lookup(id string) (*Row, bool) {
	row, ok := r.rows[strings.TrimSpace(id)]
	return row, ok
}

func (r *Registry) Len() int { return len(r.order) }

// Rows returns rows in display order.
func (r *Registry) Rows() []*Row {
	out := make([]*Row, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.rows[id])
	}
	return out
}

// Body returns what the table body shows: the rows, or exactly one
// placeholder line when there are none.
func (r *Registry) Body() []BodyLine {
	if len(r.order) == 0 {
		return []BodyLine{{Placeholder: EmptyStateText}}
	}
	out := make([]BodyLine, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, BodyLine{Row: r.rows[id]})
	}
	return out
}

// Prepend inserts a newly submitted complaint at the top.
func (r *Registry) Prepend(c model.Complaint) *Row {
	if existing, ok := r.rows[c.ID]; ok {
		return existing
	}
	row := newRow(c)
	r.rows[c.ID] = row
	r.order = append([]string{c.ID}, r.order...)
	return row
}

// Replace swaps in a fresh listing. Rows with a request in flight keep their
// control state (and their displayed fields) so the pending request can still
// settle against them; other rows take the server's values.
func (r *Registry) Replace(complaints []model.Complaint) {
	next := make(map[string]*Row, len(complaints))
	order := make([]string, 0, len(complaints))
	for _, c := range complaints {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			continue
		}
		if _, dup := next[id]; dup {
			continue
		}
		if prev, ok := r.rows[id]; ok && (prev.Busy() || prev.Fading) {
			next[id] = prev
		} else {
			next[id] = newRow(c)
		}
		order = append(order, id)
	}
	// Keep in-flight rows that vanished from the listing until they settle.
	for _, id := range r.order {
		if _, ok := next[id]; ok {
			continue
		}
		if prev := r.rows[id]; prev != nil && prev.Busy() {
			next[id] = prev
			order = append(order, id)
		}
	}
	r.rows = next
	r.order = order
}

// Remove drops a row and returns how many rows remain.
func (r *Registry) Remove(id string) int {
	id = strings.TrimSpace(id)
	if _, ok := r.rows[id]; !ok {
		return len(r.order)
	}
	delete(r.rows, id)
	for i, cur := range r.order {
		if cur == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return len(r.order)
}
