package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"complaint-desk/internal/model"

	"github.com/google/uuid"
)

const complaintColumns = `id, user_email, user_name, complaint, resolved, created_at_unixms,
	updated_at_unixms, resolved_by, status_updated_at_unixms`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComplaint(r rowScanner) (model.Complaint, error) {
	var (
		c             model.Complaint
		resolved      int
		createdMS     int64
		updatedMS     sql.NullInt64
		resolvedBy    sql.NullString
		statusUpdated sql.NullInt64
	)
	if err := r.Scan(&c.ID, &c.UserEmail, &c.UserName, &c.Text, &resolved, &createdMS, &updatedMS, &resolvedBy, &statusUpdated); err != nil {
		return model.Complaint{}, err
	}
	c.Resolved = resolved != 0
	c.CreatedAt = fromUnixMS(createdMS)
	// Older rows may lack updated_at; it defaults to created_at.
	c.UpdatedAt = c.CreatedAt
	if updatedMS.Valid {
		c.UpdatedAt = fromUnixMS(updatedMS.Int64)
	}
	if resolvedBy.Valid && resolvedBy.String != "" {
		by := resolvedBy.String
		c.ResolvedBy = &by
	}
	if statusUpdated.Valid {
		t := fromUnixMS(statusUpdated.Int64)
		c.StatusUpdatedAt = &t
	}
	return c, nil
}

// ListComplaints returns complaints newest first. An empty ownerEmail lists
// everything (admin view); otherwise only that user's complaints.
func (s *Store) ListComplaints(ctx context.Context, ownerEmail string) ([]model.Complaint, error) {
	q := `SELECT ` + complaintColumns + ` FROM complaints`
	args := []any{}
	if ownerEmail = strings.TrimSpace(ownerEmail); ownerEmail != "" {
		q += ` WHERE user_email = ?`
		args = append(args, ownerEmail)
	}
	q += ` ORDER BY created_at_unixms DESC, id`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetComplaint(ctx context.Context, id string) (model.Complaint, error) {
	id = strings.TrimSpace(id)
	row := s.db.QueryRowContext(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id = ?`, id)
	c, err := scanComplaint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Complaint{}, NotFoundError{Kind: "complaint", ID: id}
	}
	return c, err
}

// CreateComplaint stores a new pending complaint filed by author. text must
// already be validated.
func (s *Store) CreateComplaint(ctx context.Context, author model.User, text string) (model.Complaint, error) {
	now := s.now().UTC()
	c := model.Complaint{
		ID:        uuid.NewString(),
		UserEmail: author.Email,
		UserName:  author.DisplayName(),
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO complaints(id, user_email, user_name, complaint, resolved, created_at_unixms, updated_at_unixms)
		 VALUES(?, ?, ?, ?, 0, ?, ?)`,
		c.ID, c.UserEmail, c.UserName, c.Text, toUnixMS(now), toUnixMS(now),
	)
	if err != nil {
		return model.Complaint{}, err
	}
	// Round-trip through the unixms columns so callers see stored precision.
	c.CreatedAt = fromUnixMS(toUnixMS(now))
	c.UpdatedAt = c.CreatedAt
	return c, nil
}

// UpdateComplaintText replaces the text and bumps updated_at.
func (s *Store) UpdateComplaintText(ctx context.Context, id, text string) error {
	id = strings.TrimSpace(id)
	res, err := s.db.ExecContext(ctx,
		`UPDATE complaints SET complaint = ?, updated_at_unixms = ? WHERE id = ?`,
		text, toUnixMS(s.now()), id,
	)
	if err != nil {
		return err
	}
	return requireAffected(res, id)
}

// SetResolved sets the resolved flag and stamps status_updated_at. resolvedBy
// is recorded when resolving and cleared when reopening. Setting the current
// status again still succeeds (last write wins).
func (s *Store) SetResolved(ctx context.Context, id string, resolved bool, resolvedBy string) error {
	id = strings.TrimSpace(id)
	var by any
	if resolved {
		by = resolvedBy
	}
	flag := 0
	if resolved {
		flag = 1
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE complaints SET resolved = ?, resolved_by = ?, status_updated_at_unixms = ? WHERE id = ?`,
		flag, by, toUnixMS(s.now()), id,
	)
	if err != nil {
		return err
	}
	return requireAffected(res, id)
}

func (s *Store) DeleteComplaint(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	res, err := s.db.ExecContext(ctx, `DELETE FROM complaints WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, id)
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return NotFoundError{Kind: "complaint", ID: id}
	}
	return nil
}
