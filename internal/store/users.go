package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"complaint-desk/internal/model"
)

// CreateUser registers a user. Emails are compared case-insensitively.
func (s *Store) CreateUser(ctx context.Context, email, name, password string, admin bool) (model.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return model.User{}, errors.New("email and password are required")
	}
	if _, err := s.GetUser(ctx, email); err == nil {
		return model.User{}, ErrUserExists
	} else if !IsNotFound(err) {
		return model.User{}, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return model.User{}, err
	}
	u := model.User{Email: email, Name: strings.TrimSpace(name), IsAdmin: admin, CreatedAt: fromUnixMS(toUnixMS(s.now()))}
	u.Name = u.DisplayName()

	isAdmin := 0
	if admin {
		isAdmin = 1
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO users(email, name, password_hash, is_admin, created_at_unixms) VALUES(?, ?, ?, ?, ?)`,
		u.Email, u.Name, hash, isAdmin, toUnixMS(u.CreatedAt),
	); err != nil {
		return model.User{}, err
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, email string) (model.User, error) {
	u, _, err := s.getUserWithHash(ctx, email)
	return u, err
}

// Authenticate checks the password and returns the user.
func (s *Store) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	u, hash, err := s.getUserWithHash(ctx, email)
	if IsNotFound(err) {
		return model.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, err
	}
	if !VerifyPassword(password, hash) {
		return model.User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Store) getUserWithHash(ctx context.Context, email string) (model.User, string, error) {
	email = normalizeEmail(email)
	var (
		u         model.User
		hash      string
		isAdmin   int
		createdMS int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT email, name, password_hash, is_admin, created_at_unixms FROM users WHERE email = ?`, email,
	).Scan(&u.Email, &u.Name, &hash, &isAdmin, &createdMS)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, "", NotFoundError{Kind: "user", ID: email}
	}
	if err != nil {
		return model.User{}, "", err
	}
	u.IsAdmin = isAdmin != 0
	u.CreatedAt = fromUnixMS(createdMS)
	return u, hash, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
