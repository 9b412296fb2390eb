package model

import "errors"

var (
	ErrComplaintEmpty    = errors.New("complaint cannot be empty")
	ErrComplaintTooShort = errors.New("complaint must be at least 10 characters long")
)
