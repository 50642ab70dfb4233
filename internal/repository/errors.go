package repository

import "errors"

var (
	// ErrNotFound is returned when no entity matches the given id.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateUsername is returned when a signup reuses an existing
	// username. Matching is case-sensitive.
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrPCRAlreadyFiled is returned when a second care record is filed
	// against a call that is already linked to one.
	ErrPCRAlreadyFiled = errors.New("call already has a patient care record")
)
