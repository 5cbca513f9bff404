package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
	ErrNoProject     = errors.New("no project found")
	ErrUnknownType   = errors.New("unknown object type")
)
