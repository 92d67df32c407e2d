package repository

import "errors"

// Storage-independent errors, drivers' errors are mapped to them by the repositories.
var (
	ErrAlreadyExists = errors.New("record already exists")
	ErrNotFound      = errors.New("record not found")
)
