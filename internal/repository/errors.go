package repository

import "errors"

// ErrNotFound is returned when a requested record is not found in the repository.
var ErrNotFound = errors.New("record not found")
