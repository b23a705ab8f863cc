package repository

import "errors"

// ErrNotFound is returned when a requested key is not stored.
// This keeps the storage engine out of the layers above.
var ErrNotFound = errors.New("record not found")

// ErrEmptyKey is returned when a key is blank
var ErrEmptyKey = errors.New("empty state key")
