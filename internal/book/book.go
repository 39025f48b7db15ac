package book

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageUnavailable is returned when no storage handle has been established.
	ErrStorageUnavailable = errors.New("storage connection not established")

	// ErrReadFailure wraps errors returned by storage reads.
	ErrReadFailure = errors.New("storage read failed")

	// ErrWriteFailure wraps errors and zero-effect results of storage writes.
	ErrWriteFailure = errors.New("storage write failed")

	// ErrNotModified is returned when an update matched a book but changed no fields.
	ErrNotModified = fmt.Errorf("%w: no fields modified", ErrWriteFailure)

	// ErrNotFound is returned when a book is not found.
	ErrNotFound = errors.New("book not found")

	// ErrInvalidInput is returned for malformed identifiers.
	ErrInvalidInput = errors.New("invalid book input")
)

// Book represents a book entity.
type Book struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// CreateInput holds the fields accepted when adding a book.
type CreateInput struct {
	Title  string
	Author string
}

// UpdateInput holds the fields accepted when editing a book.
type UpdateInput struct {
	ID     string
	Title  string
	Author string
}

// UpdateResult reports how many documents an update matched and modified.
type UpdateResult struct {
	Matched  int64
	Modified int64
}
