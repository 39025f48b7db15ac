package graph

import (
	"errors"

	"bookgraph/internal/book"
)

// Error codes reported in the "extensions" member of GraphQL errors.
const (
	codeStorageUnavailable  = "STORAGE_UNAVAILABLE"
	codeStorageReadFailure  = "STORAGE_READ_FAILURE"
	codeStorageWriteFailure = "STORAGE_WRITE_FAILURE"
	codeNotFound            = "NOT_FOUND"
	codeInvalidInput        = "INVALID_INPUT"
	codeInternal            = "INTERNAL"
)

// operationError is returned to GraphQL clients.
// Its message is the fixed per-operation text; the cause stays reachable through Unwrap.
type operationError struct {
	msg   string
	cause error
}

func newOperationError(msg string, cause error) *operationError {
	return &operationError{msg: msg, cause: cause}
}

func (e *operationError) Error() string { return e.msg }

func (e *operationError) Unwrap() error { return e.cause }

// Extensions implements the graphql-go extensions interface.
func (e *operationError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": errorCode(e.cause)}
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, book.ErrStorageUnavailable):
		return codeStorageUnavailable
	case errors.Is(err, book.ErrNotFound):
		return codeNotFound
	case errors.Is(err, book.ErrInvalidInput):
		return codeInvalidInput
	case errors.Is(err, book.ErrReadFailure):
		return codeStorageReadFailure
	case errors.Is(err, book.ErrWriteFailure):
		return codeStorageWriteFailure
	default:
		return codeInternal
	}
}
