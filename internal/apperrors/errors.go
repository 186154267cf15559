// Package apperrors defines the error kinds shared by the validator, the
// record service and the store. Every typed error unwraps to one of the
// sentinels below, so callers match kinds with errors.Is and read details
// with errors.As.
package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error kinds
var (
	ErrMissingFields = errors.New("missing required fields")
	ErrNotFound      = errors.New("student not found")
	ErrInvalidFormat = errors.New("invalid format")
	ErrStorage       = errors.New("storage failure")
)

// MissingFieldsError names the required fields absent from a create request,
// in their declared order.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "Missing required fields: " + strings.Join(e.Fields, ", ")
}

func (e *MissingFieldsError) Unwrap() error { return ErrMissingFields }

// NotFoundError is returned when no student has the given id.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no student found with id: %d", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InvalidFormatError reports a single malformed input, such as a path id
// that is not an integer.
type InvalidFormatError struct {
	Field  string
	Reason string
}

func (e *InvalidFormatError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid %s format", e.Field)
	}
	return fmt.Sprintf("invalid %s format: %s", e.Field, e.Reason)
}

func (e *InvalidFormatError) Unwrap() error { return ErrInvalidFormat }

// FieldErrors maps a field's json name to a human-readable message for each
// rule the field violates.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e[k])
	}
	return strings.Join(msgs, " ")
}

func (e FieldErrors) Unwrap() error { return ErrInvalidFormat }

// StorageError wraps any fault raised by the underlying store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Is lets errors.Is(err, ErrStorage) match while Unwrap still exposes the
// driver error.
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

func (e *StorageError) Unwrap() error { return e.Err }

// Storage wraps err as a StorageError unless it is nil or already carries
// a kind from this package.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrStorage) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
