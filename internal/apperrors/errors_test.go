package apperrors_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/aanand-mishra/student-records/internal/apperrors"
)

func TestKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"missing fields", &apperrors.MissingFieldsError{Fields: []string{"name"}}, apperrors.ErrMissingFields},
		{"not found", &apperrors.NotFoundError{ID: 7}, apperrors.ErrNotFound},
		{"invalid format", &apperrors.InvalidFormatError{Field: "id"}, apperrors.ErrInvalidFormat},
		{"field errors", apperrors.FieldErrors{"gpa": "GPA must be between 0.0 and 4.0."}, apperrors.ErrInvalidFormat},
		{"storage", apperrors.Storage("insert", sql.ErrConnDone), apperrors.ErrStorage},
		{"wrapped", fmt.Errorf("service: %w", &apperrors.NotFoundError{ID: 1}), apperrors.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.kind) {
				t.Fatalf("errors.Is(%v, %v) = false", tt.err, tt.kind)
			}
		})
	}
}

func TestMissingFieldsMessage(t *testing.T) {
	err := &apperrors.MissingFieldsError{Fields: []string{"name", "gpa", "state"}}
	want := "Missing required fields: name, gpa, state"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}

func TestStorageKeepsCause(t *testing.T) {
	err := apperrors.Storage("query students", sql.ErrConnDone)
	if !errors.Is(err, sql.ErrConnDone) {
		t.Fatal("driver error should stay reachable through Unwrap")
	}

	var se *apperrors.StorageError
	if !errors.As(err, &se) || se.Op != "query students" {
		t.Fatalf("unexpected storage error: %#v", err)
	}
}

func TestStorageDoesNotRewrapKinds(t *testing.T) {
	nf := &apperrors.NotFoundError{ID: 3}
	if got := apperrors.Storage("get", nf); got != nf {
		t.Fatalf("NotFound should pass through unchanged, got %v", got)
	}
	if apperrors.Storage("noop", nil) != nil {
		t.Fatal("nil should stay nil")
	}
}
