// Package storage defines the Storage interface — a contract that any
// database backend must satisfy to work with this application.
//
// WHY AN INTERFACE?
// ─────────────────
// The record service should not know or care which database it is talking
// to. By depending only on this interface:
//
//   - Switching databases = implement the interface for the new DB,
//     change one line in main.go. Zero service changes.
//
//   - Writing tests = pass a fake that satisfies the interface.
//     No real database needed for service unit tests.
package storage

import (
	"context"

	"github.com/aanand-mishra/student-records/internal/types"
)

// Storage is the database contract.
//
// Errors: a missing row is reported as *apperrors.NotFoundError; every other
// failure is an *apperrors.StorageError. Implementations never swallow a
// driver error.
type Storage interface {
	// CreateStudent inserts s (its id and timestamps are ignored) and
	// returns the id assigned by the database.
	CreateStudent(ctx context.Context, s types.Student) (int64, error)

	// GetStudentByID fetches a single student by primary key.
	GetStudentByID(ctx context.Context, id int64) (types.Student, error)

	// StudentExists reports whether a row with id exists.
	StudentExists(ctx context.Context, id int64) (bool, error)

	// QueryStudents returns every student matching f, fully ordered.
	// Returns an empty slice (not nil) when nothing matches.
	QueryStudents(ctx context.Context, f types.Filter) ([]types.Student, error)

	// UpdateStudentByID writes the fields present in p and returns the
	// number of rows changed. It does not return the updated record.
	UpdateStudentByID(ctx context.Context, id int64, p types.StudentPatch) (int64, error)

	// Ping checks the database is reachable.
	Ping(ctx context.Context) error

	// Close releases the connection pool.
	Close() error
}
