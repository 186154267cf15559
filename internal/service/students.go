// Package service mediates between the HTTP boundary and the store.
//
// Each method is one logical operation: a create or update is a single
// store statement, there is no application-level locking, and concurrent
// updates to the same record are last-writer-wins.
package service

import (
	"context"
	"log/slog"

	"github.com/aanand-mishra/student-records/internal/apperrors"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/validate"
)

// Students exposes create, read, update and query over a storage.Storage.
type Students struct {
	store storage.Storage
	log   *slog.Logger
}

// NewStudents returns a service backed by store.
func NewStudents(store storage.Storage, log *slog.Logger) *Students {
	return &Students{store: store, log: log}
}

// Create validates in and inserts it, returning the id the store assigned.
// Nothing is written when validation fails.
func (s *Students) Create(ctx context.Context, in types.StudentInput) (int64, error) {
	st, err := validate.Create(in)
	if err != nil {
		return 0, err
	}

	id, err := s.store.CreateStudent(ctx, st)
	if err != nil {
		s.log.Error("create student failed", slog.String("error", err.Error()))
		return 0, err
	}

	s.log.Info("student created", slog.Int64("id", id))
	return id, nil
}

// GetByID returns the student or a *apperrors.NotFoundError.
func (s *Students) GetByID(ctx context.Context, id int64) (types.Student, error) {
	return s.store.GetStudentByID(ctx, id)
}

// Update validates the fields present in p, checks that id exists, and
// writes p in one statement. It does not return the updated record;
// callers re-fetch when they need it.
func (s *Students) Update(ctx context.Context, id int64, p types.StudentPatch) error {
	if errs := validate.Patch(p); len(errs) > 0 {
		return apperrors.FieldErrors(errs)
	}

	ok, err := s.store.StudentExists(ctx, id)
	if err != nil {
		s.log.Error("lookup before update failed",
			slog.Int64("id", id),
			slog.String("error", err.Error()))
		return err
	}
	if !ok {
		return &apperrors.NotFoundError{ID: id}
	}

	if p.IsEmpty() {
		return nil
	}

	n, err := s.store.UpdateStudentByID(ctx, id, p)
	if err != nil {
		s.log.Error("update student failed",
			slog.Int64("id", id),
			slog.String("error", err.Error()))
		return err
	}
	if n == 0 {
		// The row was there a moment ago; it can only have vanished
		// through something outside this service.
		return &apperrors.NotFoundError{ID: id}
	}

	s.log.Info("student updated", slog.Int64("id", id), slog.Any("fields", p.Fields()))
	return nil
}

// Query returns every student matching f.
func (s *Students) Query(ctx context.Context, f types.Filter) ([]types.Student, error) {
	students, err := s.store.QueryStudents(ctx, f)
	if err != nil {
		s.log.Error("query students failed", slog.String("error", err.Error()))
		return nil, err
	}
	return students, nil
}

// Ping reports whether the store is reachable.
func (s *Students) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
