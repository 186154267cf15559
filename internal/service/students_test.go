package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/aanand-mishra/student-records/internal/apperrors"
	"github.com/aanand-mishra/student-records/internal/service"
	"github.com/aanand-mishra/student-records/internal/types"
)

func ptr[T any](v T) *T { return &v }

// fakeStore records every call so tests can assert what reached the store.
type fakeStore struct {
	rows    map[int64]types.Student
	nextID  int64
	creates int
	updates int
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[int64]types.Student{}, nextID: 1}
}

func (f *fakeStore) CreateStudent(_ context.Context, s types.Student) (int64, error) {
	f.creates++
	if f.err != nil {
		return 0, f.err
	}
	s.ID = f.nextID
	f.rows[s.ID] = s
	f.nextID++
	return s.ID, nil
}

func (f *fakeStore) GetStudentByID(_ context.Context, id int64) (types.Student, error) {
	if f.err != nil {
		return types.Student{}, f.err
	}
	s, ok := f.rows[id]
	if !ok {
		return types.Student{}, &apperrors.NotFoundError{ID: id}
	}
	return s, nil
}

func (f *fakeStore) StudentExists(_ context.Context, id int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.rows[id]
	return ok, nil
}

func (f *fakeStore) QueryStudents(context.Context, types.Filter) ([]types.Student, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]types.Student, 0, len(f.rows))
	for _, s := range f.rows {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeStore) UpdateStudentByID(_ context.Context, id int64, p types.StudentPatch) (int64, error) {
	f.updates++
	if f.err != nil {
		return 0, f.err
	}
	s, ok := f.rows[id]
	if !ok {
		return 0, nil
	}
	f.rows[id] = p.Apply(s)
	return 1, nil
}

func (f *fakeStore) Ping(context.Context) error { return f.err }
func (f *fakeStore) Close() error               { return nil }

func newService(store *fakeStore) *service.Students {
	return service.NewStudents(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func validInput() types.StudentInput {
	return types.StudentInput{
		Name:           ptr("Alice"),
		Email:          ptr("alice@example.com"),
		GraduationYear: ptr(2025),
		PhoneNumber:    ptr("123-456-7890"),
		GPA:            ptr(3.7),
		City:           ptr("Austin"),
		State:          ptr("TX"),
	}
}

func TestCreate_MissingFieldsWritesNothing(t *testing.T) {
	store := newFakeStore()
	svc := newService(store)

	in := validInput()
	in.Name = ptr("")
	_, err := svc.Create(context.Background(), in)

	if !errors.Is(err, apperrors.ErrMissingFields) {
		t.Fatalf("expected missing fields, got %v", err)
	}
	if store.creates != 0 {
		t.Fatalf("store should not be called, got %d creates", store.creates)
	}
}

func TestCreate_ReturnsStoreID(t *testing.T) {
	store := newFakeStore()
	store.nextID = 42

	id, err := newService(store).Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected id 42, got %d", id)
	}
}

func TestUpdate_NotFoundWritesNothing(t *testing.T) {
	store := newFakeStore()
	svc := newService(store)

	err := svc.Update(context.Background(), 99, types.StudentPatch{City: ptr("Boston")})

	var nf *apperrors.NotFoundError
	if !errors.As(err, &nf) || nf.ID != 99 {
		t.Fatalf("expected NotFound(99), got %v", err)
	}
	if store.updates != 0 {
		t.Fatalf("store should not be mutated, got %d updates", store.updates)
	}
}

func TestUpdate_InvalidFieldWritesNothing(t *testing.T) {
	store := newFakeStore()
	svc := newService(store)
	id, _ := svc.Create(context.Background(), validInput())

	err := svc.Update(context.Background(), id, types.StudentPatch{GPA: ptr(5.0)})
	if !errors.Is(err, apperrors.ErrInvalidFormat) {
		t.Fatalf("expected invalid format, got %v", err)
	}
	if store.updates != 0 {
		t.Fatalf("store should not be mutated, got %d updates", store.updates)
	}
}

func TestUpdate_EmptyPatchIsNoop(t *testing.T) {
	store := newFakeStore()
	svc := newService(store)
	id, _ := svc.Create(context.Background(), validInput())

	if err := svc.Update(context.Background(), id, types.StudentPatch{}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if store.updates != 0 {
		t.Fatalf("empty patch should not reach the store, got %d updates", store.updates)
	}
}

func TestUpdate_AppliesOnlyPresentFields(t *testing.T) {
	store := newFakeStore()
	svc := newService(store)
	ctx := context.Background()
	id, _ := svc.Create(ctx, validInput())

	if err := svc.Update(ctx, id, types.StudentPatch{City: ptr("Dallas")}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := svc.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.City != "Dallas" || got.Name != "Alice" || got.GPA != 3.7 {
		t.Fatalf("unexpected record after update: %+v", got)
	}
}

func TestStorageFailureSurfaces(t *testing.T) {
	store := newFakeStore()
	store.err = &apperrors.StorageError{Op: "test", Err: errors.New("disk on fire")}
	svc := newService(store)
	ctx := context.Background()

	if _, err := svc.Create(ctx, validInput()); !errors.Is(err, apperrors.ErrStorage) {
		t.Fatalf("create: expected storage failure, got %v", err)
	}
	if _, err := svc.Query(ctx, types.Filter{}); !errors.Is(err, apperrors.ErrStorage) {
		t.Fatalf("query: expected storage failure, got %v", err)
	}
	if err := svc.Update(ctx, 1, types.StudentPatch{City: ptr("X")}); !errors.Is(err, apperrors.ErrStorage) {
		t.Fatalf("update: expected storage failure, got %v", err)
	}
	if _, err := svc.GetByID(ctx, 1); !errors.Is(err, apperrors.ErrStorage) {
		t.Fatalf("get: expected storage failure, got %v", err)
	}
}
