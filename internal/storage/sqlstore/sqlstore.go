// Package sqlstore provides a database/sql implementation of the
// storage.Storage interface for sqlite3 and postgres.
//
// Statements are built with squirrel through internal/storage/query, so
// every value reaches the database as a bound parameter — never
// concatenated into the SQL text. The dialects differ in placeholder style
// (? versus $1) and in how text is case-folded (see query.Dialect).
//
// sqlite3 is opened through a driver registered here that adds the ulower
// function; lib/pq registers "postgres" itself.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/aanand-mishra/student-records/internal/apperrors"
	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/storage/migrations"
	"github.com/aanand-mishra/student-records/internal/storage/query"
	"github.com/aanand-mishra/student-records/internal/types"
)

// Store is the concrete implementation of storage.Storage.
// It holds a *sql.DB, which is a connection pool safe for concurrent use
// by multiple goroutines.
type Store struct {
	db  *sql.DB
	q   query.Builder
	log *slog.Logger
}

var _ storage.Storage = (*Store)(nil)

// sqliteDriver is go-sqlite3 with ulower registered on every connection.
// sqlite's own LOWER only folds ASCII; ulower folds like strings.ToLower.
const sqliteDriver = "sqlite3_students"

func init() {
	sql.Register(sqliteDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("ulower", strings.ToLower, true)
		},
	})
}

// driverName maps a configured driver to the database/sql driver to open.
func driverName(driver string) string {
	if driver == "sqlite3" {
		return sqliteDriver
	}
	return driver
}

// inMemory reports whether dsn names a sqlite database that lives only as
// long as its connection.
func inMemory(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

// New opens the database described by cfg, creates the students table if
// needed, and returns a ready-to-use *Store.
func New(cfg config.Storage, log *slog.Logger) (*Store, error) {
	if err := ensureDir(cfg); err != nil {
		return nil, fmt.Errorf("sqlstore.New: %w", err)
	}

	db, err := sql.Open(driverName(cfg.Driver), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlstore.New: open db: %w", err)
	}

	if cfg.Driver == "sqlite3" && inMemory(cfg.DSN) {
		// Every connection would get its own empty database.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlstore.New: ping: %w", err)
	}

	if err := migrations.Up(db, cfg.Driver, cfg.DSN, log); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlstore.New: %w", err)
	}

	return &Store{
		db:  db,
		q:   query.New(query.DialectFor(cfg.Driver)),
		log: log,
	}, nil
}

// ensureDir creates the directory holding a sqlite database file; sqlite
// creates the file but not its parents.
func ensureDir(cfg config.Storage) error {
	if cfg.Driver != "sqlite3" || inMemory(cfg.DSN) || strings.HasPrefix(cfg.DSN, "file:") {
		return nil
	}
	dir := filepath.Dir(cfg.DSN)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// ─────────────────────────────────────────────────────────────────────────────
// CreateStudent inserts one row and returns the id the database assigned.
// created_at and updated_at are set here, in UTC, so both dialects store
// the same value.
// ─────────────────────────────────────────────────────────────────────────────
func (s *Store) CreateStudent(ctx context.Context, st types.Student) (int64, error) {
	now := time.Now().UTC()

	values := map[string]any{
		"name":            st.Name,
		"email":           st.Email,
		"graduation_year": st.GraduationYear,
		"phone_number":    st.PhoneNumber,
		"gpa":             round(st.GPA, 2),
		"city":            st.City,
		"state":           st.State,
		"latitude":        roundPtr(st.Latitude, 7),
		"longitude":       roundPtr(st.Longitude, 7),
		"created_at":      now,
		"updated_at":      now,
	}

	sqlStr, args, err := s.q.Insert(values).ToSql()
	if err != nil {
		return 0, apperrors.Storage("CreateStudent: build", err)
	}

	var id int64
	if err := s.db.QueryRowContext(ctx, sqlStr, args...).Scan(&id); err != nil {
		return 0, apperrors.Storage("CreateStudent: exec", err)
	}
	return id, nil
}

// GetStudentByID fetches exactly one row matched by primary key.
func (s *Store) GetStudentByID(ctx context.Context, id int64) (types.Student, error) {
	sqlStr, args, err := s.q.ByID(id).ToSql()
	if err != nil {
		return types.Student{}, apperrors.Storage("GetStudentByID: build", err)
	}

	st, err := scanStudent(s.db.QueryRowContext(ctx, sqlStr, args...))
	if errors.Is(err, sql.ErrNoRows) {
		// sql.ErrNoRows is the sentinel for "nothing matched"; callers
		// get a NotFound instead of a storage failure.
		return types.Student{}, &apperrors.NotFoundError{ID: id}
	}
	if err != nil {
		return types.Student{}, apperrors.Storage("GetStudentByID: scan", err)
	}
	return st, nil
}

// StudentExists reports whether id is present without reading the row.
func (s *Store) StudentExists(ctx context.Context, id int64) (bool, error) {
	sqlStr, args, err := s.q.Exists(id).ToSql()
	if err != nil {
		return false, apperrors.Storage("StudentExists: build", err)
	}

	var one int
	err = s.db.QueryRowContext(ctx, sqlStr, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.Storage("StudentExists: scan", err)
	}
	return true, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// QueryStudents runs the filter query built by the query package.
// Returns [] rather than nil so the JSON response is never null.
// ─────────────────────────────────────────────────────────────────────────────
func (s *Store) QueryStudents(ctx context.Context, f types.Filter) ([]types.Student, error) {
	sqlStr, args, err := s.q.Select(f).ToSql()
	if err != nil {
		return nil, apperrors.Storage("QueryStudents: build", err)
	}
	s.log.Debug("query students", slog.String("sql", sqlStr), slog.Int("args", len(args)))

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, apperrors.Storage("QueryStudents: query", err)
	}
	defer rows.Close()

	students := make([]types.Student, 0)
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, apperrors.Storage("QueryStudents: scan row", err)
		}
		students = append(students, st)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage("QueryStudents: rows iteration", err)
	}
	return students, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// UpdateStudentByID writes only the fields present in p, plus updated_at,
// as one UPDATE statement. It returns the affected row count; it does not
// re-read the record.
// ─────────────────────────────────────────────────────────────────────────────
func (s *Store) UpdateStudentByID(ctx context.Context, id int64, p types.StudentPatch) (int64, error) {
	values := patchValues(p)
	if len(values) == 0 {
		return 0, nil
	}
	values["updated_at"] = time.Now().UTC()

	sqlStr, args, err := s.q.Update(id, values).ToSql()
	if err != nil {
		return 0, apperrors.Storage("UpdateStudentByID: build", err)
	}

	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, apperrors.Storage("UpdateStudentByID: exec", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperrors.Storage("UpdateStudentByID: rows affected", err)
	}
	return n, nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return apperrors.Storage("Ping", s.db.PingContext(ctx))
}

// Close closes all pooled connections.
func (s *Store) Close() error { return s.db.Close() }

// patchValues maps the present fields of p to their columns.
func patchValues(p types.StudentPatch) map[string]any {
	values := map[string]any{}
	if p.Name != nil {
		values["name"] = *p.Name
	}
	if p.Email != nil {
		values["email"] = *p.Email
	}
	if p.GraduationYear != nil {
		values["graduation_year"] = *p.GraduationYear
	}
	if p.PhoneNumber != nil {
		values["phone_number"] = *p.PhoneNumber
	}
	if p.GPA != nil {
		values["gpa"] = round(*p.GPA, 2)
	}
	if p.City != nil {
		values["city"] = *p.City
	}
	if p.State != nil {
		values["state"] = *p.State
	}
	if p.Latitude != nil {
		values["latitude"] = round(*p.Latitude, 7)
	}
	if p.Longitude != nil {
		values["longitude"] = round(*p.Longitude, 7)
	}
	return values
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanStudent reads one row in query.Columns order.
func scanStudent(row scanner) (types.Student, error) {
	var (
		st       types.Student
		lat, lon sql.NullFloat64
	)
	err := row.Scan(
		&st.ID,
		&st.Name,
		&st.Email,
		&st.GraduationYear,
		&st.PhoneNumber,
		&st.GPA,
		&st.City,
		&st.State,
		&lat,
		&lon,
		&st.CreatedAt,
		&st.UpdatedAt,
	)
	if err != nil {
		return types.Student{}, err
	}
	if lat.Valid {
		st.Latitude = &lat.Float64
	}
	if lon.Valid {
		st.Longitude = &lon.Float64
	}
	return st, nil
}

// round keeps the precision the columns declare (gpa 2 digits, coordinates
// 7 digits) so sqlite, which does not enforce NUMERIC scale, stores the same
// value postgres would.
func round(v float64, digits int) float64 {
	p := math.Pow10(digits)
	return math.Round(v*p) / p
}

func roundPtr(v *float64, digits int) any {
	if v == nil {
		return nil
	}
	return round(*v, digits)
}
