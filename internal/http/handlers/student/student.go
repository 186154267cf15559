// Package student contains all HTTP handlers related to the Student resource.
//
// HANDLER PATTERN USED HERE — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// Go's router expects handler functions with the signature:
//
//	func(http.ResponseWriter, *http.Request)
//
// To inject dependencies we use a factory function that accepts the
// service and returns a function with exactly that signature:
//
//	router.HandleFunc("POST /records", student.New(svc))
//
// New(svc) runs once at startup; the returned closure runs on every request.
//
// Handlers only translate HTTP into service calls and service errors back
// into status codes. Validation and storage rules live below them.
package student

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aanand-mishra/student-records/internal/apperrors"
	"github.com/aanand-mishra/student-records/internal/http/middleware"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/utils/response"
)

// Service is what the handlers need from the record service.
type Service interface {
	Create(ctx context.Context, in types.StudentInput) (int64, error)
	GetByID(ctx context.Context, id int64) (types.Student, error)
	Update(ctx context.Context, id int64, p types.StudentPatch) error
	Query(ctx context.Context, f types.Filter) ([]types.Student, error)
}

// maxBodyBytes bounds request bodies; a student record is a few hundred
// bytes.
const maxBodyBytes = 1 << 20

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /records
//
// Query parameters (all optional):
//
//	search, minGpa, maxGpa, graduationYear, city, state, sortBy, sortOrder
//
// Success response (200 OK):
//
//	{ "records": [ { "id": 1, "name": "Alice", ... }, ... ] }
//
// Malformed numbers are ignored rather than rejected.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := middleware.LoggerFrom(r.Context())
		f := ParseFilter(r.URL.Query())

		students, err := svc.Query(r.Context(), f)
		if err != nil {
			log.Error("error querying students", slog.String("error", err.Error()))
			response.WriteError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, map[string][]types.Student{"records": students})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /records/{id}
//
// Error responses:
//
//	400 Bad Request  — id is not a valid integer
//	404 Not Found    — no student with that id
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			response.WriteError(w, err)
			return
		}

		student, err := svc.GetByID(r.Context(), id)
		if err != nil {
			response.WriteError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /records
//
// Request body (JSON):
//
//	{ "name": "Alice", "email": "alice@example.com", "graduation_year": 2025,
//	  "phone_number": "123-456-7890", "gpa": 3.7, "city": "Austin",
//	  "state": "TX", "latitude": 30.27, "longitude": -97.74 }
//
// Success response (201 Created):
//
//	{ "message": "Student created successfully", "id": 1 }
//
// Error responses:
//
//	400 Bad Request  — empty or malformed body, missing fields, invalid fields
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := middleware.LoggerFrom(r.Context())
		log.Info("creating a student")

		var in types.StudentInput
		if err := decode(w, r, &in); err != nil {
			response.WriteError(w, err)
			return
		}

		id, err := svc.Create(r.Context(), in)
		if err != nil {
			log.Info("create rejected", slog.String("error", err.Error()))
			response.WriteError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusCreated, response.Message{
			Message: "Student created successfully",
			ID:      id,
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PATCH /records/{id}
// Changes only the fields present in the body.
//
// Request body (JSON) — any subset of the create fields:
//
//	{ "city": "Dallas", "gpa": 3.9 }
//
// Success response (200 OK):
//
//	{ "message": "Student updated successfully" }
//
// The updated record is not returned; fetch it with GET /records/{id}.
//
// Error responses:
//
//	400 Bad Request  — invalid id, malformed body, unknown or invalid fields
//	404 Not Found    — no student with that id
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := middleware.LoggerFrom(r.Context())

		id, err := pathID(r)
		if err != nil {
			response.WriteError(w, err)
			return
		}
		log.Info("updating a student", slog.Int64("id", id))

		var p types.StudentPatch
		if err := decode(w, r, &p); err != nil {
			response.WriteError(w, err)
			return
		}

		if err := svc.Update(r.Context(), id, p); err != nil {
			log.Info("update rejected", slog.Int64("id", id), slog.String("error", err.Error()))
			response.WriteError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, response.Message{Message: "Student updated successfully"})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Boundary parsing
// ─────────────────────────────────────────────────────────────────────────────

// ParseFilter reads the list query parameters. Empty values and numbers
// that do not parse are treated as absent.
func ParseFilter(q url.Values) types.Filter {
	return types.Filter{
		Search:         str(q.Get("search")),
		MinGPA:         float(q.Get("minGpa")),
		MaxGPA:         float(q.Get("maxGpa")),
		GraduationYear: integer(q.Get("graduationYear")),
		City:           str(q.Get("city")),
		State:          str(q.Get("state")),
		SortBy:         q.Get("sortBy"),
		SortOrder:      q.Get("sortOrder"),
	}
}

func str(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func float(s string) *float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func integer(s string) *int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, &apperrors.InvalidFormatError{Field: "id", Reason: "must be an integer"}
	}
	return id, nil
}

// decode reads a JSON body into dst, rejecting unknown keys so clients
// cannot set id or timestamps.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if errors.Is(err, io.EOF) {
		return &apperrors.InvalidFormatError{Field: "body", Reason: "request body is empty"}
	}
	if err != nil {
		return &apperrors.InvalidFormatError{Field: "body", Reason: err.Error()}
	}
	if dec.More() {
		return &apperrors.InvalidFormatError{Field: "body", Reason: "unexpected data after JSON object"}
	}
	return nil
}
