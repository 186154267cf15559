// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler in this application sends JSON back to the client.
// Rather than repeating the same three lines (set header, set status,
// encode JSON) in every handler, we centralise them here.
//
// Consistent response shapes also make life easier for API consumers —
// they always know what error responses look like.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aanand-mishra/student-records/internal/apperrors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Response is the standard envelope returned for error cases.
//
// Success responses have their own shapes ({records: [...]}, {message, id}).
// Error responses always look like:
//
//	{ "status": "error", "error": "Missing required fields: name" }
//
// Fields is only present for rule violations and maps each field to its
// message.
// ─────────────────────────────────────────────────────────────────────────────
type Response struct {
	Status string            `json:"status"`
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Status string constants.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Message is the body of a successful write.
type Message struct {
	Message string `json:"message"`
	ID      int64  `json:"id,omitempty"`
}

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into our standard Response shape.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ValidationError reports rule violations field by field.
func ValidationError(errs apperrors.FieldErrors) Response {
	return Response{
		Status: StatusError,
		Error:  "validation failed",
		Fields: errs,
	}
}

// StatusFor maps an error kind to its HTTP status code.
//
//	MissingFields, InvalidFormat → 400
//	NotFound                     → 404
//	StorageFailure and anything else → 500
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrMissingFields),
		errors.Is(err, apperrors.ErrInvalidFormat):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes err with the status its kind maps to. Storage faults
// are reported with a generic message; driver details stay in the logs.
func WriteError(w http.ResponseWriter, err error) error {
	status := StatusFor(err)

	var fe apperrors.FieldErrors
	switch {
	case errors.As(err, &fe):
		return WriteJSON(w, status, ValidationError(fe))
	case status == http.StatusInternalServerError:
		return WriteJSON(w, status, Response{Status: StatusError, Error: "Internal server error"})
	default:
		return WriteJSON(w, status, GeneralError(err))
	}
}
