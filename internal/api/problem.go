package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hyperengineering/cdusync/internal/engine"
	"github.com/hyperengineering/cdusync/internal/migration"
	"github.com/hyperengineering/cdusync/internal/snapshot"
	"github.com/hyperengineering/cdusync/internal/validation"
)

// Problem represents an RFC 7807 Problem Details response.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

type problemType struct {
	typeURI string
	title   string
}

// problemTypes maps HTTP status codes to RFC 7807 type URIs and titles.
var problemTypes = map[int]problemType{
	http.StatusUnauthorized:          {"https://cdusync.dev/errors/unauthorized", "Unauthorized"},
	http.StatusBadRequest:            {"https://cdusync.dev/errors/bad-request", "Bad Request"},
	http.StatusNotFound:              {"https://cdusync.dev/errors/not-found", "Not Found"},
	http.StatusRequestEntityTooLarge: {"https://cdusync.dev/errors/too-large", "Request Entity Too Large"},
	http.StatusInternalServerError:   {"https://cdusync.dev/errors/internal-error", "Internal Server Error"},
	http.StatusUnprocessableEntity:   {"https://cdusync.dev/errors/validation-error", "Validation Error"},
	http.StatusServiceUnavailable:    {"https://cdusync.dev/errors/service-unavailable", "Service Unavailable"},
	http.StatusConflict:              {"https://cdusync.dev/errors/conflict", "Conflict"},
	http.StatusBadGateway:            {"https://cdusync.dev/errors/remote-failure", "Remote Store Failure"},
}

func newProblem(r *http.Request, status int, detail string) Problem {
	pt, ok := problemTypes[status]
	if !ok {
		pt = problemType{"https://cdusync.dev/errors/unknown", http.StatusText(status)}
	}
	return Problem{
		Type:     pt.typeURI,
		Title:    pt.title,
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
	}
}

// WriteProblem writes an RFC 7807 Problem Details response.
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	writeProblemBody(w, status, newProblem(r, status, detail))
}

// ProblemWithErrors extends Problem with validation error details.
type ProblemWithErrors struct {
	Problem
	Errors []validation.ValidationError `json:"errors,omitempty"`
}

// WriteProblemWithErrors writes a 422 Problem Details response with field errors.
func WriteProblemWithErrors(w http.ResponseWriter, r *http.Request, detail string, errs []validation.ValidationError) {
	p := ProblemWithErrors{
		Problem: newProblem(r, http.StatusUnprocessableEntity, detail),
		Errors:  errs,
	}
	writeProblemBody(w, http.StatusUnprocessableEntity, p)
}

func writeProblemBody(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode problem response", "component", "api", "error", err)
	}
}

// MapEngineError converts engine and import errors to Problem Details
// responses.
func MapEngineError(w http.ResponseWriter, r *http.Request, err error) {
	var fields validation.Errors
	switch {
	case errors.As(err, &fields):
		WriteProblemWithErrors(w, r, "Backup document contains invalid fields", fields)
	case errors.Is(err, migration.ErrMalformedDocument):
		WriteProblem(w, r, http.StatusUnprocessableEntity, "Malformed backup document")
	case errors.Is(err, engine.ErrNotFound), errors.Is(err, engine.ErrParentNotFound):
		WriteProblem(w, r, http.StatusNotFound, "Resource not found")
	case errors.Is(err, snapshot.ErrNotConfigured):
		WriteProblem(w, r, http.StatusServiceUnavailable, "Local snapshot is not configured")
	default:
		// Never expose internal error details to client
		WriteProblem(w, r, http.StatusBadGateway, "Remote store operation failed")
	}
}
