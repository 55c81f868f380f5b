package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/candidate-tracker/internal/db"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ValidationError indicates request validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NotFoundError indicates no candidate has the member ID.
type NotFoundError struct {
	MemberID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("candidate not found: %s", e.MemberID)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validation *ValidationError
	var notFound *NotFoundError
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound), errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err to a status and writes the error body. Internal errors
// are logged and reported as a database error without details.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	switch status {
	case http.StatusBadRequest:
		var validation *ValidationError
		errors.As(err, &validation)
		s.errorResponse(w, status, validation.Message)
	case http.StatusNotFound:
		s.jsonResponse(w, status, ErrorBody{Error: "Candidate not found", Message: err.Error()})
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		s.jsonResponse(w, status, ErrorBody{Error: "Database error", Message: "failed to access candidate store"})
	}
}
