package handler

// RESPONSE HELPERS:
// These functions standardise how we send JSON responses and errors.
//
// CONSISTENT ERROR FORMAT:
// Every error response from the API has the same base shape:
//   {"error": "not_found", "message": "shopping list not found with id abc123"}
//
// Validation failures add every failing field:
//   {"error": "validation_error", "message": "...", "errors": [{"field": "name", "message": "..."}]}
//
// Storage failures name the failed store operation and carry the driver's
// diagnostics:
//   {"error": "shoppingListDao.create", "message": "...",
//    "parameters": {"databaseError": {"code": 10, "message": "disk I/O error"}}}

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/shopping-list/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error      string                `json:"error"`   // Machine-readable error type (e.g., "not_found")
	Message    string                `json:"message"` // Human-readable description
	Errors     []apperror.FieldError `json:"errors,omitempty"`
	Parameters *ErrorParameters      `json:"parameters,omitempty"`
}

// ErrorParameters holds diagnostics attached to storage failures.
type ErrorParameters struct {
	DatabaseError DatabaseError `json:"databaseError"`
}

// DatabaseError is the driver's view of a failed store operation.
type DatabaseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// MessageResponse is the body of operations that return no resource.
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// Headers and status must be set BEFORE the body is written; once Encode
// writes, header changes are silently ignored.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent, we can only log it.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// WriteError maps a domain error to the appropriate HTTP status code and sends it.
//
// The service layer returns apperror kinds wrapped with context, e.g.
//
//	fmt.Errorf("get list: %w", apperror.NotFound("shopping list", id))
//
// errors.Is walks the chain down to the sentinel, errors.As extracts the
// *AppError for its message and diagnostics.
func WriteError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		// Unknown error: never expose internal details to the client.
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
		return
	}

	switch {
	case errors.Is(err, apperror.ErrValidation):
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: appErr.Message,
			Errors:  appErr.Fields,
		})
	case errors.Is(err, apperror.ErrNotFound):
		WriteJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Message: appErr.Message})
	case errors.Is(err, apperror.ErrForbidden):
		WriteJSON(w, http.StatusForbidden, ErrorResponse{Error: "forbidden", Message: appErr.Message})
	case errors.Is(err, apperror.ErrConflict):
		WriteJSON(w, http.StatusConflict, ErrorResponse{Error: "conflict", Message: appErr.Message})
	case errors.Is(err, apperror.ErrStorage):
		op := appErr.Op
		if op == "" {
			op = "storage_error"
		}
		dbErr := DatabaseError{Code: appErr.Code}
		if appErr.Cause != nil {
			dbErr.Message = appErr.Cause.Error()
		}
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:      op,
			Message:    appErr.Message,
			Parameters: &ErrorParameters{DatabaseError: dbErr},
		})
	default:
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: appErr.Message,
		})
	}
}
