// Package apperr defines the error taxonomy shared by the search and log routes.
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindValidation    Kind = "validation"
	KindProvider      Kind = "provider"
	KindStorage       Kind = "storage"
	KindInternal      Kind = "internal"
)

// AppError is an error with a kind, a user-facing message and an optional log reason.
// Message is what callers see; Err keeps the underlying cause for logs only.
type AppError struct {
	Kind    Kind
	Reason  string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status code for this error.
func (e *AppError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Cause returns the message of the underlying error, or the public message if there is none.
func (e *AppError) Cause() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// ConfigurationError reports absent credentials or identifiers.
func ConfigurationError(reason, message string, err error) *AppError {
	return &AppError{Kind: KindConfiguration, Reason: reason, Message: message, Err: err}
}

// ValidationError reports a missing or malformed request parameter.
func ValidationError(reason, message string) *AppError {
	return &AppError{Kind: KindValidation, Reason: reason, Message: message}
}

// ProviderError reports a failed call to an external search service.
func ProviderError(reason, message string, err error) *AppError {
	return &AppError{Kind: KindProvider, Reason: reason, Message: message, Err: err}
}

// StorageError reports a failed log write or read.
func StorageError(message string, err error) *AppError {
	return &AppError{Kind: KindStorage, Message: message, Err: err}
}

// InternalError reports any other failure. Message is shown to the caller.
func InternalError(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

// As extracts an *AppError from err.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err is an *AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}

// ErrorResponse is the JSON body of a failed search or log query.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSON writes payload as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; an encoding error cannot be reported.
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError writes err as {"error": message}. Non-application errors are
// sanitized to a generic message.
func WriteError(w http.ResponseWriter, err error) {
	if appErr, ok := As(err); ok {
		WriteJSON(w, appErr.HTTPStatus(), ErrorResponse{Error: appErr.Message})
		return
	}
	WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}
