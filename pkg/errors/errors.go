package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when authentication fails
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrValidation is returned when validation fails
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ErrConfig is returned when an operation needs configuration that is missing.
type ErrConfig struct {
	Message string
}

func (e *ErrConfig) Error() string {
	return e.Message
}

// UserError is one field-level error reported by a Shopify mutation.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
}

// ErrUserErrors carries the userErrors list of a mutation verbatim.
type ErrUserErrors struct {
	Operation string
	Errors    []UserError
}

func (e *ErrUserErrors) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ue := range e.Errors {
		msgs[i] = ue.Message
	}
	return fmt.Sprintf("%s userErrors: %s", e.Operation, strings.Join(msgs, "; "))
}

// ErrBackup is returned when a local backup cannot be written or read.
type ErrBackup struct {
	AssetKey string
	Err      error
}

func (e *ErrBackup) Error() string {
	return fmt.Sprintf("backup of %s failed: %v", e.AssetKey, e.Err)
}

func (e *ErrBackup) Unwrap() error { return e.Err }

// ErrInjectionPoint is returned when a template lacks the markup the patcher anchors on.
type ErrInjectionPoint struct {
	AssetKey string
}

func (e *ErrInjectionPoint) Error() string {
	return fmt.Sprintf("Injection point not found in '%s'", e.AssetKey)
}

// HTTPStatus maps an error to the status code a handler should answer with.
func HTTPStatus(err error) int {
	var (
		notFound  *ErrNotFound
		unauth    *ErrUnauthorized
		valid     *ErrValidation
		cfg       *ErrConfig
		userErrs  *ErrUserErrors
		backupErr *ErrBackup
		injection *ErrInjectionPoint
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &unauth):
		return http.StatusUnauthorized
	case errors.As(err, &valid), errors.As(err, &userErrs), errors.As(err, &injection):
		return http.StatusBadRequest
	case errors.As(err, &cfg), errors.As(err, &backupErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
