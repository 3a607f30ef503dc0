package remote

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalid      = errors.New("invalid request")
)

// Error is a non-2xx answer from the history service
type Error struct {
	Method  string
	Path    string
	Status  int
	Message string // The service's {"error": ...} payload, if any
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

// Unwrap maps the status onto the package sentinels so errors.Is works
func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrInvalid
	}
	return nil
}

// Message returns the service-provided error text carried by err, or ""
// when err did not come from a service error payload.
func Message(err error) string {
	var remoteErr *Error
	if errors.As(err, &remoteErr) {
		return remoteErr.Message
	}
	return ""
}

// IsUnauthorized reports whether err is a 401 from the service
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var remoteErr *Error
	if errors.As(err, &remoteErr) {
		return remoteErr.Status >= http.StatusInternalServerError
	}
	return true
}
