package engine

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// ErrMissingCredentials marks a backend configured without a usable API key.
var ErrMissingCredentials = errors.New("missing or placeholder API key")

// BackendError wraps a failure to get an answer from a provider at all:
// transport errors, authentication failures, malformed provider responses.
type BackendError struct {
	Provider string
	Op       string
	Err      error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s backend: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// NewBackendError wraps err, leaving nil untouched.
func NewBackendError(provider, op string, err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{Provider: provider, Op: op, Err: err}
}

// IsBackendUnavailable reports whether err means the backend could not be used and
// the caller should degrade to offline mode. Cancellation of the caller's context is
// not unavailability.
func IsBackendUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var be *BackendError
	if errors.As(err, &be) {
		return true
	}
	return errors.Is(err, ErrMissingCredentials)
}
