package catalog

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("record conflict")
	ErrTransient    = errors.New("backing store unavailable")
	ErrUnauthorized = errors.New("backing store rejected credentials")
)

// ValidationError reports malformed input to a mutation or query.
type ValidationError struct {
	Kind   string `json:"kind,omitempty"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("invalid %s: %s %s", e.Kind, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

func transient(err error) error {
	return fmt.Errorf("%w: %w", ErrTransient, err)
}

// Outcome classifies err for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidation):
		return "invalid"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrTransient):
		return "transient"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case isContextErr(err):
		return "canceled"
	default:
		return "error"
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
