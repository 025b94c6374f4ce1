// Package apperr defines the error taxonomy shared by the ingestion and chat
// paths. Handlers map these to HTTP codes; services create them; raw provider
// errors are logged where they occur and never travel past a ProviderError.
package apperr

import (
	"errors"
	"fmt"
)

// ConfigurationError reports an invalid or incomplete configuration, scoped to
// the field that caused it. It is raised at validation or build time, never
// mid-pipeline.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewConfigurationError(field, message string) *ConfigurationError {
	return &ConfigurationError{Field: field, Message: message}
}

// NotFoundError reports a missing tenant, assistant, document or conversation.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// ProviderError wraps a failed parse/embed/generate call. Message is safe to
// return to callers; the wrapped error carries the raw provider detail and is
// only ever logged.
type ProviderError struct {
	Op      string // "parse", "embed", "generate"
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider failed: %s", e.Op, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func NewProviderError(op, message string, err error) *ProviderError {
	return &ProviderError{Op: op, Message: message, Err: err}
}

// IsConfiguration reports whether err is a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

// IsProvider reports whether err is a ProviderError.
func IsProvider(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}

// Sanitized returns a message suitable for persisting on a document or
// returning to a caller. Configuration and not-found errors are already safe;
// provider errors hide the wrapped detail; anything else is collapsed to a
// generic message.
func Sanitized(err error) string {
	switch {
	case err == nil:
		return ""
	case IsConfiguration(err), IsNotFound(err):
		return err.Error()
	case IsProvider(err):
		var pe *ProviderError
		errors.As(err, &pe)
		return pe.Error()
	default:
		return "internal processing error"
	}
}
