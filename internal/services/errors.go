package services

import (
	"errors"
	"fmt"
)

// Sentinel errors the handlers map to HTTP statuses. Geolocation failures
// are absorbed inside the resolver and never surface here.
var (
	ErrAliasConflict = errors.New("alias already in use")
	ErrLinkNotFound  = errors.New("link not found")
	ErrLinkExpired   = errors.New("link expired")
)

// ValidationError rejects malformed input before anything touches storage.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
