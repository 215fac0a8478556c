package quiz

import (
	"errors"
	"fmt"
)

// ErrQuizNotFound is returned when a quiz id does not resolve.
var ErrQuizNotFound = errors.New("quiz not found")

// ValidationError reports missing or malformed caller input. It is
// surfaced to the caller immediately and never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Invalid builds a ValidationError for field.
func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
