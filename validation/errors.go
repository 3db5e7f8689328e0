package validation

import (
	"errors"
	"strings"
)

// FieldError is one rejected field of a form.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors collects every field problem of one form. It is returned as a single
// error so callers can errors.As it back.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a field error
func (e *Errors) Add(field, message string) {
	*e = append(*e, FieldError{Field: field, Message: message})
}

// Err returns nil when nothing was added
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// IsValidation reports whether err carries validation Errors
func IsValidation(err error) bool {
	var ve Errors
	return errors.As(err, &ve)
}

// Fields returns the field errors inside err, or nil
func Fields(err error) []FieldError {
	var ve Errors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
