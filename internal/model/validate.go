package model

import (
	"fmt"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ValidateLead checks a Lead for constraint violations.
// It returns a *ValidationError if any rules fail, or nil if the lead is valid.
func ValidateLead(l *Lead) error {
	var ve ValidationError

	if strings.TrimSpace(l.FirstName) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "first_name", Message: "is required"})
	}
	if strings.TrimSpace(l.LastName) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "last_name", Message: "is required"})
	}

	// Email: required but free-text; format is not enforced here.
	if strings.TrimSpace(l.Email) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "email", Message: "is required"})
	}

	// Source and status: closed enums, unrecognized values are rejected
	// before they reach the store.
	if !l.Source.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "source",
			Message: fmt.Sprintf("invalid value %q", l.Source),
		})
	}
	if !l.Status.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "status",
			Message: fmt.Sprintf("invalid value %q", l.Status),
		})
	}

	// Score is intentionally not clamped to 0-100.

	if l.LeadValue < 0 {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "lead_value",
			Message: fmt.Sprintf("must be non-negative, got %v", l.LeadValue),
		})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}
