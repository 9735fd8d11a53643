package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is matched by every NotFoundError.
var ErrNotFound = errors.New("yogitrack: not found")

// Entity names used in not-found messages.
const (
	EntityInstructor = "Instructor"
	EntityClass      = "Class"
	EntityCustomer   = "Customer"
	EntityPackage    = "Package"
	EntitySale       = "Sale"
	EntityAttendance = "Attendance record"
)

// NotFoundError reports that a referenced entity does not resolve.
type NotFoundError struct {
	Entity string
}

func NotFound(entity string) *NotFoundError {
	return &NotFoundError{Entity: entity}
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError represents a rejected field value. Allowed is set when the
// field is restricted to an enumerated set.
type ValidationError struct {
	Field   string
	Message string
	Allowed []string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// CheckEnum fails unless value is one of allowed.
func CheckEnum(field, value string, allowed []string) error {
	for _, a := range allowed {
		if a == value {
			return nil
		}
	}
	quoted := make([]string, len(allowed))
	for i, a := range allowed {
		quoted[i] = `"` + a + `"`
	}
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("%s must be one of %s", field, strings.Join(quoted, ", ")),
		Allowed: append([]string(nil), allowed...),
	}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
