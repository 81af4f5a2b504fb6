// Package validation holds the error types services return for rejected input,
// plus the small set of field checks shared by the users, employees and tournaments services.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps request fields to validation issues.
type FieldErrors map[string][]string

// Add records message against field.
func (f FieldErrors) Add(field, message string) {
	if f == nil {
		return
	}
	f[field] = append(f[field], message)
}

// Err returns a *Error when any field failed, nil otherwise.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return &Error{Fields: f}
}

// Error is returned when the input payload is invalid.
type Error struct {
	Fields FieldErrors
}

func (v *Error) Error() string {
	return "validation error"
}

// New builds a single-field validation error.
func New(field, message string) error {
	fe := FieldErrors{}
	fe.Add(field, message)
	return fe.Err()
}

// As extracts the validation error from err.
func As(err error) (*Error, bool) {
	var v *Error
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// Rule tags registered on the shared validator in addition to the built-in ones.
const (
	TagDecimal = "decimal2"
	TagPhone   = "phone"
)

var (
	decimalPattern = regexp.MustCompile(`^\d{1,10}(\.\d{1,2})?$`)
	phonePattern   = regexp.MustCompile(`^\+?[0-9]{6,15}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation(TagDecimal, func(fl validator.FieldLevel) bool {
		return decimalPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation(TagPhone, func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// Var reports whether value satisfies the validator tag expression, e.g. "email" or "max=255".
func Var(value any, tag string) bool {
	return validate.Var(value, tag) == nil
}

// Email reports whether value is a bare address such as ops@example.com.
func Email(value string) bool {
	return Var(value, "required,email")
}

// Decimal reports whether value is a non-negative amount with at most two fraction digits.
func Decimal(value string) bool {
	return Var(value, TagDecimal)
}

// Phone reports whether value looks like a whatsapp/phone number.
func Phone(value string) bool {
	return Var(value, TagPhone)
}

// OneOf reports whether value is one of allowed. Allowed values must not contain spaces.
func OneOf(value string, allowed ...string) bool {
	if len(allowed) == 0 {
		return false
	}
	return Var(value, "oneof="+strings.Join(allowed, " "))
}

// Required trims value and records a "required" issue when nothing is left.
func (f FieldErrors) Required(field, value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		f.Add(field, field+" is required")
	}
	return trimmed
}

// Enum records an issue when value is not one of allowed.
func (f FieldErrors) Enum(field, value string, allowed ...string) {
	if !OneOf(value, allowed...) {
		f.Add(field, fmt.Sprintf("%s should be one of: %s", field, strings.Join(allowed, ", ")))
	}
}
