// Package validation provides field-level validation errors shared by the
// feature usecases and HTTP handlers.
package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Errors maps a field name to the list of problems found with it.
// A non-empty Errors value is returned as an error and rendered as a 400 body.
type Errors map[string][]string

// Add records a message for the given field.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Err returns e as an error when it holds at least one message, nil otherwise.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Error implements the error interface with a deterministic message.
func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e[f], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// As extracts Errors from err if present.
func As(err error) (Errors, bool) {
	var ve Errors
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// FromBinding converts an error returned by gin's ShouldBindJSON into Errors.
// Validator failures are reported per JSON field, anything else (malformed
// JSON, wrong types) is reported under "non_field_errors".
func FromBinding(err error) Errors {
	out := Errors{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			out.Add(jsonName(fe), messageFor(fe))
		}
		return out
	}
	out.Add("non_field_errors", "Invalid request body.")
	return out
}

func jsonName(fe validator.FieldError) string {
	// Field() already resolves json tag names when the validator is
	// configured with RegisterTagNameFunc, otherwise fall back to snake case.
	name := fe.Field()
	if name == fe.StructField() {
		return toSnake(name)
	}
	return name
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", fe.Param())
	default:
		return "Invalid value."
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
