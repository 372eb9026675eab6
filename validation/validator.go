package validation

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/kbukum/filekit/errors"
)

// Validator collects validation errors.
type Validator struct {
	errors []FieldError
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{
		errors: make([]FieldError, 0),
	}
}

// AddError adds a field error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Validate returns an INVALID_CONFIG AppError if errors were collected.
func (v *Validator) Validate() error {
	if !v.HasErrors() {
		return nil
	}

	messages := make([]string, len(v.errors))
	for i, e := range v.errors {
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}

	appErr := errors.Validation(strings.Join(messages, "; "))
	appErr.Details = map[string]any{
		"fields": v.errors,
	}
	return appErr
}

// Required checks that a string is non-blank.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// Pair checks that two fields are either both set or both empty.
func (v *Validator) Pair(fieldA, valueA, fieldB, valueB string) *Validator {
	if (valueA == "") != (valueB == "") {
		v.AddError(fieldA, fmt.Sprintf("must be set together with %s", fieldB))
	}
	return v
}

// RelativePath checks that an optional path is relative and stays inside
// its parent once cleaned.
func (v *Validator) RelativePath(field, value string) *Validator {
	if value == "" {
		return v
	}
	if path.IsAbs(value) || filepath.IsAbs(value) {
		v.AddError(field, "must be a relative path")
		return v
	}
	if clean := path.Clean(filepath.ToSlash(value)); clean == ".." || strings.HasPrefix(clean, "../") {
		v.AddError(field, "must not leave its parent directory")
	}
	return v
}

// URL checks that an optional value is an absolute http(s) URL.
func (v *Validator) URL(field, value string) *Validator {
	if value == "" {
		return v
	}
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		v.AddError(field, "must be a valid URL")
	}
	return v
}

// OneOf checks that a value is one of the allowed options.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.AddError(field, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Custom adds an error when condition is false.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}
