package user

import (
	"errors"
	"fmt"
	"strings"
)

const modelName = "User"

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

var ErrNotFound = errors.New("user not found")

type FieldError struct {
	Field   string
	Message string
}

// ValidationError reports field-level problems with a create request.
// The message names the first offending field only.
type ValidationError struct {
	Model  string
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return e.Model + " validation failed"
	}
	first := e.Errors[0]
	return fmt.Sprintf("%s validation failed: %s: %s", e.Model, first.Field, first.Message)
}

func requiredError(field string) FieldError {
	return FieldError{Field: field, Message: fmt.Sprintf("Path `%s` is required.", field)}
}

func passwordTooLongError() FieldError {
	return FieldError{
		Field:   "password",
		Message: fmt.Sprintf("Path `password` is longer than the maximum allowed length (%d).", MaxPasswordBytes),
	}
}

func duplicateEmailError() *ValidationError {
	return &ValidationError{
		Model:  modelName,
		Errors: []FieldError{{Field: "email", Message: "already exists in the database"}},
	}
}

// Validate checks required fields in declaration order: name, email, password.
// Whitespace-only values count as missing. Passwords are capped at
// MaxPasswordBytes bytes.
func Validate(in CreateInput) []FieldError {
	var errs []FieldError
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, requiredError("name"))
	}
	if strings.TrimSpace(in.Email) == "" {
		errs = append(errs, requiredError("email"))
	}
	switch {
	case strings.TrimSpace(in.Password) == "":
		errs = append(errs, requiredError("password"))
	case len(in.Password) > MaxPasswordBytes:
		errs = append(errs, passwordTooLongError())
	}
	return errs
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
