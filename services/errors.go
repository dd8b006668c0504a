package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("not authenticated")
	ErrForbidden       = errors.New("access forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")

	ErrInvalidToken              = fmt.Errorf("%w: invalid token", ErrUnauthenticated)
	ErrInvalidCredentials        = errors.New("invalid credentials")
	ErrDuplicateEmail            = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrAlreadyCollaborator       = fmt.Errorf("%w: user is already a collaborator", ErrConflict)
	ErrOwnerCannotBeCollaborator = errors.New("the project owner cannot be added as a collaborator")
	ErrUserNotFound              = fmt.Errorf("%w: no user with that email", ErrNotFound)
	ErrProjectNotFound           = fmt.Errorf("%w: project not found", ErrNotFound)
	ErrTaskNotFound              = fmt.Errorf("%w: task not found", ErrNotFound)
	ErrAssigneeNotMember         = errors.New("assigned user is not a member of the project")
)

type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

// ValidationError lists every rejected input field. It matches ErrValidation.
type ValidationError struct {
	Fields []FieldError
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Msg: msg}}}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Msg)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
