package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"foodgram/internal/store"
	"foodgram/internal/validation"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrDuplicateAssociation = errors.New("already exists")
	ErrForbidden            = errors.New("you do not have permission to perform this action")
	ErrSelfReference        = errors.New("you cannot subscribe to yourself")
	ErrUnauthenticated      = errors.New("authentication credentials were not provided")
)

// ValidationError carries field-level messages for a rejected submission.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(e.Fields[field], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// orNil returns e when it holds at least one message.
func (e *ValidationError) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func invalid(field, message string) error {
	v := &ValidationError{}
	v.add(field, message)
	return v
}

func validateStruct(s any) *ValidationError {
	fieldErrors := validation.Struct(s)
	if fieldErrors == nil {
		return &ValidationError{}
	}
	return &ValidationError{Fields: fieldErrors}
}

// translate maps storage sentinels onto the service taxonomy.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	case errors.Is(err, store.ErrUniqueViolation):
		return fmt.Errorf("%s: %w", what, ErrDuplicateAssociation)
	default:
		return err
	}
}
