// Package apperrors defines the errors that cross from the store and the
// record schema into the HTTP layer.
package apperrors

import (
	"fmt"
	"strings"
)

// FieldError describes one offending input field.
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationError is returned when a payload or path parameter fails
// schema validation. It never reaches storage.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, strings.Join(f.Loc, ".")+": "+f.Msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a field error and returns the receiver.
func (e *ValidationError) Add(loc []string, msg, typ string) *ValidationError {
	e.Fields = append(e.Fields, FieldError{Loc: loc, Msg: msg, Type: typ})
	return e
}

// Has reports whether a field error is already recorded for the named
// field at any location.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if len(f.Loc) > 0 && f.Loc[len(f.Loc)-1] == field {
			return true
		}
	}
	return false
}

// NotFoundError means no student has the requested identifier.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("student %d not found", e.ID)
}

// StorageError wraps a connectivity or constraint failure from the store.
type StorageError struct {
	Op  string
	Err error
}

func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// Error returns the underlying failure text, which is what clients see.
func (e *StorageError) Error() string {
	if e.Err == nil {
		return e.Op + ": storage failure"
	}
	return e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }
