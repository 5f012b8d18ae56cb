// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors
var (
	ErrMissingColumn    = errors.New("required column not mapped")
	ErrUnknownColumn    = errors.New("unknown column")
	ErrNonNumericColumn = errors.New("column is not numeric")
	ErrMissingValue     = errors.New("required value missing")
	ErrInvalidRange     = errors.New("invalid bounds: min exceeds max")
	ErrTooManyFilters   = errors.New("too many filter criteria")
	ErrInvalidDate      = errors.New("invalid date value")
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrDataNotFound     = errors.New("data not found")
	ErrDatabaseError    = errors.New("database error")
	ErrEmptyHeader      = errors.New("dataset has no header row")
)

// ValidationError represents a single validation problem.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ValidationErrors aggregates every validation problem found in one pass so a
// caller can surface all of them at once instead of fixing one at a time.
type ValidationErrors struct {
	Problems []*ValidationError
}

func (e *ValidationErrors) Error() string {
	if len(e.Problems) == 1 {
		return e.Problems[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:", len(e.Problems))
	for _, p := range e.Problems {
		sb.WriteString("\n  - ")
		sb.WriteString(p.Error())
	}
	return sb.String()
}

// Unwrap exposes the problems to errors.Is and errors.As.
func (e *ValidationErrors) Unwrap() []error {
	out := make([]error, len(e.Problems))
	for i, p := range e.Problems {
		out[i] = p
	}
	return out
}

// Add appends a problem to the list.
func (e *ValidationErrors) Add(p *ValidationError) {
	e.Problems = append(e.Problems, p)
}

// Addf appends a problem built from a sentinel and a formatted message.
func (e *ValidationErrors) Addf(field string, value interface{}, sentinel error, format string, args ...interface{}) {
	e.Problems = append(e.Problems, &ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf(format, args...),
		Err:     sentinel,
	})
}

// ErrOrNil returns the list as an error, or nil when no problems were recorded.
func (e *ValidationErrors) ErrOrNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

// DataError represents a problem with the contents of a loaded dataset.
type DataError struct {
	Column  string
	Row     int
	Message string
	Err     error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error [%s] row %d: %s: %v", e.Column, e.Row, e.Message, e.Err)
	}
	return fmt.Sprintf("data error [%s] row %d: %s", e.Column, e.Row, e.Message)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a new DataError.
func NewDataError(column string, row int, message string, err error) *DataError {
	return &DataError{
		Column:  column,
		Row:     row,
		Message: message,
		Err:     err,
	}
}

// StoreError represents an error from the run-history store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error [%s]: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
