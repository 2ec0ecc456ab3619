package pipeline

import (
	"errors"
	"fmt"

	"garment-erp/internal/storage"
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// AuthorizationError reports a row that does not belong to, or is not
// approved for, the caller.
type AuthorizationError struct {
	Msg string
}

func (e *AuthorizationError) Error() string { return e.Msg }

type NotFoundError struct {
	Entity string
	ID     any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

type DuplicateError struct {
	Msg string
}

func (e *DuplicateError) Error() string { return e.Msg }

// InsufficientRemainderError is returned when a write asks for more pieces of
// a size than the upstream stage has left.
type InsufficientRemainderError struct {
	Label     string
	Requested int
	Remain    int
}

func (e *InsufficientRemainderError) Error() string {
	return fmt.Sprintf("size %s: requested %d pieces but only %d remain", e.Label, e.Requested, e.Remain)
}

// ExternalDependencyError wraps database or storage failures.
type ExternalDependencyError struct {
	Op  string
	Err error
}

func (e *ExternalDependencyError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *ExternalDependencyError) Unwrap() error { return e.Err }

func validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func authorizationf(format string, args ...any) error {
	return &AuthorizationError{Msg: fmt.Sprintf(format, args...)}
}

// storeErr classifies an error coming back from the Store. Errors that are
// already part of the taxonomy pass through untouched.
func storeErr(op, entity string, id any, err error) error {
	if err == nil {
		return nil
	}
	if isTyped(err) {
		return err
	}
	if errors.Is(err, storage.ErrNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	if errors.Is(err, storage.ErrDuplicate) {
		return &DuplicateError{Msg: fmt.Sprintf("%s %v already exists", entity, id)}
	}
	return &ExternalDependencyError{Op: op, Err: err}
}

func isTyped(err error) bool {
	var (
		v *ValidationError
		a *AuthorizationError
		n *NotFoundError
		d *DuplicateError
		r *InsufficientRemainderError
		x *ExternalDependencyError
	)
	return errors.As(err, &v) || errors.As(err, &a) || errors.As(err, &n) ||
		errors.As(err, &d) || errors.As(err, &r) || errors.As(err, &x)
}
