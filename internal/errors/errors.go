// Package errors provides the domain error taxonomy for the data quality
// engine.
//
// ValidationError surfaces immediately and prevents the operation from being
// created. NotFoundError and StoreError are recorded as per-item failures and
// never abort a batch. RollbackError is fatal for the affected operation only.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ValidationError indicates an unknown operation type or strategy, or
// malformed params.
type ValidationError struct {
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("validation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// NewValidation creates a ValidationError with a formatted message.
func NewValidation(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError indicates a referenced entity is absent from the store.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// NewNotFound creates a NotFoundError for the given entity kind and id.
func NewNotFound(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// StoreError indicates a backing-store failure. The engine does not retry;
// retry policy, if any, belongs to the store collaborator.
type StoreError struct {
	Op    string
	Cause error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: %s: %v", e.Op, e.Cause)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// RollbackError indicates a reversal step failed. The operation is left in
// rollback_failed and requires manual reconciliation; it is never retried
// automatically.
type RollbackError struct {
	OperationID string
	Cause       error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("rollback failed for operation %s: %v", e.OperationID, e.Cause)
}

func (e *RollbackError) Unwrap() error {
	return e.Cause
}

// IsValidation reports whether any error in err's chain is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return stderrors.As(err, &ve)
}

// IsNotFound reports whether any error in err's chain is a NotFoundError.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return stderrors.As(err, &nfe)
}

// IsStore reports whether any error in err's chain is a StoreError.
func IsStore(err error) bool {
	var se *StoreError
	return stderrors.As(err, &se)
}

// IsRollback reports whether any error in err's chain is a RollbackError.
func IsRollback(err error) bool {
	var re *RollbackError
	return stderrors.As(err, &re)
}
