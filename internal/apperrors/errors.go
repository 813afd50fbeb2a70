package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the request conflicts with the current state of the resource.
var ErrConflict = errors.New("resource state conflict")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// ErrUnbalancedEntry indicates that a proposed journal entry does not balance
// (sum of debits != sum of credits for some currency). This is always a
// programming or business-logic defect, never user-retryable.
var ErrUnbalancedEntry = errors.New("journal entry is not balanced")

// ErrUnknownAccount indicates a journal line references an account that is
// absent or inactive.
var ErrUnknownAccount = errors.New("unknown or inactive account")

// ErrPreconditionFailed indicates a business precondition was not met
// (capacity exceeded, duplicate enrollment, missing fee structure, ...).
var ErrPreconditionFailed = errors.New("business precondition failed")

// ErrGracePeriodExpired indicates an attempt to reverse or delete a posted
// record past its grace window.
var ErrGracePeriodExpired = errors.New("grace period expired")

// ErrTransientConflict indicates a lock wait timeout or deadlock. Callers may
// retry; the posting retry policy treats only this error as retryable.
var ErrTransientConflict = errors.New("transient lock conflict")

// ErrIntegrityDrift indicates that incrementally maintained balances disagree
// with a full recompute beyond tolerance. It is surfaced for operator action,
// never auto-corrected.
var ErrIntegrityDrift = errors.New("balance integrity drift detected")

// AppError carries an HTTP-ish status code alongside a message and the
// underlying cause. Repositories use it for failures that have no sentinel.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that also matches ErrNotFound via errors.Is.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
