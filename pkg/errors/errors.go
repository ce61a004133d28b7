// Package errors defines the coded error taxonomy shared by the compute engine
// and the collaborators around it.
package errors

import (
	"errors"
	"fmt"
)

// Error codes.
const (
	CodeUnknown       = "UNKNOWN_ERROR"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeResource      = "RESOURCE_ERROR"
	CodeWorkerFailure = "WORKER_FAILURE"
	CodeUnsupported   = "UNSUPPORTED_OPERATION"
	CodeCancelled     = "CANCELLED"
	CodeConfigError   = "CONFIG_ERROR"
	CodeDatabaseError = "DATABASE_ERROR"
	CodeStorageError  = "STORAGE_ERROR"
	CodeNotFound      = "NOT_FOUND"
	CodeIllegalState  = "ILLEGAL_STATE"
)

// AppError carries a stable code next to a human readable message.
type AppError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports a match when target is an *AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(code string, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new AppError with a formatted message.
func Newf(code string, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with an AppError.
func Wrap(code string, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Sentinels for errors.Is matching by code.
var (
	ErrInvalidInput  = New(CodeInvalidInput, "invalid input")
	ErrResource      = New(CodeResource, "resource error")
	ErrWorkerFailure = New(CodeWorkerFailure, "worker failure")
	ErrUnsupported   = New(CodeUnsupported, "unsupported operation")
	ErrCancelled     = New(CodeCancelled, "computation cancelled")
	ErrConfigError   = New(CodeConfigError, "configuration error")
	ErrDatabaseError = New(CodeDatabaseError, "database error")
	ErrStorageError  = New(CodeStorageError, "storage error")
	ErrNotFound      = New(CodeNotFound, "resource not found")
	ErrIllegalState  = New(CodeIllegalState, "illegal state")
)

// IsInvalidInput checks if the error is an input error.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsCancelled checks if the error reports a cancelled computation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// IsUnsupported checks if the error reports an unsupported operation.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupported)
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetErrorMessage extracts the error message from an error.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
