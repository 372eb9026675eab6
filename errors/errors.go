package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the status the file server answers with for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an AppError with the same code, so the
// sentinels below work with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// Sentinels for errors.Is matching. Never mutate them.
var (
	ErrInvalidPath       = &AppError{Code: ErrCodeInvalidPath}
	ErrNotFound          = &AppError{Code: ErrCodeNotFound}
	ErrAlreadyExists     = &AppError{Code: ErrCodeAlreadyExists}
	ErrUnconfiguredDisk  = &AppError{Code: ErrCodeUnconfiguredDisk}
	ErrUnknownDriver     = &AppError{Code: ErrCodeUnknownDriver}
	ErrAlreadyRegistered = &AppError{Code: ErrCodeAlreadyRegistered}
	ErrInvalidConfig     = &AppError{Code: ErrCodeInvalidConfig}
	ErrUnauthorized      = &AppError{Code: ErrCodeUnauthorized}
	ErrBackend           = &AppError{Code: ErrCodeBackend}
)

// --- Storage error constructors ---

// InvalidPath creates an error for a path the storage layer refuses to touch.
func InvalidPath(path string) *AppError {
	return &AppError{
		Code:       ErrCodeInvalidPath,
		Message:    fmt.Sprintf("The path %s is an absolute path. Only file names and sub paths can be used within storage.", path),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"path": path},
	}
}

// NamesRoot returns an AppError for a path that resolves to the disk root
// itself where a file was expected.
func NamesRoot(path string) *AppError {
	return &AppError{
		Code:       ErrCodeInvalidPath,
		Message:    fmt.Sprintf("The path %q names the disk root, not a file.", path),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"path": path},
	}
}

// EscapesRoot creates an InvalidPath error for a relative path that resolves
// outside the disk root.
func EscapesRoot(path string) *AppError {
	return &AppError{
		Code:       ErrCodeInvalidPath,
		Message:    fmt.Sprintf("The path %s resolves outside of the disk root.", path),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"path": path},
	}
}

// NotFound creates an error for an object that does not exist.
func NotFound(path string) *AppError {
	return &AppError{
		Code:       ErrCodeNotFound,
		Message:    fmt.Sprintf("File %s does not exist.", path),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"path": path},
	}
}

// AlreadyExists creates an error for a create-only write onto an existing object.
func AlreadyExists(path string) *AppError {
	return &AppError{
		Code:       ErrCodeAlreadyExists,
		Message:    fmt.Sprintf("File %s already exists.", path),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"path": path},
	}
}

// UnconfiguredDisk creates an error for a disk missing from filesystem.disks.
func UnconfiguredDisk(disk string) *AppError {
	return &AppError{
		Code:       ErrCodeUnconfiguredDisk,
		Message:    fmt.Sprintf("Disk %s is not configured inside the filesystem.disks configuration.", disk),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"disk": disk},
	}
}

// UnknownDriver creates an error for a driver name with no registered factory.
func UnknownDriver(driver string) *AppError {
	return &AppError{
		Code:       ErrCodeUnknownDriver,
		Message:    fmt.Sprintf("Driver %s does not exist. Register it on the driver registry first.", driver),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"driver": driver},
	}
}

// AlreadyRegistered creates an error for a duplicate driver registration.
func AlreadyRegistered(driver string) *AppError {
	return &AppError{
		Code:       ErrCodeAlreadyRegistered,
		Message:    fmt.Sprintf("Driver %s already exists.", driver),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"driver": driver},
	}
}

// InvalidConfig creates an error for a disk configuration a driver rejects.
func InvalidConfig(disk, reason string) *AppError {
	return &AppError{
		Code:       ErrCodeInvalidConfig,
		Message:    fmt.Sprintf("Disk %s has an invalid configuration: %s", disk, reason),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"disk": disk},
	}
}

// InvalidInput creates an error for a malformed non-path argument.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code:       ErrCodeInvalidInput,
		Message:    fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// Validation creates an INVALID_CONFIG error from collected validation messages.
func Validation(message string) *AppError {
	return &AppError{
		Code:       ErrCodeInvalidConfig,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// Unauthorized creates an error for a rejected URL signature.
func Unauthorized(reason string) *AppError {
	if reason == "" {
		reason = "A valid signature is required."
	}
	return &AppError{
		Code:       ErrCodeUnauthorized,
		Message:    reason,
		HTTPStatus: http.StatusForbidden,
	}
}

// Backend creates an error for a failed backend call.
func Backend(op string, cause error) *AppError {
	return &AppError{
		Code:       ErrCodeBackend,
		Message:    fmt.Sprintf("The storage backend failed during %s.", op),
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{"operation": op},
		Cause:      cause,
	}
}

// Internal creates a new AppError for an unexpected local failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       ErrCodeInternal,
		Message:    "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// IsCode reports whether err (or anything it wraps) is an AppError with code.
func IsCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
