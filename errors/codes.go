package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Path and object errors
const (
	// ErrCodeInvalidPath indicates an absolute (or root-escaping) path was supplied.
	ErrCodeInvalidPath ErrorCode = "INVALID_PATH"
	// ErrCodeNotFound indicates the object is absent on the active backend.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeAlreadyExists indicates a create-only operation hit an existing object.
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
)

// Configuration errors
const (
	// ErrCodeUnconfiguredDisk indicates the disk name has no configuration entry.
	ErrCodeUnconfiguredDisk ErrorCode = "UNCONFIGURED_DISK"
	// ErrCodeUnknownDriver indicates the disk's driver has no registered factory.
	ErrCodeUnknownDriver ErrorCode = "UNKNOWN_DRIVER"
	// ErrCodeAlreadyRegistered indicates a driver name was registered twice.
	ErrCodeAlreadyRegistered ErrorCode = "ALREADY_REGISTERED"
	// ErrCodeInvalidConfig indicates a disk configuration a driver cannot accept.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeInvalidInput indicates a malformed argument other than a path.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeUnauthorized indicates a missing or invalid URL signature.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected local failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeBackend indicates the storage backend rejected or failed a request.
	ErrCodeBackend ErrorCode = "BACKEND_ERROR"
)

// Absence is not transient and the façade never retries, so nothing is
// retryable today. The table stays so callers can ask uniformly.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeBackend:  false,
	ErrCodeInternal: false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
