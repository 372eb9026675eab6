// Package errors provides the structured error type returned by every
// filekit operation.
//
// Errors carry a machine-readable code, a human-readable message, the HTTP
// status the file server answers with, and the underlying cause. Codes map
// one-to-one onto the storage failure taxonomy (invalid path, not found,
// already exists, unconfigured disk, unknown driver, already registered).
//
// Callers match on codes with the standard library:
//
//	if errors.Is(err, apperrors.ErrNotFound) { ... }
package errors
