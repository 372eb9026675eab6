package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeNotFound, "not found", http.StatusNotFound)
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.Message != "not found" {
		t.Errorf("expected message 'not found', got %q", err.Message)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, err.HTTPStatus)
	}
	if err.Retryable {
		t.Error("NOT_FOUND should not be retryable")
	}
}

func TestAppError_InvalidPath(t *testing.T) {
	err := InvalidPath("/etc/passwd")
	if err.Code != ErrCodeInvalidPath {
		t.Errorf("expected INVALID_PATH, got %s", err.Code)
	}
	if err.HTTPStatus != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", err.HTTPStatus)
	}
	if err.Details["path"] != "/etc/passwd" {
		t.Errorf("expected path detail, got %v", err.Details["path"])
	}
	if !strings.Contains(err.Message, "absolute path") {
		t.Errorf("unexpected message %q", err.Message)
	}
}

func TestAppError_StatusMapping(t *testing.T) {
	cases := []struct {
		err    *AppError
		code   ErrorCode
		status int
	}{
		{NotFound("a.txt"), ErrCodeNotFound, http.StatusNotFound},
		{AlreadyExists("a.txt"), ErrCodeAlreadyExists, http.StatusConflict},
		{UnconfiguredDisk("ftp"), ErrCodeUnconfiguredDisk, http.StatusInternalServerError},
		{UnknownDriver("ftp"), ErrCodeUnknownDriver, http.StatusInternalServerError},
		{AlreadyRegistered("local"), ErrCodeAlreadyRegistered, http.StatusInternalServerError},
		{InvalidConfig("local", "root is required"), ErrCodeInvalidConfig, http.StatusInternalServerError},
		{Unauthorized(""), ErrCodeUnauthorized, http.StatusForbidden},
		{Backend("put", fmt.Errorf("boom")), ErrCodeBackend, http.StatusBadGateway},
	}
	for _, tc := range cases {
		if tc.err.Code != tc.code {
			t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
		}
		if tc.err.HTTPStatus != tc.status {
			t.Errorf("%s: expected status %d, got %d", tc.code, tc.status, tc.err.HTTPStatus)
		}
		if tc.err.Retryable {
			t.Errorf("%s should not be retryable", tc.code)
		}
	}
}

func TestAppError_IsSentinel(t *testing.T) {
	wrapped := fmt.Errorf("get: %w", NotFound("missing.txt"))
	if !stderrors.Is(wrapped, ErrNotFound) {
		t.Error("expected wrapped NotFound to match ErrNotFound")
	}
	if stderrors.Is(wrapped, ErrAlreadyExists) {
		t.Error("NotFound must not match ErrAlreadyExists")
	}
	if stderrors.Is(stderrors.New("plain"), ErrNotFound) {
		t.Error("plain error must not match ErrNotFound")
	}
}

func TestAppError_WithCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Internal(nil).WithCause(cause)
	if err.Cause != cause {
		t.Error("expected cause to be set")
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find cause via Unwrap")
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Error() should include cause, got %q", err.Error())
	}
}

func TestAppError_WithDetails(t *testing.T) {
	err := New(ErrCodeInternal, "x", http.StatusInternalServerError).
		WithDetails(map[string]any{"a": 1}).
		WithDetail("b", 2)
	if err.Details["a"] != 1 || err.Details["b"] != 2 {
		t.Errorf("unexpected details %v", err.Details)
	}
}

func TestAppError_ErrorFormat(t *testing.T) {
	err := New(ErrCodeNotFound, "gone", http.StatusNotFound)
	if got := err.Error(); got != "NOT_FOUND: gone" {
		t.Errorf("unexpected format %q", got)
	}
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", AlreadyExists("a"))
	appErr, ok := AsAppError(wrapped)
	if !ok || appErr.Code != ErrCodeAlreadyExists {
		t.Fatalf("expected ALREADY_EXISTS, got %v", appErr)
	}
	if _, ok := AsAppError(stderrors.New("plain")); ok {
		t.Error("plain error should not convert")
	}
	if !IsCode(wrapped, ErrCodeAlreadyExists) {
		t.Error("IsCode should match wrapped code")
	}
}

func TestStatusAndToAppError(t *testing.T) {
	if Status(NotFound("a")) != http.StatusNotFound {
		t.Error("expected 404")
	}
	if Status(stderrors.New("plain")) != http.StatusInternalServerError {
		t.Error("expected 500 for foreign errors")
	}
	if ToAppError(stderrors.New("plain")).Code != ErrCodeInternal {
		t.Error("foreign errors should become INTERNAL_ERROR")
	}
}

func TestToResponse(t *testing.T) {
	resp := NotFound("a.txt").ToResponse()
	if resp.Error.Code != ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", resp.Error.Code)
	}
	if resp.Error.Details["path"] != "a.txt" {
		t.Errorf("expected path detail, got %v", resp.Error.Details)
	}
}
