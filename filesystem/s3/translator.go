package s3

import (
	"errors"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	apperrors "github.com/kbukum/filekit/errors"
)

// isNotFound reports whether err means the object does not exist. HEAD
// responses carry no body, so the HTTP status is checked as well.
func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	if errors.As(err, &nsk) || errors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	var respErr *smithyhttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}

// isPreconditionFailed reports whether a conditional write lost to an
// existing object. 409 ConditionalRequestConflict is a concurrent
// conditional write on the same key.
func isPreconditionFailed(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "PreconditionFailed", "ConditionalRequestConflict":
			return true
		}
	}
	var respErr *smithyhttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusPreconditionFailed
}

// fromS3 converts an SDK error to an AppError. A missing object becomes
// NotFound for path and a failed If-None-Match becomes AlreadyExists;
// anything else is a backend failure of op.
func fromS3(op, path string, err error) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return apperrors.NotFound(path).WithCause(err)
	}
	if isPreconditionFailed(err) {
		return apperrors.AlreadyExists(path).WithCause(err)
	}
	appErr := apperrors.Backend(op, err)
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		appErr = appErr.WithDetail("aws_code", apiErr.ErrorCode())
	}
	return appErr
}
