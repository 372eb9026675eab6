package gcs

import (
	"errors"
	"net/http"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"

	apperrors "github.com/kbukum/filekit/errors"
)

// fromGCS converts a client error to an AppError for path.
func fromGCS(op, path string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrObjectNotExist) {
		return apperrors.NotFound(path).WithCause(err)
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		switch gErr.Code {
		case http.StatusNotFound:
			return apperrors.NotFound(path).WithCause(err)
		case http.StatusPreconditionFailed:
			return apperrors.AlreadyExists(path).WithCause(err)
		}
		return apperrors.Backend(op, err).WithDetail("status", gErr.Code)
	}
	return apperrors.Backend(op, err)
}
