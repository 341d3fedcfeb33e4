package repository

import (
	stderrors "errors"

	"github.com/satvik8373/Rentieo/internal/domain/service"
	"github.com/satvik8373/Rentieo/pkg/errors"
)

// storeError converts a DocumentStore failure into an AppError so raw backend
// errors never leave the repository layer.
func storeError(err error, resource, message string) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, service.ErrNotFound):
		return errors.NotFound(resource, err)
	case stderrors.Is(err, service.ErrPermissionDenied):
		return errors.Forbidden("Permission denied", err)
	case stderrors.Is(err, service.ErrUnavailable):
		return errors.Unavailable("Service temporarily unavailable", err)
	}
	return errors.Internal(message, err)
}
