package services

import (
	"context"
	"errors"

	apperrors "github.com/jeonghun43/Prism/pkg/errors"
)

// asStoreError translates a failed store call into the application error
// taxonomy. Deadline expiry becomes a retryable timeout; everything else is
// a retryable database error whose detail stays out of user-facing messages.
func asStoreError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if appErr := apperrors.GetAppError(err); appErr != nil {
		return appErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeoutError(operation)
	}
	return apperrors.NewDatabaseError(operation, err)
}
