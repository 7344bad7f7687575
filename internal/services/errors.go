package services

import (
	"errors"

	"unipool/internal/utils"
)

// translateError turns repository errors into API errors, naming resource
// when the cause is a missing document.
func translateError(err error, resource string) error {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, utils.ErrNotFound) {
		return utils.NewNotFoundError(resource)
	}
	return utils.NewInternalError(utils.ErrInternalServer, err)
}
