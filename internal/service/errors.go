package service

import (
	"fmt"

	apperrors "github.com/yourusername/leaderboard-api/internal/pkg/errors"
)

// validationError оборачивает apperrors.ErrValidation понятным клиенту сообщением.
// errors.Is(err, apperrors.ErrValidation) остается истинным.
func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", apperrors.ErrValidation, fmt.Sprintf(format, args...))
}
