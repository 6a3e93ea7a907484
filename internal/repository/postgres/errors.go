package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	apperrors "github.com/yourusername/leaderboard-api/internal/pkg/errors"
)

// pgUniqueViolation - SQLSTATE нарушения уникального индекса
const pgUniqueViolation = "23505"

// translateError приводит ошибки GORM/pgx к ошибкам приложения.
// Ошибки, уже являющиеся ошибками приложения, возвращаются как есть.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, apperrors.ErrNotFound) ||
		errors.Is(err, apperrors.ErrConflict) ||
		errors.Is(err, apperrors.ErrValidation) ||
		errors.Is(err, apperrors.ErrStoreUnavailable) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.ErrConflict
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", apperrors.ErrConflict, pgErr.ConstraintName)
	}

	return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
}
