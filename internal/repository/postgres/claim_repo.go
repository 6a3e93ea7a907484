package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/leaderboard-api/internal/domain/entity"
	apperrors "github.com/yourusername/leaderboard-api/internal/pkg/errors"
)

// ClaimRepo реализует repository.ClaimRepository
type ClaimRepo struct {
	db *gorm.DB
}

// NewClaimRepo создает новый репозиторий начислений
func NewClaimRepo(db *gorm.DB) *ClaimRepo {
	return &ClaimRepo{db: db}
}

// ApplyClaim увеличивает очки пользователя и пишет запись в журнал в одной транзакции.
// Инкремент выполняется одним UPDATE ... RETURNING, без чтения перед записью,
// поэтому параллельные начисления одному пользователю не теряются.
func (r *ClaimRepo) ApplyClaim(ctx context.Context, userID uuid.UUID, points int64) (*entity.User, *entity.HistoryRecord, error) {
	var user entity.User
	var record *entity.HistoryRecord

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&user).
			Clauses(clause.Returning{}).
			Where("id = ?", userID).
			UpdateColumns(map[string]interface{}{
				"total_points": gorm.Expr("total_points + ?", points),
				"updated_at":   time.Now().UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}

		record = &entity.HistoryRecord{
			UserID:        userID,
			PointsClaimed: points,
		}
		return tx.Create(record).Error
	})
	if err != nil {
		return nil, nil, translateError(err)
	}

	return &user, record, nil
}
