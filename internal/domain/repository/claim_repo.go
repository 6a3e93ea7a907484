package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yourusername/leaderboard-api/internal/domain/entity"
)

// ClaimRepository выполняет начисление очков и запись в журнал одной транзакцией
type ClaimRepository interface {
	// ApplyClaim атомарно увеличивает total_points пользователя на points и добавляет
	// запись в журнал с тем же количеством. Возвращает ErrNotFound, если пользователя нет.
	ApplyClaim(ctx context.Context, userID uuid.UUID, points int64) (*entity.User, *entity.HistoryRecord, error)
}
