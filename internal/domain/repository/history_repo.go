package repository

import (
	"context"

	"github.com/yourusername/leaderboard-api/internal/domain/entity"
)

// HistoryRepository определяет методы для работы с журналом начислений
type HistoryRepository interface {
	// ListPage возвращает страницу журнала (новые сверху) и общее количество записей
	ListPage(ctx context.Context, limit, offset int) ([]entity.HistoryEntry, int64, error)
	// ListAll возвращает весь журнал (новые сверху), используется для экспорта
	ListAll(ctx context.Context) ([]entity.HistoryEntry, error)
	// DeleteAll очищает журнал и возвращает количество удаленных записей
	DeleteAll(ctx context.Context) (int64, error)
}
