package postgres

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"github.com/yourusername/leaderboard-api/internal/domain/entity"
)

// historyEntryColumns - колонки журнала вместе с текущим именем пользователя
const historyEntryColumns = "h.id, h.user_id, COALESCE(u.name, '') AS user_name, h.points_claimed, h.timestamp"

// HistoryRepo реализует repository.HistoryRepository
type HistoryRepo struct {
	db *gorm.DB
}

// NewHistoryRepo создает новый репозиторий журнала начислений
func NewHistoryRepo(db *gorm.DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

// entriesQuery строит запрос журнала с JOIN на пользователей, новые записи сверху
func entriesQuery(tx *gorm.DB) *gorm.DB {
	return tx.Table("claim_history AS h").
		Select(historyEntryColumns).
		Joins("LEFT JOIN users u ON u.id = h.user_id").
		Order("h.timestamp DESC, h.id DESC")
}

// ListPage возвращает страницу журнала и общее количество записей.
// Подсчет и выборка выполняются в одной read-only транзакции с REPEATABLE READ,
// чтобы total и страница соответствовали одному снимку данных.
func (r *HistoryRepo) ListPage(ctx context.Context, limit, offset int) ([]entity.HistoryEntry, int64, error) {
	var entries []entity.HistoryEntry
	var total int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.HistoryRecord{}).Count(&total).Error; err != nil {
			return err
		}
		return entriesQuery(tx).
			Limit(limit).
			Offset(offset).
			Scan(&entries).Error
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, 0, translateError(err)
	}

	if entries == nil {
		entries = []entity.HistoryEntry{}
	}
	return entries, total, nil
}

// ListAll возвращает весь журнал для экспорта
func (r *HistoryRepo) ListAll(ctx context.Context) ([]entity.HistoryEntry, error) {
	var entries []entity.HistoryEntry
	if err := entriesQuery(r.db.WithContext(ctx)).Scan(&entries).Error; err != nil {
		return nil, translateError(err)
	}
	return entries, nil
}

// DeleteAll очищает журнал и возвращает количество удаленных записей
func (r *HistoryRepo) DeleteAll(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&entity.HistoryRecord{})
	if result.Error != nil {
		return 0, translateError(result.Error)
	}
	return result.RowsAffected, nil
}
