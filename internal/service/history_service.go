package service

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/yourusername/leaderboard-api/internal/domain/entity"
	"github.com/yourusername/leaderboard-api/internal/domain/repository"
	"github.com/yourusername/leaderboard-api/internal/handler/dto"
	"github.com/yourusername/leaderboard-api/internal/metrics"
	"github.com/yourusername/leaderboard-api/internal/websocket"
)

// Параметры пагинации журнала по умолчанию
const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
)

// HistoryService отдает и очищает журнал начислений
type HistoryService struct {
	historyRepo  repository.HistoryRepository
	defaultLimit int
	maxLimit     int
	events       EventPublisher
	metrics      metrics.MetricsCollector
}

// NewHistoryService создает сервис журнала.
// Неположительные лимиты заменяются значениями по умолчанию.
func NewHistoryService(
	historyRepo repository.HistoryRepository,
	defaultLimit, maxLimit int,
	events EventPublisher,
	collector metrics.MetricsCollector,
) *HistoryService {
	if defaultLimit < 1 {
		defaultLimit = DefaultHistoryLimit
	}
	if maxLimit < defaultLimit {
		maxLimit = MaxHistoryLimit
		if maxLimit < defaultLimit {
			maxLimit = defaultLimit
		}
	}
	if events == nil {
		events = NoopPublisher{}
	}
	if collector == nil {
		collector = metrics.Noop{}
	}
	return &HistoryService{
		historyRepo:  historyRepo,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		events:       events,
		metrics:      collector,
	}
}

// normalizePage приводит параметры пагинации к допустимым значениям и считает смещение.
// Если (page-1)*limit не помещается в int, смещение ограничивается math.MaxInt:
// такая страница заведомо за концом журнала и возвращается пустой.
func (s *HistoryService) normalizePage(page, limit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.defaultLimit
	} else if limit > s.maxLimit {
		limit = s.maxLimit
	}
	if page-1 > math.MaxInt/limit {
		return page, limit, math.MaxInt
	}
	return page, limit, (page - 1) * limit
}

// GetHistory возвращает страницу журнала, новые записи первыми.
// Страница за пределами журнала возвращается пустой, без ошибки.
func (s *HistoryService) GetHistory(ctx context.Context, page, limit int) (*dto.PaginatedHistoryResponse, error) {
	page, limit, offset := s.normalizePage(page, limit)

	logs, total, err := s.historyRepo.ListPage(ctx, limit, offset)
	if err != nil {
		log.Printf("[HistoryService] Ошибка при получении журнала (page=%d, limit=%d): %v", page, limit, err)
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	if logs == nil {
		logs = []entity.HistoryEntry{}
	}

	return &dto.PaginatedHistoryResponse{
		Logs: logs,
		Pagination: dto.PaginationDTO{
			TotalLogs:   total,
			TotalPages:  totalPages(total, limit),
			CurrentPage: page,
			Limit:       limit,
		},
	}, nil
}

// totalPages = ceil(total/limit), 0 для пустого журнала
func totalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// ClearHistory удаляет все записи журнала и возвращает их количество.
// Очки пользователей не меняются.
func (s *HistoryService) ClearHistory(ctx context.Context) (int64, error) {
	deleted, err := s.historyRepo.DeleteAll(ctx)
	if err != nil {
		log.Printf("[HistoryService] Ошибка очистки журнала: %v", err)
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}

	log.Printf("[HistoryService] Журнал очищен, удалено записей: %d", deleted)
	s.metrics.RecordHistoryCleared(deleted)
	s.events.Publish(websocket.HISTORY_CLEARED, map[string]int64{"deleted": deleted})
	return deleted, nil
}

// ExportHistory возвращает весь журнал для выгрузки
func (s *HistoryService) ExportHistory(ctx context.Context) ([]entity.HistoryEntry, error) {
	entries, err := s.historyRepo.ListAll(ctx)
	if err != nil {
		log.Printf("[HistoryService] Ошибка выгрузки журнала: %v", err)
		return nil, fmt.Errorf("failed to export history: %w", err)
	}
	return entries, nil
}
