package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/leaderboard-api/internal/domain/entity"
	"github.com/yourusername/leaderboard-api/internal/domain/repository"
	"github.com/yourusername/leaderboard-api/internal/handler/dto"
	"github.com/yourusername/leaderboard-api/internal/metrics"
	apperrors "github.com/yourusername/leaderboard-api/internal/pkg/errors"
)

// Ключи кеша лидерборда. Общий hash tag держит их в одном слоте Redis Cluster.
const (
	LeaderboardCacheKey   = "{leaderboard}:all"
	LeaderboardVersionKey = "{leaderboard}:version"
)

// LeaderboardService отдает рейтинг пользователей, кешируя его в Redis
type LeaderboardService struct {
	userRepo  repository.UserRepository
	cacheRepo repository.CacheRepository
	cacheTTL  time.Duration
	metrics   metrics.MetricsCollector
}

// NewLeaderboardService создает сервис лидерборда.
// cacheTTL <= 0 отключает запись в кеш.
func NewLeaderboardService(
	userRepo repository.UserRepository,
	cacheRepo repository.CacheRepository,
	cacheTTL time.Duration,
	collector metrics.MetricsCollector,
) *LeaderboardService {
	if collector == nil {
		collector = metrics.Noop{}
	}
	return &LeaderboardService{
		userRepo:  userRepo,
		cacheRepo: cacheRepo,
		cacheTTL:  cacheTTL,
		metrics:   collector,
	}
}

// GetLeaderboard возвращает всех пользователей по убыванию очков.
// Сначала читает кеш, при промахе или сбое кеша идет в базу.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context) ([]dto.LeaderboardEntryDTO, error) {
	if s.cacheRepo != nil {
		var cached []dto.LeaderboardEntryDTO
		err := s.cacheRepo.GetJSON(ctx, LeaderboardCacheKey, &cached)
		if err == nil {
			s.metrics.RecordCacheHit()
			if cached == nil {
				cached = []dto.LeaderboardEntryDTO{}
			}
			return cached, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[LeaderboardService] Ошибка чтения кеша: %v", err)
		}
		s.metrics.RecordCacheMiss()
	}

	return s.Refresh(ctx)
}

// Refresh читает лидерборд из базы и перезаписывает кеш.
// Версия читается до запроса в базу: если за это время прошел Invalidate,
// прочитанные данные могли устареть, и кеш не перезаписывается.
func (s *LeaderboardService) Refresh(ctx context.Context) ([]dto.LeaderboardEntryDTO, error) {
	caching := s.cacheRepo != nil && s.cacheTTL > 0
	var version int64
	if caching {
		v, err := s.cacheRepo.Version(ctx, LeaderboardVersionKey)
		if err != nil {
			log.Printf("[LeaderboardService] Не удалось прочитать версию кеша: %v", err)
			caching = false
		}
		version = v
	}

	users, err := s.userRepo.GetLeaderboard(ctx)
	if err != nil {
		log.Printf("[LeaderboardService] Ошибка при получении лидерборда из репозитория: %v", err)
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	entries := BuildLeaderboard(users)

	if caching {
		stored, err := s.cacheRepo.SetJSONIfVersion(ctx, LeaderboardCacheKey, entries, s.cacheTTL, LeaderboardVersionKey, version)
		if err != nil {
			log.Printf("[LeaderboardService] Не удалось сохранить лидерборд в кеш: %v", err)
		} else if !stored {
			log.Printf("[LeaderboardService] Кеш изменился во время чтения (версия %d), запись пропущена", version)
		}
	}
	return entries, nil
}

// Invalidate повышает версию и удаляет лидерборд из кеша. Ошибки только логируются.
func (s *LeaderboardService) Invalidate(ctx context.Context) {
	if s.cacheRepo == nil {
		return
	}
	if _, err := s.cacheRepo.IncrVersion(ctx, LeaderboardVersionKey); err != nil {
		log.Printf("[LeaderboardService] Не удалось повысить версию кеша лидерборда: %v", err)
	}
	if err := s.cacheRepo.Delete(ctx, LeaderboardCacheKey); err != nil {
		log.Printf("[LeaderboardService] Не удалось сбросить кеш лидерборда: %v", err)
	}
}

// BuildLeaderboard проставляет места пользователям, уже отсортированным репозиторием
func BuildLeaderboard(users []entity.User) []dto.LeaderboardEntryDTO {
	entries := make([]dto.LeaderboardEntryDTO, len(users))
	for i, user := range users {
		entries[i] = dto.LeaderboardEntryDTO{
			Rank:        i + 1,
			ID:          user.ID,
			Name:        user.Name,
			TotalPoints: user.TotalPoints,
		}
	}
	return entries
}
