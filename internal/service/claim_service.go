package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"github.com/yourusername/leaderboard-api/internal/domain/repository"
	"github.com/yourusername/leaderboard-api/internal/handler/dto"
	"github.com/yourusername/leaderboard-api/internal/metrics"
	apperrors "github.com/yourusername/leaderboard-api/internal/pkg/errors"
	"github.com/yourusername/leaderboard-api/internal/websocket"
)

// Границы случайного начисления (включительно)
const (
	MinClaimPoints = 1
	MaxClaimPoints = 10
)

// PointsSource выдает количество очков для одного начисления
type PointsSource interface {
	Next() int64
}

// RandomPoints - источник по умолчанию: равномерно в [MinClaimPoints, MaxClaimPoints]
type RandomPoints struct{}

// Next возвращает случайное число очков
func (RandomPoints) Next() int64 {
	return int64(MinClaimPoints + rand.Intn(MaxClaimPoints-MinClaimPoints+1))
}

// ClaimService начисляет пользователю случайные очки
type ClaimService struct {
	claimRepo   repository.ClaimRepository
	leaderboard *LeaderboardService
	points      PointsSource
	events      EventPublisher
	metrics     metrics.MetricsCollector
}

// NewClaimService создает сервис начислений.
// points, events и collector могут быть nil, тогда используются значения по умолчанию.
func NewClaimService(
	claimRepo repository.ClaimRepository,
	leaderboard *LeaderboardService,
	points PointsSource,
	events EventPublisher,
	collector metrics.MetricsCollector,
) *ClaimService {
	if points == nil {
		points = RandomPoints{}
	}
	if events == nil {
		events = NoopPublisher{}
	}
	if collector == nil {
		collector = metrics.Noop{}
	}
	return &ClaimService{
		claimRepo:   claimRepo,
		leaderboard: leaderboard,
		points:      points,
		events:      events,
		metrics:     collector,
	}
}

// ParseUserID разбирает ID пользователя из запроса
func ParseUserID(raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, validationError("userId is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, validationError("invalid userId %q", raw)
	}
	return id, nil
}

// Claim начисляет пользователю от 1 до 10 очков и записывает начисление в журнал.
// Одно и то же значение попадает и в total_points, и в запись журнала.
func (s *ClaimService) Claim(ctx context.Context, rawUserID string) (*dto.ClaimResult, error) {
	userID, err := ParseUserID(rawUserID)
	if err != nil {
		s.metrics.RecordClaimFailure("validation")
		return nil, err
	}

	points := s.points.Next()

	user, record, err := s.claimRepo.ApplyClaim(ctx, userID, points)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.metrics.RecordClaimFailure("not_found")
			return nil, fmt.Errorf("user %s: %w", userID, apperrors.ErrNotFound)
		}
		s.metrics.RecordClaimFailure("store")
		log.Printf("[ClaimService] Ошибка начисления пользователю %s: %v", userID, err)
		return nil, fmt.Errorf("failed to apply claim: %w", err)
	}

	s.metrics.RecordClaim(points)
	if s.leaderboard != nil {
		s.leaderboard.Invalidate(ctx)
	}

	result := &dto.ClaimResult{
		PointsClaimed: points,
		User: dto.UserDTO{
			ID:          user.ID,
			Name:        user.Name,
			TotalPoints: user.TotalPoints,
		},
		HistoryID: record.ID.String(),
	}

	s.events.Publish(websocket.POINTS_CLAIMED, map[string]interface{}{
		"pointsClaimed": points,
		"user":          result.User,
		"historyId":     result.HistoryID,
		"timestamp":     record.Timestamp,
	})

	return result, nil
}
