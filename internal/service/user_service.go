package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"unicode/utf8"

	"github.com/yourusername/leaderboard-api/internal/domain/entity"
	"github.com/yourusername/leaderboard-api/internal/domain/repository"
	"github.com/yourusername/leaderboard-api/internal/handler/dto"
	"github.com/yourusername/leaderboard-api/internal/metrics"
	apperrors "github.com/yourusername/leaderboard-api/internal/pkg/errors"
	"github.com/yourusername/leaderboard-api/internal/websocket"
)

// UserService предоставляет методы для работы с пользователями
type UserService struct {
	userRepo    repository.UserRepository
	leaderboard *LeaderboardService
	events      EventPublisher
	metrics     metrics.MetricsCollector
}

// NewUserService создает новый сервис пользователей
func NewUserService(
	userRepo repository.UserRepository,
	leaderboard *LeaderboardService,
	events EventPublisher,
	collector metrics.MetricsCollector,
) *UserService {
	if events == nil {
		events = NoopPublisher{}
	}
	if collector == nil {
		collector = metrics.Noop{}
	}
	return &UserService{
		userRepo:    userRepo,
		leaderboard: leaderboard,
		events:      events,
		metrics:     collector,
	}
}

// ValidateUserName нормализует имя и проверяет его длину
func ValidateUserName(raw string) (string, error) {
	name := entity.NormalizeUserName(raw)
	if name == "" {
		return "", validationError("name is required")
	}
	if utf8.RuneCountInString(name) > entity.MaxUserNameLength {
		return "", validationError("name must be at most %d characters", entity.MaxUserNameLength)
	}
	return name, nil
}

// AddUser регистрирует пользователя с нулем очков
func (s *UserService) AddUser(ctx context.Context, rawName string) (*entity.User, error) {
	name, err := ValidateUserName(rawName)
	if err != nil {
		return nil, err
	}

	user := &entity.User{Name: name}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("user %q already exists: %w", name, apperrors.ErrConflict)
		}
		log.Printf("[UserService] Ошибка создания пользователя '%s': %v", name, err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("[UserService] Добавлен пользователь %s (%s)", user.Name, user.ID)
	s.metrics.RecordUserAdded()
	if s.leaderboard != nil {
		s.leaderboard.Invalidate(ctx)
	}
	s.events.Publish(websocket.USER_ADDED, dto.UserDTO{
		ID:          user.ID,
		Name:        user.Name,
		TotalPoints: user.TotalPoints,
	})
	return user, nil
}

// ListUsers возвращает всех пользователей (id и имя) по алфавиту
func (s *UserService) ListUsers(ctx context.Context) ([]dto.UserSummaryDTO, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		log.Printf("[UserService] Ошибка при получении списка пользователей: %v", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	summaries := make([]dto.UserSummaryDTO, len(users))
	for i, user := range users {
		summaries[i] = dto.UserSummaryDTO{ID: user.ID, Name: user.Name}
	}
	return summaries, nil
}
