package service

import (
	"context"
	"fmt"
	"log"

	"github.com/yourusername/leaderboard-api/internal/domain/entity"
	"github.com/yourusername/leaderboard-api/internal/domain/repository"
	"github.com/yourusername/leaderboard-api/internal/websocket"
)

// SeedUser описывает пользователя начального набора
type SeedUser struct {
	Name        string
	TotalPoints int64
}

// DefaultSeedUsers - демонстрационный набор пользователей
var DefaultSeedUsers = []SeedUser{
	{Name: "Elena Petrova", TotalPoints: 2450},
	{Name: "Marcus Johnson", TotalPoints: 2175},
	{Name: "Aisha Khan", TotalPoints: 1980},
	{Name: "Liam O'Connell", TotalPoints: 1760},
	{Name: "Sofia Rossi", TotalPoints: 1520},
	{Name: "Kenji Tanaka", TotalPoints: 1240},
	{Name: "Chloe Dubois", TotalPoints: 985},
	{Name: "David Miller", TotalPoints: 730},
	{Name: "Isabella Garcia", TotalPoints: 510},
	{Name: "Noah Williams", TotalPoints: 355},
}

// SeedService заполняет базу демонстрационными данными
type SeedService struct {
	userRepo    repository.UserRepository
	leaderboard *LeaderboardService
	events      EventPublisher
	users       []SeedUser
}

// NewSeedService создает сервис заполнения. users == nil означает DefaultSeedUsers.
func NewSeedService(
	userRepo repository.UserRepository,
	leaderboard *LeaderboardService,
	events EventPublisher,
	users []SeedUser,
) *SeedService {
	if users == nil {
		users = DefaultSeedUsers
	}
	if events == nil {
		events = NoopPublisher{}
	}
	return &SeedService{
		userRepo:    userRepo,
		leaderboard: leaderboard,
		events:      events,
		users:       users,
	}
}

// Seed заменяет всех пользователей и журнал начальным набором.
// Повторный вызов дает то же состояние.
func (s *SeedService) Seed(ctx context.Context) error {
	users := make([]entity.User, 0, len(s.users))
	for _, su := range s.users {
		name, err := ValidateUserName(su.Name)
		if err != nil {
			return fmt.Errorf("invalid seed user %q: %w", su.Name, err)
		}
		users = append(users, entity.User{Name: name, TotalPoints: su.TotalPoints})
	}

	if err := s.userRepo.ReplaceAll(ctx, users); err != nil {
		log.Printf("[SeedService] Ошибка заполнения базы: %v", err)
		return fmt.Errorf("failed to seed users: %w", err)
	}
	log.Printf("[SeedService] База заполнена: %d пользователей", len(users))

	if s.leaderboard == nil {
		return nil
	}
	s.leaderboard.Invalidate(ctx)
	entries, err := s.leaderboard.Refresh(ctx)
	if err != nil {
		// Данные уже записаны, лидерборд подтянется при следующем запросе
		log.Printf("[SeedService] Не удалось обновить лидерборд после заполнения: %v", err)
		return nil
	}
	s.events.Publish(websocket.LEADERBOARD_UPDATE, entries)
	return nil
}
