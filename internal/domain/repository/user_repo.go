package repository

import (
	"context"

	"github.com/yourusername/leaderboard-api/internal/domain/entity"
)

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	// List возвращает всех пользователей, отсортированных по имени
	List(ctx context.Context) ([]entity.User, error)
	// GetLeaderboard возвращает всех пользователей по убыванию очков
	GetLeaderboard(ctx context.Context) ([]entity.User, error)
	// ReplaceAll удаляет всех пользователей (история удаляется каскадно) и вставляет переданных
	ReplaceAll(ctx context.Context, users []entity.User) error
}
