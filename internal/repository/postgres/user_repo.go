package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yourusername/leaderboard-api/internal/domain/entity"
)

// UserRepo реализует repository.UserRepository
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo создает новый репозиторий пользователей
func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create создает нового пользователя.
// Дубликат имени возвращается как apperrors.ErrConflict.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	return translateError(r.db.WithContext(ctx).Create(user).Error)
}

// GetByID возвращает пользователя по ID.
// В UserRepository не входит: сервисы получают пользователя из ApplyClaim,
// метод нужен утилитам и интеграционным тестам.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// List возвращает всех пользователей (для выпадающего списка на фронтенде)
func (r *UserRepo) List(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Select("id", "name").
		Order("name ASC").
		Find(&users).Error
	if err != nil {
		return nil, translateError(err)
	}
	return users, nil
}

// GetLeaderboard возвращает всех пользователей по убыванию очков.
// При равенстве очков порядок определяется временем создания (порядок вставки).
func (r *UserRepo) GetLeaderboard(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Order("total_points DESC, created_at ASC, id ASC").
		Find(&users).Error
	if err != nil {
		return nil, translateError(err)
	}
	return users, nil
}

// ReplaceAll очищает журнал и таблицу пользователей, затем вставляет переданных пользователей.
// Все выполняется одной транзакцией, поэтому повторный вызов дает то же состояние.
func (r *UserRepo) ReplaceAll(ctx context.Context, users []entity.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		global := tx.Session(&gorm.Session{AllowGlobalUpdate: true})

		if err := global.Delete(&entity.HistoryRecord{}).Error; err != nil {
			return err
		}
		if err := global.Delete(&entity.User{}).Error; err != nil {
			return err
		}
		if len(users) == 0 {
			return nil
		}
		return tx.CreateInBatches(users, 100).Error
	})
	return translateError(err)
}
