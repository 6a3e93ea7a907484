package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxUserNameLength ограничивает длину имени (совпадает с размером колонки)
const MaxUserNameLength = 100

// User представляет участника лидерборда
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	TotalPoints int64     `gorm:"not null;default:0;index:idx_users_leaderboard,sort:desc" json:"totalPoints"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName определяет имя таблицы для GORM
func (User) TableName() string {
	return "users"
}

// BeforeCreate генерирует ID и нормализует имя перед вставкой
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Name = NormalizeUserName(u.Name)
	return nil
}

// NormalizeUserName обрезает пробельные символы по краям имени
func NormalizeUserName(name string) string {
	return strings.TrimSpace(name)
}
