package dto

import "github.com/google/uuid"

// AddUserRequest - тело запроса POST /api/users
type AddUserRequest struct {
	Name string `json:"name"`
}

// UserSummaryDTO - пользователь в списке выбора (без очков)
type UserSummaryDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// UserDTO - пользователь с очками
type UserDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	TotalPoints int64     `json:"totalPoints"`
}

// LeaderboardEntryDTO представляет одного пользователя в лидерборде
type LeaderboardEntryDTO struct {
	Rank        int       `json:"rank"` // Место в рейтинге, с 1
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	TotalPoints int64     `json:"totalPoints"`
}
