package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/leaderboard-api/internal/domain/entity"
	"github.com/yourusername/leaderboard-api/internal/handler/dto"
)

// UserUseCase - операции с пользователями, нужные обработчику
type UserUseCase interface {
	AddUser(ctx context.Context, name string) (*entity.User, error)
	ListUsers(ctx context.Context) ([]dto.UserSummaryDTO, error)
}

// LeaderboardReader отдает рейтинг
type LeaderboardReader interface {
	GetLeaderboard(ctx context.Context) ([]dto.LeaderboardEntryDTO, error)
}

// UserHandler обрабатывает запросы, связанные с пользователями и рейтингом
type UserHandler struct {
	userService        UserUseCase
	leaderboardService LeaderboardReader
}

// NewUserHandler создает новый обработчик пользователей
func NewUserHandler(userService UserUseCase, leaderboardService LeaderboardReader) *UserHandler {
	return &UserHandler{
		userService:        userService,
		leaderboardService: leaderboardService,
	}
}

// GetUsers возвращает всех пользователей (id и имя) для выпадающего списка
// GET /api/users
func (h *UserHandler) GetUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		handleError(c, "UserHandler", err)
		return
	}
	respondSuccess(c, http.StatusOK, "", gin.H{"users": users})
}

// AddUser регистрирует нового пользователя
// POST /api/users
func (h *UserHandler) AddUser(c *gin.Context) {
	var req dto.AddUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, err := h.userService.AddUser(c.Request.Context(), req.Name)
	if err != nil {
		handleError(c, "UserHandler", err)
		return
	}

	respondSuccess(c, http.StatusCreated, "", gin.H{"user": dto.UserDTO{
		ID:          user.ID,
		Name:        user.Name,
		TotalPoints: user.TotalPoints,
	}})
}

// GetLeaderboard возвращает всех пользователей по убыванию очков
// GET /api/leaderboard
func (h *UserHandler) GetLeaderboard(c *gin.Context) {
	leaderboard, err := h.leaderboardService.GetLeaderboard(c.Request.Context())
	if err != nil {
		handleError(c, "UserHandler", err)
		return
	}
	respondSuccess(c, http.StatusOK, "", gin.H{"leaderboard": leaderboard})
}
