package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/leaderboard-api/internal/handler/dto"
)

// Claimer начисляет очки
type Claimer interface {
	Claim(ctx context.Context, userID string) (*dto.ClaimResult, error)
}

// ClaimHandler обрабатывает начисление очков
type ClaimHandler struct {
	claimService Claimer
}

// NewClaimHandler создает обработчик начислений
func NewClaimHandler(claimService Claimer) *ClaimHandler {
	return &ClaimHandler{claimService: claimService}
}

// Claim начисляет выбранному пользователю от 1 до 10 очков
// POST /api/claim
func (h *ClaimHandler) Claim(c *gin.Context) {
	var req dto.ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.UserID == "" {
		respondFail(c, http.StatusBadRequest, "User ID is required.")
		return
	}

	result, err := h.claimService.Claim(c.Request.Context(), req.UserID)
	if err != nil {
		handleError(c, "ClaimHandler", err)
		return
	}

	respondSuccess(c, http.StatusOK,
		fmt.Sprintf("%s claimed %d points!", result.User.Name, result.PointsClaimed),
		result,
	)
}
