package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/leaderboard-api/internal/handler/dto"
	apperrors "github.com/yourusername/leaderboard-api/internal/pkg/errors"
)

func respondSuccess(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, dto.Response{Status: dto.StatusSuccess, Message: message, Data: data})
}

func respondFail(c *gin.Context, status int, message string) {
	c.JSON(status, dto.Response{Status: dto.StatusFail, Message: message})
}

// handleError переводит ошибки сервисов в HTTP ответ.
// Детали ошибок хранилища в ответ не попадают, только в лог.
func handleError(c *gin.Context, component string, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		respondFail(c, http.StatusBadRequest, clientMessage(err, apperrors.ErrValidation))
	case errors.Is(err, apperrors.ErrConflict):
		respondFail(c, http.StatusBadRequest, "Failed to create user. Is the name unique?")
	case errors.Is(err, apperrors.ErrNotFound):
		respondFail(c, http.StatusNotFound, "User not found.")
	default:
		log.Printf("[%s] Internal server error: %v", component, err)
		c.JSON(http.StatusInternalServerError, dto.Response{
			Status:  dto.StatusError,
			Message: "Internal server error",
		})
	}
}

// clientMessage отрезает префикс sentinel-ошибки: "validation failed: name is required" -> "name is required"
func clientMessage(err error, sentinel error) string {
	msg := err.Error()
	if idx := strings.Index(msg, sentinel.Error()+": "); idx >= 0 {
		return msg[idx+len(sentinel.Error())+2:]
	}
	return msg
}
