package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/leaderboard-api/internal/handler/dto"
	apperrors "github.com/yourusername/leaderboard-api/internal/pkg/errors"
)

func TestClaim_Success(t *testing.T) {
	claimer := new(MockClaimer)
	h := NewClaimHandler(claimer)

	id := uuid.New()
	claimer.On("Claim", mock.Anything, id.String()).Return(&dto.ClaimResult{
		PointsClaimed: 6,
		User:          dto.UserDTO{ID: id, Name: "Ann", TotalPoints: 16},
	}, nil).Once()

	c, w := newTestGinContext(http.MethodPost, "/api/claim", map[string]string{"userId": id.String()})
	h.Claim(c)

	require.Equal(t, http.StatusOK, w.Code)
	resp := parseJSONResponse(t, w)
	assert.Equal(t, "success", resp["status"])
	assert.Equal(t, "Ann claimed 6 points!", resp["message"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(6), data["pointsClaimed"])
	user := data["user"].(map[string]interface{})
	assert.Equal(t, float64(16), user["totalPoints"])
	assert.NotContains(t, data, "HistoryID")
}

func TestClaim_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		serviceErr error
		wantStatus int
	}{
		{"missing userId", map[string]string{}, nil, http.StatusBadRequest},
		{"malformed body", "[", nil, http.StatusBadRequest},
		{"invalid id", map[string]string{"userId": "abc"}, fmt.Errorf("%w: invalid userId", apperrors.ErrValidation), http.StatusBadRequest},
		{"unknown user", map[string]string{"userId": uuid.NewString()}, apperrors.ErrNotFound, http.StatusNotFound},
		{"store down", map[string]string{"userId": uuid.NewString()}, apperrors.ErrStoreUnavailable, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claimer := new(MockClaimer)
			h := NewClaimHandler(claimer)
			if tt.serviceErr != nil {
				body := tt.body.(map[string]string)
				claimer.On("Claim", mock.Anything, body["userId"]).Return(nil, tt.serviceErr).Once()
			}

			c, w := newTestGinContext(http.MethodPost, "/api/claim", tt.body)
			h.Claim(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := parseJSONResponse(t, w)
			assert.NotEqual(t, "success", resp["status"])
			assert.NotEmpty(t, resp["message"])
			claimer.AssertExpectations(t)
		})
	}
}
