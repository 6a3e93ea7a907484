package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/leaderboard-api/internal/domain/entity"
	"github.com/yourusername/leaderboard-api/internal/handler/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestGinContext создает *gin.Context для тестов с JSON body
func newTestGinContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()

	var req *http.Request
	if body != nil {
		var bodyBytes []byte
		if raw, ok := body.(string); ok {
			bodyBytes = []byte(raw)
		} else {
			bodyBytes, _ = json.Marshal(body)
		}
		req, _ = http.NewRequest(method, path, bytes.NewReader(bodyBytes))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

// parseJSONResponse парсит JSON ответ из *httptest.ResponseRecorder
func parseJSONResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err, "Response body should be valid JSON: %s", w.Body.String())
	return resp
}

// ============================================================================
// Моки сервисов
// ============================================================================

type MockUserUseCase struct {
	mock.Mock
}

func (m *MockUserUseCase) AddUser(ctx context.Context, name string) (*entity.User, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserUseCase) ListUsers(ctx context.Context) ([]dto.UserSummaryDTO, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.UserSummaryDTO), args.Error(1)
}

type MockLeaderboardReader struct {
	mock.Mock
}

func (m *MockLeaderboardReader) GetLeaderboard(ctx context.Context) ([]dto.LeaderboardEntryDTO, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.LeaderboardEntryDTO), args.Error(1)
}

type MockClaimer struct {
	mock.Mock
}

func (m *MockClaimer) Claim(ctx context.Context, userID string) (*dto.ClaimResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ClaimResult), args.Error(1)
}

type MockHistoryUseCase struct {
	mock.Mock
}

func (m *MockHistoryUseCase) GetHistory(ctx context.Context, page, limit int) (*dto.PaginatedHistoryResponse, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PaginatedHistoryResponse), args.Error(1)
}

func (m *MockHistoryUseCase) ClearHistory(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockHistoryUseCase) ExportHistory(ctx context.Context) ([]entity.HistoryEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.HistoryEntry), args.Error(1)
}
