package dto

import "github.com/yourusername/leaderboard-api/internal/domain/entity"

// PaginationDTO описывает положение страницы журнала
type PaginationDTO struct {
	TotalLogs   int64 `json:"totalLogs"`
	TotalPages  int   `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	Limit       int   `json:"limit"`
}

// PaginatedHistoryResponse - страница журнала начислений
type PaginatedHistoryResponse struct {
	Logs       []entity.HistoryEntry `json:"logs"`
	Pagination PaginationDTO         `json:"pagination"`
}
