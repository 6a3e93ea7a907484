package dto

// Значения поля status в ответах API
const (
	StatusSuccess = "success"
	StatusFail    = "fail"  // ошибка клиента (4xx)
	StatusError   = "error" // ошибка сервера (5xx)
)

// Response - общий конверт ответов API
type Response struct {
	Status     string         `json:"status"`
	Message    string         `json:"message,omitempty"`
	Data       interface{}    `json:"data,omitempty"`
	Pagination *PaginationDTO `json:"pagination,omitempty"`
}
