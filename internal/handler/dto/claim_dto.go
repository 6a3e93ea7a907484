package dto

// ClaimRequest - тело запроса POST /api/claim
type ClaimRequest struct {
	UserID string `json:"userId"`
}

// ClaimResult - результат начисления очков
type ClaimResult struct {
	PointsClaimed int64   `json:"pointsClaimed"`
	User          UserDTO `json:"user"`
	HistoryID     string  `json:"-"`
}
