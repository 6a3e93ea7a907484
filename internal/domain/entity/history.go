package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HistoryRecord представляет одну запись журнала начислений (один claim).
// После создания запись не изменяется.
type HistoryRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	PointsClaimed int64     `gorm:"not null" json:"pointsClaimed"`
	Timestamp     time.Time `gorm:"not null;index:idx_claim_history_timestamp,sort:desc" json:"timestamp"`
}

// TableName определяет имя таблицы для GORM
func (HistoryRecord) TableName() string {
	return "claim_history"
}

// BeforeCreate проставляет ID и время, если они не заданы явно
func (h *HistoryRecord) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.Timestamp.IsZero() {
		h.Timestamp = time.Now().UTC()
	}
	return nil
}

// HistoryEntry - запись журнала вместе с текущим именем пользователя.
// Имя берется JOIN'ом при чтении, а не копируется в журнал.
type HistoryEntry struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"userId"`
	UserName      string    `json:"userName"`
	PointsClaimed int64     `json:"pointsClaimed"`
	Timestamp     time.Time `json:"timestamp"`
}
