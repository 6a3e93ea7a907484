package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryRecord_BeforeCreate_FillsDefaults(t *testing.T) {
	before := time.Now().UTC()
	record := &HistoryRecord{UserID: uuid.New(), PointsClaimed: 7}

	require.NoError(t, record.BeforeCreate(mockTx))

	assert.NotEqual(t, uuid.Nil, record.ID)
	assert.False(t, record.Timestamp.Before(before), "Время должно быть не раньше момента создания")
	assert.Equal(t, int64(7), record.PointsClaimed)
}

func TestHistoryRecord_BeforeCreate_KeepsExplicitTimestamp(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	record := &HistoryRecord{UserID: uuid.New(), PointsClaimed: 3, Timestamp: ts}

	require.NoError(t, record.BeforeCreate(mockTx))

	assert.Equal(t, ts, record.Timestamp)
}

func TestHistoryRecord_TableName(t *testing.T) {
	assert.Equal(t, "claim_history", HistoryRecord{}.TableName())
}
