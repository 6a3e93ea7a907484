package redis

import (
	"context"
	"time"

	apperrors "github.com/yourusername/leaderboard-api/internal/pkg/errors"
)

// NoOpCache используется, когда Redis не настроен: кеш всегда пуст
type NoOpCache struct{}

// GetJSON всегда сообщает о промахе
func (NoOpCache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	return apperrors.ErrNotFound
}

// Delete ничего не делает
func (NoOpCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Version всегда 0
func (NoOpCache) Version(ctx context.Context, versionKey string) (int64, error) {
	return 0, nil
}

// IncrVersion ничего не хранит
func (NoOpCache) IncrVersion(ctx context.Context, versionKey string) (int64, error) {
	return 0, nil
}

// SetJSONIfVersion ничего не сохраняет, но сообщает об успехе: версия в NoOpCache не меняется
func (NoOpCache) SetJSONIfVersion(ctx context.Context, key string, value interface{}, expiration time.Duration, versionKey string, version int64) (bool, error) {
	return true, nil
}
