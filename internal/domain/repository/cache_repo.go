package repository

import (
	"context"
	"time"
)

// CacheRepository определяет методы для работы с кешем.
// Версия ключа позволяет не перезаписывать кеш устаревшими данными:
// читатель запоминает версию до запроса в базу и пишет, только если она не изменилась.
type CacheRepository interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error

	// Version возвращает текущую версию (0, если ключа версии нет)
	Version(ctx context.Context, versionKey string) (int64, error)
	// IncrVersion увеличивает версию и возвращает новое значение
	IncrVersion(ctx context.Context, versionKey string) (int64, error)
	// SetJSONIfVersion сохраняет значение, только если версия все еще равна version.
	// Возвращает false, если версия успела измениться.
	SetJSONIfVersion(ctx context.Context, key string, value interface{}, expiration time.Duration, versionKey string, version int64) (bool, error)
}
