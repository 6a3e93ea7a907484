package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	apperrors "github.com/yourusername/leaderboard-api/internal/pkg/errors"
)

// setIfVersionScript атомарно сравнивает версию и записывает значение.
// KEYS[1] - ключ значения, KEYS[2] - ключ версии; ARGV: данные, TTL в мс, ожидаемая версия.
var setIfVersionScript = redis.NewScript(`
local current = redis.call("GET", KEYS[2])
if not current then current = "0" end
if current ~= ARGV[3] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return 1
`)

// CacheRepo реализует repository.CacheRepository
type CacheRepo struct {
	client redis.UniversalClient
}

// NewCacheRepo создает новый репозиторий кеша и возвращает ошибку при проблемах
func NewCacheRepo(client redis.UniversalClient) (*CacheRepo, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil for CacheRepo")
	}
	return &CacheRepo{client: client}, nil
}

// GetJSON получает структуру JSON из кеша.
// Отсутствие ключа возвращается как apperrors.ErrNotFound.
func (r *CacheRepo) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return apperrors.ErrNotFound
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

// Delete удаляет значение из кеша
func (r *CacheRepo) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// Version читает версию ключа, отсутствующая версия равна 0
func (r *CacheRepo) Version(ctx context.Context, versionKey string) (int64, error) {
	v, err := r.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// IncrVersion увеличивает версию ключа
func (r *CacheRepo) IncrVersion(ctx context.Context, versionKey string) (int64, error) {
	return r.client.Incr(ctx, versionKey).Result()
}

// SetJSONIfVersion сохраняет JSON, только если версия не изменилась с момента чтения.
// Ключи должны попадать в один слот в режиме кластера (см. hash tag в имени ключа).
func (r *CacheRepo) SetJSONIfVersion(ctx context.Context, key string, value interface{}, expiration time.Duration, versionKey string, version int64) (bool, error) {
	if expiration <= 0 {
		return false, fmt.Errorf("expiration must be positive")
	}
	data, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	res, err := setIfVersionScript.Run(ctx, r.client,
		[]string{key, versionKey},
		data, expiration.Milliseconds(), version,
	).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}
