package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/yourusername/leaderboard-api/internal/config"
)

// RedisPingTimeout ограничивает проверку подключения при старте
const RedisPingTimeout = 5 * time.Second

// Режимы подключения к Redis
const (
	RedisModeSingle   = "single"
	RedisModeSentinel = "sentinel"
	RedisModeCluster  = "cluster"
)

// NewRedisClient создает клиент Redis для режима из конфигурации и проверяет подключение.
// Проверка ограничена ctx и RedisPingTimeout.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (redis.UniversalClient, error) {
	client, mode, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, RedisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis (mode: %s, addrs: %v): %w", mode, redisAddrs(cfg), err)
	}
	return client, nil
}

// newRedisClient собирает клиент без обращения к серверу
func newRedisClient(cfg config.RedisConfig) (redis.UniversalClient, string, error) {
	addrs := redisAddrs(cfg)
	if len(addrs) == 0 {
		return nil, "", fmt.Errorf("redis configuration error: Addrs or Addr must be provided")
	}

	mode := cfg.Mode
	if mode == "" {
		mode = RedisModeSingle
	}

	minBackoff := time.Duration(cfg.MinRetryBackoff) * time.Millisecond
	maxBackoff := time.Duration(cfg.MaxRetryBackoff) * time.Millisecond

	switch mode {
	case RedisModeSingle:
		if len(addrs) > 1 {
			return nil, mode, fmt.Errorf("redis single mode expects one address, got %d", len(addrs))
		}
		return redis.NewClient(&redis.Options{
			Addr:            addrs[0],
			Password:        cfg.Password,
			DB:              cfg.DB,
			MaxRetries:      cfg.MaxRetries,
			MinRetryBackoff: minBackoff,
			MaxRetryBackoff: maxBackoff,
		}), mode, nil
	case RedisModeSentinel:
		if cfg.MasterName == "" {
			return nil, mode, fmt.Errorf("redis sentinel mode requires MasterName")
		}
		return redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:      cfg.MasterName,
			SentinelAddrs:   addrs,
			Password:        cfg.Password,
			DB:              cfg.DB,
			MaxRetries:      cfg.MaxRetries,
			MinRetryBackoff: minBackoff,
			MaxRetryBackoff: maxBackoff,
		}), mode, nil
	case RedisModeCluster:
		if cfg.DB != 0 {
			return nil, mode, fmt.Errorf("redis cluster mode supports only DB 0, got %d", cfg.DB)
		}
		return redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:           addrs,
			Password:        cfg.Password,
			MaxRetries:      cfg.MaxRetries,
			MinRetryBackoff: minBackoff,
			MaxRetryBackoff: maxBackoff,
		}), mode, nil
	default:
		return nil, mode, fmt.Errorf("unsupported redis mode: %s", mode)
	}
}

func redisAddrs(cfg config.RedisConfig) []string {
	if len(cfg.Addrs) > 0 {
		return cfg.Addrs
	}
	if cfg.Addr != "" {
		return []string{cfg.Addr}
	}
	return nil
}
