package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"golang.org/x/time/rate"
)

// RateLimitConfig содержит настройки rate limiting
type RateLimitConfig struct {
	// MaxRequests - максимальное количество запросов за Window
	MaxRequests int
	// Window - временное окно для подсчёта запросов
	Window time.Duration
	// KeyPrefix - префикс для ключей в Redis
	KeyPrefix string
}

// UserRegistrationRateLimitConfig - лимит на создание пользователей с одного IP
func UserRegistrationRateLimitConfig(maxRequests int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		MaxRequests: maxRequests,
		Window:      window,
		KeyPrefix:   "rl:users",
	}
}

// localLimiter - токен-бакет одного ключа для работы без Redis
type localLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter ограничивает запросы через Redis (общий счетчик для всех инстансов).
// Без Redis или при его ошибках работает локальный лимитер в памяти процесса.
type RateLimiter struct {
	redisClient redis.UniversalClient

	localMu sync.Mutex
	local   map[string]*localLimiter

	cleanupInterval time.Duration
	stopCh          chan struct{}
	stopOnce        sync.Once
}

// NewRateLimiter создает новый RateLimiter. redisClient может быть nil.
func NewRateLimiter(redisClient redis.UniversalClient) *RateLimiter {
	rl := &RateLimiter{
		redisClient:     redisClient,
		local:           make(map[string]*localLimiter),
		cleanupInterval: 5 * time.Minute,
		stopCh:          make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Stop останавливает фоновую очистку локальных лимитеров
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// defaultWindow подставляется, если лимит задан без окна
const defaultWindow = time.Minute

// LimitByIP ограничивает количество запросов по IP и маршруту.
// MaxRequests <= 0 отключает лимит; окно <= 0 при включенном лимите заменяется на defaultWindow.
func (rl *RateLimiter) LimitByIP(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.MaxRequests > 0 && cfg.Window <= 0 {
		log.Printf("[RateLimiter] Окно лимита %s не задано (%s), используем %s", cfg.KeyPrefix, cfg.Window, defaultWindow)
		cfg.Window = defaultWindow
	}
	return func(c *gin.Context) {
		if cfg.MaxRequests <= 0 {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		key := fmt.Sprintf("%s:%s:%s", cfg.KeyPrefix, clientIP, path)

		allowed, remaining, retryAfter := rl.allow(c.Request.Context(), key, cfg)

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", cfg.MaxRequests))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", retryAfter))

		if !allowed {
			log.Printf("[RateLimiter] Rate limit exceeded for IP=%s path=%s. Limit=%d", clientIP, path, cfg.MaxRequests)
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status":  "fail",
				"message": "Too many requests. Please try again later.",
			})
			return
		}

		c.Next()
	}
}

// allow возвращает решение, остаток запросов и секунды до сброса окна
func (rl *RateLimiter) allow(parent context.Context, key string, cfg RateLimitConfig) (bool, int, int) {
	if rl.redisClient != nil {
		allowed, remaining, retryAfter, err := rl.allowRedis(parent, key, cfg)
		if err == nil {
			return allowed, remaining, retryAfter
		}
		log.Printf("[RateLimiter] Redis error for key %s: %v. Falling back to local limiter.", key, err)
	}
	return rl.allowLocal(key, cfg)
}

// allowRedis - фиксированное окно: INCR + EXPIRE на первом запросе
func (rl *RateLimiter) allowRedis(parent context.Context, key string, cfg RateLimitConfig) (bool, int, int, error) {
	ctx, cancel := context.WithTimeout(parent, 2*time.Second)
	defer cancel()

	count, err := rl.redisClient.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, 0, err
	}
	if count == 1 {
		if err := rl.redisClient.Expire(ctx, key, cfg.Window).Err(); err != nil {
			log.Printf("[RateLimiter] Failed to set TTL for key %s: %v", key, err)
		}
	}

	remaining := cfg.MaxRequests - int(count)
	if remaining < 0 {
		remaining = 0
	}

	ttl, _ := rl.redisClient.TTL(ctx, key).Result()
	retryAfter := int(ttl.Seconds())
	if retryAfter < 0 {
		retryAfter = int(cfg.Window.Seconds())
	}

	return int(count) <= cfg.MaxRequests, remaining, retryAfter, nil
}

// allowLocal - токен-бакет на MaxRequests за Window
func (rl *RateLimiter) allowLocal(key string, cfg RateLimitConfig) (bool, int, int) {
	rl.localMu.Lock()
	defer rl.localMu.Unlock()

	ll, ok := rl.local[key]
	if !ok {
		every := cfg.Window / time.Duration(cfg.MaxRequests)
		ll = &localLimiter{limiter: rate.NewLimiter(rate.Every(every), cfg.MaxRequests)}
		rl.local[key] = ll
	}
	ll.lastAccess = time.Now()

	allowed := ll.limiter.Allow()
	remaining := int(ll.limiter.Tokens())
	if remaining < 0 {
		remaining = 0
	}
	return allowed, remaining, int(cfg.Window.Seconds())
}

// LocalLimiterCount возвращает количество локальных лимитеров (для тестов)
func (rl *RateLimiter) LocalLimiterCount() int {
	rl.localMu.Lock()
	defer rl.localMu.Unlock()
	return len(rl.local)
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now())
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup удаляет лимитеры, к которым не обращались дольше двух интервалов очистки
func (rl *RateLimiter) cleanup(now time.Time) {
	ttl := rl.cleanupInterval * 2

	rl.localMu.Lock()
	defer rl.localMu.Unlock()
	for key, ll := range rl.local {
		if now.Sub(ll.lastAccess) > ttl {
			delete(rl.local, key)
		}
	}
}
