package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	CORS        CORSConfig        `mapstructure:"cors"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard"`
	History     HistoryConfig     `mapstructure:"history"`
	Seed        SeedConfig        `mapstructure:"seed"`
	WebSocket   WebSocketConfig   `mapstructure:"websocket"`
	RateLimit   RateLimitConfig   `mapstructure:"ratelimit"`
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port         string `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт). Используется для всех режимов.
	Addrs []string `mapstructure:"addrs"`

	// Addr: Адрес для режима 'single', если Addrs пустой.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"` // мс
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"` // мс
}

// CORSConfig содержит список разрешенных origin (используется и для WebSocket)
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LeaderboardConfig содержит настройки кеширования лидерборда
type LeaderboardConfig struct {
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	WarmInterval time.Duration `mapstructure:"warm_interval"` // <= 0 отключает прогрев
}

// HistoryConfig содержит параметры пагинации журнала
type HistoryConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

// SeedConfig управляет заполнением базы при старте
type SeedConfig struct {
	OnStart bool `mapstructure:"on_start"`
}

// WebSocketConfig содержит настройки live-обновлений
type WebSocketConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Cluster ClusterConfig `mapstructure:"cluster"`
}

// ClusterConfig содержит настройки рассылки событий между инстансами через Redis
type ClusterConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	InstanceID string `mapstructure:"instance_id"`
	Channel    string `mapstructure:"channel"`
}

// RateLimitConfig содержит лимиты на регистрацию пользователей
type RateLimitConfig struct {
	UsersMaxRequests int           `mapstructure:"users_max_requests"`
	UsersWindow      time.Duration `mapstructure:"users_window"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// PostgresURL формирует URL подключения (используется утилитой миграций)
func (d *DatabaseConfig) PostgresURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// RedisConfigured сообщает, задан ли хотя бы один адрес Redis
func (r *RedisConfig) RedisConfigured() bool {
	return len(r.Addrs) > 0 || r.Addr != ""
}

// IsDebug возвращает true, если приложение запущено не в release режиме Gin
func IsDebug() bool {
	return os.Getenv("GIN_MODE") != "release"
}

func setDefaults(vip *viper.Viper) {
	vip.SetDefault("server.port", "5000")
	vip.SetDefault("server.read_timeout", 10)
	vip.SetDefault("server.write_timeout", 10)

	vip.SetDefault("database.host", "localhost")
	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "disable")

	vip.SetDefault("redis.mode", "single")

	vip.SetDefault("cors.allowed_origins", []string{"http://localhost:5173", "http://localhost:3000"})

	vip.SetDefault("leaderboard.cache_ttl", 30*time.Second)
	vip.SetDefault("leaderboard.warm_interval", time.Minute)

	vip.SetDefault("history.default_limit", 10)
	vip.SetDefault("history.max_limit", 100)

	vip.SetDefault("seed.on_start", false)

	vip.SetDefault("websocket.enabled", true)
	vip.SetDefault("websocket.cluster.enabled", false)
	vip.SetDefault("websocket.cluster.channel", "leaderboard:events")

	vip.SetDefault("ratelimit.users_max_requests", 10)
	vip.SetDefault("ratelimit.users_window", time.Minute)
}

// Load загружает конфигурацию из .env, файла и переменных окружения
func Load(configPath string) (*Config, error) {
	// .env необязателен: в Docker переменные приходят из окружения
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Предупреждение: не удалось прочитать .env: %v", err)
	}

	vip := viper.New() // Новый экземпляр Viper, чтобы избежать глобального состояния

	setDefaults(vip)

	// Привязка для секции Server
	vip.BindEnv("server.port", "PORT")

	// Привязка для секции Database
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")

	// Привязка для секции Redis
	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	vip.BindEnv("cors.allowed_origins", "CORS_ALLOWED_ORIGINS")
	vip.BindEnv("leaderboard.cache_ttl", "LEADERBOARD_CACHE_TTL")
	vip.BindEnv("leaderboard.warm_interval", "LEADERBOARD_WARM_INTERVAL")
	vip.BindEnv("seed.on_start", "SEED_ON_START")
	vip.BindEnv("websocket.enabled", "WEBSOCKET_ENABLED")
	vip.BindEnv("websocket.cluster.enabled", "WEBSOCKET_CLUSTER_ENABLED")
	vip.BindEnv("websocket.cluster.instance_id", "WEBSOCKET_INSTANCE_ID")

	if configPath != "" {
		vip.SetConfigFile(configPath)
		// Файла может и не быть: значения есть в окружении и умолчаниях
		if err := vip.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if IsDebug() {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("Redis Configured: %t (mode: %s)", cfg.Redis.RedisConfigured(), cfg.Redis.Mode)
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("Seed On Start: %t", cfg.Seed.OnStart)
		log.Printf("Websocket Enabled: %t, Cluster: %t", cfg.WebSocket.Enabled, cfg.WebSocket.Cluster.Enabled)
		log.Printf("-----------------------------------------")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate проверяет обязательные параметры и согласованность значений
func (c *Config) Validate() error {
	if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
		return fmt.Errorf("database configuration (host, dbname, user) is incomplete (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if !IsDebug() && c.Database.Password == "" {
		return fmt.Errorf("database password is required in release mode (check DATABASE_PASSWORD env var)")
	}
	if c.History.DefaultLimit < 1 {
		return fmt.Errorf("history.default_limit must be positive, got %d", c.History.DefaultLimit)
	}
	if c.History.MaxLimit < c.History.DefaultLimit {
		return fmt.Errorf("history.max_limit (%d) must be >= history.default_limit (%d)", c.History.MaxLimit, c.History.DefaultLimit)
	}
	if c.RateLimit.UsersMaxRequests > 0 && c.RateLimit.UsersWindow <= 0 {
		return fmt.Errorf("ratelimit.users_window must be positive when users_max_requests is set, got %s", c.RateLimit.UsersWindow)
	}
	if c.WebSocket.Cluster.Enabled && !c.Redis.RedisConfigured() {
		return fmt.Errorf("websocket cluster mode requires redis (check REDIS_ADDR / REDIS_ADDRS)")
	}
	return nil
}
