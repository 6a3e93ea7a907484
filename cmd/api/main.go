package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/yourusername/leaderboard-api/internal/config"
	"github.com/yourusername/leaderboard-api/internal/domain/repository"
	"github.com/yourusername/leaderboard-api/internal/handler"
	"github.com/yourusername/leaderboard-api/internal/metrics"
	"github.com/yourusername/leaderboard-api/internal/middleware"
	pgRepo "github.com/yourusername/leaderboard-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/leaderboard-api/internal/repository/redis"
	"github.com/yourusername/leaderboard-api/internal/service"
	ws "github.com/yourusername/leaderboard-api/internal/websocket"
	"github.com/yourusername/leaderboard-api/internal/worker"
	"github.com/yourusername/leaderboard-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), config.IsDebug())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}
	sqlDB, err := database.GetSQLDB(db)
	if err != nil {
		log.Printf("Failed to get sql.DB: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	// Применяем миграции
	if err := database.MigrateDB(db, database.DefaultMigrationsSource); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis необязателен: без него кеш отключен, лимиты локальные, кластер недоступен
	var redisClient redis.UniversalClient
	var cacheRepo repository.CacheRepository = redisRepo.NoOpCache{}
	if cfg.Redis.RedisConfigured() {
		redisClient, err = database.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Printf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		log.Println("Successfully connected to Redis")

		redisCache, err := redisRepo.NewCacheRepo(redisClient)
		if err != nil {
			log.Printf("Failed to initialize CacheRepo: %v", err)
			os.Exit(1)
		}
		cacheRepo = redisCache
	} else {
		log.Println("Redis не настроен: кеш лидерборда отключен")
	}

	// Метрики
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	historyRepo := pgRepo.NewHistoryRepo(db)
	claimRepo := pgRepo.NewClaimRepo(db)

	// Инициализация WebSocket Hub
	var publisher service.EventPublisher = service.NoopPublisher{}
	var wsHub *ws.Hub
	var wsManager *ws.Manager
	var pubSubProvider ws.PubSubProvider
	if cfg.WebSocket.Enabled {
		hubCfg := ws.HubConfig{InstanceID: cfg.WebSocket.Cluster.InstanceID}
		if cfg.WebSocket.Cluster.Enabled {
			redisPubSub, err := ws.NewRedisPubSub(redisClient)
			if err != nil {
				log.Printf("Failed to initialize Redis PubSub: %v", err)
				os.Exit(1)
			}
			pubSubProvider = redisPubSub
			hubCfg.Channel = cfg.WebSocket.Cluster.Channel
		}
		wsHub = ws.NewHub(hubCfg, pubSubProvider)
		go wsHub.Run(ctx)
		wsManager = ws.NewManager(wsHub)
		publisher = wsManager
		log.Printf("WebSocket включен (instance %s, cluster: %t)", wsHub.InstanceID(), cfg.WebSocket.Cluster.Enabled)
	}

	// Инициализируем сервисы
	leaderboardService := service.NewLeaderboardService(userRepo, cacheRepo, cfg.Leaderboard.CacheTTL, collector)
	userService := service.NewUserService(userRepo, leaderboardService, publisher, collector)
	claimService := service.NewClaimService(claimRepo, leaderboardService, nil, publisher, collector)
	historyService := service.NewHistoryService(historyRepo, cfg.History.DefaultLimit, cfg.History.MaxLimit, publisher, collector)
	seedService := service.NewSeedService(userRepo, leaderboardService, publisher, nil)

	if cfg.Seed.OnStart {
		seedCtx, seedCancel := context.WithTimeout(ctx, 30*time.Second)
		err := seedService.Seed(seedCtx)
		seedCancel()
		if err != nil {
			log.Printf("Failed to seed database: %v", err)
			os.Exit(1)
		}
	}

	// Фоновый прогрев кеша лидерборда
	warmer := worker.NewLeaderboardWarmer(leaderboardService, publisher, cfg.Leaderboard.WarmInterval)
	if err := warmer.Start(); err != nil {
		log.Printf("Failed to start leaderboard warmer: %v", err)
		os.Exit(1)
	}

	// Инициализируем обработчики
	userHandler := handler.NewUserHandler(userService, leaderboardService)
	claimHandler := handler.NewClaimHandler(claimService)
	historyHandler := handler.NewHistoryHandler(historyService)

	healthChecks := map[string]handler.HealthCheck{
		"postgres": sqlDB.PingContext,
	}
	if redisClient != nil {
		healthChecks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	healthHandler := handler.NewHealthHandler(healthChecks)

	rateLimiter := middleware.NewRateLimiter(redisClient)
	defer rateLimiter.Stop()

	// Инициализируем роутер Gin
	router := gin.Default()

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	if config.IsDebug() {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else if err := router.SetTrustedProxies(nil); err != nil {
		log.Printf("Warning: failed to set trusted proxies: %v", err)
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(collector.Middleware())

	router.GET("/healthz", healthHandler.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler(registry)))

	api := router.Group("/api")
	{
		api.GET("/users", userHandler.GetUsers)
		api.POST("/users",
			rateLimiter.LimitByIP(middleware.UserRegistrationRateLimitConfig(cfg.RateLimit.UsersMaxRequests, cfg.RateLimit.UsersWindow)),
			userHandler.AddUser,
		)
		api.GET("/leaderboard", userHandler.GetLeaderboard)
		api.POST("/claim", claimHandler.Claim)
		api.GET("/history", historyHandler.GetHistory)
		api.DELETE("/history", historyHandler.ClearHistory)
		api.GET("/history/export", historyHandler.ExportHistory)
	}

	if wsHub != nil {
		wsHandler := handler.NewWSHandler(wsHub, wsManager, cfg.CORS.AllowedOrigins)
		router.GET("/ws", wsHandler.HandleConnection)
		router.GET("/ws/metrics", func(c *gin.Context) {
			c.JSON(http.StatusOK, wsManager.GetMetrics())
		})
	}

	// Настраиваем HTTP сервер с тайм-аутами
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if err := warmer.Stop(); err != nil {
		log.Printf("Error stopping leaderboard warmer: %v", err)
	}

	// Останавливаем хаб и подписки
	cancel()
	if wsHub != nil {
		wsHub.Stop()
	}
	if pubSubProvider != nil {
		if err := pubSubProvider.Close(); err != nil {
			log.Printf("Error closing PubSub provider: %v", err)
		}
	}

	log.Println("Server exited properly")
}
