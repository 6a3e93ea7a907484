package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/yourusername/leaderboard-api/internal/config"
	"github.com/yourusername/leaderboard-api/internal/domain/repository"
	pgRepo "github.com/yourusername/leaderboard-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/leaderboard-api/internal/repository/redis"
	"github.com/yourusername/leaderboard-api/internal/service"
	"github.com/yourusername/leaderboard-api/pkg/database"
)

// Заполняет базу демонстрационными пользователями. Существующие пользователи и журнал удаляются.
func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), config.IsDebug())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.MigrateDB(db, database.DefaultMigrationsSource); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Сбрасываем кеш лидерборда, если Redis настроен
	var cacheRepo repository.CacheRepository = redisRepo.NoOpCache{}
	if cfg.Redis.RedisConfigured() {
		redisClient, err := database.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Printf("Redis недоступен, кеш не будет сброшен: %v", err)
		} else {
			defer redisClient.Close()
			if repo, err := redisRepo.NewCacheRepo(redisClient); err == nil {
				cacheRepo = repo
			}
		}
	}

	userRepo := pgRepo.NewUserRepo(db)
	leaderboardService := service.NewLeaderboardService(userRepo, cacheRepo, cfg.Leaderboard.CacheTTL, nil)
	seedService := service.NewSeedService(userRepo, leaderboardService, nil, nil)

	if err := seedService.Seed(ctx); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	log.Println("Database re-seeded successfully")
}
