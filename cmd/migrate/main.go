package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/yourusername/leaderboard-api/internal/config"
)

// Утилита ручного управления миграциями:
//
//	migrate -cmd up
//	migrate -cmd down -steps 1
//	migrate -cmd force -version 1   (снять dirty-состояние после неудачной миграции)
//	migrate -cmd version
func main() {
	command := flag.String("cmd", "up", "up | down | force | version")
	steps := flag.Int("steps", 0, "количество шагов для down (0 = откатить все)")
	version := flag.Int("version", -1, "версия для force")
	source := flag.String("source", "file://migrations", "источник миграций")
	flag.Parse()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatal(err)
	}

	m, err := migrate.NewWithDatabaseInstance(*source, "postgres", driver)
	if err != nil {
		log.Fatal(err)
	}

	if err := run(m, *command, *steps, *version); err != nil {
		log.Fatalf("Migration command %q failed: %v", *command, err)
	}
}

func run(m *migrate.Migrate, command string, steps, version int) error {
	switch command {
	case "up":
		return ignoreNoChange(m.Up())
	case "down":
		if steps > 0 {
			return ignoreNoChange(m.Steps(-steps))
		}
		return ignoreNoChange(m.Down())
	case "force":
		if version < 0 {
			return fmt.Errorf("-version is required for force")
		}
		fmt.Printf("Forcing migration version to %d to clean dirty state...\n", version)
		return m.Force(version)
	case "version":
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("No migrations applied yet.")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("Version: %d, dirty: %t\n", v, dirty)
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("No change.")
		return nil
	}
	if err == nil {
		fmt.Println("Success!")
	}
	return err
}
