package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/meridian/academics/internal/app/migrations"
	"github.com/meridian/academics/internal/config"
	"github.com/meridian/academics/internal/db"
	"github.com/meridian/academics/internal/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	migrationsDir := flag.String("dir", "migrations", "path to the migrations directory")
	flag.Parse()

	// Optional .env for local development; real deployments set env vars.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logger.Configure(logger.Config{
		Level:  logger.LogLevel(cfg.Logging.Level),
		Pretty: cfg.Logging.Format != "json",
	})

	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to connect to database")
		os.Exit(1)
	}
	defer database.Close()

	migrator := migrations.NewMigrator(database.Pool)
	if err := migrator.MigrateDir(context.Background(), *migrationsDir); err != nil {
		logger.Error().Err(err).Msg("Migration failed")
		os.Exit(1)
	}

	logger.Info().Msg("Migrations applied")
}
