package main

import (
	"flag"
	"os"

	"go.uber.org/zap"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logger"
)

func main() {
	ingredientsPath := flag.String("ingredients", "data/ingredients.json", "JSON file with [{name, measurement_unit}]")
	withTags := flag.Bool("tags", true, "create the default tags")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		zap.NewExample().Fatal("failed to load configuration", zap.Error(err))
	}
	log := logger.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	db, err := database.New(cfg, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir, log); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	if *ingredientsPath != "" {
		f, err := os.Open(*ingredientsPath)
		if err != nil {
			log.Fatal("failed to open ingredients file", zap.Error(err))
		}
		items, err := database.LoadIngredients(f)
		_ = f.Close()
		if err != nil {
			log.Fatal("failed to load ingredients", zap.Error(err))
		}
		created, err := database.SeedIngredients(db, items)
		if err != nil {
			log.Fatal("failed to seed ingredients", zap.Error(err))
		}
		log.Info("ingredients seeded", zap.Int("created", created), zap.Int("total", len(items)))
	}

	if *withTags {
		created, err := database.SeedTags(db, database.DefaultTags)
		if err != nil {
			log.Fatal("failed to seed tags", zap.Error(err))
		}
		log.Info("tags seeded", zap.Int("created", created))
	}
}
