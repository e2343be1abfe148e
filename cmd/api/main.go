package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/router"
	"github.com/pageza/foodgram/backend/internal/server"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/storage"
)

func main() {
	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		zap.NewExample().Fatal("failed to load configuration", zap.Error(err))
	}

	log := logger.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	db, err := database.New(cfg, log)
	if err != nil {
		return err
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir, log); err != nil {
		return err
	}

	var (
		tokens  service.TokenStore = service.NewMemoryTokenStore()
		limiter *middleware.RateLimiter
	)
	if cfg.RedisEnabled() {
		client, err := database.NewRedisClient(cfg, log)
		if err != nil {
			return err
		}
		defer client.Close()
		tokens = service.NewRedisTokenStore(client)
		limiter = middleware.NewRecipeCreationRateLimiter(client, cfg.RecipeRateLimit, log)
	} else {
		log.Warn("redis not configured; token revocation is per-process and recipe creation is not rate limited")
	}

	images, err := imageStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	auth := service.NewAuthService(db, cfg.JWTSecret, cfg.JWTTTL, tokens, log)
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := auth.EnsureStaffUser(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return err
		}
		log.Info("staff account ready", zap.String("email", cfg.AdminEmail))
	}

	services := api.Services{
		Auth:        auth,
		Users:       service.NewUserService(db, log),
		Tags:        service.NewTagService(db),
		Ingredients: service.NewIngredientService(db),
		Recipes:     service.NewRecipeService(db, images, log),
	}

	srv := server.New(cfg, router.SetupRouter(cfg, db, log, services, limiter), log)
	return srv.Start(ctx)
}

func imageStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (storage.ImageStore, error) {
	if cfg.S3Bucket == "" {
		log.Info("storing images on disk", zap.String("root", cfg.MediaRoot))
		return storage.NewLocalStore(cfg.MediaRoot, cfg.MediaURL), nil
	}
	s3cfg, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("storing images in S3", zap.String("bucket", s3cfg.BucketName))
	return storage.NewS3Store(s3cfg.Client, s3cfg.BucketName, s3cfg.Region), nil
}
