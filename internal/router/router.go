package router

import (
	"strings"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/middleware"
)

// SetupRouter configures the middleware chain and the application routes.
// limiter may be nil when redis is not configured.
func SetupRouter(
	cfg *config.Config,
	db *gorm.DB,
	logger *zap.Logger,
	services api.Services,
	limiter *middleware.RateLimiter,
) *gin.Engine {
	router := gin.New()

	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.Metrics())
	router.Use(middleware.ErrorHandler(logger))

	// Uploaded images are served from disk unless they live in S3
	if cfg.S3Bucket == "" && cfg.MediaRoot != "" {
		if prefix := strings.TrimSuffix(cfg.MediaURL, "/"); strings.HasPrefix(prefix, "/") && prefix != "" {
			router.Static(prefix, cfg.MediaRoot)
		}
	}

	router.GET("/api/metrics", gin.WrapH(promhttp.Handler()))

	api.RegisterRoutes(router.Group("/api"), services, api.Options{
		DB:            db,
		PageSize:      cfg.PageSize,
		PDFFontPath:   cfg.PDFFontPath,
		RecipeLimiter: limiter,
	})

	return router
}
