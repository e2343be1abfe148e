package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// Services bundles the business services the handlers call.
type Services struct {
	Auth        service.IAuthService
	Users       service.IUserService
	Tags        service.ITagService
	Ingredients service.IIngredientService
	Recipes     service.IRecipeService
}

// Options tune the HTTP layer.
type Options struct {
	// DB is used by the staff check on tag and ingredient writes.
	DB          *gorm.DB
	PageSize    int
	PDFFontPath string
	// RecipeLimiter throttles recipe creation; nil disables it.
	RecipeLimiter *middleware.RateLimiter
}

// RegisterRoutes registers all API routes on the /api group.
func RegisterRoutes(api *gin.RouterGroup, svc Services, opts Options) {
	RegisterValidators()
	if opts.PageSize < 1 {
		opts.PageSize = 6
	}

	api.GET("/health", HealthCheck(opts.DB))

	NewAuthHandler(svc.Auth).RegisterRoutes(api)
	NewUserHandler(svc.Auth, svc.Users, opts.PageSize).RegisterRoutes(api)
	NewTagHandler(svc.Tags, svc.Auth, opts.DB).RegisterRoutes(api)
	NewIngredientHandler(svc.Ingredients, svc.Auth, opts.DB).RegisterRoutes(api)
	NewRecipeHandler(svc.Recipes, svc.Auth, opts).RegisterRoutes(api)
}

// HealthCheck reports whether the database answers.
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := database.HealthCheck(ctx, db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}

// handle registers path with and without a trailing slash.
func handle(g *gin.RouterGroup, method, path string, handlers ...gin.HandlerFunc) {
	g.Handle(method, path, handlers...)
	g.Handle(method, path+"/", handlers...)
}

// pathID parses the :id parameter. A malformed id cannot name an existing
// object, so it is reported as not found.
func pathID(c *gin.Context, entity string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		_ = c.Error(notFound(entity))
		return 0, false
	}
	return uint(id), true
}
