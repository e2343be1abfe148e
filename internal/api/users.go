package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type UserHandler struct {
	authService service.IAuthService
	userService service.IUserService
	pageSize    int
}

func NewUserHandler(authService service.IAuthService, userService service.IUserService, pageSize int) *UserHandler {
	return &UserHandler{authService: authService, userService: userService, pageSize: pageSize}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	auth := middleware.AuthMiddleware(h.authService)

	handle(users, http.MethodGet, "", middleware.OptionalAuth(h.authService), h.ListUsers)
	handle(users, http.MethodPost, "", h.Register)
	handle(users, http.MethodGet, "/me", auth, h.Me)
	handle(users, http.MethodPost, "/set_password", auth, h.SetPassword)
	handle(users, http.MethodGet, "/subscriptions", auth, h.ListSubscriptions)
	handle(users, http.MethodGet, "/:id", auth, h.GetUser)
	handle(users, http.MethodPost, "/:id/subscribe", auth, h.Subscribe)
	handle(users, http.MethodDelete, "/:id/subscribe", auth, h.Unsubscribe)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page, ok := pageRequest(c, h.pageSize)
	if !ok {
		return
	}
	users, total, err := h.userService.ListUsers(c.Request.Context(), middleware.CurrentUserID(c), page)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondPage(c, users, total, page)
}

// Register creates an account. It is open to anonymous callers.
func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, types.CreatedUser{
		Email:     user.Email,
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

func (h *UserHandler) Me(c *gin.Context) {
	viewer := middleware.CurrentUserID(c)
	user, err := h.userService.GetUser(c.Request.Context(), viewer, viewer)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "user")
	if !ok {
		return
	}
	user, err := h.userService.GetUser(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req types.SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	err := h.authService.SetPassword(c.Request.Context(), middleware.CurrentUserID(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "password changed successfully"})
}

func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	page, ok := pageRequest(c, h.pageSize)
	if !ok {
		return
	}
	limit, ok := recipesLimit(c)
	if !ok {
		return
	}
	subs, total, err := h.userService.ListSubscriptions(c.Request.Context(), middleware.CurrentUserID(c), page, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondPage(c, subs, total, page)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	id, ok := pathID(c, "user")
	if !ok {
		return
	}
	limit, ok := recipesLimit(c)
	if !ok {
		return
	}
	sub, err := h.userService.Subscribe(c.Request.Context(), middleware.CurrentUserID(c), id, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	id, ok := pathID(c, "user")
	if !ok {
		return
	}
	if err := h.userService.Unsubscribe(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// recipesLimit reads the recipes_limit query parameter; 0 means no limit.
func recipesLimit(c *gin.Context) (int, bool) {
	raw := c.Query("recipes_limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		_ = c.Error(badQuery("recipes_limit", "recipes_limit must be a non-negative integer"))
		return 0, false
	}
	return n, true
}

func respondPage[T any](c *gin.Context, results []T, total int64, page types.PageRequest) {
	body, err := newPage(c, results, total, page)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, body)
}
