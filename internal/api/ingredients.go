package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type IngredientHandler struct {
	ingredientService service.IIngredientService
	authService       service.IAuthService
	db                *gorm.DB
}

func NewIngredientHandler(ingredientService service.IIngredientService, authService service.IAuthService, db *gorm.DB) *IngredientHandler {
	return &IngredientHandler{ingredientService: ingredientService, authService: authService, db: db}
}

func (h *IngredientHandler) RegisterRoutes(router *gin.RouterGroup) {
	ingredients := router.Group("/ingredients")
	staff := []gin.HandlerFunc{middleware.AuthMiddleware(h.authService), middleware.RequireStaff(h.db)}

	handle(ingredients, http.MethodGet, "", h.ListIngredients)
	handle(ingredients, http.MethodGet, "/:id", h.GetIngredient)
	handle(ingredients, http.MethodPost, "", append(staff, h.CreateIngredient)...)
	handle(ingredients, http.MethodPatch, "/:id", append(staff, h.UpdateIngredient)...)
	handle(ingredients, http.MethodDelete, "/:id", append(staff, h.DeleteIngredient)...)
}

func (h *IngredientHandler) ListIngredients(c *gin.Context) {
	ingredients, err := h.ingredientService.ListIngredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

func (h *IngredientHandler) GetIngredient(c *gin.Context) {
	id, ok := pathID(c, "ingredient")
	if !ok {
		return
	}
	ingredient, err := h.ingredientService.GetIngredient(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

func (h *IngredientHandler) CreateIngredient(c *gin.Context) {
	var req types.IngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	ingredient, err := h.ingredientService.CreateIngredient(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, ingredient)
}

func (h *IngredientHandler) UpdateIngredient(c *gin.Context) {
	id, ok := pathID(c, "ingredient")
	if !ok {
		return
	}
	var req types.IngredientPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	ingredient, err := h.ingredientService.UpdateIngredient(c.Request.Context(), id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

func (h *IngredientHandler) DeleteIngredient(c *gin.Context) {
	id, ok := pathID(c, "ingredient")
	if !ok {
		return
	}
	if err := h.ingredientService.DeleteIngredient(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
