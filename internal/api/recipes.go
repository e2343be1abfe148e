package api

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/report"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

const shoppingListFilename = "shopping_list.pdf"

type RecipeHandler struct {
	recipeService service.IRecipeService
	authService   service.IAuthService
	pageSize      int
	fontPath      string
	limiter       *middleware.RateLimiter
}

func NewRecipeHandler(recipeService service.IRecipeService, authService service.IAuthService, opts Options) *RecipeHandler {
	return &RecipeHandler{
		recipeService: recipeService,
		authService:   authService,
		pageSize:      opts.PageSize,
		fontPath:      opts.PDFFontPath,
		limiter:       opts.RecipeLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	auth := middleware.AuthMiddleware(h.authService)
	optional := middleware.OptionalAuth(h.authService)

	create := []gin.HandlerFunc{auth}
	if h.limiter != nil {
		create = append(create, h.limiter.RateLimitMiddleware())
	}

	handle(recipes, http.MethodGet, "", optional, h.ListRecipes)
	handle(recipes, http.MethodPost, "", append(create, h.CreateRecipe)...)
	handle(recipes, http.MethodGet, "/download_shopping_cart", auth, h.DownloadShoppingCart)
	handle(recipes, http.MethodGet, "/:id", optional, h.GetRecipe)
	handle(recipes, http.MethodPatch, "/:id", auth, h.UpdateRecipe)
	handle(recipes, http.MethodDelete, "/:id", auth, h.DeleteRecipe)
	handle(recipes, http.MethodPost, "/:id/favorite", auth, h.AddFavorite)
	handle(recipes, http.MethodDelete, "/:id/favorite", auth, h.RemoveFavorite)
	handle(recipes, http.MethodPost, "/:id/shopping_cart", auth, h.AddToShoppingCart)
	handle(recipes, http.MethodDelete, "/:id/shopping_cart", auth, h.RemoveFromShoppingCart)
}

// ListRecipes returns recipes newest first. Filters: author, tags (any of),
// is_favorited and is_in_shopping_cart.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	page, ok := pageRequest(c, h.pageSize)
	if !ok {
		return
	}
	filter, ok := recipeFilter(c)
	if !ok {
		return
	}

	recipes, total, err := h.recipeService.ListRecipes(c.Request.Context(), middleware.CurrentUserID(c), filter, page)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondPage(c, recipes, total, page)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c, "recipe")
	if !ok {
		return
	}
	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), middleware.CurrentUserID(c), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := pathID(c, "recipe")
	if !ok {
		return
	}
	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), middleware.CurrentUserID(c), id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := pathID(c, "recipe")
	if !ok {
		return
	}
	if err := h.recipeService.DeleteRecipe(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.mark(c, h.recipeService.AddFavorite)
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.unmark(c, h.recipeService.RemoveFavorite)
}

func (h *RecipeHandler) AddToShoppingCart(c *gin.Context) {
	h.mark(c, h.recipeService.AddToShoppingCart)
}

func (h *RecipeHandler) RemoveFromShoppingCart(c *gin.Context) {
	h.unmark(c, h.recipeService.RemoveFromShoppingCart)
}

// DownloadShoppingCart renders the caller's aggregated shopping list as a PDF.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	items, err := h.recipeService.ShoppingList(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	var buf bytes.Buffer
	if err := report.RenderShoppingList(&buf, items, h.fontPath); err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+shoppingListFilename+`"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

type markFunc func(ctx context.Context, viewer, recipeID uint) (*types.RecipeShort, error)

type unmarkFunc func(ctx context.Context, viewer, recipeID uint) error

func (h *RecipeHandler) mark(c *gin.Context, fn markFunc) {
	id, ok := pathID(c, "recipe")
	if !ok {
		return
	}
	short, err := fn(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, short)
}

func (h *RecipeHandler) unmark(c *gin.Context, fn unmarkFunc) {
	id, ok := pathID(c, "recipe")
	if !ok {
		return
	}
	if err := fn(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func recipeFilter(c *gin.Context) (types.RecipeFilter, bool) {
	filter := types.RecipeFilter{
		Tags:             nonEmpty(c.QueryArray("tags")),
		IsFavorited:      queryFlag(c, "is_favorited"),
		IsInShoppingCart: queryFlag(c, "is_in_shopping_cart"),
	}
	if raw := c.Query("author"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			_ = c.Error(badQuery("author", "author must be a user id"))
			return filter, false
		}
		filter.AuthorID = uint(id)
	}
	return filter, true
}

// nonEmpty drops blank values, so "?tags=" does not filter.
func nonEmpty(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func queryFlag(c *gin.Context, name string) bool {
	v := c.Query(name)
	return v == "1" || v == "true"
}
