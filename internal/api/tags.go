package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type TagHandler struct {
	tagService  service.ITagService
	authService service.IAuthService
	db          *gorm.DB
}

func NewTagHandler(tagService service.ITagService, authService service.IAuthService, db *gorm.DB) *TagHandler {
	return &TagHandler{tagService: tagService, authService: authService, db: db}
}

func (h *TagHandler) RegisterRoutes(router *gin.RouterGroup) {
	tags := router.Group("/tags")
	staff := []gin.HandlerFunc{middleware.AuthMiddleware(h.authService), middleware.RequireStaff(h.db)}

	handle(tags, http.MethodGet, "", h.ListTags)
	handle(tags, http.MethodGet, "/:id", h.GetTag)
	handle(tags, http.MethodPost, "", append(staff, h.CreateTag)...)
	handle(tags, http.MethodPatch, "/:id", append(staff, h.UpdateTag)...)
	handle(tags, http.MethodDelete, "/:id", append(staff, h.DeleteTag)...)
}

func (h *TagHandler) ListTags(c *gin.Context) {
	tags, err := h.tagService.ListTags(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *TagHandler) GetTag(c *gin.Context) {
	id, ok := pathID(c, "tag")
	if !ok {
		return
	}
	tag, err := h.tagService.GetTag(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *TagHandler) CreateTag(c *gin.Context) {
	var req types.TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	tag, err := h.tagService.CreateTag(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

func (h *TagHandler) UpdateTag(c *gin.Context) {
	id, ok := pathID(c, "tag")
	if !ok {
		return
	}
	var req types.TagPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	tag, err := h.tagService.UpdateTag(c.Request.Context(), id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *TagHandler) DeleteTag(c *gin.Context) {
	id, ok := pathID(c, "tag")
	if !ok {
		return
	}
	if err := h.tagService.DeleteTag(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
