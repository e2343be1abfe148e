package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

type TagService struct {
	db *gorm.DB
}

var _ ITagService = (*TagService)(nil)

func NewTagService(db *gorm.DB) *TagService {
	return &TagService{db: db}
}

func (s *TagService) ListTags(ctx context.Context) ([]types.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("id DESC").Find(&tags).Error; err != nil {
		return nil, err
	}
	result := make([]types.Tag, len(tags))
	for i := range tags {
		result[i] = tagResponse(&tags[i])
	}
	return result, nil
}

func (s *TagService) GetTag(ctx context.Context, id uint) (*types.Tag, error) {
	tag, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := tagResponse(tag)
	return &resp, nil
}

func (s *TagService) CreateTag(ctx context.Context, req *types.TagRequest) (*types.Tag, error) {
	name, err := requiredText("name", req.Name)
	if err != nil {
		return nil, err
	}
	tag := models.Tag{
		Name:  name,
		Color: strings.ToUpper(req.Color),
		Slug:  req.Slug,
	}
	if err := s.checkUnique(ctx, &tag); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&tag).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, invalid("", "a tag with this name, color or slug already exists")
		}
		return nil, err
	}
	resp := tagResponse(&tag)
	return &resp, nil
}

// UpdateTag changes the fields present in req.
func (s *TagService) UpdateTag(ctx context.Context, id uint, req *types.TagPatchRequest) (*types.Tag, error) {
	tag, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if tag.Name, err = requiredText("name", *req.Name); err != nil {
			return nil, err
		}
	}
	if req.Color != nil {
		tag.Color = strings.ToUpper(*req.Color)
	}
	if req.Slug != nil {
		tag.Slug = *req.Slug
	}
	if err := s.checkUnique(ctx, tag); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(tag).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, invalid("", "a tag with this name, color or slug already exists")
		}
		return nil, err
	}
	resp := tagResponse(tag)
	return &resp, nil
}

func (s *TagService) DeleteTag(ctx context.Context, id uint) error {
	tag, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM recipe_tags WHERE tag_id = ?", tag.ID).Error; err != nil {
			return err
		}
		return tx.Delete(tag).Error
	})
}

// checkUnique reports which unique field of tag collides with another tag.
func (s *TagService) checkUnique(ctx context.Context, tag *models.Tag) error {
	for _, field := range []struct{ column, value string }{
		{"name", tag.Name},
		{"color", tag.Color},
		{"slug", tag.Slug},
	} {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Tag{}).
			Where(field.column+" = ? AND id <> ?", field.value, tag.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return invalid(field.column, "a tag with this %s already exists", field.column)
		}
	}
	return nil
}

func (s *TagService) find(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("tag")
		}
		return nil, err
	}
	return &tag, nil
}
