package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

type IngredientService struct {
	db *gorm.DB
}

var _ IIngredientService = (*IngredientService)(nil)

func NewIngredientService(db *gorm.DB) *IngredientService {
	return &IngredientService{db: db}
}

// ListIngredients returns ingredients whose name starts with prefix,
// ignoring case.
func (s *IngredientService) ListIngredients(ctx context.Context, prefix string) ([]types.Ingredient, error) {
	q := s.db.WithContext(ctx).Order("name").Order("id")
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\'", escapeLike(strings.ToLower(prefix))+"%")
	}
	var items []models.Ingredient
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	result := make([]types.Ingredient, len(items))
	for i := range items {
		result[i] = ingredientResponse(&items[i])
	}
	return result, nil
}

func (s *IngredientService) GetIngredient(ctx context.Context, id uint) (*types.Ingredient, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ingredientResponse(item)
	return &resp, nil
}

func (s *IngredientService) CreateIngredient(ctx context.Context, req *types.IngredientRequest) (*types.Ingredient, error) {
	name, err := requiredText("name", req.Name)
	if err != nil {
		return nil, err
	}
	unit, err := requiredText("measurement_unit", req.MeasurementUnit)
	if err != nil {
		return nil, err
	}
	item := models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	resp := ingredientResponse(&item)
	return &resp, nil
}

// UpdateIngredient changes the fields present in req.
func (s *IngredientService) UpdateIngredient(ctx context.Context, id uint, req *types.IngredientPatchRequest) (*types.Ingredient, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if item.Name, err = requiredText("name", *req.Name); err != nil {
			return nil, err
		}
	}
	if req.MeasurementUnit != nil {
		if item.MeasurementUnit, err = requiredText("measurement_unit", *req.MeasurementUnit); err != nil {
			return nil, err
		}
	}
	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	resp := ingredientResponse(item)
	return &resp, nil
}

// DeleteIngredient removes an ingredient that no recipe uses.
func (s *IngredientService) DeleteIngredient(ctx context.Context, id uint) error {
	item, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	var used int64
	if err := s.db.WithContext(ctx).Model(&models.RecipeIngredient{}).
		Where("ingredient_id = ?", id).Count(&used).Error; err != nil {
		return err
	}
	if used > 0 {
		return invalid("", "ingredient is used by %d recipe(s)", used)
	}
	return s.db.WithContext(ctx).Delete(item).Error
}

func (s *IngredientService) find(ctx context.Context, id uint) (*models.Ingredient, error) {
	var item models.Ingredient
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("ingredient")
		}
		return nil, err
	}
	return &item, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
