package database

import (
	"encoding/json"
	"fmt"
	"io"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/models"
)

// DefaultTags are created on a fresh install.
var DefaultTags = []models.Tag{
	{Name: "Breakfast", Color: models.ColorOrange, Slug: "breakfast"},
	{Name: "Lunch", Color: models.ColorGreen, Slug: "lunch"},
	{Name: "Dinner", Color: models.ColorPurple, Slug: "dinner"},
}

// LoadIngredients decodes a JSON array of {"name", "measurement_unit"} objects.
func LoadIngredients(r io.Reader) ([]models.Ingredient, error) {
	var items []models.Ingredient
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode ingredients: %w", err)
	}
	for i := range items {
		items[i].ID = 0
	}
	return items, nil
}

// SeedIngredients inserts ingredients that are not present yet, matching on
// (name, measurement_unit). It returns the number of rows created.
func SeedIngredients(db *gorm.DB, items []models.Ingredient) (int, error) {
	created := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			var count int64
			if err := tx.Model(&models.Ingredient{}).
				Where("name = ? AND measurement_unit = ?", item.Name, item.MeasurementUnit).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			row := models.Ingredient{Name: item.Name, MeasurementUnit: item.MeasurementUnit}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to create ingredient %q: %w", item.Name, err)
			}
			created++
		}
		return nil
	})
	return created, err
}

// SeedTags creates tags, skipping slugs that already exist.
func SeedTags(db *gorm.DB, tags []models.Tag) (int, error) {
	created := 0
	for _, tag := range tags {
		row := models.Tag{Name: tag.Name, Color: tag.Color, Slug: tag.Slug}
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if res.Error != nil {
			return created, fmt.Errorf("failed to create tag %q: %w", tag.Slug, res.Error)
		}
		created += int(res.RowsAffected)
	}
	return created, nil
}
