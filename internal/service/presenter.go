package service

import (
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// idSet is the set of ids for which a per-viewer flag holds.
type idSet map[uint]bool

// lookupSet returns which of ids have a row in model's table for viewer.
// column names the id column to match; an anonymous viewer gets an empty set.
func lookupSet(db *gorm.DB, model interface{}, viewer uint, column string, ids []uint) (idSet, error) {
	set := idSet{}
	if viewer == 0 || len(ids) == 0 {
		return set, nil
	}
	var found []uint
	if err := db.Model(model).
		Where("user_id = ? AND "+column+" IN ?", viewer, ids).
		Pluck(column, &found).Error; err != nil {
		return nil, err
	}
	for _, id := range found {
		set[id] = true
	}
	return set, nil
}

func userResponse(u *models.User, subscribed bool) types.User {
	return types.User{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

func tagResponse(t *models.Tag) types.Tag {
	return types.Tag{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

func ingredientResponse(i *models.Ingredient) types.Ingredient {
	return types.Ingredient{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func recipeShort(r *models.Recipe) types.RecipeShort {
	return types.RecipeShort{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}
