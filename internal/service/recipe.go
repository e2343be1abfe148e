package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/types"
)

// RecipeService handles recipe operations together with favorites and the
// shopping cart.
type RecipeService struct {
	db     *gorm.DB
	images storage.ImageStore
	logger *zap.Logger
}

var _ IRecipeService = (*RecipeService)(nil)

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, images storage.ImageStore, logger *zap.Logger) *RecipeService {
	return &RecipeService{db: db, images: images, logger: logger}
}

// ListRecipes returns one page of recipes, newest first.
func (s *RecipeService) ListRecipes(ctx context.Context, viewer uint, filter types.RecipeFilter, page types.PageRequest) ([]types.Recipe, int64, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := s.filtered(db, viewer, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	if err := withDetails(s.filtered(db, viewer, filter)).
		Order("recipes.pub_date DESC, recipes.id DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	result, err := s.render(db, viewer, recipes)
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// filtered builds a fresh recipe query restricted by filter. The favorite and
// cart filters only apply to authenticated viewers.
func (s *RecipeService) filtered(db *gorm.DB, viewer uint, filter types.RecipeFilter) *gorm.DB {
	q := db.Model(&models.Recipe{})
	if filter.AuthorID != 0 {
		q = q.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if len(filter.Tags) > 0 {
		tagged := db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.Tags)
		q = q.Where("recipes.id IN (?)", tagged)
	}
	if viewer != 0 && filter.IsFavorited {
		q = q.Where("recipes.id IN (?)",
			db.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", viewer))
	}
	if viewer != 0 && filter.IsInShoppingCart {
		q = q.Where("recipes.id IN (?)",
			db.Model(&models.ShoppingCartItem{}).Select("recipe_id").Where("user_id = ?", viewer))
	}
	return q
}

func withDetails(q *gorm.DB) *gorm.DB {
	return q.Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id DESC") }).
		Preload("Ingredients.Ingredient")
}

func (s *RecipeService) GetRecipe(ctx context.Context, viewer, id uint) (*types.Recipe, error) {
	db := s.db.WithContext(ctx)
	var recipe models.Recipe
	if err := withDetails(db).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("recipe")
		}
		return nil, err
	}
	result, err := s.render(db, viewer, []models.Recipe{recipe})
	if err != nil {
		return nil, err
	}
	return &result[0], nil
}

// CreateRecipe validates req and stores a new recipe authored by viewer.
func (s *RecipeService) CreateRecipe(ctx context.Context, viewer uint, req *types.RecipeRequest) (*types.Recipe, error) {
	switch {
	case req.Ingredients == nil:
		return nil, invalid("ingredients", "this field is required")
	case req.Tags == nil:
		return nil, invalid("tags", "this field is required")
	case req.Image == nil:
		return nil, invalid("image", "this field is required")
	case req.Name == nil:
		return nil, invalid("name", "this field is required")
	case req.Text == nil:
		return nil, invalid("text", "this field is required")
	case req.CookingTime == nil:
		return nil, invalid("cooking_time", "this field is required")
	}

	recipe := models.Recipe{AuthorID: viewer}
	if err := s.applyFields(&recipe, req); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	lines, err := s.ingredientLines(db, *req.Ingredients)
	if err != nil {
		return nil, err
	}
	tags, err := s.findTags(db, *req.Tags)
	if err != nil {
		return nil, err
	}

	image, err := s.saveImage(ctx, *req.Image)
	if err != nil {
		return nil, err
	}
	recipe.Image = image
	recipe.Tags = tags

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags.*", "Ingredients", "Author").Create(&recipe).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].RecipeID = recipe.ID
		}
		return tx.Omit("Ingredient").Create(&lines).Error
	})
	if err != nil {
		s.dropImage(ctx, image)
		return nil, err
	}

	s.logger.Info("recipe created", zap.Uint("recipe_id", recipe.ID), zap.Uint("author_id", viewer))
	return s.GetRecipe(ctx, viewer, recipe.ID)
}

// UpdateRecipe applies the fields present in req. Tags and ingredients are
// replaced as a whole when given.
func (s *RecipeService) UpdateRecipe(ctx context.Context, viewer, id uint, req *types.RecipeRequest) (*types.Recipe, error) {
	recipe, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, viewer, recipe); err != nil {
		return nil, err
	}
	if err := s.applyFields(recipe, req); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var lines []models.RecipeIngredient
	if req.Ingredients != nil {
		if lines, err = s.ingredientLines(db, *req.Ingredients); err != nil {
			return nil, err
		}
	}
	var tags []models.Tag
	if req.Tags != nil {
		if tags, err = s.findTags(db, *req.Tags); err != nil {
			return nil, err
		}
	}

	oldImage := recipe.Image
	if req.Image != nil {
		if recipe.Image, err = s.saveImage(ctx, *req.Image); err != nil {
			return nil, err
		}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Recipe{ID: recipe.ID}).Updates(map[string]interface{}{
			"name":         recipe.Name,
			"text":         recipe.Text,
			"cooking_time": recipe.CookingTime,
			"image":        recipe.Image,
		}).Error; err != nil {
			return err
		}
		if req.Tags != nil {
			if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", recipe.ID).Error; err != nil {
				return err
			}
			for _, tag := range tags {
				if err := tx.Exec("INSERT INTO recipe_tags (recipe_id, tag_id) VALUES (?, ?)", recipe.ID, tag.ID).Error; err != nil {
					return err
				}
			}
		}
		if req.Ingredients != nil {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
				return err
			}
			for i := range lines {
				lines[i].RecipeID = recipe.ID
			}
			if err := tx.Omit("Ingredient").Create(&lines).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if recipe.Image != oldImage {
			s.dropImage(ctx, recipe.Image)
		}
		return nil, err
	}
	if recipe.Image != oldImage {
		s.dropImage(ctx, oldImage)
	}

	return s.GetRecipe(ctx, viewer, recipe.ID)
}

// DeleteRecipe removes the recipe with its tag links, ingredient lines,
// favorites and cart entries.
func (s *RecipeService) DeleteRecipe(ctx context.Context, viewer, id uint) error {
	recipe, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, viewer, recipe); err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", id).Error; err != nil {
			return err
		}
		for _, model := range []interface{}{&models.RecipeIngredient{}, &models.Favorite{}, &models.ShoppingCartItem{}} {
			if err := tx.Where("recipe_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Recipe{}, id).Error
	})
	if err != nil {
		return err
	}
	s.dropImage(ctx, recipe.Image)
	s.logger.Info("recipe deleted", zap.Uint("recipe_id", id), zap.Uint("user_id", viewer))
	return nil
}

func (s *RecipeService) AddFavorite(ctx context.Context, viewer, recipeID uint) (*types.RecipeShort, error) {
	return s.mark(ctx, recipeID, &models.Favorite{UserID: viewer, RecipeID: recipeID}, "recipe is already in favorites")
}

func (s *RecipeService) RemoveFavorite(ctx context.Context, viewer, recipeID uint) error {
	return s.unmark(ctx, viewer, recipeID, &models.Favorite{}, "recipe is not in favorites")
}

func (s *RecipeService) AddToShoppingCart(ctx context.Context, viewer, recipeID uint) (*types.RecipeShort, error) {
	return s.mark(ctx, recipeID, &models.ShoppingCartItem{UserID: viewer, RecipeID: recipeID}, "recipe is already in the shopping cart")
}

func (s *RecipeService) RemoveFromShoppingCart(ctx context.Context, viewer, recipeID uint) error {
	return s.unmark(ctx, viewer, recipeID, &models.ShoppingCartItem{}, "recipe is not in the shopping cart")
}

// ShoppingList sums the ingredient amounts of every recipe in viewer's cart,
// one line per ingredient name and unit, ordered by name.
func (s *RecipeService) ShoppingList(ctx context.Context, viewer uint) ([]types.ShoppingListItem, error) {
	items := []types.ShoppingListItem{}
	err := s.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_cart_items ON shopping_cart_items.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_cart_items.user_id = ?", viewer).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name, ingredients.measurement_unit").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// mark inserts a per-user row (favorite or cart entry) for an existing recipe.
func (s *RecipeService) mark(ctx context.Context, recipeID uint, row interface{}, duplicate string) (*types.RecipeShort, error) {
	recipe, err := s.find(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, invalid("", duplicate)
		}
		return nil, err
	}
	short := recipeShort(recipe)
	return &short, nil
}

func (s *RecipeService) unmark(ctx context.Context, viewer, recipeID uint, model interface{}, missing string) error {
	if _, err := s.find(ctx, recipeID); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Where("user_id = ? AND recipe_id = ?", viewer, recipeID).Delete(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return invalid("", missing)
	}
	return nil
}

// applyFields copies and validates the scalar fields present in req.
func (s *RecipeService) applyFields(recipe *models.Recipe, req *types.RecipeRequest) error {
	var err error
	if req.Name != nil {
		if recipe.Name, err = requiredText("name", *req.Name); err != nil {
			return err
		}
	}
	if req.Text != nil {
		if recipe.Text, err = requiredText("text", *req.Text); err != nil {
			return err
		}
	}
	if req.CookingTime != nil {
		if *req.CookingTime < 1 {
			return invalid("cooking_time", "cooking time must be at least 1 minute")
		}
		recipe.CookingTime = *req.CookingTime
	}
	return nil
}

// ingredientLines checks the ingredient list of a recipe and turns it into
// rows. An unknown ingredient id is a not found error.
func (s *RecipeService) ingredientLines(db *gorm.DB, items []types.IngredientAmount) ([]models.RecipeIngredient, error) {
	if len(items) == 0 {
		return nil, invalid("ingredients", "a recipe needs at least one ingredient")
	}

	seen := make(map[uint]bool, len(items))
	ids := make([]uint, 0, len(items))
	lines := make([]models.RecipeIngredient, 0, len(items))
	for _, item := range items {
		if seen[item.ID] {
			return nil, invalid("ingredients", "ingredient %d is listed more than once", item.ID)
		}
		if item.Amount < 1 {
			return nil, invalid("ingredients", "amount of ingredient %d must be at least 1", item.ID)
		}
		seen[item.ID] = true
		ids = append(ids, item.ID)
		lines = append(lines, models.RecipeIngredient{IngredientID: item.ID, Amount: item.Amount})
	}

	var found []uint
	if err := db.Model(&models.Ingredient{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	if len(found) != len(ids) {
		return nil, notFound("ingredient")
	}
	return lines, nil
}

func (s *RecipeService) findTags(db *gorm.DB, ids []uint) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, invalid("tags", "a recipe needs at least one tag")
	}
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, invalid("tags", "tag %d is listed more than once", id)
		}
		seen[id] = true
	}

	var tags []models.Tag
	if err := db.Where("id IN ?", ids).Order("id").Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		for _, tag := range tags {
			delete(seen, tag.ID)
		}
		for id := range seen {
			return nil, invalid("tags", "tag %d does not exist", id)
		}
	}
	return tags, nil
}

func (s *RecipeService) saveImage(ctx context.Context, dataURL string) (string, error) {
	data, contentType, err := storage.DecodeDataURL(dataURL)
	if err != nil {
		return "", invalid("image", "%s", err.Error())
	}
	url, err := s.images.Save(ctx, data, contentType)
	if err != nil {
		return "", err
	}
	return url, nil
}

// dropImage deletes a stored image; failures are only logged.
func (s *RecipeService) dropImage(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.images.Delete(ctx, url); err != nil {
		s.logger.Warn("failed to delete recipe image", zap.String("image", url), zap.Error(err))
	}
}

// authorize allows the author and staff users to modify a recipe.
func (s *RecipeService) authorize(ctx context.Context, viewer uint, recipe *models.Recipe) error {
	if viewer != 0 && recipe.AuthorID == viewer {
		return nil
	}
	var user models.User
	if err := s.db.WithContext(ctx).Select("id", "is_staff").First(&user, viewer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPermissionDenied
		}
		return err
	}
	if !user.IsStaff {
		return ErrPermissionDenied
	}
	return nil
}

func (s *RecipeService) find(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("recipe")
		}
		return nil, err
	}
	return &recipe, nil
}

// render converts loaded recipes and resolves the viewer dependent flags.
func (s *RecipeService) render(db *gorm.DB, viewer uint, recipes []models.Recipe) ([]types.Recipe, error) {
	ids := make([]uint, len(recipes))
	authors := make([]uint, len(recipes))
	for i := range recipes {
		ids[i] = recipes[i].ID
		authors[i] = recipes[i].AuthorID
	}

	favorited, err := lookupSet(db, &models.Favorite{}, viewer, "recipe_id", ids)
	if err != nil {
		return nil, err
	}
	inCart, err := lookupSet(db, &models.ShoppingCartItem{}, viewer, "recipe_id", ids)
	if err != nil {
		return nil, err
	}
	subscribed, err := lookupSet(db, &models.Subscription{}, viewer, "author_id", authors)
	if err != nil {
		return nil, err
	}

	result := make([]types.Recipe, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		tags := make([]types.Tag, len(r.Tags))
		for j := range r.Tags {
			tags[j] = tagResponse(&r.Tags[j])
		}
		ingredients := make([]types.RecipeIngredient, len(r.Ingredients))
		for j, line := range r.Ingredients {
			ingredients[j] = types.RecipeIngredient{
				ID:              line.IngredientID,
				Name:            line.Ingredient.Name,
				MeasurementUnit: line.Ingredient.MeasurementUnit,
				Amount:          line.Amount,
			}
		}
		result[i] = types.Recipe{
			ID:               r.ID,
			Tags:             tags,
			Author:           userResponse(&r.Author, subscribed[r.AuthorID]),
			Ingredients:      ingredients,
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.Image,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		}
	}
	return result, nil
}
