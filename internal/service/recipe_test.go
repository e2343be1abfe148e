package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

type recipeFixture struct {
	db        *gorm.DB
	svc       *RecipeService
	media     string
	author    *models.User
	other     *models.User
	breakfast *models.Tag
	dinner    *models.Tag
	egg       *models.Ingredient
	milk      *models.Ingredient
}

func setupRecipes(t *testing.T) *recipeFixture {
	t.Helper()
	db := testhelpers.SetupTestDB(t)
	media := t.TempDir()
	return &recipeFixture{
		db:        db,
		svc:       NewRecipeService(db, storage.NewLocalStore(media, "/media/"), zap.NewNop()),
		media:     media,
		author:    testhelpers.CreateUser(t, db, "author", false),
		other:     testhelpers.CreateUser(t, db, "other", false),
		breakfast: testhelpers.CreateTag(t, db, "Завтрак", models.ColorBlue, "breakfast"),
		dinner:    testhelpers.CreateTag(t, db, "Ужин", models.ColorOrange, "dinner"),
		egg:       testhelpers.CreateIngredient(t, db, "яйца", "шт"),
		milk:      testhelpers.CreateIngredient(t, db, "молоко", "мл"),
	}
}

func ptr[T any](v T) *T { return &v }

func (f *recipeFixture) request() *types.RecipeRequest {
	return &types.RecipeRequest{
		Ingredients: &[]types.IngredientAmount{{ID: f.egg.ID, Amount: 2}, {ID: f.milk.ID, Amount: 100}},
		Tags:        &[]uint{f.breakfast.ID},
		Image:       ptr(testhelpers.PNGDataURL),
		Name:        ptr("Омлет"),
		Text:        ptr("Взбить и пожарить"),
		CookingTime: ptr(10),
	}
}

func TestCreateRecipe(t *testing.T) {
	f := setupRecipes(t)
	recipe, err := f.svc.CreateRecipe(context.Background(), f.author.ID, f.request())
	require.NoError(t, err)

	assert.Equal(t, "Омлет", recipe.Name)
	assert.Equal(t, 10, recipe.CookingTime)
	assert.Equal(t, f.author.ID, recipe.Author.ID)
	assert.False(t, recipe.Author.IsSubscribed)
	require.Len(t, recipe.Tags, 1)
	assert.Equal(t, "breakfast", recipe.Tags[0].Slug)
	require.Len(t, recipe.Ingredients, 2)
	// newest line first
	assert.Equal(t, types.RecipeIngredient{ID: f.milk.ID, Name: "молоко", MeasurementUnit: "мл", Amount: 100}, recipe.Ingredients[0])
	assert.Equal(t, types.RecipeIngredient{ID: f.egg.ID, Name: "яйца", MeasurementUnit: "шт", Amount: 2}, recipe.Ingredients[1])

	require.True(t, strings.HasPrefix(recipe.Image, "/media/recipes/images/"))
	_, err = os.Stat(filepath.Join(f.media, strings.TrimPrefix(recipe.Image, "/media/")))
	assert.NoError(t, err)
}

func TestCreateRecipeValidation(t *testing.T) {
	f := setupRecipes(t)
	tests := []struct {
		name   string
		modify func(*types.RecipeRequest)
		field  string
	}{
		{"no ingredients", func(r *types.RecipeRequest) { r.Ingredients = &[]types.IngredientAmount{} }, "ingredients"},
		{"missing ingredients", func(r *types.RecipeRequest) { r.Ingredients = nil }, "ingredients"},
		{"duplicate ingredient", func(r *types.RecipeRequest) {
			r.Ingredients = &[]types.IngredientAmount{{ID: f.egg.ID, Amount: 1}, {ID: f.egg.ID, Amount: 3}}
		}, "ingredients"},
		{"zero amount", func(r *types.RecipeRequest) {
			r.Ingredients = &[]types.IngredientAmount{{ID: f.egg.ID, Amount: 0}}
		}, "ingredients"},
		{"no tags", func(r *types.RecipeRequest) { r.Tags = &[]uint{} }, "tags"},
		{"unknown tag", func(r *types.RecipeRequest) { r.Tags = &[]uint{999} }, "tags"},
		{"duplicate tag", func(r *types.RecipeRequest) { r.Tags = &[]uint{f.dinner.ID, f.dinner.ID} }, "tags"},
		{"cooking time", func(r *types.RecipeRequest) { r.CookingTime = ptr(0) }, "cooking_time"},
		{"blank name", func(r *types.RecipeRequest) { r.Name = ptr("<p></p>") }, "name"},
		{"missing text", func(r *types.RecipeRequest) { r.Text = nil }, "text"},
		{"missing image", func(r *types.RecipeRequest) { r.Image = nil }, "image"},
		{"bad image", func(r *types.RecipeRequest) { r.Image = ptr("data:image/png;base64,bm90IGFuIGltYWdl") }, "image"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.request()
			tt.modify(req)
			_, err := f.svc.CreateRecipe(context.Background(), f.author.ID, req)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	var count int64
	require.NoError(t, f.db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateRecipeUnknownIngredient(t *testing.T) {
	f := setupRecipes(t)
	req := f.request()
	req.Ingredients = &[]types.IngredientAmount{{ID: 999, Amount: 1}}
	_, err := f.svc.CreateRecipe(context.Background(), f.author.ID, req)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateRecipe(t *testing.T) {
	f := setupRecipes(t)
	ctx := context.Background()
	created, err := f.svc.CreateRecipe(ctx, f.author.ID, f.request())
	require.NoError(t, err)

	updated, err := f.svc.UpdateRecipe(ctx, f.author.ID, created.ID, &types.RecipeRequest{
		Ingredients: &[]types.IngredientAmount{{ID: f.milk.ID, Amount: 250}},
		Tags:        &[]uint{f.dinner.ID, f.breakfast.ID},
		CookingTime: ptr(15),
	})
	require.NoError(t, err)
	assert.Equal(t, "Омлет", updated.Name)
	assert.Equal(t, 15, updated.CookingTime)
	assert.Equal(t, created.Image, updated.Image)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, 250, updated.Ingredients[0].Amount)
	assert.Len(t, updated.Tags, 2)

	var lines int64
	require.NoError(t, f.db.Model(&models.RecipeIngredient{}).Where("recipe_id = ?", created.ID).Count(&lines).Error)
	assert.Equal(t, int64(1), lines)
}

func TestUpdateRecipeReplacesImage(t *testing.T) {
	f := setupRecipes(t)
	ctx := context.Background()
	created, err := f.svc.CreateRecipe(ctx, f.author.ID, f.request())
	require.NoError(t, err)

	updated, err := f.svc.UpdateRecipe(ctx, f.author.ID, created.ID, &types.RecipeRequest{Image: ptr(testhelpers.PNGDataURL)})
	require.NoError(t, err)
	assert.NotEqual(t, created.Image, updated.Image)

	_, err = os.Stat(filepath.Join(f.media, strings.TrimPrefix(created.Image, "/media/")))
	assert.True(t, os.IsNotExist(err))
}

func TestUpdateRecipePermissions(t *testing.T) {
	f := setupRecipes(t)
	ctx := context.Background()
	created, err := f.svc.CreateRecipe(ctx, f.author.ID, f.request())
	require.NoError(t, err)

	_, err = f.svc.UpdateRecipe(ctx, f.other.ID, created.ID, &types.RecipeRequest{Name: ptr("Чужой")})
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.ErrorIs(t, f.svc.DeleteRecipe(ctx, f.other.ID, created.ID), ErrPermissionDenied)

	staff := testhelpers.CreateUser(t, f.db, "moderator", true)
	updated, err := f.svc.UpdateRecipe(ctx, staff.ID, created.ID, &types.RecipeRequest{Name: ptr("Исправлено")})
	require.NoError(t, err)
	assert.Equal(t, "Исправлено", updated.Name)

	_, err = f.svc.UpdateRecipe(ctx, f.author.ID, 999, &types.RecipeRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRecipeRemovesDependents(t *testing.T) {
	f := setupRecipes(t)
	ctx := context.Background()
	created, err := f.svc.CreateRecipe(ctx, f.author.ID, f.request())
	require.NoError(t, err)
	_, err = f.svc.AddFavorite(ctx, f.other.ID, created.ID)
	require.NoError(t, err)
	_, err = f.svc.AddToShoppingCart(ctx, f.other.ID, created.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteRecipe(ctx, f.author.ID, created.ID))

	for _, model := range []interface{}{&models.Recipe{}, &models.RecipeIngredient{}, &models.Favorite{}, &models.ShoppingCartItem{}} {
		var count int64
		require.NoError(t, f.db.Model(model).Count(&count).Error)
		assert.Zero(t, count)
	}
	var links int64
	require.NoError(t, f.db.Table("recipe_tags").Count(&links).Error)
	assert.Zero(t, links)

	_, err = f.svc.GetRecipe(ctx, 0, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRecipesFilters(t *testing.T) {
	f := setupRecipes(t)
	ctx := context.Background()
	omelette := testhelpers.CreateRecipe(t, f.db, f.author, "omelette", []*models.Tag{f.breakfast}, map[*models.Ingredient]int{f.egg: 2})
	steak := testhelpers.CreateRecipe(t, f.db, f.other, "steak", []*models.Tag{f.dinner}, map[*models.Ingredient]int{f.milk: 1})
	porridge := testhelpers.CreateRecipe(t, f.db, f.author, "porridge", []*models.Tag{f.breakfast, f.dinner}, map[*models.Ingredient]int{f.milk: 200})

	ids := func(recipes []types.Recipe) []uint {
		out := make([]uint, len(recipes))
		for i, r := range recipes {
			out[i] = r.ID
		}
		return out
	}
	page := types.PageRequest{Page: 1, Limit: 10}

	all, total, err := f.svc.ListRecipes(ctx, 0, types.RecipeFilter{}, page)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []uint{porridge.ID, steak.ID, omelette.ID}, ids(all))

	byAuthor, total, err := f.svc.ListRecipes(ctx, 0, types.RecipeFilter{AuthorID: f.author.ID}, page)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, []uint{porridge.ID, omelette.ID}, ids(byAuthor))

	byTags, total, err := f.svc.ListRecipes(ctx, 0, types.RecipeFilter{Tags: []string{"breakfast", "dinner"}}, page)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, byTags, 3)

	_, err = f.svc.AddFavorite(ctx, f.other.ID, omelette.ID)
	require.NoError(t, err)
	favorites, total, err := f.svc.ListRecipes(ctx, f.other.ID, types.RecipeFilter{IsFavorited: true}, page)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, favorites, 1)
	assert.True(t, favorites[0].IsFavorited)
	assert.False(t, favorites[0].IsInShoppingCart)

	anonymous, total, err := f.svc.ListRecipes(ctx, 0, types.RecipeFilter{IsFavorited: true}, page)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, anonymous, 3)

	_, err = f.svc.AddToShoppingCart(ctx, f.other.ID, steak.ID)
	require.NoError(t, err)
	cart, _, err := f.svc.ListRecipes(ctx, f.other.ID, types.RecipeFilter{IsInShoppingCart: true}, page)
	require.NoError(t, err)
	assert.Equal(t, []uint{steak.ID}, ids(cart))

	second, total, err := f.svc.ListRecipes(ctx, 0, types.RecipeFilter{}, types.PageRequest{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []uint{omelette.ID}, ids(second))
}

func TestGetRecipeViewerFlags(t *testing.T) {
	f := setupRecipes(t)
	ctx := context.Background()
	recipe := testhelpers.CreateRecipe(t, f.db, f.author, "omelette", []*models.Tag{f.breakfast}, map[*models.Ingredient]int{f.egg: 2})
	require.NoError(t, f.db.Create(&models.Subscription{UserID: f.other.ID, AuthorID: f.author.ID}).Error)

	got, err := f.svc.GetRecipe(ctx, f.other.ID, recipe.ID)
	require.NoError(t, err)
	assert.True(t, got.Author.IsSubscribed)

	got, err = f.svc.GetRecipe(ctx, 0, recipe.ID)
	require.NoError(t, err)
	assert.False(t, got.Author.IsSubscribed)
}

func TestFavoritesAndCart(t *testing.T) {
	f := setupRecipes(t)
	ctx := context.Background()
	recipe := testhelpers.CreateRecipe(t, f.db, f.author, "omelette", []*models.Tag{f.breakfast}, map[*models.Ingredient]int{f.egg: 2})

	short, err := f.svc.AddFavorite(ctx, f.other.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, types.RecipeShort{ID: recipe.ID, Name: "omelette", Image: recipe.Image, CookingTime: 10}, *short)

	_, err = f.svc.AddFavorite(ctx, f.other.ID, recipe.ID)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = f.svc.AddFavorite(ctx, f.other.ID, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.svc.RemoveFavorite(ctx, f.other.ID, recipe.ID))
	assert.ErrorAs(t, f.svc.RemoveFavorite(ctx, f.other.ID, recipe.ID), &verr)

	_, err = f.svc.AddToShoppingCart(ctx, f.other.ID, recipe.ID)
	require.NoError(t, err)
	_, err = f.svc.AddToShoppingCart(ctx, f.other.ID, recipe.ID)
	assert.ErrorAs(t, err, &verr)
	require.NoError(t, f.svc.RemoveFromShoppingCart(ctx, f.other.ID, recipe.ID))
	assert.ErrorAs(t, f.svc.RemoveFromShoppingCart(ctx, f.other.ID, recipe.ID), &verr)
}

func TestShoppingListAggregates(t *testing.T) {
	f := setupRecipes(t)
	ctx := context.Background()
	flour := testhelpers.CreateIngredient(t, f.db, "мука", "г")
	first := testhelpers.CreateRecipe(t, f.db, f.author, "pancakes", nil, map[*models.Ingredient]int{f.egg: 2, f.milk: 300, flour: 200})
	second := testhelpers.CreateRecipe(t, f.db, f.author, "omelette", nil, map[*models.Ingredient]int{f.egg: 3, f.milk: 50})
	testhelpers.CreateRecipe(t, f.db, f.author, "not in cart", nil, map[*models.Ingredient]int{f.egg: 100})

	empty, err := f.svc.ShoppingList(ctx, f.other.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, r := range []*models.Recipe{first, second} {
		_, err := f.svc.AddToShoppingCart(ctx, f.other.ID, r.ID)
		require.NoError(t, err)
	}

	items, err := f.svc.ShoppingList(ctx, f.other.ID)
	require.NoError(t, err)
	assert.Equal(t, []types.ShoppingListItem{
		{Name: "молоко", MeasurementUnit: "мл", Total: 350},
		{Name: "мука", MeasurementUnit: "г", Total: 200},
		{Name: "яйца", MeasurementUnit: "шт", Total: 5},
	}, items)
}

func TestShoppingListPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-based test in short mode")
	}
	db := testhelpers.SetupPostgresDB(t)
	svc := NewRecipeService(db, storage.NewLocalStore(t.TempDir(), "/media/"), zap.NewNop())
	author := testhelpers.CreateUser(t, db, "author", false)
	buyer := testhelpers.CreateUser(t, db, "buyer", false)
	salt := testhelpers.CreateIngredient(t, db, "salt", "g")
	water := testhelpers.CreateIngredient(t, db, "water", "ml")
	a := testhelpers.CreateRecipe(t, db, author, "soup", nil, map[*models.Ingredient]int{salt: 5, water: 500})
	b := testhelpers.CreateRecipe(t, db, author, "bread", nil, map[*models.Ingredient]int{salt: 10, water: 300})

	ctx := context.Background()
	for _, r := range []*models.Recipe{a, b} {
		_, err := svc.AddToShoppingCart(ctx, buyer.ID, r.ID)
		require.NoError(t, err)
	}
	_, err := svc.AddToShoppingCart(ctx, buyer.ID, a.ID)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	items, err := svc.ShoppingList(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, []types.ShoppingListItem{
		{Name: "salt", MeasurementUnit: "g", Total: 15},
		{Name: "water", MeasurementUnit: "ml", Total: 800},
	}, items)
}
