package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func TestTagCRUD(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewTagService(db)
	ctx := context.Background()

	created, err := svc.CreateTag(ctx, &types.TagRequest{Name: "Завтрак", Color: "#0000ff", Slug: "breakfast"})
	require.NoError(t, err)
	assert.Equal(t, "#0000FF", created.Color)

	second, err := svc.CreateTag(ctx, &types.TagRequest{Name: "Обед", Color: models.ColorGreen, Slug: "lunch"})
	require.NoError(t, err)

	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, second.ID, tags[0].ID)

	updated, err := svc.UpdateTag(ctx, created.ID, &types.TagPatchRequest{Name: ptr("Ранний завтрак"), Slug: ptr("early-breakfast")})
	require.NoError(t, err)
	assert.Equal(t, "early-breakfast", updated.Slug)

	got, err := svc.GetTag(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *updated, *got)

	require.NoError(t, svc.DeleteTag(ctx, second.ID))
	_, err = svc.GetTag(ctx, second.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTagUniqueness(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewTagService(db)
	ctx := context.Background()
	_, err := svc.CreateTag(ctx, &types.TagRequest{Name: "Завтрак", Color: models.ColorBlue, Slug: "breakfast"})
	require.NoError(t, err)

	tests := []struct {
		req   types.TagRequest
		field string
	}{
		{types.TagRequest{Name: "Завтрак", Color: models.ColorOrange, Slug: "other"}, "name"},
		{types.TagRequest{Name: "Обед", Color: "#0000ff", Slug: "other"}, "color"},
		{types.TagRequest{Name: "Обед", Color: models.ColorOrange, Slug: "breakfast"}, "slug"},
	}
	for _, tt := range tests {
		_, err := svc.CreateTag(ctx, &tt.req)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, tt.field, verr.Field)
	}
}

func TestDeleteTagUnlinksRecipes(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewTagService(db)
	author := testhelpers.CreateUser(t, db, "author", false)
	tag := testhelpers.CreateTag(t, db, "Ужин", models.ColorPurple, "dinner")
	recipe := testhelpers.CreateRecipe(t, db, author, "steak", []*models.Tag{tag}, nil)

	require.NoError(t, svc.DeleteTag(context.Background(), tag.ID))

	var links int64
	require.NoError(t, db.Table("recipe_tags").Where("recipe_id = ?", recipe.ID).Count(&links).Error)
	assert.Zero(t, links)
	var recipes int64
	require.NoError(t, db.Model(&models.Recipe{}).Count(&recipes).Error)
	assert.Equal(t, int64(1), recipes)
}

func TestTagBlankAndPartialUpdate(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewTagService(db)
	ctx := context.Background()

	_, err := svc.CreateTag(ctx, &types.TagRequest{Name: "<b></b>", Color: models.ColorBlue, Slug: "breakfast"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)

	created, err := svc.CreateTag(ctx, &types.TagRequest{Name: "Завтрак", Color: models.ColorBlue, Slug: "breakfast"})
	require.NoError(t, err)

	_, err = svc.UpdateTag(ctx, created.ID, &types.TagPatchRequest{Name: ptr("<p></p>")})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)

	updated, err := svc.UpdateTag(ctx, created.ID, &types.TagPatchRequest{Color: ptr("#ffa500")})
	require.NoError(t, err)
	assert.Equal(t, types.Tag{ID: created.ID, Name: "Завтрак", Color: models.ColorOrange, Slug: "breakfast"}, *updated)
}
