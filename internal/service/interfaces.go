package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	GenerateToken(user *models.User) (string, error)
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
	SetPassword(ctx context.Context, userID uint, current, next string) error
	GetUserByID(ctx context.Context, userID uint) (*models.User, error)
	EnsureStaffUser(ctx context.Context, email, password string) error
}

// IUserService defines the interface for user listing and subscriptions
type IUserService interface {
	ListUsers(ctx context.Context, viewer uint, page types.PageRequest) ([]types.User, int64, error)
	GetUser(ctx context.Context, viewer, id uint) (*types.User, error)
	Subscribe(ctx context.Context, viewer, authorID uint, recipesLimit int) (*types.Subscription, error)
	Unsubscribe(ctx context.Context, viewer, authorID uint) error
	ListSubscriptions(ctx context.Context, viewer uint, page types.PageRequest, recipesLimit int) ([]types.Subscription, int64, error)
}

// ITagService defines the interface for tag operations
type ITagService interface {
	ListTags(ctx context.Context) ([]types.Tag, error)
	GetTag(ctx context.Context, id uint) (*types.Tag, error)
	CreateTag(ctx context.Context, req *types.TagRequest) (*types.Tag, error)
	UpdateTag(ctx context.Context, id uint, req *types.TagPatchRequest) (*types.Tag, error)
	DeleteTag(ctx context.Context, id uint) error
}

// IIngredientService defines the interface for ingredient operations
type IIngredientService interface {
	ListIngredients(ctx context.Context, prefix string) ([]types.Ingredient, error)
	GetIngredient(ctx context.Context, id uint) (*types.Ingredient, error)
	CreateIngredient(ctx context.Context, req *types.IngredientRequest) (*types.Ingredient, error)
	UpdateIngredient(ctx context.Context, id uint, req *types.IngredientPatchRequest) (*types.Ingredient, error)
	DeleteIngredient(ctx context.Context, id uint) error
}

// IRecipeService defines the interface for recipe operations. viewer is the
// id of the requesting user, 0 for anonymous requests.
type IRecipeService interface {
	ListRecipes(ctx context.Context, viewer uint, filter types.RecipeFilter, page types.PageRequest) ([]types.Recipe, int64, error)
	GetRecipe(ctx context.Context, viewer, id uint) (*types.Recipe, error)
	CreateRecipe(ctx context.Context, viewer uint, req *types.RecipeRequest) (*types.Recipe, error)
	UpdateRecipe(ctx context.Context, viewer, id uint, req *types.RecipeRequest) (*types.Recipe, error)
	DeleteRecipe(ctx context.Context, viewer, id uint) error

	AddFavorite(ctx context.Context, viewer, recipeID uint) (*types.RecipeShort, error)
	RemoveFavorite(ctx context.Context, viewer, recipeID uint) error
	AddToShoppingCart(ctx context.Context, viewer, recipeID uint) (*types.RecipeShort, error)
	RemoveFromShoppingCart(ctx context.Context, viewer, recipeID uint) error
	ShoppingList(ctx context.Context, viewer uint) ([]types.ShoppingListItem, error)
}
