package types

// RegisterRequest is the body of POST /api/users/.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150,username"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,max=150"`
}

// LoginRequest is the body of POST /api/auth/token/login/.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SetPasswordRequest is the body of POST /api/users/set_password/.
type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" binding:"required"`
	CurrentPassword string `json:"current_password" binding:"required"`
}

// IngredientAmount references an ingredient with the amount used in a recipe.
type IngredientAmount struct {
	ID     uint `json:"id" binding:"required"`
	Amount int  `json:"amount"`
}

// RecipeRequest is the body of POST and PATCH /api/recipes/. Nil fields are
// left untouched on update; on create every field is required.
type RecipeRequest struct {
	Ingredients *[]IngredientAmount `json:"ingredients" binding:"omitempty,dive"`
	Tags        *[]uint             `json:"tags"`
	Image       *string             `json:"image"`
	Name        *string             `json:"name" binding:"omitempty,max=255"`
	Text        *string             `json:"text"`
	CookingTime *int                `json:"cooking_time"`
}

// TagRequest is the body of tag create.
type TagRequest struct {
	Name  string `json:"name" binding:"required,max=200"`
	Color string `json:"color" binding:"required,hexcolor,len=7"`
	Slug  string `json:"slug" binding:"required,max=200,slug"`
}

// TagPatchRequest is the body of a partial tag update; nil fields are kept.
type TagPatchRequest struct {
	Name  *string `json:"name" binding:"omitempty,max=200"`
	Color *string `json:"color" binding:"omitempty,hexcolor,len=7"`
	Slug  *string `json:"slug" binding:"omitempty,max=200,slug"`
}

// IngredientRequest is the body of ingredient create.
type IngredientRequest struct {
	Name            string `json:"name" binding:"required,max=200"`
	MeasurementUnit string `json:"measurement_unit" binding:"required,max=200"`
}

// IngredientPatchRequest is the body of a partial ingredient update.
type IngredientPatchRequest struct {
	Name            *string `json:"name" binding:"omitempty,max=200"`
	MeasurementUnit *string `json:"measurement_unit" binding:"omitempty,max=200"`
}

// RecipeFilter holds the query filters of the recipe list.
type RecipeFilter struct {
	AuthorID         uint
	Tags             []string
	IsFavorited      bool
	IsInShoppingCart bool
}

// PageRequest selects one page of a list.
type PageRequest struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}
