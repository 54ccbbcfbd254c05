package storage

import (
	"context"

	"github.com/poiesic/larder/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close releases resources held by the repository.
	Close() error
}

// IngredientRepository provides operations for managing ingredient records.
type IngredientRepository interface {
	Repository

	// AddIngredients adds one or more ingredients to storage.
	// Generates new IDs from a sequence and sets InsertedAt/UpdatedAt.
	// Returns the ingredients with IDs and timestamps populated.
	AddIngredients(ctx context.Context, ingredients ...*core.Ingredient) ([]*core.Ingredient, error)

	// UpdateIngredient replaces an existing ingredient and rebuilds its indexes.
	// Returns ErrNotFound if the ingredient doesn't exist.
	UpdateIngredient(ctx context.Context, ingredient *core.Ingredient) (*core.Ingredient, error)

	// GetIngredient retrieves a single ingredient by ID.
	// Returns ErrNotFound if the ingredient doesn't exist.
	GetIngredient(ctx context.Context, id core.ID) (*core.Ingredient, error)

	// GetIngredients retrieves multiple ingredients by their IDs.
	// Returns only the ingredients that exist (no error for missing ones), in request order.
	GetIngredients(ctx context.Context, ids ...core.ID) ([]*core.Ingredient, error)

	// GetAllIngredients retrieves every ingredient ordered by ID.
	GetAllIngredients(ctx context.Context) ([]*core.Ingredient, error)

	// SetEmbedding patches the name embedding of one ingredient.
	SetEmbedding(ctx context.Context, id core.ID, embedding []float32) error

	// SetCategory patches the category of one ingredient.
	SetCategory(ctx context.Context, id core.ID, category string) error

	// SetPrice patches price, quantity and unit of one ingredient together.
	// IsPriceEstimated is set to true.
	SetPrice(ctx context.Context, id core.ID, estimate core.PriceEstimate) error

	// IngredientsMissingEmbedding returns up to limit ingredients without an embedding, oldest first.
	// A limit <= 0 returns all of them.
	IngredientsMissingEmbedding(ctx context.Context, limit int) ([]*core.Ingredient, error)

	// IngredientsMissingCategory returns up to limit ingredients without a category, oldest first.
	// A limit <= 0 returns all of them.
	IngredientsMissingCategory(ctx context.Context, limit int) ([]*core.Ingredient, error)

	// IngredientsMissingPrice returns up to limit ingredients without a price, oldest first.
	// A limit <= 0 returns all of them.
	IngredientsMissingPrice(ctx context.Context, limit int) ([]*core.Ingredient, error)

	// IngredientsAwaitingPrice returns up to limit ingredients without a price
	// whose category is neither empty nor "other", oldest first.
	// A limit <= 0 returns all of them.
	IngredientsAwaitingPrice(ctx context.Context, limit int) ([]*core.Ingredient, error)

	// IngredientsByCategory returns up to limit ingredients holding the given category.
	// A limit <= 0 returns all of them.
	IngredientsByCategory(ctx context.Context, category string, limit int) ([]*core.Ingredient, error)

	// FindByName returns ingredients whose normalized name equals the given name.
	FindByName(ctx context.Context, name string) ([]*core.Ingredient, error)

	// SearchByName returns ingredients sharing at least one name token with the query,
	// ordered by the number of shared tokens (highest first).
	SearchByName(ctx context.Context, query string, limit int) ([]*core.SearchResult, error)

	// FindNearest returns up to limit embedded ingredients ordered by cosine
	// similarity to vector (highest first). Ties keep ID order.
	FindNearest(ctx context.Context, vector []float32, limit int) ([]*core.SearchResult, error)

	// ResetCategories clears the category of every ingredient and returns how many changed.
	ResetCategories(ctx context.Context) (int, error)
}

// RecipeRepository provides operations for managing recipes.
type RecipeRepository interface {
	Repository

	// AddRecipe stores a recipe after checking that every referenced ingredient exists.
	// Returns an error wrapping core.ErrIngredientNotFound otherwise.
	AddRecipe(ctx context.Context, recipe *core.Recipe) (*core.Recipe, error)

	// GetRecipe retrieves a recipe by ID.
	// Returns ErrNotFound if the recipe doesn't exist.
	GetRecipe(ctx context.Context, id core.ID) (*core.Recipe, error)

	// GetAllRecipes retrieves every recipe ordered by ID.
	GetAllRecipes(ctx context.Context) ([]*core.Recipe, error)

	// GetRecipeWithIngredients joins a recipe with its current ingredient records.
	GetRecipeWithIngredients(ctx context.Context, id core.ID) (*core.RecipeWithIngredients, error)
}
