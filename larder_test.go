package larder

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/larder/ai"
	"github.com/poiesic/larder/ai/mock"
	"github.com/poiesic/larder/core"
	"github.com/poiesic/larder/enrichment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float(v float64) *float64 { return &v }

func openTestDatabase(t *testing.T, opts ...DatabaseOption) (*Database, *mock.MockProvider) {
	t.Helper()
	provider := mock.NewMockProvider()
	db, err := Open("", append([]DatabaseOption{InMemory(), WithProvider(provider)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, provider
}

func TestOpen(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "test_db")
		db, err := Open(dir, WithProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		defer db.Close()

		assert.NotNil(t, db.IngredientRepository())
		assert.NotNil(t, db.RecipeRepository())
		assert.Equal(t, ai.DefaultTaxonomy, db.Taxonomy())
	})

	t.Run("error with invalid path", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(file, []byte("test"), 0644))

		db, err := Open(file, WithProvider(mock.NewMockProvider()))
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("empty taxonomy", func(t *testing.T) {
		_, err := Open("", InMemory(), WithProvider(mock.NewMockProvider()), WithTaxonomy([]string{}))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("builds the openai provider from config", func(t *testing.T) {
		cfg := ai.NewConfig(ai.WithHost("http://localhost:11434"), ai.WithAPIKey("test"))
		db, err := Open("", InMemory(), WithAIConfig(cfg))
		require.NoError(t, err)
		assert.NoError(t, db.Close())
	})
}

func TestCreateIngredient(t *testing.T) {
	db, _ := openTestDatabase(t)
	ctx := context.Background()

	t.Run("name only", func(t *testing.T) {
		in, err := db.CreateIngredient(ctx, &core.Ingredient{Name: "  Carrot "})
		require.NoError(t, err)
		assert.NotZero(t, in.Id)
		assert.Equal(t, "Carrot", in.Name)
		assert.True(t, in.IsPriceEstimated)
		assert.True(t, in.NeedsEmbedding())
	})

	t.Run("human price", func(t *testing.T) {
		in, err := db.CreateIngredient(ctx, &core.Ingredient{
			Name: "Whole milk", Price: float(4.29), Quantity: float(1000), Unit: core.UnitMilliliters,
		})
		require.NoError(t, err)
		assert.False(t, in.IsPriceEstimated)
		assert.True(t, in.HasPriceTriple())
	})

	t.Run("partial price", func(t *testing.T) {
		_, err := db.CreateIngredient(ctx, &core.Ingredient{Name: "Butter", Price: float(5)})
		assert.ErrorIs(t, err, core.ErrPartialPrice)
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := db.CreateIngredient(ctx, &core.Ingredient{Name: "Widget", Category: "Hardware"})
		assert.ErrorIs(t, err, core.ErrUnknownCategory)
	})

	t.Run("embedding is not accepted from callers", func(t *testing.T) {
		in, err := db.CreateIngredient(ctx, &core.Ingredient{Name: "Basil", NameEmbedding: []float32{1, 2}})
		require.NoError(t, err)
		assert.Empty(t, in.NameEmbedding)
	})
}

func TestUpdateIngredient(t *testing.T) {
	db, _ := openTestDatabase(t)
	ctx := context.Background()

	created, err := db.CreateIngredient(ctx, &core.Ingredient{Name: "Carrot"})
	require.NoError(t, err)
	require.NoError(t, db.IngredientRepository().SetEmbedding(ctx, created.Id, []float32{1, 0, 0}))
	require.NoError(t, db.IngredientRepository().SetPrice(ctx, created.Id, core.PriceEstimate{Price: 0.3, Quantity: 100, Unit: core.UnitGrams}))

	current, err := db.IngredientRepository().GetIngredient(ctx, created.Id)
	require.NoError(t, err)

	t.Run("same name and price keeps embedding and estimate flag", func(t *testing.T) {
		edit := *current
		edit.Category = "Produce"
		edit.NameEmbedding = nil
		updated, err := db.UpdateIngredient(ctx, &edit)
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 0, 0}, updated.NameEmbedding)
		assert.True(t, updated.IsPriceEstimated)
		assert.Equal(t, "Produce", updated.Category)
	})

	t.Run("human price", func(t *testing.T) {
		edit := *current
		edit.Price = float(0.5)
		updated, err := db.UpdateIngredient(ctx, &edit)
		require.NoError(t, err)
		assert.False(t, updated.IsPriceEstimated)
	})

	t.Run("rename clears embedding", func(t *testing.T) {
		edit := *current
		edit.Name = "Purple carrot"
		updated, err := db.UpdateIngredient(ctx, &edit)
		require.NoError(t, err)
		assert.Empty(t, updated.NameEmbedding)

		missing, err := db.IngredientRepository().IngredientsMissingEmbedding(ctx, 0)
		require.NoError(t, err)
		require.Len(t, missing, 1)
		assert.Equal(t, created.Id, missing[0].Id)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := db.UpdateIngredient(ctx, &core.Ingredient{Id: 424242, Name: "Ghost"})
		assert.Error(t, err)
	})
}

func TestCreateRecipe(t *testing.T) {
	db, _ := openTestDatabase(t)
	ctx := context.Background()

	carrot, err := db.CreateIngredient(ctx, &core.Ingredient{
		Name: "Carrot", Price: float(0.3), Quantity: float(100), Unit: core.UnitGrams,
	})
	require.NoError(t, err)

	recipe, err := db.CreateRecipe(ctx, &core.Recipe{
		Name:        "Carrot soup",
		Ingredients: []core.RecipeIngredient{{IngredientId: carrot.Id, Amount: 500}},
	})
	require.NoError(t, err)

	joined, err := db.RecipeRepository().GetRecipeWithIngredients(ctx, recipe.Id)
	require.NoError(t, err)
	total, unpriced := joined.EstimatedCost()
	assert.InDelta(t, 1.5, total, 1e-9)
	assert.Zero(t, unpriced)

	_, err = db.CreateRecipe(ctx, &core.Recipe{Name: ""})
	assert.ErrorIs(t, err, core.ErrInvalidRecipe)

	_, err = db.CreateRecipe(ctx, &core.Recipe{
		Name:        "Mystery",
		Ingredients: []core.RecipeIngredient{{IngredientId: 99999, Amount: 1}},
	})
	assert.ErrorIs(t, err, core.ErrIngredientNotFound)
}

func TestDatabase_FactoryMethods(t *testing.T) {
	db, _ := openTestDatabase(t)

	t.Run("can create orchestrator", func(t *testing.T) {
		o, err := db.NewOrchestrator()
		require.NoError(t, err)
		assert.Equal(t, enrichment.DefaultConfig().BatchSize, o.Config().BatchSize)
	})

	t.Run("can create scheduler", func(t *testing.T) {
		s, err := db.NewScheduler()
		require.NoError(t, err)
		s.Release()
	})

	t.Run("can create retriever", func(t *testing.T) {
		r, err := db.NewRetriever()
		require.NoError(t, err)
		assert.NotNil(t, r)
	})
}

func TestDatabase_EnrichEndToEnd(t *testing.T) {
	db, provider := openTestDatabase(t)
	ctx := context.Background()
	provider.GetMockCategorizer().WithLabel("Carrot", "Produce", 0.9)

	carrot, err := db.CreateIngredient(ctx, &core.Ingredient{Name: "Carrot"})
	require.NoError(t, err)
	_, err = db.CreateIngredient(ctx, &core.Ingredient{
		Name: "Parsnip", Category: "Produce", Price: float(0.4), Quantity: float(100), Unit: core.UnitGrams,
	})
	require.NoError(t, err)

	o, err := db.NewOrchestrator()
	require.NoError(t, err)
	for _, pass := range enrichment.Passes {
		_, err := o.Run(ctx, pass, db.Taxonomy())
		require.NoError(t, err)
	}

	stored, err := db.IngredientRepository().GetIngredient(ctx, carrot.Id)
	require.NoError(t, err)
	assert.Len(t, stored.NameEmbedding, mock.DefaultDimensions)
	assert.Equal(t, "Produce", stored.Category)
	assert.True(t, stored.HasPriceTriple())

	n, err := db.ResetCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
