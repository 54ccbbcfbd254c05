package badger

import (
	"context"
	"testing"

	"github.com/poiesic/larder/core"
	"github.com/poiesic/larder/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float(v float64) *float64 { return &v }

func setupIngredientRepo(t *testing.T) storage.IngredientRepository {
	t.Helper()
	ingredientRepo, recipeRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		recipeRepo.Close()
		ingredientRepo.Close()
		backend.Close()
	})
	return ingredientRepo
}

func ids(ingredients []*core.Ingredient) []core.ID {
	out := make([]core.ID, len(ingredients))
	for i, in := range ingredients {
		out[i] = in.Id
	}
	return out
}

func TestAddIngredients(t *testing.T) {
	repo := setupIngredientRepo(t)
	ctx := context.Background()

	added, err := repo.AddIngredients(ctx,
		&core.Ingredient{Name: "Carrot", IsPriceEstimated: true},
		&core.Ingredient{Name: "Whole Milk", Unit: core.UnitMilliliters, Quantity: float(1000), Price: float(4.29)},
	)
	require.NoError(t, err)
	require.Len(t, added, 2)

	assert.NotZero(t, added[0].Id)
	assert.Greater(t, added[1].Id, added[0].Id)
	assert.False(t, added[0].InsertedAt.IsZero())
	assert.Equal(t, added[0].InsertedAt, added[0].UpdatedAt)

	got, err := repo.GetIngredient(ctx, added[1].Id)
	require.NoError(t, err)
	assert.Equal(t, "Whole Milk", got.Name)
	assert.Equal(t, 4.29, *got.Price)
}

func TestGetIngredient_NotFound(t *testing.T) {
	repo := setupIngredientRepo(t)

	_, err := repo.GetIngredient(context.Background(), 999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetIngredients_SkipsMissing(t *testing.T) {
	repo := setupIngredientRepo(t)
	ctx := context.Background()

	added, err := repo.AddIngredients(ctx, &core.Ingredient{Name: "Onion"}, &core.Ingredient{Name: "Garlic"})
	require.NoError(t, err)

	got, err := repo.GetIngredients(ctx, added[1].Id, 999, added[0].Id)
	require.NoError(t, err)
	assert.Equal(t, []core.ID{added[1].Id, added[0].Id}, ids(got))
}

func TestMissingIndexes_TrackEnrichment(t *testing.T) {
	repo := setupIngredientRepo(t)
	ctx := context.Background()

	added, err := repo.AddIngredients(ctx,
		&core.Ingredient{Name: "Carrot"},
		&core.Ingredient{Name: "Basil"},
		&core.Ingredient{Name: "Salt"},
	)
	require.NoError(t, err)

	missing, err := repo.IngredientsMissingEmbedding(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, ids(added), ids(missing))

	// limit is honoured and oldest records come first
	missing, err = repo.IngredientsMissingEmbedding(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, ids(added[:2]), ids(missing))

	require.NoError(t, repo.SetEmbedding(ctx, added[0].Id, []float32{1, 0}))
	require.NoError(t, repo.SetCategory(ctx, added[1].Id, "Produce"))
	require.NoError(t, repo.SetPrice(ctx, added[2].Id, core.PriceEstimate{Price: 1.99, Quantity: 500, Unit: core.UnitGrams}))

	missing, err = repo.IngredientsMissingEmbedding(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []core.ID{added[1].Id, added[2].Id}, ids(missing))

	missing, err = repo.IngredientsMissingCategory(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []core.ID{added[0].Id, added[2].Id}, ids(missing))

	missing, err = repo.IngredientsMissingPrice(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []core.ID{added[0].Id, added[1].Id}, ids(missing))
}

func TestIngredientsAwaitingPrice(t *testing.T) {
	repo := setupIngredientRepo(t)
	ctx := context.Background()

	added, err := repo.AddIngredients(ctx,
		&core.Ingredient{Name: "Mystery", IsPriceEstimated: true},
		&core.Ingredient{Name: "Paper towels", Category: core.CategoryOther, IsPriceEstimated: true},
		&core.Ingredient{Name: "Carrot", Category: "Produce", IsPriceEstimated: true},
		&core.Ingredient{Name: "Milk", Category: "Dairy", Unit: core.UnitMilliliters, Quantity: float(1000), Price: float(4.29)},
	)
	require.NoError(t, err)

	awaiting, err := repo.IngredientsAwaitingPrice(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []core.ID{added[2].Id}, ids(awaiting))

	// categorizing moves a record into the queue, "other" moves it out
	require.NoError(t, repo.SetCategory(ctx, added[0].Id, "Pantry"))
	require.NoError(t, repo.SetCategory(ctx, added[2].Id, core.CategoryOther))
	awaiting, err = repo.IngredientsAwaitingPrice(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []core.ID{added[0].Id}, ids(awaiting))

	require.NoError(t, repo.SetPrice(ctx, added[0].Id, core.PriceEstimate{Price: 2.5, Quantity: 1, Unit: core.UnitWhole}))
	awaiting, err = repo.IngredientsAwaitingPrice(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, awaiting)

	missing, err := repo.IngredientsMissingPrice(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []core.ID{added[1].Id, added[2].Id}, ids(missing))
}

func TestSetPrice_WritesTripleTogether(t *testing.T) {
	repo := setupIngredientRepo(t)
	ctx := context.Background()

	added, err := repo.AddIngredients(ctx, &core.Ingredient{Name: "Butter", IsPriceEstimated: false})
	require.NoError(t, err)
	id := added[0].Id

	err = repo.SetPrice(ctx, id, core.PriceEstimate{Price: 5.49, Quantity: 454, Unit: core.UnitGrams})
	require.NoError(t, err)

	got, err := repo.GetIngredient(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.PriceTriple())
	assert.Equal(t, core.PriceEstimate{Price: 5.49, Quantity: 454, Unit: core.UnitGrams}, *got.PriceTriple())
	assert.True(t, got.IsPriceEstimated)
	assert.True(t, got.UpdatedAt.After(got.InsertedAt) || got.UpdatedAt.Equal(got.InsertedAt))
}

func TestSetPrice_InvalidEstimateLeavesRecord(t *testing.T) {
	repo := setupIngredientRepo(t)
	ctx := context.Background()

	added, err := repo.AddIngredients(ctx, &core.Ingredient{Name: "Butter"})
	require.NoError(t, err)

	err = repo.SetPrice(ctx, added[0].Id, core.PriceEstimate{Price: -1, Quantity: 454, Unit: core.UnitGrams})
	require.Error(t, err)

	got, err := repo.GetIngredient(ctx, added[0].Id)
	require.NoError(t, err)
	assert.Nil(t, got.Price)
	assert.Nil(t, got.Quantity)
	assert.Equal(t, core.UnitNone, got.Unit)
}

func TestPatch_NotFound(t *testing.T) {
	repo := setupIngredientRepo(t)
	ctx := context.Background()

	assert.ErrorIs(t, repo.SetEmbedding(ctx, 42, []float32{1}), storage.ErrNotFound)
	assert.ErrorIs(t, repo.SetCategory(ctx, 42, "Produce"), storage.ErrNotFound)
	assert.ErrorIs(t, repo.SetPrice(ctx, 42, core.PriceEstimate{Price: 1, Quantity: 1, Unit: core.UnitWhole}), storage.ErrNotFound)
}

func TestIngredientsByCategory_MovesBetweenCategories(t *testing.T) {
	repo := setupIngredientRepo(t)
	ctx := context.Background()

	added, err := repo.AddIngredients(ctx,
		&core.Ingredient{Name: "Carrot"},
		&core.Ingredient{Name: "Milk"},
		&core.Ingredient{Name: "Potato"},
	)
	require.NoError(t, err)

	require.NoError(t, repo.SetCategory(ctx, added[0].Id, "Produce"))
	require.NoError(t, repo.SetCategory(ctx, added[1].Id, "Dairy"))
	require.NoError(t, repo.SetCategory(ctx, added[2].Id, "Produce"))

	produce, err := repo.IngredientsByCategory(ctx, "Produce", 0)
	require.NoError(t, err)
	assert.Equal(t, []core.ID{added[0].Id, added[2].Id}, ids(produce))

	limited, err := repo.IngredientsByCategory(ctx, "Produce", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	require.NoError(t, repo.SetCategory(ctx, added[2].Id, "Dairy"))

	produce, err = repo.IngredientsByCategory(ctx, "Produce", 0)
	require.NoError(t, err)
	assert.Equal(t, []core.ID{added[0].Id}, ids(produce))

	dairy, err := repo.IngredientsByCategory(ctx, "Dairy", 0)
	require.NoError(t, err)
	assert.Equal(t, []core.ID{added[1].Id, added[2].Id}, ids(dairy))
}

func TestIngredientsByCategory_NoPrefixOverlap(t *testing.T) {
	repo := setupIngredientRepo(t)
	ctx := context.Background()

	added, err := repo.AddIngredients(ctx, &core.Ingredient{Name: "Milk"}, &core.Ingredient{Name: "Eggs"})
	require.NoError(t, err)
	require.NoError(t, repo.SetCategory(ctx, added[0].Id, "Dairy"))
	require.NoError(t, repo.SetCategory(ctx, added[1].Id, "Dairy & Eggs"))

	dairy, err := repo.IngredientsByCategory(ctx, "Dairy", 0)
	require.NoError(t, err)
	assert.Equal(t, []core.ID{added[0].Id}, ids(dairy))
}

func TestUpdateIngredient_RebuildsIndexes(t *testing.T) {
	repo := setupIngredientRepo(t)
	ctx := context.Background()

	added, err := repo.AddIngredients(ctx, &core.Ingredient{Name: "Red Onion", Category: "Produce", NameEmbedding: []float32{1, 0}})
	require.NoError(t, err)
	original := added[0]

	updated := *original
	updated.Name = "Shallot"
	updated.NameEmbedding = nil
	updated.Category = ""
	_, err = repo.UpdateIngredient(ctx, &updated)
	require.NoError(t, err)

	got, err := repo.FindByName(ctx, "red onion")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = repo.FindByName(ctx, "  SHALLOT ")
	require.NoError(t, err)
	assert.Equal(t, []core.ID{original.Id}, ids(got))

	results, err := repo.SearchByName(ctx, "onion", 10)
	require.NoError(t, err)
	assert.Empty(t, results)

	missing, err := repo.IngredientsMissingEmbedding(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []core.ID{original.Id}, ids(missing))

	nearest, err := repo.FindNearest(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Empty(t, nearest)

	produce, err := repo.IngredientsByCategory(ctx, "Produce", 0)
	require.NoError(t, err)
	assert.Empty(t, produce)

	stored, err := repo.GetIngredient(ctx, original.Id)
	require.NoError(t, err)
	assert.Equal(t, original.InsertedAt, stored.InsertedAt)
}

func TestUpdateIngredient_NotFound(t *testing.T) {
	repo := setupIngredientRepo(t)

	_, err := repo.UpdateIngredient(context.Background(), &core.Ingredient{Id: 77, Name: "Ghost"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSearchByName(t *testing.T) {
	repo := setupIngredientRepo(t)
	ctx := context.Background()

	added, err := repo.AddIngredients(ctx,
		&core.Ingredient{Name: "Red Onion"},
		&core.Ingredient{Name: "Green Onion"},
		&core.Ingredient{Name: "Red Pepper"},
		&core.Ingredient{Name: "Salt"},
	)
	require.NoError(t, err)

	results, err := repo.SearchByName(ctx, "red onion", 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, added[0].Id, results[0].Ingredient.Id)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	// ties keep ID order
	assert.Equal(t, added[1].Id, results[1].Ingredient.Id)
	assert.Equal(t, added[2].Id, results[2].Ingredient.Id)
	assert.InDelta(t, 0.5, results[1].Score, 1e-6)

	results, err = repo.SearchByName(ctx, "red onion", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = repo.SearchByName(ctx, "the of", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindNearest(t *testing.T) {
	repo := setupIngredientRepo(t)
	ctx := context.Background()

	added, err := repo.AddIngredients(ctx,
		&core.Ingredient{Name: "Carrot", NameEmbedding: []float32{1, 0, 0}},
		&core.Ingredient{Name: "Parsnip", NameEmbedding: []float32{0.9, 0.1, 0}},
		&core.Ingredient{Name: "Milk", NameEmbedding: []float32{0, 0, 1}},
		&core.Ingredient{Name: "Turnip", NameEmbedding: []float32{2, 0, 0}},
		&core.Ingredient{Name: "Unembedded"},
	)
	require.NoError(t, err)

	results, err := repo.FindNearest(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 4)

	// Carrot and Turnip are tied at 1.0 and keep ID order
	assert.Equal(t, added[0].Id, results[0].Ingredient.Id)
	assert.Equal(t, added[3].Id, results[1].Ingredient.Id)
	assert.Equal(t, added[1].Id, results[2].Ingredient.Id)
	assert.Equal(t, added[2].Id, results[3].Ingredient.Id)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}

	results, err = repo.FindNearest(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestFindNearest_SkipsOtherDimensions(t *testing.T) {
	repo := setupIngredientRepo(t)
	ctx := context.Background()

	added, err := repo.AddIngredients(ctx,
		&core.Ingredient{Name: "Carrot", NameEmbedding: []float32{1, 0, 0}},
		&core.Ingredient{Name: "Legacy carrot", NameEmbedding: []float32{1, 0}},
		&core.Ingredient{Name: "Wide carrot", NameEmbedding: []float32{1, 0, 0, 0}},
	)
	require.NoError(t, err)

	results, err := repo.FindNearest(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, added[0].Id, results[0].Ingredient.Id)
}

func TestFindNearest_InvalidQuery(t *testing.T) {
	repo := setupIngredientRepo(t)
	ctx := context.Background()

	_, err := repo.FindNearest(ctx, nil, 10)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)

	_, err = repo.FindNearest(ctx, []float32{1}, 0)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestFindNearest_Empty(t *testing.T) {
	repo := setupIngredientRepo(t)

	results, err := repo.FindNearest(context.Background(), []float32{0.1, 0.2, 0.3}, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestResetCategories(t *testing.T) {
	repo := setupIngredientRepo(t)
	ctx := context.Background()

	added, err := repo.AddIngredients(ctx,
		&core.Ingredient{Name: "Carrot", Category: "Produce"},
		&core.Ingredient{Name: "Milk", Category: "Dairy"},
		&core.Ingredient{Name: "Salt"},
	)
	require.NoError(t, err)

	n, err := repo.ResetCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	missing, err := repo.IngredientsMissingCategory(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, ids(added), ids(missing))

	n, err = repo.ResetCategories(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
