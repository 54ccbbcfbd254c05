package badger

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/larder/core"
	"github.com/poiesic/larder/storage"
)

// RecipeRepository implements storage.RecipeRepository for BadgerDB.
type RecipeRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.RecipeRepository = (*RecipeRepository)(nil)

// NewRecipeRepository creates a new RecipeRepository.
func NewRecipeRepository(backend *Backend) (*RecipeRepository, error) {
	idSeq, err := backend.GetSequence(recipeIDSeq)
	if err != nil {
		return nil, err
	}
	return &RecipeRepository{backend: backend, idSeq: idSeq}, nil
}

// Close releases the ID sequence.
func (r *RecipeRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *RecipeRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddRecipe stores a recipe. Every referenced ingredient must exist at commit time.
func (r *RecipeRepository) AddRecipe(ctx context.Context, recipe *core.Recipe) (*core.Recipe, error) {
	err := r.backend.Update(func(tx *badger.Txn) error {
		for _, ri := range recipe.Ingredients {
			// Reading the key puts it in the read set, so a concurrent delete conflicts
			if _, err := tx.Get(makeIngredientKey(ri.IngredientId)); err != nil {
				if err == badger.ErrKeyNotFound {
					return fmt.Errorf("%w: %d", core.ErrIngredientNotFound, ri.IngredientId)
				}
				return err
			}
		}

		nextID, err := r.idSeq.Next()
		if err != nil {
			return err
		}
		if nextID == 0 {
			if nextID, err = r.idSeq.Next(); err != nil {
				return err
			}
		}
		recipe.Id = core.ID(nextID)
		recipe.InsertedAt = timestamp()
		recipe.UpdatedAt = recipe.InsertedAt

		return tx.Set(makeRecipeKey(recipe.Id), storage.MarshalRecipe(recipe))
	})
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

// GetRecipe retrieves a recipe by ID.
func (r *RecipeRepository) GetRecipe(ctx context.Context, id core.ID) (*core.Recipe, error) {
	var recipe *core.Recipe
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		recipe, err = readRecipe(tx, id)
		return err
	}, false)
	return recipe, err
}

// GetAllRecipes retrieves every recipe ordered by ID.
func (r *RecipeRepository) GetAllRecipes(ctx context.Context) ([]*core.Recipe, error) {
	var results []*core.Recipe
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recipeRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				recipe, err := storage.UnmarshalRecipe(val)
				if err != nil {
					return err
				}
				results = append(results, recipe)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	return results, err
}

// GetRecipeWithIngredients reads a recipe and its ingredients from one snapshot.
func (r *RecipeRepository) GetRecipeWithIngredients(ctx context.Context, id core.ID) (*core.RecipeWithIngredients, error) {
	var result *core.RecipeWithIngredients
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		recipe, err := readRecipe(tx, id)
		if err != nil {
			return err
		}

		result = &core.RecipeWithIngredients{
			Recipe: recipe,
			Items:  make([]core.RecipeItem, 0, len(recipe.Ingredients)),
		}
		for _, ri := range recipe.Ingredients {
			ingredient, err := readIngredient(tx, makeIngredientKey(ri.IngredientId))
			if err != nil {
				return err
			}
			if ingredient == nil {
				continue
			}
			result.Items = append(result.Items, core.RecipeItem{Ingredient: ingredient, Amount: ri.Amount})
		}
		return nil
	}, false)
	return result, err
}

func readRecipe(tx *badger.Txn, id core.ID) (*core.Recipe, error) {
	item, err := tx.Get(makeRecipeKey(id))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	var recipe *core.Recipe
	err = item.Value(func(val []byte) error {
		var err error
		recipe, err = storage.UnmarshalRecipe(val)
		return err
	})
	return recipe, err
}
