package badger

import (
	"bytes"
	"context"
	"encoding/binary"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/larder/core"
	"github.com/poiesic/larder/storage"
)

// IngredientRepository implements storage.IngredientRepository for BadgerDB.
type IngredientRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.IngredientRepository = (*IngredientRepository)(nil)

// NewIngredientRepository creates a new IngredientRepository.
func NewIngredientRepository(backend *Backend) (*IngredientRepository, error) {
	idSeq, err := backend.GetSequence(ingredientIDSeq)
	if err != nil {
		return nil, err
	}

	return &IngredientRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *IngredientRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *IngredientRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddIngredients adds one or more ingredients to storage.
func (r *IngredientRepository) AddIngredients(ctx context.Context, ingredients ...*core.Ingredient) ([]*core.Ingredient, error) {
	err := r.backend.Update(func(tx *badger.Txn) error {
		for _, ingredient := range ingredients {
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			ingredient.Id = core.ID(nextID)

			ingredient.InsertedAt = timestamp()
			ingredient.UpdatedAt = ingredient.InsertedAt

			if err := writeIngredient(tx, nil, ingredient); err != nil {
				return err
			}
		}
		return nil
	})

	return ingredients, err
}

// UpdateIngredient replaces an existing ingredient.
func (r *IngredientRepository) UpdateIngredient(ctx context.Context, ingredient *core.Ingredient) (*core.Ingredient, error) {
	err := r.backend.Update(func(tx *badger.Txn) error {
		old, err := readIngredient(tx, makeIngredientKey(ingredient.Id))
		if err != nil {
			return err
		}
		if old == nil {
			return storage.ErrNotFound
		}

		ingredient.InsertedAt = old.InsertedAt
		ingredient.UpdatedAt = timestamp()
		return writeIngredient(tx, old, ingredient)
	})
	if err != nil {
		return nil, err
	}
	return ingredient, nil
}

// GetIngredient retrieves a single ingredient by ID.
func (r *IngredientRepository) GetIngredient(ctx context.Context, id core.ID) (*core.Ingredient, error) {
	var result *core.Ingredient
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readIngredient(tx, makeIngredientKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetIngredients retrieves multiple ingredients by their IDs.
func (r *IngredientRepository) GetIngredients(ctx context.Context, ids ...core.ID) ([]*core.Ingredient, error) {
	var result []*core.Ingredient
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readIngredients(tx, ids)
		return err
	}, false)
	return result, err
}

// GetAllIngredients retrieves every ingredient ordered by ID.
func (r *IngredientRepository) GetAllIngredients(ctx context.Context) ([]*core.Ingredient, error) {
	var results []*core.Ingredient
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(ingredientRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var ingredient *core.Ingredient
			err := iter.Item().Value(func(val []byte) error {
				var err error
				ingredient, err = storage.UnmarshalIngredient(val)
				return err
			})
			if err != nil {
				return err
			}
			results = append(results, ingredient)
		}
		return nil
	}, false)
	return results, err
}

// SetEmbedding patches the name embedding of one ingredient.
func (r *IngredientRepository) SetEmbedding(ctx context.Context, id core.ID, embedding []float32) error {
	return r.patch(id, func(in *core.Ingredient) {
		in.NameEmbedding = embedding
	})
}

// SetCategory patches the category of one ingredient.
func (r *IngredientRepository) SetCategory(ctx context.Context, id core.ID, category string) error {
	return r.patch(id, func(in *core.Ingredient) {
		in.Category = category
	})
}

// SetPrice patches price, quantity and unit of one ingredient in one transaction.
func (r *IngredientRepository) SetPrice(ctx context.Context, id core.ID, estimate core.PriceEstimate) error {
	if err := core.ValidatePriceEstimate(&estimate); err != nil {
		return err
	}
	return r.patch(id, func(in *core.Ingredient) {
		price, quantity := estimate.Price, estimate.Quantity
		in.Price = &price
		in.Quantity = &quantity
		in.Unit = estimate.Unit
		in.IsPriceEstimated = true
	})
}

// IngredientsMissingEmbedding returns up to limit ingredients without an embedding.
func (r *IngredientRepository) IngredientsMissingEmbedding(ctx context.Context, limit int) ([]*core.Ingredient, error) {
	return r.listByIndex([]byte(ingredientNoEmbeddingPrefix), limit)
}

// IngredientsMissingCategory returns up to limit ingredients without a category.
func (r *IngredientRepository) IngredientsMissingCategory(ctx context.Context, limit int) ([]*core.Ingredient, error) {
	return r.listByIndex([]byte(ingredientNoCategoryPrefix), limit)
}

// IngredientsMissingPrice returns up to limit ingredients without a price.
func (r *IngredientRepository) IngredientsMissingPrice(ctx context.Context, limit int) ([]*core.Ingredient, error) {
	return r.listByIndex([]byte(ingredientNoPricePrefix), limit)
}

// IngredientsAwaitingPrice returns up to limit priceless ingredients that
// hold a category other than "other".
func (r *IngredientRepository) IngredientsAwaitingPrice(ctx context.Context, limit int) ([]*core.Ingredient, error) {
	return r.listByIndex([]byte(ingredientPriceablePrefix), limit)
}

// IngredientsByCategory returns up to limit ingredients holding the given category.
func (r *IngredientRepository) IngredientsByCategory(ctx context.Context, category string, limit int) ([]*core.Ingredient, error) {
	if category == "" {
		return r.listByIndex([]byte(ingredientNoCategoryPrefix), limit)
	}
	return r.listByIndex(makePartialCategoryKey(category), limit)
}

// FindByName returns ingredients whose normalized name equals name.
func (r *IngredientRepository) FindByName(ctx context.Context, name string) ([]*core.Ingredient, error) {
	candidates, err := r.listByIndex(makePartialNameKey(name), 0)
	if err != nil {
		return nil, err
	}

	// Guard against hash collisions
	normalized := core.NormalizeName(name)
	results := make([]*core.Ingredient, 0, len(candidates))
	for _, candidate := range candidates {
		if core.NormalizeName(candidate.Name) == normalized {
			results = append(results, candidate)
		}
	}
	return results, nil
}

// SearchByName returns ingredients sharing name tokens with query.
// Score is the fraction of query tokens found in the name.
func (r *IngredientRepository) SearchByName(ctx context.Context, query string, limit int) ([]*core.SearchResult, error) {
	tokens := core.Tokenize(query)
	if len(tokens) == 0 {
		return []*core.SearchResult{}, nil
	}

	var results []*core.SearchResult
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		matches := make(map[core.ID]int)
		var order []core.ID
		for _, token := range tokens {
			ids, err := scanIndex(tx, makePartialTokenKey(token), 0)
			if err != nil {
				return err
			}
			for _, id := range ids {
				if matches[id] == 0 {
					order = append(order, id)
				}
				matches[id]++
			}
		}

		// Earlier IDs first so ties are stable
		slices.Sort(order)
		ingredients, err := readIngredients(tx, order)
		if err != nil {
			return err
		}

		results = make([]*core.SearchResult, 0, len(ingredients))
		for _, ingredient := range ingredients {
			results = append(results, &core.SearchResult{
				Ingredient: ingredient,
				Score:      float32(matches[ingredient.Id]) / float32(len(tokens)),
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	sortByScore(results)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// FindNearest returns up to limit embedded ingredients ordered by cosine similarity.
// Only the embedding index is scanned; full records are read for the winners.
// Stored vectors whose dimension differs from the query are ignored.
func (r *IngredientRepository) FindNearest(ctx context.Context, vector []float32, limit int) ([]*core.SearchResult, error) {
	if len(vector) == 0 || limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	type candidate struct {
		id    core.ID
		score float32
	}

	queryNorm := norm(vector)
	var results []*core.SearchResult
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(ingredientEmbeddingPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		var candidates []candidate
		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := iter.Item()
			id := idFromKeySuffix(item.Key())

			var embedding []float32
			err := item.Value(func(val []byte) error {
				var err error
				embedding, err = storage.UnmarshalVector(val)
				return err
			})
			if err != nil {
				return err
			}
			if len(embedding) != len(vector) {
				continue
			}

			candidates = append(candidates, candidate{
				id:    id,
				score: cosineSimilarity(vector, embedding, queryNorm),
			})
		}

		// Sort by similarity descending, keeping ID order on ties
		slices.SortStableFunc(candidates, func(a, b candidate) int {
			if a.score > b.score {
				return -1
			}
			if a.score < b.score {
				return 1
			}
			return 0
		})
		if len(candidates) > limit {
			candidates = candidates[:limit]
		}

		results = make([]*core.SearchResult, 0, len(candidates))
		for _, c := range candidates {
			ingredient, err := readIngredient(tx, makeIngredientKey(c.id))
			if err != nil {
				return err
			}
			if ingredient == nil {
				continue
			}
			results = append(results, &core.SearchResult{Ingredient: ingredient, Score: c.score})
		}
		return nil
	}, false)

	return results, err
}

// ResetCategories clears the category of every categorized ingredient.
func (r *IngredientRepository) ResetCategories(ctx context.Context) (int, error) {
	var ids []core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		ids, err = scanIndex(tx, []byte(ingredientCategoryPrefix), 0)
		return err
	}, false)
	if err != nil {
		return 0, err
	}

	// One transaction per record keeps each commit small
	reset := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return reset, err
		}
		err := r.SetCategory(ctx, id, "")
		if err == storage.ErrNotFound {
			continue
		}
		if err != nil {
			return reset, err
		}
		reset++
	}
	return reset, nil
}

// Helper methods

// patch applies fn to a copy of the stored ingredient and writes it back.
func (r *IngredientRepository) patch(id core.ID, fn func(in *core.Ingredient)) error {
	return r.backend.Update(func(tx *badger.Txn) error {
		old, err := readIngredient(tx, makeIngredientKey(id))
		if err != nil {
			return err
		}
		if old == nil {
			return storage.ErrNotFound
		}

		updated := *old
		fn(&updated)
		updated.UpdatedAt = timestamp()
		return writeIngredient(tx, old, &updated)
	})
}

// listByIndex reads the ingredients referenced by an index prefix.
func (r *IngredientRepository) listByIndex(prefix []byte, limit int) ([]*core.Ingredient, error) {
	var result []*core.Ingredient
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		ids, err := scanIndex(tx, prefix, limit)
		if err != nil {
			return err
		}
		result, err = readIngredients(tx, ids)
		return err
	}, false)
	return result, err
}

// indexKeys lists every secondary index key an ingredient should appear under.
func indexKeys(in *core.Ingredient) [][]byte {
	keys := make([][]byte, 0, 8)
	if in.NeedsEmbedding() {
		keys = append(keys, makeIDKey(ingredientNoEmbeddingPrefix, in.Id))
	}
	if in.NeedsCategory() {
		keys = append(keys, makeIDKey(ingredientNoCategoryPrefix, in.Id))
	} else {
		keys = append(keys, makeCategoryKey(in.Category, in.Id))
	}
	if in.NeedsPrice() {
		keys = append(keys, makeIDKey(ingredientNoPricePrefix, in.Id))
		if in.HasPricingCategory() {
			keys = append(keys, makeIDKey(ingredientPriceablePrefix, in.Id))
		}
	}
	keys = append(keys, makeNameKey(in.Name, in.Id))
	for _, token := range core.Tokenize(in.Name) {
		keys = append(keys, makeTokenKey(token, in.Id))
	}
	return keys
}

// writeIngredient stores an ingredient and reconciles its indexes against old.
// old is nil for new records.
func writeIngredient(tx *badger.Txn, old, in *core.Ingredient) error {
	if err := tx.Set(makeIngredientKey(in.Id), storage.MarshalIngredient(in)); err != nil {
		return err
	}

	newKeys := indexKeys(in)
	if old != nil {
		keep := make(map[string]bool, len(newKeys))
		for _, key := range newKeys {
			keep[string(key)] = true
		}
		for _, key := range indexKeys(old) {
			if keep[string(key)] {
				continue
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
	}

	idValue := storage.MarshalID(in.Id)
	for _, key := range newKeys {
		if err := tx.Set(key, idValue); err != nil {
			return err
		}
	}

	// The embedding index holds the vector itself so similarity scans skip full records
	embeddingKey := makeIDKey(ingredientEmbeddingPrefix, in.Id)
	if len(in.NameEmbedding) > 0 {
		return tx.Set(embeddingKey, storage.MarshalVector(in.NameEmbedding))
	}
	if old != nil && len(old.NameEmbedding) > 0 {
		return tx.Delete(embeddingKey)
	}
	return nil
}

// scanIndex collects the IDs stored under an index prefix, up to limit (0 = all).
func scanIndex(tx *badger.Txn, prefix []byte, limit int) ([]core.ID, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var ids []core.ID
	for iter.Rewind(); iter.Valid(); iter.Next() {
		if limit > 0 && len(ids) >= limit {
			break
		}
		var id core.ID
		err := iter.Item().Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// readIngredients reads ingredients in order, skipping IDs that no longer exist.
func readIngredients(tx *badger.Txn, ids []core.ID) ([]*core.Ingredient, error) {
	result := make([]*core.Ingredient, 0, len(ids))
	for _, id := range ids {
		ingredient, err := readIngredient(tx, makeIngredientKey(id))
		if err != nil {
			return nil, err
		}
		if ingredient != nil {
			result = append(result, ingredient)
		}
	}
	return result, nil
}

// readIngredient reads an ingredient from the transaction.
// Returns nil, nil if the key doesn't exist.
func readIngredient(tx *badger.Txn, key []byte) (*core.Ingredient, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var ingredient *core.Ingredient
	err = item.Value(func(val []byte) error {
		var err error
		ingredient, err = storage.UnmarshalIngredient(val)
		return err
	})
	return ingredient, err
}

// idFromKeySuffix decodes the BigEndian ID at the end of a key.
func idFromKeySuffix(key []byte) core.ID {
	if len(key) < 8 {
		return 0
	}
	return core.ID(binary.BigEndian.Uint64(key[len(key)-8:]))
}

// timestamp returns the current time at the precision records are stored with.
func timestamp() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// sortByScore orders results by score descending, keeping input order on ties.
func sortByScore(results []*core.SearchResult) {
	slices.SortStableFunc(results, func(a, b *core.SearchResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return bytes.Compare(makeIngredientKey(a.Ingredient.Id), makeIngredientKey(b.Ingredient.Id))
	})
}
