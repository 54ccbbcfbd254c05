package search

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/larder/ai"
	"github.com/poiesic/larder/core"
	"github.com/poiesic/larder/storage"
)

const (
	// DefaultLimit is the number of nearest candidates requested.
	DefaultLimit = 10

	// DefaultMinScore is the similarity a candidate must exceed to be kept.
	DefaultMinScore = 0.45
)

// Retriever finds ingredients similar to a vector, a name or a text query.
type Retriever struct {
	ingredients storage.IngredientRepository
	embedder    ai.Embedder
	logger      *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets the logger. A nil logger falls back to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a Retriever over the given repository.
func NewRetriever(ingredients storage.IngredientRepository, provider ai.AIProvider, opts ...Option) (*Retriever, error) {
	if ingredients == nil {
		return nil, ErrRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	r := &Retriever{
		ingredients: ingredients,
		embedder:    provider.Embedder(),
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "retriever")

	return r, nil
}

// FindSimilar returns up to limit ingredients whose similarity to vector is
// strictly greater than minScore, highest first. A limit <= 0 uses DefaultLimit.
// No match yields an empty slice.
func (r *Retriever) FindSimilar(ctx context.Context, vector []float32, limit int, minScore float32) ([]*core.SearchResult, error) {
	return r.FindSimilarWithMonitor(ctx, vector, limit, minScore, nil)
}

// FindSimilarWithMonitor is FindSimilar with observation hooks.
func (r *Retriever) FindSimilarWithMonitor(ctx context.Context, vector []float32, limit int, minScore float32, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if len(vector) == 0 {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	candidates, err := r.ingredients.FindNearest(ctx, vector, limit)
	if err != nil {
		r.logger.Error("error querying for similar ingredients", "err", err)
		return nil, err
	}
	monitor.AfterNearest(candidates)

	results := make([]*core.SearchResult, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Score > minScore {
			results = append(results, candidate)
			continue
		}
		monitor.BelowFloor(candidate, minScore)
	}

	// The store already orders by score; keep its order on ties
	slices.SortStableFunc(results, byScoreDesc)
	monitor.Finish(results)

	r.logger.Debug("similarity search", "candidates", len(candidates), "kept", len(results), "minScore", minScore)
	return results, nil
}

// FindSimilarByName embeds name and returns ingredients similar to it.
func (r *Retriever) FindSimilarByName(ctx context.Context, name string, limit int, minScore float32) ([]*core.SearchResult, error) {
	return r.FindSimilarByNameWithMonitor(ctx, name, limit, minScore, nil)
}

// FindSimilarByNameWithMonitor is FindSimilarByName with observation hooks.
func (r *Retriever) FindSimilarByNameWithMonitor(ctx context.Context, name string, limit int, minScore float32, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyQuery
	}
	monitor.Start(name)

	embedding, err := r.embedder.EmbedText(ctx, name)
	if err != nil {
		r.logger.Error("error generating embedding for query", "query", name, "err", err)
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	return r.FindSimilarWithMonitor(ctx, embedding, limit, minScore, monitor)
}

// SearchByName ranks ingredients by how many query tokens their name shares.
// Names containing the whole query verbatim get a boost.
func (r *Retriever) SearchByName(ctx context.Context, query string, limit int) ([]*core.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	matches, err := r.ingredients.SearchByName(ctx, query, 0)
	if err != nil {
		r.logger.Error("error searching ingredient names", "query", query, "err", err)
		return nil, err
	}

	results := make([]*core.SearchResult, 0, len(matches))
	for _, match := range matches {
		score := match.Score
		if containsVerbatim(match.Ingredient.Name, query) {
			score += verbatimBoost
		} else if containsAllQueryWords(match.Ingredient.Name, query) {
			score += verbatimBoost / 3
		}
		results = append(results, &core.SearchResult{Ingredient: match.Ingredient, Score: score})
	}

	slices.SortStableFunc(results, byScoreDesc)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func byScoreDesc(a, b *core.SearchResult) int {
	if a.Score > b.Score {
		return -1
	}
	if a.Score < b.Score {
		return 1
	}
	return 0
}
