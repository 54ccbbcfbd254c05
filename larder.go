// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package larder is an ingredient catalogue whose records are completed in
// the background: names are embedded, categorized against a taxonomy and
// priced from similar ingredients.
package larder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/larder/ai"
	"github.com/poiesic/larder/ai/openai"
	"github.com/poiesic/larder/core"
	"github.com/poiesic/larder/enrichment"
	"github.com/poiesic/larder/search"
	"github.com/poiesic/larder/storage"
	"github.com/poiesic/larder/storage/badger"
)

// Database ties the store, the AI provider and the enrichment configuration together.
type Database struct {
	backend     *badger.Backend
	ingredients storage.IngredientRepository
	recipes     storage.RecipeRepository
	provider    ai.AIProvider
	taxonomy    []string
	enrichment  *enrichment.Config
	logger      *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig   *ai.Config
	provider   ai.AIProvider
	taxonomy   []string
	enrichment *enrichment.Config
	inMemory   bool
	logger     *slog.Logger
}

// WithAIConfig sets the configuration of the OpenAI-compatible provider.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithProvider uses provider instead of building one from the AI config.
// The database closes it on Close.
func WithProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithTaxonomy sets the category labels ingredients may be assigned.
func WithTaxonomy(taxonomy []string) DatabaseOption {
	return func(o *databaseOptions) {
		o.taxonomy = taxonomy
	}
}

// WithEnrichmentConfig sets batch sizes and schedule for enrichment.
func WithEnrichmentConfig(config *enrichment.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.enrichment = config
	}
}

// InMemory keeps all data in memory. The path passed to Open is ignored.
func InMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithDatabaseLogger sets a custom logger.
func WithDatabaseLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

// Open opens or creates the database at filePath.
func Open(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig:   ai.DefaultConfig(),
		taxonomy:   ai.DefaultTaxonomy,
		enrichment: enrichment.DefaultConfig(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.enrichment == nil {
		options.enrichment = enrichment.DefaultConfig()
	}
	if len(options.taxonomy) == 0 {
		return nil, fmt.Errorf("%w: taxonomy cannot be empty", ErrInvalidConfig)
	}
	if err := options.enrichment.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	ingredients, err := badger.NewIngredientRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	recipes, err := badger.NewRecipeRepository(backend)
	if err != nil {
		ingredients.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			recipes.Close()
			ingredients.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:     backend,
		ingredients: ingredients,
		recipes:     recipes,
		provider:    provider,
		taxonomy:    append([]string(nil), options.taxonomy...),
		enrichment:  options.enrichment,
		logger:      options.logger.With("component", "larder"),
	}, nil
}

// OpenConfig opens the database described by cfg.
func OpenConfig(cfg *Config, opts ...DatabaseOption) (*Database, error) {
	base := []DatabaseOption{
		WithAIConfig(&cfg.AI),
		WithTaxonomy(cfg.Taxonomy),
		WithEnrichmentConfig(&cfg.Enrichment),
	}
	return Open(cfg.DB, append(base, opts...)...)
}

// Close releases the provider, the repositories and the store.
func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.recipes.Close(); err != nil {
		db.logger.Error("error closing recipe repository", "err", err)
		return err
	}
	if err := db.ingredients.Close(); err != nil {
		db.logger.Error("error closing ingredient repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) IngredientRepository() storage.IngredientRepository {
	return db.ingredients
}

func (db *Database) RecipeRepository() storage.RecipeRepository {
	return db.recipes
}

// Taxonomy returns the configured category labels.
func (db *Database) Taxonomy() []string {
	return append([]string(nil), db.taxonomy...)
}

// CreateIngredient validates and stores a new ingredient. A price, if given,
// must come with its quantity and unit and is recorded as human-supplied.
// The embedding is always left for the enrichment pipeline.
func (db *Database) CreateIngredient(ctx context.Context, in *core.Ingredient) (*core.Ingredient, error) {
	if err := core.ValidateIngredient(in); err != nil {
		return nil, err
	}

	record := *in
	record.Name = strings.TrimSpace(record.Name)
	record.NameEmbedding = nil
	record.IsPriceEstimated = record.Price == nil
	if err := db.checkCategory(record.Category); err != nil {
		return nil, err
	}

	added, err := db.ingredients.AddIngredients(ctx, &record)
	if err != nil {
		return nil, err
	}
	db.logger.Debug("ingredient created", "id", added[0].Id, "name", added[0].Name)
	return added[0], nil
}

// UpdateIngredient applies a human edit. Renaming clears the embedding so the
// embed pass recomputes it. A changed price is marked as human-supplied.
func (db *Database) UpdateIngredient(ctx context.Context, in *core.Ingredient) (*core.Ingredient, error) {
	if err := core.ValidateIngredient(in); err != nil {
		return nil, err
	}
	if err := db.checkCategory(in.Category); err != nil {
		return nil, err
	}

	existing, err := db.ingredients.GetIngredient(ctx, in.Id)
	if err != nil {
		return nil, err
	}

	record := *in
	record.Name = strings.TrimSpace(record.Name)
	record.NameEmbedding = existing.NameEmbedding
	if core.NormalizeName(record.Name) != core.NormalizeName(existing.Name) {
		record.NameEmbedding = nil
	}

	switch {
	case record.Price == nil:
		record.IsPriceEstimated = true
	case samePrice(existing.PriceTriple(), record.PriceTriple()):
		record.IsPriceEstimated = existing.IsPriceEstimated
	default:
		record.IsPriceEstimated = false
	}

	return db.ingredients.UpdateIngredient(ctx, &record)
}

func samePrice(a, b *core.PriceEstimate) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (db *Database) checkCategory(category string) error {
	if category == "" {
		return nil
	}
	if err := core.ValidateCategory(category, db.taxonomy); err != nil {
		return fmt.Errorf("%w: %w", core.ErrInvalidIngredient, err)
	}
	return nil
}

// CreateRecipe validates and stores a recipe. Every referenced ingredient must exist.
func (db *Database) CreateRecipe(ctx context.Context, recipe *core.Recipe) (*core.Recipe, error) {
	if err := core.ValidateRecipe(recipe); err != nil {
		return nil, err
	}
	return db.recipes.AddRecipe(ctx, recipe)
}

// ResetCategories clears every category so the categorize pass runs again.
func (db *Database) ResetCategories(ctx context.Context) (int, error) {
	n, err := db.ingredients.ResetCategories(ctx)
	if err != nil {
		return 0, err
	}
	db.logger.Info("categories reset", "count", n)
	return n, nil
}

func (db *Database) NewOrchestrator(opts ...enrichment.Option) (*enrichment.Orchestrator, error) {
	base := []enrichment.Option{enrichment.WithConfig(db.enrichment)}
	return enrichment.NewOrchestrator(db.ingredients, db.provider, append(base, opts...)...)
}

// NewScheduler builds an orchestrator and a scheduler driving it over the configured taxonomy.
func (db *Database) NewScheduler(opts ...enrichment.SchedulerOption) (*enrichment.Scheduler, error) {
	o, err := db.NewOrchestrator()
	if err != nil {
		return nil, err
	}
	return enrichment.NewScheduler(o, db.taxonomy, opts...)
}

func (db *Database) NewRetriever(opts ...search.Option) (*search.Retriever, error) {
	return search.NewRetriever(db.ingredients, db.provider, opts...)
}
