package enrichment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/larder/ai"
	"github.com/poiesic/larder/core"
	"github.com/poiesic/larder/search"
	"github.com/poiesic/larder/storage"
)

// Orchestrator runs the embed, categorize and price passes over ingredients.
// Each pass selects a bounded batch of records missing one enrichment and
// commits each record's result on its own, so one bad record never blocks
// the rest of the batch.
type Orchestrator struct {
	ingredients storage.IngredientRepository
	embedder    ai.Embedder
	categorizer ai.Categorizer
	estimator   ai.PriceEstimator
	retriever   *search.Retriever
	config      Config
	logger      *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithConfig replaces the default configuration.
func WithConfig(config *Config) Option {
	return func(o *Orchestrator) error {
		if config == nil {
			return nil
		}
		if err := config.Validate(); err != nil {
			return err
		}
		o.config = *config
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// NewOrchestrator creates an orchestrator over the given repository and provider.
func NewOrchestrator(ingredients storage.IngredientRepository, provider ai.AIProvider, opts ...Option) (*Orchestrator, error) {
	if ingredients == nil {
		return nil, ErrRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	o := &Orchestrator{
		ingredients: ingredients,
		embedder:    provider.Embedder(),
		categorizer: provider.Categorizer(),
		estimator:   provider.PriceEstimator(),
		config:      *DefaultConfig(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	o.logger = o.logger.With("component", "enrichment")

	retriever, err := search.NewRetriever(ingredients, provider, search.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}
	o.retriever = retriever
	return o, nil
}

// Config returns a copy of the active configuration.
func (o *Orchestrator) Config() Config {
	return o.config
}

// Run dispatches to the named pass. taxonomy is only used by categorize.
func (o *Orchestrator) Run(ctx context.Context, pass Pass, taxonomy []string) (*PassResult, error) {
	switch pass {
	case PassEmbed:
		return o.EmbedPass(ctx)
	case PassCategorize:
		return o.CategorizePass(ctx, taxonomy)
	case PassPrice:
		return o.PricePass(ctx)
	}
	return nil, ErrUnknownPass
}

// finish stamps the duration and logs the summary.
func (o *Orchestrator) finish(result *PassResult, start time.Time) *PassResult {
	result.Duration = time.Since(start)
	if result.Selected > 0 {
		o.logger.Info("pass complete", append([]any{"pass", result.Pass}, result.LogAttrs()...)...)
	} else {
		o.logger.Debug("pass found nothing to do", "pass", result.Pass)
	}
	return result
}

// failRemaining marks every record from index i onward as failed after cancellation.
func (o *Orchestrator) failRemaining(result *PassResult, batch []*core.Ingredient, i int, err error) {
	for _, in := range batch[i:] {
		result.record(in.Id, outcomeFailed, err)
	}
	o.logger.Warn("pass interrupted", "pass", result.Pass, "remaining", len(batch)-i, "err", err)
}

// commitOutcome classifies the error from a single-record patch.
func (o *Orchestrator) commitOutcome(result *PassResult, id core.ID, err error) {
	switch {
	case err == nil:
		result.record(id, outcomeCommitted, nil)
	case errors.Is(err, storage.ErrNotFound):
		// Removed between selection and commit.
		result.record(id, outcomeSkipped, nil)
	default:
		o.logger.Warn("commit failed", "pass", result.Pass, "id", id, "err", err)
		result.record(id, outcomeFailed, err)
	}
}
