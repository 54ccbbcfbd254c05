package ai

import (
	"context"

	"github.com/poiesic/larder/core"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns ErrEmptyInput for blank text and ErrDimensionMismatch if the
	// model returns a vector of unexpected length.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Categorizer assigns taxonomy labels to ingredient names.
// Implementations must be thread-safe for concurrent use.
type Categorizer interface {
	// Categorize sends every input in one request and returns one assignment
	// per recognised input. Labels are not checked against the taxonomy here;
	// that happens when assignments are committed.
	// Returns a *SchemaError if the response does not conform, which fails the batch.
	Categorize(ctx context.Context, inputs []CategorizeInput, taxonomy []string) ([]CategoryAssignment, error)
}

// PriceEstimator estimates a price triple for one ingredient from priced neighbours.
// Implementations must be thread-safe for concurrent use.
type PriceEstimator interface {
	// EstimatePrice returns a validated estimate for target.
	// Returns a *SchemaError if the response does not conform.
	EstimatePrice(ctx context.Context, target PriceTarget, neighbors []PricedNeighbor) (*core.PriceEstimate, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A single provider per process is shared by every enrichment component.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Categorizer returns the categorization service.
	Categorizer() Categorizer

	// PriceEstimator returns the price estimation service.
	PriceEstimator() PriceEstimator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
