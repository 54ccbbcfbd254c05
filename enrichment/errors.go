package enrichment

import "errors"

var (
	// ErrRepositoryRequired is returned when an ingredient repository is not provided.
	ErrRepositoryRequired = errors.New("ingredient repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrOrchestratorRequired is returned when a scheduler has no orchestrator.
	ErrOrchestratorRequired = errors.New("orchestrator required")

	// ErrEmptyTaxonomy is returned when categorization is asked to run without categories.
	ErrEmptyTaxonomy = errors.New("taxonomy cannot be empty")

	// ErrInvalidConfig is returned when a Config fails validation.
	ErrInvalidConfig = errors.New("invalid enrichment config")

	// ErrUnknownPass is returned for a pass name other than embed, categorize or price.
	ErrUnknownPass = errors.New("unknown pass")
)
