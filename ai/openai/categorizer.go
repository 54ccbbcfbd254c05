package openai

import (
	"context"
	"log/slog"

	"github.com/poiesic/larder/ai"
	"github.com/tmc/langchaingo/llms"
)

// Categorizer implements ai.Categorizer using an OpenAI-compatible chat API.
type Categorizer struct {
	client llms.Model
	model  string
	logger *slog.Logger
}

// Categorize sends every input in one request and decodes the assignments.
// There is no retry; a failed batch is picked up by the next pass.
func (c *Categorizer) Categorize(ctx context.Context, inputs []ai.CategorizeInput, taxonomy []string) ([]ai.CategoryAssignment, error) {
	if len(inputs) == 0 {
		return nil, ai.ErrEmptyInput
	}

	system, user, err := buildCategorizationPrompts(inputs, taxonomy)
	if err != nil {
		return nil, err
	}

	raw, err := generateJSON(ctx, c.client, c.model, system, user)
	if err != nil {
		c.logger.Error("categorization request failed", "count", len(inputs), "err", err)
		return nil, err
	}

	assignments, err := parseCategorization(raw)
	if err != nil {
		c.logger.Warn("categorization response rejected", "response", raw, "err", err)
		return nil, err
	}

	c.logger.Debug("categorized ingredients", "requested", len(inputs), "returned", len(assignments))
	return assignments, nil
}
