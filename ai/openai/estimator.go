package openai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/larder/ai"
	"github.com/poiesic/larder/core"
	"github.com/tmc/langchaingo/llms"
)

// PriceEstimator implements ai.PriceEstimator using an OpenAI-compatible chat API.
type PriceEstimator struct {
	client llms.Model
	model  string
	region string
	logger *slog.Logger
}

// EstimatePrice asks the model to price target from its neighbours.
func (e *PriceEstimator) EstimatePrice(ctx context.Context, target ai.PriceTarget, neighbors []ai.PricedNeighbor) (*core.PriceEstimate, error) {
	if strings.TrimSpace(target.Name) == "" {
		return nil, ai.ErrEmptyInput
	}

	system, user, err := buildEstimationPrompts(target, neighbors, e.region)
	if err != nil {
		return nil, err
	}

	raw, err := generateJSON(ctx, e.client, e.model, system, user)
	if err != nil {
		e.logger.Error("estimation request failed", "id", target.Id, "err", err)
		return nil, err
	}

	estimate, err := parseEstimate(raw, target.Id)
	if err != nil {
		e.logger.Warn("estimation response rejected", "id", target.Id, "response", raw, "err", err)
		return nil, err
	}
	return estimate, nil
}
