package enrichment

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/larder/ai"
	"github.com/poiesic/larder/core"
)

// PricePass estimates a price triple for priceless ingredients. Up to
// BatchSize records missing a price and holding a category other than
// "other" are selected.
//
// Pricing context is the ingredient's semantic neighbours above
// MinSimilarity plus ingredients in the same category, limited to those
// with a full price triple.
func (o *Orchestrator) PricePass(ctx context.Context) (*PassResult, error) {
	start := time.Now()
	result := newPassResult(PassPrice)

	batch, err := o.ingredients.IngredientsAwaitingPrice(ctx, o.config.BatchSize)
	if err != nil {
		return o.finish(result, start), err
	}
	result.Selected = len(batch)

	eligible := make([]*core.Ingredient, 0, len(batch))
	for _, in := range batch {
		// Index entries and records are written in one txn; this only trips on a stale index.
		if !in.HasPricingCategory() {
			result.record(in.Id, outcomeSkipped, nil)
			continue
		}
		eligible = append(eligible, in)
	}
	result.Eligible = len(eligible)

	for i, in := range eligible {
		if err := ctx.Err(); err != nil {
			o.failRemaining(result, eligible, i, err)
			break
		}

		estimate, err := o.estimate(ctx, in)
		if err != nil {
			o.logger.Warn("price estimation failed", "id", in.Id, "name", in.Name, "err", err)
			result.record(in.Id, outcomeFailed, err)
			continue
		}
		o.commitOutcome(result, in.Id, o.ingredients.SetPrice(ctx, in.Id, *estimate))
	}

	return o.finish(result, start), nil
}

func (o *Orchestrator) estimate(ctx context.Context, in *core.Ingredient) (*core.PriceEstimate, error) {
	neighbors, err := o.pricingContext(ctx, in)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("estimating price", "id", in.Id, "name", in.Name, "neighbors", len(neighbors))

	estimate, err := o.estimator.EstimatePrice(ctx, ai.PriceTarget{Id: in.Id, Name: in.Name}, neighbors)
	if err != nil {
		return nil, err
	}
	if err := core.ValidatePriceEstimate(estimate); err != nil {
		return nil, err
	}
	return estimate, nil
}

// pricingContext gathers priced neighbours for in: similar ingredients first,
// then same-category ones. The target is excluded and each neighbour appears once.
func (o *Orchestrator) pricingContext(ctx context.Context, in *core.Ingredient) ([]ai.PricedNeighbor, error) {
	vector := in.NameEmbedding
	if len(vector) == 0 {
		// Not committed here; the embed pass owns the stored vector.
		computed, err := o.embedder.EmbedText(ctx, in.Name)
		if err != nil {
			return nil, fmt.Errorf("embed for pricing context: %w", err)
		}
		vector = computed
	}

	similar, err := o.retriever.FindSimilar(ctx, vector, o.config.SimilarLimit, o.config.MinSimilarity)
	if err != nil {
		return nil, fmt.Errorf("similar ingredients: %w", err)
	}
	sameCategory, err := o.ingredients.IngredientsByCategory(ctx, in.Category, o.config.CategoryContextLimit)
	if err != nil {
		return nil, fmt.Errorf("category ingredients: %w", err)
	}

	seen := map[core.ID]bool{in.Id: true}
	neighbors := make([]ai.PricedNeighbor, 0, len(similar)+len(sameCategory))
	add := func(candidate *core.Ingredient) {
		if seen[candidate.Id] {
			return
		}
		seen[candidate.Id] = true
		if n, ok := ai.NeighborFromIngredient(candidate); ok {
			neighbors = append(neighbors, n)
		}
	}
	for _, r := range similar {
		add(r.Ingredient)
	}
	for _, c := range sameCategory {
		add(c)
	}
	return neighbors, nil
}
