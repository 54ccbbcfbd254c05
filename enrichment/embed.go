package enrichment

import (
	"context"
	"time"
)

// EmbedPass embeds up to BatchSize ingredients that have no name embedding.
// Each vector is committed as soon as it is computed.
func (o *Orchestrator) EmbedPass(ctx context.Context) (*PassResult, error) {
	start := time.Now()
	result := newPassResult(PassEmbed)

	batch, err := o.ingredients.IngredientsMissingEmbedding(ctx, o.config.BatchSize)
	if err != nil {
		return o.finish(result, start), err
	}
	result.Selected = len(batch)
	result.Eligible = len(batch)

	for i, in := range batch {
		if err := ctx.Err(); err != nil {
			o.failRemaining(result, batch, i, err)
			break
		}

		vector, err := o.embedder.EmbedText(ctx, in.Name)
		if err != nil {
			o.logger.Warn("embedding failed", "id", in.Id, "name", in.Name, "err", err)
			result.record(in.Id, outcomeFailed, err)
			continue
		}
		o.commitOutcome(result, in.Id, o.ingredients.SetEmbedding(ctx, in.Id, vector))
	}

	return o.finish(result, start), nil
}
