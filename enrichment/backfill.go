package enrichment

import (
	"context"
	"io"
	"time"
)

// Backfill runs pass repeatedly until a run commits nothing, then returns
// the combined result. Progress is written to output when it is not nil.
func (o *Orchestrator) Backfill(ctx context.Context, pass Pass, taxonomy []string, output io.Writer) (*PassResult, error) {
	total, err := o.countMissing(ctx, pass)
	if err != nil {
		return nil, err
	}

	tracker := NewProgressTracker(pass, total, output)
	tracker.Start()
	defer tracker.Finish()

	combined := newPassResult(pass)
	for {
		if err := ctx.Err(); err != nil {
			return combined, err
		}

		result, err := o.Run(ctx, pass, taxonomy)
		if result != nil {
			combined.merge(result)
			tracker.Add(result)
		}
		if err != nil {
			return combined, err
		}
		if result.Committed == 0 {
			return combined, nil
		}
	}
}

func (o *Orchestrator) countMissing(ctx context.Context, pass Pass) (int, error) {
	start := time.Now()
	defer func() {
		o.logger.Debug("counted backlog", "pass", pass, "elapsed", time.Since(start))
	}()

	switch pass {
	case PassEmbed:
		missing, err := o.ingredients.IngredientsMissingEmbedding(ctx, 0)
		return len(missing), err
	case PassCategorize:
		missing, err := o.ingredients.IngredientsMissingCategory(ctx, 0)
		return len(missing), err
	case PassPrice:
		missing, err := o.ingredients.IngredientsAwaitingPrice(ctx, 0)
		return len(missing), err
	}
	return 0, ErrUnknownPass
}
