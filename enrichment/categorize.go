package enrichment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/poiesic/larder/ai"
	"github.com/poiesic/larder/core"
)

// CategorizePass labels up to BatchSize uncategorized ingredients with one
// categorizer call. Each assignment is checked against the taxonomy and the
// confidence floor before it is committed; rejected records stay
// uncategorized and are selected again next pass.
//
// If the categorizer call fails, nothing is committed, every selected record
// counts as failed and the error is returned.
func (o *Orchestrator) CategorizePass(ctx context.Context, taxonomy []string) (*PassResult, error) {
	start := time.Now()
	result := newPassResult(PassCategorize)

	if len(taxonomy) == 0 {
		return o.finish(result, start), ErrEmptyTaxonomy
	}

	batch, err := o.ingredients.IngredientsMissingCategory(ctx, o.config.BatchSize)
	if err != nil {
		return o.finish(result, start), err
	}
	result.Selected = len(batch)
	result.Eligible = len(batch)
	if len(batch) == 0 {
		return o.finish(result, start), nil
	}

	inputs := make([]ai.CategorizeInput, len(batch))
	selected := make(map[core.ID]bool, len(batch))
	for i, in := range batch {
		inputs[i] = ai.CategorizeInput{Id: in.Id, Name: in.Name}
		selected[in.Id] = true
	}

	assignments, err := o.categorizer.Categorize(ctx, inputs, taxonomy)
	if err != nil {
		o.logger.Warn("categorization batch failed", "size", len(batch), "err", err)
		for _, in := range batch {
			result.record(in.Id, outcomeFailed, err)
		}
		return o.finish(result, start), fmt.Errorf("categorize batch: %w", err)
	}

	answered := make(map[core.ID]bool, len(assignments))
	for _, a := range assignments {
		if err := ctx.Err(); err != nil {
			o.logger.Warn("pass interrupted", "pass", result.Pass, "err", err)
			break
		}
		if !selected[a.Id] || answered[a.Id] {
			o.logger.Debug("ignoring assignment", "id", a.Id, "category", a.Category)
			result.Ignored++
			continue
		}
		answered[a.Id] = true

		if err := checkAssignment(a, taxonomy); err != nil {
			o.logger.Info("assignment rejected", "id", a.Id, "category", a.Category, "confidence", a.Confidence, "err", err)
			result.record(a.Id, outcomeRejected, err)
			continue
		}
		o.commitOutcome(result, a.Id, o.ingredients.SetCategory(ctx, a.Id, a.Category))
	}

	// Selected records the model left out, or that cancellation cut off.
	for _, in := range batch {
		if answered[in.Id] {
			continue
		}
		if err := ctx.Err(); err != nil {
			result.record(in.Id, outcomeFailed, err)
			continue
		}
		result.record(in.Id, outcomeSkipped, nil)
	}

	return o.finish(result, start), nil
}

// checkAssignment applies the commit rules for one category assignment.
func checkAssignment(a ai.CategoryAssignment, taxonomy []string) error {
	if err := core.ValidateCategory(a.Category, taxonomy); err != nil {
		return err
	}
	if err := core.ValidateConfidence(a.Confidence); err != nil {
		return err
	}
	return nil
}

// IsRejection reports whether err is a commit-time rejection rather than a failure.
func IsRejection(err error) bool {
	return errors.Is(err, core.ErrLowConfidence) || errors.Is(err, core.ErrUnknownCategory)
}
