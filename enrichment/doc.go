// Package enrichment fills in the attributes an ingredient is created without.
//
// Three passes run independently of each other:
//
//   - embed: computes a name embedding for records that have none
//   - categorize: labels uncategorized records in one batched model call,
//     committing only labels from the taxonomy (or "other") with a
//     confidence of at least 0.5
//   - price: estimates a price, quantity and unit together for categorized
//     records, using priced neighbours as context
//
// Every pass handles at most Config.BatchSize records and commits each
// record separately. A record that fails or is rejected keeps its missing
// attribute and is picked up again by a later pass.
//
// Orchestrator runs one pass on demand. Scheduler runs all three on fixed
// intervals:
//
//	orchestrator, err := enrichment.NewOrchestrator(ingredients, provider)
//	if err != nil {
//	    return err
//	}
//	scheduler, err := enrichment.NewScheduler(orchestrator, ai.DefaultTaxonomy)
//	if err != nil {
//	    return err
//	}
//	defer scheduler.Release()
//	return scheduler.Run(ctx)
package enrichment
