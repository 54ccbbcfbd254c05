package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/poiesic/larder/core"
	"github.com/poiesic/larder/enrichment"
	"github.com/urfave/cli/v2"
)

func enrichCommand() *cli.Command {
	subcommands := make([]*cli.Command, 0, len(enrichment.Passes)+1)
	for _, pass := range enrichment.Passes {
		subcommands = append(subcommands, &cli.Command{
			Name:   string(pass),
			Usage:  fmt.Sprintf("Run one %s pass", pass),
			Flags:  []cli.Flag{backfillFlag()},
			Action: func(c *cli.Context) error { return enrichAction(c, pass) },
		})
	}
	subcommands = append(subcommands, &cli.Command{
		Name:   "all",
		Usage:  "Run the embed, categorize and price passes in order",
		Flags:  []cli.Flag{backfillFlag()},
		Action: func(c *cli.Context) error { return enrichAction(c, enrichment.Passes...) },
	})

	return &cli.Command{
		Name:        "enrich",
		Usage:       "Run enrichment passes once",
		Subcommands: subcommands,
	}
}

func backfillFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "backfill",
		Aliases: []string{"b"},
		Usage:   "Repeat the pass until it commits nothing",
	}
}

func enrichAction(c *cli.Context, passes ...enrichment.Pass) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	o, err := db.NewOrchestrator()
	if err != nil {
		return err
	}

	for _, pass := range passes {
		var result *enrichment.PassResult
		if c.Bool("backfill") {
			result, err = o.Backfill(c.Context, pass, db.Taxonomy(), c.App.ErrWriter)
		} else {
			result, err = o.Run(c.Context, pass, db.Taxonomy())
		}
		if result != nil {
			printPassResult(c, result)
		}
		if err != nil {
			return fmt.Errorf("%s pass: %w", pass, err)
		}
	}
	return nil
}

func printPassResult(c *cli.Context, r *enrichment.PassResult) {
	fmt.Fprintf(c.App.Writer, "%s: selected %d, eligible %d, committed %d, rejected %d, failed %d, skipped %d",
		r.Pass, r.Selected, r.Eligible, r.Committed, r.Rejected, r.Failed, r.Skipped)
	if r.Ignored > 0 {
		fmt.Fprintf(c.App.Writer, ", ignored %d", r.Ignored)
	}
	fmt.Fprintf(c.App.Writer, " (%s)\n", r.Duration.Round(time.Millisecond))
	for _, e := range r.Errors {
		kind := "failed"
		if enrichment.IsRejection(e.Err) {
			kind = "rejected"
		}
		fmt.Fprintf(c.App.Writer, "  %d %s: %v\n", e.Id, kind, e.Err)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run enrichment passes on their configured intervals until interrupted",
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, c)
		},
	}
}

func serve(ctx context.Context, c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	scheduler, err := db.NewScheduler()
	if err != nil {
		return err
	}
	defer scheduler.Release()

	slog.Info("serving enrichment", "taxonomy", len(db.Taxonomy()))
	return scheduler.Run(ctx)
}

func resetCategoriesCommand() *cli.Command {
	return &cli.Command{
		Name:  "reset-categories",
		Usage: "Clear every category so ingredients are categorized again",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Confirm the reset"},
		},
		Action: func(c *cli.Context) error {
			if !c.Bool("yes") {
				return fmt.Errorf("refusing to reset categories without --yes")
			}
			db, err := openDatabase(c)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := db.ResetCategories(c.Context)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "reset %d categories\n", n)
			return nil
		},
	}
}

// starterPantry gives the price pass priced neighbours to work from.
var starterPantry = []struct {
	name     string
	category string
	price    float64
	quantity float64
	unit     core.Unit
}{
	{"Carrots", "Produce", 0.33, 100, core.UnitGrams},
	{"Yellow onions", "Produce", 0.40, 100, core.UnitGrams},
	{"Russet potatoes", "Produce", 0.22, 100, core.UnitGrams},
	{"Garlic", "Produce", 0.50, 1, core.UnitWhole},
	{"Lemons", "Produce", 0.99, 1, core.UnitWhole},
	{"Whole milk", "Dairy & Eggs", 0.60, 100, core.UnitMilliliters},
	{"Large eggs", "Dairy & Eggs", 0.45, 1, core.UnitWhole},
	{"Salted butter", "Dairy & Eggs", 1.80, 100, core.UnitGrams},
	{"Cheddar cheese", "Dairy & Eggs", 2.50, 100, core.UnitGrams},
	{"Chicken thighs", "Meat & Seafood", 1.65, 100, core.UnitGrams},
	{"Ground beef", "Meat & Seafood", 1.40, 100, core.UnitGrams},
	{"Atlantic salmon", "Meat & Seafood", 3.30, 100, core.UnitGrams},
	{"All-purpose flour", "Pantry", 0.20, 100, core.UnitGrams},
	{"White rice", "Pantry", 0.35, 100, core.UnitGrams},
	{"Granulated sugar", "Pantry", 0.30, 100, core.UnitGrams},
	{"Olive oil", "Condiments, Sauces & Oils", 1.50, 100, core.UnitMilliliters},
	{"Soy sauce", "Condiments, Sauces & Oils", 0.80, 100, core.UnitMilliliters},
	{"Diced tomatoes", "Canned Goods", 0.45, 100, core.UnitGrams},
	{"Chickpeas", "Canned Goods", 0.40, 100, core.UnitGrams},
	{"Firm tofu", "Plant-Based Proteins", 0.85, 100, core.UnitGrams},
	{"Frozen peas", "Frozen Foods", 0.55, 100, core.UnitGrams},
	{"Orange juice", "Beverages", 0.35, 100, core.UnitMilliliters},
	{"Tortilla chips", "Snacks", 1.20, 100, core.UnitGrams},
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Add a small priced starter pantry",
		Action: func(c *cli.Context) error {
			db, err := openDatabase(c)
			if err != nil {
				return err
			}
			defer db.Close()

			added := 0
			for _, item := range starterPantry {
				existing, err := db.IngredientRepository().FindByName(c.Context, item.name)
				if err != nil {
					return err
				}
				if len(existing) > 0 {
					continue
				}
				category := item.category
				if core.ValidateCategory(category, db.Taxonomy()) != nil {
					category = ""
				}
				price, quantity := item.price, item.quantity
				_, err = db.CreateIngredient(c.Context, &core.Ingredient{
					Name:     item.name,
					Category: category,
					Price:    &price,
					Quantity: &quantity,
					Unit:     item.unit,
				})
				if err != nil {
					return fmt.Errorf("seed %s: %w", item.name, err)
				}
				added++
			}
			fmt.Fprintf(c.App.Writer, "seeded %d ingredients\n", added)
			return nil
		},
	}
}
