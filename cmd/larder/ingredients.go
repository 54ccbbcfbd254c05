package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/poiesic/larder/core"
	"github.com/poiesic/larder/search"
	"github.com/urfave/cli/v2"
)

func addCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add an ingredient; missing attributes are filled in by enrichment",
		ArgsUsage: "NAME",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "price", Usage: "Price for --quantity of --unit"},
			&cli.Float64Flag{Name: "quantity", Usage: "Quantity the price is for"},
			&cli.StringFlag{Name: "unit", Usage: "Unit of quantity (g, ml, whole)"},
			&cli.StringFlag{Name: "category", Usage: "Category label from the taxonomy"},
		},
		Action: addAction,
	}
}

func addAction(c *cli.Context) error {
	name := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("ingredient name is required")
	}

	in := &core.Ingredient{
		Name:     name,
		Unit:     core.Unit(c.String("unit")),
		Category: c.String("category"),
	}
	if c.IsSet("price") {
		price := c.Float64("price")
		in.Price = &price
	}
	if c.IsSet("quantity") {
		quantity := c.Float64("quantity")
		in.Quantity = &quantity
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	added, err := db.CreateIngredient(c.Context, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "added %d\t%s\n", added.Id, added.Name)
	return nil
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List ingredients",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "missing",
				Usage: "Only list ingredients missing an attribute (embedding, category, price)",
			},
			&cli.StringFlag{
				Name:  "category",
				Usage: "Only list ingredients in this category",
			},
		},
		Action: listAction,
	}
}

func listAction(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := db.IngredientRepository()
	var ingredients []*core.Ingredient
	switch missing := c.String("missing"); {
	case missing == "embedding":
		ingredients, err = repo.IngredientsMissingEmbedding(c.Context, 0)
	case missing == "category":
		ingredients, err = repo.IngredientsMissingCategory(c.Context, 0)
	case missing == "price":
		ingredients, err = repo.IngredientsMissingPrice(c.Context, 0)
	case missing != "":
		return fmt.Errorf("invalid --missing %q: must be one of embedding, category, price", missing)
	case c.IsSet("category"):
		ingredients, err = repo.IngredientsByCategory(c.Context, c.String("category"), 0)
	default:
		ingredients, err = repo.GetAllIngredients(c.Context)
	}
	if err != nil {
		return err
	}

	printIngredients(c.App.Writer, ingredients)
	return nil
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Find ingredients by name",
		ArgsUsage: "QUERY",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: search.DefaultLimit},
		},
		Action: searchAction,
	}
}

func searchAction(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	retriever, err := db.NewRetriever()
	if err != nil {
		return err
	}
	results, err := retriever.SearchByName(c.Context, query, c.Int("limit"))
	if err != nil {
		return err
	}
	printResults(c.App.Writer, results)
	return nil
}

func similarCommand() *cli.Command {
	return &cli.Command{
		Name:      "similar",
		Usage:     "Find ingredients semantically similar to a name",
		ArgsUsage: "NAME",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: search.DefaultLimit},
			&cli.Float64Flag{Name: "min-score", Value: search.DefaultMinScore},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Show candidates dropped below the score floor"},
		},
		Action: similarAction,
	}
}

func similarAction(c *cli.Context) error {
	name := strings.Join(c.Args().Slice(), " ")

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	retriever, err := db.NewRetriever()
	if err != nil {
		return err
	}

	var monitor search.SearchMonitor
	if c.Bool("verbose") {
		monitor = &printMonitor{out: c.App.Writer}
	}
	results, err := retriever.FindSimilarByNameWithMonitor(c.Context, name, c.Int("limit"), float32(c.Float64("min-score")), monitor)
	if err != nil {
		return err
	}
	printResults(c.App.Writer, results)
	return nil
}

// printMonitor reports retrieval progress as it happens.
type printMonitor struct {
	out io.Writer
}

func (m *printMonitor) Start(query string) {
	fmt.Fprintf(m.out, "searching for %q\n", query)
}

func (m *printMonitor) AfterNearest(candidates []*core.SearchResult) {
	fmt.Fprintf(m.out, "%d candidates\n", len(candidates))
}

func (m *printMonitor) BelowFloor(candidate *core.SearchResult, floor float32) {
	fmt.Fprintf(m.out, "  dropped %s (%.3f <= %.3f)\n", candidate.Ingredient.Name, candidate.Score, floor)
}

func (m *printMonitor) Finish(results []*core.SearchResult) {
	fmt.Fprintf(m.out, "%d results\n", len(results))
}

func printIngredients(out io.Writer, ingredients []*core.Ingredient) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tEMBEDDED")
	for _, in := range ingredients {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\n", in.Id, in.Name, orDash(in.Category), formatPrice(in), !in.NeedsEmbedding())
	}
	w.Flush()
}

func printResults(out io.Writer, results []*core.SearchResult) {
	if len(results) == 0 {
		fmt.Fprintln(out, "no matches")
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tID\tNAME\tCATEGORY\tPRICE")
	for _, r := range results {
		in := r.Ingredient
		fmt.Fprintf(w, "%.3f\t%d\t%s\t%s\t%s\n", r.Score, in.Id, in.Name, orDash(in.Category), formatPrice(in))
	}
	w.Flush()
}

func formatPrice(in *core.Ingredient) string {
	triple := in.PriceTriple()
	if triple == nil {
		return "-"
	}
	s := fmt.Sprintf("$%.2f / %s %s", triple.Price, strconv.FormatFloat(triple.Quantity, 'f', -1, 64), triple.Unit)
	if in.IsPriceEstimated {
		s += " (est.)"
	}
	return s
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func parseID(s string) (core.ID, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return core.ID(id), nil
}
