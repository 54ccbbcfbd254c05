package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/poiesic/larder/core"
	"github.com/urfave/cli/v2"
)

func recipeCommand() *cli.Command {
	return &cli.Command{
		Name:  "recipe",
		Usage: "Manage recipes",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a recipe from existing ingredients",
				ArgsUsage: "NAME",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "item",
						Aliases:  []string{"i"},
						Usage:    "Ingredient and amount as ID:AMOUNT, in the ingredient's unit (repeatable)",
						Required: true,
					},
				},
				Action: recipeAddAction,
			},
			{
				Name:      "show",
				Usage:     "Show a recipe with its ingredients and estimated cost",
				ArgsUsage: "ID",
				Action:    recipeShowAction,
			},
			{
				Name:   "list",
				Usage:  "List recipes",
				Action: recipeListAction,
			},
		},
	}
}

// parseItem parses "ID:AMOUNT".
func parseItem(s string) (core.RecipeIngredient, error) {
	idStr, amountStr, ok := strings.Cut(s, ":")
	if !ok {
		return core.RecipeIngredient{}, fmt.Errorf("invalid item %q: want ID:AMOUNT", s)
	}
	id, err := parseID(strings.TrimSpace(idStr))
	if err != nil {
		return core.RecipeIngredient{}, err
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(amountStr), 64)
	if err != nil {
		return core.RecipeIngredient{}, fmt.Errorf("invalid amount in %q: %w", s, err)
	}
	return core.RecipeIngredient{IngredientId: id, Amount: amount}, nil
}

func recipeAddAction(c *cli.Context) error {
	recipe := &core.Recipe{Name: strings.Join(c.Args().Slice(), " ")}
	for _, item := range c.StringSlice("item") {
		ri, err := parseItem(item)
		if err != nil {
			return err
		}
		recipe.Ingredients = append(recipe.Ingredients, ri)
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	added, err := db.CreateRecipe(c.Context, recipe)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "added recipe %d\t%s\n", added.Id, added.Name)
	return nil
}

func recipeShowAction(c *cli.Context) error {
	id, err := parseID(c.Args().First())
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	joined, err := db.RecipeRepository().GetRecipeWithIngredients(c.Context, id)
	if err != nil {
		return err
	}

	out := c.App.Writer
	fmt.Fprintf(out, "%s (recipe %d)\n", joined.Recipe.Name, joined.Recipe.Id)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "AMOUNT\tINGREDIENT\tPRICE")
	for _, item := range joined.Items {
		fmt.Fprintf(w, "%s %s\t%s\t%s\n",
			strconv.FormatFloat(item.Amount, 'f', -1, 64), item.Ingredient.Unit, item.Ingredient.Name, formatPrice(item.Ingredient))
	}
	w.Flush()

	total, unpriced := joined.EstimatedCost()
	fmt.Fprintf(out, "estimated cost: $%.2f", total)
	if unpriced > 0 {
		fmt.Fprintf(out, " (%d ingredients not priced yet)", unpriced)
	}
	fmt.Fprintln(out)
	return nil
}

func recipeListAction(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	recipes, err := db.RecipeRepository().GetAllRecipes(c.Context)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tINGREDIENTS")
	for _, r := range recipes {
		fmt.Fprintf(w, "%d\t%s\t%d\n", r.Id, r.Name, len(r.Ingredients))
	}
	w.Flush()
	return nil
}
