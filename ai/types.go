package ai

import "github.com/poiesic/larder/core"

// DefaultTaxonomy is the category list the scheduler passes to the categorizer
// when no taxonomy is configured. "other" is always accepted in addition.
var DefaultTaxonomy = []string{
	"Meat & Seafood",
	"Dairy & Eggs",
	"Produce",
	"Frozen Foods",
	"Pantry",
	"Condiments, Sauces & Oils",
	"Canned Goods",
	"Plant-Based Proteins",
	"Beverages",
	"Snacks",
	"Baby",
}

// CategorizeInput is one ingredient sent for categorization.
type CategorizeInput struct {
	Id   core.ID
	Name string
}

// CategoryAssignment is the label and confidence returned for one input.
type CategoryAssignment struct {
	Id         core.ID
	Category   string
	Confidence float64
}

// PriceTarget identifies the ingredient being priced.
type PriceTarget struct {
	Id   core.ID
	Name string
}

// PricedNeighbor is a similar ingredient whose price triple is known.
type PricedNeighbor struct {
	Name     string
	Price    float64
	Quantity float64
	Unit     core.Unit
}

// NeighborFromIngredient converts a fully priced ingredient into pricing context.
// Returns false if the ingredient lacks a full price triple.
func NeighborFromIngredient(in *core.Ingredient) (PricedNeighbor, bool) {
	triple := in.PriceTriple()
	if triple == nil {
		return PricedNeighbor{}, false
	}
	return PricedNeighbor{
		Name:     in.Name,
		Price:    triple.Price,
		Quantity: triple.Quantity,
		Unit:     triple.Unit,
	}, true
}
