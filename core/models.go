package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is allocated from database sequences and is never 0 once stored.
type ID uint64

// NameKey derives a deterministic key from an ingredient name using BLAKE2b.
// Names are case-folded and whitespace-collapsed first, so "Red  Onion" and
// "red onion" share a key.
func NameKey(name string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(NormalizeName(name)))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// NormalizeName lowercases a name and collapses runs of whitespace.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// Unit is the measurement unit of an ingredient's quantity.
type Unit string

const (
	// UnitNone means no unit has been recorded.
	UnitNone Unit = ""
	// UnitGrams measures mass in grams.
	UnitGrams Unit = "g"
	// UnitMilliliters measures volume in milliliters.
	UnitMilliliters Unit = "ml"
	// UnitWhole counts whole items.
	UnitWhole Unit = "whole"
)

// Units lists every valid non-empty unit.
var Units = []Unit{UnitGrams, UnitMilliliters, UnitWhole}

// CategoryOther is the fallback label for ingredients that fit no taxonomy entry.
const CategoryOther = "other"

// MinCategoryConfidence is the lowest classifier confidence that is committed.
const MinCategoryConfidence = 0.5

// Ingredient is the central record enriched by the pipeline.
// Embedding, category and price are filled in independently by background passes.
type Ingredient struct {
	Id               ID
	Name             string
	Unit             Unit
	Quantity         *float64 // positive when set
	Price            *float64 // non-negative when set
	Category         string   // empty until categorized
	IsPriceEstimated bool     // true until a human supplies a price
	NameEmbedding    []float32
	InsertedAt       time.Time
	UpdatedAt        time.Time
}

// NeedsEmbedding reports whether the embed pass should pick up this record.
func (i *Ingredient) NeedsEmbedding() bool {
	return len(i.NameEmbedding) == 0
}

// NeedsCategory reports whether the categorize pass should pick up this record.
func (i *Ingredient) NeedsCategory() bool {
	return i.Category == ""
}

// NeedsPrice reports whether the record is missing a price.
func (i *Ingredient) NeedsPrice() bool {
	return i.Price == nil
}

// HasPricingCategory reports whether the record carries enough context for
// price estimation: a category other than the "other" fallback.
func (i *Ingredient) HasPricingCategory() bool {
	return i.Category != "" && i.Category != CategoryOther
}

// HasPriceTriple reports whether price, quantity and unit are all present.
func (i *Ingredient) HasPriceTriple() bool {
	return i.Price != nil && i.Quantity != nil && i.Unit != UnitNone
}

// PriceEstimate is a price, quantity and unit that are always committed together.
type PriceEstimate struct {
	Price    float64
	Quantity float64
	Unit     Unit
}

// PriceTriple returns the record's price data, or nil if it is incomplete.
func (i *Ingredient) PriceTriple() *PriceEstimate {
	if !i.HasPriceTriple() {
		return nil
	}
	return &PriceEstimate{Price: *i.Price, Quantity: *i.Quantity, Unit: i.Unit}
}

// UnitPrice returns the price of a single unit (one gram, one milliliter, one item).
func (p *PriceEstimate) UnitPrice() float64 {
	if p.Quantity == 0 {
		return 0
	}
	return p.Price / p.Quantity
}

// SearchResult is an ingredient paired with a relevance score.
type SearchResult struct {
	Ingredient *Ingredient
	Score      float32
}

// RecipeIngredient references an ingredient with the amount a recipe uses,
// expressed in the ingredient's own unit.
type RecipeIngredient struct {
	IngredientId ID
	Amount       float64
}

// Recipe is a named list of ingredient uses. Its price is derived, never stored.
type Recipe struct {
	Id          ID
	Name        string
	Ingredients []RecipeIngredient
	InsertedAt  time.Time
	UpdatedAt   time.Time
}

// RecipeItem is a recipe ingredient joined with its stored record.
type RecipeItem struct {
	Ingredient *Ingredient
	Amount     float64
}

// RecipeWithIngredients is a recipe joined with the ingredient records it references.
// Items whose ingredient no longer exists are omitted.
type RecipeWithIngredients struct {
	Recipe *Recipe
	Items  []RecipeItem
}

// EstimatedCost sums the cost of every priced item and reports how many
// items could not be priced because their price data is incomplete.
func (r *RecipeWithIngredients) EstimatedCost() (total float64, unpriced int) {
	for _, item := range r.Items {
		triple := item.Ingredient.PriceTriple()
		if triple == nil || triple.Quantity == 0 {
			unpriced++
			continue
		}
		total += triple.UnitPrice() * item.Amount
	}
	return total, unpriced
}
