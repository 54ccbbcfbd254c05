package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/poiesic/larder/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaError(t *testing.T) {
	cause := &json.SyntaxError{}
	err := fmt.Errorf("batch failed: %w", NewSchemaError("categorize", "{oops", cause))

	assert.ErrorIs(t, err, ErrSchemaValidation)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "categorize", schemaErr.Stage)
	assert.Equal(t, "{oops", schemaErr.Raw)

	var syntaxErr *json.SyntaxError
	assert.True(t, errors.As(err, &syntaxErr))
}

func TestNeighborFromIngredient(t *testing.T) {
	price, qty := 2.5, 100.0

	neighbor, ok := NeighborFromIngredient(&core.Ingredient{
		Name: "Parsnip", Price: &price, Quantity: &qty, Unit: core.UnitGrams,
	})
	require.True(t, ok)
	assert.Equal(t, PricedNeighbor{Name: "Parsnip", Price: 2.5, Quantity: 100, Unit: core.UnitGrams}, neighbor)

	_, ok = NeighborFromIngredient(&core.Ingredient{Name: "Turnip", Price: &price})
	assert.False(t, ok)
}

func TestDefaultTaxonomy(t *testing.T) {
	assert.Len(t, DefaultTaxonomy, 11)
	assert.Contains(t, DefaultTaxonomy, "Produce")
	assert.NotContains(t, DefaultTaxonomy, core.CategoryOther)
}
