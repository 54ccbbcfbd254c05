// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import (
	"fmt"
	"slices"
	"strings"
)

// ValidateIngredient validates an Ingredient according to domain rules.
//
// Validation rules:
//   - Name must not be empty after trimming
//   - Unit, when set, must be g, ml or whole
//   - Quantity, when set, must be positive
//   - Price, when set, must not be negative
//   - Price, Quantity and Unit are either all set or all unset
//
// NOT validated (populated by processors):
//   - NameEmbedding (empty until the embed pass runs)
//   - Category (empty until the categorize pass runs)
//   - ID (0 until the record is stored)
func ValidateIngredient(ingredient *Ingredient) error {
	if ingredient == nil {
		return fmt.Errorf("%w: ingredient is nil", ErrInvalidIngredient)
	}

	if strings.TrimSpace(ingredient.Name) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidIngredient, ErrEmptyName)
	}

	if ingredient.Unit != UnitNone {
		if err := ValidateUnit(ingredient.Unit); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidIngredient, err)
		}
	}

	if ingredient.Quantity != nil && *ingredient.Quantity <= 0 {
		return fmt.Errorf("%w: %w", ErrInvalidIngredient, ErrInvalidQuantity)
	}

	if ingredient.Price != nil && *ingredient.Price < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidIngredient, ErrInvalidPrice)
	}

	set := 0
	if ingredient.Price != nil {
		set++
	}
	if ingredient.Quantity != nil {
		set++
	}
	if ingredient.Unit != UnitNone {
		set++
	}
	if set != 0 && set != 3 {
		return fmt.Errorf("%w: %w", ErrInvalidIngredient, ErrPartialPrice)
	}

	return nil
}

// ValidatePriceEstimate validates a price triple before it is committed.
func ValidatePriceEstimate(estimate *PriceEstimate) error {
	if estimate == nil {
		return fmt.Errorf("%w: estimate is nil", ErrPartialPrice)
	}
	if err := ValidateUnit(estimate.Unit); err != nil {
		return err
	}
	if estimate.Quantity <= 0 {
		return fmt.Errorf("%w: value %v", ErrInvalidQuantity, estimate.Quantity)
	}
	if estimate.Price < 0 {
		return fmt.Errorf("%w: value %v", ErrInvalidPrice, estimate.Price)
	}
	return nil
}

// ValidateUnit validates that a Unit has one of the three permitted values.
func ValidateUnit(unit Unit) error {
	if !slices.Contains(Units, unit) {
		return fmt.Errorf("%w: value %q", ErrInvalidUnit, unit)
	}
	return nil
}

// ValidateCategory checks a category label against a taxonomy.
// The "other" fallback is always permitted.
func ValidateCategory(category string, taxonomy []string) error {
	if category == CategoryOther || slices.Contains(taxonomy, category) {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
}

// ValidateConfidence rejects confidences below MinCategoryConfidence.
func ValidateConfidence(confidence float64) error {
	if confidence < MinCategoryConfidence {
		return fmt.Errorf("%w: %.2f < %.2f", ErrLowConfidence, confidence, MinCategoryConfidence)
	}
	return nil
}

// ValidateRecipe validates a Recipe's shape. Ingredient existence is checked by storage.
func ValidateRecipe(recipe *Recipe) error {
	if recipe == nil {
		return fmt.Errorf("%w: recipe is nil", ErrInvalidRecipe)
	}
	if strings.TrimSpace(recipe.Name) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecipe, ErrEmptyName)
	}
	for _, ri := range recipe.Ingredients {
		if ri.Amount <= 0 {
			return fmt.Errorf("%w: %w: ingredient %d", ErrInvalidRecipe, ErrInvalidAmount, ri.IngredientId)
		}
	}
	return nil
}
