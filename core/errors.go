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

import "errors"

// Domain validation errors
var (
	// ErrInvalidIngredient indicates an Ingredient failed validation.
	ErrInvalidIngredient = errors.New("invalid ingredient")

	// ErrInvalidRecipe indicates a Recipe failed validation.
	ErrInvalidRecipe = errors.New("invalid recipe")

	// ErrEmptyName indicates the Name field is empty.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrInvalidUnit indicates a Unit outside g, ml and whole.
	ErrInvalidUnit = errors.New("invalid unit")

	// ErrInvalidQuantity indicates a quantity that is not positive.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrInvalidPrice indicates a negative price.
	ErrInvalidPrice = errors.New("price cannot be negative")

	// ErrPartialPrice indicates some but not all of price, quantity and unit were given.
	ErrPartialPrice = errors.New("price, quantity and unit must be set together")

	// ErrInvalidAmount indicates a recipe ingredient amount that is not positive.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrIngredientNotFound indicates a reference to an ingredient that does not exist.
	ErrIngredientNotFound = errors.New("ingredient not found")

	// ErrLowConfidence indicates a category assignment below MinCategoryConfidence.
	ErrLowConfidence = errors.New("category confidence too low")

	// ErrUnknownCategory indicates a category label outside the taxonomy.
	ErrUnknownCategory = errors.New("category not in taxonomy")
)
