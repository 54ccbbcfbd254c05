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

package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/larder/core"
)

// recordVersion prefixes every encoded record.
const recordVersion = 1

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	v, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return core.ID(v), nil
}

// MarshalIngredient serializes an Ingredient to bytes.
func MarshalIngredient(ingredient *core.Ingredient) []byte {
	buf := make([]byte, sizeIngredient(ingredient))
	marshalIngredient(ingredient, buf)
	return buf
}

// UnmarshalIngredient deserializes an Ingredient from bytes.
func UnmarshalIngredient(data []byte) (*core.Ingredient, error) {
	ingredient, err := unmarshalIngredient(data)
	if err != nil {
		return nil, fmt.Errorf("%w: ingredient: %w", ErrSerializationFailed, err)
	}
	return ingredient, nil
}

// MarshalRecipe serializes a Recipe to bytes.
func MarshalRecipe(recipe *core.Recipe) []byte {
	buf := make([]byte, sizeRecipe(recipe))
	marshalRecipe(recipe, buf)
	return buf
}

// UnmarshalRecipe deserializes a Recipe from bytes.
func UnmarshalRecipe(data []byte) (*core.Recipe, error) {
	recipe, err := unmarshalRecipe(data)
	if err != nil {
		return nil, fmt.Errorf("%w: recipe: %w", ErrSerializationFailed, err)
	}
	return recipe, nil
}

// MarshalVector serializes an embedding vector to bytes.
func MarshalVector(v []float32) []byte {
	buf := make([]byte, sizeVector(v))
	marshalVector(v, buf)
	return buf
}

// UnmarshalVector deserializes an embedding vector from bytes.
func UnmarshalVector(data []byte) ([]float32, error) {
	v, _, err := unmarshalVector(data)
	if err != nil {
		return nil, fmt.Errorf("%w: vector: %w", ErrSerializationFailed, err)
	}
	return v, nil
}

// Ingredient layout:
// version, id, name, unit, quantity?, price?, category, isPriceEstimated,
// embedding, insertedAt, updatedAt

func sizeIngredient(in *core.Ingredient) int {
	return varint.Int.Size(recordVersion) +
		varint.Uint64.Size(uint64(in.Id)) +
		ord.String.Size(in.Name) +
		ord.String.Size(string(in.Unit)) +
		sizeOptFloat(in.Quantity) +
		sizeOptFloat(in.Price) +
		ord.String.Size(in.Category) +
		ord.Bool.Size(in.IsPriceEstimated) +
		sizeVector(in.NameEmbedding) +
		sizeTime(in.InsertedAt) +
		sizeTime(in.UpdatedAt)
}

func marshalIngredient(in *core.Ingredient, bs []byte) int {
	n := varint.Int.Marshal(recordVersion, bs)
	n += varint.Uint64.Marshal(uint64(in.Id), bs[n:])
	n += ord.String.Marshal(in.Name, bs[n:])
	n += ord.String.Marshal(string(in.Unit), bs[n:])
	n += marshalOptFloat(in.Quantity, bs[n:])
	n += marshalOptFloat(in.Price, bs[n:])
	n += ord.String.Marshal(in.Category, bs[n:])
	n += ord.Bool.Marshal(in.IsPriceEstimated, bs[n:])
	n += marshalVector(in.NameEmbedding, bs[n:])
	n += marshalTime(in.InsertedAt, bs[n:])
	n += marshalTime(in.UpdatedAt, bs[n:])
	return n
}

func unmarshalIngredient(bs []byte) (*core.Ingredient, error) {
	var (
		in  core.Ingredient
		n   int
		m   int
		err error
	)
	if err = readVersion(bs, &n); err != nil {
		return nil, err
	}

	var id uint64
	if id, m, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return nil, err
	}
	in.Id = core.ID(id)
	n += m

	if in.Name, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return nil, err
	}
	n += m

	var unit string
	if unit, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return nil, err
	}
	in.Unit = core.Unit(unit)
	n += m

	if in.Quantity, m, err = unmarshalOptFloat(bs[n:]); err != nil {
		return nil, err
	}
	n += m

	if in.Price, m, err = unmarshalOptFloat(bs[n:]); err != nil {
		return nil, err
	}
	n += m

	if in.Category, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return nil, err
	}
	n += m

	if in.IsPriceEstimated, m, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return nil, err
	}
	n += m

	if in.NameEmbedding, m, err = unmarshalVector(bs[n:]); err != nil {
		return nil, err
	}
	n += m

	if in.InsertedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return nil, err
	}
	n += m

	if in.UpdatedAt, _, err = unmarshalTime(bs[n:]); err != nil {
		return nil, err
	}
	return &in, nil
}

// Recipe layout:
// version, id, name, count, (ingredientId, amount)*, insertedAt, updatedAt

func sizeRecipe(r *core.Recipe) int {
	size := varint.Int.Size(recordVersion) +
		varint.Uint64.Size(uint64(r.Id)) +
		ord.String.Size(r.Name) +
		varint.Int.Size(len(r.Ingredients))
	for _, ri := range r.Ingredients {
		size += varint.Uint64.Size(uint64(ri.IngredientId)) + raw.Float64.Size(ri.Amount)
	}
	return size + sizeTime(r.InsertedAt) + sizeTime(r.UpdatedAt)
}

func marshalRecipe(r *core.Recipe, bs []byte) int {
	n := varint.Int.Marshal(recordVersion, bs)
	n += varint.Uint64.Marshal(uint64(r.Id), bs[n:])
	n += ord.String.Marshal(r.Name, bs[n:])
	n += varint.Int.Marshal(len(r.Ingredients), bs[n:])
	for _, ri := range r.Ingredients {
		n += varint.Uint64.Marshal(uint64(ri.IngredientId), bs[n:])
		n += raw.Float64.Marshal(ri.Amount, bs[n:])
	}
	n += marshalTime(r.InsertedAt, bs[n:])
	n += marshalTime(r.UpdatedAt, bs[n:])
	return n
}

func unmarshalRecipe(bs []byte) (*core.Recipe, error) {
	var (
		r   core.Recipe
		n   int
		m   int
		err error
	)
	if err = readVersion(bs, &n); err != nil {
		return nil, err
	}

	var id uint64
	if id, m, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return nil, err
	}
	r.Id = core.ID(id)
	n += m

	if r.Name, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return nil, err
	}
	n += m

	var count int
	if count, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return nil, err
	}
	n += m
	if count < 0 || count > len(bs) {
		return nil, fmt.Errorf("invalid ingredient count %d", count)
	}

	if count > 0 {
		r.Ingredients = make([]core.RecipeIngredient, count)
	}
	for i := 0; i < count; i++ {
		var ingID uint64
		if ingID, m, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
			return nil, err
		}
		n += m
		r.Ingredients[i].IngredientId = core.ID(ingID)

		if r.Ingredients[i].Amount, m, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
			return nil, err
		}
		n += m
	}

	if r.InsertedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return nil, err
	}
	n += m

	if r.UpdatedAt, _, err = unmarshalTime(bs[n:]); err != nil {
		return nil, err
	}
	return &r, nil
}

// Field helpers

func readVersion(bs []byte, n *int) error {
	version, m, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return err
	}
	if version != recordVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	*n = m
	return nil
}

func sizeOptFloat(v *float64) int {
	if v == nil {
		return ord.Bool.Size(false)
	}
	return ord.Bool.Size(true) + raw.Float64.Size(*v)
}

func marshalOptFloat(v *float64, bs []byte) int {
	if v == nil {
		return ord.Bool.Marshal(false, bs)
	}
	n := ord.Bool.Marshal(true, bs)
	return n + raw.Float64.Marshal(*v, bs[n:])
}

func unmarshalOptFloat(bs []byte) (*float64, int, error) {
	present, n, err := ord.Bool.Unmarshal(bs)
	if err != nil || !present {
		return nil, n, err
	}
	v, m, err := raw.Float64.Unmarshal(bs[n:])
	if err != nil {
		return nil, n + m, err
	}
	return &v, n + m, nil
}

func sizeVector(v []float32) int {
	size := varint.Int.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return size
}

func marshalVector(v []float32, bs []byte) int {
	n := varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

func unmarshalVector(bs []byte) ([]float32, int, error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 || length > len(bs) {
		return nil, n, fmt.Errorf("invalid vector length %d", length)
	}
	if length == 0 {
		return nil, n, nil
	}
	v := make([]float32, length)
	for i := range v {
		f, m, err := raw.Float32.Unmarshal(bs[n:])
		if err != nil {
			return nil, n, err
		}
		v[i] = f
		n += m
	}
	return v, n, nil
}

// Timestamps are stored as Unix microseconds; the zero time is stored as 0.

func timeToMicros(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

func sizeTime(t time.Time) int {
	return varint.Int64.Size(timeToMicros(t))
}

func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(timeToMicros(t), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	if micros == 0 {
		return time.Time{}, n, nil
	}
	return time.UnixMicro(micros).UTC(), n, nil
}
