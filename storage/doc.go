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

// Package storage provides the storage abstraction layer for larder.
//
// This package defines repository interfaces that decouple the enrichment
// pipeline from the storage implementation. The BadgerDB implementation lives
// in storage/badger.
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - Repository: operations shared by every repository
//   - IngredientRepository: ingredient records, enrichment patches and lookups
//   - RecipeRepository: recipes and their ingredient references
//
// Every lookup the enrichment pipeline performs is served by a secondary
// index: records missing an embedding, a category or a price each live in
// their own index, so selecting a batch never scans the primary records.
//
// # Patches
//
// Enrichment results are written with narrow patch operations (SetEmbedding,
// SetCategory, SetPrice). Each patch reads, modifies and writes a single
// record in one transaction and maintains the affected indexes, so a price
// triple is always committed whole and concurrent patches on different
// attributes of the same record do not overwrite each other.
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	ingredients, err := badger.NewIngredientRepository(backend)
//
// Use in tests with in-memory storage:
//
//	ingredients, recipes, backend, err := badger.NewMemoryRepositories()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support. Pass context.Background() for operations
// without specific timeout requirements.
package storage
