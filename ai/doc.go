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

// Package ai provides abstractions for the model services used by larder.
//
// # Services
//
//   - Embedder: turns ingredient names into fixed-length vectors
//   - Categorizer: assigns taxonomy labels with a confidence in [0,1]
//   - PriceEstimator: estimates a price, quantity and unit from priced neighbours
//   - AIProvider: hands out all three from one configured client
//
// Model output is treated as untrusted. Implementations decode it through a
// strict parser and return a *SchemaError when it does not conform; callers
// match it with errors.Is(err, ErrSchemaValidation).
//
// # Implementation Packages
//
//   - ai/openai: OpenAI-compatible HTTP APIs through langchaingo
//   - ai/mock: deterministic test doubles
//
// Public constructors in ai/openai return interface types. Mock constructors
// return concrete types so tests can inject behaviour and count calls.
//
//	provider, err := openai.NewProvider(ai.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "Carrot")
package ai
