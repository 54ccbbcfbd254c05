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

// Package openai implements the ai services against OpenAI-compatible APIs.
//
// Requests go through langchaingo. Embeddings use the configured embedding
// host and model; categorization and price estimation share one chat client
// in JSON mode and select ClassifierModel or EstimatorModel per request.
// Responses pass through a strict decoder: missing fields, out-of-range
// numbers, unknown units and mismatched ids all yield *ai.SchemaError.
//
//	cfg := ai.NewConfig(ai.WithHost("http://localhost:11434")) // /v1 added automatically
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	assignments, err := provider.Categorizer().Categorize(ctx, inputs, ai.DefaultTaxonomy)
package openai
