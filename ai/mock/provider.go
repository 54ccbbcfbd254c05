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

package mock

import "github.com/poiesic/larder/ai"

// MockProvider is a test double for ai.AIProvider.
type MockProvider struct {
	embedder    *MockEmbedder
	categorizer *MockCategorizer
	estimator   *MockPriceEstimator
}

// NewMockProvider creates a provider with default mocks.
func NewMockProvider() *MockProvider {
	return NewMockProviderWithServices(NewMockEmbedder(), NewMockCategorizer(), NewMockPriceEstimator())
}

// NewMockProviderWithServices creates a provider from existing mocks.
func NewMockProviderWithServices(embedder *MockEmbedder, categorizer *MockCategorizer, estimator *MockPriceEstimator) *MockProvider {
	return &MockProvider{
		embedder:    embedder,
		categorizer: categorizer,
		estimator:   estimator,
	}
}

var _ ai.AIProvider = (*MockProvider)(nil)

// Embedder implements ai.AIProvider.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Categorizer implements ai.AIProvider.
func (p *MockProvider) Categorizer() ai.Categorizer {
	return p.categorizer
}

// PriceEstimator implements ai.AIProvider.
func (p *MockProvider) PriceEstimator() ai.PriceEstimator {
	return p.estimator
}

// Close implements ai.AIProvider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the concrete embedder for assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockCategorizer returns the concrete categorizer for assertions.
func (p *MockProvider) GetMockCategorizer() *MockCategorizer {
	return p.categorizer
}

// GetMockEstimator returns the concrete estimator for assertions.
func (p *MockProvider) GetMockEstimator() *MockPriceEstimator {
	return p.estimator
}
