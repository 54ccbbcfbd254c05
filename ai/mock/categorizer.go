package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/poiesic/larder/ai"
	"github.com/poiesic/larder/core"
)

// UnknownConfidence is the confidence the mock reports for names it does not know.
const UnknownConfidence = 0.1

type label struct {
	category   string
	confidence float64
}

// MockCategorizer is a test double for ai.Categorizer.
// Known names get their registered label; everything else maps to "other"
// with UnknownConfidence, as a real model does with nonsense.
type MockCategorizer struct {
	// CategorizeFunc is called by Categorize if set.
	CategorizeFunc func(ctx context.Context, inputs []ai.CategorizeInput, taxonomy []string) ([]ai.CategoryAssignment, error)

	mu      sync.Mutex
	labels  map[string]label
	batches [][]ai.CategorizeInput
}

// NewMockCategorizer creates a new mock categorizer with no known names.
func NewMockCategorizer() *MockCategorizer {
	return &MockCategorizer{labels: make(map[string]label)}
}

// WithLabel registers the answer for name. Matching ignores case.
func (m *MockCategorizer) WithLabel(name, category string, confidence float64) *MockCategorizer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.labels[core.NormalizeName(name)] = label{category: category, confidence: confidence}
	return m
}

// Categorize implements ai.Categorizer.
func (m *MockCategorizer) Categorize(ctx context.Context, inputs []ai.CategorizeInput, taxonomy []string) ([]ai.CategoryAssignment, error) {
	m.mu.Lock()
	m.batches = append(m.batches, append([]ai.CategorizeInput(nil), inputs...))
	fn := m.CategorizeFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, inputs, taxonomy)
	}
	if len(inputs) == 0 {
		return nil, ai.ErrEmptyInput
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	assignments := make([]ai.CategoryAssignment, 0, len(inputs))
	for _, in := range inputs {
		l, ok := m.labels[core.NormalizeName(strings.TrimSpace(in.Name))]
		if !ok {
			l = label{category: core.CategoryOther, confidence: UnknownConfidence}
		}
		assignments = append(assignments, ai.CategoryAssignment{Id: in.Id, Category: l.category, Confidence: l.confidence})
	}
	return assignments, nil
}

// CallCount returns the number of Categorize calls.
func (m *MockCategorizer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.batches)
}

// Batches returns the inputs of every Categorize call.
func (m *MockCategorizer) Batches() [][]ai.CategorizeInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]ai.CategorizeInput(nil), m.batches...)
}

// Reset clears recorded calls, registered labels and the custom function.
func (m *MockCategorizer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = nil
	m.labels = make(map[string]label)
	m.CategorizeFunc = nil
}
