package mock

import (
	"context"
	"sync"

	"github.com/poiesic/larder/ai"
	"github.com/poiesic/larder/core"
)

// EstimateCall records one EstimatePrice invocation.
type EstimateCall struct {
	Target    ai.PriceTarget
	Neighbors []ai.PricedNeighbor
}

// MockPriceEstimator is a test double for ai.PriceEstimator.
// By default it prices the target at the mean unit price of the neighbours
// sharing the most common unit, quoted per 100 g/ml or per item.
// With no neighbours it returns one dollar per item.
type MockPriceEstimator struct {
	// EstimatePriceFunc is called by EstimatePrice if set.
	EstimatePriceFunc func(ctx context.Context, target ai.PriceTarget, neighbors []ai.PricedNeighbor) (*core.PriceEstimate, error)

	mu    sync.Mutex
	calls []EstimateCall
}

// NewMockPriceEstimator creates a new mock price estimator.
func NewMockPriceEstimator() *MockPriceEstimator {
	return &MockPriceEstimator{}
}

// EstimatePrice implements ai.PriceEstimator.
func (m *MockPriceEstimator) EstimatePrice(ctx context.Context, target ai.PriceTarget, neighbors []ai.PricedNeighbor) (*core.PriceEstimate, error) {
	m.mu.Lock()
	m.calls = append(m.calls, EstimateCall{Target: target, Neighbors: append([]ai.PricedNeighbor(nil), neighbors...)})
	fn := m.EstimatePriceFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, target, neighbors)
	}
	return averageEstimate(neighbors), nil
}

// Calls returns every recorded invocation.
func (m *MockPriceEstimator) Calls() []EstimateCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]EstimateCall(nil), m.calls...)
}

// CallCount returns the number of EstimatePrice calls.
func (m *MockPriceEstimator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Reset clears recorded calls and the custom function.
func (m *MockPriceEstimator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.EstimatePriceFunc = nil
}

func averageEstimate(neighbors []ai.PricedNeighbor) *core.PriceEstimate {
	counts := make(map[core.Unit]int)
	unit := core.UnitWhole
	for _, n := range neighbors {
		counts[n.Unit]++
		if counts[n.Unit] > counts[unit] {
			unit = n.Unit
		}
	}

	quantity := 1.0
	if unit != core.UnitWhole {
		quantity = 100
	}
	if counts[unit] == 0 {
		return &core.PriceEstimate{Price: 1, Quantity: quantity, Unit: unit}
	}

	var sum float64
	for _, n := range neighbors {
		if n.Unit == unit && n.Quantity > 0 {
			sum += n.Price / n.Quantity
		}
	}
	return &core.PriceEstimate{Price: sum / float64(counts[unit]) * quantity, Quantity: quantity, Unit: unit}
}
