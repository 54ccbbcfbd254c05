package search

import "github.com/poiesic/larder/core"

// SearchMonitor provides hooks to observe a similarity search.
type SearchMonitor interface {
	Start(query string)
	AfterNearest(candidates []*core.SearchResult)
	BelowFloor(candidate *core.SearchResult, minScore float32)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                             {}
func (n *noopMonitor) AfterNearest(_ []*core.SearchResult)        {}
func (n *noopMonitor) BelowFloor(_ *core.SearchResult, _ float32) {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)              {}
