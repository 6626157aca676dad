package search

import "github.com/poiesic/doublesearch/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(input Input)
	CacheHit(queryText string)
	AfterTranslation(filter *core.Filter)
	AfterStructuredSearch(ids []core.EntityID)
	AfterSemanticSearch(ids []core.EntityID)
	SourceFailed(source core.Source, err error)
	Finish(results []core.HybridResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ Input)                          {}
func (n *noopMonitor) CacheHit(_ string)                      {}
func (n *noopMonitor) AfterTranslation(_ *core.Filter)        {}
func (n *noopMonitor) AfterStructuredSearch(_ []core.EntityID) {}
func (n *noopMonitor) AfterSemanticSearch(_ []core.EntityID)  {}
func (n *noopMonitor) SourceFailed(_ core.Source, _ error)    {}
func (n *noopMonitor) Finish(_ []core.HybridResult)           {}
