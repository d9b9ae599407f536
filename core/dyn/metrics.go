package dyn

import "github.com/ekonbenefits/dynamitey-sub000/core/metrics"

// DispatchMetrics receives engine instrumentation. All methods must be
// safe for concurrent use.
type DispatchMetrics interface {
	// Call-site cache
	CacheHit(kind string)
	CacheMiss(kind string)
	SiteBuildDuration(kind string) metrics.Timer
	CacheCleared(dropped int)

	// Rules resolved inside a site
	RuleBuilt(kind string)

	// Completed operations
	Dispatched(kind string, success bool)
}

type nopDispatchMetrics struct{}

func (nopDispatchMetrics) CacheHit(string)                        {}
func (nopDispatchMetrics) CacheMiss(string)                       {}
func (nopDispatchMetrics) SiteBuildDuration(string) metrics.Timer { return metrics.NopTimer() }
func (nopDispatchMetrics) CacheCleared(int)                       {}
func (nopDispatchMetrics) RuleBuilt(string)                       {}
func (nopDispatchMetrics) Dispatched(string, bool)                {}

// NopDispatchMetrics returns a DispatchMetrics that records nothing.
func NopDispatchMetrics() DispatchMetrics { return nopDispatchMetrics{} }

// Stats is a snapshot of in-process engine counters.
type Stats struct {
	SitesBuilt uint64
	RulesBuilt uint64
	Hits       uint64
	Misses     uint64
	Clears     uint64
}

type stats struct {
	sitesBuilt metrics.AtomicCounter
	rulesBuilt metrics.AtomicCounter
	hits       metrics.AtomicCounter
	misses     metrics.AtomicCounter
	clears     metrics.AtomicCounter
}

func (s *stats) snapshot() Stats {
	return Stats{
		SitesBuilt: s.sitesBuilt.Load(),
		RulesBuilt: s.rulesBuilt.Load(),
		Hits:       s.hits.Load(),
		Misses:     s.misses.Load(),
		Clears:     s.clears.Load(),
	}
}
