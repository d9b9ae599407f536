package prometheus

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ekonbenefits/dynamitey-sub000/core/cache"
	"github.com/ekonbenefits/dynamitey-sub000/core/dyn"
	"github.com/ekonbenefits/dynamitey-sub000/core/metrics"
)

// dispatchMetrics implements dyn.DispatchMetrics using Prometheus.
type dispatchMetrics struct {
	// Call-site cache
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
	siteBuildDuration *prometheus.HistogramVec
	cacheClears       prometheus.Counter
	sitesDropped      prometheus.Counter

	rulesBuilt *prometheus.CounterVec
	dispatched *prometheus.CounterVec
}

// NewDispatchMetrics creates a Prometheus implementation of
// dyn.DispatchMetrics.
func NewDispatchMetrics(reg prometheus.Registerer) dyn.DispatchMetrics {
	m := &dispatchMetrics{
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dyn_site_cache_hits_total",
			Help: "Total number of call-site cache hits",
		}, []string{"kind"}),

		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dyn_site_cache_misses_total",
			Help: "Total number of call-site cache misses",
		}, []string{"kind"}),

		siteBuildDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dyn_site_build_duration_seconds",
			Help:    "Call-site construction latency in seconds",
			Buckets: defaultBuckets,
		}, []string{"kind"}),

		cacheClears: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dyn_cache_clears_total",
			Help: "Total number of cache clears",
		}),

		sitesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dyn_cache_dropped_sites_total",
			Help: "Total number of call sites dropped by cache clears",
		}),

		rulesBuilt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dyn_rules_built_total",
			Help: "Total number of binding rules resolved inside call sites",
		}, []string{"kind"}),

		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dyn_dispatched_total",
			Help: "Total number of dispatched operations",
		}, []string{"kind", "success"}),
	}

	reg.MustRegister(
		m.cacheHits,
		m.cacheMisses,
		m.siteBuildDuration,
		m.cacheClears,
		m.sitesDropped,
		m.rulesBuilt,
		m.dispatched,
	)

	return m
}

func (m *dispatchMetrics) CacheHit(kind string) {
	m.cacheHits.WithLabelValues(kind).Inc()
}

func (m *dispatchMetrics) CacheMiss(kind string) {
	m.cacheMisses.WithLabelValues(kind).Inc()
}

func (m *dispatchMetrics) SiteBuildDuration(kind string) metrics.Timer {
	return newTimer(m.siteBuildDuration.WithLabelValues(kind))
}

func (m *dispatchMetrics) CacheCleared(dropped int) {
	m.cacheClears.Inc()
	m.sitesDropped.Add(float64(dropped))
}

func (m *dispatchMetrics) RuleBuilt(kind string) {
	m.rulesBuilt.WithLabelValues(kind).Inc()
}

func (m *dispatchMetrics) Dispatched(kind string, success bool) {
	m.dispatched.WithLabelValues(kind, strconv.FormatBool(success)).Inc()
}

// RegisterCacheRegistry exposes the partition count and clear count of
// r as gauges read at scrape time.
func RegisterCacheRegistry(reg prometheus.Registerer, r *cache.Registry) {
	reg.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "dyn_cache_partitions",
			Help: "Number of registered call-site cache partitions",
		}, func() float64 { return float64(len(r.Partitions())) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "dyn_cache_registry_clears_total",
			Help: "Total number of registry-wide cache clears",
		}, func() float64 { return float64(r.Clears()) }),
	)
}

var _ dyn.DispatchMetrics = (*dispatchMetrics)(nil)
