package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FeedRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "essentialfeed_processed_feed_ops_total",
		Help: "The total number of processed cached feed requests",
	})
	RefreshRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "essentialfeed_processed_refresh_ops_total",
		Help: "The total number of processed refresh requests",
	})
	FeedLoads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "essentialfeed_feed_loads_total",
		Help: "The total number of remote feed loads",
	})
	FeedLoadErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "essentialfeed_feed_load_errors_total",
		Help: "Number of failed remote feed loads by error type.",
	}, []string{"type"})
	CacheSaves = promauto.NewCounter(prometheus.CounterOpts{
		Name: "essentialfeed_cache_saves_total",
		Help: "The total number of feeds written to the cache",
	})
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "essentialfeed_processed_cache_hits_ops_total",
		Help: "The total number of cache hits",
	})
	CacheMiss = promauto.NewCounter(prometheus.CounterOpts{
		Name: "essentialfeed_processed_cache_miss_ops_total",
		Help: "The total number of cache misses",
	})
	AppErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "essentialfeed_errors_total",
		Help: "Number of errors for the app.",
	}, []string{"type"})
	CachedFeedItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "essentialfeed_cached_feed_items",
		Help: "Number of items in the most recently cached feed",
	})
	LastRefreshTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "essentialfeed_last_refresh_timestamp_seconds",
		Help: "Unix time of the most recent successful refresh",
	})
)
