// Package metrics exposes Prometheus metrics for the matchnight service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "matchnight"
)

var (
	// Snapshot and mirror metrics.
	snapshotsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_snapshots_received_total",
		Help:      "Store snapshots delivered to mirrors, by path.",
	}, []string{"path"})

	decodeDrops = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attendance_decode_drops_total",
		Help:      "Attendance/emoji entries dropped for matching no known shape.",
	})

	// Reconciliation metrics.
	evictionsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "roster_evictions_applied_total",
		Help:      "Roster evictions applied after attendance changes.",
	})

	evictionBatchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "roster_eviction_batch_failures_total",
		Help:      "Eviction batches that failed to apply atomically.",
	})

	storeWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_write_failures_total",
		Help:      "Failed writes against the shared state store.",
	})

	// Gauges for current state sizes.
	poolSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "available_pool_size",
		Help:      "Players currently in the available pool.",
	})

	rosterSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "roster_size",
		Help:      "Players currently assigned, by team.",
	}, []string{"team"})

	// Comparison render metrics.
	chartRedraws = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "comparison_redraws_total",
		Help:      "Comparison snapshots rebuilt after the debounce window.",
	})

	chartCoalesced = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "comparison_coalesced_total",
		Help:      "Redraw requests coalesced into an already pending draw.",
	})

	// Stat feed metrics.
	feedLoadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "statfeed_load_seconds",
		Help:      "Stat table load duration, by table.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"table"})

	feedLoadErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "statfeed_load_errors_total",
		Help:      "Stat table load failures, by table.",
	}, []string{"table"})

	// HTTP metrics.
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests, by endpoint and status class.",
	}, []string{"endpoint", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_seconds",
		Help:      "HTTP request duration, by endpoint.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})

	// Websocket metrics.
	wsClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ws_clients",
		Help:      "Connected websocket clients.",
	})

	// System metrics.
	systemMemory = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "system_memory_bytes",
		Help:      "Allocated heap bytes.",
	})

	systemGoroutines = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "system_goroutines",
		Help:      "Current goroutine count.",
	})
)

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler { return promhttp.Handler() }

// RecordSnapshot counts a store snapshot delivered for path.
func RecordSnapshot(path string) { snapshotsReceived.WithLabelValues(path).Inc() }

// RecordDecodeDrops counts attendance entries dropped during canonicalization.
func RecordDecodeDrops(n int) { decodeDrops.Add(float64(n)) }

// RecordEvictions counts applied roster evictions.
func RecordEvictions(n int) { evictionsApplied.Add(float64(n)) }

// RecordEvictionBatchFailure counts a failed eviction batch.
func RecordEvictionBatchFailure() { evictionBatchFailures.Inc() }

// RecordStoreWriteFailure counts a failed store write.
func RecordStoreWriteFailure() { storeWriteFailures.Inc() }

// UpdatePoolSize sets the available pool gauge.
func UpdatePoolSize(n int) { poolSize.Set(float64(n)) }

// UpdateRosterSize sets the roster gauge for a team ("A" or "B").
func UpdateRosterSize(team string, n int) { rosterSize.WithLabelValues(team).Set(float64(n)) }

// RecordChartRedraw counts a completed comparison rebuild.
func RecordChartRedraw() { chartRedraws.Inc() }

// RecordChartCoalesced counts a redraw request folded into a pending draw.
func RecordChartCoalesced() { chartCoalesced.Inc() }

// ObserveFeedLoad records a stat table load duration in seconds.
func ObserveFeedLoad(table string, seconds float64) {
	feedLoadDuration.WithLabelValues(table).Observe(seconds)
}

// RecordFeedLoadError counts a stat table load failure.
func RecordFeedLoadError(table string) { feedLoadErrors.WithLabelValues(table).Inc() }

// RecordHTTPRequest counts a request and its duration for an endpoint.
func RecordHTTPRequest(endpoint, status string, seconds float64) {
	httpRequests.WithLabelValues(endpoint, status).Inc()
	httpDuration.WithLabelValues(endpoint).Observe(seconds)
}

// UpdateWSClients sets the connected websocket client gauge.
func UpdateWSClients(n int) { wsClients.Set(float64(n)) }

// UpdateSystemMemoryUsage sets the allocated heap gauge.
func UpdateSystemMemoryUsage(bytes uint64) { systemMemory.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(n int) { systemGoroutines.Set(float64(n)) }
