package monitoring

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector manages Prometheus metrics for the ECS runtime.
type MetricsCollector struct {
	// Entity/component metrics
	entityCount         prometheus.Gauge
	componentIndexSizes *prometheus.GaugeVec

	// Query cache metrics
	queryCacheHits        prometheus.Counter
	queryCacheMisses       prometheus.Counter
	queryCacheHitRate      prometheus.Gauge
	queryCacheInvalidation prometheus.Counter

	// System dispatch metrics
	systemDispatchDuration *prometheus.HistogramVec
	systemEntityCount      *prometheus.GaugeVec

	// Observer metrics
	observerDispatches *prometheus.CounterVec

	// Relationship metrics
	relationshipChanges *prometheus.CounterVec

	// Worker pool / parallel batcher metrics
	workerPoolUtilization prometheus.Gauge
	jobsQueued            prometheus.Gauge
	jobsCompleted         prometheus.Counter
	jobsFailed            prometheus.Counter
	jobProcessingTime     prometheus.Histogram

	// Object pool metrics
	poolHitRate prometheus.Gauge
	poolSize    prometheus.Gauge

	// Go runtime metrics
	memoryUsage    prometheus.Gauge
	goroutineCount prometheus.Gauge
	gcPauseTime    prometheus.Histogram

	server *http.Server
	mu     sync.RWMutex
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		entityCount: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ecsworld_entity_count",
			Help: "Current number of registered entities",
		}),
		componentIndexSizes: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ecsworld_component_index_size",
			Help: "Number of entities carrying a given component type",
		}, []string{"component"}),

		queryCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ecsworld_query_cache_hits_total",
			Help: "Total query cache hits",
		}),
		queryCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ecsworld_query_cache_misses_total",
			Help: "Total query cache misses",
		}),
		queryCacheHitRate: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ecsworld_query_cache_hit_rate",
			Help: "Query cache hit rate over the last sampling interval",
		}),
		queryCacheInvalidation: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ecsworld_query_cache_invalidations_total",
			Help: "Total query cache invalidations",
		}),

		systemDispatchDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ecsworld_system_dispatch_duration_seconds",
			Help:    "Per-tick dispatch duration for a system",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.016, 0.033, 0.1},
		}, []string{"system", "group"}),
		systemEntityCount: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ecsworld_system_entity_count",
			Help: "Number of entities processed by a system's last dispatch",
		}, []string{"system", "group"}),

		observerDispatches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ecsworld_observer_dispatches_total",
			Help: "Total observer handler invocations by kind",
		}, []string{"observer", "kind"}),

		relationshipChanges: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ecsworld_relationship_changes_total",
			Help: "Total relationship add/remove events by relation",
		}, []string{"relation", "added"}),

		workerPoolUtilization: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ecsworld_worker_pool_utilization",
			Help: "Parallel batcher worker pool utilization",
		}),
		jobsQueued: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ecsworld_jobs_queued",
			Help: "Current number of queued parallel-batch jobs",
		}),
		jobsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ecsworld_jobs_completed_total",
			Help: "Total parallel-batch jobs completed",
		}),
		jobsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ecsworld_jobs_failed_total",
			Help: "Total parallel-batch jobs failed",
		}),
		jobProcessingTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ecsworld_job_processing_seconds",
			Help:    "Parallel-batch job processing time",
			Buckets: prometheus.DefBuckets,
		}),

		poolHitRate: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ecsworld_object_pool_hit_rate",
			Help: "Query builder pool hit rate",
		}),
		poolSize: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ecsworld_object_pool_size",
			Help: "Current query builder pool size",
		}),

		memoryUsage: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ecsworld_memory_usage_bytes",
			Help: "Current memory usage in bytes",
		}),
		goroutineCount: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ecsworld_goroutines",
			Help: "Current number of goroutines",
		}),
		gcPauseTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ecsworld_gc_pause_seconds",
			Help:    "GC pause duration",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),
	}
}

// StartServer starts the Prometheus metrics HTTP server.
func (mc *MetricsCollector) StartServer(port int) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if mc.server != nil {
		return fmt.Errorf("metrics server already running")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	mc.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		if err := mc.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server error: %v\n", err)
		}
	}()

	return nil
}

// StopServer stops the metrics server.
func (mc *MetricsCollector) StopServer() error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if mc.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := mc.server.Shutdown(ctx)
	mc.server = nil
	return err
}

// UpdateEntityCount sets the current entity count.
func (mc *MetricsCollector) UpdateEntityCount(count int) {
	mc.entityCount.Set(float64(count))
}

// UpdateComponentIndexSizes sets the union-set size for every component
// type currently present in the world.
func (mc *MetricsCollector) UpdateComponentIndexSizes(sizes map[string]int) {
	for component, size := range sizes {
		mc.componentIndexSizes.WithLabelValues(component).Set(float64(size))
	}
}

// RecordQueryCacheStats adds hits/misses accumulated since the last
// sample (the caller is expected to reset the world's counters after
// reading them) and sets the hit rate gauge, which therefore covers the
// same interval.
func (mc *MetricsCollector) RecordQueryCacheStats(hits, misses int64, hitRate float64) {
	mc.queryCacheHits.Add(float64(hits))
	mc.queryCacheMisses.Add(float64(misses))
	mc.queryCacheHitRate.Set(hitRate)
}

// RecordQueryCacheInvalidation records a single cache invalidation.
func (mc *MetricsCollector) RecordQueryCacheInvalidation() {
	mc.queryCacheInvalidation.Inc()
}

// RecordSystemDispatch records one system's per-tick dispatch timing.
func (mc *MetricsCollector) RecordSystemDispatch(system, group string, entityCount int, duration time.Duration) {
	mc.systemDispatchDuration.WithLabelValues(system, group).Observe(duration.Seconds())
	mc.systemEntityCount.WithLabelValues(system, group).Set(float64(entityCount))
}

// RecordObserverDispatch records one observer handler invocation.
func (mc *MetricsCollector) RecordObserverDispatch(observer, kind string) {
	mc.observerDispatches.WithLabelValues(observer, kind).Inc()
}

// RecordRelationshipChange records a relationship add/remove.
func (mc *MetricsCollector) RecordRelationshipChange(relation string, added bool) {
	mc.relationshipChanges.WithLabelValues(relation, fmt.Sprintf("%v", added)).Inc()
}

// UpdateWorkerPoolUtilization updates worker pool utilization.
func (mc *MetricsCollector) UpdateWorkerPoolUtilization(utilization float64) {
	mc.workerPoolUtilization.Set(utilization)
}

// UpdateJobsQueued updates the queued job gauge.
func (mc *MetricsCollector) UpdateJobsQueued(count int) {
	mc.jobsQueued.Set(float64(count))
}

// RecordJobCompletion records completion of a parallel-batch job.
func (mc *MetricsCollector) RecordJobCompletion(success bool, duration time.Duration) {
	if success {
		mc.jobsCompleted.Inc()
	} else {
		mc.jobsFailed.Inc()
	}
	mc.jobProcessingTime.Observe(duration.Seconds())
}

// UpdatePoolMetrics updates object pool metrics.
func (mc *MetricsCollector) UpdatePoolMetrics(hitRate float64, size int) {
	mc.poolHitRate.Set(hitRate)
	mc.poolSize.Set(float64(size))
}

// UpdateMemoryUsage updates memory usage metric.
func (mc *MetricsCollector) UpdateMemoryUsage(bytes uint64) {
	mc.memoryUsage.Set(float64(bytes))
}

// UpdateGoroutineCount updates goroutine count.
func (mc *MetricsCollector) UpdateGoroutineCount(count int) {
	mc.goroutineCount.Set(float64(count))
}

// RecordGCPause records GC pause duration.
func (mc *MetricsCollector) RecordGCPause(duration time.Duration) {
	mc.gcPauseTime.Observe(duration.Seconds())
}
