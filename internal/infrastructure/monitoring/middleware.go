package monitoring

import (
	"runtime"
	"time"

	"github.com/yourusername/ecsworld/internal/domain/ecs"
)

// WorldSampler periodically pulls introspection data out of a World and
// feeds it into a MetricsCollector. It never touches World's hot path —
// every read goes through the same cache/invariant-introspection methods
// a host would use from the HTTP surface.
type WorldSampler struct {
	collector *MetricsCollector
	world     *ecs.World
	ticker    *time.Ticker
	stopChan  chan struct{}
}

// NewWorldSampler creates a new world sampler.
func NewWorldSampler(collector *MetricsCollector, world *ecs.World) *WorldSampler {
	return &WorldSampler{
		collector: collector,
		world:     world,
		stopChan:  make(chan struct{}),
	}
}

// Start begins periodic sampling.
func (ws *WorldSampler) Start(interval time.Duration) {
	ws.ticker = time.NewTicker(interval)

	go func() {
		for {
			select {
			case <-ws.ticker.C:
				ws.sample()
			case <-ws.stopChan:
				return
			}
		}
	}()
}

// Stop stops sampling.
func (ws *WorldSampler) Stop() {
	if ws.ticker != nil {
		ws.ticker.Stop()
	}
	close(ws.stopChan)
}

// sample gathers metrics from the world and the Go runtime.
func (ws *WorldSampler) sample() {
	ws.collector.UpdateEntityCount(ws.world.EntityCount())

	sizes := make(map[string]int)
	for key, size := range ws.world.ComponentIndexSizes() {
		sizes[string(key)] = size
	}
	ws.collector.UpdateComponentIndexSizes(sizes)

	stats := ws.world.GetCacheStats()
	ws.collector.RecordQueryCacheStats(stats.CacheHits, stats.CacheMisses, stats.HitRate)
	ws.world.ResetCacheStats()

	ws.collectRuntimeMetrics()
}

// collectRuntimeMetrics collects Go-runtime-level metrics.
func (ws *WorldSampler) collectRuntimeMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	ws.collector.UpdateMemoryUsage(m.Alloc)
	ws.collector.UpdateGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		lastGC := m.PauseNs[(m.NumGC+255)%256]
		ws.collector.RecordGCPause(time.Duration(lastGC))
	}
}
