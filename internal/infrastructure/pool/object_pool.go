package pool

import (
	"sync"
	"sync/atomic"
	"time"
)

// Poolable interface that objects must implement to be pooled
type Poolable interface {
	Reset()
	IsValid() bool
}

// ObjectPool manages a pool of reusable objects
type ObjectPool[T Poolable] struct {
	pool        chan T
	factory     func() T
	resetFunc   func(T)
	maxSize     int
	created     int32
	inUse       int32
	hits        int64
	misses      int64
	mu          sync.RWMutex
	metrics     *PoolMetrics
	lastCleanup time.Time
}

// PoolMetrics tracks pool performance
type PoolMetrics struct {
	Created     int32
	InUse       int32
	Available   int
	TotalHits   int64
	TotalMisses int64
	HitRate     float64
	LastCleanup time.Time
	MemoryUsage int64
}

// NewObjectPool creates a new object pool
func NewObjectPool[T Poolable](factory func() T, resetFunc func(T), maxSize int) *ObjectPool[T] {
	if maxSize <= 0 {
		maxSize = 100
	}

	pool := &ObjectPool[T]{
		pool:        make(chan T, maxSize),
		factory:     factory,
		resetFunc:   resetFunc,
		maxSize:     maxSize,
		metrics:     &PoolMetrics{},
		lastCleanup: time.Now(),
	}

	// Pre-allocate some objects
	preAllocate := maxSize / 4
	for i := 0; i < preAllocate; i++ {
		obj := factory()
		pool.pool <- obj
		atomic.AddInt32(&pool.created, 1)
	}

	// Start cleanup goroutine
	go pool.cleanupRoutine()

	return pool
}

// Get retrieves an object from the pool
func (p *ObjectPool[T]) Get() T {
	select {
	case obj := <-p.pool:
		// Object retrieved from pool
		atomic.AddInt32(&p.inUse, 1)
		atomic.AddInt64(&p.hits, 1)

		// Validate object
		if obj.IsValid() {
			return obj
		}
		// Invalid object, create new one
		atomic.AddInt32(&p.created, 1)
		return p.factory()

	default:
		// Pool is empty, create new object
		atomic.AddInt32(&p.created, 1)
		atomic.AddInt32(&p.inUse, 1)
		atomic.AddInt64(&p.misses, 1)
		return p.factory()
	}
}

// Put returns an object to the pool
func (p *ObjectPool[T]) Put(obj T) {
	// Check if object is valid
	// For interface types, we need to check if it's valid rather than nil
	if !obj.IsValid() {
		atomic.AddInt32(&p.inUse, -1)
		return
	}

	// Reset the object
	if p.resetFunc != nil {
		p.resetFunc(obj)
	} else {
		obj.Reset()
	}

	select {
	case p.pool <- obj:
		// Object returned to pool
		atomic.AddInt32(&p.inUse, -1)
	default:
		// Pool is full, discard object
		atomic.AddInt32(&p.inUse, -1)
		atomic.AddInt32(&p.created, -1)
	}
}

// GetMetrics returns current pool metrics
func (p *ObjectPool[T]) GetMetrics() PoolMetrics {
	p.mu.RLock()
	defer p.mu.RUnlock()

	created := atomic.LoadInt32(&p.created)
	inUse := atomic.LoadInt32(&p.inUse)
	hits := atomic.LoadInt64(&p.hits)
	misses := atomic.LoadInt64(&p.misses)

	hitRate := 0.0
	total := hits + misses
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return PoolMetrics{
		Created:     created,
		InUse:       inUse,
		Available:   len(p.pool),
		TotalHits:   hits,
		TotalMisses: misses,
		HitRate:     hitRate,
		LastCleanup: p.lastCleanup,
	}
}

// Clear empties the pool
func (p *ObjectPool[T]) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Drain the pool
	for {
		select {
		case <-p.pool:
			atomic.AddInt32(&p.created, -1)
		default:
			return
		}
	}
}

// cleanupRoutine periodically cleans up the pool
func (p *ObjectPool[T]) cleanupRoutine() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		p.cleanup()
	}
}

// cleanup removes excess objects from the pool
func (p *ObjectPool[T]) cleanup() {
	p.mu.Lock()
	defer p.mu.Unlock()

	available := len(p.pool)
	if available > p.maxSize/2 {
		// Remove half of the excess objects
		toRemove := (available - p.maxSize/2) / 2
		for i := 0; i < toRemove; i++ {
			select {
			case <-p.pool:
				atomic.AddInt32(&p.created, -1)
			default:
				break
			}
		}
	}

	p.lastCleanup = time.Now()
}

