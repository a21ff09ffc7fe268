package ecs

import "github.com/yourusername/ecsworld/internal/infrastructure/pool"

// defaultQueryBuilderPoolSize matches the `_pool_size_limit` configuration
// knob's default of 10.
const defaultQueryBuilderPoolSize = 10

func newQueryBuilderPool(limit int) *pool.ObjectPool[*QueryBuilder] {
	if limit <= 0 {
		limit = defaultQueryBuilderPoolSize
	}
	return pool.NewObjectPool(
		func() *QueryBuilder { return &QueryBuilder{} },
		func(q *QueryBuilder) { q.Reset() },
		limit,
	)
}

// Query returns a pooled QueryBuilder bound to this world. The builder is
// returned to the free list automatically once Execute completes.
func (w *World) Query() *QueryBuilder {
	q := w.builderPool.Get()
	q.world = w
	return q
}

// releaseBuilder puts q back on the free list; called internally once a builder
// has produced its result.
func (w *World) releaseBuilder(q *QueryBuilder) {
	w.builderPool.Put(q)
}
