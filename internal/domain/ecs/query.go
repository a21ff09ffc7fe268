package ecs

import "sync/atomic"

// Distinct small primes, one per list role, so that membership within a
// role combines commutatively (multiplication) while the three roles stay
// disjoint in the hash domain (XOR). Collisions are acceptable: the
// invalidation policy is a conservative flush-all, so a stale cache hit
// can never outlive a relevant mutation.
const (
	primeAll     uint64 = 31
	primeAny     uint64 = 37
	primeExclude uint64 = 41
)

// keyRegistry interns ComponentTypeKey values into small dense integers so
// the cache-key hash has a stable numeric identity to multiply over.
type keyRegistry struct {
	ids  map[ComponentTypeKey]uint64
	next uint64
}

func newKeyRegistry() *keyRegistry {
	return &keyRegistry{ids: make(map[ComponentTypeKey]uint64)}
}

func (r *keyRegistry) idFor(key ComponentTypeKey) uint64 {
	if id, ok := r.ids[key]; ok {
		return id
	}
	r.next++
	r.ids[key] = r.next
	return r.next
}

func roleHash(keys []ComponentTypeKey, prime uint64, reg *keyRegistry) uint64 {
	if len(keys) == 0 {
		return 0
	}
	seen := make(map[ComponentTypeKey]bool, len(keys))
	h := uint64(1)
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		h *= prime * (reg.idFor(k) + 2)
	}
	return h
}

func cacheKeyFor(all, any, exclude []ComponentTypeKey, enabledFilter *bool, reg *keyRegistry) uint64 {
	h := roleHash(all, primeAll, reg) ^ roleHash(any, primeAny, reg) ^ roleHash(exclude, primeExclude, reg)
	// Fold the enabled filter into the key so "with enabled filter" and
	// "without" never collide with each other, even though they share the
	// same component-role hashes.
	switch {
	case enabledFilter == nil:
		return h
	case *enabledFilter:
		return h ^ 0x9E3779B97F4A7C15 // odd constant, disjoint from role hashes
	default:
		return h ^ 0xD1B54A32D192ED03
	}
}

// queryCache maps a composite cache key to a materialized, read-only
// result array, plus hit/miss counters for introspection. Counters are
// atomic because /stats style introspection may read them from outside
// the control thread even though mutation never does.
type queryCache struct {
	results map[uint64][]*Entity
	hits    int64
	misses  int64
}

func newQueryCache() *queryCache {
	return &queryCache{results: make(map[uint64][]*Entity)}
}

func (c *queryCache) lookup(key uint64) ([]*Entity, bool) {
	res, ok := c.results[key]
	if ok {
		atomic.AddInt64(&c.hits, 1)
	}
	return res, ok
}

func (c *queryCache) store(key uint64, result []*Entity) {
	c.results[key] = result
	atomic.AddInt64(&c.misses, 1)
}

// invalidate flushes the entire cache. This is the conservative policy
// spec.md's design notes settle on: finer per-key dependency tracking is
// possible but not worth the complexity here.
func (c *queryCache) invalidate() {
	c.results = make(map[uint64][]*Entity)
}

func (c *queryCache) stats() CacheStats {
	hits := atomic.LoadInt64(&c.hits)
	misses := atomic.LoadInt64(&c.misses)
	total := hits + misses
	rate := 0.0
	if total > 0 {
		rate = float64(hits) / float64(total)
	}
	return CacheStats{
		CacheHits:     hits,
		CacheMisses:   misses,
		HitRate:       rate,
		CachedQueries: len(c.results),
	}
}

func (c *queryCache) resetStats() {
	atomic.StoreInt64(&c.hits, 0)
	atomic.StoreInt64(&c.misses, 0)
}

// CacheStats is the host-visible shape of get_cache_stats.
type CacheStats struct {
	CacheHits     int64   `json:"cache_hits"`
	CacheMisses   int64   `json:"cache_misses"`
	HitRate       float64 `json:"hit_rate"`
	CachedQueries int     `json:"cached_queries"`
}

// QueryBuilder is the fluent, poolable query description: with_all,
// with_any, with_none accumulate component lists; Execute runs the
// planner. The builder owns its three lists and an enabled filter and is
// reset on return to the pool.
type QueryBuilder struct {
	world   *World
	all     []ComponentTypeKey
	any     []ComponentTypeKey
	exclude []ComponentTypeKey
	enabled *bool
}

// Reset clears the builder so it is safe to reuse from the free list.
func (q *QueryBuilder) Reset() {
	q.all = q.all[:0]
	q.any = q.any[:0]
	q.exclude = q.exclude[:0]
	q.enabled = nil
	q.world = nil
}

// IsValid always reports true: a QueryBuilder has no external resource
// that can go stale while pooled.
func (q *QueryBuilder) IsValid() bool { return true }

// WithAll adds required component keys (AND semantics).
func (q *QueryBuilder) WithAll(keys ...ComponentTypeKey) *QueryBuilder {
	q.all = append(q.all, keys...)
	return q
}

// WithAny adds optional component keys (OR semantics, unioned then
// intersected with the All result if present).
func (q *QueryBuilder) WithAny(keys ...ComponentTypeKey) *QueryBuilder {
	q.any = append(q.any, keys...)
	return q
}

// WithNone adds excluded component keys (set subtraction).
func (q *QueryBuilder) WithNone(keys ...ComponentTypeKey) *QueryBuilder {
	q.exclude = append(q.exclude, keys...)
	return q
}

// EnabledOnly restricts the query to the enabled index.
func (q *QueryBuilder) EnabledOnly() *QueryBuilder {
	t := true
	q.enabled = &t
	return q
}

// DisabledOnly restricts the query to the disabled index.
func (q *QueryBuilder) DisabledOnly() *QueryBuilder {
	f := false
	q.enabled = &f
	return q
}

// Execute runs the min-seed planner algorithm and returns the result. The
// returned slice must be treated as read-only by the caller: it may be the
// same backing array served out of the cache.
func (q *QueryBuilder) Execute() []*Entity {
	w := q.world
	result := w.query(q.all, q.any, q.exclude, q.enabled)
	w.releaseBuilder(q)
	return result
}

// query implements spec.md's algorithm: full-list shortcut, cache lookup,
// active-index selection, min-seed AND, union OR, then subtraction.
func (w *World) query(all, any, exclude []ComponentTypeKey, enabledFilter *bool) []*Entity {
	if len(all) == 0 && len(any) == 0 && len(exclude) == 0 {
		return w.entityStore.AllEntities()
	}

	key := cacheKeyFor(all, any, exclude, enabledFilter, w.keyRegistry)
	if cached, ok := w.cache.lookup(key); ok {
		return cached
	}

	active := func(k ComponentTypeKey) entitySet {
		if enabledFilter == nil {
			return w.index.unionSet(k)
		}
		return w.index.activeSet(k, *enabledFilter)
	}

	var result entitySet

	if len(all) > 0 {
		smallestKey := all[0]
		smallestLen := -1
		for _, k := range all {
			set := active(k)
			if len(set) == 0 {
				w.cache.store(key, nil)
				return nil
			}
			if smallestLen == -1 || len(set) < smallestLen {
				smallestLen = len(set)
				smallestKey = k
			}
		}
		result = active(smallestKey).clone()
		for _, k := range all {
			if k == smallestKey {
				continue
			}
			result = intersect(result, active(k))
			if len(result) == 0 {
				w.cache.store(key, nil)
				return nil
			}
		}
	}

	if len(any) > 0 {
		unioned := make(entitySet)
		for _, k := range any {
			for id, e := range active(k) {
				unioned[id] = e
			}
		}
		if result != nil {
			result = intersect(result, unioned)
		} else {
			result = unioned
		}
	} else if len(all) == 0 && len(exclude) > 0 {
		result = w.entityStore.allSet()
	}

	for _, k := range exclude {
		result = subtract(result, active(k))
	}

	materialized := materialize(result)
	w.cache.store(key, materialized)
	return materialized
}

func intersect(a entitySet, b entitySet) entitySet {
	out := make(entitySet)
	small, big := a, b
	if len(b) < len(a) {
		small, big = b, a
	}
	for id, e := range small {
		if _, ok := big[id]; ok {
			out[id] = e
		}
	}
	return out
}

func subtract(a entitySet, b entitySet) entitySet {
	if len(b) == 0 {
		return a
	}
	out := make(entitySet, len(a))
	for id, e := range a {
		if _, ok := b[id]; !ok {
			out[id] = e
		}
	}
	return out
}

func materialize(s entitySet) []*Entity {
	if len(s) == 0 {
		return nil
	}
	out := make([]*Entity, 0, len(s))
	for _, e := range s {
		out = append(out, e)
	}
	return out
}
