package ecs

import (
	"fmt"
	"sync"
	"time"

	"github.com/yourusername/ecsworld/internal/domain/event"
	"github.com/yourusername/ecsworld/internal/infrastructure/logging"
	"github.com/yourusername/ecsworld/internal/infrastructure/pool"
)

// World is the data-oriented runtime core: it owns every entity, system,
// and observer instance and their lifetimes; components are owned by
// their entity. It is the explicit context parameter systems and
// observers are handed at setup, deliberately not a global singleton
// (spec.md §9).
type World struct {
	entityStore   *entityStore
	index         *componentIndex
	relationships *relationshipIndex
	cache         *queryCache
	keyRegistry   *keyRegistry
	builderPool   *pool.ObjectPool[*QueryBuilder]

	scheduler *Scheduler
	observers *observerDispatcher
	batcher   *parallelBatcher

	host   Host
	config Config
	logger *logging.Logger
	bus    *event.EventBus

	resourcesMu sync.RWMutex
	resources   map[string]interface{}

	preprocessors  []func(*Entity) error
	postprocessors []func(*Entity) error

	deferred  []func()
	tickCount int64
}

// NewWorld constructs an empty world with the given configuration and
// host. A nil host is valid (see noopHost).
func NewWorld(cfg Config, host Host) *World {
	if host == nil {
		host = noopHost{}
	}
	w := &World{
		entityStore:   newEntityStore(),
		index:         newComponentIndex(),
		relationships: newRelationshipIndex(),
		cache:         newQueryCache(),
		keyRegistry:   newKeyRegistry(),
		scheduler:     newScheduler(cfg.Debug),
		observers:     newObserverDispatcher(cfg.Debug),
		batcher:       newParallelBatcher(),
		host:          host,
		config:        cfg,
		logger:        logging.Get(),
		bus:           event.NewEventBus(),
		resources:     make(map[string]interface{}),
	}
	w.builderPool = newQueryBuilderPool(cfg.PoolSizeLimit)
	return w
}

// --- Resources ---------------------------------------------------------

// AddResource stores a host-supplied value (a clock, RNG, settings blob)
// under name for systems/observers to look up without it being a
// component.
func (w *World) AddResource(name string, value interface{}) {
	w.resourcesMu.Lock()
	defer w.resourcesMu.Unlock()
	w.resources[name] = value
}

// GetResource returns the named resource, if present.
func (w *World) GetResource(name string) (interface{}, bool) {
	w.resourcesMu.RLock()
	defer w.resourcesMu.RUnlock()
	v, ok := w.resources[name]
	return v, ok
}

// RemoveResource deletes the named resource.
func (w *World) RemoveResource(name string) {
	w.resourcesMu.Lock()
	defer w.resourcesMu.Unlock()
	delete(w.resources, name)
}

// --- Preprocessors / postprocessors ------------------------------------

// AddPreprocessor registers a hook run after add_entity finishes wiring an
// entity in, after entity_added fires.
func (w *World) AddPreprocessor(fn func(*Entity) error) {
	w.preprocessors = append(w.preprocessors, fn)
}

// AddPostprocessor registers a hook run at the very start of remove_entity.
func (w *World) AddPostprocessor(fn func(*Entity) error) {
	w.postprocessors = append(w.postprocessors, fn)
}

// --- Entity store --------------------------------------------------------

// AddEntity registers e: assigns a fresh id if empty, replaces any prior
// holder of the same id (removing it first as RemoveEntity does,
// postprocessors included), wires the four
// entity events, inserts into every index, invalidates the cache, and
// finally emits entity_added and runs registered preprocessors.
func (w *World) AddEntity(e *Entity) error {
	e.assignID()

	if prior, ok := w.entityStore.byIDLookup(e.ID()); ok && prior != e {
		w.destroyEntity(prior, true)
	}

	e.subscribe(entityEvents{
		onComponentAdded:     func(key ComponentTypeKey) { w.onComponentAdded(e, key) },
		onComponentRemoved:   func(key ComponentTypeKey) { w.onComponentRemoved(e, key) },
		onRelationshipChange: func(r Relationship, added bool) { w.onRelationshipChange(r, added) },
		onPropertyChanged:    func(c ComponentChange) { w.onPropertyChanged(c) },
	})

	w.entityStore.register(e)
	for _, key := range e.ComponentKeys() {
		w.index.addEntityToIndex(e, key)
	}
	w.invalidateCache()

	if w.logger != nil {
		w.logger.LogEntityLifecycle(string(e.ID()), "added", len(e.ComponentKeys()))
	}
	w.emit(EventEntityAdded, e)

	for _, pre := range w.preprocessors {
		if err := pre(e); err != nil {
			return fmt.Errorf("ecs: preprocessor failed for entity %s: %w", e.ID(), err)
		}
	}
	return nil
}

// AddEntities is the bulk variant of AddEntity.
func (w *World) AddEntities(entities []*Entity) error {
	for _, e := range entities {
		if err := w.AddEntity(e); err != nil {
			return err
		}
	}
	return nil
}

// RemoveEntity runs postprocessors, emits entity_removed, erases e from
// every index and the entity list, disconnects its events, deregisters
// its id, calls no further hooks (on_destroy is a host concern layered on
// top via postprocessors/observers), and invalidates the cache.
func (w *World) RemoveEntity(e *Entity) {
	w.destroyEntity(e, false)
}

func (w *World) destroyEntity(e *Entity, replaced bool) {
	for _, post := range w.postprocessors {
		_ = post(e)
	}
	w.emit(EventEntityRemoved, e)

	keys := e.ComponentKeys()
	for _, key := range keys {
		w.onComponentRemoved(e, key)
		w.index.removeEntityFromIndex(e, key)
	}
	for _, r := range e.Relationships() {
		w.relationships.remove(r)
	}

	e.unsubscribe()
	w.entityStore.deregister(e)
	e.markDestroyed()
	w.invalidateCache()
	if w.logger != nil {
		w.logger.LogEntityLifecycle(string(e.ID()), "removed", len(keys))
	}
	_ = replaced
}

// RemoveEntities is the bulk variant of RemoveEntity.
func (w *World) RemoveEntities(entities []*Entity) {
	for _, e := range entities {
		w.RemoveEntity(e)
	}
}

// DisableEntity flips e's enabled flag to false, moves it from the
// enabled to the disabled index for every component it carries, and
// emits entity_disabled.
func (w *World) DisableEntity(e *Entity) {
	if !e.Enabled() {
		return
	}
	e.setEnabled(false)
	w.index.moveEntityToDisabled(e)
	w.invalidateCache()
	if w.logger != nil {
		w.logger.LogEntityLifecycle(string(e.ID()), "disabled", len(e.ComponentKeys()))
	}
	w.emit(EventEntityDisabled, e)
}

// EnableEntity is the inverse of DisableEntity; extra may supply
// components to add at the same time.
func (w *World) EnableEntity(e *Entity, extra ...Component) {
	if e.Enabled() {
		return
	}
	e.setEnabled(true)
	w.index.moveEntityToEnabled(e)
	for _, c := range extra {
		e.AddComponent(c)
		w.index.addEntityToIndex(e, c.ComponentType())
	}
	w.invalidateCache()
	if w.logger != nil {
		w.logger.LogEntityLifecycle(string(e.ID()), "enabled", len(e.ComponentKeys()))
	}
	w.emit(EventEntityEnabled, e)
}

// DisableEntities / EnableEntities are the bulk variants.
func (w *World) DisableEntities(entities []*Entity) {
	for _, e := range entities {
		w.DisableEntity(e)
	}
}

func (w *World) EnableEntities(entities []*Entity) {
	for _, e := range entities {
		w.EnableEntity(e)
	}
}

// GetEntityByID returns the entity registered under id, if any.
func (w *World) GetEntityByID(id EntityID) (*Entity, bool) {
	return w.entityStore.byIDLookup(id)
}

// HasEntityWithID reports whether id is currently registered.
func (w *World) HasEntityWithID(id EntityID) bool {
	return w.entityStore.has(id)
}

// Purge removes every entity not named in keep, clears the relationship
// indices, and removes every system and observer.
func (w *World) Purge(keep []EntityID) {
	keepSet := make(map[EntityID]bool, len(keep))
	for _, id := range keep {
		keepSet[id] = true
	}

	removed := w.entityStore.purge(keepSet)
	for _, e := range removed {
		for _, key := range e.ComponentKeys() {
			w.index.removeEntityFromIndex(e, key)
		}
		e.unsubscribe()
		e.markDestroyed()
	}

	w.relationships.clear()
	w.scheduler = newScheduler(w.config.Debug)
	w.observers = newObserverDispatcher(w.config.Debug)
	w.invalidateCache()
}

// --- Component/relationship event plumbing ------------------------------

func (w *World) onComponentAdded(e *Entity, key ComponentTypeKey) {
	w.index.addEntityToIndex(e, key)
	w.invalidateCache()
	w.emit(EventComponentAdded, ComponentChange{Entity: e, Key: key})
	w.observers.dispatchAdded(w, key, e)
}

func (w *World) onComponentRemoved(e *Entity, key ComponentTypeKey) {
	w.index.removeEntityFromIndex(e, key)
	w.invalidateCache()
	w.emit(EventComponentRemoved, ComponentChange{Entity: e, Key: key})
	w.observers.dispatchRemoved(w, key, e)
}

func (w *World) onPropertyChanged(change ComponentChange) {
	w.emit(EventComponentChanged, change)
	w.observers.dispatchChanged(w, change)
}

func (w *World) onRelationshipChange(r Relationship, added bool) {
	if w.logger != nil {
		target := r.Target.Tag
		if r.Target.Entity != nil {
			target = string(r.Target.Entity.ID())
		}
		w.logger.LogRelationshipChange(string(r.Source), string(r.Relation), target, added)
	}
	if added {
		w.relationships.add(r)
		w.invalidateCache()
		w.emit(EventRelationshipAdded, r)
	} else {
		w.relationships.remove(r)
		w.invalidateCache()
		w.emit(EventRelationshipRemoved, r)
	}
}

// Forward returns the forward relationship index for relation.
func (w *World) Forward(relation ComponentTypeKey) []EntityID { return w.relationships.Forward(relation) }

// Reverse returns the reverse relationship index for relation.
func (w *World) Reverse(relation ComponentTypeKey) []EntityID { return w.relationships.Reverse(relation) }

func (w *World) invalidateCache() {
	w.cache.invalidate()
	w.emit(EventCacheInvalidated, nil)
}

// --- Systems -------------------------------------------------------------

// AddSystem registers sys, running its Setup hook once, and emits
// system_added. When sort is true, the whole group is re-sorted
// topologically afterward.
func (w *World) AddSystem(sys System, sort bool) error {
	if err := sys.Setup(w); err != nil {
		return fmt.Errorf("ecs: setup failed for system %q: %w", sys.Base().Name(), err)
	}
	if err := w.scheduler.AddSystem(sys, sort); err != nil {
		return err
	}
	w.emit(EventSystemAdded, sys.Base().Name())
	return nil
}

// RemoveSystem evicts the named system and emits system_removed.
func (w *World) RemoveSystem(name string) {
	w.scheduler.RemoveSystem(name)
	w.emit(EventSystemRemoved, name)
}

// RemoveSystemGroup removes every system in group.
func (w *World) RemoveSystemGroup(group string) {
	w.scheduler.RemoveGroup(group)
}

// GetSystem returns the named system, if registered.
func (w *World) GetSystem(name string) (System, bool) { return w.scheduler.GetSystem(name) }

// --- Observers -----------------------------------------------------------

// AddObserver registers o with the observer dispatcher.
func (w *World) AddObserver(o Observer) error { return w.observers.Add(o) }

// RemoveObserver unregisters the named observer.
func (w *World) RemoveObserver(name string) { w.observers.Remove(name) }

// --- Deferred calls --------------------------------------------------------

// deferCall queues fn for the next safe point: the host's Defer hook if a
// real Host is configured, otherwise World's own queue, flushed at the
// start of the next Process call.
func (w *World) deferCall(fn func()) {
	if _, isNoop := w.host.(noopHost); isNoop {
		w.deferred = append(w.deferred, fn)
		return
	}
	w.host.Defer(fn)
}

func (w *World) flushDeferred() {
	if len(w.deferred) == 0 {
		return
	}
	pending := w.deferred
	w.deferred = nil
	for _, fn := range pending {
		fn()
	}
}

// --- Tick ------------------------------------------------------------------

// Process is the per-tick entry point: it first flushes any observer
// handlers deferred from the previous tick, then walks group's
// topologically-sorted systems in order, dispatching each active,
// unpaused system.
func (w *World) Process(delta float64, group string) error {
	w.tickCount++
	w.flushDeferred()

	for _, sys := range w.scheduler.OrderedGroup(group) {
		if err := w.dispatch(sys, delta); err != nil {
			return fmt.Errorf("ecs: system %q failed: %w", sys.Base().Name(), err)
		}
	}
	return nil
}

// UpdatePauseState iterates every registered system and recomputes its
// paused flag.
func (w *World) UpdatePauseState(paused bool) { w.scheduler.UpdatePauseState(paused) }

func (w *World) dispatch(sys System, delta float64) error {
	base := sys.Base()
	if !base.Active() || base.Paused() {
		return nil
	}

	start := time.Now()
	entityCount := 0
	defer func() {
		if w.logger != nil {
			w.logger.LogSystemDispatch(base.Name(), base.Group(), entityCount, time.Since(start))
		}
	}()

	if !base.subsBuilt {
		base.cachedSubs = sys.Subsystems(w)
		base.subsBuilt = true
	}

	if len(base.cachedSubs) > 0 {
		return runSubsystems(w, base.cachedSubs, delta)
	}

	qb := sys.BuildQuery(w)
	if qb == nil {
		debugAssert(w.config.Debug, false, "World.dispatch",
			fmt.Sprintf("system %q has no subsystems and no query", base.Name()))
		return nil
	}

	entities := qb.Execute()
	entityCount = len(entities)
	if len(entities) == 0 && !base.ProcessEmpty() {
		return nil
	}
	return w.processAll(sys, entities, delta)
}

// processAll implements the default process_all behavior unless sys
// implements BatchProcessor: call Process(nil, delta) once for an empty,
// process_empty-enabled batch; otherwise dispatch to the parallel batcher
// once the slice crosses the system's threshold, or iterate sequentially.
func (w *World) processAll(sys System, entities []*Entity, delta float64) error {
	if bp, ok := sys.(BatchProcessor); ok {
		return bp.ProcessAll(entities, delta)
	}

	if len(entities) == 0 {
		if sys.Base().ProcessEmpty() {
			return sys.Process(nil, delta)
		}
		return nil
	}

	parallel, threshold := sys.Base().Parallel()
	if parallel && len(entities) >= threshold {
		return w.batcher.Run(entities, delta, sys.Process)
	}

	for _, e := range entities {
		if err := sys.Process(e, delta); err != nil {
			return err
		}
	}
	return nil
}

// --- Cache introspection -----------------------------------------------

// GetCacheStats returns the query cache's hit/miss counters.
func (w *World) GetCacheStats() CacheStats { return w.cache.stats() }

// ResetCacheStats zeroes the hit/miss counters without touching cached
// results.
func (w *World) ResetCacheStats() { w.cache.resetStats() }

// EntityCount returns the number of entities currently registered.
func (w *World) EntityCount() int { return len(w.entityStore.byID) }

// ComponentIndexSizes returns, for every component type currently carried
// by at least one entity, the size of its union set — a cheap snapshot
// for monitoring/introspection, not used on any hot path.
func (w *World) ComponentIndexSizes() map[ComponentTypeKey]int {
	sizes := make(map[ComponentTypeKey]int, len(w.index.union))
	for key, set := range w.index.union {
		sizes[key] = len(set)
	}
	return sizes
}

// TickCount returns the number of completed Process calls.
func (w *World) TickCount() int64 { return w.tickCount }

// --- Debug invariant checking -------------------------------------------

// CheckInvariants walks the three component-index maps and the id
// registry and returns a human-readable list of violations. It is never
// called on the hot path; it exists to operationalize spec.md §8's
// invariants as something a test can assert against directly.
func (w *World) CheckInvariants() []string {
	var problems []string

	for key, set := range w.index.union {
		if len(set) == 0 {
			problems = append(problems, fmt.Sprintf("union[%s] is empty but was not evicted", key))
		}
		for id, e := range set {
			inEnabled := w.index.enabled[key] != nil && w.index.enabled[key][id] != nil
			inDisabled := w.index.disabled[key] != nil && w.index.disabled[key][id] != nil
			if inEnabled == inDisabled {
				problems = append(problems, fmt.Sprintf("entity %s component %s: expected exactly one of enabled/disabled, got enabled=%v disabled=%v", id, key, inEnabled, inDisabled))
			}
			if inEnabled != e.Enabled() {
				problems = append(problems, fmt.Sprintf("entity %s component %s: index enabled=%v but entity.Enabled()=%v", id, key, inEnabled, e.Enabled()))
			}
		}
	}
	for key, set := range w.index.enabled {
		if len(set) == 0 {
			problems = append(problems, fmt.Sprintf("enabled[%s] is empty but was not evicted", key))
		}
	}
	for key, set := range w.index.disabled {
		if len(set) == 0 {
			problems = append(problems, fmt.Sprintf("disabled[%s] is empty but was not evicted", key))
		}
	}

	for id, e := range w.entityStore.byID {
		if e.ID() != id {
			problems = append(problems, fmt.Sprintf("registry key %s maps to entity with id %s", id, e.ID()))
		}
	}

	return problems
}

// --- Builder ---------------------------------------------------------------

// WorldBuilder assembles a World's systems and resources in one fluent
// chain before Build returns it.
type WorldBuilder struct {
	cfg       Config
	host      Host
	systems   []System
	resources map[string]interface{}
	err       error
}

// NewWorldBuilder starts a builder with cfg and host (host may be nil).
func NewWorldBuilder(cfg Config, host Host) *WorldBuilder {
	return &WorldBuilder{cfg: cfg, host: host, resources: make(map[string]interface{})}
}

// WithSystem queues sys to be added once Build runs.
func (b *WorldBuilder) WithSystem(sys System) *WorldBuilder {
	b.systems = append(b.systems, sys)
	return b
}

// WithResource queues a named resource to be set once Build runs.
func (b *WorldBuilder) WithResource(name string, value interface{}) *WorldBuilder {
	b.resources[name] = value
	return b
}

// Build constructs the World, adds every queued resource and system (with
// topological sort requested), and returns it.
func (b *WorldBuilder) Build() (*World, error) {
	w := NewWorld(b.cfg, b.host)
	for name, value := range b.resources {
		w.AddResource(name, value)
	}
	for _, sys := range b.systems {
		if err := w.AddSystem(sys, true); err != nil {
			return nil, err
		}
	}
	return w, nil
}
