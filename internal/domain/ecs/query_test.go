package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorld() *World {
	return NewWorld(DefaultConfig(), nil)
}

func mustAddEntity(t *testing.T, w *World, e *Entity) *Entity {
	t.Helper()
	require.NoError(t, w.AddEntity(e))
	return e
}

func TestWorld_Query_EmptyTripleReturnsFullList(t *testing.T) {
	w := newTestWorld()
	mustAddEntity(t, w, NewEntity("e1"))
	mustAddEntity(t, w, NewEntity("e2"))

	result := w.Query().Execute()
	assert.Len(t, result, 2)
}

func TestWorld_Query_AllIntersectsAcrossComponents(t *testing.T) {
	w := newTestWorld()
	e1 := NewEntity("e1")
	e1.AddComponent(&PositionComponent{})
	e1.AddComponent(&VelocityComponent{})
	mustAddEntity(t, w, e1)

	e2 := NewEntity("e2")
	e2.AddComponent(&PositionComponent{})
	mustAddEntity(t, w, e2)

	result := w.Query().WithAll(keyPosition, keyVelocity).Execute()
	require.Len(t, result, 1)
	assert.Equal(t, EntityID("e1"), result[0].ID())
}

func TestWorld_Query_AllMissingKeyReturnsEmptyImmediately(t *testing.T) {
	w := newTestWorld()
	mustAddEntity(t, w, NewEntity("e1"))

	result := w.Query().WithAll(keyPosition, keyHealth).Execute()
	assert.Empty(t, result)
}

func TestWorld_Query_AnyUnions(t *testing.T) {
	w := newTestWorld()
	e1 := NewEntity("e1")
	e1.AddComponent(&PositionComponent{})
	mustAddEntity(t, w, e1)

	e2 := NewEntity("e2")
	e2.AddComponent(&VelocityComponent{})
	mustAddEntity(t, w, e2)

	e3 := NewEntity("e3")
	mustAddEntity(t, w, e3)

	result := w.Query().WithAny(keyPosition, keyVelocity).Execute()
	assert.Len(t, result, 2)
}

func TestWorld_Query_NoneSubtracts(t *testing.T) {
	w := newTestWorld()
	e1 := NewEntity("e1")
	e1.AddComponent(&PositionComponent{})
	mustAddEntity(t, w, e1)
	mustAddEntity(t, w, NewEntity("e2"))

	result := w.Query().WithNone(keyPosition).Execute()
	require.Len(t, result, 1)
	assert.Equal(t, EntityID("e2"), result[0].ID())
}

func TestWorld_Query_DuplicateComponentsTolerated(t *testing.T) {
	w := newTestWorld()
	e1 := NewEntity("e1")
	e1.AddComponent(&PositionComponent{})
	mustAddEntity(t, w, e1)

	result := w.Query().WithAll(keyPosition, keyPosition).Execute()
	assert.Len(t, result, 1)
}

func TestWorld_Query_CacheHitOnSecondIdenticalQuery(t *testing.T) {
	w := newTestWorld()
	e1 := NewEntity("e1")
	e1.AddComponent(&PositionComponent{})
	mustAddEntity(t, w, e1)

	w.Query().WithAll(keyPosition).Execute()
	stats := w.GetCacheStats()
	assert.EqualValues(t, 1, stats.CacheMisses)

	w.Query().WithAll(keyPosition).Execute()
	stats = w.GetCacheStats()
	assert.EqualValues(t, 1, stats.CacheHits)
	assert.EqualValues(t, 1, stats.CacheMisses)
}

func TestWorld_Query_CacheInvalidatedOnMutation(t *testing.T) {
	w := newTestWorld()
	e1 := NewEntity("e1")
	e1.AddComponent(&PositionComponent{})
	mustAddEntity(t, w, e1)

	w.Query().WithAll(keyPosition).Execute()
	require.EqualValues(t, 1, w.GetCacheStats().CachedQueries)

	e2 := NewEntity("e2")
	e2.AddComponent(&PositionComponent{})
	mustAddEntity(t, w, e2)

	assert.EqualValues(t, 0, w.GetCacheStats().CachedQueries, "any membership-affecting mutation must flush the cache")
}

func TestWorld_Query_MinSeedEquivalentToNaiveIntersection(t *testing.T) {
	w := newTestWorld()
	for i := 0; i < 20; i++ {
		e := NewEntity(EntityID(string(rune('a' + i))))
		e.AddComponent(&PositionComponent{})
		if i%2 == 0 {
			e.AddComponent(&VelocityComponent{})
		}
		if i%5 == 0 {
			e.AddComponent(&HealthComponent{})
		}
		mustAddEntity(t, w, e)
	}

	planner := w.Query().WithAll(keyPosition, keyVelocity, keyHealth).Execute()

	all := w.Query().Execute()
	naive := make(map[EntityID]bool)
	for _, e := range all {
		if e.HasComponent(keyPosition) && e.HasComponent(keyVelocity) && e.HasComponent(keyHealth) {
			naive[e.ID()] = true
		}
	}

	require.Len(t, planner, len(naive))
	for _, e := range planner {
		assert.True(t, naive[e.ID()])
	}
}

func TestWorld_Query_Idempotent(t *testing.T) {
	w := newTestWorld()
	e1 := NewEntity("e1")
	e1.AddComponent(&PositionComponent{})
	mustAddEntity(t, w, e1)

	first := w.Query().WithAll(keyPosition).Execute()
	second := w.Query().WithAll(keyPosition).Execute()
	assert.ElementsMatch(t, idsOf(first), idsOf(second))
}

func TestWorld_Query_EnabledOnlyFiltersDisabledEntities(t *testing.T) {
	w := newTestWorld()
	e1 := NewEntity("e1")
	e1.AddComponent(&PositionComponent{})
	mustAddEntity(t, w, e1)
	w.DisableEntity(e1)

	enabledResult := w.Query().WithAll(keyPosition).EnabledOnly().Execute()
	assert.Empty(t, enabledResult)

	disabledResult := w.Query().WithAll(keyPosition).DisabledOnly().Execute()
	assert.Len(t, disabledResult, 1)
}

func idsOf(entities []*Entity) []EntityID {
	out := make([]EntityID, len(entities))
	for i, e := range entities {
		out[i] = e.ID()
	}
	return out
}
