package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch_Evaluate_AllAnyNone(t *testing.T) {
	e := NewEntity("e1")
	e.AddComponent(&PositionComponent{})
	e.AddComponent(&VelocityComponent{})

	assert.True(t, Match{All: []ComponentTypeKey{keyPosition, keyVelocity}}.evaluate(e))
	assert.False(t, Match{All: []ComponentTypeKey{keyPosition, keyHealth}}.evaluate(e))
	assert.True(t, Match{Any: []ComponentTypeKey{keyHealth, keyVelocity}}.evaluate(e))
	assert.False(t, Match{Any: []ComponentTypeKey{keyHealth, keyTag}}.evaluate(e))
	assert.True(t, Match{None: []ComponentTypeKey{keyHealth}}.evaluate(e))
	assert.False(t, Match{None: []ComponentTypeKey{keyPosition}}.evaluate(e))
}

func TestObserverDispatcher_Add_RejectsEmptyWatch(t *testing.T) {
	d := newObserverDispatcher(false)
	o := &recordingObserver{name: "bad", watch: ""}
	err := d.Add(o)
	assert.Error(t, err)
}

func TestObserverDispatcher_DispatchAdded_GatedByMatch(t *testing.T) {
	w := newTestWorld()
	d := newObserverDispatcher(false)
	o := &recordingObserver{name: "obs", watch: keyPosition, match: Match{All: []ComponentTypeKey{keyVelocity}}}
	require.NoError(t, d.Add(o))

	withVel := NewEntity("with-vel")
	withVel.AddComponent(&VelocityComponent{})
	withoutVel := NewEntity("without-vel")

	d.dispatchAdded(w, keyPosition, withVel)
	d.dispatchAdded(w, keyPosition, withoutVel)
	w.flushDeferred()

	assert.Equal(t, []EntityID{"with-vel"}, o.added)
}

func TestObserverDispatcher_DispatchRemoved_Unconditional(t *testing.T) {
	w := newTestWorld()
	d := newObserverDispatcher(false)
	o := &recordingObserver{name: "obs", watch: keyPosition, match: Match{All: []ComponentTypeKey{keyVelocity}}}
	require.NoError(t, d.Add(o))

	e := NewEntity("e1") // does not satisfy the match query at all

	d.dispatchRemoved(w, keyPosition, e)
	w.flushDeferred()

	assert.Equal(t, []EntityID{"e1"}, o.removed, "removed notifications bypass the match query by design")
}

func TestObserverDispatcher_RegistrationOrderPreserved(t *testing.T) {
	w := newTestWorld()
	d := newObserverDispatcher(false)
	first := &recordingObserver{name: "first", watch: keyPosition}
	second := &recordingObserver{name: "second", watch: keyPosition}
	require.NoError(t, d.Add(first))
	require.NoError(t, d.Add(second))
	assert.Equal(t, []Observer{first, second}, d.orderedFor(keyPosition))

	e := NewEntity("e1")
	d.dispatchAdded(w, keyPosition, e)
	w.flushDeferred()

	assert.Equal(t, []EntityID{"e1"}, first.added)
	assert.Equal(t, []EntityID{"e1"}, second.added)
}

func TestObserverDispatcher_Remove(t *testing.T) {
	d := newObserverDispatcher(false)
	o := &recordingObserver{name: "obs", watch: keyPosition}
	require.NoError(t, d.Add(o))

	d.Remove("obs")
	assert.Empty(t, d.orderedFor(keyPosition))
}

func TestWorld_ObserverFiresOnceOnComponentAdded(t *testing.T) {
	w := newTestWorld()
	o := &recordingObserver{name: "obs", watch: keyPosition, match: Match{All: []ComponentTypeKey{keyPosition}}}
	require.NoError(t, w.AddObserver(o))

	e := NewEntity("e1")
	require.NoError(t, w.AddEntity(e))
	e.AddComponent(&PositionComponent{})

	require.NoError(t, w.Process(0.016, ""))

	assert.Equal(t, []EntityID{"e1"}, o.added)
}
