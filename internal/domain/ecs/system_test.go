package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_SortGroup_RespectsAfterDependency(t *testing.T) {
	sched := newScheduler(false)
	var calls []string
	s1 := newCountingSystem("s1", "g", &calls)
	s1.SetDeps(Dependencies{After: []string{"s2"}})
	s2 := newCountingSystem("s2", "g", &calls)

	require.NoError(t, sched.AddSystem(s1, false))
	require.NoError(t, sched.AddSystem(s2, false))
	require.NoError(t, sched.SortGroup("g"))

	ordered := sched.OrderedGroup("g")
	require.Len(t, ordered, 2)
	assert.Equal(t, "s2", ordered[0].Base().Name())
	assert.Equal(t, "s1", ordered[1].Base().Name())
}

func TestScheduler_SortGroup_TiesBreakByInsertionOrder(t *testing.T) {
	sched := newScheduler(false)
	var calls []string
	require.NoError(t, sched.AddSystem(newCountingSystem("a", "g", &calls), false))
	require.NoError(t, sched.AddSystem(newCountingSystem("b", "g", &calls), false))
	require.NoError(t, sched.AddSystem(newCountingSystem("c", "g", &calls), false))
	require.NoError(t, sched.SortGroup("g"))

	ordered := sched.OrderedGroup("g")
	names := []string{ordered[0].Base().Name(), ordered[1].Base().Name(), ordered[2].Base().Name()}
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestScheduler_SortGroup_CycleIsRejected(t *testing.T) {
	sched := newScheduler(false)
	var calls []string
	s1 := newCountingSystem("s1", "g", &calls)
	s1.SetDeps(Dependencies{After: []string{"s2"}})
	s2 := newCountingSystem("s2", "g", &calls)
	s2.SetDeps(Dependencies{After: []string{"s1"}})

	require.NoError(t, sched.AddSystem(s1, false))
	require.NoError(t, sched.AddSystem(s2, false))

	err := sched.SortGroup("g")
	assert.Error(t, err)
}

func TestScheduler_RemoveSystem_EvictsEmptyGroup(t *testing.T) {
	sched := newScheduler(false)
	var calls []string
	require.NoError(t, sched.AddSystem(newCountingSystem("s1", "g", &calls), false))

	sched.RemoveSystem("s1")
	assert.Empty(t, sched.OrderedGroup("g"))
	_, ok := sched.GetSystem("s1")
	assert.False(t, ok)
}

func TestScheduler_RemoveGroup_IteratesSnapshot(t *testing.T) {
	sched := newScheduler(false)
	var calls []string
	require.NoError(t, sched.AddSystem(newCountingSystem("s1", "g", &calls), false))
	require.NoError(t, sched.AddSystem(newCountingSystem("s2", "g", &calls), false))

	assert.NotPanics(t, func() { sched.RemoveGroup("g") })
	assert.Empty(t, sched.OrderedGroup("g"))
}

func TestScheduler_UpdatePauseState_SetsGlobalFlagByDefault(t *testing.T) {
	sched := newScheduler(false)
	var calls []string
	s1 := newCountingSystem("s1", "g", &calls)
	require.NoError(t, sched.AddSystem(s1, false))

	sched.UpdatePauseState(true)
	assert.True(t, s1.Paused())

	sched.UpdatePauseState(false)
	assert.False(t, s1.Paused())
}

type gatedSystem struct {
	countingSystem
	allow bool
}

func (g *gatedSystem) CanProcess(globalPaused bool) bool { return g.allow }

func TestScheduler_UpdatePauseState_HonorsPauseGate(t *testing.T) {
	sched := newScheduler(false)
	var calls []string
	g := &gatedSystem{countingSystem: *newCountingSystem("gated", "grp", &calls), allow: true}
	require.NoError(t, sched.AddSystem(g, false))

	sched.UpdatePauseState(true)
	assert.False(t, g.Paused(), "CanProcess=true must keep the system unpaused even under a global pause")
}
