package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComponentIndex_UnionEnabledDisabledInvariant(t *testing.T) {
	idx := newComponentIndex()
	e := NewEntity("e1")
	idx.addEntityToIndex(e, keyPosition)

	assert.Contains(t, idx.union[keyPosition], e.ID())
	assert.Contains(t, idx.enabled[keyPosition], e.ID())
	assert.NotContains(t, idx.disabled[keyPosition], e.ID())
}

func TestComponentIndex_MoveToDisabledThenEnabled(t *testing.T) {
	idx := newComponentIndex()
	e := NewEntity("e1")
	e.AddComponent(&PositionComponent{})
	idx.addEntityToIndex(e, keyPosition)

	e.setEnabled(false)
	idx.moveEntityToDisabled(e)
	assert.NotContains(t, idx.enabled[keyPosition], e.ID())
	assert.Contains(t, idx.disabled[keyPosition], e.ID())

	e.setEnabled(true)
	idx.moveEntityToEnabled(e)
	assert.Contains(t, idx.enabled[keyPosition], e.ID())
	assert.NotContains(t, idx.disabled[keyPosition], e.ID())
}

func TestComponentIndex_RemoveEvictsEmptySets(t *testing.T) {
	idx := newComponentIndex()
	e := NewEntity("e1")
	idx.addEntityToIndex(e, keyPosition)

	idx.removeEntityFromIndex(e, keyPosition)

	_, inUnion := idx.union[keyPosition]
	_, inEnabled := idx.enabled[keyPosition]
	assert.False(t, inUnion, "empty union set must be evicted, not left as an empty map entry")
	assert.False(t, inEnabled, "empty enabled set must be evicted")
}

func TestComponentIndex_RemoveMissingKeyIsNoop(t *testing.T) {
	idx := newComponentIndex()
	e := NewEntity("e1")
	assert.NotPanics(t, func() { idx.removeEntityFromIndex(e, keyPosition) })
}

func TestComponentIndex_RemoveEntityEverywhere(t *testing.T) {
	idx := newComponentIndex()
	e := NewEntity("e1")
	idx.addEntityToIndex(e, keyPosition)
	idx.addEntityToIndex(e, keyVelocity)

	idx.removeEntityEverywhere(e, []ComponentTypeKey{keyPosition, keyVelocity})

	assert.Empty(t, idx.union)
}

func TestComponentIndex_MultipleEntitiesShareSet(t *testing.T) {
	idx := newComponentIndex()
	e1 := NewEntity("e1")
	e2 := NewEntity("e2")
	idx.addEntityToIndex(e1, keyPosition)
	idx.addEntityToIndex(e2, keyPosition)

	assert.Len(t, idx.union[keyPosition], 2)

	idx.removeEntityFromIndex(e1, keyPosition)
	assert.Len(t, idx.union[keyPosition], 1)
	assert.Contains(t, idx.union[keyPosition], e2.ID())
}
