package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const relLikes ComponentTypeKey = "likes"

func TestRelationshipIndex_ForwardAlwaysRecorded(t *testing.T) {
	idx := newRelationshipIndex()
	r := Relationship{Source: "e1", Relation: relLikes, Target: RelationTarget{Tag: "cats"}}
	idx.add(r)

	assert.Contains(t, idx.Forward(relLikes), EntityID("e1"))
	assert.Empty(t, idx.Reverse(relLikes), "tag targets never populate the reverse index")
}

func TestRelationshipIndex_ReverseOnlyForLiveEntityTarget(t *testing.T) {
	idx := newRelationshipIndex()
	target := NewEntity("target")
	r := Relationship{Source: "source", Relation: relLikes, Target: RelationTarget{Entity: target}}
	idx.add(r)

	assert.Contains(t, idx.Forward(relLikes), EntityID("source"))
	assert.Contains(t, idx.Reverse(relLikes), EntityID("target"))
}

func TestRelationshipIndex_StaleTargetSkipsReverseButKeepsForward(t *testing.T) {
	idx := newRelationshipIndex()
	target := NewEntity("target")
	target.markDestroyed()
	r := Relationship{Source: "source", Relation: relLikes, Target: RelationTarget{Entity: target}}

	idx.add(r)

	assert.Contains(t, idx.Forward(relLikes), EntityID("source"))
	assert.Empty(t, idx.Reverse(relLikes))
}

func TestRelationshipIndex_RemoveIsIdempotent(t *testing.T) {
	idx := newRelationshipIndex()
	r := Relationship{Source: "e1", Relation: relLikes, Target: RelationTarget{Tag: "cats"}}

	assert.NotPanics(t, func() {
		idx.remove(r)
		idx.remove(r)
	})
}

func TestRelationshipIndex_AddThenRemove_EvictsEmptyLists(t *testing.T) {
	idx := newRelationshipIndex()
	target := NewEntity("target")
	r := Relationship{Source: "source", Relation: relLikes, Target: RelationTarget{Entity: target}}

	idx.add(r)
	idx.remove(r)

	assert.Empty(t, idx.forward[relLikes])
	assert.Empty(t, idx.reverse[reverseKey(relLikes)])
}

func TestRelationshipIndex_AddUniqueDoesNotDuplicate(t *testing.T) {
	idx := newRelationshipIndex()
	r := Relationship{Source: "e1", Relation: relLikes, Target: RelationTarget{Tag: "cats"}}
	idx.add(r)
	idx.add(r)

	assert.Len(t, idx.Forward(relLikes), 1)
}
