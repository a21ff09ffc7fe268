package ecs

// RelationTarget is either a live entity or a bare type tag (a relation can
// point at a category of thing rather than one specific instance).
type RelationTarget struct {
	Entity *Entity // non-nil when the target is a concrete entity
	Tag    string  // used when Entity is nil
}

// IsEntity reports whether the target names a concrete entity.
func (t RelationTarget) IsEntity() bool { return t.Entity != nil }

// valid defends against a stale, already-destroyed entity target: a
// relationship index must never reverse-index a freed reference.
func (t RelationTarget) valid() bool {
	if t.Entity == nil {
		return true // tag targets are always "valid"
	}
	return t.Entity.IsAlive()
}

// Relationship is a (source, relation, target) triple. The forward index
// keys by the relation's ComponentTypeKey; the reverse index exists only
// when the target is a live entity and keys by "reverse_<relation-key>".
type Relationship struct {
	Source   EntityID
	Relation ComponentTypeKey
	Target   RelationTarget
}

const reverseKeyPrefix = "reverse_"

func reverseKey(relation ComponentTypeKey) ComponentTypeKey {
	return ComponentTypeKey(reverseKeyPrefix + string(relation))
}

// relationshipIndex holds the forward relation->[]entity and reverse
// relation->[]target maps, maintained incrementally as entities gain or
// lose relationships.
type relationshipIndex struct {
	forward map[ComponentTypeKey][]EntityID
	reverse map[ComponentTypeKey][]EntityID // keyed by reverseKey(relation); values are target entity ids
}

func newRelationshipIndex() *relationshipIndex {
	return &relationshipIndex{
		forward: make(map[ComponentTypeKey][]EntityID),
		reverse: make(map[ComponentTypeKey][]EntityID),
	}
}

// add records r in the forward index unconditionally, and in the reverse
// index only if the target is a valid (live) entity — a stale target is
// silently skipped for reverse-indexing but the forward index still gets
// the entry.
func (idx *relationshipIndex) add(r Relationship) {
	idx.forward[r.Relation] = appendUnique(idx.forward[r.Relation], r.Source)

	if r.Target.valid() && r.Target.IsEntity() {
		rk := reverseKey(r.Relation)
		idx.reverse[rk] = appendUnique(idx.reverse[rk], r.Target.Entity.ID())
	}
}

// remove is idempotent: removing an entry that isn't present in either map
// leaves both maps untouched, per the "still idempotent" failure semantics.
func (idx *relationshipIndex) remove(r Relationship) {
	idx.forward[r.Relation] = removeValue(idx.forward[r.Relation], r.Source)
	if len(idx.forward[r.Relation]) == 0 {
		delete(idx.forward, r.Relation)
	}

	if r.Target.IsEntity() {
		rk := reverseKey(r.Relation)
		idx.reverse[rk] = removeValue(idx.reverse[rk], r.Target.Entity.ID())
		if len(idx.reverse[rk]) == 0 {
			delete(idx.reverse, rk)
		}
	}
}

// Forward returns the entities that have `relation` pointed outward, i.e.
// relation -> [source entities].
func (idx *relationshipIndex) Forward(relation ComponentTypeKey) []EntityID {
	return cloneIDs(idx.forward[relation])
}

// Reverse returns the targets of `relation`, i.e. reverse_relation -> [targets].
func (idx *relationshipIndex) Reverse(relation ComponentTypeKey) []EntityID {
	return cloneIDs(idx.reverse[reverseKey(relation)])
}

func (idx *relationshipIndex) clear() {
	idx.forward = make(map[ComponentTypeKey][]EntityID)
	idx.reverse = make(map[ComponentTypeKey][]EntityID)
}

func appendUnique(list []EntityID, id EntityID) []EntityID {
	for _, existing := range list {
		if existing == id {
			return list
		}
	}
	return append(list, id)
}

func removeValue(list []EntityID, id EntityID) []EntityID {
	for i, existing := range list {
		if existing == id {
			// swap-with-last then truncate: O(1) removal, order not
			// significant for these index lists.
			list[i] = list[len(list)-1]
			return list[:len(list)-1]
		}
	}
	return list
}

func cloneIDs(list []EntityID) []EntityID {
	out := make([]EntityID, len(list))
	copy(out, list)
	return out
}
