package ecs

// entityStore is the id registry plus ordered entity list. World builds
// the richer add_entity/remove_entity contract (index maintenance, event
// wiring, lifecycle hooks) on top of this.
type entityStore struct {
	byID  map[EntityID]*Entity
	order []*Entity
}

func newEntityStore() *entityStore {
	return &entityStore{byID: make(map[EntityID]*Entity)}
}

// register inserts e into the registry, replacing and returning the prior
// holder of the same id (the "second registrant wins" rule), or nil if
// none existed.
func (s *entityStore) register(e *Entity) *Entity {
	prior := s.byID[e.ID()]
	s.byID[e.ID()] = e
	s.order = append(s.order, e)
	return prior
}

// deregister removes id from the registry only if it still maps to e, and
// drops e from the order list.
func (s *entityStore) deregister(e *Entity) {
	if current, ok := s.byID[e.ID()]; ok && current == e {
		delete(s.byID, e.ID())
	}
	for i, existing := range s.order {
		if existing == e {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *entityStore) byIDLookup(id EntityID) (*Entity, bool) {
	e, ok := s.byID[id]
	return e, ok
}

func (s *entityStore) has(id EntityID) bool {
	_, ok := s.byID[id]
	return ok
}

// AllEntities returns a snapshot of every registered entity in insertion
// order.
func (s *entityStore) AllEntities() []*Entity {
	out := make([]*Entity, len(s.order))
	copy(out, s.order)
	return out
}

func (s *entityStore) allSet() entitySet {
	out := make(entitySet, len(s.order))
	for _, e := range s.order {
		out[e.ID()] = e
	}
	return out
}

// purge drops every entity whose id is not in keep.
func (s *entityStore) purge(keep map[EntityID]bool) []*Entity {
	var removed []*Entity
	var kept []*Entity
	for _, e := range s.order {
		if keep[e.ID()] {
			kept = append(kept, e)
		} else {
			removed = append(removed, e)
			delete(s.byID, e.ID())
		}
	}
	s.order = kept
	return removed
}

func (s *entityStore) clear() {
	s.byID = make(map[EntityID]*Entity)
	s.order = nil
}
