package ecs

// entitySet is a non-owning set of entities, keyed by id for O(1)
// membership and removal.
type entitySet map[EntityID]*Entity

func (s entitySet) clone() entitySet {
	out := make(entitySet, len(s))
	for id, e := range s {
		out[id] = e
	}
	return out
}

// componentIndex is the three-map component index: union holds every
// entity carrying a component-type, enabled/disabled partition union by
// the entity's current enabled flag. Empty sets are always evicted so
// that `has_key` is equivalent to "maps to a non-empty set".
type componentIndex struct {
	union    map[ComponentTypeKey]entitySet
	enabled  map[ComponentTypeKey]entitySet
	disabled map[ComponentTypeKey]entitySet
}

func newComponentIndex() *componentIndex {
	return &componentIndex{
		union:    make(map[ComponentTypeKey]entitySet),
		enabled:  make(map[ComponentTypeKey]entitySet),
		disabled: make(map[ComponentTypeKey]entitySet),
	}
}

func (ci *componentIndex) activeSet(key ComponentTypeKey, enabledOnly bool) entitySet {
	if enabledOnly {
		return ci.enabled[key]
	}
	return ci.disabled[key]
}

// addEntityToIndex inserts e into the union index and into enabled or
// disabled depending on e's current flag.
func (ci *componentIndex) addEntityToIndex(e *Entity, key ComponentTypeKey) {
	insert(ci.union, key, e)
	if e.Enabled() {
		insert(ci.enabled, key, e)
	} else {
		insert(ci.disabled, key, e)
	}
}

// removeEntityFromIndex deletes e from all three maps for key, evicting
// the key entirely once its set becomes empty. Removing an entity that
// isn't present is a no-op.
func (ci *componentIndex) removeEntityFromIndex(e *Entity, key ComponentTypeKey) {
	remove(ci.union, key, e.ID())
	remove(ci.enabled, key, e.ID())
	remove(ci.disabled, key, e.ID())
}

// moveEntityToEnabled relocates e from the disabled set to the enabled set
// for every component key it currently carries in the union index.
func (ci *componentIndex) moveEntityToEnabled(e *Entity) {
	for _, key := range e.ComponentKeys() {
		remove(ci.disabled, key, e.ID())
		insert(ci.enabled, key, e)
	}
}

// moveEntityToDisabled is the inverse of moveEntityToEnabled.
func (ci *componentIndex) moveEntityToDisabled(e *Entity) {
	for _, key := range e.ComponentKeys() {
		remove(ci.enabled, key, e.ID())
		insert(ci.disabled, key, e)
	}
}

// removeEntityEverywhere drops e from all three maps across every key it
// is known under; used by remove_entity.
func (ci *componentIndex) removeEntityEverywhere(e *Entity, keys []ComponentTypeKey) {
	for _, key := range keys {
		ci.removeEntityFromIndex(e, key)
	}
}

func (ci *componentIndex) unionSet(key ComponentTypeKey) entitySet { return ci.union[key] }

func (ci *componentIndex) clear() {
	ci.union = make(map[ComponentTypeKey]entitySet)
	ci.enabled = make(map[ComponentTypeKey]entitySet)
	ci.disabled = make(map[ComponentTypeKey]entitySet)
}

func insert(m map[ComponentTypeKey]entitySet, key ComponentTypeKey, e *Entity) {
	set, ok := m[key]
	if !ok {
		set = make(entitySet)
		m[key] = set
	}
	set[e.ID()] = e
}

func remove(m map[ComponentTypeKey]entitySet, key ComponentTypeKey, id EntityID) {
	set, ok := m[key]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(m, key)
	}
}
