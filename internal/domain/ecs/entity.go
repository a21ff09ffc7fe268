package ecs

import (
	"sync"

	"github.com/google/uuid"
)

// EntityID is the stable string identity of an entity. It is either
// supplied by the caller or auto-assigned as a fresh UUID on add_entity.
type EntityID string

// entityEvents are the four callback slots an entity reports through. The
// world wires these in add_entity and clears them in remove_entity; they
// are a direct-callback contract between entity and world rather than a
// generic publish/subscribe bus, since the set of listeners is always
// exactly one (the owning world).
type entityEvents struct {
	onComponentAdded     func(key ComponentTypeKey)
	onComponentRemoved   func(key ComponentTypeKey)
	onRelationshipChange func(r Relationship, added bool)
	onPropertyChanged    func(change ComponentChange)
}

// Entity owns a bag of components and relationships plus an enabled flag.
// Components are exclusively owned by their entity; index sets elsewhere
// in the world hold non-owning references to the Entity pointer itself.
type Entity struct {
	mu         sync.RWMutex
	id         EntityID
	components map[ComponentTypeKey]Component
	relations  []Relationship
	enabled    bool
	alive      bool
	events     entityEvents
}

// NewEntity constructs an entity. Passing an empty id is valid and
// expected: add_entity assigns a fresh UUID when id is empty.
func NewEntity(id EntityID) *Entity {
	return &Entity{
		id:         id,
		components: make(map[ComponentTypeKey]Component),
		enabled:    true,
		alive:      true,
	}
}

// ID returns the entity's identity.
func (e *Entity) ID() EntityID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.id
}

// assignID is used by the store when the caller supplied an empty id.
func (e *Entity) assignID() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.id == "" {
		e.id = EntityID(uuid.NewString())
	}
}

// IsAlive reports whether the entity has not yet been destroyed.
func (e *Entity) IsAlive() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.alive
}

// Enabled reports the entity's enabled flag.
func (e *Entity) Enabled() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.enabled
}

// setEnabled flips the flag under the entity lock. It emits no event
// itself; World.DisableEntity and World.EnableEntity emit entity_disabled
// and entity_enabled around it.
func (e *Entity) setEnabled(v bool) {
	e.mu.Lock()
	e.enabled = v
	e.mu.Unlock()
}

// AddComponent stores c under its own ComponentTypeKey, overwriting any
// existing component of the same type, and raises component_added.
func (e *Entity) AddComponent(c Component) {
	key := c.ComponentType()
	e.mu.Lock()
	e.components[key] = c
	cb := e.events.onComponentAdded
	e.mu.Unlock()

	if notifier, ok := c.(PropertyChangeNotifier); ok {
		notifier.OnPropertyChange(func(property string, old, new interface{}) {
			e.reportPropertyChange(key, property, old, new)
		})
	}

	if cb != nil {
		cb(key)
	}
}

// GetComponent returns the component stored under key, if any.
func (e *Entity) GetComponent(key ComponentTypeKey) (Component, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	c, ok := e.components[key]
	return c, ok
}

// HasComponent reports whether a component of the given key is present.
func (e *Entity) HasComponent(key ComponentTypeKey) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.components[key]
	return ok
}

// RemoveComponent deletes the component under key and raises
// component_removed. Removing an absent key is a no-op (idempotent).
func (e *Entity) RemoveComponent(key ComponentTypeKey) {
	e.mu.Lock()
	_, ok := e.components[key]
	if ok {
		delete(e.components, key)
	}
	cb := e.events.onComponentRemoved
	e.mu.Unlock()

	if ok && cb != nil {
		cb(key)
	}
}

// ComponentKeys returns a snapshot of the entity's current component keys.
func (e *Entity) ComponentKeys() []ComponentTypeKey {
	e.mu.RLock()
	defer e.mu.RUnlock()
	keys := make([]ComponentTypeKey, 0, len(e.components))
	for k := range e.components {
		keys = append(keys, k)
	}
	return keys
}

// AddRelationship appends r to the entity's relationship list and raises
// relationship_added.
func (e *Entity) AddRelationship(r Relationship) {
	e.mu.Lock()
	e.relations = append(e.relations, r)
	cb := e.events.onRelationshipChange
	e.mu.Unlock()

	if cb != nil {
		cb(r, true)
	}
}

// RemoveRelationship removes the first relationship matching r by value
// and raises relationship_removed. A non-matching removal is a no-op.
func (e *Entity) RemoveRelationship(r Relationship) {
	e.mu.Lock()
	idx := -1
	for i, existing := range e.relations {
		if existing == r {
			idx = i
			break
		}
	}
	if idx >= 0 {
		e.relations = append(e.relations[:idx], e.relations[idx+1:]...)
	}
	cb := e.events.onRelationshipChange
	e.mu.Unlock()

	if idx >= 0 && cb != nil {
		cb(r, false)
	}
}

// Relationships returns a snapshot of the entity's relationships.
func (e *Entity) Relationships() []Relationship {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Relationship, len(e.relations))
	copy(out, e.relations)
	return out
}

func (e *Entity) reportPropertyChange(key ComponentTypeKey, property string, old, new interface{}) {
	e.mu.RLock()
	cb := e.events.onPropertyChanged
	e.mu.RUnlock()
	if cb != nil {
		cb(ComponentChange{Entity: e, Key: key, Property: property, Old: old, New: new})
	}
}

// subscribe wires the four entity events to world-owned handlers.
func (e *Entity) subscribe(ev entityEvents) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = ev
}

// unsubscribe disconnects handlers; disconnecting an already-unconnected
// entity is a safe no-op, matching the double-disconnect failure-semantics
// rule.
func (e *Entity) unsubscribe() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = entityEvents{}
}

// markDestroyed flips alive to false; called once by remove_entity.
func (e *Entity) markDestroyed() {
	e.mu.Lock()
	e.alive = false
	e.mu.Unlock()
}
