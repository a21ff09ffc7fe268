package ecs

import "fmt"

// ComponentTypeKey is the stable identity a component type is indexed by.
// The design favors an interned string path (e.g. "game.Position") over a
// numeric enum so that components can be added to the runtime without a
// central registry of integer ids to keep in sync.
type ComponentTypeKey string

// Component is an opaque, entity-owned data value keyed by a stable
// ComponentTypeKey. Behavior lives in systems, not components; a component
// holds only data plus an optional hook to report property mutations.
type Component interface {
	ComponentType() ComponentTypeKey
}

// PropertyChangeNotifier is implemented by components that want edits to
// their fields to raise a component_changed event. It is optional: a
// component that never reports changes is still valid, it just never
// triggers the "changed" leg of the observer dispatcher.
type PropertyChangeNotifier interface {
	// OnPropertyChange is called by the entity when the component is added,
	// handing it a report callback; the component calls report after an
	// in-place edit and the entity forwards (property, old, new) to the world.
	OnPropertyChange(report func(property string, old, new interface{}))
}

// ComponentEventKind distinguishes the three lifecycle events an entity
// raises about its components, per the entity/world event contract.
type ComponentEventKind int

const (
	ComponentAdded ComponentEventKind = iota
	ComponentRemoved
	ComponentChanged
)

func (k ComponentEventKind) String() string {
	switch k {
	case ComponentAdded:
		return "component_added"
	case ComponentRemoved:
		return "component_removed"
	case ComponentChanged:
		return "component_changed"
	default:
		return fmt.Sprintf("ComponentEventKind(%d)", int(k))
	}
}

// ComponentChange carries the payload of a component_changed event: the
// entity and component involved, the mutated property's name, and its old
// and new values.
type ComponentChange struct {
	Entity   *Entity
	Key      ComponentTypeKey
	Property string
	Old      interface{}
	New      interface{}
}
