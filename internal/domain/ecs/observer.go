package ecs

// Match is the observer's match query: with_all/with_any/with_none over
// component keys, evaluated against the single entity the triggering
// event concerns.
type Match struct {
	All  []ComponentTypeKey
	Any  []ComponentTypeKey
	None []ComponentTypeKey
}

// evaluate checks m against e directly. This is referentially equivalent
// to "run the planner and check membership" for a single known entity,
// without paying for an index-wide query just to test one entity.
func (m Match) evaluate(e *Entity) bool {
	for _, key := range m.All {
		if !e.HasComponent(key) {
			return false
		}
	}
	if len(m.Any) > 0 {
		any := false
		for _, key := range m.Any {
			if e.HasComponent(key) {
				any = true
				break
			}
		}
		if !any {
			return false
		}
	}
	for _, key := range m.None {
		if e.HasComponent(key) {
			return false
		}
	}
	return true
}

// Observer is a reactive handler bound to a single watched component type
// and a match query. Lifecycle mirrors systems, but observers are never
// scheduled: they are invoked only by the observer dispatcher.
type Observer interface {
	Name() string
	Watch() ComponentTypeKey
	Match() Match
	OnComponentAdded(e *Entity)
	OnComponentRemoved(e *Entity)
	OnComponentChanged(change ComponentChange)
}

// observerDispatcher routes component_added/removed/changed events to the
// observers watching the affected component type, in registration order.
// Handler invocation is deferred to the world's next safe point.
type observerDispatcher struct {
	order []Observer
	byKey map[ComponentTypeKey][]Observer
	debug bool
}

func newObserverDispatcher(debug bool) *observerDispatcher {
	return &observerDispatcher{byKey: make(map[ComponentTypeKey][]Observer), debug: debug}
}

// Add registers o. A Watch() of "" is a programming error (assertion
// class): an observer must name exactly one watched component type.
func (d *observerDispatcher) Add(o Observer) error {
	key := o.Watch()
	debugAssert(d.debug, key != "", "ObserverDispatcher.Add", "observer.Watch() must not be empty")
	if key == "" {
		return &AssertionError{Op: "ObserverDispatcher.Add", Message: "observer.Watch() must not be empty"}
	}
	d.order = append(d.order, o)
	d.byKey[key] = append(d.byKey[key], o)
	return nil
}

// Remove unregisters o by name; a no-op if it isn't registered.
func (d *observerDispatcher) Remove(name string) {
	for i, o := range d.order {
		if o.Name() == name {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	for key, list := range d.byKey {
		for i, o := range list {
			if o.Name() == name {
				d.byKey[key] = append(list[:i], list[i+1:]...)
				break
			}
		}
	}
}

// dispatchAdded notifies, in registration order, every observer watching
// key whose match query is satisfied by e — deferred to the world's next
// safe point.
func (d *observerDispatcher) dispatchAdded(w *World, key ComponentTypeKey, e *Entity) {
	for _, o := range d.orderedFor(key) {
		o := o
		if o.Match().evaluate(e) {
			w.deferCall(func() {
				o.OnComponentAdded(e)
				if w.logger != nil {
					w.logger.LogObserverDispatch(o.Name(), string(e.ID()), "added")
				}
			})
		}
	}
}

// dispatchRemoved notifies every observer watching key unconditionally:
// the component is already gone, so a match-query check would make
// removal unobservable.
func (d *observerDispatcher) dispatchRemoved(w *World, key ComponentTypeKey, e *Entity) {
	for _, o := range d.orderedFor(key) {
		o := o
		w.deferCall(func() {
			o.OnComponentRemoved(e)
			if w.logger != nil {
				w.logger.LogObserverDispatch(o.Name(), string(e.ID()), "removed")
			}
		})
	}
}

// dispatchChanged behaves like dispatchAdded: the match query gates
// whether the handler fires.
func (d *observerDispatcher) dispatchChanged(w *World, change ComponentChange) {
	for _, o := range d.orderedFor(change.Key) {
		o := o
		if o.Match().evaluate(change.Entity) {
			w.deferCall(func() {
				o.OnComponentChanged(change)
				if w.logger != nil {
					w.logger.LogObserverDispatch(o.Name(), string(change.Entity.ID()), "changed")
				}
			})
		}
	}
}

// orderedFor returns the observers watching key, already in registration
// order because byKey entries are appended in the order Add was called.
func (d *observerDispatcher) orderedFor(key ComponentTypeKey) []Observer {
	return d.byKey[key]
}
