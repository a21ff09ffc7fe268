package ecs

import "github.com/yourusername/ecsworld/internal/domain/event"

// Event names the world publishes on its EventBus — the host-visible
// outputs from spec.md §6. These are broadcast synchronously on the
// control thread (unlike observer handlers, which are deferred); they are
// a notification channel for host-side logging/metrics, not part of the
// mutation contract itself.
const (
	EventEntityAdded        = "entity_added"
	EventEntityEnabled      = "entity_enabled"
	EventEntityRemoved      = "entity_removed"
	EventEntityDisabled     = "entity_disabled"
	EventSystemAdded        = "system_added"
	EventSystemRemoved      = "system_removed"
	EventComponentAdded     = "component_added"
	EventComponentRemoved   = "component_removed"
	EventComponentChanged   = "component_changed"
	EventRelationshipAdded  = "relationship_added"
	EventRelationshipRemoved = "relationship_removed"
	EventCacheInvalidated   = "cache_invalidated"
)

// worldEvent is the concrete event.Event payload published for every named
// event above.
type worldEvent struct {
	name    string
	at      int64
	payload interface{}
}

func (e worldEvent) EventName() string { return e.name }
func (e worldEvent) OccurredAt() int64 { return e.at }

// Payload returns the event-specific data (an *Entity, a ComponentChange,
// a Relationship, or nil), for handlers that want more than the name.
func (e worldEvent) Payload() interface{} { return e.payload }

// Subscribe registers a handler for one of the Event* names above.
func (w *World) Subscribe(eventName string, handler event.Handler) {
	w.bus.Subscribe(eventName, handler)
}

func (w *World) emit(name string, payload interface{}) {
	if err := w.bus.Publish(worldEvent{name: name, at: w.tickCount, payload: payload}); err != nil && w.logger != nil {
		w.logger.WithField("event", name).LogError(err, "world.emit", nil)
	}
}
