package ecs

// Concrete component types are deliberately not shipped by the core
// (spec.md treats "component authoring helpers" as a host concern); these
// fixtures exist only for the test suite.

const (
	keyPosition ComponentTypeKey = "test.Position"
	keyVelocity ComponentTypeKey = "test.Velocity"
	keyHealth   ComponentTypeKey = "test.Health"
	keyTag      ComponentTypeKey = "test.Tag"
)

type PositionComponent struct {
	X, Y float64
}

func (PositionComponent) ComponentType() ComponentTypeKey { return keyPosition }

type VelocityComponent struct {
	X, Y float64
}

func (VelocityComponent) ComponentType() ComponentTypeKey { return keyVelocity }

type HealthComponent struct {
	Current, Max int
	onChange     func(property string, old, new interface{})
}

func (HealthComponent) ComponentType() ComponentTypeKey { return keyHealth }

func (h *HealthComponent) OnPropertyChange(report func(property string, old, new interface{})) {
	h.onChange = report
}

// SetCurrent mutates Current and reports the change, exercising the
// property-changed event path.
func (h *HealthComponent) SetCurrent(v int) {
	old := h.Current
	h.Current = v
	if h.onChange != nil {
		h.onChange("Current", old, v)
	}
}

type TagComponent struct{ Name string }

func (TagComponent) ComponentType() ComponentTypeKey { return keyTag }

// movementSystem moves every entity with Position+Velocity by Velocity*delta.
type movementSystem struct {
	SystemBase
}

func newMovementSystem() *movementSystem {
	return &movementSystem{SystemBase: NewSystemBase("movement", "")}
}

func (s *movementSystem) Base() *SystemBase { return &s.SystemBase }
func (s *movementSystem) Setup(w *World) error { return nil }
func (s *movementSystem) BuildQuery(w *World) *QueryBuilder {
	return w.Query().WithAll(keyPosition, keyVelocity)
}
func (s *movementSystem) Subsystems(w *World) []SubsystemTuple { return nil }
func (s *movementSystem) Process(e *Entity, delta float64) error {
	if e == nil {
		return nil
	}
	posC, _ := e.GetComponent(keyPosition)
	velC, _ := e.GetComponent(keyVelocity)
	pos := posC.(*PositionComponent)
	vel := velC.(*VelocityComponent)
	pos.X += vel.X * delta
	pos.Y += vel.Y * delta
	return nil
}

// countingSystem just counts how many times Process ran, for dispatch
// order assertions.
type countingSystem struct {
	SystemBase
	calls *[]string
}

func newCountingSystem(name, group string, calls *[]string) *countingSystem {
	return &countingSystem{SystemBase: NewSystemBase(name, group), calls: calls}
}

func (s *countingSystem) Base() *SystemBase   { return &s.SystemBase }
func (s *countingSystem) Setup(w *World) error { return nil }
func (s *countingSystem) BuildQuery(w *World) *QueryBuilder {
	return w.Query().WithAll(keyTag)
}
func (s *countingSystem) Subsystems(w *World) []SubsystemTuple { return nil }
func (s *countingSystem) Process(e *Entity, delta float64) error {
	*s.calls = append(*s.calls, s.Name())
	return nil
}

// recordingObserver records every invocation it receives.
type recordingObserver struct {
	name   string
	watch  ComponentTypeKey
	match  Match
	added  []EntityID
	removed []EntityID
	changed []ComponentChange
}

func (o *recordingObserver) Name() string          { return o.name }
func (o *recordingObserver) Watch() ComponentTypeKey { return o.watch }
func (o *recordingObserver) Match() Match          { return o.match }
func (o *recordingObserver) OnComponentAdded(e *Entity)   { o.added = append(o.added, e.ID()) }
func (o *recordingObserver) OnComponentRemoved(e *Entity) { o.removed = append(o.removed, e.ID()) }
func (o *recordingObserver) OnComponentChanged(c ComponentChange) {
	o.changed = append(o.changed, c)
}
