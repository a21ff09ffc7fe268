package ecs

import "fmt"

// Dependencies declares ordering constraints for the scheduler's
// topological sort: if S declares After: [T], T must precede S; if S
// declares Before: [T], S must precede T.
type Dependencies struct {
	Before []string
	After  []string
}

// SystemBase carries the scheduling metadata spec.md attributes to every
// system: group, active/paused gates, process_empty, parallel settings,
// and the lazily-memoized query builder / subsystem tuple list. Concrete
// systems embed SystemBase and expose it via Base().
type SystemBase struct {
	name         string
	group        string
	deps         Dependencies
	active       bool
	paused       bool
	processEmpty bool
	parallel     bool
	threshold    int

	subsBuilt  bool
	cachedSubs []SubsystemTuple
}

// NewSystemBase constructs a SystemBase with the given name, defaulting
// active=true and paused=false, matching the "registered -> setup-complete
// -> active" lifecycle's starting point.
func NewSystemBase(name, group string) SystemBase {
	return SystemBase{name: name, group: group, active: true, threshold: 50}
}

func (b *SystemBase) Name() string           { return b.name }
func (b *SystemBase) Group() string          { return b.group }
func (b *SystemBase) Deps() Dependencies     { return b.deps }
func (b *SystemBase) SetDeps(d Dependencies) { b.deps = d }
func (b *SystemBase) Active() bool           { return b.active }
func (b *SystemBase) SetActive(v bool)       { b.active = v }
func (b *SystemBase) Paused() bool           { return b.paused }
func (b *SystemBase) SetPaused(v bool)       { b.paused = v }
func (b *SystemBase) ProcessEmpty() bool     { return b.processEmpty }
func (b *SystemBase) SetProcessEmpty(v bool) { b.processEmpty = v }
func (b *SystemBase) Parallel() (bool, int)  { return b.parallel, b.threshold }
func (b *SystemBase) SetParallel(on bool, threshold int) {
	b.parallel = on
	if threshold > 0 {
		b.threshold = threshold
	}
}

// System is the behavior every scheduled unit implements. BuildQuery may
// return nil when the system relies purely on subsystem tuples. Subsystems
// may return nil/empty, which the scheduler treats as "this system uses
// the single-query path" and never calls again (spec.md's "first call
// returns empty -> mark single-query" rule).
type System interface {
	Base() *SystemBase
	Setup(w *World) error
	BuildQuery(w *World) *QueryBuilder
	Subsystems(w *World) []SubsystemTuple
	Process(entity *Entity, delta float64) error
}

// BatchProcessor is an optional interface a System can implement to
// override the default process_all behavior (spec.md §4.E). Without it,
// the scheduler's default is: empty+process_empty -> call Process(nil,..)
// once; otherwise parallel-dispatch or sequential iteration over Process.
type BatchProcessor interface {
	ProcessAll(entities []*Entity, delta float64) error
}

// PauseGate is an optional interface letting a system compute its own
// paused flag from the scheduler's global pause signal, per
// update_pause_state's "can_process() which factors in its own process
// mode" rule. Without it, paused is simply set to the global flag.
type PauseGate interface {
	CanProcess(globalPaused bool) bool
}

// Scheduler groups systems by name and dispatches them in topologically
// sorted order each tick.
type Scheduler struct {
	groups map[string][]System
	byName map[string]System
	debug  bool
}

func newScheduler(debug bool) *Scheduler {
	return &Scheduler{
		groups: make(map[string][]System),
		byName: make(map[string]System),
		debug:  debug,
	}
}

// AddSystem appends sys to its group; when sort is true the whole group is
// re-sorted topologically afterward.
func (s *Scheduler) AddSystem(sys System, sort bool) error {
	b := sys.Base()
	s.groups[b.group] = append(s.groups[b.group], sys)
	s.byName[b.name] = sys
	if sort {
		return s.SortGroup(b.group)
	}
	return nil
}

// RemoveSystem evicts sys by name from its group, deleting the group
// entirely once it's empty.
func (s *Scheduler) RemoveSystem(name string) {
	sys, ok := s.byName[name]
	if !ok {
		return
	}
	group := sys.Base().group
	list := s.groups[group]
	for i, existing := range list {
		if existing.Base().name == name {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(s.groups, group)
	} else {
		s.groups[group] = list
	}
	delete(s.byName, name)
}

// RemoveGroup removes every system in group. Per spec.md's open question
// about remove_system_group relying on snapshot semantics, this iterates
// over an explicit copy rather than the live slice.
func (s *Scheduler) RemoveGroup(group string) {
	snapshot := append([]System(nil), s.groups[group]...)
	for _, sys := range snapshot {
		s.RemoveSystem(sys.Base().name)
	}
}

// GetSystem returns the named system, if registered.
func (s *Scheduler) GetSystem(name string) (System, bool) {
	sys, ok := s.byName[name]
	return sys, ok
}

// SortGroup topologically sorts the group's systems by their declared
// Before/After dependencies using Kahn's algorithm; ties are broken by
// insertion (original slice) order. A cycle is rejected with an error and
// the group is left unsorted.
func (s *Scheduler) SortGroup(group string) error {
	list := s.groups[group]
	if len(list) < 2 {
		return nil
	}

	index := make(map[string]int, len(list))
	for i, sys := range list {
		index[sys.Base().name] = i
	}

	// adjacency[i] = set of j such that i must precede j
	adjacency := make([][]int, len(list))
	indegree := make([]int, len(list))

	addEdge := func(before, after string) {
		bi, ok1 := index[before]
		ai, ok2 := index[after]
		if !ok1 || !ok2 || bi == ai {
			return
		}
		adjacency[bi] = append(adjacency[bi], ai)
		indegree[ai]++
	}

	for _, sys := range list {
		name := sys.Base().name
		for _, before := range sys.Base().deps.Before {
			addEdge(name, before)
		}
		for _, after := range sys.Base().deps.After {
			addEdge(after, name)
		}
	}

	// Kahn's algorithm with a stable, insertion-ordered ready queue.
	ready := make([]int, 0, len(list))
	for i := 0; i < len(list); i++ {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	sorted := make([]System, 0, len(list))

	for len(ready) > 0 {
		// Pop the lowest-index (earliest inserted) ready node to break
		// ties by insertion order.
		minPos := 0
		for i := 1; i < len(ready); i++ {
			if ready[i] < ready[minPos] {
				minPos = i
			}
		}
		n := ready[minPos]
		ready = append(ready[:minPos], ready[minPos+1:]...)

		sorted = append(sorted, list[n])

		for _, m := range adjacency[n] {
			indegree[m]--
			if indegree[m] == 0 {
				ready = append(ready, m)
			}
		}
	}

	if len(sorted) != len(list) {
		return fmt.Errorf("ecs: cycle detected among system dependencies in group %q", group)
	}

	s.groups[group] = sorted
	return nil
}

// OrderedGroup returns the group's current dispatch order.
func (s *Scheduler) OrderedGroup(group string) []System {
	return s.groups[group]
}

// UpdatePauseState iterates every registered system and sets its paused
// flag from either its own PauseGate.CanProcess or, absent that, the
// global flag directly.
func (s *Scheduler) UpdatePauseState(paused bool) {
	for _, sys := range s.byName {
		if gate, ok := sys.(PauseGate); ok {
			sys.Base().SetPaused(!gate.CanProcess(paused))
			continue
		}
		sys.Base().SetPaused(paused)
	}
}
