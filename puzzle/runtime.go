package puzzle

import (
	"fmt"
	"log"
	"slices"
	"sort"

	"github.com/milk9111/echoes/levels"
	"github.com/milk9111/echoes/physics"
)

// World is the part of the physics world the runtime builds level bodies in.
type World interface {
	AddBody(spec physics.BodySpec) (physics.Handle, error)
	RemoveBody(h physics.Handle) bool
	OnContact(fn physics.ContactHandler)
}

// Fixture is a level object placed in the world. It is the Owner of its body, which is
// how contact handlers tell level geometry from players and echoes.
type Fixture struct {
	Object levels.Object
	Handle physics.Handle
	// Open is set while a barrier's body is out of the world.
	Open bool
}

// EventKind enumerates the puzzle state changes reported by Update.
type EventKind int

const (
	SwitchPressed EventKind = iota + 1
	SwitchReleased
	BarrierOpened
	BarrierClosed
	MemoryCollected
	GoalReached
)

func (k EventKind) String() string {
	switch k {
	case SwitchPressed:
		return "switch-pressed"
	case SwitchReleased:
		return "switch-released"
	case BarrierOpened:
		return "barrier-opened"
	case BarrierClosed:
		return "barrier-closed"
	case MemoryCollected:
		return "memory-collected"
	case GoalReached:
		return "goal-reached"
	default:
		return "unknown"
	}
}

// Event is one puzzle state change.
type Event struct {
	Kind EventKind
	ID   string
	Text string
}

// Runtime turns a level into world bodies and tracks its puzzle state.
type Runtime struct {
	world World
	level *levels.Level
	rules Rules

	fixtures []*Fixture
	switches map[string]*Fixture
	barriers map[string]*Fixture
	targets  map[string]string

	player physics.Handle

	touching  map[string]bool // switches touched during the current step
	pressed   map[string]bool
	collected map[string]bool
	goal      bool

	pending []Event
}

// NewRuntime adds every level object to world and subscribes to its contacts.
func NewRuntime(world World, level *levels.Level, rules Rules) (*Runtime, error) {
	if rules == nil {
		var err error
		if rules, err = RulesFor(level.Script); err != nil {
			return nil, fmt.Errorf("puzzle: level %s: %w", level.Name, err)
		}
	}
	r := &Runtime{
		world:     world,
		level:     level,
		rules:     rules,
		switches:  make(map[string]*Fixture),
		barriers:  make(map[string]*Fixture),
		targets:   make(map[string]string),
		touching:  make(map[string]bool),
		pressed:   make(map[string]bool),
		collected: make(map[string]bool),
	}

	for _, obj := range level.Placed() {
		f := &Fixture{Object: obj}
		if err := r.place(f); err != nil {
			return nil, err
		}
		r.fixtures = append(r.fixtures, f)
		switch o := obj.(type) {
		case levels.Switch:
			r.switches[o.ID] = f
			r.targets[o.ID] = o.Target
		case levels.Barrier:
			r.barriers[o.ID] = f
		}
	}

	world.OnContact(r.onContact)
	log.Printf("puzzle: level %s ready with %d fixtures", level.Name, len(r.fixtures))
	return r, nil
}

func (r *Runtime) place(f *Fixture) error {
	b := f.Object.Bounds()
	h, err := r.world.AddBody(physics.BodySpec{
		Position: b.Center(),
		Shape:    physics.Rect(b.Width, b.Height),
		Static:   true,
		Sensor:   f.Object.Sensor(),
		Owner:    f,
	})
	if err != nil {
		return fmt.Errorf("puzzle: place %s: %w", f.Object.Kind(), err)
	}
	f.Handle = h
	return nil
}

// SetPlayer marks the body whose contacts count for goals and memories.
func (r *Runtime) SetPlayer(h physics.Handle) {
	r.player = h
}

// Level returns the running level.
func (r *Runtime) Level() *levels.Level {
	return r.level
}

// Fixtures returns every placed level object.
func (r *Runtime) Fixtures() []*Fixture {
	return slices.Clone(r.fixtures)
}

func (r *Runtime) onContact(evt physics.ContactEvent) {
	fa, aIsFixture := evt.OwnerA.(*Fixture)
	fb, bIsFixture := evt.OwnerB.(*Fixture)
	switch {
	case aIsFixture && !bIsFixture:
		r.touch(fa, evt.B)
	case bIsFixture && !aIsFixture:
		r.touch(fb, evt.A)
	}
}

func (r *Runtime) touch(f *Fixture, other physics.Handle) {
	switch o := f.Object.(type) {
	case levels.Switch:
		r.touching[o.ID] = true
	case levels.Memory:
		if other == r.player && r.player != 0 && !r.collected[o.ID] {
			r.collected[o.ID] = true
			r.pending = append(r.pending, Event{Kind: MemoryCollected, ID: o.ID, Text: o.Text})
			log.Printf("puzzle: memory %s collected", o.ID)
		}
	case levels.Goal:
		if other == r.player && r.player != 0 && !r.goal {
			r.goal = true
			r.pending = append(r.pending, Event{Kind: GoalReached})
			log.Printf("puzzle: level %s complete", r.level.Name)
		}
	}
}

// Update folds the contacts of the last world step into switch and barrier state and
// returns what changed. Call it once per tick after stepping the world.
func (r *Runtime) Update() ([]Event, error) {
	events := r.pending
	r.pending = nil

	for _, id := range sortedKeys(r.switches) {
		now := r.touching[id]
		if now == r.pressed[id] {
			continue
		}
		r.pressed[id] = now
		kind := SwitchReleased
		if now {
			kind = SwitchPressed
		}
		events = append(events, Event{Kind: kind, ID: id})
	}
	clear(r.touching)

	open, err := r.rules.Open(RuleInput{
		Pressed:   r.Pressed(),
		Collected: len(r.collected),
		Targets:   r.targets,
	})
	if err != nil {
		return events, err
	}

	for _, id := range sortedKeys(r.barriers) {
		f := r.barriers[id]
		want := slices.Contains(open, id)
		if want == f.Open {
			continue
		}
		if want {
			r.world.RemoveBody(f.Handle)
			f.Open = true
			events = append(events, Event{Kind: BarrierOpened, ID: id})
			continue
		}
		if err := r.place(f); err != nil {
			return events, err
		}
		f.Open = false
		events = append(events, Event{Kind: BarrierClosed, ID: id})
	}
	return events, nil
}

// Pressed returns the ids of switches held down, sorted.
func (r *Runtime) Pressed() []string {
	var out []string
	for id, down := range r.pressed {
		if down {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// BarrierOpen reports whether the barrier with id is open.
func (r *Runtime) BarrierOpen(id string) bool {
	f, ok := r.barriers[id]
	return ok && f.Open
}

// Collected returns the ids of the collected memories, sorted.
func (r *Runtime) Collected() []string {
	out := make([]string, 0, len(r.collected))
	for id := range r.collected {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// RestoreProgress replaces the collected memories and the goal flag without
// emitting events. Queued memory and goal events are dropped.
func (r *Runtime) RestoreProgress(collected []string, goal bool) {
	clear(r.collected)
	for _, id := range collected {
		r.collected[id] = true
	}
	r.goal = goal
	r.pending = slices.DeleteFunc(r.pending, func(e Event) bool {
		return e.Kind == MemoryCollected || e.Kind == GoalReached
	})
}

// GoalReached reports whether the player touched the goal.
func (r *Runtime) GoalReached() bool {
	return r.goal
}

func sortedKeys(m map[string]*Fixture) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
