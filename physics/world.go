package physics

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"
)

const (
	DefaultGravity        = 980.0
	DefaultAirResistance  = 0.99
	DefaultGroundFriction = 0.8
)

// Bounds is the rectangle bodies are kept inside. A zero Bounds disables clamping.
// With OpenBottom set, bodies may fall out through the bottom edge.
type Bounds struct {
	Min, Max   Vector
	OpenBottom bool
}

// Enabled reports whether the bounds describe a non-empty area.
func (b Bounds) Enabled() bool {
	return b.Max.X > b.Min.X && b.Max.Y > b.Min.Y
}

// Contains reports whether p lies inside the bounds. Disabled bounds contain everything.
func (b Bounds) Contains(p Vector) bool {
	if !b.Enabled() {
		return true
	}
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Config tunes a World. Zero fields take the package defaults.
type Config struct {
	Gravity        float64
	AirResistance  float64
	GroundFriction float64
	CellSize       float64
	Bounds         Bounds
}

// DefaultConfig mirrors the classic 800x600 playfield.
func DefaultConfig() Config {
	return Config{
		Gravity:        DefaultGravity,
		AirResistance:  DefaultAirResistance,
		GroundFriction: DefaultGroundFriction,
		CellSize:       DefaultCellSize,
		Bounds:         Bounds{Max: Vector{X: 800, Y: 600}},
	}
}

// withDefaults fills unset tuning. Gravity is taken as given, so a zero value
// builds a weightless world.
func (c Config) withDefaults() Config {
	if c.AirResistance <= 0 || c.AirResistance > 1 {
		c.AirResistance = DefaultAirResistance
	}
	if c.GroundFriction <= 0 || c.GroundFriction > 1 {
		c.GroundFriction = DefaultGroundFriction
	}
	if c.CellSize <= 0 {
		c.CellSize = DefaultCellSize
	}
	return c
}

// Stats are the counters of the most recent step.
type Stats struct {
	Bodies             int
	CollisionChecks    int
	CollisionsDetected int
	UpdateTime         time.Duration
}

type pair struct {
	a, b *Body
}

type pairKey struct {
	a, b Handle
}

// World owns every body and advances them in fixed order each step.
type World struct {
	cfg Config

	bodies    []*Body
	index     map[Handle]*Body
	nextOrder uint64

	grid     *Grid
	contacts []Contact
	events   eventQueue
	handlers []ContactHandler

	stats Stats
}

// NewWorld creates an empty world.
func NewWorld(cfg Config) *World {
	cfg = cfg.withDefaults()
	return &World{
		cfg:   cfg,
		index: make(map[Handle]*Body),
		grid:  NewGrid(cfg.CellSize),
	}
}

// Config returns the world's effective configuration.
func (w *World) Config() Config {
	return w.cfg
}

// Bounds returns the world bounds.
func (w *World) Bounds() Bounds {
	return w.cfg.Bounds
}

// AddBody validates spec and registers a new body.
func (w *World) AddBody(spec BodySpec) (Handle, error) {
	if err := spec.validate(); err != nil {
		return 0, fmt.Errorf("physics: add body: %w", err)
	}
	w.nextOrder++
	h := Handle(w.nextOrder)
	b := newBody(h, w.nextOrder, spec)
	w.bodies = append(w.bodies, b)
	w.index[h] = b
	return h, nil
}

// RemoveBody unregisters h. It reports whether the body existed.
func (w *World) RemoveBody(h Handle) bool {
	b, ok := w.index[h]
	if !ok {
		return false
	}
	delete(w.index, h)
	if i := slices.Index(w.bodies, b); i >= 0 {
		w.bodies = slices.Delete(w.bodies, i, i+1)
	}
	return true
}

// Body returns the body registered under h.
func (w *World) Body(h Handle) (*Body, bool) {
	b, ok := w.index[h]
	return b, ok
}

// Bodies returns the registered bodies in insertion order.
func (w *World) Bodies() []*Body {
	return slices.Clone(w.bodies)
}

// Len returns the number of registered bodies.
func (w *World) Len() int {
	return len(w.bodies)
}

// ApplyForce accumulates a force that is converted to acceleration on the next step.
func (w *World) ApplyForce(h Handle, f Vector) bool {
	b, ok := w.index[h]
	if !ok || b.static || !finite(f) {
		return false
	}
	b.force = b.force.Add(f)
	return true
}

// ApplyImpulse changes the velocity of h immediately by j/m.
func (w *World) ApplyImpulse(h Handle, j Vector) bool {
	b, ok := w.index[h]
	if !ok || b.static || b.invMass == 0 || !finite(j) {
		return false
	}
	b.vel = b.vel.Add(j.Mult(b.invMass))
	return true
}

// SetVelocity overwrites the velocity of a non-static body.
func (w *World) SetVelocity(h Handle, v Vector) bool {
	b, ok := w.index[h]
	if !ok || b.static || !finite(v) {
		return false
	}
	b.vel = v
	return true
}

// Teleport moves a non-static body and sets its velocity.
func (w *World) Teleport(h Handle, pos, vel Vector) bool {
	b, ok := w.index[h]
	if !ok || b.static || !finite(pos) || !finite(vel) {
		return false
	}
	b.pos = pos
	b.vel = vel
	return true
}

// SetKinematic switches a non-static body between kinematic and dynamic simulation.
func (w *World) SetKinematic(h Handle, kinematic bool) bool {
	b, ok := w.index[h]
	if !ok || b.static {
		return false
	}
	b.kinematic = kinematic
	return true
}

// SetGravityEnabled toggles gravity for h.
func (w *World) SetGravityEnabled(h Handle, enabled bool) bool {
	b, ok := w.index[h]
	if !ok {
		return false
	}
	b.gravity = enabled
	return true
}

// State returns the serializable state of h.
func (w *World) State(h Handle) (BodyState, bool) {
	b, ok := w.index[h]
	if !ok {
		return BodyState{}, false
	}
	return b.State(), true
}

// SetState restores a previously exported state onto a non-static body.
func (w *World) SetState(h Handle, st BodyState) bool {
	return w.Teleport(h, Vector{X: st.X, Y: st.Y}, Vector{X: st.VX, Y: st.VY})
}

// OnContact registers an observer for contact events.
func (w *World) OnContact(fn ContactHandler) {
	if fn == nil {
		return
	}
	w.handlers = append(w.handlers, fn)
}

// Contacts returns the events produced by the most recent step.
func (w *World) Contacts() []ContactEvent {
	return w.events.snapshot()
}

// Stats returns the counters of the most recent step.
func (w *World) Stats() Stats {
	return w.stats
}

// Step advances the simulation by dt seconds.
func (w *World) Step(dt float64) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return
	}
	start := time.Now()
	w.stats = Stats{Bodies: len(w.bodies)}

	w.grid.Clear()
	for _, b := range w.bodies {
		w.grid.Insert(b)
	}

	for _, b := range w.bodies {
		if b.static {
			continue
		}
		if b.kinematic {
			b.grounded = false
			continue
		}
		w.integrate(b, dt)
	}

	pairs := w.broadPhase()

	w.contacts = w.contacts[:0]
	for _, p := range pairs {
		w.stats.CollisionChecks++
		if c, ok := TestPair(p.a, p.b); ok {
			w.contacts = append(w.contacts, c)
		}
	}
	w.stats.CollisionsDetected = len(w.contacts)

	for _, c := range w.contacts {
		Resolve(c)
	}

	w.notify()
	w.stats.UpdateTime = time.Since(start)
}

func (w *World) integrate(b *Body, dt float64) {
	acc := b.force.Mult(b.invMass)
	if b.gravity {
		acc.Y += w.cfg.Gravity
	}
	b.force = Vector{}

	b.vel = b.vel.Add(acc.Mult(dt))
	b.vel = b.vel.Mult(w.cfg.AirResistance)
	if b.grounded {
		b.vel.X *= w.cfg.GroundFriction
	}
	b.pos = b.pos.Add(b.vel.Mult(dt))

	w.clampToBounds(b)
	// Only contact resolution grounds a body.
	b.grounded = false
}

func (w *World) clampToBounds(b *Body) {
	bounds := w.cfg.Bounds
	if !bounds.Enabled() {
		return
	}
	hw, hh := b.shape.halfExtents()

	if b.pos.X-hw < bounds.Min.X {
		b.pos.X = bounds.Min.X + hw
		b.vel.X = math.Abs(b.vel.X) * b.restitution
	} else if b.pos.X+hw > bounds.Max.X {
		b.pos.X = bounds.Max.X - hw
		b.vel.X = -math.Abs(b.vel.X) * b.restitution
	}

	if b.pos.Y-hh < bounds.Min.Y {
		b.pos.Y = bounds.Min.Y + hh
		b.vel.Y = math.Abs(b.vel.Y) * b.restitution
	} else if !bounds.OpenBottom && b.pos.Y+hh > bounds.Max.Y {
		b.pos.Y = bounds.Max.Y - hh
		b.vel.Y = -math.Abs(b.vel.Y) * b.restitution
	}
}

// broadPhase returns candidate pairs ordered by body insertion order.
func (w *World) broadPhase() []pair {
	seen := make(map[pairKey]struct{})
	var pairs []pair
	for _, a := range w.bodies {
		for _, b := range w.grid.Query(a) {
			first, second := a, b
			if second.order < first.order {
				first, second = second, first
			}
			key := pairKey{a: first.handle, b: second.handle}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			if !candidate(first, second) {
				continue
			}
			pairs = append(pairs, pair{a: first, b: second})
		}
	}
	slices.SortFunc(pairs, func(x, y pair) int {
		if c := cmp.Compare(x.a.order, y.a.order); c != 0 {
			return c
		}
		return cmp.Compare(x.b.order, y.b.order)
	})
	return pairs
}

func candidate(a, b *Body) bool {
	if a.static && b.static {
		return false
	}
	if a.sensor && b.sensor {
		return false
	}
	if a.Immovable() && b.Immovable() && !a.sensor && !b.sensor {
		return false
	}
	return true
}

func (w *World) notify() {
	w.events.reset()
	for _, c := range w.contacts {
		w.events.push(ContactEvent{
			A:      c.A.handle,
			B:      c.B.handle,
			OwnerA: c.A.owner,
			OwnerB: c.B.owner,
			Point:  c.Point,
			Normal: c.Normal,
			Sensor: c.A.sensor || c.B.sensor,
		})
	}
	if len(w.handlers) == 0 {
		return
	}
	for _, evt := range w.events.items {
		for _, fn := range w.handlers {
			fn(evt)
		}
	}
}
