package echo

import (
	"errors"
	"fmt"
	"log"
	"math"
	"slices"

	"github.com/milk9111/echoes/physics"
)

const (
	DefaultCapacity   = 5
	DefaultMaxAge     = 30.0
	DefaultEchoSize   = 30.0
	DefaultNearRadius = 50.0
)

var ErrInvalidOrigin = errors.New("echo: origin is not finite")

// BodyWorld is the part of the physics world an echo population needs.
type BodyWorld interface {
	AddBody(spec physics.BodySpec) (physics.Handle, error)
	RemoveBody(h physics.Handle) bool
	Body(h physics.Handle) (*physics.Body, bool)
	Teleport(h physics.Handle, pos, vel physics.Vector) bool
	SetKinematic(h physics.Handle, kinematic bool) bool
	SetGravityEnabled(h physics.Handle, enabled bool) bool
	Bounds() physics.Bounds
}

// LifecycleConfig tunes an echo population. Zero fields take the package defaults.
type LifecycleConfig struct {
	Capacity    int
	MaxAge      float64
	Width       float64
	Height      float64
	Mass        float64
	Restitution float64
}

// DefaultLifecycleConfig returns the stock population settings.
func DefaultLifecycleConfig() LifecycleConfig {
	return LifecycleConfig{}.withDefaults()
}

func (c LifecycleConfig) withDefaults() LifecycleConfig {
	if c.Capacity <= 0 {
		c.Capacity = DefaultCapacity
	}
	if !(c.MaxAge > 0) {
		c.MaxAge = DefaultMaxAge
	}
	if !(c.Width > 0) {
		c.Width = DefaultEchoSize
	}
	if !(c.Height > 0) {
		c.Height = DefaultEchoSize
	}
	if !(c.Mass > 0) {
		c.Mass = 1
	}
	if !(c.Restitution >= 0 && c.Restitution <= 1) {
		c.Restitution = 0
	}
	return c
}

// Lifecycle owns every active echo: creation, capacity eviction, aging and playback.
type Lifecycle struct {
	world    BodyWorld
	recorder *Recorder
	cfg      LifecycleConfig

	echoes   []*Echo // creation order, oldest first
	nextID   ID
	selected ID
}

// NewLifecycle creates an empty population. recorder may be nil.
func NewLifecycle(world BodyWorld, recorder *Recorder, cfg LifecycleConfig) *Lifecycle {
	return &Lifecycle{
		world:    world,
		recorder: recorder,
		cfg:      cfg.withDefaults(),
	}
}

// Config returns the effective configuration.
func (l *Lifecycle) Config() LifecycleConfig {
	return l.cfg
}

// Len returns the number of active echoes.
func (l *Lifecycle) Len() int {
	return len(l.echoes)
}

// CreateEcho spawns an echo that replays tl. (x, y) is the spawn point it returns to
// after leaving the world. When the population is full the oldest echo is evicted.
func (l *Lifecycle) CreateEcho(x, y float64, tl Timeline) (ID, error) {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return 0, ErrInvalidOrigin
	}

	e := &Echo{
		id:       l.nextID + 1,
		origin:   physics.Vector{X: x, Y: y},
		maxAge:   l.cfg.MaxAge,
		playback: NewPlayback(tl.Clone()),
	}

	spec := physics.BodySpec{
		Position:    e.origin,
		Shape:       physics.Rect(l.cfg.Width, l.cfg.Height),
		Mass:        l.cfg.Mass,
		Restitution: l.cfg.Restitution,
		Owner:       e,
	}
	if s, ok := e.playback.Current(); ok {
		spec.Position = physics.Vector{X: s.X, Y: s.Y}
		spec.Velocity = physics.Vector{X: s.VX, Y: s.VY}
		spec.Kinematic = true
	} else {
		// Nothing to retrace.
		e.mode = ModeFreeFall
		spec.Gravity = true
	}

	h, err := l.world.AddBody(spec)
	if err != nil {
		return 0, fmt.Errorf("echo: create: %w", err)
	}
	e.body = h
	l.nextID = e.id

	for len(l.echoes) >= l.cfg.Capacity {
		oldest := l.echoes[0]
		l.drop(0)
		log.Printf("EchoLifecycle: evicted echo %d at capacity %d", oldest.id, l.cfg.Capacity)
	}
	l.echoes = append(l.echoes, e)
	log.Printf("EchoLifecycle: created echo %d at (%.0f, %.0f) with %d samples", e.id, x, y, tl.Len())
	return e.id, nil
}

// Capture turns the recorder's current timeline into an echo spawned at (x, y) and
// restarts recording so the next echo gets a fresh timeline.
func (l *Lifecycle) Capture(x, y float64) (ID, error) {
	if l.recorder == nil {
		return l.CreateEcho(x, y, Timeline{})
	}
	id, err := l.CreateEcho(x, y, l.recorder.CurrentTimeline())
	if err != nil {
		return 0, err
	}
	l.recorder.Start()
	return id, nil
}

// Update sweeps expired echoes, then ages and drives the rest by dt.
// An echo that expires during this call is removed on the next one.
func (l *Lifecycle) Update(dt float64) {
	l.sweep()
	if !(dt > 0) || math.IsInf(dt, 0) {
		return
	}
	for _, e := range l.echoes {
		e.age += dt
		l.drive(e, dt)
	}
}

func (l *Lifecycle) sweep() {
	for i := len(l.echoes) - 1; i >= 0; i-- {
		if l.echoes[i].IsExpired() {
			l.drop(i)
		}
	}
}

func (l *Lifecycle) drive(e *Echo, dt float64) {
	body, ok := l.world.Body(e.body)
	if !ok {
		return
	}

	if e.mode == ModeReplay {
		s, ok := e.playback.Advance(dt)
		if ok {
			l.world.Teleport(e.body, physics.Vector{X: s.X, Y: s.Y}, physics.Vector{X: s.VX, Y: s.VY})
			return
		}
		// Out of memory: hold the last sample and let the world take over.
		e.mode = ModeFreeFall
		l.world.SetKinematic(e.body, false)
		l.world.SetGravityEnabled(e.body, true)
		l.world.Teleport(e.body, physics.Vector{X: s.X, Y: s.Y}, physics.Vector{X: s.VX, Y: s.VY})
		return
	}

	if !l.world.Bounds().Contains(body.Position()) {
		l.world.Teleport(e.body, e.origin, physics.Vector{})
	}
}

// drop removes the i-th echo and its body.
func (l *Lifecycle) drop(i int) {
	e := l.echoes[i]
	l.world.RemoveBody(e.body)
	l.echoes = slices.Delete(l.echoes, i, i+1)
	if l.selected == e.id {
		l.selected = 0
	}
}

func (l *Lifecycle) index(id ID) int {
	return slices.IndexFunc(l.echoes, func(e *Echo) bool { return e.id == id })
}

// Echo returns the active echo with id.
func (l *Lifecycle) Echo(id ID) (*Echo, bool) {
	i := l.index(id)
	if i < 0 {
		return nil, false
	}
	return l.echoes[i], true
}

// Remove deletes a single echo. It reports whether the echo was active.
func (l *Lifecycle) Remove(id ID) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	l.drop(i)
	return true
}

// ClearAll removes every echo and resets the recorder.
func (l *Lifecycle) ClearAll() {
	for len(l.echoes) > 0 {
		l.drop(len(l.echoes) - 1)
	}
	if l.recorder != nil {
		l.recorder.Reset()
	}
	log.Printf("EchoLifecycle: cleared all echoes")
}

func (l *Lifecycle) view(e *Echo) View {
	v := View{ID: e.id, X: e.origin.X, Y: e.origin.Y, Age: e.age, Mode: e.mode}
	if b, ok := l.world.Body(e.body); ok {
		p := b.Position()
		v.X, v.Y = p.X, p.Y
	}
	return v
}

// ActiveEchoes lists every active echo, oldest first.
func (l *Lifecycle) ActiveEchoes() []View {
	out := make([]View, 0, len(l.echoes))
	for _, e := range l.echoes {
		out = append(out, l.view(e))
	}
	return out
}

// Near lists echoes within radius of (x, y). A non-positive radius uses DefaultNearRadius.
func (l *Lifecycle) Near(x, y, radius float64) []View {
	if !(radius > 0) {
		radius = DefaultNearRadius
	}
	var out []View
	for _, e := range l.echoes {
		v := l.view(e)
		if math.Hypot(v.X-x, v.Y-y) <= radius {
			out = append(out, v)
		}
	}
	return out
}

// Nearest returns the echo closest to (x, y). Ties go to the older echo.
func (l *Lifecycle) Nearest(x, y float64) (View, bool) {
	var (
		best  View
		found bool
		dist  = math.Inf(1)
	)
	for _, e := range l.echoes {
		v := l.view(e)
		if d := math.Hypot(v.X-x, v.Y-y); d < dist {
			best, dist, found = v, d, true
		}
	}
	return best, found
}

// Select marks id as the selected echo. Selecting an unknown id clears the selection.
func (l *Lifecycle) Select(id ID) bool {
	if l.index(id) < 0 {
		l.selected = 0
		return false
	}
	l.selected = id
	return true
}

// Selected returns the selected echo, if any.
func (l *Lifecycle) Selected() (ID, bool) {
	return l.selected, l.selected != 0
}
