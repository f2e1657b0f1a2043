package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
)

// Vector is the 2D vector type used throughout the simulation.
type Vector = cp.Vector

var (
	ErrInvalidMass        = errors.New("physics: mass must be positive")
	ErrInvalidShape       = errors.New("physics: shape is missing a required dimension")
	ErrInvalidRestitution = errors.New("physics: restitution must be within [0,1]")
	ErrInvalidPosition    = errors.New("physics: position is not finite")
)

// Handle identifies a body registered with a World. The zero Handle is never issued.
type Handle uint64

// ShapeKind enumerates the supported collision shapes.
type ShapeKind int

const (
	ShapeRect ShapeKind = iota + 1
	ShapeCircle
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeRect:
		return "rectangle"
	case ShapeCircle:
		return "circle"
	default:
		return "unknown"
	}
}

// Shape describes a body's collision geometry. Rectangles use W/H, circles use R.
type Shape struct {
	Kind ShapeKind
	W, H float64
	R    float64
}

// Rect returns a rectangle shape of the given size.
func Rect(w, h float64) Shape {
	return Shape{Kind: ShapeRect, W: w, H: h}
}

// Circle returns a circle shape of the given radius.
func Circle(r float64) Shape {
	return Shape{Kind: ShapeCircle, R: r}
}

func (s Shape) validate() error {
	switch s.Kind {
	case ShapeRect:
		if !(s.W > 0) || !(s.H > 0) || math.IsInf(s.W, 0) || math.IsInf(s.H, 0) {
			return fmt.Errorf("%w: rectangle %vx%v", ErrInvalidShape, s.W, s.H)
		}
	case ShapeCircle:
		if !(s.R > 0) || math.IsInf(s.R, 0) {
			return fmt.Errorf("%w: circle radius %v", ErrInvalidShape, s.R)
		}
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidShape, s.Kind)
	}
	return nil
}

// halfExtents returns half the width and height of the shape's bounding box.
func (s Shape) halfExtents() (float64, float64) {
	if s.Kind == ShapeCircle {
		return s.R, s.R
	}
	return s.W / 2, s.H / 2
}

// BodySpec carries everything needed to create a body.
type BodySpec struct {
	Position    Vector
	Velocity    Vector
	Shape       Shape
	Mass        float64
	Restitution float64

	// Static bodies never move and have infinite effective mass. Mass may be left at zero.
	Static bool
	// Kinematic bodies are positioned by their owner, are not integrated and resolve
	// as if their mass were infinite.
	Kinematic bool
	// Sensor bodies report contacts but are never pushed apart.
	Sensor bool
	// Gravity enables gravitational acceleration for dynamic bodies.
	Gravity bool

	// Owner is an opaque reference back to the game object.
	Owner any
}

func (s BodySpec) validate() error {
	if !finite(s.Position) || !finite(s.Velocity) {
		return ErrInvalidPosition
	}
	if err := s.Shape.validate(); err != nil {
		return err
	}
	if s.Mass < 0 || math.IsNaN(s.Mass) || math.IsInf(s.Mass, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidMass, s.Mass)
	}
	if !s.Static && s.Mass == 0 {
		return fmt.Errorf("%w: dynamic body with zero mass", ErrInvalidMass)
	}
	if !(s.Restitution >= 0 && s.Restitution <= 1) {
		return fmt.Errorf("%w: %v", ErrInvalidRestitution, s.Restitution)
	}
	return nil
}

// Body is a simulated object. Its position is the center of its shape.
type Body struct {
	handle Handle
	order  uint64

	pos   Vector
	vel   Vector
	force Vector

	shape       Shape
	mass        float64
	invMass     float64
	restitution float64

	static    bool
	kinematic bool
	sensor    bool
	gravity   bool
	grounded  bool

	owner any
}

func newBody(h Handle, order uint64, spec BodySpec) *Body {
	b := &Body{
		handle:      h,
		order:       order,
		pos:         spec.Position,
		vel:         spec.Velocity,
		shape:       spec.Shape,
		mass:        spec.Mass,
		restitution: spec.Restitution,
		static:      spec.Static,
		kinematic:   spec.Kinematic,
		sensor:      spec.Sensor,
		gravity:     spec.Gravity,
		owner:       spec.Owner,
	}
	if b.static {
		b.vel = Vector{}
	}
	if b.mass > 0 {
		b.invMass = 1 / b.mass
	}
	return b
}

func (b *Body) Handle() Handle { return b.handle }
func (b *Body) Position() Vector { return b.pos }
func (b *Body) Velocity() Vector { return b.vel }
func (b *Body) Shape() Shape { return b.shape }
func (b *Body) Mass() float64 { return b.mass }
func (b *Body) Restitution() float64 { return b.restitution }
func (b *Body) Static() bool { return b.static }
func (b *Body) Kinematic() bool { return b.kinematic }
func (b *Body) Sensor() bool { return b.sensor }
func (b *Body) GravityEnabled() bool { return b.gravity }
func (b *Body) Grounded() bool { return b.grounded }
func (b *Body) Owner() any { return b.owner }

// Immovable reports whether resolution treats the body as having infinite mass.
func (b *Body) Immovable() bool {
	return b.static || b.kinematic
}

func (b *Body) inverseMass() float64 {
	if b.Immovable() {
		return 0
	}
	return b.invMass
}

// AABB returns the axis-aligned bounding box of the body. L/R are the min/max X and
// B/T are the min/max Y.
func (b *Body) AABB() cp.BB {
	hw, hh := b.shape.halfExtents()
	return cp.NewBBForExtents(b.pos, hw, hh)
}

// BodyState is the minimal serializable state of a live body.
type BodyState struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

// State returns the body's current position and velocity.
func (b *Body) State() BodyState {
	return BodyState{X: b.pos.X, Y: b.pos.Y, VX: b.vel.X, VY: b.vel.Y}
}

func finite(v Vector) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
