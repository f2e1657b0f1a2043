package levels

import "fmt"

// Kind is the closed set of level object kinds.
type Kind string

const (
	KindWall     Kind = "wall"
	KindPlatform Kind = "platform"
	KindSwitch   Kind = "switch"
	KindBarrier  Kind = "barrier"
	KindGoal     Kind = "goal"
	KindMemory   Kind = "memory"
)

// Object is one placed level object. The concrete types are Solid, Switch, Barrier,
// Goal and Memory.
type Object interface {
	Kind() Kind
	Bounds() Rect
	// Sensor reports whether bodies pass through the object.
	Sensor() bool
}

// Solid is immovable geometry: walls, platforms and merged tiles.
type Solid struct {
	Rect
	kind Kind
}

func (s Solid) Kind() Kind { return s.kind }
func (s Solid) Bounds() Rect { return s.Rect }
func (s Solid) Sensor() bool { return false }

// Switch is pressed while a player or echo overlaps it.
type Switch struct {
	Rect
	ID     string
	Target string
}

func (s Switch) Kind() Kind { return KindSwitch }
func (s Switch) Bounds() Rect { return s.Rect }
func (s Switch) Sensor() bool { return true }

// Barrier is solid until a switch or level script opens it.
type Barrier struct {
	Rect
	ID string
}

func (b Barrier) Kind() Kind { return KindBarrier }
func (b Barrier) Bounds() Rect { return b.Rect }
func (b Barrier) Sensor() bool { return false }

// Goal completes the level when the player reaches it.
type Goal struct {
	Rect
}

func (g Goal) Kind() Kind { return KindGoal }
func (g Goal) Bounds() Rect { return g.Rect }
func (g Goal) Sensor() bool { return true }

// Memory is a collectible fragment of story text.
type Memory struct {
	Rect
	ID   string
	Text string
}

func (m Memory) Kind() Kind { return KindMemory }
func (m Memory) Bounds() Rect { return m.Rect }
func (m Memory) Sensor() bool { return true }

// rawObject is the on-disk shape of an object before it is resolved to its kind.
type rawObject struct {
	Kind   Kind   `json:"kind"`
	ID     string `json:"id,omitempty"`
	Target string `json:"target,omitempty"`
	Text   string `json:"text,omitempty"`
	Rect
}

func (o rawObject) resolve() (Object, error) {
	if !o.Rect.valid() {
		return nil, fmt.Errorf("%w: %s has size %vx%v", ErrInvalidLevel, o.Kind, o.Width, o.Height)
	}
	switch o.Kind {
	case KindWall, KindPlatform:
		return Solid{Rect: o.Rect, kind: o.Kind}, nil
	case KindSwitch:
		return Switch{Rect: o.Rect, ID: o.ID, Target: o.Target}, nil
	case KindBarrier:
		if o.ID == "" {
			return nil, fmt.Errorf("%w: barrier without id", ErrInvalidLevel)
		}
		return Barrier{Rect: o.Rect, ID: o.ID}, nil
	case KindGoal:
		return Goal{Rect: o.Rect}, nil
	case KindMemory:
		return Memory{Rect: o.Rect, ID: o.ID, Text: o.Text}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, o.Kind)
	}
}

func toRaw(obj Object) rawObject {
	raw := rawObject{Kind: obj.Kind(), Rect: obj.Bounds()}
	switch o := obj.(type) {
	case Switch:
		raw.ID, raw.Target = o.ID, o.Target
	case Barrier:
		raw.ID = o.ID
	case Memory:
		raw.ID, raw.Text = o.ID, o.Text
	}
	return raw
}
