package echo

import "github.com/milk9111/echoes/physics"

// ID identifies an echo within a Lifecycle. The zero ID is never issued.
type ID uint64

// Mode is the phase an echo's body is in.
type Mode int

const (
	// ModeReplay pins the body to the held timeline sample.
	ModeReplay Mode = iota
	// ModeFreeFall hands the body to the world as an ordinary falling body.
	ModeFreeFall
)

func (m Mode) String() string {
	if m == ModeFreeFall {
		return "free-fall"
	}
	return "replay"
}

// Echo is a recorded copy of the player that retraces its timeline and then falls.
type Echo struct {
	id       ID
	origin   physics.Vector
	age      float64
	maxAge   float64
	mode     Mode
	playback *Playback
	body     physics.Handle
}

func (e *Echo) ID() ID { return e.id }
func (e *Echo) Age() float64 { return e.age }
func (e *Echo) MaxAge() float64 { return e.maxAge }
func (e *Echo) Mode() Mode { return e.mode }
func (e *Echo) Body() physics.Handle { return e.body }
func (e *Echo) Origin() physics.Vector { return e.origin }

// Replaying reports whether the echo is still retracing its timeline.
func (e *Echo) Replaying() bool {
	return e.mode == ModeReplay
}

// IsExpired reports whether the echo reached its maximum age.
func (e *Echo) IsExpired() bool {
	return e.age >= e.maxAge
}

// Remaining is the lifetime left in seconds, never negative.
func (e *Echo) Remaining() float64 {
	return max(0, e.maxAge-e.age)
}

// Cursor returns the playback position in timeline time.
func (e *Echo) Cursor() float64 {
	return e.playback.Cursor()
}

// Timeline returns a copy of the replayed timeline.
func (e *Echo) Timeline() Timeline {
	return e.playback.Timeline().Clone()
}

// View is the read-only summary handed to renderers and other collaborators.
type View struct {
	ID   ID
	X, Y float64
	Age  float64
	Mode Mode
}
