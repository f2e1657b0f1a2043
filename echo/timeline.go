package echo

import (
	"errors"
	"fmt"
	"math"
)

// DefaultTimelineCapacity holds 30 seconds of samples at the default period.
const DefaultTimelineCapacity = 300

var (
	ErrSampleOrder   = errors.New("echo: sample timestamp decreases")
	ErrInvalidSample = errors.New("echo: sample has non-finite fields")
)

// Facing is the horizontal direction an actor looks in. The zero value means unknown.
type Facing int8

const (
	FacingLeft  Facing = -1
	FacingRight Facing = 1
)

func (f Facing) String() string {
	switch f {
	case FacingLeft:
		return "left"
	case FacingRight:
		return "right"
	default:
		return "none"
	}
}

// Sample is one recorded instant of an actor's motion.
type Sample struct {
	T      float64 `json:"t"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
	Facing Facing  `json:"facing,omitempty"`
}

func (s Sample) valid() bool {
	for _, v := range [...]float64{s.T, s.X, s.Y, s.VX, s.VY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Timeline is a bounded, time-ordered ring of samples. Once full, each push drops the
// oldest sample. The zero value is an empty timeline with DefaultTimelineCapacity.
type Timeline struct {
	buf  []Sample
	head int
	size int
}

// NewTimeline returns an empty timeline holding at most capacity samples.
func NewTimeline(capacity int) Timeline {
	if capacity <= 0 {
		capacity = DefaultTimelineCapacity
	}
	return Timeline{buf: make([]Sample, capacity)}
}

// TimelineFromSamples builds a timeline from ordered samples. When there are more
// samples than capacity only the newest are kept.
func TimelineFromSamples(samples []Sample, capacity int) (Timeline, error) {
	tl := NewTimeline(capacity)
	for i, s := range samples {
		if err := tl.Push(s); err != nil {
			return Timeline{}, fmt.Errorf("echo: sample %d: %w", i, err)
		}
	}
	return tl, nil
}

// Cap returns the maximum number of samples kept.
func (t Timeline) Cap() int {
	if t.buf == nil {
		return DefaultTimelineCapacity
	}
	return len(t.buf)
}

// Len returns the number of stored samples.
func (t Timeline) Len() int {
	return t.size
}

// Push appends s, evicting the oldest sample when full.
func (t *Timeline) Push(s Sample) error {
	if !s.valid() {
		return ErrInvalidSample
	}
	if t.size > 0 && s.T < t.Last().T {
		return fmt.Errorf("%w: %v after %v", ErrSampleOrder, s.T, t.Last().T)
	}
	if t.buf == nil {
		t.buf = make([]Sample, DefaultTimelineCapacity)
	}
	if t.size < len(t.buf) {
		t.buf[(t.head+t.size)%len(t.buf)] = s
		t.size++
		return nil
	}
	t.buf[t.head] = s
	t.head = (t.head + 1) % len(t.buf)
	return nil
}

// At returns the i-th oldest sample. It panics when i is out of range.
func (t Timeline) At(i int) Sample {
	if i < 0 || i >= t.size {
		panic(fmt.Sprintf("echo: timeline index %d out of range [0,%d)", i, t.size))
	}
	return t.buf[(t.head+i)%len(t.buf)]
}

// First returns the oldest sample, or the zero Sample when empty.
func (t Timeline) First() Sample {
	if t.size == 0 {
		return Sample{}
	}
	return t.At(0)
}

// Last returns the newest sample, or the zero Sample when empty.
func (t Timeline) Last() Sample {
	if t.size == 0 {
		return Sample{}
	}
	return t.At(t.size - 1)
}

// Duration is the time span between the first and last sample.
func (t Timeline) Duration() float64 {
	if t.size == 0 {
		return 0
	}
	return t.Last().T - t.First().T
}

// Samples returns the stored samples oldest first.
func (t Timeline) Samples() []Sample {
	out := make([]Sample, t.size)
	for i := range out {
		out[i] = t.At(i)
	}
	return out
}

// Clone returns a deep copy.
func (t Timeline) Clone() Timeline {
	c := Timeline{head: t.head, size: t.size}
	if t.buf != nil {
		c.buf = make([]Sample, len(t.buf))
		copy(c.buf, t.buf)
	}
	return c
}

// Reset drops every sample while keeping the capacity.
func (t *Timeline) Reset() {
	t.head = 0
	t.size = 0
}
