package echo

import (
	"math"

	"github.com/milk9111/echoes/physics"
)

// DefaultRecordPeriod is the sampling interval in seconds.
const DefaultRecordPeriod = 0.1

// periodEpsilon absorbs float drift when summing frame times, so ten 0.1s ticks reach 1.0s.
const periodEpsilon = 1e-9

// Actor is anything whose motion can be recorded.
type Actor interface {
	Position() physics.Vector
	Velocity() physics.Vector
	Facing() Facing
}

// RecorderConfig tunes a Recorder. Zero fields take the package defaults.
type RecorderConfig struct {
	Period   float64
	Capacity int
}

func (c RecorderConfig) withDefaults() RecorderConfig {
	if !(c.Period > 0) {
		c.Period = DefaultRecordPeriod
	}
	if c.Capacity <= 0 {
		c.Capacity = DefaultTimelineCapacity
	}
	return c
}

// Recorder samples an actor at a fixed period of accumulated simulation time.
type Recorder struct {
	actor Actor
	cfg   RecorderConfig

	timeline  Timeline
	recording bool
	elapsed   float64
	sinceLast float64
}

// NewRecorder creates a stopped recorder for actor.
func NewRecorder(actor Actor, cfg RecorderConfig) *Recorder {
	cfg = cfg.withDefaults()
	return &Recorder{
		actor:    actor,
		cfg:      cfg,
		timeline: NewTimeline(cfg.Capacity),
	}
}

// Config returns the effective configuration.
func (r *Recorder) Config() RecorderConfig {
	return r.cfg
}

// SetActor replaces the recorded actor. The current timeline is kept.
func (r *Recorder) SetActor(actor Actor) {
	r.actor = actor
}

// Start clears the timeline and records an immediate sample at t=0.
func (r *Recorder) Start() {
	r.timeline.Reset()
	r.elapsed = 0
	r.sinceLast = 0
	r.recording = true
	r.sample()
}

// Stop halts sampling without clearing the timeline.
func (r *Recorder) Stop() {
	r.recording = false
}

// Reset stops recording and drops the timeline.
func (r *Recorder) Reset() {
	r.recording = false
	r.timeline.Reset()
	r.elapsed = 0
	r.sinceLast = 0
}

// Recording reports whether Update takes samples.
func (r *Recorder) Recording() bool {
	return r.recording
}

// Elapsed returns the recorded time since Start.
func (r *Recorder) Elapsed() float64 {
	return r.elapsed
}

// Update advances the recording clock by dt and samples at most once.
func (r *Recorder) Update(dt float64) {
	if !r.recording || !(dt > 0) || math.IsInf(dt, 0) {
		return
	}
	r.elapsed += dt
	r.sinceLast += dt
	if r.sinceLast+periodEpsilon < r.cfg.Period {
		return
	}
	r.sample()
	// Long frames do not build a backlog of samples.
	r.sinceLast = math.Mod(r.sinceLast-r.cfg.Period, r.cfg.Period)
	if r.sinceLast < 0 || r.sinceLast+periodEpsilon >= r.cfg.Period {
		r.sinceLast = 0
	}
}

// CurrentTimeline returns a copy of the samples recorded so far.
func (r *Recorder) CurrentTimeline() Timeline {
	return r.timeline.Clone()
}

func (r *Recorder) sample() {
	if r.actor == nil {
		return
	}
	pos, vel := r.actor.Position(), r.actor.Velocity()
	// Timestamps come from r.elapsed, which only grows, so Push cannot fail on order.
	_ = r.timeline.Push(Sample{
		T:      r.elapsed,
		X:      pos.X,
		Y:      pos.Y,
		VX:     vel.X,
		VY:     vel.Y,
		Facing: r.actor.Facing(),
	})
}
