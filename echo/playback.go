package echo

import "math"

const cursorEpsilon = 1e-9

// Playback replays a timeline by holding the latest sample at or before the cursor.
// It never interpolates between samples.
type Playback struct {
	timeline Timeline
	cursor   float64
	index    int
}

// NewPlayback starts a playback at the timeline's first timestamp.
func NewPlayback(tl Timeline) *Playback {
	return &Playback{
		timeline: tl,
		cursor:   tl.First().T,
	}
}

// Cursor returns the playback clock in timeline time.
func (p *Playback) Cursor() float64 {
	return p.cursor
}

// Timeline returns the replayed timeline.
func (p *Playback) Timeline() *Timeline {
	return &p.timeline
}

// Exhausted reports whether the cursor has run past the last sample.
func (p *Playback) Exhausted() bool {
	if p.timeline.Len() == 0 {
		return true
	}
	return p.cursor > p.timeline.Last().T+cursorEpsilon
}

// Current returns the held sample without moving the cursor.
func (p *Playback) Current() (Sample, bool) {
	if p.timeline.Len() == 0 {
		return Sample{}, false
	}
	return p.timeline.At(p.index), !p.Exhausted()
}

// Advance moves the cursor by dt and returns the held sample. Once exhausted it
// returns the last sample and false.
func (p *Playback) Advance(dt float64) (Sample, bool) {
	if dt > 0 && !math.IsInf(dt, 0) {
		p.cursor += dt
	}
	if p.timeline.Len() == 0 {
		return Sample{}, false
	}
	if p.Exhausted() {
		p.index = p.timeline.Len() - 1
		return p.timeline.Last(), false
	}
	for p.index+1 < p.timeline.Len() && p.timeline.At(p.index+1).T <= p.cursor+cursorEpsilon {
		p.index++
	}
	return p.timeline.At(p.index), true
}

// Seek places the cursor at an absolute timeline time.
func (p *Playback) Seek(cursor float64) {
	if math.IsNaN(cursor) {
		return
	}
	p.cursor = cursor
	p.index = 0
	p.Advance(0)
}
