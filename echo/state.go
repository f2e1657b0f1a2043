package echo

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidState = errors.New("echo: invalid echo state")

// State is the serializable form of one echo.
type State struct {
	OriginX  float64  `json:"originX"`
	OriginY  float64  `json:"originY"`
	Age      float64  `json:"age"`
	Timeline []Sample `json:"timeline"`
}

// Export captures every active echo, oldest first.
func (l *Lifecycle) Export() []State {
	out := make([]State, 0, len(l.echoes))
	for _, e := range l.echoes {
		out = append(out, State{
			OriginX:  e.origin.X,
			OriginY:  e.origin.Y,
			Age:      e.age,
			Timeline: e.playback.Timeline().Samples(),
		})
	}
	return out
}

// Import replaces the active echoes with states. Every state is validated before
// anything changes. Playback resumes where the exported age left it; echoes that had
// already run out of samples restart their fall from the last sample.
func (l *Lifecycle) Import(states []State) error {
	timelines := make([]Timeline, len(states))
	for i, st := range states {
		if !finiteAll(st.OriginX, st.OriginY, st.Age) || st.Age < 0 {
			return fmt.Errorf("%w: echo %d: origin (%v, %v) age %v", ErrInvalidState, i, st.OriginX, st.OriginY, st.Age)
		}
		tl, err := TimelineFromSamples(st.Timeline, max(len(st.Timeline), DefaultTimelineCapacity))
		if err != nil {
			return fmt.Errorf("%w: echo %d: %w", ErrInvalidState, i, err)
		}
		timelines[i] = tl
	}

	for len(l.echoes) > 0 {
		l.drop(len(l.echoes) - 1)
	}
	for i, st := range states {
		id, err := l.CreateEcho(st.OriginX, st.OriginY, timelines[i])
		if err != nil {
			return fmt.Errorf("echo: import %d: %w", i, err)
		}
		e, _ := l.Echo(id)
		e.age = st.Age
		e.playback.Seek(timelines[i].First().T + st.Age)
		if e.mode == ModeReplay {
			l.drive(e, 0)
		}
	}
	return nil
}

func finiteAll(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
