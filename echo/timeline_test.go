package echo

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timestamps(tl *Timeline) []float64 {
	var out []float64
	for _, s := range tl.Samples() {
		out = append(out, s.T)
	}
	return out
}

func TestTimelineRingEviction(t *testing.T) {
	tl := NewTimeline(3)
	for i := 0; i < 5; i++ {
		require.NoError(t, tl.Push(Sample{T: float64(i), X: float64(i * 10)}))
	}

	assert.Equal(t, 3, tl.Len())
	assert.Equal(t, 3, tl.Cap())
	assert.Equal(t, []float64{2, 3, 4}, timestamps(&tl))
	assert.Equal(t, 20.0, tl.First().X)
	assert.Equal(t, 40.0, tl.Last().X)
	assert.Equal(t, 2.0, tl.Duration())
}

func TestTimelinePushValidation(t *testing.T) {
	cases := []struct {
		name string
		push []Sample
		want error
	}{
		{"increasing", []Sample{{T: 0}, {T: 0.1}}, nil},
		{"equal_timestamps", []Sample{{T: 1}, {T: 1}}, nil},
		{"decreasing", []Sample{{T: 1}, {T: 0.5}}, ErrSampleOrder},
		{"nan_position", []Sample{{T: 0, X: math.NaN()}}, ErrInvalidSample},
		{"infinite_time", []Sample{{T: math.Inf(1)}}, ErrInvalidSample},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var tl Timeline
			var err error
			for _, s := range c.push {
				if err = tl.Push(s); err != nil {
					break
				}
			}
			if c.want == nil {
				require.NoError(t, err)
				assert.Equal(t, len(c.push), tl.Len())
				return
			}
			require.ErrorIs(t, err, c.want)
			assert.Equal(t, len(c.push)-1, tl.Len())
		})
	}
}

func TestTimelineZeroValue(t *testing.T) {
	var tl Timeline
	assert.Equal(t, DefaultTimelineCapacity, tl.Cap())
	assert.Zero(t, tl.Len())
	assert.Equal(t, Sample{}, tl.First())
	assert.Equal(t, Sample{}, tl.Last())
	assert.Empty(t, tl.Samples())
	assert.Panics(t, func() { tl.At(0) })

	require.NoError(t, tl.Push(Sample{T: 1}))
	assert.Equal(t, 1, tl.Len())
}

func TestTimelineCloneIsIndependent(t *testing.T) {
	tl := NewTimeline(4)
	require.NoError(t, tl.Push(Sample{T: 0, X: 1}))
	require.NoError(t, tl.Push(Sample{T: 1, X: 2}))

	c := tl.Clone()
	require.NoError(t, tl.Push(Sample{T: 2, X: 3}))
	tl.Reset()

	assert.Equal(t, 0, tl.Len())
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []float64{0, 1}, timestamps(&c))
}

func TestTimelineFromSamples(t *testing.T) {
	samples := []Sample{{T: 0}, {T: 1}, {T: 2}, {T: 3}}

	tl, err := TimelineFromSamples(samples, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, timestamps(&tl))

	_, err = TimelineFromSamples([]Sample{{T: 2}, {T: 1}}, 0)
	require.ErrorIs(t, err, ErrSampleOrder)
	assert.Contains(t, err.Error(), "sample 1")
}

func TestSampleJSON(t *testing.T) {
	raw, err := json.Marshal([]Sample{
		{T: 0.1, X: 1, Y: 2, VX: 3, VY: 4},
		{T: 0.2, X: 5, Y: 6, Facing: FacingLeft},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"t":0.1,"x":1,"y":2,"vx":3,"vy":4},
		{"t":0.2,"x":5,"y":6,"vx":0,"vy":0,"facing":-1}
	]`, string(raw))
}
