package echo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineTimeline(t *testing.T, n int, start float64) Timeline {
	t.Helper()
	tl := NewTimeline(0)
	for i := 0; i < n; i++ {
		require.NoError(t, tl.Push(Sample{
			T:  start + float64(i)*0.1,
			X:  100 + float64(i)*10,
			Y:  300,
			VX: 100,
		}))
	}
	return tl
}

func TestPlaybackHoldsLastSample(t *testing.T) {
	type step struct {
		dt    float64
		wantX float64
		ok    bool
	}
	cases := []struct {
		name  string
		steps []step
	}{
		{
			name:  "starts_on_first_sample",
			steps: []step{{0, 100, true}, {0.05, 100, true}},
		},
		{
			name:  "switches_exactly_on_timestamp",
			steps: []step{{0.05, 100, true}, {0.05, 110, true}, {0.099, 110, true}},
		},
		{
			name:  "last_sample_is_still_replay",
			steps: []step{{0.2, 120, true}},
		},
		{
			name:  "exhausted_holds_last",
			steps: []step{{0.25, 120, false}, {1, 120, false}},
		},
		{
			name:  "skips_several_samples_in_one_frame",
			steps: []step{{0.15, 110, true}, {0.05, 120, true}, {0.01, 120, false}},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := NewPlayback(lineTimeline(t, 3, 0))
			for i, s := range c.steps {
				got, ok := p.Advance(s.dt)
				assert.Equal(t, s.ok, ok, "step %d", i)
				assert.Equal(t, s.wantX, got.X, "step %d", i)
				assert.Equal(t, !s.ok, p.Exhausted(), "step %d", i)
			}
		})
	}
}

func TestPlaybackCursorStartsAtFirstTimestamp(t *testing.T) {
	p := NewPlayback(lineTimeline(t, 3, 5))
	assert.Equal(t, 5.0, p.Cursor())

	s, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, 100.0, s.X)

	s, ok = p.Advance(0.1)
	require.True(t, ok)
	assert.Equal(t, 110.0, s.X)
}

func TestPlaybackEmptyTimeline(t *testing.T) {
	p := NewPlayback(Timeline{})
	assert.True(t, p.Exhausted())
	_, ok := p.Advance(0.1)
	assert.False(t, ok)
	_, ok = p.Current()
	assert.False(t, ok)
}

func TestPlaybackSingleSample(t *testing.T) {
	p := NewPlayback(lineTimeline(t, 1, 0))
	_, ok := p.Current()
	assert.True(t, ok)

	s, ok := p.Advance(1.0 / 60.0)
	assert.False(t, ok)
	assert.Equal(t, 100.0, s.X)
}

func TestPlaybackSeek(t *testing.T) {
	p := NewPlayback(lineTimeline(t, 5, 0))
	p.Advance(0.35)

	p.Seek(0.15)
	s, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, 110.0, s.X)
	assert.Equal(t, 0.15, p.Cursor())

	p.Seek(2)
	assert.True(t, p.Exhausted())
}
