package prefabs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/echoes/physics"
)

func TestLoadEmbeddedTuning(t *testing.T) {
	tuning, err := LoadTuning()
	require.NoError(t, err)

	assert.Equal(t, 980.0, tuning.Physics.Gravity)
	assert.Equal(t, 0.1, tuning.Recorder.Period)
	assert.Equal(t, 5, tuning.Echo.Capacity)
	assert.Equal(t, 30.0, tuning.Echo.MaxAge)
	assert.Equal(t, 200.0, tuning.Player.MoveSpeed)
	assert.Equal(t, 30.0, tuning.Player.EchoCost)

	bounds := physics.Bounds{Max: physics.Vector{X: 800, Y: 600}}
	cfg := tuning.PhysicsConfig(bounds)
	assert.Equal(t, 0.99, cfg.AirResistance)
	assert.Equal(t, bounds, cfg.Bounds)

	assert.Equal(t, 300, tuning.RecorderConfig().Capacity)
	assert.Equal(t, 30.0, tuning.LifecycleConfig().Width)
}

func TestParseTuning(t *testing.T) {
	valid := "player: {width: 10, height: 10, mass: 1}\n"
	cases := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{"minimal", valid, nil},
		{"negative_gravity", valid + "physics: {gravity: -1}\n", ErrInvalidTuning},
		{"air_resistance_above_one", valid + "physics: {air_resistance: 1.5}\n", ErrInvalidTuning},
		{"bouncy_echo", valid + "echo: {restitution: 2}\n", ErrInvalidTuning},
		{"missing_player", "echo: {capacity: 3}\n", ErrInvalidTuning},
		{"negative_capacity", valid + "echo: {capacity: -1}\n", ErrInvalidTuning},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ParseTuning([]byte(c.doc))
			if c.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, c.wantErr)
		})
	}

	_, err := ParseTuning([]byte("physics: ["))
	require.Error(t, err)
}

func TestZeroGravityTuning(t *testing.T) {
	tuning, err := ParseTuning([]byte("physics: {gravity: 0}\nplayer: {width: 10, height: 10, mass: 1}\n"))
	require.NoError(t, err)

	w := physics.NewWorld(tuning.PhysicsConfig(physics.Bounds{}))
	assert.Zero(t, w.Config().Gravity)
}

func TestCleanPrefabPath(t *testing.T) {
	assert.Equal(t, "tuning.yaml", cleanPrefabPath("prefabs/tuning.yaml"))
	assert.Equal(t, "tuning.yaml", cleanPrefabPath("tuning.yaml"))
	assert.Equal(t, "", cleanPrefabPath(""))
}

func TestLoadMissing(t *testing.T) {
	_, err := LoadSpec[Tuning]("missing.yaml")
	require.Error(t, err)
}

func TestFileFilters(t *testing.T) {
	assert.True(t, IsTuningFile("prefabs/tuning.yaml"))
	assert.True(t, IsTuningFile("a.YML"))
	assert.False(t, IsTuningFile("level.json"))
	assert.True(t, IsLevelFile("levels/first_echo.json"))
	assert.False(t, IsLevelFile("notes.txt"))
}

func TestWatcherReportsChanges(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir, filepath.Join(dir, "does-not-exist"))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	target := filepath.Join(dir, "tuning.yaml")
	require.NoError(t, os.WriteFile(target, []byte("physics: {}\n"), 0o644))

	select {
	case name := <-w.Events:
		assert.Equal(t, target, name)
	case <-time.After(5 * time.Second):
		t.Fatal("no event for tuning.yaml")
	}
}

func TestWatcherCloseEndsEvents(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	select {
	case _, ok := <-w.Events:
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("events channel stayed open")
	}
}
