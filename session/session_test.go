package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/echoes/echo"
	"github.com/milk9111/echoes/levels"
	"github.com/milk9111/echoes/physics"
	"github.com/milk9111/echoes/prefabs"
)

const tick = 1.0 / 60.0

func newSession(t *testing.T, name string) *Session {
	t.Helper()
	lvl, err := levels.LoadLevelFromFS(name)
	require.NoError(t, err)
	s, err := New(DefaultConfig(), lvl)
	require.NoError(t, err)
	return s
}

// runUntil ticks with in until cond holds, failing after limit ticks.
func runUntil(t *testing.T, s *Session, in Intent, limit int, cond func() bool) {
	t.Helper()
	for i := 0; i < limit; i++ {
		if cond() {
			return
		}
		s.Tick(tick, in)
	}
	require.True(t, cond(), "condition not met after %d ticks", limit)
}

func run(s *Session, in Intent, n int) {
	for i := 0; i < n; i++ {
		s.Tick(tick, in)
	}
}

func TestNewSession(t *testing.T) {
	s := newSession(t, "first_echo")

	assert.Equal(t, len(s.Puzzle().Fixtures())+1, s.World().Len())
	assert.Equal(t, s.Level().Spawn, s.Player().Position())
	assert.True(t, s.Recorder().Recording())
	tl := s.Recorder().CurrentTimeline()
	assert.Equal(t, 1, tl.Len())
	assert.Equal(t, s.Level().Bounds(), s.World().Bounds())
	assert.Equal(t, 100.0, s.Player().Energy())

	_, err := New(DefaultConfig(), nil)
	require.Error(t, err)
}

func TestConfigFromTuning(t *testing.T) {
	tuning, err := prefabs.LoadTuning()
	require.NoError(t, err)
	cfg := ConfigFromTuning(tuning)
	assert.Equal(t, 420.0, cfg.Player.JumpSpeed)
	assert.Equal(t, 5, cfg.Echo.Capacity)

	lvl, err := levels.LoadLevelFromFS("awakening")
	require.NoError(t, err)
	_, err = New(cfg, lvl)
	require.NoError(t, err)
}

func TestTickClampsFrameTime(t *testing.T) {
	s := newSession(t, "awakening")
	s.Tick(1.0, Intent{})
	assert.InDelta(t, MaxFrameDT, s.Elapsed(), 1e-12)

	s.Tick(0, Intent{})
	s.Tick(-1, Intent{})
	assert.InDelta(t, MaxFrameDT, s.Elapsed(), 1e-12)
}

func TestStopHaltsTicks(t *testing.T) {
	s := newSession(t, "awakening")
	run(s, Intent{}, 5)
	before := s.Elapsed()
	pos := s.Player().Position()

	s.Stop()
	s.Stop()
	assert.True(t, s.Stopped())
	assert.Nil(t, s.Tick(tick, Intent{MoveX: 1}))
	assert.Equal(t, before, s.Elapsed())
	assert.Equal(t, pos, s.Player().Position())
}

func TestPlayerRestsAndMoves(t *testing.T) {
	s := newSession(t, "awakening")
	p := s.Player()

	run(s, Intent{}, 60)
	assert.True(t, p.Grounded())
	assert.InDelta(t, 565, p.Position().Y, 1)

	startX := p.Position().X
	run(s, Intent{MoveX: 1}, 20)
	assert.Greater(t, p.Position().X, startX+20)
	assert.Equal(t, echo.FacingRight, p.Facing())

	run(s, Intent{MoveX: -1}, 5)
	assert.Equal(t, echo.FacingLeft, p.Facing())

	run(s, Intent{}, 30)
	require.True(t, p.Grounded())
	s.Tick(tick, Intent{Jump: true})
	assert.Less(t, p.Velocity().Y, 0.0)
	assert.False(t, p.Grounded())

	// No double jump in the air.
	vy := p.Velocity().Y
	s.Tick(tick, Intent{Jump: true})
	assert.Greater(t, p.Velocity().Y, vy)
}

func TestEchoEnergyAndCooldown(t *testing.T) {
	s := newSession(t, "awakening")
	p := s.Player()
	run(s, Intent{}, 30)

	s.Tick(tick, Intent{Echo: true})
	assert.Equal(t, 1, s.Echoes().Len())
	assert.InDelta(t, 70, p.Energy(), 1e-9)
	assert.InDelta(t, 2, p.Cooldown(), 1e-9)
	assert.False(t, p.CanCreateEcho())

	s.Tick(tick, Intent{Echo: true})
	assert.Equal(t, 1, s.Echoes().Len(), "cooldown blocks a second echo")

	run(s, Intent{}, 121)
	assert.Zero(t, p.Cooldown())
	assert.InDelta(t, 100, p.Energy(), 1e-9)

	s.Tick(tick, Intent{Echo: true})
	assert.Equal(t, 2, s.Echoes().Len())

	s.Tick(tick, Intent{ClearEchoes: true})
	assert.Zero(t, s.Echoes().Len())
	assert.True(t, s.Recorder().Recording())
}

func TestEchoHoldsSwitch(t *testing.T) {
	s := newSession(t, "first_echo")
	p := s.Player()
	run(s, Intent{}, 10)

	// Walk onto the pressure plate and wait there.
	runUntil(t, s, Intent{MoveX: 1}, 300, func() bool { return p.Position().X > 155 })
	run(s, Intent{}, 30)
	require.True(t, s.Puzzle().BarrierOpen("barrier_1"))

	s.Tick(tick, Intent{Echo: true})
	require.Equal(t, 1, s.Echoes().Len())

	// Step off. The echo walks the same path and takes over the plate.
	runUntil(t, s, Intent{MoveX: 1}, 300, func() bool { return p.Position().X > 230 })
	run(s, Intent{}, 180)

	views := s.Echoes().ActiveEchoes()
	require.Len(t, views, 1)
	assert.Equal(t, echo.ModeFreeFall, views[0].Mode)
	assert.InDelta(t, 165, views[0].X, 20)
	assert.True(t, s.Puzzle().BarrierOpen("barrier_1"))
	assert.Equal(t, []string{"plate"}, s.Puzzle().Pressed())
}

func TestPlayerRespawnsAfterFalling(t *testing.T) {
	s := newSession(t, "two_minds")
	p := s.Player()
	s.World().Teleport(p.Handle(), physics.Vector{X: 540, Y: 500}, physics.Vector{})

	runUntil(t, s, Intent{}, 120, func() bool { return p.Position().X == s.Level().Spawn.X })
	assert.True(t, s.World().Bounds().Contains(p.Position()))
}

func TestSnapshotRestore(t *testing.T) {
	s := newSession(t, "first_echo")
	run(s, Intent{MoveX: 1}, 40)
	s.Tick(tick, Intent{Echo: true})
	run(s, Intent{MoveX: -1}, 20)

	snap := s.Snapshot()
	require.Len(t, snap.Echoes, 1)

	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	var decoded SaveData
	require.NoError(t, json.Unmarshal(raw, &decoded))

	fresh := newSession(t, "first_echo")
	require.NoError(t, fresh.Restore(decoded))

	assert.Equal(t, 1, fresh.Echoes().Len())
	assert.InDelta(t, snap.Player.X, fresh.Player().Position().X, 1e-9)
	assert.InDelta(t, snap.Player.Energy, fresh.Player().Energy(), 1e-9)
	assert.Equal(t, snap.Player.Facing, fresh.Player().Facing())
	assert.Equal(t, snap.Collected, fresh.Puzzle().Collected())
	assert.InDelta(t, snap.Elapsed, fresh.Elapsed(), 1e-9)
	assert.Equal(t, snap.Echoes[0].Age, fresh.Echoes().Export()[0].Age)
}

func TestRestoreRollsBackProgress(t *testing.T) {
	s := newSession(t, "first_echo")
	p := s.Player()
	run(s, Intent{}, 10)
	early := s.Snapshot()
	require.Empty(t, early.Collected)
	require.False(t, early.Complete)

	runUntil(t, s, Intent{MoveX: 1}, 300, func() bool { return len(s.Puzzle().Collected()) > 0 })
	s.World().Teleport(p.Handle(), physics.Vector{X: 720, Y: 565}, physics.Vector{})
	runUntil(t, s, Intent{}, 10, s.Complete)
	late := s.Snapshot()
	require.True(t, late.Complete)

	require.NoError(t, s.Restore(early))
	assert.Empty(t, s.Puzzle().Collected())
	assert.False(t, s.Complete())
	s.Tick(tick, Intent{})
	assert.False(t, s.Complete())

	require.NoError(t, s.Restore(late))
	assert.Equal(t, []string{"memory_1"}, s.Puzzle().Collected())
	assert.True(t, s.Complete())
}

func TestDefaultPlayerConfig(t *testing.T) {
	cfg := DefaultPlayerConfig()
	assert.Equal(t, 30.0, cfg.EchoCost)
	assert.Equal(t, 2.0, cfg.EchoCooldown)
	assert.Equal(t, 20.0, cfg.EnergyRegen)
	assert.Equal(t, 100.0, cfg.MaxEnergy)

	// Explicit values are kept.
	cfg = PlayerConfig{EchoCost: 10, EchoCooldown: 0.5, EnergyRegen: 5}.withDefaults()
	assert.Equal(t, 10.0, cfg.EchoCost)
	assert.Equal(t, 0.5, cfg.EchoCooldown)
	assert.Equal(t, 5.0, cfg.EnergyRegen)
}

func TestRestoreRejects(t *testing.T) {
	s := newSession(t, "first_echo")
	other := newSession(t, "awakening")

	err := s.Restore(other.Snapshot())
	require.ErrorIs(t, err, ErrSaveMismatch)

	bad := s.Snapshot()
	bad.Echoes = []echo.State{{OriginX: 1, OriginY: 1, Age: -1}}
	require.ErrorIs(t, s.Restore(bad), echo.ErrInvalidState)
}
