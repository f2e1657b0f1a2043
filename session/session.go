package session

import (
	"fmt"
	"log"
	"math"

	"github.com/milk9111/echoes/echo"
	"github.com/milk9111/echoes/levels"
	"github.com/milk9111/echoes/metrics"
	"github.com/milk9111/echoes/physics"
	"github.com/milk9111/echoes/prefabs"
	"github.com/milk9111/echoes/puzzle"
)

// MaxFrameDT caps one tick. Time beyond it is dropped, not carried over.
const MaxFrameDT = 1.0 / 30.0

// Config wires a session. Physics bounds always come from the level.
type Config struct {
	Physics  physics.Config
	Recorder echo.RecorderConfig
	Echo     echo.LifecycleConfig
	Player   PlayerConfig
	// Rules overrides the level's own rules when set.
	Rules   puzzle.Rules
	Metrics *metrics.Collector
}

func DefaultConfig() Config {
	return Config{
		Physics:  physics.DefaultConfig(),
		Recorder: echo.RecorderConfig{},
		Echo:     echo.DefaultLifecycleConfig(),
		Player:   DefaultPlayerConfig(),
	}
}

// ConfigFromTuning builds a Config from tuning.yaml values.
func ConfigFromTuning(t prefabs.Tuning) Config {
	return Config{
		Physics:  t.PhysicsConfig(physics.Bounds{}),
		Recorder: t.RecorderConfig(),
		Echo:     t.LifecycleConfig(),
		Player: PlayerConfig{
			Width:        t.Player.Width,
			Height:       t.Player.Height,
			Mass:         t.Player.Mass,
			MoveSpeed:    t.Player.MoveSpeed,
			JumpSpeed:    t.Player.JumpSpeed,
			MaxEnergy:    t.Player.MaxEnergy,
			EnergyRegen:  t.Player.EnergyRegen,
			EchoCost:     t.Player.EchoCost,
			EchoCooldown: t.Player.EchoCooldown,
		},
	}
}

// Intent is what the player asked for this tick.
type Intent struct {
	// MoveX is clamped to [-1, 1].
	MoveX       float64
	Jump        bool
	Echo        bool
	ClearEchoes bool
}

// Session runs one level: the world, the player, its recorder, the echoes and the
// puzzle. It is driven one tick at a time and never blocks.
type Session struct {
	cfg     Config
	level   *levels.Level
	world   *physics.World
	player  *Player
	rec     *echo.Recorder
	echoes  *echo.Lifecycle
	puzzle  *puzzle.Runtime
	metrics *metrics.Collector

	elapsed float64
	stopped bool
}

// New builds a session for lvl and starts recording the player.
func New(cfg Config, lvl *levels.Level) (*Session, error) {
	if lvl == nil {
		return nil, fmt.Errorf("session: nil level")
	}
	cfg.Player = cfg.Player.withDefaults()
	cfg.Physics.Bounds = lvl.Bounds()
	world := physics.NewWorld(cfg.Physics)

	rt, err := puzzle.NewRuntime(world, lvl, cfg.Rules)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	player, err := newPlayer(world, lvl.Spawn, cfg.Player)
	if err != nil {
		return nil, fmt.Errorf("session: player: %w", err)
	}
	rt.SetPlayer(player.Handle())

	rec := echo.NewRecorder(player, cfg.Recorder)
	rec.Start()

	s := &Session{
		cfg:     cfg,
		level:   lvl,
		world:   world,
		player:  player,
		rec:     rec,
		echoes:  echo.NewLifecycle(world, rec, cfg.Echo),
		puzzle:  rt,
		metrics: cfg.Metrics,
	}
	log.Printf("session: started level %s (%s)", lvl.Name, lvl.Title)
	return s, nil
}

func (s *Session) Level() *levels.Level { return s.level }
func (s *Session) World() *physics.World { return s.world }
func (s *Session) Player() *Player { return s.player }
func (s *Session) Recorder() *echo.Recorder { return s.rec }
func (s *Session) Echoes() *echo.Lifecycle { return s.echoes }
func (s *Session) Puzzle() *puzzle.Runtime { return s.puzzle }
func (s *Session) Elapsed() float64 { return s.elapsed }

// Stop halts the session. Later ticks do nothing.
func (s *Session) Stop() {
	if !s.stopped {
		log.Printf("session: stopped level %s", s.level.Name)
	}
	s.stopped = true
}

func (s *Session) Stopped() bool {
	return s.stopped
}

// Complete reports whether the player has reached the goal.
func (s *Session) Complete() bool {
	return s.puzzle.GoalReached()
}

// Tick advances the session by one frame and returns the puzzle events it produced.
// frameDT is clamped to MaxFrameDT.
func (s *Session) Tick(frameDT float64, in Intent) []puzzle.Event {
	if s.stopped || !(frameDT > 0) || math.IsInf(frameDT, 0) {
		return nil
	}
	dt := math.Min(frameDT, MaxFrameDT)
	s.elapsed += dt

	if in.ClearEchoes {
		s.echoes.ClearAll()
		s.rec.Start()
	}
	s.player.control(dt, in)
	if in.Echo {
		s.createEcho()
	}

	s.echoes.Update(dt)
	s.world.Step(dt)
	s.respawnIfLost()
	s.rec.Update(dt)

	events, err := s.puzzle.Update()
	if err != nil {
		log.Printf("session: puzzle rules: %v", err)
	}

	s.metrics.ObserveStep(s.world.Stats(), s.echoes.Len())
	for _, evt := range events {
		s.metrics.PuzzleEvent(evt.Kind.String())
	}
	return events
}

// createEcho spends energy and turns the recording so far into an echo that returns
// to the player's current position when it falls out of the world.
func (s *Session) createEcho() (echo.ID, bool) {
	if !s.player.CanCreateEcho() {
		return 0, false
	}
	pos := s.player.Position()
	id, err := s.echoes.Capture(pos.X, pos.Y)
	if err != nil {
		log.Printf("session: create echo: %v", err)
		return 0, false
	}
	s.player.spendEcho()
	s.metrics.EchoCreated()
	return id, true
}

func (s *Session) respawnIfLost() {
	if s.world.Bounds().Contains(s.player.Position()) {
		return
	}
	log.Printf("session: player left level %s, respawning", s.level.Name)
	s.world.Teleport(s.player.Handle(), s.level.Spawn, physics.Vector{})
}
