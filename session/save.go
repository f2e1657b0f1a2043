package session

import (
	"errors"
	"fmt"
	"math"

	"github.com/milk9111/echoes/echo"
	"github.com/milk9111/echoes/physics"
)

var ErrSaveMismatch = errors.New("session: save belongs to another level")

// PlayerSave is the saved player state.
type PlayerSave struct {
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
	VX       float64     `json:"vx"`
	VY       float64     `json:"vy"`
	Facing   echo.Facing `json:"facing"`
	Energy   float64     `json:"energy"`
	Cooldown float64     `json:"cooldown"`
}

// SaveData is everything needed to resume a level.
type SaveData struct {
	Level     string       `json:"level"`
	Elapsed   float64      `json:"elapsed"`
	Player    PlayerSave   `json:"player"`
	Echoes    []echo.State `json:"echoes"`
	Collected []string     `json:"collected,omitempty"`
	Complete  bool         `json:"complete,omitempty"`
}

// Snapshot captures the session. The recorder's partial timeline is not saved;
// recording restarts on Restore.
func (s *Session) Snapshot() SaveData {
	pos, vel := s.player.Position(), s.player.Velocity()
	return SaveData{
		Level:   s.level.Name,
		Elapsed: s.elapsed,
		Player: PlayerSave{
			X:        pos.X,
			Y:        pos.Y,
			VX:       vel.X,
			VY:       vel.Y,
			Facing:   s.player.facing,
			Energy:   s.player.energy,
			Cooldown: s.player.cooldown,
		},
		Echoes:    s.echoes.Export(),
		Collected: s.puzzle.Collected(),
		Complete:  s.puzzle.GoalReached(),
	}
}

// Restore loads data into the session. Nothing changes when data is rejected.
func (s *Session) Restore(data SaveData) error {
	if data.Level != s.level.Name {
		return fmt.Errorf("%w: %q, running %q", ErrSaveMismatch, data.Level, s.level.Name)
	}
	p := data.Player
	for _, v := range []float64{p.X, p.Y, p.VX, p.VY, p.Energy, p.Cooldown, data.Elapsed} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("session: restore: non-finite value in save")
		}
	}
	if err := s.echoes.Import(data.Echoes); err != nil {
		return fmt.Errorf("session: restore: %w", err)
	}

	s.world.Teleport(s.player.Handle(), physics.Vector{X: p.X, Y: p.Y}, physics.Vector{X: p.VX, Y: p.VY})
	if p.Facing == echo.FacingLeft || p.Facing == echo.FacingRight {
		s.player.facing = p.Facing
	}
	s.player.energy = math.Max(0, math.Min(s.player.cfg.MaxEnergy, p.Energy))
	s.player.cooldown = math.Max(0, p.Cooldown)
	s.puzzle.RestoreProgress(data.Collected, data.Complete)
	s.elapsed = data.Elapsed
	s.rec.Start()
	return nil
}
