package session

import (
	"math"

	"github.com/milk9111/echoes/echo"
	"github.com/milk9111/echoes/physics"
)

// PlayerConfig tunes the player body and its echo budget. Zero fields take the defaults.
type PlayerConfig struct {
	Width        float64
	Height       float64
	Mass         float64
	MoveSpeed    float64
	JumpSpeed    float64
	MaxEnergy    float64
	EnergyRegen  float64
	EchoCost     float64
	EchoCooldown float64
}

func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{}.withDefaults()
}

func (c PlayerConfig) withDefaults() PlayerConfig {
	if !(c.Width > 0) {
		c.Width = 30
	}
	if !(c.Height > 0) {
		c.Height = 30
	}
	if !(c.Mass > 0) {
		c.Mass = 1
	}
	if !(c.MoveSpeed > 0) {
		c.MoveSpeed = 200
	}
	if !(c.JumpSpeed > 0) {
		c.JumpSpeed = 420
	}
	if !(c.MaxEnergy > 0) {
		c.MaxEnergy = 100
	}
	if !(c.EnergyRegen > 0) {
		c.EnergyRegen = 20
	}
	if !(c.EchoCost > 0) {
		c.EchoCost = 30
	}
	if !(c.EchoCooldown > 0) {
		c.EchoCooldown = 2
	}
	return c
}

// Player is the controlled body. It is the recorder's actor, so everything it does
// can be replayed by an echo.
type Player struct {
	world  *physics.World
	handle physics.Handle
	cfg    PlayerConfig

	facing   echo.Facing
	energy   float64
	cooldown float64
}

func newPlayer(world *physics.World, spawn physics.Vector, cfg PlayerConfig) (*Player, error) {
	p := &Player{
		world:  world,
		cfg:    cfg,
		facing: echo.FacingRight,
		energy: cfg.MaxEnergy,
	}
	h, err := world.AddBody(physics.BodySpec{
		Position: spawn,
		Shape:    physics.Rect(cfg.Width, cfg.Height),
		Mass:     cfg.Mass,
		Gravity:  true,
		Owner:    p,
	})
	if err != nil {
		return nil, err
	}
	p.handle = h
	return p, nil
}

func (p *Player) Handle() physics.Handle { return p.handle }
func (p *Player) Facing() echo.Facing { return p.facing }
func (p *Player) Energy() float64 { return p.energy }
func (p *Player) Cooldown() float64 { return p.cooldown }
func (p *Player) Config() PlayerConfig { return p.cfg }

func (p *Player) Position() physics.Vector {
	if b, ok := p.world.Body(p.handle); ok {
		return b.Position()
	}
	return physics.Vector{}
}

func (p *Player) Velocity() physics.Vector {
	if b, ok := p.world.Body(p.handle); ok {
		return b.Velocity()
	}
	return physics.Vector{}
}

func (p *Player) Grounded() bool {
	b, ok := p.world.Body(p.handle)
	return ok && b.Grounded()
}

// CanCreateEcho reports whether there is enough energy and the cooldown has run out.
func (p *Player) CanCreateEcho() bool {
	return p.energy >= p.cfg.EchoCost && p.cooldown <= 0
}

// spendEcho charges one echo. It reports false and charges nothing when the player
// cannot create one.
func (p *Player) spendEcho() bool {
	if !p.CanCreateEcho() {
		return false
	}
	p.energy -= p.cfg.EchoCost
	p.cooldown = p.cfg.EchoCooldown
	return true
}

// control applies one tick of intent before the world steps.
func (p *Player) control(dt float64, in Intent) {
	p.cooldown = math.Max(0, p.cooldown-dt)
	p.energy = math.Min(p.cfg.MaxEnergy, p.energy+p.cfg.EnergyRegen*dt)

	move := math.Max(-1, math.Min(1, in.MoveX))
	if math.IsNaN(move) {
		move = 0
	}
	switch {
	case move < 0:
		p.facing = echo.FacingLeft
	case move > 0:
		p.facing = echo.FacingRight
	}

	vel := p.Velocity()
	vel.X = move * p.cfg.MoveSpeed
	if in.Jump && p.Grounded() {
		vel.Y = -p.cfg.JumpSpeed
	}
	p.world.SetVelocity(p.handle, vel)
}
