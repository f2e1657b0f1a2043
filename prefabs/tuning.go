package prefabs

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/echoes/echo"
	"github.com/milk9111/echoes/physics"
)

const TuningFile = "tuning.yaml"

var ErrInvalidTuning = errors.New("prefabs: invalid tuning")

type PhysicsSpec struct {
	Gravity        float64 `yaml:"gravity"`
	AirResistance  float64 `yaml:"air_resistance"`
	GroundFriction float64 `yaml:"ground_friction"`
	CellSize       float64 `yaml:"cell_size"`
}

type RecorderSpec struct {
	Period   float64 `yaml:"period"`
	Capacity int     `yaml:"capacity"`
}

type EchoSpec struct {
	Capacity    int     `yaml:"capacity"`
	MaxAge      float64 `yaml:"max_age"`
	Width       float64 `yaml:"width"`
	Height      float64 `yaml:"height"`
	Mass        float64 `yaml:"mass"`
	Restitution float64 `yaml:"restitution"`
}

// PlayerSpec tunes the player body and its echo budget.
type PlayerSpec struct {
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	Mass         float64 `yaml:"mass"`
	MoveSpeed    float64 `yaml:"move_speed"`
	JumpSpeed    float64 `yaml:"jump_speed"`
	MaxEnergy    float64 `yaml:"max_energy"`
	EnergyRegen  float64 `yaml:"energy_regen"`
	EchoCost     float64 `yaml:"echo_cost"`
	EchoCooldown float64 `yaml:"echo_cooldown"`
}

// Tuning is the gameplay configuration read from tuning.yaml.
type Tuning struct {
	Physics  PhysicsSpec  `yaml:"physics"`
	Recorder RecorderSpec `yaml:"recorder"`
	Echo     EchoSpec     `yaml:"echo"`
	Player   PlayerSpec   `yaml:"player"`
}

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// LoadTuning loads and validates tuning.yaml.
func LoadTuning() (Tuning, error) {
	t, err := LoadSpec[Tuning](TuningFile)
	if err != nil {
		return Tuning{}, err
	}
	if err := t.Validate(); err != nil {
		return Tuning{}, err
	}
	return t, nil
}

// ParseTuning decodes a tuning document without touching the filesystem.
func ParseTuning(data []byte) (Tuning, error) {
	var t Tuning
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tuning{}, fmt.Errorf("prefabs: unmarshal tuning: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Tuning{}, err
	}
	return t, nil
}

// Validate rejects values no component can run with. Zero fields are allowed where the
// consuming package has a default.
func (t Tuning) Validate() error {
	checks := []struct {
		name string
		ok   bool
	}{
		{"physics.gravity", t.Physics.Gravity >= 0},
		{"physics.air_resistance", t.Physics.AirResistance >= 0 && t.Physics.AirResistance <= 1},
		{"physics.ground_friction", t.Physics.GroundFriction >= 0 && t.Physics.GroundFriction <= 1},
		{"physics.cell_size", t.Physics.CellSize >= 0},
		{"recorder.period", t.Recorder.Period >= 0},
		{"recorder.capacity", t.Recorder.Capacity >= 0},
		{"echo.capacity", t.Echo.Capacity >= 0},
		{"echo.max_age", t.Echo.MaxAge >= 0},
		{"echo.restitution", t.Echo.Restitution >= 0 && t.Echo.Restitution <= 1},
		{"player.width", t.Player.Width > 0},
		{"player.height", t.Player.Height > 0},
		{"player.mass", t.Player.Mass > 0},
		{"player.max_energy", t.Player.MaxEnergy >= 0},
		{"player.echo_cost", t.Player.EchoCost >= 0},
		{"player.echo_cooldown", t.Player.EchoCooldown >= 0},
	}
	for _, c := range checks {
		if !c.ok {
			return fmt.Errorf("%w: %s", ErrInvalidTuning, c.name)
		}
	}
	return nil
}

// PhysicsConfig converts the physics section. Bounds come from the level.
func (t Tuning) PhysicsConfig(bounds physics.Bounds) physics.Config {
	return physics.Config{
		Gravity:        t.Physics.Gravity,
		AirResistance:  t.Physics.AirResistance,
		GroundFriction: t.Physics.GroundFriction,
		CellSize:       t.Physics.CellSize,
		Bounds:         bounds,
	}
}

func (t Tuning) RecorderConfig() echo.RecorderConfig {
	return echo.RecorderConfig{
		Period:   t.Recorder.Period,
		Capacity: t.Recorder.Capacity,
	}
}

func (t Tuning) LifecycleConfig() echo.LifecycleConfig {
	return echo.LifecycleConfig{
		Capacity:    t.Echo.Capacity,
		MaxAge:      t.Echo.MaxAge,
		Width:       t.Echo.Width,
		Height:      t.Echo.Height,
		Mass:        t.Echo.Mass,
		Restitution: t.Echo.Restitution,
	}
}
