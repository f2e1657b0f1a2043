package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func assertVec(t *testing.T, want, got Vector) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, eps, "x")
	assert.InDelta(t, want.Y, got.Y, eps, "y")
}

func TestTestPair(t *testing.T) {
	cases := []struct {
		name        string
		a, b        BodySpec
		hit         bool
		normal      Vector
		penetration float64
	}{
		{
			name: "rect_rect_apart",
			a:    rectAt(0, 0, 10, 10),
			b:    rectAt(20, 0, 10, 10),
		},
		{
			name: "rect_rect_touching_edges",
			a:    rectAt(0, 0, 10, 10),
			b:    rectAt(10, 0, 10, 10),
		},
		{
			name:        "rect_rect_horizontal",
			a:           rectAt(0, 0, 20, 20),
			b:           rectAt(18, 2, 20, 20),
			hit:         true,
			normal:      Vector{X: -1},
			penetration: 2,
		},
		{
			name:        "rect_rect_vertical_a_above",
			a:           rectAt(0, 0, 20, 20),
			b:           rectAt(2, 19, 20, 20),
			hit:         true,
			normal:      Vector{Y: -1},
			penetration: 1,
		},
		{
			name:        "rect_rect_tie_prefers_vertical",
			a:           rectAt(0, 0, 20, 20),
			b:           rectAt(10, 10, 20, 20),
			hit:         true,
			normal:      Vector{Y: -1},
			penetration: 10,
		},
		{
			name:        "circle_circle",
			a:           circleAt(0, 0, 10),
			b:           circleAt(15, 0, 10),
			hit:         true,
			normal:      Vector{X: -1},
			penetration: 5,
		},
		{
			name:        "circle_circle_coincident_uses_fallback",
			a:           circleAt(5, 5, 3),
			b:           circleAt(5, 5, 3),
			hit:         true,
			normal:      Vector{X: 1},
			penetration: 6,
		},
		{
			name: "circle_circle_apart",
			a:    circleAt(0, 0, 10),
			b:    circleAt(20, 0, 10),
		},
		{
			name:        "circle_on_rect",
			a:           circleAt(0, -15, 10),
			b:           rectAt(0, 0, 40, 20),
			hit:         true,
			normal:      Vector{Y: -1},
			penetration: 5,
		},
		{
			name:        "rect_under_circle_negates_normal",
			a:           rectAt(0, 0, 40, 20),
			b:           circleAt(0, -15, 10),
			hit:         true,
			normal:      Vector{Y: 1},
			penetration: 5,
		},
		{
			name:        "circle_center_inside_rect_uses_fallback",
			a:           circleAt(0, 0, 5),
			b:           rectAt(0, 0, 40, 40),
			hit:         true,
			normal:      Vector{X: 1},
			penetration: 5,
		},
		{
			name: "circle_near_rect_corner_misses",
			a:    circleAt(28, 28, 10),
			b:    rectAt(0, 0, 40, 40),
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a := testBody(t, 1, c.a)
			b := testBody(t, 2, c.b)
			contact, ok := TestPair(a, b)
			require.Equal(t, c.hit, ok)
			if !c.hit {
				return
			}
			assert.Same(t, a, contact.A)
			assert.Same(t, b, contact.B)
			assertVec(t, c.normal, contact.Normal)
			assert.InDelta(t, c.penetration, contact.Penetration, eps)
			assert.InDelta(t, 1, contact.Normal.Length(), eps)
			assert.False(t, math.IsNaN(contact.Point.X) || math.IsNaN(contact.Point.Y))
		})
	}
}

func TestTestPairSameBody(t *testing.T) {
	a := testBody(t, 1, rectAt(0, 0, 10, 10))
	_, ok := TestPair(a, a)
	assert.False(t, ok)
}

func TestResolveSeparatesRectangles(t *testing.T) {
	cases := []struct {
		name string
		a, b BodySpec
	}{
		{"equal_mass_side", rectAt(0, 0, 20, 20), rectAt(15, 3, 20, 20)},
		{"equal_mass_stacked", rectAt(0, 0, 20, 20), rectAt(1, 18, 20, 20)},
		{"heavy_vs_light", BodySpec{Position: Vector{}, Shape: Rect(30, 10), Mass: 10}, rectAt(5, 8, 10, 10)},
		{"corner_overlap", rectAt(0, 0, 50, 50), rectAt(30, 35, 40, 40)},
		{"static_floor", rectAt(0, 0, 30, 30), BodySpec{Position: Vector{Y: 20}, Shape: Rect(200, 20), Static: true}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a := testBody(t, 1, c.a)
			b := testBody(t, 2, c.b)
			contact, ok := TestPair(a, b)
			require.True(t, ok)

			Resolve(contact)

			after, ok := TestPair(a, b)
			if ok {
				assert.LessOrEqual(t, after.Penetration, 1e-9)
			}
		})
	}
}

func TestResolveElasticHeadOn(t *testing.T) {
	a := testBody(t, 1, BodySpec{Position: Vector{}, Velocity: Vector{X: 5}, Shape: Circle(10), Mass: 1, Restitution: 1})
	b := testBody(t, 2, BodySpec{Position: Vector{X: 15}, Velocity: Vector{X: -5}, Shape: Circle(10), Mass: 1, Restitution: 1})

	contact, ok := TestPair(a, b)
	require.True(t, ok)
	Resolve(contact)

	assertVec(t, Vector{X: -5}, a.Velocity())
	assertVec(t, Vector{X: 5}, b.Velocity())
	// Equal masses split the 5 unit penetration evenly.
	assertVec(t, Vector{X: -2.5}, a.Position())
	assertVec(t, Vector{X: 17.5}, b.Position())
}

func TestResolveSkipsSeparatingBodies(t *testing.T) {
	a := testBody(t, 1, BodySpec{Position: Vector{}, Velocity: Vector{X: -3}, Shape: Circle(10), Mass: 1, Restitution: 1})
	b := testBody(t, 2, BodySpec{Position: Vector{X: 15}, Velocity: Vector{X: 3}, Shape: Circle(10), Mass: 1, Restitution: 1})

	contact, ok := TestPair(a, b)
	require.True(t, ok)
	Resolve(contact)

	assertVec(t, Vector{X: -3}, a.Velocity())
	assertVec(t, Vector{X: 3}, b.Velocity())
}

func TestResolveStaticAndGrounded(t *testing.T) {
	platform := testBody(t, 1, BodySpec{Position: Vector{X: 100, Y: 200}, Shape: Rect(200, 20), Static: true})
	player := testBody(t, 2, BodySpec{Position: Vector{X: 100, Y: 176}, Velocity: Vector{Y: 120}, Shape: Rect(30, 30), Mass: 1})

	contact, ok := TestPair(platform, player)
	require.True(t, ok)
	assertVec(t, Vector{Y: 1}, contact.Normal)

	Resolve(contact)

	assert.InDelta(t, 190.0, player.Position().Y+15, eps, "bottom edge should sit on the platform top")
	assert.InDelta(t, 0.0, player.Velocity().Y, eps)
	assert.True(t, player.Grounded())
	assertVec(t, Vector{X: 100, Y: 200}, platform.Position())
	assertVec(t, Vector{}, platform.Velocity())
}

func TestResolveRestitutionUsesMinimum(t *testing.T) {
	a := testBody(t, 1, BodySpec{Position: Vector{}, Velocity: Vector{X: 10}, Shape: Circle(10), Mass: 1, Restitution: 1})
	b := testBody(t, 2, BodySpec{Position: Vector{X: 15}, Shape: Circle(10), Mass: 1, Restitution: 0})

	contact, ok := TestPair(a, b)
	require.True(t, ok)
	Resolve(contact)

	// Perfectly inelastic: both end with the shared velocity.
	assertVec(t, Vector{X: 5}, a.Velocity())
	assertVec(t, Vector{X: 5}, b.Velocity())
}

func TestResolveIgnoresSensorsAndImmovablePairs(t *testing.T) {
	cases := []struct {
		name string
		a, b BodySpec
	}{
		{
			name: "sensor",
			a:    BodySpec{Position: Vector{}, Shape: Rect(20, 20), Static: true, Sensor: true},
			b:    rectAt(5, 5, 20, 20),
		},
		{
			name: "static_and_kinematic",
			a:    BodySpec{Position: Vector{}, Shape: Rect(20, 20), Static: true},
			b:    BodySpec{Position: Vector{X: 5, Y: 5}, Shape: Rect(20, 20), Mass: 1, Kinematic: true},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a := testBody(t, 1, c.a)
			b := testBody(t, 2, c.b)
			contact, ok := TestPair(a, b)
			require.True(t, ok)
			Resolve(contact)
			assertVec(t, c.a.Position, a.Position())
			assertVec(t, c.b.Position, b.Position())
		})
	}
}
