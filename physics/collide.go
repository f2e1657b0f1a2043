package physics

import (
	"math"

	"github.com/jakecoffman/cp"
)

// fallbackNormal is used whenever a contact direction has zero length.
var fallbackNormal = Vector{X: 1, Y: 0}

// Contact describes one overlapping pair. Normal is a unit vector pointing from B to A.
type Contact struct {
	A, B        *Body
	Normal      Vector
	Penetration float64
	Point       Vector
}

// TestPair runs the exact shape test for a and b.
func TestPair(a, b *Body) (Contact, bool) {
	if a == nil || b == nil || a == b {
		return Contact{}, false
	}
	ka, kb := a.shape.Kind, b.shape.Kind
	switch {
	case ka == ShapeRect && kb == ShapeRect:
		return rectRect(a, b)
	case ka == ShapeCircle && kb == ShapeCircle:
		return circleCircle(a, b)
	case ka == ShapeCircle && kb == ShapeRect:
		return circleRect(a, b)
	case ka == ShapeRect && kb == ShapeCircle:
		c, ok := circleRect(b, a)
		if !ok {
			return Contact{}, false
		}
		return Contact{A: a, B: b, Normal: c.Normal.Neg(), Penetration: c.Penetration, Point: c.Point}, true
	}
	return Contact{}, false
}

func rectRect(a, b *Body) (Contact, bool) {
	ab, bb := a.AABB(), b.AABB()
	overlapX := math.Min(ab.R, bb.R) - math.Max(ab.L, bb.L)
	overlapY := math.Min(ab.T, bb.T) - math.Max(ab.B, bb.B)
	if overlapX <= 0 || overlapY <= 0 {
		return Contact{}, false
	}

	c := Contact{
		A: a,
		B: b,
		Point: Vector{
			X: math.Max(ab.L, bb.L) + overlapX/2,
			Y: math.Max(ab.B, bb.B) + overlapY/2,
		},
	}
	// Minimum translation axis; ties resolve vertically so resting contacts stay grounded.
	if overlapX < overlapY {
		c.Normal = Vector{X: axisSign(a.pos.X-b.pos.X, 1)}
		c.Penetration = overlapX
	} else {
		c.Normal = Vector{Y: axisSign(a.pos.Y-b.pos.Y, -1)}
		c.Penetration = overlapY
	}
	return c, true
}

func circleCircle(a, b *Body) (Contact, bool) {
	d := a.pos.Sub(b.pos)
	dist := d.Length()
	radii := a.shape.R + b.shape.R
	if dist >= radii {
		return Contact{}, false
	}
	n := unitOr(d, dist)
	return Contact{
		A:           a,
		B:           b,
		Normal:      n,
		Penetration: radii - dist,
		Point:       a.pos.Sub(n.Mult(a.shape.R)),
	}, true
}

// circleRect tests circle against rect with the circle as A.
func circleRect(circle, rect *Body) (Contact, bool) {
	bb := rect.AABB()
	nearest := Vector{
		X: cp.Clamp(circle.pos.X, bb.L, bb.R),
		Y: cp.Clamp(circle.pos.Y, bb.B, bb.T),
	}
	d := circle.pos.Sub(nearest)
	dist := d.Length()
	if dist >= circle.shape.R {
		return Contact{}, false
	}
	return Contact{
		A:           circle,
		B:           rect,
		Normal:      unitOr(d, dist),
		Penetration: circle.shape.R - dist,
		Point:       nearest,
	}, true
}

func unitOr(d Vector, length float64) Vector {
	if length > 0 && !math.IsInf(length, 0) {
		return d.Mult(1 / length)
	}
	return fallbackNormal
}

func axisSign(delta, tie float64) float64 {
	switch {
	case delta > 0:
		return 1
	case delta < 0:
		return -1
	default:
		return tie
	}
}
