package physics

import (
	"cmp"
	"math"
	"slices"
)

const rayParallelEpsilon = 1e-12

// RayHit is one intersection reported by Raycast.
type RayHit struct {
	Handle   Handle
	Owner    any
	Point    Vector
	Normal   Vector
	Distance float64
}

// Raycast casts a ray from origin along direction and returns every body it enters
// within maxDistance, nearest first. A non-positive maxDistance means unbounded.
// Bodies containing the origin are not reported.
func (w *World) Raycast(origin, direction Vector, maxDistance float64) []RayHit {
	length := direction.Length()
	if !(length > 0) || !finite(origin) || math.IsInf(length, 0) {
		return nil
	}
	dir := direction.Mult(1 / length)
	if !(maxDistance > 0) {
		maxDistance = math.Inf(1)
	}

	var hits []RayHit
	for _, b := range w.bodies {
		var (
			hit RayHit
			ok  bool
		)
		switch b.shape.Kind {
		case ShapeRect:
			hit, ok = rayRect(origin, dir, maxDistance, b)
		case ShapeCircle:
			hit, ok = rayCircle(origin, dir, maxDistance, b)
		}
		if ok {
			hits = append(hits, hit)
		}
	}
	slices.SortStableFunc(hits, func(x, y RayHit) int {
		return cmp.Compare(x.Distance, y.Distance)
	})
	return hits
}

// rayRect is a slab test. Rays parallel to an axis only hit when the origin lies
// within that axis' slab.
func rayRect(origin, dir Vector, maxDistance float64, b *Body) (RayHit, bool) {
	bb := b.AABB()
	near, far := math.Inf(-1), math.Inf(1)
	var normal Vector

	slabs := [2]struct {
		o, d, lo, hi float64
		axis         Vector
	}{
		{o: origin.X, d: dir.X, lo: bb.L, hi: bb.R, axis: Vector{X: 1}},
		{o: origin.Y, d: dir.Y, lo: bb.B, hi: bb.T, axis: Vector{Y: 1}},
	}
	for _, s := range slabs {
		if math.Abs(s.d) < rayParallelEpsilon {
			if s.o < s.lo || s.o > s.hi {
				return RayHit{}, false
			}
			continue
		}
		t1 := (s.lo - s.o) / s.d
		t2 := (s.hi - s.o) / s.d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > near {
			near = t1
			// The entered face faces against the ray.
			normal = s.axis.Mult(-axisSign(s.d, 1))
		}
		far = math.Min(far, t2)
		if near > far {
			return RayHit{}, false
		}
	}
	if near < 0 || near > maxDistance || math.IsInf(near, 0) {
		return RayHit{}, false
	}
	return RayHit{
		Handle:   b.handle,
		Owner:    b.owner,
		Point:    origin.Add(dir.Mult(near)),
		Normal:   normal,
		Distance: near,
	}, true
}

func rayCircle(origin, dir Vector, maxDistance float64, b *Body) (RayHit, bool) {
	f := origin.Sub(b.pos)
	r := b.shape.R
	// dir is unit length, so the quadratic's leading coefficient is 1.
	half := f.Dot(dir)
	c := f.Dot(f) - r*r
	disc := half*half - c
	if disc < 0 {
		return RayHit{}, false
	}
	t := -half - math.Sqrt(disc)
	if t < 0 || t > maxDistance {
		return RayHit{}, false
	}
	point := origin.Add(dir.Mult(t))
	return RayHit{
		Handle:   b.handle,
		Owner:    b.owner,
		Point:    point,
		Normal:   point.Sub(b.pos).Mult(1 / r),
		Distance: t,
	}, true
}
