package physics

import "math"

// groundNormalThreshold is the vertical normal component beyond which a contact counts
// as ground support.
const groundNormalThreshold = 0.5

// Resolve separates the bodies of c and applies an impulse along its normal.
// Contacts involving a sensor are left untouched.
func Resolve(c Contact) {
	a, b := c.A, c.B
	if a == nil || b == nil || a.sensor || b.sensor {
		return
	}
	invA, invB := a.inverseMass(), b.inverseMass()
	invSum := invA + invB
	if invSum == 0 {
		return
	}

	// Each body moves by the other's share of the total mass. An immovable body has an
	// inverse mass of zero, so the whole penetration goes to its partner.
	if c.Penetration > 0 {
		if invA > 0 {
			a.pos = a.pos.Add(c.Normal.Mult(c.Penetration * invA / invSum))
		}
		if invB > 0 {
			b.pos = b.pos.Sub(c.Normal.Mult(c.Penetration * invB / invSum))
		}
	}

	rel := a.vel.Sub(b.vel)
	along := rel.Dot(c.Normal)
	if along > 0 {
		return
	}

	e := math.Min(a.restitution, b.restitution)
	j := -(1 + e) * along / invSum
	impulse := c.Normal.Mult(j)
	if invA > 0 {
		a.vel = a.vel.Add(impulse.Mult(invA))
	}
	if invB > 0 {
		b.vel = b.vel.Sub(impulse.Mult(invB))
	}

	// Screen coordinates grow downward: a normal pointing up supports A, down supports B.
	if c.Normal.Y < -groundNormalThreshold {
		a.grounded = true
	} else if c.Normal.Y > groundNormalThreshold {
		b.grounded = true
	}
}
