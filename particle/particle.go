package particle

import (
	"math"

	"corephysics/vecmath"
)

// Tint is a rendering color hint carried by the particle so an external
// renderer need not maintain its own id-keyed color table. The core never
// reads it.
type Tint struct {
	R, G, B, A uint8
}

// Particle is one simulated body: identity, kinematic state, shape, tint,
// and an at-most-one-of-each component bag. Components are plain optional
// fields rather than a type-erased map — each is a statically known column
// of the particle "row", giving O(1) access without runtime type metadata
// (DESIGN NOTES, "dynamic per-particle component bag").
type Particle struct {
	ID ID

	Position        vecmath.Vector
	Velocity        vecmath.Vector
	AngularVelocity float64
	Orientation     float64
	Mass            float64 // >0 normal; <=0 "effectively infinite"

	Shape Shape
	Tint  Tint

	Gravity   *GravityParams
	Collision *CollisionParams
	Dynamics  *DynamicsParams
	Boundary  *BoundaryPolicy
}

// InverseMass returns 0 for a non-positive (effectively infinite) mass, or
// 1/Mass otherwise.
func (p *Particle) InverseMass() float64 {
	return vecmath.InverseMass(p.Mass)
}

// IsStatic reports whether the particle should never move under force or
// impulse: either it carries no Collision component and thus participates
// in no resolver math, or its Collision component marks it Static.
func (p *Particle) IsStatic() bool {
	return p.Collision == nil || p.Collision.Static
}

// finite reports whether the particle's kinematic state is admissible
// (InvariantViolation candidates per §7 are non-finite position/velocity).
func (p *Particle) finite() bool {
	return p.Position.Finite() && p.Velocity.Finite() &&
		!isNaNOrInf(p.AngularVelocity)
}

func isNaNOrInf(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}
