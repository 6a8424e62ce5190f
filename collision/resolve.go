package collision

import (
	"math"

	"github.com/sirupsen/logrus"

	"corephysics/internal/corelog"
	"corephysics/particle"
	"corephysics/vecmath"
)

const (
	slop           = 0.001
	correctPercent = 0.4
	maxCorrection  = 0.01
	baumgarteBias  = 0.08
	maxLinearSpeed = 15
	minDt          = 1e-5
)

// Resolver runs the positional correction and impulse resolution of §4.7
// against a single contact. It is stateless across contacts; the step
// scheduler owns the iteration loop (§4.7 "Iteration").
type Resolver struct {
	logger *corelog.Logger
}

// NewResolver creates a Resolver. logger may be nil.
func NewResolver(logger *corelog.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// Resolve applies positional correction and normal/friction/angular impulses
// for one contact, in place on store's particles (§4.7).
func (r *Resolver) Resolve(store *particle.Store, c Contact, dt float64) {
	if dt < minDt {
		dt = minDt
	}
	a, okA := store.Get(c.A)
	b, okB := store.Get(c.B)
	if !okA || !okB {
		return
	}

	invA, invB := effectiveInverseMass(a), effectiveInverseMass(b)
	if invA+invB <= 1e-8 {
		return
	}

	fluidA := a.Collision != nil && a.Collision.Fluid
	fluidB := b.Collision != nil && b.Collision.Fluid
	anyFluid := fluidA || fluidB
	bothFluid := fluidA && fluidB

	r.positionalCorrection(a, b, c, invA, invB, fluidA, fluidB, anyFluid)

	n := c.Normal
	vR := b.Velocity.Sub(a.Velocity)
	vn := vR.Dot(n)

	restA, restB := restitutionOf(a), restitutionOf(b)
	e := math.Min(restA, restB)
	if math.Abs(vn) < 0.2 || anyFluid {
		e = 0
	}

	pen := c.Penetration - slop
	if anyFluid {
		pen = 0
	}
	bias := 0.0
	if !anyFluid && pen > 0 {
		bias = baumgarteBias * pen / dt
	}

	j := math.Max(0, (-(1+e)*vn+bias)/(invA+invB))
	impulse := n.Scale(j)
	a.Velocity = a.Velocity.Sub(impulse.Scale(invA))
	b.Velocity = b.Velocity.Add(impulse.Scale(invB))

	if bothFluid {
		r.clampSpeeds(a, b)
		return
	}
	if anyFluid {
		r.projectFluidClosingVelocity(a, b, n, fluidA)
		r.clampSpeeds(a, b)
		return
	}

	r.frictionAndAngular(a, b, c, invA, invB, j)
	r.clampSpeeds(a, b)
	r.groundingUpdate(a, b, n, vR.Dot(n))
}

// effectiveInverseMass is zero for static, missing-collision, or massless
// (non-positive mass) bodies.
func effectiveInverseMass(p *particle.Particle) float64 {
	if p.Collision == nil || p.Collision.Static {
		return 0
	}
	return p.InverseMass()
}

func restitutionOf(p *particle.Particle) float64 {
	if p.Collision == nil {
		return 0
	}
	return p.Collision.Restitution
}

// positionalCorrection implements §4.7 "Positional correction". Fluid
// participants use a direct distance-based separation that prefers to move
// the non-grounded particle, falling back to an even split.
func (r *Resolver) positionalCorrection(a, b *particle.Particle, c Contact, invA, invB float64, fluidA, fluidB, anyFluid bool) {
	if !anyFluid {
		pen := c.Penetration - slop
		if pen <= 0 {
			return
		}
		mag := math.Min(pen*correctPercent, maxCorrection) / (invA + invB)
		correction := c.Normal.Scale(mag)
		a.Position = a.Position.Sub(correction.Scale(invA))
		b.Position = b.Position.Add(correction.Scale(invB))
		return
	}

	if c.Penetration <= 0 {
		return
	}
	aGrounded := a.Collision != nil && a.Collision.Grounded
	bGrounded := b.Collision != nil && b.Collision.Grounded

	switch {
	case invA > 0 && !aGrounded:
		a.Position = a.Position.Sub(c.Normal.Scale(c.Penetration))
	case invB > 0 && !bGrounded:
		b.Position = b.Position.Add(c.Normal.Scale(c.Penetration))
	default:
		half := c.Normal.Scale(c.Penetration / 2)
		if invA > 0 {
			a.Position = a.Position.Sub(half)
		}
		if invB > 0 {
			b.Position = b.Position.Add(half)
		}
	}
}

// projectFluidClosingVelocity handles the "exactly one fluid" case: only the
// fluid participant's closing velocity along n is removed (§4.7).
func (r *Resolver) projectFluidClosingVelocity(a, b *particle.Particle, n vecmath.Vector, fluidIsA bool) {
	if fluidIsA {
		along := a.Velocity.Dot(n)
		if along > 0 {
			a.Velocity = a.Velocity.Sub(n.Scale(along))
		}
		return
	}
	along := b.Velocity.Dot(n.Scale(-1))
	if along > 0 {
		b.Velocity = b.Velocity.Add(n.Scale(along))
	}
}

// frictionAndAngular implements §4.7 "Friction impulse" and "Angular update".
func (r *Resolver) frictionAndAngular(a, b *particle.Particle, c Contact, invA, invB, j float64) {
	n := c.Normal
	vR := b.Velocity.Sub(a.Velocity)
	tangentVec := vR.Sub(n.Scale(vR.Dot(n)))
	t, ok := tangentVec.SafeNormalize()
	if !ok {
		return
	}

	fricA, fricB := frictionOf(a), frictionOf(b)
	mus := math.Sqrt(fricA * fricB)
	muk := 0.8 * mus

	jt := -vR.Dot(t) / (invA + invB)
	var jtApplied float64
	if math.Abs(jt) <= mus*j {
		jtApplied = jt
	} else {
		jtApplied = -sign(jt) * muk * j
	}

	impulse := t.Scale(jtApplied)
	a.Velocity = a.Velocity.Sub(impulse.Scale(invA))
	b.Velocity = b.Velocity.Add(impulse.Scale(invB))

	r.applyAngular(a, c, t, jtApplied, -1)
	r.applyAngular(b, c, t, jtApplied, 1)
}

// applyAngular adds the angular impulse for one circular participant (§4.7
// "Angular update"). Polygonal bodies accumulate no torque (spec §9 "Open
// questions": the original is silent on polygon rotation during contact, and
// this spec preserves that silence).
func (r *Resolver) applyAngular(p *particle.Particle, c Contact, t vecmath.Vector, jt, sign float64) {
	if p.Shape.Kind != particle.ShapeCircle || p.Mass <= 0 {
		return
	}
	radius := p.Shape.Radius
	inertia := 0.5 * p.Mass * radius * radius
	if inertia < vecmath.Epsilon {
		return
	}
	// t is already unit, so the friction impulse vector's magnitude along
	// the tangent is simply jt.
	p.AngularVelocity += sign * radius * jt / inertia
}

func frictionOf(p *particle.Particle) float64 {
	if p.Collision == nil {
		return 0
	}
	return p.Collision.Friction
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// clampSpeeds implements the post-step linear speed clamp (§4.7), logging
// once per tick per particle (not per pair) when a clamp actually fires —
// an InvariantViolation-adjacent soft clamp under §7's propagation policy.
func (r *Resolver) clampSpeeds(a, b *particle.Particle) {
	r.clampOne(a)
	r.clampOne(b)
}

func (r *Resolver) clampOne(p *particle.Particle) {
	before := p.Velocity.Length()
	p.Velocity = p.Velocity.ClampLength(maxLinearSpeed)
	if before > maxLinearSpeed && r.logger != nil {
		r.logger.Once("collision.speed_clamp."+p.ID.String(), "clamped particle speed to max linear speed", logrus.Fields{
			"particle": p.ID.String(),
			"speed":    before,
			"max":      maxLinearSpeed,
		})
	}
}

// groundingUpdate implements the "Post-step" grounded flag rule (§4.7).
func (r *Resolver) groundingUpdate(a, b *particle.Particle, n vecmath.Vector, vn float64) {
	if n.Y > 0.7 && math.Abs(vn) < 0.15 {
		if a.Collision != nil {
			a.Collision.Grounded = true
		}
		if a.Velocity.Y > 0 {
			a.Velocity.Y = 0
		}
	}
	if n.Y < -0.7 && math.Abs(vn) < 0.15 {
		if b.Collision != nil {
			b.Collision.Grounded = true
		}
		if b.Velocity.Y > 0 {
			b.Velocity.Y = 0
		}
	}
}
