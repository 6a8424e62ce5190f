// Package boundary implements the world-rectangle boundary constraint
// (specification §4.8): loop-wrap or bounce-and-clamp, restitution-weighted
// reflection, a sleep threshold, and the grounded flag's boundary-side
// assertion.
package boundary

import (
	"math"

	"corephysics/particle"
)

const (
	bounceRecovery      = 0.08
	fluidBounceRecovery = 0.15
	sleepThreshold      = 0.05
	fluidWallDrag       = 0.2
)

// Constrain applies the boundary constraint to every particle in store
// against bounds, using wallRestitution as the global wall-restitution
// tunable (§6 "Global tunables") whenever a particle has no bounce policy of
// its own to override it — the spec's boundary constraint has no per-particle
// restitution field, so the process-wide wall restitution is what every
// bounce uses.
func Constrain(store *particle.Store, bounds particle.Rect, wallRestitution float64) {
	store.Each(func(p *particle.Particle) {
		if p.Boundary != nil && p.Boundary.Wrap {
			wrap(p, bounds)
			return
		}
		bounceClamp(p, bounds, wallRestitution)
	})
}

func halfExtent(p *particle.Particle) float64 {
	return p.Shape.BoundingRadius()
}

// wrap implements the loop-wrap policy: a particle that has moved more than
// its half-extent past one edge is placed its half-extent beyond the opposite
// edge, without touching velocity.
func wrap(p *particle.Particle, bounds particle.Rect) {
	he := halfExtent(p)
	if p.Position.X < bounds.Left-he {
		p.Position.X = bounds.Right + he
	} else if p.Position.X > bounds.Right+he {
		p.Position.X = bounds.Left - he
	}
	if p.Position.Y < bounds.Top-he {
		p.Position.Y = bounds.Bottom + he
	} else if p.Position.Y > bounds.Bottom+he {
		p.Position.Y = bounds.Top - he
	}
}

// bounceClamp implements the bounce-and-clamp policy of §4.8.
func bounceClamp(p *particle.Particle, bounds particle.Rect, wallRestitution float64) {
	he := halfExtent(p)
	fluid := p.Collision != nil && p.Collision.Fluid
	recovery := bounceRecovery
	if fluid {
		recovery = fluidBounceRecovery
	}

	hitAny := false

	if p.Position.X < bounds.Left+he {
		p.Position.X = bounds.Left + he + recovery*he
		hitAny = reflectAxis(&p.Velocity.X, wallRestitution) || hitAny
	} else if p.Position.X > bounds.Right-he {
		p.Position.X = bounds.Right - he - recovery*he
		hitAny = reflectAxis(&p.Velocity.X, wallRestitution) || hitAny
	}

	bottomHit := false
	if p.Position.Y < bounds.Top+he {
		p.Position.Y = bounds.Top + he + recovery*he
		hitAny = reflectAxis(&p.Velocity.Y, wallRestitution) || hitAny
	} else if p.Position.Y > bounds.Bottom-he {
		p.Position.Y = bounds.Bottom - he - recovery*he
		hitAny = reflectAxis(&p.Velocity.Y, wallRestitution) || hitAny
		bottomHit = true
	}

	if fluid && hitAny {
		p.Velocity = p.Velocity.Scale(1 - fluidWallDrag)
	}

	if bottomHit && p.Collision != nil && math.Abs(p.Velocity.Y) < sleepThreshold {
		p.Collision.Grounded = true
	}
}

// reflectAxis reflects one velocity component through the wall, scaled by
// eWall*eBody (here eBody is folded into eWall since the data model carries
// no distinct per-particle wall-restitution field), or zeroes it below the
// sleep threshold. Returns true when the component was reflected and false
// when it was below the sleep threshold and zeroed; the sign of the
// component is not checked.
func reflectAxis(v *float64, eWall float64) bool {
	if math.Abs(*v) < sleepThreshold {
		*v = 0
		return false
	}
	*v = -*v * eWall
	return true
}
