package particle

import "corephysics/vecmath"

// GravityParams is the per-particle gravity component (§3): an acceleration
// vector, terminal-velocity caps, and a drag coefficient applied by the
// scheduler's gravity step (§4.9 step 4).
type GravityParams struct {
	Accel            vecmath.Vector
	TerminalVelocity float64
	Drag             float64
}

// CollisionParams is the per-particle collision component (§3). Grounded is
// output-only: the resolver and boundary constraint set it, and the step
// scheduler clears it once at the top of each Step, before any phase can
// set it again.
type CollisionParams struct {
	Restitution   float64 // [0,1]
	Friction      float64 // >=0
	Static        bool
	Fluid         bool
	Granular      bool
	SPHIntegrated bool
	Grounded      bool
}

// DynamicsParams is the per-particle dynamics component (§3): force and
// damping limits independent of any specific force generator.
type DynamicsParams struct {
	MaxForce        float64
	VelocityDamping float64
	PressureRadius  float64
	SPHSolver       bool
}

// BoundaryPolicy selects how a particle's boundary constraint behaves (§4.8).
type BoundaryPolicy struct {
	Wrap bool // true: loop-wrap; false: bounce-and-clamp
}
