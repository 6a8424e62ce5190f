// Package sph implements the SPH solver for both fluid and granular
// populations (specification §4.4). It is grounded on the teacher's
// simulation package (density_pressure.go, forces.go, neighbors.go) and
// spatial/kernel.go, generalised from the teacher's single always-fluid
// model into the two material-specific force laws the specification pins,
// and rebuilt on the corrected kernel constants in vecmath.Kernel rather
// than the teacher's simplified smoothing function.
package sph

// Material selects which force law a Solver applies to its population.
type Material int

const (
	// Fluid applies pressure/viscosity/stickiness forces (§4.4 Fluid forces).
	Fluid Material = iota
	// Granular applies repulsion/friction/cohesion forces (§4.4 Granular forces).
	Granular
)

// Params configures one material's SPH solver instance.
type Params struct {
	Material Material

	H    float64 // smoothing radius
	K    float64 // gas constant
	Mu   float64 // viscosity
	Rho0 float64 // rest density
	R    float64 // particle radius
	D    float64 // damping

	MaxVelocity float64 // v_max (advisory cap; not separately enforced here, see boundary/resolver clamps)

	FrictionAngle float64 // φ, radians; granular only
	Cohesion      float64 // c; granular only
	// Dilatancy (ψ) is carried for parity with the preset surface (§6) but no
	// force law in this specification consumes it; granular volumetric
	// expansion under shear is an open question (§9) this solver does not
	// attempt to guess at.
	Dilatancy float64

	// MaxNeighbours caps the per-particle neighbour list (ResourceLimit, §7).
	// Zero means unlimited.
	MaxNeighbours int
}
