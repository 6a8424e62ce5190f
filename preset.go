package corephysics

import (
	"corephysics/particle"
	"corephysics/sph"
	"corephysics/vecmath"
)

// Preset is the config-loader-facing parameter struct of §6: every field the
// external preset parser (out of scope per §1) is expected to fill in before
// handing a Preset to Scheduler.SpawnPreset. Composition is consumed by the
// spawner role (also external, §3 "Lifecycles"); Scheduler.SpawnComposition
// below is this core's minimal, in-scope support for it, not a full spawner.
type Preset struct {
	Name string

	Mass                float64
	ParticleRadius      float64
	GravityStrength     float64
	HorizontalForce     float64
	Restitution         float64
	Friction            float64
	EnableEdgeCollision bool
	MaxForceMagnitude   float64
	VelocityDamping     float64
	PressureStrength    float64
	PressureRadius      float64

	IsFluid    bool
	IsSolid    bool
	IsGranular bool

	BondStiffness float64
	BondDamping   float64

	SPHRestDensity float64
	SPHGasConstant float64
	SPHViscosity   float64
	// SPHSurfaceTension is a recognised preset field with no current effect:
	// §4.4's fluid "stickiness" term pins its own 0.3 coefficient, and the
	// spec names no other surface-tension-consuming force law, so there is
	// nowhere in sph.Params for this to flow (parity with Dilatancy below,
	// carried on the preset surface but unconsumed by any force law).
	SPHSurfaceTension     float64
	GranularFrictionAngle float64
	GranularCohesion      float64
	GranularDilatancy     float64

	Composition []CompositionEntry
}

// CompositionEntry names one sub-preset and the fraction of a composite
// spawn it should receive (§6 "Composition is an ordered list of
// (sub-preset-name, ratio, type-tag)").
type CompositionEntry struct {
	SubPreset string
	Ratio     float64
	TypeTag   string
}

// specFromPreset maps a Preset onto a particle.Spec at position pos, per
// §3/§4's component field mapping. EnableEdgeCollision selects the
// bounce-and-clamp boundary policy when true and loop-wrap when false.
func specFromPreset(pos vecmath.Vector, preset Preset) particle.Spec {
	shape := particle.Circle(preset.ParticleRadius)

	grav := &particle.GravityParams{
		Accel: vecmath.Vector{X: preset.HorizontalForce, Y: preset.GravityStrength},
	}

	coll := &particle.CollisionParams{
		Restitution:   vecmath.Clamp(preset.Restitution, 0, 1),
		Friction:      preset.Friction,
		Fluid:         preset.IsFluid,
		Granular:      preset.IsGranular,
		SPHIntegrated: preset.IsFluid || preset.IsGranular,
	}

	dyn := &particle.DynamicsParams{
		MaxForce:        preset.MaxForceMagnitude,
		VelocityDamping: preset.VelocityDamping,
		PressureRadius:  preset.PressureRadius,
		SPHSolver:       preset.IsFluid || preset.IsGranular,
	}

	boundaryPolicy := &particle.BoundaryPolicy{Wrap: !preset.EnableEdgeCollision}

	return particle.Spec{
		Position:  pos,
		Mass:      preset.Mass,
		Shape:     shape,
		Gravity:   grav,
		Collision: coll,
		Dynamics:  dyn,
		Boundary:  boundaryPolicy,
	}
}

// sphParamsFromPreset derives the SPH solver parameters a Fluid- or
// Granular-material preset implies (§6 field mapping onto §4.4 Params).
func sphParamsFromPreset(preset Preset) sph.Params {
	material := sph.Fluid
	if preset.IsGranular {
		material = sph.Granular
	}
	h := preset.PressureRadius
	if h <= 0 {
		h = preset.ParticleRadius * 4
	}
	return sph.Params{
		Material:      material,
		H:             h,
		K:             preset.SPHGasConstant,
		Mu:            preset.SPHViscosity,
		Rho0:          preset.SPHRestDensity,
		R:             preset.ParticleRadius,
		D:             preset.VelocityDamping,
		FrictionAngle: preset.GranularFrictionAngle,
		Cohesion:      preset.GranularCohesion,
		Dilatancy:     preset.GranularDilatancy,
	}
}
