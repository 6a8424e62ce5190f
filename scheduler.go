package corephysics

import (
	"math"

	"corephysics/bonds"
	"corephysics/boundary"
	"corephysics/collision"
	"corephysics/internal/corelog"
	"corephysics/particle"
	"corephysics/sph"
	"corephysics/spatial"
	"corephysics/vecmath"
)

const (
	fixedDt             = 1.0 / 60.0
	maxCollisionPasses  = 30
	groundedAngularDamp = 0.9
)

// ConfigError reports a ConfigurationError (§7) raised at scheduler
// construction or bond admission.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "corephysics: invalid " + e.Field + ": " + e.Reason
}

// Scheduler is the step scheduler of §4.9: it owns the particle store,
// spatial hash, SPH solvers, bond network, and collision resolver for the
// run of one scene, and advances them one fixed-Δt tick at a time (§5
// "Shared-resource policy": each of these is owned by exactly one step
// scheduler instance).
type Scheduler struct {
	store *particle.Store
	hash  *spatial.Hash

	fluidSolver    *sph.Solver
	granularSolver *sph.Solver
	bondNet        *bonds.Network
	resolver       *collision.Resolver
	accum          *particle.ForceAccumulator

	bounds   particle.Rect
	gravity  vecmath.Vector
	tunables *Tunables
	logger   *corelog.Logger

	tick         uint64
	lastContacts []collision.Contact
}

// NewScheduler constructs a Scheduler. cellSize is the spatial hash's fixed
// cell size (§4.2); it should be at least as large as the larger of the
// fluid and granular smoothing radii so the 3x3-cell neighbour query covers
// each material's compact support. tunables may be nil, in which case
// DefaultTunables() is used.
func NewScheduler(cellSize float64, fluidParams, granularParams sph.Params, bounds particle.Rect, tunables *Tunables) (*Scheduler, error) {
	if cellSize <= 0 {
		return nil, &ConfigError{Field: "cellSize", Reason: "must be > 0"}
	}
	if fluidParams.H <= 0 {
		return nil, &ConfigError{Field: "fluidParams.H", Reason: "smoothing radius must be > 0"}
	}
	if granularParams.H <= 0 {
		return nil, &ConfigError{Field: "granularParams.H", Reason: "smoothing radius must be > 0"}
	}
	if tunables == nil {
		tunables = DefaultTunables()
	}

	logger := corelog.New()
	return &Scheduler{
		store:          particle.NewStore(),
		hash:           spatial.New(cellSize),
		fluidSolver:    sph.NewSolver(fluidParams, logger),
		granularSolver: sph.NewSolver(granularParams, logger),
		bondNet:        bonds.NewNetwork(),
		resolver:       collision.NewResolver(logger),
		accum:          particle.NewForceAccumulator(),
		bounds:         bounds,
		gravity:        vecmath.Vector{X: 0, Y: tunables.GravityConstant()},
		tunables:       tunables,
		logger:         logger,
	}, nil
}

// AddParticle admits a raw particle.Spec (§6 "add_particle(spec) -> id").
func (s *Scheduler) AddParticle(spec particle.Spec) (particle.ID, error) {
	return s.store.Add(spec)
}

// SpawnPreset builds a particle.Spec from preset at pos and admits it — the
// Preset-to-component mapping of §6.
func (s *Scheduler) SpawnPreset(pos vecmath.Vector, preset Preset) (particle.ID, error) {
	return s.store.Add(specFromPreset(pos, preset))
}

// SpawnComposition distributes len(positions) particles across the
// composition's ratios: in composition order, each entry takes the next
// contiguous run of positions, sized to its rounded share of the total, and
// any positions left over go to the last entry. Kinds are not interleaved.
// This is the core's minimal in-scope support for the spawner
// role §3 "Lifecycles" assigns to an external collaborator; it does not
// attempt on-disk preset resolution (out of scope per §1).
func (s *Scheduler) SpawnComposition(positions []vecmath.Vector, subPresets map[string]Preset, composition []CompositionEntry) ([]particle.ID, error) {
	if len(composition) == 0 || len(positions) == 0 {
		return nil, nil
	}
	total := 0.0
	for _, c := range composition {
		total += c.Ratio
	}
	if total <= 0 {
		return nil, &ConfigError{Field: "composition.ratio", Reason: "ratios must sum to > 0"}
	}

	ids := make([]particle.ID, 0, len(positions))
	n := len(positions)
	idx := 0
	for _, entry := range composition {
		preset, ok := subPresets[entry.SubPreset]
		if !ok {
			return nil, &ConfigError{Field: "composition.subPreset", Reason: "unknown sub-preset " + entry.SubPreset}
		}
		share := int(math.Round(entry.Ratio / total * float64(n)))
		for k := 0; k < share && idx < n; k++ {
			id, err := s.SpawnPreset(positions[idx], preset)
			if err != nil {
				return ids, err
			}
			ids = append(ids, id)
			idx++
		}
	}
	for ; idx < n; idx++ {
		last := composition[len(composition)-1]
		preset := subPresets[last.SubPreset]
		id, err := s.SpawnPreset(positions[idx], preset)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// RemoveInRect removes every particle within rect, deregistering it from the
// bond network as well (§6 "remove_in_rect(bounds)").
func (s *Scheduler) RemoveInRect(rect particle.Rect) []particle.ID {
	removed := s.store.RemoveInRect(rect)
	for _, id := range removed {
		s.bondNet.RemoveParticle(id)
	}
	return removed
}

// Clear removes every particle and bond (§6 "clear()").
func (s *Scheduler) Clear() {
	s.store.Clear()
	s.bondNet.Clear()
	s.hash.Clear()
}

// AddBond inserts a bond between a and b, deduplicated by unordered pair
// (§6 "add_bond(a,b,k,c,L0)"). Returns false without error if that pair is
// already bonded.
func (s *Scheduler) AddBond(a, b particle.ID, k, damping, restLen float64) (bool, error) {
	if k < 0 {
		return false, &ConfigError{Field: "bond.k", Reason: "stiffness must be >= 0"}
	}
	if restLen < 0 {
		return false, &ConfigError{Field: "bond.restLen", Reason: "rest length must be >= 0"}
	}
	return s.bondNet.Add(a, b, restLen, k, damping), nil
}

// ClearBonds removes every bond without touching particles (§6 "clear_bonds()").
func (s *Scheduler) ClearBonds() { s.bondNet.Clear() }

// SetWorldBounds replaces the world rectangle used by the boundary
// constraint and the SPH near-floor probe (§6 "set_world_bounds(rect)").
func (s *Scheduler) SetWorldBounds(rect particle.Rect) { s.bounds = rect }

// WorldBounds returns the current world bounds.
func (s *Scheduler) WorldBounds() particle.Rect { return s.bounds }

// SetGravity replaces the scene's world gravity vector used by the SPH
// solver and the per-particle gravity-component update (§6 "set_gravity(g)").
func (s *Scheduler) SetGravity(g vecmath.Vector) { s.gravity = g }

// Gravity returns the current world gravity vector.
func (s *Scheduler) Gravity() vecmath.Vector { return s.gravity }

// Tunables returns the scheduler's shared tunables value, for callers that
// want to adjust air resistance / wall restitution in-place (§6 "Global
// tunables"). The gravity constant was read once at construction; changing
// it here does not change the gravity this Scheduler applies.
func (s *Scheduler) Tunables() *Tunables { return s.tunables }

// BondCount returns the number of live bonds, for diagnostics and the
// bond-identity-invariance law (§8).
func (s *Scheduler) BondCount() int { return s.bondNet.Len() }

// Bonds returns a copy of the live bond set.
func (s *Scheduler) Bonds() []bonds.Bond { return s.bondNet.Bonds() }

// Step advances the simulation by one fixed tick, clamping dt into [0,1/60]
// per §4.9. The step function never throws (§7 "Propagation policy"); every
// error detectable here was already rejected at admission time.
func (s *Scheduler) Step(dt float64) {
	if dt < 0 {
		dt = 0
	}
	if dt > fixedDt {
		dt = fixedDt
	}
	s.tick++
	s.logger.BeginTick(s.tick)

	n := s.store.Cap()
	s.accum.Reset(n)

	spatial.Rebuild(s.hash, s.store, 0)

	s.clearGrounded()

	s.fluidSolver.Step(s.store, s.hash, s.bounds, s.gravity, s.accum)
	s.granularSolver.Step(s.store, s.hash, s.bounds, s.gravity, s.accum)

	s.bondNet.Update(s.store, s.accum)

	s.gravityStep()

	s.accum.ApplyToVelocities(s.store, dt)
	s.integrate(dt)

	boundary.Constrain(s.store, s.bounds, s.tunables.WallRestitution())

	spatial.Rebuild(s.hash, s.store, 0)
	s.runCollisionPasses(dt)
}

// clearGrounded resets every particle's Grounded flag at the start of the
// contact pass (§3 "Collision params" — grounded is cleared at the start of
// each contact pass). Cleared up front, before SPH/boundary/resolver have a
// chance to re-assert it this tick.
func (s *Scheduler) clearGrounded() {
	s.store.Each(func(p *particle.Particle) {
		if p.Collision != nil {
			p.Collision.Grounded = false
		}
	})
}

// gravityStep implements §4.9 step 4: for each particle with a Gravity
// component, skipped when SPH-integrated, adds gravity*m to the accumulator
// plus this particle's own Accel offset (e.g. a horizontal wind force), and
// applies air drag (the global AirResistance tunable plus the component's
// own Drag coefficient).
func (s *Scheduler) gravityStep() {
	airResistance := s.tunables.AirResistance()
	s.store.Each(func(p *particle.Particle) {
		if p.Gravity == nil || p.Collision == nil || p.Collision.Static {
			return
		}
		if p.Collision.SPHIntegrated {
			return
		}
		m := vecmath.SafeMass(p.Mass, 1)
		accel := s.gravity.Add(p.Gravity.Accel)
		force := accel.Scale(m)

		drag := p.Gravity.Drag + airResistance
		if drag > 0 {
			force = force.Sub(p.Velocity.Scale(drag * m))
		}

		if p.Gravity.TerminalVelocity > 0 {
			proposed := p.Velocity.Add(force.Scale(vecmath.InverseMass(p.Mass)))
			if proposed.Length() > p.Gravity.TerminalVelocity {
				proposed = proposed.ClampLength(p.Gravity.TerminalVelocity)
				force = proposed.Sub(p.Velocity).Scale(m)
			}
		}

		s.accum.Add(p.ID, force)
	})
}

// integrate performs semi-implicit Euler position/rotation integration
// (§4.9 step 5): velocities were already updated by ApplyToVelocities, so
// this integrates position from the *updated* velocity.
func (s *Scheduler) integrate(dt float64) {
	s.store.Each(func(p *particle.Particle) {
		if p.Collision != nil && p.Collision.Static {
			return
		}
		p.Position = p.Position.Add(p.Velocity.Scale(dt))
		p.Orientation += p.AngularVelocity * dt
		if p.Collision != nil && p.Collision.Grounded {
			p.AngularVelocity *= groundedAngularDamp
		}
	})
}

// runCollisionPasses implements §4.7 "Iteration": up to maxCollisionPasses
// contact-generation + resolution rounds, rebuilding the hash between
// iterations, exiting early on the first iteration with zero contacts.
func (s *Scheduler) runCollisionPasses(dt float64) {
	s.lastContacts = s.lastContacts[:0]
	for iter := 0; iter < maxCollisionPasses; iter++ {
		pairs := spatial.CollisionPairIDs(s.hash)
		var contacts []collision.Contact
		for _, pair := range pairs {
			pa, okA := s.store.Get(pair.A)
			pb, okB := s.store.Get(pair.B)
			if !okA || !okB {
				continue
			}
			c, ok := collision.Generate(pa, pb)
			if !ok {
				continue
			}
			contacts = append(contacts, c)
		}
		if len(contacts) == 0 {
			return
		}
		for _, c := range contacts {
			s.resolver.Resolve(s.store, c, dt)
		}
		if iter == 0 {
			s.lastContacts = append(s.lastContacts, contacts...)
		}
		spatial.Rebuild(s.hash, s.store, 0)
	}
}
