package sph

import (
	"math"

	"github.com/sirupsen/logrus"

	"corephysics/internal/corelog"
	"corephysics/particle"
	"corephysics/spatial"
	"corephysics/vecmath"
)

// Diagnostics is the per-particle SPH state exposed through the snapshot
// API's diagnostics query (§6).
type Diagnostics struct {
	Density        float64
	Pressure       float64
	NeighbourCount int
}

// Solver runs one material's SPH pipeline (§4.4) against a subset of a
// particle.Store selected by material and the Dynamics.SPHSolver flag. A
// step scheduler typically owns two solvers, one Fluid and one Granular.
type Solver struct {
	params Params
	logger *corelog.Logger

	ids       []particle.ID
	density   []float64
	pressure  []float64
	fx, fy    []float64
	neighbors [][]int32

	neighbourScratch []uint64

	diag map[particle.ID]Diagnostics
}

// NewSolver creates a Solver for the given material parameters. logger may
// be nil, in which case ResourceLimit truncation is silent.
func NewSolver(params Params, logger *corelog.Logger) *Solver {
	return &Solver{params: params, logger: logger, diag: make(map[particle.ID]Diagnostics)}
}

// Diagnostics returns the last-computed density/pressure/neighbour-count for
// id, or (zero, false) if id did not participate in the most recent Step.
func (s *Solver) Diagnostics(id particle.ID) (Diagnostics, bool) {
	d, ok := s.diag[id]
	return d, ok
}

func (s *Solver) participates(p *particle.Particle) bool {
	if p.Dynamics == nil || !p.Dynamics.SPHSolver || p.Collision == nil {
		return false
	}
	switch s.params.Material {
	case Fluid:
		return p.Collision.Fluid
	case Granular:
		return p.Collision.Granular
	default:
		return false
	}
}

func (s *Solver) ensureScratch(n int) {
	if cap(s.density) < n {
		s.density = make([]float64, n)
		s.pressure = make([]float64, n)
		s.fx = make([]float64, n)
		s.fy = make([]float64, n)
		s.neighbors = make([][]int32, n)
	} else {
		s.density = s.density[:n]
		s.pressure = s.pressure[:n]
		s.fx = s.fx[:n]
		s.fy = s.fy[:n]
		s.neighbors = s.neighbors[:n]
	}
}

// Step runs one SPH tick: neighbour search, density, pressure, material
// forces, the force/acceleration clamps, and injection into accum.
// gravity is added to each particle's force as m*g and sets the acceleration
// and upward-force clamps; bounds is used only for the near-floor force
// reshaping (§4.4 step 5), where the floor side is whichever world-rect edge
// gravity points toward, since the data model does not otherwise name a
// "floor".
func (s *Solver) Step(store *particle.Store, hash *spatial.Hash, bounds particle.Rect, gravity vecmath.Vector, accum *particle.ForceAccumulator) {
	s.ids = s.ids[:0]
	store.Each(func(p *particle.Particle) {
		if s.participates(p) {
			s.ids = append(s.ids, p.ID)
		}
	})
	n := len(s.ids)
	s.diag = make(map[particle.ID]Diagnostics, n)
	if n == 0 {
		return
	}
	s.ensureScratch(n)

	localIndex := make(map[particle.ID]int32, n)
	for i, id := range s.ids {
		localIndex[id] = int32(i)
	}

	h := s.params.H
	for i, id := range s.ids {
		p, _ := store.Get(id)
		nbrIDs, next := spatial.NeighbourIDs(hash, store, p.Position, h, s.neighbourScratch)
		s.neighbourScratch = next

		list := s.neighbors[i][:0]
		for _, nid := range nbrIDs {
			if nid == id {
				continue
			}
			j, ok := localIndex[nid]
			if !ok {
				continue
			}
			list = append(list, j)
		}
		if s.params.MaxNeighbours > 0 && len(list) > s.params.MaxNeighbours {
			if s.logger != nil {
				s.logger.Once("sph.neighbour_cap", "neighbour count exceeded cap, truncating", logrus.Fields{
					"material": s.params.Material,
					"count":    len(list),
					"cap":      s.params.MaxNeighbours,
				})
			}
			list = list[:s.params.MaxNeighbours]
		}
		s.neighbors[i] = list
	}

	s.computeDensityPressure(store)

	for i := range s.fx {
		s.fx[i] = 0
		s.fy[i] = 0
	}
	switch s.params.Material {
	case Fluid:
		s.fluidForces(store)
	case Granular:
		s.granularForces(store)
	}

	s.clampAndInject(store, bounds, gravity, accum)
}

func (s *Solver) computeDensityPressure(store *particle.Store) {
	h := s.params.H
	for i, id := range s.ids {
		p, _ := store.Get(id)
		rho := vecmath.SafeMass(p.Mass, 1) * vecmath.Poly6(0, h)
		for _, jIdx := range s.neighbors[i] {
			pj, _ := store.Get(s.ids[jIdx])
			r := p.Position.Sub(pj.Position).Length()
			rho += vecmath.SafeMass(pj.Mass, 1) * vecmath.Poly6(r, h)
		}
		if rho < 1e-6 {
			rho = 1e-6
		}
		s.density[i] = rho
		s.pressure[i] = s.params.K * math.Max(0, rho/s.params.Rho0-1)
	}
}

// fluidForces implements the Fluid forces of §4.4.
func (s *Solver) fluidForces(store *particle.Store) {
	h, r, k, mu, d := s.params.H, s.params.R, s.params.K, s.params.Mu, s.params.D

	for i, id := range s.ids {
		pi, _ := store.Get(id)
		mi := vecmath.SafeMass(pi.Mass, 1)
		rhoI, pressI := s.density[i], s.pressure[i]
		var f vecmath.Vector

		for _, jIdx := range s.neighbors[i] {
			pj, _ := store.Get(s.ids[jIdx])
			mj := vecmath.SafeMass(pj.Mass, 1)
			rij := pi.Position.Sub(pj.Position)
			dist := rij.Length()
			if dist <= 0.1*r || dist >= h {
				continue
			}

			rhoJ, pressJ := s.density[int(jIdx)], s.pressure[int(jIdx)]
			coeff := -mi * mj * (pressI/(rhoI*rhoI) + pressJ/(rhoJ*rhoJ))
			f = f.Add(vecmath.SpikyGrad(dist, h, rij).Scale(coeff))

			if dist < 0.95*r {
				if dir, ok := rij.SafeNormalize(); ok {
					mag := k * (0.95*r - dist) * 0.3 * mj
					f = f.Add(dir.Scale(mag))
				}
			}

			wv := vecmath.ViscosityLaplacian(dist, h)
			f = f.Add(pj.Velocity.Sub(pi.Velocity).Scale(mu * mj / rhoJ * wv))
		}

		// Stability heuristics (§4.4): self damping, quadratic drag at speed,
		// and a settling pull that kills low-speed jitter. The spec pins the
		// self-damping coefficient but leaves the drag/settle constants to the
		// implementation; these values are tuned, not derived.
		speed := pi.Velocity.Length()
		f = f.Add(pi.Velocity.Scale(-(1 - d) * 2 * mi))
		if speed > 0.5 {
			f = f.Add(pi.Velocity.Scale(-mi * speed))
		}
		if speed < 0.3 && speed > vecmath.Epsilon {
			f = f.Add(pi.Velocity.Scale(-0.5 * mi))
		}

		s.fx[i] += f.X
		s.fy[i] += f.Y
	}
}

// granularForces implements the Granular forces of §4.4.
func (s *Solver) granularForces(store *particle.Store) {
	r, k, mu, c := s.params.R, s.params.K, s.params.Mu, s.params.Cohesion
	tanPhi := math.Tan(s.params.FrictionAngle)
	twoR, cohesionRange := 2*r, 2.4*r

	for i, id := range s.ids {
		pi, _ := store.Get(id)
		var f vecmath.Vector

		for _, jIdx := range s.neighbors[i] {
			pj, _ := store.Get(s.ids[jIdx])
			rij := pi.Position.Sub(pj.Position)
			dist := rij.Length()
			dir, okDir := rij.SafeNormalize()
			if !okDir {
				continue
			}

			if dist < twoR {
				normalMag := k * (twoR - dist)
				f = f.Add(dir.Scale(normalMag))

				vrel := pi.Velocity.Sub(pj.Velocity)
				vn := vrel.ProjectOnto(dir)
				vt := vrel.Sub(vn)
				if tDir, ok := vt.SafeNormalize(); ok {
					f = f.Add(tDir.Scale(-tanPhi * normalMag))
				}
				f = f.Add(vrel.Scale(-mu))
			}

			if c != 0 && dist > vecmath.Epsilon && dist < cohesionRange {
				cohesionMag := c * (1 - dist/cohesionRange)
				f = f.Add(dir.Scale(-cohesionMag))
			}
		}

		s.fx[i] += f.X
		s.fy[i] += f.Y
	}
}

// clampAndInject applies the per-material acceleration/force clamps, the
// near-floor reshaping, records diagnostics, and injects the final force
// (SPH forces, including the fluid self-damping terms, plus gravity) into
// accum. No air-resistance drag is added here, and the scheduler's gravity
// step skips SPH-integrated particles, so air resistance does not act on them.
func (s *Solver) clampAndInject(store *particle.Store, bounds particle.Rect, gravity vecmath.Vector, accum *particle.ForceAccumulator) {
	gmag := gravity.Length()
	maxAccel := 10 * gmag
	if s.params.Material == Granular {
		maxAccel = 15 * gmag
	}
	gdir, hasGravity := gravity.SafeNormalize()

	for i, id := range s.ids {
		p, _ := store.Get(id)
		m := vecmath.SafeMass(p.Mass, 1)
		f := vecmath.Vector{X: s.fx[i], Y: s.fy[i]}
		f = f.Add(gravity.Scale(m))

		if maxAccel > 0 {
			f = f.ClampLength(maxAccel * m)
		}

		if hasGravity {
			along := f.Dot(gdir) // negative: component opposing gravity (upward)
			cap := 0.5 * gmag * m
			if along < -cap {
				perp := f.Sub(gdir.Scale(along))
				f = perp.Add(gdir.Scale(-cap))
			}

			if floorDist := floorDistance(p.Position, bounds, gdir); floorDist <= 2*s.params.R {
				along := f.Dot(gdir)
				if along > 0 {
					f = f.Sub(gdir.Scale(along))
				}
				f = f.Add(vecmath.Vector{X: -2 * m * p.Velocity.X, Y: 0})
			}
		}

		accum.Add(id, f)
		s.diag[id] = Diagnostics{Density: s.density[i], Pressure: s.pressure[i], NeighbourCount: len(s.neighbors[i])}
	}
}

// floorDistance returns the distance from pos to whichever world-bounds edge
// gravity points toward (the "floor"), or +Inf if gravity is zero.
func floorDistance(pos vecmath.Vector, bounds particle.Rect, gdir vecmath.Vector) float64 {
	if gdir.Y > vecmath.Epsilon {
		return bounds.Bottom - pos.Y
	}
	if gdir.Y < -vecmath.Epsilon {
		return pos.Y - bounds.Top
	}
	return math.Inf(1)
}
