package corephysics

import (
	"corephysics/collision"
	"corephysics/internal/diagnostics"
	"corephysics/particle"
	"corephysics/sph"
	"corephysics/vecmath"
)

// Positions returns the position of every live particle in registration
// order — the renderer-facing Snapshot API (§6 "positions()").
func (s *Scheduler) Positions() []vecmath.Vector {
	return s.store.Positions()
}

// Diagnostics is the per-particle SPH state exposed by the snapshot API
// (§6 "diagnostics(id)").
type Diagnostics = sph.Diagnostics

// Diagnostics returns the last-computed density/pressure/neighbour-count for
// id, or (zero, false) if id is not a currently SPH-participating particle
// (§7 "NotFound ... returns an absent result, not an error").
func (s *Scheduler) Diagnostics(id particle.ID) (Diagnostics, bool) {
	if d, ok := s.fluidSolver.Diagnostics(id); ok {
		return d, true
	}
	return s.granularSolver.Diagnostics(id)
}

// IterateContacts returns the contacts generated on the first iteration of
// the most recent Step's collision pass (§6 "iterate_contacts()", "optional,
// last tick only").
func (s *Scheduler) IterateContacts() []collision.Contact {
	out := make([]collision.Contact, len(s.lastContacts))
	copy(out, s.lastContacts)
	return out
}

// DiagnosticsAggregate computes population-level mean/stddev of pressure and
// density across every currently SPH-participating particle (SPEC_FULL §12
// "Diagnostics aggregate" — a natural superset of the per-id query, not
// named by the external Snapshot API itself).
func (s *Scheduler) DiagnosticsAggregate() (meanPressure, stdPressure, meanDensity, stdDensity float64) {
	var samples []diagnostics.Sample
	s.store.Each(func(p *particle.Particle) {
		d, ok := s.Diagnostics(p.ID)
		if !ok {
			return
		}
		samples = append(samples, diagnostics.Sample{Density: d.Density, Pressure: d.Pressure})
	})
	return diagnostics.Aggregate(samples)
}
