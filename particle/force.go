package particle

import (
	"math"
	"sync/atomic"
	"unsafe"

	"corephysics/vecmath"
)

// atomicAddFloat64 atomically adds delta to *val, adapted from the
// teacher's simulation/atomic_helpers.go CAS-retry pattern (float64 has no
// native atomic add, so this loops a compare-and-swap on its bit pattern).
func atomicAddFloat64(val *float64, delta float64) {
	for {
		old := atomic.LoadUint64((*uint64)(unsafe.Pointer(val)))
		newVal := math.Float64bits(math.Float64frombits(old) + delta)
		if atomic.CompareAndSwapUint64((*uint64)(unsafe.Pointer(val)), old, newVal) {
			return
		}
	}
}

// ForceAccumulator is the per-tick additive force map (§4.3): reset at the
// top of each step, written concurrently by keyed, atomic adds, and applied
// once to velocities at the end of the force-gather phase. It is keyed by
// dense slot index rather than by ID, for cache locality and so a plain
// slice can back it (DESIGN NOTES, "concurrent additive map").
type ForceAccumulator struct {
	fx, fy []float64
}

// NewForceAccumulator creates an empty accumulator.
func NewForceAccumulator() *ForceAccumulator {
	return &ForceAccumulator{}
}

// Reset grows the accumulator to cover n slots (if needed) and zeroes every
// entry, ready for a new tick.
func (f *ForceAccumulator) Reset(n int) {
	if cap(f.fx) < n {
		f.fx = make([]float64, n)
		f.fy = make([]float64, n)
		return
	}
	f.fx = f.fx[:n]
	f.fy = f.fy[:n]
	for i := range f.fx {
		f.fx[i] = 0
		f.fy[i] = 0
	}
}

// Add atomically accumulates force into id's slot. Safe to call from
// multiple goroutines concurrently for distinct or identical ids, per the
// optional intra-tick parallelism allowed by §5.
func (f *ForceAccumulator) Add(id ID, force vecmath.Vector) {
	i := int(id.index)
	if i < 0 || i >= len(f.fx) {
		return
	}
	atomicAddFloat64(&f.fx[i], force.X)
	atomicAddFloat64(&f.fy[i], force.Y)
}

// Get returns the force currently accumulated for id.
func (f *ForceAccumulator) Get(id ID) vecmath.Vector {
	i := int(id.index)
	if i < 0 || i >= len(f.fx) {
		return vecmath.Vector{}
	}
	return vecmath.Vector{X: f.fx[i], Y: f.fy[i]}
}

// ApplyToVelocities performs v <- v + (f/m)*dt for every non-static particle
// carrying a Collision component (§4.3). Fluid particles with the
// SPH-integrated flag set pass through this same path, since the SPH
// solver expresses its result as a force rather than a direct velocity
// update. A particle carrying a Dynamics component with a positive MaxForce
// has its accumulated force clamped to that magnitude first (§3 "max force
// magnitude").
func (f *ForceAccumulator) ApplyToVelocities(store *Store, dt float64) {
	store.Each(func(p *Particle) {
		if p.Collision == nil || p.Collision.Static {
			return
		}
		force := f.Get(p.ID)
		if p.Dynamics != nil && p.Dynamics.MaxForce > 0 {
			force = force.ClampLength(p.Dynamics.MaxForce)
		}
		p.Velocity = p.Velocity.Add(force.Scale(p.InverseMass() * dt))
	})
}
