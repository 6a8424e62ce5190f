package particle

import "corephysics/vecmath"

// Spec describes a particle to be admitted by Store.Add. Components left
// nil are simply absent from the resulting particle.
type Spec struct {
	Position vecmath.Vector
	Velocity vecmath.Vector
	Mass     float64
	Shape    Shape
	Tint     Tint

	Gravity   *GravityParams
	Collision *CollisionParams
	Dynamics  *DynamicsParams
	Boundary  *BoundaryPolicy
}

func (s Spec) validate() error {
	if s.Mass < 0 {
		return configErr("mass", "negative mass is not a valid particle (zero or positive only)")
	}
	if !s.Position.Finite() {
		return configErr("position", "must be finite")
	}
	if !s.Velocity.Finite() {
		return configErr("velocity", "must be finite")
	}
	if s.Collision != nil {
		if s.Collision.Restitution < 0 || s.Collision.Restitution > 1 {
			return configErr("collision.restitution", "must be in [0,1]")
		}
		if s.Collision.Friction < 0 {
			return configErr("collision.friction", "must be >= 0")
		}
	}
	return s.Shape.validate()
}

type slot struct {
	particle Particle
	alive    bool
	gen      uint32
}

// Store owns every particle for the run of a scene in a dense array
// (specification §3 "Lifecycles"). It is owned by exactly one step
// scheduler (§5 "Shared-resource policy"); callers outside the scheduler
// must treat it as read-only.
type Store struct {
	slots []slot
	free  []uint32
	order []uint32 // slot indices in registration order, for Positions()/iteration
}

// NewStore creates an empty particle store.
func NewStore() *Store {
	return &Store{}
}

// Add admits a new particle per spec. Returns a ConfigurationError without
// mutating the store if the spec is invalid.
func (s *Store) Add(spec Spec) (ID, error) {
	if err := spec.validate(); err != nil {
		return Invalid, err
	}

	p := Particle{
		Position:  spec.Position,
		Velocity:  spec.Velocity,
		Mass:      spec.Mass,
		Shape:     spec.Shape,
		Tint:      spec.Tint,
		Gravity:   spec.Gravity,
		Collision: spec.Collision,
		Dynamics:  spec.Dynamics,
		Boundary:  spec.Boundary,
	}

	var idx uint32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
		s.slots[idx].gen++
		s.slots[idx].particle = p
		s.slots[idx].alive = true
	} else {
		idx = uint32(len(s.slots))
		s.slots = append(s.slots, slot{particle: p, alive: true, gen: 1})
	}

	id := ID{index: idx, gen: s.slots[idx].gen}
	s.slots[idx].particle.ID = id
	s.order = append(s.order, idx)
	return id, nil
}

// Get returns a mutable pointer to the particle behind id, or (nil, false)
// if id does not refer to a live particle (specification's NotFound case).
func (s *Store) Get(id ID) (*Particle, bool) {
	if !id.IsValid() || int(id.index) >= len(s.slots) {
		return nil, false
	}
	sl := &s.slots[id.index]
	if !sl.alive || sl.gen != id.gen {
		return nil, false
	}
	return &sl.particle, true
}

// Remove deletes the particle behind id. Returns false if id was already
// not live.
func (s *Store) Remove(id ID) bool {
	if _, ok := s.Get(id); !ok {
		return false
	}
	s.removeSlot(id.index)
	return true
}

func (s *Store) removeSlot(idx uint32) {
	s.slots[idx].alive = false
	s.slots[idx].particle = Particle{}
	s.free = append(s.free, idx)
	for i, o := range s.order {
		if o == idx {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Rect is an axis-aligned rectangle used by RemoveInRect and as the world
// bounds type shared with the boundary constraint (§3 "World bounds").
type Rect struct {
	Left, Right, Top, Bottom float64
}

// Contains reports whether p lies within r (inclusive).
func (r Rect) Contains(p vecmath.Vector) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y <= r.Bottom && p.Y >= r.Top
}

// HalfExtents returns half the rectangle's width and height.
func (r Rect) HalfExtents() (halfW, halfH float64) {
	return (r.Right - r.Left) / 2, (r.Bottom - r.Top) / 2
}

// RemoveInRect removes every particle whose position lies within rect and
// returns their ids, so callers (spatial hash, SPH solver) can deregister
// them too.
func (s *Store) RemoveInRect(rect Rect) []ID {
	var removed []ID
	for _, idx := range append([]uint32(nil), s.order...) {
		sl := &s.slots[idx]
		if !sl.alive {
			continue
		}
		if rect.Contains(sl.particle.Position) {
			removed = append(removed, sl.particle.ID)
			s.removeSlot(idx)
		}
	}
	return removed
}

// Clear removes every particle.
func (s *Store) Clear() {
	s.slots = nil
	s.free = nil
	s.order = nil
}

// Len returns the number of live particles.
func (s *Store) Len() int { return len(s.order) }

// Cap returns the dense slot capacity, i.e. one past the highest slot index
// ever allocated. The force accumulator sizes itself to this so it can
// index by slot directly.
func (s *Store) Cap() int { return len(s.slots) }

// Each calls fn for every live particle, in registration order, with a
// pointer into the store's backing array. fn must not call Add or Remove.
func (s *Store) Each(fn func(*Particle)) {
	for _, idx := range s.order {
		fn(&s.slots[idx].particle)
	}
}

// Positions returns the position of every live particle, in registration
// order — the renderer-facing half of the Snapshot API (§6).
func (s *Store) Positions() []vecmath.Vector {
	out := make([]vecmath.Vector, 0, len(s.order))
	for _, idx := range s.order {
		out = append(out, s.slots[idx].particle.Position)
	}
	return out
}
