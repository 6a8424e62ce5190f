package spatial

import (
	"corephysics/particle"
	"corephysics/vecmath"
)

// AABBFor builds the broad-phase bounding box the hash indexes a particle
// under: its bounding-radius circle expanded by pad (the spec's neighbour
// radius for SPH, or 0 for collision broad-phase).
func AABBFor(p *particle.Particle, pad float64) AABB {
	r := p.Shape.BoundingRadius() + pad
	return AABB{
		MinX: p.Position.X - r,
		MinY: p.Position.Y - r,
		MaxX: p.Position.X + r,
		MaxY: p.Position.Y + r,
	}
}

// Rebuild clears h and reinserts every live particle from store, each under
// AABBFor(p, pad). Callers rebuild wholesale (the scheduler does so before
// the SPH phase, before collision, and between collision passes) rather than
// tracking per-particle moves, since a fixed-size uniform grid is cheap to
// repopulate
// (grounded on the teacher's Grid.Update, which does the same wholesale
// rebuild rather than incremental cell migration).
func Rebuild(h *Hash, store *particle.Store, pad float64) {
	h.Clear()
	store.Each(func(p *particle.Particle) {
		h.Insert(p.ID.Key(), AABBFor(p, pad))
	})
}

// NeighbourIDs finds every live particle within radius of pos, using h's 3x3
// cell block as the broad phase and an exact distance check (dist < radius)
// to discard the coarse over-approximation. scratch is reused across calls
// to avoid a per-call allocation; pass nil on first use.
func NeighbourIDs(h *Hash, store *particle.Store, pos vecmath.Vector, radius float64, scratch []uint64) (out []particle.ID, next []uint64) {
	scratch = h.Neighbours(pos, scratch)
	r2 := radius * radius
	seen := make(map[uint64]struct{}, len(scratch))
	for _, key := range scratch {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		id := particle.KeyToID(key)
		p, ok := store.Get(id)
		if !ok {
			continue
		}
		if p.Position.Sub(pos).LengthSq() < r2 {
			out = append(out, id)
		}
	}
	return out, scratch
}

// IDPair is an unordered pair of particle ids sharing at least one broad
// phase cell.
type IDPair struct {
	A, B particle.ID
}

// CollisionPairIDs is Hash.CollisionPairs translated back into particle.ID
// pairs, for the collision package's narrow phase.
func CollisionPairIDs(h *Hash) []IDPair {
	raw := h.CollisionPairs()
	out := make([]IDPair, len(raw))
	for i, p := range raw {
		out[i] = IDPair{A: particle.KeyToID(p.A), B: particle.KeyToID(p.B)}
	}
	return out
}
