// Package bonds implements the persistent pairwise Hookean-spring bond
// network used by elastic materials (specification §4.5). Bonds are
// deduplicated by canonical identity ordering and persist until the network
// is cleared or an endpoint is removed from the particle store.
package bonds

import (
	"corephysics/particle"
)

// Bond is an unordered pair of particle identities plus rest length,
// stiffness, and damping (§3 "Bond").
type Bond struct {
	A, B    particle.ID
	RestLen float64
	K       float64
	Damping float64
}

func canonicalKey(a, b particle.ID) (lo, hi uint64) {
	ak, bk := a.Key(), b.Key()
	if ak <= bk {
		return ak, bk
	}
	return bk, ak
}

// Network owns the bond set for one scene. Insertion is deduplicated by the
// unordered pair of endpoints, so repeated AddBond calls on the same pair
// grow the count by at most one (§8 "Bond identity invariance").
type Network struct {
	byKey map[[2]uint64]int // canonical pair -> index into bonds
	bonds []Bond
}

// NewNetwork creates an empty bond network.
func NewNetwork() *Network {
	return &Network{byKey: make(map[[2]uint64]int)}
}

// Add inserts a bond between a and b, or is a no-op if that unordered pair
// is already bonded. Returns whether a new bond was created.
func (n *Network) Add(a, b particle.ID, restLen, k, damping float64) bool {
	lo, hi := canonicalKey(a, b)
	key := [2]uint64{lo, hi}
	if _, exists := n.byKey[key]; exists {
		return false
	}
	n.byKey[key] = len(n.bonds)
	n.bonds = append(n.bonds, Bond{A: a, B: b, RestLen: restLen, K: k, Damping: damping})
	return true
}

// Clear removes every bond.
func (n *Network) Clear() {
	n.byKey = make(map[[2]uint64]int)
	n.bonds = nil
}

// RemoveParticle drops every bond touching id, maintaining the byKey index.
func (n *Network) RemoveParticle(id particle.ID) {
	kept := n.bonds[:0]
	newIndex := make(map[[2]uint64]int, len(n.bonds))
	for _, b := range n.bonds {
		if b.A == id || b.B == id {
			continue
		}
		lo, hi := canonicalKey(b.A, b.B)
		newIndex[[2]uint64{lo, hi}] = len(kept)
		kept = append(kept, b)
	}
	n.bonds = kept
	n.byKey = newIndex
}

// Len returns the number of live bonds.
func (n *Network) Len() int { return len(n.bonds) }

// Bonds returns the live bond set, for diagnostics and testing (SPEC_FULL
// §12 "Bond network iteration helpers" — the spec defines bond lifecycle but
// not an enumeration accessor).
func (n *Network) Bonds() []Bond {
	out := make([]Bond, len(n.bonds))
	copy(out, n.bonds)
	return out
}

// Update evaluates the Hookean + damping force for every bond whose
// endpoints are both still live and at least one is non-static, and injects
// it into accum (§4.5). A bond whose current length is below 1e-6 is
// skipped rather than reported, per the spec's failure policy.
func (n *Network) Update(store *particle.Store, accum *particle.ForceAccumulator) {
	for _, b := range n.bonds {
		pa, okA := store.Get(b.A)
		pb, okB := store.Get(b.B)
		if !okA || !okB {
			continue
		}
		if pa.IsStatic() && pb.IsStatic() {
			continue
		}

		delta := pb.Position.Sub(pa.Position)
		d := delta.Length()
		if d < 1e-6 {
			continue
		}
		dir := delta.Scale(1 / d)

		relVel := pb.Velocity.Sub(pa.Velocity)
		mag := b.K*(d-b.RestLen) + b.Damping*relVel.Dot(dir)

		force := dir.Scale(mag)
		accum.Add(b.A, force)
		accum.Add(b.B, force.Scale(-1))
	}
}
