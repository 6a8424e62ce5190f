// Package particle owns the particle store, its per-particle component bag,
// and the per-tick force accumulator (specification §3, §4.3).
package particle

import "fmt"

// ID is an opaque, stable particle identity. It packs a dense slot index
// with a generation counter so that a removed and later reused slot cannot
// be mistaken for the particle that previously occupied it — the same
// slot-map technique an entity-component system uses to keep entity handles
// valid across deletion, adapted here without pulling in a full ECS.
type ID struct {
	index uint32
	gen   uint32
}

// Invalid is the zero ID; no live particle ever compares equal to it because
// generation counters start at 1.
var Invalid ID

// IsValid reports whether id could possibly refer to a live particle (it
// does not, by itself, check liveness — use Store.Get for that).
func (id ID) IsValid() bool { return id.gen != 0 }

func (id ID) String() string {
	return fmt.Sprintf("particle#%d.%d", id.index, id.gen)
}

// Key packs id into a single uint64, high 32 bits generation and low 32 bits
// index, for use as a map key by callers (the spatial hash) that want a
// comparable, hashable scalar rather than the struct itself.
func (id ID) Key() uint64 {
	return uint64(id.gen)<<32 | uint64(id.index)
}

// KeyToID is the inverse of Key, for callers that need to recover an ID from
// a packed key (the spatial hash's pair output).
func KeyToID(key uint64) ID {
	return ID{index: uint32(key), gen: uint32(key >> 32)}
}
