package spatial

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corephysics/vecmath"
)

func box(pos vecmath.Vector, pad float64) AABB {
	return AABB{MinX: pos.X - pad, MinY: pos.Y - pad, MaxX: pos.X + pad, MaxY: pos.Y + pad}
}

func TestInsertIsIdempotent(t *testing.T) {
	h := New(0.1)
	h.Insert(1, box(vecmath.Vector{}, 0))
	h.Insert(1, box(vecmath.Vector{X: 5, Y: 5}, 0)) // second insert should be a no-op

	out := h.Neighbours(vecmath.Vector{}, nil)
	assert.Len(t, out, 1)
}

func TestUpdatePositionMovesOccupant(t *testing.T) {
	h := New(0.1)
	h.Insert(1, box(vecmath.Vector{}, 0))
	h.UpdatePosition(1, box(vecmath.Vector{X: 10, Y: 10}, 0))

	assert.Empty(t, h.Neighbours(vecmath.Vector{}, nil))
	assert.Len(t, h.Neighbours(vecmath.Vector{X: 10, Y: 10}, nil), 1)
}

func TestCollisionPairsReportsEachPairOnce(t *testing.T) {
	h := New(1.0)
	h.Insert(1, box(vecmath.Vector{}, 0))
	h.Insert(2, box(vecmath.Vector{}, 0))
	h.Insert(3, box(vecmath.Vector{X: 0.1, Y: 0.1}, 0))

	pairs := h.CollisionPairs()
	assert.Len(t, pairs, 3)

	seen := make(map[Pair]int)
	for _, p := range pairs {
		seen[p]++
	}
	for _, count := range seen {
		assert.Equal(t, 1, count)
	}
}

// TestSpatialHashSanity is §8 boundary scenario 6: insert 10000 random
// particles in (-1,1)^2 with h=0.05; Neighbours((0,0)) returns exactly the
// particles within the 3x3 centre cells, matching a brute-force check.
func TestSpatialHashSanity(t *testing.T) {
	const cellSize = 0.05
	h := New(cellSize)
	rng := rand.New(rand.NewSource(42))

	positions := make([]vecmath.Vector, 10000)
	for i := range positions {
		positions[i] = vecmath.Vector{X: rng.Float64()*2 - 1, Y: rng.Float64()*2 - 1}
		h.Insert(uint64(i), box(positions[i], 0))
	}

	got := h.Neighbours(vecmath.Vector{}, nil)
	gotSet := make(map[uint64]struct{}, len(got))
	for _, id := range got {
		gotSet[id] = struct{}{}
	}

	// Brute-force: every particle whose cell lies in the 3x3 block centred
	// on (0,0)'s cell (cell {0,0} for cellSize 0.05, since floor(0/0.05)=0).
	for i, p := range positions {
		cx := floorDiv(p.X, cellSize)
		cy := floorDiv(p.Y, cellSize)
		inBlock := cx >= -1 && cx <= 1 && cy >= -1 && cy <= 1
		_, found := gotSet[uint64(i)]
		require.Equal(t, inBlock, found, "particle %d at cell (%d,%d)", i, cx, cy)
	}
}
