// Package spatial provides the uniform spatial hash used as the broad phase
// for SPH neighbour search and collision-pair generation (specification
// §4.2). It is grounded on the teacher's spatial.Grid
// (_examples/zzstoatzz-fluids/spatial/grid.go), generalised from a single
// cell-to-indices map into the bidirectional insert/remove/query the spec
// requires, with the teacher's string-formatted cell key
// (fmt.Sprintf("%d-%d", ...)) replaced by a plain integer-pair map key for
// allocation-free lookups.
package spatial

import "corephysics/vecmath"

// Cell is an integer grid coordinate.
type Cell struct {
	X, Y int64
}

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	MinX, MinY, MaxX, MaxY float64
}

// Pair is an unordered pair of particle ids that share at least one cell.
type Pair struct {
	A, B uint64
}

// Hash is a uniform grid of fixed cell size mapping cell -> occupant list,
// plus the reverse mapping (occupant -> cell set) the spec requires so that
// removal is O(cells) rather than O(N).
type Hash struct {
	cellSize float64
	cells    map[Cell][]uint64
	occupied map[uint64][]Cell
}

// New creates a spatial hash with the given fixed cell size h.
func New(cellSize float64) *Hash {
	return &Hash{
		cellSize: cellSize,
		cells:    make(map[Cell][]uint64),
		occupied: make(map[uint64][]Cell),
	}
}

// CellSize returns the fixed cell size the hash was constructed with.
func (h *Hash) CellSize() float64 { return h.cellSize }

func (h *Hash) cellOf(x, y float64) Cell {
	return Cell{
		X: floorDiv(x, h.cellSize),
		Y: floorDiv(y, h.cellSize),
	}
}

func floorDiv(v, cell float64) int64 {
	q := v / cell
	f := int64(q)
	if q < 0 && float64(f) != q {
		f--
	}
	return f
}

func (h *Hash) cellsCovering(box AABB) []Cell {
	min := h.cellOf(box.MinX, box.MinY)
	max := h.cellOf(box.MaxX, box.MaxY)
	cells := make([]Cell, 0, (max.X-min.X+1)*(max.Y-min.Y+1))
	for cx := min.X; cx <= max.X; cx++ {
		for cy := min.Y; cy <= max.Y; cy++ {
			cells = append(cells, Cell{cx, cy})
		}
	}
	return cells
}

// Insert registers id as occupying every cell covered by box. Idempotent:
// calling Insert again for an id already present is a no-op, per spec; use
// UpdatePosition to move a particle that has already been inserted.
func (h *Hash) Insert(id uint64, box AABB) {
	if _, already := h.occupied[id]; already {
		return
	}
	cells := h.cellsCovering(box)
	h.occupied[id] = cells
	for _, c := range cells {
		h.cells[c] = append(h.cells[c], id)
	}
}

// Remove deregisters id from every cell it currently occupies.
func (h *Hash) Remove(id uint64) {
	cells, ok := h.occupied[id]
	if !ok {
		return
	}
	for _, c := range cells {
		occupants := h.cells[c]
		for i, o := range occupants {
			if o == id {
				occupants[i] = occupants[len(occupants)-1]
				occupants = occupants[:len(occupants)-1]
				break
			}
		}
		if len(occupants) == 0 {
			delete(h.cells, c)
		} else {
			h.cells[c] = occupants
		}
	}
	delete(h.occupied, id)
}

// UpdatePosition removes id (if present) and reinserts it at box.
func (h *Hash) UpdatePosition(id uint64, box AABB) {
	h.Remove(id)
	h.Insert(id, box)
}

// Clear empties the hash, discarding every occupant.
func (h *Hash) Clear() {
	h.cells = make(map[Cell][]uint64)
	h.occupied = make(map[uint64][]Cell)
}

// Neighbours clears out and appends every occupant of the 3x3 block of
// cells centred on pos, returning the updated slice. Callers must tolerate
// duplicates (a particle straddling a cell boundary occupies more than one
// cell) and self-hits.
func (h *Hash) Neighbours(pos vecmath.Vector, out []uint64) []uint64 {
	out = out[:0]
	center := h.cellOf(pos.X, pos.Y)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			c := Cell{center.X + dx, center.Y + dy}
			out = append(out, h.cells[c]...)
		}
	}
	return out
}

// CollisionPairs yields every unordered pair of ids that share at least one
// cell, each at most once.
func (h *Hash) CollisionPairs() []Pair {
	seen := make(map[Pair]struct{})
	var pairs []Pair
	for _, occupants := range h.cells {
		n := len(occupants)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				a, b := occupants[i], occupants[j]
				if a == b {
					continue
				}
				p := canonical(a, b)
				if _, ok := seen[p]; ok {
					continue
				}
				seen[p] = struct{}{}
				pairs = append(pairs, p)
			}
		}
	}
	return pairs
}

func canonical(a, b uint64) Pair {
	if a < b {
		return Pair{a, b}
	}
	return Pair{b, a}
}
