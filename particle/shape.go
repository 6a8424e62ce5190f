package particle

import "corephysics/vecmath"

// ShapeKind discriminates the two collision shapes the data model allows.
type ShapeKind int

const (
	// ShapeCircle is a circle of the given Radius.
	ShapeCircle ShapeKind = iota
	// ShapePolygon is a convex polygon given as a closed, ordered,
	// counter-clockwise, simple ring of local-frame vertices.
	ShapePolygon
)

// Shape is a particle's collision shape, in the particle's local frame.
type Shape struct {
	Kind     ShapeKind
	Radius   float64          // meaningful for ShapeCircle; must be > 0
	Vertices []vecmath.Vector // meaningful for ShapePolygon; CCW, simple ring
}

// Circle builds a circle shape.
func Circle(radius float64) Shape {
	return Shape{Kind: ShapeCircle, Radius: radius}
}

// Polygon builds a polygon shape from a local-frame CCW vertex ring.
func Polygon(vertices []vecmath.Vector) Shape {
	return Shape{Kind: ShapePolygon, Vertices: vertices}
}

// validate checks the invariants the data model requires of a shape:
// radius > 0 for circles; a simple, counter-clockwise ring of at least 3
// vertices for polygons.
func (s Shape) validate() error {
	switch s.Kind {
	case ShapeCircle:
		if s.Radius <= 0 {
			return configErr("shape.radius", "circle radius must be > 0")
		}
		return nil
	case ShapePolygon:
		if len(s.Vertices) < 3 {
			return configErr("shape.vertices", "polygon ring needs at least 3 vertices")
		}
		if signedArea(s.Vertices) <= 0 {
			return configErr("shape.vertices", "polygon ring must be counter-clockwise")
		}
		if !isSimple(s.Vertices) {
			return configErr("shape.vertices", "polygon ring must be simple (non self-intersecting)")
		}
		return nil
	default:
		return configErr("shape.kind", "unknown shape kind")
	}
}

// signedArea returns twice the signed area of the polygon via the shoelace
// formula; positive for a counter-clockwise ring.
func signedArea(v []vecmath.Vector) float64 {
	n := len(v)
	sum := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += v[i].X*v[j].Y - v[j].X*v[i].Y
	}
	return sum
}

// isSimple does a straightforward O(n^2) non-adjacent edge intersection
// check. Polygons are created only at spawn time (never per-tick), so the
// quadratic cost is not on any hot path.
func isSimple(v []vecmath.Vector) bool {
	n := len(v)
	if n < 4 {
		return true // a triangle is always simple
	}
	for i := 0; i < n; i++ {
		a0, a1 := v[i], v[(i+1)%n]
		for j := i + 1; j < n; j++ {
			if j == i {
				continue
			}
			// Skip edges adjacent to edge i (they share an endpoint by construction).
			if j == i || (j+1)%n == i {
				continue
			}
			b0, b1 := v[j], v[(j+1)%n]
			if segmentsIntersect(a0, a1, b0, b1) {
				return false
			}
		}
	}
	return true
}

func segmentsIntersect(a0, a1, b0, b1 vecmath.Vector) bool {
	d1 := cross3(b0, b1, a0)
	d2 := cross3(b0, b1, a1)
	d3 := cross3(a0, a1, b0)
	d4 := cross3(a0, a1, b1)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return false
}

func cross3(a, b, c vecmath.Vector) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(b.Y-a.Y)
}

// BoundingRadius returns the radius of the smallest circle, centred on the
// particle's position, that encloses the shape in its local frame. Used by
// the spatial hash to build a broad-phase AABB that stays conservative under
// rotation without having to re-derive it from the rotated vertex set every
// tick.
func (s Shape) BoundingRadius() float64 {
	switch s.Kind {
	case ShapeCircle:
		return s.Radius
	case ShapePolygon:
		max := 0.0
		for _, v := range s.Vertices {
			if l := v.Length(); l > max {
				max = l
			}
		}
		return max
	default:
		return 0
	}
}
