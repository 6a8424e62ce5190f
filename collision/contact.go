// Package collision implements the narrow-phase contact generator and the
// impulse/Baumgarte resolver (specification §4.6, §4.7). The spatial hash
// (package spatial) is the broad phase; this package dispatches by shape
// pair and never itself touches cell bookkeeping.
package collision

import (
	"math"

	"corephysics/particle"
	"corephysics/vecmath"
)

// Contact is one narrow-phase collision record: the two participants, the
// contact point, the outward normal (from A to B), and the penetration
// depth along that normal (§3 "Collision contact record").
type Contact struct {
	A, B        particle.ID
	Point       vecmath.Vector
	Normal      vecmath.Vector
	Penetration float64
}

const parallelDedupeCos = 0.9995
const minAxisLength = 1e-6

// Generate runs the narrow phase for one candidate pair (a, b), dispatching
// on shape kind. Returns (contact, true) iff the pair actually overlaps; the
// generator never returns a contact with a zero-length normal.
func Generate(a, b *particle.Particle) (Contact, bool) {
	aCircle := a.Shape.Kind == particle.ShapeCircle
	bCircle := b.Shape.Kind == particle.ShapeCircle
	switch {
	case aCircle && bCircle:
		return circleCircle(a, b)
	case aCircle && !bCircle:
		c, ok := circlePolygon(a, b, true)
		return c, ok
	case !aCircle && bCircle:
		c, ok := circlePolygon(b, a, false)
		return c, ok
	default:
		return polygonPolygon(a, b)
	}
}

// circleCircle implements §4.6 "Circle–circle".
func circleCircle(a, b *particle.Particle) (Contact, bool) {
	delta := b.Position.Sub(a.Position)
	dist := delta.Length()
	sumR := a.Shape.Radius + b.Shape.Radius
	if dist >= sumR {
		return Contact{}, false
	}

	var normal vecmath.Vector
	if dist < vecmath.Epsilon {
		// Exact-zero separation: pick normal from the dominant axis of the
		// velocity difference, falling back to +Y (§4.6).
		rel := b.Velocity.Sub(a.Velocity)
		switch {
		case math.Abs(rel.X) < vecmath.Epsilon && math.Abs(rel.Y) < vecmath.Epsilon:
			normal = vecmath.Vector{X: 0, Y: 1}
		case math.Abs(rel.X) >= math.Abs(rel.Y):
			normal = vecmath.Vector{X: math.Copysign(1, rel.X), Y: 0}
		default:
			normal = vecmath.Vector{X: 0, Y: math.Copysign(1, rel.Y)}
		}
	} else {
		normal = delta.Scale(1 / dist)
	}

	penetration := sumR - dist
	point := a.Position.Add(normal.Scale(a.Shape.Radius - penetration/2))

	return Contact{A: a.ID, B: b.ID, Point: point, Normal: normal, Penetration: penetration}, true
}

// worldVertices returns p's polygon vertices transformed into world space by
// its orientation and position.
func worldVertices(p *particle.Particle) []vecmath.Vector {
	verts := p.Shape.Vertices
	out := make([]vecmath.Vector, len(verts))
	c, s := math.Cos(p.Orientation), math.Sin(p.Orientation)
	for i, v := range verts {
		rx := v.X*c - v.Y*s
		ry := v.X*s + v.Y*c
		out[i] = vecmath.Vector{X: rx + p.Position.X, Y: ry + p.Position.Y}
	}
	return out
}

// edgeAxes returns the unit normal of every edge of a world-space CCW vertex
// ring (the edge rotated 90 degrees counter-clockwise, which points inward),
// dropping edges shorter than minAxisLength. The sign is irrelevant to SAT;
// canonicalAxes folds every axis into one hemisphere.
func edgeAxes(verts []vecmath.Vector) []vecmath.Vector {
	n := len(verts)
	axes := make([]vecmath.Vector, 0, n)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		edge := verts[j].Sub(verts[i])
		if edge.Length() < minAxisLength {
			continue
		}
		normal, ok := edge.Perp().SafeNormalize()
		if !ok {
			continue
		}
		axes = append(axes, normal)
	}
	return axes
}

// canonicalAxes canonicalises every axis to a single hemisphere (flipping so
// X, or Y when X==0, is non-negative) and drops near-parallel duplicates
// against axes already kept (§4.6).
func canonicalAxes(raw []vecmath.Vector) []vecmath.Vector {
	var kept []vecmath.Vector
	for _, a := range raw {
		c := a
		if c.X < 0 || (c.X == 0 && c.Y < 0) {
			c = c.Scale(-1)
		}
		dup := false
		for _, k := range kept {
			if math.Abs(c.Dot(k)) > parallelDedupeCos {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, c)
		}
	}
	return kept
}

func project(verts []vecmath.Vector, axis vecmath.Vector) (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range verts {
		d := v.Dot(axis)
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	return
}

func centroid(verts []vecmath.Vector) vecmath.Vector {
	var sum vecmath.Vector
	for _, v := range verts {
		sum = sum.Add(v)
	}
	return sum.Scale(1 / float64(len(verts)))
}

// polygonPolygon implements §4.6 "Polygon–polygon or mixed" via SAT over the
// edge normals of both rings.
func polygonPolygon(a, b *particle.Particle) (Contact, bool) {
	va, vb := worldVertices(a), worldVertices(b)
	axes := canonicalAxes(append(edgeAxes(va), edgeAxes(vb)...))
	if len(axes) == 0 {
		return Contact{}, false
	}

	bestOverlap := math.Inf(1)
	var bestAxis vecmath.Vector

	for _, axis := range axes {
		aMin, aMax := project(va, axis)
		bMin, bMax := project(vb, axis)
		overlap := math.Min(aMax, bMax) - math.Max(aMin, bMin)
		if overlap <= 0 {
			return Contact{}, false
		}
		if overlap < bestOverlap {
			bestOverlap = overlap
			bestAxis = axis
		}
	}

	ca, cb := centroid(va), centroid(vb)
	toB := cb.Sub(ca)
	normal := bestAxis
	if normal.Dot(toB) < 0 {
		normal = normal.Scale(-1)
	}

	point := deepestSupportMidpoint(va, vb, normal)

	return Contact{A: a.ID, B: b.ID, Point: point, Normal: normal, Penetration: bestOverlap}, true
}

// deepestSupportMidpoint returns the midpoint of the deepest-penetrating
// vertex of each ring along normal (§4.6 "Contact point").
func deepestSupportMidpoint(va, vb []vecmath.Vector, normal vecmath.Vector) vecmath.Vector {
	deepest := func(verts []vecmath.Vector, dir vecmath.Vector) vecmath.Vector {
		best := verts[0]
		bestDot := best.Dot(dir)
		for _, v := range verts[1:] {
			if d := v.Dot(dir); d < bestDot {
				bestDot = d
				best = v
			}
		}
		return best
	}
	sa := deepest(va, normal.Scale(-1))
	sb := deepest(vb, normal)
	return sa.Add(sb).Scale(0.5)
}

// circlePolygon handles the mixed circle/polygon case. circleIsA tells this
// function which of the caller's original (a,b) the circle was, so it can
// orient the returned contact's A/B without the caller needing to know which
// branch ran.
func circlePolygon(circleP, polyP *particle.Particle, circleIsA bool) (Contact, bool) {
	verts := worldVertices(polyP)
	axes := canonicalAxes(edgeAxes(verts))

	// Add the axis from the circle centre to the polygon's closest vertex,
	// the standard SAT extension for circle-vs-polygon.
	closest := verts[0]
	bestDistSq := math.Inf(1)
	for _, v := range verts {
		if d := v.Sub(circleP.Position).LengthSq(); d < bestDistSq {
			bestDistSq = d
			closest = v
		}
	}
	if axis, ok := closest.Sub(circleP.Position).SafeNormalize(); ok {
		axes = canonicalAxes(append(axes, axis))
	}
	if len(axes) == 0 {
		return Contact{}, false
	}

	r := circleP.Shape.Radius
	bestOverlap := math.Inf(1)
	var bestAxis vecmath.Vector

	for _, axis := range axes {
		pMin, pMax := project(verts, axis)
		c := circleP.Position.Dot(axis)
		cMin, cMax := c-r, c+r
		overlap := math.Min(pMax, cMax) - math.Max(pMin, cMin)
		if overlap <= 0 {
			return Contact{}, false
		}
		if overlap < bestOverlap {
			bestOverlap = overlap
			bestAxis = axis
		}
	}

	polyCentroid := centroid(verts)
	toCircle := circleP.Position.Sub(polyCentroid)
	normal := bestAxis
	if normal.Dot(toCircle) < 0 {
		normal = normal.Scale(-1)
	}

	point := circleP.Position.Sub(normal.Scale(r - bestOverlap/2))

	// normal points from the polygon toward the circle here.
	if circleIsA {
		// Flip it so it points from A (circle) to B (polygon).
		return Contact{A: circleP.ID, B: polyP.ID, Point: point, Normal: normal.Scale(-1), Penetration: bestOverlap}, true
	}
	// Caller's (a,b) had the polygon first; normal already points from A
	// (polygon) to B (circle).
	return Contact{A: polyP.ID, B: circleP.ID, Point: point, Normal: normal, Penetration: bestOverlap}, true
}
