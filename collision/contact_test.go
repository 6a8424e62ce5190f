package collision

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corephysics/particle"
	"corephysics/vecmath"
)

func circleAt(pos vecmath.Vector, radius float64) *particle.Particle {
	return &particle.Particle{Position: pos, Shape: particle.Circle(radius), Mass: 1}
}

func squareAt(pos vecmath.Vector, halfExtent float64) *particle.Particle {
	v := []vecmath.Vector{
		{X: -halfExtent, Y: -halfExtent},
		{X: halfExtent, Y: -halfExtent},
		{X: halfExtent, Y: halfExtent},
		{X: -halfExtent, Y: halfExtent},
	}
	return &particle.Particle{Position: pos, Shape: particle.Polygon(v), Mass: 1}
}

func TestCircleCircleContact(t *testing.T) {
	a := circleAt(vecmath.Vector{X: 0, Y: 0}, 0.02)
	b := circleAt(vecmath.Vector{X: 0.03, Y: 0}, 0.02)

	c, ok := Generate(a, b)
	require.True(t, ok)
	assert.InDelta(t, 1.0, c.Normal.X, 1e-9)
	assert.InDelta(t, 0.01, c.Penetration, 1e-9) // (0.02+0.02) - 0.03
}

func TestCircleCircleNoContact(t *testing.T) {
	a := circleAt(vecmath.Vector{X: 0, Y: 0}, 0.02)
	b := circleAt(vecmath.Vector{X: 0.1, Y: 0}, 0.02)

	_, ok := Generate(a, b)
	require.False(t, ok)
}

func TestCircleCircleZeroDistanceFallsBackToVelocityAxis(t *testing.T) {
	a := circleAt(vecmath.Vector{}, 0.02)
	b := circleAt(vecmath.Vector{}, 0.02)
	a.Velocity = vecmath.Vector{X: -1, Y: 0}
	b.Velocity = vecmath.Vector{X: 1, Y: 0}

	c, ok := Generate(a, b)
	require.True(t, ok)
	assert.InDelta(t, 1.0, math.Abs(c.Normal.X), 1e-9)
}

// TestSATSqueeze is §8 scenario 3: two axis-aligned unit squares pushed
// together should yield a contact normal within 1 degree of (1,0).
func TestSATSqueeze(t *testing.T) {
	a := squareAt(vecmath.Vector{X: -0.45, Y: 0}, 0.5)
	b := squareAt(vecmath.Vector{X: 0.45, Y: 0}, 0.5)

	c, ok := Generate(a, b)
	require.True(t, ok)

	angle := math.Atan2(math.Abs(c.Normal.Y), c.Normal.X)
	assert.Less(t, math.Abs(angle), 1*math.Pi/180)
	assert.Greater(t, c.Penetration, 0.0)
}

func TestPolygonPolygonSeparated(t *testing.T) {
	a := squareAt(vecmath.Vector{X: -2, Y: 0}, 0.5)
	b := squareAt(vecmath.Vector{X: 2, Y: 0}, 0.5)

	_, ok := Generate(a, b)
	require.False(t, ok)
}

func TestCirclePolygonContact(t *testing.T) {
	a := circleAt(vecmath.Vector{X: 0, Y: 0}, 0.3)
	b := squareAt(vecmath.Vector{X: 0.6, Y: 0}, 0.5)

	c, ok := Generate(a, b)
	require.True(t, ok)
	assert.Equal(t, a.ID, c.A)
	assert.Equal(t, b.ID, c.B)
	assert.Greater(t, c.Normal.X, 0.0)
}

func TestAxisDeduplicationDropsParallelEdges(t *testing.T) {
	// A unit square's four edge normals are two pairs of opposite axes, so
	// after dedup there should be exactly 2 candidate axes, not 4.
	va := []vecmath.Vector{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	axes := canonicalAxes(edgeAxes(va))
	assert.Len(t, axes, 2)
}
