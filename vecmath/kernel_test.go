package vecmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoly6BoundaryBehavior(t *testing.T) {
	h := 1.0
	assert.InDelta(t, 4/(3.14159265*1), Poly6(0, h), 1e-2)
	assert.Equal(t, 0.0, Poly6(h, h), "C0 continuity at r==h")
	assert.Equal(t, 0.0, Poly6(-0.1, h))
	assert.Equal(t, 0.0, Poly6(h+0.1, h))
	assert.Greater(t, Poly6(0.5, h), 0.0)
}

func TestSpikyGradDirectionAndMagnitude(t *testing.T) {
	h := 1.0
	dir := Vector{X: 1, Y: 0}
	g := SpikyGrad(0.5, h, dir)
	// SpikyGrad's leading constant is negative, so it should point opposite dir.
	assert.Less(t, g.X, 0.0)

	assert.Equal(t, Vector{}, SpikyGrad(0, h, dir), "r==0 returns zero")
	assert.Equal(t, Vector{}, SpikyGrad(h, h, dir), "r==h returns zero")
	assert.Equal(t, Vector{}, SpikyGrad(0.5, h, Vector{}), "degenerate direction returns zero")
}

func TestViscosityLaplacianBoundary(t *testing.T) {
	h := 1.0
	assert.Greater(t, ViscosityLaplacian(0, h), 0.0)
	assert.Equal(t, 0.0, ViscosityLaplacian(h, h))
	assert.Equal(t, 0.0, ViscosityLaplacian(-0.1, h))
}
