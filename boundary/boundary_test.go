package boundary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corephysics/particle"
	"corephysics/vecmath"
)

var bounds = particle.Rect{Left: 0, Right: 1, Top: 0, Bottom: 1}

// TestBounceReflectsAndRecovers: a particle driven into the left wall at
// speed should come back out moving the other way, clamped just inside the
// wall.
func TestBounceReflectsAndRecovers(t *testing.T) {
	store := particle.NewStore()
	id, err := store.Add(particle.Spec{
		Position:  vecmath.Vector{X: 0.005, Y: 0.5},
		Velocity:  vecmath.Vector{X: -1, Y: 0},
		Mass:      1,
		Shape:     particle.Circle(0.02),
		Collision: &particle.CollisionParams{},
	})
	require.NoError(t, err)

	Constrain(store, bounds, 0.8)

	p, _ := store.Get(id)
	assert.Greater(t, p.Velocity.X, 0.0, "reflected off the left wall")
	assert.InDelta(t, 0.8, p.Velocity.X, 1e-9)
	assert.GreaterOrEqual(t, p.Position.X, bounds.Left+0.02)
}

func TestSlowApproachSleepsInsteadOfBouncing(t *testing.T) {
	store := particle.NewStore()
	id, err := store.Add(particle.Spec{
		Position:  vecmath.Vector{X: 0.5, Y: 0.995},
		Velocity:  vecmath.Vector{X: 0, Y: 0.001},
		Mass:      1,
		Shape:     particle.Circle(0.02),
		Collision: &particle.CollisionParams{},
	})
	require.NoError(t, err)

	Constrain(store, bounds, 0.8)

	p, _ := store.Get(id)
	assert.Equal(t, 0.0, p.Velocity.Y)
	assert.True(t, p.Collision.Grounded)
}

func TestWrapPolicyCrossesToOppositeSide(t *testing.T) {
	store := particle.NewStore()
	id, err := store.Add(particle.Spec{
		Position:  vecmath.Vector{X: -0.1, Y: 0.5},
		Velocity:  vecmath.Vector{X: -1, Y: 0},
		Mass:      1,
		Shape:     particle.Circle(0.02),
		Collision: &particle.CollisionParams{},
		Boundary:  &particle.BoundaryPolicy{Wrap: true},
	})
	require.NoError(t, err)

	Constrain(store, bounds, 0.8)

	p, _ := store.Get(id)
	assert.InDelta(t, bounds.Right+0.02, p.Position.X, 1e-9)
	assert.Equal(t, -1.0, p.Velocity.X, "wrap never touches velocity")
}

func TestFluidBounceAppliesWallDrag(t *testing.T) {
	store := particle.NewStore()
	id, err := store.Add(particle.Spec{
		Position:  vecmath.Vector{X: 0.005, Y: 0.5},
		Velocity:  vecmath.Vector{X: -1, Y: 0},
		Mass:      1,
		Shape:     particle.Circle(0.02),
		Collision: &particle.CollisionParams{Fluid: true},
	})
	require.NoError(t, err)

	Constrain(store, bounds, 1.0)

	p, _ := store.Get(id)
	// Without drag, reflection would leave speed 1.0; wall drag shaves it down.
	assert.Less(t, p.Velocity.X, 1.0)
	assert.Greater(t, p.Velocity.X, 0.0)
}

func TestInteriorParticleUnaffected(t *testing.T) {
	store := particle.NewStore()
	id, err := store.Add(particle.Spec{
		Position:  vecmath.Vector{X: 0.5, Y: 0.5},
		Velocity:  vecmath.Vector{X: 0.3, Y: -0.2},
		Mass:      1,
		Shape:     particle.Circle(0.02),
		Collision: &particle.CollisionParams{},
	})
	require.NoError(t, err)

	Constrain(store, bounds, 0.8)

	p, _ := store.Get(id)
	assert.Equal(t, vecmath.Vector{X: 0.5, Y: 0.5}, p.Position)
	assert.Equal(t, vecmath.Vector{X: 0.3, Y: -0.2}, p.Velocity)
}
