package particle

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corephysics/vecmath"
)

func TestForceAccumulatorResetAndApply(t *testing.T) {
	store := NewStore()
	id, err := store.Add(Spec{
		Mass:      2,
		Shape:     Circle(1),
		Collision: &CollisionParams{},
	})
	require.NoError(t, err)

	accum := NewForceAccumulator()
	accum.Reset(store.Cap())
	accum.Add(id, vecmath.Vector{X: 4, Y: 0})

	accum.ApplyToVelocities(store, 1.0)
	p, _ := store.Get(id)
	assert.InDelta(t, 2.0, p.Velocity.X, 1e-9) // f/m*dt = 4/2*1
}

func TestApplyToVelocitiesClampsMaxForce(t *testing.T) {
	store := NewStore()
	id, err := store.Add(Spec{
		Mass:      1,
		Shape:     Circle(1),
		Collision: &CollisionParams{},
		Dynamics:  &DynamicsParams{MaxForce: 5},
	})
	require.NoError(t, err)

	accum := NewForceAccumulator()
	accum.Reset(store.Cap())
	accum.Add(id, vecmath.Vector{X: 100, Y: 0})

	accum.ApplyToVelocities(store, 1.0)
	p, _ := store.Get(id)
	assert.InDelta(t, 5.0, p.Velocity.X, 1e-9) // clamped to MaxForce/m*dt = 5/1*1
}

func TestForceAccumulatorSkipsStaticAndMissingCollision(t *testing.T) {
	store := NewStore()
	staticID, _ := store.Add(Spec{Mass: 1, Shape: Circle(1), Collision: &CollisionParams{Static: true}})
	noCollisionID, _ := store.Add(Spec{Mass: 1, Shape: Circle(1)})

	accum := NewForceAccumulator()
	accum.Reset(store.Cap())
	accum.Add(staticID, vecmath.Vector{X: 100, Y: 0})
	accum.Add(noCollisionID, vecmath.Vector{X: 100, Y: 0})

	accum.ApplyToVelocities(store, 1.0)

	p1, _ := store.Get(staticID)
	p2, _ := store.Get(noCollisionID)
	assert.Equal(t, vecmath.Vector{}, p1.Velocity)
	assert.Equal(t, vecmath.Vector{}, p2.Velocity)
}

func TestForceAccumulatorConcurrentAdds(t *testing.T) {
	store := NewStore()
	id, _ := store.Add(Spec{Mass: 1, Shape: Circle(1), Collision: &CollisionParams{}})

	accum := NewForceAccumulator()
	accum.Reset(store.Cap())

	var wg sync.WaitGroup
	const n = 1000
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			accum.Add(id, vecmath.Vector{X: 1, Y: 0})
		}()
	}
	wg.Wait()

	got := accum.Get(id)
	assert.InDelta(t, float64(n), got.X, 1e-9)
}
