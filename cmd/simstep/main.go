// Command simstep is a headless driver for the physics core: it constructs a
// Scheduler from flag-populated tunables, steps it a fixed number of ticks,
// and prints the diagnostics aggregate every 50th tick and on the last tick.
// It plays the orchestrator
// role spec.md §1 calls external to the core — this binary exists only to
// give the library a runnable, exercised entry point, grounded in the
// teacher's main.go RunSimulation loop but rebuilt on cobra with the SDL2
// renderer and input handling removed (SPEC_FULL §14).
package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"corephysics"
	"corephysics/particle"
	"corephysics/sph"
	"corephysics/vecmath"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		n         int
		ticks     int
		dt        float64
		rho0      float64
		nu        float64
		domainX   float64
		domainY   float64
		pressure  float64
		gravity   float64
		smoothing float64
		drag      float64
		radius    float64
		seed      int64
	)

	cmd := &cobra.Command{
		Use:   "simstep",
		Short: "Step the particle physics core headlessly and print diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimSteps(n, ticks, dt, rho0, nu, domainX, domainY, pressure, gravity, smoothing, drag, radius, seed)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&n, "n", 200, "number of fluid particles")
	flags.IntVar(&ticks, "ticks", 300, "number of ticks to step")
	flags.Float64Var(&dt, "dt", 1.0/60.0, "time step (seconds, clamped into [0,1/60])")
	flags.Float64Var(&rho0, "rho0", 1000.0, "SPH rest density")
	flags.Float64Var(&nu, "nu", 0.01, "SPH viscosity")
	flags.Float64Var(&domainX, "domainX", 1.0, "half-width of the world bounds")
	flags.Float64Var(&domainY, "domainY", 1.0, "half-height of the world bounds")
	flags.Float64Var(&pressure, "pressure", 2000.0, "SPH gas constant")
	flags.Float64Var(&gravity, "g", 9.81, "gravitational constant")
	flags.Float64Var(&smoothing, "smooth", 0.08, "SPH smoothing radius")
	flags.Float64Var(&drag, "drag", 0.01, "per-particle velocity damping")
	flags.Float64Var(&radius, "radius", 0.02, "particle radius")
	flags.Int64Var(&seed, "seed", 1, "spawn jitter seed")

	return cmd
}

func runSimSteps(n, ticks int, dt, rho0, nu, domainX, domainY, pressure, gravity, smoothing, drag, radius float64, seed int64) error {
	bounds := particle.Rect{Left: -domainX, Right: domainX, Top: -domainY, Bottom: domainY}

	tunables := corephysics.DefaultTunables()
	tunables.SetGravityConstant(gravity)

	fluidParams := sph.Params{
		Material: sph.Fluid,
		H:        smoothing,
		K:        pressure,
		Mu:       nu,
		Rho0:     rho0,
		R:        radius,
		D:        drag,
	}
	granularParams := sph.Params{Material: sph.Granular, H: smoothing, K: pressure, R: radius}

	sched, err := corephysics.NewScheduler(smoothing, fluidParams, granularParams, bounds, tunables)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(seed))
	side := int(intSqrt(n))
	spacing := radius * 2.3
	originX := -float64(side) * spacing / 2
	originY := bounds.Top + radius*2

	for i := 0; i < n; i++ {
		row, col := i/side, i%side
		pos := vecmath.Vector{
			X: originX + float64(col)*spacing + rng.Float64()*1e-4,
			Y: originY + float64(row)*spacing,
		}
		_, err := sched.SpawnPreset(pos, fluidPreset(radius, gravity, smoothing, rho0, pressure, nu, drag))
		if err != nil {
			return err
		}
	}

	for t := 0; t < ticks; t++ {
		sched.Step(dt)
		if t%50 == 0 || t == ticks-1 {
			meanP, stdP, meanD, stdD := sched.DiagnosticsAggregate()
			fmt.Printf("tick %4d: pressure mean=%.3f std=%.3f density mean=%.3f std=%.3f\n", t, meanP, stdP, meanD, stdD)
		}
	}
	return nil
}

func fluidPreset(radius, gravity, h, rho0, k, mu, drag float64) corephysics.Preset {
	return corephysics.Preset{
		Name:                "fluid",
		Mass:                1,
		ParticleRadius:      radius,
		GravityStrength:     gravity,
		Restitution:         0.2,
		Friction:            0.0,
		VelocityDamping:     drag,
		PressureRadius:      h,
		IsFluid:             true,
		SPHRestDensity:      rho0,
		SPHGasConstant:      k,
		SPHViscosity:        mu,
		EnableEdgeCollision: true,
	}
}

func intSqrt(n int) int {
	r := 1
	for r*r < n {
		r++
	}
	return r
}
