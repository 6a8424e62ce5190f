// Package diagnostics computes population-level statistics over the
// per-particle SPH diagnostics, generalising the teacher's hand-rolled
// CalculatePressureStats (simulation/density_pressure.go) onto gonum/stat
// instead of a worker-local atomic-accumulator reduction: the parallel
// reduction problem that function exists to solve is orthogonal to the
// statistics themselves (SPEC_FULL §12).
package diagnostics

import "gonum.org/v1/gonum/stat"

// Sample is one particle's density/pressure pair, the subset of
// sph.Diagnostics that Aggregate needs.
type Sample struct {
	Density  float64
	Pressure float64
}

// Aggregate computes mean and standard deviation of pressure and density
// across samples. Returns all zeros for an empty population.
func Aggregate(samples []Sample) (meanPressure, stdPressure, meanDensity, stdDensity float64) {
	if len(samples) == 0 {
		return 0, 0, 0, 0
	}
	pressures := make([]float64, len(samples))
	densities := make([]float64, len(samples))
	for i, s := range samples {
		pressures[i] = s.Pressure
		densities[i] = s.Density
	}
	meanPressure, stdPressure = stat.MeanStdDev(pressures, nil)
	meanDensity, stdDensity = stat.MeanStdDev(densities, nil)
	return
}
