// Package solver implements the numerical power-flow backends operating on
// *pfcase.ReducedCase. Every backend shares one contract: it consumes a
// reduced case plus Options, never mutates the input arrays (it works on
// copies), and returns a *Result carrying post-solve arrays, a Success
// flag, the iteration count and the elapsed wall time.
//
// The backends offered are:
//
//   - NewtonRaphson / IwamotoNewtonRaphson
//
//   - Method: full Jacobian in polar form, LU-solved each iteration;
//     the Iwamoto variant halves the step while the mismatch norm grows.
//
//   - Time:   O(k · n³) dense (k iterations); quadratic convergence near
//     the solution.
//
//   - Use as the default AC algorithm; the only family valid for recycling.
//
//   - GaussSeidel
//
//   - Method: per-bus complex voltage relaxation sweeps.
//
//   - Time:   O(k · n²); linear convergence, many iterations.
//
//   - Kept for legacy parity and teaching purposes.
//
//   - FastDecoupledBX / FastDecoupledXB
//
//   - Method: constant B' / B” matrices factorized once, alternating
//     P-angle and Q-magnitude half-iterations (Stott–Alsac).
//
//   - Time:   O(n³) once for factorization + O(k · n²) iterations.
//
//   - BackwardForwardSweep
//
//   - Method: ladder iteration on radial networks: backward current
//     accumulation, forward voltage update.
//
//   - Time:   O(k · n); returns ErrNonRadial on meshed topologies.
//
//   - DC
//
//   - Method: linearized single-pass angle solve; by construction always
//     reports Success = true with Iterations = 1.
//
//   - WithoutBranches
//
//   - Method: trivial direct evaluation for cases with zero branches; no
//     impedance couples the buses, so voltages are already final.
//     Always Success = true, Iterations = 1, Elapsed = 0.
//
// # Scratch-state reuse
//
// A backend first consults rc.Internal: when it holds admittance matrices
// of matching dimension they are reused verbatim, otherwise they are built
// from the case arrays (package ybus) and attached to rc.Internal. This is
// the mechanism the orchestrator's recycle path builds on.
//
// # Errors
//
//	ErrNonRadial - BackwardForwardSweep on a meshed or disconnected case.
//	ErrSingular  - a linear system without unique solution (structural
//	               modeling error, distinct from non-convergence).
//
// Non-convergence is NOT an error at this layer: the backend returns a
// Result with Success = false and lets the orchestrator decide.
//
// # Integration
//
//   - Consumes github.com/katalvlaran/gridflow/pfcase and /ybus.
//   - Linear algebra via gonum.org/v1/gonum/mat (dense LU).
package solver

import "errors"

// Sentinel errors for structural solver failures.
var (
	// ErrNonRadial indicates the sweep solver was given a meshed or
	// disconnected topology.
	ErrNonRadial = errors.New("solver: network is not radial")

	// ErrSingular indicates a linear system without a unique solution.
	ErrSingular = errors.New("solver: singular system matrix")
)
