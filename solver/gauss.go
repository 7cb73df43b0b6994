package solver

import (
	"math/cmplx"
	"time"

	"github.com/katalvlaran/gridflow/pfcase"
)

// GaussSeidel solves the AC power flow with per-bus complex voltage
// relaxation sweeps. Linear convergence only — kept for legacy parity with
// classic tooling; prefer NewtonRaphson for production solves.
//
// Steps:
//  1. Prepare scratch state and the starting vector (as NewtonRaphson).
//  2. Per iteration, sweep PQ buses:
//     V_i ← V_i + (conj(S_i/V_i) − (Ybus·V)_i) / Y_ii,
//     then PV buses with the reactive injection recomputed from the
//     running state and the magnitude pinned back to its setpoint.
//  3. Converge on the same residual criterion as the other AC backends.
//
// Complexity: O(k·n²) time, O(n) extra memory.
func GaussSeidel(rc *pfcase.ReducedCase, opts Options) (*Result, error) {
	opts.normalize()
	start := time.Now()

	// 1) Scratch state and starting vector.
	in, err := prep(rc)
	if err != nil {
		return nil, err
	}
	buses, branches, gens := cloneCase(rc)
	v := startVoltages(buses, gens)

	// PV magnitudes are pinned to their starting setpoints.
	vset := make(map[int]float64, len(in.PV))
	for _, i := range in.PV {
		vset[i] = cmplx.Abs(v[i])
	}

	rowSum := func(i int) complex128 {
		var acc complex128
		for j := range v {
			acc += in.Ybus.At(i, j) * v[j]
		}
		return acc
	}

	// 2-3) Relaxation sweeps.
	_, norm := mismatch(in, buses, gens, v, false)
	converged := norm < opts.Tolerance
	iter := 0
	for !converged && iter < opts.MaxIteration {
		sched := makeSbus(buses, gens, v, in.BaseMVA, false)

		for _, i := range in.PQ {
			v[i] += (cmplx.Conj(sched[i]/v[i]) - rowSum(i)) / in.Ybus.At(i, i)
		}
		for _, i := range in.PV {
			sum := rowSum(i)
			qCalc := imag(v[i] * cmplx.Conj(sum))
			si := complex(real(sched[i]), qCalc)
			v[i] += (cmplx.Conj(si/v[i]) - sum) / in.Ybus.At(i, i)
			v[i] = cmplx.Rect(vset[i], cmplx.Phase(v[i]))
		}

		iter++
		_, norm = mismatch(in, buses, gens, v, false)
		converged = norm < opts.Tolerance
		opts.Logger.Debug("gauss-seidel iteration", "iter", iter, "norm", norm)
	}

	finalize(in, buses, branches, gens, v, false)
	return &Result{
		Buses: buses, Branches: branches, Gens: gens,
		Success:    converged,
		Iterations: iter,
		Elapsed:    time.Since(start),
	}, nil
}
