package solver

import (
	"math"
	"math/cmplx"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/gridflow/pfcase"
)

// maxHalvings bounds the Iwamoto step-shrinking per iteration.
const maxHalvings = 4

// NewtonRaphson solves the AC power flow with a full polar-form Jacobian.
//
// It returns a *Result whose Success flag reports residual convergence
// within opts.MaxIteration; non-convergence is NOT an error. Errors are
// reserved for structural failures (ErrSingular, malformed admittances).
//
// Steps:
//  1. Prepare scratch state: reuse or build Ybus/Yf/Yt, partition buses
//     (prep; O(n²) on a cold build, O(n) recycled).
//  2. Assemble the starting voltage vector (flat or warm start).
//  3. Iterate: residual → Jacobian → LU solve → polar update, until the
//     infinity norm of the residual drops below opts.Tolerance or the
//     iteration cap is hit.
//  4. Finalize branch flows and machine allocation on the solved vector.
//
// Complexity: O(k·n³) time dense, O(n²) memory.
func NewtonRaphson(rc *pfcase.ReducedCase, opts Options) (*Result, error) {
	return newton(rc, opts, false)
}

// IwamotoNewtonRaphson is NewtonRaphson with Iwamoto-style damping: when a
// full step would grow the residual norm, the step is halved (up to
// maxHalvings times) before being accepted. Slower per iteration, far more
// robust on heavily loaded cases.
func IwamotoNewtonRaphson(rc *pfcase.ReducedCase, opts Options) (*Result, error) {
	return newton(rc, opts, true)
}

func newton(rc *pfcase.ReducedCase, opts Options, damped bool) (*Result, error) {
	opts.normalize()
	start := time.Now()

	// 1) Scratch state.
	in, err := prep(rc)
	if err != nil {
		return nil, err
	}
	buses, branches, gens := cloneCase(rc)

	// 2) Starting vector.
	v := startVoltages(buses, gens)
	pvpq := append(append([]int(nil), in.PV...), in.PQ...)

	// 3) Iteration loop.
	f, norm := mismatch(in, buses, gens, v, opts.VoltageDependLoads)
	converged := norm < opts.Tolerance
	iter := 0
	for !converged && iter < opts.MaxIteration {
		jac := jacobian(in, v, pvpq)
		dx := mat.NewVecDense(len(f), nil)
		var lu mat.LU
		lu.Factorize(jac)
		if err = lu.SolveVecTo(dx, false, mat.NewVecDense(len(f), f)); err != nil {
			return nil, ErrSingular
		}

		step := 1.0
		for h := 0; ; h++ {
			cand := applyStep(v, dx, pvpq, in.PQ, step)
			candF, candNorm := mismatch(in, buses, gens, cand, opts.VoltageDependLoads)
			if !damped || candNorm <= norm || h == maxHalvings {
				v, f, norm = cand, candF, candNorm
				break
			}
			step /= 2
		}
		iter++
		converged = norm < opts.Tolerance
		opts.Logger.Debug("newton-raphson iteration", "iter", iter, "norm", norm, "step", step)
	}

	// 4) Finalize.
	finalize(in, buses, branches, gens, v, opts.VoltageDependLoads)
	return &Result{
		Buses: buses, Branches: branches, Gens: gens,
		Success:    converged,
		Iterations: iter,
		Elapsed:    time.Since(start),
	}, nil
}

// applyStep returns the voltage vector after a scaled Newton update:
// angles at pvpq buses, magnitudes at pq buses.
func applyStep(v []complex128, dx *mat.VecDense, pvpq, pq []int, scale float64) []complex128 {
	out := append([]complex128(nil), v...)
	for k, i := range pvpq {
		va := cmplx.Phase(out[i]) - scale*dx.AtVec(k)
		out[i] = cmplx.Rect(cmplx.Abs(out[i]), va)
	}
	off := len(pvpq)
	for k, i := range pq {
		vm := cmplx.Abs(out[i]) - scale*dx.AtVec(off+k)
		out[i] = cmplx.Rect(vm, cmplx.Phase(out[i]))
	}
	return out
}

// jacobian assembles the polar power-flow Jacobian
//
//	[ dP/dθ (pvpq×pvpq)  dP/dVm (pvpq×pq) ]
//	[ dQ/dθ (pq×pvpq)    dQ/dVm (pq×pq)   ]
//
// using the textbook element formulas on the dense Ybus.
func jacobian(in *pfcase.Internal, v []complex128, pvpq []int) *mat.Dense {
	n := len(v)
	vm := make([]float64, n)
	va := make([]float64, n)
	for i, x := range v {
		vm[i] = cmplx.Abs(x)
		va[i] = cmplx.Phase(x)
	}

	// Calculated injections, needed by the diagonal terms.
	p := make([]float64, n)
	q := make([]float64, n)
	for i, s := range injections(in, v) {
		p[i] = real(s)
		q[i] = imag(s)
	}

	a := len(pvpq)
	b := len(in.PQ)
	jac := mat.NewDense(a+b, a+b, nil)

	g := func(i, j int) float64 { return real(in.Ybus.At(i, j)) }
	bs := func(i, j int) float64 { return imag(in.Ybus.At(i, j)) }

	for r, i := range pvpq {
		// dP/dθ block.
		for c, j := range pvpq {
			if i == j {
				jac.Set(r, c, -q[i]-bs(i, i)*vm[i]*vm[i])
				continue
			}
			th := va[i] - va[j]
			jac.Set(r, c, vm[i]*vm[j]*(g(i, j)*math.Sin(th)-bs(i, j)*math.Cos(th)))
		}
		// dP/dVm block.
		for c, j := range in.PQ {
			if i == j {
				jac.Set(r, a+c, p[i]/vm[i]+g(i, i)*vm[i])
				continue
			}
			th := va[i] - va[j]
			jac.Set(r, a+c, vm[i]*(g(i, j)*math.Cos(th)+bs(i, j)*math.Sin(th)))
		}
	}
	for r, i := range in.PQ {
		// dQ/dθ block.
		for c, j := range pvpq {
			if i == j {
				jac.Set(a+r, c, p[i]-g(i, i)*vm[i]*vm[i])
				continue
			}
			th := va[i] - va[j]
			jac.Set(a+r, c, -vm[i]*vm[j]*(g(i, j)*math.Cos(th)+bs(i, j)*math.Sin(th)))
		}
		// dQ/dVm block.
		for c, j := range in.PQ {
			if i == j {
				jac.Set(a+r, a+c, q[i]/vm[i]-bs(i, i)*vm[i])
				continue
			}
			th := va[i] - va[j]
			jac.Set(a+r, a+c, vm[i]*(g(i, j)*math.Sin(th)-bs(i, j)*math.Cos(th)))
		}
	}
	return jac
}
