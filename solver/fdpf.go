package solver

import (
	"math/cmplx"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/gridflow/pfcase"
	"github.com/katalvlaran/gridflow/ybus"
)

// fdVariant distinguishes the two classic decoupling recipes.
type fdVariant int

const (
	variantBX fdVariant = iota // resistance neglected in B''
	variantXB                  // resistance neglected in B'
)

// FastDecoupledBX solves the AC power flow with the Stott–Alsac fast
// decoupled method, BX flavor: series resistance is neglected when forming
// the Q-magnitude matrix B”.
func FastDecoupledBX(rc *pfcase.ReducedCase, opts Options) (*Result, error) {
	return fdpf(rc, opts, variantBX)
}

// FastDecoupledXB is the XB flavor: series resistance is neglected when
// forming the P-angle matrix B'.
func FastDecoupledXB(rc *pfcase.ReducedCase, opts Options) (*Result, error) {
	return fdpf(rc, opts, variantXB)
}

// fdpf runs the shared decoupled iteration.
//
// Steps:
//  1. Prepare scratch state and the starting vector.
//  2. Form B' (charging, shunts and taps stripped) and B” (phase shifts
//     stripped), with resistance neglected per variant; factorize both
//     once with dense LU.
//  3. Alternate half-iterations: solve B'·Δθ = ΔP/Vm, update angles, then
//     B”·ΔVm = ΔQ/Vm, update magnitudes; converge on the common residual.
//
// Complexity: O(n³) once for the factorizations, O(k·n²) per iteration.
func fdpf(rc *pfcase.ReducedCase, opts Options, variant fdVariant) (*Result, error) {
	opts.normalize()
	start := time.Now()

	// 1) Scratch state and starting vector.
	in, err := prep(rc)
	if err != nil {
		return nil, err
	}
	buses, branches, gens := cloneCase(rc)
	v := startVoltages(buses, gens)
	pvpq := append(append([]int(nil), in.PV...), in.PQ...)

	// 2) Decoupling matrices.
	luP, luQ, err := decoupledMatrices(rc, in, pvpq, variant)
	if err != nil {
		return nil, err
	}

	// 3) Alternating half-iterations.
	_, norm := mismatch(in, buses, gens, v, false)
	converged := norm < opts.Tolerance
	iter := 0
	for !converged && iter < opts.MaxIteration {
		// P-angle half step.
		calc := injections(in, v)
		sched := makeSbus(buses, gens, v, in.BaseMVA, false)
		rhsP := mat.NewVecDense(len(pvpq), nil)
		for k, i := range pvpq {
			rhsP.SetVec(k, real(calc[i]-sched[i])/cmplx.Abs(v[i]))
		}
		dva := mat.NewVecDense(len(pvpq), nil)
		if err = luP.SolveVecTo(dva, false, rhsP); err != nil {
			return nil, ErrSingular
		}
		for k, i := range pvpq {
			v[i] = cmplx.Rect(cmplx.Abs(v[i]), cmplx.Phase(v[i])-dva.AtVec(k))
		}

		// Q-magnitude half step.
		if len(in.PQ) > 0 {
			calc = injections(in, v)
			sched = makeSbus(buses, gens, v, in.BaseMVA, false)
			rhsQ := mat.NewVecDense(len(in.PQ), nil)
			for k, i := range in.PQ {
				rhsQ.SetVec(k, imag(calc[i]-sched[i])/cmplx.Abs(v[i]))
			}
			dvm := mat.NewVecDense(len(in.PQ), nil)
			if err = luQ.SolveVecTo(dvm, false, rhsQ); err != nil {
				return nil, ErrSingular
			}
			for k, i := range in.PQ {
				v[i] = cmplx.Rect(cmplx.Abs(v[i])-dvm.AtVec(k), cmplx.Phase(v[i]))
			}
		}

		iter++
		_, norm = mismatch(in, buses, gens, v, false)
		converged = norm < opts.Tolerance
		opts.Logger.Debug("fast-decoupled iteration", "iter", iter, "norm", norm)
	}

	finalize(in, buses, branches, gens, v, false)
	return &Result{
		Buses: buses, Branches: branches, Gens: gens,
		Success:    converged,
		Iterations: iter,
		Elapsed:    time.Since(start),
	}, nil
}

// decoupledMatrices forms and factorizes B' (pvpq×pvpq) and B” (pq×pq).
func decoupledMatrices(rc *pfcase.ReducedCase, in *pfcase.Internal, pvpq []int, variant fdVariant) (luP, luQ *mat.LU, err error) {
	// B': strip charging, shunts and taps; XB additionally strips resistance.
	bpBuses := append([]pfcase.Bus(nil), rc.Buses...)
	for i := range bpBuses {
		bpBuses[i].Gs, bpBuses[i].Bs = 0, 0
	}
	bpBranches := append([]pfcase.Branch(nil), rc.Branches...)
	for i := range bpBranches {
		bpBranches[i].B = 0
		bpBranches[i].Tap = 1
		bpBranches[i].Shift = 0
		if variant == variantXB {
			bpBranches[i].R = 0
		}
	}
	ybp, _, _, err := ybus.Build(rc.BaseMVA, bpBuses, bpBranches)
	if err != nil {
		return nil, nil, err
	}

	// B'': strip phase shifts; BX additionally strips resistance.
	bppBranches := append([]pfcase.Branch(nil), rc.Branches...)
	for i := range bppBranches {
		bppBranches[i].Shift = 0
		if variant == variantBX {
			bppBranches[i].R = 0
		}
	}
	ybpp, _, _, err := ybus.Build(rc.BaseMVA, rc.Buses, bppBranches)
	if err != nil {
		return nil, nil, err
	}

	bp := mat.NewDense(len(pvpq), len(pvpq), nil)
	for r, i := range pvpq {
		for c, j := range pvpq {
			bp.Set(r, c, -imag(ybp.At(i, j)))
		}
	}
	luP = new(mat.LU)
	luP.Factorize(bp)

	if len(in.PQ) > 0 {
		bpp := mat.NewDense(len(in.PQ), len(in.PQ), nil)
		for r, i := range in.PQ {
			for c, j := range in.PQ {
				bpp.Set(r, c, -imag(ybpp.At(i, j)))
			}
		}
		luQ = new(mat.LU)
		luQ.Factorize(bpp)
	}
	return luP, luQ, nil
}
