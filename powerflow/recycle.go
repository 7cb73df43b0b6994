package powerflow

import (
	"fmt"

	"github.com/katalvlaran/gridflow/builder"
	"github.com/katalvlaran/gridflow/core"
	"github.com/katalvlaran/gridflow/pfcase"
	"github.com/katalvlaran/gridflow/solver"
)

// SolveRecycled re-solves the network reusing the internal numeric
// structures cached by the previous successful solve. Only the parameter
// categories flagged in opts.Recycle are re-derived; the admittance
// matrix survives except for entries the trafo category touches. This is
// the whole performance argument for recycling: no full admittance
// reconstruction, no topology reclassification.
//
// Preconditions: a prior full build must exist on the network (PPC with
// populated scratch state) — its absence is a caller contract violation
// surfaced as ErrInvalidRecycleState. AC recycling is defined for the
// Newton–Raphson family only; the DC path does not inspect the algorithm
// tag at all.
//
// Steps:
//  1. Check the cached build; fail fast without touching the network.
//  2. Reset Converged, re-inject auxiliary elements.
//  3. AC == false: solve DC directly on a minimal case referencing the
//     cached arrays, commit, done.
//  4. Validate the algorithm family.
//  5. Reapply flagged categories onto the full case: BusPQ injections
//     (merge), Trafo branch parameters + admittance rows (skipped
//     silently when no transformers exist), Gen array wholesale +
//     NaN sanitation.
//  6. Re-reduce the full case — carrying the scratch state over — and run
//     the Newton backend, then commit.
func SolveRecycled(net *core.Network, opts Options) error {
	opts.normalize()

	// 1) Cached build gate: fail before any mutation.
	full := net.PPC
	if full == nil || full.Internal == nil || full.Internal.Ybus == nil {
		return fmt.Errorf("%w: no cached build on this network", ErrInvalidRecycleState)
	}
	in := full.Internal

	// 2) Transient state.
	net.Converged = false
	addAuxiliaryElements(net)

	// Minimal reduced case referencing — not copying — the cached arrays.
	rc := &pfcase.ReducedCase{
		BaseMVA:  in.BaseMVA,
		Buses:    in.Buses,
		Branches: in.Branches,
		Gens:     in.Gens,
		BusOf:    in.BusOf,
		BranchOf: in.BranchOf,
		GenOf:    in.GenOf,
		Internal: in,
	}

	// 3) DC recycle: straight to the backend, algorithm tag ignored.
	if !opts.AC {
		res, err := solver.DC(rc, opts.solverOptions())
		if err != nil {
			cleanup(net, false)
			return err
		}
		return commit(net, full, rc, res, opts)
	}

	// 4) AC recycling is Newton-family only.
	if !opts.Algorithm.newtonFamily() {
		cleanup(net, false)
		return fmt.Errorf(
			"%w: recycling is only available with the newton-raphson family, got %s",
			ErrInvalidRecycleState, opts.Algorithm)
	}

	// 5) Reapply flagged parameter categories.
	if opts.Recycle.BusPQ {
		builder.UpdateInjections(net, full, buildOptions(opts))
	}
	if opts.Recycle.Trafo && len(net.Trafos) > 0 { // absent category: no-op
		if err := builder.UpdateTrafoBranches(net, full); err != nil {
			cleanup(net, false)
			return err
		}
	}
	if opts.Recycle.Gen {
		builder.RebuildGens(net, full)
		pfcase.SanitizeGens(full)
	}

	// 6) Re-reduce (scratch state carried over) and solve.
	reduced, err := pfcase.Reduce(full)
	if err != nil {
		cleanup(net, false)
		return err
	}
	var res *solver.Result
	if opts.Algorithm == IwamotoNewtonRaphson {
		res, err = solver.IwamotoNewtonRaphson(reduced, opts.solverOptions())
	} else {
		res, err = solver.NewtonRaphson(reduced, opts.solverOptions())
	}
	if err != nil {
		cleanup(net, false)
		return err
	}
	return commit(net, full, reduced, res, opts)
}
