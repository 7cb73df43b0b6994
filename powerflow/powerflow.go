package powerflow

import (
	"github.com/katalvlaran/gridflow/builder"
	"github.com/katalvlaran/gridflow/core"
	"github.com/katalvlaran/gridflow/pfcase"
	"github.com/katalvlaran/gridflow/solver"
)

// Solve runs a full power-flow cycle against the network.
//
// Steps:
//  1. Normalize and validate options; unknown algorithms fail here,
//     leaving the network exactly as it was at call entry.
//  2. Reset Converged and inject auxiliary elements (slack machines for
//     in-service external grids).
//  3. Reset the result tables — or keep them as the initial guess for DC
//     solves and AC solves with InitResults (stale-shaped tables are
//     silently dropped instead).
//  4. Build the full and reduced internal cases and store the full case
//     as the new recycle cache, replacing the previous one wholesale.
//  5. Dispatch to a backend (see runAlgorithm) and commit the outcome.
//
// Cleanup runs on every exit path after step 2; see commit.
func Solve(net *core.Network, opts Options) error {
	// 1) Configuration gate.
	opts.normalize()
	if err := opts.validate(); err != nil {
		return err
	}

	// 2) Transient state.
	net.Converged = false
	addAuxiliaryElements(net)

	// 3) Result tables: reuse or reset.
	if !opts.AC || opts.InitResults {
		if net.VerifyResults() != nil {
			net.ResetResults()
		}
	} else {
		net.ResetResults()
	}

	// 4) Build.
	full, reduced, err := builder.Build(net, buildOptions(opts))
	if err != nil {
		cleanup(net, false)
		return err
	}
	net.PPC = full

	// 5) Dispatch and commit.
	res, err := runAlgorithm(reduced, opts)
	if err != nil {
		cleanup(net, false)
		return err
	}
	return commit(net, full, reduced, res, opts)
}

// runAlgorithm is the dispatcher: given the reduced case and options it
// selects the branch-less direct path, the DC backend, or a named AC
// backend, in that priority order. It is a pure router — the reduced case
// is handed to the backend untouched.
func runAlgorithm(rc *pfcase.ReducedCase, opts Options) (*solver.Result, error) {
	sopts := opts.solverOptions()

	// 1) Zero branches: nothing couples the buses, no iteration needed.
	if len(rc.Branches) == 0 {
		return solver.WithoutBranches(rc, sopts)
	}
	// 2) DC linear approximation.
	if !opts.AC {
		return solver.DC(rc, sopts)
	}
	// 3) Named AC backends.
	switch opts.Algorithm {
	case NewtonRaphson:
		return solver.NewtonRaphson(rc, sopts)
	case IwamotoNewtonRaphson:
		return solver.IwamotoNewtonRaphson(rc, sopts)
	case BackwardForwardSweep:
		return solver.BackwardForwardSweep(rc, sopts)
	case FastDecoupledBX:
		return solver.FastDecoupledBX(rc, sopts)
	case FastDecoupledXB:
		return solver.FastDecoupledXB(rc, sopts)
	case GaussSeidel:
		return solver.GaussSeidel(rc, sopts)
	}
	// 4) Unreachable when validate ran, kept as a hard backstop.
	return nil, ErrUnknownAlgorithm
}

// addAuxiliaryElements injects the transient machines a solve needs:
// one slack machine per in-service external grid. Removed again by
// cleanup on every exit path.
func addAuxiliaryElements(net *core.Network) {
	for _, eg := range net.ExtGrids {
		if eg.InService {
			net.InjectAuxGen(eg.Bus, 0, eg.VMPU)
		}
	}
}

// buildOptions maps orchestrator options onto the case builder's.
func buildOptions(opts Options) builder.BuildOptions {
	return builder.BuildOptions{
		InitResults:        opts.InitResults,
		VoltageDependLoads: opts.VoltageDependLoads,
	}
}
