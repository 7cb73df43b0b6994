package solver

import (
	"math/cmplx"
	"time"

	"github.com/katalvlaran/gridflow/pfcase"
)

// BackwardForwardSweep solves radial networks with the classic ladder
// iteration: a backward pass accumulates branch currents from the leaves,
// a forward pass propagates voltages from the reference bus.
//
// The case must be a tree rooted at the reference bus: exactly n−1
// branches, every bus reachable. Meshed or disconnected topologies return
// ErrNonRadial (a structural error, not non-convergence).
//
// Steps:
//  1. Prepare scratch state (Ybus is still built — the residual check and
//     finalize share it with the other backends).
//  2. Orient the tree by BFS from the reference bus (O(n)); reject
//     non-radial input.
//  3. Iterate: nodal demand currents (ZIP-aware when enabled) → backward
//     current accumulation in reverse BFS order → forward voltage update;
//     converge on the common residual criterion.
//
// Complexity: O(k·n) per sweep pair plus O(n²) for the residual check.
func BackwardForwardSweep(rc *pfcase.ReducedCase, opts Options) (*Result, error) {
	opts.normalize()
	start := time.Now()

	// 1) Scratch state.
	in, err := prep(rc)
	if err != nil {
		return nil, err
	}
	buses, branches, gens := cloneCase(rc)
	n := len(buses)
	if len(branches) != n-1 {
		return nil, ErrNonRadial
	}
	root := in.Ref[0]

	// 2) Orient the tree from the root.
	type halfEdge struct{ branch, other int }
	adj := make([][]halfEdge, n)
	for bi, br := range branches {
		adj[br.From] = append(adj[br.From], halfEdge{bi, br.To})
		adj[br.To] = append(adj[br.To], halfEdge{bi, br.From})
	}
	parentBranch := make([]int, n) // branch connecting a bus to its parent
	order := make([]int, 0, n)     // BFS order, root first
	seen := make([]bool, n)
	parentBranch[root] = -1
	seen[root] = true
	order = append(order, root)
	for qi := 0; qi < len(order); qi++ {
		u := order[qi]
		for _, he := range adj[u] {
			if seen[he.other] {
				continue
			}
			seen[he.other] = true
			parentBranch[he.other] = he.branch
			order = append(order, he.other)
		}
	}
	if len(order) != n {
		return nil, ErrNonRadial
	}

	// Per-bus shunt admittance in pu: bus shunt plus the π-model charging
	// halves of incident branches (from side behind the tap).
	ysh := make([]complex128, n)
	for i, b := range buses {
		ysh[i] = complex(b.Gs, b.Bs) / complex(in.BaseMVA, 0)
	}
	for _, br := range branches {
		tap := br.Tap
		if tap == 0 {
			tap = 1
		}
		ysh[br.From] += complex(0, br.B/2) / complex(tap*tap, 0)
		ysh[br.To] += complex(0, br.B/2)
	}

	// 3) Sweep iteration.
	v := startVoltages(buses, gens)
	_, norm := mismatch(in, buses, gens, v, opts.VoltageDependLoads)
	converged := norm < opts.Tolerance
	iter := 0
	for !converged && iter < opts.MaxIteration {
		sched := makeSbus(buses, gens, v, in.BaseMVA, opts.VoltageDependLoads)

		// Nodal demand currents: load/generation plus shunt draw.
		demand := make([]complex128, n)
		for i := 0; i < n; i++ {
			demand[i] = -cmplx.Conj(sched[i]/v[i]) + ysh[i]*v[i]
		}

		// Backward pass: series current of each parent branch, leaves first.
		series := make([]complex128, len(branches))
		for k := len(order) - 1; k >= 1; k-- {
			bus := order[k]
			bi := parentBranch[bus]
			br := branches[bi]
			tap := complex(1, 0)
			if br.Tap != 0 {
				tap = complex(br.Tap, 0)
			}
			if bus == br.To { // parent on the from (tap) side
				series[bi] = demand[bus]
				demand[br.From] += series[bi] / cmplx.Conj(tap)
			} else { // parent on the to side, bus behind the tap
				series[bi] = cmplx.Conj(tap) * demand[bus]
				demand[br.To] += series[bi]
			}
		}

		// Forward pass: voltages from the root down.
		for k := 1; k < len(order); k++ {
			bus := order[k]
			bi := parentBranch[bus]
			br := branches[bi]
			z := complex(br.R, br.X)
			tap := complex(1, 0)
			if br.Tap != 0 {
				tap = complex(br.Tap, 0)
			}
			if bus == br.To {
				v[bus] = v[br.From]/tap - z*series[bi]
			} else {
				v[bus] = tap * (v[br.To] - z*series[bi])
			}
		}

		iter++
		_, norm = mismatch(in, buses, gens, v, opts.VoltageDependLoads)
		converged = norm < opts.Tolerance
		opts.Logger.Debug("backward-forward sweep iteration", "iter", iter, "norm", norm)
	}

	finalize(in, buses, branches, gens, v, opts.VoltageDependLoads)
	return &Result{
		Buses: buses, Branches: branches, Gens: gens,
		Success:    converged,
		Iterations: iter,
		Elapsed:    time.Since(start),
	}, nil
}
