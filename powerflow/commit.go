package powerflow

import (
	"math"

	"github.com/katalvlaran/gridflow/core"
	"github.com/katalvlaran/gridflow/pfcase"
	"github.com/katalvlaran/gridflow/solver"
)

// commit is the result writer / convergence guard. It runs on every solve
// outcome and guarantees that failure, partial results, and stale state
// never leak into the caller's view of the network.
//
// Steps, unconditionally:
//  1. Merge the reduced-case result arrays into the full case by
//     in-service position; out-of-service entries keep pre-solve values.
//  2. Failure: cleanup discarding partial results, Converged stays false,
//     return *NotConvergedError with the algorithm and the iteration cap.
//  3. Success: refresh the scratch state with the post-solve arrays, store
//     the full case as the recycle cache, set Converged, extract the
//     user-facing tables (unless ModeNone), then clean up.
func commit(net *core.Network, full *pfcase.FullCase, rc *pfcase.ReducedCase, res *solver.Result, opts Options) error {
	// 1) Merge by position.
	pfcase.Merge(full, rc, res.Buses, res.Branches, res.Gens)

	// 2) Convergence guard. DC and branch-less paths always succeed, so
	// this branch is AC-only in practice.
	if !res.Success {
		cleanup(net, false)
		return &NotConvergedError{Algorithm: opts.Algorithm, MaxIteration: opts.MaxIteration}
	}

	// 3) Success path.
	full.Internal = refreshInternal(rc, res)
	net.PPC = full
	net.Converged = true
	if opts.Mode != ModeNone {
		extractResults(net, full)
	}
	cleanup(net, true)
	return nil
}

// refreshInternal stores the post-solve reduced arrays on the scratch
// state so the next recycled solve starts from them.
func refreshInternal(rc *pfcase.ReducedCase, res *solver.Result) *pfcase.Internal {
	in := rc.Internal // backends always attach scratch state
	in.Buses, in.Branches, in.Gens = res.Buses, res.Branches, res.Gens
	in.BusOf, in.BranchOf, in.GenOf = rc.BusOf, rc.BranchOf, rc.GenOf
	return in
}

// cleanup removes the transient auxiliary elements injected before the
// solve and, when the outcome is invalid, any partially written result
// tables. Idempotent: a second invocation is a no-op.
func cleanup(net *core.Network, resultsValid bool) {
	net.RemoveAuxGens()
	if !resultsValid {
		net.ResetResults()
	}
}

// extractResults populates the user-facing result tables from the merged
// full case. Purely additive: it never fails the solve. Out-of-service
// elements report NaN so they cannot be mistaken for solved values.
func extractResults(net *core.Network, full *pfcase.FullCase) {
	nan := math.NaN()

	// Per-bus generation totals, for net injections.
	genP := make([]float64, len(full.Buses))
	genQ := make([]float64, len(full.Buses))
	for _, g := range full.Gens {
		if g.InService {
			genP[g.Bus] += g.P
			genQ[g.Bus] += g.Q
		}
	}

	net.ResBus = make([]core.BusResult, len(net.Buses))
	for i, b := range full.Buses {
		if !b.InService {
			net.ResBus[i] = core.BusResult{VMPU: nan, VADegree: nan, PMW: nan, QMVAr: nan}
			continue
		}
		net.ResBus[i] = core.BusResult{
			VMPU:     b.VM,
			VADegree: b.VA,
			PMW:      genP[i] - b.Pd,
			QMVAr:    genQ[i] - b.Qd,
		}
	}

	net.ResLine = make([]core.BranchResult, len(net.Lines))
	net.ResTrafo = make([]core.BranchResult, len(net.Trafos))
	for _, br := range full.Branches {
		res := core.BranchResult{
			PFromMW: br.PF, QFromMVAr: br.QF,
			PToMW: br.PT, QToMVAr: br.QT,
		}
		if !br.InService {
			res = core.BranchResult{PFromMW: nan, QFromMVAr: nan, PToMW: nan, QToMVAr: nan, LoadingPercent: nan}
		}
		switch {
		case br.LineIdx >= 0:
			if br.InService {
				res.LoadingPercent = lineLoading(net.Lines[br.LineIdx], net.Buses[br.From].VnKV, br)
			}
			net.ResLine[br.LineIdx] = res
		case br.TrafoIdx >= 0:
			if br.InService {
				res.LoadingPercent = trafoLoading(net.Trafos[br.TrafoIdx], br)
			}
			net.ResTrafo[br.TrafoIdx] = res
		}
	}

	// Machines: regular ones into ResGen, auxiliary slack machines into
	// ResExtGrid in external-grid order. Extraction runs before cleanup,
	// so the auxiliary machines are still present on the network.
	net.ResGen = make([]core.GenResult, 0, len(net.Gens))
	net.ResExtGrid = make([]core.GenResult, len(net.ExtGrids))
	extPos := 0
	for _, g := range full.Gens {
		r := core.GenResult{PMW: g.P, QMVAr: g.Q, VMPU: full.Buses[g.Bus].VM}
		if net.IsAuxGen(g.NetIdx) {
			for extPos < len(net.ExtGrids) && !net.ExtGrids[extPos].InService {
				extPos++
			}
			if extPos < len(net.ExtGrids) {
				net.ResExtGrid[extPos] = r
				extPos++
			}
			continue
		}
		net.ResGen = append(net.ResGen, r)
	}
}

// lineLoading relates the heavier branch end to the thermal limit.
func lineLoading(l core.Line, vnKV float64, br pfcase.Branch) float64 {
	if l.MaxIKA <= 0 {
		return 0
	}
	sMax := math.Max(math.Hypot(br.PF, br.QF), math.Hypot(br.PT, br.QT))
	sRated := math.Sqrt(3) * vnKV * l.MaxIKA
	return 100 * sMax / sRated
}

// trafoLoading relates the heavier branch end to the nameplate rating.
func trafoLoading(t core.Trafo, br pfcase.Branch) float64 {
	if t.SnMVA <= 0 {
		return 0
	}
	sMax := math.Max(math.Hypot(br.PF, br.QF), math.Hypot(br.PT, br.QT))
	return 100 * sMax / t.SnMVA
}
