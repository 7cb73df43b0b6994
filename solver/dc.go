package solver

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/gridflow/pfcase"
)

// DC solves the linearized power flow in a single pass: flat voltage
// magnitudes, angles from the susceptance matrix, lossless active flows.
// By construction it always reports Success = true with Iterations = 1;
// an error return is reserved for structurally singular systems (an
// island without a reference bus).
//
// Steps:
//  1. Prepare scratch state (keeps the recycle contract uniform; the DC
//     path itself only needs the case arrays).
//  2. Form the nodal susceptance matrix B (1/x per branch, tap-scaled)
//     and move phase-shift terms to the right-hand side.
//  3. Fix reference angles, solve the non-reference subsystem with dense
//     LU, and recover branch flows P = b·(θ_f − θ_t − shift)·base.
//  4. Allocate machine active power; the slack machines absorb the
//     residual at the reference bus. Reactive results are zero.
//
// Complexity: O(n³) dense solve, O(n²) memory.
func DC(rc *pfcase.ReducedCase, opts Options) (*Result, error) {
	opts.normalize()
	start := time.Now()

	// 1) Scratch state.
	in, err := prep(rc)
	if err != nil {
		return nil, err
	}
	buses, branches, gens := cloneCase(rc)
	n := len(buses)

	// 2) Susceptance matrix and shift injections.
	bmat := make([][]float64, n)
	for i := range bmat {
		bmat[i] = make([]float64, n)
	}
	rhs := make([]float64, n)
	for _, br := range branches {
		tap := br.Tap
		if tap == 0 {
			tap = 1
		}
		b := 1 / (br.X * tap)
		f, t := br.From, br.To
		bmat[f][f] += b
		bmat[t][t] += b
		bmat[f][t] -= b
		bmat[t][f] -= b
		shift := br.Shift * math.Pi / 180
		rhs[f] += b * shift
		rhs[t] -= b * shift
	}

	// Scheduled injections at flat voltage; shunt conductance consumes.
	v := startVoltages(buses, gens)
	sched := makeSbus(buses, gens, v, in.BaseMVA, false)
	for i, b := range buses {
		rhs[i] += real(sched[i]) - b.Gs/in.BaseMVA
	}

	// 3) Reference angles fixed, non-reference subsystem solved.
	isRef := make([]bool, n)
	theta := make([]float64, n)
	for _, r := range in.Ref {
		isRef[r] = true
		theta[r] = buses[r].VA * math.Pi / 180
	}
	var free []int
	for i := 0; i < n; i++ {
		if !isRef[i] {
			free = append(free, i)
		}
	}
	if len(free) > 0 {
		sys := mat.NewDense(len(free), len(free), nil)
		vec := mat.NewVecDense(len(free), nil)
		for r, i := range free {
			acc := rhs[i]
			for _, ref := range in.Ref {
				acc -= bmat[i][ref] * theta[ref]
			}
			vec.SetVec(r, acc)
			for c, j := range free {
				sys.Set(r, c, bmat[i][j])
			}
		}
		sol := mat.NewVecDense(len(free), nil)
		var lu mat.LU
		lu.Factorize(sys)
		if err = lu.SolveVecTo(sol, false, vec); err != nil {
			return nil, ErrSingular
		}
		for r, i := range free {
			theta[i] = sol.AtVec(r)
		}
	}

	// 4) Results: angles, flat magnitudes, lossless flows, allocation.
	for i := range buses {
		buses[i].VA = theta[i] * 180 / math.Pi
		buses[i].VM = 1 // flat by construction, even on warm-started cases
	}
	flow := make([]float64, len(branches))
	for bi := range branches {
		br := &branches[bi]
		tap := br.Tap
		if tap == 0 {
			tap = 1
		}
		b := 1 / (br.X * tap)
		shift := br.Shift * math.Pi / 180
		flow[bi] = b * (theta[br.From] - theta[br.To] - shift) * in.BaseMVA
		br.PF, br.QF = flow[bi], 0
		br.PT, br.QT = -flow[bi], 0
	}
	allocateGensDC(in, buses, branches, gens)

	return &Result{
		Buses: buses, Branches: branches, Gens: gens,
		Success:    true,
		Iterations: 1,
		Elapsed:    time.Since(start),
	}, nil
}

// allocateGensDC assigns active outputs: non-slack machines keep their
// setpoints, slack machines absorb the nodal residual at their bus.
// Reactive outputs are zero in the DC approximation.
func allocateGensDC(in *pfcase.Internal, buses []pfcase.Bus, branches []pfcase.Branch, gens []pfcase.Gen) {
	// Net flow leaving each bus.
	out := make([]float64, len(buses))
	for _, br := range branches {
		out[br.From] += br.PF
		out[br.To] += br.PT
	}

	byBus := make(map[int][]int, len(gens))
	for gi := range gens {
		gens[gi].Q = 0
		byBus[gens[gi].Bus] = append(byBus[gens[gi].Bus], gi)
	}
	for b, gis := range byBus {
		vm := buses[b].VM
		totP := out[b] + buses[b].Pd + buses[b].Gs*vm*vm
		fixed := 0.0
		slackCount := 0
		for _, gi := range gis {
			if gens[gi].IsSlack {
				slackCount++
			} else {
				fixed += gens[gi].P
			}
		}
		if slackCount == 0 {
			continue
		}
		share := (totP - fixed) / float64(slackCount)
		for _, gi := range gis {
			if gens[gi].IsSlack {
				gens[gi].P = share
			}
		}
	}
}
