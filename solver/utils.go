package solver

import (
	"math"
	"math/cmplx"

	"github.com/katalvlaran/gridflow/pfcase"
	"github.com/katalvlaran/gridflow/ybus"
)

// prep guarantees usable solver scratch state on the reduced case.
//
// Steps:
//  1. Reuse rc.Internal's admittance matrices when their dimensions match
//     the current arrays (the recycle fast path).
//  2. Otherwise build Ybus/Yf/Yt from the case arrays and attach them.
//  3. Recompute the bus-type partition and position maps unconditionally —
//     they are O(n) and must reflect the current arrays.
func prep(rc *pfcase.ReducedCase) (*pfcase.Internal, error) {
	n := len(rc.Buses)
	m := len(rc.Branches)

	in := rc.Internal
	if in == nil {
		in = &pfcase.Internal{}
		rc.Internal = in
	}
	if in.Ybus != nil {
		r, c := in.Ybus.Dims()
		stale := r != n || c != n
		if !stale && m > 0 {
			if in.Yf == nil {
				stale = true
			} else if fr, _ := in.Yf.Dims(); fr != m {
				stale = true
			}
		}
		if stale {
			in.Ybus, in.Yf, in.Yt = nil, nil, nil
		}
	}
	if in.Ybus == nil {
		yb, yf, yt, err := ybus.Build(rc.BaseMVA, rc.Buses, rc.Branches)
		if err != nil {
			return nil, err
		}
		in.Ybus, in.Yf, in.Yt = yb, yf, yt
	}

	in.BaseMVA = rc.BaseMVA
	in.Ref, in.PV, in.PQ = partition(rc.Buses)
	in.BusOf, in.BranchOf, in.GenOf = rc.BusOf, rc.BranchOf, rc.GenOf
	return in, nil
}

// partition splits bus positions by type.
func partition(buses []pfcase.Bus) (ref, pv, pq []int) {
	for i, b := range buses {
		switch b.Type {
		case pfcase.Ref:
			ref = append(ref, i)
		case pfcase.PV:
			pv = append(pv, i)
		case pfcase.PQ:
			pq = append(pq, i)
		}
	}
	return ref, pv, pq
}

// cloneCase copies the reduced arrays so a backend never mutates its input.
func cloneCase(rc *pfcase.ReducedCase) (buses []pfcase.Bus, branches []pfcase.Branch, gens []pfcase.Gen) {
	buses = append([]pfcase.Bus(nil), rc.Buses...)
	branches = append([]pfcase.Branch(nil), rc.Branches...)
	gens = append([]pfcase.Gen(nil), rc.Gens...)
	return buses, branches, gens
}

// startVoltages assembles the complex starting vector from bus VM/VA,
// with machine voltage setpoints overriding the magnitude at their buses.
func startVoltages(buses []pfcase.Bus, gens []pfcase.Gen) []complex128 {
	v := make([]complex128, len(buses))
	for i, b := range buses {
		vm := b.VM
		if vm == 0 {
			vm = 1 // flat start for unset magnitudes
		}
		v[i] = cmplx.Rect(vm, b.VA*math.Pi/180)
	}
	for _, g := range gens {
		if g.VSet > 0 {
			cur := v[g.Bus]
			v[g.Bus] = cur / complex(cmplx.Abs(cur), 0) * complex(g.VSet, 0)
		}
	}
	return v
}

// busLoad evaluates the demand at one bus for the given voltage magnitude.
// With voltage dependence disabled the ZIP shares are ignored and the
// nominal demand is returned.
func busLoad(b pfcase.Bus, vm float64, voltageDep bool) (p, q float64) {
	if !voltageDep {
		return b.Pd, b.Qd
	}
	cp := 1 - b.ZipZ - b.ZipI
	f := cp + b.ZipI*vm + b.ZipZ*vm*vm
	return b.Pd * f, b.Qd * f
}

// makeSbus builds the per-unit scheduled complex injection vector:
// machine outputs minus demands. Shunts are not included here — they live
// in the admittance matrix.
func makeSbus(buses []pfcase.Bus, gens []pfcase.Gen, v []complex128, baseMVA float64, voltageDep bool) []complex128 {
	s := make([]complex128, len(buses))
	for i, b := range buses {
		p, q := busLoad(b, cmplx.Abs(v[i]), voltageDep)
		s[i] = -complex(p, q) / complex(baseMVA, 0)
	}
	for _, g := range gens {
		s[g.Bus] += complex(g.P, g.Q) / complex(baseMVA, 0)
	}
	return s
}

// injections computes the per-unit complex power injected at every bus:
// S_i = V_i · conj((Ybus·V)_i).
func injections(in *pfcase.Internal, v []complex128) []complex128 {
	n := len(v)
	s := make([]complex128, n)
	for i := 0; i < n; i++ {
		var acc complex128
		for j := 0; j < n; j++ {
			acc += in.Ybus.At(i, j) * v[j]
		}
		s[i] = v[i] * cmplx.Conj(acc)
	}
	return s
}

// mismatch returns the scheduled-vs-calculated residual vector
// [ΔP at pvpq ; ΔQ at pq] and its infinity norm.
func mismatch(in *pfcase.Internal, buses []pfcase.Bus, gens []pfcase.Gen, v []complex128, voltageDep bool) (f []float64, norm float64) {
	calc := injections(in, v)
	sched := makeSbus(buses, gens, v, in.BaseMVA, voltageDep)

	f = make([]float64, 0, len(in.PV)+2*len(in.PQ))
	for _, i := range in.PV {
		f = append(f, real(calc[i]-sched[i]))
	}
	for _, i := range in.PQ {
		f = append(f, real(calc[i]-sched[i]))
	}
	for _, i := range in.PQ {
		f = append(f, imag(calc[i]-sched[i]))
	}
	for _, x := range f {
		if a := math.Abs(x); a > norm {
			norm = a
		}
	}
	return f, norm
}
