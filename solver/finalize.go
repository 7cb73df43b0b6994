package solver

import (
	"math"
	"math/cmplx"

	"github.com/katalvlaran/gridflow/pfcase"
)

// finalize writes the solved voltage vector into the case arrays and
// derives the dependent quantities every backend reports the same way:
// branch end flows and machine power allocation.
//
// Steps:
//  1. Bus voltages: VM = |V|, VA = arg(V) in degrees (O(n)).
//  2. Branch flows from the Yf/Yt views: Sf = V_f·conj(If)·base (O(m)).
//  3. Machine allocation per bus: reactive power is split equally among
//     the machines at the bus; active power of slack machines absorbs the
//     residual beyond the non-slack setpoints (O(G)).
func finalize(in *pfcase.Internal, buses []pfcase.Bus, branches []pfcase.Branch, gens []pfcase.Gen, v []complex128, voltageDep bool) {
	base := in.BaseMVA

	// 1) Bus voltages.
	for i := range buses {
		buses[i].VM = cmplx.Abs(v[i])
		buses[i].VA = cmplx.Phase(v[i]) * 180 / math.Pi
	}

	// 2) Branch end flows.
	for i := range branches {
		br := &branches[i]
		f, t := br.From, br.To
		fIn := in.Yf.At(i, f)*v[f] + in.Yf.At(i, t)*v[t]
		tIn := in.Yt.At(i, f)*v[f] + in.Yt.At(i, t)*v[t]
		sf := v[f] * cmplx.Conj(fIn) * complex(base, 0)
		st := v[t] * cmplx.Conj(tIn) * complex(base, 0)
		br.PF, br.QF = real(sf), imag(sf)
		br.PT, br.QT = real(st), imag(st)
	}

	// 3) Machine allocation.
	allocateGens(in, buses, gens, v, voltageDep)
}

// allocateGens distributes the net bus injections onto the machines.
// The bus shunt stays on the consumption side so machine outputs reflect
// what the network actually draws from them.
func allocateGens(in *pfcase.Internal, buses []pfcase.Bus, gens []pfcase.Gen, v []complex128, voltageDep bool) {
	byBus := make(map[int][]int, len(gens))
	for gi := range gens {
		byBus[gens[gi].Bus] = append(byBus[gens[gi].Bus], gi)
	}
	inj := injections(in, v)
	base := in.BaseMVA

	for b, gis := range byBus {
		vm := cmplx.Abs(v[b])
		pl, ql := busLoad(buses[b], vm, voltageDep)
		pl += buses[b].Gs * vm * vm // shunt consumption
		ql -= buses[b].Bs * vm * vm
		totP := real(inj[b])*base + pl
		totQ := imag(inj[b])*base + ql

		qShare := totQ / float64(len(gis))
		fixedP := 0.0
		slackCount := 0
		for _, gi := range gis {
			gens[gi].Q = qShare
			if gens[gi].IsSlack {
				slackCount++
			} else {
				fixedP += gens[gi].P
			}
		}
		if slackCount > 0 {
			pShare := (totP - fixedP) / float64(slackCount)
			for _, gi := range gis {
				if gens[gi].IsSlack {
					gens[gi].P = pShare
				}
			}
		}
	}
}
