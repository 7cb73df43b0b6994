// SPDX-License-Identifier: MIT
// Package: gridflow/builder
//
// build.go — network → internal case conversion and the per-category
// incremental updates used by the recycle path.

package builder

import (
	"math"

	"github.com/katalvlaran/gridflow/core"
	"github.com/katalvlaran/gridflow/pfcase"
	"github.com/katalvlaran/gridflow/ybus"
)

// BuildOptions tunes the conversion.
//   - InitResults: seed bus voltages from the network's existing result
//     tables instead of a flat start (AC warm start).
//   - VoltageDependLoads: carry per-bus ZIP shares into the case so
//     ZIP-capable backends can evaluate demand at the running voltage.
type BuildOptions struct {
	InitResults        bool
	VoltageDependLoads bool
}

// Build converts the network into the FullCase / ReducedCase pair.
//
// Steps:
//  1. Bus array: classify Ref (external grids) / PV (machines) / PQ,
//     set starting voltages (flat, setpoint, or prior results) (O(B)).
//  2. Demand injections with ZIP aggregation (O(Loads)).
//  3. Branch array: lines first, then trafos, per-unit parameters (O(L+T)).
//  4. Generator array with slack marking (O(G)).
//  5. Reduce to the in-service view (pfcase.Reduce).
//
// Returns ErrNilNetwork, or a reduction error when no energized reference
// bus exists.
func Build(net *core.Network, opts BuildOptions) (*pfcase.FullCase, *pfcase.ReducedCase, error) {
	if net == nil {
		return nil, nil, ErrNilNetwork
	}
	fc := &pfcase.FullCase{BaseMVA: net.SnMVA}

	// 1) Buses.
	fc.Buses = make([]pfcase.Bus, len(net.Buses))
	for i, b := range net.Buses {
		fc.Buses[i] = pfcase.Bus{
			Type:      pfcase.PQ,
			VM:        1,
			VA:        0,
			BaseKV:    b.VnKV,
			InService: b.InService,
		}
	}
	for _, g := range net.Gens {
		if g.InService {
			fc.Buses[g.Bus].Type = pfcase.PV
		}
	}
	for _, eg := range net.ExtGrids {
		if !eg.InService {
			continue
		}
		fc.Buses[eg.Bus].Type = pfcase.Ref
		fc.Buses[eg.Bus].VM = eg.VMPU
		fc.Buses[eg.Bus].VA = eg.VADegree
	}
	if opts.InitResults && net.HasResults() {
		for i := range fc.Buses {
			if fc.Buses[i].Type == pfcase.Ref {
				continue // slack setpoints win over stale results
			}
			fc.Buses[i].VM = net.ResBus[i].VMPU
			fc.Buses[i].VA = net.ResBus[i].VADegree
		}
	}

	// 2) Demands.
	UpdateInjections(net, fc, opts)

	// 3) Branches: lines first, then trafos (ordering contract).
	fc.Branches = make([]pfcase.Branch, 0, len(net.Lines)+len(net.Trafos))
	for i, l := range net.Lines {
		fc.Branches = append(fc.Branches, lineBranch(net, i, l))
	}
	for i, t := range net.Trafos {
		fc.Branches = append(fc.Branches, trafoBranch(net, i, t))
	}

	// 4) Generators.
	RebuildGens(net, fc)

	// 5) Reduce.
	rc, err := pfcase.Reduce(fc)
	if err != nil {
		return nil, nil, err
	}
	return fc, rc, nil
}

// UpdateInjections recomputes per-bus demand (and ZIP shares when enabled)
// on an existing FullCase, leaving every other field untouched. This is
// the cheapest recycle category: it never touches the admittance matrix.
func UpdateInjections(net *core.Network, fc *pfcase.FullCase, opts BuildOptions) {
	for i := range fc.Buses {
		fc.Buses[i].Pd, fc.Buses[i].Qd = 0, 0
		fc.Buses[i].ZipZ, fc.Buses[i].ZipI = 0, 0
	}
	// P-weighted ZIP aggregation per bus.
	zSum := make([]float64, len(fc.Buses))
	iSum := make([]float64, len(fc.Buses))
	for _, l := range net.Loads {
		if !l.InService || !net.Buses[l.Bus].InService {
			continue
		}
		b := &fc.Buses[l.Bus]
		b.Pd += l.PMW
		b.Qd += l.QMVAr
		if opts.VoltageDependLoads {
			zSum[l.Bus] += l.PMW * l.ConstZPercent / 100
			iSum[l.Bus] += l.PMW * l.ConstIPercent / 100
		}
	}
	if opts.VoltageDependLoads {
		for i := range fc.Buses {
			if fc.Buses[i].Pd != 0 {
				fc.Buses[i].ZipZ = zSum[i] / fc.Buses[i].Pd
				fc.Buses[i].ZipI = iSum[i] / fc.Buses[i].Pd
			}
		}
	}
}

// RebuildGens replaces the FullCase generator array wholesale from the
// network tables. Slack marking follows the bus classification already
// present on the case.
func RebuildGens(net *core.Network, fc *pfcase.FullCase) {
	fc.Gens = make([]pfcase.Gen, len(net.Gens))
	for i, g := range net.Gens {
		fc.Gens[i] = pfcase.Gen{
			Bus:       g.Bus,
			P:         g.PMW,
			VSet:      g.VMPU,
			QMax:      g.QMaxMVAr,
			QMin:      g.QMinMVAr,
			NetIdx:    i,
			IsSlack:   fc.Buses[g.Bus].Type == pfcase.Ref,
			InService: g.InService && net.Buses[g.Bus].InService,
		}
	}
}

// UpdateTrafoBranches recomputes every transformer branch's per-unit
// parameters on an existing FullCase and, when solver scratch state is
// present, swaps the affected admittance entries in place so the rest of
// the matrix survives untouched.
func UpdateTrafoBranches(net *core.Network, fc *pfcase.FullCase) error {
	// Reverse map: full branch position -> reduced branch position.
	var toReduced map[int]int
	if fc.Internal != nil && fc.Internal.Ybus != nil {
		toReduced = make(map[int]int, len(fc.Internal.BranchOf))
		for r, full := range fc.Internal.BranchOf {
			toReduced[full] = r
		}
	}

	for ti, t := range net.Trafos {
		full := len(net.Lines) + ti // trafos follow lines in the branch array
		fresh := trafoBranch(net, ti, t)
		old := fc.Branches[full]
		fresh.PF, fresh.QF, fresh.PT, fresh.QT = old.PF, old.QF, old.PT, old.QT
		fc.Branches[full] = fresh

		if toReduced == nil {
			continue
		}
		r, ok := toReduced[full]
		if !ok {
			continue // trafo not in the reduced view (out of service)
		}
		in := fc.Internal
		oldRed := in.Branches[r]
		newRed := oldRed
		newRed.R, newRed.X, newRed.B = fresh.R, fresh.X, fresh.B
		newRed.Tap, newRed.Shift = fresh.Tap, fresh.Shift
		if err := ybus.UpdateBranch(in.Ybus, in.Yf, in.Yt, r, oldRed, newRed); err != nil {
			return err
		}
		in.Branches[r] = newRed
	}
	return nil
}

// lineBranch converts one line to per-unit on the from-bus voltage base.
func lineBranch(net *core.Network, idx int, l core.Line) pfcase.Branch {
	zBase := net.Buses[l.FromBus].VnKV * net.Buses[l.FromBus].VnKV / net.SnMVA
	return pfcase.Branch{
		From: l.FromBus, To: l.ToBus,
		R:        l.ROhm / zBase,
		X:        l.XOhm / zBase,
		B:        l.BMicroS * 1e-6 * zBase,
		Tap:      1,
		LineIdx:  idx,
		TrafoIdx: -1,
		InService: l.InService &&
			net.Buses[l.FromBus].InService && net.Buses[l.ToBus].InService,
	}
}

// trafoBranch converts one two-winding transformer: short-circuit voltage
// to per-unit impedance on the system base, tap changer and rated-voltage
// mismatch to the off-nominal ratio.
func trafoBranch(net *core.Network, idx int, t core.Trafo) pfcase.Branch {
	z := t.VkPercent / 100 * net.SnMVA / t.SnMVA
	r := t.VkrPercent / 100 * net.SnMVA / t.SnMVA
	x := z
	if z > r {
		x = math.Sqrt(z*z - r*r)
	}

	// Off-nominal ratio: rated winding voltages vs. connected bus bases,
	// scaled by the tap changer position.
	nominal := (t.VnHVKV / net.Buses[t.HVBus].VnKV) /
		(t.VnLVKV / net.Buses[t.LVBus].VnKV)
	tap := nominal * (1 + float64(t.TapPos-t.TapNeutral)*t.TapStepPercent/100)

	return pfcase.Branch{
		From: t.HVBus, To: t.LVBus,
		R: r, X: x, B: 0,
		Tap:      tap,
		Shift:    t.ShiftDeg,
		LineIdx:  -1,
		TrafoIdx: idx,
		InService: t.InService &&
			net.Buses[t.HVBus].InService && net.Buses[t.LVBus].InService,
	}
}
