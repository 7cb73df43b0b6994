package pfcase

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// BusType classifies a bus for the solve.
type BusType int

const (
	// PQ buses have fixed injections; magnitude and angle are solved.
	PQ BusType = iota + 1
	// PV buses have fixed active injection and voltage magnitude.
	PV
	// Ref is the reference (slack) bus: fixed magnitude and angle.
	Ref
	// Isolated buses take no part in the solve.
	Isolated
)

// Bus is one row of the internal bus array. Powers are in MW / MVAr on the
// system base, voltages in per-unit, angles in degrees.
type Bus struct {
	// Type classifies the bus (PQ, PV, Ref, Isolated).
	Type BusType

	// Pd / Qd are the nominal-voltage demands, including ZIP composition
	// evaluated at 1.0 pu.
	Pd, Qd float64

	// ZipZ / ZipI are the constant-impedance and constant-current shares of
	// the demand (fractions in [0,1]; remainder is constant power).
	ZipZ, ZipI float64

	// Gs / Bs are shunt conductance / susceptance in MW / MVAr at 1.0 pu.
	Gs, Bs float64

	// VM / VA are the solved (or starting) voltage magnitude and angle.
	VM, VA float64

	// BaseKV is the rated voltage of the bus.
	BaseKV float64

	// InService is false only inside a FullCase.
	InService bool
}

// Branch is one row of the internal branch array (line or transformer),
// with per-unit parameters on the system base.
type Branch struct {
	// From / To are bus positions: full-case positions in a FullCase,
	// compacted positions in a ReducedCase.
	From, To int

	// R, X, B are series resistance/reactance and total charging
	// susceptance in per-unit.
	R, X, B float64

	// Tap is the off-nominal tap ratio at the from end (1 = nominal).
	Tap float64

	// Shift is the phase shift in degrees at the from end.
	Shift float64

	// LineIdx / TrafoIdx point back into the network tables; exactly one
	// of them is >= 0.
	LineIdx, TrafoIdx int

	// InService is false only inside a FullCase.
	InService bool

	// Solve results: complex power flowing into the branch at each end,
	// in MW / MVAr.
	PF, QF, PT, QT float64
}

// Gen is one row of the internal generator array.
type Gen struct {
	// Bus is the connection bus position (full-case or compacted).
	Bus int

	// P / Q are the machine outputs in MW / MVAr. P is the setpoint going
	// in and the allocated output coming out; Q is solved.
	P, Q float64

	// VSet is the controlled voltage magnitude in per-unit.
	VSet float64

	// QMax / QMin are reactive limits (carried through, not enforced).
	QMax, QMin float64

	// NetIdx points back into Network.Gens; -1 for auxiliary machines.
	NetIdx int

	// IsSlack marks the machine(s) at the reference bus.
	IsSlack bool

	// InService is false only inside a FullCase.
	InService bool
}

// Internal is the solver scratch state carried across recycled solves:
// the admittance matrices and the reduced arrays they were built from.
// It is created during a solve, stored on the FullCase by a successful
// commit, and consumed read-only by the next recycled solve.
type Internal struct {
	BaseMVA float64

	// Reduced arrays as of the most recent solve.
	Buses    []Bus
	Branches []Branch
	Gens     []Gen

	// Ybus is the nodal admittance matrix; Yf / Yt map bus voltages to
	// branch-end currents.
	Ybus, Yf, Yt *mat.CDense

	// Bus-type partition of the reduced case.
	Ref, PV, PQ []int

	// Position maps from reduced to full arrays, kept so a minimal
	// recycled case can still merge results back.
	BusOf, BranchOf, GenOf []int
}

// FullCase is the internal case for the whole network, out-of-service
// elements included. It is the form persisted on the network model
// across solves (the recycle cache).
type FullCase struct {
	BaseMVA  float64
	Buses    []Bus
	Branches []Branch
	Gens     []Gen

	// Internal is populated by a successful solve; nil on a fresh build.
	Internal *Internal
}

// ReducedCase is the FullCase with out-of-service elements removed and
// bus indices compacted. This is the only form solver backends consume.
type ReducedCase struct {
	BaseMVA  float64
	Buses    []Bus
	Branches []Branch
	Gens     []Gen

	// BusOf[i] is the full-case position of reduced bus i; likewise for
	// BranchOf and GenOf.
	BusOf, BranchOf, GenOf []int

	// Internal carries solver scratch state across recycled solves.
	// Nil on a cold build; backends populate it.
	Internal *Internal
}

// SanitizeGens replaces NaN and ±Inf in every numeric generator field of
// the full case with zero. The generator rebuild during a gen recycle can
// leave undefined entries (e.g. a voltage setpoint for a machine on an
// out-of-service bus); the solvers require finite inputs.
func SanitizeGens(fc *FullCase) {
	for i := range fc.Gens {
		g := &fc.Gens[i]
		g.P = finiteOrZero(g.P)
		g.Q = finiteOrZero(g.Q)
		g.VSet = finiteOrZero(g.VSet)
		g.QMax = finiteOrZero(g.QMax)
		g.QMin = finiteOrZero(g.QMin)
	}
}

// finiteOrZero maps NaN and ±Inf to 0.
func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
