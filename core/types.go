package core

import "github.com/katalvlaran/gridflow/pfcase"

// Bus is a single electrical node.
//
// VnKV is the rated (nominal) line-to-line voltage in kV; every impedance
// attached to the bus is converted to per-unit on this base.
type Bus struct {
	// Name is a free-form label, unused by the solvers.
	Name string

	// VnKV is the rated voltage in kV. Must be positive.
	VnKV float64

	// InService marks the bus as energized. Out-of-service buses and every
	// element attached to them are excluded from the reduced internal case.
	InService bool
}

// Line is a series branch between two buses with lumped parameters.
type Line struct {
	// FromBus and ToBus index into Network.Buses.
	FromBus, ToBus int

	// ROhm and XOhm are the total series resistance / reactance in ohm.
	ROhm, XOhm float64

	// BMicroS is the total line charging susceptance in µS.
	BMicroS float64

	// MaxIKA is the thermal current limit in kA; zero disables loading
	// computation for this line.
	MaxIKA float64

	// InService marks the line as connected.
	InService bool
}

// Trafo is a two-winding transformer modeled as a branch with an
// off-nominal tap ratio and optional phase shift.
type Trafo struct {
	// HVBus and LVBus index into Network.Buses.
	HVBus, LVBus int

	// SnMVA is the transformer rating in MVA.
	SnMVA float64

	// VnHVKV / VnLVKV are the rated winding voltages in kV.
	VnHVKV, VnLVKV float64

	// VkPercent is the short-circuit voltage in %, VkrPercent its real part.
	VkPercent, VkrPercent float64

	// Tap changer: position, neutral position, and % voltage per step.
	TapPos, TapNeutral int
	TapStepPercent     float64

	// ShiftDeg is the phase shift in degrees (HV side leading).
	ShiftDeg float64

	// InService marks the transformer as connected.
	InService bool
}

// Gen is a voltage-controlled (PV) machine.
type Gen struct {
	// Bus indexes into Network.Buses.
	Bus int

	// PMW is the active power setpoint in MW (generation positive).
	PMW float64

	// VMPU is the controlled voltage magnitude in per-unit.
	VMPU float64

	// QMaxMVAr / QMinMVAr are reactive limits (informational; the solvers
	// do not enforce them).
	QMaxMVAr, QMinMVAr float64

	// InService marks the machine as connected.
	InService bool

	// aux marks machines injected by the orchestrator for the duration of a
	// single solve (e.g. the slack machine realizing an external grid).
	// Aux machines are removed by cleanup on every exit path.
	aux bool
}

// Load is a PQ consumption with optional ZIP voltage dependence.
type Load struct {
	// Bus indexes into Network.Buses.
	Bus int

	// PMW / QMVAr are the consumed powers at nominal voltage.
	PMW, QMVAr float64

	// ConstZPercent / ConstIPercent give the constant-impedance and
	// constant-current shares of the ZIP model in % (the remainder is
	// constant power). Used only when voltage-dependent loads are enabled.
	ConstZPercent, ConstIPercent float64

	// InService marks the load as connected.
	InService bool
}

// ExtGrid is an external network connection; its bus becomes the
// reference (slack) bus of the solve.
type ExtGrid struct {
	// Bus indexes into Network.Buses.
	Bus int

	// VMPU / VADegree fix the slack voltage magnitude and angle.
	VMPU, VADegree float64

	// InService marks the connection as active.
	InService bool
}

// BusResult holds per-bus solve results.
type BusResult struct {
	VMPU     float64 // voltage magnitude [pu]
	VADegree float64 // voltage angle [deg]
	PMW      float64 // net injection [MW], generation positive
	QMVAr    float64 // net injection [MVAr]
}

// BranchResult holds per-line / per-trafo solve results.
type BranchResult struct {
	PFromMW, QFromMVAr float64 // flow into the branch at the from/HV end
	PToMW, QToMVAr     float64 // flow into the branch at the to/LV end
	LoadingPercent     float64 // 0 when no thermal limit is configured
}

// GenResult holds per-machine solve results.
type GenResult struct {
	PMW   float64
	QMVAr float64
	VMPU  float64
}

// Network is the user-facing model of one electrical network.
//
// All tables are index-addressed: element i of a result table corresponds
// to element i of its element table. The zero value is NOT usable; always
// construct through NewNetwork.
type Network struct {
	// Name is a free-form label.
	Name string

	// SnMVA is the system apparent-power base in MVA.
	SnMVA float64

	// Element tables.
	Buses    []Bus
	Lines    []Line
	Trafos   []Trafo
	Gens     []Gen
	Loads    []Load
	ExtGrids []ExtGrid

	// Result tables, populated after a successful solve.
	ResBus     []BusResult
	ResLine    []BranchResult
	ResTrafo   []BranchResult
	ResGen     []GenResult
	ResExtGrid []GenResult

	// Converged reports whether the most recent solve attempt succeeded.
	// It is recomputed on every attempt, never left stale.
	Converged bool

	// PPC is the recycle cache: the full internal case (with populated
	// scratch state) from the most recent successful build. Owned
	// exclusively by this Network; replaced wholesale on full rebuilds.
	PPC *pfcase.FullCase
}

// NetworkOption configures a Network before creation.
type NetworkOption func(n *Network)

// WithName sets a human-readable network label.
func WithName(name string) NetworkOption {
	return func(n *Network) { n.Name = name }
}

// WithSnMVA overrides the system power base (default 100 MVA).
func WithSnMVA(snMVA float64) NetworkOption {
	return func(n *Network) { n.SnMVA = snMVA }
}

// DefaultSnMVA is the system power base used when none is configured.
const DefaultSnMVA = 100.0

// NewNetwork constructs an empty Network and applies options in order.
func NewNetwork(opts ...NetworkOption) *Network {
	n := &Network{SnMVA: DefaultSnMVA}
	for _, opt := range opts {
		opt(n)
	}
	return n
}
