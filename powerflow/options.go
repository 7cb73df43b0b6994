package powerflow

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/katalvlaran/gridflow/solver"
)

// Algorithm is the closed set of AC solving strategies. The zero value is
// invalid on purpose: an unset algorithm on an AC solve fails with
// ErrUnknownAlgorithm before any numeric work begins.
type Algorithm uint8

const (
	// NewtonRaphson is the default full-Jacobian AC solver.
	NewtonRaphson Algorithm = iota + 1
	// IwamotoNewtonRaphson adds Iwamoto-style step damping.
	IwamotoNewtonRaphson
	// BackwardForwardSweep is the ladder solver for radial networks.
	BackwardForwardSweep
	// FastDecoupledBX is the Stott–Alsac method, BX flavor.
	FastDecoupledBX
	// FastDecoupledXB is the Stott–Alsac method, XB flavor.
	FastDecoupledXB
	// GaussSeidel is the legacy relaxation solver.
	GaussSeidel
)

// algorithmNames maps tags to their canonical wire/CLI names.
var algorithmNames = map[Algorithm]string{
	NewtonRaphson:        "newton-raphson",
	IwamotoNewtonRaphson: "iwamoto-newton-raphson",
	BackwardForwardSweep: "backward-forward-sweep",
	FastDecoupledBX:      "fast-decoupled-bx",
	FastDecoupledXB:      "fast-decoupled-xb",
	GaussSeidel:          "gauss-seidel",
}

// String returns the canonical name, or "unknown" for invalid tags.
func (a Algorithm) String() string {
	if s, ok := algorithmNames[a]; ok {
		return s
	}
	return "unknown"
}

// known reports whether a is a member of the closed set.
func (a Algorithm) known() bool {
	_, ok := algorithmNames[a]
	return ok
}

// newtonFamily reports whether a supports recycling.
func (a Algorithm) newtonFamily() bool {
	return a == NewtonRaphson || a == IwamotoNewtonRaphson
}

// ParseAlgorithm resolves a canonical name to its tag. Unrecognized names
// fail with ErrUnknownAlgorithm immediately — this is the single place
// where a stringly-typed configuration enters the closed set.
func ParseAlgorithm(name string) (Algorithm, error) {
	for a, s := range algorithmNames {
		if s == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
}

// Mode selects how much of the network is populated after a successful
// solve.
type Mode uint8

const (
	// ModePF populates every user-facing result table (the default).
	ModePF Mode = iota
	// ModeNone skips result extraction; only the internal case and
	// Converged are updated. Useful for callers driving repeated solves
	// that only inspect the final state.
	ModeNone
)

// RecycleFlags marks the parameter categories that may have changed since
// the previous solve. A flagged category whose elements do not exist in
// the network is a silent no-op, never an error.
type RecycleFlags struct {
	// BusPQ: load/generation injections changed (cheapest update; the
	// admittance matrix is untouched).
	BusPQ bool
	// Trafo: transformer parameters changed (tap positions, impedances);
	// only the affected admittance entries are recomputed.
	Trafo bool
	// Gen: generator array changed; rebuilt wholesale and NaN-sanitized.
	Gen bool
}

// Any reports whether at least one category is flagged.
func (f RecycleFlags) Any() bool { return f.BusPQ || f.Trafo || f.Gen }

// Options is the immutable-per-solve configuration record.
type Options struct {
	// Algorithm selects the AC backend. Ignored when AC is false.
	Algorithm Algorithm

	// AC switches between the AC iterative solvers and the DC linear
	// approximation.
	AC bool

	// MaxIteration caps backend iterations (default 10).
	MaxIteration int

	// Tolerance is the residual threshold in per-unit (default 1e-8).
	Tolerance float64

	// Mode selects result-extraction behavior.
	Mode Mode

	// InitResults reuses existing result tables as the AC initial guess.
	InitResults bool

	// VoltageDependLoads evaluates ZIP load composition at the running
	// voltage. Forced false for every algorithm outside the
	// Newton-Raphson family and the backward/forward sweep.
	VoltageDependLoads bool

	// Recycle marks changed parameter categories for SolveRecycled.
	Recycle RecycleFlags

	// Logger receives per-iteration debug output; nil means silent.
	Logger *slog.Logger
}

// NewLogger builds the colored console logger used by DefaultOptions.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

// DefaultOptions returns production-safe defaults: AC Newton–Raphson,
// 10 iterations, 1e-8 tolerance, full result extraction, errors-only
// console logging.
func DefaultOptions() Options {
	return Options{
		Algorithm:    NewtonRaphson,
		AC:           true,
		MaxIteration: solver.DefaultMaxIteration,
		Tolerance:    solver.DefaultTolerance,
		Mode:         ModePF,
		Logger:       NewLogger(os.Stderr, slog.LevelError),
	}
}

// normalize fills zero values and enforces cross-field rules.
func (o *Options) normalize() {
	if o.MaxIteration <= 0 {
		o.MaxIteration = solver.DefaultMaxIteration
	}
	if o.Tolerance <= 0 {
		o.Tolerance = solver.DefaultTolerance
	}
	// ZIP load composition is implemented by the Newton family and the
	// sweep solver only.
	if !o.Algorithm.newtonFamily() && o.Algorithm != BackwardForwardSweep {
		o.VoltageDependLoads = false
	}
}

// validate rejects configurations before any numeric work. The DC path
// ignores the algorithm tag entirely, so only AC solves are checked.
func (o *Options) validate() error {
	if o.AC && !o.Algorithm.known() {
		return fmt.Errorf("%w: tag %d", ErrUnknownAlgorithm, o.Algorithm)
	}
	return nil
}

// solverOptions maps orchestrator options onto the backend option set.
func (o *Options) solverOptions() solver.Options {
	return solver.Options{
		MaxIteration:       o.MaxIteration,
		Tolerance:          o.Tolerance,
		VoltageDependLoads: o.VoltageDependLoads,
		Logger:             o.Logger,
	}
}
