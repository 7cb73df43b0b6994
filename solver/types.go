package solver

import (
	"io"
	"log/slog"
	"time"

	"github.com/katalvlaran/gridflow/pfcase"
)

// Default iteration cap and residual tolerance, matching the orchestrator
// defaults.
const (
	DefaultMaxIteration = 10
	DefaultTolerance    = 1e-8
)

// Options configures all backends.
//   - MaxIteration: hard cap on iterations (default 10).
//   - Tolerance: infinity-norm residual threshold in per-unit (default 1e-8).
//   - VoltageDependLoads: evaluate ZIP load composition at the running
//     voltage (honored by Newton-family and sweep backends only).
//   - Logger: per-iteration debug logging; nil means silent.
type Options struct {
	MaxIteration       int
	Tolerance          float64
	VoltageDependLoads bool
	Logger             *slog.Logger
}

// DefaultOptions returns production-safe defaults.
func DefaultOptions() Options {
	return Options{
		MaxIteration: DefaultMaxIteration,
		Tolerance:    DefaultTolerance,
	}
}

// normalize fills zero values with defaults and guarantees a usable logger.
func (o *Options) normalize() {
	if o.MaxIteration <= 0 {
		o.MaxIteration = DefaultMaxIteration
	}
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
}

// Result is the outcome of one backend run: the reduced-case arrays with
// results written in, plus convergence metadata.
type Result struct {
	Buses    []pfcase.Bus
	Branches []pfcase.Branch
	Gens     []pfcase.Gen

	// Success reports residual convergence within MaxIteration. The DC and
	// branch-less backends always report true.
	Success bool

	// Iterations actually performed.
	Iterations int

	// Elapsed wall time of the backend run.
	Elapsed time.Duration
}
