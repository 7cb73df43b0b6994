// Package powerflow orchestrates power-flow solves on a *core.Network:
// it builds the internal case, routes it to one of the numerical backends,
// writes results back, and enforces convergence-or-clean semantics. It is
// the only package callers normally need.
//
// # Entry points
//
//	func Solve(net *core.Network, opts Options) error
//	func SolveRecycled(net *core.Network, opts Options) error
//
// Solve performs a full build → dispatch → commit cycle. SolveRecycled
// reuses the internal numeric structures cached by the previous successful
// solve — notably the admittance matrix — and re-derives only the
// parameter categories flagged in opts.Recycle. Recycling an AC solve is
// defined for the Newton–Raphson family only.
//
// # Dispatch policy (in priority order)
//
//  1. Zero branches in the reduced case → trivial direct path, always
//     succeeds with Iterations = 1 and Elapsed = 0.
//  2. opts.AC == false → DC backend (linear, single pass, always succeeds).
//  3. Otherwise by opts.Algorithm: newton-raphson, iwamoto-newton-raphson,
//     backward-forward-sweep, fast-decoupled-bx, fast-decoupled-xb,
//     gauss-seidel.
//  4. Anything else fails with ErrUnknownAlgorithm — at option validation
//     time, before any numeric work begins.
//
// The dispatcher is a pure router: it never mutates the reduced case.
//
// # Convergence guarantees
//
// On every solve attempt, regardless of outcome:
//
//	– net.Converged is recomputed, never left stale;
//	– transient auxiliary elements (the slack machines realizing external
//	  grids) are removed again — cleanup runs on every exit path and is
//	  idempotent;
//	– a failed AC solve leaves NO partial result tables: the caller sees
//	  either a fully populated network or a clean, non-converged one.
//
// # Errors
//
//	ErrUnknownAlgorithm    - option names no known algorithm; fatal, no retry.
//	*NotConvergedError     - iteration cap exhausted; wraps ErrNotConverged
//	                         and carries the algorithm and the cap.
//	ErrInvalidRecycleState - recycling without a cached build, or with an
//	                         algorithm family that does not support it.
//
// Nothing is retried inside this package; retrying with another algorithm
// or a relaxed tolerance is caller policy.
//
// # Concurrency
//
// Solves are synchronous and single-threaded. A Network instance must not
// be solved concurrently; instances are fully independent of each other.
package powerflow
