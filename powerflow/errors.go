package powerflow

import (
	"errors"
	"fmt"
)

// Sentinel errors for orchestration failures. Match with errors.Is.
var (
	// ErrUnknownAlgorithm indicates the options name an algorithm the
	// dispatcher does not recognize. Fatal, surfaced before any build.
	ErrUnknownAlgorithm = errors.New("powerflow: unknown algorithm")

	// ErrInvalidRecycleState indicates a recycled solve without a cached
	// build, or with an algorithm family that does not support recycling.
	// A caller contract violation, always fatal.
	ErrInvalidRecycleState = errors.New("powerflow: invalid recycle state")

	// ErrNotConverged is the sentinel wrapped by *NotConvergedError.
	ErrNotConverged = errors.New("powerflow: power flow did not converge")
)

// NotConvergedError reports that a backend exhausted its iteration cap
// without satisfying the residual criterion. The network model has been
// cleaned up before this error propagates: no partial result tables, and
// Converged is false.
type NotConvergedError struct {
	// Algorithm that was running.
	Algorithm Algorithm
	// MaxIteration is the configured iteration cap.
	MaxIteration int
}

// Error implements error.
func (e *NotConvergedError) Error() string {
	return fmt.Sprintf("powerflow: %s did not converge after %d iterations",
		e.Algorithm, e.MaxIteration)
}

// Unwrap makes errors.Is(err, ErrNotConverged) work.
func (e *NotConvergedError) Unwrap() error { return ErrNotConverged }
