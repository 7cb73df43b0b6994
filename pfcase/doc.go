// Package pfcase defines the solver-internal representation of a network:
// the FullCase (every element, including out-of-service ones) and the
// ReducedCase (in-service elements only, with compacted bus indices) that
// the numerical backends consume.
//
// The two views obey a fixed ordering contract:
//
//	– element order in a ReducedCase is the full-case order with
//	  out-of-service elements removed, never permuted;
//	– the ReducedCase records, per element kind, the full-case position of
//	  each kept element, so solve results can be merged back by position.
//
// A ReducedCase may additionally carry an Internal: the solver scratch
// state (admittance matrices, bus-type partitions, starting voltages)
// built during a solve. Recycled solves reuse a cached Internal instead of
// rebuilding it; see package powerflow.
//
// Errors:
//
//	ErrNoReference - the reduced case contains no reference (slack) bus.
//	ErrEmptyCase   - the case contains no in-service bus at all.
package pfcase

import "errors"

// Sentinel errors for case reduction.
var (
	// ErrNoReference indicates no in-service reference bus survives reduction.
	ErrNoReference = errors.New("pfcase: no in-service reference bus")

	// ErrEmptyCase indicates the case has no in-service buses.
	ErrEmptyCase = errors.New("pfcase: no in-service buses")
)
