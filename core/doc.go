// Package core defines the central Network type and its element tables,
// and provides primitives for building, querying, and cloning networks.
//
// A Network owns:
//
//	– Element tables: Buses, Lines, Trafos, Gens, Loads, ExtGrids.
//	– Result tables:  ResBus, ResLine, ResTrafo, ResGen, ResExtGrid,
//	  populated only after a successful power-flow solve.
//	– Converged:      true iff the most recent solve succeeded.
//	– PPC:            the cached full internal case from the most recent
//	  successful build (the recycle cache). It is replaced wholesale on
//	  every full rebuild and consumed read-only by recycled solves.
//
// A Network instance is NOT safe for concurrent solves: exclusive access
// per instance, serialized by the caller, is a precondition. Independent
// Network values share no state.
//
// Errors:
//
//	ErrBusNotFound    - an element references a bus index that does not exist.
//	ErrBadImpedance   - a line or transformer carries a non-positive impedance.
//	ErrBadBaseVoltage - a bus carries a non-positive rated voltage.
//	ErrResultShape    - result tables do not match element-table lengths.
package core

import "errors"

// Sentinel errors for network construction and validation.
var (
	// ErrBusNotFound indicates an element referenced a non-existent bus index.
	ErrBusNotFound = errors.New("core: bus not found")

	// ErrBadImpedance indicates a branch element with zero or negative impedance.
	ErrBadImpedance = errors.New("core: non-positive branch impedance")

	// ErrBadBaseVoltage indicates a bus with zero or negative rated voltage.
	ErrBadBaseVoltage = errors.New("core: non-positive bus rated voltage")

	// ErrResultShape indicates result tables inconsistent with element tables.
	ErrResultShape = errors.New("core: result tables do not match element tables")
)
