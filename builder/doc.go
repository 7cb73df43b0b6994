// SPDX-License-Identifier: MIT
// Package: gridflow/builder
//
// Package builder converts a *core.Network into the solver-internal case
// pair: the FullCase (every element) and the ReducedCase (in-service
// elements only) that backends consume. It owns every unit conversion:
//
//	– line impedances ohm → per-unit on the from-bus voltage base;
//	– transformer short-circuit voltage % → per-unit impedance on the
//	  system base, tap changer → off-nominal ratio;
//	– load aggregation per bus, including weighted ZIP shares.
//
// The ordering contract every consumer relies on: the internal branch
// array lists lines first (in table order), then two-winding transformers
// (in table order). Element identity order is never permuted, so solve
// results can be merged back by position.
//
// Besides the one-shot Build, three incremental entry points re-derive a
// single parameter category on an existing FullCase without rebuilding
// anything else — these are the workhorses of the orchestrator's recycle
// path:
//
//	UpdateInjections   - bus demands (+ ZIP shares) only
//	UpdateTrafoBranches- trafo branch parameters + admittance rows
//	RebuildGens        - generator array, replaced wholesale
//
// The package also ships small canned networks (TwoBus, ThreeBusMeshed,
// FourBusRadial, TrafoFeeder, BusOnly) used across tests and examples.
//
// Errors:
//
//	ErrNilNetwork     - Build invoked with a nil network.
//	pfcase.ErrNoReference / pfcase.ErrEmptyCase - propagated from reduction.
package builder

import "errors"

// ErrNilNetwork indicates Build was invoked with a nil network.
var ErrNilNetwork = errors.New("builder: nil network")
