// Package pfplot renders solved networks with gonum/plot: the per-bus
// voltage profile of a converged solve, ready to embed in reports or to
// save straight to disk.
//
// The package reads result tables only — it never triggers a solve and
// never mutates the network.
//
// Errors:
//
//	ErrNoResults - the network has no populated bus result table (solve
//	               it first, and check Converged).
package pfplot

import "errors"

// ErrNoResults indicates the network carries no bus results to plot.
var ErrNoResults = errors.New("pfplot: network has no bus results")
