// Package ybus builds the nodal admittance matrix of a reduced internal
// case, together with the branch-end views used to recover branch flows.
//
// For a case with n buses and m branches it produces:
//
//	Ybus (n×n) — nodal admittances: I = Ybus · V
//	Yf   (m×n) — from-end branch currents: If = Yf · V
//	Yt   (m×n) — to-end branch currents:   It = Yt · V
//
// Branch π-model with off-nominal tap ratio t and phase shift θ at the
// from end (ys = 1/(r+jx), bc = total charging susceptance):
//
//	yff = (ys + j·bc/2) / (t²)
//	yft = -ys / (t·e^{-jθ})
//	ytf = -ys / (t·e^{+jθ})
//	ytt =  ys + j·bc/2
//
// Bus shunts enter the diagonal as (Gs + j·Bs)/baseMVA.
//
// UpdateBranch replaces one branch's contribution in place, which is what
// makes transformer-parameter recycling cheap: the admittance state of the
// previous solve is kept and only the affected rows change.
//
// Errors:
//
//	ErrZeroImpedance - a branch carries r = x = 0 and cannot be stamped.
//	ErrBusRange      - a branch endpoint is outside the bus array.
package ybus

import "errors"

// Sentinel errors for admittance construction.
var (
	// ErrZeroImpedance indicates a branch with zero series impedance.
	ErrZeroImpedance = errors.New("ybus: branch with zero series impedance")

	// ErrBusRange indicates a branch endpoint outside the bus array.
	ErrBusRange = errors.New("ybus: branch endpoint out of range")
)
