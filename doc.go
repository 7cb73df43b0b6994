// Package gridflow is an in-memory power-flow engine for electrical
// networks — from the user-facing network model down to the numerical
// solving backends and the orchestration glue between them.
//
// 🚀 What is gridflow?
//
//	A modern, dependency-light library that brings together:
//		• Network model: buses, lines, transformers, generators, loads, external grids
//		• Case conversion: network → full / reduced solver-internal cases
//		• Admittance matrices: nodal Ybus plus branch-end Yf/Yt views
//		• AC solvers: Newton–Raphson (plain & Iwamoto-damped), Gauss–Seidel,
//		  fast-decoupled (BX/XB), backward/forward sweep
//		• DC solver: linear single-pass approximation
//		• Orchestration: algorithm dispatch, incremental re-solve (recycle),
//		  convergence guarantees and cleanup on every exit path
//
// ✨ Why choose gridflow?
//
//   - Beginner-friendly – minimal API, clear, intuitive naming
//   - Rock-solid guarantees – convergence-or-clean semantics, no stale state
//   - Fast re-solves – recycle previously built admittance structures
//   - Extensible – every backend consumed through one fixed contract
//
// Under the hood, everything is organized under flat subpackages:
//
//	core/      — the Network model: element tables, result tables, options
//	pfcase/    — full & reduced internal cases, merge-back, scratch state
//	ybus/      — nodal admittance matrix construction and updates
//	solver/    — the numerical backends (NR, GS, FD, BFSW, DC)
//	builder/   — network → internal case conversion, canned test networks
//	powerflow/ — the orchestrator: Solve, SolveRecycled, convergence guard
//	pfplot/    — voltage-profile plotting (gonum/plot)
//
// Quick ASCII example (two buses, one line, one load):
//
//	    ext grid ──[B0]────line────[B1]── load 10 MW
//
//	net, _ := builder.TwoBus(10, 2.5)
//	err := powerflow.Solve(net, powerflow.DefaultOptions())
//	// net.Converged == true, net.ResBus holds voltages & injections
//
// See each subpackage's doc.go for algorithms, complexity and error contracts.
package gridflow
