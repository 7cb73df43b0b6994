package solver

import "github.com/katalvlaran/gridflow/pfcase"

// WithoutBranches solves the degenerate case with zero branches. No
// impedance couples the buses, so every voltage is already final: the
// admittance matrix reduces to the bus shunts, and the only work left is
// evaluating injections and allocating them to the machines.
//
// By construction this path cannot fail to converge: it always returns
// Success = true, Iterations = 1 and Elapsed = 0.
func WithoutBranches(rc *pfcase.ReducedCase, opts Options) (*Result, error) {
	opts.normalize()

	in, err := prep(rc)
	if err != nil {
		return nil, err
	}
	buses, branches, gens := cloneCase(rc)
	v := startVoltages(buses, gens)

	finalize(in, buses, branches, gens, v, false)
	return &Result{
		Buses: buses, Branches: branches, Gens: gens,
		Success:    true,
		Iterations: 1,
		Elapsed:    0,
	}, nil
}
