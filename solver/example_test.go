package solver_test

import (
	"fmt"

	"github.com/katalvlaran/gridflow/builder"
	"github.com/katalvlaran/gridflow/solver"
)

// ExampleNewtonRaphson solves a reduced case directly, bypassing the
// orchestrator.
func ExampleNewtonRaphson() {
	net, _ := builder.TwoBus(10, 2.5)
	for _, eg := range net.ExtGrids {
		net.InjectAuxGen(eg.Bus, 0, eg.VMPU) // slack machine for the grid
	}
	_, rc, _ := builder.Build(net, builder.BuildOptions{})

	res, err := solver.NewtonRaphson(rc, solver.DefaultOptions())
	if err != nil {
		fmt.Println("solve failed:", err)
		return
	}
	fmt.Println("success:", res.Success)
	// Output:
	// success: true
}
