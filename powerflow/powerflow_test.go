package powerflow_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/gridflow/builder"
	"github.com/katalvlaran/gridflow/core"
	"github.com/katalvlaran/gridflow/powerflow"
	"github.com/katalvlaran/gridflow/solver"
)

// SolveSuite exercises the orchestrator: dispatch, the convergence guard,
// and cleanup on every exit path.
type SolveSuite struct {
	suite.Suite
}

// TestBranchlessTrivial verifies the direct path for networks without any
// branch: flat converged voltages, no iteration machinery involved.
func (s *SolveSuite) TestBranchlessTrivial() {
	net, err := builder.BusOnly(3)
	require.NoError(s.T(), err)

	require.NoError(s.T(), powerflow.Solve(net, powerflow.DefaultOptions()))
	require.True(s.T(), net.Converged)
	require.Len(s.T(), net.ResBus, 3)
	for _, r := range net.ResBus {
		require.Equal(s.T(), 1.0, r.VMPU)
		require.Zero(s.T(), r.VADegree)
	}
	require.Empty(s.T(), net.Gens) // auxiliary machines cleaned up
}

// TestSolveTwoBus verifies the default AC cycle end to end, including the
// user-facing result tables and the external-grid accounting.
func (s *SolveSuite) TestSolveTwoBus() {
	net, err := builder.TwoBus(10, 2.5)
	require.NoError(s.T(), err)

	require.NoError(s.T(), powerflow.Solve(net, powerflow.DefaultOptions()))
	require.True(s.T(), net.Converged)

	require.Len(s.T(), net.ResBus, 2)
	require.Less(s.T(), net.ResBus[1].VMPU, 1.0)
	require.InDelta(s.T(), -10.0, net.ResBus[1].PMW, 1e-4) // pure consumption

	require.Len(s.T(), net.ResLine, 1)
	require.Positive(s.T(), net.ResLine[0].LoadingPercent)

	// The external grid covers the load plus losses; no regular machines.
	require.Len(s.T(), net.ResExtGrid, 1)
	require.Greater(s.T(), net.ResExtGrid[0].PMW, 10.0)
	require.Empty(s.T(), net.ResGen)
	require.Empty(s.T(), net.Gens) // transient slack machine removed

	// The recycle cache is in place for subsequent incremental solves.
	require.NotNil(s.T(), net.PPC)
	require.NotNil(s.T(), net.PPC.Internal)
}

// TestTrafoFeeder verifies the mixed line/trafo case and per-element
// loading extraction.
func (s *SolveSuite) TestTrafoFeeder() {
	net, err := builder.TrafoFeeder(8)
	require.NoError(s.T(), err)

	require.NoError(s.T(), powerflow.Solve(net, powerflow.DefaultOptions()))
	require.True(s.T(), net.Converged)
	require.Len(s.T(), net.ResTrafo, 1)
	require.Positive(s.T(), net.ResTrafo[0].LoadingPercent)
	require.Less(s.T(), net.ResBus[2].VMPU, net.ResBus[1].VMPU)
}

// TestDCAlwaysSucceeds verifies the linear path: guaranteed convergence and
// an algorithm tag that is never even looked at.
func (s *SolveSuite) TestDCAlwaysSucceeds() {
	net, err := builder.TwoBus(10, 2.5)
	require.NoError(s.T(), err)

	opts := powerflow.DefaultOptions()
	opts.AC = false
	opts.Algorithm = powerflow.Algorithm(42) // ignored on the DC path

	require.NoError(s.T(), powerflow.Solve(net, opts))
	require.True(s.T(), net.Converged)
	require.Equal(s.T(), 1.0, net.ResBus[1].VMPU) // flat magnitudes
	require.Negative(s.T(), net.ResBus[1].VADegree)
	require.InDelta(s.T(), 10.0, net.ResLine[0].PFromMW, 1e-9)
}

// TestUnknownAlgorithmName verifies the stringly-typed entry gate.
func (s *SolveSuite) TestUnknownAlgorithmName() {
	_, err := powerflow.ParseAlgorithm("not-a-real-algorithm")
	require.ErrorIs(s.T(), err, powerflow.ErrUnknownAlgorithm)

	a, err := powerflow.ParseAlgorithm("iwamoto-newton-raphson")
	require.NoError(s.T(), err)
	require.Equal(s.T(), powerflow.IwamotoNewtonRaphson, a)
	require.Equal(s.T(), "iwamoto-newton-raphson", a.String())
	require.Equal(s.T(), "unknown", powerflow.Algorithm(0).String())
}

// TestUnknownAlgorithmTag verifies that an invalid tag on an AC solve fails
// before the network is touched in any way.
func (s *SolveSuite) TestUnknownAlgorithmTag() {
	net, err := builder.TwoBus(10, 2.5)
	require.NoError(s.T(), err)
	net.Converged = true // sentinel: must survive a rejected configuration
	gens := len(net.Gens)

	opts := powerflow.DefaultOptions()
	opts.Algorithm = powerflow.Algorithm(42)
	err = powerflow.Solve(net, opts)
	require.ErrorIs(s.T(), err, powerflow.ErrUnknownAlgorithm)

	require.True(s.T(), net.Converged) // untouched
	require.Len(s.T(), net.Gens, gens) // no auxiliary machines leaked
	require.Nil(s.T(), net.PPC)
}

// TestNotConverged verifies the convergence guard: typed error, false
// Converged, empty result tables, no transient machines left behind.
func (s *SolveSuite) TestNotConverged() {
	net, err := builder.TwoBus(10, 2.5)
	require.NoError(s.T(), err)

	opts := powerflow.DefaultOptions()
	opts.MaxIteration = 1 // one Newton step is not enough for 1e-8
	err = powerflow.Solve(net, opts)
	require.ErrorIs(s.T(), err, powerflow.ErrNotConverged)

	var nc *powerflow.NotConvergedError
	require.ErrorAs(s.T(), err, &nc)
	require.Equal(s.T(), powerflow.NewtonRaphson, nc.Algorithm)
	require.Equal(s.T(), 1, nc.MaxIteration)
	require.Equal(s.T(),
		"powerflow: newton-raphson did not converge after 1 iterations",
		nc.Error())

	require.False(s.T(), net.Converged)
	require.Empty(s.T(), net.ResBus) // partial results discarded
	require.Empty(s.T(), net.Gens)   // cleanup ran
}

// TestInfeasibleCase verifies that a load beyond the line's transfer limit
// fails cleanly under the full default iteration cap.
func (s *SolveSuite) TestInfeasibleCase() {
	net, err := builder.TwoBus(200, 100)
	require.NoError(s.T(), err)

	err = powerflow.Solve(net, powerflow.DefaultOptions())
	require.ErrorIs(s.T(), err, powerflow.ErrNotConverged)
	require.False(s.T(), net.Converged)
	require.Empty(s.T(), net.ResBus)
}

// TestSweepDispatch verifies dispatching to the radial solver and its
// rejection of meshed topology propagating through Solve.
func (s *SolveSuite) TestSweepDispatch() {
	opts := powerflow.DefaultOptions()
	opts.Algorithm = powerflow.BackwardForwardSweep

	radial, err := builder.FourBusRadial(4)
	require.NoError(s.T(), err)
	require.NoError(s.T(), powerflow.Solve(radial, opts))
	require.True(s.T(), radial.Converged)

	meshed, err := builder.ThreeBusMeshed(10)
	require.NoError(s.T(), err)
	err = powerflow.Solve(meshed, opts)
	require.ErrorIs(s.T(), err, solver.ErrNonRadial)
	require.False(s.T(), meshed.Converged)
	// Cleanup ran on the error path: the regular machine survives, the
	// transient slack machine does not.
	require.Len(s.T(), meshed.Gens, 1)
	require.False(s.T(), meshed.IsAuxGen(0))
}

// TestModeNone verifies that extraction can be skipped while convergence
// and the recycle cache still update.
func (s *SolveSuite) TestModeNone() {
	net, err := builder.TwoBus(10, 2.5)
	require.NoError(s.T(), err)

	opts := powerflow.DefaultOptions()
	opts.Mode = powerflow.ModeNone
	require.NoError(s.T(), powerflow.Solve(net, opts))
	require.True(s.T(), net.Converged)
	require.Empty(s.T(), net.ResBus)
	require.NotNil(s.T(), net.PPC)
}

// TestStaleResultsDropped verifies that shape-inconsistent result tables
// are silently discarded instead of poisoning the warm start.
func (s *SolveSuite) TestStaleResultsDropped() {
	net, err := builder.TwoBus(10, 2.5)
	require.NoError(s.T(), err)
	net.ResBus = make([]core.BusResult, 7) // wrong shape

	opts := powerflow.DefaultOptions()
	opts.InitResults = true
	require.NoError(s.T(), powerflow.Solve(net, opts))
	require.True(s.T(), net.Converged)
	require.Len(s.T(), net.ResBus, 2)
}

// TestWarmStart verifies a second solve reusing the first one's results.
func (s *SolveSuite) TestWarmStart() {
	net, err := builder.FourBusRadial(4)
	require.NoError(s.T(), err)
	// Tolerance well below the comparison delta: warm and cold runs stop
	// at slightly different points of the residual tail otherwise.
	opts := powerflow.DefaultOptions()
	opts.Tolerance = 1e-12
	require.NoError(s.T(), powerflow.Solve(net, opts))
	first := append([]core.BusResult(nil), net.ResBus...)

	opts.InitResults = true
	require.NoError(s.T(), powerflow.Solve(net, opts))
	for i := range first {
		require.InDelta(s.T(), first[i].VMPU, net.ResBus[i].VMPU, 1e-9)
	}
}

// Entry point for running the suite.
func TestSolveSuite(t *testing.T) {
	suite.Run(t, new(SolveSuite))
}
