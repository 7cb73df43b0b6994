package powerflow_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/gridflow/builder"
	"github.com/katalvlaran/gridflow/core"
	"github.com/katalvlaran/gridflow/powerflow"
)

// RecycleSuite exercises incremental re-solves against equivalent cold
// solves and the recycle contract violations.
type RecycleSuite struct {
	suite.Suite
}

// requireSameVoltages asserts that two solved networks landed on the same
// operating point. The comparison only makes sense at a tolerance well
// below the assertion deltas — warm-started and cold solves stop at
// slightly different points of the residual tail otherwise; the
// equivalence tests solve with tightOptions for that reason.
func (s *RecycleSuite) requireSameVoltages(want, got *core.Network) {
	s.T().Helper()
	require.Len(s.T(), got.ResBus, len(want.ResBus))
	for i := range want.ResBus {
		require.InDelta(s.T(), want.ResBus[i].VMPU, got.ResBus[i].VMPU, 1e-9)
		require.InDelta(s.T(), want.ResBus[i].VADegree, got.ResBus[i].VADegree, 1e-9)
	}
}

// tightOptions returns defaults with the residual tolerance pushed far
// below the equivalence deltas.
func tightOptions() powerflow.Options {
	opts := powerflow.DefaultOptions()
	opts.Tolerance = 1e-12
	return opts
}

// TestBusPQEquivalence verifies that re-solving with recycled injections
// matches a cold solve of the modified network.
func (s *RecycleSuite) TestBusPQEquivalence() {
	net, err := builder.FourBusRadial(4)
	require.NoError(s.T(), err)
	require.NoError(s.T(), powerflow.Solve(net, powerflow.DefaultOptions()))

	// Same load change applied to a cold copy and to the cached network.
	cold := net.Clone()
	for i := range net.Loads {
		net.Loads[i].PMW = 7
		cold.Loads[i].PMW = 7
	}

	opts := tightOptions()
	opts.Recycle = powerflow.RecycleFlags{BusPQ: true}
	require.NoError(s.T(), powerflow.SolveRecycled(net, opts))
	require.True(s.T(), net.Converged)

	require.NoError(s.T(), powerflow.Solve(cold, tightOptions()))
	s.requireSameVoltages(cold, net)
}

// TestTrafoEquivalence verifies tap-change recycling: only the affected
// admittance entries are refreshed, yet the result matches a full rebuild.
func (s *RecycleSuite) TestTrafoEquivalence() {
	net, err := builder.TrafoFeeder(8)
	require.NoError(s.T(), err)
	require.NoError(s.T(), powerflow.Solve(net, powerflow.DefaultOptions()))
	before := net.ResBus[1].VMPU

	cold := net.Clone()
	net.Trafos[0].TapPos = 4
	cold.Trafos[0].TapPos = 4

	opts := tightOptions()
	opts.Recycle = powerflow.RecycleFlags{Trafo: true}
	require.NoError(s.T(), powerflow.SolveRecycled(net, opts))

	require.NoError(s.T(), powerflow.Solve(cold, tightOptions()))
	s.requireSameVoltages(cold, net)

	// A higher HV-side ratio pulls the low-voltage side down.
	require.Less(s.T(), net.ResBus[1].VMPU, before)
}

// TestGenEquivalence verifies generator-array recycling.
func (s *RecycleSuite) TestGenEquivalence() {
	net, err := builder.ThreeBusMeshed(10)
	require.NoError(s.T(), err)
	require.NoError(s.T(), powerflow.Solve(net, powerflow.DefaultOptions()))

	cold := net.Clone()
	net.Gens[0].PMW = 12
	cold.Gens[0].PMW = 12

	opts := tightOptions()
	opts.Recycle = powerflow.RecycleFlags{Gen: true}
	require.NoError(s.T(), powerflow.SolveRecycled(net, opts))

	require.NoError(s.T(), powerflow.Solve(cold, tightOptions()))
	s.requireSameVoltages(cold, net)
}

// TestAbsentCategoryNoOp verifies that flagging a category with no elements
// behind it is silently ignored.
func (s *RecycleSuite) TestAbsentCategoryNoOp() {
	net, err := builder.FourBusRadial(4) // no transformers
	require.NoError(s.T(), err)
	require.NoError(s.T(), powerflow.Solve(net, powerflow.DefaultOptions()))

	opts := powerflow.DefaultOptions()
	opts.Recycle = powerflow.RecycleFlags{Trafo: true}
	require.NoError(s.T(), powerflow.SolveRecycled(net, opts))
	require.True(s.T(), net.Converged)
}

// TestMissingCache verifies the precondition gate: without a prior build
// the call fails before mutating anything.
func (s *RecycleSuite) TestMissingCache() {
	net, err := builder.TwoBus(10, 2.5)
	require.NoError(s.T(), err)
	net.Converged = true // sentinel

	err = powerflow.SolveRecycled(net, powerflow.DefaultOptions())
	require.ErrorIs(s.T(), err, powerflow.ErrInvalidRecycleState)
	require.True(s.T(), net.Converged) // untouched
	require.Empty(s.T(), net.Gens)
}

// TestNonNewtonRejected verifies that AC recycling outside the
// Newton–Raphson family is a contract violation, with full cleanup.
func (s *RecycleSuite) TestNonNewtonRejected() {
	net, err := builder.FourBusRadial(4)
	require.NoError(s.T(), err)
	require.NoError(s.T(), powerflow.Solve(net, powerflow.DefaultOptions()))

	opts := powerflow.DefaultOptions()
	opts.Algorithm = powerflow.BackwardForwardSweep
	opts.Recycle = powerflow.RecycleFlags{Gen: true}
	err = powerflow.SolveRecycled(net, opts)
	require.ErrorIs(s.T(), err, powerflow.ErrInvalidRecycleState)
	require.False(s.T(), net.Converged)
	require.Empty(s.T(), net.Gens) // transient machines cleaned up
}

// TestDCRecycleIgnoresAlgorithm verifies the asymmetry of the DC path: the
// algorithm tag is never validated there.
func (s *RecycleSuite) TestDCRecycleIgnoresAlgorithm() {
	net, err := builder.TwoBus(10, 2.5)
	require.NoError(s.T(), err)
	require.NoError(s.T(), powerflow.Solve(net, powerflow.DefaultOptions()))

	opts := powerflow.DefaultOptions()
	opts.AC = false
	opts.Algorithm = powerflow.Algorithm(42) // would fail an AC solve
	require.NoError(s.T(), powerflow.SolveRecycled(net, opts))
	require.True(s.T(), net.Converged)
	require.Equal(s.T(), 1.0, net.ResBus[1].VMPU) // DC: flat magnitudes
}

// TestRepeatedRecycles verifies a sweep of injections over the same cache.
func (s *RecycleSuite) TestRepeatedRecycles() {
	net, err := builder.FourBusRadial(2)
	require.NoError(s.T(), err)
	require.NoError(s.T(), powerflow.Solve(net, powerflow.DefaultOptions()))

	opts := powerflow.DefaultOptions()
	opts.Recycle = powerflow.RecycleFlags{BusPQ: true}

	last := len(net.ResBus) - 1
	prev := net.ResBus[last].VMPU
	for _, p := range []float64{3, 4, 5, 6} {
		for i := range net.Loads {
			net.Loads[i].PMW = p
		}
		require.NoError(s.T(), powerflow.SolveRecycled(net, opts))
		require.True(s.T(), net.Converged)
		require.Less(s.T(), net.ResBus[last].VMPU, prev) // heavier load, deeper sag
		prev = net.ResBus[last].VMPU
	}
}

// Entry point for running the suite.
func TestRecycleSuite(t *testing.T) {
	suite.Run(t, new(RecycleSuite))
}
