package ybus_test

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/gridflow/pfcase"
	"github.com/katalvlaran/gridflow/ybus"
)

// YbusSuite exercises admittance assembly and in-place branch updates.
type YbusSuite struct {
	suite.Suite
}

// eqC asserts complex equality within a small absolute tolerance.
func (s *YbusSuite) eqC(want, got complex128) {
	s.T().Helper()
	require.InDelta(s.T(), real(want), real(got), 1e-12)
	require.InDelta(s.T(), imag(want), imag(got), 1e-12)
}

// TestTwoBusLine verifies the π-model stamp of a plain line with charging.
func (s *YbusSuite) TestTwoBusLine() {
	buses := []pfcase.Bus{{InService: true}, {InService: true}}
	branches := []pfcase.Branch{{From: 0, To: 1, R: 0.01, X: 0.05, B: 0.02, Tap: 1, InService: true}}

	y, yf, yt, err := ybus.Build(100, buses, branches)
	require.NoError(s.T(), err)

	ys := 1 / complex(0.01, 0.05)
	bc := complex(0, 0.01)

	s.eqC(ys+bc, y.At(0, 0))
	s.eqC(ys+bc, y.At(1, 1))
	s.eqC(-ys, y.At(0, 1))
	s.eqC(-ys, y.At(1, 0)) // symmetric without tap or shift

	// Branch views mirror the stamp row-wise.
	s.eqC(y.At(0, 0), yf.At(0, 0))
	s.eqC(y.At(0, 1), yf.At(0, 1))
	s.eqC(y.At(1, 0), yt.At(0, 0))
	s.eqC(y.At(1, 1), yt.At(0, 1))
}

// TestTapAndShift verifies the off-nominal ratio and phase-shift asymmetry,
// and that an unset tap (zero) means nominal.
func (s *YbusSuite) TestTapAndShift() {
	buses := []pfcase.Bus{{InService: true}, {InService: true}}
	br := pfcase.Branch{From: 0, To: 1, R: 0.002, X: 0.08, Tap: 1.05, Shift: 30, InService: true}

	y, _, _, err := ybus.Build(100, buses, []pfcase.Branch{br})
	require.NoError(s.T(), err)

	ys := 1 / complex(0.002, 0.08)
	tap := cmplx.Rect(1.05, 30*math.Pi/180)
	s.eqC(ys/(tap*cmplx.Conj(tap)), y.At(0, 0))
	s.eqC(-ys/cmplx.Conj(tap), y.At(0, 1))
	s.eqC(-ys/tap, y.At(1, 0))
	s.eqC(ys, y.At(1, 1))

	// Tap==0 stamps exactly like Tap==1.
	zeroTap := pfcase.Branch{From: 0, To: 1, R: 0.002, X: 0.08, InService: true}
	oneTap := zeroTap
	oneTap.Tap = 1
	yZero, _, _, err := ybus.Build(100, buses, []pfcase.Branch{zeroTap})
	require.NoError(s.T(), err)
	yOne, _, _, err := ybus.Build(100, buses, []pfcase.Branch{oneTap})
	require.NoError(s.T(), err)
	s.eqC(yOne.At(0, 0), yZero.At(0, 0))
	s.eqC(yOne.At(0, 1), yZero.At(0, 1))
}

// TestShunts verifies per-unit shunt stamping on the diagonal.
func (s *YbusSuite) TestShunts() {
	buses := []pfcase.Bus{{Gs: 5, Bs: -20, InService: true}}
	y, yf, yt, err := ybus.Build(100, buses, nil)
	require.NoError(s.T(), err)
	s.eqC(complex(0.05, -0.2), y.At(0, 0))
	require.Nil(s.T(), yf) // no branches, no branch views
	require.Nil(s.T(), yt)
}

// TestBuildErrors covers zero impedance and out-of-range endpoints.
func (s *YbusSuite) TestBuildErrors() {
	buses := []pfcase.Bus{{InService: true}, {InService: true}}

	_, _, _, err := ybus.Build(100, buses, []pfcase.Branch{{From: 0, To: 1, Tap: 1}})
	require.ErrorIs(s.T(), err, ybus.ErrZeroImpedance)

	_, _, _, err = ybus.Build(100, buses, []pfcase.Branch{{From: 0, To: 7, X: 0.1, Tap: 1}})
	require.ErrorIs(s.T(), err, ybus.ErrBusRange)
}

// TestUpdateBranch verifies that swapping one branch's parameters in place
// reproduces a from-scratch build exactly.
func (s *YbusSuite) TestUpdateBranch() {
	buses := []pfcase.Bus{{InService: true}, {InService: true}, {InService: true}}
	branches := []pfcase.Branch{
		{From: 0, To: 1, R: 0.01, X: 0.05, Tap: 1, InService: true},
		{From: 1, To: 2, R: 0.004, X: 0.1, Tap: 1.02, InService: true},
	}
	y, yf, yt, err := ybus.Build(100, buses, branches)
	require.NoError(s.T(), err)

	// Move branch 1 to a new tap position.
	updated := branches[1]
	updated.Tap = 0.97
	require.NoError(s.T(), ybus.UpdateBranch(y, yf, yt, 1, branches[1], updated))

	fresh := append([]pfcase.Branch(nil), branches...)
	fresh[1] = updated
	yRef, yfRef, ytRef, err := ybus.Build(100, buses, fresh)
	require.NoError(s.T(), err)

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			s.eqC(yRef.At(i, j), y.At(i, j))
		}
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			s.eqC(yfRef.At(i, j), yf.At(i, j))
			s.eqC(ytRef.At(i, j), yt.At(i, j))
		}
	}
}

// Entry point for running the suite.
func TestYbusSuite(t *testing.T) {
	suite.Run(t, new(YbusSuite))
}
