package pfplot_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/gridflow/builder"
	"github.com/katalvlaran/gridflow/pfplot"
	"github.com/katalvlaran/gridflow/powerflow"
)

// ProfileSuite exercises the voltage-profile rendering.
type ProfileSuite struct {
	suite.Suite
}

// TestNoResults verifies the unsolved-network gate.
func (s *ProfileSuite) TestNoResults() {
	net, err := builder.TwoBus(10, 2.5)
	require.NoError(s.T(), err)
	_, err = pfplot.VoltageProfile(net)
	require.ErrorIs(s.T(), err, pfplot.ErrNoResults)
}

// TestProfile verifies plotting a solved feeder and saving it to disk.
func (s *ProfileSuite) TestProfile() {
	net, err := builder.FourBusRadial(4)
	require.NoError(s.T(), err)
	require.NoError(s.T(), powerflow.Solve(net, powerflow.DefaultOptions()))

	p, err := pfplot.VoltageProfile(net)
	require.NoError(s.T(), err)
	require.Equal(s.T(), "four-bus-radial", p.Title.Text)

	path := filepath.Join(s.T().TempDir(), "profile.png")
	require.NoError(s.T(), pfplot.SaveVoltageProfile(net, path))
	info, err := os.Stat(path)
	require.NoError(s.T(), err)
	require.Positive(s.T(), info.Size())
}

// Entry point for running the suite.
func TestProfileSuite(t *testing.T) {
	suite.Run(t, new(ProfileSuite))
}
