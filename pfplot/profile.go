package pfplot

import (
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/katalvlaran/gridflow/core"
)

// VoltageProfile builds a voltage-magnitude-per-bus plot from the
// network's result tables. Out-of-service buses (NaN results) are
// skipped. Returns ErrNoResults when no solve has populated the tables.
func VoltageProfile(net *core.Network) (*plot.Plot, error) {
	if !net.HasResults() {
		return nil, ErrNoResults
	}

	xys := make(plotter.XYs, 0, len(net.ResBus))
	for i, r := range net.ResBus {
		if math.IsNaN(r.VMPU) {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(i), Y: r.VMPU})
	}

	p := plot.New()
	p.Title.Text = net.Name
	p.X.Label.Text = "bus index"
	p.Y.Label.Text = "|V| [pu]"
	p.Add(plotter.NewGrid())

	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return nil, err
	}
	p.Add(line, points)
	return p, nil
}

// SaveVoltageProfile renders the profile to a file; the format follows
// the extension (png, svg, pdf, ...).
func SaveVoltageProfile(net *core.Network, path string) error {
	p, err := VoltageProfile(net)
	if err != nil {
		return err
	}
	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
