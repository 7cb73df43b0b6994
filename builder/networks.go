// SPDX-License-Identifier: MIT
// Package: gridflow/builder
//
// networks.go — small canned networks shared by tests and examples.

package builder

import "github.com/katalvlaran/gridflow/core"

// TwoBus returns the smallest meaningful AC case: an external grid feeding
// a single load over one 110 kV line.
//
//	ext grid ──[B0]────line(r=x/5, x=lineXOhm)────[B1]── load loadMW
//
// Well-conditioned for moderate loadMW / lineXOhm; crank both up to force
// non-convergence within a tight iteration cap.
func TwoBus(loadMW, lineXOhm float64) (*core.Network, error) {
	net := core.NewNetwork(core.WithName("two-bus"))
	b0, err := net.AddBus("grid", 110)
	if err != nil {
		return nil, err
	}
	b1, err := net.AddBus("load", 110)
	if err != nil {
		return nil, err
	}
	if _, err = net.AddLine(b0, b1, lineXOhm/5, lineXOhm, 0, 0.5); err != nil {
		return nil, err
	}
	if _, err = net.AddLoad(b1, loadMW, loadMW/4); err != nil {
		return nil, err
	}
	if _, err = net.AddExtGrid(b0, 1.0, 0); err != nil {
		return nil, err
	}
	return net, nil
}

// ThreeBusMeshed returns a triangle of 110 kV lines with an external grid,
// a voltage-controlled machine, and a load — the smallest meshed case that
// exercises Ref, PV and PQ buses at once.
//
//	    [B0]──────[B1]
//	      \        /
//	       \      /
//	        [B2]
//	B0: ext grid   B1: load loadMW   B2: gen 20 MW @ 1.02 pu (+ small load)
func ThreeBusMeshed(loadMW float64) (*core.Network, error) {
	net := core.NewNetwork(core.WithName("three-bus-meshed"))
	b0, _ := net.AddBus("grid", 110)
	b1, _ := net.AddBus("load", 110)
	b2, _ := net.AddBus("gen", 110)
	for _, pair := range [][2]int{{b0, b1}, {b1, b2}, {b0, b2}} {
		if _, err := net.AddLine(pair[0], pair[1], 2, 10, 0, 0.5); err != nil {
			return nil, err
		}
	}
	if _, err := net.AddLoad(b1, loadMW, loadMW/4); err != nil {
		return nil, err
	}
	if _, err := net.AddLoad(b2, 5, 1); err != nil {
		return nil, err
	}
	if _, err := net.AddGen(b2, 20, 1.02); err != nil {
		return nil, err
	}
	if _, err := net.AddExtGrid(b0, 1.0, 0); err != nil {
		return nil, err
	}
	return net, nil
}

// FourBusRadial returns a 20 kV feeder for the sweep solver: three line
// sections in a row with a load on every section bus.
//
//	ext grid ──[B0]──[B1]──[B2]──[B3]
//	                  ld     ld    ld   (loadMW each)
func FourBusRadial(loadMW float64) (*core.Network, error) {
	net := core.NewNetwork(core.WithName("four-bus-radial"))
	prev, _ := net.AddBus("feed", 20)
	if _, err := net.AddExtGrid(prev, 1.0, 0); err != nil {
		return nil, err
	}
	for i := 1; i < 4; i++ {
		b, err := net.AddBus("sec", 20)
		if err != nil {
			return nil, err
		}
		if _, err = net.AddLine(prev, b, 0.4, 0.8, 0, 0.3); err != nil {
			return nil, err
		}
		if _, err = net.AddLoad(b, loadMW, loadMW/5); err != nil {
			return nil, err
		}
		prev = b
	}
	return net, nil
}

// TrafoFeeder returns a 110/20 kV step-down feeder: external grid, one
// transformer, one medium-voltage line, one load. The smallest case that
// exercises transformer-parameter recycling.
//
//	ext grid ──[B0 110kV]──trafo──[B1 20kV]──line──[B2 20kV]── load
func TrafoFeeder(loadMW float64) (*core.Network, error) {
	net := core.NewNetwork(core.WithName("trafo-feeder"))
	b0, _ := net.AddBus("hv", 110)
	b1, _ := net.AddBus("mv", 20)
	b2, _ := net.AddBus("load", 20)
	if _, err := net.AddExtGrid(b0, 1.0, 0); err != nil {
		return nil, err
	}
	_, err := net.AddTrafo(core.Trafo{
		HVBus: b0, LVBus: b1,
		SnMVA: 25, VnHVKV: 110, VnLVKV: 20,
		VkPercent: 11, VkrPercent: 0.4,
		TapNeutral: 0, TapPos: 0, TapStepPercent: 1.5,
	})
	if err != nil {
		return nil, err
	}
	if _, err = net.AddLine(b1, b2, 0.3, 0.6, 0, 0.3); err != nil {
		return nil, err
	}
	if _, err = net.AddLoad(b2, loadMW, loadMW/4); err != nil {
		return nil, err
	}
	return net, nil
}

// BusOnly returns n energized buses with an external grid on the first one
// and no branches at all — the branch-less trivial case.
func BusOnly(n int) (*core.Network, error) {
	net := core.NewNetwork(core.WithName("bus-only"))
	for i := 0; i < n; i++ {
		if _, err := net.AddBus("island", 110); err != nil {
			return nil, err
		}
	}
	if _, err := net.AddExtGrid(0, 1.0, 0); err != nil {
		return nil, err
	}
	return net, nil
}
