package core

// This file provides the mutating primitives of Network: element
// constructors with validation, auxiliary-element bookkeeping, and Clone.
// Every AddX method returns the new element's table index.

// AddBus appends a bus and returns its index.
// Returns ErrBadBaseVoltage if vnKV is not positive.
func (n *Network) AddBus(name string, vnKV float64) (int, error) {
	if vnKV <= 0 {
		return 0, ErrBadBaseVoltage
	}
	n.Buses = append(n.Buses, Bus{Name: name, VnKV: vnKV, InService: true})
	return len(n.Buses) - 1, nil
}

// AddLine appends a line between two existing buses and returns its index.
// Returns ErrBusNotFound for dangling endpoints and ErrBadImpedance when
// both R and X are zero (a zero-impedance branch cannot be stamped).
func (n *Network) AddLine(from, to int, rOhm, xOhm, bMicroS, maxIKA float64) (int, error) {
	if !n.hasBus(from) || !n.hasBus(to) {
		return 0, ErrBusNotFound
	}
	if rOhm == 0 && xOhm == 0 {
		return 0, ErrBadImpedance
	}
	n.Lines = append(n.Lines, Line{
		FromBus: from, ToBus: to,
		ROhm: rOhm, XOhm: xOhm, BMicroS: bMicroS,
		MaxIKA:    maxIKA,
		InService: true,
	})
	return len(n.Lines) - 1, nil
}

// AddTrafo appends a two-winding transformer and returns its index.
// Returns ErrBusNotFound for dangling endpoints and ErrBadImpedance when
// the short-circuit voltage or the rating is not positive.
func (n *Network) AddTrafo(t Trafo) (int, error) {
	if !n.hasBus(t.HVBus) || !n.hasBus(t.LVBus) {
		return 0, ErrBusNotFound
	}
	if t.VkPercent <= 0 || t.SnMVA <= 0 {
		return 0, ErrBadImpedance
	}
	t.InService = true
	n.Trafos = append(n.Trafos, t)
	return len(n.Trafos) - 1, nil
}

// AddGen appends a voltage-controlled machine and returns its index.
func (n *Network) AddGen(bus int, pMW, vmPU float64) (int, error) {
	if !n.hasBus(bus) {
		return 0, ErrBusNotFound
	}
	n.Gens = append(n.Gens, Gen{Bus: bus, PMW: pMW, VMPU: vmPU, InService: true})
	return len(n.Gens) - 1, nil
}

// AddLoad appends a PQ load and returns its index.
func (n *Network) AddLoad(bus int, pMW, qMVAr float64) (int, error) {
	if !n.hasBus(bus) {
		return 0, ErrBusNotFound
	}
	n.Loads = append(n.Loads, Load{Bus: bus, PMW: pMW, QMVAr: qMVAr, InService: true})
	return len(n.Loads) - 1, nil
}

// AddExtGrid appends an external-grid connection and returns its index.
// The connected bus becomes the reference (slack) bus of subsequent solves.
func (n *Network) AddExtGrid(bus int, vmPU, vaDegree float64) (int, error) {
	if !n.hasBus(bus) {
		return 0, ErrBusNotFound
	}
	n.ExtGrids = append(n.ExtGrids, ExtGrid{Bus: bus, VMPU: vmPU, VADegree: vaDegree, InService: true})
	return len(n.ExtGrids) - 1, nil
}

// hasBus reports whether idx addresses an existing bus.
func (n *Network) hasBus(idx int) bool {
	return idx >= 0 && idx < len(n.Buses)
}

// InjectAuxGen appends a transient auxiliary machine (e.g. a slack machine
// realizing an external grid for the duration of one solve) and returns its
// index. Auxiliary machines are indistinguishable from regular ones for the
// case builder but are removed by RemoveAuxGens.
func (n *Network) InjectAuxGen(bus int, pMW, vmPU float64) int {
	n.Gens = append(n.Gens, Gen{Bus: bus, PMW: pMW, VMPU: vmPU, InService: true, aux: true})
	return len(n.Gens) - 1
}

// IsAuxGen reports whether machine idx was injected by InjectAuxGen.
func (n *Network) IsAuxGen(idx int) bool {
	return idx >= 0 && idx < len(n.Gens) && n.Gens[idx].aux
}

// RemoveAuxGens removes every auxiliary machine. Idempotent: calling it on
// a network without auxiliary machines is a no-op.
func (n *Network) RemoveAuxGens() {
	kept := n.Gens[:0]
	for _, g := range n.Gens {
		if !g.aux {
			kept = append(kept, g)
		}
	}
	n.Gens = kept
}

// Clone returns a deep copy of the network's element and result tables.
// The recycle cache (PPC) is NOT cloned: a copy starts cold.
func (n *Network) Clone() *Network {
	c := &Network{
		Name:      n.Name,
		SnMVA:     n.SnMVA,
		Converged: n.Converged,
	}
	c.Buses = append([]Bus(nil), n.Buses...)
	c.Lines = append([]Line(nil), n.Lines...)
	c.Trafos = append([]Trafo(nil), n.Trafos...)
	c.Gens = append([]Gen(nil), n.Gens...)
	c.Loads = append([]Load(nil), n.Loads...)
	c.ExtGrids = append([]ExtGrid(nil), n.ExtGrids...)
	c.ResBus = append([]BusResult(nil), n.ResBus...)
	c.ResLine = append([]BranchResult(nil), n.ResLine...)
	c.ResTrafo = append([]BranchResult(nil), n.ResTrafo...)
	c.ResGen = append([]GenResult(nil), n.ResGen...)
	c.ResExtGrid = append([]GenResult(nil), n.ResExtGrid...)
	return c
}
