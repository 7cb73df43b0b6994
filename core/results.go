package core

// ResetResults empties every result table. Called before an AC solve that
// does not reuse prior results as its initial guess.
func (n *Network) ResetResults() {
	n.ResBus = nil
	n.ResLine = nil
	n.ResTrafo = nil
	n.ResGen = nil
	n.ResExtGrid = nil
}

// VerifyResults checks that existing result tables are shape-consistent
// with the element tables, so they can be reused as an initial guess.
// Empty tables are consistent (there is simply nothing to reuse).
// Returns ErrResultShape on any length mismatch.
func (n *Network) VerifyResults() error {
	if len(n.ResBus) != 0 && len(n.ResBus) != len(n.Buses) {
		return ErrResultShape
	}
	if len(n.ResLine) != 0 && len(n.ResLine) != len(n.Lines) {
		return ErrResultShape
	}
	if len(n.ResTrafo) != 0 && len(n.ResTrafo) != len(n.Trafos) {
		return ErrResultShape
	}
	if len(n.ResGen) != 0 && len(n.ResGen) != len(n.Gens) {
		return ErrResultShape
	}
	if len(n.ResExtGrid) != 0 && len(n.ResExtGrid) != len(n.ExtGrids) {
		return ErrResultShape
	}
	return nil
}

// HasResults reports whether a populated bus result table exists.
func (n *Network) HasResults() bool {
	return len(n.ResBus) == len(n.Buses) && len(n.Buses) > 0
}
