package pfcase

// Reduce derives the ReducedCase from a FullCase by dropping
// out-of-service elements and compacting bus indices.
//
// Steps:
//  1. Keep every in-service, non-isolated bus, preserving order; record the
//     full-case position of each kept bus (O(B)).
//  2. Keep every in-service branch whose two endpoint buses were kept, with
//     endpoints remapped to compacted positions (O(L)).
//  3. Keep every in-service generator on a kept bus, remapped (O(G)).
//  4. Carry the FullCase's Internal pointer over unchanged, so a recycled
//     solve reuses the previously built admittance state.
//
// Returns ErrEmptyCase when no bus survives and ErrNoReference when no
// reference bus survives.
//
// Complexity: O(B + L + G) time and space.
func Reduce(fc *FullCase) (*ReducedCase, error) {
	rc := &ReducedCase{BaseMVA: fc.BaseMVA, Internal: fc.Internal}

	// 1) Compact the bus array.
	pos := make([]int, len(fc.Buses)) // full position -> reduced position
	for i := range pos {
		pos[i] = -1
	}
	hasRef := false
	for i, b := range fc.Buses {
		if !b.InService || b.Type == Isolated {
			continue
		}
		pos[i] = len(rc.Buses)
		rc.Buses = append(rc.Buses, b)
		rc.BusOf = append(rc.BusOf, i)
		if b.Type == Ref {
			hasRef = true
		}
	}
	if len(rc.Buses) == 0 {
		return nil, ErrEmptyCase
	}
	if !hasRef {
		return nil, ErrNoReference
	}

	// 2) Branches: both endpoints must survive.
	for i, br := range fc.Branches {
		if !br.InService || pos[br.From] < 0 || pos[br.To] < 0 {
			continue
		}
		br.From, br.To = pos[br.From], pos[br.To]
		rc.Branches = append(rc.Branches, br)
		rc.BranchOf = append(rc.BranchOf, i)
	}

	// 3) Generators on surviving buses.
	for i, g := range fc.Gens {
		if !g.InService || pos[g.Bus] < 0 {
			continue
		}
		g.Bus = pos[g.Bus]
		rc.Gens = append(rc.Gens, g)
		rc.GenOf = append(rc.GenOf, i)
	}

	return rc, nil
}

// Merge writes post-solve reduced arrays back into the full case at the
// recorded in-service positions. Out-of-service entries keep their
// pre-solve values. Only result fields are written: bus voltages, branch
// end flows, generator outputs.
func Merge(fc *FullCase, rc *ReducedCase, buses []Bus, branches []Branch, gens []Gen) {
	for i, fi := range rc.BusOf {
		fc.Buses[fi].VM = buses[i].VM
		fc.Buses[fi].VA = buses[i].VA
	}
	for i, fi := range rc.BranchOf {
		fc.Branches[fi].PF = branches[i].PF
		fc.Branches[fi].QF = branches[i].QF
		fc.Branches[fi].PT = branches[i].PT
		fc.Branches[fi].QT = branches[i].QT
	}
	for i, fi := range rc.GenOf {
		fc.Gens[fi].P = gens[i].P
		fc.Gens[fi].Q = gens[i].Q
	}
}
