package main

// updateCrystal runs the resource layer for one tick: metabolism, then the
// Alpha network flow-balance step, then probabilistic Alpha propagation
// (spec.md §4.4), each a complete staged sub-pass over the grid.
func (e *Engine) updateCrystal() {
	e.crystalMetabolism()
	e.crystalNetworkFlow()
	e.crystalPropagation()
}

// crystalMetabolism is spec.md §4.4 sub-pass 1: absorption, storm burst,
// maintenance, clamp, and Alpha→Beta demotion on exhaustion. It mutates each
// cell independently, so no staging buffer is needed here.
func (e *Engine) crystalMetabolism() {
	g := e.Grid
	cp := e.Params.Crystal

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := g.At(x, y)
			if !c.Exists || c.CrystalState == CrystalEmpty || c.CrystalState == CrystalBio {
				continue
			}

			c.IsAbsorbing = false
			c.CrystalEnergy = 0

			if c.CrystalState == CrystalAlpha && c.MantleEnergy > 10 {
				a := cp.MantleAbsorption * c.MantleEnergy
				c.StoredEnergy += a
				c.CrystalEnergy += a
				c.IsAbsorbing = true
			}

			if c.HasThunderstorm {
				c.StoredEnergy += cp.ThunderstormEnergy
				c.CrystalEnergy += cp.ThunderstormEnergy
			}

			if c.CrystalState == CrystalAlpha {
				c.StoredEnergy -= cp.AlphaEnergyDemand
			} else {
				c.StoredEnergy -= cp.BetaEnergyDemand
			}

			if c.StoredEnergy > cp.MaxCrystalEnergy {
				c.StoredEnergy = cp.MaxCrystalEnergy
			}

			if c.StoredEnergy <= 0 && c.CrystalState == CrystalAlpha {
				c.CrystalState = CrystalBeta
				c.StoredEnergy = 0
			}
		}
	}
}

// crystalNetworkFlow is spec.md §4.4 sub-pass 2: Alpha cells push their
// surplus toward poorer Alpha neighbors. Deltas are accumulated in a staging
// map before commit, so the numeric totals are invariant under neighbor
// iteration order even though the display-only EnergyFlow record is not
// (spec.md §5).
func (e *Engine) crystalNetworkFlow() {
	g := e.Grid
	cp := e.Params.Crystal

	for i := range g.cells {
		g.cells[i].EnergyFlow = nil
	}

	delta := make([]float64, len(g.cells))

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := g.At(x, y)
			if !c.Exists || c.CrystalState != CrystalAlpha {
				continue
			}

			for _, pos := range g.neighborPositions(x, y, false) {
				n := g.At(pos[0], pos[1])
				if n.CrystalState != CrystalAlpha || c.StoredEnergy <= n.StoredEnergy {
					continue
				}

				diff := c.StoredEnergy - n.StoredEnergy
				transfer := diff * 0.1 * cp.EnergySharingRate
				if transfer > 5 {
					transfer = 5
				}
				if c.StoredEnergy-transfer < n.StoredEnergy+transfer {
					transfer = diff * 0.4
				}
				if transfer <= 0.1 {
					continue
				}

				delta[g.index(x, y)] -= transfer
				delta[g.index(pos[0], pos[1])] += transfer * (1 - cp.EnergyDecayRate)
				c.EnergyFlow = append(c.EnergyFlow, EnergyTransfer{ToX: pos[0], ToY: pos[1], Amount: transfer})
			}
		}
	}

	for i := range g.cells {
		c := &g.cells[i]
		if c.CrystalState != CrystalAlpha {
			continue
		}
		c.StoredEnergy += delta[i]
		if c.StoredEnergy < 0 {
			c.StoredEnergy = 0
		} else if c.StoredEnergy > cp.MaxCrystalEnergy {
			c.StoredEnergy = cp.MaxCrystalEnergy
		}
	}
}

// alphaSeed is a queued Alpha-propagation target (spec.md §4.4 sub-pass 3).
type alphaSeed struct {
	x, y int
}

// crystalPropagation is spec.md §4.4 sub-pass 3: a sufficiently energetic
// Alpha cell seeds a new Alpha on a random empty land neighbor. Targets are
// queued, then applied in order so a cell claimed by an earlier parent this
// tick is skipped by a later one.
func (e *Engine) crystalPropagation() {
	g := e.Grid
	cp := e.Params.Crystal
	var queue []alphaSeed

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := g.At(x, y)
			if !c.Exists || c.CrystalState != CrystalAlpha || c.StoredEnergy <= 2*cp.ExpansionCost {
				continue
			}

			var candidates [][2]int
			for _, pos := range g.neighborPositions(x, y, false) {
				if g.At(pos[0], pos[1]).CrystalState == CrystalEmpty {
					candidates = append(candidates, pos)
				}
			}
			if len(candidates) == 0 {
				continue
			}
			target := candidates[e.rng.Intn(len(candidates))]
			queue = append(queue, alphaSeed{target[0], target[1]})
			c.StoredEnergy -= cp.ExpansionCost
		}
	}

	for _, seed := range queue {
		c := g.At(seed.x, seed.y)
		if c.CrystalState != CrystalEmpty {
			continue
		}
		c.CrystalState = CrystalAlpha
		c.StoredEnergy = 10
	}
}
