package main

import (
	"fmt"
	"math"
)

// updateBio runs the biosphere layer for one tick, in the four stages of
// spec.md §4.5. Stage 2 writes the grid directly (a spawn is a fresh cell, not
// a conflict with anything else this tick); stages 3 and 4 read that
// post-stage-2 grid without mutating it (stage 3 sets only the display-only
// IsMining flag directly) and otherwise only queue commands, which are
// applied together in one commit pass at the end — "last pass's state, not
// mid-pass state" for every neighbor-dependent rule in both stages.
func (e *Engine) updateBio() {
	e.resetMiningFlags()

	species, humanExists := e.bioCensus()
	e.bioScheduledSpawns(species, humanExists)

	cmds := &bioCommands{}
	e.bioEvolution(cmds)
	e.bioMigrantStep(cmds)
	e.commitBio(cmds)
}

func (e *Engine) resetMiningFlags() {
	g := e.Grid
	for i := range g.cells {
		if g.cells[i].CrystalState == CrystalBio {
			g.cells[i].IsMining = false
		}
	}
}

// bioCensus is spec.md §4.5 Stage 1: the distinct speciesId set and whether
// any human (speciesId 0) settlement currently exists.
func (e *Engine) bioCensus() (map[int]bool, bool) {
	species := make(map[int]bool)
	humanExists := false
	g := e.Grid
	for i := range g.cells {
		c := &g.cells[i]
		if c.CrystalState == CrystalBio && c.BioAttributes != nil {
			species[c.BioAttributes.SpeciesID] = true
			if c.BioAttributes.SpeciesID == 0 {
				humanExists = true
			}
		}
	}
	return species, humanExists
}

// bioScheduledSpawns is spec.md §4.5 Stage 2: the random-species schedule and
// the human spawn/extinction/respawn lifecycle.
func (e *Engine) bioScheduledSpawns(species map[int]bool, humanExists bool) {
	bp := e.Params.Bio

	if len(species) < bp.BioAutoSpawnCount && bp.BioAutoSpawnInterval > 0 && e.TimeStep%uint64(bp.BioAutoSpawnInterval) == 0 {
		e.spawnRandomSpecies()
	}

	switch {
	case !humanExists && e.IsFirstSpawn && e.TimeStep >= 50:
		e.spawnHuman()
		e.IsFirstSpawn = false
	case !humanExists:
		if e.BioExtinctionStep == nil {
			step := e.TimeStep
			e.BioExtinctionStep = &step
			e.Events.record(e.TimeStep, EventHumanExtinction, "humanity has gone extinct")
		} else if e.TimeStep-*e.BioExtinctionStep >= e.Params.Human.HumanRespawnDelay {
			e.spawnHuman()
			e.BioExtinctionStep = nil
			e.Events.record(e.TimeStep, EventHumanRespawn, "a new human settlement rises")
		}
	default:
		e.BioExtinctionStep = nil
	}
}

// bioCommands accumulates every membership-changing write stage 3 and stage 4
// propose this tick, for a single commit pass (spec.md §4.5, final paragraph).
type bioCommands struct {
	clear           []Position           // crystalState -> Empty (always wins over newSettlement on the same cell)
	prosperity      map[Position]float64 // surviving settlement's new prosperity
	migrationConvert map[Position]Migrant // settlement -> migrant, same cell
	newSettlements  []placedSettlement
	migrantAdds     []placedMigrant
	migrantRemoves  []Position
	migrantMoves    []migrantMove
	energyBonus     map[Position]float64 // extinction bonus destined for an Alpha/Beta neighbor
	prosperityBonus map[Position]float64 // extinction bonus destined for a Bio neighbor
}

type placedSettlement struct {
	pos        Position
	attrs      BioAttributes
	prosperity float64
}

type placedMigrant struct {
	pos Position
	m   Migrant
}

type migrantMove struct {
	from, to Position
	m        Migrant
}

func newBioCommands() *bioCommands {
	return &bioCommands{
		prosperity:       make(map[Position]float64),
		migrationConvert: make(map[Position]Migrant),
		energyBonus:      make(map[Position]float64),
		prosperityBonus:  make(map[Position]float64),
	}
}

// bioEvolution is spec.md §4.5 Stage 3, run once per Bio cell over the
// post-stage-2 grid.
func (e *Engine) bioEvolution(cmds *bioCommands) {
	if cmds.prosperity == nil {
		*cmds = *newBioCommands()
	}
	g := e.Grid
	bp := e.Params.Bio

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := g.At(x, y)
			if c.CrystalState != CrystalBio || c.BioAttributes == nil {
				continue
			}
			a := c.BioAttributes
			pos := Position{x, y}

			if c.Temperature < a.SurvivalMinTemp || c.Temperature > a.SurvivalMaxTemp {
				cmds.clear = append(cmds.clear, pos)
				e.queueExtinctionBonus(cmds, x, y)
				continue
			}

			dp := 0.0
			growth := a.ProsperityGrowth
			if a.SpeciesID != 0 && growth < bp.MinProsperityGrowth {
				growth = bp.MinProsperityGrowth
			}
			if c.Temperature >= a.MinTemp && c.Temperature <= a.MaxTemp {
				dp += growth
			} else {
				deviation := bandDistance(c.Temperature, a.MinTemp, a.MaxTemp)
				dp += growth - deviation*a.ProsperityDecay
			}

			alphaCount := 0
			for _, n := range g.neighbors(x, y, false) {
				if n.CrystalState == CrystalBio && n.BioAttributes != nil {
					if n.BioAttributes.SpeciesID == a.SpeciesID {
						dp += bp.SameSpeciesBonus
					} else if n.Prosperity > c.Prosperity {
						dp -= bp.CompetitionPenalty * (1 + (n.Prosperity-c.Prosperity)/100)
					}
				}
				if n.CrystalState == CrystalAlpha {
					alphaCount++
				}
			}
			if alphaCount > 0 {
				base := math.Max(a.ProsperityGrowth+0.2, a.AlphaRadiationDamage)
				immunity := math.Max(0, 1-c.Prosperity/bp.RadiationImmunityThreshold)
				dp -= float64(alphaCount) * base * immunity
			}

			if betaPos, ok := e.pickBetaNeighbor(x, y); ok {
				cmds.clear = append(cmds.clear, betaPos)
				dp += a.MiningReward
				c.IsMining = true
			}

			newProsperity := c.Prosperity + dp

			if newProsperity <= 0 {
				cmds.clear = append(cmds.clear, pos)
				e.queueExtinctionBonus(cmds, x, y)
				continue
			}

			if newProsperity > a.ExpansionThreshold {
				mutated, isNewSpecies := e.mutateAttributes(*a)
				expanded := e.expandSettlement(x, y, mutated, isNewSpecies, cmds)
				if expanded {
					newProsperity -= 30
				}
			}

			if newProsperity < a.MigrationThreshold && newProsperity > 0 {
				cmds.migrationConvert[pos] = Migrant{Prosperity: newProsperity, Attributes: *a}
				continue
			}

			cmds.prosperity[pos] = newProsperity
		}
	}
}

// bandDistance is the distance from t to the closed interval [lo,hi]: 0 if t
// lies inside it.
func bandDistance(t, lo, hi float64) float64 {
	if t < lo {
		return lo - t
	}
	if t > hi {
		return t - hi
	}
	return 0
}

// pickBetaNeighbor returns a uniformly random Beta neighbor of (x,y), if any.
func (e *Engine) pickBetaNeighbor(x, y int) (Position, bool) {
	var candidates []Position
	for _, pos := range e.Grid.neighborPositions(x, y, false) {
		if e.Grid.At(pos[0], pos[1]).CrystalState == CrystalBeta {
			candidates = append(candidates, Position{pos[0], pos[1]})
		}
	}
	if len(candidates) == 0 {
		return Position{}, false
	}
	return candidates[e.rng.Intn(len(candidates))], true
}

// expandSettlement is spec.md §4.5 Stage 3 step 6: either a migrant spawn or a
// settlement spawn. It returns whether the parent's prosperity should be
// debited by 30 — false only when no valid target existed at all.
func (e *Engine) expandSettlement(x, y int, mutated BioAttributes, isNewSpecies bool, cmds *bioCommands) bool {
	g := e.Grid
	if isNewSpecies {
		e.Events.record(e.TimeStep, EventNewSpecies, fmt.Sprintf("a new species (%d) emerges by mutation", mutated.SpeciesID))
	}

	if e.rng.Float64() < e.Params.Bio.MigrantExpansionProb {
		self := g.At(x, y)
		if self.Migrant == nil {
			cmds.migrantAdds = append(cmds.migrantAdds, placedMigrant{Position{x, y}, Migrant{Prosperity: 30, Attributes: mutated}})
			return true
		}
		var candidates []Position
		for _, pos := range g.neighborPositions(x, y, false) {
			if g.At(pos[0], pos[1]).Migrant == nil {
				candidates = append(candidates, Position{pos[0], pos[1]})
			}
		}
		if len(candidates) == 0 {
			return false
		}
		target := candidates[e.rng.Intn(len(candidates))]
		cmds.migrantAdds = append(cmds.migrantAdds, placedMigrant{target, Migrant{Prosperity: 30, Attributes: mutated}})
		return true
	}

	var empties []Position
	for _, pos := range g.neighborPositions(x, y, false) {
		if g.At(pos[0], pos[1]).CrystalState == CrystalEmpty {
			empties = append(empties, Position{pos[0], pos[1]})
		}
	}
	if len(empties) == 0 {
		self := g.At(x, y)
		if self.Migrant == nil {
			cmds.migrantAdds = append(cmds.migrantAdds, placedMigrant{Position{x, y}, Migrant{Prosperity: 30, Attributes: mutated}})
			return true
		}
		return false
	}
	target := empties[e.rng.Intn(len(empties))]
	cmds.newSettlements = append(cmds.newSettlements, placedSettlement{target, mutated, 30})
	return true
}

// mutateAttributes builds a candidate offspring genome (spec.md §4.5 step 6):
// each listed field independently mutates with probability mutationRate, and
// the offspring is flagged a new species if any field's relative change
// exceeds newSpeciesThreshold.
func (e *Engine) mutateAttributes(a BioAttributes) (BioAttributes, bool) {
	bp := e.Params.Bio
	mutated := a.Clone()
	isNewSpecies := false

	mutateField := func(value *float64) {
		if e.rng.Float64() >= bp.MutationRate {
			return
		}
		sign := 1.0
		if e.rng.Float64() < 0.5 {
			sign = -1.0
		}
		before := *value
		*value += sign * (*value) * bp.MutationStrength
		if before != 0 && math.Abs((*value-before)/before) > bp.NewSpeciesThreshold {
			isNewSpecies = true
		}
	}

	mutateField(&mutated.MinTemp)
	mutateField(&mutated.MaxTemp)
	mutateField(&mutated.ProsperityGrowth)
	mutateField(&mutated.ProsperityDecay)
	mutateField(&mutated.ExpansionThreshold)
	mutateField(&mutated.MiningReward)
	mutateField(&mutated.MigrationThreshold)

	if isNewSpecies {
		mutated.SpeciesID = e.rng.Intn(1<<31-1) + 1
		mutated.Color = randomColor(e.rng)
	}
	return mutated, isNewSpecies
}

// queueExtinctionBonus is spec.md §4.5.2: on a bio death, distribute
// extinctionBonus/|neighbors| to each neighbor, Alpha/Beta gaining stored
// energy and Bio gaining prosperity; void and empty neighbors get nothing, and
// the mantle layer is never refunded.
func (e *Engine) queueExtinctionBonus(cmds *bioCommands, x, y int) {
	neighbors := e.Grid.neighborPositions(x, y, true)
	if len(neighbors) == 0 {
		return
	}
	share := e.Params.Bio.ExtinctionBonus / float64(len(neighbors))
	for _, p := range neighbors {
		n := e.Grid.At(p[0], p[1])
		pos := Position{p[0], p[1]}
		switch n.CrystalState {
		case CrystalAlpha, CrystalBeta:
			cmds.energyBonus[pos] += share
		case CrystalBio:
			cmds.prosperityBonus[pos] += share
		}
	}
}

// bioMigrantStep is spec.md §4.5 Stage 4, run once per cell carrying a
// migrant, over the same pre-commit grid stage 3 read.
func (e *Engine) bioMigrantStep(cmds *bioCommands) {
	g := e.Grid
	claimed := make(map[Position]bool)

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := g.At(x, y)
			if c.Migrant == nil {
				continue
			}
			pos := Position{x, y}
			m := *c.Migrant
			m.Prosperity--
			if m.Prosperity <= 0 {
				cmds.migrantRemoves = append(cmds.migrantRemoves, pos)
				continue
			}

			if c.CrystalState == CrystalEmpty && c.Temperature >= m.Attributes.MinTemp && c.Temperature <= m.Attributes.MaxTemp {
				if !claimed[pos] {
					claimed[pos] = true
					cmds.newSettlements = append(cmds.newSettlements, placedSettlement{pos, m.Attributes, m.Prosperity})
					cmds.migrantRemoves = append(cmds.migrantRemoves, pos)
					continue
				}
			}

			target, ok := bestMigrantTarget(g, x, y, m.Attributes)
			if !ok || target == pos || claimed[target] {
				cmds.migrantAdds = append(cmds.migrantAdds, placedMigrant{pos, m})
				continue
			}
			claimed[target] = true
			cmds.migrantMoves = append(cmds.migrantMoves, migrantMove{pos, target, m})
		}
	}
}

// bestMigrantTarget finds the land neighbor whose temperature is closest to
// the migrant's preferred band midpoint (spec.md §4.5 Stage 4).
func bestMigrantTarget(g *Grid, x, y int, attrs BioAttributes) (Position, bool) {
	mid := (attrs.MinTemp + attrs.MaxTemp) / 2
	best := Position{x, y}
	bestDist := math.Inf(1)
	found := false
	for _, pos := range g.neighborPositions(x, y, false) {
		d := math.Abs(g.At(pos[0], pos[1]).Temperature - mid)
		if !found || d < bestDist {
			bestDist = d
			best = Position{pos[0], pos[1]}
			found = true
		}
	}
	return best, found
}

// commitBio applies every queued bio-layer write from stages 3 and 4 in one
// pass: crystalState -> Empty always wins over a queued new settlement on the
// same cell; an explicit migrant add onto a now-non-empty cell still places
// the migrant alongside it, since migrants coexist with any resource state
// (spec.md §4.5, final paragraph).
func (e *Engine) commitBio(cmds *bioCommands) {
	g := e.Grid
	cleared := make(map[Position]bool, len(cmds.clear))

	for _, pos := range cmds.clear {
		c := g.At(pos.X, pos.Y)
		c.CrystalState = CrystalEmpty
		c.BioAttributes = nil
		c.Prosperity = 0
		cleared[pos] = true
	}

	for pos, p := range cmds.prosperity {
		if cleared[pos] {
			continue
		}
		g.At(pos.X, pos.Y).Prosperity = p
	}

	for pos, m := range cmds.migrationConvert {
		if cleared[pos] {
			continue
		}
		c := g.At(pos.X, pos.Y)
		c.CrystalState = CrystalEmpty
		c.BioAttributes = nil
		c.Prosperity = 0
		mCopy := m
		c.Migrant = &mCopy
	}

	for _, s := range cmds.newSettlements {
		if cleared[s.pos] {
			continue
		}
		c := g.At(s.pos.X, s.pos.Y)
		if c.CrystalState != CrystalEmpty {
			continue
		}
		attrs := s.attrs
		c.CrystalState = CrystalBio
		c.BioAttributes = &attrs
		c.Prosperity = s.prosperity
	}

	for _, rm := range cmds.migrantRemoves {
		g.At(rm.X, rm.Y).Migrant = nil
	}

	for _, mv := range cmds.migrantMoves {
		g.At(mv.from.X, mv.from.Y).Migrant = nil
		mCopy := mv.m
		g.At(mv.to.X, mv.to.Y).Migrant = &mCopy
	}

	for _, add := range cmds.migrantAdds {
		mCopy := add.m
		g.At(add.pos.X, add.pos.Y).Migrant = &mCopy
	}

	for pos, amount := range cmds.energyBonus {
		c := g.At(pos.X, pos.Y)
		if c.CrystalState != CrystalAlpha && c.CrystalState != CrystalBeta {
			continue
		}
		c.StoredEnergy += amount
		if c.StoredEnergy > e.Params.Crystal.MaxCrystalEnergy {
			c.StoredEnergy = e.Params.Crystal.MaxCrystalEnergy
		}
	}
	for pos, amount := range cmds.prosperityBonus {
		c := g.At(pos.X, pos.Y)
		if c.CrystalState != CrystalBio {
			continue
		}
		c.Prosperity += amount
	}
}

// spawnRandomSpecies is spec.md §4.5.1: find a land, Empty cell with no Alpha
// within Chebyshev radius 3, and found a fresh species there.
func (e *Engine) spawnRandomSpecies() {
	g := e.Grid
	var candidates []Position
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := g.At(x, y)
			if !c.Exists || c.CrystalState != CrystalEmpty {
				continue
			}
			if hasAlphaWithin(g, x, y, 3) {
				continue
			}
			candidates = append(candidates, Position{x, y})
		}
	}
	if len(candidates) == 0 {
		return
	}
	pos := candidates[e.rng.Intn(len(candidates))]

	human := e.Params.Human
	scale := func(v float64) float64 { return v * (0.5 + e.rng.Float64()) }
	attrs := BioAttributes{
		MinTemp:             scale(human.HumanMinTemp),
		MaxTemp:             scale(human.HumanMaxTemp),
		SurvivalMinTemp:     human.HumanSurvivalMinTemp,
		SurvivalMaxTemp:     human.HumanSurvivalMaxTemp,
		ProsperityGrowth:    scale(human.HumanProsperityGrowth),
		ProsperityDecay:     scale(human.HumanProsperityDecay),
		ExpansionThreshold:  scale(human.HumanExpansionThreshold),
		MigrationThreshold:  scale(human.HumanMigrationThreshold),
		MiningReward:        scale(human.HumanMiningReward),
		AlphaRadiationDamage: scale(human.AlphaRadiationDamage),
		SpeciesID:           e.rng.Intn(1<<31-1) + 1,
		Color:               randomColor(e.rng),
	}

	c := g.At(pos.X, pos.Y)
	c.CrystalState = CrystalBio
	c.BioAttributes = &attrs
	c.Prosperity = 50
}

func hasAlphaWithin(g *Grid, x, y, radius int) bool {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			nx, ny := x+dx, y+dy
			if !g.InBounds(nx, ny) {
				continue
			}
			if g.At(nx, ny).CrystalState == CrystalAlpha {
				return true
			}
		}
	}
	return false
}

// spawnHuman is spec.md §4.5.3: force-spawn at the configured point if set,
// else choose uniformly among land Empty cells in the human preferred band.
func (e *Engine) spawnHuman() {
	g := e.Grid
	human := e.Params.Human
	attrs := BioAttributes{
		MinTemp:             human.HumanMinTemp,
		MaxTemp:             human.HumanMaxTemp,
		SurvivalMinTemp:     human.HumanSurvivalMinTemp,
		SurvivalMaxTemp:     human.HumanSurvivalMaxTemp,
		ProsperityGrowth:    human.HumanProsperityGrowth,
		ProsperityDecay:     human.HumanProsperityDecay,
		ExpansionThreshold:  human.HumanExpansionThreshold,
		MigrationThreshold:  human.HumanMigrationThreshold,
		MiningReward:        human.HumanMiningReward,
		AlphaRadiationDamage: human.AlphaRadiationDamage,
		SpeciesID:           0,
		Color:               "#c8c8c8",
	}

	if human.HumanSpawnPoint != nil {
		p := *human.HumanSpawnPoint
		if g.InBounds(p.X, p.Y) {
			c := g.At(p.X, p.Y)
			c.CrystalState = CrystalBio
			c.BioAttributes = &attrs
			c.Prosperity = 50
		}
		return
	}

	var candidates []Position
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := g.At(x, y)
			if !c.Exists || c.CrystalState != CrystalEmpty {
				continue
			}
			if c.Temperature < human.HumanMinTemp || c.Temperature > human.HumanMaxTemp {
				continue
			}
			candidates = append(candidates, Position{x, y})
		}
	}
	if len(candidates) == 0 {
		return
	}
	pos := candidates[e.rng.Intn(len(candidates))]
	c := g.At(pos.X, pos.Y)
	c.CrystalState = CrystalBio
	c.BioAttributes = &attrs
	c.Prosperity = 50
}

// randomColor draws a display color the way the teacher's species-coloring
// does (a bounded palette sample), used whenever a fresh speciesId is minted.
func randomColor(rng randSource) string {
	palette := []string{
		"#e6194b", "#3cb44b", "#ffe119", "#4363d8", "#f58231",
		"#911eb4", "#46f0f0", "#f032e6", "#bcf60c", "#fabebe",
	}
	return palette[rng.Intn(len(palette))]
}
