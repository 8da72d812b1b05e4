package main

import "testing"

func TestBioEvolutionGrowsProsperityInBand(t *testing.T) {
	e := New(10, 10, DefaultParameters(), 20)
	// New() seeds an Alpha crystal core around the grid center; clear it so
	// this settlement has no neighbors of interest, per the scenario.
	for _, pos := range e.Grid.neighborPositions(5, 5, true) {
		e.Grid.At(pos[0], pos[1]).CrystalState = CrystalEmpty
	}
	c := e.Grid.At(5, 5)
	c.Exists = true
	c.Temperature = 20
	c.CrystalState = CrystalBio
	c.Prosperity = 10
	attrs := BioAttributes{
		MinTemp: 7, MaxTemp: 34,
		SurvivalMinTemp: -20, SurvivalMaxTemp: 50,
		ProsperityGrowth: 0.5, ProsperityDecay: 0.05,
		ExpansionThreshold: 1000, MigrationThreshold: -1000,
		MiningReward: 5, AlphaRadiationDamage: 0.3,
		SpeciesID: 0,
	}
	c.BioAttributes = &attrs

	cmds := newBioCommands()
	e.bioEvolution(cmds)
	e.bioMigrantStep(cmds)
	e.commitBio(cmds)

	if c.Prosperity <= 10 || c.Prosperity > 10.6 {
		t.Fatalf("expected prosperity to grow by roughly 0.5, got %f", c.Prosperity)
	}
}

func TestBioEvolutionSurvivalBandExcursionClearsCellAndPaysExtinctionBonus(t *testing.T) {
	e := New(10, 10, DefaultParameters(), 21)
	c := e.Grid.At(5, 5)
	c.Exists = true
	c.Temperature = 200 // far outside any survival band
	c.CrystalState = CrystalBio
	c.Prosperity = 30
	attrs := BioAttributes{
		MinTemp: 7, MaxTemp: 34,
		SurvivalMinTemp: -20, SurvivalMaxTemp: 50,
		ProsperityGrowth: 0.5, ExpansionThreshold: 1000, MigrationThreshold: -1000,
	}
	c.BioAttributes = &attrs

	alphaNeighbor := e.Grid.At(6, 5)
	alphaNeighbor.Exists = true
	alphaNeighbor.CrystalState = CrystalAlpha
	alphaNeighbor.StoredEnergy = 0

	for _, pos := range e.Grid.neighborPositions(5, 5, true) {
		e.Grid.At(pos[0], pos[1]).Exists = true
	}

	cmds := newBioCommands()
	e.bioEvolution(cmds)
	e.bioMigrantStep(cmds)
	e.commitBio(cmds)

	if c.CrystalState != CrystalEmpty || c.BioAttributes != nil {
		t.Fatalf("expected the settlement to die on survival-band excursion, got state=%v", c.CrystalState)
	}
	bp := e.Params.Bio
	expectedShare := bp.ExtinctionBonus / float64(len(e.Grid.neighborPositions(5, 5, true)))
	if alphaNeighbor.StoredEnergy != expectedShare {
		t.Fatalf("expected the Alpha neighbor to receive its extinction-bonus share %f, got %f", expectedShare, alphaNeighbor.StoredEnergy)
	}
}

func TestBioEvolutionDeathByExhaustionClears(t *testing.T) {
	e := New(10, 10, DefaultParameters(), 22)
	c := e.Grid.At(5, 5)
	c.Exists = true
	c.Temperature = 20
	c.CrystalState = CrystalBio
	c.Prosperity = 0.01
	attrs := BioAttributes{
		MinTemp: 100, MaxTemp: 200, // out of band so growth is negative
		SurvivalMinTemp: -20, SurvivalMaxTemp: 50,
		ProsperityGrowth: 0.1, ProsperityDecay: 5,
		ExpansionThreshold: 1000, MigrationThreshold: -1000,
	}
	c.BioAttributes = &attrs

	cmds := newBioCommands()
	e.bioEvolution(cmds)
	e.bioMigrantStep(cmds)
	e.commitBio(cmds)

	if c.CrystalState != CrystalEmpty {
		t.Fatalf("expected a cell whose prosperity drops to <=0 to clear, got %v", c.CrystalState)
	}
}

func TestBioEvolutionMiningConsumesBetaNeighbor(t *testing.T) {
	e := New(10, 10, DefaultParameters(), 23)
	// Clear the seeded Alpha core from the neighborhood so the only
	// neighbor of interest is the Beta crystal placed below.
	for _, pos := range e.Grid.neighborPositions(5, 5, true) {
		e.Grid.At(pos[0], pos[1]).CrystalState = CrystalEmpty
	}
	c := e.Grid.At(5, 5)
	c.Exists = true
	c.Temperature = 20
	c.CrystalState = CrystalBio
	c.Prosperity = 10
	attrs := BioAttributes{
		MinTemp: 7, MaxTemp: 34,
		SurvivalMinTemp: -20, SurvivalMaxTemp: 50,
		ProsperityGrowth: 0, MiningReward: 5,
		ExpansionThreshold: 1000, MigrationThreshold: -1000,
	}
	c.BioAttributes = &attrs

	beta := e.Grid.At(5, 6)
	beta.Exists = true
	beta.CrystalState = CrystalBeta

	cmds := newBioCommands()
	e.bioEvolution(cmds)
	e.bioMigrantStep(cmds)
	e.commitBio(cmds)

	if beta.CrystalState != CrystalEmpty {
		t.Fatalf("expected the mined Beta neighbor to clear to Empty, got %v", beta.CrystalState)
	}
	if !c.IsMining {
		t.Fatal("expected the settlement to flag isMining this tick")
	}
	if c.Prosperity != 15 {
		t.Fatalf("expected prosperity to gain the mining reward, got %f", c.Prosperity)
	}
}

func TestBioEvolutionMigrationConversionBelowThreshold(t *testing.T) {
	e := New(10, 10, DefaultParameters(), 24)
	c := e.Grid.At(5, 5)
	c.Exists = true
	c.Temperature = 20
	c.CrystalState = CrystalBio
	c.Prosperity = 5
	attrs := BioAttributes{
		MinTemp: 7, MaxTemp: 34,
		SurvivalMinTemp: -20, SurvivalMaxTemp: 50,
		ProsperityGrowth: 0, MigrationThreshold: 1000, ExpansionThreshold: 100000,
	}
	c.BioAttributes = &attrs

	cmds := newBioCommands()
	e.bioEvolution(cmds)
	e.bioMigrantStep(cmds)
	e.commitBio(cmds)

	if c.CrystalState != CrystalEmpty || c.Migrant == nil {
		t.Fatalf("expected the struggling settlement to convert into a migrant, got state=%v migrant=%v", c.CrystalState, c.Migrant)
	}
}

func TestMigrantStepSettlesOnEmptyCellAtIdealTemperature(t *testing.T) {
	e := New(10, 10, DefaultParameters(), 25)
	c := e.Grid.At(5, 5)
	c.Exists = true
	c.CrystalState = CrystalEmpty
	attrs := BioAttributes{MinTemp: 10, MaxTemp: 30, SpeciesID: 9}
	c.Temperature = 20 // exactly (minTemp+maxTemp)/2
	c.Migrant = &Migrant{Prosperity: 40, Attributes: attrs}

	cmds := newBioCommands()
	e.bioMigrantStep(cmds)
	e.commitBio(cmds)

	if c.CrystalState != CrystalBio || c.BioAttributes == nil || c.BioAttributes.SpeciesID != 9 {
		t.Fatalf("expected the migrant to found a settlement here, got state=%v attrs=%v", c.CrystalState, c.BioAttributes)
	}
	if c.Migrant != nil {
		t.Fatal("expected the migrant to be consumed by settlement")
	}
}

func TestMigrantStepDecaysAndDiesAtZeroProsperity(t *testing.T) {
	e := New(10, 10, DefaultParameters(), 26)
	c := e.Grid.At(5, 5)
	c.Exists = true
	c.CrystalState = CrystalAlpha // not eligible to settle
	c.Migrant = &Migrant{Prosperity: 1, Attributes: BioAttributes{MinTemp: 10, MaxTemp: 30}}

	cmds := newBioCommands()
	e.bioMigrantStep(cmds)
	e.commitBio(cmds)

	if c.Migrant != nil {
		t.Fatal("expected a migrant at <=0 prosperity to be removed")
	}
}

func TestBioCensusFindsHumansAndSpeciesCount(t *testing.T) {
	e := New(10, 10, DefaultParameters(), 27)
	human := e.Grid.At(2, 2)
	human.Exists = true
	human.CrystalState = CrystalBio
	human.Prosperity = 10
	human.BioAttributes = &BioAttributes{SpeciesID: 0}

	alien := e.Grid.At(4, 4)
	alien.Exists = true
	alien.CrystalState = CrystalBio
	alien.Prosperity = 10
	alien.BioAttributes = &BioAttributes{SpeciesID: 7}

	species, humanExists := e.bioCensus()
	if !humanExists {
		t.Fatal("expected humanExists to be true")
	}
	if len(species) != 2 {
		t.Fatalf("expected 2 distinct species, got %d", len(species))
	}
}

func TestSpawnHumanForcesConfiguredSpawnPoint(t *testing.T) {
	e := New(10, 10, DefaultParameters(), 28)
	e.Params.Human.HumanSpawnPoint = &Position{X: 3, Y: 3}
	c := e.Grid.At(3, 3)
	c.Exists = true
	c.CrystalState = CrystalAlpha // spawn must overwrite whatever is present

	e.spawnHuman()

	if c.CrystalState != CrystalBio || c.BioAttributes == nil || c.BioAttributes.SpeciesID != 0 {
		t.Fatalf("expected a forced human spawn at the configured point, got state=%v", c.CrystalState)
	}
}

func TestHumanRespawnAfterExtinctionDelay(t *testing.T) {
	e := New(10, 10, DefaultParameters(), 29)
	e.Params.Human.HumanRespawnDelay = 5
	e.IsFirstSpawn = false
	step := uint64(100)
	e.BioExtinctionStep = &step
	e.TimeStep = 105

	// Put every land cell in the human preferred temperature band; no
	// climate tick has run, so Temperature would otherwise default to 0.
	for y := 0; y < e.Grid.Height; y++ {
		for x := 0; x < e.Grid.Width; x++ {
			c := e.Grid.At(x, y)
			if c.Exists {
				c.Temperature = 20
			}
		}
	}

	species, humanExists := e.bioCensus()
	e.bioScheduledSpawns(species, humanExists)

	if e.BioExtinctionStep != nil {
		t.Fatal("expected the extinction marker to clear once humans respawn")
	}
	_, humanExists = e.bioCensus()
	if !humanExists {
		t.Fatal("expected a human settlement to have respawned somewhere on the grid")
	}
}

func TestSpawnRandomSpeciesAvoidsAlphaNeighborhood(t *testing.T) {
	e := New(10, 10, DefaultParameters(), 30)
	// Fill every cell with an Alpha crystal except one far corner.
	for y := 0; y < e.Grid.Height; y++ {
		for x := 0; x < e.Grid.Width; x++ {
			c := e.Grid.At(x, y)
			c.Exists = true
			c.CrystalState = CrystalAlpha
		}
	}
	for dy := 0; dy <= 3; dy++ {
		for dx := 0; dx <= 3; dx++ {
			e.Grid.At(dx, dy).CrystalState = CrystalEmpty
		}
	}
	free := e.Grid.At(0, 0)

	e.spawnRandomSpecies()

	if free.CrystalState != CrystalBio {
		t.Fatalf("expected the only Alpha-free cell to receive the new species, got %v", free.CrystalState)
	}
}

func TestMutateAttributesFlagsNewSpeciesOnLargeRelativeChange(t *testing.T) {
	e := New(10, 10, DefaultParameters(), 31)
	e.rng = &fixedRNG{floats: []float64{0}} // always mutates, always the "-" sign branch
	e.Params.Bio.MutationRate = 1
	e.Params.Bio.MutationStrength = 5 // a 500% swing trivially exceeds any reasonable threshold
	e.Params.Bio.NewSpeciesThreshold = 0.3

	base := BioAttributes{MinTemp: 10, MaxTemp: 30, ProsperityGrowth: 1, ProsperityDecay: 1,
		ExpansionThreshold: 80, MiningReward: 5, MigrationThreshold: 10, SpeciesID: 0}

	mutated, isNew := e.mutateAttributes(base)
	if !isNew {
		t.Fatal("expected a large relative mutation to flag a new species")
	}
	if mutated.SpeciesID == base.SpeciesID {
		t.Fatal("expected a new species to receive a fresh speciesId")
	}
}

func TestExtinctionBonusSkipsVoidAndEmptyNeighbors(t *testing.T) {
	e := New(10, 10, DefaultParameters(), 32)
	for i, pos := range e.Grid.neighborPositions(5, 5, true) {
		c := e.Grid.At(pos[0], pos[1])
		c.Exists = i%2 == 0           // alternate land and void neighbors
		c.CrystalState = CrystalEmpty // nothing occupying the resource slot
	}
	cmds := newBioCommands()
	e.queueExtinctionBonus(cmds, 5, 5)

	if len(cmds.energyBonus) != 0 || len(cmds.prosperityBonus) != 0 {
		t.Fatal("expected no bonus to be queued when every neighbor is void or empty")
	}
}
