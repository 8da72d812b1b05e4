package main

import "testing"

func TestCrystalMetabolismDemotesExhaustedAlpha(t *testing.T) {
	e := New(10, 10, DefaultParameters(), 12)
	c := e.Grid.At(3, 3)
	c.Exists = true
	c.CrystalState = CrystalAlpha
	c.MantleEnergy = 0 // too low to absorb
	c.StoredEnergy = 0.1

	e.crystalMetabolism()

	if c.CrystalState != CrystalBeta {
		t.Fatalf("expected an exhausted Alpha to demote to Beta, got %v", c.CrystalState)
	}
	if c.StoredEnergy != 0 {
		t.Fatalf("expected stored energy to reset to 0 on demotion, got %f", c.StoredEnergy)
	}
}

func TestCrystalMetabolismClampsToMax(t *testing.T) {
	e := New(10, 10, DefaultParameters(), 13)
	c := e.Grid.At(3, 3)
	c.Exists = true
	c.CrystalState = CrystalAlpha
	c.MantleEnergy = 1000
	c.StoredEnergy = e.Params.Crystal.MaxCrystalEnergy

	e.crystalMetabolism()

	if c.StoredEnergy > e.Params.Crystal.MaxCrystalEnergy {
		t.Fatalf("expected stored energy to stay clamped at %f, got %f", e.Params.Crystal.MaxCrystalEnergy, c.StoredEnergy)
	}
}

func TestCrystalNetworkFlowMovesEnergyTowardPoorerNeighbor(t *testing.T) {
	e := New(10, 10, DefaultParameters(), 14)
	rich := e.Grid.At(3, 3)
	rich.Exists = true
	rich.CrystalState = CrystalAlpha
	rich.StoredEnergy = 80

	poor := e.Grid.At(4, 3)
	poor.Exists = true
	poor.CrystalState = CrystalAlpha
	poor.StoredEnergy = 10

	e.crystalNetworkFlow()

	if rich.StoredEnergy >= 80 {
		t.Fatalf("expected the richer Alpha to lose energy, still at %f", rich.StoredEnergy)
	}
	if poor.StoredEnergy <= 10 {
		t.Fatalf("expected the poorer Alpha to gain energy, still at %f", poor.StoredEnergy)
	}
}

func TestCrystalPropagationSeedsOnlyEmptyNeighbors(t *testing.T) {
	e := New(10, 10, DefaultParameters(), 15)
	parent := e.Grid.At(5, 5)
	parent.Exists = true
	parent.CrystalState = CrystalAlpha
	parent.StoredEnergy = e.Params.Crystal.MaxCrystalEnergy

	for _, pos := range e.Grid.neighborPositions(5, 5, true) {
		e.Grid.At(pos[0], pos[1]).Exists = true
	}
	// Leave exactly one neighbor Empty; the rest become Beta so they cannot
	// be chosen as propagation targets.
	for i, pos := range e.Grid.neighborPositions(5, 5, true) {
		if i == 0 {
			e.Grid.At(pos[0], pos[1]).CrystalState = CrystalEmpty
			continue
		}
		e.Grid.At(pos[0], pos[1]).CrystalState = CrystalBeta
	}

	e.crystalPropagation()

	onlyEmpty := e.Grid.neighborPositions(5, 5, true)[0]
	target := e.Grid.At(onlyEmpty[0], onlyEmpty[1])
	if target.CrystalState != CrystalAlpha {
		t.Fatalf("expected the sole Empty neighbor to receive the new Alpha seed, got %v", target.CrystalState)
	}
}
