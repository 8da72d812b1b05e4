package main

import "math"

// Parameters is the host-supplied knob block: one record per subsystem, mirroring
// the teacher's SimulationConfig layout (config.go). It is read by all four
// updaters and is immutable for the duration of a single Tick — ReplaceParams
// swaps the whole block between ticks (spec.md §6).
type Parameters struct {
	Mantle MantleParams `json:"mantle"`
	Climate ClimateParams `json:"climate"`
	Crystal CrystalParams `json:"crystal"`
	Bio     BioParams     `json:"bio"`
	Human   HumanTemplateParams `json:"human"`
}

// MantleParams governs the geosphere layer (spec.md §4.2).
type MantleParams struct {
	MantleTimeScale      float64 `json:"mantle_time_scale"`
	ExpansionThreshold    float64 `json:"expansion_threshold"`
	ShrinkThreshold       float64 `json:"shrink_threshold"`
	MantleEnergyLevel     float64 `json:"mantle_energy_level"`
	MaxRadius             float64 `json:"max_radius"`
	MinRadius             float64 `json:"min_radius"`
	DistortionSpeed       float64 `json:"distortion_speed"`
	EdgeGenerationWidth   float64 `json:"edge_generation_width"`
	EdgeGenerationEnergy  float64 `json:"edge_generation_energy"`
	EdgeGenerationOffset  float64 `json:"edge_generation_offset"`
	EdgeSupplyPointCount  int     `json:"edge_supply_point_count"` // construction-only, see spec.md §9
	EdgeSupplyPointSpeed  float64 `json:"edge_supply_point_speed"`
	MantleHeatFactor      float64 `json:"mantle_heat_factor"`
	MantleAbsorption      float64 `json:"mantle_absorption"` // shared with CrystalParams; the mantle layer's own draw (spec.md §4.2 step 6)
}

// ClimateParams governs the atmosphere layer (spec.md §4.3).
type ClimateParams struct {
	DiffusionRate         float64 `json:"diffusion_rate"`
	AdvectionRate         float64 `json:"advection_rate"` // reserved, spec.md §9: advection uses a fixed internal coefficient
	ThunderstormThreshold float64 `json:"thunderstorm_threshold"`
	SeasonalAmplitude     float64 `json:"seasonal_amplitude"` // reserved, not consumed by any algorithm
}

// CrystalParams governs the resource layer (spec.md §4.4).
type CrystalParams struct {
	AlphaEnergyDemand  float64 `json:"alpha_energy_demand"`
	BetaEnergyDemand   float64 `json:"beta_energy_demand"`
	MantleAbsorption   float64 `json:"mantle_absorption"`
	ThunderstormEnergy float64 `json:"thunderstorm_energy"`
	ExpansionCost      float64 `json:"expansion_cost"`
	MaxCrystalEnergy   float64 `json:"max_crystal_energy"`
	EnergySharingRate  float64 `json:"energy_sharing_rate"`
	EnergySharingLimit float64 `json:"energy_sharing_limit"` // reserved, not consumed by any algorithm
	EnergyDecayRate    float64 `json:"energy_decay_rate"`
	HarvestThreshold   float64 `json:"harvest_threshold"` // reserved, not consumed by any algorithm
}

// BioParams holds the biosphere-wide knobs (spec.md §4.5) that are not part of
// any one settlement's genome.
type BioParams struct {
	ExtinctionBonus           float64 `json:"extinction_bonus"`
	CompetitionPenalty        float64 `json:"competition_penalty"`
	MutationRate              float64 `json:"mutation_rate"`
	MutationStrength          float64 `json:"mutation_strength"`
	NewSpeciesThreshold       float64 `json:"new_species_threshold"`
	MinProsperityGrowth       float64 `json:"min_prosperity_growth"`
	SameSpeciesBonus          float64 `json:"same_species_bonus"`
	MigrantExpansionProb      float64 `json:"migrant_expansion_prob"`
	RadiationImmunityThreshold float64 `json:"radiation_immunity_threshold"`
	BioAutoSpawnCount         int     `json:"bio_auto_spawn_count"`
	BioAutoSpawnInterval      int     `json:"bio_auto_spawn_interval"`
}

// HumanTemplateParams is the genome humans always spawn with (spec.md §4.5.3).
type HumanTemplateParams struct {
	HumanMinTemp            float64 `json:"human_min_temp"`
	HumanMaxTemp            float64 `json:"human_max_temp"`
	HumanSurvivalMinTemp    float64 `json:"human_survival_min_temp"`
	HumanSurvivalMaxTemp    float64 `json:"human_survival_max_temp"`
	HumanProsperityGrowth   float64 `json:"human_prosperity_growth"`
	HumanProsperityDecay    float64 `json:"human_prosperity_decay"`
	HumanExpansionThreshold float64 `json:"human_expansion_threshold"`
	HumanMiningReward       float64 `json:"human_mining_reward"`
	HumanMigrationThreshold float64 `json:"human_migration_threshold"`
	AlphaRadiationDamage    float64 `json:"alpha_radiation_damage"`
	HumanRespawnDelay       uint64  `json:"human_respawn_delay"`
	HumanSpawnPoint         *Position `json:"human_spawn_point,omitempty"`
}

// Position is a grid coordinate used wherever the interface talks about a
// specific cell rather than an in-bounds pointer into it.
type Position struct {
	X, Y int
}

// DefaultParameters returns a parameter block tuned the way the teacher's
// DefaultSimulationConfig is: every field given a concrete, documented default,
// grouped the same way the struct itself is grouped.
func DefaultParameters() Parameters {
	return Parameters{
		Mantle: MantleParams{
			MantleTimeScale:     0.1,
			ExpansionThreshold:  80,
			ShrinkThreshold:     10,
			MantleEnergyLevel:   60,
			MaxRadius:           0, // filled in by New() from grid size if left zero
			MinRadius:           0,
			DistortionSpeed:     0.002,
			EdgeGenerationWidth: 6,
			EdgeGenerationEnergy: 4,
			EdgeGenerationOffset: 2,
			EdgeSupplyPointCount: 3,
			EdgeSupplyPointSpeed: 0.01,
			MantleHeatFactor:     160,
			MantleAbsorption:     0.05,
		},
		Climate: ClimateParams{
			DiffusionRate:         0.2,
			AdvectionRate:         1.0,
			ThunderstormThreshold: 8,
			SeasonalAmplitude:     0,
		},
		Crystal: CrystalParams{
			AlphaEnergyDemand:  1.5,
			BetaEnergyDemand:   0.5,
			MantleAbsorption:   0.05,
			ThunderstormEnergy: 8,
			ExpansionCost:      4,
			MaxCrystalEnergy:   100,
			EnergySharingRate:  1.0,
			EnergySharingLimit: 0,
			EnergyDecayRate:    0.1,
			HarvestThreshold:   0,
		},
		Bio: BioParams{
			ExtinctionBonus:            20,
			CompetitionPenalty:         0.5,
			MutationRate:               0.1,
			MutationStrength:           0.2,
			NewSpeciesThreshold:        0.3,
			MinProsperityGrowth:        0.1,
			SameSpeciesBonus:           0.2,
			MigrantExpansionProb:       0.3,
			RadiationImmunityThreshold: 50,
			BioAutoSpawnCount:          4,
			BioAutoSpawnInterval:       500,
		},
		Human: HumanTemplateParams{
			HumanMinTemp:            7,
			HumanMaxTemp:            34,
			HumanSurvivalMinTemp:    -20,
			HumanSurvivalMaxTemp:    50,
			HumanProsperityGrowth:   0.5,
			HumanProsperityDecay:    0.05,
			HumanExpansionThreshold: 80,
			HumanMiningReward:       5,
			HumanMigrationThreshold: 10,
			AlphaRadiationDamage:    0.3,
			HumanRespawnDelay:       200,
			HumanSpawnPoint:         nil,
		},
	}
}

// Sanitize replaces non-finite values with their documented defaults in place,
// and also resets a non-positive MaxCrystalEnergy or BioAutoSpawnInterval to its
// default. Per spec.md §7 this is the only parameter validation the engine
// performs: every other out-of-range-but-finite value (a negative demand, say)
// is the caller's choice and is left alone to produce "odd but safe dynamics".
func (p *Parameters) Sanitize() {
	defaults := DefaultParameters()

	fix := func(v *float64, def float64) {
		if math.IsNaN(*v) || math.IsInf(*v, 0) {
			*v = def
		}
	}

	fix(&p.Mantle.MantleTimeScale, defaults.Mantle.MantleTimeScale)
	fix(&p.Mantle.ExpansionThreshold, defaults.Mantle.ExpansionThreshold)
	fix(&p.Mantle.ShrinkThreshold, defaults.Mantle.ShrinkThreshold)
	fix(&p.Mantle.MantleEnergyLevel, defaults.Mantle.MantleEnergyLevel)
	fix(&p.Mantle.MaxRadius, defaults.Mantle.MaxRadius)
	fix(&p.Mantle.MinRadius, defaults.Mantle.MinRadius)
	fix(&p.Mantle.DistortionSpeed, defaults.Mantle.DistortionSpeed)
	fix(&p.Mantle.EdgeGenerationWidth, defaults.Mantle.EdgeGenerationWidth)
	fix(&p.Mantle.EdgeGenerationEnergy, defaults.Mantle.EdgeGenerationEnergy)
	fix(&p.Mantle.EdgeGenerationOffset, defaults.Mantle.EdgeGenerationOffset)
	fix(&p.Mantle.EdgeSupplyPointSpeed, defaults.Mantle.EdgeSupplyPointSpeed)
	fix(&p.Mantle.MantleHeatFactor, defaults.Mantle.MantleHeatFactor)
	fix(&p.Mantle.MantleAbsorption, defaults.Mantle.MantleAbsorption)

	fix(&p.Climate.DiffusionRate, defaults.Climate.DiffusionRate)
	fix(&p.Climate.ThunderstormThreshold, defaults.Climate.ThunderstormThreshold)

	fix(&p.Crystal.AlphaEnergyDemand, defaults.Crystal.AlphaEnergyDemand)
	fix(&p.Crystal.BetaEnergyDemand, defaults.Crystal.BetaEnergyDemand)
	fix(&p.Crystal.MantleAbsorption, defaults.Crystal.MantleAbsorption)
	fix(&p.Crystal.ThunderstormEnergy, defaults.Crystal.ThunderstormEnergy)
	fix(&p.Crystal.ExpansionCost, defaults.Crystal.ExpansionCost)
	fix(&p.Crystal.EnergySharingRate, defaults.Crystal.EnergySharingRate)
	fix(&p.Crystal.EnergyDecayRate, defaults.Crystal.EnergyDecayRate)
	if p.Crystal.MaxCrystalEnergy <= 0 || math.IsNaN(p.Crystal.MaxCrystalEnergy) || math.IsInf(p.Crystal.MaxCrystalEnergy, 0) {
		p.Crystal.MaxCrystalEnergy = defaults.Crystal.MaxCrystalEnergy
	}

	fix(&p.Bio.ExtinctionBonus, defaults.Bio.ExtinctionBonus)
	fix(&p.Bio.CompetitionPenalty, defaults.Bio.CompetitionPenalty)
	fix(&p.Bio.MutationRate, defaults.Bio.MutationRate)
	fix(&p.Bio.MutationStrength, defaults.Bio.MutationStrength)
	fix(&p.Bio.NewSpeciesThreshold, defaults.Bio.NewSpeciesThreshold)
	fix(&p.Bio.MinProsperityGrowth, defaults.Bio.MinProsperityGrowth)
	fix(&p.Bio.SameSpeciesBonus, defaults.Bio.SameSpeciesBonus)
	fix(&p.Bio.MigrantExpansionProb, defaults.Bio.MigrantExpansionProb)
	fix(&p.Bio.RadiationImmunityThreshold, defaults.Bio.RadiationImmunityThreshold)
	if p.Bio.BioAutoSpawnInterval <= 0 {
		p.Bio.BioAutoSpawnInterval = defaults.Bio.BioAutoSpawnInterval
	}

	fix(&p.Human.HumanMinTemp, defaults.Human.HumanMinTemp)
	fix(&p.Human.HumanMaxTemp, defaults.Human.HumanMaxTemp)
	fix(&p.Human.HumanSurvivalMinTemp, defaults.Human.HumanSurvivalMinTemp)
	fix(&p.Human.HumanSurvivalMaxTemp, defaults.Human.HumanSurvivalMaxTemp)
	fix(&p.Human.HumanProsperityGrowth, defaults.Human.HumanProsperityGrowth)
	fix(&p.Human.HumanProsperityDecay, defaults.Human.HumanProsperityDecay)
	fix(&p.Human.HumanExpansionThreshold, defaults.Human.HumanExpansionThreshold)
	fix(&p.Human.HumanMiningReward, defaults.Human.HumanMiningReward)
	fix(&p.Human.HumanMigrationThreshold, defaults.Human.HumanMigrationThreshold)
	fix(&p.Human.AlphaRadiationDamage, defaults.Human.AlphaRadiationDamage)
}
