package main

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// randSource is the subset of *rand.Rand the updaters need. Every
// pseudo-random draw in the engine goes through one injected source
// (spec.md §5, §9 "RNG"): unlike the teacher, which calls the math/rand
// package-level functions directly from every file, this engine is
// seed-and-replay testable end to end.
type randSource interface {
	Float64() float64
	Intn(n int) int
}

// Engine is the single process-wide simulation instance (spec.md §3 "Engine
// state"). It owns the grid outright; nothing else may mutate it.
type Engine struct {
	Grid   *Grid
	Params Parameters

	TimeStep    uint64
	CycleCount  uint64
	NoiseOffsetX, NoiseOffsetY float64
	SupplyPoints []SupplyPoint

	IsFirstSpawn      bool
	BioExtinctionStep *uint64

	Events *EventLog

	rng   randSource
	noise opensimplex.Noise
}

// New constructs an engine over a fresh width×height grid and seeds its
// initial landmass and crystal (spec.md §3 "Lifecycle"). Width and height must
// be positive; parameters are sanitized, never rejected (spec.md §6).
func New(width, height int, params Parameters, seed int64) *Engine {
	if width <= 0 || height <= 0 {
		panic("engine: width and height must be positive")
	}

	params.Sanitize()
	if params.Mantle.MaxRadius <= 0 {
		params.Mantle.MaxRadius = 0.5 * math.Min(float64(width), float64(height))
	}
	if params.Mantle.MinRadius <= 0 {
		params.Mantle.MinRadius = 0.08 * math.Min(float64(width), float64(height))
	}

	rng := rand.New(rand.NewSource(seed))

	e := &Engine{
		Grid:         NewGrid(width, height),
		Params:       params,
		IsFirstSpawn: true,
		Events:       NewEventLog(200),
		rng:          rng,
		noise:        opensimplex.New(seed),
	}
	e.SupplyPoints = newSupplyPoints(rng, params.Mantle.EdgeSupplyPointCount, params.Mantle.EdgeSupplyPointSpeed)
	e.seedInitialLandmass()
	return e
}

// seedInitialLandmass is spec.md §3 "Lifecycle": a disk of radius
// 0.4×min(width,height) around center becomes land with mantleEnergy≈60±10;
// the innermost 3-radius disk seeds an Alpha crystal.
func (e *Engine) seedInitialLandmass() {
	g := e.Grid
	landRadius := 0.4 * math.Min(float64(g.Width), float64(g.Height))

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			d := g.DistanceFromCenter(x, y)
			if d > landRadius {
				continue
			}
			c := g.At(x, y)
			c.Exists = true
			c.MantleEnergy = 60 + (e.rng.Float64()*2-1)*10

			if d <= 3 {
				c.CrystalState = CrystalAlpha
				c.StoredEnergy = 10
			}
		}
	}
}

// Tick advances the simulation by exactly one discrete step, running the four
// updaters strictly in order (spec.md §2, §5): mantle, climate, crystal, bio.
func (e *Engine) Tick() {
	e.TimeStep++
	e.CycleCount = e.TimeStep / 1000

	e.updateMantle()
	e.updateClimate()
	e.updateCrystal()
	e.updateBio()
}

// ReadCell returns a read-only value snapshot of the cell at (x,y). Reading an
// out-of-bounds position returns the zero Cell rather than panicking — a
// silent no-op bounds check, as in EraseCrystal (spec.md §7).
func (e *Engine) ReadCell(x, y int) Cell {
	if !e.Grid.InBounds(x, y) {
		return Cell{}
	}
	return *e.Grid.At(x, y)
}

// ReplaceParams hot-swaps the parameter block; it takes effect on the next
// Tick. Per spec.md §6/§9, this never re-initializes construction-only state
// such as the supply-point list, even if EdgeSupplyPointCount changes.
func (e *Engine) ReplaceParams(params Parameters) {
	params.Sanitize()
	if params.Mantle.MaxRadius <= 0 {
		params.Mantle.MaxRadius = e.Params.Mantle.MaxRadius
	}
	if params.Mantle.MinRadius <= 0 {
		params.Mantle.MinRadius = e.Params.Mantle.MinRadius
	}
	e.Params = params
}

// SetSpawnPoint sets or clears the host-editable human spawn point. Out-of-
// bounds coordinates are accepted (the point merely never becomes eligible).
func (e *Engine) SetSpawnPoint(pos *Position) {
	e.Params.Human.HumanSpawnPoint = pos
}

// EraseCrystal clears the crystal slot (and any bio settlement occupying it)
// within brushSize of (x,y); an external editing op applied as a direct write
// with standard bounds checks (spec.md §6).
func (e *Engine) EraseCrystal(x, y, brushSize int) {
	g := e.Grid
	if brushSize < 0 {
		brushSize = 0
	}
	for dy := -brushSize; dy <= brushSize; dy++ {
		for dx := -brushSize; dx <= brushSize; dx++ {
			nx, ny := x+dx, y+dy
			if !g.InBounds(nx, ny) {
				continue
			}
			c := g.At(nx, ny)
			c.CrystalState = CrystalEmpty
			c.StoredEnergy = 0
			c.BioAttributes = nil
			c.Prosperity = 0
			c.EnergyFlow = nil
		}
	}
}
