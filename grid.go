package main

import "math"

// CrystalState is the discriminant for what occupies a cell's resource slot.
type CrystalState int

const (
	CrystalEmpty CrystalState = iota
	CrystalAlpha
	CrystalBeta
	CrystalBio
)

func (c CrystalState) String() string {
	switch c {
	case CrystalAlpha:
		return "alpha"
	case CrystalBeta:
		return "beta"
	case CrystalBio:
		return "bio"
	default:
		return "empty"
	}
}

// EnergyTransfer records one outbound Alpha-network transfer this tick, kept only
// for the renderer; it carries no simulation meaning of its own.
type EnergyTransfer struct {
	ToX, ToY int
	Amount   float64
}

// BioAttributes is a settlement's (or migrant's) genome.
type BioAttributes struct {
	MinTemp, MaxTemp                 float64
	SurvivalMinTemp, SurvivalMaxTemp float64
	ProsperityGrowth                 float64
	ProsperityDecay                  float64
	ExpansionThreshold                float64
	MigrationThreshold                float64
	MiningReward                      float64
	AlphaRadiationDamage               float64
	SpeciesID                         int
	Color                             string
}

// Clone returns a value copy; BioAttributes has no reference fields, but the
// explicit method keeps mutation sites (mutateAttributes) from aliasing a cell's
// live genome while building a candidate offspring genome.
func (a BioAttributes) Clone() BioAttributes {
	return a
}

// Migrant is a mobile bio entity coexisting with whatever resource state
// occupies its cell.
type Migrant struct {
	Prosperity float64
	Attributes BioAttributes
}

// Cell carries every layer's state, even when most of it is inert. A uniform
// record keeps the four updaters' sweeps simple: there is one slice to walk, not
// four.
type Cell struct {
	// Geosphere
	Exists               bool
	MantleEnergy         float64
	ExpansionAccumulator float64
	ShrinkAccumulator    float64

	// Atmosphere
	Temperature     float64
	HasThunderstorm bool

	// Resource
	CrystalState CrystalState
	StoredEnergy float64
	IsAbsorbing  bool
	CrystalEnergy float64 // display-only: energy gained this tick
	EnergyFlow   []EnergyTransfer

	// Biosphere
	Prosperity    float64
	IsMining      bool
	BioAttributes *BioAttributes
	Migrant       *Migrant
}

// clearToVoid resets a cell to the all-zero void state required by the
// exists=false invariant (spec.md §3 Invariants).
func (c *Cell) clearToVoid() {
	*c = Cell{Exists: false}
}

// Grid is a fixed width×height rectangular array of Cell, indexed (x,y) with x
// the fast axis. It never resizes after construction.
type Grid struct {
	Width, Height int
	cells         []Cell
}

// NewGrid allocates a width×height grid of void cells.
func NewGrid(width, height int) *Grid {
	if width <= 0 || height <= 0 {
		panic("grid: width and height must be positive")
	}
	return &Grid{Width: width, Height: height, cells: make([]Cell, width*height)}
}

func (g *Grid) index(x, y int) int { return y*g.Width + x }

// InBounds reports whether (x,y) lies on the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// At returns a pointer to the cell at (x,y). Callers must bounds-check first;
// this mirrors the teacher's unchecked slice indexing in its grid sweeps and
// keeps the hot loops allocation-free.
func (g *Grid) At(x, y int) *Cell {
	return &g.cells[g.index(x, y)]
}

// CenterX and CenterY are the grid's logical origin (spec.md §3): the
// geometric center, used by every radial rule.
func (g *Grid) CenterX() float64 { return float64(g.Width) / 2 }
func (g *Grid) CenterY() float64 { return float64(g.Height) / 2 }

// DistanceFromCenter returns the Euclidean distance of (x,y) from the grid's
// logical origin.
func (g *Grid) DistanceFromCenter(x, y int) float64 {
	dx := float64(x) - g.CenterX()
	dy := float64(y) - g.CenterY()
	return math.Hypot(dx, dy)
}

// moorOffsets is the stable, implementation-defined iteration order for the
// 8-connected Moore neighborhood: clockwise starting due north. Every caller of
// neighbors/neighborPositions sees the same order within and across ticks.
var moorOffsets = [8][2]int{
	{0, -1}, {1, -1}, {1, 0}, {1, 1},
	{0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

// neighborPositions returns the in-bounds Moore-neighborhood coordinates of
// (x,y). When includeVoid is false, cells with Exists=false are filtered out.
func (g *Grid) neighborPositions(x, y int, includeVoid bool) [][2]int {
	out := make([][2]int, 0, 8)
	for _, off := range moorOffsets {
		nx, ny := x+off[0], y+off[1]
		if !g.InBounds(nx, ny) {
			continue
		}
		if !includeVoid && !g.At(nx, ny).Exists {
			continue
		}
		out = append(out, [2]int{nx, ny})
	}
	return out
}

// neighbors returns pointers to the cells adjacent to (x,y), per the rule
// above. The grid has no wrap-around; edge cells yield fewer than eight
// neighbors.
func (g *Grid) neighbors(x, y int, includeVoid bool) []*Cell {
	positions := g.neighborPositions(x, y, includeVoid)
	out := make([]*Cell, len(positions))
	for i, p := range positions {
		out[i] = g.At(p[0], p[1])
	}
	return out
}
