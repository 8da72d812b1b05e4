package main

import (
	"math"
)

// SupplyPoint is a rotating angular source injecting mantle energy into the
// land's radial edge band (spec.md §3, §4.2). Its count is fixed at
// construction (spec.md §9: edgeSupplyPointCount affects only initial
// construction); only its angle, and therefore its contribution, changes tick
// to tick.
type SupplyPoint struct {
	Angle     float64
	Speed     float64
	Phase     float64
	Frequency float64
}

// newSupplyPoints builds the engine's fixed supply-point list at construction
// time, evenly spaced around the circle with a per-point random phase/frequency
// for the small oscillation term in advanceSupplyPoints.
func newSupplyPoints(rng randSource, count int, speed float64) []SupplyPoint {
	points := make([]SupplyPoint, count)
	for i := range points {
		points[i] = SupplyPoint{
			Angle:     2 * math.Pi * float64(i) / float64(max(1, count)),
			Speed:     speed,
			Phase:     rng.Float64() * 2 * math.Pi,
			Frequency: 0.5 + rng.Float64(),
		}
	}
	return points
}

// advanceSupplyPoints rotates every supply point by its base speed plus a
// small bounded random oscillation, wrapping the angle into [0, 2π).
func advanceSupplyPoints(points []SupplyPoint, rng randSource) {
	for i := range points {
		p := &points[i]
		oscillation := 0.1 * p.Speed * math.Sin(p.Frequency*p.Phase)
		p.Phase += 0.05 + 0.05*rng.Float64()
		p.Angle = math.Mod(p.Angle+p.Speed+oscillation, 2*math.Pi)
		if p.Angle < 0 {
			p.Angle += 2 * math.Pi
		}
	}
}

// circularDistance is the shortest angular distance between two angles in
// radians, always in [0, π].
func circularDistance(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 2*math.Pi)
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}

// updateMantle runs the geosphere layer for one tick: Phase A recomputes the
// energy field into a staging buffer and commits it; Phase B then morphs the
// landmass from the committed field (spec.md §4.2).
func (e *Engine) updateMantle() {
	e.mantlePhaseA()
	e.mantlePhaseB()
}

// mantlePhaseA is spec.md §4.2 Phase A: noise forcing, relaxation, diffusion,
// NaN guard, edge supply, and the Alpha crystal's own draw — staged into next
// so no step reads a value another cell already overwrote this pass.
func (e *Engine) mantlePhaseA() {
	g := e.Grid
	mp := e.Params.Mantle
	next := make([]float64, len(g.cells))

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := g.At(x, y)
			idx := g.index(x, y)
			if !c.Exists {
				next[idx] = 0
				continue
			}

			n := e.noise.Eval2(float64(x)*0.1+e.NoiseOffsetX, float64(y)*0.1+e.NoiseOffsetY)
			target := mp.MantleEnergyLevel * (1 + 0.1*n)
			ev := (1-mp.MantleTimeScale)*c.MantleEnergy + mp.MantleTimeScale*target

			if mean, ok := meanNeighborEnergy(g, x, y); ok {
				ev = 0.6*ev + 0.4*mean
			}

			if math.IsNaN(ev) || math.IsInf(ev, 0) {
				ev = mp.MantleEnergyLevel
			}

			ev += edgeSupplyContribution(g, e.SupplyPoints, mp, x, y)

			if c.CrystalState == CrystalAlpha {
				ev -= mp.MantleAbsorption * ev
			}

			next[idx] = ev
		}
	}

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := g.At(x, y)
			if c.Exists {
				c.MantleEnergy = next[g.index(x, y)]
			}
		}
	}

	advanceSupplyPoints(e.SupplyPoints, e.rng)
	e.NoiseOffsetX += mp.DistortionSpeed
	e.NoiseOffsetY += mp.DistortionSpeed
}

// meanNeighborEnergy is the diffusion blend's mean over existing neighbors
// only; it reports ok=false when the cell has none (spec.md §4.2 step 3).
func meanNeighborEnergy(g *Grid, x, y int) (float64, bool) {
	sum, n := 0.0, 0
	for _, pos := range g.neighborPositions(x, y, false) {
		sum += g.At(pos[0], pos[1]).MantleEnergy
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// edgeSupplyContribution is spec.md §4.2 step 5: eligible cells lie in the
// radial band [maxRadius-offset-width, maxRadius-offset]; each supply point
// within angular distance π/4 of the cell contributes cos(4·Δ), and the
// maximum over all supply points is what's added (scaled by
// edgeGenerationEnergy).
func edgeSupplyContribution(g *Grid, points []SupplyPoint, mp MantleParams, x, y int) float64 {
	d := g.DistanceFromCenter(x, y)
	outer := mp.MaxRadius - mp.EdgeGenerationOffset
	inner := outer - mp.EdgeGenerationWidth
	if d < inner || d > outer {
		return 0
	}
	if len(points) == 0 {
		return 0
	}

	angle := math.Atan2(float64(y)-g.CenterY(), float64(x)-g.CenterX())
	maxContribution := math.Inf(-1)
	found := false
	for _, p := range points {
		delta := circularDistance(angle, p.Angle)
		if delta >= math.Pi/4 {
			continue
		}
		contribution := math.Cos(4 * delta)
		if !found || contribution > maxContribution {
			maxContribution = contribution
			found = true
		}
	}
	if !found {
		return 0
	}
	return mp.EdgeGenerationEnergy * maxContribution
}

// terrainChange is a queued membership-changing event: expand turns a void
// cell to land, shrink turns a land cell to void. Queuing and applying after
// the sweep (spec.md §4.2 Phase B, §9) resolves two-writer conflicts by queue
// order instead of by read-after-write races.
type terrainChange struct {
	x, y   int
	expand bool
}

// mantlePhaseB is spec.md §4.2 Phase B: the shrink/protected-core/expand
// accumulator arms, followed by a single commit pass over the queued
// expand/shrink events.
func (e *Engine) mantlePhaseB() {
	g := e.Grid
	mp := e.Params.Mantle
	var queue []terrainChange

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := g.At(x, y)
			if !c.Exists {
				continue
			}
			d := g.DistanceFromCenter(x, y)

			if d <= mp.MinRadius {
				c.ShrinkAccumulator = 0
			} else {
				if c.MantleEnergy < mp.ShrinkThreshold {
					c.ShrinkAccumulator += mp.ShrinkThreshold - c.MantleEnergy
					if c.ShrinkAccumulator > 200 {
						queue = append(queue, terrainChange{x, y, false})
						c.ShrinkAccumulator = 0
					}
				} else {
					c.ShrinkAccumulator = math.Max(0, c.ShrinkAccumulator-2)
				}
			}

			if c.MantleEnergy > mp.ExpansionThreshold && d < mp.MaxRadius {
				c.ExpansionAccumulator += c.MantleEnergy - mp.ExpansionThreshold
				if c.ExpansionAccumulator > 100 {
					if target, ok := e.pickVoidNeighbor(x, y); ok {
						queue = append(queue, terrainChange{target[0], target[1], true})
					}
					c.MantleEnergy -= 20
					c.ExpansionAccumulator = 0
				}
			} else {
				c.ExpansionAccumulator = math.Max(0, c.ExpansionAccumulator-1)
			}
		}
	}

	for _, change := range queue {
		c := g.At(change.x, change.y)
		if change.expand {
			if c.Exists {
				continue // a prior queue entry already landed here
			}
			c.Exists = true
			c.MantleEnergy = 30
			e.Events.record(e.TimeStep, EventTerrainExpand, "land expands into a new cell")
		} else {
			if !c.Exists {
				continue
			}
			c.clearToVoid()
			e.Events.record(e.TimeStep, EventTerrainShrink, "a cell collapses back to void")
		}
	}
}

// pickVoidNeighbor returns a uniformly random void 8-neighbor of (x,y), if
// any exist.
func (e *Engine) pickVoidNeighbor(x, y int) ([2]int, bool) {
	g := e.Grid
	var candidates [][2]int
	for _, off := range moorOffsets {
		nx, ny := x+off[0], y+off[1]
		if g.InBounds(nx, ny) && !g.At(nx, ny).Exists {
			candidates = append(candidates, [2]int{nx, ny})
		}
	}
	if len(candidates) == 0 {
		return [2]int{}, false
	}
	return candidates[e.rng.Intn(len(candidates))], true
}
