package main

import "math"

// voidTemperature is what a void neighbor contributes to diffusion and
// gradient sampling: spec.md §4.3 step 1 says void neighbors "contribute their
// current value, which is 0 for void" — Cell's zero value already satisfies
// this without special-casing, since a void cell's Temperature is always 0
// (enforced on every transition to void, see clearToVoid).
const voidTemperature = 0.0

// updateClimate runs the atmosphere layer for one tick: every land cell's next
// temperature is computed from a pre-step snapshot (spec.md §4.3 "Ordering
// note") and committed together at the end of the sweep.
func (e *Engine) updateClimate() {
	g := e.Grid
	cp := e.Params.Climate
	next := make([]float64, len(g.cells))
	storm := make([]bool, len(g.cells))

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := g.At(x, y)
			idx := g.index(x, y)
			if !c.Exists {
				continue
			}

			mean := meanNeighborTemperature(g, x, y)
			t := (1-cp.DiffusionRate)*c.Temperature + cp.DiffusionRate*mean

			target := -100 + (c.MantleEnergy/100)*e.Params.Mantle.MantleHeatFactor
			t = 0.995*t + 0.005*target

			gx := (temperatureAt(g, x+1, y) - temperatureAt(g, x-1, y)) / 2
			gy := (temperatureAt(g, x, y+1) - temperatureAt(g, x, y-1)) / 2
			vx, vy := -2*gx, -2*gy
			tUp := bilinearTemperature(g, float64(x)-vx, float64(y)-vy)
			t = 0.6*t + 0.4*tUp

			t -= 0.01 * (t - (-100))

			next[idx] = t

			diff := math.Abs(c.Temperature - mean)
			if t > -50 && diff > cp.ThunderstormThreshold && e.rng.Float64() < 0.15 {
				storm[idx] = true
			}
		}
	}

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := g.At(x, y)
			if !c.Exists {
				c.HasThunderstorm = false
				continue
			}
			idx := g.index(x, y)
			c.Temperature = next[idx]
			c.HasThunderstorm = storm[idx]
		}
	}
}

// meanNeighborTemperature averages over ALL eight Moore neighbors including
// void, which contribute 0 (spec.md §4.3 step 1 — unlike the mantle diffusion
// blend, which only averages existing neighbors).
func meanNeighborTemperature(g *Grid, x, y int) float64 {
	sum := 0.0
	count := 0
	for _, off := range moorOffsets {
		nx, ny := x+off[0], y+off[1]
		if !g.InBounds(nx, ny) {
			continue
		}
		sum += g.At(nx, ny).Temperature
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// temperatureAt clamps (x,y) to the grid before reading, per spec.md §4.3
// step 3 ("edge cells clamp the index").
func temperatureAt(g *Grid, x, y int) float64 {
	if x < 0 {
		x = 0
	} else if x >= g.Width {
		x = g.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= g.Height {
		y = g.Height - 1
	}
	return g.At(x, y).Temperature
}

// bilinearTemperature interpolates the pre-step temperature field at a
// continuous point, clamping the point into the grid first.
func bilinearTemperature(g *Grid, x, y float64) float64 {
	maxX, maxY := float64(g.Width-1), float64(g.Height-1)
	if x < 0 {
		x = 0
	} else if x > maxX {
		x = maxX
	}
	if y < 0 {
		y = 0
	} else if y > maxY {
		y = maxY
	}

	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	x1 := int(math.Min(float64(x0+1), maxX))
	y1 := int(math.Min(float64(y0+1), maxY))
	fx := x - float64(x0)
	fy := y - float64(y0)

	t00 := g.At(x0, y0).Temperature
	t10 := g.At(x1, y0).Temperature
	t01 := g.At(x0, y1).Temperature
	t11 := g.At(x1, y1).Temperature

	top := t00*(1-fx) + t10*fx
	bottom := t01*(1-fx) + t11*fx
	return top*(1-fy) + bottom*fy
}
