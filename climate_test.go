package main

import "testing"

func TestMeanNeighborTemperatureIncludesVoidAsZero(t *testing.T) {
	g := NewGrid(3, 3)
	g.At(1, 1).Exists = true
	g.At(0, 1).Exists = true
	g.At(0, 1).Temperature = 40
	// All seven other neighbors are void and contribute 0.
	mean := meanNeighborTemperature(g, 1, 1)
	want := 40.0 / 8.0
	if mean != want {
		t.Fatalf("expected mean %f including void neighbors as 0, got %f", want, mean)
	}
}

func TestTemperatureAtClampsToGrid(t *testing.T) {
	g := NewGrid(5, 5)
	g.At(0, 0).Exists = true
	g.At(0, 0).Temperature = 12
	got := temperatureAt(g, -3, -3)
	if got != 12 {
		t.Fatalf("expected an out-of-bounds read to clamp to (0,0)'s temperature 12, got %f", got)
	}
}

func TestBilinearTemperatureAtExactGridPointMatchesCell(t *testing.T) {
	g := NewGrid(4, 4)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			g.At(x, y).Exists = true
		}
	}
	g.At(2, 2).Temperature = 17
	got := bilinearTemperature(g, 2, 2)
	if got != 17 {
		t.Fatalf("expected bilinear sample at an exact grid point to equal the cell value, got %f", got)
	}
}

func TestUpdateClimateLeavesVoidCellsAtZero(t *testing.T) {
	e := New(10, 10, DefaultParameters(), 11)
	e.updateClimate()
	if e.Grid.At(0, 0).Temperature != 0 || e.Grid.At(0, 0).HasThunderstorm {
		t.Fatal("expected a void cell to remain at zero temperature with no storm")
	}
}
