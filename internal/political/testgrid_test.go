package political

import "github.com/talgya/worldkernel/internal/worldmap"

// squareGrid builds an all-land size x size Grid with every cell owned by
// owner, food potential set to a flat value so Dijkstra partitioning only
// depends on adjacency/bias, not terrain.
func squareGrid(size, owner, maxCountries int) *worldmap.Grid {
	g := worldmap.NewGrid(size, size, maxCountries)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			idx := g.Index(x, y)
			g.Land[idx] = true
			g.FoodPotential[idx] = 1.0
		}
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			g.SetOwner(x, y, owner)
		}
	}
	return g
}

func fieldGridFor(g *worldmap.Grid, factor int) *worldmap.FieldGrid {
	return worldmap.NewFieldGrid(g, factor)
}
