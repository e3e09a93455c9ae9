package population

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/worldkernel/internal/config"
	"github.com/talgya/worldkernel/internal/worldmap"
)

func ownedGrid(owner int, size int) *worldmap.FieldGrid {
	g := worldmap.NewGrid(size, size, 2)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			idx := g.Index(x, y)
			g.Land[idx] = true
			g.FoodPotential[idx] = 5
			g.SetOwner(x, y, owner)
		}
	}
	return worldmap.NewFieldGrid(g, 1)
}

func TestSeedInitialPopulationConservesMass(t *testing.T) {
	fg := ownedGrid(0, 9)
	SeedInitialPopulation(fg, 0, fg.Index(4, 4), 3, 100000, nil)

	var total float64
	for _, p := range fg.Population {
		total += p
	}
	require.InDelta(t, 100000, total, 1e-6)
}

func TestSeedInitialPopulationOnlyFillsOwnedCells(t *testing.T) {
	fg := ownedGrid(0, 9)
	SeedInitialPopulation(fg, 0, fg.Index(4, 4), 3, 100000, nil)

	for idx, owner := range fg.OwnerID {
		if int(owner) != 0 {
			require.Zero(t, fg.Population[idx])
		}
	}
}

func TestShortHopMigrationConservesMass(t *testing.T) {
	fg := ownedGrid(0, 6)
	fg.Population[fg.Index(0, 0)] = 1000
	fg.FoodPotential[fg.Index(5, 5)] = 50

	var before float64
	for _, p := range fg.Population {
		before += p
	}

	signals := map[int]CountrySignals{0: {RealWage: 0.2, Control: 0.5, Legitimacy: 0.5}}
	ShortHopMigration(fg, signals, config.Default(), 4)

	var after float64
	for _, p := range fg.Population {
		after += p
	}
	require.InDelta(t, before, after, 1e-6)
}

func TestShortHopMigrationMovesTowardHigherFoodPotential(t *testing.T) {
	fg := ownedGrid(0, 6)
	fg.Population[fg.Index(0, 0)] = 1000
	fg.FoodPotential[fg.Index(1, 0)] = 500

	signals := map[int]CountrySignals{0: {RealWage: 0.2, Control: 0.5, Legitimacy: 0.5}}
	ShortHopMigration(fg, signals, config.Default(), 4)

	require.Less(t, fg.Population[fg.Index(0, 0)], 1000.0)
	require.Greater(t, fg.Population[fg.Index(1, 0)], 0.0)
}

func TestShortHopMigrationSkipsUnownedCells(t *testing.T) {
	fg := ownedGrid(0, 6)
	fg.OwnerID[fg.Index(2, 2)] = -1
	signals := map[int]CountrySignals{0: {RealWage: 0.2, Control: 0.5, Legitimacy: 0.5}}

	require.NotPanics(t, func() {
		ShortHopMigration(fg, signals, config.Default(), 4)
	})
}
