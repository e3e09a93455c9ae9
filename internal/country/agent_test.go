package country

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/worldkernel/internal/config"
	"github.com/talgya/worldkernel/internal/worldmap"
)

func TestTickAgentSkipsDeadCountries(t *testing.T) {
	g, fg := landGrid(10)
	c := NewCountry(1, "A", 0, TypeTrader)
	c.Alive = false

	before := len(g.OwnerCells(1))
	TickAgent(g, fg, c, map[int]*Country{1: c}, AgentContext{}, map[int]float64{1: 1}, config.Default().Expansion, 42, 0)
	require.Equal(t, before, len(g.OwnerCells(1)))
}

func TestTickAgentExpandsTerritoryWhenSurplus(t *testing.T) {
	size := 14
	g := worldmap.NewGrid(size, size, 4)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			idx := g.Index(x, y)
			g.Land[idx] = true
			g.FoodPotential[idx] = 1
		}
	}
	// Give country 1 only the top-left quadrant so there is both carrying
	// capacity to exceed and frontier left to claim.
	for y := 0; y < 7; y++ {
		for x := 0; x < 7; x++ {
			g.SetOwner(x, y, 1)
		}
	}
	fg := worldmap.NewFieldGrid(g, 2)

	c := NewCountry(1, "A", 0, TypeTrader)
	c.Cohorts[0] = 50000 // large surplus vs owned food sum

	before := len(g.OwnerCells(1))
	ctx := AgentContext{OwnedFoodSum: g.FoodSum[1]}
	TickAgent(g, fg, c, map[int]*Country{1: c}, ctx, map[int]float64{1: 1}, config.Default().Expansion, 42, 0)
	require.Greater(t, len(g.OwnerCells(1)), before)
}

func TestTickAgentDeclaresWarAgainstWeakerNeighbor(t *testing.T) {
	g, fg := landGrid(10)
	attacker := NewCountry(1, "A", 0, TypeWarmonger)
	attacker.Cohorts[0] = 100000
	attacker.Economy.MilitarySupply = 500

	defender := NewCountry(2, "B", 0, TypeTrader)
	defender.Ideology = IdeologyRepublic
	defender.Cohorts[0] = 100

	countries := map[int]*Country{1: attacker, 2: defender}
	ctx := AgentContext{Neighbors: []int{2}}
	cfg := config.Default().Expansion

	TickAgent(g, fg, attacker, countries, ctx, map[int]float64{1: 1, 2: 1}, cfg, 42, 0)
	require.True(t, attacker.AtWar)
	require.True(t, defender.AtWar)
}

func TestTickAgentBuildsInfrastructureWhenEligible(t *testing.T) {
	g, fg := landGrid(12)
	c := NewCountry(1, "A", 0, TypeTrader)
	c.KnownTech[16] = 0 // TechConstruction
	a := fg.Index(0, 0)
	b := fg.Index(5, 5)
	c.Cities[a] = 100
	c.Cities[b] = 100

	countries := map[int]*Country{1: c}
	cfg := config.Default().Expansion
	cfg.RoadMinCellDistance = 2

	TickAgent(g, fg, c, countries, AgentContext{}, map[int]float64{1: 1}, cfg, 42, 0)
	require.NotEmpty(t, c.Roads)
}
