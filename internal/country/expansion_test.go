package country

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/worldkernel/internal/config"
	"github.com/talgya/worldkernel/internal/worldmap"
)

func blockGrid(owner, size int) *worldmap.Grid {
	g := worldmap.NewGrid(size, size, 4)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			idx := g.Index(x, y)
			g.Land[idx] = true
			g.FoodPotential[idx] = 2
		}
	}
	for y := 0; y < size/2; y++ {
		for x := 0; x < size/2; x++ {
			g.SetOwner(x, y, owner)
		}
	}
	return g
}

func TestExpansionBudgetScalesWithSurplus(t *testing.T) {
	c := NewCountry(1, "A", 0, TypeTrader)
	c.Cohorts[0] = 1000
	cfg := config.Default().Expansion

	low := ExpansionBudget(c, 1000, cfg)
	c.Cohorts[0] = 10000
	high := ExpansionBudget(c, 1000, cfg)
	require.Greater(t, high, low)
}

func TestExpansionBudgetReducedWhenContent(t *testing.T) {
	c := NewCountry(1, "A", 0, TypeTrader)
	c.Cohorts[0] = 5000
	cfg := config.Default().Expansion

	normal := ExpansionBudget(c, 1000, cfg)
	c.ContentWithSize = true
	content := ExpansionBudget(c, 1000, cfg)
	require.Less(t, content, normal)
}

func TestExpandClaimsFrontierCellsUpToBudget(t *testing.T) {
	g := blockGrid(1, 10)
	claimed := Expand(g, 1, 3, -1)
	require.Equal(t, 3, claimed)
	require.Len(t, g.OwnerCells(1), 25+3)
}

func TestExpandOnlyClaimsEnemyCellsDuringWarNotNeutral(t *testing.T) {
	g := blockGrid(1, 10)
	// Neutral country 3 borders owner's territory to the south; enemy
	// country 2 borders it to the east. Only the enemy cells should ever
	// become claimable once a war target is specified.
	for x := 0; x < 5; x++ {
		g.SetOwner(x, 5, 3)
	}
	for y := 0; y < 5; y++ {
		g.SetOwner(5, y, 2)
	}

	Expand(g, 1, 100, 2)
	require.Len(t, g.OwnerCells(3), 5, "neutral territory must never be claimed")
	require.Empty(t, g.OwnerCells(2), "enemy territory should be fully claimable with a large budget")
}

func TestBurstExpandClaimsDiskAroundAnchor(t *testing.T) {
	g := blockGrid(1, 12)
	before := len(g.OwnerCells(1))
	claimed := BurstExpand(g, 1, g.Index(5, 5), 2)
	require.Greater(t, claimed, 0)
	require.Equal(t, before+claimed, len(g.OwnerCells(1)))
}

func TestWarBurstConquestOnlyTakesEnemyCells(t *testing.T) {
	g := blockGrid(1, 12)
	for y := 6; y < 12; y++ {
		for x := 6; x < 12; x++ {
			g.SetOwner(x, y, 2)
		}
	}
	claimed := WarBurstConquest(g, 1, 2, g.Index(6, 6), 2)
	require.Greater(t, claimed, 0)
	for _, idx := range g.OwnerCells(1) {
		x, y := idx%g.Width, idx/g.Width
		require.False(t, (x >= 6) != (y >= 6))
	}
}
