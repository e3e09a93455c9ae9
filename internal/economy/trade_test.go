package economy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/worldkernel/internal/country"
	"github.com/talgya/worldkernel/internal/worldmap"
)

func adjacentCountryGrid() *worldmap.Grid {
	g := worldmap.NewGrid(4, 2, 3)
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			idx := g.Index(x, y)
			g.Land[idx] = true
			owner := 0
			if x >= 2 {
				owner = 1
			}
			g.SetOwner(x, y, owner)
		}
	}
	return g
}

func TestRebuildScoresAdjacentCountriesAboveZero(t *testing.T) {
	g := adjacentCountryGrid()
	countries := map[int]*country.Country{
		0: country.NewCountry(0, "A", -5000, country.TypeTrader),
		1: country.NewCountry(1, "B", -5000, country.TypeTrader),
	}

	m := Rebuild(g, countries)
	v, ok := m.Connectivity(0, 1)
	require.True(t, ok)
	require.Greater(t, v, 0.0)
	require.LessOrEqual(t, v, 1.0)
}

func TestRebuildIsSymmetric(t *testing.T) {
	g := adjacentCountryGrid()
	countries := map[int]*country.Country{
		0: country.NewCountry(0, "A", -5000, country.TypeTrader),
		1: country.NewCountry(1, "B", -5000, country.TypeTrader),
	}

	m := Rebuild(g, countries)
	ab, _ := m.Connectivity(0, 1)
	ba, _ := m.Connectivity(1, 0)
	require.Equal(t, ab, ba)
}

func TestRebuildSkipsDeadCountries(t *testing.T) {
	g := adjacentCountryGrid()
	dead := country.NewCountry(1, "Dead", -5000, country.TypeTrader)
	dead.Alive = false
	countries := map[int]*country.Country{
		0: country.NewCountry(0, "A", -5000, country.TypeTrader),
		1: dead,
	}

	m := Rebuild(g, countries)
	_, ok := m.Connectivity(0, 1)
	require.False(t, ok)
}

func TestRebuildScoresPriceGapDamping(t *testing.T) {
	g := adjacentCountryGrid()
	a := country.NewCountry(0, "A", -5000, country.TypeTrader)
	b := country.NewCountry(1, "B", -5000, country.TypeTrader)
	b.Economy.PriceFood = 10

	countries := map[int]*country.Country{0: a, 1: b}
	m := Rebuild(g, countries)
	v, _ := m.Connectivity(0, 1)
	require.Less(t, v, 0.35)
}
