package political

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/worldkernel/internal/country"
	"github.com/talgya/worldkernel/internal/worldmap"
)

func TestTickRespectsMaxCountriesAcrossMechanisms(t *testing.T) {
	g := worldmap.NewGrid(16, 8, 4)
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			idx := g.Index(x, y)
			g.Land[idx] = true
			g.FoodPotential[idx] = 1.0
		}
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			g.SetOwner(x, y, 1)
		}
		for x := 8; x < 16; x++ {
			g.SetOwner(x, y, 2)
		}
	}
	fg := fieldGridFor(g, 1)

	c1 := country.NewCountry(1, "A", 0, country.TypeWarmonger)
	c1.Cohorts[0] = 5000
	c1.Polity.Legitimacy = 0.05
	c2 := country.NewCountry(2, "B", 0, country.TypeWarmonger)
	c2.Cohorts[0] = 5000
	c2.Polity.Legitimacy = 0.05
	countries := map[int]*country.Country{1: c1, 2: c2}

	signals := map[int]Signals{
		1: {Control: 0.1, Legitimacy: 0.05, TaxRate: 0.5, FamineStress: 0.8},
		2: {Control: 0.1, Legitimacy: 0.05, TaxRate: 0.5, FamineStress: 0.8},
	}
	control := map[int]float64{1: 0.1, 2: 0.1}
	cityCounts := map[int]int{1: 1, 2: 1}

	nextIdx := 3
	nextIndex := func() (int, bool) { v := nextIdx; nextIdx++; return v, true }

	result := Tick(g, fg, countries, signals, control, cityCounts, 20, 2, nextIndex)

	require.Len(t, countries, 2)
	require.Empty(t, result.Fragmentations)
	require.Empty(t, result.Breakaways)
}

func TestTickRunsTagReplacementAndFragmentationTogether(t *testing.T) {
	g := squareGrid(12, 1, 16)
	fg := fieldGridFor(g, 1)
	c := country.NewCountry(1, "Empire", 0, country.TypeWarmonger)
	c.Cohorts[0] = 5000
	c.Polity.Legitimacy = 0.05
	countries := map[int]*country.Country{1: c}
	signals := map[int]Signals{1: {Control: 0.95, Legitimacy: 0.95, TaxRate: 0.01, FamineStress: 0, AtWar: false}}
	control := map[int]float64{1: 0.1}
	cityCounts := map[int]int{1: 5}

	nextIndex := func() (int, bool) { return 2, true }

	result := Tick(g, fg, countries, signals, control, cityCounts, 20, 16, nextIndex)

	require.Empty(t, result.Fragmentations)
	require.Contains(t, result.TagReplaced, 1)
	require.Equal(t, country.IdeologyRepublic, c.Ideology)
}
