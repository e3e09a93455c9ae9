package political

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/worldkernel/internal/country"
	"github.com/talgya/worldkernel/internal/worldmap"
)

// twoIslandGrid builds a grid with a 3x3 homeland block at the left edge
// (holding the capital) and a disconnected 5x3 overseas block separated by
// two unowned columns, all owned by owner.
func twoIslandGrid(owner, maxCountries int) *worldmap.Grid {
	width, height := 10, 3
	g := worldmap.NewGrid(width, height, maxCountries)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := g.Index(x, y)
			g.Land[idx] = true
			g.FoodPotential[idx] = 1.0
		}
	}
	for y := 0; y < height; y++ {
		for x := 0; x < 3; x++ {
			g.SetOwner(x, y, owner)
		}
		for x := 5; x < 10; x++ {
			g.SetOwner(x, y, owner)
		}
	}
	return g
}

func TestTickOverseasBreakawayRequiresAccumulatedYears(t *testing.T) {
	g := twoIslandGrid(1, 8)
	fg := fieldGridFor(g, 1)
	c := country.NewCountry(1, "Empire", 0, country.TypeWarmonger)
	c.CapitalCellIndex = g.Index(0, 0)
	countries := map[int]*country.Country{1: c}

	nextIndex := func() (int, bool) { return 2, true }

	var ev *Event
	for year := 20; year <= 100; year += 20 {
		ev = TickOverseasBreakaway(g, fg, countries, c, year, nextIndex)
	}
	require.Nil(t, ev)
	require.Equal(t, 100, c.OverseasLowControlYears)
}

func TestTickOverseasBreakawaySpawnsChildAfterThreshold(t *testing.T) {
	g := twoIslandGrid(1, 8)
	fg := fieldGridFor(g, 1)
	c := country.NewCountry(1, "Empire", 0, country.TypeWarmonger)
	c.CapitalCellIndex = g.Index(0, 0)
	c.Cohorts[0] = 10000
	countries := map[int]*country.Country{1: c}

	nextIndex := func() (int, bool) { return 2, true }

	var ev *Event
	for year := 20; year <= 140; year += 20 {
		if e := TickOverseasBreakaway(g, fg, countries, c, year, nextIndex); e != nil {
			ev = e
			break
		}
	}
	require.NotNil(t, ev)
	require.Equal(t, 1, ev.ParentIndex)
	require.Equal(t, 2, ev.ChildIndex)
	require.Contains(t, countries, 2)
	require.Equal(t, 0, c.OverseasLowControlYears)
}

func TestTickOverseasBreakawayOffCadenceYearNoOp(t *testing.T) {
	g := twoIslandGrid(1, 8)
	fg := fieldGridFor(g, 1)
	c := country.NewCountry(1, "Empire", 0, country.TypeWarmonger)
	countries := map[int]*country.Country{1: c}

	ev := TickOverseasBreakaway(g, fg, countries, c, 21, func() (int, bool) { return 2, true })
	require.Nil(t, ev)
	require.Equal(t, 0, c.OverseasLowControlYears)
}

func TestTickOverseasBreakawayNoOverseasResetsCounter(t *testing.T) {
	g := squareGrid(10, 1, 8)
	fg := fieldGridFor(g, 1)
	c := country.NewCountry(1, "Empire", 0, country.TypeWarmonger)
	c.CapitalCellIndex = g.Index(0, 0)
	c.OverseasLowControlYears = 60
	countries := map[int]*country.Country{1: c}

	ev := TickOverseasBreakaway(g, fg, countries, c, 20, func() (int, bool) { return 2, true })
	require.Nil(t, ev)
	require.Equal(t, 0, c.OverseasLowControlYears)
}
