package political

import (
	"github.com/talgya/worldkernel/internal/country"
	"github.com/talgya/worldkernel/internal/worldmap"
)

// TickResult bundles every event the three mechanisms produced this year,
// for reporting/news purposes.
type TickResult struct {
	Fragmentations []Event
	Breakaways     []Event
	TagReplaced    []int
}

// Tick runs fragmentation, tag replacement, and overseas breakaway in that
// order, per spec.md section 4.10. maxCountries is a hard cap: nextIndex
// must stop handing out indices once len(countries) would reach it, and
// callers must pre-size countries' backing storage so appending a child
// never reallocates mid-step (spec.md section 4.10's vector-growth guard).
func Tick(
	g *worldmap.Grid,
	fg *worldmap.FieldGrid,
	countries map[int]*country.Country,
	signals map[int]Signals,
	control map[int]float64,
	cityCounts map[int]int,
	year int,
	maxCountries int,
	nextIndex func() (int, bool),
) TickResult {
	capped := func() func() (int, bool) {
		return func() (int, bool) {
			if len(countries) >= maxCountries {
				return 0, false
			}
			return nextIndex()
		}
	}

	var result TickResult

	result.Fragmentations = TickFragmentation(g, fg, countries, signals, year, capped())

	for _, i := range sortedAliveIndices(countries) {
		c := countries[i]
		if !c.Alive || c.AtWar {
			continue
		}
		if TickTagReplacement(c, control[i], cityCounts[i], year) {
			result.TagReplaced = append(result.TagReplaced, i)
		}
	}

	for _, i := range sortedAliveIndices(countries) {
		c := countries[i]
		if !c.Alive {
			continue
		}
		if ev := TickOverseasBreakaway(g, fg, countries, c, year, capped()); ev != nil {
			result.Breakaways = append(result.Breakaways, *ev)
		}
	}

	return result
}

func sortedAliveIndices(countries map[int]*country.Country) []int {
	idx := make([]int, 0, len(countries))
	for i := range countries {
		idx = append(idx, i)
	}
	sortAscending(idx)
	return idx
}
