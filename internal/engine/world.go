// Package engine assembles every per-tick component into the authoritative
// yearly simulation kernel (spec.md section 2): a World aggregate carrying
// all dynamic state, and a fixed eight-stage tick driver with cancellation
// and invariant checking (spec.md sections 5, 7, 8).
package engine

import (
	"github.com/rs/zerolog"

	"github.com/talgya/worldkernel/internal/climate"
	"github.com/talgya/worldkernel/internal/config"
	"github.com/talgya/worldkernel/internal/control"
	"github.com/talgya/worldkernel/internal/country"
	"github.com/talgya/worldkernel/internal/economy"
	"github.com/talgya/worldkernel/internal/worldmap"
)

// SimulationContext is the kernel's single source of external inputs,
// threaded explicitly through every tick call — no process-wide
// singletons, per spec.md section 9's "Global mutable state" design note.
type SimulationContext struct {
	WorldSeed uint64
	Config    config.Document
	Log       *zerolog.Logger
}

// World aggregates all dynamic simulation state (spec.md section 9's
// "World value... passed by mutable reference"): the ownership grid, the
// downsampled field grid, every living or extinct country, and the
// derived caches each tick stage reads and writes.
type World struct {
	Grid  *worldmap.Grid
	Field *worldmap.FieldGrid

	ClimateBaseline *climate.Baseline
	Weather         *climate.AnomalyGrid
	ControlCache    *control.Cache
	TradeMatrix     *economy.Matrix
	GreatPeople     *country.Manager

	Countries    map[int]*country.Country
	nextCountry  int
	MaxCountries int

	// AvgControl holds each country's unweighted-mean control-reach value
	// from its last control-cache recompute (spec.md section 4.4), read by
	// the next control pass (AverageControlPrev), short-hop migration,
	// institution unlocks, and political events on years the cache does not
	// force a refresh.
	AvgControl map[int]float64

	// WarStartYears records the year of every AtWar false->true transition,
	// pruned to the trailing warHistoryYears window; internal/report derives
	// warFrequencyPerCentury from it.
	WarStartYears []int

	// CollapseCount counts every country that has gone extinct (population
	// reached zero) since world init; internal/report surfaces it verbatim.
	CollapseCount int

	Year int
}

// nextCountryIndex hands out the next country index under the hard
// maxCountries cap, per spec.md section 4.10's vector-growth guard: the
// countries map is never grown past MaxCountries mid-step.
func (w *World) nextCountryIndex() (int, bool) {
	if w.nextCountry >= w.MaxCountries {
		return 0, false
	}
	idx := w.nextCountry
	w.nextCountry++
	return idx, true
}

// sortedAliveIndices returns every living country index in ascending
// order, per spec.md section 4.12's country-iteration-order guarantee.
func sortedAliveIndices(countries map[int]*country.Country) []int {
	idx := make([]int, 0, len(countries))
	for i, c := range countries {
		if c.Alive {
			idx = append(idx, i)
		}
	}
	for i := 1; i < len(idx); i++ {
		for j := i; j > 0 && idx[j-1] > idx[j]; j-- {
			idx[j-1], idx[j] = idx[j], idx[j-1]
		}
	}
	return idx
}
