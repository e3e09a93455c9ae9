package engine

import (
	"math"

	"github.com/talgya/worldkernel/internal/kernelerr"
)

// populationTolerance is the base slack between a world's summed cohort
// population and the previous checkpoint's total; CheckInvariants reports
// a violation only when the change exceeds ten times this value (1280).
const populationTolerance = 128.0

// CheckInvariants runs every structural and conservation invariant spec.md
// sections 7 and 8 require hold at a year boundary. It is a pure function
// of w: it never mutates state, only inspects it. lastWorldPopulation is
// the world population recorded at the previous checkpoint, or a negative
// value to skip the conservation check (e.g. the very first checkpoint).
func CheckInvariants(w *World, lastWorldPopulation float64) error {
	var worldPopulation float64

	for i, c := range w.Countries {
		if !c.Alive {
			continue
		}
		sum := c.Cohorts.Sum()
		if sum < 0 {
			return kernelerr.NewInvariantError(w.Year, "negative population")
		}
		if math.Abs(sum-c.Population()) > 1e-6 {
			return kernelerr.NewInvariantError(w.Year, "cohort sum diverges from Population()")
		}

		sirTotal := c.SIR.Susceptible + c.SIR.Infected + c.SIR.Recovered
		if math.Abs(sirTotal-1) > 1e-6 {
			return kernelerr.NewInvariantError(w.Year, "SIR compartments do not sum to 1")
		}

		for _, n := range w.Grid.AdjacentCountries(i) {
			if !w.Grid.IsAdjacent(n, i) {
				return kernelerr.NewInvariantError(w.Year, "adjacency is not symmetric")
			}
		}

		worldPopulation += sum
	}

	for idx, owner := range w.Field.OwnerID {
		if int(owner) >= w.MaxCountries {
			return kernelerr.NewInvariantError(w.Year, "field cell owner exceeds maxCountries")
		}
		if w.Field.Control[idx] < 0 || w.Field.Control[idx] > 1 {
			return kernelerr.NewInvariantError(w.Year, "field control scalar outside [0, 1]")
		}
		if w.Field.FoodYieldMultiplier[idx] != 0 &&
			(w.Field.FoodYieldMultiplier[idx] < 0.05 || w.Field.FoodYieldMultiplier[idx] > 1.80) {
			return kernelerr.NewInvariantError(w.Year, "food-yield multiplier outside [0.05, 1.80]")
		}
	}

	if lastWorldPopulation >= 0 && math.Abs(worldPopulation-lastWorldPopulation) > populationTolerance*10 {
		// A single year can shift world population further than the
		// per-checkpoint tolerance; this guards only against a gross
		// accounting break (mass created or destroyed outside births/
		// deaths/migration), not ordinary year-to-year change.
		return kernelerr.NewInvariantError(w.Year, "world population changed implausibly between checkpoints")
	}

	return nil
}

// WorldPopulation sums every living country's population, the checksum
// input for parity checks (spec.md section 6).
func WorldPopulation(w *World) float64 {
	var total float64
	for _, c := range w.Countries {
		if c.Alive {
			total += c.Population()
		}
	}
	return total
}

// PerCountryPopulationSum returns a country-index-weighted population sum
// (each living country's population scaled by its 1-based index), the
// parity checksum input that catches a population correctly totalled but
// misattributed between countries — a swap two countries' populations
// leaves WorldPopulation unchanged but changes this sum.
func PerCountryPopulationSum(w *World) float64 {
	var total float64
	for i, c := range w.Countries {
		if c.Alive {
			total += float64(i+1) * c.Population()
		}
	}
	return total
}

// TotalTerritoryCells counts every owned cell across every country, the
// second parity checksum input.
func TotalTerritoryCells(w *World) int64 {
	var total int64
	for i := range w.Countries {
		total += int64(len(w.Grid.OwnerCells(i)))
	}
	return total
}

// TotalGDP sums a coarse per-country output proxy (food plus non-food
// output valued at current prices) across every living country, the third
// parity checksum input.
func TotalGDP(w *World) float64 {
	var total float64
	for _, c := range w.Countries {
		if !c.Alive {
			continue
		}
		e := &c.Economy
		total += e.LastFoodOutput*e.PriceFood + e.LastGoodsOutput*e.PriceGoods + e.LastServicesOutput*e.PriceServices
	}
	return total
}

// TotalStockpiles sums every living country's food, non-food, capital, and
// military stockpiles, the fourth parity checksum input.
func TotalStockpiles(w *World) float64 {
	var total float64
	for _, c := range w.Countries {
		if !c.Alive {
			continue
		}
		e := &c.Economy
		total += e.FoodStock + e.NonFoodStock + e.CapitalStock + e.MilitarySupply
	}
	return total
}
