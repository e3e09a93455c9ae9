// Package engine assembles every per-tick component into the authoritative
// yearly simulation kernel (spec.md section 2): a World aggregate carrying
// all dynamic state, and a fixed eight-stage tick driver with cancellation
// and invariant checking (spec.md sections 5, 7, 8).
package engine

import (
	"math"

	"github.com/talgya/worldkernel/internal/climate"
	"github.com/talgya/worldkernel/internal/control"
	"github.com/talgya/worldkernel/internal/country"
	"github.com/talgya/worldkernel/internal/culture"
	"github.com/talgya/worldkernel/internal/determinism"
	"github.com/talgya/worldkernel/internal/economy"
	"github.com/talgya/worldkernel/internal/political"
	"github.com/talgya/worldkernel/internal/population"
	"github.com/talgya/worldkernel/internal/technology"
	"github.com/talgya/worldkernel/internal/worldmap"
)

// controlSoftness is the Dijkstra-to-control sigmoid spread (§4.4's
// Softness input, clamped to [1.25, 5.5]); a single world-wide constant
// until a per-terrain variant is needed.
const controlSoftness = 2.5

// warHistoryYears bounds how far back World.WarStartYears is kept; a
// trailing century is all internal/report's warFrequencyPerCentury needs.
const warHistoryYears = 100

// RunYear advances w by dtYears simulated years, running the fixed
// eight-stage tick in spec.md section 2's order: territorial/military
// update, weather, macro economy, demography and cities, technology,
// culture, great-person effects, and political events. Each stage
// completes fully across every living country before the next begins, so
// a stage either commits atomically or (at a future cancellation point,
// checked only between stages and between years) never starts.
func RunYear(ctx SimulationContext, w *World, dtYears int) {
	if dtYears < 1 {
		dtYears = 1
	}
	alive := sortedAliveIndices(w.Countries)

	militaryMult := buildMilitaryMultipliers(w, alive)
	tickUpdateCountries(ctx, w, alive, militaryMult)
	tickControlReach(w, alive, dtYears)

	tickWeather(ctx, w)

	tickMacroEconomy(ctx, w, alive, dtYears)

	tickDemographyAndCities(ctx, w, alive, dtYears)

	tickTechnology(ctx, w, alive, dtYears)

	tickCulture(ctx, w, alive, dtYears)

	w.GreatPeople.UpdateEffects(w.Year, len(alive))

	tickPoliticalEvents(w, alive)

	w.Year += dtYears
	pruneWarHistory(w)
}

// pruneWarHistory drops war-start years older than warHistoryYears so
// World.WarStartYears stays bounded across a multi-millennium run.
func pruneWarHistory(w *World) {
	cutoff := w.Year - warHistoryYears
	kept := w.WarStartYears[:0]
	for _, y := range w.WarStartYears {
		if y >= cutoff {
			kept = append(kept, y)
		}
	}
	w.WarStartYears = kept
}

func buildMilitaryMultipliers(w *World, alive []int) map[int]float64 {
	mult := make(map[int]float64, len(alive))
	for _, i := range alive {
		mult[i] = w.GreatPeople.EffectsFor(i).MilitaryMult
	}
	return mult
}

// tickUpdateCountries runs step 1: per-country expansion, war, and
// infrastructure (internal/country's TickAgent), in ascending index order
// per spec.md section 4.12.
func tickUpdateCountries(ctx SimulationContext, w *World, alive []int, militaryMult map[int]float64) {
	for _, i := range alive {
		c := w.Countries[i]
		wasAtWar := c.AtWar
		agentCtx := country.AgentContext{
			OwnedFoodSum: w.Grid.FoodSum[i],
			MilitaryMult: militaryMult[i],
			Neighbors:    w.Grid.AdjacentCountries(i),
		}
		country.TickAgent(w.Grid, w.Field, c, w.Countries, agentCtx, militaryMult, ctx.Config.Expansion, ctx.WorldSeed, w.Year)
		if !wasAtWar && c.AtWar {
			w.WarStartYears = append(w.WarStartYears, w.Year)
		}
	}
}

// tickControlReach refreshes each country's control-reach field on its
// staggered cadence (spec.md section 4.4), seeded from the capital plus
// its founded cities.
func tickControlReach(w *World, alive []int, dtYears int) {
	for _, i := range alive {
		c := w.Countries[i]
		if !w.ControlCache.ShouldRecompute(i, w.Year, dtYears, c.Polity.Roads, c.Polity.Ports) {
			continue
		}
		seeds := controlSeeds(w, c)
		in := control.Inputs{
			AdminSpendShare:    c.Polity.AdminSpendShare,
			InfraSpendShare:    c.Polity.InfraSpendShare,
			LogisticsReach:     c.Polity.LogisticsReach,
			InstitutionCap:     c.Economy.InstitutionCapacity,
			AverageControlPrev: w.AvgControl[i],
			KnowledgeStock:     c.Economy.KnowledgeStockAvg,
			ConnectivityIndex:  c.Economy.ConnectivityIndex,
			Legitimacy:         c.Polity.Legitimacy,
			Softness:           controlSoftness,
		}
		w.AvgControl[i] = control.ComputeForCountry(w.Field, i, seeds, in)
		w.ControlCache.MarkComputed(i, w.Year, c.Polity.Roads, c.Polity.Ports)
	}
}

func controlSeeds(w *World, c *country.Country) []control.Seed {
	capitalField := w.Field.IndexForRawCell(c.CapitalCellIndex)
	seeds := []control.Seed{{
		FieldIndex: capitalField,
		Population: math.Max(c.Population(), 1),
		Row:        capitalField / w.Field.Width,
		Col:        capitalField % w.Field.Width,
	}}
	for idx, pop := range c.Cities {
		seeds = append(seeds, control.Seed{
			FieldIndex: idx,
			Population: pop,
			Row:        idx / w.Field.Width,
			Col:        idx % w.Field.Width,
		})
	}
	return seeds
}

// tickWeather runs step 2: the yearly climate anomaly draw and its
// resulting food-yield multiplier over every field cell (spec.md section
// 4.3).
func tickWeather(ctx SimulationContext, w *World) {
	w.Weather.Tick(ctx.WorldSeed, w.Year)
	climate.ApplyFoodYield(w.Field, w.ClimateBaseline, w.Weather)
}

// tickMacroEconomy runs step 3: per-country stockpile/price/debt update,
// then rebuilds the dense trade-intensity matrix from the now-current
// ownership grid (spec.md section 4.7).
func tickMacroEconomy(ctx SimulationContext, w *World, alive []int, dtYears int) {
	for _, i := range alive {
		c := w.Countries[i]
		in := economy.Inputs{
			FoodPotentialSum:    w.Grid.FoodSum[i],
			NonFoodPotentialSum: w.Grid.NonFoodSum[i],
			Population:          c.Population(),
			ClimateFoodMult:     climate.CountryFoodMultiplier(w.Field, i),
		}
		economy.TickStocksAndPrices(c, in, ctx.Config, dtYears)
	}
	w.TradeMatrix = economy.Rebuild(w.Grid, w.Countries)
}

// tickDemographyAndCities runs step 4: per-country births/deaths/aging and
// SIR epidemiology, then population movement (short-hop attractiveness
// diffusion and long-hop inter-country migration) and city formation
// (spec.md sections 4.5, 4.6).
func tickDemographyAndCities(ctx SimulationContext, w *World, alive []int, dtYears int) {
	for _, i := range alive {
		c := w.Countries[i]
		in := country.DemographyInputs{
			LastFoodOutput:    c.Economy.LastFoodOutput,
			ImportsValue:      c.Economy.ImportsValue,
			PriceFood:         c.Economy.PriceFood,
			HumanityProxy:     determinism.SafeDiv(c.UrbanPopulation, c.Population()),
			HealthSpending:    c.Polity.FiscalCapacity * 0.1,
			ImportedInfection: neighborInfectionPressure(w, c),
			BorderShare:       determinism.SafeDiv(float64(len(w.Grid.AdjacentCountries(i))), float64(len(alive))),
			War:               c.AtWar,
			Migration:         ctx.Config.Migration,
		}
		country.TickDemography(c, ctx.WorldSeed, w.Year, dtYears, in)
		if c.Population() <= 0 {
			c.Alive = false
			w.CollapseCount++
		}
	}

	signals := make(map[int]population.CountrySignals, len(alive))
	for _, i := range alive {
		c := w.Countries[i]
		signals[i] = population.CountrySignals{
			Attractiveness: c.Economy.MigrationAttractiveness,
			Outflow:        c.Economy.MigrationPressureOut,
			RefugeePush:    c.Economy.RefugeePush,
			RealWage:       c.Economy.RealWage,
			DiseaseBurden:  c.Economy.DiseaseBurden,
			Control:        w.AvgControl[i],
			Legitimacy:     c.Polity.Legitimacy,
			AtWar:          c.AtWar,
			Traits:         c.Traits,
		}
	}
	population.ShortHopMigration(w.Field, signals, ctx.Config, dtYears)

	outwardFraction := ctx.Config.Migration.MigRate * float64(dtYears)
	for _, i := range alive {
		c := w.Countries[i]
		partners := population.ScorePartners(w.Grid, w.Field, w.Countries, w.TradeMatrix, i, ctx.Config)
		population.ApplyLongHop(w.Field, w.Grid, c, partners, outwardFraction)
	}

	for _, i := range alive {
		c := w.Countries[i]
		founded := population.ScanForCities(w.Field, c, w.Year, c.Economy.MarketAccess, c.Economy.FoodSecurity)
		for _, f := range founded {
			c.Cities[f.FieldIndex] = f.UrbanPop
		}
		var urban float64
		for _, pop := range c.Cities {
			urban += pop
		}
		c.UrbanPopulation = urban
	}
}

func neighborInfectionPressure(w *World, c *country.Country) float64 {
	var weighted, totalWeight float64
	for _, n := range w.Grid.AdjacentCountries(c.Index) {
		other, ok := w.Countries[n]
		if !ok || !other.Alive {
			continue
		}
		weight, ok := w.TradeMatrix.Connectivity(c.Index, n)
		if !ok {
			weight = 0.1
		}
		weighted += weight * other.SIR.Infected
		totalWeight += weight
	}
	if totalWeight <= 0 {
		return 0
	}
	return weighted / totalWeight
}

// tickTechnology runs step 5: per-country innovation/discovery/adoption,
// then pairwise knowledge diffusion over the trade and adjacency graphs
// (spec.md section 4.8).
func tickTechnology(ctx SimulationContext, w *World, alive []int, dtYears int) {
	for _, i := range alive {
		c := w.Countries[i]
		hasCoast, hasRiver := terrainFlags(w.Grid, i)
		s := technology.Signals{
			Population:          c.Population(),
			UrbanPopulation:     c.UrbanPopulation,
			Specialization:      determinism.SafeDiv(c.UrbanPopulation, c.Population()),
			InstitutionCapacity: c.Economy.InstitutionCapacity,
			Stability:           c.Polity.Stability,
			Legitimacy:          c.Polity.Legitimacy,
			MarketAccess:        c.Economy.MarketAccess,
			ConnectivityIndex:   c.Economy.ConnectivityIndex,
			EducationInvestment: c.Economy.EducationInvestment,
			RnDInvestment:       c.Economy.RnDInvestment,
			FamineSeverity:      c.Economy.FamineSeverity,
			AtWar:               c.AtWar,
			ClimateFoodMult:     c.Economy.ClimateFoodMultiplier,
			FarmingPotential:    w.Grid.FarmingSum[i],
			ForagingPotential:   w.Grid.ForagingSum[i],
			OreAvail:            w.Grid.OreSum[i],
			EnergyAvail:         w.Grid.EnergySum[i],
			ConstructionAvail:   w.Grid.ConstructionSum[i],
			HasCoastAccess:      hasCoast,
			HasRiverland:        hasRiver,
		}
		technology.TickCountry(c, s, ctx.Config.Technology, ctx.WorldSeed, w.Year, dtYears)
	}

	technology.TickDiffusion(w.Countries, ctx.Config.Technology, tradeIntensityFunc(w), neighborFunc(w), dtYears)
}

// tickCulture runs step 6: per-country trait drift, pairwise trait
// convergence over contact, and institution unlock checks (spec.md section
// 4.9).
func tickCulture(ctx SimulationContext, w *World, alive []int, dtYears int) {
	for _, i := range alive {
		c := w.Countries[i]
		culture.TickDrift(c, ctx.WorldSeed, w.Year, dtYears)
	}

	culture.TickConvergence(w.Countries, tradeIntensityFunc(w), neighborFunc(w), dtYears)

	for _, i := range alive {
		c := w.Countries[i]
		culture.TickInstitutions(c, w.AvgControl[i], w.Year)
	}
}

// tickPoliticalEvents runs step 8: fragmentation, tag replacement, and
// overseas breakaway, in that order (spec.md section 4.10).
func tickPoliticalEvents(w *World, alive []int) {
	signals := make(map[int]political.Signals, len(alive))
	controlByCountry := make(map[int]float64, len(alive))
	cityCounts := make(map[int]int, len(alive))
	for _, i := range alive {
		c := w.Countries[i]
		signals[i] = political.Signals{
			Control:      w.AvgControl[i],
			Legitimacy:   c.Polity.Legitimacy,
			TaxRate:      c.Economy.TaxRate,
			FamineStress: c.Economy.FamineSeverity,
			AtWar:        c.AtWar,
		}
		controlByCountry[i] = w.AvgControl[i]
		cityCounts[i] = len(c.Cities)
	}

	political.Tick(w.Grid, w.Field, w.Countries, signals, controlByCountry, cityCounts, w.Year, w.MaxCountries, w.nextCountryIndex)
}

func tradeIntensityFunc(w *World) func(a, b int) float64 {
	return func(a, b int) float64 {
		v, _ := w.TradeMatrix.Connectivity(a, b)
		return v
	}
}

func neighborFunc(w *World) func(a, b int) bool {
	return func(a, b int) bool {
		return w.Grid.IsAdjacent(a, b)
	}
}

// terrainFlags reports whether owner holds at least one riverland cell and
// at least one coastal (ocean-adjacent) land cell, scanning only owner's
// own cell list rather than the full grid.
func terrainFlags(g *worldmap.Grid, owner int) (hasCoast, hasRiver bool) {
	w := g.Width
	for _, idx := range g.OwnerCells(owner) {
		if g.Riverland[idx] {
			hasRiver = true
		}
		if !hasCoast {
			x, y := idx%w, idx/w
			for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || ny < 0 || nx >= w || ny >= g.Height {
					continue
				}
				if !g.Land[ny*w+nx] {
					hasCoast = true
					break
				}
			}
		}
		if hasCoast && hasRiver {
			return
		}
	}
	return
}
