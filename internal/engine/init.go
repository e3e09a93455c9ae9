package engine

import (
	"fmt"
	"sort"

	"github.com/talgya/worldkernel/internal/climate"
	"github.com/talgya/worldkernel/internal/control"
	"github.com/talgya/worldkernel/internal/country"
	"github.com/talgya/worldkernel/internal/determinism"
	"github.com/talgya/worldkernel/internal/economy"
	"github.com/talgya/worldkernel/internal/kernelerr"
	"github.com/talgya/worldkernel/internal/population"
	"github.com/talgya/worldkernel/internal/worldmap"
)

// initialSpawnPopulation is the total population seeded at each country's
// capital at world init, before any births/migration run.
const initialSpawnPopulation = 400.0

// minSpawnSpacing is the minimum raw-cell Chebyshev distance between two
// chosen capitals, so initial territories don't immediately overlap.
const minSpawnSpacing = 6

// NewWorld builds a World from ctx's configuration: it loads or generates
// the raster layers, derives resource potentials, constructs the control/
// climate/economy caches, and spawns ctx.Config.NumCountries countries onto
// preferred spawn-zone cells (falling back to the highest-food land cells
// when no spawn-zones layer is configured), per spec.md section 3's
// "Country created at world init by territory-claim" lifecycle note.
func NewWorld(ctx SimulationContext) (*World, error) {
	cfg := ctx.Config

	var layers *worldmap.LoadedLayers
	if cfg.BaseMapPath != "" {
		var err error
		layers, err = worldmap.LoadLayers(cfg)
		if err != nil {
			return nil, err
		}
	} else {
		layers = worldmap.GenerateLayers(512, 512, int64(ctx.WorldSeed), cfg)
	}

	g := worldmap.NewGrid(layers.Width, layers.Height, cfg.MaxCountries)
	worldmap.DeriveResourcePotentials(g, layers, cfg)

	factor := cfg.FieldDownsample
	if factor < 1 {
		factor = 1
	}
	fg := worldmap.NewFieldGrid(g, factor)
	baseline := climate.NewBaseline(fg)
	climate.ApplyBiomeMoveCost(fg, baseline)

	w := &World{
		Grid:            g,
		Field:           fg,
		ClimateBaseline: baseline,
		Weather:         climate.NewAnomalyGrid(fg.Width, fg.Height),
		ControlCache:    control.NewCache(),
		TradeMatrix:     economy.NewMatrix(cfg.MaxCountries),
		GreatPeople:     country.NewManager(ctx.WorldSeed, cfg.StartYear),
		Countries:       make(map[int]*country.Country, cfg.NumCountries),
		MaxCountries:    cfg.MaxCountries,
		AvgControl:      make(map[int]float64, cfg.NumCountries),
		WarStartYears:   nil,
		Year:            cfg.StartYear,
	}

	spawnCells := chooseSpawnCells(layers, g, cfg.NumCountries)
	if len(spawnCells) == 0 {
		return nil, kernelerr.NewConfigError("base_map_path", fmt.Errorf("no land cells available to spawn countries"))
	}

	for i, cellIdx := range spawnCells {
		idx, ok := w.nextCountryIndex()
		if !ok {
			break
		}
		typeU := determinism.HashedUnitN(ctx.WorldSeed, determinism.SaltCulture, cfg.StartYear, idx, 7)
		t := country.TypeTrader
		switch {
		case typeU < 0.3:
			t = country.TypeWarmonger
		case typeU < 0.5:
			t = country.TypePacifist
		}

		c := country.NewCountry(idx, capitalName(i), cfg.StartYear, t)
		c.CapitalCellIndex = cellIdx
		x, y := cellIdx%g.Width, cellIdx/g.Width
		g.SetOwner(x, y, idx)

		rng := determinism.NewCountryRNG(ctx.WorldSeed, idx)
		fieldCapital := fg.IndexForRawCell(cellIdx)
		population.SeedInitialPopulation(fg, idx, fieldCapital, 3, initialSpawnPopulation, rng)
		c.Cohorts = country.Cohorts{
			initialSpawnPopulation * 0.28,
			initialSpawnPopulation * 0.22,
			initialSpawnPopulation * 0.30,
			initialSpawnPopulation * 0.14,
			initialSpawnPopulation * 0.06,
		}

		w.Countries[idx] = c
	}

	return w, nil
}

// chooseSpawnCells picks up to want raw-cell indices, preferring cells
// flagged in the spawn-zones layer (scanned in row-major order, spec.md
// section 4.12's canonical iteration order) and falling back to the
// highest-food land cells once the spawn-zone supply is exhausted, subject
// to a minimum spacing so capitals don't start adjacent.
func chooseSpawnCells(layers *worldmap.LoadedLayers, g *worldmap.Grid, want int) []int {
	type candidate struct {
		idx  int
		food float64
	}

	var preferred, fallback []candidate
	for idx, land := range layers.Land {
		if !land {
			continue
		}
		c := candidate{idx: idx, food: g.FoodPotential[idx]}
		if layers.SpawnZones[idx] {
			preferred = append(preferred, c)
		} else {
			fallback = append(fallback, c)
		}
	}

	// Preferred cells keep row-major order (the placement intent of a
	// hand-authored spawn map); the fallback ranks by food potential
	// descending, ties broken by the lower cell index.
	sort.SliceStable(fallback, func(i, j int) bool {
		if fallback[i].food != fallback[j].food {
			return fallback[i].food > fallback[j].food
		}
		return fallback[i].idx < fallback[j].idx
	})

	var chosen []int
	place := func(cands []candidate) {
		w := g.Width
		for _, cd := range cands {
			if len(chosen) >= want {
				return
			}
			x, y := cd.idx%w, cd.idx/w
			tooClose := false
			for _, other := range chosen {
				ox, oy := other%w, other/w
				dx, dy := x-ox, y-oy
				if dx < 0 {
					dx = -dx
				}
				if dy < 0 {
					dy = -dy
				}
				if dx < minSpawnSpacing && dy < minSpawnSpacing {
					tooClose = true
					break
				}
			}
			if !tooClose {
				chosen = append(chosen, cd.idx)
			}
		}
	}
	place(preferred)
	place(fallback)
	return chosen
}

func capitalName(ordinal int) string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	if ordinal < len(letters) {
		return fmt.Sprintf("Polity %c", letters[ordinal])
	}
	return fmt.Sprintf("Polity %c%d", letters[ordinal%len(letters)], ordinal/len(letters))
}
