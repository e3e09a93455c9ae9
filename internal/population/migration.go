// Package population implements the field-population grid's short-hop and
// long-hop migration, and city formation from urbanization specialization
// (spec.md §4.5). Per-country demography/epidemiology lives in
// internal/country; this package only moves population mass between field
// cells and between countries.
package population

import (
	"math"

	"github.com/talgya/worldkernel/internal/config"
	"github.com/talgya/worldkernel/internal/country"
	"github.com/talgya/worldkernel/internal/determinism"
	"github.com/talgya/worldkernel/internal/worldmap"
)

// CountrySignals bundles the per-country macro scalars that feed every one
// of that country's field cells' attractiveness score (§4.5).
type CountrySignals struct {
	Attractiveness float64
	Outflow        float64
	RefugeePush    float64
	RealWage       float64
	DiseaseBurden  float64
	Control        float64
	Legitimacy     float64
	AtWar          bool
	Traits         [country.NumTraits]float64
}

// SeedInitialPopulation allocates a country's starting population across a
// radius-R disk of its owned field cells, weighted by
// foodPotential*foodYieldMultiplier, per §4.5's initial-seeding rule.
func SeedInitialPopulation(fg *worldmap.FieldGrid, countryIndex int, capitalFieldIndex int, radius int, totalPopulation float64, rng RNGSource) {
	cx, cy := capitalFieldIndex%fg.Width, capitalFieldIndex/fg.Width

	type weighted struct {
		idx    int
		weight float64
	}
	var candidates []weighted
	var totalWeight float64

	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > radius*radius {
				continue
			}
			x, y := cx+dx, cy+dy
			if !fg.InBounds(x, y) {
				continue
			}
			idx := fg.Index(x, y)
			if int(fg.OwnerID[idx]) != countryIndex {
				continue
			}
			w := fg.FoodPotential[idx] * fg.FoodYieldMultiplier[idx]
			if w <= 0 {
				continue
			}
			candidates = append(candidates, weighted{idx: idx, weight: w})
			totalWeight += w
		}
	}
	if totalWeight <= 0 || len(candidates) == 0 {
		return
	}

	var allocated float64
	for i, cwt := range candidates {
		var share float64
		if i == len(candidates)-1 {
			share = totalPopulation - allocated
		} else {
			share = totalPopulation * cwt.weight / totalWeight
		}
		fg.Population[cwt.idx] += share
		allocated += share
	}
	_ = rng // residual allocation above is exact; rng reserved for tie-breaking extensions.
}

// RNGSource is the minimal per-country deterministic generator interface
// SeedInitialPopulation accepts. SeedInitialPopulation draws nothing from
// it: the last candidate cell receives the whole residual.
type RNGSource interface {
	Float64() float64
}

// attractivenessAt computes one field cell's short-hop attractiveness
// signal per §4.5: log(1+foodPotential) - crowdingWeight*crowding +
// country macro signals. crowdingWeight is config.Migration.CrowdingWeight.
func attractivenessAt(fg *worldmap.FieldGrid, idx int, sig CountrySignals, crowdingWeight float64) float64 {
	crowding := determinism.SafeDiv(fg.Population[idx], math.Max(fg.FoodPotential[idx]*fg.FoodYieldMultiplier[idx], 1))
	warPenalty := 0.0
	if sig.AtWar {
		warPenalty = 0.25
	}
	return math.Log(1+fg.FoodPotential[idx]) - crowdingWeight*crowding +
		sig.Attractiveness - sig.Outflow - sig.RefugeePush + sig.RealWage -
		sig.DiseaseBurden + sig.Control + sig.Legitimacy - warPenalty
}

var shortHopNeighborOffsets = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// ShortHopMigration runs max(1, dtYears/2) micro-iterations of per-field
// population movement toward higher-attractiveness neighbors, per §4.5.
func ShortHopMigration(fg *worldmap.FieldGrid, signals map[int]CountrySignals, cfg config.Document, dtYears int) {
	iterations := dtYears / 2
	if iterations < 1 {
		iterations = 1
	}

	attract := make([]float64, len(fg.Population))
	crowdingWeight := cfg.Migration.CrowdingWeight

	for it := 0; it < iterations; it++ {
		for idx, owner := range fg.OwnerID {
			if owner < 0 {
				attract[idx] = 0
				continue
			}
			sig, ok := signals[int(owner)]
			if !ok {
				attract[idx] = 0
				continue
			}
			attract[idx] = attractivenessAt(fg, idx, sig, crowdingWeight)
		}

		deltas := make([]float64, len(fg.Population))
		for idx, owner := range fg.OwnerID {
			if owner < 0 || fg.Population[idx] <= 0 {
				continue
			}
			fx, fy := idx%fg.Width, idx/fg.Width

			var sumPositiveDelta float64
			type move struct {
				target int
				delta  float64
			}
			var moves []move

			for _, d := range shortHopNeighborOffsets {
				nx, ny := fx+d[0], fy+d[1]
				if !fg.InBounds(nx, ny) {
					continue
				}
				nIdx := fg.Index(nx, ny)
				if int(fg.OwnerID[nIdx]) != int(owner) {
					continue
				}
				delta := attract[nIdx] - attract[idx]
				if delta > 0 {
					moves = append(moves, move{target: nIdx, delta: delta})
					sumPositiveDelta += delta
				}
			}
			if sumPositiveDelta <= 0 {
				continue
			}

			migRate := cfg.Migration.MigRate
			movable := math.Min(fg.Population[idx], fg.Population[idx]*migRate)

			for _, mv := range moves {
				frac := mv.delta / sumPositiveDelta
				amount := movable * frac * fg.CorridorWeight[mv.target]
				amount = math.Min(amount, fg.Population[idx]+deltas[idx])
				deltas[idx] -= amount
				deltas[mv.target] += amount
			}
		}

		for idx := range fg.Population {
			fg.Population[idx] = math.Max(0, fg.Population[idx]+deltas[idx])
		}
	}
}
