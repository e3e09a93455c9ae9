package population

import (
	"math"

	"github.com/talgya/worldkernel/internal/country"
	"github.com/talgya/worldkernel/internal/determinism"
	"github.com/talgya/worldkernel/internal/worldmap"
)

// CitySignal bundles the per-field-cell inputs §4.5's specialization
// formula needs beyond what FieldGrid already stores.
type CitySignal struct {
	MarketAccess float64
	Stability    float64
}

// Specialization computes σ(4·(crowding-1) + 2·(marketAccess-0.35) +
// 1.8·(foodSecurity-0.8) + 1.6·(control-0.5) + 1·(stability-0.5)), per §4.5.
func Specialization(fg *worldmap.FieldGrid, idx int, foodSecurity float64, sig CitySignal) float64 {
	crowding := determinism.SafeDiv(fg.Population[idx], math.Max(fg.FoodPotential[idx]*fg.FoodYieldMultiplier[idx], 1))
	x := 4*(crowding-1) + 2*(sig.MarketAccess-0.35) + 1.8*(foodSecurity-0.8) +
		1.6*(fg.Control[idx]-0.5) + 1*(sig.Stability-0.5)
	return determinism.Sigmoid(x)
}

// UrbanShare maps a specialization score to an urban population share in
// [0.01, 0.45], per §4.5.
func UrbanShare(spec float64) float64 {
	return determinism.Clamp(0.01+0.35*spec, 0.01, 0.45)
}

// cityCheckCadence returns the country-dependent check cadence (10 or 50
// years) for city-formation scans, per §4.5.
func cityCheckCadence(c *country.Country) int {
	if c.Type == country.TypeTrader {
		return 10
	}
	return 50
}

// requiredUrbanThreshold is max(8000, 0.015*pop), per §4.5.
func requiredUrbanThreshold(population float64) float64 {
	return math.Max(8000, 0.015*population)
}

// persistStreakTarget is N=2 at 75+ year cadence, else 3, per §4.5.
func persistStreakTarget(cadence int) int {
	if cadence >= 75 {
		return 2
	}
	return 3
}

// FoundedCity is one newly approved city, ready for the caller to place at
// a concrete owned land pixel (center fallback) within its field cell.
type FoundedCity struct {
	FieldIndex int
	UrbanPop   float64
}

// ScanForCities runs §4.5's per-country cadenced city-formation scan: for
// every field cell majority-owned by c, track the best urbanPop-scoring
// candidate with spacing >= 2 field cells, requiring it to exceed the
// required-urban threshold, exhibit crowding > 1.03, and persist as the
// same best candidate for the country's streak target across consecutive
// checks. Returns any cities approved this call.
func ScanForCities(fg *worldmap.FieldGrid, c *country.Country, year int, marketAccessAt, foodSecurity float64) []FoundedCity {
	cadence := cityCheckCadence(c)
	if year%cadence != 0 {
		return nil
	}

	type candidate struct {
		idx      int
		urbanPop float64
		crowding float64
	}
	var candidates []candidate

	for idx, owner := range fg.OwnerID {
		if int(owner) != c.Index || fg.Population[idx] <= 0 {
			continue
		}
		spec := Specialization(fg, idx, foodSecurity, CitySignal{MarketAccess: marketAccessAt, Stability: c.Polity.Stability})
		share := UrbanShare(spec)
		urbanPop := fg.Population[idx] * share
		crowding := determinism.SafeDiv(fg.Population[idx], math.Max(fg.FoodPotential[idx]*fg.FoodYieldMultiplier[idx], 1))
		candidates = append(candidates, candidate{idx: idx, urbanPop: urbanPop, crowding: crowding})
	}
	if len(candidates) == 0 {
		return nil
	}

	determinism.SortCanonical(candidates, func(c candidate) determinism.CanonicalKey {
		return determinism.CanonicalKey{Population: c.urbanPop, Row: c.idx / fg.Width, Col: c.idx % fg.Width}
	})

	threshold := requiredUrbanThreshold(c.Population())
	streakTarget := persistStreakTarget(cadence)

	seen := map[int]bool{}
	var founded []FoundedCity

	for _, cand := range candidates {
		if cand.urbanPop < threshold || cand.crowding <= 1.03 {
			continue
		}
		fx, fy := cand.idx%fg.Width, cand.idx/fg.Width
		tooClose := false
		for placed := range seen {
			px, py := placed%fg.Width, placed/fg.Width
			if (px-fx)*(px-fx)+(py-fy)*(py-fy) < 4 {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}

		existing, ok := c.CityCandidates[cand.idx]
		if !ok {
			existing = &country.CityCandidate{FieldX: fx, FieldY: fy, Streak: 0}
			c.CityCandidates[cand.idx] = existing
		}
		existing.Streak++

		if existing.Streak >= streakTarget {
			founded = append(founded, FoundedCity{FieldIndex: cand.idx, UrbanPop: cand.urbanPop})
			delete(c.CityCandidates, cand.idx)
		}
		seen[cand.idx] = true
	}

	// Any tracked candidate not re-selected this check resets its streak,
	// per §4.5's "persist as the same best candidate for N consecutive
	// checks" requirement.
	for idx := range c.CityCandidates {
		if !seen[idx] {
			delete(c.CityCandidates, idx)
		}
	}

	return founded
}
