// Package culture implements the seven cultural traits' yearly drift and
// contact-based convergence, and institution (civic) unlocks (spec.md
// section 4.9).
package culture

import (
	"math"

	"github.com/talgya/worldkernel/internal/country"
	"github.com/talgya/worldkernel/internal/determinism"
	"github.com/talgya/worldkernel/internal/technology"
)

// Trait indexes into a country's Traits array. Names are descriptive only;
// spec.md treats all seven uniformly as [0,1] scalars drifting toward a
// domain-derived attractor.
type Trait int

const (
	TraitIndividualism Trait = iota
	TraitMilitarism
	TraitOpenness
	TraitHierarchy
	TraitSpirituality
	TraitMercantilism
	TraitInnovation
)

const traitCount = int(country.NumTraits)

// driftNoiseScale bounds the deterministic per-(country,year,trait) noise
// term drift adds around the attractor pull (§4.9 step a).
const driftNoiseScale = 0.01

// driftRate is how quickly a trait closes the gap toward its attractor
// each simulated year.
const driftRate = 0.02

// convergenceRate scales the symmetric pairwise pull two countries in
// contact exert on each other's traits (§4.9 step b).
const convergenceRate = 0.015

// Attractor computes the domain-derived pull a trait drifts toward, from
// the country's current knowledge-domain stocks. Each trait is associated
// with the domain(s) that plausibly shape it.
func Attractor(c *country.Country, t Trait) float64 {
	k := c.Knowledge
	switch t {
	case TraitIndividualism:
		return determinism.Clamp01(0.3 + 0.4*k[technology.DomainAdministration])
	case TraitMilitarism:
		return determinism.Clamp01(0.5 - 0.3*k[technology.DomainMedicine])
	case TraitOpenness:
		return determinism.Clamp01(0.3 + 0.5*k[technology.DomainMaritime])
	case TraitHierarchy:
		return determinism.Clamp01(0.6 - 0.3*k[technology.DomainAdministration])
	case TraitSpirituality:
		return determinism.Clamp01(0.5)
	case TraitMercantilism:
		return determinism.Clamp01(0.2 + 0.6*k[technology.DomainCommerce])
	case TraitInnovation:
		return determinism.Clamp01(0.2 + 0.6*k[technology.DomainScience])
	default:
		return 0.5
	}
}

// TickDrift runs §4.9 step a for every trait of one country: a small pull
// toward the trait's attractor plus deterministic per-(country,year,trait)
// noise.
func TickDrift(c *country.Country, worldSeed uint64, year, dtYears int) {
	dt := float64(dtYears)
	for t := 0; t < traitCount; t++ {
		attractor := Attractor(c, Trait(t))
		noise := (determinism.HashedUnitN(worldSeed, determinism.SaltCulture, year, c.Index, t)*2 - 1) * driftNoiseScale
		delta := driftRate*(attractor-c.Traits[t])*dt + noise
		c.Traits[t] = determinism.Clamp01(c.Traits[t] + delta)
	}
}

// TickConvergence runs §4.9 step b over every contact pair: each pair
// pulls both sides' traits toward each other, weighted by trade intensity
// and neighbor contact.
func TickConvergence(countries map[int]*country.Country, tradeIntensity func(a, b int) float64, neighbor func(a, b int) bool, dtYears int) {
	dt := float64(dtYears)
	indices := make([]int, 0, len(countries))
	for _, i := range determinism.SortedIntKeys(countries) {
		if countries[i].Alive {
			indices = append(indices, i)
		}
	}
	for ii := 0; ii < len(indices); ii++ {
		for jj := ii + 1; jj < len(indices); jj++ {
			a, b := indices[ii], indices[jj]
			if !neighbor(a, b) && tradeIntensity(a, b) <= 0 {
				continue
			}
			weight := math.Max(tradeIntensity(a, b), 0)
			if neighbor(a, b) {
				weight = math.Max(weight, 0.2)
			}
			ca, cb := countries[a], countries[b]
			for t := 0; t < traitCount; t++ {
				gap := cb.Traits[t] - ca.Traits[t]
				pull := convergenceRate * weight * gap * dt
				ca.Traits[t] = determinism.Clamp01(ca.Traits[t] + pull)
				cb.Traits[t] = determinism.Clamp01(cb.Traits[t] - pull)
			}
		}
	}
}
