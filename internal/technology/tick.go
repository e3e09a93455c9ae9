package technology

import (
	"math"

	"github.com/talgya/worldkernel/internal/config"
	"github.com/talgya/worldkernel/internal/country"
	"github.com/talgya/worldkernel/internal/determinism"
)

// adoptionLogisticRate and traderShareBonus are §4.8 step 3's adoption
// formula constants not named by config.Technology; diffusion's eta,
// neighbor bonus, and cultural friction strength, and adoption's
// threshold/decay-streak length, come from cfg instead (§6).
const (
	adoptionLogisticRate = 0.08
	traderShareBonus     = 1.25
)

// fallbackAdoptionThreshold and fallbackLowAdoptionDecayYears guard a
// zero-valued config.Technology (e.g. a test building one by literal)
// rather than silently stalling every tech at a zero threshold.
const (
	fallbackAdoptionThreshold     = 0.65
	fallbackLowAdoptionDecayYears = 8
)

// Signals bundles the per-country scalars §4.8's innovation hazard,
// feasibility gates, and adoption rate all read.
type Signals struct {
	Population          float64
	UrbanPopulation      float64
	Specialization       float64
	InstitutionCapacity  float64
	Stability            float64
	Legitimacy           float64
	MarketAccess         float64
	ConnectivityIndex    float64
	EducationInvestment  float64
	RnDInvestment        float64
	FamineSeverity       float64
	AtWar                bool
	ClimateFoodMult      float64
	FarmingPotential     float64
	ForagingPotential    float64
	OreAvail             float64
	EnergyAvail          float64
	ConstructionAvail    float64
	HasCoastAccess       bool
	HasRiverland         bool
}

// TickCountry runs §4.8's per-country innovation, discovery, and adoption
// steps for one country. Diffusion (step 2, a pairwise operation) is run
// separately by TickDiffusion over every country pair in a single pass.
func TickCountry(c *country.Country, s Signals, cfg config.Technology, worldSeed uint64, year, dtYears int) {
	dt := float64(dtYears)
	tickInnovation(c, s, dt)
	tickDiscovery(c, s, cfg, worldSeed, year)
	tickAdoption(c, s, cfg, dt)
}

func tickInnovation(c *country.Country, s Signals, dt float64) {
	war := 1.0
	if s.AtWar {
		war = 0.6
	}
	famine := 1 - 0.5*s.FamineSeverity

	for d := 0; d < DomainCount; d++ {
		hazard := baseInnovationRate[d] * math.Log(1+s.UrbanPopulation+1) *
			(0.4 + 0.6*s.InstitutionCapacity) *
			(0.5 + 0.5*s.EducationInvestment + 0.5*s.RnDInvestment) *
			war * math.Max(0, famine)
		c.Knowledge[d] = math.Max(0, c.Knowledge[d]+hazard*dt)
	}
}

// TickDiffusion implements §4.8 step 2 over every unordered country pair in
// a single pass, applying the symmetric flow to both sides.
func TickDiffusion(countries map[int]*country.Country, cfg config.Technology, tradeIntensity func(a, b int) float64, neighbor func(a, b int) bool, dtYears int) {
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
			ca, cb := countries[a], countries[b]

			neighborTerm := 0.0
			if neighbor(a, b) {
				neighborTerm = 1.0
			}
			tradeTerm := math.Min(1, math.Max(0, tradeIntensity(a, b))+cfg.DiffusionNeighborBonus*neighborTerm)

			for d := 0; d < DomainCount; d++ {
				delta := ca.Knowledge[d] - cb.Knowledge[d]
				culturalDistance := traitDistance(ca.Traits, cb.Traits)
				flow := cfg.DiffusionEta * delta * tradeTerm * math.Exp(-cfg.CulturalFrictionStrength*culturalDistance) * dt
				ca.Knowledge[d] = math.Max(0, ca.Knowledge[d]-flow)
				cb.Knowledge[d] = math.Max(0, cb.Knowledge[d]+flow)
			}
		}
	}
}

func traitDistance(a, b [country.NumTraits]float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

func tickDiscovery(c *country.Country, s Signals, cfg config.Technology, worldSeed uint64, year int) {
	scale := cfg.CapabilityThresholdScale
	if scale <= 0 {
		scale = 1.0
	}
	for _, id := range SortedIDs() {
		if _, known := c.KnownTech[id]; known {
			continue
		}
		tech := Catalog[id]
		dense := DenseIndex(id)
		if !prerequisitesKnown(c, tech) {
			continue
		}
		if c.Knowledge[tech.Domain] < tech.Threshold*scale {
			continue
		}
		if !isFeasible(tech, s) {
			continue
		}
		if tech.Difficulty > 0 {
			roll := determinism.HashedUnitN(worldSeed, determinism.SaltDiscovery, year, c.Index, dense)
			if roll > 1.0/tech.Difficulty {
				continue
			}
		}
		c.KnownTech[id] = year
		c.AdoptionLevel[id] = 0
	}
}

func prerequisitesKnown(c *country.Country, tech Technology) bool {
	for _, req := range tech.Prerequisites {
		if _, ok := c.KnownTech[req]; !ok {
			return false
		}
	}
	return true
}

func isFeasible(tech Technology, s Signals) bool {
	if tech.RequiresCoast && !s.HasCoastAccess {
		return false
	}
	if tech.RequiresRiverland && !s.HasRiverland {
		return false
	}
	if s.ClimateFoodMult < tech.MinClimateFoodMult {
		return false
	}
	if s.FarmingPotential < tech.MinFarmingPotential {
		return false
	}
	if s.ForagingPotential < tech.MinForagingPotential {
		return false
	}
	if s.OreAvail < tech.MinOreAvail {
		return false
	}
	if s.EnergyAvail < tech.MinEnergyAvail {
		return false
	}
	if s.ConstructionAvail < tech.MinConstructionAvail {
		return false
	}
	if s.InstitutionCapacity < tech.MinInstitution {
		return false
	}
	if s.Specialization < tech.MinSpecialization {
		return false
	}
	return true
}

func tickAdoption(c *country.Country, s Signals, cfg config.Technology, dt float64) {
	traderBonus := 1.0
	if c.Type == country.TypeTrader {
		traderBonus = traderShareBonus
	}

	fallbackThreshold := cfg.AdoptionThreshold
	if fallbackThreshold <= 0 {
		fallbackThreshold = fallbackAdoptionThreshold
	}
	decayStreak := cfg.LowAdoptionDecayYears
	if decayStreak <= 0 {
		decayStreak = fallbackLowAdoptionDecayYears
	}

	for id := range c.KnownTech {
		tech := Catalog[id]
		level := c.AdoptionLevel[id]
		rate := adoptionLogisticRate * (0.5 + 0.5*s.InstitutionCapacity) *
			(0.5 + 0.5*s.EducationInvestment) * (0.4 + 0.6*s.ConnectivityIndex) * traderBonus
		level += rate * level * (1 - level) * dt
		if level < 0.02 {
			level = 0.02 // seed the logistic growth once a tech is known
		}
		level = determinism.Clamp01(level)
		c.AdoptionLevel[id] = level

		threshold := tech.AdoptionThreshold
		if threshold <= 0 {
			threshold = fallbackThreshold
		}
		if level < threshold {
			c.LowAdoptionStreak[id]++
		} else {
			c.LowAdoptionStreak[id] = 0
		}
	}

	for id, streak := range c.LowAdoptionStreak {
		if streak < decayStreak {
			continue
		}
		tech := Catalog[id]
		if anyPrerequisiteAdopted(c, tech, fallbackThreshold) {
			continue // a prerequisite is still adopted; don't decay
		}
		delete(c.KnownTech, id)
		delete(c.AdoptionLevel, id)
		delete(c.LowAdoptionStreak, id)
	}
}

func anyPrerequisiteAdopted(c *country.Country, tech Technology, fallbackThreshold float64) bool {
	for _, req := range tech.Prerequisites {
		reqTech := Catalog[req]
		threshold := reqTech.AdoptionThreshold
		if threshold <= 0 {
			threshold = fallbackThreshold
		}
		if c.AdoptionLevel[req] >= threshold {
			return true
		}
	}
	return false
}
