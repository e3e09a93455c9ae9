package technology

import "github.com/talgya/worldkernel/internal/country"

// Effects are the gameplay multipliers adopted technology grants a
// country, recomputed fresh from the adopted set every call so effects
// never silently accumulate across years (§4.8's closing paragraph).
type Effects struct {
	ResearchMult      float64
	MaxSizeMult       float64
	ExpansionRateBonus float64
	PlagueResistance  float64
}

// techEffect is the fixed per-tech contribution applied once the tech is
// adopted (adoption level >= its threshold).
var techEffect = map[int]Effects{
	TechWriting:          {ResearchMult: 0.05},
	TechEducation:        {ResearchMult: 0.15},
	TechUniversities:     {ResearchMult: 0.25},
	TechScientificMethod: {ResearchMult: 0.40},
	TechConstruction:     {MaxSizeMult: 0.20},
	TechCivilService:     {MaxSizeMult: 0.15, ExpansionRateBonus: 0.05},
	TechCurrency:         {ExpansionRateBonus: 0.03},
	TechBanking:          {ExpansionRateBonus: 0.05},
	TechEconomics:        {ExpansionRateBonus: 0.08},
	TechNavigation:       {ExpansionRateBonus: 0.10},
	TechSanitation:       {PlagueResistance: 0.25},
}

// ComputeEffects is the pure function §4.8 requires: it reads nothing but
// the country's current adopted-tech set and returns the resulting bonus
// bundle, additively combining every adopted tech's contribution.
func ComputeEffects(c *country.Country) Effects {
	var e Effects
	for id, level := range c.AdoptionLevel {
		tech, ok := Catalog[id]
		if !ok {
			continue
		}
		threshold := tech.AdoptionThreshold
		if threshold <= 0 {
			threshold = 0.65
		}
		if level < threshold {
			continue
		}
		if contrib, ok := techEffect[id]; ok {
			e.ResearchMult += contrib.ResearchMult
			e.MaxSizeMult += contrib.MaxSizeMult
			e.ExpansionRateBonus += contrib.ExpansionRateBonus
			e.PlagueResistance += contrib.PlagueResistance
		}
	}
	return e
}
