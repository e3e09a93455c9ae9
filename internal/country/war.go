package country

import (
	"github.com/talgya/worldkernel/internal/config"
	"github.com/talgya/worldkernel/internal/determinism"
	"github.com/talgya/worldkernel/internal/worldmap"
)

// MilitaryStrength derives a country's fighting capacity from population,
// stockpiled military supply, its behavioral-type bonus, and an external
// strength multiplier (great-person/technology effects), decayed by
// accumulated war exhaustion, grounded on
// original_source/include/country.h's getMilitaryStrength/
// m_militaryStrengthBonus fields.
func MilitaryStrength(c *Country, militaryMult float64) float64 {
	base := c.Population()*0.0006 + c.Economy.MilitarySupply*0.4
	if c.Type == TypeWarmonger {
		base *= 1.25
	}
	if c.Type == TypePacifist {
		base *= 0.75
	}
	base *= militaryMult
	return base * determinism.Clamp(1-c.WarExhaustion, 0.2, 1)
}

// CanDeclareWar reports whether c is free to start a new war this year:
// not already at war, past its cooldown, and not a Pacifist.
func (c *Country) CanDeclareWar(year int) bool {
	return !c.AtWar && c.Type != TypePacifist && year >= c.NextWarCheckYear
}

// EvaluateWarTarget scores every neighbor of c that is not a same-ideology
// ally and not in post-war cooldown with c, picking the most favorable
// cost/benefit target by strength ratio (c's own exhaustion enters through
// MilitaryStrength; supply capacity is not used), per spec.md section 4.11
// step 3. Returns ok=false if no
// neighbor clears the minimum favorable-ratio bar.
func EvaluateWarTarget(c *Country, neighbors []int, countries map[int]*Country, militaryMult map[int]float64, worldSeed uint64, year int) (targetIndex int, goal WarGoal, ok bool) {
	myStrength := MilitaryStrength(c, militaryMult[c.Index])
	bestRatio := 1.15 // minimum favorable strength ratio to justify war
	best := -1

	idx := append([]int(nil), neighbors...)
	sortAscendingInts(idx)

	for _, n := range idx {
		target, exists := countries[n]
		if !exists || !target.Alive || target.Index == c.Index {
			continue
		}
		if target.Ideology == c.Ideology {
			continue
		}
		if lastEnd, ok := c.LastWarEndYear[n]; ok && year-lastEnd < 15 {
			continue
		}
		theirStrength := MilitaryStrength(target, militaryMult[n])
		if theirStrength <= 0 {
			continue
		}
		ratio := myStrength / theirStrength
		if ratio > bestRatio {
			bestRatio = ratio
			best = n
		}
	}
	if best < 0 {
		return 0, WarGoalRaid, false
	}

	roll := determinism.HashedUnitN(worldSeed, determinism.SaltWarGoal, c.Index, best, year)
	switch {
	case bestRatio > 2.5 && roll < 0.35:
		goal = WarGoalAnnihilation
	case bestRatio > 1.8 && roll < 0.5:
		goal = WarGoalVassalization
	case roll < 0.3:
		goal = WarGoalTribute
	case roll < 0.6:
		goal = WarGoalBorderShift
	default:
		goal = WarGoalRaid
	}
	return best, goal, true
}

// StartWar puts both c and target into an active-war state, per
// original_source's startWar.
func StartWar(c, target *Country, goal WarGoal, year int, cfg config.Expansion) {
	c.AtWar = true
	c.WarGoal = goal
	c.WarPartners = append(c.WarPartners, target.Index)
	c.WarDuration = cfg.WarBaseDurationYears
	c.WarExhaustion = 0
	c.WarSupplyCapacity = 1.0
	c.PreWarPopulation = c.Population()
	if goal == WarGoalAnnihilation {
		c.WarOfAnnihilation = true
	}
	if goal == WarGoalVassalization || goal == WarGoalBorderShift {
		c.WarOfConquest = true
	}

	target.AtWar = true
	if target.WarGoal == WarGoalRaid {
		target.WarGoal = WarGoalBorderShift // defending posture
	}
	target.WarPartners = append(target.WarPartners, c.Index)
	target.WarDuration = cfg.WarBaseDurationYears
	target.WarExhaustion = 0
	target.WarSupplyCapacity = 1.0
	target.PreWarPopulation = target.Population()
}

// EndWar resolves war state for both sides and records the cooldown,
// grounded on original_source's endWar/recordWarEnd.
func EndWar(c, target *Country, year int) {
	removePartner(c, target.Index)
	removePartner(target, c.Index)

	c.AtWar = len(c.WarPartners) > 0
	target.AtWar = len(target.WarPartners) > 0

	c.LastWarEndYear[target.Index] = year
	target.LastWarEndYear[c.Index] = year

	if !c.AtWar {
		c.WarOfAnnihilation, c.WarOfConquest, c.WarDuration = false, false, 0
		c.YearsSinceWar = 0
	}
	if !target.AtWar {
		target.WarOfAnnihilation, target.WarOfConquest, target.WarDuration = false, false, 0
		target.YearsSinceWar = 0
	}
}

func removePartner(c *Country, enemy int) {
	out := c.WarPartners[:0]
	for _, p := range c.WarPartners {
		if p != enemy {
			out = append(out, p)
		}
	}
	c.WarPartners = out
}

// TickWarProgress advances one year of war between attacker and defender:
// exhaustion accrual, supply decay, and a territory transfer proportional
// to the strength ratio, then checks the three end conditions (duration
// elapsed, annihilation, conquest-goal completion), per spec.md section
// 4.11 step 3.
func TickWarProgress(g *worldmap.Grid, attacker, defender *Country, militaryMult map[int]float64, cfg config.Expansion, year int) {
	attacker.WarDuration--
	attacker.WarExhaustion = determinism.Clamp01(attacker.WarExhaustion + cfg.WarExhaustionPerYear)
	attacker.WarSupplyCapacity = determinism.Clamp01(attacker.WarSupplyCapacity - cfg.WarSupplyDecayPerYear)
	defender.WarExhaustion = determinism.Clamp01(defender.WarExhaustion + cfg.WarExhaustionPerYear*0.8)

	attStrength := MilitaryStrength(attacker, militaryMult[attacker.Index]) * attacker.WarSupplyCapacity
	defStrength := MilitaryStrength(defender, militaryMult[defender.Index])
	ratio := determinism.SafeDiv(attStrength, attStrength+defStrength)

	if ratio > 0.5 {
		anchor := frontierAnchorAgainst(g, attacker.Index, defender.Index)
		if anchor >= 0 {
			radius := 1
			if ratio > 0.7 {
				radius = 2
			}
			WarBurstConquest(g, attacker.Index, defender.Index, anchor, radius)
		}
	}

	annihilated := defender.Population() <= 0 || attacker.Population() <= 0
	conquestDone := attacker.WarOfConquest && len(g.OwnerCells(defender.Index)) == 0
	durationDone := attacker.WarDuration <= 0

	if annihilated || conquestDone || durationDone {
		EndWar(attacker, defender, year)
	}
}

// frontierAnchorAgainst finds an owner-owned cell adjacent to an
// enemy-owned cell, to anchor a war burst-conquest disk.
func frontierAnchorAgainst(g *worldmap.Grid, owner, enemy int) int {
	for _, idx := range g.OwnerCells(owner) {
		x, y := idx%g.Width, idx/g.Width
		for _, n := range g.Neighbors8(x, y) {
			if g.OwnerAt(n[0], n[1]) == enemy {
				return idx
			}
		}
	}
	return -1
}

func sortAscendingInts(idx []int) {
	for i := 1; i < len(idx); i++ {
		for j := i; j > 0 && idx[j-1] > idx[j]; j-- {
			idx[j-1], idx[j] = idx[j], idx[j-1]
		}
	}
}
