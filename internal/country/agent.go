package country

import (
	"github.com/talgya/worldkernel/internal/config"
	"github.com/talgya/worldkernel/internal/worldmap"
)

// AgentContext bundles the per-country external scalars the agent update
// needs beyond what Country itself stores: owned food potential (for the
// expansion budget), the great-person/technology military multiplier, and
// the country's current grid-adjacency neighbor set.
type AgentContext struct {
	OwnedFoodSum float64
	MilitaryMult float64
	Neighbors    []int
}

// TickAgent runs spec.md section 4.11's per-year country update for one
// living country: expansion (budgeted, burst, and war-time conquest),
// war evaluation/progress, then road/port/factory/airway construction.
// Countries must be processed in ascending index order by the caller
// (spec.md section 4.12's country-iteration-order guarantee).
func TickAgent(g *worldmap.Grid, fg *worldmap.FieldGrid, c *Country, countries map[int]*Country, ctx AgentContext, militaryMult map[int]float64, cfg config.Expansion, worldSeed uint64, year int) {
	if !c.Alive {
		return
	}

	budget := ExpansionBudget(c, ctx.OwnedFoodSum, cfg)
	atWarWith := -1
	if c.AtWar && len(c.WarPartners) > 0 {
		atWarWith = c.WarPartners[0]
	}
	Expand(g, c.Index, int(budget), atWarWith)

	stagger := year + c.Index
	if cfg.BurstExpansionFrequency > 0 && stagger%cfg.BurstExpansionFrequency == 0 {
		radius := cfg.BurstExpansionRadius
		if c.BurstExpansionRadius > 0 {
			radius = c.BurstExpansionRadius
		}
		BurstExpand(g, c.Index, frontierAnchor(g, c), radius)
	}
	if c.AtWar && cfg.WarBurstConquestFrequency > 0 && stagger%cfg.WarBurstConquestFrequency == 0 {
		for _, enemyIdx := range c.WarPartners {
			anchor := frontierAnchorAgainst(g, c.Index, enemyIdx)
			if anchor >= 0 {
				WarBurstConquest(g, c.Index, enemyIdx, anchor, cfg.WarBurstConquestRadius)
			}
		}
	}

	if c.CanDeclareWar(year) {
		if target, goal, ok := EvaluateWarTarget(c, ctx.Neighbors, countries, militaryMult, worldSeed, year); ok {
			StartWar(c, countries[target], goal, year, cfg)
		}
		c.NextWarCheckYear = year + cfg.WarCheckIntervalYears
	}
	if c.AtWar {
		for _, enemyIdx := range append([]int(nil), c.WarPartners...) {
			enemy, ok := countries[enemyIdx]
			if !ok || !enemy.Alive {
				continue
			}
			TickWarProgress(g, c, enemy, militaryMult, cfg, year)
		}
	}

	BuildRoads(g, fg, c, year, cfg)
	BuildPorts(g, fg, c, year, cfg)
	BuildFactories(g, c, year, 2)
	BuildAirways(c, countries, ctx.Neighbors, year, cfg)
}
