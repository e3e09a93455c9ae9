package country

import (
	"github.com/talgya/worldkernel/internal/config"
	"github.com/talgya/worldkernel/internal/determinism"
	"github.com/talgya/worldkernel/internal/worldmap"
)

// ExpansionBudget computes the desired cells/year a country claims this
// year, from population surplus against carrying capacity (owned foodSum
// times a per-food multiplier), an expansion-rate tech bonus, and the
// country's max-size multiplier, grounded on
// original_source/include/country.h's m_expansionRateBonus/
// m_maxSizeMultiplier fields (spec.md section 4.11, step 1).
func ExpansionBudget(c *Country, ownedFoodSum float64, cfg config.Expansion) float64 {
	carryingCapacity := ownedFoodSum * cfg.CarryingCapacityPerFood
	population := c.Population()
	surplusRatio := 0.0
	if carryingCapacity > 0 {
		surplusRatio = determinism.Clamp(population/carryingCapacity, 0, 3)
	}
	maxSize := cfg.MaxSizeMultiplier
	if c.MaxSizeMultiplier > 0 {
		maxSize = c.MaxSizeMultiplier
	}
	budget := cfg.BaseExpansionBudget * (0.4 + 0.6*surplusRatio) * maxSize
	budget += float64(c.ExpansionRateBonus)
	if c.ContentWithSize {
		budget *= 0.1
	}
	return determinism.Clamp(budget, 0, 400)
}

// frontierCandidate is one unowned or enemy-owned cell adjacent to owner's
// territory, scored for claim priority.
type frontierCandidate struct {
	idx   int
	row   int
	col   int
	score float64
}

// suitability scores a candidate cell by food potential, coastal
// adjacency, and friendly-neighbor count, per spec.md section 4.11 step 2.
func suitability(g *worldmap.Grid, idx, owner int) float64 {
	x, y := idx%g.Width, idx/g.Width
	score := g.FoodPotential[idx] + 0.4*g.NonFoodPotential[idx]
	friendly, coastal := 0, false
	for _, n := range g.Neighbors8(x, y) {
		nidx := g.Index(n[0], n[1])
		if !g.Land[nidx] {
			coastal = true
			continue
		}
		if g.OwnerAt(n[0], n[1]) == owner {
			friendly++
		}
	}
	if coastal {
		score += 3.0
	}
	score += float64(friendly) * 0.8
	return score
}

// frontierCells collects every unowned land cell 8-adjacent to one of
// owner's cells (or, if includeEnemy is set, also cells owned by
// enemyIndex), scored and sorted in canonical descending-score order.
func frontierCells(g *worldmap.Grid, owner int, includeEnemy bool, enemyIndex int) []frontierCandidate {
	seen := map[int]bool{}
	var candidates []frontierCandidate
	for _, ownedIdx := range g.OwnerCells(owner) {
		x, y := ownedIdx%g.Width, ownedIdx/g.Width
		for _, n := range g.Neighbors8(x, y) {
			nidx := g.Index(n[0], n[1])
			if seen[nidx] || !g.Land[nidx] {
				continue
			}
			nOwner := g.OwnerAt(n[0], n[1])
			if nOwner == owner {
				continue
			}
			claimable := nOwner < 0 || (includeEnemy && nOwner == enemyIndex)
			if !claimable {
				continue
			}
			seen[nidx] = true
			candidates = append(candidates, frontierCandidate{
				idx: nidx, row: n[1], col: n[0],
				score: suitability(g, nidx, owner),
			})
		}
	}
	determinism.SortCanonical(candidates, func(fc frontierCandidate) determinism.CanonicalKey {
		return determinism.CanonicalKey{Population: fc.score, Row: fc.row, Col: fc.col}
	})
	return candidates
}

// Expand claims frontier cells up to budget cells, returning how many were
// claimed. Cells owned by an enemy are only eligible when atWarWith >= 0
// (war-time burst conquest takes cells from that specific enemy, never a
// neutral), per spec.md section 4.11 step 2.
func Expand(g *worldmap.Grid, owner int, budget int, atWarWith int) int {
	if budget <= 0 {
		return 0
	}
	candidates := frontierCells(g, owner, atWarWith >= 0, atWarWith)
	claimed := 0
	for _, fc := range candidates {
		if claimed >= budget {
			break
		}
		if g.SetOwner(fc.col, fc.row, owner) {
			claimed++
		}
	}
	return claimed
}

// BurstExpand claims every unowned land cell within a Chebyshev disk of
// radius around anchor, ignoring the yearly budget, per
// original_source's m_burstExpansionRadius/m_burstExpansionFrequency.
func BurstExpand(g *worldmap.Grid, owner, anchorIdx, radius int) int {
	ax, ay := anchorIdx%g.Width, anchorIdx/g.Width
	claimed := 0
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			x, y := ax+dx, ay+dy
			if !g.InBounds(x, y) {
				continue
			}
			idx := g.Index(x, y)
			if !g.Land[idx] || g.OwnerAt(x, y) >= 0 {
				continue
			}
			if g.SetOwner(x, y, owner) {
				claimed++
			}
		}
	}
	return claimed
}

// WarBurstConquest claims every cell owned by enemyIndex within a
// Chebyshev disk of radius around anchor, per
// original_source's m_warBurstConquestRadius/m_warBurstConquestFrequency.
func WarBurstConquest(g *worldmap.Grid, owner, enemyIndex, anchorIdx, radius int) int {
	ax, ay := anchorIdx%g.Width, anchorIdx/g.Width
	claimed := 0
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			x, y := ax+dx, ay+dy
			if !g.InBounds(x, y) {
				continue
			}
			if g.OwnerAt(x, y) != enemyIndex {
				continue
			}
			if g.SetOwner(x, y, owner) {
				claimed++
			}
		}
	}
	return claimed
}

// frontierAnchor returns the highest-scored frontier cell's index, or the
// capital if there is no frontier, for use as a burst-expansion anchor.
func frontierAnchor(g *worldmap.Grid, c *Country) int {
	candidates := frontierCells(g, c.Index, false, -1)
	if len(candidates) == 0 {
		return c.CapitalCellIndex
	}
	return candidates[0].idx
}
