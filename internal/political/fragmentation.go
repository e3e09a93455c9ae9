// Package political implements the three world-history political
// mechanisms that run after demography/economy each tick: fragmentation,
// tag replacement, and overseas breakaway (spec.md section 4.10).
package political

import (
	"container/heap"

	"github.com/talgya/worldkernel/internal/country"
	"github.com/talgya/worldkernel/internal/determinism"
	"github.com/talgya/worldkernel/internal/worldmap"
)

// fragmentationCheckIntervalYears, minTerritoryPixels, and minPopulation
// gate which countries are even considered for fragmentation each check,
// per spec.md section 4.10.
const (
	fragmentationCheckIntervalYears = 5
	minTerritoryPixels              = 40
	minPopulation                   = 2000
	maxAutonomyCenters              = 8
	revoltRiskThreshold             = 0.55
	maxControlForFragmentation      = 0.70
	maxSplitsPerYear                = 2
	minSplitRatio                   = 0.18
	maxSplitRatio                   = 0.82
)

// Signals bundles the per-country scalars fragmentation's revolt-risk
// formula needs beyond what Country itself stores.
type Signals struct {
	Control        float64
	Legitimacy     float64
	TaxRate        float64
	FamineStress   float64
	AtWar          bool
}

// RevoltRisk implements spec.md section 4.10's fragmentation risk formula
// verbatim.
func RevoltRisk(s Signals) float64 {
	atWar := 0.0
	if s.AtWar {
		atWar = 1.0
	}
	return 0.45*(1-s.Control) + 0.30*(1-s.Legitimacy) +
		0.55*determinism.Clamp(s.TaxRate-0.14, 0, 1) + 0.25*s.FamineStress + 0.10*atWar
}

// AutonomyCenter is one of up to eight scored local autonomy candidates
// for a country, built from its cities.
type AutonomyCenter struct {
	FieldIndex int
	Score      float64
}

// ScoreAutonomyCenters ranks a country's cities by travel-time, extraction,
// inequality, and local control, returning up to maxAutonomyCenters
// entries in descending-score canonical order.
func ScoreAutonomyCenters(fg *worldmap.FieldGrid, cityFieldIndices []int, travelTime map[int]float64, inequality, extraction float64) []AutonomyCenter {
	var centers []AutonomyCenter
	for _, idx := range cityFieldIndices {
		localControl := fg.Control[idx]
		tt := travelTime[idx]
		score := 0.4*tt + 0.3*extraction + 0.2*inequality + 0.3*(1-localControl)
		centers = append(centers, AutonomyCenter{FieldIndex: idx, Score: score})
	}
	determinism.SortCanonical(centers, func(a AutonomyCenter) determinism.CanonicalKey {
		return determinism.CanonicalKey{Population: a.Score, Row: a.FieldIndex, Col: 0}
	})
	if len(centers) > maxAutonomyCenters {
		centers = centers[:maxAutonomyCenters]
	}
	return centers
}

// UpdateAutonomyPressure accumulates sustained pressure per center,
// decaying centers no longer scored this tick.
func UpdateAutonomyPressure(c *country.Country, centers []AutonomyCenter, dtYears int) {
	seen := map[int]bool{}
	for _, center := range centers {
		seen[center.FieldIndex] = true
		c.AutonomyPressure[center.FieldIndex] += center.Score * float64(dtYears)
	}
	for idx := range c.AutonomyPressure {
		if !seen[idx] {
			c.AutonomyPressure[idx] *= 0.5
			if c.AutonomyPressure[idx] < 0.01 {
				delete(c.AutonomyPressure, idx)
			}
		}
	}
}

func totalAutonomyPressure(c *country.Country) float64 {
	var sum float64
	for _, v := range c.AutonomyPressure {
		sum += v
	}
	return sum
}

// Event describes one fragmentation split that occurred this tick.
type Event struct {
	ParentIndex int
	ChildIndex  int
	SplitRatio  float64
}

// TickFragmentation runs spec.md section 4.10's fragmentation mechanism
// over every eligible country, subject to the maxCountries cap and the
// hard limit of maxSplitsPerYear splits. g must already hold the current
// ownership grid; countries is mutated in place (parent territory shrinks,
// a new child country is appended under nextIndex()).
func TickFragmentation(g *worldmap.Grid, fg *worldmap.FieldGrid, countries map[int]*country.Country, signals map[int]Signals, year int, nextIndex func() (int, bool)) []Event {
	if year%fragmentationCheckIntervalYears != 0 {
		return nil
	}

	var candidates []int
	for i, c := range countries {
		if !c.Alive || c.FragmentationCooldown > 0 {
			continue
		}
		if len(g.OwnerCells(i)) < minTerritoryPixels || c.Population() < minPopulation {
			continue
		}
		candidates = append(candidates, i)
	}
	sortAscending(candidates)

	var events []Event
	for _, i := range candidates {
		if len(events) >= maxSplitsPerYear {
			break
		}
		c := countries[i]
		s := signals[i]
		risk := RevoltRisk(s)
		pressure := totalAutonomyPressure(c)
		if risk+pressure < revoltRiskThreshold || s.Control >= maxControlForFragmentation {
			continue
		}

		childIndex, ok := nextIndex()
		if !ok {
			break // maxCountries cap reached; never spawn
		}

		highControlSeed, highAutonomySeed, ok := pickSeeds(g, c.CapitalCellIndex, i)
		if !ok {
			continue
		}

		turmoil := determinism.Clamp01(risk)
		rebelBias := determinism.Clamp01(pressure / 10)
		assignment := partition(g, i, highControlSeed, highAutonomySeed, rebelBias)

		splitRatio := splitRatioOf(assignment, highAutonomySeed)
		if splitRatio < minSplitRatio || splitRatio > maxSplitRatio {
			continue
		}

		knowledgeKeep := determinism.Clamp(0.98-0.13*turmoil, 0.85, 0.98)
		infraKeep := determinism.Clamp(0.90-0.30*turmoil, 0.60, 0.90)

		child := country.SpawnChild(childIndex, c.Name+" Remnant", year, c, splitRatio, knowledgeKeep, infraKeep)
		child.CapitalCellIndex = highAutonomySeed
		countries[childIndex] = child

		movedCells := applyPartition(g, assignment, highAutonomySeed, childIndex)
		country.TransferTerritoryAssets(c, child, fg, movedCells)
		rescaleAfterSplit(c, 1-splitRatio)

		child.FragmentationCooldown = 20
		c.FragmentationCooldown = 20
		c.AutonomyPressure = map[int]float64{}

		events = append(events, Event{ParentIndex: i, ChildIndex: childIndex, SplitRatio: splitRatio})
	}
	return events
}

func rescaleAfterSplit(c *country.Country, keepShare float64) {
	for k := range c.Cohorts {
		c.Cohorts[k] *= keepShare
	}
	c.Economy.FoodStock *= keepShare
	c.Economy.NonFoodStock *= keepShare
	c.UrbanPopulation *= keepShare
}

// pickSeeds picks the two partition seeds among owner's owned raw grid
// cells: the parent's seed is the capital when owner holds it (otherwise
// the first owned cell), so the capital always stays with the parent; the
// child's seed is the first owned cell that is neither. Neither pick looks
// at control or autonomy pressure.
func pickSeeds(g *worldmap.Grid, capitalCellIndex, owner int) (highControl, highAutonomy int, ok bool) {
	cells := g.OwnerCells(owner)
	if len(cells) < 2 {
		return 0, 0, false
	}
	highControl = cells[0]
	if capitalCellIndex >= 0 && capitalCellIndex < len(g.Owner) && int(g.Owner[capitalCellIndex]) == owner {
		highControl = capitalCellIndex
	}
	for _, idx := range cells {
		if idx != capitalCellIndex && idx != highControl {
			highAutonomy = idx
			break
		}
	}
	if highAutonomy == 0 && len(cells) > 1 {
		highAutonomy = cells[len(cells)-1]
	}
	return highControl, highAutonomy, true
}

// sortAscending is a small insertion sort over country indices, giving a
// deterministic scan order independent of Go's randomized map iteration.
func sortAscending(idx []int) {
	for i := 1; i < len(idx); i++ {
		for j := i; j > 0 && idx[j-1] > idx[j]; j-- {
			idx[j-1], idx[j] = idx[j], idx[j-1]
		}
	}
}

// partition runs a weighted multi-source Dijkstra over owner's cells from
// the two seeds, with a small rebel bias scaling edge cost down toward the
// autonomy seed, per spec.md section 4.10.
func partition(g *worldmap.Grid, owner, seedA, seedB int, rebelBias float64) map[int]int {
	dist := map[int]float64{seedA: 0, seedB: 0}
	from := map[int]int{seedA: seedA, seedB: seedB}
	pq := &seedHeap{{idx: seedA, d: 0, seed: seedA}, {idx: seedB, d: 0, seed: seedB}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(seedItem)
		if d, ok := dist[cur.idx]; ok && cur.d > d {
			continue
		}
		x, y := cur.idx%g.Width, cur.idx/g.Width
		for _, n := range g.Neighbors8(x, y) {
			nIdx := g.Index(n[0], n[1])
			if g.OwnerAt(n[0], n[1]) != owner {
				continue
			}
			cost := 1.0
			if cur.seed == seedB {
				cost *= 1 - 0.3*rebelBias
			}
			nd := cur.d + cost
			if existing, ok := dist[nIdx]; !ok || nd < existing {
				dist[nIdx] = nd
				from[nIdx] = cur.seed
				heap.Push(pq, seedItem{idx: nIdx, d: nd, seed: cur.seed})
			}
		}
	}

	assignment := make(map[int]int, len(from))
	for idx, seed := range from {
		assignment[idx] = seed
	}
	return assignment
}

func splitRatioOf(assignment map[int]int, autonomySeed int) float64 {
	var autonomyCount, total int
	for _, seed := range assignment {
		total++
		if seed == autonomySeed {
			autonomyCount++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(autonomyCount) / float64(total)
}

func applyPartition(g *worldmap.Grid, assignment map[int]int, autonomySeed, childOwner int) []int {
	var moved []int
	for idx, seed := range assignment {
		if seed != autonomySeed {
			continue
		}
		x, y := idx%g.Width, idx/g.Width
		if g.SetOwner(x, y, childOwner) {
			moved = append(moved, idx)
		}
	}
	return moved
}

type seedItem struct {
	idx, seed int
	d         float64
}

type seedHeap []seedItem

func (h seedHeap) Len() int            { return len(h) }
func (h seedHeap) Less(i, j int) bool  { return h[i].d < h[j].d }
func (h seedHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *seedHeap) Push(x interface{}) { *h = append(*h, x.(seedItem)) }
func (h *seedHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
