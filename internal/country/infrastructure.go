package country

import (
	"container/heap"

	"github.com/talgya/worldkernel/internal/config"
	"github.com/talgya/worldkernel/internal/determinism"
	"github.com/talgya/worldkernel/internal/technology"
	"github.com/talgya/worldkernel/internal/worldmap"
)

func chebyshev(g *worldmap.Grid, a, b int) float64 {
	ax, ay := a%g.Width, a/g.Width
	bx, by := b%g.Width, b/g.Width
	dx, dy := ax-bx, ay-by
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return float64(dx)
	}
	return float64(dy)
}

func isCoastal(g *worldmap.Grid, idx int) bool {
	x, y := idx%g.Width, idx/g.Width
	for _, n := range g.Neighbors8(x, y) {
		if !g.Land[g.Index(n[0], n[1])] {
			return true
		}
	}
	return false
}

// pathNode/pathHeap implement a small A* over owner's owned cells, used by
// BuildRoads, grounded on original_source's createRoadPath and on
// internal/control's container/heap Dijkstra precedent.
type pathNode struct {
	idx, f int
	g      float64
}

type pathHeap []pathNode

func (h pathHeap) Len() int            { return len(h) }
func (h pathHeap) Less(i, j int) bool  { return h[i].g+float64(h[i].f) < h[j].g+float64(h[j].f) }
func (h pathHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *pathHeap) Push(x interface{}) { *h = append(*h, x.(pathNode)) }
func (h *pathHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// findPath runs A* from start to goal restricted to owner's owned cells,
// returning the cell sequence or nil if unreachable.
func findPath(g *worldmap.Grid, owner, start, goal int) []int {
	open := &pathHeap{{idx: start, g: 0, f: int(chebyshev(g, start, goal))}}
	heap.Init(open)
	cameFrom := map[int]int{}
	bestG := map[int]float64{start: 0}
	visited := map[int]bool{}

	for open.Len() > 0 {
		cur := heap.Pop(open).(pathNode)
		if visited[cur.idx] {
			continue
		}
		visited[cur.idx] = true
		if cur.idx == goal {
			return reconstructPath(cameFrom, start, goal)
		}
		x, y := cur.idx%g.Width, cur.idx/g.Width
		for _, n := range g.Neighbors8(x, y) {
			nidx := g.Index(n[0], n[1])
			if g.OwnerAt(n[0], n[1]) != owner {
				continue
			}
			ng := cur.g + 1
			if existing, ok := bestG[nidx]; ok && ng >= existing {
				continue
			}
			bestG[nidx] = ng
			cameFrom[nidx] = cur.idx
			heap.Push(open, pathNode{idx: nidx, g: ng, f: int(chebyshev(g, nidx, goal))})
		}
	}
	return nil
}

func reconstructPath(cameFrom map[int]int, start, goal int) []int {
	path := []int{goal}
	cur := goal
	for cur != start {
		prev, ok := cameFrom[cur]
		if !ok {
			return nil
		}
		path = append(path, prev)
		cur = prev
	}
	return path
}

func sortedCityIndices(c *Country) []int {
	idx := make([]int, 0, len(c.Cities))
	for fidx := range c.Cities {
		idx = append(idx, fidx)
	}
	sortAscendingInts(idx)
	return idx
}

// cityRawCell maps a city's field index back to a representative raw grid
// cell for pathfinding/placement purposes (the field block's top-left
// owned corner).
func cityRawCell(g *worldmap.Grid, fg *worldmap.FieldGrid, fieldIdx int) int {
	fx, fy := fieldIdx%fg.Width, fieldIdx/fg.Width
	x0, y0 := fx*fg.Factor, fy*fg.Factor
	x1, y1 := min(x0+fg.Factor, g.Width), min(y0+fg.Factor, g.Height)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if g.Land[g.Index(x, y)] {
				return g.Index(x, y)
			}
		}
	}
	return g.Index(x0, y0)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// roadMoveCostDiscount and portMoveCostDiscount are the §4.4 step 2
// road/port move-cost discounts: building either makes the field cells it
// touches cheaper to cross for every country's control-reach Dijkstra, a
// port discounting further than a plain road since it also bypasses
// land travel.
const (
	roadMoveCostDiscount = 0.55
	portMoveCostDiscount = 0.40
)

// BuildRoads connects owned city pairs at least RoadMinCellDistance apart
// that aren't already linked, subject to Construction being known, at most
// one new road per check cycle, per spec.md section 4.11 step 4.
func BuildRoads(g *worldmap.Grid, fg *worldmap.FieldGrid, c *Country, year int, cfg config.Expansion) {
	if year < c.NextRoadCheckYear {
		return
	}
	c.NextRoadCheckYear = year + cfg.RoadCheckIntervalYears
	if _, ok := c.KnownTech[technology.TechConstruction]; !ok {
		return
	}

	cities := sortedCityIndices(c)
	if len(cities) < 2 {
		return
	}

	for i := 0; i < len(cities); i++ {
		for j := i + 1; j < len(cities); j++ {
			a, b := cities[i], cities[j]
			if c.RoadsTo[a] != nil && containsInt(c.RoadsTo[a], b) {
				continue
			}
			rawA, rawB := cityRawCell(g, fg, a), cityRawCell(g, fg, b)
			if chebyshev(g, rawA, rawB) < cfg.RoadMinCellDistance {
				continue
			}
			path := findPath(g, c.Index, rawA, rawB)
			if path == nil {
				continue
			}
			c.Roads = appendUnique(c.Roads, path)
			c.RoadsTo[a] = append(c.RoadsTo[a], b)
			c.RoadsTo[b] = append(c.RoadsTo[b], a)
			c.Polity.Roads = len(c.Roads)
			for _, rawIdx := range path {
				fg.ApplyInfraDiscount(fg.IndexForRawCell(rawIdx), roadMoveCostDiscount)
			}
			return // one road per check cycle
		}
	}
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func appendUnique(dst []int, add []int) []int {
	have := make(map[int]bool, len(dst))
	for _, d := range dst {
		have[d] = true
	}
	for _, a := range add {
		if !have[a] {
			dst = append(dst, a)
			have[a] = true
		}
	}
	return dst
}

// BuildPorts places at most one port at each eligible coastal city that
// doesn't already have one, per check cycle (spec.md section 4.11 step 5).
func BuildPorts(g *worldmap.Grid, fg *worldmap.FieldGrid, c *Country, year int, cfg config.Expansion) {
	if year < c.NextPortCheckYear {
		return
	}
	c.NextPortCheckYear = year + cfg.PortCheckIntervalYears

	hasPort := make(map[int]bool, len(c.Ports))
	for _, p := range c.Ports {
		hasPort[p] = true
	}
	for _, fidx := range sortedCityIndices(c) {
		raw := cityRawCell(g, fg, fidx)
		if hasPort[raw] || !isCoastal(g, raw) {
			continue
		}
		c.Ports = append(c.Ports, raw)
		c.Polity.Ports = len(c.Ports)
		fg.ApplyInfraDiscount(fg.IndexForRawCell(raw), portMoveCostDiscount)
	}
}

// BuildFactories places factories on qualifying non-coastal owned cells
// once Industrialization is adopted, per spec.md section 4.11 step 6.
func BuildFactories(g *worldmap.Grid, c *Country, year int, maxNewPerCheck int) {
	if _, known := c.KnownTech[technology.TechIndustrialization]; !known {
		return
	}
	adopted := c.AdoptionLevel[technology.TechIndustrialization] >= technology.Catalog[technology.TechIndustrialization].AdoptionThreshold
	if !adopted {
		return
	}

	hasFactory := make(map[int]bool, len(c.Factories))
	for _, f := range c.Factories {
		hasFactory[f] = true
	}

	type candidate struct {
		idx   int
		score float64
	}
	var candidates []candidate
	for _, idx := range g.OwnerCells(c.Index) {
		if hasFactory[idx] || isCoastal(g, idx) {
			continue
		}
		if g.ConstructionPotential[idx] < 0.3 {
			continue
		}
		candidates = append(candidates, candidate{idx: idx, score: g.ConstructionPotential[idx] + g.OrePotential[idx]})
	}
	determinism.SortCanonical(candidates, func(cd candidate) determinism.CanonicalKey {
		return determinism.CanonicalKey{Population: cd.score, Row: cd.idx / g.Width, Col: cd.idx % g.Width}
	})
	for i, cd := range candidates {
		if i >= maxNewPerCheck {
			break
		}
		c.Factories = append(c.Factories, cd.idx)
	}
	c.Polity.Factories = len(c.Factories)
}

// BuildAirways connects this country's largest eligible city to a foreign
// country's largest eligible city once, per pair, when both exceed
// AirwayMinCityPopulation, grounded on original_source's invisible-road
// airway concept (no pixel path, just a standing connection).
func BuildAirways(c *Country, countries map[int]*Country, neighbors []int, year int, cfg config.Expansion) {
	if year < c.NextAirwayCheckYear {
		return
	}
	c.NextAirwayCheckYear = year + cfg.AirwayCheckIntervalYears

	myBest := largestCity(c, cfg.AirwayMinCityPopulation)
	if myBest < 0 {
		return
	}

	idx := append([]int(nil), neighbors...)
	sortAscendingInts(idx)
	for _, n := range idx {
		other, ok := countries[n]
		if !ok || !other.Alive || other.Index == c.Index || c.AirwaysTo[n] {
			continue
		}
		theirBest := largestCity(other, cfg.AirwayMinCityPopulation)
		if theirBest < 0 {
			continue
		}
		c.Polity.Airways++
		other.Polity.Airways++
		c.AirwaysTo[n] = true
		other.AirwaysTo[c.Index] = true
		return
	}
}

func largestCity(c *Country, minPopulation float64) int {
	best, bestPop := -1, minPopulation
	for _, fidx := range sortedCityIndices(c) {
		if pop := c.Cities[fidx]; pop >= bestPop {
			best, bestPop = fidx, pop
		}
	}
	return best
}
