// Package control computes each country's control-reach field: a weighted
// multi-source Dijkstra over its owned field cells from the capital and
// largest cities, converted to a per-cell control scalar via a sigmoid
// capacity/travel-time comparison (spec.md §4.4).
package control

import (
	"container/heap"

	"github.com/talgya/worldkernel/internal/determinism"
	"github.com/talgya/worldkernel/internal/worldmap"
)

// Seed is one control-reach source: a field-cell index weighted by the
// settlement's population, used only to build the canonical seed order.
type Seed struct {
	FieldIndex int
	Population float64
	Row, Col   int
}

// maxSeedsPerCountry caps the Dijkstra seed set at the capital plus the
// seven largest cities, per §4.4.
const maxSeedsPerCountry = 8

// Inputs bundles the per-country scalars that feed the reach-capacity term
// of the control formula (§4.4).
type Inputs struct {
	AdminSpendShare    float64
	InfraSpendShare    float64
	LogisticsReach     float64
	InstitutionCap     float64
	AverageControlPrev float64
	KnowledgeStock     float64
	ConnectivityIndex  float64
	Legitimacy         float64
	Softness           float64 // clamped into [1.25, 5.5] by the caller
}

// ReachCapacity computes the linear combination feeding the sigmoid
// comparison, per §4.4's reachCapacity formula.
func ReachCapacity(in Inputs) float64 {
	commsMultiplier := 1.0 + 0.45*in.KnowledgeStock + 0.30*in.ConnectivityIndex
	base := 0.35*in.AdminSpendShare + 0.25*in.InfraSpendShare +
		0.20*in.LogisticsReach + 0.10*in.InstitutionCap + 0.10*in.AverageControlPrev
	return base * commsMultiplier * determinism.Clamp01(in.Legitimacy)
}

// ComputeForCountry runs the seeded Dijkstra over owner's field cells and
// writes the resulting per-cell control scalar into fg.Control for every
// cell majority-owned by owner. It returns the country's average control
// (unweighted mean over its cells), or 0 if it owns no field cells.
func ComputeForCountry(fg *worldmap.FieldGrid, owner int, seeds []Seed, in Inputs) float64 {
	softness := determinism.Clamp(in.Softness, 1.25, 5.5)
	reachCapacity := ReachCapacity(in)

	travelTime := dijkstra(fg, owner, canonicalSeeds(seeds))

	var sum float64
	var count int
	for idx, o := range fg.OwnerID {
		if int(o) != owner {
			continue
		}
		t, reached := travelTime[idx]
		if !reached {
			t = 1e12
		}
		c := determinism.Sigmoid((reachCapacity - t) / softness)
		fg.Control[idx] = c
		sum += c
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// canonicalSeeds sorts the seed set by population desc, row asc, col asc
// (§4.12) and truncates to maxSeedsPerCountry.
func canonicalSeeds(seeds []Seed) []Seed {
	out := append([]Seed(nil), seeds...)
	determinism.SortCanonical(out, func(s Seed) determinism.CanonicalKey {
		return determinism.CanonicalKey{Population: s.Population, Row: s.Row, Col: s.Col}
	})
	if len(out) > maxSeedsPerCountry {
		out = out[:maxSeedsPerCountry]
	}
	return out
}

type heapItem struct {
	fieldIndex int
	dist       float64
}

type priorityQueue []heapItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(heapItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// dijkstra runs a weighted multi-source shortest-path search restricted to
// field cells owned by owner, with step cost 0.5*(moveCost[u]+moveCost[v])
// per §4.4, divided by the destination cell's CorridorWeight.
func dijkstra(fg *worldmap.FieldGrid, owner int, seeds []Seed) map[int]float64 {
	dist := make(map[int]float64, len(fg.OwnerID)/4+1)
	pq := &priorityQueue{}
	heap.Init(pq)

	for _, s := range seeds {
		if int(fg.OwnerID[s.FieldIndex]) != owner {
			continue
		}
		if d, ok := dist[s.FieldIndex]; !ok || d > 0 {
			dist[s.FieldIndex] = 0
			heap.Push(pq, heapItem{fieldIndex: s.FieldIndex, dist: 0})
		}
	}

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(heapItem)
		if best, ok := dist[cur.fieldIndex]; ok && cur.dist > best {
			continue
		}
		cx, cy := cur.fieldIndex%fg.Width, cur.fieldIndex/fg.Width
		for _, nb := range fieldNeighbors4(fg, cx, cy) {
			if int(fg.OwnerID[nb]) != owner {
				continue
			}
			step := 0.5 * (fg.MoveCost[cur.fieldIndex] + fg.MoveCost[nb]) / fg.CorridorWeight[nb]
			nd := cur.dist + step
			if best, ok := dist[nb]; !ok || nd < best {
				dist[nb] = nd
				heap.Push(pq, heapItem{fieldIndex: nb, dist: nd})
			}
		}
	}

	return dist
}

func fieldNeighbors4(fg *worldmap.FieldGrid, fx, fy int) []int {
	out := make([]int, 0, 4)
	dirs := [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	for _, d := range dirs {
		nx, ny := fx+d[0], fy+d[1]
		if fg.InBounds(nx, ny) {
			out = append(out, fg.Index(nx, ny))
		}
	}
	return out
}
