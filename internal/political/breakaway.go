package political

import (
	"github.com/talgya/worldkernel/internal/country"
	"github.com/talgya/worldkernel/internal/worldmap"
)

// breakawayCheckIntervalYears, overseasControlThreshold, and the
// accumulation/size/fraction thresholds gate spec.md section 4.10's
// overseas-breakaway event.
const (
	breakawayCheckIntervalYears = 20
	overseasControlThreshold    = 0.22
	overseasYearsRequired       = 120
	overseasMinComponentSize    = 14
	overseasMinFraction         = 0.18
)

// floodFillComponents partitions owner's owned cells into 8-connected
// components via breadth-first flood fill, grounded on the same BFS
// pattern internal/climate uses for coastal-distance propagation.
func floodFillComponents(g *worldmap.Grid, owner int) [][]int {
	cells := g.OwnerCells(owner)
	if len(cells) == 0 {
		return nil
	}
	visited := make(map[int]bool, len(cells))
	var components [][]int

	for _, start := range cells {
		if visited[start] {
			continue
		}
		var component []int
		queue := []int{start}
		visited[start] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			component = append(component, cur)
			x, y := cur%g.Width, cur/g.Width
			for _, n := range g.Neighbors8(x, y) {
				nIdx := g.Index(n[0], n[1])
				if visited[nIdx] || g.OwnerAt(n[0], n[1]) != owner {
					continue
				}
				visited[nIdx] = true
				queue = append(queue, nIdx)
			}
		}
		components = append(components, component)
	}
	return components
}

func contains(cells []int, target int) bool {
	for _, c := range cells {
		if c == target {
			return true
		}
	}
	return false
}

// largestOverseasComponent returns the largest connected component not
// containing the capital, or nil if the country's territory is fully
// contiguous with its capital. capitalCellIndex is a raw Grid cell index.
func largestOverseasComponent(g *worldmap.Grid, owner, capitalCellIndex int) []int {
	components := floodFillComponents(g, owner)
	var best []int
	for _, comp := range components {
		if contains(comp, capitalCellIndex) {
			continue
		}
		if len(comp) > len(best) {
			best = comp
		}
	}
	return best
}

// meanControl averages field-grid control over a set of raw-grid cell
// indices, converting each into its containing field cell since Control is
// stored at the downsampled field resolution.
func meanControl(fg *worldmap.FieldGrid, rawCells []int) float64 {
	if len(rawCells) == 0 {
		return 1
	}
	var sum float64
	for _, rawIdx := range rawCells {
		sum += fg.Control[fg.IndexForRawCell(rawIdx)]
	}
	return sum / float64(len(rawCells))
}

// TickOverseasBreakaway implements spec.md section 4.10's overseas
// breakaway event: a sustained-low-control overseas component spawns an
// independent child once it has accumulated enough low-control years at
// sufficient size and territorial fraction.
func TickOverseasBreakaway(g *worldmap.Grid, fg *worldmap.FieldGrid, countries map[int]*country.Country, c *country.Country, year int, nextIndex func() (int, bool)) *Event {
	if year%breakawayCheckIntervalYears != 0 {
		return nil
	}

	overseas := largestOverseasComponent(g, c.Index, c.CapitalCellIndex)
	totalOwned := len(g.OwnerCells(c.Index))
	if len(overseas) == 0 || totalOwned == 0 {
		c.OverseasLowControlYears = 0
		return nil
	}

	fraction := float64(len(overseas)) / float64(totalOwned)
	if meanControl(fg, overseas) >= overseasControlThreshold {
		c.OverseasLowControlYears = 0
		return nil
	}
	c.OverseasLowControlYears += breakawayCheckIntervalYears

	if c.OverseasLowControlYears < overseasYearsRequired || len(overseas) < overseasMinComponentSize || fraction < overseasMinFraction {
		return nil
	}

	childIndex, ok := nextIndex()
	if !ok {
		return nil
	}

	turmoil := 1 - meanControl(fg, overseas)
	knowledgeKeep := 1 - 0.5*turmoil
	infraKeep := 1 - 0.4*turmoil
	child := country.SpawnChild(childIndex, c.Name+" Colony", year, c, fraction, knowledgeKeep, infraKeep)
	child.CapitalCellIndex = overseas[0]
	countries[childIndex] = child

	var moved []int
	for _, idx := range overseas {
		x, y := idx%g.Width, idx/g.Width
		if g.SetOwner(x, y, childIndex) {
			moved = append(moved, idx)
		}
	}
	country.TransferTerritoryAssets(c, child, fg, moved)
	rescaleAfterSplit(c, 1-fraction)
	c.OverseasLowControlYears = 0

	return &Event{ParentIndex: c.Index, ChildIndex: childIndex, SplitRatio: fraction}
}
