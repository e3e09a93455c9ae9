package country

import "github.com/talgya/worldkernel/internal/worldmap"

// TransferTerritoryAssets moves every city, port, road, and factory located
// within movedCells (raw Grid cell indices) from parent to child, called
// after a fragmentation or breakaway split transfers those cells' ownership
// (spec.md section 4.10: "split population, stockpiles, cohorts, SIR,
// cities, ports, roads, factories, resources").
func TransferTerritoryAssets(parent, child *Country, fg *worldmap.FieldGrid, movedCells []int) {
	moved := make(map[int]bool, len(movedCells))
	movedFields := make(map[int]bool, len(movedCells))
	for _, idx := range movedCells {
		moved[idx] = true
		movedFields[fg.IndexForRawCell(idx)] = true
	}

	for fidx, urbanPop := range parent.Cities {
		if movedFields[fidx] {
			child.Cities[fidx] = urbanPop
			delete(parent.Cities, fidx)
		}
	}

	parent.Ports, child.Ports = splitByMembership(parent.Ports, moved)
	parent.Factories, child.Factories = splitByMembership(parent.Factories, moved)
	parent.Roads, child.Roads = splitByMembership(parent.Roads, moved)

	parent.Polity.Ports = len(parent.Ports)
	parent.Polity.Factories = len(parent.Factories)
	parent.Polity.Roads = len(parent.Roads)
	child.Polity.Ports = len(child.Ports)
	child.Polity.Factories = len(child.Factories)
	child.Polity.Roads = len(child.Roads)
}

// splitByMembership partitions cells into (kept, moved) by moved-set
// membership, preserving relative order.
func splitByMembership(cells []int, moved map[int]bool) (kept, taken []int) {
	for _, c := range cells {
		if moved[c] {
			taken = append(taken, c)
		} else {
			kept = append(kept, c)
		}
	}
	return kept, taken
}
