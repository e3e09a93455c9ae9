package worldmap

import "github.com/talgya/worldkernel/internal/determinism"

// FieldGrid is the downsampled coarse grid used for control-reach,
// migration attractiveness, and corridor routing (§4.2). Each field cell
// aggregates a square block of Grid cells at the configured downsample
// factor F; F must divide evenly enough that FieldWidth/FieldHeight cover
// the full Grid (the final row/column may cover a partial block).
type FieldGrid struct {
	Factor              int
	Width, Height       int // field-cell dimensions
	SourceWidth, SourceHeight int // underlying Grid dimensions

	// OwnerID is the majority-vote owning country for the block, -1 if the
	// block has no owned land cells. Ties break toward the lowest country
	// index (§4.12 canonical-order tie-break).
	OwnerID []int32

	// Control is the per-field control-reach value in [0, 1], written by
	// internal/control; zero-valued until the first control pass runs.
	Control []float64

	// FoodPotential is the summed FoodPotential of every land cell in the
	// block, used by migration attractiveness scoring.
	FoodPotential []float64

	// BaseMoveCost is the terrain-only traversal cost: land/ocean fraction
	// composed with the biome base cost once internal/climate classifies
	// biomes (§4.4 step 2). It never reflects infrastructure.
	BaseMoveCost []float64

	// InfraDiscount is the per-field road/port multiplier in (0, 1],
	// defaulting to 1 (no discount); internal/country's road/port
	// construction lowers it via ApplyInfraDiscount.
	InfraDiscount []float64

	// MoveCost is the per-field traversal cost used by control-reach and
	// corridor routing: BaseMoveCost * InfraDiscount. Land-majority blocks
	// are cheap, sparse/coastal blocks are expensive, ocean-majority blocks
	// are near-impassable; roads and ports discount it further.
	MoveCost []float64

	// CorridorWeight boosts traversal along riverland/coastal corridors.
	CorridorWeight []float64

	// Population is the summed population of every land cell in the block,
	// refreshed each year by internal/population.
	Population []float64

	// Attractiveness is the migration destination score, refreshed each
	// year by internal/population from Population/FoodPotential/Control.
	Attractiveness []float64

	// LandFraction is the share of the block's cells that are land, used by
	// internal/climate's coastal-proximity BFS and biome classification.
	LandFraction []float64

	// FoodYieldMultiplier is the final climate-modulated food-yield scalar
	// in [0.05, 1.80], written by internal/climate and read by economy/
	// population tick stages.
	FoodYieldMultiplier []float64
}

// NewFieldGrid derives a FieldGrid's static layers (owner, food potential,
// move cost, corridor weight) from a fully-populated Grid. Population,
// attractiveness, and control start at zero and are filled by later tick
// stages.
func NewFieldGrid(g *Grid, factor int) *FieldGrid {
	if factor < 1 {
		factor = 1
	}
	fw := (g.Width + factor - 1) / factor
	fh := (g.Height + factor - 1) / factor
	n := fw * fh

	f := &FieldGrid{
		Factor:         factor,
		Width:          fw,
		Height:         fh,
		SourceWidth:    g.Width,
		SourceHeight:   g.Height,
		OwnerID:        make([]int32, n),
		Control:        make([]float64, n),
		FoodPotential:  make([]float64, n),
		BaseMoveCost:   make([]float64, n),
		InfraDiscount:  make([]float64, n),
		MoveCost:       make([]float64, n),
		CorridorWeight: make([]float64, n),
		Population:          make([]float64, n),
		Attractiveness:      make([]float64, n),
		LandFraction:        make([]float64, n),
		FoodYieldMultiplier: make([]float64, n),
	}
	for i := range f.FoodYieldMultiplier {
		f.FoodYieldMultiplier[i] = 1.0
		f.InfraDiscount[i] = 1.0
	}

	votes := make(map[int32]int, 8)
	for fy := 0; fy < fh; fy++ {
		for fx := 0; fx < fw; fx++ {
			fidx := fy*fw + fx
			for k := range votes {
				delete(votes, k)
			}

			landCells, oceanCells := 0, 0
			riverlandCells := 0
			var foodSum float64

			x0, y0 := fx*factor, fy*factor
			x1, y1 := min(x0+factor, g.Width), min(y0+factor, g.Height)
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					idx := g.Index(x, y)
					if !g.Land[idx] {
						oceanCells++
						continue
					}
					landCells++
					foodSum += g.FoodPotential[idx]
					if g.Riverland[idx] {
						riverlandCells++
					}
					owner := g.Owner[idx]
					if owner >= 0 {
						votes[owner]++
					}
				}
			}

			f.OwnerID[fidx] = majorityOwner(votes)
			f.FoodPotential[fidx] = foodSum

			total := landCells + oceanCells
			landShare := determinism.SafeDiv(float64(landCells), float64(max(total, 1)))
			// Move cost: cheap over solid land, near-impassable over ocean.
			// Biome classification runs later (internal/climate needs this
			// grid first), so ApplyBiomeMoveCost folds the biome base cost
			// in afterward; until then BaseMoveCost/MoveCost hold the
			// land/ocean-only term.
			f.BaseMoveCost[fidx] = 1.0 + 8.0*(1.0-landShare)
			f.MoveCost[fidx] = f.BaseMoveCost[fidx]

			corridorShare := determinism.SafeDiv(float64(riverlandCells), float64(max(landCells, 1)))
			f.CorridorWeight[fidx] = 1.0 + 0.6*corridorShare
			f.LandFraction[fidx] = landShare
		}
	}

	return f
}

// majorityOwner picks the vote-leading country index, ties breaking toward
// the lowest index per the canonical tie-break rule (§4.12).
func majorityOwner(votes map[int32]int) int32 {
	best := int32(-1)
	bestCount := 0
	for owner, count := range votes {
		if count > bestCount || (count == bestCount && (best == -1 || owner < best)) {
			best = owner
			bestCount = count
		}
	}
	return best
}

// ApplyInfraDiscount lowers fieldIdx's InfraDiscount to factor and
// recomputes MoveCost from BaseMoveCost, if factor is cheaper than
// whatever discount is already recorded there (roads/ports only ever make
// a field cheaper, and a port built after a road shouldn't un-discount
// it back up).
func (f *FieldGrid) ApplyInfraDiscount(fieldIdx int, factor float64) {
	if factor >= f.InfraDiscount[fieldIdx] {
		return
	}
	f.InfraDiscount[fieldIdx] = factor
	f.MoveCost[fieldIdx] = f.BaseMoveCost[fieldIdx] * factor
}

// Index returns the flat field-cell index for (fx, fy).
func (f *FieldGrid) Index(fx, fy int) int { return fy*f.Width + fx }

// InBounds reports whether (fx, fy) lies within the field grid.
func (f *FieldGrid) InBounds(fx, fy int) bool {
	return fx >= 0 && fy >= 0 && fx < f.Width && fy < f.Height
}

// IndexForRawCell maps a raw-grid flat cell index (as returned by
// Grid.Index/Grid.OwnerCells) to its containing field-grid index, by
// dividing both coordinates by Factor.
func (f *FieldGrid) IndexForRawCell(rawIdx int) int {
	rx, ry := rawIdx%f.SourceWidth, rawIdx/f.SourceWidth
	fx, fy := rx/f.Factor, ry/f.Factor
	if fx >= f.Width {
		fx = f.Width - 1
	}
	if fy >= f.Height {
		fy = f.Height - 1
	}
	return f.Index(fx, fy)
}

// ResetDynamicLayers zeroes the per-year-recomputed layers (population,
// attractiveness) ahead of a fresh tick pass. Control is left unchanged.
func (f *FieldGrid) ResetDynamicLayers() {
	for i := range f.Population {
		f.Population[i] = 0
		f.Attractiveness[i] = 0
	}
}

