package population

import (
	"math"

	"github.com/talgya/worldkernel/internal/config"
	"github.com/talgya/worldkernel/internal/country"
	"github.com/talgya/worldkernel/internal/determinism"
	"github.com/talgya/worldkernel/internal/worldmap"
)

// maxLongHopPartners is the top-N partner cap named in §4.5.
const maxLongHopPartners = 6

// ConnectivityIndex is the subset of the economy's trade intensity matrix
// (or a flat neighbor default) long-hop migration needs to score partners.
type ConnectivityIndex interface {
	// Connectivity returns the trade-derived connectivity between a and b
	// in [0, 1], or ok=false if no trade relationship has been computed yet.
	Connectivity(a, b int) (value float64, ok bool)
}

// partnerScore is one candidate destination's migration score (§4.5:
// wage, safety, nutrition, attractiveness, disease, cultural friction,
// connectivity).
type partnerScore struct {
	countryIndex int
	score        float64
}

// ScorePartners ranks every country adjacent (by border contact) to src
// by §4.5's partner formula, returning up to maxLongHopPartners entries in
// descending score order.
func ScorePartners(g *worldmap.Grid, fg *worldmap.FieldGrid, countries map[int]*country.Country, conn ConnectivityIndex, srcIndex int, cfg config.Document) []partnerScore {
	src, ok := countries[srcIndex]
	if !ok {
		return nil
	}

	var scores []partnerScore
	for _, dstIndex := range g.AdjacentCountries(srcIndex) {
		dst, ok := countries[dstIndex]
		if !ok || !dst.Alive {
			continue
		}

		var traitDist float64
		for k := 0; k < country.NumTraits; k++ {
			d := src.Traits[k] - dst.Traits[k]
			traitDist += d * d
		}
		traitDist = math.Sqrt(traitDist)
		culturalFriction := math.Exp(-cfg.Migration.CulturalPreference * traitDist)

		connectivity := 0.35
		if conn != nil {
			if v, ok := conn.Connectivity(srcIndex, dstIndex); ok {
				connectivity = v
			}
		}
		connectivity += cfg.Migration.CorridorBonus * borderCorridorWeight(fg, srcIndex, dstIndex)

		score := dst.Economy.RealWage + dst.Polity.Stability +
			dst.Economy.FoodSecurity + dst.Economy.MigrationAttractiveness -
			dst.Economy.DiseaseBurden + culturalFriction + connectivity

		scores = append(scores, partnerScore{countryIndex: dstIndex, score: score})
	}

	determinism.SortCanonical(scores, func(p partnerScore) determinism.CanonicalKey {
		return determinism.CanonicalKey{Population: p.score, Row: p.countryIndex, Col: 0}
	})
	if len(scores) > maxLongHopPartners {
		scores = scores[:maxLongHopPartners]
	}
	return scores
}

// ApplyLongHop moves a dtYears-scaled fraction of src's outward-pressure
// population to its scored partners as a multiplicative rescaling over
// their respective owned field cells, preserving spatial distribution and
// conserving mass exactly (§4.5).
func ApplyLongHop(fg *worldmap.FieldGrid, g *worldmap.Grid, src *country.Country, partners []partnerScore, outwardFraction float64) {
	if outwardFraction <= 0 || len(partners) == 0 {
		return
	}

	srcPop := sumFieldPopulation(fg, src.Index)
	if srcPop <= 0 {
		return
	}
	moving := srcPop * outwardFraction

	var totalScore float64
	for _, p := range partners {
		if p.score > 0 {
			totalScore += p.score
		}
	}
	if totalScore <= 0 {
		return
	}

	rescaleFieldPopulation(fg, src.Index, math.Max(0, 1-outwardFraction))

	for _, p := range partners {
		if p.score <= 0 {
			continue
		}
		share := moving * p.score / totalScore
		dstPop := sumFieldPopulation(fg, p.countryIndex)
		if dstPop <= 0 {
			assignFlatPopulation(fg, p.countryIndex, share)
			continue
		}
		growth := 1.0 + share/dstPop
		rescaleFieldPopulation(fg, p.countryIndex, growth)
	}
}

// borderCorridorWeight averages CorridorWeight over src's field cells that
// border dst, relative to the no-corridor baseline of 1.0, so a pair that
// shares a riverland corridor scores a positive CorridorBonus term and a
// plain land border scores zero.
func borderCorridorWeight(fg *worldmap.FieldGrid, srcIndex, dstIndex int) float64 {
	var sum float64
	var n int
	for idx, owner := range fg.OwnerID {
		if int(owner) != srcIndex {
			continue
		}
		fx, fy := idx%fg.Width, idx/fg.Width
		for _, d := range shortHopNeighborOffsets {
			nx, ny := fx+d[0], fy+d[1]
			if !fg.InBounds(nx, ny) {
				continue
			}
			if int(fg.OwnerID[fg.Index(nx, ny)]) == dstIndex {
				sum += fg.CorridorWeight[idx]
				n++
				break
			}
		}
	}
	if n == 0 {
		return 0
	}
	return sum/float64(n) - 1.0
}

func sumFieldPopulation(fg *worldmap.FieldGrid, owner int) float64 {
	var sum float64
	for idx, o := range fg.OwnerID {
		if int(o) == owner {
			sum += fg.Population[idx]
		}
	}
	return sum
}

func rescaleFieldPopulation(fg *worldmap.FieldGrid, owner int, factor float64) {
	for idx, o := range fg.OwnerID {
		if int(o) == owner {
			fg.Population[idx] *= factor
		}
	}
}

func assignFlatPopulation(fg *worldmap.FieldGrid, owner int, amount float64) {
	var cells []int
	for idx, o := range fg.OwnerID {
		if int(o) == owner {
			cells = append(cells, idx)
		}
	}
	if len(cells) == 0 {
		return
	}
	per := amount / float64(len(cells))
	for _, idx := range cells {
		fg.Population[idx] += per
	}
}
