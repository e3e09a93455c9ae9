package population

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/worldkernel/internal/config"
	"github.com/talgya/worldkernel/internal/country"
	"github.com/talgya/worldkernel/internal/worldmap"
)

func twoCountryGrid() (*worldmap.Grid, *worldmap.FieldGrid) {
	g := worldmap.NewGrid(6, 3, 2)
	for y := 0; y < 3; y++ {
		for x := 0; x < 6; x++ {
			idx := g.Index(x, y)
			g.Land[idx] = true
			g.FoodPotential[idx] = 5
			owner := 0
			if x >= 3 {
				owner = 1
			}
			g.SetOwner(x, y, owner)
		}
	}
	return g, worldmap.NewFieldGrid(g, 1)
}

func TestScorePartnersRanksByEconomySignals(t *testing.T) {
	g, fg := twoCountryGrid()

	src := country.NewCountry(0, "Src", -5000, country.TypeTrader)
	dst := country.NewCountry(1, "Dst", -5000, country.TypeTrader)
	dst.Economy.RealWage = 0.8

	countries := map[int]*country.Country{0: src, 1: dst}
	partners := ScorePartners(g, fg, countries, nil, 0, config.Default())

	require.Len(t, partners, 1)
	require.Equal(t, 1, partners[0].countryIndex)
}

func TestScorePartnersCapsAtSix(t *testing.T) {
	g := worldmap.NewGrid(9, 9, 9)
	for y := 0; y < 9; y++ {
		for x := 0; x < 9; x++ {
			idx := g.Index(x, y)
			g.Land[idx] = true
			owner := (x / 3) + (y/3)*3
			g.SetOwner(x, y, owner)
		}
	}

	countries := map[int]*country.Country{}
	for i := 0; i < 9; i++ {
		countries[i] = country.NewCountry(i, "C", -5000, country.TypeTrader)
	}

	fg := worldmap.NewFieldGrid(g, 1)
	partners := ScorePartners(g, fg, countries, nil, 4, config.Default())
	require.LessOrEqual(t, len(partners), maxLongHopPartners)
}

func TestApplyLongHopConservesMass(t *testing.T) {
	_, fg := twoCountryGrid()
	for idx, owner := range fg.OwnerID {
		if int(owner) == 0 {
			fg.Population[idx] = 1000
		}
	}

	src := country.NewCountry(0, "Src", -5000, country.TypeTrader)
	partners := []partnerScore{{countryIndex: 1, score: 1.0}}

	var before float64
	for _, p := range fg.Population {
		before += p
	}

	ApplyLongHop(fg, nil, src, partners, 0.1)

	var after float64
	for _, p := range fg.Population {
		after += p
	}
	require.InDelta(t, before, after, 1e-6)
}

func TestApplyLongHopNoopWhenNoOutwardFraction(t *testing.T) {
	_, fg := twoCountryGrid()
	fg.Population[fg.Index(0, 0)] = 500
	src := country.NewCountry(0, "Src", -5000, country.TypeTrader)
	partners := []partnerScore{{countryIndex: 1, score: 1.0}}

	ApplyLongHop(fg, nil, src, partners, 0)
	require.Equal(t, 500.0, fg.Population[fg.Index(0, 0)])
}
