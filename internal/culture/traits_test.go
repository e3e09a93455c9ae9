package culture

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/worldkernel/internal/country"
)

func TestTickDriftStaysBounded(t *testing.T) {
	c := country.NewCountry(0, "C", -5000, country.TypeTrader)
	c.Traits[TraitOpenness] = 0.5
	for year := -5000; year < -4000; year++ {
		TickDrift(c, 1, year, 1)
	}
	for _, v := range c.Traits {
		require.GreaterOrEqual(t, v, 0.0)
		require.LessOrEqual(t, v, 1.0)
	}
}

func TestTickDriftDeterministic(t *testing.T) {
	run := func() [country.NumTraits]float64 {
		c := country.NewCountry(0, "C", -5000, country.TypeTrader)
		for year := -5000; year < -4990; year++ {
			TickDrift(c, 7, year, 1)
		}
		return c.Traits
	}
	require.Equal(t, run(), run())
}

func TestTickConvergencePullsTraitsTogether(t *testing.T) {
	a := country.NewCountry(0, "A", -5000, country.TypeTrader)
	b := country.NewCountry(1, "B", -5000, country.TypeTrader)
	a.Traits[TraitMercantilism] = 0.9
	b.Traits[TraitMercantilism] = 0.1

	countries := map[int]*country.Country{0: a, 1: b}
	gapBefore := a.Traits[TraitMercantilism] - b.Traits[TraitMercantilism]

	TickConvergence(countries, func(int, int) float64 { return 0.8 }, func(int, int) bool { return true }, 1)

	gapAfter := a.Traits[TraitMercantilism] - b.Traits[TraitMercantilism]
	require.Less(t, gapAfter, gapBefore)
}

func TestTickConvergenceSkipsUnrelatedPairs(t *testing.T) {
	a := country.NewCountry(0, "A", -5000, country.TypeTrader)
	b := country.NewCountry(1, "B", -5000, country.TypeTrader)
	a.Traits[TraitMercantilism] = 0.9

	countries := map[int]*country.Country{0: a, 1: b}
	TickConvergence(countries, func(int, int) float64 { return 0 }, func(int, int) bool { return false }, 1)

	require.Equal(t, 0.9, a.Traits[TraitMercantilism])
}
