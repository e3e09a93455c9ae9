package control

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/worldkernel/internal/worldmap"
)

func ownedFieldGrid(owner int) *worldmap.FieldGrid {
	g := worldmap.NewGrid(10, 10, 2)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			g.Land[g.Index(x, y)] = true
			g.FoodPotential[g.Index(x, y)] = 5
			g.SetOwner(x, y, owner)
		}
	}
	return worldmap.NewFieldGrid(g, 2)
}

func TestComputeForCountryProducesBoundedControl(t *testing.T) {
	fg := ownedFieldGrid(0)
	seeds := []Seed{{FieldIndex: fg.Index(2, 2), Population: 1000, Row: 2, Col: 2}}

	avg := ComputeForCountry(fg, 0, seeds, Inputs{
		AdminSpendShare: 0.5, InfraSpendShare: 0.5, LogisticsReach: 0.5,
		InstitutionCap: 0.5, AverageControlPrev: 0.5, KnowledgeStock: 0.2,
		ConnectivityIndex: 0.2, Legitimacy: 0.8, Softness: 2.5,
	})

	require.GreaterOrEqual(t, avg, 0.0)
	require.LessOrEqual(t, avg, 1.0)
	for idx, o := range fg.OwnerID {
		if int(o) == 0 {
			require.GreaterOrEqual(t, fg.Control[idx], 0.0)
			require.LessOrEqual(t, fg.Control[idx], 1.0)
		}
	}
}

func TestControlDecaysWithDistanceFromSeed(t *testing.T) {
	fg := ownedFieldGrid(0)
	seeds := []Seed{{FieldIndex: fg.Index(0, 0), Population: 1000, Row: 0, Col: 0}}

	ComputeForCountry(fg, 0, seeds, Inputs{
		AdminSpendShare: 0.6, InfraSpendShare: 0.6, LogisticsReach: 0.6,
		InstitutionCap: 0.6, AverageControlPrev: 0.6, KnowledgeStock: 0.3,
		ConnectivityIndex: 0.3, Legitimacy: 0.9, Softness: 2.0,
	})

	near := fg.Control[fg.Index(0, 0)]
	far := fg.Control[fg.Index(4, 4)]
	require.Greater(t, near, far)
}

func TestCacheStaggeredRecompute(t *testing.T) {
	c := NewCache()
	require.True(t, c.ShouldRecompute(0, 100, 1, 0, 0))
	c.MarkComputed(0, 100, 0, 0)
	require.False(t, c.ShouldRecompute(0, 101, 1, 0, 0))

	// Road count change forces a recompute regardless of cadence.
	require.True(t, c.ShouldRecompute(0, 101, 1, 1, 0))

	// dtYears > 1 forces a recompute unconditionally (mega-jump step).
	require.True(t, c.ShouldRecompute(0, 101, 5, 0, 0))
}
