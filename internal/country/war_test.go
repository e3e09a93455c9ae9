package country

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/worldkernel/internal/config"
	"github.com/talgya/worldkernel/internal/worldmap"
)

func TestMilitaryStrengthWarmongerBonusExceedsPacifist(t *testing.T) {
	warmonger := NewCountry(1, "W", 0, TypeWarmonger)
	warmonger.Cohorts[0] = 10000
	pacifist := NewCountry(2, "P", 0, TypePacifist)
	pacifist.Cohorts[0] = 10000

	require.Greater(t, MilitaryStrength(warmonger, 1), MilitaryStrength(pacifist, 1))
}

func TestCanDeclareWarRespectsCooldownAndPacifism(t *testing.T) {
	c := NewCountry(1, "A", 0, TypeWarmonger)
	require.True(t, c.CanDeclareWar(0))

	c.AtWar = true
	require.False(t, c.CanDeclareWar(0))

	c.AtWar = false
	c.NextWarCheckYear = 50
	require.False(t, c.CanDeclareWar(10))

	pacifist := NewCountry(2, "B", 0, TypePacifist)
	require.False(t, pacifist.CanDeclareWar(0))
}

func TestEvaluateWarTargetSkipsSameIdeologyAndRecentEnemies(t *testing.T) {
	c := NewCountry(1, "A", 0, TypeWarmonger)
	c.Cohorts[0] = 50000
	ally := NewCountry(2, "Ally", 0, TypeTrader)
	ally.Ideology = c.Ideology
	ally.Cohorts[0] = 1000

	weakEnemy := NewCountry(3, "Weak", 0, TypeTrader)
	weakEnemy.Ideology = IdeologyRepublic
	weakEnemy.Cohorts[0] = 1000

	countries := map[int]*Country{1: c, 2: ally, 3: weakEnemy}
	mult := map[int]float64{1: 1, 2: 1, 3: 1}

	target, _, ok := EvaluateWarTarget(c, []int{2, 3}, countries, mult, 42, 100)
	require.True(t, ok)
	require.Equal(t, 3, target)
}

func TestEvaluateWarTargetRespectsRecentWarCooldown(t *testing.T) {
	c := NewCountry(1, "A", 0, TypeWarmonger)
	c.Cohorts[0] = 50000
	weakEnemy := NewCountry(3, "Weak", 0, TypeTrader)
	weakEnemy.Ideology = IdeologyRepublic
	weakEnemy.Cohorts[0] = 1000
	c.LastWarEndYear[3] = 95

	countries := map[int]*Country{1: c, 3: weakEnemy}
	mult := map[int]float64{1: 1, 3: 1}

	_, _, ok := EvaluateWarTarget(c, []int{3}, countries, mult, 42, 100)
	require.False(t, ok)
}

func TestStartWarAndEndWarSetsCooldown(t *testing.T) {
	a := NewCountry(1, "A", 0, TypeWarmonger)
	b := NewCountry(2, "B", 0, TypeTrader)
	cfg := config.Default().Expansion

	StartWar(a, b, WarGoalBorderShift, 100, cfg)
	require.True(t, a.AtWar)
	require.True(t, b.AtWar)
	require.Contains(t, a.WarPartners, 2)
	require.Contains(t, b.WarPartners, 1)

	EndWar(a, b, 110)
	require.False(t, a.AtWar)
	require.False(t, b.AtWar)
	require.Equal(t, 110, a.LastWarEndYear[2])
	require.Equal(t, 110, b.LastWarEndYear[1])
}

func TestTickWarProgressEndsWarAfterDuration(t *testing.T) {
	g := worldmap.NewGrid(6, 6, 4)
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			idx := g.Index(x, y)
			g.Land[idx] = true
		}
	}
	for x := 0; x < 3; x++ {
		g.SetOwner(x, 0, 1)
	}
	for x := 3; x < 6; x++ {
		g.SetOwner(x, 0, 2)
	}

	a := NewCountry(1, "A", 0, TypeWarmonger)
	a.Cohorts[0] = 10000
	b := NewCountry(2, "B", 0, TypeTrader)
	b.Cohorts[0] = 10000

	cfg := config.Default().Expansion
	cfg.WarBaseDurationYears = 1
	StartWar(a, b, WarGoalBorderShift, 0, cfg)
	mult := map[int]float64{1: 1, 2: 1}

	TickWarProgress(g, a, b, mult, cfg, 1)
	require.False(t, a.AtWar)
	require.False(t, b.AtWar)
}
