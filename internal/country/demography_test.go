package country

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/worldkernel/internal/config"
)

func newPopulatedCountry() *Country {
	c := NewCountry(0, "Testland", -5000, TypeTrader)
	c.Cohorts = Cohorts{2000, 3000, 5000, 3000, 1500}
	c.Economy.FoodStockCap = 10000
	c.Economy.FoodStock = 2000
	return c
}

func testMigrationConfig() config.Migration {
	return config.Default().Migration
}

func TestTickDemographyKeepsCohortsNonNegative(t *testing.T) {
	c := newPopulatedCountry()
	in := DemographyInputs{
		LastFoodOutput:  500, // deliberately short of full requirement
		PriceFood:       1.0,
		HumanityProxy:   0.3,
		HealthSpending:  0.2,
		Migration:       testMigrationConfig(),
	}
	TickDemography(c, 42, -5000, 1, in)

	for _, v := range c.Cohorts {
		require.GreaterOrEqual(t, v, 0.0)
	}
}

func TestTickDemographySIRSumsToOne(t *testing.T) {
	c := newPopulatedCountry()
	c.SIR = SIR{Susceptible: 0.9, Infected: 0.08, Recovered: 0.02}
	in := DemographyInputs{LastFoodOutput: 5000, PriceFood: 1.0, HumanityProxy: 0.4, HealthSpending: 0.3, Migration: testMigrationConfig()}

	TickDemography(c, 1, -4000, 3, in)

	sum := c.SIR.Susceptible + c.SIR.Infected + c.SIR.Recovered
	require.InDelta(t, 1.0, sum, 1e-9)
}

func TestTickDemographyDeterministic(t *testing.T) {
	in := DemographyInputs{LastFoodOutput: 3000, PriceFood: 1.0, HumanityProxy: 0.25, HealthSpending: 0.25, Migration: testMigrationConfig()}

	c1 := newPopulatedCountry()
	TickDemography(c1, 777, -4500, 2, in)

	c2 := newPopulatedCountry()
	TickDemography(c2, 777, -4500, 2, in)

	require.Equal(t, c1.Cohorts, c2.Cohorts)
	require.Equal(t, c1.SIR, c2.SIR)
}

func TestFamineReducesNutritionAndRaisesDeaths(t *testing.T) {
	starved := newPopulatedCountry()
	starved.Economy.FoodStock = 0
	fed := newPopulatedCountry()
	fed.Economy.FoodStock = 0

	in := DemographyInputs{LastFoodOutput: 10, PriceFood: 1.0, HumanityProxy: 0.3, HealthSpending: 0.2, Migration: testMigrationConfig()}
	richIn := DemographyInputs{LastFoodOutput: 100000, PriceFood: 1.0, HumanityProxy: 0.3, HealthSpending: 0.2, Migration: testMigrationConfig()}

	TickDemography(starved, 5, -5000, 1, in)
	TickDemography(fed, 5, -5000, 1, richIn)

	require.Greater(t, starved.Economy.FamineSeverity, fed.Economy.FamineSeverity)
	require.Greater(t, starved.Economy.LastDeathsFamine, fed.Economy.LastDeathsFamine)
}

// TestRefugeePushHalvesOverConfiguredHalfLife covers spec.md section 8
// scenario 6: with refugeeHalfLifeYears=1 and no active shock, RefugeePush
// must decay to exactly half its value after one simulated year.
func TestRefugeePushHalvesOverConfiguredHalfLife(t *testing.T) {
	mig := testMigrationConfig()
	mig.RefugeeHalfLifeYears = 1

	c := newPopulatedCountry()
	c.Economy.RefugeePush = 0.8
	c.Economy.FamineSeverity = 0
	c.Economy.DiseaseBurden = 0

	updateRefugeePush(c, 1, DemographyInputs{Migration: mig})

	require.InDelta(t, 0.4, c.Economy.RefugeePush, 1e-9)
}

func TestRefugeePushAmplifiesPastFamineShockThreshold(t *testing.T) {
	mig := testMigrationConfig()

	belowThreshold := newPopulatedCountry()
	belowThreshold.Economy.FamineSeverity = mig.FamineShockThreshold - 0.01
	updateRefugeePush(belowThreshold, 1, DemographyInputs{Migration: mig})

	aboveThreshold := newPopulatedCountry()
	aboveThreshold.Economy.FamineSeverity = mig.FamineShockThreshold + 0.01
	updateRefugeePush(aboveThreshold, 1, DemographyInputs{Migration: mig})

	require.Greater(t, aboveThreshold.Economy.RefugeePush, belowThreshold.Economy.RefugeePush)
}
