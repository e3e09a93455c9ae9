package population

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/worldkernel/internal/country"
)

func TestSpecializationIncreasesWithCrowding(t *testing.T) {
	fg := ownedGrid(0, 4)
	idx := fg.Index(1, 1)
	fg.FoodPotential[idx] = 10
	fg.FoodYieldMultiplier[idx] = 1
	fg.Control[idx] = 0.5

	fg.Population[idx] = 5
	low := Specialization(fg, idx, 0.8, CitySignal{MarketAccess: 0.35, Stability: 0.5})

	fg.Population[idx] = 500
	high := Specialization(fg, idx, 0.8, CitySignal{MarketAccess: 0.35, Stability: 0.5})

	require.Greater(t, high, low)
}

func TestUrbanShareBounded(t *testing.T) {
	require.InDelta(t, 0.01, UrbanShare(0), 1e-9)
	require.InDelta(t, 0.36, UrbanShare(1), 1e-9)
}

func TestScanForCitiesRequiresCadence(t *testing.T) {
	fg := ownedGrid(0, 4)
	c := country.NewCountry(0, "C", -5000, country.TypeWarmonger)
	c.Cohorts[2] = 1_000_000

	founded := ScanForCities(fg, c, 1, 0.5, 0.9)
	require.Nil(t, founded)
}

func TestScanForCitiesRequiresPersistenceStreak(t *testing.T) {
	fg := ownedGrid(0, 8)
	idx := fg.Index(4, 4)
	fg.FoodPotential[idx] = 2
	fg.Population[idx] = 1_000_000
	fg.Control[idx] = 0.9

	c := country.NewCountry(0, "C", -5000, country.TypeWarmonger)
	c.Cohorts[2] = 1_000_000

	founded := ScanForCities(fg, c, 50, 0.9, 0.9)
	require.Empty(t, founded)
	require.NotEmpty(t, c.CityCandidates)

	founded = ScanForCities(fg, c, 100, 0.9, 0.9)
	require.Empty(t, founded)

	founded = ScanForCities(fg, c, 150, 0.9, 0.9)
	require.NotEmpty(t, founded)
}

func TestScanForCitiesTraderUsesShorterCadence(t *testing.T) {
	fg := ownedGrid(0, 4)
	c := country.NewCountry(0, "C", -5000, country.TypeTrader)
	require.Equal(t, 10, cityCheckCadence(c))
}
