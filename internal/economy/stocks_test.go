package economy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/worldkernel/internal/config"
	"github.com/talgya/worldkernel/internal/country"
)

func TestTickStocksAndPricesKeepsStockpilesInBounds(t *testing.T) {
	c := country.NewCountry(0, "Test", -5000, country.TypeTrader)
	c.Economy.FoodStockCap = 1000
	c.Economy.TaxRate = 0.15
	c.Economy.LastFoodOutput = 500
	c.Economy.InstitutionCapacity = 0.5

	in := Inputs{FoodPotentialSum: 1000, NonFoodPotentialSum: 500, Population: 10000, ClimateFoodMult: 1.0}
	TickStocksAndPrices(c, in, config.Default(), 1)

	require.GreaterOrEqual(t, c.Economy.FoodStock, 0.0)
	require.LessOrEqual(t, c.Economy.FoodStock, c.Economy.FoodStockCap)
	require.Greater(t, c.Economy.PriceFood, 0.0)
}

func TestTickStocksAndPricesPriceRespondsToScarcity(t *testing.T) {
	abundant := country.NewCountry(0, "Abundant", -5000, country.TypeTrader)
	abundant.Economy.FoodStockCap = 1000
	abundant.Economy.LastFoodOutput = 5000

	scarce := country.NewCountry(1, "Scarce", -5000, country.TypeTrader)
	scarce.Economy.FoodStockCap = 1000
	scarce.Economy.LastFoodOutput = 10

	in := Inputs{FoodPotentialSum: 1000, NonFoodPotentialSum: 500, Population: 10000, ClimateFoodMult: 1.0}
	TickStocksAndPrices(abundant, in, config.Default(), 1)
	TickStocksAndPrices(scarce, in, config.Default(), 1)

	require.Greater(t, scarce.Economy.PriceFood, abundant.Economy.PriceFood)
}

func TestTickDebtGrowsWhenSpendingExceedsRevenue(t *testing.T) {
	c := country.NewCountry(0, "Debtor", -5000, country.TypeWarmonger)
	c.Economy.Compliance = 0.2
	tickDebt(c, 100, 0.05, 0.35)
	require.Greater(t, c.Economy.Debt, 0.0)
}
