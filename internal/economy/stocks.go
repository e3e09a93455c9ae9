// Package economy implements the per-country macro-economy tick: taxable
// base and tax take, wage/price/CPI resolution from supply/demand ratios,
// stockpile and capital-stock evolution, debt dynamics, and the dense
// country-pair trade intensity matrix (spec.md section 4.7).
package economy

import (
	"math"

	"github.com/talgya/worldkernel/internal/config"
	"github.com/talgya/worldkernel/internal/country"
	"github.com/talgya/worldkernel/internal/determinism"
)

// Inputs bundles the tick-scoped signals the economy needs from outside
// the country aggregate: per-country potentials, population, and the
// climate multiplier already computed this tick.
type Inputs struct {
	FoodPotentialSum    float64
	NonFoodPotentialSum float64
	Population          float64
	ClimateFoodMult     float64
}

// perCapitaFoodDemand and perCapitaGoodsDemand are the consumption
// coefficients the wage/price resolution uses to size aggregate demand.
const (
	perCapitaFoodDemand   = 0.62
	perCapitaGoodsDemand  = 0.35
	perCapitaServiceDemand = 0.18
)

// resolvePrice mirrors the teacher's supply/demand price-resolution
// pattern (price moves with demand/supply pressure, bounded by a floor and
// ceiling around the previous price) generalized from a per-good
// settlement market to a per-country aggregate commodity.
func resolvePrice(prevPrice, supply, demand float64) float64 {
	s := math.Max(supply, 1e-6)
	raw := prevPrice * (demand / s)
	floor := prevPrice * 0.5
	ceiling := prevPrice * 2.0
	return determinism.Clamp(raw, floor, ceiling)
}

// TickStocksAndPrices runs spec.md section 4.7's per-tick stockpile,
// wage/price/CPI, and debt update for one country.
func TickStocksAndPrices(c *country.Country, in Inputs, cfg config.Document, dtYears int) {
	e := &c.Economy
	dt := float64(dtYears)

	taxableBase := (in.FoodPotentialSum + in.NonFoodPotentialSum) * in.ClimateFoodMult *
		e.InstitutionCapacity * e.Compliance * (1 + 0.15*e.InfraStock/math.Max(1, in.Population))
	taxTake := taxableBase * e.TaxRate * (1 - cfg.Economy.LeakageRate)
	e.NetRevenue = taxTake

	foodSupply := e.LastFoodOutput + math.Max(0, e.FoodStock)
	foodDemand := in.Population * perCapitaFoodDemand
	e.PriceFood = resolvePrice(orOne(e.PriceFood), math.Max(foodSupply, 1e-6), foodDemand)

	goodsSupply := e.LastGoodsOutput + math.Max(0, e.NonFoodStock)
	goodsDemand := in.Population * perCapitaGoodsDemand
	e.PriceGoods = resolvePrice(orOne(e.PriceGoods), math.Max(goodsSupply, 1e-6), goodsDemand)

	servicesSupply := e.LastServicesOutput + math.Max(0, e.ServicesStock)
	servicesDemand := in.Population * perCapitaServiceDemand
	e.PriceServices = resolvePrice(orOne(e.PriceServices), math.Max(servicesSupply, 1e-6), servicesDemand)

	e.CPI = 0.5*e.PriceFood + 0.35*e.PriceGoods + 0.15*e.PriceServices
	e.Wage = determinism.SafeDiv(e.CapitalStock*0.08+e.HumanCapital*0.5, math.Max(1, in.Population)) + 0.05
	e.RealWage = determinism.SafeDiv(e.Wage, math.Max(e.CPI, 1e-6))

	e.FoodStock = determinism.Clamp(e.FoodStock+e.LastFoodOutput*dt-foodDemand*dt-e.ExportsValue*dt+e.ImportsValue*dt, 0, e.FoodStockCap)
	e.NonFoodStock = determinism.Clamp(e.NonFoodStock+e.LastNonFoodOutput*dt-goodsDemand*dt, 0, math.Max(e.FoodStockCap, 1))

	investRate := c.Polity.InfraSpendShare * determinism.SafeDiv(taxTake, math.Max(1, in.Population))
	depreciation := 0.04
	e.CapitalStock = math.Max(0, e.CapitalStock+investRate*c.Polity.Legitimacy*dt-depreciation*e.CapitalStock*dt)

	tickDebt(c, taxTake, cfg.Economy.InterestRate, cfg.Economy.DebtServiceCeiling)
}

func orOne(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v
}

// tickDebt implements spec.md section 4.7's debt dynamics: borrowing grows
// debt at the configured interest rate whenever desired spending exceeds
// revenue, and the debt-service/revenue ratio crossing the configured
// ceiling dents legitimacy.
func tickDebt(c *country.Country, revenue, interestRate, debtServiceCeiling float64) {
	e := &c.Economy
	desiredSpending := revenue * (1 + 0.10*(1-e.Compliance))
	if desiredSpending > revenue {
		gap := desiredSpending - revenue
		e.Debt += gap
	}
	e.Debt += e.Debt * interestRate
	e.Budget = revenue - e.Debt*interestRate

	if revenue <= 0 {
		return
	}
	debtServiceRatio := (e.Debt * interestRate) / revenue
	if debtServiceRatio > debtServiceCeiling {
		overage := debtServiceRatio - debtServiceCeiling
		delta := -0.01 * overage
		e.Debug.LegitimacyDeltaEconomy += delta
		c.Polity.Legitimacy = determinism.Clamp01(c.Polity.Legitimacy + delta)
	}
}
